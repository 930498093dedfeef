package ports

import (
	"context"

	"github.com/alejandrodnm/ladderbot/internal/domain"
)

// OrderJournal persists tracked orders so a restart can rebuild the ledger.
// Placement and journaling are not transactional — a successful placement with
// a failed journal write leaves an untracked live order until the next
// LoadActive reconciles it against the CLOB open-order listing.
type OrderJournal interface {
	SaveOrder(ctx context.Context, order domain.TrackedOrder) error
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error

	// LinkReplacement marks oldID as RECREATED pointing at newID.
	LinkReplacement(ctx context.Context, oldID, newID string) error

	DeleteOrder(ctx context.Context, orderID string) error

	// LoadActive returns every journaled order in a non-terminal state.
	LoadActive(ctx context.Context) ([]domain.TrackedOrder, error)

	Close() error
}
