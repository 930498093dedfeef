package ports

import (
	"context"

	"github.com/alejandrodnm/ladderbot/internal/domain"
)

// Notifier publica el estado de las órdenes trackeadas tras cada ciclo.
type Notifier interface {
	ReportOrders(ctx context.Context, orders []domain.TrackedOrder) error
}
