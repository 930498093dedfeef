package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/ladderbot/internal/domain"
)

// OrderExecutor places and monitors real orders on the Polymarket CLOB.
type OrderExecutor interface {
	// PlaceLimitBuy signs and submits a GTC limit buy. notionalUSD is the total
	// USDC committed; the share size is notionalUSD / price.
	PlaceLimitBuy(ctx context.Context, tokenID string, price, notionalUSD decimal.Decimal) (domain.PlacedOrder, error)

	// PlaceLimitSell signs and submits a GTC limit sell of size shares.
	PlaceLimitSell(ctx context.Context, tokenID string, price, size decimal.Decimal) (domain.PlacedOrder, error)

	// GetOpenOrders returns every currently open/partial order for this wallet.
	// The result is the authoritative snapshot one reconciliation tick works on.
	GetOpenOrders(ctx context.Context) ([]domain.OpenOrder, error)

	// TokenBalance returns the on-chain ERC-1155 balance (in shares) for a token.
	// This is the ground truth — if > dust, the order was filled regardless of
	// what the ledger believes.
	TokenBalance(ctx context.Context, tokenID string) (decimal.Decimal, error)
}
