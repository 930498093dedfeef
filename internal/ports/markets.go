package ports

import (
	"context"

	"github.com/alejandrodnm/ladderbot/internal/domain"
)

// MarketProvider descubre mercados binarios candidatos desde Gamma.
type MarketProvider interface {
	// FetchLadderMarkets devuelve los mercados activos del tag configurado
	// (p.ej. "lol") con sus dos outcomes y precios actuales.
	FetchLadderMarkets(ctx context.Context) ([]domain.Market, error)

	// IsMarketActive devuelve true si el mercado sigue abierto para trading.
	IsMarketActive(ctx context.Context, slug string) (bool, error)
}

// MarketQueue es la cola persistente de mercados candidatos sobre los que el
// bot mantiene órdenes.
type MarketQueue interface {
	// Markets devuelve los slugs actualmente encolados.
	Markets(ctx context.Context) ([]string, error)

	// AddMarket encola un mercado; idempotente si ya existe.
	AddMarket(ctx context.Context, slug string) error

	// RemoveMarket saca un mercado terminado de la cola.
	RemoveMarket(ctx context.Context, slug string) error
}
