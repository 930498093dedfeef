// Package sim es el executor de papel: simula el CLOB en memoria para probar
// la estrategia sin gastar dinero real. Las órdenes reciben IDs UUID y quedan
// abiertas hasta que FillOrder las convierte en balance.
package sim

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/ladderbot/internal/domain"
)

// Executor implementa ports.OrderExecutor en memoria.
type Executor struct {
	mu       sync.Mutex
	open     []domain.OpenOrder
	balances map[string]decimal.Decimal // tokenID → shares
}

// New crea un executor de papel vacío.
func New() *Executor {
	return &Executor{balances: make(map[string]decimal.Decimal)}
}

// PlaceLimitBuy registra una orden BUY simulada y devuelve su ID.
func (e *Executor) PlaceLimitBuy(ctx context.Context, tokenID string, price, notionalUSD decimal.Decimal) (domain.PlacedOrder, error) {
	size := notionalUSD.Div(price)
	return e.place(tokenID, domain.SideBuy, price, size), nil
}

// PlaceLimitSell registra una orden SELL simulada y devuelve su ID.
func (e *Executor) PlaceLimitSell(ctx context.Context, tokenID string, price, size decimal.Decimal) (domain.PlacedOrder, error) {
	return e.place(tokenID, domain.SideSell, price, size), nil
}

func (e *Executor) place(tokenID string, side domain.OrderSide, price, size decimal.Decimal) domain.PlacedOrder {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := uuid.New().String()
	e.open = append(e.open, domain.OpenOrder{
		OrderID:      id,
		TokenID:      tokenID,
		Side:         side,
		Price:        price,
		OriginalSize: size,
	})

	slog.Debug("sim: order placed",
		"id", id,
		"token", domain.TruncateStr(tokenID, 16),
		"side", string(side),
		"price", price.String(),
		"size", size.String(),
	)
	return domain.PlacedOrder{OrderID: id, Status: "LIVE"}
}

// GetOpenOrders devuelve el snapshot de órdenes simuladas abiertas.
func (e *Executor) GetOpenOrders(ctx context.Context) ([]domain.OpenOrder, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]domain.OpenOrder, len(e.open))
	copy(out, e.open)
	return out, nil
}

// TokenBalance devuelve el balance simulado del token.
func (e *Executor) TokenBalance(ctx context.Context, tokenID string) (decimal.Decimal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.balances[tokenID], nil
}

// FillOrder simula la ejecución completa de una orden: la saca del libro y,
// si era BUY, acredita las shares al balance del token.
func (e *Executor) FillOrder(orderID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, o := range e.open {
		if o.OrderID != orderID {
			continue
		}
		e.open = append(e.open[:i], e.open[i+1:]...)
		if o.Side == domain.SideBuy {
			e.balances[o.TokenID] = e.balances[o.TokenID].Add(o.OriginalSize)
		} else {
			e.balances[o.TokenID] = e.balances[o.TokenID].Sub(o.OriginalSize)
		}
		return true
	}
	return false
}

// DropOrder simula una cancelación del lado del exchange (la orden desaparece
// sin fill). Útil para ejercitar la recreación.
func (e *Executor) DropOrder(orderID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, o := range e.open {
		if o.OrderID == orderID {
			e.open = append(e.open[:i], e.open[i+1:]...)
			return true
		}
	}
	return false
}

// SetBalance fija el balance simulado de un token.
func (e *Executor) SetBalance(tokenID string, shares decimal.Decimal) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.balances[tokenID] = shares
}
