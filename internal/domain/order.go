package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderSide is the direction of a limit order.
type OrderSide string

const (
	SideBuy  OrderSide = "BUY"
	SideSell OrderSide = "SELL"
)

// OrderStatus represents the lifecycle of a tracked order.
//
// Transitions are monotonic and one-directional:
//
//	OPEN → FILLED | DISAPPEARED
//	DISAPPEARED → FILLED | RECREATED | REMOVED
//
// A disappeared order can still resolve as FILLED: the balance check during
// reconciliation is what distinguishes a fill from a vanished order.
// FILLED, RECREATED and REMOVED are terminal. A recreated order gets a fresh
// TrackedOrder linked via ReplacedBy; the old record is never mutated back.
type OrderStatus string

const (
	StatusOpen        OrderStatus = "OPEN"
	StatusFilled      OrderStatus = "FILLED"
	StatusDisappeared OrderStatus = "DISAPPEARED"
	StatusRecreated   OrderStatus = "RECREATED"
	StatusRemoved     OrderStatus = "REMOVED"
)

// transitions define el grafo de estados permitido.
var transitions = map[OrderStatus][]OrderStatus{
	StatusOpen:        {StatusFilled, StatusDisappeared},
	StatusDisappeared: {StatusFilled, StatusRecreated, StatusRemoved},
}

// CanTransition devuelve true si el paso from→to está permitido por la máquina
// de estados. Los estados terminales no tienen salidas.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal devuelve true si el estado no admite más transiciones.
func (s OrderStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

// TrackedOrder is an order this bot placed on the CLOB and still accounts for.
// Price and Size are immutable once set; only Status and ReplacedBy mutate,
// and only through the ledger.
type TrackedOrder struct {
	OrderID      string // exchange-assigned, unique for the ledger's lifetime
	TokenID      string
	MarketSlug   string
	Side         OrderSide
	Price        decimal.Decimal // 0 < price < 1
	Size         decimal.Decimal // shares, > 0
	EntryNumber  int             // 1 or 2 for ladder entries, 0 for take-profit legs
	FavoredCents decimal.Decimal // favored-outcome price (¢) when the entry was made; zero if unknown
	Status       OrderStatus
	ReplacedBy   string // order ID of the recreation, set when Status == RECREATED
	PlacedAt     time.Time
}

// NewTrackedOrder valida y construye una orden en estado OPEN.
func NewTrackedOrder(orderID, tokenID, marketSlug string, side OrderSide, price, size decimal.Decimal) (TrackedOrder, error) {
	if orderID == "" {
		return TrackedOrder{}, fmt.Errorf("domain.NewTrackedOrder: empty order ID")
	}
	if tokenID == "" {
		return TrackedOrder{}, fmt.Errorf("domain.NewTrackedOrder: empty token ID")
	}
	if side != SideBuy && side != SideSell {
		return TrackedOrder{}, fmt.Errorf("domain.NewTrackedOrder: invalid side %q", side)
	}
	if !price.IsPositive() || price.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return TrackedOrder{}, fmt.Errorf("domain.NewTrackedOrder: price %s out of (0,1)", price)
	}
	if !size.IsPositive() {
		return TrackedOrder{}, fmt.Errorf("domain.NewTrackedOrder: size %s not positive", size)
	}
	return TrackedOrder{
		OrderID:    orderID,
		TokenID:    tokenID,
		MarketSlug: marketSlug,
		Side:       side,
		Price:      price,
		Size:       size,
		Status:     StatusOpen,
		PlacedAt:   time.Now().UTC(),
	}, nil
}

// Notional devuelve price × size, el USDC necesario para recrear una orden BUY.
func (o TrackedOrder) Notional() decimal.Decimal {
	return o.Price.Mul(o.Size)
}

// OrderSpec is an entry order instruction produced by the pricing strategy,
// not yet placed on the exchange.
type OrderSpec struct {
	TokenID     string
	OutcomeName string
	MarketSlug  string
	Question    string
	Price       decimal.Decimal // dollars, e.g. 0.44
	PriceCents  decimal.Decimal // same price in cents, e.g. 44
	NotionalUSD decimal.Decimal
	EntryNumber int // 1 or 2
}

// TakeProfitLeg is one limit-sell instruction of the exit split.
type TakeProfitLeg struct {
	Price decimal.Decimal
	Size  decimal.Decimal
	Label string
}

// OpenOrder is one row of the exchange's open-order snapshot. Fetched fresh on
// each reconciliation tick and never persisted.
type OpenOrder struct {
	OrderID      string
	TokenID      string
	Side         OrderSide
	Price        decimal.Decimal
	OriginalSize decimal.Decimal
	SizeMatched  decimal.Decimal
}

// RemainingSize devuelve el tamaño aún sin emparejar de la orden.
func (o OpenOrder) RemainingSize() decimal.Decimal {
	return o.OriginalSize.Sub(o.SizeMatched)
}

// PlacedOrder is the CLOB response to a successful placement.
type PlacedOrder struct {
	OrderID string
	Status  string
}
