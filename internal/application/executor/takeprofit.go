package executor

// takeprofit.go — inferencia de fills y colocación de take-profits.
//
// Los fills no se observan por evento: se infieren de la ausencia de órdenes
// BUY en el listado de abiertas (filled = registradas − abiertas). Una orden
// cancelada sin re-fill puede clasificarse como ejecutada; el gate de balance
// limita el daño a mercados donde realmente hay posición.

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/ladderbot/internal/domain"
	"github.com/alejandrodnm/ladderbot/internal/metrics"
	"github.com/alejandrodnm/ladderbot/internal/ports"
)

// tokenGroup agrupa las órdenes BUY registradas de un token (un lado del mercado).
type tokenGroup struct {
	buys         []domain.TrackedOrder
	favoredCents decimal.Decimal
}

// ReconcileFills recorre cada mercado con órdenes registradas (salvo los de
// skipMarkets), infiere cuántas entradas se ejecutaron por token, calcula la
// posición sin vender y coloca las patas de take-profit que falten. Devuelve
// el total de take-profits colocados. Fallos por pata se loguean y se saltan.
func (e *Executor) ReconcileFills(ctx context.Context, skipMarkets map[string]bool) (int, error) {
	snapshot, err := e.exchange.GetOpenOrders(ctx)
	if err != nil {
		return 0, fmt.Errorf("executor.ReconcileFills: open orders: %w", err)
	}

	markets := e.ledger.MarketsWithOrders()
	slugs := make([]string, 0, len(markets))
	for slug := range markets {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs) // orden determinista entre ticks

	placed := 0
	for _, slug := range slugs {
		if skipMarkets[slug] {
			continue
		}
		placed += e.reconcileMarketFills(ctx, slug, snapshot)
	}
	return placed, nil
}

// reconcileMarketFills procesa un mercado: agrupa BUYs por token y evalúa cada
// grupo de forma independiente.
func (e *Executor) reconcileMarketFills(ctx context.Context, slug string, snapshot []domain.OpenOrder) int {
	groups := make(map[string]*tokenGroup)
	var tokenOrder []string

	for _, order := range e.ledger.ActiveByMarket(slug) {
		if order.Side != domain.SideBuy {
			continue
		}
		g, ok := groups[order.TokenID]
		if !ok {
			g = &tokenGroup{favoredCents: order.FavoredCents}
			groups[order.TokenID] = g
			tokenOrder = append(tokenOrder, order.TokenID)
		}
		g.buys = append(g.buys, order)
	}

	placed := 0
	for _, tokenID := range tokenOrder {
		placed += e.reconcileTokenFills(ctx, slug, tokenID, groups[tokenID], snapshot)
	}
	return placed
}

// reconcileTokenFills evalúa un token: infiere fills, marca las primeras N
// órdenes como FILLED y coloca take-profits sobre la posición sin vender.
func (e *Executor) reconcileTokenFills(ctx context.Context, slug, tokenID string, group *tokenGroup, snapshot []domain.OpenOrder) int {
	openBuys := 0
	existingSellSize := decimal.Zero
	for _, o := range snapshot {
		if o.TokenID != tokenID {
			continue
		}
		switch o.Side {
		case domain.SideBuy:
			openBuys++
		case domain.SideSell:
			existingSellSize = existingSellSize.Add(o.OriginalSize)
		}
	}

	// filled = registradas − abiertas. Aproximación: ver cabecera del archivo.
	filledCount := len(group.buys) - openBuys
	if filledCount < 0 {
		filledCount = 0
	}
	if filledCount > len(group.buys) {
		filledCount = len(group.buys)
	}

	balance, err := e.exchange.TokenBalance(ctx, tokenID)
	if err != nil {
		slog.Warn("executor: balance fetch failed", "token", tokenID, "err", err)
		return 0
	}
	if !balance.IsPositive() {
		return 0
	}

	unsold := balance.Sub(existingSellSize)
	if unsold.LessThanOrEqual(takeProfitDust) {
		return 0
	}

	// Las "primeras N" órdenes registradas se toman como ejecutadas. Asume que
	// el orden de colocación coincide con el de ejecución, que no está
	// garantizado; con dos entradas por token el error posible es el precio de
	// la entrada usado en la pata A.
	filled := make([]ports.FilledEntry, 0, filledCount)
	for _, order := range group.buys[:filledCount] {
		filled = append(filled, ports.FilledEntry{EntryNumber: order.EntryNumber, Price: order.Price})
		e.ledger.MarkFilled(order.OrderID)
		e.journalStatus(ctx, order.OrderID, domain.StatusFilled)
		metrics.IncOrderFilled()
	}

	if group.favoredCents.IsZero() {
		// Sin precio de arranque registrado no hay targets calculables.
		return 0
	}

	legs := e.strategy.ComputeTakeProfitLegs(filled, group.favoredCents, unsold)
	placed := 0
	for _, leg := range legs {
		if id := e.placeTakeProfitLeg(ctx, tokenID, slug, leg); id != "" {
			placed++
			metrics.IncTakeProfitPlaced()
		}
	}

	if placed > 0 {
		slog.Info("executor: take-profits set",
			"market", slug,
			"token", domain.TruncateStr(tokenID, 16),
			"filled_entries", filledCount,
			"unsold", unsold.String(),
			"legs", placed,
		)
	}
	return placed
}
