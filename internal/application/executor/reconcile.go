package executor

// reconcile.go — motor de reconciliación del ledger contra el exchange.
//
// Un tick trabaja sobre UN solo snapshot de órdenes abiertas: ninguna decisión
// del tick depende de un segundo fetch potencialmente desfasado. La vivacidad
// de mercados se consulta una vez por mercado distinto, no por orden.

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/ladderbot/internal/domain"
	"github.com/alejandrodnm/ladderbot/internal/metrics"
)

// ReconcileOrders compara el ledger con el snapshot del exchange, avanza los
// estados y decide por cada orden desaparecida: expulsar (mercado terminado),
// marcar FILLED (hay balance) o recrear idéntica. Devuelve cuántas órdenes se
// recrearon con éxito. Un fallo en una orden nunca aborta el resto.
func (e *Executor) ReconcileOrders(ctx context.Context) (int, error) {
	snapshot, err := e.exchange.GetOpenOrders(ctx)
	if err != nil {
		return 0, fmt.Errorf("executor.ReconcileOrders: open orders: %w", err)
	}

	openIDs := make(map[string]bool, len(snapshot))
	for _, o := range snapshot {
		if o.OrderID != "" {
			openIDs[o.OrderID] = true
		}
	}

	for _, id := range e.ledger.TrackedIDs() {
		e.ledger.SetPresence(id, openIDs[id])
	}

	disappeared := e.ledger.Disappeared()
	if len(disappeared) == 0 {
		return 0, nil
	}

	slog.Info("executor: disappeared orders found", "count", len(disappeared))

	endedMarkets := e.checkEndedMarkets(ctx, disappeared)

	recreated := 0
	skippedEnded := 0
	for _, order := range disappeared {
		// CHECK 1: mercado terminado → expulsar, no recrear.
		if endedMarkets[order.MarketSlug] {
			e.ledger.Remove(order.OrderID)
			if e.journal != nil {
				if err := e.journal.DeleteOrder(ctx, order.OrderID); err != nil {
					slog.Warn("executor: journal delete failed", "order", order.OrderID, "err", err)
				}
			}
			if err := e.queue.RemoveMarket(ctx, order.MarketSlug); err != nil {
				slog.Warn("executor: queue remove failed", "market", order.MarketSlug, "err", err)
			}
			skippedEnded++
			continue
		}

		// CHECK 2: si ya hay posición, la orden se ejecutó, no desapareció.
		balance, err := e.exchange.TokenBalance(ctx, order.TokenID)
		if err != nil {
			slog.Warn("executor: balance check failed, skipping order",
				"order", order.OrderID, "err", err)
			continue
		}
		if balance.GreaterThan(recreateDust) {
			slog.Info("executor: skipping recreate — position exists",
				"order", order.OrderID,
				"market", order.MarketSlug,
				"shares", balance.String(),
			)
			e.ledger.MarkFilled(order.OrderID)
			e.journalStatus(ctx, order.OrderID, domain.StatusFilled)
			metrics.IncOrderFilled()
			continue
		}

		// Recrear con side/precio/tamaño idénticos.
		if _, err := e.recreateOrder(ctx, order); err != nil {
			slog.Warn("executor: recreate failed",
				"order", order.OrderID,
				"market", order.MarketSlug,
				"err", err,
			)
			continue
		}
		recreated++
		metrics.IncOrderRecreated()
	}

	if skippedEnded > 0 {
		slog.Info("executor: dropped orders from ended markets", "count", skippedEnded)
	}
	return recreated, nil
}

// checkEndedMarkets consulta la vivacidad del conjunto DISTINTO de mercados
// referenciados por las órdenes desaparecidas: O(mercados), no O(órdenes).
// Si la consulta falla, el mercado se asume activo (mejor recrear de más que
// expulsar una orden de un mercado vivo).
func (e *Executor) checkEndedMarkets(ctx context.Context, disappeared []domain.TrackedOrder) map[string]bool {
	distinct := make(map[string]bool)
	for _, o := range disappeared {
		distinct[o.MarketSlug] = true
	}

	ended := make(map[string]bool)
	for slug := range distinct {
		active, err := e.markets.IsMarketActive(ctx, slug)
		if err != nil {
			slog.Warn("executor: market liveness check failed, assuming active",
				"market", slug, "err", err)
			continue
		}
		if !active {
			ended[slug] = true
		}
	}
	return ended
}

// recreateOrder vuelve a colocar una orden desaparecida con parámetros
// idénticos, registra el reemplazo y enlaza vieja→nueva.
func (e *Executor) recreateOrder(ctx context.Context, old domain.TrackedOrder) (string, error) {
	var placed domain.PlacedOrder
	var err error

	switch old.Side {
	case domain.SideBuy:
		// BUY se recrea por notional (price × size), igual que la colocación original.
		placed, err = e.exchange.PlaceLimitBuy(ctx, old.TokenID, old.Price, old.Notional())
	case domain.SideSell:
		placed, err = e.exchange.PlaceLimitSell(ctx, old.TokenID, old.Price, old.Size)
	default:
		return "", fmt.Errorf("unknown side %q", old.Side)
	}
	if err != nil {
		return "", err
	}
	if placed.OrderID == "" {
		return "", fmt.Errorf("exchange returned no order ID")
	}

	replacement, err := domain.NewTrackedOrder(placed.OrderID, old.TokenID, old.MarketSlug, old.Side, old.Price, old.Size)
	if err != nil {
		return "", err
	}
	replacement.EntryNumber = old.EntryNumber
	replacement.FavoredCents = old.FavoredCents

	e.record(ctx, replacement)
	e.ledger.MarkRecreated(old.OrderID, placed.OrderID)
	if e.journal != nil {
		if err := e.journal.LinkReplacement(ctx, old.OrderID, placed.OrderID); err != nil {
			slog.Warn("executor: journal link failed", "order", old.OrderID, "err", err)
		}
	}

	slog.Info("executor: order recreated",
		"old", old.OrderID,
		"new", placed.OrderID,
		"market", old.MarketSlug,
		"side", string(old.Side),
		"price", old.Price.String(),
		"size", old.Size.String(),
	)
	return placed.OrderID, nil
}
