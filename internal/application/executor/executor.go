package executor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/ladderbot/internal/domain"
	"github.com/alejandrodnm/ladderbot/internal/ledger"
	"github.com/alejandrodnm/ladderbot/internal/metrics"
	"github.com/alejandrodnm/ladderbot/internal/ports"
)

const (
	// recreateDustShares: balance por encima del cual una orden desaparecida se
	// considera ejecutada (no desvanecida) y no se recrea.
	recreateDustShares = "0.1"
	// takeProfitDustShares: posición sin vender por debajo de la cual no se
	// colocan take-profits.
	takeProfitDustShares = "0.01"
)

var (
	recreateDust   = decimal.RequireFromString(recreateDustShares)
	takeProfitDust = decimal.RequireFromString(takeProfitDustShares)
)

// Executor orquesta la colocación de entradas y delega el mantenimiento
// periódico en la reconciliación y el coordinador de take-profits.
type Executor struct {
	strategy ports.Strategy
	exchange ports.OrderExecutor
	markets  ports.MarketProvider
	queue    ports.MarketQueue
	journal  ports.OrderJournal // puede ser nil (modo sin persistencia)
	ledger   *ledger.Ledger
	skip     map[string]bool // mercados a ignorar en take-profit (ya cerrados a mano)
	maxMkts  int             // tope de mercados con posiciones simultáneas; 0 = sin tope
}

// New crea el executor. journal puede ser nil.
func New(strategy ports.Strategy, exchange ports.OrderExecutor, markets ports.MarketProvider, queue ports.MarketQueue, journal ports.OrderJournal, lgr *ledger.Ledger, skipMarkets []string, maxMarkets int) *Executor {
	skip := make(map[string]bool, len(skipMarkets))
	for _, s := range skipMarkets {
		skip[s] = true
	}
	return &Executor{
		strategy: strategy,
		exchange: exchange,
		markets:  markets,
		queue:    queue,
		journal:  journal,
		ledger:   lgr,
		skip:     skip,
		maxMkts:  maxMarkets,
	}
}

// Ledger expone el ledger para reporting.
func (e *Executor) Ledger() *ledger.Ledger { return e.ledger }

// CycleResult resume un tick completo del bot.
type CycleResult struct {
	MarketsScanned int
	EntriesPlaced  int
	Recreated      int
	TakeProfits    int
}

// RunOnce ejecuta un ciclo: escanear mercados → colocar escaleras que falten →
// reconciliar órdenes desaparecidas → inferir fills y colocar take-profits.
// Cada fase degrada a "saltar y seguir"; ningún fallo por ítem aborta el ciclo.
func (e *Executor) RunOnce(ctx context.Context) (CycleResult, error) {
	var result CycleResult

	mkts, err := e.markets.FetchLadderMarkets(ctx)
	if err != nil {
		return result, fmt.Errorf("executor.RunOnce: scan markets: %w", err)
	}
	result.MarketsScanned = len(mkts)

	tracked := e.ledger.MarketsWithOrders()
	active := len(tracked)
	for _, m := range mkts {
		if tracked[m.Slug] || e.skip[m.Slug] {
			continue
		}
		if e.maxMkts > 0 && active >= e.maxMkts {
			slog.Debug("executor: market cap reached", "cap", e.maxMkts)
			break
		}
		placed, err := e.PlaceEntryOrders(ctx, m)
		if err != nil {
			slog.Warn("executor: entry placement failed", "market", m.Slug, "err", err)
			continue
		}
		if len(placed) > 0 {
			if err := e.queue.AddMarket(ctx, m.Slug); err != nil {
				slog.Warn("executor: queue add failed", "market", m.Slug, "err", err)
			}
			result.EntriesPlaced += len(placed)
			active++
		}
	}

	recreated, err := e.ReconcileOrders(ctx)
	if err != nil {
		slog.Warn("executor: reconcile failed", "err", err)
	}
	result.Recreated = recreated

	tps, err := e.ReconcileFills(ctx, e.skip)
	if err != nil {
		slog.Warn("executor: take-profit pass failed", "err", err)
	}
	result.TakeProfits = tps

	metrics.SetTrackedOrders(len(e.ledger.TrackedIDs()))
	return result, nil
}

// PlaceEntryOrders coloca las dos órdenes BUY de la escalera para un mercado y
// las registra en el ledger. Devuelve los IDs colocados con éxito; un fallo de
// colocación individual se loguea y no bloquea la otra entrada.
func (e *Executor) PlaceEntryOrders(ctx context.Context, market domain.Market) ([]string, error) {
	specs := e.strategy.ComputeEntryOrders(market)
	if specs == nil {
		// Precio del favorito fuera de todas las bandas: no es un error.
		slog.Debug("executor: no strategy band for market",
			"market", market.Slug,
			"favored_cents", market.Favored.PriceCents.String(),
		)
		return nil, nil
	}

	var placedIDs []string
	for _, spec := range specs {
		placed, err := e.exchange.PlaceLimitBuy(ctx, spec.TokenID, spec.Price, spec.NotionalUSD)
		if err != nil || placed.OrderID == "" {
			slog.Warn("executor: entry order failed",
				"market", spec.MarketSlug,
				"entry", spec.EntryNumber,
				"price", spec.Price.String(),
				"err", err,
			)
			continue
		}

		size := spec.NotionalUSD.Div(spec.Price)
		order, err := domain.NewTrackedOrder(placed.OrderID, spec.TokenID, spec.MarketSlug, domain.SideBuy, spec.Price, size)
		if err != nil {
			slog.Warn("executor: invalid entry order", "err", err)
			continue
		}
		order.EntryNumber = spec.EntryNumber
		order.FavoredCents = market.Favored.PriceCents

		e.record(ctx, order)
		placedIDs = append(placedIDs, placed.OrderID)
		metrics.IncOrderPlaced("BUY")

		slog.Info("executor: entry placed",
			"market", spec.MarketSlug,
			"outcome", spec.OutcomeName,
			"entry", spec.EntryNumber,
			"price", spec.Price.String(),
			"notional_usd", spec.NotionalUSD.String(),
		)
	}
	return placedIDs, nil
}

// placeTakeProfitLeg coloca una pata SELL y la registra. Devuelve el ID o "".
func (e *Executor) placeTakeProfitLeg(ctx context.Context, tokenID, marketSlug string, leg domain.TakeProfitLeg) string {
	placed, err := e.exchange.PlaceLimitSell(ctx, tokenID, leg.Price, leg.Size)
	if err != nil || placed.OrderID == "" {
		slog.Warn("executor: take-profit leg failed",
			"market", marketSlug,
			"label", leg.Label,
			"price", leg.Price.String(),
			"err", err,
		)
		return ""
	}

	order, err := domain.NewTrackedOrder(placed.OrderID, tokenID, marketSlug, domain.SideSell, leg.Price, leg.Size)
	if err != nil {
		slog.Warn("executor: invalid take-profit order", "err", err)
		return placed.OrderID
	}
	e.record(ctx, order)
	metrics.IncOrderPlaced("SELL")

	slog.Info("executor: take-profit placed",
		"market", marketSlug,
		"label", leg.Label,
		"price", leg.Price.String(),
		"size", leg.Size.String(),
	)
	return placed.OrderID
}

// record añade la orden al ledger y la journalea. Colocación y journaling no
// son transaccionales: si el journal falla la orden sigue viva en el exchange
// y se recupera en el arranque vía LoadActive + listado de órdenes abiertas.
func (e *Executor) record(ctx context.Context, order domain.TrackedOrder) {
	if err := e.ledger.Add(order); err != nil {
		slog.Warn("executor: ledger add failed", "order", order.OrderID, "err", err)
		return
	}
	if e.journal == nil {
		return
	}
	if err := e.journal.SaveOrder(ctx, order); err != nil {
		slog.Warn("executor: journal save failed", "order", order.OrderID, "err", err)
	}
}

// journalStatus persiste una transición de estado, si hay journal.
func (e *Executor) journalStatus(ctx context.Context, orderID string, status domain.OrderStatus) {
	if e.journal == nil {
		return
	}
	if err := e.journal.UpdateStatus(ctx, orderID, status); err != nil {
		slog.Warn("executor: journal status failed", "order", orderID, "status", string(status), "err", err)
	}
}
