package executor_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/ladderbot/internal/adapters/sim"
	"github.com/alejandrodnm/ladderbot/internal/application/executor"
	"github.com/alejandrodnm/ladderbot/internal/domain"
	"github.com/alejandrodnm/ladderbot/internal/ledger"
	"github.com/alejandrodnm/ladderbot/internal/strategy"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// fakeMarkets implementa ports.MarketProvider con datos fijos.
type fakeMarkets struct {
	markets []domain.Market
	ended   map[string]bool
}

func (f *fakeMarkets) FetchLadderMarkets(context.Context) ([]domain.Market, error) {
	return f.markets, nil
}

func (f *fakeMarkets) IsMarketActive(_ context.Context, slug string) (bool, error) {
	return !f.ended[slug], nil
}

// fakeQueue implementa ports.MarketQueue registrando las llamadas.
type fakeQueue struct {
	added   []string
	removed []string
}

func (f *fakeQueue) Markets(context.Context) ([]string, error) { return f.added, nil }

func (f *fakeQueue) AddMarket(_ context.Context, slug string) error {
	f.added = append(f.added, slug)
	return nil
}

func (f *fakeQueue) RemoveMarket(_ context.Context, slug string) error {
	f.removed = append(f.removed, slug)
	return nil
}

func binaryMarket(slug, favToken string, favCents string) domain.Market {
	return domain.NewMarket(slug, slug,
		domain.Outcome{TokenID: favToken, Name: "FAV", PriceCents: dec(favCents)},
		domain.Outcome{TokenID: favToken + "-und", Name: "UND", PriceCents: dec("100").Sub(dec(favCents))},
	)
}

type fixture struct {
	exec     *executor.Executor
	exchange *sim.Executor
	markets  *fakeMarkets
	queue    *fakeQueue
	ledger   *ledger.Ledger
}

func newFixture(t *testing.T, markets []domain.Market, maxMarkets int) *fixture {
	t.Helper()
	f := &fixture{
		exchange: sim.New(),
		markets:  &fakeMarkets{markets: markets, ended: map[string]bool{}},
		queue:    &fakeQueue{},
		ledger:   ledger.New(),
	}
	f.exec = executor.New(
		strategy.New(decimal.NewFromInt(5)),
		f.exchange, f.markets, f.queue, nil, f.ledger, nil, maxMarkets,
	)
	return f
}

func TestRunOnce_PlacesLadderForNewMarkets(t *testing.T) {
	f := newFixture(t, []domain.Market{binaryMarket("mkt-a", "tok-a", "65")}, 0)

	result, err := f.exec.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.MarketsScanned)
	assert.Equal(t, 2, result.EntriesPlaced)
	assert.Equal(t, []string{"mkt-a"}, f.queue.added)

	orders := f.ledger.ActiveByMarket("mkt-a")
	require.Len(t, orders, 2)
	assert.True(t, orders[0].Price.Equal(dec("0.44")))
	assert.True(t, orders[1].Price.Equal(dec("0.31")))
	// size = notional / price
	assert.True(t, orders[0].Size.Equal(dec("5").Div(dec("0.44"))))

	open, err := f.exchange.GetOpenOrders(context.Background())
	require.NoError(t, err)
	assert.Len(t, open, 2)
}

func TestRunOnce_IdempotentAcrossTicks(t *testing.T) {
	f := newFixture(t, []domain.Market{binaryMarket("mkt-a", "tok-a", "65")}, 0)

	_, err := f.exec.RunOnce(context.Background())
	require.NoError(t, err)

	// Segundo tick con el mismo estado: nada nuevo que colocar.
	result, err := f.exec.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.EntriesPlaced)
	assert.Equal(t, 0, result.Recreated)
	assert.Equal(t, 0, result.TakeProfits)
	assert.Len(t, f.ledger.ActiveByMarket("mkt-a"), 2)
}

func TestRunOnce_SkipsMarketsOutsideBands(t *testing.T) {
	f := newFixture(t, []domain.Market{binaryMarket("mkt-close", "tok-c", "52")}, 0)

	result, err := f.exec.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.EntriesPlaced)
	assert.Empty(t, f.queue.added)
}

func TestRunOnce_RespectsMarketCap(t *testing.T) {
	f := newFixture(t, []domain.Market{
		binaryMarket("mkt-a", "tok-a", "65"),
		binaryMarket("mkt-b", "tok-b", "70"),
		binaryMarket("mkt-c", "tok-c", "80"),
	}, 2)

	result, err := f.exec.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, result.EntriesPlaced)
	assert.Len(t, f.queue.added, 2)
}

func TestReconcileOrders_RecreatesDisappeared(t *testing.T) {
	f := newFixture(t, []domain.Market{binaryMarket("mkt-a", "tok-a", "65")}, 0)
	_, err := f.exec.RunOnce(context.Background())
	require.NoError(t, err)

	orders := f.ledger.ActiveByMarket("mkt-a")
	require.Len(t, orders, 2)
	victim := orders[0]

	// La orden se esfuma del exchange sin fill ni balance.
	require.True(t, f.exchange.DropOrder(victim.OrderID))

	recreated, err := f.exec.ReconcileOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, recreated)

	old, ok := f.ledger.Get(victim.OrderID)
	require.True(t, ok)
	assert.Equal(t, domain.StatusRecreated, old.Status)
	require.NotEmpty(t, old.ReplacedBy)

	// El reemplazo es idéntico en side, precio y tamaño.
	repl, ok := f.ledger.Get(old.ReplacedBy)
	require.True(t, ok)
	assert.Equal(t, domain.StatusOpen, repl.Status)
	assert.Equal(t, victim.Side, repl.Side)
	assert.True(t, repl.Price.Equal(victim.Price))
	assert.True(t, repl.Size.Equal(victim.Size))
	assert.Equal(t, victim.EntryNumber, repl.EntryNumber)
}

func TestReconcileOrders_BalanceGateMarksFilled(t *testing.T) {
	f := newFixture(t, []domain.Market{binaryMarket("mkt-a", "tok-a", "65")}, 0)
	_, err := f.exec.RunOnce(context.Background())
	require.NoError(t, err)

	victim := f.ledger.ActiveByMarket("mkt-a")[0]

	// Fill real: la orden sale del libro y las shares aparecen como balance.
	require.True(t, f.exchange.FillOrder(victim.OrderID))

	recreated, err := f.exec.ReconcileOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, recreated)

	got, ok := f.ledger.Get(victim.OrderID)
	require.True(t, ok)
	assert.Equal(t, domain.StatusFilled, got.Status)
	assert.Empty(t, got.ReplacedBy)

	// Resuelta en el ledger: el siguiente tick no la reprocesa ni la recrea.
	recreated, err = f.exec.ReconcileOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, recreated)
	got, _ = f.ledger.Get(victim.OrderID)
	assert.Equal(t, domain.StatusFilled, got.Status)
}

func TestReconcileOrders_RemovesEndedMarket(t *testing.T) {
	f := newFixture(t, []domain.Market{binaryMarket("mkt-a", "tok-a", "65")}, 0)
	_, err := f.exec.RunOnce(context.Background())
	require.NoError(t, err)

	orders := f.ledger.ActiveByMarket("mkt-a")
	for _, o := range orders {
		require.True(t, f.exchange.DropOrder(o.OrderID))
	}
	f.markets.ended["mkt-a"] = true

	recreated, err := f.exec.ReconcileOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, recreated)

	assert.Empty(t, f.ledger.ActiveByMarket("mkt-a"))
	assert.Contains(t, f.queue.removed, "mkt-a")
}

func TestReconcileFills_PlacesTakeProfitSplit(t *testing.T) {
	f := newFixture(t, []domain.Market{binaryMarket("mkt-a", "tok-a", "65")}, 0)
	_, err := f.exec.RunOnce(context.Background())
	require.NoError(t, err)

	entries := f.ledger.ActiveByMarket("mkt-a")
	require.Len(t, entries, 2)
	for _, o := range entries {
		require.True(t, f.exchange.FillOrder(o.OrderID))
	}

	placed, err := f.exec.ReconcileFills(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, placed)

	// Ambas entradas quedan FILLED.
	for _, o := range entries {
		got, _ := f.ledger.Get(o.OrderID)
		assert.Equal(t, domain.StatusFilled, got.Status)
	}

	// Las dos patas SELL cubren exactamente la posición, 50/50, a los precios
	// de la entrada 1 y del arranque del favorito.
	open, err := f.exchange.GetOpenOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, open, 2)

	balance := entries[0].Size.Add(entries[1].Size)
	total := decimal.Zero
	prices := map[string]bool{}
	for _, o := range open {
		require.Equal(t, domain.SideSell, o.Side)
		total = total.Add(o.OriginalSize)
		prices[o.Price.String()] = true
	}
	assert.True(t, total.Equal(balance), "sell size %s vs balance %s", total, balance)
	assert.True(t, prices["0.44"], "missing leg at entry1 price: %v", prices)
	assert.True(t, prices["0.65"], "missing leg at start price: %v", prices)
}

func TestReconcileFills_SecondPassPlacesNothing(t *testing.T) {
	f := newFixture(t, []domain.Market{binaryMarket("mkt-a", "tok-a", "65")}, 0)
	_, err := f.exec.RunOnce(context.Background())
	require.NoError(t, err)

	for _, o := range f.ledger.ActiveByMarket("mkt-a") {
		require.True(t, f.exchange.FillOrder(o.OrderID))
	}

	placed, err := f.exec.ReconcileFills(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, 2, placed)

	// Los SELL abiertos ya cubren todo el balance: no hay posición sin vender.
	placed, err = f.exec.ReconcileFills(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, placed)
}

func TestReconcileFills_SkipMarkets(t *testing.T) {
	f := newFixture(t, []domain.Market{binaryMarket("mkt-a", "tok-a", "65")}, 0)
	_, err := f.exec.RunOnce(context.Background())
	require.NoError(t, err)

	for _, o := range f.ledger.ActiveByMarket("mkt-a") {
		require.True(t, f.exchange.FillOrder(o.OrderID))
	}

	placed, err := f.exec.ReconcileFills(context.Background(), map[string]bool{"mkt-a": true})
	require.NoError(t, err)
	assert.Equal(t, 0, placed)
}

func TestReconcileFills_DustPositionIgnored(t *testing.T) {
	f := newFixture(t, []domain.Market{binaryMarket("mkt-a", "tok-a", "65")}, 0)
	_, err := f.exec.RunOnce(context.Background())
	require.NoError(t, err)

	entries := f.ledger.ActiveByMarket("mkt-a")
	require.True(t, f.exchange.FillOrder(entries[0].OrderID))
	// Restos de una posición ya cerrada: por debajo del umbral no se opera.
	f.exchange.SetBalance("tok-a", dec("0.005"))

	placed, err := f.exec.ReconcileFills(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, placed)
}
