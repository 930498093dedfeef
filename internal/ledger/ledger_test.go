package ledger_test

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/ladderbot/internal/domain"
	"github.com/alejandrodnm/ladderbot/internal/ledger"
)

func makeOrder(t *testing.T, id, slug string) domain.TrackedOrder {
	t.Helper()
	o, err := domain.NewTrackedOrder(id, "tok-"+id, slug, domain.SideBuy,
		decimal.RequireFromString("0.44"), decimal.RequireFromString("11.36"))
	require.NoError(t, err)
	return o
}

func TestLedger_AddAndGet(t *testing.T) {
	l := ledger.New()

	require.NoError(t, l.Add(makeOrder(t, "ord-1", "mkt-a")))

	got, ok := l.Get("ord-1")
	require.True(t, ok)
	assert.Equal(t, domain.StatusOpen, got.Status)

	_, ok = l.Get("ord-2")
	assert.False(t, ok)
}

func TestLedger_DuplicateIDRejected(t *testing.T) {
	l := ledger.New()

	require.NoError(t, l.Add(makeOrder(t, "ord-1", "mkt-a")))
	assert.Error(t, l.Add(makeOrder(t, "ord-1", "mkt-b")))
}

func TestLedger_IDsStayUniqueAfterRemove(t *testing.T) {
	l := ledger.New()

	require.NoError(t, l.Add(makeOrder(t, "ord-1", "mkt-a")))
	l.SetPresence("ord-1", false)
	l.Remove("ord-1")

	_, ok := l.Get("ord-1")
	assert.False(t, ok)

	// El ID sigue quemado aunque la orden ya no esté.
	assert.Error(t, l.Add(makeOrder(t, "ord-1", "mkt-a")))
}

func TestLedger_SetPresence(t *testing.T) {
	l := ledger.New()
	require.NoError(t, l.Add(makeOrder(t, "ord-1", "mkt-a")))

	// Presente: sigue OPEN.
	l.SetPresence("ord-1", true)
	got, _ := l.Get("ord-1")
	assert.Equal(t, domain.StatusOpen, got.Status)

	// Ausente: pasa a DISAPPEARED en un solo tick.
	l.SetPresence("ord-1", false)
	got, _ = l.Get("ord-1")
	assert.Equal(t, domain.StatusDisappeared, got.Status)

	// Idempotente: repetir la ausencia no cambia nada.
	l.SetPresence("ord-1", false)
	got, _ = l.Get("ord-1")
	assert.Equal(t, domain.StatusDisappeared, got.Status)
}

func TestLedger_TerminalStatesAreSticky(t *testing.T) {
	l := ledger.New()
	require.NoError(t, l.Add(makeOrder(t, "ord-1", "mkt-a")))

	l.MarkFilled("ord-1")
	got, _ := l.Get("ord-1")
	require.Equal(t, domain.StatusFilled, got.Status)

	// Una orden FILLED no puede desaparecer ni recrearse.
	l.SetPresence("ord-1", false)
	l.MarkRecreated("ord-1", "ord-2")
	got, _ = l.Get("ord-1")
	assert.Equal(t, domain.StatusFilled, got.Status)
	assert.Empty(t, got.ReplacedBy)
}

func TestLedger_DisappearedResolvesAsFilled(t *testing.T) {
	l := ledger.New()
	require.NoError(t, l.Add(makeOrder(t, "ord-1", "mkt-a")))

	l.SetPresence("ord-1", false)
	l.MarkFilled("ord-1")

	got, _ := l.Get("ord-1")
	assert.Equal(t, domain.StatusFilled, got.Status)

	// Resuelta: deja de aparecer como desaparecida en los ticks siguientes.
	assert.Empty(t, l.Disappeared())
	l.MarkRecreated("ord-1", "ord-2")
	got, _ = l.Get("ord-1")
	assert.Equal(t, domain.StatusFilled, got.Status)
}

func TestLedger_MarkRecreatedLinksReplacement(t *testing.T) {
	l := ledger.New()
	require.NoError(t, l.Add(makeOrder(t, "ord-1", "mkt-a")))

	// Solo una orden DISAPPEARED puede recrearse.
	l.MarkRecreated("ord-1", "ord-2")
	got, _ := l.Get("ord-1")
	assert.Equal(t, domain.StatusOpen, got.Status)

	l.SetPresence("ord-1", false)
	l.MarkRecreated("ord-1", "ord-2")
	require.NoError(t, l.Add(makeOrder(t, "ord-2", "mkt-a")))

	got, _ = l.Get("ord-1")
	assert.Equal(t, domain.StatusRecreated, got.Status)
	assert.Equal(t, "ord-2", got.ReplacedBy)
}

func TestLedger_DisappearedInInsertionOrder(t *testing.T) {
	l := ledger.New()
	for i := 1; i <= 3; i++ {
		require.NoError(t, l.Add(makeOrder(t, fmt.Sprintf("ord-%d", i), "mkt-a")))
	}

	l.SetPresence("ord-3", false)
	l.SetPresence("ord-1", false)

	gone := l.Disappeared()
	require.Len(t, gone, 2)
	assert.Equal(t, "ord-1", gone[0].OrderID)
	assert.Equal(t, "ord-3", gone[1].OrderID)
}

func TestLedger_ActiveByMarket(t *testing.T) {
	l := ledger.New()
	require.NoError(t, l.Add(makeOrder(t, "ord-1", "mkt-a")))
	require.NoError(t, l.Add(makeOrder(t, "ord-2", "mkt-b")))
	require.NoError(t, l.Add(makeOrder(t, "ord-3", "mkt-a")))

	l.MarkFilled("ord-3")

	active := l.ActiveByMarket("mkt-a")
	require.Len(t, active, 1)
	assert.Equal(t, "ord-1", active[0].OrderID)

	assert.Equal(t, map[string]bool{"mkt-a": true, "mkt-b": true}, l.MarketsWithOrders())
}

func TestLedger_Restore(t *testing.T) {
	saved := []domain.TrackedOrder{
		makeOrder(t, "ord-1", "mkt-a"),
		makeOrder(t, "ord-2", "mkt-a"),
	}
	saved[1].Status = domain.StatusDisappeared

	filled := makeOrder(t, "ord-3", "mkt-b")
	filled.Status = domain.StatusFilled
	saved = append(saved, filled)

	l := ledger.New()
	require.NoError(t, l.Restore(saved))

	// Respeta el estado persistido y descarta los terminales.
	got, ok := l.Get("ord-2")
	require.True(t, ok)
	assert.Equal(t, domain.StatusDisappeared, got.Status)

	_, ok = l.Get("ord-3")
	assert.False(t, ok)

	assert.Equal(t, []string{"ord-1", "ord-2"}, l.TrackedIDs())
}
