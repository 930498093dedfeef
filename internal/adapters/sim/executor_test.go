package sim_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/ladderbot/internal/adapters/sim"
)

func TestSim_PlaceAndFill(t *testing.T) {
	e := sim.New()
	ctx := context.Background()

	placed, err := e.PlaceLimitBuy(ctx, "tok-1", decimal.RequireFromString("0.44"), decimal.NewFromInt(5))
	require.NoError(t, err)
	require.NotEmpty(t, placed.OrderID)

	open, err := e.GetOpenOrders(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	// size = notional / price
	assert.True(t, open[0].OriginalSize.Equal(decimal.NewFromInt(5).Div(decimal.RequireFromString("0.44"))))

	// El fill saca la orden del libro y acredita las shares.
	require.True(t, e.FillOrder(placed.OrderID))
	open, err = e.GetOpenOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)

	balance, err := e.TokenBalance(ctx, "tok-1")
	require.NoError(t, err)
	assert.True(t, balance.IsPositive())

	// Un SELL ejecutado debita el balance.
	sell, err := e.PlaceLimitSell(ctx, "tok-1", decimal.RequireFromString("0.65"), balance)
	require.NoError(t, err)
	require.True(t, e.FillOrder(sell.OrderID))

	balance, err = e.TokenBalance(ctx, "tok-1")
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestSim_DropOrder(t *testing.T) {
	e := sim.New()
	ctx := context.Background()

	placed, err := e.PlaceLimitSell(ctx, "tok-1", decimal.RequireFromString("0.65"), decimal.NewFromInt(10))
	require.NoError(t, err)

	require.True(t, e.DropOrder(placed.OrderID))
	assert.False(t, e.DropOrder(placed.OrderID))

	// Una cancelación no toca el balance.
	balance, err := e.TokenBalance(ctx, "tok-1")
	require.NoError(t, err)
	assert.True(t, balance.IsZero())

	open, err := e.GetOpenOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)
}
