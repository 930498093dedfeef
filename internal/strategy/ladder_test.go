package strategy_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/ladderbot/internal/domain"
	"github.com/alejandrodnm/ladderbot/internal/ports"
	"github.com/alejandrodnm/ladderbot/internal/strategy"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestEntryLadder_BandTable(t *testing.T) {
	s := strategy.New(decimal.NewFromInt(5))

	tests := []struct {
		name           string
		favoredCents   string
		entry1, entry2 string
		ok             bool
	}{
		{"below table", "60", "", "", false},
		{"lower edge first band", "61", "42", "27", true},
		{"mid first band", "62.5", "42", "27", true},
		{"upper edge first band", "63.99", "42", "27", true},
		{"sub-cent gap between bands", "63.995", "", "", false},
		{"lower edge second band", "64", "44", "31", true},
		{"mid second band", "65", "44", "31", true},
		{"third band", "68", "45", "33", true},
		{"fourth band decimal", "72.5", "52", "38", true},
		{"fifth band", "79.5", "58", "42", true},
		{"last band lower edge", "80", "68", "55", true},
		{"upper edge table", "100", "68", "55", true},
		{"above table", "100.5", "", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ladder, ok := s.EntryLadder(dec(tc.favoredCents))
			assert.Equal(t, tc.ok, ok)
			if !tc.ok {
				return
			}
			assert.True(t, ladder.Entry1Cents.Equal(dec(tc.entry1)),
				"entry1: got %s want %s", ladder.Entry1Cents, tc.entry1)
			assert.True(t, ladder.Entry2Cents.Equal(dec(tc.entry2)),
				"entry2: got %s want %s", ladder.Entry2Cents, tc.entry2)
		})
	}
}

func TestEntryLadder_PricesInDollars(t *testing.T) {
	s := strategy.New(decimal.NewFromInt(5))

	ladder, ok := s.EntryLadder(dec("65"))
	require.True(t, ok)
	assert.True(t, ladder.Entry1Price().Equal(dec("0.44")))
	assert.True(t, ladder.Entry2Price().Equal(dec("0.31")))
	assert.True(t, ladder.SizeUSD.Equal(decimal.NewFromInt(5)))
}

func TestComputeEntryOrders_TwoBuySpecs(t *testing.T) {
	s := strategy.New(decimal.NewFromInt(5))

	market := domain.NewMarket("g2-vs-fnatic", "G2 vs Fnatic",
		domain.Outcome{TokenID: "tok-g2", Name: "G2", PriceCents: dec("65")},
		domain.Outcome{TokenID: "tok-fnc", Name: "Fnatic", PriceCents: dec("35")},
	)

	specs := s.ComputeEntryOrders(market)
	require.Len(t, specs, 2)

	// Ambas specs van sobre el token del favorito.
	for _, spec := range specs {
		assert.Equal(t, "tok-g2", spec.TokenID)
		assert.Equal(t, "g2-vs-fnatic", spec.MarketSlug)
		assert.True(t, spec.NotionalUSD.Equal(decimal.NewFromInt(5)))
	}

	assert.Equal(t, 1, specs[0].EntryNumber)
	assert.True(t, specs[0].Price.Equal(dec("0.44")))
	assert.Equal(t, 2, specs[1].EntryNumber)
	assert.True(t, specs[1].Price.Equal(dec("0.31")))
}

func TestComputeEntryOrders_NoBand(t *testing.T) {
	s := strategy.New(decimal.NewFromInt(5))

	market := domain.NewMarket("close-match", "Close match",
		domain.Outcome{TokenID: "tok-a", Name: "A", PriceCents: dec("55")},
		domain.Outcome{TokenID: "tok-b", Name: "B", PriceCents: dec("45")},
	)

	assert.Nil(t, s.ComputeEntryOrders(market))
}

func TestComputeTakeProfitLegs_BothFilled(t *testing.T) {
	s := strategy.New(decimal.NewFromInt(5))

	filled := []ports.FilledEntry{
		{EntryNumber: 1, Price: dec("0.44")},
		{EntryNumber: 2, Price: dec("0.31")},
	}
	legs := s.ComputeTakeProfitLegs(filled, dec("65"), dec("27.47"))
	require.Len(t, legs, 2)

	// Pata A al precio de la entrada 1, pata B al precio de arranque.
	assert.True(t, legs[0].Price.Equal(dec("0.44")))
	assert.True(t, legs[1].Price.Equal(dec("0.65")))

	// El reparto 50/50 debe cubrir exactamente el total.
	sum := legs[0].Size.Add(legs[1].Size)
	assert.True(t, sum.Equal(dec("27.47")), "got %s", sum)
	assert.True(t, legs[0].Size.Equal(legs[1].Size))
}

func TestComputeTakeProfitLegs_OnlyEntry1(t *testing.T) {
	s := strategy.New(decimal.NewFromInt(5))

	filled := []ports.FilledEntry{{EntryNumber: 1, Price: dec("0.44")}}
	legs := s.ComputeTakeProfitLegs(filled, dec("65"), dec("11.36"))
	require.Len(t, legs, 2)

	assert.True(t, legs[0].Price.Equal(dec("0.65")))
	assert.True(t, legs[1].Price.Equal(dec("0.96")))
	assert.True(t, legs[0].Size.Add(legs[1].Size).Equal(dec("11.36")))
}

func TestComputeTakeProfitLegs_OnlyEntry2_SameAsEntry1(t *testing.T) {
	s := strategy.New(decimal.NewFromInt(5))

	filled := []ports.FilledEntry{{EntryNumber: 2, Price: dec("0.31")}}
	legs := s.ComputeTakeProfitLegs(filled, dec("65"), dec("16.12"))
	require.Len(t, legs, 2)

	assert.True(t, legs[0].Price.Equal(dec("0.65")))
	assert.True(t, legs[1].Price.Equal(dec("0.96")))
}

func TestComputeTakeProfitLegs_NoneFilled(t *testing.T) {
	s := strategy.New(decimal.NewFromInt(5))
	assert.Nil(t, s.ComputeTakeProfitLegs(nil, dec("65"), dec("10")))
}

func TestTakeProfitPrice_Legacy(t *testing.T) {
	// 15% por defecto
	tp := strategy.TakeProfitPrice(dec("0.44"), decimal.Zero)
	assert.True(t, tp.Equal(dec("0.506")), "got %s", tp)

	// Techo en 0.99
	tp = strategy.TakeProfitPrice(dec("0.95"), dec("0.15"))
	assert.True(t, tp.Equal(dec("0.99")), "got %s", tp)
}
