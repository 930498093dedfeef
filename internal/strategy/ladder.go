package strategy

// ladder.go — escalera de entrada de dos niveles sobre el favorito.
//
// La tabla mapea el precio actual del favorito (en centavos) a los dos precios
// límite de entrada. Las bandas son inclusivas en ambos extremos y cubren
// decimales (79.5 cae en la banda 75–79.99). Los huecos sub-centavo entre
// bandas (63.99 → 64) vienen de la tabla original y se conservan tal cual.

import (
	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/ladderbot/internal/domain"
	"github.com/alejandrodnm/ladderbot/internal/ports"
)

var (
	cents100 = decimal.NewFromInt(100)
	two      = decimal.NewFromInt(2)

	// tpCeiling es el precio fijo de la pata alta del take-profit.
	tpCeiling = decimal.RequireFromString("0.96")
	// maxTradablePrice limita el take-profit legacy.
	maxTradablePrice = decimal.RequireFromString("0.99")
	// defaultTargetPct es el 15% del calculador legacy de una sola pata.
	defaultTargetPct = decimal.RequireFromString("0.15")
)

// band es una fila de la tabla: [min, max] en centavos → precios de entrada.
type band struct {
	min, max       decimal.Decimal
	entry1, entry2 int64
}

var bands = []band{
	{decimal.NewFromInt(61), decimal.RequireFromString("63.99"), 42, 27},
	{decimal.NewFromInt(64), decimal.RequireFromString("66.99"), 44, 31},
	{decimal.NewFromInt(67), decimal.RequireFromString("69.99"), 45, 33},
	{decimal.NewFromInt(70), decimal.RequireFromString("74.99"), 52, 38},
	{decimal.NewFromInt(75), decimal.RequireFromString("79.99"), 58, 42},
	{decimal.NewFromInt(80), cents100, 68, 55},
}

// EntryLadder son los dos precios de entrada para un precio del favorito.
type EntryLadder struct {
	Entry1Cents decimal.Decimal
	Entry2Cents decimal.Decimal
	SizeUSD     decimal.Decimal
}

// Entry1Price devuelve entry1 en dólares (0.42, 0.44, ...).
func (l EntryLadder) Entry1Price() decimal.Decimal { return l.Entry1Cents.Div(cents100) }

// Entry2Price devuelve entry2 en dólares.
func (l EntryLadder) Entry2Price() decimal.Decimal { return l.Entry2Cents.Div(cents100) }

// Ladder implementa ports.Strategy: función pura de precios, sin I/O.
type Ladder struct {
	entrySizeUSD decimal.Decimal
}

// New crea la estrategia con el notional por entrada dado (default $5).
func New(entrySizeUSD decimal.Decimal) *Ladder {
	if !entrySizeUSD.IsPositive() {
		entrySizeUSD = decimal.NewFromInt(5)
	}
	return &Ladder{entrySizeUSD: entrySizeUSD}
}

// EntryLadder busca la banda que contiene favoredCents y devuelve la escalera.
// ok=false si el precio cae fuera de todas las bandas (por debajo de 61, por
// encima de 100, o en un hueco sub-centavo entre bandas).
//
// Esta función es la única autoridad sobre los precios de la escalera.
func (s *Ladder) EntryLadder(favoredCents decimal.Decimal) (EntryLadder, bool) {
	for _, b := range bands {
		if favoredCents.GreaterThanOrEqual(b.min) && favoredCents.LessThanOrEqual(b.max) {
			return EntryLadder{
				Entry1Cents: decimal.NewFromInt(b.entry1),
				Entry2Cents: decimal.NewFromInt(b.entry2),
				SizeUSD:     s.entrySizeUSD,
			}, true
		}
	}
	return EntryLadder{}, false
}

// ComputeEntryOrders construye exactamente dos specs BUY sobre el token del
// favorito, o nil si no hay banda aplicable.
func (s *Ladder) ComputeEntryOrders(market domain.Market) []domain.OrderSpec {
	ladder, ok := s.EntryLadder(market.Favored.PriceCents)
	if !ok {
		return nil
	}

	spec := func(cents decimal.Decimal, entryNumber int) domain.OrderSpec {
		return domain.OrderSpec{
			TokenID:     market.Favored.TokenID,
			OutcomeName: market.Favored.Name,
			MarketSlug:  market.Slug,
			Question:    market.Question,
			Price:       cents.Div(cents100),
			PriceCents:  cents,
			NotionalUSD: s.entrySizeUSD,
			EntryNumber: entryNumber,
		}
	}

	return []domain.OrderSpec{
		spec(ladder.Entry1Cents, 1),
		spec(ladder.Entry2Cents, 2),
	}
}

// ComputeTakeProfitLegs reparte totalSize exactamente 50/50 en dos patas SELL:
//
//   - solo entrada 1 ejecutada: pata A al precio de arranque del favorito,
//     pata B al techo fijo de 0.96.
//   - ambas ejecutadas: pata A al precio de la entrada 1, pata B al precio de
//     arranque del favorito.
//   - solo entrada 2 ejecutada: se trata igual que "solo entrada 1".
//   - ninguna: resultado vacío.
func (s *Ladder) ComputeTakeProfitLegs(filled []ports.FilledEntry, favoredStartCents, totalSize decimal.Decimal) []domain.TakeProfitLeg {
	var have1, have2 bool
	var entry1Price decimal.Decimal
	for _, f := range filled {
		switch f.EntryNumber {
		case 1:
			have1 = true
			entry1Price = f.Price
		case 2:
			have2 = true
		}
	}

	if !have1 && !have2 {
		return nil
	}

	favoredStart := favoredStartCents.Div(cents100)
	// La segunda pata lleva el resto exacto: half+rest == totalSize siempre,
	// aunque la división redondee.
	half := totalSize.Div(two)
	rest := totalSize.Sub(half)

	if have1 && have2 {
		return []domain.TakeProfitLeg{
			{Price: entry1Price, Size: half, Label: "TP1 (50% at entry1 price)"},
			{Price: favoredStart, Size: rest, Label: "TP2 (50% at start price)"},
		}
	}

	// Solo una entrada ejecutada (la 1 o la 2): mismo esquema.
	return []domain.TakeProfitLeg{
		{Price: favoredStart, Size: half, Label: "TP1 (50% at start price)"},
		{Price: tpCeiling, Size: rest, Label: "TP2 (50% at 0.96)"},
	}
}

// TakeProfitPrice es el calculador legacy de una sola pata:
// entry × (1 + targetPct), con techo en 0.99. Se mantiene como fallback; el
// flujo principal usa ComputeTakeProfitLegs.
func TakeProfitPrice(entryPrice, targetPct decimal.Decimal) decimal.Decimal {
	if targetPct.IsZero() {
		targetPct = defaultTargetPct
	}
	tp := entryPrice.Mul(decimal.NewFromInt(1).Add(targetPct))
	if tp.GreaterThan(maxTradablePrice) {
		return maxTradablePrice
	}
	return tp
}
