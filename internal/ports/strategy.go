package ports

import (
	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/ladderbot/internal/domain"
)

// FilledEntry identifica una entrada de la escalera que ya se ejecutó.
type FilledEntry struct {
	EntryNumber int
	Price       decimal.Decimal
}

// Strategy define el contrato de pricing que consume el executor.
// Implementaciones puras: sin I/O ni estado mutable.
type Strategy interface {
	// ComputeEntryOrders devuelve las dos órdenes BUY de la escalera para el
	// mercado, o nil si el precio del favorito cae fuera de todas las bandas.
	ComputeEntryOrders(market domain.Market) []domain.OrderSpec

	// ComputeTakeProfitLegs devuelve las patas SELL del take-profit según qué
	// entradas se ejecutaron. totalSize se reparte exactamente a la mitad.
	ComputeTakeProfitLegs(filled []FilledEntry, favoredStartCents decimal.Decimal, totalSize decimal.Decimal) []domain.TakeProfitLeg
}
