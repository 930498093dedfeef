package domain

import "github.com/shopspring/decimal"

// Outcome es uno de los dos lados de un mercado binario.
type Outcome struct {
	TokenID    string
	Name       string          // nombre del equipo/resultado, p.ej. "G2"
	PriceCents decimal.Decimal // último precio en centavos, p.ej. 65.5
}

// Market es el snapshot de un mercado binario de Polymarket tal como lo entrega
// el scanner. Es de solo lectura: el core nunca lo muta ni lo posee.
type Market struct {
	Slug     string
	Question string
	Favored  Outcome // el lado con mayor precio ("equipo fuerte")
	Underdog Outcome
}

// NewMarket construye un Market ordenando los dos outcomes por precio:
// el de mayor precio queda como Favored. Ante empate gana el primero.
func NewMarket(slug, question string, a, b Outcome) Market {
	favored, underdog := a, b
	if b.PriceCents.GreaterThan(a.PriceCents) {
		favored, underdog = b, a
	}
	return Market{
		Slug:     slug,
		Question: question,
		Favored:  favored,
		Underdog: underdog,
	}
}

// TruncateStr recorta s a maxLen caracteres añadiendo "..." si hace falta.
// Se usa para mantener legibles las líneas de log con preguntas largas.
func TruncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
