package polymarket

// types.go — DTOs de la API Gamma. Los campos outcomes/outcomePrices/
// clobTokenIds llegan como strings JSON anidados ("[\"G2\",\"GIANTX\"]") y se
// decodifican en mapping.go.

// gammaEvent es un evento de Gamma /events con sus mercados.
type gammaEvent struct {
	Slug    string        `json:"slug"`
	Title   string        `json:"title"`
	Markets []gammaMarket `json:"markets"`
}

// gammaMarket es un mercado binario tal como lo devuelve Gamma.
type gammaMarket struct {
	Slug            string `json:"slug"`
	Question        string `json:"question"`
	Outcomes        string `json:"outcomes"`      // JSON string: ["A","B"]
	OutcomePrices   string `json:"outcomePrices"` // JSON string: ["0.65","0.35"]
	CLOBTokenIDs    string `json:"clobTokenIds"`  // JSON string: ["123...","456..."]
	Active          bool   `json:"active"`
	Closed          bool   `json:"closed"`
	AcceptingOrders bool   `json:"acceptingOrders"`
}
