package polymarket

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/ladderbot/internal/domain"
)

var centsPerDollar = decimal.NewFromInt(100)

// gammaMarketToDomain convierte un gammaMarket al snapshot de dominio.
// Decodifica los tres JSON strings anidados y elige el favorito por precio.
func gammaMarketToDomain(gm gammaMarket) (domain.Market, error) {
	outcomes, err := parseJSONStringArray(gm.Outcomes)
	if err != nil {
		return domain.Market{}, fmt.Errorf("outcomes: %w", err)
	}
	prices, err := parseJSONStringArray(gm.OutcomePrices)
	if err != nil {
		return domain.Market{}, fmt.Errorf("outcomePrices: %w", err)
	}
	tokenIDs, err := parseJSONStringArray(gm.CLOBTokenIDs)
	if err != nil {
		return domain.Market{}, fmt.Errorf("clobTokenIds: %w", err)
	}

	if len(outcomes) != 2 || len(prices) != 2 || len(tokenIDs) != 2 {
		return domain.Market{}, fmt.Errorf("not a binary market: %d outcomes, %d prices, %d tokens",
			len(outcomes), len(prices), len(tokenIDs))
	}

	sides := make([]domain.Outcome, 2)
	for i := 0; i < 2; i++ {
		price, err := decimal.NewFromString(prices[i])
		if err != nil {
			return domain.Market{}, fmt.Errorf("price %q: %w", prices[i], err)
		}
		if tokenIDs[i] == "" {
			return domain.Market{}, fmt.Errorf("empty token ID for outcome %q", outcomes[i])
		}
		sides[i] = domain.Outcome{
			TokenID:    tokenIDs[i],
			Name:       outcomes[i],
			PriceCents: price.Mul(centsPerDollar),
		}
	}

	return domain.NewMarket(gm.Slug, gm.Question, sides[0], sides[1]), nil
}

// parseJSONStringArray decodifica un string JSON anidado tipo `["a","b"]`.
func parseJSONStringArray(s string) ([]string, error) {
	if s == "" {
		return nil, fmt.Errorf("empty field")
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	return out, nil
}
