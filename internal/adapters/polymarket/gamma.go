package polymarket

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/alejandrodnm/ladderbot/internal/domain"
)

const (
	gammaEventsPath  = "/events"
	gammaMarketsPath = "/markets"
	gammaPageLimit   = 100
)

// Scanner implementa ports.MarketProvider sobre la API Gamma.
type Scanner struct {
	client *Client
	tag    string
}

// NewScanner crea un scanner para el tag dado (p.ej. "lol").
func NewScanner(client *Client, tag string) *Scanner {
	return &Scanner{client: client, tag: tag}
}

// FetchLadderMarkets devuelve los mercados binarios activos del tag con sus
// dos outcomes y precios actuales. Mercados con datos incompletos se saltan
// con un log de debug, nunca tumban el escaneo.
func (s *Scanner) FetchLadderMarkets(ctx context.Context) ([]domain.Market, error) {
	u := fmt.Sprintf("%s%s?tag=%s&limit=%d&closed=false&active=true",
		s.client.gammaBase,
		gammaEventsPath,
		url.QueryEscape(s.tag),
		gammaPageLimit,
	)

	var events []gammaEvent
	if err := s.client.get(ctx, s.client.gammaLimiter, u, &events); err != nil {
		return nil, fmt.Errorf("gamma.FetchLadderMarkets: %w", err)
	}

	var markets []domain.Market
	for _, ev := range events {
		for _, gm := range ev.Markets {
			if gm.Closed || !gm.Active {
				continue
			}
			m, err := gammaMarketToDomain(gm)
			if err != nil {
				slog.Debug("gamma: skipping unparsable market",
					"slug", gm.Slug, "err", err)
				continue
			}
			markets = append(markets, m)
		}
	}

	slog.Debug("gamma: scan complete", "tag", s.tag, "events", len(events), "markets", len(markets))
	return markets, nil
}

// IsMarketActive devuelve true si el mercado sigue abierto para trading.
// Un mercado que Gamma ya no devuelve cuenta como terminado.
func (s *Scanner) IsMarketActive(ctx context.Context, slug string) (bool, error) {
	u := fmt.Sprintf("%s%s?slug=%s", s.client.gammaBase, gammaMarketsPath, url.QueryEscape(slug))

	var resp []gammaMarket
	if err := s.client.get(ctx, s.client.gammaLimiter, u, &resp); err != nil {
		return false, fmt.Errorf("gamma.IsMarketActive %q: %w", slug, err)
	}

	for _, gm := range resp {
		if gm.Slug != slug {
			continue
		}
		return gm.Active && !gm.Closed && gm.AcceptingOrders, nil
	}
	return false, nil
}
