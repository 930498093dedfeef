package main

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/ladderbot/config"
	"github.com/alejandrodnm/ladderbot/internal/adapters/notify"
	"github.com/alejandrodnm/ladderbot/internal/adapters/polymarket"
	"github.com/alejandrodnm/ladderbot/internal/adapters/sim"
	"github.com/alejandrodnm/ladderbot/internal/adapters/storage"
	"github.com/alejandrodnm/ladderbot/internal/application/executor"
	"github.com/alejandrodnm/ladderbot/internal/ledger"
	"github.com/alejandrodnm/ladderbot/internal/strategy"
)

// runPaper usa mercados reales de Gamma pero un exchange simulado en memoria:
// las órdenes nunca llegan al CLOB.
func runPaper(ctx context.Context, cfg *config.Config, scanner *polymarket.Scanner, store *storage.SQLiteStore, lgr *ledger.Ledger, notifier *notify.Console, once bool) {
	slog.Info("=== PAPER TRADING MODE (no real orders) ===",
		"entry_size_usd", cfg.Bot.EntrySizeUSD,
		"tag", cfg.Bot.MarketTag,
	)

	exchange := sim.New()
	ladder := strategy.New(decimal.NewFromFloat(cfg.Bot.EntrySizeUSD))
	exec := executor.New(ladder, exchange, scanner, store, store, lgr, cfg.Bot.SkipMarkets, cfg.Bot.MaxMarkets)

	runLoop(ctx, exec, notifier, cfg.CycleInterval(), once)
}
