package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/ladderbot/config"
	"github.com/alejandrodnm/ladderbot/internal/adapters/notify"
	"github.com/alejandrodnm/ladderbot/internal/adapters/polymarket"
	"github.com/alejandrodnm/ladderbot/internal/adapters/storage"
	"github.com/alejandrodnm/ladderbot/internal/application/executor"
	"github.com/alejandrodnm/ladderbot/internal/ledger"
	"github.com/alejandrodnm/ladderbot/internal/strategy"
)

func runLive(ctx context.Context, cfg *config.Config, scanner *polymarket.Scanner, store *storage.SQLiteStore, lgr *ledger.Ledger, notifier *notify.Console, once bool) {
	slog.Info("=== LIVE TRADING MODE (REAL MONEY) ===",
		"entry_size_usd", cfg.Bot.EntrySizeUSD,
		"max_markets", cfg.Bot.MaxMarkets,
		"tag", cfg.Bot.MarketTag,
	)

	fmt.Printf("\n⚠️  LIVE TRADING MODE — REAL MONEY WILL BE SPENT\n")
	fmt.Printf("   Entry size: $%.2f per rung (2 rungs per market) | Max markets: %d\n",
		cfg.Bot.EntrySizeUSD, cfg.Bot.MaxMarkets)
	fmt.Printf("   Press Ctrl+C within 5 seconds to abort...\n\n")

	abortTimer := time.NewTimer(5 * time.Second)
	select {
	case <-abortTimer.C:
	case <-ctx.Done():
		slog.Info("live trading aborted by user")
		return
	}

	privateKey, err := config.PrivateKey()
	if err != nil {
		slog.Error("missing credentials", "err", err)
		os.Exit(1)
	}

	authClient, err := polymarket.NewAuthClient(cfg.API.CLOBBase, cfg.API.GammaBase, privateKey)
	if err != nil {
		slog.Error("failed to create auth client", "err", err)
		os.Exit(1)
	}

	if err := authClient.EnsureCreds(ctx); err != nil {
		slog.Error("failed to derive API credentials — check POLY_PRIVATE_KEY", "err", err)
		os.Exit(1)
	}
	slog.Info("live: authenticated with Polymarket CLOB", "address", authClient.Address())

	tradingClient, err := polymarket.NewTradingClient(authClient, cfg.API.RPCURL)
	if err != nil {
		slog.Error("failed to create trading client", "err", err)
		os.Exit(1)
	}

	ladder := strategy.New(decimal.NewFromFloat(cfg.Bot.EntrySizeUSD))
	exec := executor.New(ladder, tradingClient, scanner, store, store, lgr, cfg.Bot.SkipMarkets, cfg.Bot.MaxMarkets)

	runLoop(ctx, exec, notifier, cfg.CycleInterval(), once)
}
