package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alejandrodnm/ladderbot/config"
	"github.com/alejandrodnm/ladderbot/internal/adapters/notify"
	"github.com/alejandrodnm/ladderbot/internal/adapters/polymarket"
	"github.com/alejandrodnm/ladderbot/internal/adapters/storage"
	"github.com/alejandrodnm/ladderbot/internal/application/executor"
	"github.com/alejandrodnm/ladderbot/internal/ledger"
	"github.com/alejandrodnm/ladderbot/internal/metrics"
	"github.com/alejandrodnm/ladderbot/internal/ports"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one cycle and exit")
	paper := flag.Bool("paper", false, "paper trading: simulate the exchange in memory")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print full order table each cycle (default: compact 1-line)")
	report := flag.Bool("report", false, "print journaled orders and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	slog.Info("ladderbot starting",
		"config", *configPath,
		"interval", cfg.CycleInterval(),
		"tag", cfg.Bot.MarketTag,
		"entry_size_usd", cfg.Bot.EntrySizeUSD,
		"paper", *paper,
		"once", *once,
	)

	dsn := cfg.Storage.DSN
	if *paper {
		// El modo papel no debe contaminar el journal real.
		dsn = ":memory:"
	}
	store, err := storage.NewSQLiteStore(dsn)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", dsn)
		os.Exit(1)
	}
	defer store.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	notifier := notify.NewConsoleWriter(os.Stdout, *table)

	if *report {
		runReport(ctx, store, notifier)
		return
	}

	client := polymarket.NewClient(cfg.API.CLOBBase, cfg.API.GammaBase)
	scanner := polymarket.NewScanner(client, cfg.Bot.MarketTag)

	lgr := ledger.New()
	saved, err := store.LoadActive(ctx)
	if err != nil {
		slog.Error("failed to load journaled orders", "err", err)
		os.Exit(1)
	}
	if err := lgr.Restore(saved); err != nil {
		slog.Error("failed to restore ledger", "err", err)
		os.Exit(1)
	}
	if len(saved) > 0 {
		slog.Info("restored tracked orders from journal", "count", len(saved))
	}
	if queued, err := store.Markets(ctx); err == nil && len(queued) > 0 {
		slog.Info("markets in queue", "count", len(queued), "slugs", queued)
	}

	if cfg.Bot.MetricsAddr != "" {
		startMetrics(cfg.Bot.MetricsAddr)
	}

	if *paper {
		runPaper(ctx, cfg, scanner, store, lgr, notifier, *once)
	} else {
		runLive(ctx, cfg, scanner, store, lgr, notifier, *once)
	}

	slog.Info("ladderbot stopped cleanly")
}

// runLoop ejecuta ciclos hasta señal, archivo STOP o --once.
func runLoop(ctx context.Context, exec *executor.Executor, notifier ports.Notifier, interval time.Duration, once bool) {
	const stopFile = "STOP"

	cycle := 1
	runCycle(ctx, exec, notifier, cycle)
	if once {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("loop started — press Ctrl+C or create STOP file to exit", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("stopped (signal)", "total_cycles", cycle)
			return
		case <-ticker.C:
			if _, err := os.Stat(stopFile); err == nil {
				slog.Info("STOP file detected — shutting down", "total_cycles", cycle)
				os.Remove(stopFile)
				return
			}
			cycle++
			runCycle(ctx, exec, notifier, cycle)
		}
	}
}

func runCycle(ctx context.Context, exec *executor.Executor, notifier ports.Notifier, cycle int) {
	result, err := exec.RunOnce(ctx)
	if err != nil {
		slog.Error("cycle failed", "cycle", cycle, "err", err)
		return
	}

	slog.Info("cycle complete",
		"cycle", cycle,
		"markets_scanned", result.MarketsScanned,
		"entries_placed", result.EntriesPlaced,
		"recreated", result.Recreated,
		"take_profits", result.TakeProfits,
	)

	if err := notifier.ReportOrders(ctx, exec.Ledger().All()); err != nil {
		slog.Warn("notifier error", "err", err)
	}
}

// runReport imprime las órdenes no terminales del journal y termina.
func runReport(ctx context.Context, store *storage.SQLiteStore, notifier ports.Notifier) {
	orders, err := store.LoadActive(ctx)
	if err != nil {
		slog.Error("failed to load journaled orders", "err", err)
		os.Exit(1)
	}
	if err := notifier.ReportOrders(ctx, orders); err != nil {
		slog.Warn("notifier error", "err", err)
	}
}

// startMetrics sirve /metrics en background. Errores del server solo se
// loguean: perder métricas no tumba el bot.
func startMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	go func() {
		slog.Info("metrics endpoint listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Warn("metrics server stopped", "err", err)
		}
	}()
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
