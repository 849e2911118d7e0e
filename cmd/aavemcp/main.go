package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"aaveLens/internal/aave"
	"aaveLens/internal/cache"
	"aaveLens/internal/chain"
	"aaveLens/internal/config"
	"aaveLens/internal/history"
	"aaveLens/internal/metrics"
	"aaveLens/internal/pricing"
	"aaveLens/internal/registry"
	"aaveLens/internal/storage/postgres"
	"aaveLens/internal/tools"
)

func main() {
	root := &cobra.Command{
		Use:          "aavemcp",
		Short:        "Aave lending market MCP server",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the query tools over MCP stdio",
		RunE:  runServe,
	}
	addServeFlags(serveCmd)
	serveCmd.Flags().String("metrics-addr", "", "listen address for Prometheus metrics (empty disables)")
	root.AddCommand(serveCmd)

	callCmd := &cobra.Command{
		Use:   "call <tool> [json-arguments]",
		Short: "Invoke one tool and print its response envelope",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runCall,
	}
	addServeFlags(callCmd)
	root.AddCommand(callCmd)

	toolsCmd := &cobra.Command{
		Use:   "tools",
		Short: "Print the tool catalog",
		Args:  cobra.NoArgs,
		RunE:  runTools,
	}
	root.AddCommand(toolsCmd)

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Record reserve rate snapshots for the historical rates tool",
		RunE:  runSnapshot,
	}
	snapshotCmd.Flags().StringSlice("chain", []string{"1"}, "chain ids to snapshot (comma-separated)")
	snapshotCmd.Flags().StringSlice("asset", nil, "asset symbols to keep (comma-separated, empty means all)")
	snapshotCmd.Flags().String("out", "./data/rate_snapshots.jsonl", "output JSONL path (empty disables)")
	snapshotCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	snapshotCmd.Flags().Duration("interval", 0, "repeat every interval, 0 runs once")
	snapshotCmd.Flags().Duration("price-delay", 100*time.Millisecond, "simulated external price latency")
	snapshotCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(snapshotCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().Duration("cache-ttl", 60*time.Second, "reserve data cache freshness window")
	cmd.Flags().Duration("price-delay", 100*time.Millisecond, "simulated external price latency")
	cmd.Flags().Duration("history-delay", 150*time.Millisecond, "simulated historical rates latency")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN; when set historical rates come from recorded snapshots")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

// app is the wired service graph shared by serve and call.
type app struct {
	dispatcher *tools.Dispatcher
	pool       *chain.Pool
	store      *postgres.Store
}

func (a *app) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
}

func newApp(ctx context.Context, cfg config.ServeConfig, logger *zap.Logger, reg prometheus.Registerer) (*app, error) {
	book, err := registry.Default()
	if err != nil {
		return nil, fmt.Errorf("load address book: %w", err)
	}

	recorder := metrics.NewRecorder(reg)
	pool := chain.NewPool(cfg.RPCURLs, logger)
	a := &app{pool: pool}

	var source history.Source = history.NewSynthetic(cfg.HistoryDelay, time.Now().UnixNano())
	if cfg.PgDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PgDSN)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.store = store
		if err := store.EnsureSchema(ctx); err != nil {
			a.Close()
			return nil, err
		}
		source = history.NewRecorded(store)
	}

	svc, err := tools.NewService(tools.Deps{
		Registry: book,
		Market:   aave.NewProvider(pool),
		Prices:   pricing.NewStatic(pricing.DefaultPrices(), cfg.PriceDelay),
		History:  source,
		Cache:    cache.New(cfg.CacheTTL, cache.WithObserver(recorder)),
		Logger:   logger,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.dispatcher = tools.NewDispatcher(svc, logger, recorder)
	return a, nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
