package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"aaveLens/internal/aave"
	"aaveLens/internal/cache"
	"aaveLens/internal/chain"
	"aaveLens/internal/config"
	"aaveLens/internal/history"
	"aaveLens/internal/pricing"
	"aaveLens/internal/registry"
	"aaveLens/internal/storage"
	"aaveLens/internal/storage/postgres"
	"aaveLens/internal/tools"
)

func runSnapshot(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadSnapshot(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	book, err := registry.Default()
	if err != nil {
		return fmt.Errorf("load address book: %w", err)
	}
	for _, id := range cfg.ChainIDs {
		if !book.Supports(id) {
			return fmt.Errorf("chain %d: %w", id, registry.ErrUnsupportedChain)
		}
	}

	pool := chain.NewPool(cfg.RPCURLs, logger)
	defer pool.Close()

	svc, err := tools.NewService(tools.Deps{
		Registry: book,
		Market:   aave.NewProvider(pool),
		Prices:   pricing.NewStatic(pricing.DefaultPrices(), cfg.PriceDelay),
		History:  history.NewSynthetic(0, 0),
		Cache:    cache.New(cache.DefaultTTL),
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	var sinks storage.Fanout
	if cfg.Out != "" {
		sinks = append(sinks, storage.NewJsonlStorage(cfg.Out))
	}
	var store *postgres.Store
	if cfg.PgDSN != "" {
		store, err = postgres.NewStore(ctx, cfg.PgDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		sinks = append(sinks, store)
	}

	logger.Info("snapshot start",
		zap.Int("chains", len(cfg.ChainIDs)),
		zap.Strings("assets", cfg.Assets),
		zap.String("out", cfg.Out),
		zap.Bool("postgres", store != nil),
		zap.Duration("interval", cfg.Interval),
	)

	snap := func() error {
		var errs []error
		for _, id := range cfg.ChainIDs {
			if err := snapshotChain(ctx, svc, sinks, store, id, cfg.Assets, cfg.Interval, logger); err != nil {
				logger.Error("snapshot failed", zap.Uint64("chain_id", id), zap.Error(err))
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	if cfg.Interval <= 0 {
		return snap()
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()
	for {
		// failures are logged per chain; the loop keeps going until interrupted
		_ = snap()
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func snapshotChain(ctx context.Context, svc *tools.Service, sinks storage.Storage, store *postgres.Store, chainID uint64, assets []string, interval time.Duration, logger *zap.Logger) error {
	stateName := "chain_" + strconv.FormatUint(chainID, 10)
	if store != nil {
		last, ok, err := store.LoadState(ctx, stateName)
		if err != nil {
			return fmt.Errorf("load snapshot state for chain %d: %w", chainID, err)
		}
		if ok && !snapshotDue(last, interval, time.Now()) {
			logger.Info("snapshot skipped", zap.Uint64("chain_id", chainID), zap.Time("last_captured_at", last))
			return nil
		}
	}

	snapshots, err := svc.RateSnapshots(ctx, chainID, assets)
	if err != nil {
		return err
	}
	if err := sinks.PutRateSnapshots(ctx, snapshots); err != nil {
		return fmt.Errorf("write snapshots for chain %d: %w", chainID, err)
	}
	if store != nil && len(snapshots) > 0 {
		if err := store.SaveState(ctx, stateName, snapshots[0].CapturedAt); err != nil {
			return fmt.Errorf("save snapshot state for chain %d: %w", chainID, err)
		}
	}

	logger.Info("snapshot written", zap.Uint64("chain_id", chainID), zap.Int("reserves", len(snapshots)))
	return nil
}

// snapshotDue reports whether a chain last captured at last should be captured
// again. One-shot runs always capture. Looping runs skip a chain captured less
// than half an interval ago, which happens when several snapshot processes
// share a database or one restarts mid-interval.
func snapshotDue(last time.Time, interval time.Duration, now time.Time) bool {
	if interval <= 0 {
		return true
	}
	return now.Sub(last) >= interval/2
}
