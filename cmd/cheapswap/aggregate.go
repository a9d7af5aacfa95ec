package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cheapswap/internal/config"
	"cheapswap/internal/stats"
	"cheapswap/internal/storage/postgres"
)

func runAggregate(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.EventsIn == "" {
		return fmt.Errorf("input events path is required")
	}
	if cfg.Window <= 0 {
		return fmt.Errorf("window must be positive")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := postgres.NewStore(ctx, cfg.PgDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer store.Close()

	var fees map[string]uint16
	if cfg.PairsIn != "" {
		infos, err := stats.LoadPairInfos(cfg.PairsIn)
		if err != nil {
			return err
		}
		fees = stats.PairFees(infos)
		if err := store.UpsertPairs(ctx, infos); err != nil {
			return fmt.Errorf("store pairs: %w", err)
		}
	}

	aggregator := stats.NewAggregator(stats.Config{
		WindowSeconds: uint64(cfg.Window.Seconds()),
		BatchSize:     cfg.BatchSize,
		FeeBps:        fees,
	}, store, logger)
	aggregator.Events = store

	logger.Info("aggregate start",
		zap.String("in", cfg.EventsIn),
		zap.String("pairs", cfg.PairsIn),
		zap.Duration("window", cfg.Window),
		zap.Int("batch_size", cfg.BatchSize),
	)

	return aggregator.Run(ctx, cfg.EventsIn)
}
