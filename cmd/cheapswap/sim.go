package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cheapswap/internal/config"
	"cheapswap/internal/sim"
	"cheapswap/internal/storage"
)

func runSim(cmd *cobra.Command, _ []string) error {
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

	if cfg.OpsPath == "" {
		return fmt.Errorf("ops path is required")
	}
	if !common.IsHexAddress(cfg.FactoryAddress) {
		return fmt.Errorf("invalid factory address %q", cfg.FactoryAddress)
	}
	if !common.IsHexAddress(cfg.FeeTaker) {
		return fmt.Errorf("invalid fee taker %q", cfg.FeeTaker)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	world := sim.NewWorld(sim.WorldConfig{
		FactoryAddress:   common.HexToAddress(cfg.FactoryAddress),
		FeeTaker:         common.HexToAddress(cfg.FeeTaker),
		ProtocolMintFee:  cfg.ProtocolMintFee,
		SingleAssetLoans: cfg.SingleAssetLoans,
	})
	sink := storage.NewJsonlSink(cfg.EventsOut)

	runner := sim.NewRunner(sim.RunConfig{
		OpsPath:           cfg.OpsPath,
		BatchSize:         cfg.BatchSize,
		CheckpointPath:    cfg.Checkpoint,
		CheckpointEnabled: cfg.CheckpointEnabled,
		MaxRetries:        cfg.MaxRetries,
		RetryBackoff:      cfg.RetryBackoff,
	}, world, sink, logger)

	logger.Info("sim start",
		zap.String("ops", cfg.OpsPath),
		zap.String("events_out", cfg.EventsOut),
		zap.String("pairs_out", cfg.PairsOut),
		zap.Int("batch_size", cfg.BatchSize),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
		zap.Bool("protocol_mint_fee", cfg.ProtocolMintFee),
		zap.Bool("single_asset_loans", cfg.SingleAssetLoans),
	)

	if err := runner.Run(ctx); err != nil {
		return err
	}

	return writePairSnapshots(cfg.PairsOut, world)
}

func writePairSnapshots(path string, world *sim.World) error {
	if path == "" {
		return nil
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create pairs dir: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create pairs file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	fac := world.Factory()
	for i := 0; i < fac.AllPairsLength(); i++ {
		p, _ := fac.AllPairs(i)
		line, err := json.Marshal(p.Info())
		if err != nil {
			return fmt.Errorf("marshal pair info: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write pair info: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush pairs file: %w", err)
	}
	return nil
}
