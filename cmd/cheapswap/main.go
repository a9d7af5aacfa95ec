package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "cheapswap",
		Short:        "Cheapswap exchange pair engine",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	simCmd := &cobra.Command{
		Use:   "sim",
		Short: "Replay a scenario file against an in-memory exchange",
		RunE:  runSim,
	}

	simCmd.Flags().String("ops", "", "input operations JSONL path")
	simCmd.Flags().String("events-out", "./data/events.jsonl", "output events JSONL path")
	simCmd.Flags().String("pairs-out", "./data/pairs.jsonl", "output pair snapshots JSONL path")
	simCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	simCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	simCmd.Flags().Int("batch-size", 100, "ops per event flush")
	simCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	simCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	simCmd.Flags().String("factory-address", "0x0000000000000000000000000000000000001000", "registry identity")
	simCmd.Flags().String("fee-taker", "0x0000000000000000000000000000000000001001", "initial protocol fee recipient")
	simCmd.Flags().Bool("protocol-mint-fee", false, "accrue protocol fees on mint/burn")
	simCmd.Flags().Bool("single-asset-loans", false, "restrict flashloans to one asset per call")
	simCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(simCmd)

	aggregateCmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Aggregate events into pair window metrics",
		RunE:  runAggregate,
	}

	aggregateCmd.Flags().String("in", "", "input events JSONL")
	aggregateCmd.Flags().String("pairs", "", "pair snapshots JSONL for fee rates")
	aggregateCmd.Flags().String("window", "5m", "aggregation window (e.g. 1m, 5m, 1h)")
	aggregateCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	aggregateCmd.Flags().Int("batch-size", 1000, "batch size for DB writes")
	aggregateCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(aggregateCmd)

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a hypothetical swap against given reserves",
		RunE:  runQuote,
	}

	quoteCmd.Flags().String("amount-in", "", "exact input amount")
	quoteCmd.Flags().String("amount-out", "", "exact output amount")
	quoteCmd.Flags().String("reserve-in", "", "input-side reserve")
	quoteCmd.Flags().String("reserve-out", "", "output-side reserve")
	quoteCmd.Flags().Uint16("fee-bps", 30, "total input-side fee in basis points")

	root.AddCommand(quoteCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
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
