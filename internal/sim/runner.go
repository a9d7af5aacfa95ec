package sim

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"cheapswap/internal/storage"
)

// RunConfig holds runtime settings for a scenario replay.
type RunConfig struct {
	OpsPath           string
	BatchSize         int
	CheckpointPath    string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
}

// Runner replays a scenario file against a world and streams the resulting
// events to a sink.
//
// On resume, ops at or below the checkpoint are re-applied to rebuild the
// in-memory state but their events are discarded; emission restarts at the
// first unprocessed op.
type Runner struct {
	cfg        RunConfig
	world      *World
	sink       storage.EventSink
	logger     *zap.Logger
	checkpoint *CheckpointStore
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(cfg RunConfig, world *World, sink storage.EventSink, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:        cfg,
		world:      world,
		sink:       sink,
		logger:     logger,
		checkpoint: NewCheckpointStore(cfg.CheckpointPath, cfg.CheckpointEnabled),
	}
}

// Run executes the replay loop.
func (r *Runner) Run(ctx context.Context) error {
	if r.world == nil {
		return fmt.Errorf("world is nil")
	}
	if r.sink == nil {
		return fmt.Errorf("sink is nil")
	}
	if r.cfg.BatchSize <= 0 {
		r.cfg.BatchSize = 100
	}

	var resumeAfter uint64
	var resuming bool
	if r.checkpoint != nil {
		cp, ok, err := r.checkpoint.Load()
		if err != nil {
			return err
		}
		if ok {
			resumeAfter = cp.LastAppliedOp
			resuming = true
			r.logger.Info("resume from checkpoint", zap.Uint64("last_applied", resumeAfter))
		}
	}

	file, err := os.Open(r.cfg.OpsPath)
	if err != nil {
		return fmt.Errorf("open ops file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	var index uint64
	var applied, failed, pending int
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		index++

		var op Op
		if err := json.Unmarshal(line, &op); err != nil {
			return fmt.Errorf("parse op %d: %w", index, err)
		}

		if err := r.world.Apply(op); err != nil {
			// Engine failures are part of the scenario: the op left no
			// state change, so record and move on.
			failed++
			r.logger.Warn("op failed", zap.Uint64("op", index), zap.String("kind", op.Op), zap.Error(err))
		} else {
			applied++
		}

		if resuming && index <= resumeAfter {
			r.world.Journal().Discard()
			continue
		}

		pending++
		if pending >= r.cfg.BatchSize {
			if err := r.flush(ctx, index); err != nil {
				return err
			}
			pending = 0
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read ops file: %w", err)
	}

	if err := r.flush(ctx, index); err != nil {
		return err
	}

	r.logger.Info("replay complete",
		zap.Uint64("ops", index),
		zap.Int("applied", applied),
		zap.Int("failed", failed),
	)
	return nil
}

func (r *Runner) flush(ctx context.Context, lastApplied uint64) error {
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		if err := r.world.Journal().Flush(r.sink); err != nil {
			r.logger.Warn("event flush failed", zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store events: %w", err)
	}

	if r.checkpoint != nil {
		if err := r.checkpoint.Save(lastApplied); err != nil {
			return err
		}
	}
	return nil
}
