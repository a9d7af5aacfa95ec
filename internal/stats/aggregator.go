package stats

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"

	"cheapswap/internal/model"
	"cheapswap/internal/pair"
)

// MetricsStore persists aggregated window metrics.
type MetricsStore interface {
	UpsertWindowMetrics(ctx context.Context, metrics []model.PairWindowMetrics) error
}

// EventStore persists raw event records.
type EventStore interface {
	InsertEvents(ctx context.Context, events []model.EventRecord) error
}

// Config controls aggregation behavior.
type Config struct {
	WindowSeconds uint64
	BatchSize     int
	// FeeBps maps pair addresses to the total input-side fee used for
	// swap fee estimation. Pairs not listed use DefaultFeeBps.
	FeeBps        map[string]uint16
	DefaultFeeBps uint16
}

// Aggregator folds event records into per-pair window metrics. When Events
// is set, scanned records are also mirrored to it in input order.
type Aggregator struct {
	cfg          Config
	store        MetricsStore
	logger       *zap.Logger
	accumulators map[string]*Accumulator

	Events EventStore
}

func NewAggregator(cfg Config, store MetricsStore, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultFeeBps == 0 {
		cfg.DefaultFeeBps = pair.BaseSwapFeeBps
	}
	return &Aggregator{
		cfg:          cfg,
		store:        store,
		logger:       logger,
		accumulators: make(map[string]*Accumulator),
	}
}

// Run aggregates an events JSONL file and flushes metrics to the store.
func (a *Aggregator) Run(ctx context.Context, inputPath string) error {
	if a.store == nil {
		return fmt.Errorf("store is nil")
	}
	if a.cfg.WindowSeconds == 0 {
		return fmt.Errorf("window seconds must be > 0")
	}
	if a.cfg.BatchSize <= 0 {
		a.cfg.BatchSize = 1000
	}

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open events file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	var lines uint64
	var pending []model.EventRecord
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
		lines++

		var record model.EventRecord
		if err := json.Unmarshal(line, &record); err != nil {
			return fmt.Errorf("parse event line %d: %w", lines, err)
		}

		if err := a.addRecord(record); err != nil {
			a.logger.Warn("skip event", zap.Uint64("seq", record.Seq), zap.Error(err))
		}

		if a.Events != nil {
			pending = append(pending, record)
			if len(pending) >= a.cfg.BatchSize {
				if err := a.Events.InsertEvents(ctx, pending); err != nil {
					return fmt.Errorf("store events: %w", err)
				}
				pending = pending[:0]
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read events file: %w", err)
	}

	if a.Events != nil && len(pending) > 0 {
		if err := a.Events.InsertEvents(ctx, pending); err != nil {
			return fmt.Errorf("store events: %w", err)
		}
	}

	if err := a.flush(ctx); err != nil {
		return err
	}

	a.logger.Info("aggregation complete", zap.Uint64("events", lines))
	return nil
}

func (a *Aggregator) addRecord(record model.EventRecord) error {
	if record.EventName != model.EventSwap && record.EventName != model.EventFlashloan {
		return nil
	}

	windowStart := record.Timestamp - record.Timestamp%a.cfg.WindowSeconds
	key := fmt.Sprintf("%s:%d", record.Emitter, windowStart)
	acc, ok := a.accumulators[key]
	if !ok {
		acc = NewAccumulator(record.Emitter, windowStart, windowStart+a.cfg.WindowSeconds)
		a.accumulators[key] = acc
	}
	return acc.AddEvent(record, a.feeBps(record.Emitter))
}

func (a *Aggregator) feeBps(pairAddress string) uint16 {
	if bps, ok := a.cfg.FeeBps[pairAddress]; ok {
		return bps
	}
	return a.cfg.DefaultFeeBps
}

func (a *Aggregator) flush(ctx context.Context) error {
	metrics := make([]model.PairWindowMetrics, 0, len(a.accumulators))
	for _, acc := range a.accumulators {
		metrics = append(metrics, acc.Metrics(int64(a.cfg.WindowSeconds)))
	}
	sort.Slice(metrics, func(i, j int) bool {
		if metrics[i].PairAddress != metrics[j].PairAddress {
			return metrics[i].PairAddress < metrics[j].PairAddress
		}
		return metrics[i].WindowStart < metrics[j].WindowStart
	})

	for start := 0; start < len(metrics); start += a.cfg.BatchSize {
		end := start + a.cfg.BatchSize
		if end > len(metrics) {
			end = len(metrics)
		}
		if err := a.store.UpsertWindowMetrics(ctx, metrics[start:end]); err != nil {
			return fmt.Errorf("store metrics: %w", err)
		}
	}
	return nil
}

// LoadPairInfos reads a pairs JSONL file of model.PairInfo lines.
func LoadPairInfos(path string) ([]model.PairInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pairs file: %w", err)
	}
	defer file.Close()

	var infos []model.PairInfo
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var info model.PairInfo
		if err := json.Unmarshal(line, &info); err != nil {
			return nil, fmt.Errorf("parse pair info: %w", err)
		}
		infos = append(infos, info)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read pairs file: %w", err)
	}
	return infos, nil
}

// PairFees returns the total input-side fee per pair for swap fee
// estimation. The fee is charged on the input side; the higher of the two
// per-token fees is reported when they differ.
func PairFees(infos []model.PairInfo) map[string]uint16 {
	fees := make(map[string]uint16, len(infos))
	for _, info := range infos {
		fee := info.UserFee0Bps
		if info.UserFee1Bps > fee {
			fee = info.UserFee1Bps
		}
		fees[info.Address] = pair.BaseSwapFeeBps + fee
	}
	return fees
}

// LoadPairFees reads a pairs JSONL file and returns the total input-side
// fee per pair.
func LoadPairFees(path string) (map[string]uint16, error) {
	infos, err := LoadPairInfos(path)
	if err != nil {
		return nil, err
	}
	return PairFees(infos), nil
}
