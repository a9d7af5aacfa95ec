package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cheapswap/internal/model"
)

// Store provides Postgres persistence for events, pairs, and metrics.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InsertEvents inserts event records, skipping sequence numbers already
// present.
func (s *Store) InsertEvents(ctx context.Context, events []model.EventRecord) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, event := range events {
		batch.Queue(`
			INSERT INTO events (
				seq, ts, emitter, event_name, decoded, created_at
			) VALUES ($1, $2, $3, $4, $5, now())
			ON CONFLICT (seq) DO NOTHING
		`,
			int64(event.Seq),
			int64(event.Timestamp),
			event.Emitter,
			event.EventName,
			[]byte(event.Decoded),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range events {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// UpsertPairs inserts or updates pair metadata snapshots.
func (s *Store) UpsertPairs(ctx context.Context, pairs []model.PairInfo) error {
	if len(pairs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, info := range pairs {
		batch.Queue(`
			INSERT INTO pairs (
				pair_address, token0, token1, fee_owner, user_fee0_bps, user_fee1_bps,
				reserve0, reserve1, total_shares, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
			ON CONFLICT (pair_address)
			DO UPDATE SET
				fee_owner = EXCLUDED.fee_owner,
				user_fee0_bps = EXCLUDED.user_fee0_bps,
				user_fee1_bps = EXCLUDED.user_fee1_bps,
				reserve0 = EXCLUDED.reserve0,
				reserve1 = EXCLUDED.reserve1,
				total_shares = EXCLUDED.total_shares,
				updated_at = now()
		`,
			info.Address,
			info.Token0,
			info.Token1,
			info.FeeOwner,
			int32(info.UserFee0Bps),
			int32(info.UserFee1Bps),
			info.Reserve0,
			info.Reserve1,
			info.TotalShares,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range pairs {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// UpsertWindowMetrics inserts or updates window metrics.
func (s *Store) UpsertWindowMetrics(ctx context.Context, metrics []model.PairWindowMetrics) error {
	if len(metrics) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, m := range metrics {
		batch.Queue(`
			INSERT INTO pair_window_metrics (
				pair_address, window_size_seconds, window_start_ts, window_end_ts,
				swap_count, volume0, volume1, fee0, fee1,
				loan_count, loan_fee0, loan_fee1, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,now(),now())
			ON CONFLICT (pair_address, window_size_seconds, window_start_ts)
			DO UPDATE SET
				window_end_ts = EXCLUDED.window_end_ts,
				swap_count = EXCLUDED.swap_count,
				volume0 = EXCLUDED.volume0,
				volume1 = EXCLUDED.volume1,
				fee0 = EXCLUDED.fee0,
				fee1 = EXCLUDED.fee1,
				loan_count = EXCLUDED.loan_count,
				loan_fee0 = EXCLUDED.loan_fee0,
				loan_fee1 = EXCLUDED.loan_fee1,
				updated_at = now()
		`,
			m.PairAddress,
			m.WindowSizeSecs,
			int64(m.WindowStart),
			int64(m.WindowEnd),
			int64(m.SwapCount),
			m.Volume0,
			m.Volume1,
			m.Fee0,
			m.Fee1,
			int64(m.LoanCount),
			m.LoanFee0,
			m.LoanFee1,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range metrics {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
