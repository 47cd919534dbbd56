package sink

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"github.com/larriantoniy/tg_group_joiner/internal/domain"
	"github.com/larriantoniy/tg_group_joiner/internal/ports"
	"github.com/larriantoniy/tg_group_joiner/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

var ErrRunNotFound = errors.New("run not found")

// RunRecord описывает прогон из истории.
type RunRecord struct {
	domain.RunInfo
	FinishedAt *time.Time
	Successful int
	Failed     int
}

// SQLite хранит историю прогонов: runs + outcomes. Из неё берутся цели для `joiner retry`.
type SQLite struct {
	db *sql.DB
}

var _ ports.ResultSink = (*SQLite)(nil)

// NewSQLite открывает базу по dsn и накатывает миграции. log может быть nil.
func NewSQLite(dsn string, log *slog.Logger) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// одно соединение: иначе :memory: у каждого своя
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(db, log); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) OnOutcome(ctx context.Context, run domain.RunInfo, o domain.JoinOutcome) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := ensureRun(ctx, tx, run); err != nil {
		return err
	}

	var seq int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM outcomes WHERE run_id = ?`, run.ID,
	).Scan(&seq); err != nil {
		return fmt.Errorf("count outcomes: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO outcomes (run_id, seq, link, kind, identifier, status, detail, wait_seconds,
		                       group_name, member_count, attempted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, seq, o.Target.RawLink, string(o.Target.Kind), o.Target.Identifier,
		string(o.Status), o.Detail, o.WaitSeconds, o.GroupName, o.MemberCount,
		o.AttemptedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert outcome: %w", err)
	}
	return tx.Commit()
}

func (s *SQLite) OnRunComplete(ctx context.Context, run domain.RunInfo, sum domain.Summary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// прогон мог закончиться до первой попытки
	if err := ensureRun(ctx, tx, run); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, successful = ?, failed = ? WHERE id = ?`,
		time.Now().UTC().Format(timeLayout), sum.Successful, sum.Failed, run.ID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return tx.Commit()
}

func ensureRun(ctx context.Context, tx *sql.Tx, run domain.RunInfo) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, session, round, total, base_interval_seconds, jitter_enabled,
		                   flood_wait_multiplier, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		run.ID, run.Session, run.Round, run.Total, run.Policy.BaseIntervalSeconds,
		boolToInt(run.Policy.JitterEnabled), run.Policy.FloodWaitMultiplier,
		run.StartedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

const runColumns = `id, session, round, total, base_interval_seconds, jitter_enabled,
	flood_wait_multiplier, started_at, finished_at, successful, failed`

// ListRuns возвращает последние прогоны, свежие первыми. При limit <= 0 отдаём все.
func (s *SQLite) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, round DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *SQLite) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Outcomes возвращает результаты прогона в порядке попыток.
func (s *SQLite) Outcomes(ctx context.Context, runID string) ([]domain.JoinOutcome, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT link, kind, identifier, status, detail, wait_seconds, group_name, member_count, attempted_at
		 FROM outcomes WHERE run_id = ? ORDER BY seq`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.JoinOutcome
	for rows.Next() {
		var (
			o                domain.JoinOutcome
			kind, status, at string
			groupName        sql.NullString
			memberCount      sql.NullInt64
		)
		if err := rows.Scan(&o.Target.RawLink, &kind, &o.Target.Identifier, &status, &o.Detail,
			&o.WaitSeconds, &groupName, &memberCount, &at); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		o.Target.Kind = domain.TargetKind(kind)
		o.Status = domain.JoinStatus(status)
		if groupName.Valid {
			v := groupName.String
			o.GroupName = &v
		}
		if memberCount.Valid {
			v := int(memberCount.Int64)
			o.MemberCount = &v
		}
		o.AttemptedAt, _ = time.Parse(timeLayout, at)
		out = append(out, o)
	}
	return out, rows.Err()
}

// RetryableTargets: цели прогона со статусом rate_limited/failed.
func (s *SQLite) RetryableTargets(ctx context.Context, runID string) ([]domain.JoinTarget, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}
	outcomes, err := s.Outcomes(ctx, runID)
	if err != nil {
		return nil, err
	}
	var targets []domain.JoinTarget
	for _, o := range outcomes {
		if o.Status.IsRetryable() {
			targets = append(targets, o.Target)
		}
	}
	return targets, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (RunRecord, error) {
	var (
		r                  RunRecord
		jitter             int
		started            string
		finished           sql.NullString
		successful, failed sql.NullInt64
	)
	err := sc.Scan(&r.ID, &r.Session, &r.Round, &r.Total, &r.Policy.BaseIntervalSeconds, &jitter,
		&r.Policy.FloodWaitMultiplier, &started, &finished, &successful, &failed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r, err
		}
		return r, fmt.Errorf("scan run: %w", err)
	}
	r.Policy.JitterEnabled = jitter != 0
	r.StartedAt, _ = time.Parse(timeLayout, started)
	if finished.Valid {
		t, _ := time.Parse(timeLayout, finished.String)
		r.FinishedAt = &t
	}
	r.Successful = int(successful.Int64)
	r.Failed = int(failed.Int64)
	return r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
