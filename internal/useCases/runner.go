package useCases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/larriantoniy/tg_group_joiner/internal/domain"
	"github.com/larriantoniy/tg_group_joiner/internal/ports"
)

// SessionFactory открывает авторизованную сессию по сохранённым данным аккаунта.
type SessionFactory func(creds *domain.Credentials, log *slog.Logger) (ports.Session, error)

type Runner struct {
	creds   ports.CredentialStore
	sink    ports.ResultSink
	pacer   Waiter
	log     *slog.Logger
	factory SessionFactory
	now     func() time.Time
}

func NewRunner(
	creds ports.CredentialStore,
	sink ports.ResultSink,
	pacer Waiter,
	log *slog.Logger,
	factory SessionFactory,
) *Runner {
	return &Runner{creds: creds, sink: sink, pacer: pacer, log: log, factory: factory, now: time.Now}
}

type RunRequest struct {
	Session string
	Targets []domain.JoinTarget
	Policy  domain.PacingPolicy
	// MaxRetries: сколько раз перезапускать rate_limited/failed цели новым прогоном
	MaxRetries int
	// StartRound: номер первого раунда; 0 значит 1. Для `retry` продолжаем нумерацию старого прогона.
	StartRound int
}

// Run открывает сессию аккаунта и гоняет цели, затем повторяет неудачные.
// Ошибки предусловий (нет сессии, нет целей, кривая политика) возвращаются до первой попытки.
func (r *Runner) Run(ctx context.Context, req RunRequest) ([]*domain.BatchRun, error) {
	if len(req.Targets) == 0 {
		return nil, ErrNoTargets
	}
	if err := req.Policy.Validate(); err != nil {
		return nil, err
	}

	log := r.log.With("session", req.Session)

	creds, err := r.creds.Load(ctx, req.Session)
	if errors.Is(err, ports.ErrCredentialsNotFound) {
		return nil, fmt.Errorf("%w: no saved credentials for session %q", ErrNoSession, req.Session)
	}
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}

	sess, err := r.factory(creds, log)
	if err != nil {
		return nil, fmt.Errorf("%w: open session %q: %v", ErrNoSession, req.Session, err)
	}
	defer func() {
		sess.Close()
		log.Info("session closed")
	}()

	now := r.now()
	creds.LastUsed = &now
	if err := r.creds.Save(ctx, *creds); err != nil {
		log.Warn("update last_used failed", "error", err)
	}

	joiner := NewJoiner(sess, r.sink, r.pacer, log)
	joiner.now = r.now

	var runs []*domain.BatchRun
	targets := req.Targets
	start := max(req.StartRound, 1)
	for round := start; ; round++ {
		run := domain.NewBatchRun(req.Session, round, targets, req.Policy, r.now())
		runs = append(runs, run)

		if err := joiner.Run(ctx, run); err != nil {
			return runs, err
		}

		targets = run.Retryable()
		if len(targets) == 0 || round-start >= req.MaxRetries {
			break
		}

		wait := max(r.pacer.DelayFor(1, req.Policy), run.PendingWait())
		log.Info("Retrying failed targets", "round", round+1, "targets", len(targets), "wait", wait)
		if err := r.pacer.Wait(ctx, wait); err != nil {
			return runs, err
		}
	}

	return runs, nil
}
