package sink

import (
	"context"
	"log/slog"

	"github.com/larriantoniy/tg_group_joiner/internal/domain"
)

// Log пишет прогресс и итог прогона в slog.
type Log struct {
	log *slog.Logger
}

func NewLog(log *slog.Logger) *Log {
	return &Log{log: log}
}

func (l *Log) OnOutcome(_ context.Context, run domain.RunInfo, o domain.JoinOutcome) error {
	l.log.Debug("Progress",
		"run_id", run.ID,
		"link", o.Target.RawLink,
		"status", o.Status,
	)
	return nil
}

func (l *Log) OnRunComplete(_ context.Context, run domain.RunInfo, s domain.Summary) error {
	args := []any{
		"run_id", run.ID,
		"session", run.Session,
		"round", run.Round,
		"planned", run.Total,
		"attempted", s.Total,
		"successful", s.Successful,
		"failed", s.Failed,
	}
	for _, st := range domain.Statuses {
		if n := s.ByStatus[st]; n > 0 {
			args = append(args, string(st), n)
		}
	}
	l.log.Info("Run complete", args...)
	return nil
}
