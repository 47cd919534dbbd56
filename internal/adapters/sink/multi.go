// Package sink содержит реализации ports.ResultSink: лог, файлы отчётов, SQLite.
package sink

import (
	"context"
	"errors"

	"github.com/larriantoniy/tg_group_joiner/internal/domain"
	"github.com/larriantoniy/tg_group_joiner/internal/ports"
)

// Multi раздаёт события всем sink'ам по порядку. Ошибка одного не мешает остальным.
type Multi []ports.ResultSink

var _ ports.ResultSink = Multi(nil)

func (m Multi) OnOutcome(ctx context.Context, run domain.RunInfo, outcome domain.JoinOutcome) error {
	var errs []error
	for _, s := range m {
		if err := s.OnOutcome(ctx, run, outcome); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) OnRunComplete(ctx context.Context, run domain.RunInfo, summary domain.Summary) error {
	var errs []error
	for _, s := range m {
		if err := s.OnRunComplete(ctx, run, summary); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
