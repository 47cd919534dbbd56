package ports

import (
	"context"

	"github.com/larriantoniy/tg_group_joiner/internal/domain"
)

// ResultSink получает результаты по мере готовности и итог прогона.
type ResultSink interface {
	OnOutcome(ctx context.Context, run domain.RunInfo, outcome domain.JoinOutcome) error
	OnRunComplete(ctx context.Context, run domain.RunInfo, summary domain.Summary) error
}
