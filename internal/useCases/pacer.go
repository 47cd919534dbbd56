package useCases

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/larriantoniy/tg_group_joiner/internal/domain"
)

// Pacer считает паузу перед попыткой и выдерживает её.
type Pacer struct {
	log *slog.Logger
	rnd func() float64 // [0,1)
}

func NewPacer(log *slog.Logger) *Pacer {
	return &Pacer{log: log, rnd: rand.Float64}
}

// DelayFor: перед первой попыткой не ждём, дальше base (с джиттером 0.8–1.2).
func (p *Pacer) DelayFor(index int, policy domain.PacingPolicy) time.Duration {
	if index <= 0 || policy.BaseIntervalSeconds <= 0 {
		return 0
	}

	seconds := policy.BaseIntervalSeconds
	if policy.JitterEnabled {
		seconds *= domain.JitterMin + p.rnd()*(domain.JitterMax-domain.JitterMin)
	}
	return time.Duration(seconds * float64(time.Second))
}

// Wait блокирует на d или до отмены ctx. Отмена проверяется до старта таймера.
func (p *Pacer) Wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}

	p.log.Info("Pacing delay before next join", "wait", d)

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
