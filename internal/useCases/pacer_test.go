package useCases

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larriantoniy/tg_group_joiner/internal/domain"
)

func TestDelayForFirstAttemptIsZero(t *testing.T) {
	p := NewPacer(discardLogger())
	policies := []domain.PacingPolicy{
		{},
		{BaseIntervalSeconds: 300},
		{BaseIntervalSeconds: 300, JitterEnabled: true},
	}
	for _, policy := range policies {
		assert.Zero(t, p.DelayFor(0, policy))
	}
}

func TestDelayForWithoutJitter(t *testing.T) {
	p := NewPacer(discardLogger())
	policy := domain.PacingPolicy{BaseIntervalSeconds: 2.5}
	for i := 1; i < 20; i++ {
		assert.Equal(t, 2500*time.Millisecond, p.DelayFor(i, policy))
	}
}

func TestDelayForJitterStaysInRange(t *testing.T) {
	p := NewPacer(discardLogger())
	p.rnd = rand.New(rand.NewPCG(1, 2)).Float64
	policy := domain.PacingPolicy{BaseIntervalSeconds: 10, JitterEnabled: true}

	lo := time.Duration(0.8 * 10 * float64(time.Second))
	hi := time.Duration(1.2 * 10 * float64(time.Second))
	seen := map[time.Duration]bool{}
	for i := 1; i <= 1000; i++ {
		d := p.DelayFor(i, policy)
		require.GreaterOrEqual(t, d, lo)
		require.LessOrEqual(t, d, hi)
		seen[d] = true
	}
	assert.Greater(t, len(seen), 1, "jitter should vary between calls")
}

func TestDelayForJitterBounds(t *testing.T) {
	p := NewPacer(discardLogger())
	policy := domain.PacingPolicy{BaseIntervalSeconds: 10, JitterEnabled: true}

	p.rnd = func() float64 { return 0 }
	assert.Equal(t, 8*time.Second, p.DelayFor(1, policy))

	p.rnd = func() float64 { return 0.5 }
	assert.Equal(t, 10*time.Second, p.DelayFor(1, policy))
}

func TestWait(t *testing.T) {
	p := NewPacer(discardLogger())

	t.Run("zero returns immediately", func(t *testing.T) {
		assert.NoError(t, p.Wait(context.Background(), 0))
	})

	t.Run("short delay elapses", func(t *testing.T) {
		start := time.Now()
		require.NoError(t, p.Wait(context.Background(), 20*time.Millisecond))
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	})

	t.Run("cancelled before start", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, p.Wait(ctx, 0), context.Canceled)
	})

	t.Run("cancelled while waiting", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, p.Wait(ctx, time.Hour), context.DeadlineExceeded)
	})
}
