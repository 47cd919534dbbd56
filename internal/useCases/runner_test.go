package useCases

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larriantoniy/tg_group_joiner/internal/domain"
	"github.com/larriantoniy/tg_group_joiner/internal/ports"
)

func newTestRunner(store *memCredStore, gw *fakeGateway, pacer *recordingPacer, factoryErr error) *Runner {
	factory := func(_ *domain.Credentials, _ *slog.Logger) (ports.Session, error) {
		if factoryErr != nil {
			return nil, factoryErr
		}
		return gw, nil
	}
	return NewRunner(store, &fakeSink{}, pacer, discardLogger(), factory)
}

func mainStore() *memCredStore {
	return &memCredStore{creds: map[string]domain.Credentials{
		"main": {SessionName: "main", APIID: 1, APIHash: "hash"},
	}}
}

func TestRunnerPreconditions(t *testing.T) {
	targets := domain.ClassifyAll([]string{"https://t.me/a"})

	tests := []struct {
		name       string
		req        RunRequest
		factoryErr error
		wantErr    error
	}{
		{name: "no targets", req: RunRequest{Session: "main"}, wantErr: ErrNoTargets},
		{name: "unknown session", req: RunRequest{Session: "ghost", Targets: targets}, wantErr: ErrNoSession},
		{name: "session cannot open", req: RunRequest{Session: "main", Targets: targets}, factoryErr: errors.New("unauthorized"), wantErr: ErrNoSession},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newFakeGateway()
			runs, err := newTestRunner(mainStore(), gw, newRecordingPacer(), tt.factoryErr).Run(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, runs)
			assert.Empty(t, gw.calls)
		})
	}
}

func TestRunnerSingleRound(t *testing.T) {
	store := mainStore()
	gw := newFakeGateway()
	targets := domain.ClassifyAll([]string{"https://t.me/a", "https://t.me/+b"})

	runs, err := newTestRunner(store, gw, newRecordingPacer(), nil).Run(context.Background(), RunRequest{
		Session: "main",
		Targets: targets,
	})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Len(t, runs[0].Results(), 2)
	assert.True(t, gw.closed)
	assert.NotNil(t, store.creds["main"].LastUsed)
}

func TestRunnerRetriesFailedTargets(t *testing.T) {
	gw := newFakeGateway()
	gw.joinErr["b"] = &ports.FloodWaitError{Seconds: 30}
	gw.joinErr["c"] = ports.ErrBanned
	gw.joinErr["d"] = errors.New("timeout")
	pacer := newRecordingPacer()
	targets := domain.ClassifyAll([]string{"https://t.me/a", "https://t.me/b", "https://t.me/c", "https://t.me/d"})

	runs, err := newTestRunner(mainStore(), gw, pacer, nil).Run(context.Background(), RunRequest{
		Session:    "main",
		Targets:    targets,
		Policy:     domain.PacingPolicy{BaseIntervalSeconds: 10},
		MaxRetries: 2,
	})
	require.NoError(t, err)
	require.Len(t, runs, 3)

	// banned не повторяется
	assert.Equal(t, []domain.JoinTarget{targets[1], targets[3]}, runs[1].Targets())
	assert.Equal(t, []domain.JoinTarget{targets[1], targets[3]}, runs[2].Targets())
	for i, run := range runs {
		assert.Equal(t, i+1, run.Info().Round)
		assert.True(t, run.Done())
	}

	// round1: 0,10,30(flood b),10; пауза перед round2: 10; round2: 0,30(flood b);
	// пауза перед round3: 10
	assert.Equal(t, []time.Duration{
		0, 10 * time.Second, 30 * time.Second, 10 * time.Second,
		10 * time.Second,
		0, 30 * time.Second,
		10 * time.Second,
		0, 30 * time.Second,
	}, pacer.waits)
}

func TestRunnerStopsRetryingWhenNothingLeft(t *testing.T) {
	gw := newFakeGateway()
	runs, err := newTestRunner(mainStore(), gw, newRecordingPacer(), nil).Run(context.Background(), RunRequest{
		Session:    "main",
		Targets:    domain.ClassifyAll([]string{"https://t.me/a"}),
		MaxRetries: 5,
	})
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestRunnerContinuesRoundNumbering(t *testing.T) {
	gw := newFakeGateway()
	gw.joinErr["a"] = errors.New("timeout")
	runs, err := newTestRunner(mainStore(), gw, newRecordingPacer(), nil).Run(context.Background(), RunRequest{
		Session:    "main",
		Targets:    domain.ClassifyAll([]string{"https://t.me/a"}),
		MaxRetries: 1,
		StartRound: 3,
	})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 3, runs[0].Info().Round)
	assert.Equal(t, 4, runs[1].Info().Round)
}

func TestRunnerUpdatesLastUsedWithoutStoredAPI(t *testing.T) {
	// api_id/api_hash у аккаунта нет, их подставляет фабрика из конфига
	store := &memCredStore{creds: map[string]domain.Credentials{
		"main": {SessionName: "main"},
	}}
	gw := newFakeGateway()

	_, err := newTestRunner(store, gw, newRecordingPacer(), nil).Run(context.Background(), RunRequest{
		Session: "main",
		Targets: domain.ClassifyAll([]string{"https://t.me/a"}),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, store.saved)
	assert.NotNil(t, store.creds["main"].LastUsed)
}
