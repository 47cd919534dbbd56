package useCases

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/larriantoniy/tg_group_joiner/internal/domain"
	"github.com/larriantoniy/tg_group_joiner/internal/ports"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeGateway struct {
	mu      sync.Mutex
	resolve map[string]ports.ChatInfo
	joinErr map[string]error
	titles  map[string]string
	calls   []string
	onJoin  func(id string) // вызывается после каждой попытки join/import
	closed  bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		resolve: map[string]ports.ChatInfo{},
		joinErr: map[string]error{},
		titles:  map[string]string{},
	}
}

func (g *fakeGateway) ResolvePublic(_ context.Context, username string) (ports.ChatInfo, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "resolve:"+username)
	info, ok := g.resolve[username]
	if !ok {
		return ports.ChatInfo{}, ports.ErrNotAvailable
	}
	return info, nil
}

func (g *fakeGateway) JoinPublic(_ context.Context, username string) error {
	g.mu.Lock()
	g.calls = append(g.calls, "join:"+username)
	err := g.joinErr[username]
	g.mu.Unlock()
	if g.onJoin != nil {
		g.onJoin(username)
	}
	return err
}

func (g *fakeGateway) ImportInvite(_ context.Context, hash string) (string, error) {
	g.mu.Lock()
	g.calls = append(g.calls, "import:"+hash)
	err := g.joinErr[hash]
	title := g.titles[hash]
	g.mu.Unlock()
	if g.onJoin != nil {
		g.onJoin(hash)
	}
	if err != nil {
		return "", err
	}
	return title, nil
}

func (g *fakeGateway) Close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
}

type fakeSink struct {
	outcomes  []domain.JoinOutcome
	summaries []domain.Summary
	ctxErrs   []error // ctx.Err() на момент каждого OnOutcome
	err       error
}

func (s *fakeSink) OnOutcome(ctx context.Context, _ domain.RunInfo, o domain.JoinOutcome) error {
	s.outcomes = append(s.outcomes, o)
	s.ctxErrs = append(s.ctxErrs, ctx.Err())
	return s.err
}

func (s *fakeSink) OnRunComplete(_ context.Context, _ domain.RunInfo, sum domain.Summary) error {
	s.summaries = append(s.summaries, sum)
	return s.err
}

// recordingPacer считает как Pacer, но не спит.
type recordingPacer struct {
	pacer *Pacer
	waits []time.Duration
}

func newRecordingPacer() *recordingPacer {
	p := NewPacer(discardLogger())
	p.rnd = func() float64 { return 0.5 }
	return &recordingPacer{pacer: p}
}

func (r *recordingPacer) DelayFor(i int, policy domain.PacingPolicy) time.Duration {
	return r.pacer.DelayFor(i, policy)
}

func (r *recordingPacer) Wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.waits = append(r.waits, d)
	return nil
}

type memCredStore struct {
	creds map[string]domain.Credentials
	saved int
}

func (m *memCredStore) Load(_ context.Context, name string) (*domain.Credentials, error) {
	c, ok := m.creds[name]
	if !ok {
		return nil, ports.ErrCredentialsNotFound
	}
	return &c, nil
}

func (m *memCredStore) Save(_ context.Context, c domain.Credentials) error {
	if err := c.Validate(); err != nil {
		return err
	}
	m.creds[c.SessionName] = c
	m.saved++
	return nil
}

func (m *memCredStore) List(context.Context) ([]domain.Credentials, error) {
	out := make([]domain.Credentials, 0, len(m.creds))
	for _, c := range m.creds {
		out = append(out, c)
	}
	return out, nil
}

func (m *memCredStore) Delete(_ context.Context, name string) error {
	delete(m.creds, name)
	return nil
}
