package domain

import (
	"time"

	"github.com/google/uuid"
)

// RunInfo не меняется за прогон; его видят sink'и.
type RunInfo struct {
	ID        string       `json:"id"`
	Session   string       `json:"session"`
	Round     int          `json:"round"`
	Policy    PacingPolicy `json:"policy"`
	Total     int          `json:"total"`
	StartedAt time.Time    `json:"started_at"`
}

// BatchRun: упорядоченный прогон по списку целей одного аккаунта.
// results пишет только оркестратор (Record); остальные только читают.
type BatchRun struct {
	info    RunInfo
	targets []JoinTarget
	results []JoinOutcome
}

func NewBatchRun(session string, round int, targets []JoinTarget, policy PacingPolicy, startedAt time.Time) *BatchRun {
	t := make([]JoinTarget, len(targets))
	copy(t, targets)
	return &BatchRun{
		info: RunInfo{
			ID:        uuid.NewString(),
			Session:   session,
			Round:     round,
			Policy:    policy,
			Total:     len(t),
			StartedAt: startedAt,
		},
		targets: t,
		results: make([]JoinOutcome, 0, len(t)),
	}
}

func (r *BatchRun) Info() RunInfo { return r.info }

func (r *BatchRun) Policy() PacingPolicy { return r.info.Policy }

func (r *BatchRun) Targets() []JoinTarget {
	out := make([]JoinTarget, len(r.targets))
	copy(out, r.targets)
	return out
}

// Results возвращает копию: снаружи append-only последовательность не испортить.
func (r *BatchRun) Results() []JoinOutcome {
	out := make([]JoinOutcome, len(r.results))
	copy(out, r.results)
	return out
}

// Next returns the next unprocessed target and its index.
func (r *BatchRun) Next() (int, JoinTarget, bool) {
	i := len(r.results)
	if i >= len(r.targets) {
		return i, JoinTarget{}, false
	}
	return i, r.targets[i], true
}

// Record appends the outcome for the next pending target.
// Outcome must belong to targets[len(results)], otherwise it is rejected.
func (r *BatchRun) Record(o JoinOutcome) bool {
	i := len(r.results)
	if i >= len(r.targets) || r.targets[i] != o.Target {
		return false
	}
	r.results = append(r.results, o)
	return true
}

func (r *BatchRun) Done() bool { return len(r.results) == len(r.targets) }

func (r *BatchRun) Summary() Summary { return Summarize(r.results) }

// Retryable: цели со статусом rate_limited/failed, в исходном порядке.
func (r *BatchRun) Retryable() []JoinTarget {
	var out []JoinTarget
	for _, o := range r.results {
		if o.Status.IsRetryable() {
			out = append(out, o.Target)
		}
	}
	return out
}

// PendingWait: сколько ещё велел ждать провайдер, если последняя попытка упёрлась в flood.
func (r *BatchRun) PendingWait() time.Duration {
	if len(r.results) == 0 {
		return 0
	}
	last := r.results[len(r.results)-1]
	if last.Status != StatusRateLimited || last.WaitSeconds <= 0 {
		return 0
	}
	return time.Duration(float64(last.WaitSeconds) * r.info.Policy.FloodMultiplier() * float64(time.Second))
}
