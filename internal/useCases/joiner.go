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

var (
	ErrNoSession = errors.New("no authenticated session available")
	ErrNoTargets = errors.New("no targets to join")
)

const (
	detailAlreadyMember = "Already a member"
	detailInvalid       = "Invalid or expired link"
	detailBanned        = "Banned from this group"
)

// Waiter считает и выдерживает паузы между попытками.
type Waiter interface {
	DelayFor(index int, policy domain.PacingPolicy) time.Duration
	Wait(ctx context.Context, d time.Duration) error
}

// Joiner последовательно проходит цели одного аккаунта: пауза → resolve → join → outcome.
// Параллельных попыток на одном аккаунте нет.
type Joiner struct {
	gw    ports.SessionGateway
	sink  ports.ResultSink
	pacer Waiter
	log   *slog.Logger
	now   func() time.Time
}

func NewJoiner(gw ports.SessionGateway, sink ports.ResultSink, pacer Waiter, log *slog.Logger) *Joiner {
	return &Joiner{gw: gw, sink: sink, pacer: pacer, log: log, now: time.Now}
}

// Run выполняет прогон до конца или до отмены ctx.
// При отмене results остаются валидными до точки остановки, возвращается ctx.Err().
func (j *Joiner) Run(ctx context.Context, run *domain.BatchRun) error {
	if j.gw == nil {
		return ErrNoSession
	}
	policy := run.Policy()
	if err := policy.Validate(); err != nil {
		return err
	}

	info := run.Info()
	log := j.log.With("run_id", info.ID, "session", info.Session, "round", info.Round)
	log.Info("Batch run started", "targets", info.Total, "interval_seconds", policy.BaseIntervalSeconds, "jitter", policy.JitterEnabled)

	var (
		runErr   error
		override time.Duration
	)
	for {
		i, target, ok := run.Next()
		if !ok {
			break
		}

		delay := j.pacer.DelayFor(i, policy)
		if override > delay {
			log.Info("Flood wait overrides pacing delay", "pacing", delay, "wait", override)
			delay = override
		}
		override = 0

		if err := j.pacer.Wait(ctx, delay); err != nil {
			runErr = err
			break
		}

		outcome, attempted := j.attempt(ctx, target)
		if !attempted {
			runErr = ctx.Err()
			break
		}
		if !run.Record(outcome) {
			// не должно случаться: Next и Record идут в одном порядке
			runErr = fmt.Errorf("record outcome for %s: out of order", target.RawLink)
			break
		}
		j.logOutcome(log, outcome)

		// outcome уже в run.results, sink должен получить его и после отмены
		if err := j.sink.OnOutcome(context.WithoutCancel(ctx), info, outcome); err != nil {
			log.Warn("ResultSink.OnOutcome", "link", target.RawLink, "error", err)
		}

		if outcome.Status == domain.StatusRateLimited {
			override = run.PendingWait()
		}
	}

	summary := run.Summary()
	// итог сохраняем даже после отмены
	if err := j.sink.OnRunComplete(context.WithoutCancel(ctx), info, summary); err != nil {
		log.Warn("ResultSink.OnRunComplete", "error", err)
	}

	if runErr != nil {
		log.Warn("Batch run interrupted", "processed", summary.Total, "targets", info.Total, "error", runErr)
		return runErr
	}
	log.Info("Batch run finished", "successful", summary.Successful, "failed", summary.Failed)
	return nil
}

// attempt возвращает attempted=false, если до вызова gateway дело не дошло из-за отмены.
func (j *Joiner) attempt(ctx context.Context, target domain.JoinTarget) (domain.JoinOutcome, bool) {
	out := domain.JoinOutcome{Target: target, AttemptedAt: j.now()}

	// Resolving: только для публичных, ошибки глотаем
	if target.Kind == domain.KindPublic {
		if ctx.Err() != nil {
			return out, false
		}
		chat, err := j.gw.ResolvePublic(ctx, target.Identifier)
		if err != nil {
			j.log.Debug("ResolvePublic failed, metadata skipped", "link", target.RawLink, "error", err)
		} else {
			applyChatInfo(&out, chat)
		}
	}

	if ctx.Err() != nil {
		return out, false
	}

	var err error
	switch target.Kind {
	case domain.KindPrivateInvite:
		var title string
		title, err = j.gw.ImportInvite(ctx, target.Identifier)
		if err == nil && title != "" && out.GroupName == nil {
			out.GroupName = &title
		}
	default:
		err = j.gw.JoinPublic(ctx, target.Identifier)
	}

	if err != nil && ctx.Err() != nil &&
		(errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return out, false
	}

	applyGatewayResult(&out, err)
	return out, true
}

func applyChatInfo(out *domain.JoinOutcome, chat ports.ChatInfo) {
	if chat.Title != "" {
		title := chat.Title
		out.GroupName = &title
	}
	if chat.HasCount {
		n := chat.MemberCount
		out.MemberCount = &n
	}
}

// applyGatewayResult сводит сигнал gateway к статусу outcome.
func applyGatewayResult(out *domain.JoinOutcome, err error) {
	var flood *ports.FloodWaitError

	switch {
	case err == nil:
		out.Status = domain.StatusJoined
	case errors.Is(err, ports.ErrAlreadyMember):
		out.Status = domain.StatusAlreadyMember
		out.Detail = detailAlreadyMember
	case errors.As(err, &flood):
		out.Status = domain.StatusRateLimited
		out.WaitSeconds = flood.Seconds
		out.Detail = fmt.Sprintf("Rate limited. Wait %d seconds", flood.Seconds)
	case errors.Is(err, ports.ErrInvalidOrExpired):
		out.Status = domain.StatusInvalidOrExpired
		out.Detail = detailInvalid
	case errors.Is(err, ports.ErrBanned):
		out.Status = domain.StatusBanned
		out.Detail = detailBanned
	default:
		out.Status = domain.StatusFailed
		out.Detail = err.Error()
	}
}

func (j *Joiner) logOutcome(log *slog.Logger, o domain.JoinOutcome) {
	args := []any{"link", o.Target.RawLink, "status", o.Status}
	if o.GroupName != nil {
		args = append(args, "group", *o.GroupName)
	}

	switch o.Status {
	case domain.StatusJoined, domain.StatusAlreadyMember:
		log.Info("Join outcome", args...)
	case domain.StatusRateLimited:
		log.Warn("Join outcome", append(args, "wait_seconds", o.WaitSeconds)...)
	default:
		log.Error("Join outcome", append(args, "detail", o.Detail)...)
	}
}
