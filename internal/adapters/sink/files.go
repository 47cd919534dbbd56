package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/larriantoniy/tg_group_joiner/internal/domain"
	"github.com/larriantoniy/tg_group_joiner/internal/useCases"
)

const fileStampLayout = "20060102_150405"

// ReportEntry описывает строку JSON-отчёта.
type ReportEntry struct {
	Link        string            `json:"link"`
	Status      domain.JoinStatus `json:"status"`
	Success     bool              `json:"success"`
	Error       *string           `json:"error"`
	GroupName   *string           `json:"group_name"`
	MemberCount *int              `json:"member_count"`
	JoinTime    string            `json:"join_time"`
}

func toReportEntry(o domain.JoinOutcome) ReportEntry {
	e := ReportEntry{
		Link:        o.Target.RawLink,
		Status:      o.Status,
		Success:     o.Status.IsMember(),
		GroupName:   o.GroupName,
		MemberCount: o.MemberCount,
		JoinTime:    o.AttemptedAt.Format(time.RFC3339),
	}
	if o.Detail != "" {
		d := o.Detail
		e.Error = &d
	}
	return e
}

// Report пишет results/join_results_<ts>.json по завершении прогона.
type Report struct {
	dir string
	log *slog.Logger
	now func() time.Time
}

func NewReport(dir string, log *slog.Logger) *Report {
	return &Report{dir: dir, log: log, now: time.Now}
}

func (r *Report) OnOutcome(context.Context, domain.RunInfo, domain.JoinOutcome) error { return nil }

func (r *Report) OnRunComplete(_ context.Context, run domain.RunInfo, s domain.Summary) error {
	if len(s.Results) == 0 {
		return nil
	}
	entries := make([]ReportEntry, 0, len(s.Results))
	for _, o := range s.Results {
		entries = append(entries, toReportEntry(o))
	}

	path, err := writeFile(r.dir, fileName("join_results", run, r.now(), "json"), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	})
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	r.log.Info("Results saved", "path", path, "run_id", run.ID)
	return nil
}

// FailedLinks сохраняет rate_limited/failed ссылки в формате файла ссылок,
// чтобы их можно было подать на вход следующему запуску.
type FailedLinks struct {
	dir string
	log *slog.Logger
	now func() time.Time
}

func NewFailedLinks(dir string, log *slog.Logger) *FailedLinks {
	return &FailedLinks{dir: dir, log: log, now: time.Now}
}

func (f *FailedLinks) OnOutcome(context.Context, domain.RunInfo, domain.JoinOutcome) error {
	return nil
}

func (f *FailedLinks) OnRunComplete(_ context.Context, run domain.RunInfo, s domain.Summary) error {
	var failed []domain.JoinTarget
	for _, o := range s.Results {
		if o.Status.IsRetryable() {
			failed = append(failed, o.Target)
		}
	}
	if len(failed) == 0 {
		return nil
	}

	header := fmt.Sprintf("Failed links from run %s (session %s, round %d)", run.ID, run.Session, run.Round)
	path, err := writeFile(f.dir, fileName("failed_links", run, f.now(), "txt"), func(w io.Writer) error {
		return useCases.WriteLinks(w, header, failed)
	})
	if err != nil {
		return fmt.Errorf("save failed links: %w", err)
	}
	f.log.Info("Failed links saved", "path", path, "count", len(failed))
	return nil
}

func fileName(prefix string, run domain.RunInfo, at time.Time, ext string) string {
	name := prefix + "_" + at.Format(fileStampLayout)
	if run.Round > 1 {
		name += fmt.Sprintf("_r%d", run.Round)
	}
	return name + "." + ext
}

// writeFile пишет во временный файл и переименовывает, чтобы не оставить обрезанный отчёт.
func writeFile(dir, name string, fill func(io.Writer) error) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)

	tmp, err := os.CreateTemp(dir, name+".*.tmp")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if err := fill(tmp); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", err
	}
	return path, nil
}
