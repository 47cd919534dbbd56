package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larriantoniy/tg_group_joiner/internal/domain"
	"github.com/larriantoniy/tg_group_joiner/internal/useCases"
)

var (
	testStart = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	testNow   = func() time.Time { return time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC) }
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func ptr[T any](v T) *T { return &v }

func testRun(round int) domain.RunInfo {
	return domain.RunInfo{
		ID:        "run-1",
		Session:   "main",
		Round:     round,
		Policy:    domain.PacingPolicy{BaseIntervalSeconds: 30, JitterEnabled: true, FloodWaitMultiplier: 1.5},
		Total:     3,
		StartedAt: testStart,
	}
}

func testOutcomes() []domain.JoinOutcome {
	return []domain.JoinOutcome{
		{
			Target:      domain.Classify("https://t.me/alpha"),
			Status:      domain.StatusJoined,
			GroupName:   ptr("Alpha"),
			MemberCount: ptr(1200),
			AttemptedAt: testStart,
		},
		{
			Target:      domain.Classify("https://t.me/+beta"),
			Status:      domain.StatusRateLimited,
			Detail:      "Rate limited. Wait 60 seconds",
			WaitSeconds: 60,
			AttemptedAt: testStart.Add(time.Minute),
		},
		{
			Target:      domain.Classify("https://t.me/gamma"),
			Status:      domain.StatusFailed,
			Detail:      "boom",
			AttemptedAt: testStart.Add(2 * time.Minute),
		},
	}
}

type errSink struct{ err error }

func (e errSink) OnOutcome(context.Context, domain.RunInfo, domain.JoinOutcome) error { return e.err }

func (e errSink) OnRunComplete(context.Context, domain.RunInfo, domain.Summary) error { return e.err }

type countSink struct{ outcomes, completes int }

func (c *countSink) OnOutcome(context.Context, domain.RunInfo, domain.JoinOutcome) error {
	c.outcomes++
	return nil
}

func (c *countSink) OnRunComplete(context.Context, domain.RunInfo, domain.Summary) error {
	c.completes++
	return nil
}

func TestMultiCallsEverySink(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	a, b := &countSink{}, &countSink{}
	m := Multi{a, errSink{err: boom}, b}

	err := m.OnOutcome(ctx, testRun(0), testOutcomes()[0])
	require.ErrorIs(t, err, boom)

	err = m.OnRunComplete(ctx, testRun(0), domain.Summarize(testOutcomes()))
	require.ErrorIs(t, err, boom)

	assert.Equal(t, countSink{outcomes: 1, completes: 1}, *a)
	assert.Equal(t, countSink{outcomes: 1, completes: 1}, *b)
	assert.NoError(t, Multi{a}.OnOutcome(ctx, testRun(0), testOutcomes()[0]))
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	l := NewLog(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, l.OnRunComplete(context.Background(), testRun(0), domain.Summarize(testOutcomes())))

	out := buf.String()
	assert.Contains(t, out, `"msg":"Run complete"`)
	assert.Contains(t, out, `"successful":1`)
	assert.Contains(t, out, `"rate_limited":1`)
	assert.NotContains(t, out, `"banned"`)
}

func TestReportWritesJSON(t *testing.T) {
	dir := t.TempDir()
	r := NewReport(dir, discardLogger())
	r.now = testNow

	require.NoError(t, r.OnRunComplete(context.Background(), testRun(0), domain.Summarize(testOutcomes())))

	data, err := os.ReadFile(filepath.Join(dir, "join_results_20250314_100000.json"))
	require.NoError(t, err)

	var got []ReportEntry
	require.NoError(t, json.Unmarshal(data, &got))

	want := []ReportEntry{
		{
			Link: "https://t.me/alpha", Status: domain.StatusJoined, Success: true,
			GroupName: ptr("Alpha"), MemberCount: ptr(1200), JoinTime: "2025-03-14T09:26:53Z",
		},
		{
			Link: "https://t.me/+beta", Status: domain.StatusRateLimited,
			Error: ptr("Rate limited. Wait 60 seconds"), JoinTime: "2025-03-14T09:27:53Z",
		},
		{
			Link: "https://t.me/gamma", Status: domain.StatusFailed,
			Error: ptr("boom"), JoinTime: "2025-03-14T09:28:53Z",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}

	// без .tmp хвостов
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestReportSkipsEmptyRun(t *testing.T) {
	dir := t.TempDir()
	r := NewReport(dir, discardLogger())

	require.NoError(t, r.OnRunComplete(context.Background(), testRun(0), domain.Summarize(nil)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFailedLinksRoundTrip(t *testing.T) {
	dir := t.TempDir()
	f := NewFailedLinks(dir, discardLogger())
	f.now = testNow

	require.NoError(t, f.OnRunComplete(context.Background(), testRun(2), domain.Summarize(testOutcomes())))

	data, err := os.ReadFile(filepath.Join(dir, "failed_links_20250314_100000_r2.txt"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# Failed links from run run-1"))

	targets, err := useCases.ParseLinks(bytes.NewReader(data))
	require.NoError(t, err)
	want := []domain.JoinTarget{
		domain.Classify("https://t.me/+beta"),
		domain.Classify("https://t.me/gamma"),
	}
	if diff := cmp.Diff(want, targets); diff != "" {
		t.Errorf("failed links mismatch (-want +got):\n%s", diff)
	}
}

func TestFailedLinksNothingToSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")
	f := NewFailedLinks(dir, discardLogger())

	joined := testOutcomes()[:1]
	require.NoError(t, f.OnRunComplete(context.Background(), testRun(0), domain.Summarize(joined)))

	_, err := os.Stat(dir)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
