package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/larriantoniy/tg_group_joiner/internal/domain"
	"github.com/larriantoniy/tg_group_joiner/internal/useCases"
)

var errInterrupted = errors.New("interrupted")

func runJoin(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	path := linksFile
	if path == "" {
		path = a.cfg.LinksFile
	}
	targets, err := useCases.LoadLinks(path)
	if errors.Is(err, useCases.ErrLinksTemplateCreated) {
		fmt.Fprintf(cmd.OutOrStdout(), "Links file %s created. Add your links and run again.\n", path)
		return nil
	}
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return fmt.Errorf("%w in %s", useCases.ErrNoTargets, path)
	}

	session, err := pickSession(ctx, a.creds, sessionName)
	if err != nil {
		return err
	}
	policy, retries := pacingPolicy(cmd, a.cfg)

	return a.execute(ctx, cmd.OutOrStdout(), useCases.RunRequest{
		Session:    session,
		Targets:    targets,
		Policy:     policy,
		MaxRetries: retries,
	})
}

func runRetry(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	history, err := a.openHistory()
	if err != nil {
		return err
	}
	prev, err := history.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	targets, err := history.RetryableTargets(ctx, runID)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Run %s has nothing to retry.\n", runID)
		return nil
	}

	session := sessionName
	if session == "" {
		session = prev.Session
	}
	policy, retries := pacingPolicy(cmd, a.cfg)

	return a.execute(ctx, cmd.OutOrStdout(), useCases.RunRequest{
		Session:    session,
		Targets:    targets,
		Policy:     policy,
		MaxRetries: retries,
		StartRound: prev.Round + 1,
	})
}

func (a *app) execute(ctx context.Context, out io.Writer, req useCases.RunRequest) error {
	results, err := a.resultSink()
	if err != nil {
		return err
	}
	runner := useCases.NewRunner(a.creds, results, useCases.NewPacer(a.log), a.log, a.sessionFactory())

	a.log.Info("Starting",
		"session", req.Session,
		"targets", len(req.Targets),
		"interval_seconds", req.Policy.BaseIntervalSeconds,
		"jitter", req.Policy.JitterEnabled,
		"max_retries", req.MaxRetries,
	)
	runs, err := runner.Run(ctx, req)
	printRuns(out, runs)

	if errors.Is(err, context.Canceled) {
		a.log.Info("Interrupted, partial results saved")
		return errInterrupted
	}
	return err
}

func printRuns(w io.Writer, runs []*domain.BatchRun) {
	for _, r := range runs {
		info, s := r.Info(), r.Summary()
		fmt.Fprintf(w, "Run %s round %d: %d/%d attempted, %d successful, %d failed\n",
			info.ID, info.Round, s.Total, info.Total, s.Successful, s.Failed)
	}
}
