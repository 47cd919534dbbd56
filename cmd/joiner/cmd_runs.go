package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func runRunsList(cmd *cobra.Command, _ []string) error {
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
	runs, err := history.ListRuns(ctx, runsLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs yet.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSESSION\tROUND\tSTARTED\tTOTAL\tOK\tFAILED\tSTATE")
	for _, r := range runs {
		state := "interrupted"
		if r.FinishedAt != nil {
			state = "finished"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%d\t%d\t%d\t%s\n",
			r.ID, r.Session, r.Round, r.StartedAt.Local().Format(time.DateTime),
			r.Total, r.Successful, r.Failed, state)
	}
	return tw.Flush()
}

func runRunsShow(cmd *cobra.Command, args []string) error {
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
	if _, err := history.GetRun(ctx, args[0]); err != nil {
		return err
	}
	outcomes, err := history.Outcomes(ctx, args[0])
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tLINK\tSTATUS\tGROUP\tMEMBERS\tDETAIL")
	for i, o := range outcomes {
		group, members := "-", "-"
		if o.GroupName != nil {
			group = *o.GroupName
		}
		if o.MemberCount != nil {
			members = fmt.Sprint(*o.MemberCount)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", i+1, o.Target.RawLink, o.Status, group, members, o.Detail)
	}
	return tw.Flush()
}
