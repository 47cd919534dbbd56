package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/larriantoniy/tg_group_joiner/internal/adapters/tg"
	"github.com/larriantoniy/tg_group_joiner/internal/domain"
	"github.com/larriantoniy/tg_group_joiner/internal/ports"
)

// runAuth проходит логин TDLib в консоли и сохраняет аккаунт.
func runAuth(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	creds := &domain.Credentials{SessionName: sessionName}
	if saved, err := a.creds.Load(ctx, sessionName); err == nil {
		creds = saved
	} else if !errors.Is(err, ports.ErrCredentialsNotFound) {
		return err
	}
	if apiID != 0 {
		creds.APIID = apiID
	}
	if apiHash != "" {
		creds.APIHash = apiHash
	}
	creds = withDefaultAPI(creds, a.cfg)
	if err := creds.ValidateAPI(); err != nil {
		return fmt.Errorf("%w (pass --api-id/--api-hash or set TELEGRAM_API_ID/TELEGRAM_API_HASH)", err)
	}

	log := a.log.With("session", sessionName)
	client, err := tg.NewClient(creds, a.cfg.BaseDir, log, tg.ClientModeAuth)
	if err != nil {
		return fmt.Errorf("authorize %s: %w", sessionName, err)
	}
	defer client.Close()

	me, err := client.Me()
	if err != nil {
		return fmt.Errorf("get me: %w", err)
	}
	now := time.Now()
	creds.Phone = me.Phone
	creds.FirstName = me.FirstName
	creds.Username = me.Username
	creds.LastUsed = &now

	if err := a.creds.Save(ctx, *creds); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Authorized %s as %s (@%s)\n", sessionName, me.FirstName, me.Username)
	return nil
}

func runAccountsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	all, err := a.creds.List(ctx)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No saved accounts.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tNAME\tUSERNAME\tPHONE\tLAST USED")
	for _, c := range all {
		lastUsed := "never"
		if c.LastUsed != nil {
			lastUsed = c.LastUsed.Local().Format(time.DateTime)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.SessionName, c.FirstName, c.Username, c.Phone, lastUsed)
	}
	return tw.Flush()
}

// runAccountsDelete удаляет только локальные данные, сам аккаунт Telegram не трогается.
func runAccountsDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.creds.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Account %s deleted.\n", args[0])
	return nil
}
