package main

import (
	"github.com/spf13/cobra"
)

var (
	configPath string

	sessionName string
	linksFile   string
	interval    float64
	noRandomize bool
	maxRetries  int
	runID       string
	runsLimit   int
	apiID       int32
	apiHash     string

	rootCmd = &cobra.Command{
		Use:          "joiner",
		Short:        "Join Telegram groups and channels from a list of links",
		SilenceUsage: true,
	}

	joinCmd = &cobra.Command{
		Use:   "join",
		Short: "Join every link from the links file with one account",
		RunE:  runJoin,
	}

	retryCmd = &cobra.Command{
		Use:   "retry",
		Short: "Re-run rate limited and failed links of a previous run",
		RunE:  runRetry,
	}

	authCmd = &cobra.Command{
		Use:   "auth",
		Short: "Log in to a Telegram account and save its credentials",
		RunE:  runAuth,
	}

	accountsCmd = &cobra.Command{
		Use:   "accounts",
		Short: "Manage saved accounts",
	}
	accountsListCmd = &cobra.Command{
		Use:   "list",
		Short: "List saved accounts, most recently used first",
		Args:  cobra.NoArgs,
		RunE:  runAccountsList,
	}
	accountsDeleteCmd = &cobra.Command{
		Use:   "delete [session]",
		Short: "Delete a saved account",
		Args:  cobra.ExactArgs(1),
		RunE:  runAccountsDelete,
	}

	runsCmd = &cobra.Command{
		Use:   "runs",
		Short: "Show run history",
		Args:  cobra.NoArgs,
		RunE:  runRunsList,
	}
	runsShowCmd = &cobra.Command{
		Use:   "show [run-id]",
		Short: "Show outcomes of one run",
		Args:  cobra.ExactArgs(1),
		RunE:  runRunsShow,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config (default: $CONFIG_PATH, then env only)")

	rootCmd.AddCommand(joinCmd)
	joinCmd.Flags().StringVarP(&sessionName, "session", "s", "", "Account session name (default: most recently used)")
	joinCmd.Flags().StringVarP(&linksFile, "links-file", "f", "", "File with links, one per line (default: links_file from config)")
	addPacingFlags(joinCmd)

	rootCmd.AddCommand(retryCmd)
	retryCmd.Flags().StringVar(&runID, "run", "", "Run ID as shown by joiner runs")
	retryCmd.Flags().StringVarP(&sessionName, "session", "s", "", "Account session name (default: the run's session)")
	_ = retryCmd.MarkFlagRequired("run")
	addPacingFlags(retryCmd)

	rootCmd.AddCommand(authCmd)
	authCmd.Flags().StringVarP(&sessionName, "session", "s", "", "Session name to create or refresh")
	authCmd.Flags().Int32Var(&apiID, "api-id", 0, "Telegram API ID (default: api_id from config)")
	authCmd.Flags().StringVar(&apiHash, "api-hash", "", "Telegram API hash (default: api_hash from config)")
	_ = authCmd.MarkFlagRequired("session")

	rootCmd.AddCommand(accountsCmd)
	accountsCmd.AddCommand(accountsListCmd)
	accountsCmd.AddCommand(accountsDeleteCmd)

	rootCmd.AddCommand(runsCmd)
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "How many runs to show, 0 for all")
	runsCmd.AddCommand(runsShowCmd)
}

func addPacingFlags(cmd *cobra.Command) {
	cmd.Flags().Float64VarP(&interval, "interval", "i", 0, "Base delay between joins in seconds (default: pacing.interval_seconds)")
	cmd.Flags().BoolVar(&noRandomize, "no-randomize", false, "Disable ±20% delay jitter")
	cmd.Flags().IntVar(&maxRetries, "retries", 0, "Extra rounds for rate limited and failed links (default: pacing.max_retry_attempts)")
}
