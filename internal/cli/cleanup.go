package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mealprep/mealbot/internal/ledger"
)

// CleanupOptions holds flags for the cleanup command.
type CleanupOptions struct {
	*RootOptions
	Dir  string
	Days int
}

// NewCleanupCommand creates the cleanup command.
func NewCleanupCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CleanupOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Expire stale vote records from the ledger",
		Long: `Remove every ledger record whose first vote is older than the retention
threshold. Records whose timestamp cannot be parsed are kept.

The threshold defaults to the configured retention_days.

Example:
  mealbot cleanup
  mealbot cleanup --days 30`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCleanup(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Dir, "dir", ".", "community repository root")
	cmd.Flags().IntVar(&opts.Days, "days", -1, "retention threshold in days (default from config)")

	return cmd
}

func runCleanup(opts *CleanupOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	days := opts.Days
	if days < 0 {
		days = cfg.RetentionDays
	}

	votes := ledger.New(ledger.NewFileRepo(filepath.Join(opts.Dir, cfg.LedgerPath)))
	removed, err := votes.ExpireStale(days)
	if err != nil {
		return WrapExitError(ExitCommandError, "cleanup failed", err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]int{"removed": removed, "retention_days": days})
	}
	return formatter.Success(fmt.Sprintf("removed %d stale vote records (retention %d days)", removed, days))
}
