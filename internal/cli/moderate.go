package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mealprep/mealbot/internal/moderation"
)

// ModerateOptions holds flags for the moderate command.
type ModerateOptions struct {
	*RootOptions
	ReportPath string
}

// NewModerateCommand creates the moderate command.
func NewModerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ModerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "moderate [recipes-dir]",
		Short: "Validate all stored recipes and write a report",
		Long: `Validate every *.json recipe in a directory against the structural and
content-quality rules, write a text report, and fail when any recipe is
rejected.

The directory defaults to the configured recipes_dir. Warnings lower a
recipe's score but never block approval.

Example:
  mealbot moderate
  mealbot moderate community/recipes --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) > 0 {
				dir = args[0]
			}
			return runModerate(opts, dir, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ReportPath, "report", "", "report file path (default from config)")

	return cmd
}

func runModerate(opts *ModerateOptions, dir string, cmd *cobra.Command) error {
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
	if dir == "" {
		dir = cfg.RecipesDir
	}
	reportPath := opts.ReportPath
	if reportPath == "" {
		reportPath = cfg.ReportPath
	}

	var modOpts []moderation.Option
	if len(cfg.BannedWords) > 0 {
		modOpts = append(modOpts, moderation.WithBannedWords(cfg.BannedWords))
	}

	formatter.VerboseLog("moderating recipes in %s", dir)
	summary, err := moderation.New(modOpts...).ModerateDir(dir)
	if err != nil {
		return WrapExitError(ExitCommandError, "moderation failed", err)
	}

	report := moderation.RenderReport(summary, time.Now())
	if err := os.WriteFile(reportPath, []byte(report), 0o644); err != nil {
		return WrapExitError(ExitCommandError, "failed to write report", err)
	}

	if opts.Format == "json" {
		if err := formatter.Success(summary); err != nil {
			return err
		}
	} else {
		fmt.Fprint(cmd.OutOrStdout(), report)
	}

	if summary.Rejected > 0 {
		return NewExitError(ExitFailure,
			fmt.Sprintf("moderation failed: %d recipes rejected", summary.Rejected))
	}
	return nil
}
