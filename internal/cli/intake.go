package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mealprep/mealbot/internal/auditlog"
	"github.com/mealprep/mealbot/internal/gitops"
	"github.com/mealprep/mealbot/internal/intake"
	"github.com/mealprep/mealbot/internal/ledger"
	"github.com/mealprep/mealbot/internal/recipe"
)

// eventEnvVar is where the hosting platform's workflow places the raw
// event document.
const eventEnvVar = "GH_EVENT"

// IntakeOptions holds flags for the intake command.
type IntakeOptions struct {
	*RootOptions
	EventFile string
	Dir       string
	NoPush    bool
	AuditDB   string
}

// NewIntakeCommand creates the intake command.
func NewIntakeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IntakeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "intake",
		Short: "Process one issue event into the recipe index",
		Long: `Process one issue event from the hosting platform.

The event document is read from --event, or from the ` + eventEnvVar + ` environment
variable when the flag is absent. Share events create recipes; vote events
increment likes, deduplicated per installation via the vote ledger. On any
accepted mutation the changed artifacts are committed and pushed.

Example:
  mealbot intake --event event.json --no-push
  GH_EVENT="$(cat event.json)" mealbot intake`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIntake(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.EventFile, "event", "", "path to the event JSON document")
	cmd.Flags().StringVar(&opts.Dir, "dir", ".", "community repository root")
	cmd.Flags().BoolVar(&opts.NoPush, "no-push", false, "skip the git commit/push of changed artifacts")
	cmd.Flags().StringVar(&opts.AuditDB, "audit-db", "", "optional SQLite audit log of processed events")

	return cmd
}

func runIntake(opts *IntakeOptions, cmd *cobra.Command) error {
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

	raw, err := readEvent(opts.EventFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read event", err)
	}
	if len(raw) == 0 {
		return formatter.Success("no event payload")
	}

	evt, err := intake.ParseEvent(raw)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to parse event", err)
	}
	formatter.VerboseLog("event: title=%q labels=%v issue=%d", evt.Title, evt.Labels, evt.IssueNumber)

	store := recipe.NewFileStore(opts.Dir, cfg.IndexPath)
	votes := ledger.New(ledger.NewFileRepo(filepath.Join(opts.Dir, cfg.LedgerPath)))
	controller := intake.New(store, votes)

	out, err := controller.Process(evt)
	if err != nil {
		return WrapExitError(ExitCommandError, "intake failed", err)
	}

	if opts.AuditDB != "" {
		if err := appendAudit(opts.AuditDB, evt, out); err != nil {
			slog.Warn("audit log append failed", "error", err)
		}
	}

	if out.Accepted && !opts.NoPush {
		publisher := gitops.New(opts.Dir, cfg.GitName, cfg.GitEmail)
		publisher.Publish(
			fmt.Sprintf("community: %s %s via issue", out.Action, out.RecipeID),
			cfg.IndexPath, cfg.RecipesDir, cfg.LedgerPath,
		)
	}

	// Rejections are user-facing messages, not process failures: the
	// workflow run itself succeeded.
	if !out.Accepted && out.Code != "" {
		return formatter.Error(string(out.Code), out.Message, nil)
	}
	if opts.Format == "json" {
		return formatter.Success(out)
	}
	return formatter.Success(out.Message)
}

// readEvent returns the raw event document from the flag or the
// environment. Empty means "nothing to do", not an error.
func readEvent(eventFile string) ([]byte, error) {
	if eventFile != "" {
		return os.ReadFile(eventFile)
	}
	return []byte(os.Getenv(eventEnvVar)), nil
}

func appendAudit(path string, evt *intake.Event, out *intake.Outcome) error {
	log, err := auditlog.Open(path)
	if err != nil {
		return err
	}
	defer log.Close()
	return log.Append(auditlog.Entry{
		Action:   out.Action,
		RecipeID: out.RecipeID,
		BuildID:  out.BuildID,
		Accepted: out.Accepted,
		Code:     string(out.Code),
		Message:  out.Message,
		Issue:    evt.IssueNumber,
	})
}
