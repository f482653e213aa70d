package cli

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/mealprep/mealbot/internal/auditlog"
	"github.com/mealprep/mealbot/internal/ledger"
	"github.com/mealprep/mealbot/internal/recipe"
)

// StatsOptions holds flags for the stats command.
type StatsOptions struct {
	*RootOptions
	Dir     string
	AuditDB string
}

// VoterStat is one installation's line in the stats report.
type VoterStat struct {
	BuildID    string `json:"build_id"`
	TotalVotes int    `json:"total_votes"`
	LastVoteAt string `json:"last_vote_at,omitempty"`
}

// RecipeStat is one recipe's line in the stats report.
type RecipeStat struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Likes        int    `json:"likes"`
	UniqueVoters int    `json:"unique_voters"`
}

// StatsReport aggregates ledger and index activity.
type StatsReport struct {
	Installations int          `json:"installations"`
	TotalVotes    int          `json:"total_votes"`
	AverageVotes  float64      `json:"average_votes"`
	TopVoters     []VoterStat  `json:"top_voters"`
	TopRecipes    []RecipeStat `json:"top_recipes"`
	RecentVoters  []VoterStat  `json:"recent_voters"`
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show voting statistics",
		Long: `Summarize ledger and index activity: unique installations, votes cast,
top voters, top recipes by likes, and recent voting activity.

With --audit-db, also lists the most recently processed intake events.

Example:
  mealbot stats
  mealbot stats --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Dir, "dir", ".", "community repository root")
	cmd.Flags().StringVar(&opts.AuditDB, "audit-db", "", "also report recent events from this audit log")

	return cmd
}

func runStats(opts *StatsOptions, cmd *cobra.Command) error {
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

	votes := ledger.New(ledger.NewFileRepo(filepath.Join(opts.Dir, cfg.LedgerPath)))
	store := recipe.NewFileStore(opts.Dir, cfg.IndexPath)

	report, err := buildStatsReport(votes, store)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build stats", err)
	}

	if opts.Format == "json" {
		return formatter.Success(report)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "=== COMMUNITY VOTE STATISTICS ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Installations: %d\n", report.Installations)
	fmt.Fprintf(w, "Votes cast: %d\n", report.TotalVotes)
	fmt.Fprintf(w, "Average votes per installation: %.2f\n", report.AverageVotes)
	fmt.Fprintln(w)

	if len(report.TopVoters) > 0 {
		fmt.Fprintln(w, "Top voters:")
		for i, v := range report.TopVoters {
			fmt.Fprintf(w, "  %2d. %s (%d votes)\n", i+1, v.BuildID, v.TotalVotes)
		}
		fmt.Fprintln(w)
	}

	if len(report.TopRecipes) > 0 {
		fmt.Fprintln(w, "Top recipes by likes:")
		for i, r := range report.TopRecipes {
			fmt.Fprintf(w, "  %2d. %s (%d likes, %d unique voters)\n", i+1, r.Name, r.Likes, r.UniqueVoters)
		}
		fmt.Fprintln(w)
	}

	if len(report.RecentVoters) > 0 {
		fmt.Fprintln(w, "Recent activity:")
		for _, v := range report.RecentVoters {
			fmt.Fprintf(w, "  - %s (%d total votes, last %s)\n", v.BuildID, v.TotalVotes, v.LastVoteAt)
		}
		fmt.Fprintln(w)
	}

	if opts.AuditDB != "" {
		if err := printRecentEvents(opts.AuditDB, cmd); err != nil {
			return WrapExitError(ExitCommandError, "failed to read audit log", err)
		}
	}
	return nil
}

func buildStatsReport(votes *ledger.Ledger, store recipe.Store) (*StatsReport, error) {
	recs, err := votes.All()
	if err != nil {
		return nil, err
	}
	ix, err := store.LoadIndex()
	if err != nil {
		return nil, err
	}

	report := &StatsReport{Installations: len(recs)}
	for buildID, rec := range recs {
		report.TotalVotes += rec.TotalVotes
		report.TopVoters = append(report.TopVoters, VoterStat{
			BuildID:    shorten(buildID),
			TotalVotes: rec.TotalVotes,
			LastVoteAt: rec.LastVoteAt,
		})
		if _, err := time.Parse(time.RFC3339, rec.LastVoteAt); err == nil {
			report.RecentVoters = append(report.RecentVoters, VoterStat{
				BuildID:    shorten(buildID),
				TotalVotes: rec.TotalVotes,
				LastVoteAt: rec.LastVoteAt,
			})
		}
	}
	if report.Installations > 0 {
		report.AverageVotes = float64(report.TotalVotes) / float64(report.Installations)
	}

	sort.Slice(report.TopVoters, func(i, j int) bool {
		if report.TopVoters[i].TotalVotes != report.TopVoters[j].TotalVotes {
			return report.TopVoters[i].TotalVotes > report.TopVoters[j].TotalVotes
		}
		return report.TopVoters[i].BuildID < report.TopVoters[j].BuildID
	})
	if len(report.TopVoters) > 10 {
		report.TopVoters = report.TopVoters[:10]
	}

	// RFC 3339 sorts lexically, newest last.
	sort.Slice(report.RecentVoters, func(i, j int) bool {
		if report.RecentVoters[i].LastVoteAt != report.RecentVoters[j].LastVoteAt {
			return report.RecentVoters[i].LastVoteAt > report.RecentVoters[j].LastVoteAt
		}
		return report.RecentVoters[i].BuildID < report.RecentVoters[j].BuildID
	})
	if len(report.RecentVoters) > 10 {
		report.RecentVoters = report.RecentVoters[:10]
	}

	for _, e := range ix.Recipes {
		stats, err := votes.RecipeStats(e.ID)
		if err != nil {
			return nil, err
		}
		report.TopRecipes = append(report.TopRecipes, RecipeStat{
			ID:           e.ID,
			Name:         e.Name,
			Likes:        e.Likes,
			UniqueVoters: stats.UniqueVoters,
		})
	}
	sort.Slice(report.TopRecipes, func(i, j int) bool {
		if report.TopRecipes[i].Likes != report.TopRecipes[j].Likes {
			return report.TopRecipes[i].Likes > report.TopRecipes[j].Likes
		}
		return report.TopRecipes[i].ID < report.TopRecipes[j].ID
	})
	if len(report.TopRecipes) > 10 {
		report.TopRecipes = report.TopRecipes[:10]
	}

	return report, nil
}

func printRecentEvents(path string, cmd *cobra.Command) error {
	log, err := auditlog.Open(path)
	if err != nil {
		return err
	}
	defer log.Close()

	events, err := log.Recent(10)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "Recent intake events:")
	for _, e := range events {
		status := "accepted"
		if !e.Accepted {
			status = "rejected"
			if e.Code != "" {
				status += " (" + e.Code + ")"
			}
		}
		fmt.Fprintf(w, "  - %s %s %s: %s\n", e.CreatedAt, e.Action, status, e.Message)
	}
	return nil
}

// shorten trims an installation identifier for display.
func shorten(buildID string) string {
	if len(buildID) <= 12 {
		return buildID
	}
	return buildID[:12] + "..."
}
