// Package ledger tracks which installation has voted for which recipe.
//
// The ledger is the unit of vote deduplication: each record is keyed by
// an opaque, client-supplied build id and holds the set of recipe ids
// that installation has voted for. Records expire wholesale once their
// first vote is older than the retention threshold.
//
// Every operation is read-modify-write over the whole persisted ledger.
// There is no partial update and no optimistic concurrency check; two
// overlapping invocations race with last-writer-wins. The intake model
// processes one event per process invocation, which is the only thing
// keeping this safe.
package ledger

import (
	"time"
)

// DefaultRetentionDays is how long an installation's record is kept,
// measured from its first vote.
const DefaultRetentionDays = 90

// Stats summarizes one installation's voting history.
type Stats struct {
	TotalVotes   int      `json:"total_votes"`
	VotedRecipes []string `json:"voted_recipes"`
	FirstVoteAt  string   `json:"first_vote_at,omitempty"`
	LastVoteAt   string   `json:"last_vote_at,omitempty"`
}

// RecipeStats summarizes ledger activity for one recipe.
type RecipeStats struct {
	UniqueVoters int `json:"unique_voters"`
	TotalVotes   int `json:"total_votes"`
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the wall clock used for vote timestamps and
// expiry cutoffs. Tests pass testutil.ManualClock.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// Ledger answers "has this installation already voted for this recipe?"
// and records new votes against an injectable repository.
type Ledger struct {
	repo Repository
	now  func() time.Time
}

// New creates a Ledger over the given repository.
func New(repo Repository, opts ...Option) *Ledger {
	l := &Ledger{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// HasVoted reports whether the installation has already voted for the
// recipe. An empty build id or recipe id always yields false: unknown
// callers are treated as "never voted", not as an error.
func (l *Ledger) HasVoted(buildID, recipeID string) (bool, error) {
	if buildID == "" || recipeID == "" {
		return false, nil
	}
	recs, err := l.repo.Load()
	if err != nil {
		return false, err
	}
	rec, ok := recs[buildID]
	if !ok {
		return false, nil
	}
	return rec.Has(recipeID), nil
}

// RecordVote records that the installation voted for the recipe.
//
// A first-ever vote initializes the record with first_vote_at = now.
// The recipe id is added only if absent, so calling RecordVote twice
// with the same pair never double-counts; total_votes and last_vote_at
// are touched only when the set actually changed. The full ledger is
// persisted after every call.
//
// recipeName is accepted for parity with the intake payload; the ledger
// itself stores only recipe ids.
func (l *Ledger) RecordVote(buildID, recipeID, recipeName string) error {
	_ = recipeName

	recs, err := l.repo.Load()
	if err != nil {
		return err
	}

	now := l.now().UTC().Format(time.RFC3339)
	rec, ok := recs[buildID]
	if !ok {
		rec = &VoteRecord{
			FirstVoteAt:  now,
			VotedRecipes: make(map[string]struct{}),
		}
		recs[buildID] = rec
	}

	if !rec.Has(recipeID) {
		rec.VotedRecipes[recipeID] = struct{}{}
		rec.TotalVotes = len(rec.VotedRecipes)
		rec.LastVoteAt = now
	}

	return l.repo.Save(recs)
}

// ExpireStale removes every record whose first_vote_at parses and is
// older than now minus retentionDays. Records with a missing or
// unparseable timestamp are retained: expiry fails open rather than
// dropping history it cannot date. The ledger is persisted only when at
// least one record was removed. Returns the removal count.
func (l *Ledger) ExpireStale(retentionDays int) (int, error) {
	recs, err := l.repo.Load()
	if err != nil {
		return 0, err
	}

	cutoff := l.now().UTC().Add(-time.Duration(retentionDays) * 24 * time.Hour)
	removed := 0
	for buildID, rec := range recs {
		if rec.FirstVoteAt == "" {
			continue
		}
		first, err := time.Parse(time.RFC3339, rec.FirstVoteAt)
		if err != nil {
			continue
		}
		if first.Before(cutoff) {
			delete(recs, buildID)
			removed++
		}
	}

	if removed == 0 {
		return 0, nil
	}
	if err := l.repo.Save(recs); err != nil {
		return 0, err
	}
	return removed, nil
}

// StatsFor returns the voting history for one installation, or nil if
// the build id has never voted.
func (l *Ledger) StatsFor(buildID string) (*Stats, error) {
	recs, err := l.repo.Load()
	if err != nil {
		return nil, err
	}
	rec, ok := recs[buildID]
	if !ok {
		return nil, nil
	}
	return &Stats{
		TotalVotes:   rec.TotalVotes,
		VotedRecipes: rec.Recipes(),
		FirstVoteAt:  rec.FirstVoteAt,
		LastVoteAt:   rec.LastVoteAt,
	}, nil
}

// RecipeStats returns voting statistics for one recipe.
//
// UniqueVoters counts the records containing the recipe id. TotalVotes
// sums total_votes across every record in the ledger, not only voters
// of this recipe; existing reports are built on that number, so it is
// kept as-is.
func (l *Ledger) RecipeStats(recipeID string) (RecipeStats, error) {
	recs, err := l.repo.Load()
	if err != nil {
		return RecipeStats{}, err
	}

	var out RecipeStats
	for _, rec := range recs {
		if rec.Has(recipeID) {
			out.UniqueVoters++
		}
		out.TotalVotes += rec.TotalVotes
	}
	return out, nil
}

// All returns a copy of every record keyed by build id. Used by the
// stats command; mutations of the copy do not touch the ledger.
func (l *Ledger) All() (map[string]*VoteRecord, error) {
	recs, err := l.repo.Load()
	if err != nil {
		return nil, err
	}
	out := make(map[string]*VoteRecord, len(recs))
	for id, rec := range recs {
		out[id] = rec.clone()
	}
	return out, nil
}
