package ledger

import (
	"encoding/json"
	"sort"
)

// VoteRecord is one installation's voting history, keyed in the ledger
// by its build id.
//
// VotedRecipes is a true set in memory. On disk it serializes as a
// sorted JSON array so the ledger file stays stable and diff-friendly;
// duplicates in a hand-edited file collapse on load.
//
// TotalVotes is always recomputed as the set's cardinality when the set
// changes, never incremented independently, so it cannot drift.
type VoteRecord struct {
	FirstVoteAt  string
	LastVoteAt   string
	VotedRecipes map[string]struct{}
	TotalVotes   int
}

type recordJSON struct {
	FirstVoteAt  string   `json:"first_vote_at,omitempty"`
	VotedRecipes []string `json:"voted_recipes"`
	TotalVotes   int      `json:"total_votes"`
	LastVoteAt   string   `json:"last_vote_at,omitempty"`
}

// Has reports whether the record contains a vote for the recipe id.
func (r *VoteRecord) Has(recipeID string) bool {
	_, ok := r.VotedRecipes[recipeID]
	return ok
}

// Recipes returns the voted recipe ids in sorted order.
func (r *VoteRecord) Recipes() []string {
	out := make([]string, 0, len(r.VotedRecipes))
	for id := range r.VotedRecipes {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON implements json.Marshaler.
func (r *VoteRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		FirstVoteAt:  r.FirstVoteAt,
		VotedRecipes: r.Recipes(),
		TotalVotes:   r.TotalVotes,
		LastVoteAt:   r.LastVoteAt,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *VoteRecord) UnmarshalJSON(data []byte) error {
	var rj recordJSON
	if err := json.Unmarshal(data, &rj); err != nil {
		return err
	}
	r.FirstVoteAt = rj.FirstVoteAt
	r.LastVoteAt = rj.LastVoteAt
	r.TotalVotes = rj.TotalVotes
	r.VotedRecipes = make(map[string]struct{}, len(rj.VotedRecipes))
	for _, id := range rj.VotedRecipes {
		r.VotedRecipes[id] = struct{}{}
	}
	return nil
}

func (r *VoteRecord) clone() *VoteRecord {
	cp := &VoteRecord{
		FirstVoteAt:  r.FirstVoteAt,
		LastVoteAt:   r.LastVoteAt,
		TotalVotes:   r.TotalVotes,
		VotedRecipes: make(map[string]struct{}, len(r.VotedRecipes)),
	}
	for id := range r.VotedRecipes {
		cp.VotedRecipes[id] = struct{}{}
	}
	return cp
}
