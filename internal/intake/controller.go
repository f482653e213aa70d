// Package intake parses inbound issue events and dispatches them to the
// share and vote workflows against the recipe store and the vote ledger.
package intake

import (
	"strings"
	"time"

	"github.com/mealprep/mealbot/internal/ledger"
	"github.com/mealprep/mealbot/internal/recipe"
)

// Outcome is the terminal result of processing one event.
type Outcome struct {
	Action   string     `json:"action"`
	Accepted bool       `json:"accepted"`
	Code     RejectCode `json:"code,omitempty"`
	Message  string     `json:"message"`
	RecipeID string     `json:"recipe_id,omitempty"`
	BuildID  string     `json:"build_id,omitempty"`
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides the wall clock used for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// Controller runs the share and vote workflows. It owns no state of its
// own; everything lives in the injected store and ledger.
type Controller struct {
	recipes recipe.Store
	votes   *ledger.Ledger
	now     func() time.Time
}

// New creates a Controller over the given store and ledger.
func New(recipes recipe.Store, votes *ledger.Ledger, opts ...Option) *Controller {
	c := &Controller{recipes: recipes, votes: votes, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Process routes and runs one event. Rejections come back as a
// non-accepted Outcome, never as an error; errors are reserved for
// storage failures.
func (c *Controller) Process(evt *Event) (*Outcome, error) {
	action := evt.Route()
	switch action {
	case ActionShare:
		var p SharePayload
		evt.decodePayload(&p)
		return c.Share(&p)
	case ActionVote:
		var p VotePayload
		evt.decodePayload(&p)
		return c.Vote(&p)
	default:
		return &Outcome{
			Action:  action.String(),
			Message: "no action for this issue",
		}, nil
	}
}

// Share runs the create-recipe workflow.
//
// The id normalizes from the explicit id or the name. A collision on id
// or on case-insensitively compared name rejects with a message naming
// the conflicting field. On acceptance the detail file is written first,
// then the index entry is inserted and the index saved.
func (c *Controller) Share(p *SharePayload) (*Outcome, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = "Untitled"
	}
	source := p.ID
	if source == "" {
		source = p.Name
	}
	rid := recipe.NormalizeID(source)

	out := &Outcome{Action: ActionShare.String(), RecipeID: rid}

	ix, err := c.recipes.LoadIndex()
	if err != nil {
		return nil, err
	}
	if ix.Get(rid) != nil {
		return rejected(out, reject(CodeDuplicateID,
			"a recipe with id %q already exists", rid)), nil
	}
	if existing := ix.FindByName(name); existing != nil {
		return rejected(out, reject(CodeDuplicateName,
			"a recipe named %q already exists", existing.Name)), nil
	}

	now := c.now().UTC().Format(time.RFC3339)
	entry := &recipe.Entry{
		ID:        rid,
		Name:      name,
		Author:    strings.TrimSpace(p.Author),
		Likes:     p.Likes,
		Category:  strings.TrimSpace(p.Category),
		Path:      recipe.DetailPath(rid),
		CreatedAt: now,
		UpdatedAt: now,
	}

	servings := p.Servings
	if servings == 0 {
		servings = 1
	}
	ingredients := p.Ingredients
	if ingredients == nil {
		ingredients = []recipe.Ingredient{}
	}
	detail := &recipe.Detail{
		Ingredients: ingredients,
		Notes:       p.Notes,
		Servings:    servings,
		Category:    p.Category,
	}

	if err := c.recipes.WriteDetail(rid, detail); err != nil {
		return nil, err
	}
	ix.Put(entry)
	if err := c.recipes.SaveIndex(ix); err != nil {
		return nil, err
	}

	out.Accepted = true
	out.Message = "Thanks for sharing! The recipe was added."
	return out, nil
}

// Vote runs the increment-likes workflow, gated by the ledger.
//
// The ledger is written before the index: a crash between the two
// leaves the ledger saying "voted" while the like was never counted.
// That vote is lost, not retried. The window is inherent to the two
// separate files and is accepted, not papered over.
func (c *Controller) Vote(p *VotePayload) (*Outcome, error) {
	source := p.ID
	if source == "" {
		source = p.Name
	}
	rid := recipe.NormalizeID(source)
	buildID := strings.TrimSpace(p.BuildID)

	out := &Outcome{Action: ActionVote.String(), RecipeID: rid, BuildID: shortBuildID(buildID)}

	if buildID == "" {
		return rejected(out, reject(CodeMissingBuildID,
			"a build identifier is required to vote")), nil
	}

	voted, err := c.votes.HasVoted(buildID, rid)
	if err != nil {
		return nil, err
	}
	if voted {
		return rejected(out, reject(CodeAlreadyVoted,
			"installation %s has already voted for this recipe", shortBuildID(buildID))), nil
	}

	ix, err := c.recipes.LoadIndex()
	if err != nil {
		return nil, err
	}
	entry := ix.Get(rid)
	if entry == nil {
		return rejected(out, reject(CodeNotFound, "recipe %q not found", rid)), nil
	}

	if err := c.votes.RecordVote(buildID, rid, entry.Name); err != nil {
		return nil, err
	}

	now := c.now().UTC().Format(time.RFC3339)
	entry.Likes++
	entry.UpdatedAt = now
	entry.LastVoteAt = now
	if err := c.recipes.SaveIndex(ix); err != nil {
		return nil, err
	}

	out.Accepted = true
	out.Message = "Thanks for voting! The like counter was updated."
	return out, nil
}

// shortBuildID returns enough of an installation identifier to be
// recognizable without echoing the whole value.
func shortBuildID(buildID string) string {
	if len(buildID) <= 8 {
		return buildID
	}
	return buildID[:8] + "..."
}

func rejected(out *Outcome, re *RejectError) *Outcome {
	out.Code = re.Code
	out.Message = re.Message
	return out
}
