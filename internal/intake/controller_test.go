package intake

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealprep/mealbot/internal/ledger"
	"github.com/mealprep/mealbot/internal/recipe"
	"github.com/mealprep/mealbot/internal/testutil"
)

func newController(t *testing.T) (*Controller, *recipe.MemStore, *ledger.Ledger, *testutil.ManualClock) {
	t.Helper()
	clock := testutil.NewManualClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	store := recipe.NewMemStore()
	votes := ledger.New(ledger.NewMemRepo(), ledger.WithClock(clock.Now))
	c := New(store, votes, WithClock(clock.Now))
	return c, store, votes, clock
}

func share(t *testing.T, c *Controller, p *SharePayload) *Outcome {
	t.Helper()
	out, err := c.Share(p)
	require.NoError(t, err)
	require.True(t, out.Accepted, "share rejected: %s", out.Message)
	return out
}

func TestShare_CreatesEntryAndDetail(t *testing.T) {
	c, store, _, _ := newController(t)

	out := share(t, c, &SharePayload{
		Name:     "Pollo al Ajillo!",
		Author:   "maria",
		Category: "Spanish",
		Servings: 4,
		Notes:    "family recipe",
		Ingredients: []recipe.Ingredient{
			{Name: "Chicken", Quantity: 1, Unit: "kg"},
			{Name: "Garlic", Quantity: 8, Unit: "cloves"},
		},
	})
	assert.Equal(t, "pollo-al-ajillo", out.RecipeID)

	ix, err := store.LoadIndex()
	require.NoError(t, err)
	entry := ix.Get("pollo-al-ajillo")
	require.NotNil(t, entry)
	assert.Equal(t, "Pollo al Ajillo!", entry.Name)
	assert.Equal(t, "maria", entry.Author)
	assert.Equal(t, 0, entry.Likes)
	assert.Equal(t, "recipes/pollo-al-ajillo.json", entry.Path)
	assert.Equal(t, "2025-06-01T12:00:00Z", entry.CreatedAt)
	assert.Equal(t, entry.CreatedAt, entry.UpdatedAt)

	detail := store.Detail("pollo-al-ajillo")
	require.NotNil(t, detail)
	assert.Equal(t, 4, detail.Servings)
	assert.Len(t, detail.Ingredients, 2)
}

func TestShare_DuplicateID(t *testing.T) {
	c, _, _, _ := newController(t)
	share(t, c, &SharePayload{Name: "Tacos"})

	out, err := c.Share(&SharePayload{ID: "tacos", Name: "Other Tacos"})
	require.NoError(t, err)
	assert.False(t, out.Accepted)
	assert.Equal(t, CodeDuplicateID, out.Code)
	assert.Contains(t, out.Message, `"tacos"`)
}

func TestShare_DuplicateName_CaseInsensitive(t *testing.T) {
	c, store, _, _ := newController(t)
	share(t, c, &SharePayload{Name: "Tacos"})

	out, err := c.Share(&SharePayload{ID: "tacos-v2", Name: "TACOS"})
	require.NoError(t, err)
	assert.False(t, out.Accepted)
	assert.Equal(t, CodeDuplicateName, out.Code)
	assert.Contains(t, out.Message, `"Tacos"`, "message names the existing recipe")

	ix, err := store.LoadIndex()
	require.NoError(t, err)
	assert.Equal(t, 1, ix.Len(), "rejection must not mutate the store")
}

func TestShare_EmptyPayloadDefaults(t *testing.T) {
	c, store, _, _ := newController(t)

	out, err := c.Share(&SharePayload{})
	require.NoError(t, err)
	require.True(t, out.Accepted)
	assert.Equal(t, "recipe", out.RecipeID, "empty input slugs to the placeholder id")

	detail := store.Detail("recipe")
	require.NotNil(t, detail)
	assert.Equal(t, 1, detail.Servings, "servings defaults to 1")
	assert.NotNil(t, detail.Ingredients)
}

func TestVote_IncrementsLikes(t *testing.T) {
	c, store, _, clock := newController(t)
	share(t, c, &SharePayload{Name: "Tacos"})

	clock.Advance(time.Hour)
	out, err := c.Vote(&VotePayload{Name: "Tacos", BuildID: "build-abcdef-123456"})
	require.NoError(t, err)
	require.True(t, out.Accepted, out.Message)

	ix, err := store.LoadIndex()
	require.NoError(t, err)
	entry := ix.Get("tacos")
	require.NotNil(t, entry)
	assert.Equal(t, 1, entry.Likes)
	assert.Equal(t, "2025-06-01T13:00:00Z", entry.UpdatedAt)
	assert.Equal(t, "2025-06-01T13:00:00Z", entry.LastVoteAt)
	assert.Equal(t, "2025-06-01T12:00:00Z", entry.CreatedAt, "created_at untouched")
}

func TestVote_MissingBuildID_NothingChanges(t *testing.T) {
	c, store, votes, _ := newController(t)
	share(t, c, &SharePayload{Name: "Tacos"})

	out, err := c.Vote(&VotePayload{Name: "Tacos", BuildID: ""})
	require.NoError(t, err)
	assert.False(t, out.Accepted)
	assert.Equal(t, CodeMissingBuildID, out.Code)
	assert.Contains(t, out.Message, "required")

	ix, err := store.LoadIndex()
	require.NoError(t, err)
	assert.Equal(t, 0, ix.Get("tacos").Likes, "recipe store unchanged")

	stats, err := votes.RecipeStats("tacos")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.UniqueVoters, "ledger unchanged")
}

func TestVote_DuplicateRejectedWithPartialIdentifier(t *testing.T) {
	c, store, _, _ := newController(t)
	share(t, c, &SharePayload{Name: "Tacos"})

	first, err := c.Vote(&VotePayload{ID: "tacos", BuildID: "build-abcdef-123456"})
	require.NoError(t, err)
	require.True(t, first.Accepted)

	second, err := c.Vote(&VotePayload{ID: "tacos", BuildID: "build-abcdef-123456"})
	require.NoError(t, err)
	assert.False(t, second.Accepted)
	assert.Equal(t, CodeAlreadyVoted, second.Code)
	assert.Contains(t, second.Message, "build-ab...")
	assert.NotContains(t, second.Message, "build-abcdef-123456",
		"the full identifier must not leak")

	ix, err := store.LoadIndex()
	require.NoError(t, err)
	assert.Equal(t, 1, ix.Get("tacos").Likes, "likes unchanged on duplicate")
}

func TestVote_UnknownRecipe(t *testing.T) {
	c, _, _, _ := newController(t)

	out, err := c.Vote(&VotePayload{Name: "Nonexistent", BuildID: "build-001"})
	require.NoError(t, err)
	assert.False(t, out.Accepted)
	assert.Equal(t, CodeNotFound, out.Code)
	assert.Contains(t, out.Message, "not found")
}

func TestVote_TwoInstallations(t *testing.T) {
	c, store, _, _ := newController(t)
	share(t, c, &SharePayload{Name: "Tacos", Likes: 5})

	for _, buildID := range []string{"build-001", "build-002"} {
		out, err := c.Vote(&VotePayload{ID: "tacos", BuildID: buildID})
		require.NoError(t, err)
		require.True(t, out.Accepted, out.Message)
	}

	ix, err := store.LoadIndex()
	require.NoError(t, err)
	assert.Equal(t, 7, ix.Get("tacos").Likes, "each installation adds one like")
}

func TestProcess_RoutesAndNoops(t *testing.T) {
	c, _, _, _ := newController(t)

	out, err := c.Process(&Event{Title: "question about meal prep"})
	require.NoError(t, err)
	assert.Equal(t, "none", out.Action)
	assert.False(t, out.Accepted)

	out, err = c.Process(&Event{
		Title:   "share: tacos",
		Payload: []byte(`{"name": "Tacos", "servings": 2}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "share", out.Action)
	assert.True(t, out.Accepted)

	out, err = c.Process(&Event{
		Title:   "vote: tacos",
		Payload: []byte(`{"id": "tacos", "build_id": "build-001"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "vote", out.Action)
	assert.True(t, out.Accepted)
}

func TestProcess_MalformedVotePayloadRejects(t *testing.T) {
	c, _, _, _ := newController(t)

	// No payload at all: the vote workflow runs with empty fields and
	// rejects on the missing build id.
	out, err := c.Process(&Event{Title: "vote: tacos"})
	require.NoError(t, err)
	assert.False(t, out.Accepted)
	assert.Equal(t, CodeMissingBuildID, out.Code)
}
