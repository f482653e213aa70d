package recipe

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_LoadIndex_Missing(t *testing.T) {
	s := NewFileStore(t.TempDir(), "recipes_index.json")

	ix, err := s.LoadIndex()
	require.NoError(t, err)
	assert.Equal(t, 0, ix.Len())
}

func TestFileStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir, "recipes_index.json")

	ix := NewIndex()
	ix.Put(&Entry{
		ID:       "tacos",
		Name:     "Tacos",
		Author:   "maria",
		Likes:    3,
		Category: "Mexican",
		Path:     DetailPath("tacos"),
	})
	require.NoError(t, s.SaveIndex(ix))

	got, err := s.LoadIndex()
	require.NoError(t, err)
	require.Equal(t, 1, got.Len())
	e := got.Get("tacos")
	require.NotNil(t, e)
	assert.Equal(t, "Tacos", e.Name)
	assert.Equal(t, 3, e.Likes)
	assert.Equal(t, "recipes/tacos.json", e.Path)
}

func TestFileStore_LoadIndex_Corrupt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recipes_index.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := NewFileStore(dir, "recipes_index.json")
	ix, err := s.LoadIndex()
	require.NoError(t, err)
	assert.Equal(t, 0, ix.Len(), "corrupt index loads as empty")
}

func TestFileStore_SaveIndex_PrettyPrinted(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir, "recipes_index.json")

	ix := NewIndex()
	ix.Put(&Entry{ID: "tacos", Name: "Tacos"})
	require.NoError(t, s.SaveIndex(ix))

	data, err := os.ReadFile(filepath.Join(dir, "recipes_index.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"recipes\"", "index is indented")
	assert.Equal(t, byte('\n'), data[len(data)-1], "file ends with newline")
}

func TestFileStore_WriteDetail(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir, "recipes_index.json")

	d := &Detail{
		Ingredients: []Ingredient{{Name: "Tortillas", Quantity: 12, Unit: "pieces"}},
		Notes:       "street style",
		Servings:    4,
		Category:    "Mexican",
	}
	require.NoError(t, s.WriteDetail("tacos", d))

	data, err := os.ReadFile(filepath.Join(dir, "recipes", "tacos.json"))
	require.NoError(t, err)

	var got Detail
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, 4, got.Servings)
	require.Len(t, got.Ingredients, 1)
	assert.Equal(t, "Tortillas", got.Ingredients[0].Name)
}

func TestMemStore_SaveIsolation(t *testing.T) {
	m := NewMemStore()

	ix, err := m.LoadIndex()
	require.NoError(t, err)
	ix.Put(&Entry{ID: "tacos", Name: "Tacos"})

	// Mutation is invisible until saved
	again, err := m.LoadIndex()
	require.NoError(t, err)
	assert.Equal(t, 0, again.Len())

	require.NoError(t, m.SaveIndex(ix))
	saved, err := m.LoadIndex()
	require.NoError(t, err)
	assert.Equal(t, 1, saved.Len())
}
