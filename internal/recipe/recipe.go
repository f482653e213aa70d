package recipe

import "strings"

// Entry is one index record in the recipe index.
//
// The id is the normalized slug produced by NormalizeID and is the unique
// key across the index. Timestamps are RFC 3339 UTC strings so the index
// stays human-diffable and tolerates records written by older tooling.
type Entry struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Author     string `json:"author"`
	Likes      int    `json:"likes"`
	Category   string `json:"category"`
	Path       string `json:"path"`
	CreatedAt  string `json:"created_at,omitempty"`
	UpdatedAt  string `json:"updated_at,omitempty"`
	LastVoteAt string `json:"last_vote_at,omitempty"`
}

// Ingredient is one entry in a recipe's ingredient list.
type Ingredient struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity,omitempty"`
	Unit     string  `json:"unit,omitempty"`
}

// Detail is the per-recipe payload written alongside the index entry.
// It is written once at share time; votes never touch it.
type Detail struct {
	Ingredients []Ingredient `json:"ingredients"`
	Notes       string       `json:"notes"`
	Servings    int          `json:"servings"`
	Category    string       `json:"category"`
}

// Index is the full recipe index: a mapping of normalized id to entry.
type Index struct {
	Recipes map[string]*Entry `json:"recipes"`
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{Recipes: make(map[string]*Entry)}
}

// Get returns the entry with the given id, or nil.
func (ix *Index) Get(id string) *Entry {
	if ix.Recipes == nil {
		return nil
	}
	return ix.Recipes[id]
}

// FindByName returns the first entry whose name matches under
// case-insensitive comparison, or nil. Used to enforce name uniqueness
// at share time.
func (ix *Index) FindByName(name string) *Entry {
	for _, e := range ix.Recipes {
		if strings.EqualFold(e.Name, name) {
			return e
		}
	}
	return nil
}

// Put inserts or replaces the entry under its id.
func (ix *Index) Put(e *Entry) {
	if ix.Recipes == nil {
		ix.Recipes = make(map[string]*Entry)
	}
	ix.Recipes[e.ID] = e
}

// Len returns the number of entries in the index.
func (ix *Index) Len() int {
	return len(ix.Recipes)
}
