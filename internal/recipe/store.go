package recipe

import "path"

// Store is the load/save contract for the recipe index and the
// per-recipe detail files.
//
// Both implementations follow the same model as the persisted form:
// LoadIndex materializes the whole index, callers mutate it in memory,
// and SaveIndex writes it back in full. There is no partial update and
// no concurrency control; callers are expected to process one event at
// a time (see the intake controller).
type Store interface {
	// LoadIndex returns the current index. A missing index yields an
	// empty one; a corrupt index is reported loudly by the
	// implementation and also yields an empty one.
	LoadIndex() (*Index, error)

	// SaveIndex writes the full index back.
	SaveIndex(ix *Index) error

	// WriteDetail persists the detail payload for the given recipe id.
	WriteDetail(id string, d *Detail) error
}

// DetailPath returns the index-relative path of a recipe's detail file.
func DetailPath(id string) string {
	return path.Join("recipes", id+".json")
}

// MemStore is an in-memory Store for tests.
//
// Load and save deep-copy the index so tests observe the same
// load-mutate-save discipline as the file-backed store: mutations are
// invisible until SaveIndex.
type MemStore struct {
	index   *Index
	details map[string]*Detail
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{index: NewIndex(), details: make(map[string]*Detail)}
}

// LoadIndex implements Store.
func (m *MemStore) LoadIndex() (*Index, error) {
	return cloneIndex(m.index), nil
}

// SaveIndex implements Store.
func (m *MemStore) SaveIndex(ix *Index) error {
	m.index = cloneIndex(ix)
	return nil
}

// WriteDetail implements Store.
func (m *MemStore) WriteDetail(id string, d *Detail) error {
	cp := *d
	cp.Ingredients = append([]Ingredient(nil), d.Ingredients...)
	m.details[id] = &cp
	return nil
}

// Detail returns the stored detail for a recipe id, or nil. Test helper.
func (m *MemStore) Detail(id string) *Detail {
	return m.details[id]
}

func cloneIndex(ix *Index) *Index {
	out := NewIndex()
	for id, e := range ix.Recipes {
		cp := *e
		out.Recipes[id] = &cp
	}
	return out
}
