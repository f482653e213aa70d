package ledger

// Repository is the load/save contract for the persisted ledger.
//
// Implementations return the whole ledger on Load and replace it on
// Save; the Ledger performs all mutation in memory between the two.
type Repository interface {
	// Load returns the current ledger. A missing ledger yields an empty
	// map; a corrupt one is reported loudly by the implementation and
	// also yields an empty map.
	Load() (map[string]*VoteRecord, error)

	// Save writes the full ledger back.
	Save(recs map[string]*VoteRecord) error
}

// MemRepo is an in-memory Repository for tests.
type MemRepo struct {
	recs map[string]*VoteRecord
}

// NewMemRepo creates an empty in-memory repository.
func NewMemRepo() *MemRepo {
	return &MemRepo{recs: make(map[string]*VoteRecord)}
}

// Load implements Repository.
func (m *MemRepo) Load() (map[string]*VoteRecord, error) {
	out := make(map[string]*VoteRecord, len(m.recs))
	for id, rec := range m.recs {
		out[id] = rec.clone()
	}
	return out, nil
}

// Save implements Repository.
func (m *MemRepo) Save(recs map[string]*VoteRecord) error {
	out := make(map[string]*VoteRecord, len(recs))
	for id, rec := range recs {
		out[id] = rec.clone()
	}
	m.recs = out
	return nil
}

// Len returns the number of stored records. Test helper.
func (m *MemRepo) Len() int {
	return len(m.recs)
}
