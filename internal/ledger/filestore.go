package ledger

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FileRepo persists the ledger as one pretty-printed JSON file mapping
// build id to record.
type FileRepo struct {
	path string
}

// NewFileRepo creates a file-backed repository at path.
func NewFileRepo(path string) *FileRepo {
	return &FileRepo{path: path}
}

// Load reads the ledger file.
//
// A missing file yields an empty ledger. A file that exists but fails
// to parse also yields an empty ledger, logged at Error level first:
// the next save would silently discard every installation's voting
// history, and that must never happen without a trace.
func (r *FileRepo) Load() (map[string]*VoteRecord, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return make(map[string]*VoteRecord), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", r.path, err)
	}

	var recs map[string]*VoteRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		slog.Error("vote ledger is corrupt, treating as empty",
			"path", r.path, "error", err)
		return make(map[string]*VoteRecord), nil
	}
	if recs == nil {
		recs = make(map[string]*VoteRecord)
	}
	return recs, nil
}

// Save writes the full ledger, pretty-printed, creating parent
// directories if needed.
func (r *FileRepo) Save(recs map[string]*VoteRecord) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("write ledger %s: %w", r.path, err)
	}
	return nil
}
