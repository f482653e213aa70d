package recipe

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FileStore persists the index and detail files as pretty-printed UTF-8
// JSON under a root directory, matching the layout consumed by the
// community repository:
//
//	<root>/recipes_index.json
//	<root>/recipes/<id>.json
type FileStore struct {
	root      string
	indexPath string
}

// NewFileStore creates a file-backed store rooted at dir.
// indexFile is the index filename relative to dir.
func NewFileStore(dir, indexFile string) *FileStore {
	return &FileStore{root: dir, indexPath: filepath.Join(dir, indexFile)}
}

// LoadIndex reads the index file.
//
// A missing file yields an empty index. A file that exists but fails to
// parse also yields an empty index, but the corruption is logged at
// Error level first: proceeding silently would overwrite the community's
// data on the next save without anyone noticing.
func (s *FileStore) LoadIndex() (*Index, error) {
	data, err := os.ReadFile(s.indexPath)
	if os.IsNotExist(err) {
		return NewIndex(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read index %s: %w", s.indexPath, err)
	}

	var ix Index
	if err := json.Unmarshal(data, &ix); err != nil {
		slog.Error("recipe index is corrupt, treating as empty",
			"path", s.indexPath, "error", err)
		return NewIndex(), nil
	}
	if ix.Recipes == nil {
		ix.Recipes = make(map[string]*Entry)
	}
	return &ix, nil
}

// SaveIndex writes the full index, pretty-printed, creating the root
// directory if needed. Map keys serialize sorted, so saves are stable
// and diff-friendly.
func (s *FileStore) SaveIndex(ix *Index) error {
	if err := os.MkdirAll(filepath.Dir(s.indexPath), 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	data, err := json.MarshalIndent(ix, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(s.indexPath, data, 0o644); err != nil {
		return fmt.Errorf("write index %s: %w", s.indexPath, err)
	}
	return nil
}

// WriteDetail writes the detail file for a recipe id under the recipes
// directory.
func (s *FileStore) WriteDetail(id string, d *Detail) error {
	p := filepath.Join(s.root, filepath.FromSlash(DetailPath(id)))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create recipes dir: %w", err)
	}
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal detail %s: %w", id, err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("write detail %s: %w", p, err)
	}
	return nil
}
