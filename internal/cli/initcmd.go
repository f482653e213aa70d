package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mealprep/mealbot/internal/recipe"
)

// InitOptions holds flags for the init command.
type InitOptions struct {
	*RootOptions
	Dir       string
	NoSamples bool
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a community recipe repository",
		Long: `Create the directory layout, issue templates, metadata and sample
recipes that the intake workflow expects. Existing files are left alone,
so init is safe to rerun on a repository that is already set up.

Example:
  mealbot init --dir ./community
  mealbot init --no-samples`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Dir, "dir", ".", "directory to scaffold")
	cmd.Flags().BoolVar(&opts.NoSamples, "no-samples", false, "skip the sample recipes")

	return cmd
}

// issueForm is a GitHub issue form definition, serialized to YAML under
// .github/ISSUE_TEMPLATE. Only the fields the intake templates use are
// modeled.
type issueForm struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Title       string      `yaml:"title"`
	Labels      []string    `yaml:"labels"`
	Body        []formBlock `yaml:"body"`
}

type formBlock struct {
	Type        string         `yaml:"type"`
	ID          string         `yaml:"id,omitempty"`
	Attributes  map[string]any `yaml:"attributes,omitempty"`
	Validations map[string]any `yaml:"validations,omitempty"`
}

// repoMetadata mirrors the metadata.json file tracked at the repository
// root alongside the index.
type repoMetadata struct {
	LastSync         string   `json:"last_sync"`
	TotalRecipes     int      `json:"total_recipes"`
	Categories       []string `json:"categories"`
	Contributors     []string `json:"contributors"`
	ModerationStatus string   `json:"moderation_status"`
	LastModeration   string   `json:"last_moderation"`
	RepositoryInfo   struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Version     string `json:"version"`
		CreatedAt   string `json:"created_at"`
	} `json:"repository_info"`
}

const gitignoreContent = `# Moderation output
moderation_report.txt

# Temporary files
*.tmp
*.temp
*.log

# OS noise
.DS_Store
Thumbs.db

# Editors
.vscode/
.idea/
*.swp
`

func runInit(opts *InitOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}

	dirs := []string{
		filepath.Join(opts.Dir, cfg.RecipesDir),
		filepath.Join(opts.Dir, ".github", "ISSUE_TEMPLATE"),
		filepath.Join(opts.Dir, filepath.Dir(cfg.LedgerPath)),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return WrapExitError(ExitCommandError, "failed to create directory", err)
		}
	}

	created := []string{}
	write := func(rel string, data []byte) error {
		path := filepath.Join(opts.Dir, rel)
		if _, err := os.Stat(path); err == nil {
			return nil
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return WrapExitError(ExitCommandError, "failed to write "+rel, err)
		}
		created = append(created, rel)
		return nil
	}

	shareYAML, err := yaml.Marshal(shareForm())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to render share template", err)
	}
	voteYAML, err := yaml.Marshal(voteForm())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to render vote template", err)
	}

	if err := write(filepath.Join(".github", "ISSUE_TEMPLATE", "share-recipe.yml"), shareYAML); err != nil {
		return err
	}
	if err := write(filepath.Join(".github", "ISSUE_TEMPLATE", "vote-recipe.yml"), voteYAML); err != nil {
		return err
	}
	if err := write(".gitignore", []byte(gitignoreContent)); err != nil {
		return err
	}

	store := recipe.NewFileStore(opts.Dir, cfg.IndexPath)
	ix, err := store.LoadIndex()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load index", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if !opts.NoSamples && ix.Len() == 0 {
		if err := writeSamples(opts.Dir, store, ix, now); err != nil {
			return WrapExitError(ExitCommandError, "failed to write sample recipes", err)
		}
		created = append(created, cfg.IndexPath)
	}

	meta, err := json.MarshalIndent(buildMetadata(ix, now), "", "  ")
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to render metadata", err)
	}
	if err := write("metadata.json", append(meta, '\n')); err != nil {
		return err
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]any{
			"dir":     opts.Dir,
			"created": created,
			"recipes": ix.Len(),
		})
	}
	return formatter.Success(fmt.Sprintf("initialized %s (%d files created, %d recipes)",
		opts.Dir, len(created), ix.Len()))
}

func shareForm() issueForm {
	return issueForm{
		Name:        "Share a recipe",
		Description: "Contribute a recipe to the community collection",
		Title:       "[Recipe] ",
		Labels:      []string{"recipe"},
		Body: []formBlock{
			{
				Type: "markdown",
				Attributes: map[string]any{
					"value": "Paste the recipe export below. The bot parses the fenced JSON block.",
				},
			},
			{
				Type: "textarea",
				ID:   "payload",
				Attributes: map[string]any{
					"label":       "Recipe JSON",
					"description": "Exported recipe, inside a ```json fenced block",
					"render":      "json",
				},
				Validations: map[string]any{"required": true},
			},
		},
	}
}

func voteForm() issueForm {
	return issueForm{
		Name:        "Vote for a recipe",
		Description: "Like a recipe that is already in the collection",
		Title:       "[Vote] ",
		Labels:      []string{"vote"},
		Body: []formBlock{
			{
				Type: "textarea",
				ID:   "payload",
				Attributes: map[string]any{
					"label":       "Vote JSON",
					"description": "Vote payload with recipe_id and build_id, inside a ```json fenced block",
					"render":      "json",
				},
				Validations: map[string]any{"required": true},
			},
		},
	}
}

// sampleRecipe is the full document written for a sample: unlike the
// detail payload the intake workflow persists, samples carry the name
// so they pass moderation as-is.
type sampleRecipe struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Servings    int                 `json:"servings"`
	Category    string              `json:"category"`
	Notes       string              `json:"notes"`
	Ingredients []recipe.Ingredient `json:"ingredients"`
	SharedBy    string              `json:"shared_by"`
	SharedAt    string              `json:"shared_at"`
}

func writeSamples(dir string, store recipe.Store, ix *recipe.Index, now string) error {
	samples := []sampleRecipe{
		{
			ID:       "paella-valenciana",
			Name:     "Paella Valenciana",
			Servings: 4,
			Category: "Arroces",
			Notes:    "Receta tradicional valenciana con arroz bomba",
			Ingredients: []recipe.Ingredient{
				{Name: "Arroz bomba", Quantity: 400, Unit: "g"},
				{Name: "Pollo", Quantity: 300, Unit: "g"},
				{Name: "Judías verdes", Quantity: 150, Unit: "g"},
				{Name: "Azafrán", Quantity: 1, Unit: "pizca"},
			},
		},
		{
			ID:       "ensalada-cesar",
			Name:     "Ensalada César",
			Servings: 2,
			Category: "Ensaladas",
			Notes:    "Clásica ensalada César con pollo a la plancha",
			Ingredients: []recipe.Ingredient{
				{Name: "Lechuga romana", Quantity: 1, Unit: "cabeza"},
				{Name: "Pollo a la plancha", Quantity: 200, Unit: "g"},
				{Name: "Parmesano rallado", Quantity: 50, Unit: "g"},
			},
		},
		{
			ID:       "risotto-de-hongos",
			Name:     "Risotto de Hongos",
			Servings: 3,
			Category: "Arroces",
			Notes:    "Cremoso risotto con hongos porcini",
			Ingredients: []recipe.Ingredient{
				{Name: "Arroz arborio", Quantity: 300, Unit: "g"},
				{Name: "Hongos porcini", Quantity: 200, Unit: "g"},
				{Name: "Caldo de verduras", Quantity: 500, Unit: "ml"},
			},
		},
	}

	for _, s := range samples {
		s.SharedBy = "MealPrep Community"
		s.SharedAt = now

		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return err
		}
		data = append(data, '\n')
		path := filepath.Join(dir, recipe.DetailPath(s.ID))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}

		ix.Put(&recipe.Entry{
			ID:        s.ID,
			Name:      s.Name,
			Author:    s.SharedBy,
			Category:  s.Category,
			Path:      recipe.DetailPath(s.ID),
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return store.SaveIndex(ix)
}

func buildMetadata(ix *recipe.Index, now string) repoMetadata {
	catSet := map[string]struct{}{}
	authorSet := map[string]struct{}{}
	for _, e := range ix.Recipes {
		if e.Category != "" {
			catSet[e.Category] = struct{}{}
		}
		if e.Author != "" {
			authorSet[e.Author] = struct{}{}
		}
	}

	meta := repoMetadata{
		LastSync:         now,
		TotalRecipes:     ix.Len(),
		Categories:       sortedKeys(catSet),
		Contributors:     sortedKeys(authorSet),
		ModerationStatus: "ready",
		LastModeration:   now,
	}
	meta.RepositoryInfo.Name = "mealprep-community"
	meta.RepositoryInfo.Description = "Recipes shared by the MealPrep community"
	meta.RepositoryInfo.Version = "1.0.0"
	meta.RepositoryInfo.CreatedAt = now
	return meta
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
