// Package config loads the optional mealbot configuration file.
//
// The file is CUE, validated against an embedded schema that carries
// every default, so a missing file yields a fully usable configuration.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schema.cue
var schemaCUE string

// DefaultPath is where Load looks when no explicit path is given.
const DefaultPath = "mealbot.cue"

// Config holds all tunable paths and thresholds.
type Config struct {
	IndexPath     string   `json:"index_path"`
	RecipesDir    string   `json:"recipes_dir"`
	LedgerPath    string   `json:"ledger_path"`
	ReportPath    string   `json:"report_path"`
	RetentionDays int      `json:"retention_days"`
	GitName       string   `json:"git_name"`
	GitEmail      string   `json:"git_email"`
	BannedWords   []string `json:"banned_words"`
}

// Default returns the configuration with every schema default applied.
func Default() Config {
	cfg, err := decode(cuecontext.New().CompileString(schemaCUE))
	if err != nil {
		// The embedded schema is part of the binary; failing to decode
		// it is a programming error, not a runtime condition.
		panic(fmt.Sprintf("config: embedded schema is broken: %v", err))
	}
	return cfg
}

// Load reads and validates the config file at path. A missing file is
// not an error: the schema defaults apply. A file that exists but does
// not satisfy the schema is rejected.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("compile schema: %w", err)
	}

	user := ctx.CompileBytes(data, cue.Filename(path))
	if err := user.Err(); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	merged := schema.Unify(user)
	if err := merged.Validate(cue.Concrete(true), cue.Final()); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}

	cfg, err := decode(merged)
	if err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}

func decode(v cue.Value) (Config, error) {
	var cfg Config
	if err := v.Decode(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
