// Package moderation validates stored recipe detail files against
// structural and content-quality rules and scores each recipe.
//
// The moderator is a pure function over one recipe's decoded JSON; it
// never touches the vote ledger. It runs as a disconnected batch pass,
// not as a gate inside the intake workflows.
package moderation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultCategory is the placeholder category that earns no quality
// bonus.
const DefaultCategory = "Uncategorized"

// DefaultBannedWords is the built-in content filter list. The config
// file can override it.
var DefaultBannedWords = []string{
	"spam", "xxx", "adult", "nsfw", "hate", "violence",
	"illegal", "fake", "scam", "phishing", "malware",
}

// requiredFields must be present and non-empty in every recipe.
var requiredFields = []string{"name", "servings", "category", "ingredients"}

// namePattern is the allow-list for recipe names: letters including
// Spanish accents, digits, whitespace, and light punctuation.
var namePattern = regexp.MustCompile(`^[a-zA-ZáéíóúñÁÉÍÓÚÑ0-9\s\-\.\,\:\;\(\)]+$`)

// Result is the moderation verdict for one recipe.
//
// A recipe is approved iff it has zero issues; warnings never block
// approval. Score starts at 100, loses 20 per issue and 5 per warning,
// gains 5 each for notes, three or more ingredients, and a non-default
// category, clamped to [0, 100].
type Result struct {
	RecipeID   string   `json:"recipe_id"`
	RecipeName string   `json:"recipe_name"`
	Issues     []string `json:"issues"`
	Warnings   []string `json:"warnings"`
	Approved   bool     `json:"approved"`
	Score      int      `json:"score"`
}

// Moderator holds the rule configuration.
type Moderator struct {
	bannedWords []string
}

// Option configures a Moderator.
type Option func(*Moderator)

// WithBannedWords replaces the default content filter list.
func WithBannedWords(words []string) Option {
	return func(m *Moderator) { m.bannedWords = words }
}

// New creates a Moderator with the default rule set.
func New(opts ...Option) *Moderator {
	m := &Moderator{bannedWords: DefaultBannedWords}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Validate checks one decoded recipe against every rule. Rules are
// independent; order only affects message ordering.
func (m *Moderator) Validate(raw map[string]any) Result {
	var issues, warnings []string

	for _, field := range requiredFields {
		if !truthy(raw[field]) {
			issues = append(issues, "missing required field: "+field)
		}
	}

	if v := raw["name"]; truthy(v) {
		name, ok := v.(string)
		switch {
		case !ok:
			issues = append(issues, "recipe name must be text")
		default:
			name = strings.TrimSpace(name)
			n := utf8.RuneCountInString(name)
			switch {
			case n < 3:
				issues = append(issues, "recipe name too short (minimum 3 characters)")
			case n > 100:
				issues = append(issues, "recipe name too long (maximum 100 characters)")
			case !namePattern.MatchString(name):
				issues = append(issues, "recipe name contains invalid characters")
			case !containsLetter(name):
				issues = append(issues, "recipe name must contain at least one letter")
			}
		}
	}

	if v := raw["servings"]; truthy(v) {
		servings, ok := asInt(v)
		switch {
		case !ok:
			issues = append(issues, "servings must be a whole number")
		case servings < 1:
			issues = append(issues, "servings must be greater than 0")
		case servings > 100:
			warnings = append(warnings, "servings unusually high (more than 100)")
		}
	}

	if v := raw["category"]; truthy(v) {
		category, ok := v.(string)
		switch {
		case !ok:
			issues = append(issues, "category must be text")
		default:
			n := utf8.RuneCountInString(strings.TrimSpace(category))
			switch {
			case n < 2:
				issues = append(issues, "category too short (minimum 2 characters)")
			case n > 50:
				issues = append(issues, "category too long (maximum 50 characters)")
			}
		}
	}

	if v := raw["ingredients"]; truthy(v) {
		list, ok := v.([]any)
		switch {
		case !ok:
			issues = append(issues, "ingredients must be a list")
		case len(list) == 0:
			issues = append(issues, "recipe must have at least one ingredient")
		default:
			if len(list) > 50 {
				warnings = append(warnings, "a lot of ingredients (more than 50)")
			}
			for i, item := range list {
				obj, ok := item.(map[string]any)
				if !ok {
					issues = append(issues, fmt.Sprintf("ingredient %d must be an object", i+1))
					continue
				}
				if !truthy(obj["name"]) {
					issues = append(issues, fmt.Sprintf("ingredient %d has no name", i+1))
					continue
				}
				if name, ok := obj["name"].(string); ok {
					n := utf8.RuneCountInString(strings.TrimSpace(name))
					switch {
					case n < 2:
						issues = append(issues, fmt.Sprintf("ingredient %d: name too short", i+1))
					case n > 100:
						issues = append(issues, fmt.Sprintf("ingredient %d: name too long", i+1))
					}
				}
			}
		}
	}

	// Content filter: match against the full serialized record so a
	// banned word hiding in any field is caught.
	if serialized, err := json.Marshal(raw); err == nil {
		text := strings.ToLower(string(serialized))
		for _, word := range m.bannedWords {
			if strings.Contains(text, word) {
				issues = append(issues, "inappropriate content detected: "+word)
			}
		}
	}

	if v := raw["notes"]; truthy(v) {
		if notes, ok := v.(string); ok {
			if utf8.RuneCountInString(strings.TrimSpace(notes)) > 500 {
				warnings = append(warnings, "notes very long (more than 500 characters)")
			}
		}
	}

	return Result{
		RecipeID:   stringField(raw, "id", "unknown"),
		RecipeName: stringField(raw, "name", "Unnamed"),
		Issues:     issues,
		Warnings:   warnings,
		Approved:   len(issues) == 0,
		Score:      score(raw, issues, warnings),
	}
}

// score computes the quality score for a recipe given its verdicts.
func score(raw map[string]any, issues, warnings []string) int {
	s := 100
	s -= len(issues) * 20
	s -= len(warnings) * 5

	if truthy(raw["notes"]) {
		s += 5
	}
	if list, ok := raw["ingredients"].([]any); ok && len(list) >= 3 {
		s += 5
	}
	if category, ok := raw["category"].(string); ok && category != "" && category != DefaultCategory {
		s += 5
	}

	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// truthy reports whether a decoded JSON value counts as present: nil,
// empty strings, zero numbers, false, and empty collections do not.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case bool:
		return val
	case float64:
		return val != 0
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}

// asInt coerces a decoded JSON value to an integer the way lenient
// intake data needs: numbers truncate, numeric strings parse, booleans
// count as 0/1.
func asInt(v any) (int, bool) {
	switch val := v.(type) {
	case float64:
		return int(val), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, false
		}
		return n, true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func containsLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// stringField returns the field as a string, the fallback when the key
// is absent, and the empty string when present but not text.
func stringField(raw map[string]any, key, fallback string) string {
	v, ok := raw[key]
	if !ok {
		return fallback
	}
	s, _ := v.(string)
	return s
}
