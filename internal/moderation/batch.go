package moderation

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// IssueCount pairs an issue message with how many recipes raised it.
type IssueCount struct {
	Issue string `json:"issue"`
	Count int    `json:"count"`
}

// Summary aggregates a batch moderation pass over a recipes directory.
type Summary struct {
	TotalRecipes  int      `json:"total_recipes"`
	Approved      int      `json:"approved_recipes"`
	Rejected      int      `json:"rejected_recipes"`
	TotalIssues   int      `json:"total_issues"`
	TotalWarnings int      `json:"total_warnings"`
	Results       []Result `json:"recipes"`

	ApprovalRate float64      `json:"approval_rate"`
	AverageScore float64      `json:"average_score"`
	CommonIssues []IssueCount `json:"most_common_issues"`
}

// ModerateDir validates every *.json file in dir, in filename order.
//
// A file that fails to decode counts as one rejected recipe with one
// issue but produces no Result; there is nothing to validate. The
// summary's averages cover only decodable recipes.
func (m *Moderator) ModerateDir(dir string) (*Summary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read recipes dir: %w", err)
	}

	s := &Summary{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			slog.Warn("recipe file failed to decode", "path", path, "error", err)
			s.Rejected++
			s.TotalIssues++
			continue
		}

		s.TotalRecipes++
		result := m.Validate(raw)
		s.Results = append(s.Results, result)
		if result.Approved {
			s.Approved++
		} else {
			s.Rejected++
		}
		s.TotalIssues += len(result.Issues)
		s.TotalWarnings += len(result.Warnings)
	}

	if s.TotalRecipes > 0 {
		s.ApprovalRate = float64(s.Approved) / float64(s.TotalRecipes) * 100
	}
	if len(s.Results) > 0 {
		total := 0
		for _, r := range s.Results {
			total += r.Score
		}
		s.AverageScore = float64(total) / float64(len(s.Results))
	}
	s.CommonIssues = commonIssues(s.Results)

	return s, nil
}

// commonIssues returns the five most frequent issue messages,
// first-seen order breaking ties.
func commonIssues(results []Result) []IssueCount {
	counts := make(map[string]int)
	var order []string
	for _, r := range results {
		for _, issue := range r.Issues {
			if counts[issue] == 0 {
				order = append(order, issue)
			}
			counts[issue]++
		}
	}

	out := make([]IssueCount, 0, len(order))
	for _, issue := range order {
		out = append(out, IssueCount{Issue: issue, Count: counts[issue]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}
