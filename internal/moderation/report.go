package moderation

import (
	"fmt"
	"strings"
	"time"
)

const reportRule = "============================================================"

// RenderReport formats a batch summary as the plain-text moderation
// report. The timestamp is injected so reports are reproducible.
func RenderReport(s *Summary, at time.Time) string {
	var b strings.Builder

	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	line(reportRule)
	line("AUTOMATIC MODERATION REPORT")
	line(reportRule)
	line("Date: %s", at.Format("2006-01-02 15:04:05"))
	line("")

	line("OVERVIEW:")
	line("  Total recipes: %d", s.TotalRecipes)
	line("  Approved: %d", s.Approved)
	line("  Rejected: %d", s.Rejected)
	line("  Approval rate: %.1f%%", s.ApprovalRate)
	line("  Average score: %.1f/100", s.AverageScore)
	line("")

	if len(s.CommonIssues) > 0 {
		line("MOST COMMON ISSUES:")
		for _, ic := range s.CommonIssues {
			line("  - %s (%d times)", ic.Issue, ic.Count)
		}
		line("")
	}

	var rejected []Result
	for _, r := range s.Results {
		if !r.Approved {
			rejected = append(rejected, r)
		}
	}
	if len(rejected) > 0 {
		line("REJECTED RECIPES:")
		for _, r := range rejected {
			line("  - %s (%s)", r.RecipeName, r.RecipeID)
			for _, issue := range r.Issues {
				line("    * %s", issue)
			}
		}
		line("")
	}

	var warned []Result
	for _, r := range s.Results {
		if len(r.Warnings) > 0 {
			warned = append(warned, r)
		}
	}
	if len(warned) > 0 {
		line("RECIPES WITH WARNINGS:")
		for _, r := range warned {
			line("  - %s (score %d)", r.RecipeName, r.Score)
			for _, w := range r.Warnings {
				line("    * %s", w)
			}
		}
		line("")
	}

	line(reportRule)
	return b.String()
}
