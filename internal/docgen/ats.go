package docgen

import (
	"context"
	"fmt"
	"strings"

	"jobassist-backend/internal/workflow"
)

const maxRecommendations = 5

// KeywordATS scores a resume by required-keyword coverage on a 0..100 scale.
// An empty requirement list scores 100: there is nothing to miss.
type KeywordATS struct{}

func (KeywordATS) ScoreResume(ctx context.Context, resume workflow.Document, requiredSkills []string) (workflow.ATSReport, error) {
	keywords := dedupeLower(requiredSkills)
	if len(keywords) == 0 {
		return workflow.ATSReport{Score: 100}, nil
	}

	text := strings.ToLower(resume.Text)
	found := 0
	var missing []string
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			found++
		} else {
			missing = append(missing, kw)
		}
	}

	report := workflow.ATSReport{
		Score: found * 100 / len(keywords),
	}
	for i, kw := range missing {
		if i == maxRecommendations {
			break
		}
		report.Recommendations = append(report.Recommendations,
			fmt.Sprintf("Mention %q explicitly; the posting lists it as required", kw))
	}
	return report, nil
}

func dedupeLower(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	var out []string
	for _, r := range raw {
		kw := strings.ToLower(strings.TrimSpace(r))
		if kw == "" {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}
