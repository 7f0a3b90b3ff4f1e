// Package explain turns a score breakdown into human-readable reasons.
package explain

import (
	"fmt"
	"strings"

	"github.com/Ishita-2210/teamforge-recommender/internal/domain/model"
)

const fallbackReason = "Recommended as a potential good fit based on overall profile and system confidence."

// Reasons lists one sentence per contributing feature, in feature order.
// A feature contributes when its score is strictly positive. An all-zero
// breakdown yields a single generic fallback line.
func Reasons(rec model.Recommendation) []string {
	var reasons []string

	if rec.SkillScore > 0 {
		reasons = append(reasons,
			fmt.Sprintf("Strong skill match with team requirements (score: %.2f)", rec.SkillScore))
	}
	if rec.SemanticScore > 0 {
		reasons = append(reasons,
			fmt.Sprintf("Similar interests and goals based on profile text (score: %.2f)", rec.SemanticScore))
	}
	if rec.GraphScore > 0 {
		reasons = append(reasons,
			fmt.Sprintf("High collaboration potential from past activity or network proximity (score: %.2f)", rec.GraphScore))
	}

	if len(reasons) == 0 {
		return []string{fallbackReason}
	}
	return reasons
}

// Text renders the reasons as a single multi-line explanation.
func Text(rec model.Recommendation) string {
	reasons := Reasons(rec)
	if len(reasons) == 1 && reasons[0] == fallbackReason {
		return fallbackReason
	}

	var b strings.Builder
	b.WriteString("Recommended because:")
	for _, r := range reasons {
		b.WriteString("\n- ")
		b.WriteString(r)
	}
	return b.String()
}
