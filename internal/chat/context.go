package chat

// Context formatting for prompt inclusion. Output is bounded: at most
// maxContextDocs knowledge snippets, each truncated to docCharBudget
// characters, so a pathological retrieval result cannot blow up the prompt.

import (
	"fmt"
	"strings"

	"github.com/placement-portal/campus-assist/internal/models"
)

const (
	maxContextDocs = 5
	docCharBudget  = 500
)

// FormatContext renders a student context snapshot plus retrieved knowledge
// into the textual block the prompt builder embeds. Zero counts are stated
// literally so the model cannot guess at missing data.
func FormatContext(sctx models.StudentContext, docs []models.RetrievedDocument) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Student ID: %d\n", sctx.Student.ID)
	fmt.Fprintf(&b, "Student Name: %s\n", valueOr(sctx.Student.Name, "N/A"))
	fmt.Fprintf(&b, "Student Email: %s\n", valueOr(sctx.Student.Email, "N/A"))

	if len(sctx.AvailableAssessments) > 0 {
		fmt.Fprintf(&b, "\nAvailable Assessments (Not Yet Taken): %d\n", len(sctx.AvailableAssessments))
		for i, assessment := range sctx.AvailableAssessments {
			fmt.Fprintf(&b, "  %d. %s (%s) - %d minutes\n",
				i+1, assessment.Title, valueOr(assessment.Category, "General"), assessment.DurationMinutes)
		}
	} else {
		b.WriteString("\nAvailable Assessments: None available (all completed or none active)\n")
	}

	if len(sctx.CompletedAssessments) > 0 {
		fmt.Fprintf(&b, "\nCompleted Assessments: %d\n", len(sctx.CompletedAssessments))

		// Re-derive the summary from the completed list rather than trusting
		// whatever aggregate came with the snapshot.
		summary := models.SummarizePerformance(sctx.CompletedAssessments)
		b.WriteString("Performance Summary:\n")
		fmt.Fprintf(&b, "  - Average Score: %.1f%%\n", summary.AveragePercentage)
		fmt.Fprintf(&b, "  - Highest Score: %.1f%%\n", summary.HighestPercentage)
		fmt.Fprintf(&b, "  - Passed: %d | Failed: %d\n", summary.PassedCount, summary.FailedCount)
	} else {
		b.WriteString("\nCompleted Assessments: None\n")
	}

	if len(docs) > 0 {
		if len(docs) > maxContextDocs {
			docs = docs[:maxContextDocs]
		}
		b.WriteString("\nRelevant Knowledge Base:\n")
		for i, doc := range docs {
			fmt.Fprintf(&b, "[Document %d]: %s\n", i+1, truncateText(doc.Text, docCharBudget))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// truncateText caps s at limit characters. Slicing happens on rune
// boundaries so multi-byte text is never cut mid-rune.
func truncateText(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
