package chat

// Post-processing guard for categories where the model is most tempted to
// invent data. For assessment listings the model's prose is discarded
// entirely and the reply is rebuilt from the context snapshot, so titles,
// counts and durations can never drift from the database.

import (
	"fmt"
	"strings"

	"github.com/placement-portal/campus-assist/internal/models"
)

const noAssessmentsMessage = "You have no assessments available at the moment. New assessments will appear here once your placement cell publishes them, so check back soon!"

// Sanitize returns the reply that should actually be shown to the student.
// Non-listing categories pass through untouched.
func Sanitize(raw string, category Category, sctx models.StudentContext) string {
	if category != CategoryAssessmentListing {
		return raw
	}
	return renderAssessmentListing(sctx.AvailableAssessments)
}

func renderAssessmentListing(available []models.AvailableAssessment) string {
	if len(available) == 0 {
		return noAssessmentsMessage
	}

	var b strings.Builder
	noun := "assessments"
	if len(available) == 1 {
		noun = "assessment"
	}
	fmt.Fprintf(&b, "You have %d %s available:\n\n", len(available), noun)

	for _, assessment := range available {
		category := assessment.Category
		if strings.TrimSpace(category) == "" {
			category = "General"
		}
		fmt.Fprintf(&b, "📝 **%s** (%s)\n", assessment.Title, category)
		fmt.Fprintf(&b, "   Duration: %d minutes\n\n", assessment.DurationMinutes)
	}

	b.WriteString("Ready to start? Click 'View Assessments' to begin!")
	return b.String()
}
