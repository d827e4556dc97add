package chat

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/placement-portal/campus-assist/internal/models"
)

func studentContextFixture() models.StudentContext {
	return models.StudentContext{
		Student: models.StudentInfo{ID: 42, Name: "Asha Verma", Email: "asha@example.edu"},
		AvailableAssessments: []models.AvailableAssessment{
			{ID: 1, Title: "Python Basics", Category: "Technical", DurationMinutes: 30},
			{ID: 2, Title: "Logical Reasoning", Category: "Aptitude", DurationMinutes: 45},
		},
		CompletedAssessments: []models.CompletedAssessment{
			{AssessmentID: 3, Title: "Verbal Ability", ObtainedMarks: 70, TotalMarks: 100, Percentage: 70, PassStatus: "pass"},
			{AssessmentID: 4, Title: "Java Fundamentals", ObtainedMarks: 40, TotalMarks: 100, Percentage: 40, PassStatus: "fail"},
		},
	}
}

func TestFormatContextStudentAndAssessments(t *testing.T) {
	text := FormatContext(studentContextFixture(), nil)

	assert.Contains(t, text, "Student ID: 42")
	assert.Contains(t, text, "Student Name: Asha Verma")
	assert.Contains(t, text, "Available Assessments (Not Yet Taken): 2")
	assert.Contains(t, text, "1. Python Basics (Technical) - 30 minutes")
	assert.Contains(t, text, "2. Logical Reasoning (Aptitude) - 45 minutes")
	assert.Contains(t, text, "Completed Assessments: 2")
	assert.Contains(t, text, "Average Score: 55.0%")
	assert.Contains(t, text, "Highest Score: 70.0%")
	assert.Contains(t, text, "Passed: 1 | Failed: 1")
}

func TestFormatContextZeroCountsAreLiteral(t *testing.T) {
	sctx := models.StudentContext{Student: models.StudentInfo{ID: 7}}
	text := FormatContext(sctx, nil)

	assert.Contains(t, text, "Available Assessments: None available (all completed or none active)")
	assert.Contains(t, text, "Completed Assessments: None")
	assert.NotContains(t, text, "Performance Summary")
}

func TestFormatContextDocumentBounds(t *testing.T) {
	long := strings.Repeat("x", 1200)
	docs := make([]models.RetrievedDocument, 8)
	for i := range docs {
		docs[i] = models.RetrievedDocument{Text: long, Source: "guide"}
	}

	text := FormatContext(studentContextFixture(), docs)

	assert.Contains(t, text, "[Document 5]")
	assert.NotContains(t, text, "[Document 6]")
	// Each included document is truncated to the character budget
	assert.NotContains(t, text, strings.Repeat("x", 501))
	assert.Contains(t, text, strings.Repeat("x", 500))
}

func TestFormatContextTruncationKeepsRunesWhole(t *testing.T) {
	// A multi-byte rune straddles the 500-byte mark; truncation must not
	// split it.
	doc := models.RetrievedDocument{Text: strings.Repeat("x", 499) + "日本語の説明", Source: "guide"}

	text := FormatContext(studentContextFixture(), []models.RetrievedDocument{doc})

	assert.True(t, utf8.ValidString(text))
	assert.Contains(t, text, strings.Repeat("x", 499)+"日")
	assert.NotContains(t, text, "本")
}

func TestTruncateText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		limit    int
		expected string
	}{
		{"under limit", "hello", 10, "hello"},
		{"at limit", "hello", 5, "hello"},
		{"over limit", "hello world", 5, "hello"},
		{"multi-byte counted as one", "日本語の説明", 3, "日本語"},
		{"empty", "", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateText(tt.input, tt.limit)
			assert.Equal(t, tt.expected, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestFormatContextOnlyUsesGivenStudent(t *testing.T) {
	text := FormatContext(studentContextFixture(), nil)
	assert.NotContains(t, text, "Data Structures") // never invents titles
}

func TestFormatContextMissingIdentityFields(t *testing.T) {
	sctx := models.StudentContext{Student: models.StudentInfo{ID: 9}}
	text := FormatContext(sctx, nil)
	assert.Contains(t, text, "Student Name: N/A")
	assert.Contains(t, text, "Student Email: N/A")
}
