package models

// Student context value objects. Fetched per request from the relational
// store and treated as read-only by the chat pipeline.

import "time"

// StudentInfo identifies the student a context snapshot belongs to
type StudentInfo struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AvailableAssessment is an active assessment the student has not attempted yet
type AvailableAssessment struct {
	ID              uint       `json:"id"`
	Title           string     `json:"title"`
	Category        string     `json:"category"`
	DurationMinutes int        `json:"duration_minutes"`
	PassPercentage  float64    `json:"pass_percentage"`
	Description     string     `json:"description,omitempty"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty"`
}

// CompletedAssessment is one graded attempt
type CompletedAssessment struct {
	AssessmentID  uint      `json:"assessment_id"`
	Title         string    `json:"title"`
	ObtainedMarks int       `json:"obtained_marks"`
	TotalMarks    int       `json:"total_marks"`
	Percentage    float64   `json:"percentage"`
	PassStatus    string    `json:"pass_status"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// PerformanceSummary aggregates the completed assessments.
// TotalCompleted must always equal len(CompletedAssessments).
type PerformanceSummary struct {
	TotalCompleted    int     `json:"total_completed"`
	AveragePercentage float64 `json:"average_percentage"`
	HighestPercentage float64 `json:"highest_percentage"`
	PassedCount       int     `json:"passed_count"`
	FailedCount       int     `json:"failed_count"`
}

// StudentContext is the per-request snapshot consumed by the chat pipeline
type StudentContext struct {
	Student              StudentInfo           `json:"student_info"`
	AvailableAssessments []AvailableAssessment `json:"available_assessments"`
	CompletedAssessments []CompletedAssessment `json:"completed_assessments"`
	Performance          PerformanceSummary    `json:"performance_summary"`
}

// SummarizePerformance folds completed attempts into a PerformanceSummary.
// An empty input yields the zero summary, never an error.
func SummarizePerformance(completed []CompletedAssessment) PerformanceSummary {
	summary := PerformanceSummary{TotalCompleted: len(completed)}
	if len(completed) == 0 {
		return summary
	}

	var total float64
	for _, result := range completed {
		total += result.Percentage
		if result.Percentage > summary.HighestPercentage {
			summary.HighestPercentage = result.Percentage
		}
		if result.PassStatus == "pass" {
			summary.PassedCount++
		} else {
			summary.FailedCount++
		}
	}
	summary.AveragePercentage = total / float64(len(completed))

	return summary
}

// RetrievedDocument is one ranked knowledge-base snippet from the vector
// search service
type RetrievedDocument struct {
	Text   string  `json:"text"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}
