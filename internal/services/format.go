package services

import (
	"time"

	"github.com/placement-portal/campus-assist/internal/chat"
	"github.com/placement-portal/campus-assist/internal/models"
)

// Presentation layer for chat replies. Students never see which model
// answered or which degradation tier produced the text; the model identity
// is masked and the tier surfaces only as a service status indicator.

const maskedModelName = "Campus AI"

var followUpsByCategory = map[chat.Category][]string{
	chat.CategoryGreeting: {
		"What assessments are available?",
		"Show my results",
		"How do I prepare for assessments?",
	},
	chat.CategoryAssessmentListing: {
		"How do I start an assessment?",
		"How should I prepare?",
		"What are the assessment rules?",
	},
	chat.CategoryResults: {
		"How can I improve my scores?",
		"What assessments are available?",
		"What is the pass percentage?",
	},
	chat.CategoryHelp: {
		"What assessments are available?",
		"Show my results",
	},
	chat.CategoryPreparation: {
		"What assessments are available?",
		"What are the assessment rules?",
	},
	chat.CategoryProfile: {
		"How do I change my name?",
		"Show my results",
	},
	chat.CategoryNameChange: {
		"Show my profile",
		"What assessments are available?",
	},
	chat.CategoryGeneral: {
		"What assessments are available?",
		"Show my results",
		"How do I prepare?",
	},
}

var actionsByCategory = map[chat.Category][]models.Action{
	chat.CategoryAssessmentListing: {
		{Type: "navigate", Label: "View Assessments", URL: "/student/assessments"},
	},
	chat.CategoryResults: {
		{Type: "navigate", Label: "View Results", URL: "/student/results"},
	},
	chat.CategoryPreparation: {
		{Type: "navigate", Label: "View Assessments", URL: "/student/assessments"},
	},
	chat.CategoryProfile: {
		{Type: "navigate", Label: "Edit Profile", URL: "/student/profile"},
	},
	chat.CategoryHelp: {
		{Type: "navigate", Label: "Support", URL: "/student/support"},
	},
}

var serviceInfoByTier = map[chat.Tier]models.ServiceInfo{
	chat.TierPrimaryModel:      {Indicator: "🟢", Text: "All systems operational"},
	chat.TierFallbackModel:     {Indicator: "🟡", Text: "Running on backup AI"},
	chat.TierRetrievalOnly:     {Indicator: "🟠", Text: "AI temporarily limited, showing portal data"},
	chat.TierHardcodedTemplate: {Indicator: "🔴", Text: "AI offline, basic answers only"},
	chat.TierFinalApology:      {Indicator: "🔴", Text: "Service disruption"},
}

// ResponseFormatter shapes a pipeline result into the API response.
type ResponseFormatter struct{}

func NewResponseFormatter() *ResponseFormatter {
	return &ResponseFormatter{}
}

func (f *ResponseFormatter) Format(message string, category chat.Category, tier chat.Tier) *models.ChatResponse {
	return &models.ChatResponse{
		Success:           true,
		Message:           message,
		Actions:           actionsByCategory[category],
		FollowUpQuestions: followUpsByCategory[category],
		QueryType:         string(category),
		FallbackTier:      string(tier),
		ModelUsed:         maskedModelName,
		ServiceInfo:       serviceInfoByTier[tier],
		Timestamp:         time.Now().UTC().Format(time.RFC3339),
	}
}
