package chat

// Query classification. Runs only after the relevance gate has passed a
// query through, so off-topic detection is not repeated here.

import "strings"

// Category is the closed set of query kinds the assistant understands
type Category string

const (
	CategoryGreeting          Category = "greeting"
	CategoryAssessmentListing Category = "assessment_listing"
	CategoryResults           Category = "results"
	CategoryHelp              Category = "help"
	CategoryPreparation       Category = "preparation"
	CategoryProfile           Category = "profile"
	CategoryNameChange        Category = "name_change"
	CategoryAcknowledgment    Category = "acknowledgment"
	CategoryGeneral           Category = "general"
	CategoryOffTopic          Category = "off_topic"
	CategoryUnclear           Category = "unclear"
)

var greetingTokens = []string{
	"hi", "hello", "hey", "good morning", "good afternoon", "good evening",
	"greetings", "yo", "sup", "hola",
}

// Data/question triggers that disqualify a greeting-shaped query from the
// greeting category ("hi, show my results" is a results query).
var greetingBlockers = []string{
	"assessment", "test", "exam", "result", "score", "available",
	"show", "what", "when", "where", "how",
}

var assessmentKeywords = []string{
	"assessment", "test", "exam", "quiz", "available", "pending",
	"take test", "start test",
}

var resultKeywords = []string{
	"result", "score", "grade", "performance", "pass", "fail",
	"mark", "marks", "percentage",
}

var helpKeywords = []string{
	"how to", "how do", "how can", "guide", "tutorial", "instructions", "steps to",
}

var nameChangeKeywords = []string{
	"change my name", "update my name", "rename me", "my name is",
	"call me", "change name to", "update name to",
}

var profileKeywords = []string{
	"profile", "account", "password", "email", "settings", "update profile",
}

var generalOpeners = []string{
	"what is", "what are", "when is", "when are", "where is", "where are",
	"who is", "why is", "explain",
}

var acknowledgmentKeywords = []string{
	"thank", "thanks", "appreciate", "helpful", "good", "great", "awesome",
}

// Classify maps a query to exactly one category. Rules are evaluated in
// order and the first match wins; the result is pure and repeatable for any
// fixed input.
func Classify(query string) Category {
	lower := strings.ToLower(strings.TrimSpace(query))

	if isGreeting(lower) {
		return CategoryGreeting
	}
	if containsAny(lower, assessmentKeywords) {
		return CategoryAssessmentListing
	}
	if containsAny(lower, resultKeywords) {
		return CategoryResults
	}
	if containsAny(lower, helpKeywords) {
		return CategoryHelp
	}
	if containsAny(lower, nameChangeKeywords) {
		return CategoryNameChange
	}
	if containsAny(lower, profileKeywords) {
		return CategoryProfile
	}
	if containsAny(lower, generalOpeners) {
		return CategoryGeneral
	}
	if containsAny(lower, acknowledgmentKeywords) {
		return CategoryAcknowledgment
	}

	return CategoryGeneral
}

func isGreeting(lower string) bool {
	matched := false
	for _, greeting := range greetingTokens {
		if lower == greeting ||
			strings.HasPrefix(lower, greeting+" ") ||
			strings.HasPrefix(lower, greeting+"!") ||
			strings.HasPrefix(lower, greeting+",") {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	return !containsAny(lower, greetingBlockers)
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
