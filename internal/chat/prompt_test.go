package chat

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placement-portal/campus-assist/internal/models"
)

func TestBuildPromptShape(t *testing.T) {
	messages := BuildPrompt("What assessments are available?", CategoryAssessmentListing, "Student ID: 1", nil)

	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].Role)
	assert.Contains(t, messages[0].Content, "Never invent assessment names")
	assert.Equal(t, "user", messages[1].Role)
	assert.Contains(t, messages[1].Content, "Student ID: 1")
	assert.Contains(t, messages[1].Content, "What assessments are available?")
}

func TestBuildPromptHistoryValidation(t *testing.T) {
	history := []models.ConversationTurn{
		{Role: "user", Content: "first"},
		{Role: "", Content: "dropped, no role"},
		{Role: "assistant", Content: ""},
		{Role: "system", Content: "dropped, bad role"},
		{Role: "assistant", Content: "second"},
	}

	messages := BuildPrompt("show my results", CategoryResults, "", history)

	require.Len(t, messages, 4) // system + 2 valid turns + user
	assert.Equal(t, "first", messages[1].Content)
	assert.Equal(t, "second", messages[2].Content)
}

func TestBuildPromptHistoryTrimmedToLastTen(t *testing.T) {
	var history []models.ConversationTurn
	for i := 0; i < 25; i++ {
		history = append(history, models.ConversationTurn{Role: "user", Content: fmt.Sprintf("turn %d", i)})
	}

	messages := BuildPrompt("show my results", CategoryResults, "", history)

	require.Len(t, messages, 12) // system + 10 turns + user
	assert.Equal(t, "turn 15", messages[1].Content)
	assert.Equal(t, "turn 24", messages[10].Content)
}

func TestBuildPromptGreetingSkipsContext(t *testing.T) {
	messages := BuildPrompt("hello there friend", CategoryGreeting, "Student ID: 1\nSecret: yes", nil)

	require.Len(t, messages, 2)
	assert.NotContains(t, messages[1].Content, "Student ID: 1")
}

func TestBuildPromptHasGuidanceForEveryCategory(t *testing.T) {
	categories := []Category{
		CategoryGreeting, CategoryAssessmentListing, CategoryResults,
		CategoryHelp, CategoryPreparation, CategoryProfile,
		CategoryNameChange, CategoryAcknowledgment, CategoryGeneral,
	}
	for _, category := range categories {
		messages := BuildPrompt("question", category, "", nil)
		require.Len(t, messages, 2, "category %s", category)
		assert.NotEmpty(t, messages[1].Content, "category %s", category)
	}
}

func TestBuildPromptNameChangeMarker(t *testing.T) {
	messages := BuildPrompt("change my name to priya sharma", CategoryNameChange, "", nil)
	require.Len(t, messages, 2)
	assert.Contains(t, messages[1].Content, `{"action": "update_name", "new_name": "Priya Sharma"}`)

	// No extractable name: the model is told to ask for one
	messages = BuildPrompt("i want to change my name", CategoryNameChange, "", nil)
	assert.Contains(t, messages[1].Content, "Ask them to state it")
}

func TestExtractNewName(t *testing.T) {
	tests := []struct {
		query string
		want  string
		ok    bool
	}{
		{"change my name to priya sharma", "Priya Sharma", true},
		{"Change name to john", "John", true},
		{"update my name to Dev Patel", "Dev Patel", true},
		{"my name is rahul.", "Rahul", true},
		{"call me dave", "Dave", true},
		{"rename me maya", "Maya", true},
		{"i am sandeep", "Sandeep", true},
		{"i'm ananya", "Ananya", true},
		{"change my name", "", false},
		{"hello there", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			name, ok := ExtractNewName(tt.query)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, name)
		})
	}
}
