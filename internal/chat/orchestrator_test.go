package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/placement-portal/campus-assist/internal/models"
	"github.com/placement-portal/campus-assist/internal/openrouter"
)

type fakeCompleter struct {
	replies map[string]string // model -> reply; missing model returns an error
	panics  bool
	calls   []string
}

func (f *fakeCompleter) Complete(ctx context.Context, messages []openrouter.Message, model string) (string, error) {
	if f.panics {
		panic("completer blew up")
	}
	f.calls = append(f.calls, model)
	if reply, ok := f.replies[model]; ok {
		return reply, nil
	}
	return "", errors.New("model unavailable")
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func testMessages() []openrouter.Message {
	return []openrouter.Message{{Role: "user", Content: "What assessments are available?"}}
}

func TestRespondPrimaryModel(t *testing.T) {
	completer := &fakeCompleter{replies: map[string]string{"primary": "here you go"}}
	o := NewOrchestrator(completer, "primary", "backup", testLogger())

	result := o.Respond(context.Background(), "query", CategoryGeneral, models.StudentContext{}, nil, testMessages())

	assert.Equal(t, TierPrimaryModel, result.Tier)
	assert.Equal(t, "here you go", result.Message)
	assert.Equal(t, "primary", result.ModelUsed)
	assert.Equal(t, []string{"primary"}, completer.calls)
}

func TestRespondFallbackModel(t *testing.T) {
	completer := &fakeCompleter{replies: map[string]string{"backup": "backup answer"}}
	o := NewOrchestrator(completer, "primary", "backup", testLogger())

	result := o.Respond(context.Background(), "query", CategoryGeneral, models.StudentContext{}, nil, testMessages())

	assert.Equal(t, TierFallbackModel, result.Tier)
	assert.Equal(t, "backup answer", result.Message)
	assert.Equal(t, "backup", result.ModelUsed)
	// Each model attempted exactly once
	assert.Equal(t, []string{"primary", "backup"}, completer.calls)
}

func TestRespondRetrievalOnlyListing(t *testing.T) {
	completer := &fakeCompleter{}
	o := NewOrchestrator(completer, "primary", "backup", testLogger())

	sctx := studentContextFixture()
	result := o.Respond(context.Background(), "query", CategoryAssessmentListing, sctx, nil, testMessages())

	assert.Equal(t, TierRetrievalOnly, result.Tier)
	assert.Contains(t, result.Message, "You have 2 assessments available:")
	assert.Contains(t, result.Message, "Python Basics")
	assert.Contains(t, result.Message, "Logical Reasoning")
}

func TestRespondRetrievalOnlyResults(t *testing.T) {
	completer := &fakeCompleter{}
	o := NewOrchestrator(completer, "primary", "backup", testLogger())

	result := o.Respond(context.Background(), "query", CategoryResults, studentContextFixture(), nil, testMessages())

	assert.Equal(t, TierRetrievalOnly, result.Tier)
	assert.Contains(t, result.Message, "Verbal Ability")
	assert.Contains(t, result.Message, "70/100")
	assert.Contains(t, result.Message, "Passed: 1 | Failed: 1")
}

func TestRespondRetrievalOnlyResultsEmpty(t *testing.T) {
	completer := &fakeCompleter{}
	o := NewOrchestrator(completer, "primary", "backup", testLogger())

	result := o.Respond(context.Background(), "query", CategoryResults, models.StudentContext{}, nil, testMessages())

	assert.Equal(t, TierRetrievalOnly, result.Tier)
	assert.Contains(t, result.Message, "haven't completed any assessments yet")
}

func TestRespondRetrievalOnlyFromDocuments(t *testing.T) {
	completer := &fakeCompleter{}
	o := NewOrchestrator(completer, "primary", "backup", testLogger())

	docs := []models.RetrievedDocument{
		{Text: "Open the Assessments page and click Start.", Source: "guide"},
		{Text: "The timer cannot be paused.", Source: "guide"},
		{Text: "A third excerpt that should not appear.", Source: "guide"},
	}
	result := o.Respond(context.Background(), "query", CategoryHelp, models.StudentContext{}, docs, testMessages())

	assert.Equal(t, TierRetrievalOnly, result.Tier)
	assert.Contains(t, result.Message, "Open the Assessments page")
	assert.Contains(t, result.Message, "timer cannot be paused")
	assert.NotContains(t, result.Message, "third excerpt")
}

func TestRespondRetrievalOnlyExcerptKeepsRunesWhole(t *testing.T) {
	completer := &fakeCompleter{}
	o := NewOrchestrator(completer, "primary", "backup", testLogger())

	// Multi-byte text straddling the excerpt budget must not be cut mid-rune
	// in a reply the student actually sees.
	docs := []models.RetrievedDocument{
		{Text: strings.Repeat("x", 499) + "日本語の説明", Source: "guide"},
	}
	result := o.Respond(context.Background(), "query", CategoryHelp, models.StudentContext{}, docs, testMessages())

	assert.Equal(t, TierRetrievalOnly, result.Tier)
	assert.True(t, utf8.ValidString(result.Message))
	assert.Contains(t, result.Message, strings.Repeat("x", 499)+"日")
}

func TestRespondHardcodedTemplate(t *testing.T) {
	completer := &fakeCompleter{}
	o := NewOrchestrator(completer, "primary", "backup", testLogger())

	result := o.Respond(context.Background(), "how do i take an assessment", CategoryGeneral, models.StudentContext{}, nil, testMessages())

	assert.Equal(t, TierHardcodedTemplate, result.Tier)
	assert.NotEmpty(t, result.Message)
}

func TestRespondPanicBecomesApology(t *testing.T) {
	completer := &fakeCompleter{panics: true}
	o := NewOrchestrator(completer, "primary", "backup", testLogger())

	result := o.Respond(context.Background(), "query", CategoryGeneral, models.StudentContext{}, nil, testMessages())

	assert.Equal(t, TierFinalApology, result.Tier)
	assert.Contains(t, result.Message, "I'm sorry")
}

func TestRespondAlwaysProducesValidTier(t *testing.T) {
	// Every availability combination yields a response with a valid tier
	combos := []struct {
		name string
		fake *fakeCompleter
		docs []models.RetrievedDocument
		sctx models.StudentContext
	}{
		{"all up", &fakeCompleter{replies: map[string]string{"primary": "ok"}}, nil, models.StudentContext{}},
		{"llm down docs up", &fakeCompleter{}, []models.RetrievedDocument{{Text: "doc"}}, models.StudentContext{}},
		{"all down", &fakeCompleter{}, nil, models.StudentContext{}},
	}

	valid := map[Tier]bool{
		TierPrimaryModel: true, TierFallbackModel: true,
		TierRetrievalOnly: true, TierHardcodedTemplate: true, TierFinalApology: true,
	}

	for _, combo := range combos {
		t.Run(combo.name, func(t *testing.T) {
			o := NewOrchestrator(combo.fake, "primary", "backup", testLogger())
			result := o.Respond(context.Background(), "anything", CategoryGeneral, combo.sctx, combo.docs, testMessages())
			assert.True(t, valid[result.Tier])
			assert.NotEmpty(t, result.Message)
		})
	}
}

func TestHardcodedReplyAlwaysAnswers(t *testing.T) {
	assert.Contains(t, HardcodedReply("hello"), "Hello!")
	assert.Contains(t, HardcodedReply("how to take the test"), "Start")
	assert.Contains(t, HardcodedReply("where are my results"), "Results page")
	assert.Contains(t, HardcodedReply("assessment rules please"), "attempted only once")
	assert.NotEmpty(t, HardcodedReply("completely unrelated gibberish"))
}
