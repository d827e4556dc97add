package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placement-portal/campus-assist/internal/chat"
	"github.com/placement-portal/campus-assist/internal/models"
	"github.com/placement-portal/campus-assist/internal/openrouter"
	"github.com/placement-portal/campus-assist/internal/relevance"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

type fakeCompleter struct {
	mu    sync.Mutex
	reply string
	err   error
	calls []string
}

func (f *fakeCompleter) Complete(_ context.Context, _ []openrouter.Message, model string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, model)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeSearcher struct {
	mu      sync.Mutex
	docs    []models.RetrievedDocument
	queries []string
}

func (f *fakeSearcher) Search(_ context.Context, query string, _ int) []models.RetrievedDocument {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	return f.docs
}

func (f *fakeSearcher) searchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

type fakeContextRepo struct {
	sctx *models.StudentContext
	err  error
}

func (f *fakeContextRepo) GetContext(uint) (*models.StudentContext, error) {
	if f.err != nil {
		return nil, f.err
	}
	copied := *f.sctx
	return &copied, nil
}

type fakeConvRepo struct {
	mu       sync.Mutex
	messages []models.ConversationMessage
}

func (f *fakeConvRepo) GetOrCreate(studentID uint) (*models.Conversation, error) {
	conversation := &models.Conversation{StudentID: studentID}
	conversation.ID = 9
	return conversation, nil
}

func (f *fakeConvRepo) AppendMessage(message *models.ConversationMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, *message)
	return nil
}

func (f *fakeConvRepo) GetRecentMessages(uint, int) ([]models.ConversationMessage, error) {
	return nil, nil
}

func (f *fakeConvRepo) messageCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

type fakeQueryRepo struct {
	mu       sync.Mutex
	logs     []models.ChatQueryLog
	frequent []string
	err      error
}

func (f *fakeQueryRepo) Create(log *models.ChatQueryLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, *log)
	return nil
}

func (f *fakeQueryRepo) GetRecent(int) ([]models.ChatQueryLog, error) { return nil, nil }

func (f *fakeQueryRepo) GetFrequentQueries(int) ([]string, error) {
	return f.frequent, f.err
}

func (f *fakeQueryRepo) logCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.logs)
}

func studentFixture() *models.StudentContext {
	return &models.StudentContext{
		Student: models.StudentInfo{ID: 42, Name: "Asha Verma", Email: "asha@example.edu"},
		AvailableAssessments: []models.AvailableAssessment{
			{ID: 1, Title: "Python Basics", Category: "Technical", DurationMinutes: 30},
			{ID: 2, Title: "Logical Reasoning", Category: "Aptitude", DurationMinutes: 45},
		},
		CompletedAssessments: []models.CompletedAssessment{
			{AssessmentID: 3, Title: "Verbal Ability", ObtainedMarks: 70, TotalMarks: 100, Percentage: 70, PassStatus: "pass"},
		},
	}
}

type serviceFixture struct {
	service   *ChatService
	completer *fakeCompleter
	searcher  *fakeSearcher
	convRepo  *fakeConvRepo
	queryRepo *fakeQueryRepo
}

func newServiceFixture(completer *fakeCompleter, contextRepo *fakeContextRepo) *serviceFixture {
	searcher := &fakeSearcher{}
	convRepo := &fakeConvRepo{}
	queryRepo := &fakeQueryRepo{}
	orchestrator := chat.NewOrchestrator(completer, "primary", "backup", testLogger())
	service := NewChatService(orchestrator, searcher, contextRepo, convRepo, queryRepo, testLogger())
	return &serviceFixture{
		service:   service,
		completer: completer,
		searcher:  searcher,
		convRepo:  convRepo,
		queryRepo: queryRepo,
	}
}

func chatRequest(message string) *models.ChatRequest {
	return &models.ChatRequest{StudentID: 42, Message: message}
}

func TestHandleQueryOffTopicWithModelRedirect(t *testing.T) {
	completer := &fakeCompleter{reply: "Let's focus on your placement prep instead! Want to see your assessments?"}
	fixture := newServiceFixture(completer, &fakeContextRepo{sctx: studentFixture()})

	response := fixture.service.HandleQuery(context.Background(), chatRequest("bro wtf lol"), RequestMeta{})

	require.True(t, response.Success)
	assert.Equal(t, "off_topic", response.QueryType)
	assert.Equal(t, string(chat.TierPrimaryModel), response.FallbackTier)
	assert.Equal(t, completer.reply, response.Message)
	assert.Equal(t, studySuggestions, response.FollowUpQuestions)
	assert.Zero(t, fixture.searcher.searchCount())
}

func TestHandleQueryOffTopicFallsBackToTemplate(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("provider down")}
	fixture := newServiceFixture(completer, &fakeContextRepo{sctx: studentFixture()})

	response := fixture.service.HandleQuery(context.Background(), chatRequest("bro wtf lol"), RequestMeta{})

	assert.Equal(t, "off_topic", response.QueryType)
	assert.Equal(t, string(chat.TierHardcodedTemplate), response.FallbackTier)
	assert.Contains(t, response.Message, offTopicRedirect)
	assert.Contains(t, response.Message, "You have 2 assessments waiting for you.")
	assert.Equal(t, studySuggestions, response.FollowUpQuestions)
}

func TestHandleQueryDismissiveFlavor(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("provider down")}
	fixture := newServiceFixture(completer, &fakeContextRepo{sctx: studentFixture()})

	response := fixture.service.HandleQuery(context.Background(), chatRequest("whatever"), RequestMeta{})

	assert.Equal(t, "off_topic", response.QueryType)
	assert.Contains(t, response.Message, "No problem, we can pick this up whenever you're ready.")
}

func TestHandleQueryUnclearFallsBackToTemplate(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("provider down")}
	fixture := newServiceFixture(completer, &fakeContextRepo{sctx: studentFixture()})

	response := fixture.service.HandleQuery(context.Background(), chatRequest("hi"), RequestMeta{})

	assert.Equal(t, "unclear", response.QueryType)
	assert.Contains(t, response.Message, unclearRedirect)
	assert.Equal(t, studySuggestions, response.FollowUpQuestions)
}

func TestHandleQueryListingIsRebuiltFromContext(t *testing.T) {
	completer := &fakeCompleter{reply: "You have the Quantum Computing Masterclass available, 999 minutes long!"}
	fixture := newServiceFixture(completer, &fakeContextRepo{sctx: studentFixture()})
	fixture.searcher.docs = []models.RetrievedDocument{{Text: "Assessments are timed.", Source: "guide"}}

	response := fixture.service.HandleQuery(context.Background(), chatRequest("What assessments are available?"), RequestMeta{})

	assert.Equal(t, "assessment_listing", response.QueryType)
	assert.NotContains(t, response.Message, "Quantum Computing")
	assert.Contains(t, response.Message, "You have 2 assessments available:")
	assert.Contains(t, response.Message, "📝 **Python Basics** (Technical)")
	assert.Contains(t, response.Message, "📝 **Logical Reasoning** (Aptitude)")
	assert.Contains(t, response.Message, "Ready to start? Click 'View Assessments' to begin!")

	require.Len(t, response.Actions, 1)
	assert.Equal(t, "/student/assessments", response.Actions[0].URL)
	assert.Equal(t, 1, fixture.searcher.searchCount())
}

func TestHandleQueryContextFailureStillAnswers(t *testing.T) {
	completer := &fakeCompleter{reply: "ignored for listings"}
	fixture := newServiceFixture(completer, &fakeContextRepo{err: errors.New("db down")})

	response := fixture.service.HandleQuery(context.Background(), chatRequest("What assessments are available?"), RequestMeta{})

	require.True(t, response.Success)
	assert.Contains(t, response.Message, "You have no assessments available at the moment.")
}

func TestHandleQueryNameChange(t *testing.T) {
	completer := &fakeCompleter{reply: "Done! I've noted your new name."}
	fixture := newServiceFixture(completer, &fakeContextRepo{sctx: studentFixture()})

	response := fixture.service.HandleQuery(context.Background(), chatRequest("change my name to priya sharma"), RequestMeta{})

	assert.Equal(t, "name_change", response.QueryType)
	require.NotNil(t, response.Data)
	assert.Equal(t, "update_name", response.Data["type"])
	assert.Equal(t, "Priya Sharma", response.Data["new_name"])
	// identity queries never hit the knowledge base
	assert.Zero(t, fixture.searcher.searchCount())
}

func TestHandleQueryPersistsExchange(t *testing.T) {
	completer := &fakeCompleter{reply: "Here is what I know."}
	fixture := newServiceFixture(completer, &fakeContextRepo{sctx: studentFixture()})
	meta := RequestMeta{UserAgent: "test-agent", IPAddress: "10.0.0.5"}

	fixture.service.HandleQuery(context.Background(), chatRequest("Show my results"), meta)

	require.Eventually(t, func() bool {
		return fixture.queryRepo.logCount() == 1 && fixture.convRepo.messageCount() == 2
	}, 2*time.Second, 10*time.Millisecond)

	fixture.queryRepo.mu.Lock()
	logged := fixture.queryRepo.logs[0]
	fixture.queryRepo.mu.Unlock()
	assert.Equal(t, uint(42), logged.StudentID)
	assert.Equal(t, "Show my results", logged.QueryText)
	assert.Equal(t, "results", logged.QueryType)
	assert.Equal(t, "test-agent", logged.UserAgent)
	assert.Equal(t, "10.0.0.5", logged.IPAddress)

	fixture.convRepo.mu.Lock()
	first, second := fixture.convRepo.messages[0], fixture.convRepo.messages[1]
	fixture.convRepo.mu.Unlock()
	assert.Equal(t, "user", first.Role)
	assert.Equal(t, "Show my results", first.Content)
	assert.Equal(t, "assistant", second.Role)
	assert.Equal(t, uint(9), second.ConversationID)
}

func TestFrequentQueriesPadsWithDefaults(t *testing.T) {
	fixture := newServiceFixture(&fakeCompleter{}, &fakeContextRepo{sctx: studentFixture()})
	fixture.queryRepo.frequent = []string{"show my results"}

	queries := fixture.service.FrequentQueries(4)

	require.Len(t, queries, 4)
	assert.Equal(t, "show my results", queries[0])
	// "Show my results" is already present (case-insensitively) and is not duplicated
	assert.Equal(t, []string{
		"show my results",
		"What assessments are available?",
		"How do I prepare for assessments?",
		"What are the assessment rules?",
	}, queries)
}

func TestFrequentQueriesRepoFailureUsesDefaults(t *testing.T) {
	fixture := newServiceFixture(&fakeCompleter{}, &fakeContextRepo{sctx: studentFixture()})
	fixture.queryRepo.err = errors.New("db down")

	queries := fixture.service.FrequentQueries(3)
	assert.Equal(t, studySuggestions[:3], queries)
}

func TestRedirectTemplatePerformanceAware(t *testing.T) {
	sctx := studentFixture()
	sctx.Performance = models.PerformanceSummary{TotalCompleted: 2, AveragePercentage: 72}
	message := redirectTemplate(chat.CategoryOffTopic, relevance.ReasonIrrelevant, sctx)
	assert.Contains(t, message, "You're averaging 72% so far")

	sctx.Performance = models.PerformanceSummary{TotalCompleted: 2, AveragePercentage: 45}
	message = redirectTemplate(chat.CategoryUnclear, "", sctx)
	assert.Contains(t, message, unclearRedirect)
	assert.Contains(t, message, "A bit more practice could really lift your scores.")
}

func TestRedirectTemplateFlavors(t *testing.T) {
	sctx := &models.StudentContext{Student: models.StudentInfo{ID: 1}}

	tests := []struct {
		reason string
		flavor string
	}{
		{relevance.ReasonEmptyQuery, "It looks like your message came through empty."},
		{relevance.ReasonTooShort, "That message was a bit short for me to work with."},
		{relevance.ReasonSpecialCharsOnly, "I couldn't make out that message."},
		{relevance.ReasonDismissive, "No problem, we can pick this up whenever you're ready."},
		{relevance.ReasonIrrelevant, "That one's a bit outside my area."},
	}

	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			message := redirectTemplate(chat.CategoryOffTopic, tt.reason, sctx)
			assert.True(t, strings.HasPrefix(message, tt.flavor))
			assert.Contains(t, message, offTopicRedirect)
		})
	}

	// unknown tags get no flavor sentence
	message := redirectTemplate(chat.CategoryOffTopic, "entertainment", sctx)
	assert.True(t, strings.HasPrefix(message, offTopicRedirect))
}

func TestSuggestionsForNewStudent(t *testing.T) {
	sctx := &models.StudentContext{Student: models.StudentInfo{ID: 1}}
	suggestions := suggestionsFor(sctx)

	require.Len(t, suggestions, 4)
	assert.Equal(t, studySuggestions, suggestions)
}

func TestCacheKeyNormalization(t *testing.T) {
	assert.Equal(t, "42:show my results", CacheKey(42, "  Show   MY results "))
	assert.Equal(t, CacheKey(7, "What assessments are available?"), CacheKey(7, "what ASSESSMENTS are   available?"))
	assert.NotEqual(t, CacheKey(7, "show my results"), CacheKey(8, "show my results"))
}
