package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/placement-portal/campus-assist/internal/chat"
	"github.com/placement-portal/campus-assist/internal/models"
	"github.com/placement-portal/campus-assist/internal/openrouter"
	"github.com/placement-portal/campus-assist/internal/relevance"
)

const retrievalTopK = 3

// Searcher retrieves knowledge-base snippets for a query.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) []models.RetrievedDocument
}

// RequestMeta carries the transport-level details wanted by analytics.
type RequestMeta struct {
	UserAgent string
	IPAddress string
}

// ChatService runs the full query pipeline: relevance gate, classification,
// context assembly, retrieval, model orchestration, post-processing and
// formatting, plus best-effort persistence on the side.
type ChatService struct {
	orchestrator *chat.Orchestrator
	searcher     Searcher
	contextRepo  models.StudentContextRepository
	convRepo     models.ConversationRepository
	queryRepo    models.ChatQueryRepository
	formatter    *ResponseFormatter
	logger       *logrus.Logger
}

func NewChatService(
	orchestrator *chat.Orchestrator,
	searcher Searcher,
	contextRepo models.StudentContextRepository,
	convRepo models.ConversationRepository,
	queryRepo models.ChatQueryRepository,
	logger *logrus.Logger,
) *ChatService {
	return &ChatService{
		orchestrator: orchestrator,
		searcher:     searcher,
		contextRepo:  contextRepo,
		convRepo:     convRepo,
		queryRepo:    queryRepo,
		formatter:    NewResponseFormatter(),
		logger:       logger,
	}
}

// HandleQuery answers one student message. It always returns a response;
// failures inside the pipeline degrade the answer rather than erroring out.
func (s *ChatService) HandleQuery(ctx context.Context, req *models.ChatRequest, meta RequestMeta) *models.ChatResponse {
	started := time.Now()
	query := strings.TrimSpace(req.Message)

	decision := relevance.Evaluate(query)
	s.logger.WithFields(logrus.Fields{
		"student_id": req.StudentID,
		"outcome":    decision.Outcome.String(),
		"reason":     decision.Reason,
		"score":      decision.Score.Value,
	}).Debug("Relevance gate decision")

	var response *models.ChatResponse
	var category chat.Category

	switch decision.Outcome {
	case relevance.OffTopic:
		category = chat.CategoryOffTopic
		response = s.redirectResponse(ctx, req, query, category, decision.Reason)
	case relevance.Unclear:
		category = chat.CategoryUnclear
		response = s.redirectResponse(ctx, req, query, category, decision.Reason)
	default:
		category = chat.Classify(query)
		response = s.answer(ctx, req, query, category)
	}

	elapsed := int(time.Since(started).Milliseconds())
	s.persistExchange(req, query, category, response, decision.Score.Value, elapsed, meta)

	return response
}

// answer handles queries that passed the relevance gate.
func (s *ChatService) answer(ctx context.Context, req *models.ChatRequest, query string, category chat.Category) *models.ChatResponse {
	sctx := s.loadContext(req)

	var docs []models.RetrievedDocument
	switch category {
	case chat.CategoryGreeting, chat.CategoryAcknowledgment, chat.CategoryNameChange:
		// nothing to retrieve
	default:
		docs = s.searcher.Search(ctx, query, retrievalTopK)
	}

	contextText := chat.FormatContext(*sctx, docs)
	messages := chat.BuildPrompt(query, category, contextText, req.ConversationHistory)
	result := s.orchestrator.Respond(ctx, query, category, *sctx, docs, messages)

	message := chat.Sanitize(result.Message, category, *sctx)
	response := s.formatter.Format(message, category, result.Tier)

	if category == chat.CategoryNameChange {
		if newName, ok := chat.ExtractNewName(query); ok {
			response.Data = map[string]interface{}{
				"type":     "update_name",
				"new_name": newName,
			}
		}
	}

	return response
}

// loadContext fetches the student snapshot, falling back to a zeroed context
// carrying whatever identity the request itself supplied.
func (s *ChatService) loadContext(req *models.ChatRequest) *models.StudentContext {
	sctx, err := s.contextRepo.GetContext(req.StudentID)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"student_id": req.StudentID,
			"error":      err.Error(),
		}).Error("Failed to load student context")
		sctx = &models.StudentContext{
			Student:              models.StudentInfo{ID: req.StudentID},
			AvailableAssessments: []models.AvailableAssessment{},
			CompletedAssessments: []models.CompletedAssessment{},
		}
	}
	if sctx.Student.Name == "" {
		sctx.Student.Name = req.StudentName
	}
	if sctx.Student.Email == "" {
		sctx.Student.Email = req.StudentEmail
	}
	return sctx
}

var studySuggestions = []string{
	"What assessments are available?",
	"Show my results",
	"How do I prepare for assessments?",
	"What are the assessment rules?",
}

const offTopicRedirect = "I'm here to help with your placement journey! I can't help with that topic, but I can tell you about your assessments, your results, or how to prepare. What would you like to know?"

const unclearRedirect = "I'm not quite sure what you're asking. Could you rephrase it? For example, you can ask about your assessments, your results, or how the portal works."

// Opening sentences keyed by the gate's reason tag. Unknown tags get no
// flavor sentence.
var redirectFlavors = map[string]string{
	relevance.ReasonEmptyQuery:       "It looks like your message came through empty.",
	relevance.ReasonTooShort:         "That message was a bit short for me to work with.",
	relevance.ReasonSpecialCharsOnly: "I couldn't make out that message.",
	relevance.ReasonDismissive:       "No problem, we can pick this up whenever you're ready.",
	relevance.ReasonIrrelevant:       "That one's a bit outside my area.",
}

// redirectTemplate builds the deterministic redirect shown when no model is
// reachable, flavored by the rejection reason and the student's standing.
func redirectTemplate(category chat.Category, reason string, sctx *models.StudentContext) string {
	var b strings.Builder
	if flavor, ok := redirectFlavors[reason]; ok {
		b.WriteString(flavor)
		b.WriteString(" ")
	}

	if category == chat.CategoryUnclear {
		b.WriteString(unclearRedirect)
	} else {
		b.WriteString(offTopicRedirect)
	}

	switch {
	case sctx.Performance.TotalCompleted > 0 && sctx.Performance.AveragePercentage >= 60:
		fmt.Fprintf(&b, " You're averaging %.0f%% so far, so keep the momentum going!", sctx.Performance.AveragePercentage)
	case sctx.Performance.TotalCompleted > 0:
		b.WriteString(" A bit more practice could really lift your scores.")
	case len(sctx.AvailableAssessments) == 1:
		b.WriteString(" You have 1 assessment waiting for you.")
	case len(sctx.AvailableAssessments) > 1:
		fmt.Fprintf(&b, " You have %d assessments waiting for you.", len(sctx.AvailableAssessments))
	}
	return b.String()
}

// suggestionsFor picks up to four follow-up prompts that make sense for the
// student's current standing, padded from the defaults.
func suggestionsFor(sctx *models.StudentContext) []string {
	var out []string
	if len(sctx.AvailableAssessments) > 0 {
		out = append(out, "What assessments are available?")
	}
	if len(sctx.CompletedAssessments) > 0 {
		out = append(out, "Show my results")
	}
	for _, suggestion := range studySuggestions {
		if len(out) >= 4 {
			break
		}
		seen := false
		for _, existing := range out {
			if existing == suggestion {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, suggestion)
		}
	}
	return out
}

// redirectResponse handles gated queries. One model attempt per configured
// model to produce a natural redirect or clarification; if both fail the
// deterministic template goes out instead.
func (s *ChatService) redirectResponse(ctx context.Context, req *models.ChatRequest, query string, category chat.Category, reason string) *models.ChatResponse {
	sctx := s.loadContext(req)

	instruction := "The student's message is off-topic for the placement portal. In two sentences, politely decline and steer them back to assessments, results, or preparation. Do not answer the off-topic question."
	if category == chat.CategoryUnclear {
		instruction = "The student's message is too vague to act on. In two sentences, ask one concrete clarifying question about what they need from the placement portal."
	}

	messages := []openrouter.Message{
		{Role: "system", Content: instruction},
		{Role: "user", Content: query},
	}

	result := s.orchestrator.Respond(ctx, query, category, *sctx, nil, messages)
	message := result.Message
	tier := result.Tier
	if tier == chat.TierRetrievalOnly || tier == chat.TierHardcodedTemplate {
		// model-free tiers cannot phrase a redirect, use the template
		message = redirectTemplate(category, reason, sctx)
		tier = chat.TierHardcodedTemplate
	}

	response := s.formatter.Format(message, category, tier)
	response.FollowUpQuestions = suggestionsFor(sctx)
	return response
}

// persistExchange records the exchange and its analytics in the background.
// Persistence failures are logged and never affect the response.
func (s *ChatService) persistExchange(req *models.ChatRequest, query string, category chat.Category, response *models.ChatResponse, score, elapsedMs int, meta RequestMeta) {
	go func() {
		conversation, err := s.convRepo.GetOrCreate(req.StudentID)
		if err != nil {
			s.logger.WithError(err).Warn("Failed to resolve conversation, skipping message persistence")
		} else {
			turns := []models.ConversationMessage{
				{ConversationID: conversation.ID, Role: "user", Content: query, QueryType: string(category), RelevanceScore: score},
				{ConversationID: conversation.ID, Role: "assistant", Content: response.Message, QueryType: string(category), FallbackTier: response.FallbackTier, RelevanceScore: score},
			}
			for _, turn := range turns {
				message := turn
				if err := s.convRepo.AppendMessage(&message); err != nil {
					s.logger.WithError(err).Warn("Failed to persist conversation message")
				}
			}
		}

		logEntry := &models.ChatQueryLog{
			StudentID:      req.StudentID,
			QueryText:      query,
			QueryType:      string(category),
			FallbackTier:   response.FallbackTier,
			RelevanceScore: score,
			ResponseTimeMs: elapsedMs,
			FromCache:      response.FromCache,
			UserAgent:      meta.UserAgent,
			IPAddress:      meta.IPAddress,
		}
		if err := s.queryRepo.Create(logEntry); err != nil {
			s.logger.WithError(err).Warn("Failed to record chat analytics")
		}
	}()
}

// FrequentQueries returns recent popular queries for the suggestions
// endpoint, padded with the defaults when history is thin.
func (s *ChatService) FrequentQueries(limit int) []string {
	queries, err := s.queryRepo.GetFrequentQueries(limit)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to load frequent queries")
		queries = nil
	}
	for _, suggestion := range studySuggestions {
		if len(queries) >= limit {
			break
		}
		lower := strings.ToLower(suggestion)
		seen := false
		for _, q := range queries {
			if q == lower {
				seen = true
				break
			}
		}
		if !seen {
			queries = append(queries, suggestion)
		}
	}
	return queries
}

// CacheKey derives the response-cache key for a query. Personalized
// categories must not be cached across students, so the student ID is part
// of the hash input.
func CacheKey(studentID uint, query string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(query), " "))
	return fmt.Sprintf("%d:%s", studentID, normalized)
}
