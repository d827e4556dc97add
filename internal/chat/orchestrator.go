package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/placement-portal/campus-assist/internal/models"
	"github.com/placement-portal/campus-assist/internal/openrouter"
)

// Tier identifies which rung of the degradation ladder produced a reply.
type Tier string

const (
	TierPrimaryModel      Tier = "primary_model"
	TierFallbackModel     Tier = "fallback_model"
	TierRetrievalOnly     Tier = "retrieval_only"
	TierHardcodedTemplate Tier = "hardcoded_template"
	TierFinalApology      Tier = "final_apology"
)

const apologyMessage = "I'm sorry, I'm having trouble responding right now. Please try again in a moment, or use the portal menus to reach your assessments and results directly."

// Completer produces a chat completion for a given model.
type Completer interface {
	Complete(ctx context.Context, messages []openrouter.Message, model string) (string, error)
}

// Result is a produced reply plus where it came from.
type Result struct {
	Message   string
	Tier      Tier
	ModelUsed string
}

// Orchestrator walks the degradation ladder until one tier produces a reply.
// Each tier is attempted exactly once per query.
type Orchestrator struct {
	completer     Completer
	primaryModel  string
	fallbackModel string
	logger        *logrus.Logger
}

func NewOrchestrator(completer Completer, primaryModel, fallbackModel string, logger *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		completer:     completer,
		primaryModel:  primaryModel,
		fallbackModel: fallbackModel,
		logger:        logger,
	}
}

// Respond tries, in order: the primary model, the fallback model, a
// retrieval-only reply rendered from the student context and documents, and
// finally a canned template. The template tier cannot fail, so result is
// always non-nil; a panic anywhere in the ladder is recovered into the
// apology reply instead of crashing the request.
func (o *Orchestrator) Respond(ctx context.Context, query string, category Category, sctx models.StudentContext, docs []models.RetrievedDocument, messages []openrouter.Message) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.WithField("panic", r).Error("Response pipeline panicked")
			result = Result{Message: apologyMessage, Tier: TierFinalApology}
		}
	}()

	if text, err := o.completer.Complete(ctx, messages, o.primaryModel); err == nil {
		return Result{Message: text, Tier: TierPrimaryModel, ModelUsed: o.primaryModel}
	} else {
		o.logger.WithFields(logrus.Fields{
			"model": o.primaryModel,
			"error": err.Error(),
		}).Warn("Primary model failed, trying fallback model")
	}

	if text, err := o.completer.Complete(ctx, messages, o.fallbackModel); err == nil {
		return Result{Message: text, Tier: TierFallbackModel, ModelUsed: o.fallbackModel}
	} else {
		o.logger.WithFields(logrus.Fields{
			"model": o.fallbackModel,
			"error": err.Error(),
		}).Warn("Fallback model failed, trying retrieval-only response")
	}

	if text, ok := o.retrievalOnly(category, sctx, docs); ok {
		return Result{Message: text, Tier: TierRetrievalOnly}
	}
	o.logger.WithField("category", string(category)).Warn("Retrieval-only response unavailable, using canned reply")

	return Result{Message: HardcodedReply(query), Tier: TierHardcodedTemplate}
}

// retrievalOnly builds an answer without any model call. Listing and results
// queries render deterministic cards from the context snapshot; everything
// else surfaces the top knowledge excerpts. It fails only when neither the
// context nor the documents carry anything usable for the category.
func (o *Orchestrator) retrievalOnly(category Category, sctx models.StudentContext, docs []models.RetrievedDocument) (string, bool) {
	switch category {
	case CategoryAssessmentListing:
		return renderAssessmentListing(sctx.AvailableAssessments), true
	case CategoryResults:
		return renderResults(sctx), true
	case CategoryGreeting, CategoryAcknowledgment:
		// canned replies read better than document excerpts here
		return "", false
	}

	if len(docs) == 0 {
		return "", false
	}
	var b strings.Builder
	b.WriteString("Here's what I found in the portal guide:\n\n")
	count := 0
	for _, doc := range docs {
		text := strings.TrimSpace(doc.Text)
		if text == "" {
			continue
		}
		fmt.Fprintf(&b, "- %s\n", truncateText(text, docCharBudget))
		count++
		if count == 2 {
			break
		}
	}
	if count == 0 {
		return "", false
	}
	return strings.TrimRight(b.String(), "\n"), true
}

func renderResults(sctx models.StudentContext) string {
	if len(sctx.CompletedAssessments) == 0 {
		return "You haven't completed any assessments yet. Once you finish one, your score and pass status will show up here."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You have completed %d assessment(s):\n\n", len(sctx.CompletedAssessments))
	for _, completed := range sctx.CompletedAssessments {
		status := "Failed"
		if completed.PassStatus == "pass" {
			status = "Passed"
		}
		fmt.Fprintf(&b, "📊 **%s**: %d/%d (%.1f%%) - %s\n",
			completed.Title, completed.ObtainedMarks, completed.TotalMarks, completed.Percentage, status)
	}

	summary := models.SummarizePerformance(sctx.CompletedAssessments)
	fmt.Fprintf(&b, "\nAverage score: %.1f%% | Passed: %d | Failed: %d",
		summary.AveragePercentage, summary.PassedCount, summary.FailedCount)
	return b.String()
}
