// backend/cmd/seed/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/placement-portal/campus-assist/internal/config"
	"github.com/placement-portal/campus-assist/internal/database"
	"github.com/placement-portal/campus-assist/internal/knowledge"
	"github.com/placement-portal/campus-assist/internal/models"
	"github.com/placement-portal/campus-assist/internal/seeder"
	"github.com/placement-portal/campus-assist/pkg/utils"
)

// portalGuide holds the static help articles shipped with the portal. These
// answer the "how do I" questions the chat assistant sees most.
var portalGuide = []struct {
	Title   string
	Content string
}{
	{
		Title: "taking-assessments",
		Content: `How to take an assessment: open the Assessments page from your dashboard and choose any assessment marked Available. Click Start to begin. The timer starts immediately and cannot be paused, so make sure you have a stable internet connection and enough uninterrupted time before starting. Each assessment can be attempted only once. Your answers are saved as you go and submitted automatically when the timer runs out.`,
	},
	{
		Title: "viewing-results",
		Content: `How to view your results: open the Results page from your dashboard. Each completed assessment shows your obtained marks, total marks, percentage and pass status. Results appear as soon as evaluation finishes, usually within a few minutes of submission. The pass percentage for each assessment is set by your placement cell and shown on the assessment card.`,
	},
	{
		Title: "assessment-rules",
		Content: `Assessment rules: one attempt per assessment. The timer cannot be paused or restarted. Switching browser tabs or windows during an assessment may be flagged as malpractice. Do not refresh the page while a question is loading. If your connection drops, rejoin quickly; the timer keeps running. Calculators and reference material are allowed only when the assessment instructions say so.`,
	},
	{
		Title: "preparation-tips",
		Content: `How to prepare for placement assessments: review the category of each upcoming assessment on your Assessments page. Aptitude tests cover quantitative reasoning, logical reasoning and verbal ability; practice timed question sets daily. For coding assessments, practice problems in your strongest language and re-read fundamentals of data structures. Check the duration of each assessment beforehand and rehearse under the same time limit.`,
	},
	{
		Title: "profile-management",
		Content: `Managing your profile: open the Profile page to view your registered name and email. You can ask the assistant to update your name, or edit it directly on the Profile page. Your email is your login identity and can only be changed by your placement cell. Keep your name accurate because it appears on assessment reports shared with recruiters.`,
	},
	{
		Title: "getting-support",
		Content: `Getting help: the assistant can answer questions about assessments, results, preparation and your profile. For technical problems such as pages not loading or an assessment that will not start, refresh once and try again. If the problem persists, contact your placement cell through the Support page with a screenshot and the approximate time the problem occurred.`,
	},
}

func main() {
	var (
		dryRun  = flag.Bool("dry-run", false, "Process content without submitting to the vector service")
		verbose = flag.Bool("verbose", false, "Enable debug logging")
		limit   = flag.Int("limit", 0, "Maximum number of assessments to index (0 = all)")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	utils.InitLogger()
	logger := utils.GetLogger()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	dbManager, err := database.NewManager(&database.Config{
		DatabaseURL: cfg.Database.URL,
		RedisURL:    cfg.Redis.URL,
		LogLevel:    os.Getenv("LOG_LEVEL"),
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer dbManager.Close()

	client := knowledge.NewClient(cfg.VectorSearch.BaseURL, cfg.VectorSearch.APIKey, logger)
	service := knowledge.NewService(client, logger)
	processor := seeder.NewContentProcessor()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	indexed, failed := 0, 0

	submit := func(text, source string, metadata map[string]string) {
		if *dryRun {
			logger.WithFields(logrus.Fields{
				"source": source,
				"size":   len(text),
			}).Info("Dry run: would index snippet")
			indexed++
			return
		}

		meta := make(map[string]interface{}, len(metadata))
		for k, v := range metadata {
			meta[k] = v
		}
		if err := service.IndexSnippet(ctx, text, source, meta); err != nil {
			logger.WithFields(logrus.Fields{
				"source": source,
				"error":  err.Error(),
			}).Error("Failed to index snippet")
			failed++
			return
		}
		indexed++
	}

	// Static portal guide articles
	for _, article := range portalGuide {
		content := processor.CleanContent(article.Content)
		for i, chunk := range processor.SplitIntoChunks(content, 1200) {
			source := fmt.Sprintf("portal-guide/%s#%d", article.Title, i)
			submit(chunk, source, processor.ExtractMetaTags(chunk))
		}
	}

	// Assessment descriptions from the relational store
	var assessments []models.Assessment
	query := dbManager.DB.Where("is_active = ?", true).Order("id")
	if *limit > 0 {
		query = query.Limit(*limit)
	}
	if err := query.Find(&assessments).Error; err != nil {
		logger.WithError(err).Fatal("Failed to load assessments")
	}

	for _, assessment := range assessments {
		description := processor.CleanContent(assessment.Description)
		if description == "" {
			continue
		}
		text := fmt.Sprintf("Assessment: %s (%s). Duration: %d minutes. Pass mark: %.0f%%. %s",
			assessment.Title, assessment.Category, assessment.DurationMinutes, assessment.PassPercentage, description)
		for i, chunk := range processor.SplitIntoChunks(text, 1200) {
			source := fmt.Sprintf("assessment/%d#%d", assessment.ID, i)
			metadata := processor.ExtractMetaTags(chunk)
			metadata["assessment_id"] = fmt.Sprintf("%d", assessment.ID)
			submit(chunk, source, metadata)
		}
	}

	logger.WithFields(logrus.Fields{
		"indexed": indexed,
		"failed":  failed,
		"dry_run": *dryRun,
	}).Info("Seeding completed")

	if failed > 0 {
		os.Exit(1)
	}
}
