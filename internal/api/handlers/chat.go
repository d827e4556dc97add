// backend/internal/api/handlers/chat.go
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/placement-portal/campus-assist/internal/chat"
	"github.com/placement-portal/campus-assist/internal/database"
	"github.com/placement-portal/campus-assist/internal/models"
	"github.com/placement-portal/campus-assist/internal/services"
	"github.com/placement-portal/campus-assist/pkg/utils"
)

const responseCacheTTL = 5 * time.Minute

type ChatHandler struct {
	chatService *services.ChatService
	cache       *database.Cache
	logger      *logrus.Logger
}

func NewChatHandler(chatService *services.ChatService, cache *database.Cache, logger *logrus.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		cache:       cache,
		logger:      logger,
	}
}

// HandleChat processes one student message
func (h *ChatHandler) HandleChat(c *gin.Context) {
	startTime := time.Now()

	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Invalid chat request")
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	query := strings.TrimSpace(req.Message)
	if query == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Message cannot be empty", nil)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"student_id": req.StudentID,
		"user_agent": c.GetHeader("User-Agent"),
		"ip_address": c.ClientIP(),
	}).Info("Processing chat request")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	cacheKey := utils.MD5Hash(services.CacheKey(req.StudentID, query))
	if h.shouldCache(query) {
		cached := &models.ChatResponse{}
		if err := h.cache.GetCachedChatResponse(ctx, cacheKey, cached); err == nil {
			h.logger.Debug("Chat response served from cache")
			cached.FromCache = true
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	meta := services.RequestMeta{
		UserAgent: c.GetHeader("User-Agent"),
		IPAddress: c.ClientIP(),
	}
	response := h.chatService.HandleQuery(ctx, &req, meta)

	if h.shouldCache(query) && cacheableResponse(response) {
		if err := h.cache.CacheChatResponse(ctx, cacheKey, response, responseCacheTTL); err != nil {
			h.logger.WithError(err).Warn("Failed to cache chat response")
		}
	}

	h.logger.WithFields(logrus.Fields{
		"student_id":    req.StudentID,
		"query_type":    response.QueryType,
		"fallback_tier": response.FallbackTier,
		"response_time": time.Since(startTime).Milliseconds(),
	}).Info("Chat request completed")

	c.JSON(http.StatusOK, response)
}

// Categories whose answers change as the student acts. Listing and results
// answers go stale the moment an assessment is attempted.
var uncacheableCategories = map[string]struct{}{
	string(chat.CategoryAssessmentListing): {},
	string(chat.CategoryResults):           {},
	string(chat.CategoryProfile):           {},
	string(chat.CategoryNameChange):        {},
}

func cacheableResponse(response *models.ChatResponse) bool {
	if response.FallbackTier == string(chat.TierFinalApology) {
		return false
	}
	_, personalized := uncacheableCategories[response.QueryType]
	return !personalized
}

// shouldCache rejects queries whose answers are conversation-dependent
// before classification has run; cacheableResponse makes the final call once
// the category is known.
func (h *ChatHandler) shouldCache(query string) bool {
	lower := strings.ToLower(query)
	personalMarkers := []string{"my name", "call me", "rename", "i am", "i'm", "my result", "my score", "my assessment"}
	for _, marker := range personalMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}

// HandleSuggestions returns popular queries for the input hints UI
func (h *ChatHandler) HandleSuggestions(c *gin.Context) {
	limit := 5
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 20 {
			limit = parsed
		}
	}

	suggestions := h.chatService.FrequentQueries(limit)
	utils.SuccessResponse(c, http.StatusOK, "Suggestions retrieved", gin.H{
		"suggestions": suggestions,
	})
}

// HandleCacheStats reports redis cache usage for operators.
func (h *ChatHandler) HandleCacheStats(c *gin.Context) {
	stats, err := h.cache.GetCacheStats(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to read cache stats")
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "Cache unavailable", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Cache stats retrieved", stats)
}

// HandleCapabilities describes what the assistant can do. Model identities
// stay hidden.
func (h *ChatHandler) HandleCapabilities(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Capabilities retrieved", gin.H{
		"assistant": "Campus AI",
		"topics": []string{
			"assessments",
			"results",
			"preparation",
			"profile",
			"portal help",
		},
	})
}
