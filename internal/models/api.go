package models

// ConversationTurn is one prior exchange message supplied by the client,
// oldest first
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	StudentID           uint               `json:"student_id" binding:"required"`
	Message             string             `json:"message" binding:"required,max=500"`
	StudentName         string             `json:"student_name"`
	StudentEmail        string             `json:"student_email"`
	ConversationHistory []ConversationTurn `json:"conversation_history"`
}

// Action is a suggested follow-up navigation target for the client UI
type Action struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

// ServiceInfo is the user-facing status indicator derived from the fallback
// tier that produced the answer
type ServiceInfo struct {
	Indicator string `json:"indicator"`
	Text      string `json:"text"`
}

type ChatResponse struct {
	Success           bool                   `json:"success"`
	Message           string                 `json:"message"`
	Data              map[string]interface{} `json:"data,omitempty"`
	Actions           []Action               `json:"actions"`
	FollowUpQuestions []string               `json:"follow_up_questions"`
	QueryType         string                 `json:"query_type"`
	FallbackTier      string                 `json:"fallback_tier"`
	ModelUsed         string                 `json:"model_used"`
	ServiceInfo       ServiceInfo            `json:"service_info"`
	FromCache         bool                   `json:"from_cache"`
	Timestamp         string                 `json:"timestamp"`
}
