package models

// GORM models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Student represents a portal student account
type Student struct {
	BaseModel
	Name     string `json:"name" gorm:"not null"`
	Email    string `json:"email" gorm:"unique;not null"`
	IsActive bool   `json:"is_active" gorm:"default:true"`

	// Associations
	Results []AssessmentResult `json:"results" gorm:"foreignKey:StudentID"`
}

// Assessment represents one placement assessment definition
type Assessment struct {
	BaseModel
	Title           string     `json:"title" gorm:"not null"`
	Category        string     `json:"category" gorm:"default:'General'"`
	Description     string     `json:"description"`
	DurationMinutes int        `json:"duration_minutes" gorm:"default:30"`
	PassPercentage  float64    `json:"pass_percentage" gorm:"type:decimal(5,2);default:60"`
	TotalMarks      int        `json:"total_marks" gorm:"default:100"`
	StartDate       *time.Time `json:"start_date"`
	EndDate         *time.Time `json:"end_date"`
	IsActive        bool       `json:"is_active" gorm:"default:true"`
}

// AssessmentResult represents one graded attempt by a student
type AssessmentResult struct {
	BaseModel
	StudentID     uint      `json:"student_id" gorm:"not null;index"`
	AssessmentID  uint      `json:"assessment_id" gorm:"not null;index"`
	ObtainedMarks int       `json:"obtained_marks" gorm:"default:0"`
	TotalMarks    int       `json:"total_marks" gorm:"default:0"`
	Percentage    float64   `json:"percentage" gorm:"type:decimal(5,2);default:0"`
	PassStatus    string    `json:"pass_status" gorm:"check:pass_status IN ('pass','fail')"`
	SubmittedAt   time.Time `json:"submitted_at" gorm:"default:NOW()"`

	// Associations
	Student    Student    `json:"student" gorm:"foreignKey:StudentID"`
	Assessment Assessment `json:"assessment" gorm:"foreignKey:AssessmentID"`
}

// Conversation groups the chat exchanges of one student
type Conversation struct {
	BaseModel
	StudentID     uint      `json:"student_id" gorm:"not null;index"`
	LastMessageAt time.Time `json:"last_message_at" gorm:"default:NOW()"`

	// Associations
	Messages []ConversationMessage `json:"messages" gorm:"foreignKey:ConversationID"`
}

// ConversationMessage is one stored chat turn with its routing metadata
type ConversationMessage struct {
	BaseModel
	ConversationID uint   `json:"conversation_id" gorm:"not null;index"`
	Role           string `json:"role" gorm:"not null;check:role IN ('user','assistant')"`
	Content        string `json:"content" gorm:"not null"`
	QueryType      string `json:"query_type"`
	FallbackTier   string `json:"fallback_tier"`
	RelevanceScore int    `json:"relevance_score"`
}

// ChatQueryLog represents per-request chat analytics
type ChatQueryLog struct {
	BaseModel
	StudentID      uint   `json:"student_id" gorm:"index"`
	QueryText      string `json:"query_text" gorm:"not null"`
	QueryType      string `json:"query_type"`
	FallbackTier   string `json:"fallback_tier"`
	RelevanceScore int    `json:"relevance_score"`
	ResponseTimeMs int    `json:"response_time_ms"`
	FromCache      bool   `json:"from_cache" gorm:"default:false"`
	UserAgent      string `json:"user_agent"`
	IPAddress      string `json:"ip_address" gorm:"type:inet"`
}

// SystemHealth represents service health monitoring
type SystemHealth struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ServiceName    string    `json:"service_name" gorm:"not null"`
	Status         string    `json:"status" gorm:"not null;check:status IN ('healthy','degraded','unhealthy')"`
	ResponseTimeMs int       `json:"response_time_ms"`
	ErrorMessage   string    `json:"error_message"`
	CheckedAt      time.Time `json:"checked_at" gorm:"default:NOW()"`
}

// Database interfaces for repository pattern
type StudentContextRepository interface {
	GetContext(studentID uint) (*StudentContext, error)
}

type ConversationRepository interface {
	GetOrCreate(studentID uint) (*Conversation, error)
	AppendMessage(message *ConversationMessage) error
	GetRecentMessages(conversationID uint, limit int) ([]ConversationMessage, error)
}

type ChatQueryRepository interface {
	Create(log *ChatQueryLog) error
	GetRecent(limit int) ([]ChatQueryLog, error)
	GetFrequentQueries(limit int) ([]string, error)
}

type SystemHealthRepository interface {
	UpdateServiceHealth(serviceName, status string, responseTime int, errorMsg string) error
	GetServiceHealth(serviceName string) (*SystemHealth, error)
	GetAllServicesHealth() ([]SystemHealth, error)
	GetUnhealthyServices() ([]SystemHealth, error)
}

// TableName methods for custom table names
func (Student) TableName() string             { return "students" }
func (Assessment) TableName() string          { return "assessments" }
func (AssessmentResult) TableName() string    { return "assessment_results" }
func (Conversation) TableName() string        { return "chatbot_conversations" }
func (ConversationMessage) TableName() string { return "chatbot_messages" }
func (ChatQueryLog) TableName() string        { return "chatbot_analytics" }
func (SystemHealth) TableName() string        { return "system_health" }

// Model validation methods
func (m *ConversationMessage) Validate() error {
	if m.ConversationID == 0 {
		return fmt.Errorf("conversation ID is required")
	}
	if m.Role != "user" && m.Role != "assistant" {
		return fmt.Errorf("invalid message role: %s", m.Role)
	}
	if m.Content == "" {
		return fmt.Errorf("message content is required")
	}
	return nil
}

func (l *ChatQueryLog) Validate() error {
	if l.QueryText == "" {
		return fmt.Errorf("query text is required")
	}
	if l.ResponseTimeMs < 0 {
		return fmt.Errorf("response time cannot be negative")
	}
	return nil
}

// GORM hooks
func (m *ConversationMessage) BeforeCreate(tx *gorm.DB) error {
	return m.Validate()
}

func (l *ChatQueryLog) BeforeCreate(tx *gorm.DB) error {
	return l.Validate()
}
