package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/placement-portal/campus-assist/internal/models"
)

// StudentContextRepositoryImpl implements StudentContextRepository
type StudentContextRepositoryImpl struct {
	db *gorm.DB
}

func NewStudentContextRepository(db *gorm.DB) models.StudentContextRepository {
	return &StudentContextRepositoryImpl{db: db}
}

// GetContext assembles the per-request snapshot: student identity, active
// assessments the student has not attempted that are inside their date
// window, completed attempts with titles, and the derived performance
// summary. An unknown student yields a zeroed context rather than an error
// so the chat pipeline can still answer with "no data" statements.
func (r *StudentContextRepositoryImpl) GetContext(studentID uint) (*models.StudentContext, error) {
	sctx := &models.StudentContext{
		Student:              models.StudentInfo{ID: studentID},
		AvailableAssessments: []models.AvailableAssessment{},
		CompletedAssessments: []models.CompletedAssessment{},
	}

	var student models.Student
	err := r.db.First(&student, studentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return sctx, nil
		}
		return nil, err
	}
	sctx.Student.Name = student.Name
	sctx.Student.Email = student.Email

	now := time.Now()
	var available []models.Assessment
	err = r.db.Where("is_active = ?", true).
		Where("start_date IS NULL OR start_date <= ?", now).
		Where("end_date IS NULL OR end_date >= ?", now).
		Where("id NOT IN (?)",
			r.db.Model(&models.AssessmentResult{}).
				Select("assessment_id").
				Where("student_id = ?", studentID)).
		Order("start_date ASC NULLS LAST").
		Find(&available).Error
	if err != nil {
		return nil, err
	}
	for _, assessment := range available {
		sctx.AvailableAssessments = append(sctx.AvailableAssessments, models.AvailableAssessment{
			ID:              assessment.ID,
			Title:           assessment.Title,
			Category:        assessment.Category,
			DurationMinutes: assessment.DurationMinutes,
			PassPercentage:  assessment.PassPercentage,
			Description:     assessment.Description,
			StartDate:       assessment.StartDate,
			EndDate:         assessment.EndDate,
		})
	}

	var results []models.AssessmentResult
	err = r.db.Where("student_id = ?", studentID).
		Preload("Assessment").
		Order("submitted_at DESC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	for _, result := range results {
		sctx.CompletedAssessments = append(sctx.CompletedAssessments, models.CompletedAssessment{
			AssessmentID:  result.AssessmentID,
			Title:         result.Assessment.Title,
			ObtainedMarks: result.ObtainedMarks,
			TotalMarks:    result.TotalMarks,
			Percentage:    result.Percentage,
			PassStatus:    result.PassStatus,
			SubmittedAt:   result.SubmittedAt,
		})
	}

	sctx.Performance = models.SummarizePerformance(sctx.CompletedAssessments)
	return sctx, nil
}

// ConversationRepositoryImpl implements ConversationRepository
type ConversationRepositoryImpl struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) models.ConversationRepository {
	return &ConversationRepositoryImpl{db: db}
}

func (r *ConversationRepositoryImpl) GetOrCreate(studentID uint) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.Where("student_id = ?", studentID).
		Order("last_message_at DESC").
		First(&conversation).Error
	if err == nil {
		return &conversation, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	conversation = models.Conversation{
		StudentID:     studentID,
		LastMessageAt: time.Now(),
	}
	if err := r.db.Create(&conversation).Error; err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (r *ConversationRepositoryImpl) AppendMessage(message *models.ConversationMessage) error {
	if err := r.db.Create(message).Error; err != nil {
		return err
	}
	return r.db.Model(&models.Conversation{}).
		Where("id = ?", message.ConversationID).
		Update("last_message_at", time.Now()).Error
}

func (r *ConversationRepositoryImpl) GetRecentMessages(conversationID uint, limit int) ([]models.ConversationMessage, error) {
	var messages []models.ConversationMessage
	err := r.db.Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// reverse into chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// ChatQueryRepositoryImpl implements ChatQueryRepository
type ChatQueryRepositoryImpl struct {
	db *gorm.DB
}

func NewChatQueryRepository(db *gorm.DB) models.ChatQueryRepository {
	return &ChatQueryRepositoryImpl{db: db}
}

func (r *ChatQueryRepositoryImpl) Create(log *models.ChatQueryLog) error {
	return r.db.Create(log).Error
}

func (r *ChatQueryRepositoryImpl) GetRecent(limit int) ([]models.ChatQueryLog, error) {
	var logs []models.ChatQueryLog
	err := r.db.Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

func (r *ChatQueryRepositoryImpl) GetFrequentQueries(limit int) ([]string, error) {
	var queries []string
	err := r.db.Model(&models.ChatQueryLog{}).
		Select("lower(query_text)").
		Where("created_at > ?", time.Now().Add(-7*24*time.Hour)).
		Group("lower(query_text)").
		Order("count(*) DESC").
		Limit(limit).
		Pluck("lower(query_text)", &queries).Error
	return queries, err
}

// SystemHealthRepositoryImpl implements SystemHealthRepository
type SystemHealthRepositoryImpl struct {
	db *gorm.DB
}

func NewSystemHealthRepository(db *gorm.DB) models.SystemHealthRepository {
	return &SystemHealthRepositoryImpl{db: db}
}

func (r *SystemHealthRepositoryImpl) UpdateServiceHealth(serviceName, status string, responseTime int, errorMsg string) error {
	return r.db.Exec(`
		INSERT INTO system_health (service_name, status, response_time_ms, error_message, checked_at)
		VALUES (?, ?, ?, ?, NOW())
	`, serviceName, status, responseTime, errorMsg).Error
}

func (r *SystemHealthRepositoryImpl) GetServiceHealth(serviceName string) (*models.SystemHealth, error) {
	var health models.SystemHealth
	err := r.db.Where("service_name = ?", serviceName).
		Order("checked_at DESC").
		First(&health).Error
	if err != nil {
		return nil, err
	}
	return &health, nil
}

func (r *SystemHealthRepositoryImpl) GetAllServicesHealth() ([]models.SystemHealth, error) {
	var health []models.SystemHealth
	err := r.db.Raw(`
		SELECT DISTINCT ON (service_name) *
		FROM system_health
		ORDER BY service_name, checked_at DESC
	`).Scan(&health).Error
	return health, err
}

func (r *SystemHealthRepositoryImpl) GetUnhealthyServices() ([]models.SystemHealth, error) {
	var health []models.SystemHealth
	err := r.db.Raw(`
		SELECT DISTINCT ON (service_name) *
		FROM system_health
		WHERE status != 'healthy'
		ORDER BY service_name, checked_at DESC
	`).Scan(&health).Error
	return health, err
}

// RepositoryManager bundles all repositories
type RepositoryManager struct {
	StudentContext models.StudentContextRepository
	Conversation   models.ConversationRepository
	ChatQuery      models.ChatQueryRepository
	SystemHealth   models.SystemHealthRepository
}

func NewRepositoryManager(db *gorm.DB) *RepositoryManager {
	return &RepositoryManager{
		StudentContext: NewStudentContextRepository(db),
		Conversation:   NewConversationRepository(db),
		ChatQuery:      NewChatQueryRepository(db),
		SystemHealth:   NewSystemHealthRepository(db),
	}
}
