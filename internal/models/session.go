package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// InterviewProfile is the candidate/role declaration an interview is created
// from.
type InterviewProfile struct {
	JobTitle       string   `json:"job_title" validate:"required,min=2,max=200"`
	JobDescription string   `json:"job_description" validate:"omitempty,max=2000"`
	CompanyName    string   `json:"company_name" validate:"omitempty,max=200"`
	Experience     string   `json:"experience" validate:"omitempty,max=100"`
	Skills         []string `json:"skills" validate:"required,min=1,max=20,dive,min=1,max=60"`
	FieldCategory  string   `json:"field_category" validate:"omitempty,max=100"`
	UserName       string   `json:"user_name" validate:"omitempty,max=100"`
}

type InterviewStage string

const (
	StageIntroduction    InterviewStage = "introduction"
	StageSkillAssessment InterviewStage = "skill-assessment"
	StageTechnical       InterviewStage = "technical-evaluation"
	StageBehavioral      InterviewStage = "behavioral-assessment"
	StageClosing         InterviewStage = "closing"
)

// InterviewState is the running, mutable state of one live session. It is
// owned exclusively by the orchestrator; every mutation funnels through its
// transition handlers.
type InterviewState struct {
	PerformanceScore      int             `json:"performance_score"`
	SkillProficiency      map[string]int  `json:"skill_proficiency"`
	DifficultyLevel       DifficultyLevel `json:"difficulty_level"`
	AnsweredQuestions     int             `json:"answered_questions"` // Main questions only
	ConversationContext   []string        `json:"conversation_context"`
	CurrentFollowUpCount  int             `json:"current_follow_up_count"`
	CurrentMainQuestionID string          `json:"current_main_question_id,omitempty"`
	Stage                 InterviewStage  `json:"stage"`
}

// InterviewSummary is the narrative part of a completion record.
type InterviewSummary struct {
	Strengths       []string `json:"strengths"`
	Improvements    []string `json:"improvements"`
	OverallFeedback string   `json:"overall_feedback"`
}

// CompletedInterview is the single immutable record emitted when a session
// reaches the completed state. This is the whole contract with the dashboard
// collaborator; the engine never reads dashboard state back.
type CompletedInterview struct {
	ID        string         `json:"id" gorm:"primaryKey;size:36"`
	JobTitle  string         `json:"job_title" gorm:"size:200;index"`
	UserName  string         `json:"user_name" gorm:"size:100;index"`
	Profile   datatypes.JSON `json:"profile" gorm:"type:jsonb"`   // InterviewProfile
	Questions datatypes.JSON `json:"questions" gorm:"type:jsonb"` // []Question
	Answers   datatypes.JSON `json:"answers" gorm:"type:jsonb"`   // []Answer
	Summary   datatypes.JSON `json:"summary" gorm:"type:jsonb"`   // InterviewSummary

	TotalScore int `json:"total_score"`
	Duration   int `json:"duration"` // Seconds

	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	CreatedAt   time.Time `json:"created_at"`
}

func (CompletedInterview) TableName() string {
	return "completed_interviews"
}

// NewCompletedInterview flattens a completion record into its database row.
func NewCompletedInterview(record *CompletionRecord) (*CompletedInterview, error) {
	profile, err := json.Marshal(record.Profile)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile: %w", err)
	}
	questions, err := json.Marshal(record.Questions)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal questions: %w", err)
	}
	answers, err := json.Marshal(record.Answers)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal answers: %w", err)
	}
	summary, err := json.Marshal(record.Summary)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary: %w", err)
	}

	return &CompletedInterview{
		ID:          record.SessionID,
		JobTitle:    record.Profile.JobTitle,
		UserName:    record.UserName,
		Profile:     profile,
		Questions:   questions,
		Answers:     answers,
		Summary:     summary,
		TotalScore:  record.TotalScore,
		Duration:    record.Duration,
		StartedAt:   record.StartedAt,
		CompletedAt: record.CompletedAt,
	}, nil
}

// Record reconstructs the completion record from the row.
func (ci *CompletedInterview) Record() (*CompletionRecord, error) {
	record := &CompletionRecord{
		SessionID:   ci.ID,
		UserName:    ci.UserName,
		TotalScore:  ci.TotalScore,
		Duration:    ci.Duration,
		StartedAt:   ci.StartedAt,
		CompletedAt: ci.CompletedAt,
	}

	if err := json.Unmarshal(ci.Profile, &record.Profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	if err := json.Unmarshal(ci.Questions, &record.Questions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questions: %w", err)
	}
	if err := json.Unmarshal(ci.Answers, &record.Answers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal answers: %w", err)
	}
	if err := json.Unmarshal(ci.Summary, &record.Summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}

	return record, nil
}
