package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/talkgenius/interview-engine/internal/models"
)

// EventType represents different types of interview lifecycle events
type EventType string

const (
	EventInterviewStarted   EventType = "interview.started"
	EventInterviewCompleted EventType = "interview.completed"
	EventInterviewAbandoned EventType = "interview.abandoned"
)

const (
	eventSource  = "interview-engine"
	eventVersion = "1.0"
)

// InterviewEvent is the base envelope for all interview lifecycle events
type InterviewEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Interview lifecycle event payloads

type InterviewStartedEvent struct {
	SessionID string    `json:"session_id"`
	JobTitle  string    `json:"job_title"`
	UserName  string    `json:"user_name,omitempty"`
	Skills    []string  `json:"skills,omitempty"`
	StartedAt time.Time `json:"started_at"`
}

type InterviewCompletedEvent struct {
	SessionID       string    `json:"session_id"`
	JobTitle        string    `json:"job_title"`
	UserName        string    `json:"user_name,omitempty"`
	TotalScore      int       `json:"total_score"`
	QuestionCount   int       `json:"question_count"`
	AnswerCount     int       `json:"answer_count"`
	DurationSeconds int       `json:"duration_seconds"`
	CompletedAt     time.Time `json:"completed_at"`
}

type InterviewAbandonedEvent struct {
	SessionID   string    `json:"session_id"`
	JobTitle    string    `json:"job_title"`
	AbandonedAt time.Time `json:"abandoned_at"`
}

// ===== EVENT BUILDERS =====

func newEvent(eventType EventType, data interface{}) *InterviewEvent {
	return &InterviewEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

// NewInterviewStartedEvent builds the event emitted when a session begins.
func NewInterviewStartedEvent(sessionID string, profile models.InterviewProfile, startedAt time.Time) *InterviewEvent {
	return newEvent(EventInterviewStarted, InterviewStartedEvent{
		SessionID: sessionID,
		JobTitle:  profile.JobTitle,
		UserName:  profile.UserName,
		Skills:    profile.Skills,
		StartedAt: startedAt,
	})
}

// NewInterviewCompletedEvent builds the event emitted when a completion
// record is persisted.
func NewInterviewCompletedEvent(record *models.CompletionRecord) *InterviewEvent {
	return newEvent(EventInterviewCompleted, InterviewCompletedEvent{
		SessionID:       record.SessionID,
		JobTitle:        record.Profile.JobTitle,
		UserName:        record.UserName,
		TotalScore:      record.TotalScore,
		QuestionCount:   len(record.Questions),
		AnswerCount:     len(record.Answers),
		DurationSeconds: record.Duration,
		CompletedAt:     record.CompletedAt,
	})
}

// NewInterviewAbandonedEvent builds the event emitted when a candidate walks
// away from a live session.
func NewInterviewAbandonedEvent(sessionID, jobTitle string) *InterviewEvent {
	return newEvent(EventInterviewAbandoned, InterviewAbandonedEvent{
		SessionID:   sessionID,
		JobTitle:    jobTitle,
		AbandonedAt: time.Now(),
	})
}
