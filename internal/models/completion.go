package models

import "time"

// CompletionRecord is the in-memory form of a finished session, produced by
// the orchestrator exactly once per session. The persistence layer flattens
// it into a CompletedInterview row.
type CompletionRecord struct {
	SessionID   string           `json:"session_id"`
	Profile     InterviewProfile `json:"profile"`
	UserName    string           `json:"user_name,omitempty"`
	Questions   []Question       `json:"questions"`
	Answers     []Answer         `json:"answers"`
	TotalScore  int              `json:"total_score"`
	Duration    int              `json:"duration"` // Seconds
	Summary     InterviewSummary `json:"summary"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt time.Time        `json:"completed_at"`
}
