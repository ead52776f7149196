package repositories

import (
	"context"
	"time"

	"github.com/talkgenius/interview-engine/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type InterviewFilters struct {
	JobTitle  *string    `json:"job_title"`
	UserName  *string    `json:"user_name"`
	MinScore  *int       `json:"min_score"`
	MaxScore  *int       `json:"max_score"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
	SortBy    string     `json:"sort_by"`    // "completed_at", "total_score", "job_title"
	SortOrder string     `json:"sort_order"` // "asc", "desc"
}

// ===== REPOSITORY INTERFACES =====

// InterviewRepository is the archive of finished sessions. Rows are written
// once at completion and never updated.
type InterviewRepository interface {
	Create(ctx context.Context, interview *models.CompletedInterview) error
	GetByID(ctx context.Context, id string) (*models.CompletedInterview, error)
	List(ctx context.Context, filters InterviewFilters) ([]models.CompletedInterview, int64, error)
	Delete(ctx context.Context, id string) error
}
