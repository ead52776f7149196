package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/talkgenius/interview-engine/internal/models"
	"github.com/talkgenius/interview-engine/internal/repositories"
)

// ErrInterviewNotFound is returned when no row matches the lookup.
var ErrInterviewNotFound = errors.New("interview not found")

type InterviewPostgreSQL struct {
	db *gorm.DB
}

func NewInterviewPostgreSQL(db *gorm.DB) repositories.InterviewRepository {
	return &InterviewPostgreSQL{db: db}
}

// Create persists a completed interview. The session ID is the primary key;
// replaying a completion for the same session is rejected by the database.
func (r *InterviewPostgreSQL) Create(ctx context.Context, interview *models.CompletedInterview) error {
	if err := r.db.WithContext(ctx).Create(interview).Error; err != nil {
		return fmt.Errorf("failed to create completed interview: %w", err)
	}
	return nil
}

func (r *InterviewPostgreSQL) GetByID(ctx context.Context, id string) (*models.CompletedInterview, error) {
	var interview models.CompletedInterview
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&interview).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInterviewNotFound
		}
		return nil, err
	}
	return &interview, nil
}

// List returns a page of completed interviews plus the total count matching
// the filters.
func (r *InterviewPostgreSQL) List(ctx context.Context, filters repositories.InterviewFilters) ([]models.CompletedInterview, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.CompletedInterview{})
	query = applyInterviewFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count interviews: %w", err)
	}

	query = applyInterviewSorting(query, filters)
	query = applyInterviewPagination(query, filters)

	var interviews []models.CompletedInterview
	if err := query.Find(&interviews).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list interviews: %w", err)
	}

	return interviews, total, nil
}

func (r *InterviewPostgreSQL) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.CompletedInterview{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete interview: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInterviewNotFound
	}
	return nil
}

// ===== QUERY HELPERS =====

func applyInterviewFilters(query *gorm.DB, filters repositories.InterviewFilters) *gorm.DB {
	if filters.JobTitle != nil {
		query = query.Where("job_title ILIKE ?", "%"+*filters.JobTitle+"%")
	}
	if filters.UserName != nil {
		query = query.Where("user_name ILIKE ?", "%"+*filters.UserName+"%")
	}
	if filters.MinScore != nil {
		query = query.Where("total_score >= ?", *filters.MinScore)
	}
	if filters.MaxScore != nil {
		query = query.Where("total_score <= ?", *filters.MaxScore)
	}
	if filters.DateFrom != nil {
		query = query.Where("completed_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("completed_at <= ?", endOfRange(*filters.DateTo))
	}
	return query
}

func applyInterviewSorting(query *gorm.DB, filters repositories.InterviewFilters) *gorm.DB {
	// Whitelisted sort columns; anything else falls back to completed_at
	sortBy := "completed_at"
	switch filters.SortBy {
	case "total_score", "job_title", "completed_at":
		sortBy = filters.SortBy
	}

	order := "DESC"
	if filters.SortOrder == "asc" {
		order = "ASC"
	}

	return query.Order(fmt.Sprintf("%s %s", sortBy, order))
}

func applyInterviewPagination(query *gorm.DB, filters repositories.InterviewFilters) *gorm.DB {
	limit := filters.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query = query.Limit(limit)

	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	return query
}

func endOfRange(t time.Time) time.Time {
	// An exact-date upper bound should include the whole day
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Add(24*time.Hour - time.Nanosecond)
	}
	return t
}
