package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/talkgenius/interview-engine/internal/cache"
	"github.com/talkgenius/interview-engine/internal/events"
	"github.com/talkgenius/interview-engine/internal/models"
	"github.com/talkgenius/interview-engine/internal/repositories"
)

const summaryCacheTTL = 24 * time.Hour

// InterviewService persists finished sessions and serves the completed
// interview archive. Its InterviewCompleted method is handed to the
// orchestrator as the completion sink.
type InterviewService interface {
	InterviewCompleted(ctx context.Context, record *models.CompletionRecord)
	Get(ctx context.Context, id string) (*models.CompletedInterview, error)
	GetSummary(ctx context.Context, sessionID string) (*models.InterviewSummary, error)
	List(ctx context.Context, filters repositories.InterviewFilters) ([]models.CompletedInterview, int64, error)
}

type interviewService struct {
	repo      repositories.InterviewRepository
	cache     cache.CacheService
	publisher events.EventPublisher
	logger    *ServiceLogger
}

func NewInterviewService(
	repo repositories.InterviewRepository,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	logger *slog.Logger,
) InterviewService {
	return &interviewService{
		repo:      repo,
		cache:     cacheService,
		publisher: publisher,
		logger:    NewServiceLogger(logger, LogConfig{Service: "interview-engine", Component: "interview_service"}),
	}
}

// InterviewCompleted persists the record, caches its summary and publishes
// the completion event. The session is already gone by the time this runs,
// so failures are logged rather than surfaced.
func (s *interviewService) InterviewCompleted(ctx context.Context, record *models.CompletionRecord) {
	start := time.Now()

	row, err := models.NewCompletedInterview(record)
	if err == nil {
		err = s.repo.Create(ctx, row)
	}
	s.logger.LogOperation(ctx, "persist_completed_interview", record.SessionID, time.Since(start), err)
	if err != nil {
		return
	}

	if cacheErr := s.cache.Set(ctx, summaryCacheKey(record.SessionID), record.Summary, summaryCacheTTL); cacheErr != nil {
		s.logger.Debug(ctx, "Summary not cached",
			slog.String("session_id", record.SessionID),
			slog.String("error", cacheErr.Error()))
	}

	if pubErr := s.publisher.PublishInterviewEvent(ctx, events.NewInterviewCompletedEvent(record)); pubErr != nil {
		s.logger.Debug(ctx, "Completed event not published",
			slog.String("session_id", record.SessionID),
			slog.String("error", pubErr.Error()))
	}
}

func (s *interviewService) Get(ctx context.Context, id string) (*models.CompletedInterview, error) {
	interview, err := s.repo.GetByID(ctx, id)
	return interview, translateRepositoryError(err)
}

// GetSummary serves the interview summary, from cache when the session
// finished recently.
func (s *interviewService) GetSummary(ctx context.Context, sessionID string) (*models.InterviewSummary, error) {
	var summary models.InterviewSummary
	if err := s.cache.Get(ctx, summaryCacheKey(sessionID), &summary); err == nil {
		return &summary, nil
	}

	interview, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, translateRepositoryError(err)
	}

	record, err := interview.Record()
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cache.Set(ctx, summaryCacheKey(sessionID), record.Summary, summaryCacheTTL); cacheErr != nil {
		s.logger.Debug(ctx, "Summary not cached",
			slog.String("session_id", sessionID),
			slog.String("error", cacheErr.Error()))
	}

	return &record.Summary, nil
}

func (s *interviewService) List(ctx context.Context, filters repositories.InterviewFilters) ([]models.CompletedInterview, int64, error) {
	interviews, total, err := s.repo.List(ctx, filters)
	return interviews, total, translateRepositoryError(err)
}

func summaryCacheKey(sessionID string) string {
	return fmt.Sprintf("interview:summary:%s", sessionID)
}
