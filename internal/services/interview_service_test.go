package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkgenius/interview-engine/internal/cache"
	"github.com/talkgenius/interview-engine/internal/events"
	"github.com/talkgenius/interview-engine/internal/models"
	"github.com/talkgenius/interview-engine/internal/repositories"
	"github.com/talkgenius/interview-engine/internal/repositories/postgres"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// ===== MOCKS =====

type MockInterviewRepository struct {
	interviews map[string]*models.CompletedInterview
	createErr  error
}

func NewMockInterviewRepository() *MockInterviewRepository {
	return &MockInterviewRepository{interviews: make(map[string]*models.CompletedInterview)}
}

func (m *MockInterviewRepository) Create(ctx context.Context, interview *models.CompletedInterview) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.interviews[interview.ID] = interview
	return nil
}

func (m *MockInterviewRepository) GetByID(ctx context.Context, id string) (*models.CompletedInterview, error) {
	interview, ok := m.interviews[id]
	if !ok {
		return nil, postgres.ErrInterviewNotFound
	}
	return interview, nil
}

func (m *MockInterviewRepository) List(ctx context.Context, filters repositories.InterviewFilters) ([]models.CompletedInterview, int64, error) {
	var out []models.CompletedInterview
	for _, interview := range m.interviews {
		out = append(out, *interview)
	}
	return out, int64(len(out)), nil
}

func (m *MockInterviewRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.interviews[id]; !ok {
		return postgres.ErrInterviewNotFound
	}
	delete(m.interviews, id)
	return nil
}

type MockCacheService struct {
	values map[string][]byte
	gets   int
}

func NewMockCacheService() *MockCacheService {
	return &MockCacheService{values: make(map[string][]byte)}
}

func (m *MockCacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.values[key] = data
	return nil
}

func (m *MockCacheService) Get(ctx context.Context, key string, dest interface{}) error {
	m.gets++
	data, ok := m.values[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	delete(m.values, key)
	return nil
}

func (m *MockCacheService) DeletePattern(ctx context.Context, pattern string) error {
	return nil
}

// ===== FIXTURES =====

func testRecord(sessionID string) *models.CompletionRecord {
	started := time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC)
	return &models.CompletionRecord{
		SessionID: sessionID,
		Profile: models.InterviewProfile{
			JobTitle:    "Backend Engineer",
			CompanyName: "Northwind",
			Skills:      []string{"Go", "Postgres"},
		},
		UserName: "Dana",
		Questions: []models.Question{
			{ID: "intro-1", Question: "Tell me about yourself.", Type: models.QuestionIntroduction, Difficulty: models.DifficultyEasy},
		},
		Answers: []models.Answer{
			{QuestionID: "intro-1", Answer: "I build services in Go.", Score: 82, Evaluation: &models.Evaluation{
				Score: 82, ContentScore: 80, BehavioralScore: 85, VoiceScore: 78,
				DetailedFeedback: "Clear and well structured.",
			}},
		},
		TotalScore: 82,
		Duration:   540,
		Summary: models.InterviewSummary{
			Strengths:       []string{"Good communication skills"},
			Improvements:    []string{"Could use more specific examples"},
			OverallFeedback: "Solid performance with room for improvement",
		},
		StartedAt:   started,
		CompletedAt: started.Add(9 * time.Minute),
	}
}

// ===== TESTS =====

func TestInterviewCompleted_PersistsCachesAndPublishes(t *testing.T) {
	repo := NewMockInterviewRepository()
	cacheSvc := NewMockCacheService()
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewInterviewService(repo, cacheSvc, publisher, testLogger())

	svc.InterviewCompleted(context.Background(), testRecord("sess-1"))

	stored, err := repo.GetByID(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", stored.JobTitle)
	assert.Equal(t, 82, stored.TotalScore)

	summary, err := svc.GetSummary(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "Solid performance with room for improvement", summary.OverallFeedback)

	published := publisher.PublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventInterviewCompleted, published[0].Type)
}

func TestInterviewCompleted_RepositoryFailureSkipsEvent(t *testing.T) {
	repo := NewMockInterviewRepository()
	repo.createErr = assert.AnError
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewInterviewService(repo, NewMockCacheService(), publisher, testLogger())

	svc.InterviewCompleted(context.Background(), testRecord("sess-2"))

	assert.Empty(t, publisher.PublishedEvents())
}

func TestGetSummary_FallsBackToRepositoryOnCacheMiss(t *testing.T) {
	repo := NewMockInterviewRepository()
	cacheSvc := NewMockCacheService()
	svc := NewInterviewService(repo, cacheSvc, events.NewMockEventPublisher(testLogger()), testLogger())

	row, err := models.NewCompletedInterview(testRecord("sess-3"))
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), row))

	summary, err := svc.GetSummary(context.Background(), "sess-3")
	require.NoError(t, err)
	assert.Contains(t, summary.Strengths, "Good communication skills")

	// Second read should be served from the now-populated cache
	_, err = svc.GetSummary(context.Background(), "sess-3")
	require.NoError(t, err)
	assert.NotEmpty(t, cacheSvc.values)
}

func TestGet_TranslatesNotFound(t *testing.T) {
	svc := NewInterviewService(NewMockInterviewRepository(), NewMockCacheService(), events.NewMockEventPublisher(testLogger()), testLogger())

	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrInterviewNotFound)
	assert.True(t, IsNotFound(err))
}
