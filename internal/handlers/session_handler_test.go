package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkgenius/interview-engine/internal/models"
	"github.com/talkgenius/interview-engine/internal/orchestrator"
	"github.com/talkgenius/interview-engine/internal/repositories"
	"github.com/talkgenius/interview-engine/internal/services"
	"github.com/talkgenius/interview-engine/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ===== STUB SERVICES =====

type stubSessionService struct {
	view orchestrator.SessionView
	err  error
}

func (s *stubSessionService) Start(ctx context.Context, profile models.InterviewProfile) (orchestrator.SessionView, error) {
	return s.view, s.err
}
func (s *stubSessionService) Get(ctx context.Context, id string) (orchestrator.SessionView, error) {
	return s.view, s.err
}
func (s *stubSessionService) SubmitAnswer(ctx context.Context, id, answer string) (orchestrator.SessionView, error) {
	return s.view, s.err
}
func (s *stubSessionService) Skip(ctx context.Context, id string) (orchestrator.SessionView, error) {
	return s.view, s.err
}
func (s *stubSessionService) Proceed(ctx context.Context, id string) (orchestrator.SessionView, error) {
	return s.view, s.err
}
func (s *stubSessionService) AskInterviewer(ctx context.Context, id, question string) (orchestrator.SessionView, error) {
	return s.view, s.err
}
func (s *stubSessionService) Resume(ctx context.Context, id string) (orchestrator.SessionView, error) {
	return s.view, s.err
}
func (s *stubSessionService) Abandon(ctx context.Context, id string) error {
	return s.err
}
func (s *stubSessionService) IngestFrame(ctx context.Context, id string, frame models.Frame) (models.BehavioralSnapshot, error) {
	return models.BehavioralSnapshot{Attention: 50}, s.err
}
func (s *stubSessionService) IngestAudio(ctx context.Context, id string, chunk models.AudioChunk) (models.VoiceSnapshot, error) {
	return models.VoiceSnapshot{}, s.err
}
func (s *stubSessionService) IngestTranscript(ctx context.Context, id, text string, durationSeconds float64, final bool) error {
	return s.err
}

type stubInterviewService struct {
	interview *models.CompletedInterview
	summary   *models.InterviewSummary
	err       error
}

func (s *stubInterviewService) InterviewCompleted(ctx context.Context, record *models.CompletionRecord) {
}
func (s *stubInterviewService) Get(ctx context.Context, id string) (*models.CompletedInterview, error) {
	return s.interview, s.err
}
func (s *stubInterviewService) GetSummary(ctx context.Context, sessionID string) (*models.InterviewSummary, error) {
	return s.summary, s.err
}
func (s *stubInterviewService) List(ctx context.Context, filters repositories.InterviewFilters) ([]models.CompletedInterview, int64, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	if s.interview == nil {
		return nil, 0, nil
	}
	return []models.CompletedInterview{*s.interview}, 1, nil
}

type stubReportService struct {
	data []byte
	err  error
}

func (s *stubReportService) ExportInterviewToExcel(ctx context.Context, id string) ([]byte, error) {
	return s.data, s.err
}
func (s *stubReportService) ExportInterviewsToCSV(ctx context.Context, filters repositories.InterviewFilters) ([]byte, error) {
	return s.data, s.err
}

// ===== HELPERS =====

func testRouter(sessions services.SessionService, interviews services.InterviewService, reports services.ReportService) *gin.Engine {
	router := gin.New()
	hm := NewHandlerManager(sessions, interviews, reports, utils.NewDefaultLogger())
	hm.SetupRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ===== TESTS =====

func TestStartSession_Created(t *testing.T) {
	sessions := &stubSessionService{view: orchestrator.SessionView{ID: "sess-1"}}
	router := testRouter(sessions, &stubInterviewService{}, &stubReportService{})

	w := doJSON(t, router, http.MethodPost, "/api/v1/sessions", models.InterviewProfile{
		JobTitle: "Backend Engineer",
		Skills:   []string{"Go"},
	})

	require.Equal(t, http.StatusCreated, w.Code)
	var view orchestrator.SessionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "sess-1", view.ID)
}

func TestStartSession_InvalidPayload(t *testing.T) {
	router := testRouter(&stubSessionService{}, &stubInterviewService{}, &stubReportService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetSession_NotFoundMapping(t *testing.T) {
	sessions := &stubSessionService{err: services.ErrSessionNotFound}
	router := testRouter(sessions, &stubInterviewService{}, &stubReportService{})

	w := doJSON(t, router, http.MethodGet, "/api/v1/sessions/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitAnswer_EmptyAnswerMapping(t *testing.T) {
	sessions := &stubSessionService{err: services.ErrEmptyAnswer}
	router := testRouter(sessions, &stubInterviewService{}, &stubReportService{})

	w := doJSON(t, router, http.MethodPost, "/api/v1/sessions/sess-1/answer", AnswerRequest{Answer: "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitAnswer_ConflictMapping(t *testing.T) {
	sessions := &stubSessionService{err: services.ErrInvalidFlowState}
	router := testRouter(sessions, &stubInterviewService{}, &stubReportService{})

	w := doJSON(t, router, http.MethodPost, "/api/v1/sessions/sess-1/answer", AnswerRequest{Answer: "An answer"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestIngestFrame_ReturnsSnapshot(t *testing.T) {
	router := testRouter(&stubSessionService{}, &stubInterviewService{}, &stubReportService{})

	w := doJSON(t, router, http.MethodPost, "/api/v1/sessions/sess-1/frames", models.Frame{
		Width: 4, Height: 4, Pixels: make([]byte, 64),
	})

	require.Equal(t, http.StatusOK, w.Code)
	var snapshot models.BehavioralSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snapshot))
	assert.Equal(t, 50, snapshot.Attention)
}

func TestExportInterviewReport_StreamsWorkbook(t *testing.T) {
	reports := &stubReportService{data: []byte("xlsx-bytes")}
	router := testRouter(&stubSessionService{}, &stubInterviewService{}, reports)

	w := doJSON(t, router, http.MethodGet, "/api/v1/interviews/sess-1/report", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "interview-sess-1.xlsx")
	assert.Equal(t, "xlsx-bytes", w.Body.String())
}

func TestListInterviews_InvalidScoreFilter(t *testing.T) {
	router := testRouter(&stubSessionService{}, &stubInterviewService{}, &stubReportService{})

	w := doJSON(t, router, http.MethodGet, "/api/v1/interviews?min_score=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetInterview_NotFound(t *testing.T) {
	interviews := &stubInterviewService{err: services.ErrInterviewNotFound}
	router := testRouter(&stubSessionService{}, interviews, &stubReportService{})

	w := doJSON(t, router, http.MethodGet, "/api/v1/interviews/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
