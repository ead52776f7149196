package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/talkgenius/interview-engine/internal/events"
	"github.com/talkgenius/interview-engine/internal/models"
	"github.com/talkgenius/interview-engine/internal/orchestrator"
	"github.com/talkgenius/interview-engine/internal/validator"
)

// SessionService is the application-facing surface for live interview
// sessions. It validates input, delegates to the orchestrator and publishes
// lifecycle events; all interview mechanics live in the orchestrator.
type SessionService interface {
	Start(ctx context.Context, profile models.InterviewProfile) (orchestrator.SessionView, error)
	Get(ctx context.Context, id string) (orchestrator.SessionView, error)
	SubmitAnswer(ctx context.Context, id, answer string) (orchestrator.SessionView, error)
	Skip(ctx context.Context, id string) (orchestrator.SessionView, error)
	Proceed(ctx context.Context, id string) (orchestrator.SessionView, error)
	AskInterviewer(ctx context.Context, id, question string) (orchestrator.SessionView, error)
	Resume(ctx context.Context, id string) (orchestrator.SessionView, error)
	Abandon(ctx context.Context, id string) error
	IngestFrame(ctx context.Context, id string, frame models.Frame) (models.BehavioralSnapshot, error)
	IngestAudio(ctx context.Context, id string, chunk models.AudioChunk) (models.VoiceSnapshot, error)
	IngestTranscript(ctx context.Context, id, text string, durationSeconds float64, final bool) error
}

type sessionService struct {
	orch      *orchestrator.Orchestrator
	validator *validator.Validator
	publisher events.EventPublisher
	logger    *ServiceLogger
}

func NewSessionService(
	orch *orchestrator.Orchestrator,
	v *validator.Validator,
	publisher events.EventPublisher,
	logger *slog.Logger,
) SessionService {
	return &sessionService{
		orch:      orch,
		validator: v,
		publisher: publisher,
		logger:    NewServiceLogger(logger, LogConfig{Service: "interview-engine", Component: "session_service"}),
	}
}

func (s *sessionService) Start(ctx context.Context, profile models.InterviewProfile) (orchestrator.SessionView, error) {
	start := time.Now()

	profile = s.validator.Profile().Normalize(profile)
	if err := s.validator.ValidateProfile(&profile); err != nil {
		var ve ValidationErrors
		if !errors.As(err, &ve) {
			ve = validator.ToValidationErrors(err)
		}
		if len(ve) > 0 {
			s.logger.LogValidationError(ctx, "start_session", ve)
			return orchestrator.SessionView{}, ve
		}
		s.logger.LogOperation(ctx, "start_session", "", time.Since(start), err)
		return orchestrator.SessionView{}, err
	}

	view, err := s.orch.StartSession(profile)
	err = translateSessionError(err)
	s.logger.LogOperation(ctx, "start_session", view.ID, time.Since(start), err)
	if err != nil {
		return orchestrator.SessionView{}, err
	}

	if pubErr := s.publisher.PublishInterviewEvent(ctx, events.NewInterviewStartedEvent(view.ID, profile, view.StartedAt)); pubErr != nil {
		// Event delivery failures never fail the session itself
		s.logger.Debug(ctx, "Started event not published", slog.String("session_id", view.ID), slog.String("error", pubErr.Error()))
	}

	return view, nil
}

func (s *sessionService) Get(ctx context.Context, id string) (orchestrator.SessionView, error) {
	view, err := s.orch.Session(id)
	return view, translateSessionError(err)
}

func (s *sessionService) SubmitAnswer(ctx context.Context, id, answer string) (orchestrator.SessionView, error) {
	start := time.Now()
	view, err := s.orch.SubmitAnswer(ctx, id, answer)
	err = translateSessionError(err)
	s.logger.LogOperation(ctx, "submit_answer", id, time.Since(start), err)
	return view, err
}

func (s *sessionService) Skip(ctx context.Context, id string) (orchestrator.SessionView, error) {
	start := time.Now()
	view, err := s.orch.Skip(id)
	err = translateSessionError(err)
	s.logger.LogOperation(ctx, "skip_question", id, time.Since(start), err)
	return view, err
}

func (s *sessionService) Proceed(ctx context.Context, id string) (orchestrator.SessionView, error) {
	view, err := s.orch.Proceed(id)
	return view, translateSessionError(err)
}

func (s *sessionService) AskInterviewer(ctx context.Context, id, question string) (orchestrator.SessionView, error) {
	start := time.Now()
	view, err := s.orch.AskInterviewer(ctx, id, question)
	err = translateSessionError(err)
	s.logger.LogOperation(ctx, "ask_interviewer", id, time.Since(start), err)
	return view, err
}

func (s *sessionService) Resume(ctx context.Context, id string) (orchestrator.SessionView, error) {
	view, err := s.orch.ResumeInterview(id)
	return view, translateSessionError(err)
}

func (s *sessionService) Abandon(ctx context.Context, id string) error {
	start := time.Now()

	view, err := s.orch.Session(id)
	if err != nil {
		return translateSessionError(err)
	}

	err = translateSessionError(s.orch.Abandon(id))
	s.logger.LogOperation(ctx, "abandon_session", id, time.Since(start), err)
	if err != nil {
		return err
	}

	if pubErr := s.publisher.PublishInterviewEvent(ctx, events.NewInterviewAbandonedEvent(id, view.Profile.JobTitle)); pubErr != nil {
		s.logger.Debug(ctx, "Abandoned event not published", slog.String("session_id", id), slog.String("error", pubErr.Error()))
	}

	return nil
}

func (s *sessionService) IngestFrame(ctx context.Context, id string, frame models.Frame) (models.BehavioralSnapshot, error) {
	snapshot, err := s.orch.IngestFrame(id, frame)
	return snapshot, translateSessionError(err)
}

func (s *sessionService) IngestAudio(ctx context.Context, id string, chunk models.AudioChunk) (models.VoiceSnapshot, error) {
	snapshot, err := s.orch.IngestAudio(id, chunk)
	return snapshot, translateSessionError(err)
}

func (s *sessionService) IngestTranscript(ctx context.Context, id, text string, durationSeconds float64, final bool) error {
	return translateSessionError(s.orch.IngestTranscript(id, text, durationSeconds, final))
}
