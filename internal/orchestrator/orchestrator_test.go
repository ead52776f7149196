package orchestrator

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkgenius/interview-engine/internal/engine"
	"github.com/talkgenius/interview-engine/internal/models"
)

// instantNarrator completes every line immediately so tests drive the state
// machine without real-time pacing.
type instantNarrator struct{}

func (instantNarrator) Narrate(ctx context.Context, _ string) error {
	return ctx.Err()
}

type recordingSink struct {
	mu      sync.Mutex
	records []*models.CompletionRecord
}

func (r *recordingSink) InterviewCompleted(_ context.Context, record *models.CompletionRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
}

func (r *recordingSink) last() *models.CompletionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.records) == 0 {
		return nil
	}
	return r.records[len(r.records)-1]
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

var orchProfile = models.InterviewProfile{
	JobTitle:    "Platform Engineer",
	CompanyName: "Northwind",
	Skills:      []string{"Go", "Kubernetes"},
}

func newTestOrchestrator(t *testing.T) (*Orchestrator, *recordingSink) {
	t.Helper()
	logger := testLogger()
	sink := &recordingSink{}
	o := New(
		engine.NewEvaluator(nil, engine.NewFollowUpPolicy(), logger),
		engine.NewSequencer(nil, logger),
		engine.NewResponder(nil, logger),
		instantNarrator{},
		sink,
		Config{},
		logger,
	)
	return o, sink
}

func startWaiting(t *testing.T, o *Orchestrator) string {
	t.Helper()
	view, err := o.StartSession(orchProfile)
	require.NoError(t, err)
	waitForFlow(t, o, view.ID, FlowWaitingForAnswer)
	return view.ID
}

func waitForFlow(t *testing.T, o *Orchestrator, id string, want Flow) SessionView {
	t.Helper()
	var view SessionView
	require.Eventually(t, func() bool {
		v, err := o.Session(id)
		if err != nil {
			return false
		}
		view = v
		return v.Flow == want
	}, 2*time.Second, 5*time.Millisecond, "waiting for flow %q", want)
	return view
}

const substantiveAnswer = "For example, I led a platform migration. First I profiled the system, " +
	"then we moved services gradually, which reduced incidents by 40%. The result " +
	"was a faster release cycle. Therefore the team kept the new process."

func TestStartSession_AsksFirstQuestion(t *testing.T) {
	o, _ := newTestOrchestrator(t)

	view, err := o.StartSession(orchProfile)
	require.NoError(t, err)
	assert.NotEmpty(t, view.ID)

	view = waitForFlow(t, o, view.ID, FlowWaitingForAnswer)
	require.NotNil(t, view.CurrentQuestion)
	assert.Equal(t, "intro-1", view.CurrentQuestion.ID)
	assert.Greater(t, view.TimeRemaining, 0)
	assert.Contains(t, view.CurrentMessage, "Northwind")
}

func TestSubmitAnswer_RejectsEmptyAndWrongState(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	id := startWaiting(t, o)

	_, err := o.SubmitAnswer(context.Background(), id, "   ")
	assert.ErrorIs(t, err, ErrEmptyAnswer)

	_, err = o.Proceed(id)
	assert.ErrorIs(t, err, ErrInvalidFlowState)

	_, err = o.SubmitAnswer(context.Background(), "no-such-session", "hello")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSubmitAnswer_RecordsAnswerAndAsksFollowUp(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	id := startWaiting(t, o)

	view, err := o.SubmitAnswer(context.Background(), id, substantiveAnswer)
	require.NoError(t, err)
	require.Len(t, view.Answers, 1)
	assert.Equal(t, "intro-1", view.Answers[0].QuestionID)
	assert.Greater(t, view.Answers[0].Score, 0)
	assert.NotEmpty(t, view.CurrentFeedback)
	assert.NotEmpty(t, view.CorrectedAnswer)

	// Without camera or audio signal the overall score lands well under 85,
	// so a first probing round always follows.
	view = waitForFlow(t, o, id, FlowAskingFollowUp)
	assert.Equal(t, 1, view.State.CurrentFollowUpCount)
	assert.NotEmpty(t, view.PendingFollowUp)
}

func TestFollowUpAnswer_RecordedAgainstSyntheticQuestion(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	id := startWaiting(t, o)

	_, err := o.SubmitAnswer(context.Background(), id, substantiveAnswer)
	require.NoError(t, err)
	waitForFlow(t, o, id, FlowAskingFollowUp)

	view, err := o.SubmitAnswer(context.Background(), id, substantiveAnswer)
	require.NoError(t, err)
	require.Len(t, view.Answers, 2)

	followUpID := view.Answers[1].QuestionID
	var followUpQuestion *models.Question
	for _, q := range questionsOf(t, o, id) {
		if q.ID == followUpID {
			qCopy := q
			followUpQuestion = &qCopy
		}
	}
	require.NotNil(t, followUpQuestion)
	assert.True(t, followUpQuestion.IsFollowUp)
	assert.Equal(t, "intro-1", followUpQuestion.ParentQuestionID)

	// Main-question count is unchanged by probing rounds.
	assert.Equal(t, 1, view.State.AnsweredQuestions)
}

func questionsOf(t *testing.T, o *Orchestrator, id string) []models.Question {
	t.Helper()
	s, err := o.session(id)
	require.NoError(t, err)
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Question(nil), s.Questions...)
}

func TestSkip_RecordsFixedEvaluationAndAdvances(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	id := startWaiting(t, o)

	view, err := o.Skip(id)
	require.NoError(t, err)
	require.Len(t, view.Answers, 1)
	assert.Equal(t, engine.SkipAnswerText, view.Answers[0].Answer)
	assert.Zero(t, view.Answers[0].Score)
	assert.Empty(t, view.Answers[0].Evaluation.FollowUpQuestion)

	view = waitForFlow(t, o, id, FlowWaitingForAnswer)
	require.NotNil(t, view.CurrentQuestion)
	assert.Equal(t, "intro-2", view.CurrentQuestion.ID)
}

func TestAskInterviewer_DivertsAndResumes(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	id := startWaiting(t, o)

	view, err := o.AskInterviewer(context.Background(), id, "Sorry, could you repeat that?")
	require.NoError(t, err)
	assert.Equal(t, FlowUserQuestionResponse, view.Flow)
	assert.Contains(t, view.UserQuestionResponse, "repeat the question")

	view, err = o.ResumeInterview(id)
	require.NoError(t, err)

	view = waitForFlow(t, o, id, FlowWaitingForAnswer)
	require.NotNil(t, view.CurrentQuestion)
	assert.Equal(t, "intro-1", view.CurrentQuestion.ID, "resume returns to the exact question")
	assert.Empty(t, view.UserQuestionResponse)
}

func TestAskInterviewer_RejectedFromFeedbackStates(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	id := startWaiting(t, o)

	// Exhaust the probing rounds so the last answer lands in the
	// corrected-answer review instead of another follow-up.
	_, err := o.SubmitAnswer(context.Background(), id, substantiveAnswer)
	require.NoError(t, err)
	for i := 0; i < engine.MaxFollowUpsPerQuestion; i++ {
		waitForFlow(t, o, id, FlowAskingFollowUp)
		_, err = o.SubmitAnswer(context.Background(), id, substantiveAnswer)
		require.NoError(t, err)
	}
	waitForFlow(t, o, id, FlowFeedbackComplete)

	_, err = o.AskInterviewer(context.Background(), id, "How did I do?")
	assert.ErrorIs(t, err, ErrInvalidFlowState)
	_, err = o.ResumeInterview(id)
	assert.ErrorIs(t, err, ErrInvalidFlowState)

	// The answered question was never re-opened.
	view, err := o.Session(id)
	require.NoError(t, err)
	mainAnswers := 0
	for _, a := range view.Answers {
		if a.QuestionID == "intro-1" {
			mainAnswers++
		}
	}
	assert.Equal(t, 1, mainAnswers)
	assert.Equal(t, 1, view.State.AnsweredQuestions)
}

func TestAskInterviewer_ResumesInterruptedFollowUp(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	id := startWaiting(t, o)

	_, err := o.SubmitAnswer(context.Background(), id, substantiveAnswer)
	require.NoError(t, err)
	before := waitForFlow(t, o, id, FlowAskingFollowUp)
	require.NotEmpty(t, before.PendingFollowUp)

	view, err := o.AskInterviewer(context.Background(), id, "Could you clarify what you mean?")
	require.NoError(t, err)
	assert.Equal(t, FlowUserQuestionResponse, view.Flow)

	view, err = o.ResumeInterview(id)
	require.NoError(t, err)
	assert.Equal(t, FlowAskingFollowUp, view.Flow)
	assert.Equal(t, before.PendingFollowUp, view.PendingFollowUp, "the probing round picks up where it left off")
}

func TestNameExtraction_FromIntroductionAnswer(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	id := startWaiting(t, o)

	answer := "My name is Dana and I have been building backend systems for eight years. " + substantiveAnswer
	view, err := o.SubmitAnswer(context.Background(), id, answer)
	require.NoError(t, err)
	assert.Equal(t, "Dana", view.UserName)
}

func TestInterview_CompletesAfterMaxMainQuestions(t *testing.T) {
	o, sink := newTestOrchestrator(t)
	id := startWaiting(t, o)

	for i := 0; i < engine.MaxMainQuestions; i++ {
		waitForFlow(t, o, id, FlowWaitingForAnswer)
		_, err := o.Skip(id)
		require.NoError(t, err)
	}

	view := waitForFlow(t, o, id, FlowCompleted)
	assert.Equal(t, engine.MaxMainQuestions, view.State.AnsweredQuestions)

	require.Eventually(t, func() bool { return sink.last() != nil }, 2*time.Second, 5*time.Millisecond)
	record := sink.last()
	assert.Equal(t, id, record.SessionID)
	assert.Len(t, record.Answers, engine.MaxMainQuestions)
	assert.Zero(t, record.TotalScore)
	assert.NotEmpty(t, record.Summary.OverallFeedback)
	assert.False(t, record.CompletedAt.Before(record.StartedAt))
}

func TestAbandon_RemovesSession(t *testing.T) {
	o, sink := newTestOrchestrator(t)
	id := startWaiting(t, o)

	require.NoError(t, o.Abandon(id))

	_, err := o.Session(id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Nil(t, sink.last(), "abandoned sessions emit no completion record")

	assert.ErrorIs(t, o.Abandon(id), ErrSessionNotFound)
}

func TestIngestTranscript_FeedsAnalyzer(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	id := startWaiting(t, o)

	err := o.IngestTranscript(id, "So basically I designed the ingestion pipeline from scratch last year.", 5, false)
	require.NoError(t, err)

	s, err := o.session(id)
	require.NoError(t, err)
	assert.True(t, s.Analyzer.HasSpoken())
}

func TestIngestTranscript_FinalChunksAccumulate(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	id := startWaiting(t, o)

	require.NoError(t, o.IngestTranscript(id, "I built the ingestion pipeline.", 3, true))
	require.NoError(t, o.IngestTranscript(id, "It handled about", 1, false))
	require.NoError(t, o.IngestTranscript(id, "It handled about ten thousand events per second.", 2, true))

	s, err := o.session(id)
	require.NoError(t, err)
	s.mu.Lock()
	got := s.currentTranscript
	s.mu.Unlock()
	assert.Equal(t, "I built the ingestion pipeline. It handled about ten thousand events per second.", got)
}

func TestIngestTranscript_InterimOverlayReplaced(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	id := startWaiting(t, o)

	require.NoError(t, o.IngestTranscript(id, "I built", 1, false))
	require.NoError(t, o.IngestTranscript(id, "I built the pipeline.", 2, false))

	s, err := o.session(id)
	require.NoError(t, err)
	s.mu.Lock()
	got := s.currentTranscript
	s.mu.Unlock()
	assert.Equal(t, "I built the pipeline.", got)
}

func TestIngestFrame_UnknownSession(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	_, err := o.IngestFrame("missing", models.Frame{})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
