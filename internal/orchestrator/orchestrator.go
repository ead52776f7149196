package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talkgenius/interview-engine/internal/analysis"
	"github.com/talkgenius/interview-engine/internal/engine"
	"github.com/talkgenius/interview-engine/internal/models"
)

var (
	ErrSessionNotFound  = errors.New("interview session not found")
	ErrSessionCompleted = errors.New("interview session already completed")
	ErrInvalidFlowState = errors.New("operation not allowed in current interview state")
	ErrEmptyAnswer      = errors.New("answer must not be empty")
)

// CompletionSink receives the single completion record of each finished
// session. Implementations own persistence, caching and event publication;
// the orchestrator fires and forgets.
type CompletionSink interface {
	InterviewCompleted(ctx context.Context, record *models.CompletionRecord)
}

// Config tunes the orchestrator's pacing.
type Config struct {
	// ReviewPause is how long corrected answers stay on screen before the
	// session advances to feedback-complete. Zero means no pause (tests).
	ReviewPause time.Duration
}

// Orchestrator runs every live interview session: it owns the per-session
// state machine and is the only writer of session state. One orchestrator
// serves many sessions concurrently; within a session, events apply one at
// a time.
type Orchestrator struct {
	evaluator engine.Evaluator
	sequencer *engine.Sequencer
	responder *engine.Responder
	narrator  Narrator
	sink      CompletionSink
	logger    *slog.Logger
	cfg       Config

	mu       sync.RWMutex
	sessions map[string]*Session
}

func New(
	evaluator engine.Evaluator,
	sequencer *engine.Sequencer,
	responder *engine.Responder,
	narrator Narrator,
	sink CompletionSink,
	cfg Config,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		evaluator: evaluator,
		sequencer: sequencer,
		responder: responder,
		narrator:  narrator,
		sink:      sink,
		cfg:       cfg,
		logger:    logger,
		sessions:  make(map[string]*Session),
	}
}

// ===== LIFECYCLE =====

// StartSession creates a session from a validated profile, narrates the
// welcome line and asks the first question. It returns immediately; the
// narration chain advances the session in the background.
func (o *Orchestrator) StartSession(profile models.InterviewProfile) (SessionView, error) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		ID:        uuid.NewString(),
		Profile:   profile,
		UserName:  profile.UserName,
		Questions: o.sequencer.InitialQuestions(profile),
		State: models.InterviewState{
			SkillProficiency: make(map[string]int),
			DifficultyLevel:  models.DifficultyMedium,
			Stage:            models.StageIntroduction,
		},
		Flow:      FlowWelcome,
		Analyzer:  analysis.NewAnalyzer(o.logger),
		StartedAt: time.Now(),
		ctx:       ctx,
		cancel:    cancel,
	}

	o.mu.Lock()
	o.sessions[s.ID] = s
	o.mu.Unlock()

	o.logger.Info("interview session started",
		"session_id", s.ID, "job_title", profile.JobTitle, "questions", len(s.Questions))

	s.mu.Lock()
	welcome := "Welcome to your Talkgenious AI assessment! I'll be presenting questions to evaluate your knowledge and problem-solving abilities. Let's begin with your first question."
	s.CurrentMessage = welcome
	epoch := s.epoch
	s.mu.Unlock()

	go func() {
		if err := o.narrator.Narrate(s.ctx, welcome); err != nil {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.epoch != epoch || s.Flow != FlowWelcome {
			return
		}
		o.askCurrentQuestionLocked(s, "")
	}()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(), nil
}

// Session returns the current view of a session.
func (o *Orchestrator) Session(id string) (SessionView, error) {
	s, err := o.session(id)
	if err != nil {
		return SessionView{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(), nil
}

// Abandon tears a session down without a completion record.
func (o *Orchestrator) Abandon(id string) error {
	s, err := o.session(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.Flow == FlowCompleted {
		s.mu.Unlock()
		return ErrSessionCompleted
	}
	s.Flow = FlowAbandoned
	s.stopCountdownLocked()
	s.mu.Unlock()

	s.cancel()
	s.Analyzer.StopPolling()

	o.mu.Lock()
	delete(o.sessions, id)
	o.mu.Unlock()

	o.logger.Info("interview session abandoned", "session_id", id)
	return nil
}

// ===== SIGNAL INGESTION =====

func (o *Orchestrator) IngestFrame(id string, frame models.Frame) (models.BehavioralSnapshot, error) {
	s, err := o.session(id)
	if err != nil {
		return models.BehavioralSnapshot{}, err
	}
	return s.Analyzer.AnalyzeFrame(frame), nil
}

func (o *Orchestrator) IngestAudio(id string, chunk models.AudioChunk) (models.VoiceSnapshot, error) {
	s, err := o.session(id)
	if err != nil {
		return models.VoiceSnapshot{}, err
	}
	return s.Analyzer.AnalyzeAudio(chunk), nil
}

// IngestTranscript records the candidate's speech-to-text progress for the
// current turn. The text is cumulative; each call replaces the buffered
// transcript.
func (o *Orchestrator) IngestTranscript(id, text string, durationSeconds float64, final bool) error {
	s, err := o.session(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	combined := joinTranscript(s.committedTranscript, text)
	if final {
		s.committedTranscript = combined
	}
	s.currentTranscript = combined
	s.mu.Unlock()

	s.Analyzer.UpdateFromTranscript(combined, durationSeconds)
	return nil
}

func joinTranscript(committed, chunk string) string {
	chunk = strings.TrimSpace(chunk)
	if committed == "" {
		return chunk
	}
	if chunk == "" {
		return committed
	}
	return committed + " " + chunk
}

// ===== ANSWERS =====

// SubmitAnswer scores one response and drives the feedback flow. Valid from
// waiting-for-answer (main question) and asking-followup (probing round).
func (o *Orchestrator) SubmitAnswer(ctx context.Context, id, answerText string) (SessionView, error) {
	if strings.TrimSpace(answerText) == "" {
		return SessionView{}, ErrEmptyAnswer
	}

	s, err := o.session(id)
	if err != nil {
		return SessionView{}, err
	}

	s.mu.Lock()
	if s.Flow != FlowWaitingForAnswer && s.Flow != FlowAskingFollowUp {
		view := s.view()
		s.mu.Unlock()
		return view, ErrInvalidFlowState
	}
	followUpRound := s.Flow == FlowAskingFollowUp
	revertFlow := s.Flow
	s.Flow = FlowProcessing
	s.epoch++
	s.stopCountdownLocked()

	question := o.questionForRoundLocked(s, followUpRound)
	followUpCount := s.State.CurrentFollowUpCount
	in := engine.EvaluateInput{
		Question:            question,
		Answer:              answerText,
		UserName:            s.UserName,
		FollowUpCount:       followUpCount,
		ConversationContext: s.State.ConversationContext,
		Profile:             s.Profile,
	}
	s.mu.Unlock()

	behavioral, voice := s.Analyzer.Snapshot()
	in.Behavioral = behavioral
	in.Voice = voice
	in.HasSpoken = s.Analyzer.HasSpoken()

	eval := o.evaluator.Evaluate(ctx, in)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ctx.Err(); err != nil {
		// Session torn down while we were evaluating.
		s.Flow = revertFlow
		return s.view(), ErrSessionNotFound
	}

	if followUpRound {
		s.Questions = append(s.Questions, question)
	}
	o.applyAnswerLocked(s, question, answerText, eval)

	// First introduction answer is our one chance to learn the name.
	if s.UserName == "" && question.ID == "intro-1" {
		if name := extractUserName(answerText); name != "" {
			s.UserName = name
			o.logger.Info("candidate name extracted", "session_id", s.ID, "user_name", name)
		}
	}

	if o.sequencer.ShouldEnd(s.State.AnsweredQuestions, s.State.PerformanceScore) {
		o.completeLocked(s, eval)
		return s.view(), nil
	}

	o.deliverFeedbackLocked(s, question, eval, followUpRound)
	return s.view(), nil
}

// Skip records the fixed skip evaluation and moves straight on. Skips never
// trigger follow-ups.
func (o *Orchestrator) Skip(id string) (SessionView, error) {
	s, err := o.session(id)
	if err != nil {
		return SessionView{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Flow != FlowWaitingForAnswer && s.Flow != FlowAskingFollowUp {
		return s.view(), ErrInvalidFlowState
	}

	// Skipping a follow-up just abandons the probing round; no answer is
	// recorded for the already-answered main question.
	if s.Flow == FlowAskingFollowUp {
		s.epoch++
		s.stopCountdownLocked()
		s.resetFollowUpLocked()
		s.Flow = FlowProceedingToNext
		o.advanceLocked(s)
		return s.view(), nil
	}

	q := s.currentQuestion()
	if q == nil {
		return s.view(), ErrInvalidFlowState
	}
	s.epoch++
	s.stopCountdownLocked()

	eval := engine.SkipEvaluation()
	o.applyAnswerLocked(s, *q, engine.SkipAnswerText, eval)
	s.resetFollowUpLocked()

	if o.sequencer.ShouldEnd(s.State.AnsweredQuestions, s.State.PerformanceScore) {
		o.completeLocked(s, eval)
		return s.view(), nil
	}

	s.Flow = FlowProceedingToNext
	s.CurrentMessage = eval.InterviewerResponse
	epoch := s.epoch
	go func() {
		if err := o.narrator.Narrate(s.ctx, eval.InterviewerResponse); err != nil {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.epoch != epoch {
			return
		}
		o.advanceLocked(s)
	}()
	return s.view(), nil
}

// Proceed advances past the feedback screens to the next main question (or
// completion). Valid from feedback-complete and showing-corrected-answers.
func (o *Orchestrator) Proceed(id string) (SessionView, error) {
	s, err := o.session(id)
	if err != nil {
		return SessionView{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Flow != FlowFeedbackComplete && s.Flow != FlowShowingCorrected {
		return s.view(), ErrInvalidFlowState
	}
	s.epoch++
	s.resetFollowUpLocked()
	s.Flow = FlowProceedingToNext
	o.advanceLocked(s)
	return s.view(), nil
}

// ===== CANDIDATE QUESTIONS =====

// AskInterviewer handles the candidate asking the interviewer something.
// The interview diverts into a response, then ResumeInterview restores the
// exact point it left off.
func (o *Orchestrator) AskInterviewer(ctx context.Context, id, userQuestion string) (SessionView, error) {
	if strings.TrimSpace(userQuestion) == "" {
		return SessionView{}, ErrEmptyAnswer
	}

	s, err := o.session(id)
	if err != nil {
		return SessionView{}, err
	}

	s.mu.Lock()
	// Diversion is only open while the candidate owns the floor. Allowing it
	// from feedback states would let a resume re-ask an already-answered
	// question and double-count it.
	if s.Flow != FlowWaitingForAnswer && s.Flow != FlowAskingFollowUp {
		view := s.view()
		s.mu.Unlock()
		return view, ErrInvalidFlowState
	}
	q := s.currentQuestion()
	if q == nil {
		view := s.view()
		s.mu.Unlock()
		return view, ErrInvalidFlowState
	}
	s.previousFlow = s.Flow
	s.Flow = FlowProcessing
	s.epoch++
	s.pauseCountdownLocked()

	in := engine.RespondInput{
		UserQuestion:     userQuestion,
		CurrentQuestion:  *q,
		AnsweredCount:    s.State.AnsweredQuestions,
		PerformanceScore: s.State.PerformanceScore,
		SkillProficiency: s.State.SkillProficiency,
		UserName:         s.UserName,
	}
	s.mu.Unlock()

	response := o.responder.Respond(ctx, in)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.UserQuestionResponse = response
	s.CurrentMessage = response
	s.Flow = FlowUserQuestionResponse
	epoch := s.epoch
	go o.narrateOnly(s, epoch, response)
	return s.view(), nil
}

// ResumeInterview returns from a question chat to the interrupted point: a
// diverted probing round resumes its follow-up, otherwise the current main
// question is re-asked.
func (o *Orchestrator) ResumeInterview(id string) (SessionView, error) {
	s, err := o.session(id)
	if err != nil {
		return SessionView{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Flow != FlowUserQuestionResponse {
		return s.view(), ErrInvalidFlowState
	}
	s.UserQuestionResponse = ""
	s.epoch++
	resumeTo := s.previousFlow
	s.previousFlow = ""

	if resumeTo == FlowAskingFollowUp && s.PendingFollowUp != "" {
		s.Flow = FlowAskingFollowUp
		line := "Let's continue. " + s.PendingFollowUp
		s.CurrentMessage = line
		epoch := s.epoch
		go func() {
			if err := o.narrator.Narrate(s.ctx, line); err != nil {
				return
			}
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.epoch != epoch || s.Flow != FlowAskingFollowUp {
				return
			}
			s.startCountdownLocked(120*time.Second, func() { o.autoSubmit(s.ID, epoch) })
		}()
		return s.view(), nil
	}

	q := s.currentQuestion()
	if q == nil {
		return s.view(), ErrInvalidFlowState
	}
	o.askQuestionLocked(s, *q, "Let's continue with our interview. ")
	return s.view(), nil
}

// ===== INTERNALS =====

func (o *Orchestrator) session(id string) (*Session, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	s, ok := o.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// questionForRoundLocked resolves what the submitted answer responds to: the
// current main question, or a synthetic follow-up question referencing it.
func (o *Orchestrator) questionForRoundLocked(s *Session, followUpRound bool) models.Question {
	main := s.currentQuestion()
	if !followUpRound {
		if main == nil {
			return models.Question{ID: "unknown", Question: "Unknown question"}
		}
		return *main
	}

	parentID := s.State.CurrentMainQuestionID
	category := "General"
	if main != nil {
		category = main.Category
		if parentID == "" {
			parentID = main.ID
		}
	}
	text := s.PendingFollowUp
	if text == "" {
		text = "Could you elaborate on that?"
	}
	return models.Question{
		ID:               fmt.Sprintf("followup-%s", uuid.NewString()),
		Question:         text,
		Type:             models.QuestionFollowUp,
		Difficulty:       s.State.DifficultyLevel,
		Category:         category,
		TimeLimit:        120,
		IsFollowUp:       true,
		ParentQuestionID: parentID,
	}
}

// applyAnswerLocked appends the answer record and refreshes aggregates.
func (o *Orchestrator) applyAnswerLocked(s *Session, question models.Question, answerText string, eval *models.Evaluation) {
	s.Answers = append(s.Answers, models.Answer{
		QuestionID: question.ID,
		Answer:     answerText,
		Timestamp:  time.Now(),
		Score:      eval.Score,
		Evaluation: eval,
	})
	s.recalculateState(question, answerText, eval)
	s.LastScore = eval.Score
	s.committedTranscript = ""
	s.currentTranscript = ""

	o.logger.Info("answer recorded",
		"session_id", s.ID,
		"question_id", question.ID,
		"follow_up", question.IsFollowUp,
		"score", eval.Score,
		"performance_score", s.State.PerformanceScore)
}

// deliverFeedbackLocked runs the post-evaluation flow: spoken response,
// then either a follow-up round or the corrected-answer review.
func (o *Orchestrator) deliverFeedbackLocked(s *Session, question models.Question, eval *models.Evaluation, followUpRound bool) {
	s.Flow = FlowShowingFeedback
	s.CurrentFeedback = eval.DetailedFeedback
	s.CorrectedAnswer = eval.CorrectedAnswer
	s.ExpectedAnswer = eval.ExpectedAnswer
	s.CurrentMessage = eval.InterviewerResponse

	wantsFollowUp := eval.FollowUpQuestion != "" &&
		s.State.CurrentFollowUpCount < engine.MaxFollowUpsPerQuestion
	if followUpRound {
		wantsFollowUp = wantsFollowUp && eval.Score < 85
	} else {
		wantsFollowUp = wantsFollowUp && !question.IsFollowUp
	}

	epoch := s.epoch
	spoken := eval.InterviewerResponse

	if wantsFollowUp {
		s.State.CurrentFollowUpCount++
		if !followUpRound {
			s.State.CurrentMainQuestionID = question.ID
		}
		s.PendingFollowUp = eval.FollowUpQuestion
		followUp := eval.FollowUpQuestion

		go func() {
			if err := o.narrator.Narrate(s.ctx, spoken); err != nil {
				return
			}
			s.mu.Lock()
			if s.epoch != epoch {
				s.mu.Unlock()
				return
			}
			s.Flow = FlowAskingFollowUp
			s.CurrentMessage = followUp
			s.Analyzer.ResetTurn()
			s.mu.Unlock()

			if err := o.narrator.Narrate(s.ctx, followUp); err != nil {
				return
			}
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.epoch != epoch || s.Flow != FlowAskingFollowUp {
				return
			}
			s.startCountdownLocked(120*time.Second, func() { o.autoSubmit(s.ID, epoch) })
		}()
		return
	}

	go func() {
		if err := o.narrator.Narrate(s.ctx, spoken); err != nil {
			return
		}
		s.mu.Lock()
		if s.epoch != epoch {
			s.mu.Unlock()
			return
		}
		s.Flow = FlowShowingCorrected
		s.mu.Unlock()

		if o.cfg.ReviewPause > 0 {
			timer := time.NewTimer(o.cfg.ReviewPause)
			select {
			case <-s.ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.epoch != epoch || s.Flow != FlowShowingCorrected {
			return
		}
		s.Flow = FlowFeedbackComplete
		s.resetFollowUpLocked()
	}()
}

// advanceLocked moves to the next main question, generating one dynamically
// once the static pool is exhausted.
func (o *Orchestrator) advanceLocked(s *Session) {
	if o.sequencer.ShouldEnd(s.State.AnsweredQuestions, s.State.PerformanceScore) {
		o.completeLocked(s, nil)
		return
	}

	if s.CurrentIndex < len(s.Questions)-1 {
		s.CurrentIndex++
		// Skip over synthetic follow-up entries appended during probing.
		for s.CurrentIndex < len(s.Questions) && s.Questions[s.CurrentIndex].IsFollowUp {
			s.CurrentIndex++
		}
		if s.CurrentIndex < len(s.Questions) {
			o.askCurrentQuestionLocked(s, "")
			return
		}
		s.CurrentIndex = len(s.Questions) - 1
	}

	// Pool exhausted: generate off the lock, then ask.
	in := o.nextInputLocked(s)
	epoch := s.epoch
	go func() {
		q := o.sequencer.Next(s.ctx, in)
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.epoch != epoch {
			return
		}
		s.Questions = append(s.Questions, q)
		s.CurrentIndex = len(s.Questions) - 1
		o.askCurrentQuestionLocked(s, "")
	}()
}

func (o *Orchestrator) nextInputLocked(s *Session) engine.NextInput {
	in := engine.NextInput{
		Profile:             s.Profile,
		QuestionIndex:       s.CurrentIndex,
		PerformanceScore:    s.State.PerformanceScore,
		DifficultyLevel:     s.State.DifficultyLevel,
		SkillProficiency:    s.State.SkillProficiency,
		ConversationContext: s.State.ConversationContext,
		UserName:            s.UserName,
	}
	if q := s.currentQuestion(); q != nil {
		in.LastQuestion = q.Question
	}
	if len(s.Answers) > 0 {
		last := s.Answers[len(s.Answers)-1]
		in.LastAnswer = last.Answer
		in.LastScore = last.Score
	}
	return in
}

func (o *Orchestrator) askCurrentQuestionLocked(s *Session, prefix string) {
	q := s.currentQuestion()
	if q == nil {
		o.completeLocked(s, nil)
		return
	}
	o.askQuestionLocked(s, *q, prefix)
}

// askQuestionLocked narrates a question and opens the answer window with its
// countdown. Callers hold s.mu.
func (o *Orchestrator) askQuestionLocked(s *Session, q models.Question, prefix string) {
	s.Flow = FlowQuestionAsked
	line := prefix + q.Question
	s.CurrentMessage = line
	s.CurrentFeedback = ""
	s.CorrectedAnswer = ""
	s.ExpectedAnswer = ""
	s.Analyzer.ResetTurn()
	s.committedTranscript = ""
	s.currentTranscript = ""
	s.epoch++
	epoch := s.epoch

	go func() {
		if err := o.narrator.Narrate(s.ctx, line); err != nil {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.epoch != epoch || s.Flow != FlowQuestionAsked {
			return
		}
		s.Flow = FlowWaitingForAnswer
		limit := time.Duration(q.EffectiveTimeLimit()) * time.Second
		s.startCountdownLocked(limit, func() { o.autoSubmit(s.ID, epoch) })
	}()
}

// narrateOnly speaks a line without any follow-on transition.
func (o *Orchestrator) narrateOnly(s *Session, epoch uint64, line string) {
	if err := o.narrator.Narrate(s.ctx, line); err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch == epoch && s.CurrentMessage == line {
		// Line finished; nothing else to do. Kept for symmetry and tracing.
		o.logger.Debug("narration finished", "session_id", s.ID)
	}
}

// autoSubmit fires when the answer countdown expires: whatever transcript
// has accumulated becomes the answer, or the question is skipped if the
// candidate said nothing.
func (o *Orchestrator) autoSubmit(id string, epoch uint64) {
	s, err := o.session(id)
	if err != nil {
		return
	}

	s.mu.Lock()
	if s.epoch != epoch || (s.Flow != FlowWaitingForAnswer && s.Flow != FlowAskingFollowUp) {
		s.mu.Unlock()
		return
	}
	transcript := strings.TrimSpace(s.currentTranscript)
	s.mu.Unlock()

	o.logger.Info("question countdown expired", "session_id", id, "has_transcript", transcript != "")

	if transcript == "" {
		if _, err := o.Skip(id); err != nil {
			o.logger.Warn("auto-skip failed", "session_id", id, "error", err)
		}
		return
	}
	if _, err := o.SubmitAnswer(context.Background(), id, transcript); err != nil {
		o.logger.Warn("auto-submit failed", "session_id", id, "error", err)
	}
}

// ===== COMPLETION =====

// completeLocked finishes the session: final narration, completion record,
// sink notification. Callers hold s.mu.
func (o *Orchestrator) completeLocked(s *Session, lastEval *models.Evaluation) {
	s.Flow = FlowCompleted
	s.CompletedAt = time.Now()
	s.stopCountdownLocked()
	s.epoch++

	summary := models.InterviewSummary{
		Strengths:       []string{"Good communication skills"},
		Improvements:    []string{"Could use more specific examples"},
		OverallFeedback: "Solid performance with room for improvement",
	}
	if lastEval == nil && len(s.Answers) > 0 {
		lastEval = s.Answers[len(s.Answers)-1].Evaluation
	}
	if lastEval != nil {
		if len(lastEval.Strengths) > 0 {
			summary.Strengths = lastEval.Strengths
		}
		if len(lastEval.Improvements) > 0 {
			summary.Improvements = lastEval.Improvements
		}
		if lastEval.DetailedFeedback != "" {
			summary.OverallFeedback = lastEval.DetailedFeedback
		}
	}

	record := &models.CompletionRecord{
		SessionID:   s.ID,
		Profile:     s.Profile,
		UserName:    s.UserName,
		Questions:   s.Questions,
		Answers:     s.Answers,
		TotalScore:  s.State.PerformanceScore,
		Duration:    int(s.CompletedAt.Sub(s.StartedAt).Seconds()),
		Summary:     summary,
		StartedAt:   s.StartedAt,
		CompletedAt: s.CompletedAt,
	}

	final := fmt.Sprintf("Thank you for completing the assessment session%s. Your overall performance score is %d percent.",
		nameSuffix(s.UserName), s.State.PerformanceScore)
	if top := topSkills(s.State.SkillProficiency, 3); len(top) > 0 {
		final += fmt.Sprintf(" Your strongest areas were %s.", strings.Join(top, ", "))
	}
	s.CurrentMessage = final

	o.logger.Info("interview session completed",
		"session_id", s.ID,
		"total_score", record.TotalScore,
		"answers", len(record.Answers),
		"duration_seconds", record.Duration)

	s.Analyzer.StopPolling()

	go o.narrator.Narrate(s.ctx, final)

	if o.sink != nil {
		go o.sink.InterviewCompleted(context.Background(), record)
	}
}

func nameSuffix(name string) string {
	if name == "" {
		return ""
	}
	return ", " + name
}

// topSkills returns up to n skill names, highest score first.
func topSkills(proficiency map[string]int, n int) []string {
	type entry struct {
		name  string
		score int
	}
	all := make([]entry, 0, len(proficiency))
	for name, score := range proficiency {
		all = append(all, entry{name, score})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return all[i].score > all[j].score
		}
		return all[i].name < all[j].name
	})
	if len(all) > n {
		all = all[:n]
	}
	names := make([]string, len(all))
	for i, e := range all {
		names[i] = e.name
	}
	return names
}

// ===== COUNTDOWN =====

func (s *Session) startCountdownLocked(d time.Duration, fire func()) {
	s.stopCountdownLocked()
	s.questionDeadline = time.Now().Add(d)
	s.countdown = time.AfterFunc(d, fire)
}

func (s *Session) stopCountdownLocked() {
	if s.countdown != nil {
		s.countdown.Stop()
		s.countdown = nil
	}
	s.questionDeadline = time.Time{}
}

// pauseCountdownLocked stops the timer for the duration of a diversion.
// Resume re-asks the question with a fresh time limit rather than the
// remaining time, matching the re-narration the candidate hears.
func (s *Session) pauseCountdownLocked() {
	if s.countdown != nil {
		s.countdown.Stop()
		s.countdown = nil
	}
}

func (s *Session) resetFollowUpLocked() {
	s.State.CurrentFollowUpCount = 0
	s.State.CurrentMainQuestionID = ""
	s.PendingFollowUp = ""
}
