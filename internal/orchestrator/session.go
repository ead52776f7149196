package orchestrator

import (
	"context"
	"regexp"
	"sync"
	"time"

	"github.com/talkgenius/interview-engine/internal/analysis"
	"github.com/talkgenius/interview-engine/internal/models"
)

// Flow is the conversational state of a live session. Transitions are owned
// exclusively by the Orchestrator; handlers only ever read it.
type Flow string

const (
	FlowWelcome              Flow = "welcome"
	FlowQuestionAsked        Flow = "question-asked"
	FlowWaitingForAnswer     Flow = "waiting-for-answer"
	FlowProcessing           Flow = "processing"
	FlowShowingFeedback      Flow = "showing-feedback"
	FlowShowingCorrected     Flow = "showing-corrected-answers"
	FlowAskingFollowUp       Flow = "asking-followup"
	FlowProceedingToNext     Flow = "proceeding-to-next"
	FlowUserQuestionResponse Flow = "user-question-response"
	FlowFeedbackComplete     Flow = "feedback-complete"
	FlowCompleted            Flow = "completed"
	FlowAbandoned            Flow = "abandoned"
)

// Session is one live interview. All mutable fields are guarded by mu; the
// Orchestrator takes the lock briefly around transitions and never holds it
// across narration or remote calls.
type Session struct {
	mu sync.Mutex

	ID       string
	Profile  models.InterviewProfile
	UserName string

	Questions    []models.Question
	CurrentIndex int
	Answers      []models.Answer
	State        models.InterviewState

	Flow         Flow
	previousFlow Flow // Flow to restore after a candidate-question diversion

	PendingFollowUp      string
	CurrentMessage       string // Line the interviewer is currently speaking
	CurrentFeedback      string // On-screen analysis of the last answer
	CorrectedAnswer      string
	ExpectedAnswer       string
	UserQuestionResponse string
	LastScore            int

	Analyzer *analysis.Analyzer

	// Speech-to-text state for the active question. Final chunks accumulate
	// into committedTranscript; interim chunks overlay it until replaced.
	committedTranscript string
	currentTranscript   string

	StartedAt   time.Time
	CompletedAt time.Time

	// Countdown for the active question. The timer auto-submits on expiry
	// and is paused while the candidate is diverted into a question chat.
	countdown        *time.Timer
	questionDeadline time.Time

	// epoch invalidates in-flight narration chains: a chain captures the
	// value at start and abandons its remaining transitions if a newer
	// event has bumped it.
	epoch uint64

	ctx    context.Context
	cancel context.CancelFunc
}

// CurrentQuestion returns the active main question. Callers hold s.mu.
func (s *Session) currentQuestion() *models.Question {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Questions) {
		return nil
	}
	return &s.Questions[s.CurrentIndex]
}

// mainQuestionsAnswered counts scored answers to non-follow-up questions.
// Callers hold s.mu.
func (s *Session) mainQuestionsAnswered() int {
	followUps := make(map[string]bool, len(s.Questions))
	for _, q := range s.Questions {
		if q.IsFollowUp {
			followUps[q.ID] = true
		}
	}
	n := 0
	for _, a := range s.Answers {
		if !followUps[a.QuestionID] {
			n++
		}
	}
	return n
}

// recalculateState refreshes the running aggregates after an answer was
// appended. Callers hold s.mu.
func (s *Session) recalculateState(question models.Question, answerText string, eval *models.Evaluation) {
	for skill, score := range eval.SkillAssessment {
		if s.State.SkillProficiency == nil {
			s.State.SkillProficiency = make(map[string]int)
		}
		s.State.SkillProficiency[skill] = score
	}

	total := 0
	for _, a := range s.Answers {
		total += a.Score
	}
	if len(s.Answers) > 0 {
		s.State.PerformanceScore = (total + len(s.Answers)/2) / len(s.Answers)
	}

	s.State.AnsweredQuestions = s.mainQuestionsAnswered()

	entry := "Q: " + truncate(question.Question, 100) + "... A: " + truncate(answerText, 100) + "..."
	ctxEntries := s.State.ConversationContext
	if len(ctxEntries) > 3 {
		ctxEntries = ctxEntries[len(ctxEntries)-3:]
	}
	s.State.ConversationContext = append(ctxEntries, entry)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// ===== NAME EXTRACTION =====

var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)my name is (\w+)`),
	regexp.MustCompile(`(?i)i am (\w+)`),
	regexp.MustCompile(`(?i)i'm (\w+)`),
	regexp.MustCompile(`(?i)call me (\w+)`),
	regexp.MustCompile(`(?i)^(\w+) here`),
	regexp.MustCompile(`(?i)this is (\w+)`),
}

// extractUserName pulls a first name out of an introduction answer, so later
// feedback can address the candidate personally. Empty when nothing matches.
func extractUserName(answer string) string {
	for _, p := range namePatterns {
		if m := p.FindStringSubmatch(answer); len(m) > 1 {
			return m[1]
		}
	}
	return ""
}

// ===== VIEWS =====

// SessionView is the read-only snapshot handlers serve to the client.
type SessionView struct {
	ID                   string                  `json:"id"`
	Flow                 Flow                    `json:"flow"`
	Profile              models.InterviewProfile `json:"profile"`
	UserName             string                  `json:"user_name,omitempty"`
	CurrentQuestion      *models.Question        `json:"current_question,omitempty"`
	QuestionNumber       int                     `json:"question_number"`
	PendingFollowUp      string                  `json:"pending_follow_up,omitempty"`
	CurrentMessage       string                  `json:"current_message,omitempty"`
	CurrentFeedback      string                  `json:"current_feedback,omitempty"`
	CorrectedAnswer      string                  `json:"corrected_answer,omitempty"`
	ExpectedAnswer       string                  `json:"expected_answer,omitempty"`
	UserQuestionResponse string                  `json:"user_question_response,omitempty"`
	LastScore            int                     `json:"last_score"`
	State                models.InterviewState   `json:"state"`
	Answers              []models.Answer         `json:"answers"`
	TimeRemaining        int                     `json:"time_remaining_seconds"`
	StartedAt            time.Time               `json:"started_at"`
}

// view builds a SessionView. Callers hold s.mu.
func (s *Session) view() SessionView {
	v := SessionView{
		ID:                   s.ID,
		Flow:                 s.Flow,
		Profile:              s.Profile,
		UserName:             s.UserName,
		QuestionNumber:       s.State.AnsweredQuestions + 1,
		PendingFollowUp:      s.PendingFollowUp,
		CurrentMessage:       s.CurrentMessage,
		CurrentFeedback:      s.CurrentFeedback,
		CorrectedAnswer:      s.CorrectedAnswer,
		ExpectedAnswer:       s.ExpectedAnswer,
		UserQuestionResponse: s.UserQuestionResponse,
		LastScore:            s.LastScore,
		State:                s.State,
		Answers:              s.Answers,
		StartedAt:            s.StartedAt,
	}
	if q := s.currentQuestion(); q != nil {
		qCopy := *q
		v.CurrentQuestion = &qCopy
	}
	if s.Flow == FlowWaitingForAnswer && !s.questionDeadline.IsZero() {
		if remaining := time.Until(s.questionDeadline); remaining > 0 {
			v.TimeRemaining = int(remaining.Seconds())
		}
	}
	return v
}
