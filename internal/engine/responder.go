package engine

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/talkgenius/interview-engine/internal/models"
)

// ===== CANDIDATE QUESTIONS =====

// RespondInput carries the state a candidate-question response draws on.
type RespondInput struct {
	UserQuestion     string
	CurrentQuestion  models.Question
	AnsweredCount    int
	PerformanceScore int
	SkillProficiency map[string]int
	UserName         string
}

// RemoteResponder is the slice of Client the responder needs.
type RemoteResponder interface {
	RespondToCandidate(ctx context.Context, req CandidateQuestionRequest) (string, error)
}

// Responder answers questions the candidate asks the interviewer. Like the
// evaluator it prefers the remote collaborator and degrades to canned
// pattern-matched responses, so the candidate always hears something.
type Responder struct {
	remote RemoteResponder
	logger *slog.Logger
}

func NewResponder(remote RemoteResponder, logger *slog.Logger) *Responder {
	return &Responder{remote: remote, logger: logger}
}

func (r *Responder) Respond(ctx context.Context, in RespondInput) string {
	if r.remote != nil {
		resp, err := r.remote.RespondToCandidate(ctx, CandidateQuestionRequest{
			UserQuestion:     in.UserQuestion,
			CurrentQuestion:  in.CurrentQuestion,
			AnsweredCount:    in.AnsweredCount,
			PerformanceScore: in.PerformanceScore,
			UserName:         in.UserName,
		})
		if err == nil {
			return resp
		}
		r.logger.Warn("remote candidate response unavailable, using canned response", "error", err)
	}
	return cannedResponse(in)
}

var (
	repetitionAsk    = regexp.MustCompile(`(?i)repeat|say that again|didn't catch|missed that`)
	clarificationAsk = regexp.MustCompile(`(?i)clarify|explain|what do you mean|don't understand|not clear`)
	processAsk       = regexp.MustCompile(`(?i)process|next|how many|what happens|after this`)
	evaluationAsk    = regexp.MustCompile(`(?i)evaluate|looking for|criteria|how am i doing|performance`)
	roleAsk          = regexp.MustCompile(`(?i)role|position|job|responsibilities|what would i do`)
	feedbackAsk      = regexp.MustCompile(`(?i)feedback|how did i do|my answer|assessment`)
	personalAsk      = regexp.MustCompile(`(?i)your|you|who are you|your role`)
)

// cannedResponse pattern-matches the candidate's question into one of the
// known categories. Order matters: a "can you repeat" request must win over
// the broad personal-question pattern.
func cannedResponse(in RespondInput) string {
	q := in.UserQuestion

	switch {
	case repetitionAsk.MatchString(q):
		return fmt.Sprintf("Of course, I'd be happy to repeat the question. %q Please take your time to think about your response.",
			in.CurrentQuestion.Question)

	case clarificationAsk.MatchString(q):
		return fmt.Sprintf("I'd be happy to clarify that for you. The question is asking about %s. Could you provide a specific example that relates to this?",
			clarificationFocus(in.CurrentQuestion.Type))

	case processAsk.MatchString(q):
		remaining := MaxMainQuestions - in.AnsweredCount
		if remaining < 0 {
			remaining = 0
		}
		estimated := remaining * 3
		if estimated < 5 {
			estimated = 5
		}
		return fmt.Sprintf("We're about halfway through the assessment. We've completed %d main questions with approximately %d remaining. The entire session typically takes around %d more minutes. The interview adapts based on your responses to better understand your capabilities.",
			in.AnsweredCount, remaining, estimated)

	case evaluationAsk.MatchString(q):
		label, encouragement := performanceBand(in.PerformanceScore)
		return fmt.Sprintf("I evaluate responses based on several factors: relevance to the question, depth of examples provided, clarity of communication, problem-solving approach, and how well your experience aligns with role requirements. Based on your responses so far, your performance is %s with an overall score of %d%%. %s",
			label, in.PerformanceScore, encouragement)

	case personalAsk.MatchString(q):
		return "I'm your AI interviewer conducting this assessment. My role is to understand your capabilities and experience through our conversation, and provide you with constructive feedback to help you improve."

	case roleAsk.MatchString(q):
		return "That's a great question about the role. In a real interview setting, this shows your interest in understanding the position better. For this assessment, I'd recommend focusing on demonstrating how your specific skills and experiences make you a strong fit through your answers to the questions asked."

	case feedbackAsk.MatchString(q):
		if weak := weakestSkills(in.SkillProficiency, 2); len(weak) > 0 {
			return fmt.Sprintf("Based on our conversation so far, you're doing well overall. To strengthen your responses further, consider providing more specific examples when discussing %s. Use the STAR method - Situation, Task, Action, Result - to structure your answers with concrete outcomes.",
				strings.Join(weak, " and "))
		}
		return "You're providing good, comprehensive answers. Continue focusing on specific examples with measurable results, and maintain the clear communication style you've been demonstrating."

	default:
		return "That's a relevant question. In a professional interview setting, asking thoughtful questions demonstrates your engagement and understanding. For this assessment, I'd recommend we continue with the planned questions to thoroughly evaluate your capabilities, but I appreciate your curiosity and engagement."
	}
}

func clarificationFocus(t models.QuestionType) string {
	switch t {
	case models.QuestionTechnical:
		return "your technical knowledge and how you approach problems in this area"
	case models.QuestionBehavioral:
		return "a specific example from your past experience that demonstrates your capabilities"
	case models.QuestionProblemSolving:
		return "your methodology for solving challenges and the steps you take"
	default:
		return "your relevant experience and thought process"
	}
}

func performanceBand(score int) (label, encouragement string) {
	switch {
	case score >= 80:
		return "strong", "You're demonstrating excellent communication skills and relevant experience."
	case score >= 70:
		return "good", "You're providing solid answers with good examples."
	case score >= 60:
		return "satisfactory", "You're on the right track, focus on providing more specific examples."
	default:
		return "developing", "Try to provide more detailed responses with concrete examples from your experience."
	}
}

// weakestSkills returns up to n skill names scoring under 60, lowest first.
func weakestSkills(proficiency map[string]int, n int) []string {
	type entry struct {
		name  string
		score int
	}
	var weak []entry
	for name, score := range proficiency {
		if score < 60 {
			weak = append(weak, entry{name, score})
		}
	}
	sort.Slice(weak, func(i, j int) bool {
		if weak[i].score != weak[j].score {
			return weak[i].score < weak[j].score
		}
		return weak[i].name < weak[j].name
	})
	if len(weak) > n {
		weak = weak[:n]
	}
	names := make([]string, len(weak))
	for i, e := range weak {
		names[i] = e.name
	}
	return names
}
