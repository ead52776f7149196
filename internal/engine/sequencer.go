package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/talkgenius/interview-engine/internal/models"
)

const (
	// MaxMainQuestions caps a session at 10 scored main questions.
	MaxMainQuestions = 10
	// MaxFollowUpsPerQuestion caps probing rounds under one main question.
	MaxFollowUpsPerQuestion = 3

	// earlyFinishQuestions / earlyFinishScore let a strong candidate out
	// early: 8 solid answers at 80+ overall is enough signal.
	earlyFinishQuestions = 8
	earlyFinishScore     = 80

	initialPoolSize = 8
)

// RemoteGenerator is the slice of Client the sequencer needs.
type RemoteGenerator interface {
	NextQuestion(ctx context.Context, req GenerationRequest) (*models.Question, error)
}

// Sequencer owns question supply: the static opening pool, dynamic
// generation against the remote collaborator, the local fallback question
// and the end-of-interview decision.
type Sequencer struct {
	remote RemoteGenerator
	logger *slog.Logger
}

// NewSequencer builds a Sequencer. remote may be nil; every dynamic request
// then lands on the local fallback.
func NewSequencer(remote RemoteGenerator, logger *slog.Logger) *Sequencer {
	return &Sequencer{remote: remote, logger: logger}
}

// InitialQuestions builds the static opening pool from the profile: two
// introduction questions, one skill-assessment per declared skill (up to
// three), then a problem-solving and a behavioral question, capped at eight.
func (s *Sequencer) InitialQuestions(profile models.InterviewProfile) []models.Question {
	company := profile.CompanyName
	if company == "" {
		company = "our company"
	}

	pool := []models.Question{
		{
			ID: "intro-1",
			Question: fmt.Sprintf("Hello and welcome! I'm Alex from the hiring team at %s. Thank you for taking the time to interview for the %s position. Could you please start by introducing yourself and telling me a bit about your background?",
				company, profile.JobTitle),
			Type:       models.QuestionIntroduction,
			Difficulty: models.DifficultyEasy,
			Category:   "Introduction",
			TimeLimit:  180,
		},
		{
			ID: "intro-2",
			Question: fmt.Sprintf("Nice to meet you. What interests you about this %s role, and why do you believe you would be a good fit for our team?",
				profile.JobTitle),
			Type:       models.QuestionIntroduction,
			Difficulty: models.DifficultyEasy,
			Category:   "Motivation",
			TimeLimit:  120,
		},
	}

	skills := profile.Skills
	if len(skills) > 3 {
		skills = skills[:3]
	}
	for i, skill := range skills {
		pool = append(pool, models.Question{
			ID: fmt.Sprintf("skill-%d", i+1),
			Question: fmt.Sprintf("I see you've listed %s as one of your key skills. Could you tell me about your experience with this and provide a specific example of how you've used %s in a professional setting?",
				skill, skill),
			Type:       models.QuestionSkillAssess,
			Difficulty: models.DifficultyMedium,
			Category:   skill,
			TimeLimit:  180,
			SkillFocus: []string{skill},
		})
	}

	pool = append(pool,
		models.Question{
			ID:         "problem-1",
			Question:   "Describe a challenging problem you faced in your previous role and walk me through how you approached solving it.",
			Type:       models.QuestionProblemSolving,
			Difficulty: models.DifficultyMedium,
			Category:   "Problem Solving",
			TimeLimit:  180,
		},
		models.Question{
			ID:         "behavioral-1",
			Question:   "Tell me about a time you had to work with a difficult team member. How did you handle the situation and what was the outcome?",
			Type:       models.QuestionBehavioral,
			Difficulty: models.DifficultyMedium,
			Category:   "Teamwork",
			TimeLimit:  150,
		},
	)

	if len(pool) > initialPoolSize {
		pool = pool[:initialPoolSize]
	}
	return pool
}

// NextInput is the conversational context a dynamic question is generated
// from.
type NextInput struct {
	Profile             models.InterviewProfile
	QuestionIndex       int
	LastQuestion        string
	LastAnswer          string
	LastScore           int
	PerformanceScore    int
	DifficultyLevel     models.DifficultyLevel
	SkillProficiency    map[string]int
	ConversationContext []string
	UserName            string
}

// Next produces the next main question once the static pool is exhausted:
// remote generation first, local fallback on any failure. It never returns
// an empty question.
func (s *Sequencer) Next(ctx context.Context, in NextInput) models.Question {
	if s.remote != nil {
		q, err := s.remote.NextQuestion(ctx, GenerationRequest{
			JobTitle:            in.Profile.JobTitle,
			FieldCategory:       in.Profile.FieldCategory,
			Experience:          in.Profile.Experience,
			Skills:              in.Profile.Skills,
			QuestionIndex:       in.QuestionIndex,
			LastQuestion:        in.LastQuestion,
			LastAnswer:          in.LastAnswer,
			AnswerScore:         in.LastScore,
			PerformanceScore:    in.PerformanceScore,
			DifficultyLevel:     in.DifficultyLevel,
			UserName:            in.UserName,
			ConversationContext: lastN(in.ConversationContext, 2),
		})
		if err == nil {
			return *q
		}
		s.logger.Warn("dynamic question generation failed, using fallback",
			"question_index", in.QuestionIndex, "error", err)
	}
	return s.FallbackQuestion(in.Profile, in.SkillProficiency, in.UserName)
}

// FallbackQuestion targets the candidate's weakest demonstrated skill, or
// their first declared skill when nothing scored below 60 yet.
func (s *Sequencer) FallbackQuestion(profile models.InterviewProfile, proficiency map[string]int, userName string) models.Question {
	skill := ""
	weakest := 60
	for name, score := range proficiency {
		if score < weakest {
			weakest = score
			skill = name
		}
	}
	if skill == "" {
		if len(profile.Skills) > 0 {
			skill = profile.Skills[0]
		} else {
			skill = "your skills"
		}
	}

	return models.Question{
		ID:         fmt.Sprintf("fallback-%s", newID()),
		Question:   fmt.Sprintf("%scould you tell me more about your experience with %s?", userPrefix(userName), skill),
		Type:       models.QuestionSkillAssess,
		Difficulty: models.DifficultyMedium,
		Category:   skill,
		TimeLimit:  150,
		SkillFocus: []string{skill},
	}
}

// ShouldEnd reports whether the interview is over: the hard cap of 10 main
// questions, or the early finish for strong performers.
func (s *Sequencer) ShouldEnd(mainQuestionsAnswered, performanceScore int) bool {
	if mainQuestionsAnswered >= MaxMainQuestions {
		return true
	}
	return mainQuestionsAnswered >= earlyFinishQuestions && performanceScore >= earlyFinishScore
}

func lastN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}

func newID() string {
	return uuid.NewString()
}
