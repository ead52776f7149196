package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/talkgenius/interview-engine/internal/models"
)

type stubRemoteResponder struct {
	response string
	err      error
}

func (s *stubRemoteResponder) RespondToCandidate(_ context.Context, _ CandidateQuestionRequest) (string, error) {
	return s.response, s.err
}

func TestRespond_PrefersRemote(t *testing.T) {
	r := NewResponder(&stubRemoteResponder{response: "Certainly, here is more detail."}, testLogger())

	got := r.Respond(context.Background(), RespondInput{UserQuestion: "What does the team look like?"})
	assert.Equal(t, "Certainly, here is more detail.", got)
}

func TestRespond_CannedCategories(t *testing.T) {
	r := NewResponder(&stubRemoteResponder{err: errors.New("down")}, testLogger())

	current := models.Question{
		Question: "Describe your experience with distributed systems.",
		Type:     models.QuestionTechnical,
	}

	tests := []struct {
		name     string
		question string
		contains string
	}{
		{"repetition", "Sorry, could you repeat that?", "Describe your experience with distributed systems."},
		{"clarification", "Can you clarify what you mean?", "technical knowledge"},
		{"process", "How many questions are left after this?", "main questions"},
		{"evaluation", "What criteria are you looking for?", "relevance to the question"},
		{"personal", "Who are you exactly?", "AI interviewer"},
		{"default", "Is the cafeteria food any good?", "thoughtful questions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Respond(context.Background(), RespondInput{
				UserQuestion:    tt.question,
				CurrentQuestion: current,
				AnsweredCount:   4,
			})
			assert.Contains(t, got, tt.contains)
		})
	}
}

func TestRespond_RepetitionWinsOverPersonal(t *testing.T) {
	r := NewResponder(nil, testLogger())

	// "you" also matches the personal pattern; repetition must take priority.
	got := r.Respond(context.Background(), RespondInput{
		UserQuestion:    "Could you repeat the question please?",
		CurrentQuestion: models.Question{Question: "Why us?"},
	})
	assert.Contains(t, got, "Why us?")
}

func TestRespond_EvaluationBands(t *testing.T) {
	r := NewResponder(nil, testLogger())

	tests := []struct {
		score int
		label string
	}{
		{85, "strong"},
		{72, "good"},
		{63, "satisfactory"},
		{40, "developing"},
	}
	for _, tt := range tests {
		got := r.Respond(context.Background(), RespondInput{
			UserQuestion:     "How am I doing so far?",
			PerformanceScore: tt.score,
		})
		assert.Contains(t, got, tt.label)
	}
}

func TestWeakestSkills(t *testing.T) {
	weak := weakestSkills(map[string]int{
		"Go":         75,
		"Kafka":      40,
		"PostgreSQL": 55,
		"Redis":      58,
	}, 2)
	assert.Equal(t, []string{"Kafka", "PostgreSQL"}, weak)

	assert.Empty(t, weakestSkills(map[string]int{"Go": 90}, 2))
}
