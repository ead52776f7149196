package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/talkgenius/interview-engine/internal/models"
)

func TestExtractUserName(t *testing.T) {
	tests := []struct {
		answer string
		want   string
	}{
		{"My name is Priya and I work in fintech.", "Priya"},
		{"Hi, I'm Marcus, thanks for having me.", "Marcus"},
		{"You can call me Sam.", "Sam"},
		{"Jordan here, excited to get started.", "Jordan"},
		{"This is Lee speaking.", "Lee"},
		{"I have ten years of experience in operations.", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractUserName(tt.answer), tt.answer)
	}
}

func TestRecalculateState_AveragesAllAnswers(t *testing.T) {
	s := &Session{State: models.InterviewState{SkillProficiency: map[string]int{}}}
	q := models.Question{ID: "q-1", Question: "Tell me about yourself."}

	s.Answers = append(s.Answers, models.Answer{QuestionID: "q-1", Score: 80})
	s.recalculateState(q, "first answer", &models.Evaluation{Score: 80, SkillAssessment: map[string]int{"Communication": 70}})
	assert.Equal(t, 80, s.State.PerformanceScore)

	s.Answers = append(s.Answers, models.Answer{QuestionID: "q-2", Score: 50})
	s.recalculateState(q, "second answer", &models.Evaluation{Score: 50, SkillAssessment: map[string]int{"Communication": 55}})
	assert.Equal(t, 65, s.State.PerformanceScore)
	assert.Equal(t, 55, s.State.SkillProficiency["Communication"], "latest assessment wins")
}

func TestRecalculateState_ConversationContextIsBounded(t *testing.T) {
	s := &Session{State: models.InterviewState{SkillProficiency: map[string]int{}}}
	q := models.Question{ID: "q-1", Question: "A question"}

	for i := 0; i < 6; i++ {
		s.Answers = append(s.Answers, models.Answer{Score: 60})
		s.recalculateState(q, "an answer", &models.Evaluation{Score: 60})
	}
	assert.LessOrEqual(t, len(s.State.ConversationContext), 4)
}

func TestMainQuestionsAnswered_ExcludesFollowUps(t *testing.T) {
	s := &Session{
		Questions: []models.Question{
			{ID: "q-1"},
			{ID: "f-1", IsFollowUp: true},
			{ID: "q-2"},
		},
		Answers: []models.Answer{
			{QuestionID: "q-1"},
			{QuestionID: "f-1"},
			{QuestionID: "q-2"},
		},
	}
	assert.Equal(t, 2, s.mainQuestionsAnswered())
}
