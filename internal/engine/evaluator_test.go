package engine

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkgenius/interview-engine/internal/models"
	"github.com/talkgenius/interview-engine/internal/scoring"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type stubRemoteEvaluator struct {
	eval *models.Evaluation
	err  error
}

func (s *stubRemoteEvaluator) Evaluate(_ context.Context, _ EvaluationRequest) (*models.Evaluation, error) {
	return s.eval, s.err
}

func baseInput() EvaluateInput {
	return EvaluateInput{
		Question: models.Question{
			ID:       "q-1",
			Question: "Tell me about a challenging project you led.",
			Type:     models.QuestionBehavioral,
		},
		Answer: "For example, I led a migration project. First I planned the phases, " +
			"then we executed over three months, which improved reliability by 30%. " +
			"The result was a measurable reduction in incidents. Therefore the team " +
			"adopted the process permanently across every service we owned together.",
		Behavioral: models.BehavioralSnapshot{EyeContact: 80, Posture: 75, Gestures: 60, Smiling: 50, Attention: 80},
		Voice:      models.VoiceSnapshot{Volume: 70, Clarity: 75, Pace: 150, Tone: 65},
		HasSpoken:  true,
	}
}

func TestEvaluate_PrefersRemote(t *testing.T) {
	remote := &stubRemoteEvaluator{eval: &models.Evaluation{
		Score:               88,
		DetailedFeedback:    "Remote analysis.",
		InterviewerResponse: "Thanks.",
	}}
	e := NewEvaluator(remote, NewFollowUpPolicy(), testLogger())

	eval := e.Evaluate(context.Background(), baseInput())
	assert.Equal(t, 88, eval.Score)
	assert.Equal(t, "Remote analysis.", eval.DetailedFeedback)
}

func TestEvaluate_PartialRemotePayloadGetsLocalDefaults(t *testing.T) {
	remote := &stubRemoteEvaluator{eval: &models.Evaluation{
		DetailedFeedback:    "Remote analysis.",
		InterviewerResponse: "Thanks.",
	}}
	e := NewEvaluator(remote, NewFollowUpPolicy(), testLogger())

	in := baseInput()
	eval := e.Evaluate(context.Background(), in)

	local := scoring.Content(in.Answer, in.Question)
	assert.Equal(t, local, eval.ContentScore, "missing content score falls back to the local rubric")
	assert.Equal(t, scoring.Behavioral(in.Behavioral), eval.BehavioralScore)
	assert.Equal(t, scoring.Voice(in.Voice, in.HasSpoken), eval.VoiceScore)
	assert.Equal(t, scoring.Overall(eval.ContentScore, eval.BehavioralScore, eval.VoiceScore), eval.Score)
	assert.NotEmpty(t, eval.SkillAssessment)
	assert.NotEmpty(t, eval.Strengths)
	assert.NotEmpty(t, eval.CorrectedAnswer)
	assert.NotEmpty(t, eval.ExpectedAnswer)
	require.NotNil(t, eval.Behavioral)
	require.NotNil(t, eval.Voice)
	if eval.Score < 85 {
		assert.NotEmpty(t, eval.FollowUpQuestion, "policy-mandated follow-up must survive a silent remote")
	}
	assert.Equal(t, "Remote analysis.", eval.DetailedFeedback, "fields the remote did send are kept")
}

func TestEvaluate_RemoteOverallBackfillsContent(t *testing.T) {
	remote := &stubRemoteEvaluator{eval: &models.Evaluation{
		Score:               72,
		DetailedFeedback:    "Remote analysis.",
		InterviewerResponse: "Thanks.",
	}}
	e := NewEvaluator(remote, NewFollowUpPolicy(), testLogger())

	eval := e.Evaluate(context.Background(), baseInput())
	assert.Equal(t, 72, eval.Score)
	assert.Equal(t, 72, eval.ContentScore, "overall score stands in for a missing content score")
}

func TestEvaluate_FallsBackWhenRemoteFails(t *testing.T) {
	remote := &stubRemoteEvaluator{err: errors.New("connection refused")}
	e := NewEvaluator(remote, NewFollowUpPolicy(), testLogger())

	eval := e.Evaluate(context.Background(), baseInput())
	require.NotNil(t, eval)
	assert.Greater(t, eval.Score, 0)
	assert.NotEmpty(t, eval.DetailedFeedback)
	assert.NotEmpty(t, eval.InterviewerResponse)
	assert.NotEqual(t, eval.DetailedFeedback, eval.InterviewerResponse)
}

func TestEvaluate_OverallCombination(t *testing.T) {
	e := NewEvaluator(nil, NewFollowUpPolicy(), testLogger())

	eval := e.Evaluate(context.Background(), baseInput())
	want := scoring.Overall(eval.ContentScore, eval.BehavioralScore, eval.VoiceScore)
	assert.Equal(t, want, eval.Score)
	assert.NotNil(t, eval.Behavioral)
	assert.NotNil(t, eval.Voice)
}

func TestEvaluate_SilentCandidateGetsZeroVoice(t *testing.T) {
	e := NewEvaluator(nil, NewFollowUpPolicy(), testLogger())

	in := baseInput()
	in.HasSpoken = false
	eval := e.Evaluate(context.Background(), in)
	assert.Zero(t, eval.VoiceScore)
}

func TestEvaluate_ConfusionForcesClarification(t *testing.T) {
	e := NewEvaluator(nil, NewFollowUpPolicy(), testLogger())

	in := baseInput()
	in.Answer = "I'm sorry, I don't understand what you mean by that."
	eval := e.Evaluate(context.Background(), in)

	assert.NotEmpty(t, eval.FollowUpQuestion, "confused candidates always get a clarification round")
	assert.Contains(t, eval.DetailedFeedback, "unsure about this question")
}

func TestEvaluate_UserNamePrefix(t *testing.T) {
	e := NewEvaluator(nil, NewFollowUpPolicy(), testLogger())

	in := baseInput()
	in.UserName = "Dana"
	eval := e.Evaluate(context.Background(), in)

	assert.True(t, len(eval.DetailedFeedback) > 6 && eval.DetailedFeedback[:6] == "Dana, ")
	assert.True(t, len(eval.InterviewerResponse) > 6 && eval.InterviewerResponse[:6] == "Dana, ")
}

func TestEvaluate_NoFollowUpAfterThirdRound(t *testing.T) {
	e := NewEvaluator(nil, NewFollowUpPolicy(), testLogger())

	in := baseInput()
	in.Answer = "no"
	in.FollowUpCount = 3
	eval := e.Evaluate(context.Background(), in)
	assert.Empty(t, eval.FollowUpQuestion)
}

func TestFollowUpPolicy(t *testing.T) {
	p := NewFollowUpPolicy()

	tests := []struct {
		score, count int
		want         bool
	}{
		{84, 0, true},
		{85, 0, false},
		{74, 1, true},
		{75, 1, false},
		{64, 2, true},
		{65, 2, false},
		{10, 3, false},
		{10, 7, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.ShouldFollowUp(tt.score, tt.count),
			"score=%d count=%d", tt.score, tt.count)
	}
}

func TestSkipEvaluation(t *testing.T) {
	eval := SkipEvaluation()

	assert.Zero(t, eval.Score)
	assert.Empty(t, eval.FollowUpQuestion, "skips never trigger follow-ups")
	assert.Equal(t, 30, eval.SkillAssessment[scoring.SkillProfessionalism])
	assert.Equal(t, 20, eval.SkillAssessment[scoring.SkillConfidence])
}

func TestNormalizeEvaluation(t *testing.T) {
	eval := &models.Evaluation{
		Score:           250,
		ContentScore:    -5,
		SkillAssessment: map[string]int{"Communication": 180},
	}
	normalizeEvaluation(eval)

	assert.Equal(t, 100, eval.Score)
	assert.Zero(t, eval.ContentScore)
	assert.Equal(t, 100, eval.SkillAssessment["Communication"])
	assert.NotEmpty(t, eval.Strengths)
	assert.NotEmpty(t, eval.DetailedFeedback)
	assert.NotEqual(t, eval.DetailedFeedback, eval.InterviewerResponse)
}

func TestNormalizeEvaluation_IdenticalFeedbackStringsAreSplit(t *testing.T) {
	eval := &models.Evaluation{
		DetailedFeedback:    "Same text.",
		InterviewerResponse: "Same text.",
	}
	normalizeEvaluation(eval)
	assert.NotEqual(t, eval.DetailedFeedback, eval.InterviewerResponse)
}

func TestCorrectedAnswer_MetricAdviceWinsLast(t *testing.T) {
	// Structured, with examples, but no numbers: metrics advice applies.
	answer := "For example, I first analyzed the workload, then improved it because the team needed speed."
	corrected := correctedAnswerFor(answer)
	assert.Contains(t, corrected, "measurable results")
}
