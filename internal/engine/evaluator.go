package engine

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/talkgenius/interview-engine/internal/models"
	"github.com/talkgenius/interview-engine/internal/scoring"
)

// ===== EVALUATOR =====

// EvaluateInput carries everything one evaluation needs. Snapshots are taken
// by the orchestrator at submission time; the evaluator never reads live
// analyzer state.
type EvaluateInput struct {
	Question            models.Question
	Answer              string
	Behavioral          models.BehavioralSnapshot
	Voice               models.VoiceSnapshot
	HasSpoken           bool
	UserName            string
	FollowUpCount       int
	ConversationContext []string
	Profile             models.InterviewProfile
}

// RemoteEvaluator is the slice of Client the evaluator needs.
type RemoteEvaluator interface {
	Evaluate(ctx context.Context, req EvaluationRequest) (*models.Evaluation, error)
}

// Evaluator judges answers: remote evaluation first, local rubric when the
// collaborator is down. Evaluate never returns an error — an interview must
// not stall because a remote endpoint is unreachable.
type Evaluator interface {
	Evaluate(ctx context.Context, in EvaluateInput) *models.Evaluation
}

type evaluator struct {
	remote RemoteEvaluator
	policy FollowUpPolicy
	logger *slog.Logger
}

// NewEvaluator builds an Evaluator. remote may be nil, in which case every
// evaluation uses the local rubric.
func NewEvaluator(remote RemoteEvaluator, policy FollowUpPolicy, logger *slog.Logger) Evaluator {
	return &evaluator{remote: remote, policy: policy, logger: logger}
}

func (e *evaluator) Evaluate(ctx context.Context, in EvaluateInput) *models.Evaluation {
	if e.remote != nil {
		eval, err := e.remote.Evaluate(ctx, EvaluationRequest{
			Question:            in.Question,
			Answer:              in.Answer,
			Behavioral:          in.Behavioral,
			Voice:               in.Voice,
			UserName:            in.UserName,
			FollowUpCount:       in.FollowUpCount,
			ConversationContext: in.ConversationContext,
			JobTitle:            in.Profile.JobTitle,
			Skills:              in.Profile.Skills,
		})
		if err == nil {
			return e.mergeRemote(eval, in)
		}
		e.logger.Warn("remote evaluation unavailable, using local rubric",
			"question_id", in.Question.ID, "error", err)
	}
	return e.localEvaluation(in)
}

// mergeRemote defaults every field of a remote evaluation the collaborator
// left out against the locally computable value. A partial payload must
// never zero an answer's scores, drop its skill map or swallow a follow-up
// the policy would have asked.
func (e *evaluator) mergeRemote(eval *models.Evaluation, in EvaluateInput) *models.Evaluation {
	if eval.ContentScore <= 0 {
		if eval.Score > 0 {
			eval.ContentScore = eval.Score
		} else {
			eval.ContentScore = scoring.Content(in.Answer, in.Question)
		}
	}
	if eval.BehavioralScore <= 0 {
		eval.BehavioralScore = scoring.Behavioral(in.Behavioral)
	}
	if eval.VoiceScore <= 0 {
		eval.VoiceScore = scoring.Voice(in.Voice, in.HasSpoken)
	}
	if eval.Score <= 0 {
		eval.Score = scoring.Overall(eval.ContentScore, eval.BehavioralScore, eval.VoiceScore)
	}
	if len(eval.SkillAssessment) == 0 {
		eval.SkillAssessment = scoring.Skills(eval.ContentScore, eval.BehavioralScore, eval.VoiceScore, in.Question.Type)
	}
	if len(eval.Strengths) == 0 {
		eval.Strengths = strengthsFor(eval.ContentScore, eval.BehavioralScore, eval.VoiceScore)
	}
	if len(eval.Improvements) == 0 {
		eval.Improvements = improvementsFor(eval.ContentScore, eval.BehavioralScore, eval.VoiceScore)
	}
	if len(eval.Suggestions) == 0 {
		eval.Suggestions = defaultSuggestions()
	}
	if eval.CorrectedAnswer == "" {
		eval.CorrectedAnswer = correctedAnswerFor(in.Answer)
	}
	if eval.ExpectedAnswer == "" {
		eval.ExpectedAnswer = expectedAnswerText
	}
	if eval.FollowUpQuestion == "" && e.policy.ShouldFollowUp(eval.Score, in.FollowUpCount) {
		eval.FollowUpQuestion = followUpForRound(in.FollowUpCount)
	}
	if eval.Behavioral == nil {
		eval.Behavioral = &in.Behavioral
	}
	if eval.Voice == nil {
		eval.Voice = &in.Voice
	}
	normalizeEvaluation(eval)
	return eval
}

// ===== LOCAL RUBRIC =====

var (
	confusionPattern = regexp.MustCompile(`(?i)don't understand|don't know|not sure|confused|can you repeat|what do you mean`)
	vaguenessPattern = regexp.MustCompile(`(?i)maybe|perhaps|probably|i think|i guess|kind of|sort of`)
	examplesMarker   = regexp.MustCompile(`(?i)example|for instance|such as|specifically|in my experience`)
	structureMarker  = regexp.MustCompile(`(?i)first|then|next|finally|because|therefore|however`)
	metricsMarker    = regexp.MustCompile(`(?i)\d+%|\d+ hours|\d+ dollars|\d+ users|\d+ projects`)
)

// feedbackTier pairs a score threshold with the two feedback strings for
// that band. Tiers are evaluated top-down; the first matching threshold
// wins, so the slice must stay sorted by MinScore descending.
type feedbackTier struct {
	MinScore int
	Display  string
	Spoken   string
}

var feedbackTiers = []feedbackTier{
	{
		MinScore: 90,
		Display:  "excellent response! You provided comprehensive details with specific examples and demonstrated strong communication skills.",
		Spoken:   "thank you for that outstanding answer. You clearly have deep expertise in this area.",
	},
	{
		MinScore: 85,
		Display:  "that was a very good response. You covered the main points well with relevant examples and good delivery.",
		Spoken:   "thank you for that detailed answer. It gives me a clear picture of your capabilities.",
	},
	{
		MinScore: 75,
		Display:  "good response. You addressed the question appropriately. Consider improving your delivery and adding more specific examples.",
		Spoken:   "thank you for your response. That helps me understand your approach.",
	},
	{
		MinScore: 65,
		Display:  "you've made a good attempt. The response would be stronger with more specific details, better vocal delivery, and confident body language.",
		Spoken:   "I appreciate your answer. Let me ask a follow-up to better understand your experience.",
	},
	{
		MinScore: 0,
		Display:  "your response was quite brief. In professional settings, it's important to provide comprehensive answers with specific examples, confident delivery, and professional body language.",
		Spoken:   "thank you for attempting the question. Let me ask a follow-up to help you provide more detail.",
	},
}

func tierFor(score int) feedbackTier {
	for _, t := range feedbackTiers {
		if score >= t.MinScore {
			return t
		}
	}
	return feedbackTiers[len(feedbackTiers)-1]
}

// localEvaluation is the single fallback builder: every offline evaluation,
// whatever its score band, flows through here.
func (e *evaluator) localEvaluation(in EvaluateInput) *models.Evaluation {
	contentScore := scoring.Content(in.Answer, in.Question)
	behavioralScore := scoring.Behavioral(in.Behavioral)
	voiceScore := scoring.Voice(in.Voice, in.HasSpoken)
	overall := scoring.Overall(contentScore, behavioralScore, voiceScore)

	prefix := userPrefix(in.UserName)
	confused := confusionPattern.MatchString(in.Answer)

	var display, spoken, followUp string
	if confused {
		// A confused candidate gets a clarification round regardless of score.
		display = prefix + "I notice you seem unsure about this question. Let me clarify what I'm looking for and give you another chance to answer."
		spoken = prefix + "I understand this might be challenging. Let me rephrase the question to make it clearer for you."
		followUp = clarificationFollowUp()
	} else {
		tier := tierFor(overall)
		display = prefix + tier.Display
		spoken = prefix + tier.Spoken
		if e.policy.ShouldFollowUp(overall, in.FollowUpCount) {
			followUp = followUpForRound(in.FollowUpCount)
		}
	}

	eval := &models.Evaluation{
		Score:               overall,
		ContentScore:        contentScore,
		BehavioralScore:     behavioralScore,
		VoiceScore:          voiceScore,
		Strengths:           strengthsFor(contentScore, behavioralScore, voiceScore),
		Improvements:        improvementsFor(contentScore, behavioralScore, voiceScore),
		Suggestions:         defaultSuggestions(),
		SkillAssessment:     scoring.Skills(contentScore, behavioralScore, voiceScore, in.Question.Type),
		DetailedFeedback:    display,
		InterviewerResponse: spoken,
		CorrectedAnswer:     correctedAnswerFor(in.Answer),
		ExpectedAnswer:      expectedAnswerText,
		FollowUpQuestion:    followUp,
		Behavioral:          &in.Behavioral,
		Voice:               &in.Voice,
	}
	normalizeEvaluation(eval)
	return eval
}

const expectedAnswerText = "An ideal response demonstrates expertise through specific examples, shows problem-solving methodology, highlights relevant outcomes with metrics, uses confident and clear communication, and maintains professional presence."

func defaultSuggestions() []string {
	return []string{
		"Include specific metrics when possible",
		"Use concrete examples from your experience",
		"Explain your thought process clearly",
		"Highlight measurable outcomes and achievements",
	}
}

func strengthsFor(content, behavioral, voice int) []string {
	var strengths []string
	if content >= 70 {
		strengths = append(strengths, "Strong content quality and relevance")
	}
	if behavioral >= 70 {
		strengths = append(strengths, "Good body language and professional presence")
	}
	if voice >= 70 {
		strengths = append(strengths, "Clear and confident vocal delivery")
	}
	if content >= 80 && behavioral >= 80 {
		strengths = append(strengths, "Excellent overall communication skills")
	}
	if len(strengths) == 0 {
		strengths = append(strengths, "Good attempt at answering the question")
	}
	return strengths
}

func improvementsFor(content, behavioral, voice int) []string {
	var improvements []string
	if content < 70 {
		improvements = append(improvements, "Need more specific examples and detailed explanations")
	}
	if behavioral < 70 {
		improvements = append(improvements, "Improve body language and professional presence")
	}
	if voice < 70 {
		improvements = append(improvements, "Work on vocal clarity and confidence")
	}
	if content < 60 {
		improvements = append(improvements, "Provide more structured and comprehensive answers")
	}
	return improvements
}

// correctedAnswerFor picks the most pressing rewrite advice. Later checks
// deliberately override earlier ones: structure beats examples beats
// vagueness, and missing metrics beats everything.
func correctedAnswerFor(answer string) string {
	corrected := "An improved answer would include specific examples, measurable results, clearer connections to the role requirements, confident vocal delivery, and professional body language."
	if vaguenessPattern.MatchString(answer) {
		corrected = "Try to be more definitive in your responses. Instead of 'I think maybe...' say 'Based on my experience...' and provide concrete examples."
	}
	if !examplesMarker.MatchString(answer) {
		corrected = "Include specific examples from your experience. For instance, instead of saying 'I handled projects,' say 'I managed a team of 5 on Project X which resulted in 20% efficiency improvement.'"
	}
	if !structureMarker.MatchString(answer) {
		corrected = "Structure your answer clearly. Start with your main point, provide supporting evidence or examples, then conclude with the outcome or learning."
	}
	if !metricsMarker.MatchString(answer) {
		corrected = "Include measurable results when possible. Instead of 'improved performance,' say 'increased efficiency by 25%' or 'reduced costs by $50,000 annually.'"
	}
	return corrected
}

func userPrefix(name string) string {
	if name == "" {
		return ""
	}
	return name + ", "
}

// ===== SKIPS =====

// SkipEvaluation is the fixed evaluation recorded when the candidate skips a
// question. Skips never trigger follow-ups.
func SkipEvaluation() *models.Evaluation {
	return &models.Evaluation{
		Score:        0,
		Strengths:    []string{"Willing to proceed"},
		Improvements: []string{"Consider providing answers to all questions for better assessment"},
		Suggestions:  []string{"Try to answer each question to demonstrate your knowledge and skills"},
		SkillAssessment: map[string]int{
			scoring.SkillCommunication:   10,
			scoring.SkillProblemSolving:  10,
			scoring.SkillTechnical:       10,
			scoring.SkillConfidence:      20,
			scoring.SkillProfessionalism: 30,
		},
		DetailedFeedback:    "You chose to skip this question. In a real interview, it's better to attempt an answer even if you're unsure.",
		InterviewerResponse: "I understand you'd like to move on. Let's proceed to the next question.",
		CorrectedAnswer:     "In the future, try to provide at least a basic answer showing your thought process.",
		ExpectedAnswer:      "A good response would demonstrate your approach to unfamiliar questions.",
	}
}

// SkipAnswerText is the literal recorded as the answer body of a skipped
// question.
const SkipAnswerText = "[Skipped]"

// ===== NORMALIZATION =====

// normalizeEvaluation enforces the Evaluation invariants in one place, at
// the boundary where evaluations are produced. Callers downstream never
// re-check ranges.
func normalizeEvaluation(e *models.Evaluation) {
	e.Score = clampScore(e.Score)
	e.ContentScore = clampScore(e.ContentScore)
	e.BehavioralScore = clampScore(e.BehavioralScore)
	e.VoiceScore = clampScore(e.VoiceScore)
	for k, v := range e.SkillAssessment {
		e.SkillAssessment[k] = clampScore(v)
	}
	if len(e.Strengths) == 0 {
		e.Strengths = []string{"Good attempt at answering the question"}
	}
	if e.DetailedFeedback == "" {
		e.DetailedFeedback = "Thank you for your response."
	}
	if e.InterviewerResponse == "" || e.InterviewerResponse == e.DetailedFeedback {
		// The spoken line must stay conversational and distinct from the
		// on-screen analysis.
		e.InterviewerResponse = "Thank you, let's continue."
	}
	e.FollowUpQuestion = strings.TrimSpace(e.FollowUpQuestion)
}

func normalizeQuestion(q *models.Question) {
	if q.ID == "" {
		q.ID = fmt.Sprintf("dynamic-%s", newID())
	}
	if q.Type == "" {
		q.Type = models.QuestionTechnical
	}
	if q.Difficulty == "" {
		q.Difficulty = models.DifficultyMedium
	}
	if q.Category == "" {
		q.Category = "Technical"
	}
	if q.TimeLimit <= 0 {
		q.TimeLimit = models.DefaultQuestionTimeLimit
	}
	if len(q.SkillFocus) == 0 {
		q.SkillFocus = []string{"Problem Solving"}
	}
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
