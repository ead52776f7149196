package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/talkgenius/interview-engine/internal/models"
)

var sampleQuestion = models.Question{
	ID:         "q-1",
	Question:   "Describe a project where you improved system performance.",
	Type:       models.QuestionTechnical,
	Difficulty: models.DifficultyMedium,
}

func TestContent_ShortAnswersFloorAtTen(t *testing.T) {
	tests := []struct {
		name   string
		answer string
	}{
		{"empty", ""},
		{"whitespace only", "    \n\t  "},
		{"under ten characters", "yes ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, 10, Content(tt.answer, sampleQuestion))
		})
	}
}

func TestContent_RewardsSubstance(t *testing.T) {
	weak := "I worked on a project once and it went fine overall."
	strong := "For example, I led a project where we improved system performance significantly. " +
		"First, I profiled the hot paths. Then we rewrote the cache layer, which reduced " +
		"latency by 40% and saved 200 hours of compute per month. Finally, the result was " +
		"a measurable improvement for over 5000 users. Therefore the outcome was adopted " +
		"across three other teams, because the approach generalized well. Specifically, the " +
		"performance gains were achieved without increasing cost. However, the biggest win " +
		"was the monitoring we added, which increased our confidence in every later release. " +
		"Next we documented everything so other engineers could repeat the process themselves."

	weakScore := Content(weak, sampleQuestion)
	strongScore := Content(strong, sampleQuestion)

	assert.Greater(t, strongScore, weakScore)
	assert.LessOrEqual(t, strongScore, 95, "content alone can never exceed 95")
	assert.GreaterOrEqual(t, weakScore, 10)
}

func TestContent_NeverLeavesRange(t *testing.T) {
	everything := strings.Repeat("example result 40% first therefore improved. ", 40)
	assert.Equal(t, 95, Content(everything, sampleQuestion))
}

func TestContent_RelevanceCountsQuestionKeywords(t *testing.T) {
	offTopic := "I enjoy cooking pasta at home every weekend with my family and friends nearby."
	onTopic := "I improved performance on a system project I can describe in detail for you here."

	assert.Greater(t, Content(onTopic, sampleQuestion), Content(offTopic, sampleQuestion))
}

func TestVoice_ZeroWithoutSpeech(t *testing.T) {
	loud := models.VoiceSnapshot{Volume: 90, Clarity: 90, Pace: 150, Tone: 90}
	assert.Equal(t, 0, Voice(loud, false))
}

func TestVoice_Weighting(t *testing.T) {
	v := models.VoiceSnapshot{Volume: 80, Clarity: 80, Pace: 150, Tone: 80}
	// 80*.25 + 80*.30 + 100*.20 + 80*.15 = 76
	assert.Equal(t, 76, Voice(v, true))
}

func TestVoice_PaceBands(t *testing.T) {
	tests := []struct {
		pace int
		want int
	}{
		{150, 100},
		{140, 100},
		{160, 100},
		{135, 80},
		{168, 80},
		{125, 60},
		{178, 60},
		{90, 40},
		{240, 40},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, paceBand(tt.pace), "pace %d", tt.pace)
	}
}

func TestVoice_PenaltiesAreCapped(t *testing.T) {
	v := models.VoiceSnapshot{Volume: 100, Clarity: 100, Pace: 150, Tone: 100}
	many := v
	many.FillerWords = 50 // Penalty caps at 25
	many.Pauses = 50      // Penalty caps at 15

	clean := Voice(v, true)
	penalized := Voice(many, true)
	assert.Equal(t, clean-40, penalized)
}

func TestVoice_NeverNegative(t *testing.T) {
	v := models.VoiceSnapshot{Volume: 5, Clarity: 5, Pace: 90, Tone: 5, FillerWords: 20, Pauses: 20}
	assert.Equal(t, 0, Voice(v, true))
}

func TestBehavioral_Weighting(t *testing.T) {
	b := models.BehavioralSnapshot{
		EyeContact: 80, Posture: 80, Gestures: 80, Smiling: 80, Attention: 80,
	}
	assert.Equal(t, 80, Behavioral(b))

	uneven := models.BehavioralSnapshot{EyeContact: 100, Attention: 100}
	// 100*.25 + 100*.25 = 50
	assert.Equal(t, 50, Behavioral(uneven))
}

func TestOverall_FiftyThirtyTwenty(t *testing.T) {
	tests := []struct {
		content, behavioral, voice int
		want                       int
	}{
		{100, 100, 100, 100},
		{0, 0, 0, 0},
		{80, 60, 40, 66},
		{50, 50, 50, 50},
		{95, 15, 0, 52}, // Strong text, absent presence
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Overall(tt.content, tt.behavioral, tt.voice))
	}
}

func TestSkills_QuestionTypeWeighting(t *testing.T) {
	technical := Skills(80, 70, 60, models.QuestionTechnical)
	behavioral := Skills(80, 70, 60, models.QuestionBehavioral)

	assert.Greater(t, technical[SkillTechnical], behavioral[SkillTechnical])
	assert.Equal(t, technical[SkillCommunication], behavioral[SkillCommunication])

	problem := Skills(80, 70, 60, models.QuestionProblemSolving)
	assert.Greater(t, problem[SkillProblemSolving], technical[SkillProblemSolving])
}

func TestSkills_FlooredAtTen(t *testing.T) {
	skills := Skills(0, 0, 0, models.QuestionBehavioral)
	for name, v := range skills {
		assert.Equal(t, 10, v, name)
	}
}
