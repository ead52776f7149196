// Package scoring holds the pure score arithmetic of the interview engine.
// Nothing in here touches I/O, clocks or session state; every function is a
// deterministic mapping from inputs to a score, which keeps the whole rubric
// testable as a table.
package scoring

import (
	"math"
	"regexp"
	"strings"

	"github.com/talkgenius/interview-engine/internal/models"
)

// Skill dimension names as they appear in every skill assessment map.
const (
	SkillCommunication   = "Communication"
	SkillProblemSolving  = "Problem Solving"
	SkillTechnical       = "Technical Knowledge"
	SkillConfidence      = "Confidence"
	SkillProfessionalism = "Professionalism"
)

var (
	examplesPattern  = regexp.MustCompile(`(?i)example|for instance|such as|specifically|e\.g`)
	outcomesPattern  = regexp.MustCompile(`(?i)result|outcome|achieved|accomplished|saved|improved|increased|reduced`)
	metricsPattern   = regexp.MustCompile(`(?i)\d+%|\d+ hours|\d+ dollars|\d+ users|\d+ projects`)
	structurePattern = regexp.MustCompile(`(?i)first|then|next|finally|because|therefore|however`)
	sentencePattern  = regexp.MustCompile(`[.!?]+`)
)

// Content scores an answer's text against the question it responds to.
// The rubric rewards length, sentence structure, concrete markers
// (examples, outcomes, metrics, signposting) and keyword overlap with the
// question. The result is always within [10,95]: text alone can neither
// fully fail nor fully ace an answer.
func Content(answer string, question models.Question) int {
	trimmed := strings.TrimSpace(answer)
	if len(trimmed) < 10 {
		return 10
	}

	words := strings.Fields(trimmed)
	score := 0

	switch wc := len(words); {
	case wc >= 100:
		score += 25
	case wc >= 70:
		score += 22
	case wc >= 50:
		score += 18
	case wc >= 30:
		score += 14
	case wc >= 15:
		score += 10
	case wc >= 5:
		score += 5
	}

	switch sc := len(sentencePattern.FindAllString(trimmed, -1)); {
	case sc >= 6:
		score += 25
	case sc >= 4:
		score += 20
	case sc >= 3:
		score += 15
	case sc >= 2:
		score += 10
	case sc >= 1:
		score += 5
	}

	if examplesPattern.MatchString(trimmed) {
		score += 12
	}
	if outcomesPattern.MatchString(trimmed) {
		score += 12
	}
	if metricsPattern.MatchString(trimmed) {
		score += 13
	}
	if structurePattern.MatchString(trimmed) {
		score += 13
	}

	score += relevanceBonus(trimmed, question.Question)

	return clamp(score, 10, 95)
}

// relevanceBonus grants up to 20 points for keyword overlap between answer
// and question. Only words longer than 3 characters count as keywords.
func relevanceBonus(answer, question string) int {
	answerLower := strings.ToLower(answer)
	keywords := 0
	matched := 0
	for _, w := range strings.Fields(strings.ToLower(question)) {
		if len(w) <= 3 {
			continue
		}
		keywords++
		if strings.Contains(answerLower, w) {
			matched++
		}
	}
	if keywords == 0 {
		return 0
	}
	return int(math.Round(float64(matched) / float64(keywords) * 20))
}

// Voice scores the vocal delivery of a spoken answer. A candidate who never
// spoke scores exactly 0, no matter how healthy the microphone signal looked.
func Voice(v models.VoiceSnapshot, hasSpoken bool) int {
	if !hasSpoken {
		return 0
	}

	raw := float64(v.Volume)*0.25 +
		float64(v.Clarity)*0.30 +
		float64(paceBand(v.Pace))*0.20 +
		float64(v.Tone)*0.15

	fillerPenalty := math.Min(float64(v.FillerWords)*5, 25)
	pausePenalty := math.Min(float64(v.Pauses)*2, 15)

	return int(math.Round(math.Max(0, raw-fillerPenalty-pausePenalty)))
}

// paceBand maps words-per-minute onto a band score. 140-160 wpm is the
// conversational sweet spot.
func paceBand(pace int) int {
	switch {
	case pace >= 140 && pace <= 160:
		return 100
	case pace >= 130 && pace <= 170:
		return 80
	case pace >= 120 && pace <= 180:
		return 60
	default:
		return 40
	}
}

// Behavioral collapses a behavioral snapshot into a single presence score.
func Behavioral(b models.BehavioralSnapshot) int {
	score := float64(b.EyeContact)*0.25 +
		float64(b.Posture)*0.20 +
		float64(b.Gestures)*0.15 +
		float64(b.Smiling)*0.15 +
		float64(b.Attention)*0.25
	return clamp(int(math.Round(score)), 0, 100)
}

// Overall combines the three component scores with the fixed 50/30/20 split.
func Overall(content, behavioral, voice int) int {
	return int(math.Round(float64(content)*0.5 + float64(behavioral)*0.3 + float64(voice)*0.2))
}

// Skills derives the five-dimension skill assessment from the component
// scores. Problem-solving and technical questions weight the content score
// more heavily into their matching dimension. Every dimension is floored at
// 10 so a single bad answer never zeroes a skill.
func Skills(content, behavioral, voice int, questionType models.QuestionType) map[string]int {
	problemWeight := 0.8
	if questionType == models.QuestionProblemSolving {
		problemWeight = 0.95
	}
	technicalWeight := 0.7
	if questionType == models.QuestionTechnical {
		technicalWeight = 0.95
	}

	return map[string]int{
		SkillCommunication:   floor10(math.Round((float64(content)*0.4 + float64(voice)*0.6) * 0.9)),
		SkillProblemSolving:  floor10(math.Round(float64(content) * problemWeight)),
		SkillTechnical:       floor10(math.Round(float64(content) * technicalWeight)),
		SkillConfidence:      floor10(math.Round((float64(behavioral)*0.7 + float64(voice)*0.3) * 0.9)),
		SkillProfessionalism: floor10(math.Round(float64(behavioral) * 0.9)),
	}
}

func floor10(v float64) int {
	if v < 10 {
		return 10
	}
	return int(v)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
