package engine

import "math/rand"

// FollowUpPolicy decides whether another probing round is warranted after a
// scored answer. Round numbering starts at 0 for the first follow-up.
type FollowUpPolicy interface {
	ShouldFollowUp(score, followUpCount int) bool
}

// thresholdPolicy probes harder the worse the answer: one follow-up below
// 85, a second below 75, a third below 65, never a fourth.
type thresholdPolicy struct{}

func NewFollowUpPolicy() FollowUpPolicy {
	return thresholdPolicy{}
}

func (thresholdPolicy) ShouldFollowUp(score, followUpCount int) bool {
	switch followUpCount {
	case 0:
		return score < 85
	case 1:
		return score < 75
	case 2:
		return score < 65
	default:
		return false
	}
}

// ===== FOLLOW-UP PHRASING =====

var clarificationFollowUps = []string{
	"Let me simplify that question for you. Could you tell me about a time when you faced a similar challenge and how you approached it?",
	"I understand this might be complex. Let me rephrase: What would be your first steps if you encountered this situation in your work?",
	"Let me make this clearer. Can you share an example from your past experience that relates to this topic?",
	"I'll break this down differently. What skills or knowledge would you apply to address this kind of problem?",
}

var firstFollowUps = []string{
	"Could you provide a specific example to illustrate your experience with this?",
	"Can you elaborate more on your thought process behind that approach?",
	"What were the measurable outcomes or results from that experience?",
	"How did you handle any obstacles or challenges you encountered?",
	"Could you walk me through a real-world scenario where you applied this knowledge?",
}

var secondFollowUps = []string{
	"I'd like to understand this better. Could you provide more details about your specific role and contributions?",
	"Can you give me a concrete example with specific numbers or metrics?",
	"What was the impact of your actions on the team or project?",
	"How does this experience relate to the requirements of this position?",
	"Could you break down your approach step by step for me?",
}

var thirdFollowUps = []string{
	"Let me rephrase that - could you tell me more about your direct experience with this?",
	"I want to make sure I understand correctly. Could you provide a specific instance?",
	"What specific skills or knowledge did you gain from this experience?",
	"How would you apply what you learned to this role specifically?",
	"Could you share a bit more about the context and your specific responsibilities?",
}

func clarificationFollowUp() string {
	return pick(clarificationFollowUps)
}

// followUpForRound escalates phrasing by round: broad elaboration first,
// then a push for specifics, then a gentle rephrase for a struggling
// candidate.
func followUpForRound(round int) string {
	switch round {
	case 0:
		return pick(firstFollowUps)
	case 1:
		return pick(secondFollowUps)
	default:
		return pick(thirdFollowUps)
	}
}

func pick(options []string) string {
	return options[rand.Intn(len(options))]
}
