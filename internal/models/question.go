package models

type QuestionType string

const (
	QuestionIntroduction   QuestionType = "introduction"
	QuestionTechnical      QuestionType = "technical"
	QuestionBehavioral     QuestionType = "behavioral"
	QuestionSituational    QuestionType = "situational"
	QuestionProblemSolving QuestionType = "problem-solving"
	QuestionDomainSpecific QuestionType = "domain-specific"
	QuestionSkillAssess    QuestionType = "skill-assessment"
	QuestionFollowUp       QuestionType = "follow-up"
	QuestionProbing        QuestionType = "probing"
)

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
)

// Question is a single unit of interrogation. Questions are immutable once
// created; follow-ups reference their parent through ParentQuestionID.
type Question struct {
	ID               string          `json:"id"`
	Question         string          `json:"question" validate:"required"`
	Type             QuestionType    `json:"type" validate:"required,question_type"`
	Difficulty       DifficultyLevel `json:"difficulty" validate:"required,difficulty_level"`
	Category         string          `json:"category"`
	TimeLimit        int             `json:"time_limit"` // Seconds, 0 means default
	SkillFocus       []string        `json:"skill_focus,omitempty"`
	IsFollowUp       bool            `json:"is_follow_up"`
	ParentQuestionID string          `json:"parent_question_id,omitempty"`
}

// EffectiveTimeLimit returns the per-question countdown in seconds.
func (q *Question) EffectiveTimeLimit() int {
	if q.TimeLimit > 0 {
		return q.TimeLimit
	}
	return DefaultQuestionTimeLimit
}

const DefaultQuestionTimeLimit = 180
