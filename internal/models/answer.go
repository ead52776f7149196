package models

import "time"

// Answer is one response event. Exactly one Answer is appended per submitted
// response, including skips and follow-up responses; it is never mutated
// afterwards.
type Answer struct {
	QuestionID string      `json:"question_id"`
	Answer     string      `json:"answer"`
	Timestamp  time.Time   `json:"timestamp"`
	Score      int         `json:"score"`
	AudioRef   string      `json:"audio_ref,omitempty"` // Client-side clip reference, opaque to the engine
	Evaluation *Evaluation `json:"evaluation,omitempty"`
}

// Evaluation is the composite judgment of one Answer.
//
// Invariant: OverallScore == round(0.5*ContentScore + 0.3*BehavioralScore +
// 0.2*VoiceScore), with every component clamped to [0,100].
type Evaluation struct {
	Score           int            `json:"score"`
	ContentScore    int            `json:"content_score"`
	BehavioralScore int            `json:"behavioral_score"`
	VoiceScore      int            `json:"voice_score"`
	Strengths       []string       `json:"strengths"`
	Improvements    []string       `json:"improvements"`
	Suggestions     []string       `json:"suggestions"`
	SkillAssessment map[string]int `json:"skill_assessment"`

	// DetailedFeedback is analytical text meant for on-screen display;
	// InterviewerResponse is the short conversational line meant to be spoken
	// aloud. The two must never be the same string.
	DetailedFeedback    string `json:"detailed_feedback"`
	InterviewerResponse string `json:"interviewer_response"`

	CorrectedAnswer  string `json:"corrected_answer"`
	ExpectedAnswer   string `json:"expected_answer"`
	FollowUpQuestion string `json:"follow_up_question,omitempty"`

	Behavioral *BehavioralSnapshot `json:"behavioral_analysis,omitempty"`
	Voice      *VoiceSnapshot      `json:"voice_analysis,omitempty"`
}
