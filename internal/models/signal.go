package models

// BehavioralSnapshot holds the gesture/gaze/posture proxies derived from a
// single camera frame. Every field is in [0,100]; Attention is the unweighted
// mean of eye contact, the posture score, inverse head movement and smiling.
type BehavioralSnapshot struct {
	EyeContact   int `json:"eye_contact"`
	Posture      int `json:"posture"`
	HeadMovement int `json:"head_movement"`
	Smiling      int `json:"smiling"`
	Attention    int `json:"attention"`
	Gestures     int `json:"gestures"`
}

// VoiceSnapshot holds the vocal metrics derived from an audio sample block
// plus transcript heuristics. Confidence stays 0 until the speaker has said
// at least one word in the current turn.
type VoiceSnapshot struct {
	Volume      int `json:"volume"`
	Clarity     int `json:"clarity"`
	Pace        int `json:"pace"` // Words per minute
	Tone        int `json:"tone"`
	FillerWords int `json:"filler_words"`
	Pauses      int `json:"pauses"`
	Confidence  int `json:"confidence"`
}

// Frame is a raw downsampled RGBA frame posted by the capture client.
// Pixels is tightly packed RGBA, len == Width*Height*4.
type Frame struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Pixels []byte `json:"pixels"`
}

// AudioChunk is one block of 8-bit audio analysis data from the client's
// analyser node: frequency-bin magnitudes and time-domain samples centered
// on 128.
type AudioChunk struct {
	Active     bool   `json:"active"`
	Frequency  []byte `json:"frequency"`
	TimeDomain []byte `json:"time_domain"`
}
