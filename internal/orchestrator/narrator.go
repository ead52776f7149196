package orchestrator

import (
	"context"
	"strings"
	"time"
)

// Narrator paces the interviewer's spoken lines. The engine never produces
// audio itself; the client renders speech, and the Narrator's job is to make
// the server-side state machine wait roughly as long as the line takes to
// say, so transitions stay in step with what the candidate hears.
//
// Narrate blocks until the line has "been spoken" or ctx is cancelled.
type Narrator interface {
	Narrate(ctx context.Context, text string) error
}

const (
	narrationWordsPerSecond = 3
	minNarration            = 3 * time.Second
)

// paceNarrator estimates duration from word count at conversational speed.
type paceNarrator struct{}

func NewNarrator() Narrator {
	return paceNarrator{}
}

func (paceNarrator) Narrate(ctx context.Context, text string) error {
	words := len(strings.Fields(text))
	d := time.Duration(words) * time.Second / narrationWordsPerSecond
	if d < minNarration {
		d = minNarration
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
