package analysis

import (
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/talkgenius/interview-engine/internal/models"
)

const (
	// PollInterval is the fixed cadence at which both snapshots are refreshed
	// while polling is active.
	PollInterval = 2 * time.Second

	// minSkinPixels is the minimum number of skin-classified samples required
	// before a frame is trusted; below it the fallback snapshot is returned.
	minSkinPixels = 20

	defaultPace = 150
)

// fillerVocabulary is matched word-by-word against transcripts, after
// stripping trailing punctuation.
var fillerVocabulary = map[string]struct{}{
	"um": {}, "uh": {}, "like": {}, "you know": {}, "actually": {},
	"basically": {}, "so": {}, "well": {}, "okay": {}, "right": {},
}

// SampleSource supplies the raw material for one polling tick. The capture
// transport owns buffering; Close must release the underlying media handles.
type SampleSource interface {
	NextFrame() (models.Frame, bool)
	NextAudio() (models.AudioChunk, bool)
	Close() error
}

// Analyzer derives behavioral and vocal metrics from raw frames and audio
// blocks. It has no conversation awareness: the orchestrator owns exactly one
// Analyzer per session and reads snapshots at the moment of submission.
//
// Every operation is total. Missing hardware, zero-sized frames and inactive
// streams produce defined fallback snapshots, never errors.
type Analyzer struct {
	mu     sync.Mutex
	logger *slog.Logger

	behavioral models.BehavioralSnapshot
	voice      models.VoiceSnapshot
	hasSpoken  bool

	source  SampleSource
	stopCh  chan struct{}
	polling bool
}

func NewAnalyzer(logger *slog.Logger) *Analyzer {
	return &Analyzer{
		logger: logger,
		voice:  models.VoiceSnapshot{Pace: defaultPace},
	}
}

// ===== FRAME ANALYSIS =====

// AnalyzeFrame converts one RGBA frame into a BehavioralSnapshot and stores
// it as the current snapshot. A frame with no detectable face yields the
// constant low fallback — the engine must never report a high score when it
// cannot see anyone.
func (a *Analyzer) AnalyzeFrame(f models.Frame) models.BehavioralSnapshot {
	snap := a.analyzeFrame(f)
	a.mu.Lock()
	a.behavioral = snap
	a.mu.Unlock()
	return snap
}

func (a *Analyzer) analyzeFrame(f models.Frame) models.BehavioralSnapshot {
	if f.Width <= 0 || f.Height <= 0 || len(f.Pixels) < f.Width*f.Height*4 {
		return FallbackBehavioral()
	}

	data := f.Pixels
	var centroidX, centroidY float64
	skinPixels := 0

	// Sample every 4th pixel; full resolution adds nothing at this fidelity.
	for i := 0; i+2 < len(data); i += 16 {
		r, g, b := data[i], data[i+1], data[i+2]
		if !isSkinTone(r, g, b) {
			continue
		}
		pixelIndex := i / 4
		centroidX += float64(pixelIndex % f.Width)
		centroidY += float64(pixelIndex / f.Width)
		skinPixels++
	}

	if skinPixels <= minSkinPixels {
		return FallbackBehavioral()
	}

	centroidX /= float64(skinPixels)
	centroidY /= float64(skinPixels)

	width := float64(f.Width)
	height := float64(f.Height)
	idealX := width / 2
	idealY := height / 3 // Face belongs in the upper third

	eyeContact := math.Max(0, 100-math.Abs(centroidX-idealX)/width*200)
	postureScore := math.Max(0, 100-math.Abs(centroidY-idealY)/height*150)

	faceSize := float64(skinPixels) / (width * height)
	posture := math.Min(100, faceSize*15000)

	headMovement := math.Min(100, math.Abs(centroidX-idealX)/width*200)
	smiling := analyzeMouthRegion(data, f.Width, f.Height, int(centroidX), int(centroidY))
	attention := (eyeContact + postureScore + (100 - headMovement) + smiling) / 4
	gestures := analyzeEdgeActivity(data, f.Width, f.Height)

	return models.BehavioralSnapshot{
		EyeContact:   clampScore(eyeContact),
		Posture:      clampScore(posture),
		HeadMovement: clampScore(headMovement),
		Smiling:      clampScore(smiling),
		Attention:    clampScore(attention),
		Gestures:     clampScore(gestures),
	}
}

func isSkinTone(r, g, b byte) bool {
	rf, gf, bf := int(r), int(g), int(b)
	inRange := rf > 95 && gf > 40 && bf > 20 &&
		rf > gf && rf > bf &&
		rf-gf > 15
	brightness := (rf + gf + bf) / 3
	return inRange && brightness > 60 && brightness < 220
}

// analyzeMouthRegion approximates smiling from lip-toned pixel density in the
// region below the face centroid.
func analyzeMouthRegion(data []byte, width, height, faceX, faceY int) float64 {
	regionSize := width / 6
	if regionSize > 60 {
		regionSize = 60
	}

	startY := clampIndex(faceY+25, height)
	endY := clampIndex(faceY+regionSize, height)
	startX := clampIndex(faceX-regionSize/2, width)
	endX := clampIndex(faceX+regionSize/2, width)

	smileIntensity := 0
	mouthPixels := 0
	for y := startY; y < endY; y += 2 {
		for x := startX; x < endX; x += 2 {
			i := (y*width + x) * 4
			if i < 0 || i+2 >= len(data) {
				continue
			}
			r, g, b := int(data[i]), int(data[i+1]), int(data[i+2])
			switch {
			case r > 130 && g < 100 && b < 100 && r > g+30:
				smileIntensity += 2
			case r > 100 && g < 90 && b < 90:
				smileIntensity++
			}
			mouthPixels++
		}
	}

	if mouthPixels == 0 {
		return 25
	}
	return math.Min(100, float64(smileIntensity)/float64(mouthPixels)*150)
}

// analyzeEdgeActivity approximates gesture activity from brightness-gradient
// edge density across the whole frame.
func analyzeEdgeActivity(data []byte, width, height int) float64 {
	edgePixels := 0
	totalPixels := 0

	for y := 3; y < height-3; y += 6 {
		for x := 3; x < width-3; x += 6 {
			i := (y*width + x) * 4
			right := (y*width + x + 3) * 4
			down := ((y+3)*width + x) * 4
			if i+2 >= len(data) || right+2 >= len(data) || down+2 >= len(data) {
				continue
			}
			b0 := brightness(data, i)
			if math.Abs(b0-brightness(data, right)) > 30 ||
				math.Abs(b0-brightness(data, down)) > 30 {
				edgePixels++
			}
			totalPixels++
		}
	}

	if totalPixels == 0 {
		return 40
	}
	return math.Min(100, float64(edgePixels)/float64(totalPixels)*400)
}

func brightness(data []byte, i int) float64 {
	return float64(int(data[i])+int(data[i+1])+int(data[i+2])) / 3
}

// ===== AUDIO ANALYSIS =====

// AnalyzeAudio converts one audio sample block into a VoiceSnapshot and
// stores it. An inactive or empty chunk yields the all-zero snapshot:
// silence truly means nothing, unlike an empty camera frame.
func (a *Analyzer) AnalyzeAudio(c models.AudioChunk) models.VoiceSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !c.Active || len(c.Frequency) == 0 || len(c.TimeDomain) == 0 {
		a.voice = fallbackVoice(a.voice)
		return a.voice
	}

	var sum int
	for _, v := range c.Frequency {
		sum += int(v)
	}
	rawVolume := float64(sum) / float64(len(c.Frequency))

	tone := zeroCrossingRate(c.TimeDomain)
	clarity := amplitudeClarity(c.TimeDomain)

	confidence := 0.0
	if a.hasSpoken {
		confidence = math.Min(100,
			(rawVolume/256*100)*0.3+clarity*0.4+(tone*100)*0.3)
	}

	a.voice = models.VoiceSnapshot{
		Volume:      clampScore(rawVolume / 256 * 100),
		Clarity:     clampScore(clarity),
		Pace:        a.voice.Pace,
		Tone:        clampScore(tone * 100),
		FillerWords: a.voice.FillerWords,
		Pauses:      a.voice.Pauses,
		Confidence:  clampScore(confidence),
	}
	return a.voice
}

func zeroCrossingRate(samples []byte) float64 {
	crossings := 0
	prev := int(samples[0]) - 128
	for _, s := range samples[1:] {
		cur := int(s) - 128
		if (prev < 0 && cur >= 0) || (prev >= 0 && cur < 0) {
			crossings++
		}
		prev = cur
	}
	return math.Min(1, float64(crossings)/float64(len(samples))*8)
}

func amplitudeClarity(samples []byte) float64 {
	significant := 0
	totalAmplitude := 0
	for _, s := range samples {
		amplitude := int(s) - 128
		if amplitude < 0 {
			amplitude = -amplitude
		}
		totalAmplitude += amplitude
		if amplitude > 20 {
			significant++
		}
	}
	avgAmplitude := float64(totalAmplitude) / float64(len(samples))
	amplitudeScore := math.Min(100, avgAmplitude/64*100)
	significantScore := float64(significant) / float64(len(samples)) * 100
	return math.Min(100, amplitudeScore*0.6+significantScore*0.4)
}

// ===== TRANSCRIPT METRICS =====

// UpdateFromTranscript refreshes pace, filler-word count and the
// punctuation-based pause proxy from an incremental transcript.
func (a *Analyzer) UpdateFromTranscript(text string, durationSeconds float64) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.hasSpoken = true

	if durationSeconds > 0 && len(words) > 5 {
		pace := float64(len(words)) / durationSeconds * 60
		a.voice.Pace = int(math.Max(50, math.Min(300, pace)))
	}

	fillers := 0
	pauses := 0
	for _, w := range words {
		trimmed := strings.ToLower(strings.Trim(w, ".,!?;:"))
		if _, ok := fillerVocabulary[trimmed]; ok {
			fillers++
		}
		if strings.ContainsAny(w, ".?!,;:") {
			pauses++
		}
	}
	a.voice.FillerWords = fillers
	a.voice.Pauses = pauses
}

// ResetTurn clears the has-spoken flag and zeroes the per-turn transcript
// metrics so stale signal never leaks into the next evaluation.
func (a *Analyzer) ResetTurn() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hasSpoken = false
	a.voice.Confidence = 0
	a.voice.Pace = 0
	a.voice.FillerWords = 0
	a.voice.Pauses = 0
}

// HasSpoken reports whether a transcript with at least one word has been
// observed since the last ResetTurn.
func (a *Analyzer) HasSpoken() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hasSpoken
}

// Snapshot returns read-only copies of the freshest behavioral and voice
// snapshots.
func (a *Analyzer) Snapshot() (models.BehavioralSnapshot, models.VoiceSnapshot) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.behavioral, a.voice
}

// ===== POLLING =====

// StartPolling refreshes both snapshots from src on a fixed 2-second cadence
// until StopPolling is called. A second call replaces the previous source.
func (a *Analyzer) StartPolling(src SampleSource) {
	a.mu.Lock()
	if a.polling {
		a.mu.Unlock()
		a.StopPolling()
		a.mu.Lock()
	}
	a.source = src
	a.stopCh = make(chan struct{})
	a.polling = true
	stopCh := a.stopCh
	a.mu.Unlock()

	go func() {
		ticker := time.NewTicker(PollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				a.pollOnce(src)
			}
		}
	}()
}

func (a *Analyzer) pollOnce(src SampleSource) {
	if frame, ok := src.NextFrame(); ok {
		a.AnalyzeFrame(frame)
	}
	if chunk, ok := src.NextAudio(); ok {
		a.AnalyzeAudio(chunk)
	}
}

// StopPolling halts the tick loop and releases the sample source. It is
// idempotent.
func (a *Analyzer) StopPolling() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.polling {
		return
	}
	close(a.stopCh)
	a.polling = false
	if a.source != nil {
		if err := a.source.Close(); err != nil {
			a.logger.Warn("failed to release sample source", "error", err)
		}
		a.source = nil
	}
}

// ===== FALLBACKS =====

// FallbackBehavioral is the constant snapshot used whenever a frame cannot be
// analyzed. The values are deliberately low but non-zero.
func FallbackBehavioral() models.BehavioralSnapshot {
	return models.BehavioralSnapshot{
		EyeContact:   10,
		Posture:      15,
		HeadMovement: 80,
		Smiling:      20,
		Attention:    15,
		Gestures:     25,
	}
}

// fallbackVoice zeroes the signal-derived fields but keeps the per-turn
// transcript metrics, which are owned by UpdateFromTranscript.
func fallbackVoice(prev models.VoiceSnapshot) models.VoiceSnapshot {
	return models.VoiceSnapshot{
		Pace:        prev.Pace,
		FillerWords: prev.FillerWords,
		Pauses:      prev.Pauses,
	}
}

func clampScore(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(math.Round(v))
}

func clampIndex(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max-1 {
		return max - 1
	}
	return v
}
