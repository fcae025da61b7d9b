// Package clock implements the playback engine's master-clock selection
// and audio/video synchronization algorithm, grounded on
// original_source/utils/sync.c. Where spec.md states a constant that
// differs from the original C source (AV_NOSYNC_THRESHOLD), the spec's
// stated value is authoritative.
package clock

import (
	"math"
	"sync"
	"time"
)

// Thresholds and tuning constants from spec §4.3/§9, all in seconds unless
// noted.
const (
	AVSyncThreshold            = 0.01
	AVNoSyncThreshold          = 10.0 // spec §9: stated as 10s, not the original's 1.0
	SampleCorrectionPercentMax = 10
	AudioDiffAvgNB             = 20
)

// Source identifies which stream drives the master clock.
type Source int

const (
	SourceAudio Source = iota
	SourceVideo
	SourceExternal
)

// ExternalClock is a free-running wall clock used as the sync master when
// no audio stream is present (spec §4.3: "an external clock must exist so
// video-only playback can still synchronize").
type ExternalClock struct {
	mu      sync.Mutex
	pts     float64
	lastSet time.Time
	paused  bool
}

// NewExternalClock builds a clock initialized to zero and running.
func NewExternalClock() *ExternalClock {
	return &ExternalClock{lastSet: time.Now()}
}

// Set pins the clock to pts at the current wall-clock instant.
func (c *ExternalClock) Set(pts float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pts = pts
	c.lastSet = time.Now()
}

// Pause freezes the clock at its current value.
func (c *ExternalClock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.paused {
		c.pts = c.valueLocked()
		c.paused = true
	}
}

// Resume unfreezes the clock, resetting its wall-clock reference to now.
func (c *ExternalClock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused {
		c.lastSet = time.Now()
		c.paused = false
	}
}

// Value returns the clock's current pts, advanced by elapsed wall-clock
// time since the last Set (or frozen at Pause's value).
func (c *ExternalClock) Value() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.valueLocked()
}

func (c *ExternalClock) valueLocked() float64 {
	if c.paused {
		return c.pts
	}
	return c.pts + time.Since(c.lastSet).Seconds()
}

// ClockSource is implemented by both the audio pipeline (whose clock is
// derived from samples written to the output device) and ExternalClock,
// so the master-clock selector can treat them uniformly (spec §4.3's
// AudioState-pointer coupling, resolved per §9 into an explicit
// interface rather than a raw pointer into AudioState).
type ClockSource interface {
	Value() float64
}

// MasterClock selects which of the available sources drives
// synchronization, preferring audio over external per spec §4.3 ("audio
// master is preferred whenever an audio stream exists; otherwise fall
// back to the external clock").
type MasterClock struct {
	Audio    ClockSource
	External *ExternalClock
}

// Value returns the current master-clock time.
func (m *MasterClock) Value() float64 {
	if m.Audio != nil {
		return m.Audio.Value()
	}
	return m.External.Value()
}

// SynchronizeVideo adjusts a decoded video frame's delay against the
// master clock, applying the sync-threshold clamp from spec §4.3 step 4
// (threshold = max(delay, AVSyncThreshold)): small drifts are corrected
// gradually (tightened/loosened delay), while drifts beyond
// AVNoSyncThreshold are treated as a desync and passed through unmodified
// so the caller can decide to reset framing instead of chasing an
// unrecoverable gap.
func SynchronizeVideo(delay, diff float64) float64 {
	if diff <= -AVNoSyncThreshold || diff >= AVNoSyncThreshold {
		return delay
	}

	syncThreshold := delay
	if syncThreshold < AVSyncThreshold {
		syncThreshold = AVSyncThreshold
	}

	switch {
	case diff <= -syncThreshold:
		delay = 0
	case diff >= syncThreshold:
		delay = 2 * delay
	}
	return delay
}

// AudioDriftCorrector smooths the running average of audio/video pts
// drift and computes a corrected sample count to write, implementing the
// original's compute_audio_diff + its max_size bugfix (spec §9: max_size
// must be derived from samples_size, since the original C left it
// uninitialized).
type AudioDriftCorrector struct {
	avgCoef   float64
	diffCum   float64
	diffCount int
	threshold float64
}

// NewAudioDriftCorrector builds a corrector tuned for the given audio
// output sample rate-derived threshold (typically ~2 sample-periods, per
// the original's is_diff_too_big check).
func NewAudioDriftCorrector(threshold float64) *AudioDriftCorrector {
	return &AudioDriftCorrector{
		avgCoef:   math.Exp(math.Log(0.01) / AudioDiffAvgNB),
		threshold: threshold,
	}
}

// Correct computes the number of bytes the audio pipeline should actually
// write for a buffer of samplesSize bytes, given the instantaneous
// audio/video pts diff. It returns samplesSize unmodified until the
// running average has accumulated AudioDiffAvgNB samples (avoids
// correcting on a single noisy reading, per the original). A diff at or
// beyond AVNoSyncThreshold resets the running average and returns
// samplesSize unmodified.
func (a *AudioDriftCorrector) Correct(diff float64, samplesSize, bytesPerSecond int) int {
	if bytesPerSecond <= 0 {
		return samplesSize
	}
	if abs(diff) >= AVNoSyncThreshold {
		a.diffCum = 0
		a.diffCount = 0
		return samplesSize
	}

	a.diffCum = diff + a.avgCoef*a.diffCum
	a.diffCount++

	if a.diffCount < AudioDiffAvgNB {
		return samplesSize
	}

	avgDiff := a.diffCum * (1 - a.avgCoef)
	if abs(avgDiff) < a.threshold {
		return samplesSize
	}

	// max_size bugfix (spec §9): bound correction to
	// SampleCorrectionPercentMax percent of the buffer actually being
	// written, not an uninitialized stack value.
	maxSize := samplesSize * (100 + SampleCorrectionPercentMax) / 100
	minSize := samplesSize * (100 - SampleCorrectionPercentMax) / 100

	wantedSize := samplesSize + int(avgDiff*float64(bytesPerSecond))
	switch {
	case wantedSize < minSize:
		wantedSize = minSize
	case wantedSize > maxSize:
		wantedSize = maxSize
	}
	return wantedSize
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
