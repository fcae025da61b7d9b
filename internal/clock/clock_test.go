package clock

import (
	"testing"
	"time"
)

func TestExternalClockAdvancesWithWallTime(t *testing.T) {
	c := NewExternalClock()
	c.Set(10)
	time.Sleep(20 * time.Millisecond)
	v := c.Value()
	if v <= 10 {
		t.Fatalf("expected clock to advance past 10, got %f", v)
	}
}

func TestExternalClockPauseFreezes(t *testing.T) {
	c := NewExternalClock()
	c.Set(5)
	c.Pause()
	v1 := c.Value()
	time.Sleep(20 * time.Millisecond)
	v2 := c.Value()
	if v1 != v2 {
		t.Fatalf("expected frozen clock, got %f then %f", v1, v2)
	}
}

func TestExternalClockResumeContinuesFromPausedValue(t *testing.T) {
	c := NewExternalClock()
	c.Set(5)
	c.Pause()
	paused := c.Value()
	c.Resume()
	v := c.Value()
	if v < paused {
		t.Fatalf("resumed clock should not go backward: paused=%f resumed=%f", paused, v)
	}
}

type constClock float64

func (c constClock) Value() float64 { return float64(c) }

func TestMasterClockPrefersAudio(t *testing.T) {
	ext := NewExternalClock()
	ext.Set(100)
	m := &MasterClock{Audio: constClock(42), External: ext}
	if got := m.Value(); got != 42 {
		t.Fatalf("expected audio clock to win, got %f", got)
	}
}

func TestMasterClockFallsBackToExternal(t *testing.T) {
	ext := NewExternalClock()
	ext.Set(7)
	m := &MasterClock{External: ext}
	if got := m.Value(); got < 7 {
		t.Fatalf("expected external clock value, got %f", got)
	}
}

func TestSynchronizeVideoWithinThresholdUnchanged(t *testing.T) {
	delay := 0.05
	got := SynchronizeVideo(delay, 0.0)
	if got != delay {
		t.Fatalf("zero diff should leave delay unchanged, got %f want %f", got, delay)
	}
}

func TestSynchronizeVideoLaggingSpeedsUp(t *testing.T) {
	delay := 0.05
	got := SynchronizeVideo(delay, -0.2) // video behind master by more than the threshold
	if got != 0 {
		t.Fatalf("large negative diff should collapse delay to 0, got %f", got)
	}
}

func TestSynchronizeVideoAheadSlowsDown(t *testing.T) {
	delay := 0.05
	got := SynchronizeVideo(delay, 0.2)
	if got != 2*delay {
		t.Fatalf("large positive diff should double delay, got %f want %f", got, 2*delay)
	}
}

func TestSynchronizeVideoBeyondNoSyncThresholdPassesThrough(t *testing.T) {
	delay := 0.05
	got := SynchronizeVideo(delay, AVNoSyncThreshold+1)
	if got != delay {
		t.Fatalf("diff beyond no-sync threshold should pass delay through unmodified, got %f want %f", got, delay)
	}
}

func TestAudioDriftCorrectorIgnoresUntilWarm(t *testing.T) {
	a := NewAudioDriftCorrector(0.01)
	for i := 0; i < AudioDiffAvgNB-1; i++ {
		got := a.Correct(0.5, 1000, 48000)
		if got != 1000 {
			t.Fatalf("expected unmodified size before warm-up, iteration %d got %d", i, got)
		}
	}
}

func TestAudioDriftCorrectorBoundsCorrection(t *testing.T) {
	a := NewAudioDriftCorrector(0.01)
	var got int
	for i := 0; i < AudioDiffAvgNB+5; i++ {
		got = a.Correct(1.0, 1000, 48000)
	}
	maxSize := 1000 * (100 + SampleCorrectionPercentMax) / 100
	minSize := 1000 * (100 - SampleCorrectionPercentMax) / 100
	if got > maxSize || got < minSize {
		t.Fatalf("corrected size %d out of bounds [%d,%d]", got, minSize, maxSize)
	}
}

func TestAudioDriftCorrectorSmallDiffUnmodified(t *testing.T) {
	a := NewAudioDriftCorrector(0.05)
	var got int
	for i := 0; i < AudioDiffAvgNB+5; i++ {
		got = a.Correct(0.0001, 1000, 48000)
	}
	if got != 1000 {
		t.Fatalf("negligible drift should leave size unmodified, got %d", got)
	}
}
