package player

import (
	"testing"
	"time"

	"github.com/kestrelav/avplay/internal/avcodec"
	"github.com/kestrelav/avplay/internal/queue"
)

func newTestVideoState(t *testing.T) *VideoState {
	t.Helper()
	now := time.Now()
	return &VideoState{
		queue:          queue.NewPictureQueue(),
		frameTimer:     float64(now.UnixNano()) / 1e9,
		frameLastDelay: 0.040,
	}
}

func TestRefreshTickReturnsShortDelayWhenQueueEmpty(t *testing.T) {
	ps := NewPlayerState(nil)
	ps.Video = newTestVideoState(t)

	delay, pic := RefreshTick(ps)
	if pic != nil {
		t.Fatal("expected no picture when queue is empty")
	}
	if delay != time.Millisecond {
		t.Fatalf("expected 1ms poll delay, got %v", delay)
	}
}

func TestRefreshTickTakesQueuedPictureAndAdvancesClock(t *testing.T) {
	ps := NewPlayerState(nil)
	v := newTestVideoState(t)
	ps.Video = v
	ps.Master = nil // fall back to External clock
	ps.External.Set(0)

	pic := &avcodec.Picture{Width: 4, Height: 4, PTS: 1_000_000} // 1 second
	if !v.queue.Put(pic) {
		t.Fatal("expected Put to succeed into an empty slot")
	}

	delay, taken := RefreshTick(ps)
	if taken == nil {
		t.Fatal("expected RefreshTick to take the queued picture")
	}
	if taken.PTS != pic.PTS {
		t.Fatalf("expected the same picture to come back, got PTS=%d", taken.PTS)
	}
	if delay < 10*time.Millisecond {
		t.Fatalf("expected at least the minimum floor delay, got %v", delay)
	}

	if v.frameLastPTS != 1.0 {
		t.Fatalf("expected frameLastPTS updated to 1.0, got %f", v.frameLastPTS)
	}
}

func TestRefreshTickLeavesQueueEmptyAfterTake(t *testing.T) {
	ps := NewPlayerState(nil)
	v := newTestVideoState(t)
	ps.Video = v
	ps.External.Set(0)

	v.queue.Put(&avcodec.Picture{PTS: 500_000})
	if _, taken := RefreshTick(ps); taken == nil {
		t.Fatal("expected first RefreshTick to take the picture")
	}

	_, ok := v.queue.Peek()
	if ok {
		t.Fatal("expected queue to be empty after the picture was taken")
	}
}
