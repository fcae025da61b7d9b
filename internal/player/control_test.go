package player

import (
	"testing"

	"github.com/kestrelav/avplay/internal/avcodec"
)

func TestRescaleZeroTimeBasePassesThrough(t *testing.T) {
	if got := rescale(5_000_000, avcodec.Rational{}); got != 5_000_000 {
		t.Fatalf("expected pass-through for zero time_base, got %d", got)
	}
}

func TestRescaleConvertsToStreamTimeBase(t *testing.T) {
	// 1/1000 time_base (milliseconds): 2 seconds -> 2000 units.
	got := rescale(2_000_000, avcodec.Rational{Num: 1, Den: 1000})
	if got != 2000 {
		t.Fatalf("expected 2000, got %d", got)
	}
}

func TestSeekClampsNegativeTargetToZero(t *testing.T) {
	ps := NewPlayerState(nil)
	ps.External.Set(3)

	Seek(ps, -10_000_000_000) // -10s in time.Duration nanoseconds, well past zero

	req, ok := ps.TakeSeekRequest()
	if !ok {
		t.Fatal("expected a seek request to be queued")
	}
	if req.Pos != 0 {
		t.Fatalf("expected clamped target of 0, got %d", req.Pos)
	}
	if req.Flags == 0 {
		t.Fatal("expected backward seek flag for a negative rel")
	}
}

func TestSeekRejectedWhileOneIsPending(t *testing.T) {
	ps := NewPlayerState(nil)
	ps.External.Set(20)

	Seek(ps, 10e9) // +10s
	if _, ok := ps.TakeSeekRequest(); !ok {
		t.Fatal("expected first seek request to be queued")
	}

	// seekComplete is still false: a second Seek must be dropped silently.
	// Freeze the external clock so that only a Set could change its value.
	ps.External.Pause()
	before := ps.External.Value()
	Seek(ps, 5e9)
	after := ps.External.Value()
	if before != after {
		t.Fatal("External clock should not move on a dropped seek")
	}
}
