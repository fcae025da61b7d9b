package player

import (
	"testing"
	"time"
)

func TestRequestSeekCoalesces(t *testing.T) {
	ps := &PlayerState{}
	ps.seekComplete = true

	if !ps.RequestSeek(SeekRequest{Pos: 1000}) {
		t.Fatal("first seek request should be accepted")
	}
	if ps.RequestSeek(SeekRequest{Pos: 2000}) {
		t.Fatal("second seek request while one is pending must be rejected")
	}

	req, ok := ps.TakeSeekRequest()
	if !ok || req.Pos != 1000 {
		t.Fatalf("expected pending request pos=1000, got %+v ok=%v", req, ok)
	}

	// Not complete yet: a new request must still be rejected.
	if ps.RequestSeek(SeekRequest{Pos: 3000}) {
		t.Fatal("seek request before CompleteSeek must be rejected")
	}

	ps.CompleteSeek()
	if !ps.RequestSeek(SeekRequest{Pos: 3000}) {
		t.Fatal("seek request after CompleteSeek should be accepted")
	}
}

func TestTogglePauseBroadcastsWaiters(t *testing.T) {
	ps := NewPlayerState(nil)

	done := make(chan struct{})
	go func() {
		ps.WaitIfPaused()
		close(done)
	}()

	ps.TogglePause() // pause
	select {
	case <-done:
		t.Fatal("WaitIfPaused returned before pause was set")
	case <-time.After(20 * time.Millisecond):
	}

	ps.TogglePause() // resume

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WaitIfPaused never returned after resume")
	}
}

func TestRequestQuitUnblocksWaitIfPaused(t *testing.T) {
	ps := NewPlayerState(nil)
	ps.TogglePause()

	done := make(chan struct{})
	go func() {
		ps.WaitIfPaused()
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	ps.RequestQuit()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WaitIfPaused never returned after RequestQuit")
	}
}

func TestMasterClockValueFallsBackToExternalWhenUnwired(t *testing.T) {
	ps := NewPlayerState(nil)
	ps.External.Set(12)
	if v := ps.MasterClockValue(); v < 12 {
		t.Fatalf("expected external clock value, got %f", v)
	}
}
