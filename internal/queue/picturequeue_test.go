package queue

import (
	"testing"
	"time"

	"github.com/kestrelav/avplay/internal/avcodec"
)

func TestPictureQueuePutTakeRoundTrip(t *testing.T) {
	q := NewPictureQueue()
	pic := &avcodec.Picture{Width: 4, Height: 4, PTS: 100}

	if ok := q.Put(pic); !ok {
		t.Fatal("Put on fresh queue should succeed")
	}
	got, ok := q.Take()
	if !ok || got != pic {
		t.Fatalf("expected picture back, got %v ok=%v", got, ok)
	}
}

func TestPictureQueuePutBlocksWhileFull(t *testing.T) {
	q := NewPictureQueue()
	first := &avcodec.Picture{PTS: 1}
	second := &avcodec.Picture{PTS: 2}
	q.Put(first)

	blocked := make(chan struct{})
	go func() {
		q.Put(second)
		close(blocked)
	}()

	select {
	case <-blocked:
		t.Fatal("second Put should block while slot occupied")
	case <-time.After(50 * time.Millisecond):
	}

	q.Take()

	select {
	case <-blocked:
	case <-time.After(time.Second):
		t.Fatal("Put never unblocked after Take")
	}
}

func TestPictureQueuePeekDoesNotConsume(t *testing.T) {
	q := NewPictureQueue()
	pic := &avcodec.Picture{PTS: 42}
	q.Put(pic)

	got, ok := q.Peek()
	if !ok || got != pic {
		t.Fatalf("Peek should see the queued picture, got %v ok=%v", got, ok)
	}
	got, ok = q.Take()
	if !ok || got != pic {
		t.Fatalf("Take should still return the picture after Peek, got %v ok=%v", got, ok)
	}
}

func TestPictureQueueCloseUnblocksTake(t *testing.T) {
	q := NewPictureQueue()
	done := make(chan bool, 1)
	go func() {
		_, ok := q.Take()
		done <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	q.Close()

	select {
	case ok := <-done:
		if ok {
			t.Fatal("expected Take to report closed (ok=false)")
		}
	case <-time.After(time.Second):
		t.Fatal("Take never unblocked after Close")
	}
}
