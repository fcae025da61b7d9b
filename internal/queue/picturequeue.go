package queue

import (
	"sync"

	"github.com/kestrelav/avplay/internal/avcodec"
)

// PictureQueue is a single-slot rendezvous: the video decode pipeline
// produces at most one pending decoded Picture for the renderer to
// consume, matching the original player's single-slot VideoPicture ring
// (original_source/video/video.c) rather than a multi-slot buffer — the
// renderer always displays the freshest decoded frame, never a backlog.
type PictureQueue struct {
	mu     sync.Mutex
	filled *sync.Cond
	empty  *sync.Cond

	pic    *avcodec.Picture
	closed bool
}

// NewPictureQueue builds an empty single-slot picture queue.
func NewPictureQueue() *PictureQueue {
	q := &PictureQueue{}
	q.filled = sync.NewCond(&q.mu)
	q.empty = sync.NewCond(&q.mu)
	return q
}

// Put blocks until the slot is empty (the previous picture has been
// Taken), then stores pic. Returns false if the queue was closed while
// waiting, in which case the caller retains ownership of pic.
func (q *PictureQueue) Put(pic *avcodec.Picture) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.pic != nil && !q.closed {
		q.empty.Wait()
	}
	if q.closed {
		return false
	}

	q.pic = pic
	q.filled.Signal()
	return true
}

// Take blocks until a picture is available or the queue is closed, in
// which case it returns (nil, false).
func (q *PictureQueue) Take() (*avcodec.Picture, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.pic == nil && !q.closed {
		q.filled.Wait()
	}
	if q.pic == nil {
		return nil, false
	}

	pic := q.pic
	q.pic = nil
	q.empty.Signal()
	return pic, true
}

// Peek returns the currently queued picture without consuming it, used by
// the refresh scheduler to inspect timing fields before deciding whether
// this tick is a display tick (spec §4.6's refresh-scheduling algorithm
// needs to read a picture's pts without racing a consuming Take).
func (q *PictureQueue) Peek() (*avcodec.Picture, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pic, q.pic != nil
}

// Flush discards any pending picture, freeing its plane buffers.
func (q *PictureQueue) Flush() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pic != nil {
		q.pic.Free()
		q.pic = nil
		q.empty.Signal()
	}
}

// Close marks the queue closed, freeing any pending picture and waking
// every blocked Put/Take.
func (q *PictureQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	if q.pic != nil {
		q.pic.Free()
		q.pic = nil
	}
	q.filled.Broadcast()
	q.empty.Broadcast()
}
