// Package queue implements the bounded packet and rendezvous picture
// queues that connect the demuxer, decoders, and renderer goroutines,
// grounded on original_source/utils/packet_queue.c and the teacher's own
// buffered-channel-plus-mutex shared-buffer idiom in sharedbuffer.go.
package queue

import (
	"sync"

	"github.com/kestrelav/avplay/internal/avcodec"
)

// SoftCapBytes is the soft cap NewPacketQueue uses when given 0. Put
// blocks while a queue's size is at or above its cap, rather than
// enforcing a hard cap that would require dropping packets; the engine
// passes its own per-stream caps instead of this default.
const SoftCapBytes = 15 * 1024 * 1024

// PacketQueue is a bounded FIFO of *avcodec.Packet, guarded by a
// sync.Mutex/sync.Cond pair rather than a channel: a channel can't express
// "block Put while over a soft byte-size cap, but never drop" without a
// second select arm, so the teacher's mutex+cond pattern (adapted from its
// sharedbuffer.go) fits the contract more directly than chan-based code.
type PacketQueue struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond

	packets []*avcodec.Packet
	size    int // sum of Packet.Size across queued data packets
	softCap int

	closed bool
}

// NewPacketQueue builds an empty queue with the given soft byte-size cap.
// A softCap of 0 uses SoftCapBytes.
func NewPacketQueue(softCap int) *PacketQueue {
	if softCap <= 0 {
		softCap = SoftCapBytes
	}
	q := &PacketQueue{softCap: softCap}
	q.notEmpty = sync.NewCond(&q.mu)
	q.notFull = sync.NewCond(&q.mu)
	return q
}

// Put appends a packet to the queue. If the queue's size is at or above
// its soft cap it blocks until a consumer drains packets below the cap,
// the queue is flushed, or the queue is closed; it never drops a packet
// on backpressure.
func (q *PacketQueue) Put(pkt *avcodec.Packet) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.size >= q.softCap && !q.closed {
		q.notFull.Wait()
	}
	if q.closed {
		pkt.Free()
		return
	}

	q.packets = append(q.packets, pkt)
	if pkt.Kind == avcodec.PacketData {
		q.size += pkt.Size
	}
	q.notEmpty.Signal()
}

// Get blocks until a packet is available or the queue is closed, in which
// case it returns (nil, false).
func (q *PacketQueue) Get() (*avcodec.Packet, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.packets) == 0 && !q.closed {
		q.notEmpty.Wait()
	}
	if len(q.packets) == 0 && q.closed {
		return nil, false
	}

	pkt := q.packets[0]
	q.packets = q.packets[1:]
	if pkt.Kind == avcodec.PacketData {
		q.size -= pkt.Size
	}
	q.notFull.Signal()
	return pkt, true
}

// Flush discards every queued packet, freeing each (the Q2 invariant: every
// packet is Get-and-Freed by a consumer, or Freed here), and resets size to
// zero. Used on seek, per spec §4.4/§4.7.
func (q *PacketQueue) Flush() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, pkt := range q.packets {
		pkt.Free()
	}
	q.packets = nil
	q.size = 0
	q.notFull.Signal()
}

// Close marks the queue closed, freeing any packets still queued and
// waking every blocked Get/Put. A closed queue never accepts new packets
// again.
func (q *PacketQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	for _, pkt := range q.packets {
		pkt.Free()
	}
	q.packets = nil
	q.size = 0
	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
}

// Size reports the current sum of queued data-packet payload sizes, for
// diagnostics/tests.
func (q *PacketQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Len reports the number of queued packets (data + sentinels).
func (q *PacketQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.packets)
}
