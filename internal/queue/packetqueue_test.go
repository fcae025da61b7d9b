package queue

import (
	"testing"
	"time"

	"github.com/kestrelav/avplay/internal/avcodec"
)

func dataPacket(size int) *avcodec.Packet {
	p := avcodec.NewPacket()
	p.Size = size
	return p
}

func TestPacketQueuePutGetOrder(t *testing.T) {
	q := NewPacketQueue(0)
	a := dataPacket(10)
	b := dataPacket(20)
	q.Put(a)
	q.Put(b)

	got, ok := q.Get()
	if !ok || got != a {
		t.Fatalf("expected first packet back, got %v ok=%v", got, ok)
	}
	got, ok = q.Get()
	if !ok || got != b {
		t.Fatalf("expected second packet back, got %v ok=%v", got, ok)
	}
}

func TestPacketQueueGetBlocksUntilPut(t *testing.T) {
	q := NewPacketQueue(0)
	done := make(chan *avcodec.Packet, 1)
	go func() {
		pkt, ok := q.Get()
		if !ok {
			done <- nil
			return
		}
		done <- pkt
	}()

	select {
	case <-done:
		t.Fatal("Get returned before any Put")
	case <-time.After(50 * time.Millisecond):
	}

	pkt := dataPacket(1)
	q.Put(pkt)

	select {
	case got := <-done:
		if got != pkt {
			t.Fatalf("expected %v, got %v", pkt, got)
		}
	case <-time.After(time.Second):
		t.Fatal("Get never unblocked after Put")
	}
}

func TestPacketQueueBackpressure(t *testing.T) {
	q := NewPacketQueue(100)
	q.Put(dataPacket(90))

	blocked := make(chan struct{})
	go func() {
		q.Put(dataPacket(50))
		close(blocked)
	}()

	select {
	case <-blocked:
		t.Fatal("Put over soft cap did not block")
	case <-time.After(50 * time.Millisecond):
	}

	q.Get()

	select {
	case <-blocked:
	case <-time.After(time.Second):
		t.Fatal("Put never unblocked after drain")
	}
}

func TestPacketQueueFlushFreesAll(t *testing.T) {
	q := NewPacketQueue(0)
	q.Put(dataPacket(10))
	q.Put(dataPacket(20))
	q.Flush()

	if q.Len() != 0 || q.Size() != 0 {
		t.Fatalf("expected empty queue after flush, got len=%d size=%d", q.Len(), q.Size())
	}
}

func TestPacketQueueCloseUnblocksGet(t *testing.T) {
	q := NewPacketQueue(0)
	done := make(chan bool, 1)
	go func() {
		_, ok := q.Get()
		done <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	q.Close()

	select {
	case ok := <-done:
		if ok {
			t.Fatal("expected Get to report closed (ok=false)")
		}
	case <-time.After(time.Second):
		t.Fatal("Get never unblocked after Close")
	}
}

func TestPacketQueuePutAfterCloseFreesPacket(t *testing.T) {
	q := NewPacketQueue(0)
	q.Close()
	// Put on a closed queue must not panic or deadlock; the packet is
	// simply freed instead of queued.
	q.Put(dataPacket(5))
	if q.Len() != 0 {
		t.Fatalf("expected closed queue to stay empty, got len=%d", q.Len())
	}
}
