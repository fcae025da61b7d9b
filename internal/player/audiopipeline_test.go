package player

import (
	"bytes"
	"testing"
)

func TestResizeAudioChunkTruncates(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5, 6}
	got := resizeAudioChunk(buf, 3)
	if !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Fatalf("expected truncated [1 2 3], got %v", got)
	}
}

func TestResizeAudioChunkExtendsByReplication(t *testing.T) {
	buf := []byte{1, 2}
	got := resizeAudioChunk(buf, 6)
	want := []byte{1, 2, 1, 2, 1, 2}
	if !bytes.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestResizeAudioChunkSameSizeReturnsUnchanged(t *testing.T) {
	buf := []byte{9, 9, 9}
	got := resizeAudioChunk(buf, 3)
	if !bytes.Equal(got, buf) {
		t.Fatalf("expected unchanged buffer, got %v", got)
	}
}

func TestResizeAudioChunkZeroWantedIsNoop(t *testing.T) {
	buf := []byte{1, 2, 3}
	got := resizeAudioChunk(buf, 0)
	if !bytes.Equal(got, buf) {
		t.Fatalf("expected unchanged buffer for wanted<=0, got %v", got)
	}
}

func TestResizeAudioChunkEmptyInputZeroFills(t *testing.T) {
	got := resizeAudioChunk(nil, 4)
	if len(got) != 4 {
		t.Fatalf("expected 4-byte zeroed buffer, got len %d", len(got))
	}
	for _, b := range got {
		if b != 0 {
			t.Fatal("expected zero-filled extension when source is empty")
		}
	}
}
