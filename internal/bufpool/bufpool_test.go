package bufpool

import "testing"

func TestGetReturnsSizedBuffer(t *testing.T) {
	p := New()

	tests := []struct {
		name        string
		requestSize int
		expectCap   int
	}{
		{"small fits first class", 100, 4096},
		{"exact class boundary", 4096, 4096},
		{"mid range rounds up", 5000, 65536},
		{"larger than all classes", 2 << 20, 2 << 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := p.Get(tt.requestSize)
			if len(buf) != tt.requestSize {
				t.Fatalf("len = %d, want %d", len(buf), tt.requestSize)
			}
			if cap(buf) != tt.expectCap {
				t.Fatalf("cap = %d, want %d", cap(buf), tt.expectCap)
			}
		})
	}
}

func TestPutReusesMatchingClass(t *testing.T) {
	p := New()

	first := p.Get(4096)
	first[0] = 0xFF
	p.Put(first)

	second := p.Get(4096)
	if second[0] != 0 {
		t.Fatalf("expected zeroed buffer on reuse, got %v", second[0])
	}
}

func TestPutDiscardsNonMatchingCapacity(t *testing.T) {
	p := New()
	odd := make([]byte, 10, 10)
	// Should not panic and should simply be discarded.
	p.Put(odd)
}

func TestPutNilIsNoop(t *testing.T) {
	p := New()
	p.Put(nil)
}

func TestGetZeroOrNegativeSizeReturnsNil(t *testing.T) {
	p := New()
	if buf := p.Get(0); buf != nil {
		t.Fatalf("expected nil for size 0, got %v", buf)
	}
	if buf := p.Get(-1); buf != nil {
		t.Fatalf("expected nil for negative size, got %v", buf)
	}
}

func TestPackageLevelDefaultPool(t *testing.T) {
	buf := Get(1024)
	if len(buf) != 1024 {
		t.Fatalf("len = %d, want 1024", len(buf))
	}
	Put(buf)
}
