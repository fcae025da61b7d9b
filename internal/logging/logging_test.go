package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	s := bufio.NewScanner(buf)
	var out []map[string]any
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON line: %s err=%v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestLogLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	UseWriter(&buf)
	if !SetLevel("info") {
		t.Fatalf("SetLevel(info) should succeed")
	}

	Logger().Debug("debug message should be filtered")
	Logger().Info("info message", "k", 1)

	records := decodeLines(t, &buf)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0]["msg"].(string) != "info message" {
		t.Fatalf("unexpected message: %+v", records[0])
	}
}

func TestSetLevelRejectsUnknown(t *testing.T) {
	if SetLevel("bogus") {
		t.Fatal("expected SetLevel to reject an unknown level")
	}
}

func TestWithStreamAttachesFields(t *testing.T) {
	var buf bytes.Buffer
	UseWriter(&buf)
	SetLevel("debug")

	WithStream(Logger(), "video", 1).Info("decoding")

	records := decodeLines(t, &buf)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec["stream_kind"] != "video" {
		t.Fatalf("expected stream_kind=video, got %v", rec["stream_kind"])
	}
	if rec["stream_index"].(float64) != 1 {
		t.Fatalf("expected stream_index=1, got %v", rec["stream_index"])
	}
}

func TestDetectLevelPrecedence(t *testing.T) {
	if lvl := detectLevel("warn"); lvl.String() != "WARN" {
		t.Fatalf("explicit flag should win, got %v", lvl)
	}
	if lvl := detectLevel(""); lvl.String() != "INFO" {
		t.Fatalf("default should be info, got %v", lvl)
	}
}
