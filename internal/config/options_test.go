package config

import "testing"

func TestParseDefaults(t *testing.T) {
	o, err := Parse([]string{"movie.mp4"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if *o.InputPath != "movie.mp4" {
		t.Fatalf("expected input path movie.mp4, got %q", *o.InputPath)
	}
	if *o.Width != 1280 || *o.Height != 720 {
		t.Fatalf("expected default 1280x720, got %dx%d", *o.Width, *o.Height)
	}
	if *o.StartPaused {
		t.Fatal("expected StartPaused false by default")
	}
}

func TestParseOverridesFlags(t *testing.T) {
	o, err := Parse([]string{"-width", "640", "-height", "480", "-paused", "-log-level", "debug", "movie.mkv"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if *o.Width != 640 || *o.Height != 480 {
		t.Fatalf("expected 640x480, got %dx%d", *o.Width, *o.Height)
	}
	if !*o.StartPaused {
		t.Fatal("expected StartPaused true")
	}
	if *o.LogLevel != "debug" {
		t.Fatalf("expected log-level debug, got %q", *o.LogLevel)
	}
	if *o.InputPath != "movie.mkv" {
		t.Fatalf("expected positional input path, got %q", *o.InputPath)
	}
}

func TestParseMissingInputPathIsEmpty(t *testing.T) {
	o, err := Parse([]string{"-width", "100"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if *o.InputPath != "" {
		t.Fatalf("expected empty input path, got %q", *o.InputPath)
	}
}

func TestParseInvalidFlagReturnsError(t *testing.T) {
	if _, err := Parse([]string{"-not-a-flag"}); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}
