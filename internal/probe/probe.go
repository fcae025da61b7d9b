// Package probe provides a cheap ffprobe-based preflight check, run
// before the heavier cgo demux/decode Open, using the same
// github.com/u2takey/ffmpeg-go dependency the teacher already carries for
// its subprocess-based audio capture path (audio/ffmpegbase.go) — spec
// §4.9/§6's advisory-only preflight contract (C11).
package probe

import (
	"context"
	"fmt"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Result is the subset of ffprobe's metadata the preflight check cares
// about: at least one decodable stream, and a human-readable format name
// for diagnostics.
type Result struct {
	HasStream  bool
	FormatName string
}

// Probe runs ffprobe against path and reports whether it found at least
// one stream. A probe failure is never fatal — it is advisory only, per
// spec §4.9; callers should log it and proceed to the authoritative cgo
// open regardless.
func Probe(ctx context.Context, path string) (Result, error) {
	data, err := ffmpeg.Probe(path)
	if err != nil {
		return Result{}, fmt.Errorf("ffprobe: %w", err)
	}

	info, err := parseProbeJSON(data)
	if err != nil {
		return Result{}, fmt.Errorf("parse ffprobe output: %w", err)
	}
	return info, nil
}
