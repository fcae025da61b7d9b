// Package config holds the player's command-line surface.
package config

import "flag"

// Options holds every flag-derived setting the player needs. Fields are
// pointers, in the teacher's own flag-struct idiom, so a single Options
// value can be populated directly by the FlagSet's Int/String/Bool calls
// (the input path is filled in after parsing) and passed by
// reference into every component that needs a setting.
type Options struct {
	InputPath         *string
	Width             *int
	Height            *int
	AudioOutputDevice *string
	LogLevel          *string
	StartPaused       *bool
}

// Parse registers and parses the player's flags, returning the populated
// Options. The input path is the one positional argument.
func Parse(args []string) (*Options, error) {
	fs := flag.NewFlagSet("avplay", flag.ContinueOnError)

	o := &Options{
		Width:             fs.Int("width", 1280, "initial window width"),
		Height:            fs.Int("height", 720, "initial window height"),
		AudioOutputDevice: fs.String("audio-device", "", "output audio device name (empty = system default)"),
		LogLevel:          fs.String("log-level", "", "log level: debug, info, warn, error"),
		StartPaused:       fs.Bool("paused", false, "start in a paused state"),
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	path := ""
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}
	o.InputPath = &path

	return o, nil
}
