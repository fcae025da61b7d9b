// Command avplay plays a local audio+video file, rendering pictures to a
// window and pushing samples to the output device in lockstep, per
// SPEC_FULL.md's playback-engine specification.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kestrelav/avplay/internal/audioout"
	"github.com/kestrelav/avplay/internal/config"
	"github.com/kestrelav/avplay/internal/logging"
	"github.com/kestrelav/avplay/internal/player"
	"github.com/kestrelav/avplay/internal/probe"
	"github.com/kestrelav/avplay/internal/queue"
	"github.com/kestrelav/avplay/internal/videoout"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	logging.Init(*opts.LogLevel)
	log := logging.Logger()

	if *opts.InputPath == "" {
		log.Error("no input path given")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if result, err := probe.Probe(ctx, *opts.InputPath); err != nil {
		log.Warn("preflight probe failed, continuing to authoritative open", "error", err)
	} else if !result.HasStream {
		log.Warn("preflight probe found no decodable stream, continuing to authoritative open")
	}

	pictureQueue := queue.NewPictureQueue()

	engine, err := player.Open(log, *opts.InputPath, player.OutputSpec{
		AudioSampleRate: 48000,
		AudioChannels:   2,
	}, pictureQueue)
	if err != nil {
		log.Error("failed to open input", "error", err)
		return 1
	}
	defer engine.Close()

	state := engine.State()
	if *opts.StartPaused {
		state.TogglePause()
	}

	win, err := videoout.Open(log, *opts.Width, *opts.Height, "avplay")
	if err != nil {
		log.Error("failed to open window", "error", err)
		return 1
	}
	defer win.Close()

	var device *audioout.Device
	if state.Audio != nil {
		device, err = audioout.Open(log, *opts.AudioOutputDevice, 48000, 2, func(buf []byte) int {
			return player.FillAudioBuffer(log, state, state.AudioPQ, buf)
		})
		if err != nil {
			log.Error("failed to open audio output", "error", err)
			return 1
		}
		defer device.Close()
	}

	inputEvents := win.BindInput()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- engine.Run(runCtx)
	}()

	go refreshLoop(runCtx, state, win)

	for !win.ShouldClose() {
		win.PollEvents()

		select {
		case ev := <-inputEvents:
			handleInput(state, device, log, ev)
		case err := <-errCh:
			if err != nil {
				log.Error("engine exited with error", "error", err)
				return 1
			}
			return 0
		default:
		}

		if state.Quit.Load() {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	state.RequestQuit()
	cancel()
	<-errCh
	return 0
}

func handleInput(state *player.PlayerState, device *audioout.Device, log interface {
	Warn(string, ...any)
}, ev videoout.InputEvent) {
	switch ev.Cmd {
	case videoout.CommandTogglePause:
		state.TogglePause()
		if device != nil {
			if state.IsPaused() {
				if err := device.Pause(); err != nil {
					log.Warn("pause audio device failed", "error", err)
				}
			} else {
				if err := device.Resume(); err != nil {
					log.Warn("resume audio device failed", "error", err)
				}
			}
		}
	case videoout.CommandSeek:
		player.Seek(state, ev.SeekStep)
	case videoout.CommandQuit:
		state.RequestQuit()
	}
}

// refreshLoop drives the video refresh-scheduling algorithm (spec §4.6):
// it repeatedly calls RefreshTick, sleeps the returned delay, and displays
// whatever picture the tick produced.
func refreshLoop(ctx context.Context, state *player.PlayerState, win *videoout.Window) {
	for {
		if ctx.Err() != nil || state.Quit.Load() {
			return
		}
		if state.Video == nil {
			return
		}

		delay, pic := player.RefreshTick(state)
		if pic != nil {
			win.Display(pic)
			pic.Free()
			videoout.PostEmptyEvent()
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}
