package player

import (
	"context"
	"log/slog"

	"github.com/kestrelav/avplay/internal/avcodec"
	"github.com/kestrelav/avplay/internal/queue"
	"golang.org/x/sync/errgroup"
)

// OutputSpec describes the output device/window geometry the engine opens
// its audio/video pipelines against.
type OutputSpec struct {
	AudioSampleRate int32
	AudioChannels   int32
}

// Engine owns the opened format context, the player state, and the
// packet/picture queues for one playback session; Run supervises the
// demuxer and video-decoder goroutines, plus a shutdown watcher, via an
// errgroup.Group bound to a cancellable context (spec §2/§5, grounded on the teacher's errgroup
// supervision idiom borrowed from zsiec-prism's main.go).
type Engine struct {
	log   *slog.Logger
	state *PlayerState
}

// Open opens the input, selects audio/video streams, and wires the
// packet/picture queues and sub-states.
func Open(log *slog.Logger, inputPath string, spec OutputSpec, pictureQueue *queue.PictureQueue) (*Engine, error) {
	format, err := avcodec.Open(inputPath)
	if err != nil {
		return nil, err
	}
	if err := format.FindStreamInfo(); err != nil {
		format.Close()
		return nil, err
	}

	ps := NewPlayerState(format)
	ps.AudioPQ = queue.NewPacketQueue(audioSoftCapBytes)
	ps.VideoPQ = queue.NewPacketQueue(videoSoftCapBytes)

	audioIdx := format.FindBestStream(avcodec.MediaAudio)
	videoIdx := format.FindBestStream(avcodec.MediaVideo)

	if audioIdx >= 0 {
		params, err := format.StreamCodecParameters(audioIdx)
		if err != nil {
			format.Close()
			return nil, err
		}
		tb := format.StreamTimeBase(audioIdx)
		audio, err := NewAudioState(audioIdx, tb, params, spec.AudioSampleRate, spec.AudioChannels)
		if err != nil {
			format.Close()
			return nil, err
		}
		ps.AttachAudio(audio)
	}

	if videoIdx >= 0 {
		params, err := format.StreamCodecParameters(videoIdx)
		if err != nil {
			format.Close()
			return nil, err
		}
		tb := format.StreamTimeBase(videoIdx)
		video, err := NewVideoState(videoIdx, tb, params, pictureQueue)
		if err != nil {
			format.Close()
			return nil, err
		}
		ps.Video = video
	}

	if audioIdx < 0 {
		ps.AttachVideoOnly()
	}

	return &Engine{log: log, state: ps}, nil
}

// State exposes the engine's shared PlayerState for the control loop and
// platform bindings to observe/drive.
func (e *Engine) State() *PlayerState { return e.state }

// Run supervises the demuxer and video-decoder workers under an
// errgroup-derived context; the audio output device's callback and the
// video refresh/window loop run outside it, in the caller, tied to the
// same context (they straddle cgo callback and GLFW-thread
// constraints this package must not impose).
func (e *Engine) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return RunDemuxer(gctx, e.log, e.state)
	})

	if e.state.Video != nil {
		g.Go(func() error {
			return RunVideoDecoder(gctx, e.log, e.state)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		e.state.RequestQuit()
		e.state.AudioPQ.Close()
		e.state.VideoPQ.Close()
		if e.state.Video != nil {
			e.state.Video.queue.Close()
		}
		return nil
	})

	return g.Wait()
}

// Close releases the format context and both decoders/resamplers/scalers.
func (e *Engine) Close() {
	if e.state.Audio != nil {
		e.state.Audio.decoder.Close()
		e.state.Audio.resampler.Close()
	}
	if e.state.Video != nil {
		e.state.Video.decoder.Close()
		e.state.Video.scaler.Close()
	}
	e.state.Format.Close()
}
