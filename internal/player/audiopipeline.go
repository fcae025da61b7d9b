package player

import (
	"io"
	"log/slog"

	"github.com/kestrelav/avplay/internal/avcodec"
	"github.com/kestrelav/avplay/internal/clock"
	"github.com/kestrelav/avplay/internal/queue"
)

// NewAudioState builds an AudioState for the given stream, wiring a
// decoder and resampler to the requested output format.
func NewAudioState(streamIndex int, tb avcodec.Rational, params avcodec.CodecParameters, outSampleRate, outChannels int32) (*AudioState, error) {
	dec, err := avcodec.NewDecoder(params)
	if err != nil {
		return nil, err
	}
	res, err := avcodec.NewResampler(params, outSampleRate, outChannels, sampleFormatS16)
	if err != nil {
		dec.Close()
		return nil, err
	}

	// Threshold ~2 sample periods, matching the original's is_diff_too_big
	// check (original_source/audio/audio.c).
	threshold := 2.0 / float64(outSampleRate)
	return &AudioState{
		StreamIndex: streamIndex,
		TimeBase:    tb,
		decoder:     dec,
		resampler:   res,
		sampleRate:  outSampleRate,
		channels:    outChannels,
		drift:       clock.NewAudioDriftCorrector(threshold),
	}, nil
}

// sampleFormatS16 mirrors AV_SAMPLE_FMT_S16; kept local so audiopipeline.go
// does not need a cgo import of its own.
const sampleFormatS16 = 1

// FillAudioBuffer is the pull callback's refill step (spec §4.5): "while
// len > 0: if the internal audio_buffer is exhausted, refill … copy
// min(remaining, len) bytes out, advance indices." It drains AudioState's
// persistent ring buffer into out, decoding and resampling further packets
// from pq whenever the ring runs dry, and returns the number of bytes
// actually written — short only once pq is closed and no more audio will
// ever arrive.
func FillAudioBuffer(log *slog.Logger, ps *PlayerState, pq *queue.PacketQueue, out []byte) int {
	a := ps.Audio
	written := 0

	for written < len(out) {
		a.mu.Lock()
		remaining := a.bufferSize - a.bufferIndex
		a.mu.Unlock()

		if remaining <= 0 {
			if !refillAudioBuffer(log, ps, a, pq) {
				break
			}
			continue
		}

		a.mu.Lock()
		n := copy(out[written:], a.buffer[a.bufferIndex:a.bufferSize])
		a.bufferIndex += n
		a.mu.Unlock()
		written += n
	}

	return written
}

// refillAudioBuffer decodes and resamples packets from pq until it has
// installed a fresh, non-empty chunk as AudioState's ring buffer, updating
// the audio clock and applying drift correction against the master clock
// when the master is not audio itself (spec §4.5). It returns false once
// pq is closed and drained, telling the caller the well is dry.
func refillAudioBuffer(log *slog.Logger, ps *PlayerState, a *AudioState, pq *queue.PacketQueue) bool {
	for {
		pkt, ok := pq.Get()
		if !ok {
			return false
		}

		if pkt.Kind == avcodec.PacketFlush {
			_ = a.decoder.SendPacket(pkt)
			pkt.Free()
			a.mu.Lock()
			a.buffer = nil
			a.bufferSize = 0
			a.bufferIndex = 0
			a.mu.Unlock()
			continue
		}

		if err := a.decoder.SendPacket(pkt); err != nil {
			log.Warn("audio decode send failed", "error", err)
			pkt.Free()
			continue
		}
		pktPTS := pkt.PTS
		pkt.Free()

		frame, err := a.decoder.ReceiveFrame()
		if err != nil {
			if err != avcodec.ErrAgain && err != io.EOF {
				log.Warn("audio decode receive failed", "error", err)
			}
			continue
		}

		out, gotSamples, err := a.resampler.Convert(frame)
		frame.Free()
		if err != nil {
			log.Warn("audio resample failed", "error", err)
			continue
		}
		if gotSamples == 0 {
			continue
		}

		pts := float64(pktPTS) * a.TimeBase.Seconds()
		bytesPerSecond := float64(a.sampleRate) * float64(a.channels) * 2

		a.mu.Lock()
		a.clockPTS = pts + float64(len(out))/bytesPerSecond
		a.mu.Unlock()
		ps.Sync.SetAudioClock(a.clockPTS)

		if ps.Sync.Type != AudioMaster {
			diff := a.Clock() - ps.MasterClockValue()
			corrected := a.drift.Correct(diff, len(out), int(bytesPerSecond))
			out = resizeAudioChunk(out, corrected)
		}

		a.mu.Lock()
		a.buffer = out
		a.bufferSize = len(out)
		a.bufferIndex = 0
		a.mu.Unlock()
		return true
	}
}

// resizeAudioChunk extends or truncates buf to exactly wanted bytes for
// the drift-correction resize step. It extends by repeating buf's bytes
// from the start, not by repeating only its trailing sample frame; an
// empty buf is extended with zeros.
func resizeAudioChunk(buf []byte, wanted int) []byte {
	if wanted <= 0 || wanted == len(buf) {
		return buf
	}
	if wanted < len(buf) {
		return buf[:wanted]
	}

	extended := make([]byte, wanted)
	copy(extended, buf)
	if len(buf) > 0 {
		for i := len(buf); i < wanted; i += len(buf) {
			n := copy(extended[i:], buf)
			if n == 0 {
				break
			}
		}
	}
	return extended
}
