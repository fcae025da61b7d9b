package player

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/kestrelav/avplay/internal/avcodec"
)

// Soft caps from spec §3: audio ≤ 10 MiB, video ≤ 1.25 MiB (5×256 KiB).
const (
	audioSoftCapBytes = 10 * 1024 * 1024
	videoSoftCapBytes = 5 * 256 * 1024
)

// RunDemuxer reads packets from the format context and routes them to the
// audio/video packet queues until ctx is cancelled or quit is set,
// grounded on original_source/player/player.c's decode_thread loop.
func RunDemuxer(ctx context.Context, log *slog.Logger, ps *PlayerState) error {
	for {
		if ps.Quit.Load() || ctx.Err() != nil {
			return nil
		}
		if ps.IsPaused() {
			ps.Format.ReadPause()
			ps.WaitIfPaused()
			ps.Format.ReadPlay()
		}
		if ps.Quit.Load() || ctx.Err() != nil {
			return nil
		}

		if req, ok := ps.TakeSeekRequest(); ok {
			if err := performSeek(log, ps, req); err != nil {
				log.Warn("seek failed", "error", err)
			}
			ps.CompleteSeek()
		}

		if ps.AudioPQ != nil && ps.AudioPQ.Size() > audioSoftCapBytes {
			sleepOrCancel(ctx, 10*time.Millisecond)
			continue
		}
		if ps.VideoPQ != nil && ps.VideoPQ.Size() > videoSoftCapBytes {
			sleepOrCancel(ctx, 10*time.Millisecond)
			continue
		}

		pkt := avcodec.NewPacket()
		err := ps.Format.ReadFrame(pkt)
		switch {
		case err == nil:
			routePacket(ps, pkt)
		case errors.Is(err, avcodec.ErrEOF):
			// Transient: allows a backward seek to revive playback
			// (spec §4.4).
			sleepOrCancel(ctx, 100*time.Millisecond)
		default:
			log.Error("demuxer read failed", "error", err)
			return err
		}
	}
}

func routePacket(ps *PlayerState, pkt *avcodec.Packet) {
	switch {
	case ps.Audio != nil && pkt.StreamIndex == ps.Audio.StreamIndex:
		ps.AudioPQ.Put(pkt)
	case ps.Video != nil && pkt.StreamIndex == ps.Video.StreamIndex:
		ps.VideoPQ.Put(pkt)
	default:
		pkt.Free()
	}
}

func sleepOrCancel(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
