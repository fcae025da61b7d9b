package player

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kestrelav/avplay/internal/avcodec"
	"github.com/kestrelav/avplay/internal/playererrors"
)

// Seek key-binding deltas, per spec §4.7.
const (
	SeekStepSmall = 10 * time.Second
	SeekStepLarge = 60 * time.Second
)

// Seek requests a coalesced seek of rel against the player's current
// master-clock position; it is silently dropped if a seek is already in
// flight (spec §4.7: "only if !seek_req && seek_complete").
func Seek(ps *PlayerState, rel time.Duration) {
	current := ps.MasterClockValue()
	target := current + rel.Seconds()
	if target < 0 {
		target = 0
	}

	posMicros := int64(target * 1e6)
	relMicros := int64(rel.Seconds() * 1e6)

	if ps.RequestSeek(SeekRequest{Pos: posMicros, Rel: relMicros, Flags: seekFlags(rel)}) {
		ps.External.Set(target)
	}
}

func seekFlags(rel time.Duration) int {
	if rel < 0 {
		return avcodec.SeekFlagBackward
	}
	return 0
}

// performSeek executes a pending seek: picks a reference stream (prefer
// audio), rescales the target into that stream's time_base, invokes the
// demux/decode binding's seek_file, flushes both packet queues and both
// decoders, and enqueues a flush sentinel into each queue so downstream
// consumers reset their decode state (spec §4.7's Seeking transition).
func performSeek(log *slog.Logger, ps *PlayerState, req SeekRequest) error {
	streamIndex := -1
	var tb avcodec.Rational
	switch {
	case ps.Audio != nil:
		streamIndex = ps.Audio.StreamIndex
		tb = ps.Audio.TimeBase
	case ps.Video != nil:
		streamIndex = ps.Video.StreamIndex
		tb = ps.Video.TimeBase
	default:
		return playererrors.NewSeekError("perform_seek", fmt.Errorf("no reference stream available"))
	}

	targetTS := rescale(req.Pos, tb)
	var minTS, maxTS int64
	if req.Rel > 0 {
		minTS = targetTS - rescale(req.Rel, tb)/2
		maxTS = int64(1<<62 - 1)
	} else {
		minTS = int64(-(1 << 62))
		maxTS = targetTS + rescale(-req.Rel, tb)/2
	}

	if err := ps.Format.SeekFile(streamIndex, minTS, targetTS, maxTS, req.Flags); err != nil {
		return playererrors.NewSeekError("seek_file", err)
	}

	if ps.Audio != nil {
		ps.AudioPQ.Flush()
		_ = ps.Audio.decoder.SendPacket(avcodec.NewFlushPacket(ps.Audio.StreamIndex))
		ps.AudioPQ.Put(avcodec.NewFlushPacket(ps.Audio.StreamIndex))
		ps.Audio.mu.Lock()
		ps.Audio.bufferSize = 0
		ps.Audio.bufferIndex = 0
		ps.Audio.mu.Unlock()
	}
	if ps.Video != nil {
		ps.VideoPQ.Flush()
		ps.Video.queue.Flush()
		_ = ps.Video.decoder.SendPacket(avcodec.NewFlushPacket(ps.Video.StreamIndex))
		ps.VideoPQ.Put(avcodec.NewFlushPacket(ps.Video.StreamIndex))
		ps.Video.Reset(time.Now())
	}

	targetSeconds := float64(req.Pos) / 1e6
	ps.Sync.SetAudioClock(targetSeconds)
	ps.Sync.SetVideoClock(targetSeconds)
	ps.External.Set(targetSeconds)

	log.Info("seek complete", "target_seconds", targetSeconds)
	return nil
}

// rescale converts a duration in AV_TIME_BASE microseconds into tb units.
func rescale(micros int64, tb avcodec.Rational) int64 {
	if tb.Num == 0 {
		return micros
	}
	seconds := float64(micros) / 1e6
	return int64(seconds * float64(tb.Den) / float64(tb.Num))
}
