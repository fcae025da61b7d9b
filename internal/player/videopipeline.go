package player

import (
	"context"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/kestrelav/avplay/internal/avcodec"
	"github.com/kestrelav/avplay/internal/clock"
	"github.com/kestrelav/avplay/internal/queue"
)

// NewVideoState builds a VideoState for the given stream, wiring a
// decoder and scaler to the requested display geometry/format.
func NewVideoState(streamIndex int, tb avcodec.Rational, params avcodec.CodecParameters, pq *queue.PictureQueue) (*VideoState, error) {
	dec, err := avcodec.NewDecoder(params)
	if err != nil {
		return nil, err
	}
	sc, err := avcodec.NewScaler(params.Width, params.Height, params.PixelFormat, params.Width, params.Height, pixelFormatYUV420P)
	if err != nil {
		dec.Close()
		return nil, err
	}

	now := time.Now()
	return &VideoState{
		StreamIndex:      streamIndex,
		TimeBase:         tb,
		decoder:          dec,
		scaler:           sc,
		queue:            pq,
		frameTimer:       float64(now.UnixNano()) / 1e9,
		frameLastDelay:   0.040,
		videoCurrentTime: now,
	}, nil
}

// pixelFormatYUV420P mirrors AV_PIX_FMT_YUV420P.
const pixelFormatYUV420P = 0

// RunVideoDecoder drains packets from the video packet queue, decodes
// them, derives a presentation timestamp, scales the frame to YUV420P,
// and pushes the result into the video picture queue (spec §4.6's decoder
// thread).
func RunVideoDecoder(ctx context.Context, log *slog.Logger, ps *PlayerState) error {
	v := ps.Video
	for {
		if ps.Quit.Load() || ctx.Err() != nil {
			return nil
		}
		ps.WaitIfPaused()

		pkt, ok := ps.VideoPQ.Get()
		if !ok {
			return nil
		}

		if pkt.Kind == avcodec.PacketFlush {
			_ = v.decoder.SendPacket(pkt)
			pkt.Free()
			continue
		}

		if err := v.decoder.SendPacket(pkt); err != nil {
			log.Warn("video decode send failed", "error", err)
			pkt.Free()
			continue
		}
		pktDTS := pkt.DTS
		pkt.Free()

		frame, err := v.decoder.ReceiveFrame()
		if err != nil {
			if err != avcodec.ErrAgain && err != io.EOF {
				log.Warn("video decode receive failed", "error", err)
			}
			continue
		}

		pts := derivePTS(frame, pktDTS)
		presented := synchronizeVideo(v, frame, pts*v.TimeBase.Seconds())

		pic, err := v.scaler.Scale(frame)
		frame.Free()
		if err != nil {
			log.Warn("video scale failed", "error", err)
			continue
		}
		pic.PTS = int64(presented * 1e6)

		if !v.queue.Put(pic) {
			pic.Free()
		}
	}
}

// noPTSValue mirrors AV_NOPTS_VALUE, the marker for an undefined timestamp.
const noPTSValue = math.MinInt64

// derivePTS uses the packet's DTS and falls back to the frame's
// best-effort timestamp when the DTS is undefined (spec §4.6).
func derivePTS(f *avcodec.Frame, pktDTS int64) float64 {
	if pktDTS != noPTSValue {
		return float64(pktDTS)
	}
	return float64(f.PTS())
}

// synchronizeVideo implements spec §4.3's synchronize_video: establishes
// the authoritative video_clock from pts (when nonzero) or continues the
// running clock, then advances by one frame duration including
// repeat_pict.
func synchronizeVideo(v *VideoState, f *avcodec.Frame, pts float64) float64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	if pts != 0 {
		v.videoClock = pts
	} else {
		pts = v.videoClock
	}

	frameDelay := v.TimeBase.Seconds()
	frameDelay += float64(f.RepeatPict()) * frameDelay * 0.5
	v.videoClock += frameDelay

	return pts
}

// RefreshTick runs the per-tick scheduling algorithm of spec §4.3/§4.6:
// it peeks the queued picture, computes the next display delay against
// the master clock, and reports how long the caller should wait before
// the next tick and whether this tick should display.
func RefreshTick(ps *PlayerState) (delay time.Duration, display *avcodec.Picture) {
	v := ps.Video
	pic, ok := v.queue.Peek()
	if !ok {
		return time.Millisecond, nil
	}

	v.mu.Lock()
	picturePTS := float64(pic.PTS) / 1e6

	d := picturePTS - v.frameLastPts()
	if d < 0 || d >= 1.0 {
		d = v.frameLastDelay
	}
	v.frameLastDelay = d
	v.frameLastPTS = picturePTS

	refClock := ps.MasterClockValue()
	diff := picturePTS - refClock
	d = clock.SynchronizeVideo(d, diff)

	v.frameTimer += d
	now := float64(time.Now().UnixNano()) / 1e9
	actualDelay := v.frameTimer - now
	if actualDelay < 0.010 {
		actualDelay = 0.010
	}
	v.mu.Unlock()

	taken, ok := v.queue.Take()
	if !ok {
		return time.Duration(actualDelay * float64(time.Second)), nil
	}
	return time.Duration(actualDelay * float64(time.Second)), taken
}

func (v *VideoState) frameLastPts() float64 {
	return v.frameLastPTS
}
