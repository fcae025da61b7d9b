package avcodec

/*
#include <libavutil/frame.h>
#include <libavcodec/avcodec.h>
*/
import "C"

// Frame wraps a decoder-emitted AVFrame. It is transient: callers must
// call Free once they've copied out whatever they need (planar video
// planes for the scaler, or planar audio samples for the resampler) — per
// spec §3, Frames are stack-scoped within one pipeline step and never
// retained across iterations.
type Frame struct {
	c *C.AVFrame
}

func newFrame() *Frame {
	return &Frame{c: C.av_frame_alloc()}
}

// Free releases the underlying AVFrame.
func (f *Frame) Free() {
	if f.c != nil {
		C.av_frame_free(&f.c)
	}
}

// PTS returns the frame's best-effort presentation timestamp, falling back
// to pkt_dts when best_effort_timestamp is unset (AV_NOPTS_VALUE). The
// video pipeline uses it only for packets whose DTS is undefined.
func (f *Frame) PTS() int64 {
	if f.c.best_effort_timestamp != C.int64_t(C.AV_NOPTS_VALUE) {
		return int64(f.c.best_effort_timestamp)
	}
	return int64(f.c.pkt_dts)
}

// Width/Height/RepeatPict expose the video-relevant fields.
func (f *Frame) Width() int       { return int(f.c.width) }
func (f *Frame) Height() int      { return int(f.c.height) }
func (f *Frame) RepeatPict() int  { return int(f.c.repeat_pict) }
func (f *Frame) NumSamples() int  { return int(f.c.nb_samples) }
func (f *Frame) SampleFormat() int32 { return int32(f.c.format) }
func (f *Frame) PixelFormat() int32  { return int32(f.c.format) }
