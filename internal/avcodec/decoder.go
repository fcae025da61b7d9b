package avcodec

/*
#include <errno.h>
#include <libavcodec/avcodec.h>

// av_err2str is a macro, so we need a wrapper function. cgo resolves C.*
// names against this file's own preamble, so this is redeclared in every
// cgo file that needs it rather than shared from format.go's preamble.
static inline const char* av_error_str(int errnum) {
    static char str[AV_ERROR_MAX_STRING_SIZE];
    av_make_error_string(str, AV_ERROR_MAX_STRING_SIZE, errnum);
    return str;
}
*/
import "C"

import (
	"fmt"
	"io"

	"github.com/kestrelav/avplay/internal/playererrors"
)

// ErrAgain is returned by ReceiveFrame when the decoder needs more input
// before it can emit another frame — not an error, per spec §4.5/§4.6's
// decode-loop contract ("drain with receive_frame until EAGAIN/EOF").
var ErrAgain = fmt.Errorf("avcodec: decoder needs more input")

// Decoder wraps an AVCodecContext for a single stream, generalized from the
// teacher's cgo encode-side call shape (alloc context, open, send/receive)
// in audio/player.go to the decode direction.
type Decoder struct {
	ctx *C.AVCodecContext
}

// NewDecoder allocates and opens a decoder for the given codec parameters.
func NewDecoder(params CodecParameters) (*Decoder, error) {
	codec := C.avcodec_find_decoder(C.enum_AVCodecID(params.CodecID))
	if codec == nil {
		return nil, playererrors.NewSetupError("avcodec_find_decoder", fmt.Errorf("codec id %d not supported", params.CodecID))
	}

	ctx := C.avcodec_alloc_context3(codec)
	if ctx == nil {
		return nil, playererrors.NewSetupError("avcodec_alloc_context3", fmt.Errorf("allocation failed"))
	}

	ctx.width = C.int(params.Width)
	ctx.height = C.int(params.Height)
	ctx.pix_fmt = int32(params.PixelFormat)
	ctx.sample_rate = C.int(params.SampleRate)
	ctx.sample_fmt = int32(params.SampleFormat)
	C.av_channel_layout_default(&ctx.ch_layout, C.int(params.Channels))

	if ret := C.avcodec_open2(ctx, codec, nil); ret < 0 {
		C.avcodec_free_context(&ctx)
		return nil, playererrors.NewSetupError("avcodec_open2", fmt.Errorf("%s", C.GoString(C.av_error_str(ret))))
	}

	return &Decoder{ctx: ctx}, nil
}

// SendPacket feeds one compressed packet to the decoder. A nil/flush packet
// flushes internal decoder state without resetting ctx (spec §4.5: "a flush
// sentinel must reset decoder state, not tear down the pipeline").
func (d *Decoder) SendPacket(pkt *Packet) error {
	if pkt == nil || pkt.Kind == PacketFlush {
		C.avcodec_flush_buffers(d.ctx)
		return nil
	}

	cpkt := pkt.cAVPacket()
	defer C.av_packet_free(&cpkt)

	ret := C.avcodec_send_packet(d.ctx, cpkt)
	if ret < 0 {
		return playererrors.NewDecodeError("avcodec_send_packet", fmt.Errorf("%s", C.GoString(C.av_error_str(ret))))
	}
	return nil
}

// ReceiveFrame pulls the next decoded frame out of the decoder. It returns
// ErrAgain when the decoder has no frame ready (caller should SendPacket
// again) and io.EOF once the decoder has been fully drained after a flush.
func (d *Decoder) ReceiveFrame() (*Frame, error) {
	f := newFrame()
	ret := C.avcodec_receive_frame(d.ctx, f.c)
	switch {
	case ret == C.AVERROR_EOF:
		f.Free()
		return nil, io.EOF
	case ret == -C.EAGAIN:
		f.Free()
		return nil, ErrAgain
	case ret < 0:
		f.Free()
		return nil, playererrors.NewDecodeError("avcodec_receive_frame", fmt.Errorf("%s", C.GoString(C.av_error_str(ret))))
	}
	return f, nil
}

// Close releases the decoder context.
func (d *Decoder) Close() {
	if d.ctx != nil {
		C.avcodec_free_context(&d.ctx)
	}
}
