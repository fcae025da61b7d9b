package avcodec

/*
#include <libavutil/channel_layout.h>
#include <libavutil/samplefmt.h>
#include <libavutil/error.h>
#include <libswresample/swresample.h>

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
	"unsafe"

	"github.com/kestrelav/avplay/internal/playererrors"
)

// Resampler wraps an SwrContext, converting decoded audio frames to the
// fixed output format the audio pipeline's ring buffer expects (spec §4.5:
// "decoded audio must be resampled to the output device's native format").
type Resampler struct {
	ctx                       *C.struct_SwrContext
	outSampleRate             int32
	outChannels               int32
	outSampleFmt              int32
}

// NewResampler builds a resampler from the source stream's native format to
// the requested output format.
func NewResampler(src CodecParameters, outSampleRate, outChannels, outSampleFmt int32) (*Resampler, error) {
	var inLayout, outLayout C.AVChannelLayout
	C.av_channel_layout_default(&inLayout, C.int(src.Channels))
	C.av_channel_layout_default(&outLayout, C.int(outChannels))

	var ctx *C.struct_SwrContext
	ret := C.swr_alloc_set_opts2(&ctx,
		&outLayout, int32(outSampleFmt), C.int(outSampleRate),
		&inLayout, int32(src.SampleFormat), C.int(src.SampleRate),
		0, nil)
	if ret < 0 || ctx == nil {
		return nil, playererrors.NewSetupError("swr_alloc_set_opts2", fmt.Errorf("%s", C.GoString(C.av_error_str(ret))))
	}

	if ret := C.swr_init(ctx); ret < 0 {
		C.swr_free(&ctx)
		return nil, playererrors.NewSetupError("swr_init", fmt.Errorf("%s", C.GoString(C.av_error_str(ret))))
	}

	return &Resampler{ctx: ctx, outSampleRate: outSampleRate, outChannels: outChannels, outSampleFmt: outSampleFmt}, nil
}

// Convert resamples one decoded audio frame, returning a freshly pooled
// interleaved (or planar, depending on outSampleFmt) output buffer sized to
// exactly the samples produced.
func (r *Resampler) Convert(f *Frame) ([]byte, int, error) {
	inSamples := C.int(f.NumSamples())
	maxOutSamples := C.swr_get_out_samples(r.ctx, inSamples)
	if maxOutSamples < 0 {
		return nil, 0, playererrors.NewDecodeError("swr_get_out_samples", fmt.Errorf("%s", C.GoString(C.av_error_str(maxOutSamples))))
	}

	bytesPerSample := C.av_get_bytes_per_sample(int32(r.outSampleFmt))
	outBufSize := int(maxOutSamples) * int(r.outChannels) * int(bytesPerSample)
	if outBufSize <= 0 {
		return nil, 0, nil
	}

	out := bufpoolGet(outBufSize)
	outPtr := (*C.uint8_t)(unsafe.Pointer(&out[0]))

	inData := &f.c.data[0]

	gotSamples := C.swr_convert(r.ctx, &outPtr, maxOutSamples, inData, inSamples)
	if gotSamples < 0 {
		bufpoolPut(out)
		return nil, 0, playererrors.NewDecodeError("swr_convert", fmt.Errorf("%s", C.GoString(C.av_error_str(gotSamples))))
	}

	outBytes := int(gotSamples) * int(r.outChannels) * int(bytesPerSample)
	return out[:outBytes], int(gotSamples), nil
}

// Close releases the resampler context.
func (r *Resampler) Close() {
	if r.ctx != nil {
		C.swr_free(&r.ctx)
	}
}
