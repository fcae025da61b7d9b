package avcodec

/*
#include <libavutil/frame.h>
#include <libavutil/error.h>
#include <libswscale/swscale.h>

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

// Scaler wraps an SwsContext, converting decoded video frames from their
// native pixel format/size to the output format the renderer's texture
// upload expects (spec §4.6: "decoded pictures must be converted to the
// display's native plane layout before upload").
type Scaler struct {
	ctx                          *C.struct_SwsContext
	srcW, srcH, dstW, dstH       int32
	srcFmt, dstFmt               int32
}

// NewScaler builds a scaler/converter from the decoder's native geometry
// and pixel format to the requested output geometry and pixel format.
func NewScaler(srcW, srcH, srcFmt, dstW, dstH, dstFmt int32) (*Scaler, error) {
	ctx := C.sws_getContext(
		C.int(srcW), C.int(srcH), int32(srcFmt),
		C.int(dstW), C.int(dstH), int32(dstFmt),
		C.SWS_BILINEAR, nil, nil, nil)
	if ctx == nil {
		return nil, playererrors.NewSetupError("sws_getContext", fmt.Errorf("unsupported conversion %dx%d->%dx%d", srcW, srcH, dstW, dstH))
	}
	return &Scaler{ctx: ctx, srcW: srcW, srcH: srcH, dstW: dstW, dstH: dstH, srcFmt: srcFmt, dstFmt: dstFmt}, nil
}

// Picture is a display-ready decoded video frame: separate Y/U/V planes (or
// a single packed plane, depending on dstFmt) plus their strides, backed by
// pooled buffers the caller must Free once uploaded to a texture.
type Picture struct {
	Width, Height int
	PTS           int64
	Planes        [][]byte
	Linesize      []int
}

// Free returns the picture's plane buffers to the pool.
func (p *Picture) Free() {
	for _, plane := range p.Planes {
		bufpoolPut(plane)
	}
	p.Planes = nil
}

// Scale converts one decoded frame into a Picture in the scaler's output
// format.
func (s *Scaler) Scale(f *Frame) (*Picture, error) {
	dstLinesize := make([]C.int, 4)
	dstData := make([]*C.uint8_t, 4)
	buffers := make([][]byte, 0, 3)

	planeSizes := make([]int, 4)
	ret := C.av_image_fill_linesizes((*C.int)(unsafe.Pointer(&dstLinesize[0])), int32(s.dstFmt), C.int(s.dstW))
	if ret < 0 {
		return nil, playererrors.NewDecodeError("av_image_fill_linesizes", fmt.Errorf("%s", C.GoString(C.av_error_str(ret))))
	}

	for i := 0; i < 4; i++ {
		if dstLinesize[i] == 0 {
			dstData[i] = nil
			continue
		}
		planeSizes[i] = int(dstLinesize[i]) * int(s.dstH)
		buf := bufpoolGet(planeSizes[i])
		buffers = append(buffers, buf)
		dstData[i] = (*C.uint8_t)(unsafe.Pointer(&buf[0]))
	}

	C.sws_scale(s.ctx, &f.c.data[0], &f.c.linesize[0], 0, C.int(s.srcH),
		&dstData[0], &dstLinesize[0])

	linesizes := make([]int, 0, len(buffers))
	for i := range buffers {
		linesizes = append(linesizes, int(dstLinesize[i]))
	}

	return &Picture{
		Width:    int(s.dstW),
		Height:   int(s.dstH),
		PTS:      f.PTS(),
		Planes:   buffers,
		Linesize: linesizes,
	}, nil
}

// Close releases the scaler context.
func (s *Scaler) Close() {
	if s.ctx != nil {
		C.sws_freeContext(s.ctx)
	}
}
