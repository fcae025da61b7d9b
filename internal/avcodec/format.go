// Package avcodec binds libavformat/libavcodec/libswresample/libswscale
// directly via cgo, the same technique the teacher repo uses for its
// cgo-based live audio output path, generalized here to cover input
// demuxing and decoding. It exposes exactly the demux/decode contract
// SPEC_FULL.md §6 names: Open/FindStreamInfo/FindBestStream/ReadFrame/
// SeekFile, per-codec decoders, a resampler, and a scaler — so the rest of
// the engine never touches a C.* type directly.
package avcodec

/*
#cgo pkg-config: libavformat libavcodec libavutil libswresample libswscale
#include <libavformat/avformat.h>
#include <libavcodec/avcodec.h>
#include <libavutil/opt.h>
#include <libavutil/channel_layout.h>
#include <libavutil/samplefmt.h>
#include <libavutil/imgutils.h>
#include <libswresample/swresample.h>
#include <libswscale/swscale.h>

// av_err2str is a variadic macro in C headers; wrap it in a real function
// so cgo can call it.
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
	"unsafe"

	"github.com/kestrelav/avplay/internal/playererrors"
)

// MediaType mirrors AVMEDIA_TYPE_{AUDIO,VIDEO} for FindBestStream.
type MediaType int

const (
	MediaAudio MediaType = iota
	MediaVideo
)

// Rational mirrors an AVRational: num/den seconds-per-unit.
type Rational struct {
	Num, Den int32
}

// Seconds returns q2d(r): the rational as a float64 number of seconds per
// timestamp unit.
func (r Rational) Seconds() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// ErrEOF is returned by ReadFrame when the demuxer has reached end of
// stream with no I/O error — the caller should sleep-retry (spec §4.4),
// not treat this as fatal.
var ErrEOF = io.EOF

// FormatContext wraps an opened AVFormatContext.
type FormatContext struct {
	ctx *C.AVFormatContext
	url string
}

// Open opens url (a local file path) and reads its container header.
func Open(url string) (*FormatContext, error) {
	f := &FormatContext{url: url}
	cURL := C.CString(url)
	defer C.free(unsafe.Pointer(cURL))

	if ret := C.avformat_open_input(&f.ctx, cURL, nil, nil); ret < 0 {
		return nil, playererrors.NewSetupError("avformat_open_input", fmt.Errorf("%s: %s", url, C.GoString(C.av_error_str(ret))))
	}
	return f, nil
}

// FindStreamInfo populates stream codec parameters by probing the first
// part of the container; required before FindBestStream/decoder setup can
// see accurate parameters for short or oddly-muxed files.
func (f *FormatContext) FindStreamInfo() error {
	if ret := C.avformat_find_stream_info(f.ctx, nil); ret < 0 {
		return playererrors.NewSetupError("avformat_find_stream_info", fmt.Errorf("%s", C.GoString(C.av_error_str(ret))))
	}
	return nil
}

// FindBestStream returns the index of the best stream of the given media
// type, or -1 if none exists.
func (f *FormatContext) FindBestStream(kind MediaType) int {
	avKind := C.AVMEDIA_TYPE_AUDIO
	if kind == MediaVideo {
		avKind = C.AVMEDIA_TYPE_VIDEO
	}
	ret := C.av_find_best_stream(f.ctx, int32(avKind), -1, -1, nil, 0)
	return int(ret)
}

// StreamTimeBase returns the time_base of the given stream index.
func (f *FormatContext) StreamTimeBase(streamIndex int) Rational {
	stream := f.streamAt(streamIndex)
	if stream == nil {
		return Rational{}
	}
	return Rational{Num: int32(stream.time_base.num), Den: int32(stream.time_base.den)}
}

// CodecParameters exposes the subset of AVCodecParameters the decoder and
// scaler/resampler constructors need, without leaking C types.
type CodecParameters struct {
	CodecID       int32
	Width, Height int32
	PixelFormat   int32
	SampleRate    int32
	Channels      int32
	SampleFormat  int32
}

// StreamCodecParameters returns the decode-relevant codec parameters for a
// stream index.
func (f *FormatContext) StreamCodecParameters(streamIndex int) (CodecParameters, error) {
	stream := f.streamAt(streamIndex)
	if stream == nil {
		return CodecParameters{}, playererrors.NewSetupError("stream_codec_parameters", fmt.Errorf("no stream at index %d", streamIndex))
	}
	cp := stream.codecpar
	return CodecParameters{
		CodecID:      int32(cp.codec_id),
		Width:        int32(cp.width),
		Height:       int32(cp.height),
		PixelFormat:  int32(cp.format),
		SampleRate:   int32(cp.sample_rate),
		Channels:     int32(cp.ch_layout.nb_channels),
		SampleFormat: int32(cp.format),
	}
}

func (f *FormatContext) streamAt(index int) *C.AVStream {
	if index < 0 || index >= int(f.ctx.nb_streams) {
		return nil
	}
	// AVStream** indexing via pointer arithmetic on the streams array.
	base := uintptr(unsafe.Pointer(f.ctx.streams))
	sz := unsafe.Sizeof(uintptr(0))
	streamPtr := (**C.AVStream)(unsafe.Pointer(base + uintptr(index)*sz))
	return *streamPtr
}

// ReadFrame reads one packet into pkt. It returns ErrEOF at end of stream
// (transient, per spec §4.4/§7) and a wrapped *playererrors.IOError on a
// genuine I/O failure.
func (f *FormatContext) ReadFrame(pkt *Packet) error {
	pkt.ensureAlloc()
	ret := C.av_read_frame(f.ctx, pkt.cpkt)
	if ret == C.AVERROR_EOF {
		return ErrEOF
	}
	if ret < 0 {
		return playererrors.NewIOError("av_read_frame", fmt.Errorf("%s", C.GoString(C.av_error_str(ret))))
	}
	pkt.syncFromC()
	return nil
}

// SeekFile seeks the underlying container so that the next ReadFrame near
// streamIndex lands within [minTS, maxTS] around targetTS, all in
// streamIndex's time_base units.
func (f *FormatContext) SeekFile(streamIndex int, minTS, targetTS, maxTS int64, flags int) error {
	ret := C.avformat_seek_file(f.ctx, C.int(streamIndex), C.int64_t(minTS), C.int64_t(targetTS), C.int64_t(maxTS), C.int(flags))
	if ret < 0 {
		return fmt.Errorf("avformat_seek_file: %s", C.GoString(C.av_error_str(ret)))
	}
	return nil
}

// ReadPause/ReadPlay map onto av_read_pause/av_read_play: the demuxer
// worker calls ReadPause before it waits out a pause and ReadPlay after.
func (f *FormatContext) ReadPause() { C.av_read_pause(f.ctx) }
func (f *FormatContext) ReadPlay()  { C.av_read_play(f.ctx) }

// Close releases the format context.
func (f *FormatContext) Close() {
	if f.ctx != nil {
		C.avformat_close_input(&f.ctx)
	}
}

const (
	SeekFlagBackward = C.AVSEEK_FLAG_BACKWARD
	SeekFlagAny      = C.AVSEEK_FLAG_ANY
)
