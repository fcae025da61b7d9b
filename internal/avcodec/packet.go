package avcodec

/*
#include <libavcodec/avcodec.h>
*/
import "C"

import "unsafe"

// PacketKind distinguishes a normal compressed-data packet from the flush
// sentinel carried through a queue after a seek (spec §3/§9: "Sentinel
// packets must be modelled as an explicit variant rather than a nullable
// data pointer").
type PacketKind int

const (
	PacketData PacketKind = iota
	PacketFlush
)

// Packet is the demux/decode contract's compressed-data unit. It owns a
// pooled byte buffer holding a copy of the compressed payload (see
// internal/bufpool) and the AVPacket ReadFrame filled. Handing it to a
// decoder copies Data into a fresh AVPacket (see cAVPacket).
type Packet struct {
	StreamIndex int
	PTS, DTS    int64
	Size        int
	Kind        PacketKind
	Data        []byte

	cpkt *C.AVPacket
}

// NewFlushPacket builds the flush sentinel for a given stream.
func NewFlushPacket(streamIndex int) *Packet {
	return &Packet{StreamIndex: streamIndex, Kind: PacketFlush}
}

// NewPacket allocates an empty data packet ready to be filled by
// FormatContext.ReadFrame.
func NewPacket() *Packet {
	return &Packet{Kind: PacketData}
}

func (p *Packet) ensureAlloc() {
	if p.cpkt == nil {
		p.cpkt = C.av_packet_alloc()
	} else {
		C.av_packet_unref(p.cpkt)
	}
}

// syncFromC copies the fields ReadFrame needs out of the underlying
// AVPacket into the Go-visible struct. The compressed payload itself is
// copied into a pooled []byte so that Free can return the C packet
// reference immediately without the Go side needing cgo at decode time.
func (p *Packet) syncFromC() {
	c := p.cpkt
	p.StreamIndex = int(c.stream_index)
	p.PTS = int64(c.pts)
	p.DTS = int64(c.dts)
	p.Size = int(c.size)
	p.Kind = PacketData

	if p.Size > 0 {
		buf := bufpoolGet(p.Size)
		src := unsafe.Slice((*byte)(unsafe.Pointer(c.data)), p.Size)
		copy(buf, src)
		p.Data = buf
	} else {
		p.Data = nil
	}
}

// cAVPacket lazily re-creates a native AVPacket view over p.Data, used when
// handing the packet to a Decoder.SendPacket. Decoders that only need the
// Go-side Data/PTS/DTS can skip this; it's here because libavcodec's
// avcodec_send_packet signature requires an *AVPacket.
func (p *Packet) cAVPacket() *C.AVPacket {
	pkt := C.av_packet_alloc()
	if len(p.Data) > 0 {
		C.av_new_packet(pkt, C.int(len(p.Data)))
		dst := unsafe.Slice((*byte)(unsafe.Pointer(pkt.data)), len(p.Data))
		copy(dst, p.Data)
	}
	pkt.pts = C.int64_t(p.PTS)
	pkt.dts = C.int64_t(p.DTS)
	pkt.stream_index = C.int(p.StreamIndex)
	return pkt
}

// Free releases the packet's native and pooled resources. Every packet put
// into a PacketQueue is either later Get and Freed by its consumer, or
// dropped (and Freed) by Flush/destroy — the queue's Q2 invariant.
func (p *Packet) Free() {
	if p.cpkt != nil {
		C.av_packet_free(&p.cpkt)
		p.cpkt = nil
	}
	if p.Data != nil {
		bufpoolPut(p.Data)
		p.Data = nil
	}
}
