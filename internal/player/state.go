// Package player implements the playback engine: the demuxer, audio and
// video pipelines, the seek/pause control loop, and the shared state that
// ties them together, grounded on original_source/player/player.c and the
// teacher's goroutine-per-stage shape.
package player

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kestrelav/avplay/internal/avcodec"
	"github.com/kestrelav/avplay/internal/clock"
	"github.com/kestrelav/avplay/internal/queue"
)

// SyncType selects which clock drives audio/video synchronization.
type SyncType int

const (
	AudioMaster SyncType = iota
	VideoMaster
	ExternalMaster
)

// SyncState holds the process-wide sync selection and the running audio
// and video clock estimates, owned exclusively by PlayerState rather than
// a package-level global (spec §9).
type SyncState struct {
	mu         sync.Mutex
	Type       SyncType
	audioClock float64
	videoClock float64
}

func (s *SyncState) SetAudioClock(v float64) {
	s.mu.Lock()
	s.audioClock = v
	s.mu.Unlock()
}

func (s *SyncState) AudioClock() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.audioClock
}

func (s *SyncState) SetVideoClock(v float64) {
	s.mu.Lock()
	s.videoClock = v
	s.mu.Unlock()
}

func (s *SyncState) VideoClock() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.videoClock
}

// audioClockSource adapts AudioState's running clock estimate (accounting
// for unplayed buffered bytes) to clock.ClockSource, so MasterClock never
// depends on AudioState directly (spec §9).
type audioClockSource struct {
	audio *AudioState
}

func (a audioClockSource) Value() float64 { return a.audio.Clock() }

// AudioState holds the audio pipeline's decode/resample/output state.
type AudioState struct {
	mu sync.Mutex

	StreamIndex int
	TimeBase    avcodec.Rational

	decoder    *avcodec.Decoder
	resampler  *avcodec.Resampler
	sampleRate int32
	channels   int32

	buffer      []byte
	bufferSize  int
	bufferIndex int

	clockPTS     float64
	drift        *clock.AudioDriftCorrector
	masterIsSelf bool
}

// Clock returns the current audio presentation clock: the PTS most
// recently written, corrected for bytes already handed to the output
// device but not yet played (spec §4.3's get_audio_clock).
func (a *AudioState) Clock() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	bytesPerSecond := float64(a.sampleRate) * float64(a.channels) * 2
	if bytesPerSecond == 0 {
		return a.clockPTS
	}
	unplayed := float64(a.bufferSize - a.bufferIndex)
	return a.clockPTS - unplayed/bytesPerSecond
}

// VideoState holds the video pipeline's decode/scale/display timing state.
type VideoState struct {
	mu sync.Mutex

	StreamIndex int
	TimeBase    avcodec.Rational

	decoder *avcodec.Decoder
	scaler  *avcodec.Scaler
	queue   *queue.PictureQueue

	videoClock float64 // predicted PTS for the next frame

	frameTimer       float64
	frameLastDelay   float64
	frameLastPTS     float64
	videoCurrentPTS  float64
	videoCurrentTime time.Time
}

// Reset mutates VideoState's timing fields in place for a post-seek
// restart; it returns nothing (spec §9's Open-Question resolution —
// callers re-read what they need via ClockSource rather than receiving a
// return value).
func (v *VideoState) Reset(now time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.frameTimer = float64(now.UnixNano()) / 1e9
	v.frameLastDelay = 0.040
	v.videoCurrentPTS = math.NaN()
	v.videoCurrentTime = now
}

// SeekRequest carries a pending seek's parameters under PlayerState's seek
// fields.
type SeekRequest struct {
	Pos   int64 // target, in AV_TIME_BASE (microseconds)
	Rel   int64
	Flags int
}

// PlayerState is the single owner of both sub-states, the sync state, and
// the seek/pause/quit control fields (spec §3/§9).
type PlayerState struct {
	Format *avcodec.FormatContext

	Audio *AudioState
	Video *VideoState
	Sync  *SyncState

	AudioPQ *queue.PacketQueue
	VideoPQ *queue.PacketQueue

	External *clock.ExternalClock
	Master   *clock.MasterClock

	seekMu       sync.Mutex
	seekReq      bool
	seekComplete bool
	seekPending  SeekRequest

	pauseMu   sync.Mutex
	pauseCond *sync.Cond
	paused    bool

	Quit *atomic.Bool
}

// NewPlayerState wires together a freshly opened format context and its
// selected audio/video sub-states into one owning PlayerState.
func NewPlayerState(format *avcodec.FormatContext) *PlayerState {
	ps := &PlayerState{
		Format:   format,
		Sync:     &SyncState{Type: AudioMaster},
		External: clock.NewExternalClock(),
		Quit:     &atomic.Bool{},
	}
	ps.pauseCond = sync.NewCond(&ps.pauseMu)
	ps.seekComplete = true
	return ps
}

// AttachAudio finishes wiring an AudioState into the player and sets the
// master clock to prefer it, per spec §4.3.
func (ps *PlayerState) AttachAudio(a *AudioState) {
	ps.Audio = a
	ps.Master = &clock.MasterClock{Audio: audioClockSource{audio: a}, External: ps.External}
}

// AttachVideoOnly wires the external clock as master when there is no
// audio stream (spec §4.3's fallback).
func (ps *PlayerState) AttachVideoOnly() {
	ps.Sync.Type = VideoMaster
	ps.Master = &clock.MasterClock{External: ps.External}
}

// MasterClockValue returns the current master-clock time in seconds.
func (ps *PlayerState) MasterClockValue() float64 {
	if ps.Master == nil {
		return ps.External.Value()
	}
	return ps.Master.Value()
}

// IsPaused reports the current pause state.
func (ps *PlayerState) IsPaused() bool {
	ps.pauseMu.Lock()
	defer ps.pauseMu.Unlock()
	return ps.paused
}

// TogglePause flips the pause state and wakes every waiter, per the
// Running↔Paused transition in spec §4.7.
func (ps *PlayerState) TogglePause() {
	ps.pauseMu.Lock()
	ps.paused = !ps.paused
	if ps.paused {
		ps.External.Pause()
	} else {
		ps.External.Resume()
	}
	ps.pauseCond.Broadcast()
	ps.pauseMu.Unlock()
}

// WaitIfPaused blocks while paused && !quit, the one approved way to hold
// the pipeline steady (spec §4.7).
func (ps *PlayerState) WaitIfPaused() {
	ps.pauseMu.Lock()
	for ps.paused && !ps.Quit.Load() {
		ps.pauseCond.Wait()
	}
	ps.pauseMu.Unlock()
}

// RequestSeek coalesces a new seek request; it is a no-op if a seek is
// already pending (spec §4.7: "only if !seek_req && seek_complete").
func (ps *PlayerState) RequestSeek(req SeekRequest) bool {
	ps.seekMu.Lock()
	defer ps.seekMu.Unlock()
	if ps.seekReq || !ps.seekComplete {
		return false
	}
	ps.seekReq = true
	ps.seekComplete = false
	ps.seekPending = req
	return true
}

// TakeSeekRequest atomically reads and clears the pending seek flag (but
// not seekComplete, which the caller sets once the seek has actually been
// performed).
func (ps *PlayerState) TakeSeekRequest() (SeekRequest, bool) {
	ps.seekMu.Lock()
	defer ps.seekMu.Unlock()
	if !ps.seekReq {
		return SeekRequest{}, false
	}
	ps.seekReq = false
	return ps.seekPending, true
}

// CompleteSeek marks the pending seek as finished.
func (ps *PlayerState) CompleteSeek() {
	ps.seekMu.Lock()
	ps.seekComplete = true
	ps.seekMu.Unlock()
}

// RequestQuit sets the shared quit flag and wakes every pause waiter so
// workers blocked in WaitIfPaused observe it promptly (spec §4.7/§5).
func (ps *PlayerState) RequestQuit() {
	ps.Quit.Store(true)
	ps.pauseMu.Lock()
	ps.pauseCond.Broadcast()
	ps.pauseMu.Unlock()
}
