// Package audioout binds the platform audio output device via
// gordonklaus/portaudio's pull-callback stream API, mirroring the
// teacher's own microphone (input) usage in audio/microphone.go into an
// output-device usage — the concrete instance of SPEC_FULL.md's §6
// platform audio contract (C9).
package audioout

import (
	"log/slog"

	"github.com/gordonklaus/portaudio"
	"github.com/kestrelav/avplay/internal/playererrors"
)

// FillFunc writes up to len(buf) bytes of S16 interleaved audio samples
// into buf and returns the number written; the callback zero-fills the
// rest of the device buffer. It must not block on pipeline locks beyond decoding
// and resampling one packet (spec §5: "Audio callback does not suspend on
// pipeline locks").
type FillFunc func(buf []byte) int

// Device wraps an open portaudio output stream.
type Device struct {
	stream     *portaudio.Stream
	sampleRate float64
	channels   int
	fill       FillFunc
	log        *slog.Logger
}

// Open opens the named output device (empty name = system default) at
// the given sample rate/channel count, with samples=1024 frames per
// callback per spec §6's "samples=1024" contract.
func Open(log *slog.Logger, deviceName string, sampleRate float64, channels int, fill FillFunc) (*Device, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, playererrors.NewSetupError("portaudio_initialize", err)
	}

	outDevice, err := resolveOutputDevice(deviceName)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}

	d := &Device{sampleRate: sampleRate, channels: channels, fill: fill, log: log}

	params := portaudio.LowLatencyParameters(nil, outDevice)
	params.Output.Channels = channels
	params.SampleRate = sampleRate
	params.FramesPerBuffer = 1024

	stream, err := portaudio.OpenStream(params, d.callback)
	if err != nil {
		portaudio.Terminate()
		return nil, playererrors.NewSetupError("portaudio_open_stream", err)
	}
	d.stream = stream

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, playererrors.NewSetupError("portaudio_start_stream", err)
	}

	return d, nil
}

func resolveOutputDevice(name string) (*portaudio.DeviceInfo, error) {
	if name == "" {
		dev, err := portaudio.DefaultOutputDevice()
		if err != nil {
			return nil, playererrors.NewSetupError("default_output_device", err)
		}
		return dev, nil
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, playererrors.NewSetupError("enumerate_devices", err)
	}
	for _, dev := range devices {
		if dev.Name == name && dev.MaxOutputChannels > 0 {
			return dev, nil
		}
	}
	return nil, playererrors.NewSetupError("resolve_output_device", errDeviceNotFound(name))
}

type errDeviceNotFound string

func (e errDeviceNotFound) Error() string { return "output device not found: " + string(e) }

// callback is invoked on portaudio's native audio thread; it converts the
// int16 frame buffer portaudio hands us into the byte-oriented FillFunc
// contract the audio pipeline already speaks.
func (d *Device) callback(out []int16) {
	buf := make([]byte, len(out)*2)
	n := d.fill(buf)
	for i := 0; i*2 < n; i++ {
		out[i] = int16(buf[i*2]) | int16(buf[i*2+1])<<8
	}
	for i := n / 2; i < len(out); i++ {
		out[i] = 0
	}
}

// Pause stops the stream without closing it, matching the Running↔Paused
// transition's "mute/unmute audio output" step (spec §4.7).
func (d *Device) Pause() error {
	if err := d.stream.Stop(); err != nil {
		return playererrors.NewSetupError("portaudio_stop_stream", err)
	}
	return nil
}

// Resume restarts a paused stream.
func (d *Device) Resume() error {
	if err := d.stream.Start(); err != nil {
		return playererrors.NewSetupError("portaudio_start_stream", err)
	}
	return nil
}

// Close stops and releases the stream and terminates the portaudio
// runtime.
func (d *Device) Close() {
	if d.stream != nil {
		d.stream.Close()
	}
	portaudio.Terminate()
}
