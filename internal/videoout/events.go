package videoout

import (
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Command is a user-issued control command decoded from a key or
// window-close event, per spec §4.7's key bindings.
type Command int

const (
	CommandNone Command = iota
	CommandTogglePause
	CommandSeek
	CommandQuit
)

// InputEvent bundles a decoded command with a seek delta (valid only for
// CommandSeek).
type InputEvent struct {
	Cmd      Command
	SeekStep time.Duration
}

// BindInput installs the key and window-close callbacks that translate
// GLFW events into InputEvents delivered on the returned channel: space
// toggles pause, left/right seek -10/+10 s, down/up seek -60/+60 s, and
// Escape, Q or closing the window quit. Mouse input is not handled. The
// channel is buffered so the GLFW callback (which
// must not block) never stalls waiting for a slow consumer.
func (w *Window) BindInput() <-chan InputEvent {
	events := make(chan InputEvent, 16)

	w.win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		var ev InputEvent
		switch key {
		case glfw.KeySpace:
			ev = InputEvent{Cmd: CommandTogglePause}
		case glfw.KeyLeft:
			ev = InputEvent{Cmd: CommandSeek, SeekStep: -10 * time.Second}
		case glfw.KeyRight:
			ev = InputEvent{Cmd: CommandSeek, SeekStep: 10 * time.Second}
		case glfw.KeyDown:
			ev = InputEvent{Cmd: CommandSeek, SeekStep: -60 * time.Second}
		case glfw.KeyUp:
			ev = InputEvent{Cmd: CommandSeek, SeekStep: 60 * time.Second}
		case glfw.KeyEscape, glfw.KeyQ:
			ev = InputEvent{Cmd: CommandQuit}
		default:
			return
		}
		select {
		case events <- ev:
		default:
		}
	})

	w.win.SetCloseCallback(func(_ *glfw.Window) {
		select {
		case events <- InputEvent{Cmd: CommandQuit}:
		default:
		}
	})

	return events
}
