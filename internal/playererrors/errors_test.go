package playererrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsSetupErrorDetectsWrapped(t *testing.T) {
	err := NewSetupError("avformat_open_input", errors.New("no such file"))
	wrapped := fmt.Errorf("opening input: %w", err)
	if !IsSetupError(wrapped) {
		t.Fatal("expected wrapped SetupError to be detected")
	}
}

func TestIsDecodeErrorThroughTwoLayers(t *testing.T) {
	err := NewDecodeError("avcodec_send_packet", errors.New("invalid data"))
	wrapped := fmt.Errorf("layer one: %w", fmt.Errorf("layer two: %w", err))
	if !IsDecodeError(wrapped) {
		t.Fatal("expected DecodeError to survive two wrapping layers")
	}
}

func TestIsEngineErrorRejectsPlainError(t *testing.T) {
	if IsEngineError(errors.New("plain")) {
		t.Fatal("plain error must not classify as an engine error")
	}
	if IsEngineError(nil) {
		t.Fatal("nil must not classify as an engine error")
	}
}

func TestSeekErrorUnwraps(t *testing.T) {
	cause := errors.New("avformat_seek_file failed")
	err := NewSeekError("seek_file", cause)
	if !errors.Is(err, cause) {
		t.Fatal("SeekError should unwrap to its cause")
	}
	if !IsSeekError(err) {
		t.Fatal("expected IsSeekError to recognize the error")
	}
}

func TestDifferentKindsDoNotCrossClassify(t *testing.T) {
	decodeErr := NewDecodeError("op", errors.New("x"))
	if IsSetupError(decodeErr) {
		t.Fatal("a DecodeError must not classify as a SetupError")
	}
}
