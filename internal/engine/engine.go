// Package engine defines the contract of the underlying playback
// engine and the backends that fulfill it.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/mediabridge/avbridge/internal/source"
)

// Status is the engine's raw playback status. Engines may report the
// same status repeatedly; consumers are expected to deduplicate.
type Status int

const (
	// StatusIdle means no source is loaded or playback was stopped.
	StatusIdle Status = iota
	// StatusBuffering means the engine stalled waiting for data.
	StatusBuffering
	// StatusReady means the engine can play immediately.
	StatusReady
	// StatusEnded means the end of the media was reached.
	StatusEnded
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "Idle"
	case StatusBuffering:
		return "Buffering"
	case StatusReady:
		return "Ready"
	case StatusEnded:
		return "Ended"
	default:
		return "Unknown"
	}
}

// TimeUnset is returned by DurationMS while the duration is unknown.
const TimeUnset int64 = math.MinInt64 + 1

// RenderTarget is an opaque handle to the host's rendering sink. Each
// backend documents the concrete types it accepts.
type RenderTarget any

// Listener receives the engine's raw status and error stream. Callbacks
// may arrive on internal engine goroutines; it is the consumer's job to
// marshal them onto its owner context.
type Listener interface {
	OnStatusChanged(status Status)
	OnEngineError(err error)
}

// Engine is the underlying playback engine. Implementations are not
// safe for concurrent mutation; callers must serialize all calls
// through a single execution context.
type Engine interface {
	// SetSource configures the media to open. No I/O happens yet.
	SetSource(cfg source.Config) error
	// Prepare opens the configured source.
	Prepare() error
	// SetPlayWhenReady starts or pauses playback.
	SetPlayWhenReady(play bool)
	// Stop halts playback and discards decode state. The source
	// configuration survives until the next SetSource.
	Stop()
	// Release frees the engine. Terminal; no calls are valid after.
	Release()
	// SeekToMS moves the playback position.
	SeekToMS(ms int64)
	// PositionMS returns the current playback position.
	PositionMS() int64
	// DurationMS returns the media duration, or TimeUnset while
	// unknown.
	DurationMS() int64
	// SetVolume sets the output gain, 0.0 to 1.0.
	SetVolume(level float64)
	// SetRenderTarget binds the host's rendering sink.
	SetRenderTarget(target RenderTarget) error
	// Status returns the engine's current raw status.
	Status() Status
	// SetListener installs the status/error listener.
	SetListener(l Listener)
}

// ErrUnsupportedSource is returned by SetSource when a backend cannot
// open the given source type.
var ErrUnsupportedSource = errors.New("engine: unsupported source type")

// Options configures engine construction.
type Options struct {
	// Video keeps video output enabled on backends that support it.
	Video bool
}

// New builds the named engine backend. An empty name selects beep.
func New(name string, opts Options, log *slog.Logger) (Engine, error) {
	switch name {
	case "mpv":
		return newMPV(opts, log)
	case "beep", "":
		return NewBeep(log), nil
	default:
		return nil, fmt.Errorf("engine: unknown backend %q", name)
	}
}
