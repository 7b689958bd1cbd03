//go:build libmpv

package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	mpv "github.com/gen2brain/go-mpv"

	"github.com/mediabridge/avbridge/internal/source"
)

const (
	mpvPauseProperty    = "pause"
	mpvPositionProperty = "time-pos"
	mpvDurationProperty = "duration"
	mpvVolumeProperty   = "volume"
	mpvCacheProperty    = "paused-for-cache"
)

// MPV wraps an in-process libmpv instance. It handles every source type
// except raw bundled resources.
type MPV struct {
	log    *slog.Logger
	client *mpv.Mpv

	mu       sync.Mutex
	status   Status
	listener Listener
	loaded   bool

	releaseOnce sync.Once
	eventLoopWG sync.WaitGroup
}

func newMPV(opts Options, log *slog.Logger) (Engine, error) {
	client := mpv.New()
	if client == nil {
		return nil, errors.New("engine: create libmpv instance")
	}

	_ = client.SetOptionString("terminal", "no")
	_ = client.SetOptionString("keep-open", "no")
	_ = client.SetOptionString("audio-display", "no")
	if !opts.Video {
		_ = client.SetOptionString("video", "no")
	}

	if err := client.Initialize(); err != nil {
		client.TerminateDestroy()
		return nil, fmt.Errorf("engine: initialize libmpv: %w", err)
	}

	e := &MPV{
		log:    log,
		client: client,
		status: StatusIdle,
	}

	_ = client.RequestEvent(mpv.EventEnd, true)
	_ = client.ObserveProperty(0, mpvCacheProperty, mpv.FormatFlag)

	e.eventLoopWG.Add(1)
	go e.eventLoop()

	return e, nil
}

func (e *MPV) SetSource(cfg source.Config) error {
	if cfg.Type == source.TypeRawResource {
		return fmt.Errorf("%w: %s", ErrUnsupportedSource, cfg.Type)
	}

	// Pause before swapping the playlist so a previous playWhenReady
	// does not leak into the new source.
	if err := e.client.SetPropertyString(mpvPauseProperty, "yes"); err != nil {
		return fmt.Errorf("engine: set pause before load: %w", err)
	}
	if err := e.client.Command([]string{"loadfile", cfg.URI, "replace"}); err != nil {
		return fmt.Errorf("engine: load %q: %w", cfg.URI, err)
	}
	return nil
}

func (e *MPV) Prepare() error {
	// loadfile already kicked off demuxing; readiness is reported
	// through the status stream once the file is loaded.
	return nil
}

func (e *MPV) SetPlayWhenReady(play bool) {
	value := "yes"
	if play {
		value = "no"
	}
	if err := e.client.SetPropertyString(mpvPauseProperty, value); err != nil {
		e.log.Warn("failed to toggle playback", "error", err)
	}
}

func (e *MPV) Stop() {
	if err := e.client.Command([]string{"stop"}); err != nil {
		e.log.Warn("failed to stop playback", "error", err)
	}
	e.mu.Lock()
	e.loaded = false
	e.mu.Unlock()
	e.setStatus(StatusIdle)
}

func (e *MPV) Release() {
	e.releaseOnce.Do(func() {
		e.client.Wakeup()
		e.client.TerminateDestroy()
		e.eventLoopWG.Wait()
	})
}

func (e *MPV) SeekToMS(ms int64) {
	seconds := float64(ms) / 1000.0
	if err := e.client.SetProperty(mpvPositionProperty, mpv.FormatDouble, seconds); err != nil {
		e.log.Warn("failed to seek", "error", err)
	}
}

func (e *MPV) PositionMS() int64 {
	ms, ok := e.readMilliseconds(mpvPositionProperty)
	if !ok {
		return 0
	}
	return ms
}

func (e *MPV) DurationMS() int64 {
	ms, ok := e.readMilliseconds(mpvDurationProperty)
	if !ok {
		return TimeUnset
	}
	return ms
}

func (e *MPV) SetVolume(level float64) {
	if err := e.client.SetProperty(mpvVolumeProperty, mpv.FormatDouble, level*100); err != nil {
		e.log.Warn("failed to set volume", "error", err)
	}
}

// SetRenderTarget accepts a platform window id (int64) and hands it to
// mpv's wid option.
func (e *MPV) SetRenderTarget(target RenderTarget) error {
	wid, ok := target.(int64)
	if !ok {
		return fmt.Errorf("engine: unsupported render target %T, want int64 window id", target)
	}
	if err := e.client.SetOption("wid", mpv.FormatInt64, wid); err != nil {
		return fmt.Errorf("engine: bind window: %w", err)
	}
	return nil
}

func (e *MPV) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

func (e *MPV) SetListener(l Listener) {
	e.mu.Lock()
	e.listener = l
	e.mu.Unlock()
}

func (e *MPV) eventLoop() {
	defer e.eventLoopWG.Done()

	for {
		event := e.client.WaitEvent(0.5)
		if event == nil {
			continue
		}

		switch event.EventID {
		case mpv.EventShutdown:
			return
		case mpv.EventFileLoaded:
			e.mu.Lock()
			e.loaded = true
			e.mu.Unlock()
			e.setStatus(StatusReady)
		case mpv.EventEnd:
			end := event.EndFile()
			switch {
			case end.Reason == mpv.EndFileEOF:
				e.setStatus(StatusEnded)
			case end.Reason == mpv.EndFileError:
				e.notifyError(fmt.Errorf("playback failed: %v", end.Error))
			}
		case mpv.EventPropertyChange:
			prop := event.Property()
			if prop.Name != mpvCacheProperty {
				continue
			}
			stalled, ok := asBool(prop.Data)
			if !ok || !e.isLoaded() {
				continue
			}
			if stalled {
				e.setStatus(StatusBuffering)
			} else {
				e.setStatus(StatusReady)
			}
		}
	}
}

func (e *MPV) isLoaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loaded
}

func (e *MPV) setStatus(s Status) {
	e.mu.Lock()
	e.status = s
	l := e.listener
	e.mu.Unlock()
	if l != nil {
		l.OnStatusChanged(s)
	}
}

func (e *MPV) notifyError(err error) {
	e.mu.Lock()
	l := e.listener
	e.mu.Unlock()
	if l != nil {
		l.OnEngineError(err)
	}
}

func (e *MPV) readMilliseconds(property string) (int64, bool) {
	value, err := e.client.GetProperty(property, mpv.FormatDouble)
	if err != nil {
		if !errors.Is(err, mpv.ErrPropertyUnavailable) && !errors.Is(err, mpv.ErrPropertyNotFound) {
			e.log.Warn("failed to read property", "property", property, "error", err)
		}
		return 0, false
	}

	seconds, ok := asFloat64(value)
	if !ok || math.IsNaN(seconds) || seconds < 0 {
		return 0, false
	}
	return int64(math.Round(seconds * 1000)), true
}

func asFloat64(value any) (float64, bool) {
	switch cast := value.(type) {
	case float64:
		return cast, true
	case float32:
		return float64(cast), true
	case int:
		return float64(cast), true
	case int64:
		return float64(cast), true
	default:
		return 0, false
	}
}

func asBool(value any) (bool, bool) {
	switch cast := value.(type) {
	case bool:
		return cast, true
	case int:
		return cast != 0, true
	case int64:
		return cast != 0, true
	default:
		return false, false
	}
}

// Verify MPV implements Engine at compile time.
var _ Engine = (*MPV)(nil)
