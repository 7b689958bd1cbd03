// Package avplayer bridges a playback engine to an embedding host. It
// guards every command against the playback state machine, serializes
// engine mutations onto a single owner goroutine, and translates the
// engine's raw status stream into edge-triggered lifecycle
// notifications delivered through a delegate.
package avplayer

import (
	"log/slog"
	"sync/atomic"

	"github.com/mediabridge/avbridge/internal/engine"
	"github.com/mediabridge/avbridge/internal/runloop"
	"github.com/mediabridge/avbridge/internal/source"
)

// statusNone means no raw status has been observed yet.
const statusNone = engine.Status(-1)

// Player is the command facade over a playback engine.
//
// Methods may be called from any goroutine. All commands except Destroy
// block until the engine applied them; Destroy is fire-and-forget so a
// teardown never stalls the caller.
type Player struct {
	eng      engine.Engine
	loop     *runloop.Loop
	log      *slog.Logger
	delegate Delegate
	ref      any

	destroyed atomic.Bool

	// The fields below are confined to the loop goroutine.
	state      State
	volume     float64
	muted      bool
	looping    bool
	uri        string
	lastStatus engine.Status
	buffering  bool
}

// New creates a player over the given engine. All engine mutations run
// on lp. Delegate hooks carry ref; a nil delegate drops notifications.
func New(eng engine.Engine, lp *runloop.Loop, delegate Delegate, ref any, log *slog.Logger) *Player {
	p := &Player{
		eng:        eng,
		loop:       lp,
		log:        log,
		delegate:   delegate,
		ref:        ref,
		volume:     1.0,
		state:      StateIdle,
		lastStatus: statusNone,
	}
	eng.SetListener(engineListener{p})
	return p
}

// SetSource resolves uriOrPath, configures the engine and prepares it
// for playback. An implicit Reset runs first. On success the state is
// Prepared and OnPrepared has fired. On any failure the player is reset
// back to Idle and false is returned; the engine is never left half
// configured.
func (p *Player) SetSource(uriOrPath string) bool {
	if !p.alive("setSource") {
		return false
	}

	p.Reset()

	cfg, err := source.Resolve(uriOrPath)
	if err != nil {
		p.log.Warn("failed to resolve source", "uri", uriOrPath, "error", err)
		return false
	}
	p.log.Info("setting source", "uri", uriOrPath, "type", cfg.Type)

	err = p.loop.Run(func() error {
		if err := p.eng.SetSource(cfg); err != nil {
			return err
		}
		if err := p.eng.Prepare(); err != nil {
			return err
		}
		p.eng.SeekToMS(0)
		p.state = StatePrepared
		p.uri = uriOrPath
		p.log.Info("prepared for playback")
		if p.delegate != nil {
			p.delegate.OnPrepared(p.ref)
		}
		return nil
	})
	if err != nil {
		p.log.Warn("failed to load source", "uri", uriOrPath, "error", err)
		p.Reset()
		return false
	}
	return true
}

// SetRenderTarget binds the host's rendering sink to the engine.
func (p *Player) SetRenderTarget(target engine.RenderTarget) {
	if !p.alive("setRenderTarget") {
		return
	}
	err := p.loop.Run(func() error {
		return p.eng.SetRenderTarget(target)
	})
	if err != nil {
		p.log.Error("failed to set render target", "error", err)
	}
}

// Play starts or resumes playback. Valid from Prepared and Paused;
// anywhere else it is a warned no-op.
func (p *Player) Play() {
	if !p.alive("play") {
		return
	}
	err := p.loop.Run(func() error {
		if !p.state.CanPlay() {
			p.log.Warn("cannot play in current state", "state", p.state)
			return nil
		}
		p.eng.SetPlayWhenReady(true)
		p.state = StateStarted
		return nil
	})
	if err != nil {
		p.log.Error("failed to play", "error", err)
	}
}

// Pause suspends playback. Valid only from Started.
func (p *Player) Pause() {
	if !p.alive("pause") {
		return
	}
	err := p.loop.Run(func() error {
		if !p.state.CanPause() {
			p.log.Warn("cannot pause in current state", "state", p.state)
			return nil
		}
		p.eng.SetPlayWhenReady(false)
		p.state = StatePaused
		return nil
	})
	if err != nil {
		p.log.Error("failed to pause", "error", err)
	}
}

// IsPaused reports whether playback is not running. True in every state
// except Started.
func (p *Player) IsPaused() bool {
	paused := true
	_ = p.loop.Run(func() error {
		paused = p.state != StateStarted
		return nil
	})
	return paused
}

// SetLoop toggles looping. Applied in any state. If the engine already
// sits at end-of-media, enabling loop rewinds it.
func (p *Player) SetLoop(loop bool) {
	if !p.alive("setLoop") {
		return
	}
	err := p.loop.Run(func() error {
		p.looping = loop
		if p.eng.Status() == engine.StatusEnded {
			p.eng.SeekToMS(0)
		}
		return nil
	})
	if err != nil {
		p.log.Error("failed to set loop", "error", err)
	}
}

// SetVolume sets the playback volume, clamped to [0, 1]. The level is
// always remembered; while muted it is not applied until unmute.
func (p *Player) SetVolume(level float64) {
	if !p.alive("setVolume") {
		return
	}
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	err := p.loop.Run(func() error {
		p.volume = level
		if !p.muted {
			p.eng.SetVolume(level)
		}
		return nil
	})
	if err != nil {
		p.log.Error("failed to set volume", "error", err)
	}
}

// SetMuted mutes or unmutes playback. Mute is an overlay: the last
// requested volume survives and is restored exactly on unmute.
func (p *Player) SetMuted(muted bool) {
	if !p.alive("setMuted") {
		return
	}
	err := p.loop.Run(func() error {
		p.muted = muted
		if muted {
			p.eng.SetVolume(0)
		} else {
			p.eng.SetVolume(p.volume)
		}
		return nil
	})
	if err != nil {
		p.log.Error("failed to set muted", "muted", muted, "error", err)
	}
}

// SeekTo moves playback to the given position in seconds. A warned
// no-op in Idle.
func (p *Player) SeekTo(seconds float64) {
	if !p.alive("seek") {
		return
	}
	err := p.loop.Run(func() error {
		if p.state == StateIdle {
			p.log.Warn("cannot seek in Idle state")
			return nil
		}
		p.eng.SeekToMS(int64(seconds * 1000))
		return nil
	})
	if err != nil {
		p.log.Error("failed to seek", "error", err)
	}
}

// CurrentTime returns the playback position in seconds, or zero in
// Idle.
func (p *Player) CurrentTime() float64 {
	if !p.alive("currentTime") {
		return 0
	}
	var ms int64
	err := p.loop.Run(func() error {
		if p.state == StateIdle {
			p.log.Warn("cannot query current time in Idle state")
			return nil
		}
		ms = p.eng.PositionMS()
		return nil
	})
	if err != nil {
		p.log.Error("failed to query current time", "error", err)
	}
	return float64(ms) / 1000.0
}

// Duration returns the media duration in seconds. Zero in Idle or while
// the engine does not know the duration yet.
func (p *Player) Duration() float64 {
	if !p.alive("duration") {
		return 0
	}
	var ms int64
	err := p.loop.Run(func() error {
		if p.state == StateIdle {
			p.log.Warn("cannot query duration in Idle state")
			return nil
		}
		ms = p.eng.DurationMS()
		return nil
	})
	if err != nil {
		p.log.Error("failed to query duration", "error", err)
	}
	if ms == engine.TimeUnset {
		return 0
	}
	return float64(ms) / 1000.0
}

// Reset stops playback and returns to Idle without releasing the
// engine. Never fails; safe to call repeatedly.
func (p *Player) Reset() {
	if !p.alive("reset") {
		return
	}
	err := p.loop.Run(func() error {
		p.eng.Stop()
		p.eng.SeekToMS(0)
		p.state = StateIdle
		return nil
	})
	if err != nil {
		p.log.Error("failed to reset", "error", err)
		return
	}
	p.log.Info("player reset")
}

// Destroy stops playback and releases the engine. The work is posted
// fire-and-forget so teardown never stalls the calling context;
// destruction may still be in flight when Destroy returns. Terminal:
// every later command is a warned no-op.
func (p *Player) Destroy() {
	if p.destroyed.Swap(true) {
		return
	}
	p.loop.Post(func() error {
		p.eng.Stop()
		p.eng.SeekToMS(0)
		p.eng.Release()
		p.state = StateIdle
		return nil
	})
	p.log.Info("player destroyed")
}

// State returns the current lifecycle state.
func (p *Player) State() State {
	s := StateIdle
	_ = p.loop.Run(func() error {
		s = p.state
		return nil
	})
	return s
}

// Volume returns the last requested volume level, muted or not.
func (p *Player) Volume() float64 {
	var v float64
	_ = p.loop.Run(func() error {
		v = p.volume
		return nil
	})
	return v
}

// Muted reports whether the player is muted.
func (p *Player) Muted() bool {
	var m bool
	_ = p.loop.Run(func() error {
		m = p.muted
		return nil
	})
	return m
}

// Looping reports whether looping is enabled.
func (p *Player) Looping() bool {
	var l bool
	_ = p.loop.Run(func() error {
		l = p.looping
		return nil
	})
	return l
}

// Source returns the URI of the last successfully prepared source.
func (p *Player) Source() string {
	var uri string
	_ = p.loop.Run(func() error {
		uri = p.uri
		return nil
	})
	return uri
}

// alive returns false and warns when the player was destroyed. Commands
// after Destroy are no-ops by contract.
func (p *Player) alive(op string) bool {
	if p.destroyed.Load() {
		p.log.Warn("command ignored, player destroyed", "op", op)
		return false
	}
	return true
}
