// internal/avplayer/events.go
package avplayer

import "github.com/mediabridge/avbridge/internal/engine"

// engineListener marshals the engine's raw status and error stream onto
// the owner goroutine. Engines may report from their own internal
// goroutines; everything that touches player state must not.
type engineListener struct {
	p *Player
}

func (l engineListener) OnStatusChanged(status engine.Status) {
	l.p.loop.Post(func() error {
		l.p.handleStatus(status)
		return nil
	})
}

func (l engineListener) OnEngineError(err error) {
	l.p.loop.Post(func() error {
		l.p.handleEngineError(err)
		return nil
	})
}

// handleStatus deduplicates the raw status stream and emits lifecycle
// notifications on true edges. Runs on the loop goroutine.
//
// The engine sometimes reports the same status repeatedly; identical
// consecutive reports carry no information and are dropped. Buffering
// is a binary flag toggled only on edges, so OnWillBuffer and
// OnDidBuffer strictly alternate. End-of-media is not edge-filtered
// beyond the duplicate drop: while looping, each pass reaches a fresh
// end, and each one rewinds first and then notifies.
func (p *Player) handleStatus(status engine.Status) {
	if status == p.lastStatus {
		return
	}
	p.log.Debug("engine status changed", "from", p.lastStatus, "to", status)
	p.lastStatus = status

	switch status {
	case engine.StatusBuffering:
		if !p.buffering {
			p.buffering = true
			if p.delegate != nil {
				p.delegate.OnWillBuffer(p.ref)
			}
		}
	case engine.StatusReady:
		if p.buffering {
			p.buffering = false
			if p.delegate != nil {
				p.delegate.OnDidBuffer(p.ref)
			}
		}
	case engine.StatusEnded:
		if p.looping {
			p.eng.SeekToMS(0)
		}
		if p.delegate != nil {
			p.delegate.OnFinished(p.ref)
		}
	}
}

// handleEngineError surfaces an asynchronous engine failure to the
// host. Errors bypass deduplication; every report is meaningful. Runs
// on the loop goroutine.
func (p *Player) handleEngineError(err error) {
	p.log.Warn("engine reported error", "error", err)
	if p.delegate != nil {
		p.delegate.OnError(p.ref, err.Error())
	}
}
