// internal/avplayer/state.go
package avplayer

// State represents the playback lifecycle state machine.
//
// The states mirror the validity rules of the wrapped engine; commands
// that would violate them never reach it.
//
//	┌──────────┐   SetSource    ┌──────────┐
//	│   Idle   │ ──────────────▶│ Prepared │
//	└──────────┘                └──────────┘
//	     ▲                           │ Play
//	     │ Reset                     ▼
//	     │   (any state)        ┌──────────┐
//	     │                      │ Started  │
//	     │                      └──────────┘
//	     │                        │     ▲
//	     │                  Pause │     │ Play
//	     │                        ▼     │
//	     │                      ┌──────────┐
//	     └──────────────────────│  Paused  │
//	                            └──────────┘
//
// Valid transitions:
//   - Idle     → Prepared (via SetSource, on success)
//   - Prepared → Started  (via Play)
//   - Started  → Paused   (via Pause)
//   - Paused   → Started  (via Play)
//   - any      → Idle     (via Reset, Destroy, or SetSource failure)
//
// Invalid transitions are logged as warnings and become no-ops.
type State int

const (
	// StateIdle means no source is prepared. Default.
	StateIdle State = iota
	// StatePrepared means a source is loaded and playback can start.
	StatePrepared
	// StatePaused means playback was started and then suspended.
	StatePaused
	// StateStarted means the engine is playing.
	StateStarted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StatePrepared:
		return "Prepared"
	case StatePaused:
		return "Paused"
	case StateStarted:
		return "Started"
	default:
		return "Unknown"
	}
}

// CanPlay returns true if the state allows starting playback.
func (s State) CanPlay() bool {
	return s == StatePrepared || s == StatePaused
}

// CanPause returns true if the state allows pausing.
func (s State) CanPause() bool {
	return s == StateStarted
}
