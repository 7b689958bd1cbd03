package engine

import (
	"sync"

	"github.com/mediabridge/avbridge/internal/source"
)

// Mock is a test double for Engine.
type Mock struct {
	mu sync.Mutex

	listener Listener
	status   Status

	sources       []source.Config
	setSourceErr  error
	prepareErr    error
	prepares      int
	playCalls     []bool
	stops         int
	releases      int
	seeks         []int64
	volumes       []float64
	renderTargets []RenderTarget

	positionMS int64
	durationMS int64
}

// NewMock creates a new mock engine for testing.
func NewMock() *Mock {
	return &Mock{
		status:     StatusIdle,
		durationMS: TimeUnset,
	}
}

func (m *Mock) SetSource(cfg source.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources = append(m.sources, cfg)
	return m.setSourceErr
}

func (m *Mock) Prepare() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prepares++
	return m.prepareErr
}

func (m *Mock) SetPlayWhenReady(play bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playCalls = append(m.playCalls, play)
}

func (m *Mock) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops++
	m.status = StatusIdle
}

func (m *Mock) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releases++
}

func (m *Mock) SeekToMS(ms int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seeks = append(m.seeks, ms)
}

func (m *Mock) PositionMS() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.positionMS
}

func (m *Mock) DurationMS() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.durationMS
}

func (m *Mock) SetVolume(level float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volumes = append(m.volumes, level)
}

func (m *Mock) SetRenderTarget(target RenderTarget) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renderTargets = append(m.renderTargets, target)
	return nil
}

func (m *Mock) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *Mock) SetListener(l Listener) {
	m.mu.Lock()
	m.listener = l
	m.mu.Unlock()
}

// Test helpers

// EmitStatus sets the raw status and notifies the listener, like a real
// engine reporting a state change.
func (m *Mock) EmitStatus(s Status) {
	m.mu.Lock()
	m.status = s
	l := m.listener
	m.mu.Unlock()
	if l != nil {
		l.OnStatusChanged(s)
	}
}

// EmitError delivers an asynchronous engine error to the listener.
func (m *Mock) EmitError(err error) {
	m.mu.Lock()
	l := m.listener
	m.mu.Unlock()
	if l != nil {
		l.OnEngineError(err)
	}
}

func (m *Mock) SetSetSourceError(err error) {
	m.mu.Lock()
	m.setSourceErr = err
	m.mu.Unlock()
}

func (m *Mock) SetPrepareError(err error) {
	m.mu.Lock()
	m.prepareErr = err
	m.mu.Unlock()
}

func (m *Mock) SetPositionMS(ms int64) {
	m.mu.Lock()
	m.positionMS = ms
	m.mu.Unlock()
}

func (m *Mock) SetDurationMS(ms int64) {
	m.mu.Lock()
	m.durationMS = ms
	m.mu.Unlock()
}

func (m *Mock) Sources() []source.Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]source.Config(nil), m.sources...)
}

func (m *Mock) PlayCalls() []bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]bool(nil), m.playCalls...)
}

func (m *Mock) Seeks() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.seeks...)
}

func (m *Mock) Volumes() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.volumes...)
}

func (m *Mock) RenderTargets() []RenderTarget {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RenderTarget(nil), m.renderTargets...)
}

func (m *Mock) Stops() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}

func (m *Mock) Releases() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.releases
}

func (m *Mock) Prepares() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prepares
}

// Verify Mock implements Engine at compile time.
var _ Engine = (*Mock)(nil)
