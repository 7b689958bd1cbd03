package engine

import (
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/mediabridge/avbridge/internal/source"
)

// Beep plays local progressive audio sources through the system audio
// device. Manifest-based sources and raw resources need the mpv
// backend.
type Beep struct {
	log *slog.Logger

	path     string
	file     *os.File
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	volume   *effects.Volume

	level         float64
	playWhenReady bool

	mu       sync.Mutex
	status   Status
	listener Listener
}

var speakerInitialized bool

// NewBeep creates a beep-backed engine.
func NewBeep(log *slog.Logger) *Beep {
	return &Beep{
		log:    log,
		level:  1.0,
		status: StatusIdle,
	}
}

func (b *Beep) SetSource(cfg source.Config) error {
	if cfg.Type != source.TypeProgressive {
		return fmt.Errorf("%w: %s", ErrUnsupportedSource, cfg.Type)
	}

	path := localPath(cfg.URI)
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".mp3" && ext != ".flac" {
		return fmt.Errorf("engine: unsupported format: %s", ext)
	}

	b.Stop()
	b.path = path
	return nil
}

func (b *Beep) Prepare() error {
	if b.path == "" {
		return fmt.Errorf("engine: no source configured")
	}

	f, err := os.Open(b.path)
	if err != nil {
		return err
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch strings.ToLower(filepath.Ext(b.path)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	}
	if err != nil {
		f.Close()
		return err
	}

	if !speakerInitialized {
		if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
			streamer.Close()
			f.Close()
			return err
		}
		speakerInitialized = true
	}

	b.file = f
	b.streamer = streamer
	b.format = format
	b.ctrl = &beep.Ctrl{Streamer: streamer, Paused: !b.playWhenReady}
	b.volume = &effects.Volume{
		Streamer: b.ctrl,
		Base:     2,
		Volume:   levelToVolume(b.level),
		Silent:   b.level <= 0,
	}

	b.queue()
	b.setStatus(StatusReady)
	return nil
}

// queue hands the effect chain to the mixer. The end-of-stream callback
// fires once the streamer drains.
func (b *Beep) queue() {
	speaker.Play(beep.Seq(b.volume, beep.Callback(func() {
		b.setStatus(StatusEnded)
	})))
}

func (b *Beep) SetPlayWhenReady(play bool) {
	b.playWhenReady = play
	if b.ctrl == nil {
		return
	}
	speaker.Lock()
	b.ctrl.Paused = !play
	speaker.Unlock()
}

func (b *Beep) Stop() {
	if b.streamer == nil {
		return
	}

	speaker.Clear()

	b.streamer.Close()
	b.streamer = nil
	if b.file != nil {
		b.file.Close()
		b.file = nil
	}
	b.ctrl = nil
	b.volume = nil

	b.setStatus(StatusIdle)
}

func (b *Beep) Release() {
	// The speaker device is process-global; only decode state is freed.
	b.Stop()
}

func (b *Beep) SeekToMS(ms int64) {
	if b.streamer == nil {
		return
	}

	pos := b.format.SampleRate.N(time.Duration(ms) * time.Millisecond)
	pos = max(pos, 0)
	if l := b.streamer.Len(); pos > l {
		pos = l
	}

	ended := b.Status() == StatusEnded

	speaker.Lock()
	_ = b.streamer.Seek(pos)
	if b.ctrl != nil {
		b.ctrl.Paused = !b.playWhenReady
	}
	speaker.Unlock()

	if ended {
		// The finished sequence was drained from the mixer; queue it
		// again from the new position.
		b.queue()
		b.setStatus(StatusReady)
	}
}

func (b *Beep) PositionMS() int64 {
	if b.streamer == nil {
		return 0
	}
	// Read without the speaker lock; may be slightly stale.
	return b.format.SampleRate.D(b.streamer.Position()).Milliseconds()
}

func (b *Beep) DurationMS() int64 {
	if b.streamer == nil {
		return TimeUnset
	}
	return b.format.SampleRate.D(b.streamer.Len()).Milliseconds()
}

func (b *Beep) SetVolume(level float64) {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	b.level = level

	if b.volume == nil {
		return
	}
	speaker.Lock()
	b.volume.Volume = levelToVolume(level)
	b.volume.Silent = level <= 0
	speaker.Unlock()
}

func (b *Beep) SetRenderTarget(_ RenderTarget) error {
	// Audio-only backend; there is nothing to bind.
	b.log.Debug("render target ignored by audio backend")
	return nil
}

func (b *Beep) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

func (b *Beep) SetListener(l Listener) {
	b.mu.Lock()
	b.listener = l
	b.mu.Unlock()
}

func (b *Beep) setStatus(s Status) {
	b.mu.Lock()
	b.status = s
	l := b.listener
	b.mu.Unlock()
	if l != nil {
		l.OnStatusChanged(s)
	}
}

// levelToVolume converts a 0.0-1.0 level to beep's logarithmic Volume
// value: 1.0 -> 0, 0.5 -> -1, 0.25 -> -2, 0 -> -10 (essentially silent).
func levelToVolume(level float64) float64 {
	if level <= 0 {
		return -10
	}
	if level >= 1 {
		return 0
	}
	return math.Log2(level)
}

// localPath strips a file:// scheme; plain paths pass through.
func localPath(uri string) string {
	if strings.HasPrefix(uri, "file://") {
		if u, err := url.Parse(uri); err == nil && u.Path != "" {
			return u.Path
		}
	}
	return uri
}

// Verify Beep implements Engine at compile time.
var _ Engine = (*Beep)(nil)
