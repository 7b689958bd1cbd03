//go:build linux

package mpris

import (
	"fmt"
	"hash/fnv"
	"path"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/mediabridge/avbridge/internal/avplayer"
)

// Adapter exposes the player's command surface over D-Bus. It is a
// sample embedding host: desktop media controls drive the facade, and
// the facade's state answers their property reads.
type Adapter struct {
	player *avplayer.Player
	server *server.Server
}

// New creates and starts a new MPRIS adapter.
func New(p *avplayer.Player) (*Adapter, error) {
	a := &Adapter{player: p}

	a.server = server.NewServer("avbridge", &rootAdapter{}, &playerAdapter{player: p})

	// Start the server in background
	go func() {
		_ = a.server.Listen()
	}()

	return a, nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	return nil // Not supported - the host manages the lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return "AVBridge", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file", "http", "https", "res"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/flac", "video/mp4", "application/dash+xml", "application/vnd.apple.mpegurl"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter.
type playerAdapter struct {
	player *avplayer.Player
}

func (p *playerAdapter) Next() error {
	return nil // Single-source player, no queue
}

func (p *playerAdapter) Previous() error {
	return nil // Single-source player, no queue
}

func (p *playerAdapter) Pause() error {
	p.player.Pause()
	return nil
}

func (p *playerAdapter) PlayPause() error {
	if p.player.IsPaused() {
		p.player.Play()
	} else {
		p.player.Pause()
	}
	return nil
}

func (p *playerAdapter) Stop() error {
	p.player.Reset()
	return nil
}

func (p *playerAdapter) Play() error {
	p.player.Play()
	return nil
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	p.player.SeekTo(p.player.CurrentTime() + float64(offset)/1e6)
	return nil
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	p.player.SeekTo(float64(position) / 1e6)
	return nil
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(uri string) error {
	if !p.player.SetSource(uri) {
		return fmt.Errorf("failed to open %q", uri)
	}
	p.player.Play()
	return nil
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	switch p.player.State() {
	case avplayer.StateStarted:
		return types.PlaybackStatusPlaying, nil
	case avplayer.StatePaused:
		return types.PlaybackStatusPaused, nil
	case avplayer.StateIdle, avplayer.StatePrepared:
		return types.PlaybackStatusStopped, nil
	}
	return types.PlaybackStatusStopped, nil
}

func (p *playerAdapter) Rate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetRate(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	uri := p.player.Source()
	if uri == "" {
		return types.Metadata{}, nil
	}

	return types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(uri)),
		Length:  types.Microseconds(p.player.Duration() * 1e6),
		Title:   path.Base(uri),
		Url:     uri,
	}, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return p.player.Volume(), nil
}

func (p *playerAdapter) SetVolume(volume float64) error {
	p.player.SetVolume(volume)
	return nil
}

func (p *playerAdapter) Position() (int64, error) {
	return int64(p.player.CurrentTime() * 1e6), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	return false, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return false, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.player.State() != avplayer.StateIdle, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return p.player.State() != avplayer.StateIdle, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

// LoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) LoopStatus() (types.LoopStatus, error) {
	if p.player.Looping() {
		return types.LoopStatusTrack, nil
	}
	return types.LoopStatusNone, nil
}

// SetLoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) SetLoopStatus(status types.LoopStatus) error {
	p.player.SetLoop(status != types.LoopStatusNone)
	return nil
}

func formatTrackID(uri string) string {
	h := fnv.New64a()
	h.Write([]byte(uri))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
