package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mediabridge/avbridge/internal/avplayer"
	"github.com/mediabridge/avbridge/internal/config"
	"github.com/mediabridge/avbridge/internal/engine"
	"github.com/mediabridge/avbridge/internal/mpris"
	"github.com/mediabridge/avbridge/internal/notify"
	"github.com/mediabridge/avbridge/internal/runloop"
)

// cliHost is a minimal embedding host: it logs lifecycle notifications
// and signals completion back to main.
type cliHost struct {
	log      *slog.Logger
	finished chan struct{}
	failed   chan string
}

func (h *cliHost) OnPrepared(ref any) {
	h.log.Info("prepared", "ref", ref)
}

func (h *cliHost) OnFinished(ref any) {
	h.log.Info("finished", "ref", ref)
	select {
	case h.finished <- struct{}{}:
	default:
	}
}

func (h *cliHost) OnWillBuffer(ref any) {
	h.log.Info("buffering", "ref", ref)
}

func (h *cliHost) OnDidBuffer(ref any) {
	h.log.Info("buffering ended", "ref", ref)
}

func (h *cliHost) OnError(ref any, message string) {
	h.log.Error("playback error", "ref", ref, "message", message)
	select {
	case h.failed <- message:
	default:
	}
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: avbridge <uri-or-path>")
		os.Exit(2)
	}
	uri := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.InitLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logging: %v\n", err)
		os.Exit(1)
	}

	eng, err := engine.New(cfg.Engine, engine.Options{Video: cfg.MPV.Video}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create engine: %v\n", err)
		os.Exit(1)
	}

	loop := runloop.New(logger)
	defer loop.Close()

	host := &cliHost{
		log:      logger,
		finished: make(chan struct{}, 1),
		failed:   make(chan string, 1),
	}
	player := avplayer.New(eng, loop, host, uri, logger)
	defer player.Destroy()

	if cfg.MPRIS {
		adapter, err := mpris.New(player)
		if err != nil {
			logger.Warn("mpris unavailable", "error", err)
		} else {
			defer adapter.Close()
		}
	}

	player.SetVolume(cfg.Volume)
	player.SetLoop(cfg.Loop)

	if !player.SetSource(uri) {
		fmt.Fprintf(os.Stderr, "failed to load %q\n", uri)
		os.Exit(1)
	}
	fmt.Printf("playing %s (%.1fs)\n", uri, player.Duration())
	player.Play()

	notifier, err := notify.New()
	if err != nil {
		logger.Warn("notifications unavailable", "error", err)
	} else {
		if id, err := notifier.Notify(notify.Notification{
			Title:   "Now playing",
			Body:    uri,
			Timeout: 3000,
		}); err != nil {
			logger.Warn("notify failed", "error", err)
		} else if id != 0 {
			defer notifier.Close(id)
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-host.finished:
			if cfg.Loop {
				// Looping rewinds and keeps playing; each pass
				// notifies again.
				continue
			}
			return
		case msg := <-host.failed:
			fmt.Fprintf(os.Stderr, "playback failed: %s\n", msg)
			os.Exit(1)
		case <-sigCh:
			return
		}
	}
}
