//go:build !libmpv

package engine

import (
	"errors"
	"log/slog"
)

func newMPV(_ Options, _ *slog.Logger) (Engine, error) {
	return nil, errors.New("engine: mpv backend is not enabled; build with -tags libmpv")
}
