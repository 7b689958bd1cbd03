package avplayer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mediabridge/avbridge/internal/engine"
)

func TestDedup_BufferingEdges(t *testing.T) {
	p, m, rec := newTestPlayer(t)

	for _, s := range []engine.Status{
		engine.StatusBuffering,
		engine.StatusBuffering,
		engine.StatusReady,
		engine.StatusReady,
		engine.StatusBuffering,
	} {
		m.EmitStatus(s)
	}
	drain(p)

	require.Equal(t, []string{"willbuffer", "didbuffer", "willbuffer"}, rec.Events())
}

func TestDedup_ReadyWithoutBufferingIsSilent(t *testing.T) {
	p, m, rec := newTestPlayer(t)

	m.EmitStatus(engine.StatusReady)
	drain(p)

	require.Empty(t, rec.Events())
}

func TestDedup_IdleEmitsNothing(t *testing.T) {
	p, m, rec := newTestPlayer(t)

	m.EmitStatus(engine.StatusReady)
	m.EmitStatus(engine.StatusIdle)
	drain(p)

	require.Empty(t, rec.Events())
}

func TestEnded_WithLoopSeeksBeforeFinished(t *testing.T) {
	p, m, rec := newTestPlayer(t)
	require.True(t, p.SetSource("file:///a.mp4"))
	p.SetLoop(true)

	baseline := len(m.Seeks())
	var seeksAtFinish []int
	rec.onFinished = func() {
		seeksAtFinish = append(seeksAtFinish, len(m.Seeks()))
	}

	m.EmitStatus(engine.StatusEnded)
	drain(p)

	require.Equal(t, []string{"prepared", "finished"}, rec.Events())
	require.Equal(t, []int{baseline + 1}, seeksAtFinish,
		"rewind must be issued before the finished notification")

	// Each loop iteration ends again and notifies again.
	m.EmitStatus(engine.StatusReady)
	m.EmitStatus(engine.StatusEnded)
	drain(p)

	require.Equal(t, []string{"prepared", "finished", "finished"}, rec.Events())
	require.Equal(t, []int{baseline + 1, baseline + 2}, seeksAtFinish)
}

func TestEnded_WithoutLoopDoesNotSeek(t *testing.T) {
	p, m, rec := newTestPlayer(t)
	require.True(t, p.SetSource("file:///a.mp4"))

	baseline := len(m.Seeks())
	m.EmitStatus(engine.StatusEnded)
	drain(p)

	require.Equal(t, []string{"prepared", "finished"}, rec.Events())
	require.Len(t, m.Seeks(), baseline)
}

func TestSetLoop_RewindsWhenAlreadyEnded(t *testing.T) {
	p, m, _ := newTestPlayer(t)
	require.True(t, p.SetSource("file:///a.mp4"))

	m.EmitStatus(engine.StatusEnded)
	drain(p)

	baseline := len(m.Seeks())
	p.SetLoop(true)
	require.Len(t, m.Seeks(), baseline+1)
}

func TestEngineErrors_AlwaysSurface(t *testing.T) {
	p, m, rec := newTestPlayer(t)

	m.EmitError(errors.New("decoder died"))
	m.EmitError(errors.New("decoder died"))
	drain(p)

	require.Equal(t, []string{"error:decoder died", "error:decoder died"}, rec.Events(),
		"errors are never deduplicated")
}

func TestDuplicateEnded_IsDropped(t *testing.T) {
	p, m, rec := newTestPlayer(t)
	require.True(t, p.SetSource("file:///a.mp4"))

	m.EmitStatus(engine.StatusEnded)
	m.EmitStatus(engine.StatusEnded)
	drain(p)

	require.Equal(t, []string{"prepared", "finished"}, rec.Events(),
		"a repeated identical raw status carries no information")
}
