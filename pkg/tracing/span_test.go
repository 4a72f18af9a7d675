package tracing

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpanTree(t *testing.T) {
	ctx, root := StartSpan(context.Background(), "search", "req-1")
	clock := root.Start
	root.now = func() time.Time { clock = clock.Add(5 * time.Millisecond); return clock }

	cctx, exec := StartChild(ctx, "execute")
	exec.SetAttr("hits", 3)
	exec.End()
	assert.Same(t, exec, FromContext(cctx))
	assert.Equal(t, "req-1", exec.TraceID)
	assert.Equal(t, 5*time.Millisecond, exec.Duration)

	_, snip := StartChild(ctx, "snippets")
	snip.End()
	root.End()

	children := root.Children()
	require.Len(t, children, 2)
	assert.Equal(t, "execute", children[0].Name)
	assert.Equal(t, "snippets", children[1].Name)
}

func TestStartChildWithoutParent(t *testing.T) {
	ctx, span := StartChild(context.Background(), "orphan")
	span.End()
	assert.Same(t, span, FromContext(ctx))
	assert.Empty(t, span.TraceID)
	assert.Nil(t, FromContext(context.Background()))
}

func TestLogEmitsTreeAtDebug(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx, root := StartSpan(context.Background(), "search", "req-2")
	_, child := StartChild(ctx, "correct")
	child.SetAttr("changed", true)
	child.End()
	root.End()
	root.Log(ctx, l)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var first, second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "search", first["span"])
	assert.Equal(t, float64(0), first["depth"])
	assert.Equal(t, "correct", second["span"])
	assert.Equal(t, true, second["changed"])
	assert.Equal(t, "req-2", second["trace_id"])
}

func TestLogSkippedAboveDebug(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, root := StartSpan(context.Background(), "search", "req-3")
	root.End()
	root.Log(ctx, l)
	assert.Empty(t, buf.String())
}
