package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	eventbus "github.com/hanpama/objectgraph/internal/eventbus"
	events "github.com/hanpama/objectgraph/internal/events"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Setup("", "", &buf)
	require.NoError(t, err)
	require.Equal(t, logrus.InfoLevel, logger.GetLevel())

	_, err = Setup("loud", "text", &buf)
	require.Error(t, err)

	_, err = Setup("debug", "logstash", &buf)
	require.ErrorContains(t, err, `unsupported logging formatter: "logstash"`)
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestSubscribe(t *testing.T) {
	eventbus.Use(eventbus.New())
	t.Cleanup(func() { eventbus.Use(nil) })

	var buf bytes.Buffer
	logger, err := Setup("debug", "json", &buf)
	require.NoError(t, err)
	unsubscribe := Subscribe(logger)

	ctx, rid := events.WithRun(context.Background())
	eventbus.Publish(ctx, events.ObjectResolved{Schema: "Video", NodeType: "GraphNode", Fields: 2})
	eventbus.Publish(ctx, events.FieldResolved{Schema: "Video", Field: "title", Kind: "scalar", Declared: true})
	eventbus.Publish(ctx, events.FieldResolved{Schema: "Video", Field: "born", Err: errors.New("bad date")})
	eventbus.Publish(ctx, events.RunFinish{Err: errors.New("boom")})

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 4)
	require.Equal(t, "object resolved", lines[0]["msg"])
	require.Equal(t, "Video", lines[0]["schema"])
	require.Equal(t, float64(rid), lines[0]["run_id"])
	require.Equal(t, "title", lines[1]["field"])
	require.Equal(t, "debug", lines[1]["level"])
	require.Equal(t, "field failed", lines[2]["msg"])
	require.Equal(t, "bad date", lines[2]["error"])
	require.Equal(t, "error", lines[3]["level"])

	unsubscribe()
	buf.Reset()
	eventbus.Publish(ctx, events.RunFinish{Err: errors.New("boom")})
	require.Empty(t, buf.String())
}

func TestSubscribe_LevelFilters(t *testing.T) {
	eventbus.Use(eventbus.New())
	t.Cleanup(func() { eventbus.Use(nil) })

	var buf bytes.Buffer
	logger, err := Setup("info", "text", &buf)
	require.NoError(t, err)
	defer Subscribe(logger)()

	eventbus.Publish(context.Background(), events.FieldResolved{Field: "title"})
	require.Empty(t, buf.String())
}
