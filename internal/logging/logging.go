// Package logging configures the logrus logger used by the command line and
// turns resolution events into debug log entries.
package logging

import (
	"context"
	"fmt"
	"io"
	"time"

	eventbus "github.com/hanpama/objectgraph/internal/eventbus"
	events "github.com/hanpama/objectgraph/internal/events"
	"github.com/sirupsen/logrus"
)

// Setup returns a logger writing to w at the given level. An empty level
// means info and an empty format means text.
func Setup(level, format string, w io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(w)

	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(lvl)

	switch format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: time.RFC3339Nano,
			DisableColors:   true,
		})
	default:
		return nil, fmt.Errorf("unsupported logging formatter: %q", format)
	}
	return logger, nil
}

func entry(ctx context.Context, logger logrus.FieldLogger) logrus.FieldLogger {
	if rid, ok := events.RunID(ctx); ok {
		return logger.WithField("run_id", rid)
	}
	return logger
}

// Subscribe logs resolution events published on the current bus.
func Subscribe(logger logrus.FieldLogger) (unsubscribe func()) {
	unsubs := []func(){
		eventbus.Subscribe[events.RunStart](func(ctx context.Context, e events.RunStart) {
			entry(ctx, logger).WithFields(logrus.Fields{
				"command":     e.Command,
				"schema_type": e.SchemaType,
			}).Debug("run started")
		}),
		eventbus.Subscribe[events.ObjectResolved](func(ctx context.Context, e events.ObjectResolved) {
			entry(ctx, logger).WithFields(logrus.Fields{
				"schema":    e.Schema,
				"node_type": e.NodeType,
				"fields":    e.Fields,
				"duration":  e.Duration,
			}).Debug("object resolved")
		}),
		eventbus.Subscribe[events.FieldResolved](func(ctx context.Context, e events.FieldResolved) {
			l := entry(ctx, logger).WithFields(logrus.Fields{
				"schema":   e.Schema,
				"field":    e.Field,
				"kind":     e.Kind,
				"declared": e.Declared,
				"duration": e.Duration,
			})
			if e.Err != nil {
				l.WithError(e.Err).Debug("field failed")
				return
			}
			l.Debug("field resolved")
		}),
		eventbus.Subscribe[events.RunFinish](func(ctx context.Context, e events.RunFinish) {
			if e.Err != nil {
				entry(ctx, logger).WithError(e.Err).Error("run failed")
				return
			}
			entry(ctx, logger).Debug("run finished")
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
