package buildlog

import (
	"context"

	"github.com/willibrandon/projsys/logmodel"
	"github.com/willibrandon/projsys/observability"
)

// Load reads a binary log and replays it into an immutable log model.
func Load(ctx context.Context, path string) (*logmodel.Log, error) {
	ctx, span := observability.StartLogReplaySpan(ctx, path)

	events, err := ReadEvents(path)
	if err != nil {
		observability.EndSpanWithError(span, err)
		return nil, err
	}
	observability.AddEvent(ctx, "log.decoded")

	for _, e := range events {
		observability.LogEventsTotal.WithLabelValues(e.Kind.String()).Inc()
	}

	log, err := logmodel.Replay(events)
	observability.EndSpanWithError(span, err)
	return log, err
}
