package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the tracer name for projsys operations
const TracerName = "github.com/willibrandon/projsys"

// Common attribute keys
const (
	AttrProvider        = attribute.Key("projsys.provider")
	AttrSnapshotVersion = attribute.Key("projsys.snapshot.version")
	AttrProjectPath     = attribute.Key("projsys.project.path")
	AttrLogPath         = attribute.Key("projsys.log.path")
	AttrRelation        = attribute.Key("projsys.relation")
	AttrTarget          = attribute.Key("projsys.target")
)

// StartSnapshotApplySpan starts a span for applying one snapshot to a provider
func StartSnapshotApplySpan(ctx context.Context, provider string, version int64, projectPath string) (context.Context, trace.Span) {
	return StartSpan(ctx, TracerName, "snapshot.apply",
		trace.WithAttributes(
			AttrProvider.String(provider),
			AttrSnapshotVersion.Int64(version),
			AttrProjectPath.String(projectPath),
		),
	)
}

// StartLogReplaySpan starts a span for replaying a binary build log
func StartLogReplaySpan(ctx context.Context, logPath string) (context.Context, trace.Span) {
	return StartSpan(ctx, TracerName, "log.replay",
		trace.WithAttributes(AttrLogPath.String(logPath)),
	)
}

// StartRelationUpdateSpan starts a span for refreshing dependency relations
func StartRelationUpdateSpan(ctx context.Context, target string, parents int) (context.Context, trace.Span) {
	return StartSpan(ctx, TracerName, "relation.update",
		trace.WithAttributes(
			AttrTarget.String(target),
			attribute.Int("relation.parents", parents),
		),
	)
}

// EndSpanWithError ends a span with an error status
func EndSpanWithError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
