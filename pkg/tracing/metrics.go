package tracing

import (
	"context"
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	KeyOutcome, _    = tag.NewKey("outcome")
	KeyErrorKind, _  = tag.NewKey("error_kind")
	KeyFromStatus, _ = tag.NewKey("from_status")
	KeyToStatus, _   = tag.NewKey("to_status")

	PublicationCount   = stats.Int64("greez/publication/count", "Storefront publication attempts", stats.UnitDimensionless)
	PublicationLatency = stats.Float64("greez/publication/latency", "Storefront publication latency", stats.UnitMilliseconds)
	TransitionCount    = stats.Int64("greez/submission/transition_count", "Submission status transitions", stats.UnitDimensionless)
)

// WorkflowViews aggregate the workflow measures
var WorkflowViews = []*view.View{
	{
		Name:        "greez/publication/count",
		Measure:     PublicationCount,
		Description: "Publication attempts by outcome and error kind",
		TagKeys:     []tag.Key{KeyOutcome, KeyErrorKind},
		Aggregation: view.Count(),
	},
	{
		Name:        "greez/publication/latency",
		Measure:     PublicationLatency,
		Description: "Publication latency distribution",
		TagKeys:     []tag.Key{KeyOutcome},
		Aggregation: view.Distribution(50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000),
	},
	{
		Name:        "greez/submission/transition_count",
		Measure:     TransitionCount,
		Description: "Submission transitions by source and target status",
		TagKeys:     []tag.Key{KeyFromStatus, KeyToStatus},
		Aggregation: view.Count(),
	},
}

// RecordPublication records one storefront publication attempt.
// errorKind is empty on success.
func RecordPublication(ctx context.Context, errorKind string, elapsed time.Duration) {
	outcome := "success"
	if errorKind != "" {
		outcome = "failure"
	}

	_ = stats.RecordWithTags(ctx,
		[]tag.Mutator{
			tag.Upsert(KeyOutcome, outcome),
			tag.Upsert(KeyErrorKind, errorKind),
		},
		PublicationCount.M(1),
		PublicationLatency.M(float64(elapsed)/float64(time.Millisecond)),
	)
}

// RecordTransition records a submission status change
func RecordTransition(ctx context.Context, from, to string) {
	_ = stats.RecordWithTags(ctx,
		[]tag.Mutator{
			tag.Upsert(KeyFromStatus, from),
			tag.Upsert(KeyToStatus, to),
		},
		TransitionCount.M(1),
	)
}
