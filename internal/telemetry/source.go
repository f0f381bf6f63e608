package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/flowmetrics/leadtime/internal/jira"
	"github.com/flowmetrics/leadtime/internal/types"
)

const sourceScopeName = "github.com/flowmetrics/leadtime/jira"

// Source is the issue source being instrumented.
type Source interface {
	SearchAll(ctx context.Context, jql string, opts jira.SearchOptions) ([]types.Issue, error)
	GetIssue(ctx context.Context, key string) (*types.Issue, error)
}

// InstrumentedSource wraps a Source with OTel tracing and metrics.
// Every call gets a span and is counted in leadtime.jira.* metrics.
// Use WrapSource to create one; it returns the original source unchanged
// when telemetry is disabled.
type InstrumentedSource struct {
	inner  Source
	tracer trace.Tracer
	ops    metric.Int64Counter
	pages  metric.Int64Counter
	issues metric.Int64Counter
	dur    metric.Float64Histogram
	errs   metric.Int64Counter
}

// WrapSource returns s decorated with OTel instrumentation.
// When telemetry is disabled, s is returned as-is with zero overhead.
func WrapSource(s Source) Source {
	if !Enabled() {
		return s
	}
	return newInstrumentedSource(s)
}

func newInstrumentedSource(s Source) *InstrumentedSource {
	m := Meter(sourceScopeName)
	ops, _ := m.Int64Counter("leadtime.jira.requests",
		metric.WithDescription("Total Jira operations executed"),
	)
	pages, _ := m.Int64Counter("leadtime.jira.pages",
		metric.WithDescription("Search result pages fetched"),
	)
	issues, _ := m.Int64Counter("leadtime.jira.issues",
		metric.WithDescription("Issues fetched"),
	)
	dur, _ := m.Float64Histogram("leadtime.jira.request.duration",
		metric.WithDescription("Jira operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	errs, _ := m.Int64Counter("leadtime.jira.errors",
		metric.WithDescription("Total Jira operation errors"),
	)
	return &InstrumentedSource{
		inner:  s,
		tracer: Tracer(sourceScopeName),
		ops:    ops,
		pages:  pages,
		issues: issues,
		dur:    dur,
		errs:   errs,
	}
}

// op starts a span and records a metric for the named operation.
func (s *InstrumentedSource) op(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span, time.Time) {
	all := append([]attribute.KeyValue{attribute.String("jira.operation", name)}, attrs...)
	ctx, span := s.tracer.Start(ctx, "jira."+name,
		trace.WithAttributes(all...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	s.ops.Add(ctx, 1, metric.WithAttributes(all...))
	return ctx, span, time.Now()
}

// done ends the span, records duration and optional error.
func (s *InstrumentedSource) done(ctx context.Context, span trace.Span, start time.Time, err error, attrs ...attribute.KeyValue) {
	ms := float64(time.Since(start).Milliseconds())
	s.dur.Record(ctx, ms, metric.WithAttributes(attrs...))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.errs.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	span.End()
}

// SearchAll traces the whole paginated search and counts each page.
func (s *InstrumentedSource) SearchAll(ctx context.Context, jql string, opts jira.SearchOptions) ([]types.Issue, error) {
	attrs := []attribute.KeyValue{attribute.String("jira.jql", jql)}
	ctx, span, t := s.op(ctx, "SearchAll", attrs...)

	onPage := opts.OnPage
	opts.OnPage = func(p jira.Page) {
		s.pages.Add(ctx, 1)
		span.AddEvent("page", trace.WithAttributes(
			attribute.Int("jira.start_at", p.StartAt),
			attribute.Int("jira.count", p.Count),
			attribute.Int("jira.total", p.Total),
		))
		if onPage != nil {
			onPage(p)
		}
	}

	v, err := s.inner.SearchAll(ctx, jql, opts)
	s.issues.Add(ctx, int64(len(v)))
	span.SetAttributes(attribute.Int("jira.issue.count", len(v)))
	s.done(ctx, span, t, err)
	return v, err
}

func (s *InstrumentedSource) GetIssue(ctx context.Context, key string) (*types.Issue, error) {
	attrs := []attribute.KeyValue{attribute.String("jira.issue.key", key)}
	ctx, span, t := s.op(ctx, "GetIssue", attrs...)
	v, err := s.inner.GetIssue(ctx, key)
	if v != nil {
		s.issues.Add(ctx, 1)
	}
	s.done(ctx, span, t, err)
	return v, err
}
