package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName    = "github.com/Aid-On/nagare"
	instrumentationVersion = "0.1.0"
)

// ObservabilityConfig controls what telemetry Instruments collects.
type ObservabilityConfig struct {
	EnableTracing bool
	EnableMetrics bool
	Attributes    []attribute.KeyValue
}

// DefaultObservabilityConfig enables both tracing and metrics, tagging
// every span and metric with the nagare instrumentation name.
func DefaultObservabilityConfig() *ObservabilityConfig {
	return &ObservabilityConfig{
		EnableTracing: true,
		EnableMetrics: true,
		Attributes: []attribute.KeyValue{
			attribute.String("stream.engine", "nagare"),
		},
	}
}

// Instruments holds OpenTelemetry instruments for pipeline runs, item
// counts and backpressure credits. The fusion compiler and the backpressure
// and window packages do not call it; values are recorded only through the
// methods below.
type Instruments struct {
	tracer trace.Tracer
	meter  metric.Meter
	config *ObservabilityConfig

	pipelineRuns     metric.Int64Counter
	pipelineDuration metric.Float64Histogram
	itemsEmitted     metric.Int64Counter
	itemsDropped     metric.Int64Counter
	variantSelected  metric.Int64Counter
	creditsGranted   metric.Int64Counter
	creditsDenied    metric.Int64Counter
}

// NewInstruments initializes Nagare's OpenTelemetry instruments using the
// process-wide global otel providers (set via otel.SetTracerProvider /
// otel.SetMeterProvider, e.g. by InstallStdoutProviders).
func NewInstruments(config *ObservabilityConfig) *Instruments {
	if config == nil {
		config = DefaultObservabilityConfig()
	}
	tracer := otel.Tracer(instrumentationName, trace.WithInstrumentationVersion(instrumentationVersion))
	meter := otel.Meter(instrumentationName, metric.WithInstrumentationVersion(instrumentationVersion))

	in := &Instruments{tracer: tracer, meter: meter, config: config}

	var err error
	in.pipelineRuns, err = meter.Int64Counter("nagare.pipeline.runs",
		metric.WithDescription("Number of finalizer executions dispatched"))
	if err != nil {
		otel.Handle(err)
	}
	in.pipelineDuration, err = meter.Float64Histogram("nagare.pipeline.duration",
		metric.WithDescription("Duration of a finalizer execution"), metric.WithUnit("s"))
	if err != nil {
		otel.Handle(err)
	}
	in.itemsEmitted, err = meter.Int64Counter("nagare.items.emitted",
		metric.WithDescription("Items emitted downstream"))
	if err != nil {
		otel.Handle(err)
	}
	in.itemsDropped, err = meter.Int64Counter("nagare.items.dropped",
		metric.WithDescription("Items dropped by an error policy"))
	if err != nil {
		otel.Handle(err)
	}
	in.variantSelected, err = meter.Int64Counter("nagare.fusion.variant",
		metric.WithDescription("Execution variant selected per finalizer call"))
	if err != nil {
		otel.Handle(err)
	}
	in.creditsGranted, err = meter.Int64Counter("nagare.backpressure.credits_granted",
		metric.WithDescription("Credits granted by a backpressure controller"))
	if err != nil {
		otel.Handle(err)
	}
	in.creditsDenied, err = meter.Int64Counter("nagare.backpressure.credits_denied",
		metric.WithDescription("Admission attempts denied by a backpressure controller"))
	if err != nil {
		otel.Handle(err)
	}
	return in
}

// StartPipelineSpan opens a span covering one finalizer execution, tagged
// with the selected variant.
func (in *Instruments) StartPipelineSpan(ctx context.Context, variant string) (context.Context, trace.Span) {
	if !in.config.EnableTracing {
		return ctx, trace.SpanFromContext(ctx)
	}
	return in.tracer.Start(ctx, "nagare.pipeline.run", trace.WithAttributes(attribute.String("nagare.variant", variant)))
}

// RecordPipelineRun records one finalizer execution's duration and variant.
func (in *Instruments) RecordPipelineRun(ctx context.Context, variant string, dur time.Duration, err error) {
	if !in.config.EnableMetrics {
		return
	}
	attrs := metric.WithAttributes(append(in.config.Attributes, attribute.String("nagare.variant", variant))...)
	in.pipelineRuns.Add(ctx, 1, attrs)
	in.pipelineDuration.Record(ctx, dur.Seconds(), attrs)
	in.variantSelected.Add(ctx, 1, attrs)
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
	}
}

// RecordEmitted increments the emitted-items counter by n.
func (in *Instruments) RecordEmitted(ctx context.Context, n int64) {
	if in.config.EnableMetrics {
		in.itemsEmitted.Add(ctx, n, metric.WithAttributes(in.config.Attributes...))
	}
}

// RecordDropped increments the dropped-items counter by n.
func (in *Instruments) RecordDropped(ctx context.Context, n int64) {
	if in.config.EnableMetrics {
		in.itemsDropped.Add(ctx, n, metric.WithAttributes(in.config.Attributes...))
	}
}

// RecordCreditGrant increments the credits-granted counter by n.
func (in *Instruments) RecordCreditGrant(ctx context.Context, n int64) {
	if in.config.EnableMetrics {
		in.creditsGranted.Add(ctx, n, metric.WithAttributes(in.config.Attributes...))
	}
}

// RecordCreditDenial increments the admission-denied counter by one.
func (in *Instruments) RecordCreditDenial(ctx context.Context) {
	if in.config.EnableMetrics {
		in.creditsDenied.Add(ctx, 1, metric.WithAttributes(in.config.Attributes...))
	}
}
