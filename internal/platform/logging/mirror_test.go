package logging

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

func TestSetMirror_ReceivesLogRecords(t *testing.T) {
	type record struct {
		level Level
		msg   string
		args  []any
	}

	var got []record
	SetMirror(func(ctx context.Context, level Level, msg string, args ...any) {
		got = append(got, record{level: level, msg: msg, args: args})
	})
	defer SetMirror(nil)

	logger := FromZap(zap.NewNop())
	logger.Info("match started", "match_id", "m-1")
	logger.WarnContext(context.Background(), "visit rejected", "points", 181)

	if len(got) != 2 {
		t.Fatalf("expected 2 mirrored records, got %d", len(got))
	}
	if got[0].msg != "match started" || got[0].level != LevelInfo {
		t.Fatalf("unexpected first record: %+v", got[0])
	}
	if got[1].msg != "visit rejected" || got[1].level != LevelWarn {
		t.Fatalf("unexpected second record: %+v", got[1])
	}
	if len(got[1].args) != 2 || got[1].args[0] != "points" {
		t.Fatalf("unexpected args: %v", got[1].args)
	}
}

func TestSetMirror_NilRemovesMirror(t *testing.T) {
	calls := 0
	SetMirror(func(context.Context, Level, string, ...any) {
		calls++
	})
	SetMirror(nil)

	logger := FromZap(zap.NewNop())
	logger.Info("not mirrored")

	if calls != 0 {
		t.Fatalf("expected no mirrored records after removal, got %d", calls)
	}
}

func TestLoggerContext_AddsTraceFields(t *testing.T) {
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{0x01},
		SpanID:  trace.SpanID{0x02},
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	fields := traceFields(ctx)
	if len(fields) != 2 {
		t.Fatalf("expected trace_id and span_id fields, got %d", len(fields))
	}
	if fields[0].Key != "trace_id" || fields[1].Key != "span_id" {
		t.Fatalf("unexpected field keys: %s, %s", fields[0].Key, fields[1].Key)
	}
}
