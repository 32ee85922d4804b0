package instrument

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	return line
}

func TestNewHandler_MasksAndEnriches(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, "twofa", nil, []string{"password", " OtpToken "}, slog.LevelInfo))

	ctx := SetCorrelationID(context.Background(), "cid-1")
	logger.InfoContext(ctx, "login",
		"password", "hunter2",
		"body", map[string]any{"email": "a@b.c", "otpToken": "123456"},
		"raw", `{"password":"x","email":"a@b.c"}`,
	)

	line := decodeLine(t, &buf)
	assert.Equal(t, "login", line["msg"])
	assert.Equal(t, "INFO", line["severity"])
	assert.Equal(t, "cid-1", line["_cID"])
	assert.Equal(t, "twofa", line["service"])
	assert.Equal(t, "***", line["password"])
	assert.Equal(t, map[string]any{"email": "a@b.c", "otpToken": "***"}, line["body"])
	assert.JSONEq(t, `{"password":"***","email":"a@b.c"}`, line["raw"].(string))
	assert.Contains(t, line, "ts")
}

func TestNewHandler_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, "twofa", nil, nil, parseLevel("warn")))

	logger.Info("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn("shown")
	assert.Equal(t, "shown", decodeLine(t, &buf)["msg"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}

func TestCorrelationID(t *testing.T) {
	assert.Empty(t, GetCorrelationID(context.Background()))
	assert.Equal(t, "x", GetCorrelationID(SetCorrelationID(context.Background(), "x")))
}

func TestNew_Disabled(t *testing.T) {
	ins, err := New(context.Background(), &Config{Enabled: false, ServiceName: "twofa"})
	require.NoError(t, err)

	_, span := ins.Tracer("t").Start(context.Background(), "op")
	span.End()
	assert.NoError(t, ins.Shutdown(context.Background()))
}

func TestNewHandler_TraceIDs(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, "twofa", nil, nil, slog.LevelInfo))
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1, 2, 3},
		SpanID:     trace.SpanID{4, 5, 6},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	// Act
	logger.InfoContext(ctx, "traced")

	// Assert
	line := decodeLine(t, &buf)
	assert.Equal(t, sc.TraceID().String(), line["trace_id"])
	assert.Equal(t, sc.SpanID().String(), line["span_id"])
}

func TestNewHandler_WithAttrsMasked(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, "twofa", nil, []string{"password"}, slog.LevelInfo)).With("password", "hunter2")

	logger.Info("bound")

	assert.Equal(t, "***", decodeLine(t, &buf)["password"])
}

func TestMaskValue(t *testing.T) {
	keys := MaskKeys([]string{" Password ", "", "qrcode"})

	got := MaskValue(map[string]any{
		"user":  map[string]any{"PASSWORD": "x", "email": "a@b.c"},
		"items": []any{map[string]any{"qrcode": "data:..."}, "plain"},
	}, keys)

	assert.Len(t, keys, 2)
	assert.Equal(t, map[string]any{
		"user":  map[string]any{"PASSWORD": "***", "email": "a@b.c"},
		"items": []any{map[string]any{"qrcode": "***"}, "plain"},
	}, got)
}
