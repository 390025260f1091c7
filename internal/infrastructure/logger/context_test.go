package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newCaptureLogger returns a JSON logger writing into the buffer
func newCaptureLogger(buf *bytes.Buffer) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		LevelKey:    "level",
		MessageKey:  "msg",
		EncodeLevel: zapcore.LowercaseLevelEncoder,
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(buf),
		zapcore.DebugLevel,
	)
	return zap.New(core)
}

func TestWithContext(t *testing.T) {
	logger := zap.NewNop()
	ctx := WithContext(context.Background(), logger)

	retrieved := FromContext(ctx)
	assert.Equal(t, logger, retrieved)
}

func TestFromContext_NotFound(t *testing.T) {
	retrieved := FromContext(context.Background())
	// Falls back to a no-op logger rather than nil
	assert.NotNil(t, retrieved)
}

func TestWithRequestID(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()
	requestID := "req-123"

	newCtx, newLogger := WithRequestID(ctx, logger, requestID)

	assert.NotNil(t, newLogger)
	assert.Equal(t, requestID, GetRequestID(newCtx))
	assert.Equal(t, newLogger, FromContext(newCtx))
}

func TestWithActor(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	newCtx, newLogger := WithActor(ctx, logger, "alice")

	assert.NotNil(t, newLogger)
	assert.Equal(t, "alice", GetActor(newCtx))
}

func TestGetRequestID_NotFound(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
}

func TestGetActor_NotFound(t *testing.T) {
	assert.Empty(t, GetActor(context.Background()))
}

func TestContextKeysAreDistinct(t *testing.T) {
	assert.NotEqual(t, RequestIDKey, ActorKey)
	assert.NotEqual(t, LoggerKey, RequestIDKey)
}

func TestChainedEnrichment(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	ctx, logger = WithRequestID(ctx, logger, "req-1")
	ctx, _ = WithActor(ctx, logger, "bob")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "bob", GetActor(ctx))
}

func TestContextLogger_InjectsFields(t *testing.T) {
	var buf bytes.Buffer
	baseLogger := newCaptureLogger(&buf)

	ctx := WithContext(context.Background(), baseLogger)
	ctx = context.WithValue(ctx, RequestIDKey, "req-abc")
	ctx = context.WithValue(ctx, ActorKey, "carol")

	L(ctx).Info("stock deducted")

	output := buf.String()
	assert.Contains(t, output, `"msg":"stock deducted"`)
	assert.Contains(t, output, `"request_id":"req-abc"`)
	assert.Contains(t, output, `"actor":"carol"`)
}

func TestContextLogger_OmitsAbsentFields(t *testing.T) {
	var buf bytes.Buffer
	baseLogger := newCaptureLogger(&buf)

	ctx := WithContext(context.Background(), baseLogger)
	L(ctx).Info("plain message")

	var output map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))
	assert.Equal(t, "plain message", output["msg"])
	assert.NotContains(t, buf.String(), `"request_id"`)
	assert.NotContains(t, buf.String(), `"actor"`)
}

func TestContextLogger_WithLogger(t *testing.T) {
	var buf bytes.Buffer
	baseLogger := newCaptureLogger(&buf)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-xyz")
	WithLogger(ctx, baseLogger).Warn("low stock")

	output := buf.String()
	assert.Contains(t, output, `"msg":"low stock"`)
	assert.Contains(t, output, `"request_id":"req-xyz"`)
}

func TestContextLogger_With(t *testing.T) {
	var buf bytes.Buffer
	baseLogger := newCaptureLogger(&buf)

	cl := WithLogger(context.Background(), baseLogger).With(zap.String("medicine_id", "m-1"))
	cl.Info("movement appended")

	assert.Contains(t, buf.String(), `"medicine_id":"m-1"`)
}

func TestContextLogger_NilLoggerFallsBack(t *testing.T) {
	cl := &ContextLogger{ctx: context.Background()}
	// Must not panic
	cl.Info("no logger attached")
}

func TestContextLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	baseLogger := newCaptureLogger(&buf)
	cl := WithLogger(context.Background(), baseLogger)

	cl.Debug("debug msg")
	cl.Info("info msg")
	cl.Warn("warn msg")
	cl.Error("error msg")

	output := buf.String()
	assert.Contains(t, output, "debug msg")
	assert.Contains(t, output, "info msg")
	assert.Contains(t, output, "warn msg")
	assert.Contains(t, output, "error msg")
}

func TestContextLogger_Zap(t *testing.T) {
	var buf bytes.Buffer
	baseLogger := newCaptureLogger(&buf)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-zap")
	zl := WithLogger(ctx, baseLogger).Zap()
	require.NotNil(t, zl)

	zl.Info("from zap")
	assert.Contains(t, buf.String(), `"request_id":"req-zap"`)
}

func TestContextLogger_Sugar(t *testing.T) {
	var buf bytes.Buffer
	baseLogger := newCaptureLogger(&buf)

	sugar := WithLogger(context.Background(), baseLogger).Sugar()
	require.NotNil(t, sugar)

	sugar.Infow("sweet", "key", "value")
	assert.Contains(t, buf.String(), "sweet")
}
