package logger

import (
	"context"
	"testing"

	"github.com/prasetyowira/qrstudio/constant"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCtxInfo_Fields(t *testing.T) {
	// Arrange
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })
	ctx := WithRequestID(context.Background(), "req-1")

	// Act
	CtxError(ctx, "Bulk export failed", LoggerInfo{
		ContextFunction: constant.CtxExportBulk,
		Error: &CustomError{
			Code:    constant.ErrCodeArchiveSerialize,
			Message: "disk full",
			Type:    constant.ErrTypeArchive,
		},
		Data: map[string]interface{}{
			constant.DataJobID: "job-1",
		},
	})

	// Assert
	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "req-1", fields[constant.LogRequestIDKey])
		assert.Equal(t, constant.CtxExportBulk, fields[constant.LogFunctionKey])
		assert.Equal(t, constant.ErrCodeArchiveSerialize, fields[constant.LogErrorCodeKey])
		assert.Equal(t, "disk full", fields[constant.LogErrorMessageKey])
		assert.Equal(t, "job-1", fields[constant.DataJobID])
	}
}

func TestNilLoggerIsSilent(t *testing.T) {
	SetLogger(nil)

	assert.NotPanics(t, func() {
		Info("hello", LoggerInfo{})
		CtxWarn(context.Background(), "hello", LoggerInfo{})
		Close()
	})
}

func TestRequestID(t *testing.T) {
	assert.Equal(t, "", RequestID(context.Background()))
	assert.Equal(t, "", RequestID(nil))
	assert.Equal(t, "x", RequestID(WithRequestID(context.Background(), "x")))
}

func TestFormatMetadata(t *testing.T) {
	assert.Equal(t, "", FormatMetadata(nil))
	assert.Equal(t, "a=1 • b=two", FormatMetadata(map[string]interface{}{"b": "two", "a": 1}))
}
