package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_ReExport(t *testing.T) {
	assert.NotNil(t, New("test-package"))
}

func TestContextWithTraceID_ReExport(t *testing.T) {
	ctx := ContextWithTraceID(context.Background(), "test-trace-123")

	assert.Equal(t, "test-trace-123", TraceIDFromContext(ctx))
	assert.NotNil(t, NewWithContext(ctx, "handlers"))
}

func TestLogger_ErrPassesThrough(t *testing.T) {
	log := New("test").Function("TestLogger_ErrPassesThrough")
	original := errors.New("original")

	assert.Same(t, original, log.Err("wrapped", original))
}
