package types

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Format(t *testing.T) {
	err := NewError(ErrInvalidMedia, "payload is empty")
	if got := err.Error(); got != "[INVALID_MEDIA] payload is empty" {
		t.Errorf("unexpected message: %s", got)
	}

	cause := errors.New("boom")
	err = NewError(ErrConfiguration, "no usable credential source").WithCause(cause)
	if got := err.Error(); got != "[CONFIGURATION] no usable credential source: boom" {
		t.Errorf("unexpected message: %s", got)
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to see through to the cause")
	}
}

func TestGetErrorCode(t *testing.T) {
	err := Errorf(ErrInvalidCount, "count must be non-negative, got %d", -1)
	if GetErrorCode(err) != ErrInvalidCount {
		t.Errorf("expected INVALID_COUNT, got %s", GetErrorCode(err))
	}

	// 包装后依然可以提取错误码
	wrapped := fmt.Errorf("allocate: %w", err)
	if GetErrorCode(wrapped) != ErrInvalidCount {
		t.Error("expected code extraction through wrapping")
	}
	if !IsCode(wrapped, ErrInvalidCount) {
		t.Error("IsCode should match through wrapping")
	}

	if GetErrorCode(errors.New("plain")) != "" {
		t.Error("plain errors carry no code")
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(NewError(ErrConfiguration, "x")) {
		t.Error("configuration errors are not retryable by default")
	}
	if !IsRetryable(NewError(ErrUploadFailed, "x").WithRetryable(true)) {
		t.Error("expected retryable")
	}
}
