package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	// Test without cause
	err := New(CodeProbeFailed, "Test error")
	assert.Equal(t, "[1100] Test error", err.Error())

	// Test with cause
	cause := errors.New("underlying error")
	errWithCause := Wrap(CodeProbeFailed, "Test error", cause)
	assert.Contains(t, errWithCause.Error(), "underlying error")
	assert.Contains(t, errWithCause.Error(), "1100")
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(CodeTranscribeFailed, "Transcription failed", cause)

	// Test Unwrap
	assert.Equal(t, cause, err.Unwrap())

	// Test errors.Is
	assert.True(t, errors.Is(err, cause))
}

func TestIs(t *testing.T) {
	err := New(CodeEncodeFailed, "Encode failed")

	assert.True(t, Is(err, CodeEncodeFailed))
	assert.False(t, Is(err, CodeProbeFailed))

	// Test with regular error
	regularErr := errors.New("regular error")
	assert.False(t, Is(regularErr, CodeEncodeFailed))
}

func TestGetCode(t *testing.T) {
	// AppError
	appErr := New(CodeEmptyTranscript, "No caption segments")
	assert.Equal(t, CodeEmptyTranscript, GetCode(appErr))

	// Regular error returns CodeUnknown
	regularErr := errors.New("regular error")
	assert.Equal(t, CodeUnknown, GetCode(regularErr))
}

func TestGetMessage(t *testing.T) {
	// AppError
	appErr := New(CodeFileNotFound, "File not found")
	assert.Equal(t, "File not found", GetMessage(appErr))

	// Regular error returns error message
	regularErr := errors.New("regular error message")
	assert.Equal(t, "regular error message", GetMessage(regularErr))
}

func TestWrapWithDetail(t *testing.T) {
	cause := errors.New("exit status 1")
	err := WrapWithDetail(CodeEncodeFailed, "Encode failed", "format: 9:16 encoder: h264_nvenc", cause)

	assert.Equal(t, CodeEncodeFailed, err.Code)
	assert.Equal(t, "Encode failed", err.Message)
	assert.Equal(t, "format: 9:16 encoder: h264_nvenc", err.Detail)
	assert.Equal(t, cause, err.Cause)
}

func TestPredefinedErrors(t *testing.T) {
	// Verify predefined errors have correct codes
	assert.Equal(t, CodeInvalidParams, ErrInvalidParams.Code)
	assert.Equal(t, CodeProbeFailed, ErrProbeFailed.Code)
	assert.Equal(t, CodeTranscribeFailed, ErrTranscribeFailed.Code)
	assert.Equal(t, CodeEncodeFailed, ErrEncodeFailed.Code)
	assert.Equal(t, CodeDBError, ErrDBError.Code)
}
