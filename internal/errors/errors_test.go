package errors

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorCodes(t *testing.T) {
	err := NewScenarioNotFoundError("onboarding")
	assert.True(t, IsNotFoundError(err))
	assert.False(t, IsValidationError(err))
	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Contains(t, err.Error(), "onboarding")

	v := NewValidationError("bad steps", io.EOF)
	assert.True(t, IsValidationError(v))
	assert.ErrorIs(t, v, io.EOF)
}

func TestWrapErrorKeepsType(t *testing.T) {
	assert.Nil(t, WrapError(nil, "ignored", ErrorTypeError))

	wrapped := WrapError(NewConflictError("exists", nil), "create scenario", ErrorTypeError)
	assert.True(t, IsConflictError(wrapped))
	assert.Equal(t, "create scenario: exists", wrapped.(*AppError).Message)

	plain := WrapError(io.ErrUnexpectedEOF, "read", ErrorTypeError)
	assert.ErrorIs(t, plain, io.ErrUnexpectedEOF)
}

func TestFetchErrors(t *testing.T) {
	scenarioErr := fmt.Errorf("playback: %w", &ScenarioFetchError{ScenarioID: "demo", StatusCode: 503})
	assert.True(t, IsScenarioFetchError(scenarioErr))
	assert.Contains(t, scenarioErr.Error(), "503")

	snippetErr := &SnippetFetchError{Path: "docs/a.html", StatusCode: 500}
	assert.True(t, IsSnippetFetchError(snippetErr))
	assert.False(t, IsSnippetFetchError(scenarioErr))
	assert.Contains(t, snippetErr.Error(), "docs/a.html")

	transport := &SnippetFetchError{Path: "x.txt", Err: errors.New("connection refused")}
	assert.Contains(t, transport.Error(), "connection refused")
}
