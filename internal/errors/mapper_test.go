package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	m := NewDefaultErrorMapper()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"rate limit", errors.New("429 Too Many Requests: rate limit reached"), ErrTransient},
		{"bad key", errors.New("Incorrect API key provided"), ErrPermissionDenied},
		{"missing bucket", errors.New("api error NoSuchBucket: bucket does not exist"), ErrNotFound},
		{"deadline", context.DeadlineExceeded, ErrTransient},
		{"connection", errors.New("dial tcp: connection refused"), ErrTransient},
		{"unknown", errors.New("boom"), ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, m.MapError(tt.err), tt.want)
		})
	}
}

func TestMapError_KeepsCategorizedErrors(t *testing.T) {
	m := NewDefaultErrorMapper()
	err := UnknownTool("fly_to_moon")

	assert.Same(t, err, m.MapError(err))
	assert.Equal(t, "ErrUnknownTool", m.Category(err))
	assert.ErrorIs(t, m.MapError(context.Canceled), context.Canceled)
	assert.Nil(t, m.MapError(nil))
}

func TestHTTPStatus(t *testing.T) {
	m := NewDefaultErrorMapper()

	assert.Equal(t, http.StatusOK, m.HTTPStatus(nil))
	assert.Equal(t, http.StatusBadRequest, m.HTTPStatus(InvalidInput("empty message")))
	assert.Equal(t, http.StatusBadRequest, m.HTTPStatus(InvalidToolArguments("ingest_website", errors.New("missing website_url"))))
	assert.Equal(t, http.StatusNotFound, m.HTTPStatus(NotFound("model x")))
	assert.Equal(t, http.StatusBadGateway, m.HTTPStatus(errors.New("401 unauthorized")))
	assert.Equal(t, http.StatusServiceUnavailable, m.HTTPStatus(Transient("slow down")))
	assert.Equal(t, http.StatusNotImplemented, m.HTTPStatus(NotConfigured("speech")))
	assert.Equal(t, 499, m.HTTPStatus(context.Canceled))
	assert.Equal(t, http.StatusInternalServerError, m.HTTPStatus(errors.New("boom")))
}

func TestClassify(t *testing.T) {
	cause := errors.New("429 rate limit exceeded")
	err := Classify(cause, "provider request failed")

	assert.ErrorIs(t, err, ErrTransient)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "provider request failed")

	notFound := NotFound("model gpt-9")
	assert.ErrorIs(t, Classify(notFound, "route"), ErrNotFound)
	assert.Nil(t, Classify(nil, "noop"))
}

func TestWrapHelpers(t *testing.T) {
	cause := fmt.Errorf("decode: %w", errors.New("unexpected EOF"))

	err := InvalidToolArguments("ingest_youtube_video", cause)
	assert.True(t, IsCategory(err, ErrInvalidToolArguments))
	assert.ErrorIs(t, err, cause)

	assert.True(t, IsCategory(WrapWithCategory(cause, "store", ErrInternal), ErrInternal))
	assert.False(t, IsCategory(nil, ErrInternal))
	assert.Nil(t, Wrap(nil, "nothing"))
	assert.Contains(t, UnknownTool("x").Error(), `"x"`)
}
