package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedClient struct {
	errs  []error
	calls int
}

func (s *scriptedClient) Complete(ctx context.Context, req Request) (string, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	return "ok", nil
}

func TestShouldRetry(t *testing.T) {
	cases := map[error]bool{
		nil:                      false,
		ErrNotConfigured:         false,
		context.DeadlineExceeded: true,
		errors.New("openai http status 503: busy"):       true,
		errors.New("gemini http status 429: slow down"):  true,
		errors.New("read tcp: connection reset by peer"): true,
		errors.New("openai http status 400: bad prompt"): false,
		fmt.Errorf("wrap: %w", ErrNotConfigured):         false,
	}
	for err, want := range cases {
		assert.Equal(t, want, ShouldRetry(err), "%v", err)
	}
}

func TestRetryOnceOnTransientError(t *testing.T) {
	base := &scriptedClient{errs: []error{errors.New("openai http status 502: bad gateway")}}
	c := retryingClient{base: base, delay: time.Millisecond}

	out, err := c.Complete(context.Background(), Request{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 2, base.calls)
}

func TestRetryGivesUpAfterSecondFailure(t *testing.T) {
	transient := errors.New("connection reset")
	base := &scriptedClient{errs: []error{transient, transient}}
	c := retryingClient{base: base, delay: time.Millisecond}

	_, err := c.Complete(context.Background(), Request{})
	assert.ErrorIs(t, err, transient)
	assert.Equal(t, 2, base.calls)
}

func TestNoRetryOnPermanentError(t *testing.T) {
	base := &scriptedClient{errs: []error{errors.New("openai http status 401: bad key")}}
	c := retryingClient{base: base, delay: time.Millisecond}

	_, err := c.Complete(context.Background(), Request{})
	assert.Error(t, err)
	assert.Equal(t, 1, base.calls)
}

func TestRetryHonorsCancellation(t *testing.T) {
	base := &scriptedClient{errs: []error{errors.New("timeout")}}
	c := retryingClient{base: base, delay: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Complete(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, base.calls)
}

func TestPlaceholderAndInstrument(t *testing.T) {
	c := Instrument(WithRetry(PlaceholderClient{}), "none")
	_, err := c.Complete(context.Background(), Request{Prompt: "x"})
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Nil(t, WithRetry(nil))
	assert.Nil(t, Instrument(nil, "x"))
}
