package llm

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"business-navigator/internal/shared/metrics"
	"business-navigator/internal/shared/telemetry"
)

const retryBaseDelay = 300 * time.Millisecond

type retryingClient struct {
	base  Client
	delay time.Duration
}

// WithRetry retries a transient failure once after a short delay.
func WithRetry(base Client) Client {
	if base == nil {
		return nil
	}
	return retryingClient{base: base, delay: retryBaseDelay}
}

func (r retryingClient) Complete(ctx context.Context, req Request) (string, error) {
	out, err := r.base.Complete(ctx, req)
	if err == nil || !ShouldRetry(err) {
		return out, err
	}

	telemetry.Warn("llm.retry", map[string]any{
		"attempt": 1,
		"error":   sanitizeError(err),
	})
	select {
	case <-time.After(r.delay):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return r.base.Complete(ctx, req)
}

// ShouldRetry reports whether err looks transient: timeouts, 5xx, dropped connections.
func ShouldRetry(err error) bool {
	if err == nil || errors.Is(err, ErrNotConfigured) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "http status 5") || strings.Contains(msg, "server_error") || strings.Contains(msg, "http status 429") {
		return true
	}
	if strings.Contains(msg, "timeout") {
		return true
	}
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection closed") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "eof")
}

type instrumentedClient struct {
	base     Client
	provider string
}

// Instrument records request, failure and latency metrics per provider.
func Instrument(base Client, provider string) Client {
	if base == nil {
		return nil
	}
	return instrumentedClient{base: base, provider: provider}
}

func (c instrumentedClient) Complete(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	metrics.IncLLMRequest(c.provider)
	out, err := c.base.Complete(ctx, req)
	elapsed := time.Since(start)
	metrics.ObserveLLMDurationMs(float64(elapsed.Microseconds()) / 1000.0)
	fields := map[string]any{
		"provider":    c.provider,
		"duration_ms": elapsed.Milliseconds(),
		"json":        req.JSON,
	}
	if err != nil {
		metrics.IncLLMFailure(c.provider)
		fields["error"] = sanitizeError(err)
		telemetry.Warn("llm.complete_failed", fields)
		return "", err
	}
	fields["response_chars"] = len(out)
	telemetry.Info("llm.complete", fields)
	return out, nil
}

func sanitizeError(err error) string {
	msg := err.Error()
	if len(msg) > 300 {
		msg = msg[:300] + "..."
	}
	return msg
}
