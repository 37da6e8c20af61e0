package gateway

import (
	"context"
	stderrors "errors"
	"net"
	"regexp"
	"strconv"
	"time"

	"github.com/kapu/viralscope-go/internal/constants"
	"github.com/kapu/viralscope-go/pkg/errors"
	"github.com/openai/openai-go/v3"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// call runs fn under its own deadline and appends every try to trace. With
// retry set, a 5xx failure is retried exactly once after twice the base
// delay. 4xx failures, timeouts and malformed bodies are never retried.
func call[T any](
	ctx context.Context,
	g *Gateway,
	trace *[]Attempt,
	stage Stage,
	channel string,
	timeout time.Duration,
	retry bool,
	fn func(ctx context.Context) (T, error),
) (T, error) {
	maxTries := 1
	if retry {
		maxTries = constants.GatewayConfig.MaxSecondary
	}

	var zero T
	var lastErr error
	for try := 1; try <= maxTries; try++ {
		if try > 1 {
			delay := 2 * g.cfg.RetryBaseDelay
			g.logger.Info("Retrying after server error",
				zap.String("stage", string(stage)),
				zap.String("channel", channel),
				zap.Duration("delay", delay),
			)
			if err := g.sleep(ctx, delay); err != nil {
				return zero, lastErr
			}
		}

		start := time.Now()
		result, err := runWithDeadline(ctx, timeout, fn)
		attempt := Attempt{
			Stage:    stage,
			Channel:  channel,
			Try:      try,
			Status:   statusOf(err),
			Duration: time.Since(start),
		}
		if err == nil {
			*trace = append(*trace, attempt)
			g.logger.Info("Gateway call succeeded",
				zap.String("stage", string(stage)),
				zap.String("channel", channel),
				zap.Int("try", try),
				zap.Duration("duration", attempt.Duration),
			)
			return result, nil
		}

		attempt.Error = err.Error()
		*trace = append(*trace, attempt)
		g.logger.Warn("Gateway call failed",
			zap.String("stage", string(stage)),
			zap.String("channel", channel),
			zap.Int("try", try),
			zap.Int("status", attempt.Status),
			zap.Duration("duration", attempt.Duration),
			zap.Error(err),
		)
		lastErr = err

		if !isRetryable(err) {
			break
		}
	}
	return zero, lastErr
}

func runWithDeadline[T any](ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(callCtx)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var statusInMessage = regexp.MustCompile(`"code":\s*(\d{3})`)

// statusOf extracts the upstream HTTP status carried by err, or 0.
func statusOf(err error) int {
	if err == nil {
		return 0
	}

	var apiErr *errors.APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	var openaiErr *openai.Error
	if stderrors.As(err, &openaiErr) {
		return openaiErr.StatusCode
	}
	var googleErr *googleapi.Error
	if stderrors.As(err, &googleErr) {
		return googleErr.Code
	}
	var genaiErr genai.APIError
	if stderrors.As(err, &genaiErr) {
		return genaiErr.Code
	}
	var genaiPtr *genai.APIError
	if stderrors.As(err, &genaiPtr) {
		return genaiPtr.Code
	}
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
		return 0
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return 0
	}
	if errors.IsCode(err, errors.CodeMalformedResponse) {
		return 0
	}

	// An upstream JSON error body echoed into the message.
	if m := statusInMessage.FindStringSubmatch(err.Error()); m != nil {
		code, _ := strconv.Atoi(m[1])
		return code
	}
	return 0
}

func isRetryable(err error) bool {
	status := statusOf(err)
	return status >= 500 && status < 600
}
