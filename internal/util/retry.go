// ABOUTME: Retry helpers for provider calls with exponential backoff
// ABOUTME: Shared by the LLM client so retry pacing stays consistent
package util

import (
	"math/rand/v2"
	"time"
)

// maxBackoff caps a single backoff interval
const maxBackoff = 30 * time.Second

// Backoff returns the exponential delay before the given retry attempt,
// with up to 25% random jitter so concurrent callers do not stampede.
func Backoff(baseDelay time.Duration, attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	if attempt > 30 {
		attempt = 30
	}
	delay := baseDelay * time.Duration(1<<uint(attempt))
	if delay > maxBackoff {
		delay = maxBackoff
	}
	jitter := time.Duration(rand.Int64N(int64(delay)/2)) - delay/4
	return delay + jitter
}
