package crawl

import (
	"context"
	"fmt"
	"time"

	"github.com/fwojciec/wikimap"
)

// FetchPolicy controls how FetchPage reacts to failures.
type FetchPolicy struct {
	// RetryDelays are the pauses between attempts after a network failure.
	// Nil selects DefaultRetryDelays.
	RetryDelays []time.Duration

	// RenewDelay is the pause between renewing the session and retrying a
	// rate-limited request.
	RenewDelay time.Duration

	// Logger, if set, receives retry and renewal messages.
	Logger LogFunc
}

// DefaultFetchPolicy returns the policy used when none is configured.
func DefaultFetchPolicy() FetchPolicy {
	return FetchPolicy{
		RetryDelays: DefaultRetryDelays(),
		RenewDelay:  wikimap.DefaultRenewDelay,
	}
}

// RateLimitError is returned when a page stays rate limited after the
// session was renewed.
type RateLimitError struct {
	URL string

	// LimitAt is the number of requests the first session served before
	// the wiki started throttling it.
	LimitAt int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited after session renewal: %s (limit at %d requests)", e.URL, e.LimitAt)
}

func (e *RateLimitError) Unwrap() error {
	return wikimap.Errorf(wikimap.ERATELIMITED, "rate limited: %s", e.URL)
}

// FetchPage fetches url through f. Failed attempts are retried with the
// policy's delays. A rate-limited response renews the session, waits
// RenewDelay and retries exactly once; if that retry is rate limited too,
// a *RateLimitError is returned.
func FetchPage(ctx context.Context, f wikimap.Fetcher, url string, policy FetchPolicy) (*wikimap.FetchResult, error) {
	delays := policy.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}

	result, err := FetchWithRetryDelays(ctx, url, f.Fetch, policy.Logger, delays)
	if err != nil {
		return nil, err
	}
	if !result.RateLimited {
		return result, nil
	}

	limitAt := f.Stats().LimitAt
	if policy.Logger != nil {
		policy.Logger("rate limited at %s after %d requests, renewing session", url, limitAt)
	}
	f.Renew()
	if err := sleep(ctx, policy.RenewDelay); err != nil {
		return nil, err
	}

	result, err = FetchWithRetryDelays(ctx, url, f.Fetch, policy.Logger, delays)
	if err != nil {
		return nil, err
	}
	if result.RateLimited {
		return nil, &RateLimitError{URL: url, LimitAt: limitAt}
	}
	return result, nil
}
