package llm

import (
	"net/http"
	"time"
)

type retryHintKey struct{}

// retryHint carries the Retry-After of the last response back to the retry
// loop; go-openai does not expose response headers on errors.
type retryHint struct {
	after time.Duration
}

// headerTransport adds the OpenRouter attribution headers and records
// Retry-After for the request's retryHint.
type headerTransport struct {
	base    http.RoundTripper
	referer string
	title   string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	if t.referer != "" || t.title != "" {
		req = req.Clone(req.Context())
		if t.referer != "" {
			req.Header.Set("HTTP-Referer", t.referer)
		}
		if t.title != "" {
			req.Header.Set("X-Title", t.title)
		}
	}
	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if hint, ok := req.Context().Value(retryHintKey{}).(*retryHint); ok {
		hint.after = parseRetryAfter(resp.Header.Get("Retry-After"))
	}
	return resp, nil
}
