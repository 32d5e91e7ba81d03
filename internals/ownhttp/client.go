// Package ownhttp builds the shared http clients of the launcher
package ownhttp

import (
	"net/http"

	"golang.org/x/time/rate"
)

const userAgent = "polar (https://github.com/polarlauncher/polar)"

// New returns a new http.Client that sets the launcher User-Agent on
// every request
func New() *http.Client {
	return &http.Client{Transport: NewUserAgentTransport(nil)}
}

// NewThrottled returns a client that additionally rate limits outgoing
// requests. Used for third-party services (skin renderers) that we do
// not want to hammer.
func NewThrottled(limiter *rate.Limiter) *http.Client {
	return &http.Client{
		Transport: NewThrottleTransport(NewUserAgentTransport(nil), limiter),
	}
}

// UserAgentTransport decorates requests with the launcher User-Agent
type UserAgentTransport struct {
	T http.RoundTripper
}

func NewUserAgentTransport(T http.RoundTripper) *UserAgentTransport {
	if T == nil {
		T = http.DefaultTransport
	}
	return &UserAgentTransport{T}
}

func (ut *UserAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", userAgent)
	}
	return ut.T.RoundTrip(req)
}
