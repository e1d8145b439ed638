// Package httpc builds outbound HTTP clients with production timeouts.
// Use this instead of http.DefaultClient, which has no timeout at all.
package httpc

import (
	"net"
	"net/http"
	"time"
)

// Transport defaults.
const (
	DefaultConnectTimeout  = 10 * time.Second
	DefaultKeepAlive       = 30 * time.Second
	DefaultIdleConnTimeout = 90 * time.Second
	DefaultTLSTimeout      = 10 * time.Second
)

// NewTransport returns a pooled transport shared by all sessions of a client.
// Connections to the backend are reused across rooms; each request still
// closes its own response body.
func NewTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   DefaultConnectTimeout,
			KeepAlive: DefaultKeepAlive,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       DefaultIdleConnTimeout,
		TLSHandshakeTimeout:   DefaultTLSTimeout,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// New creates an HTTP client whose total request time is bounded by timeout.
// A non-positive timeout leaves the client unbounded; callers should then
// bound requests with a context deadline.
func New(timeout time.Duration) *http.Client {
	if timeout < 0 {
		timeout = 0
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: NewTransport(),
	}
}
