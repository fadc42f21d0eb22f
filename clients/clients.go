// Package clients holds thin HTTP clients for the remote services the
// pipeline can call: speech recognition and chart rendering.
package clients

import (
	"net/http"
	"time"
)

const defaultTimeout = 60 * time.Second

type HTTP struct{ c *http.Client }

// NewHTTP returns a client whose requests time out after timeout (60s when
// timeout is not positive).
func NewHTTP(timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTP{c: &http.Client{Timeout: timeout}}
}
