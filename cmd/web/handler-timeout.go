package main

import (
	"net/http"
	"time"
)

const timeoutBody = `{"error":"request timed out"}`

// timeoutMiddleware responds with a 503 Service Unavailable error when the handler does not meet the deadline.
func timeoutMiddleware(defaultTimeout time.Duration) func(http.Handler) http.Handler {
	// We want the timeout to be a little shorter than the server's write timeout so that the
	// timeout handler has a chance to respond before the server closes the connection.
	httpHandlerTimeout := defaultTimeout - 500*time.Millisecond //nolint:mnd // 500ms
	return func(h http.Handler) http.Handler {
		return http.TimeoutHandler(h, httpHandlerTimeout, timeoutBody)
	}
}
