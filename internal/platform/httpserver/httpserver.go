// Package httpserver constructs the process's http.Server with timeouts
// suited to a small JSON API. Per-request deadlines are enforced by the
// timeout middleware; these settings bound slow clients at the edge.
package httpserver

import (
	"net/http"
	"time"
)

func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
