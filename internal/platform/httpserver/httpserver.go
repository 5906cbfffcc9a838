package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with sane defaults for the progression API.
// Request handling itself is bounded by the router's timeout middleware.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
