package router

import "time"

// Config holds the middleware settings shared by the API and info chains.
type Config struct {
	// Timeout bounds every request; zero disables the timeout middleware.
	Timeout time.Duration
	CORS    CORSConfig
	// QuietdownRoutes are paths the logging middleware skips.
	QuietdownRoutes []string
	// HideHeaders are request headers redacted from request logs.
	HideHeaders []string
}

// CORSConfig enables CORS handling when Origins is not empty. An origin of
// "*" allows any origin.
type CORSConfig struct {
	Origins          []string
	Methods          []string
	Headers          []string
	AllowCredentials bool
}
