package backend

import "time"

const (
	defaultBaseURL     = "http://localhost:5000/api"
	defaultHTTPTimeout = 10 * time.Second
	defaultBackoff     = 200 * time.Millisecond
	defaultBurst       = 1
	errorBodyLimit     = 512
)
