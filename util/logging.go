package util

import (
	"fmt"
	"net/http"
	"strings"
)

var LoggingEnabled = false

// LogEndpoint is where LogF posts log lines when LoggingEnabled is set.
// Unlike the hardcoded localhost:8006 target this is adapted from, it's a
// variable so a host embedding this module (patchserver, patchlsp, the CLI)
// can point it at its own log collector.
var LogEndpoint = "http://localhost:8006/log"

// LogF fires a log line at LogEndpoint without waiting for the request to
// finish — a dropped log post must never block or fail the expression
// evaluation that triggered it.
func LogF(format string, args ...interface{}) {
	if !LoggingEnabled {
		return
	}
	message := fmt.Sprintf(format, args...)
	go http.Post(LogEndpoint, "text/plain", strings.NewReader(message))
}
