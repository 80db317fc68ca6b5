package telemetry

import (
	"os"
)

// DefaultEventsDir is where events.jsonl lands when MCPC_EVENTS_DIR is unset.
const DefaultEventsDir = ".mcpchat"

var observeEnabled bool

func init() {
	// Read once at process start. Mid-run environment changes only take effect via the
	// explicit override in ObserveEnabled.
	observeEnabled = os.Getenv("MCPC_OBSERVE_JSON") == "1"
}

// ObserveEnabled reports whether JSONL emission is on.
func ObserveEnabled() bool {
	// Allow tests (and the config loader, after reading .env) to enable mid-run.
	if v, ok := os.LookupEnv("MCPC_OBSERVE_JSON"); ok {
		return v == "1"
	}
	return observeEnabled
}

// SetObserve overrides the startup value, used when config comes from a file.
func SetObserve(on bool) { observeEnabled = on }

// EventsDir returns the directory holding events.jsonl.
func EventsDir() string {
	if d := os.Getenv("MCPC_EVENTS_DIR"); d != "" {
		return d
	}
	return DefaultEventsDir
}
