package bus

import "time"

// Event is a notification published on the bus. Kind is namespaced with a
// dot, e.g. "transcript.progress" or "run.status_changed".
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}
