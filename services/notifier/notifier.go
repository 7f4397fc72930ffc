package notifier

import "context"

// Notifier delivers human-readable messages to the user. Fire-and-forget
// from the monitor's perspective: a single attempt, failures are logged by
// the caller and never abort the run.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}
