package validation

import "context"

// Completer runs a single chat completion round trip.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}
