package policies

import "context"

// Notifier delivers a message to a party. Fire-and-forget, at-most-once:
// callers log failures and never let them block the workflow.
type Notifier interface {
	Send(ctx context.Context, to string, event string, payload any) error
}
