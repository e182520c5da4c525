// Package events routes named system events arriving on a queue to their
// registered handlers.
package events

import (
	"context"

	"github.com/pitabwire/wording/queue"
)

// EventI an interface to represent a system event. All logic of an event is
// handled in the execute step.
type EventI interface {
	// Name represents the unique human readable id of the event that is used
	// to pick it from the registry.
	Name() string

	// PayloadType determines the type of payload the event uses. This is
	// useful for decoding queue data.
	PayloadType() any

	// Validate enables automatic validation of payload supplied to the event
	// without handling it in the execute block.
	Validate(ctx context.Context, payload any) error

	// Execute performs all the logic required to action the event.
	Execute(ctx context.Context, payload any) error
}

type Manager interface {
	Add(event EventI)
	Get(name string) (EventI, error)
	Emit(ctx context.Context, name string, payload any) error
	Handler() queue.SubscribeWorker
}
