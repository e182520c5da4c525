// Package queue moves event messages over gocloud pubsub topics. The mem://
// driver serves in-process defaults, nats:// is available for deployments
// with a broker.
package queue

import (
	"context"
)

// SubscribeWorker handles one received message.
type SubscribeWorker interface {
	Handle(ctx context.Context, header map[string]string, payload []byte) error
}

// Manager owns the publishers and subscribers a service registers.
type Manager interface {
	AddPublisher(ctx context.Context, reference string, queueURL string) error
	GetPublisher(reference string) (Publisher, error)

	AddSubscriber(ctx context.Context, reference string, queueURL string, handlers ...SubscribeWorker) error

	// Publish sends payload on the publisher registered under reference.
	Publish(ctx context.Context, reference string, payload any, headers ...map[string]string) error

	Stop(ctx context.Context) error
}

// Publisher sends messages to a single topic.
type Publisher interface {
	Ref() string
	Initiated() bool
	Init(ctx context.Context) error
	Publish(ctx context.Context, payload any, headers ...map[string]string) error
	Stop(ctx context.Context) error
}

// Subscriber pulls messages from a single subscription and dispatches them to
// its handlers.
type Subscriber interface {
	Ref() string
	Initiated() bool
	Init(ctx context.Context) error
	Stop(ctx context.Context) error
}
