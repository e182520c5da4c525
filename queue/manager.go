package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/pitabwire/util"

	"github.com/pitabwire/wording/workerpool"
)

type queueManager struct {
	pool workerpool.Manager

	stopMutex            sync.Mutex
	publishQueueMap      sync.Map
	subscriptionQueueMap sync.Map
}

// NewManager creates a queue manager that runs message handling on the
// supplied worker pool.
func NewManager(_ context.Context, pool workerpool.Manager) Manager {
	return &queueManager{pool: pool}
}

func (q *queueManager) AddPublisher(ctx context.Context, reference string, queueURL string) error {
	pub, _ := q.GetPublisher(reference)
	if pub != nil {
		return nil
	}

	pub = newPublisher(reference, queueURL)
	if err := pub.Init(ctx); err != nil {
		return err
	}

	q.publishQueueMap.Store(reference, pub)
	return nil
}

func (q *queueManager) GetPublisher(reference string) (Publisher, error) {
	val, ok := q.publishQueueMap.Load(reference)
	if !ok {
		return nil, fmt.Errorf("publisher %q is not registered", reference)
	}

	pub, ok := val.(Publisher)
	if !ok {
		return nil, fmt.Errorf("publisher %q is of an unexpected type", reference)
	}
	return pub, nil
}

func (q *queueManager) AddSubscriber(
	ctx context.Context,
	reference string,
	queueURL string,
	handlers ...SubscribeWorker,
) error {
	if _, ok := q.subscriptionQueueMap.Load(reference); ok {
		return nil
	}

	sub := newSubscriber(q.pool, reference, queueURL, handlers...)
	if err := sub.Init(ctx); err != nil {
		return err
	}

	q.subscriptionQueueMap.Store(reference, sub)
	return nil
}

func (q *queueManager) Publish(ctx context.Context, reference string, payload any, headers ...map[string]string) error {
	pub, err := q.GetPublisher(reference)
	if err != nil {
		return err
	}

	return pub.Publish(ctx, payload, headers...)
}

func (q *queueManager) Stop(ctx context.Context) error {
	q.stopMutex.Lock()
	defer q.stopMutex.Unlock()

	var lastErr error

	q.subscriptionQueueMap.Range(func(_, val any) bool {
		if sub, ok := val.(Subscriber); ok {
			if err := sub.Stop(ctx); err != nil {
				util.Log(ctx).WithError(err).WithField("subscriber", sub.Ref()).
					Error("could not stop subscriber")
				lastErr = err
			}
		}
		return true
	})

	q.publishQueueMap.Range(func(_, val any) bool {
		if pub, ok := val.(Publisher); ok {
			if err := pub.Stop(ctx); err != nil {
				util.Log(ctx).WithError(err).WithField("publisher", pub.Ref()).
					Error("could not stop publisher")
				lastErr = err
			}
		}
		return true
	})

	return lastErr
}
