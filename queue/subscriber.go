package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pitabwire/util"
	"gocloud.dev/pubsub"

	"github.com/pitabwire/wording/language"
	"github.com/pitabwire/wording/workerpool"
)

type subscriber struct {
	reference    string
	url          string
	handlers     []SubscribeWorker
	subscription *pubsub.Subscription
	isInit       atomic.Bool

	pool workerpool.Manager
}

func newSubscriber(pool workerpool.Manager, reference string, queueURL string, handlers ...SubscribeWorker) Subscriber {
	return &subscriber{
		reference: reference,
		url:       queueURL,
		handlers:  handlers,
		pool:      pool,
	}
}

func (s *subscriber) Ref() string {
	return s.reference
}

func (s *subscriber) Initiated() bool {
	return s.isInit.Load()
}

func (s *subscriber) Init(ctx context.Context) error {
	if s.isInit.Load() && s.subscription != nil {
		return nil
	}

	if strings.TrimSpace(s.url) == "" {
		return fmt.Errorf("subscriber URL cannot be empty")
	}

	subs, err := pubsub.OpenSubscription(ctx, s.url)
	if err != nil {
		return fmt.Errorf("could not open topic subscription: %w", err)
	}
	s.subscription = subs

	if len(s.handlers) > 0 {
		go s.listen(ctx)
	}

	s.isInit.Store(true)
	return nil
}

func (s *subscriber) Stop(ctx context.Context) error {
	var sctx context.Context
	var cancelFunc context.CancelFunc

	select {
	case <-ctx.Done():
		sctx = context.Background()
	default:
		sctx = ctx
	}

	sctx, cancelFunc = context.WithTimeout(sctx, time.Second)
	defer cancelFunc()

	s.isInit.Store(false)

	if s.subscription != nil {
		return s.subscription.Shutdown(sctx)
	}

	return nil
}

func (s *subscriber) listen(ctx context.Context) {
	logger := util.Log(ctx).
		WithField("name", s.reference).
		WithField("function", "subscription").
		WithField("url", s.url)
	logger.Debug("starting to listen for messages")

	for {
		select {
		case <-ctx.Done():
			if err := s.Stop(ctx); err != nil {
				logger.WithError(err).Error("could not stop subscription")
			}
			logger.Debug("exiting due to canceled context")
			return

		default:
			msg, err := s.subscription.Receive(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					continue
				}
				logger.WithError(err).Error("could not pull message")
				return
			}

			s.processReceivedMessage(ctx, msg)
		}
	}
}

func (s *subscriber) processReceivedMessage(ctx context.Context, msg *pubsub.Message) {
	err := s.pool.Submit(ctx, "queue-message", func(taskCtx context.Context) {
		pCtx := taskCtx

		languages := language.FromMap(msg.Metadata)
		if len(languages) > 0 {
			pCtx = language.ToContext(pCtx, languages)
		}

		for _, worker := range s.handlers {
			if handleErr := worker.Handle(pCtx, msg.Metadata, msg.Body); handleErr != nil {
				util.Log(pCtx).
					WithField("name", s.reference).
					WithField("url", s.url).
					WithError(handleErr).Warn("could not handle message")
				msg.Nack()
				return
			}
		}
		msg.Ack()
	})
	if err != nil {
		msg.Nack()
		util.Log(ctx).
			WithField("name", s.reference).
			WithField("url", s.url).
			WithError(err).Error("could not process message, failed to submit task")
	}
}
