package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strings"
	"sync/atomic"
	"time"

	"gocloud.dev/pubsub"
	_ "gocloud.dev/pubsub/mempubsub" // in-memory pubsub driver registration

	_ "github.com/pitabwire/natspubsub" // NATS pubsub driver registration

	"github.com/pitabwire/wording/language"
)

type publisher struct {
	reference string
	url       string
	topic     *pubsub.Topic
	isInit    atomic.Bool
}

func newPublisher(reference string, queueURL string) Publisher {
	return &publisher{
		reference: reference,
		url:       queueURL,
	}
}

func (p *publisher) Ref() string {
	return p.reference
}

func (p *publisher) Publish(ctx context.Context, payload any, headers ...map[string]string) error {
	metadata := map[string]string{}
	for _, h := range headers {
		maps.Copy(metadata, h)
	}

	lang := language.FromContext(ctx)
	if len(lang) > 0 {
		metadata = language.ToMap(metadata, lang)
	}

	message, err := marshalPayload(payload)
	if err != nil {
		return err
	}

	topic := p.topic
	if topic == nil {
		return errors.New("publisher is not initialized")
	}

	return topic.Send(ctx, &pubsub.Message{
		Body:     message,
		Metadata: metadata,
	})
}

func (p *publisher) Init(ctx context.Context) error {
	if p.isInit.Load() && p.topic != nil {
		return nil
	}

	var err error

	p.topic, err = pubsub.OpenTopic(ctx, p.url)
	if err != nil {
		return err
	}

	p.isInit.Store(true)
	return nil
}

func (p *publisher) Initiated() bool {
	return p.isInit.Load()
}

const defaultPublisherShutdownTimeoutSeconds = 30

func (p *publisher) Stop(ctx context.Context) error {
	var sctx context.Context
	var cancelFunc context.CancelFunc

	select {
	case <-ctx.Done():
		sctx = context.Background()
	default:
		sctx = ctx
	}

	sctx, cancelFunc = context.WithTimeout(sctx, time.Second*defaultPublisherShutdownTimeoutSeconds)
	defer cancelFunc()

	p.isInit.Store(false)

	if p.topic == nil {
		return nil
	}

	// mem:// driver is process-local and shared by URL. Shutting it down here
	// can poison subsequent in-process users of the same topic URL (common in
	// tests).
	if strings.HasPrefix(strings.ToLower(p.url), "mem://") {
		p.topic = nil
		return nil
	}

	err := p.topic.Shutdown(sctx)
	if err != nil && !isTopicAlreadyShutdownErr(err) {
		return err
	}

	p.topic = nil
	return nil
}

func isTopicAlreadyShutdownErr(err error) bool {
	if err == nil {
		return false
	}

	return strings.Contains(strings.ToLower(err.Error()), "topic has been shutdown")
}

func marshalPayload(payload any) ([]byte, error) {
	switch v := payload.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	case json.RawMessage:
		return v, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("could not marshal queue payload: %w", err)
		}
		return data, nil
	}
}
