package events

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/pitabwire/util"
)

const EventHeaderName = "wording._internal.event.header"

type eventQueueHandler struct {
	manager Manager
}

func (eq *eventQueueHandler) Handle(ctx context.Context, header map[string]string, payload []byte) error {
	eventName := header[EventHeaderName]
	if eventName == "" {
		util.Log(ctx).Error("Missing event header in message")
		return errors.New("missing event header")
	}

	eventHandler, err := eq.manager.Get(eventName)
	if err != nil {
		util.Log(ctx).WithError(err).WithField("event", eventName).Error("Event not found in registry")
		return err
	}

	processedPayload, err := decodePayload(eventHandler.PayloadType(), payload)
	if err != nil {
		util.Log(ctx).WithError(err).WithField("event", eventName).Error("Failed to unmarshal payload")
		return err
	}

	err = eventHandler.Validate(ctx, processedPayload)
	if err != nil {
		util.Log(ctx).WithError(err).WithField("event", eventName).Error("Event payload validation failed")
		return err
	}

	err = eventHandler.Execute(ctx, processedPayload)
	if err != nil {
		util.Log(ctx).WithError(err).WithField("event", eventName).Error("Event execution failed")
		return err
	}

	return nil
}

func decodePayload(template any, payload []byte) (any, error) {
	switch template.(type) {
	case nil, []byte:
		return payload, nil
	case json.RawMessage:
		return json.RawMessage(payload), nil
	case string:
		return string(payload), nil
	default:
		if err := json.Unmarshal(payload, &template); err != nil {
			return nil, err
		}
		return template, nil
	}
}
