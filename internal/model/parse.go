package model

import (
	"encoding/json"
	"fmt"
)

// ParseWebhook decodes and validates an inbound webhook body.
// Anything that fails here is fatal for the request only.
func ParseWebhook(raw []byte) (WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return WebhookEvent{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if event.ObjectType == "" {
		return WebhookEvent{}, fmt.Errorf("%w: missing objectType", ErrInvalidPayload)
	}
	if event.Operation == "" {
		return WebhookEvent{}, fmt.Errorf("%w: missing operation", ErrInvalidPayload)
	}

	return event, nil
}
