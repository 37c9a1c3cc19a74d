// Package events publishes storefront domain events to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EventsExchange = "storefront.events"

	CartLineAddedRoutingKey = "cart.line.added.v1"
	EventTypeCartLineAdded  = "CartLineAdded"
	cartLineAddedSchema     = "storefront/cart.line.added/v1"

	producerName = "storefront-api"
)

// Envelope wraps every published payload.
type Envelope struct {
	EventName    string          `json:"eventName"`
	EventVersion int             `json:"eventVersion"`
	EventID      string          `json:"eventId"`
	Producer     string          `json:"producer"`
	PartitionKey string          `json:"partitionKey"`
	OccurredAt   time.Time       `json:"occurredAt"`
	Schema       string          `json:"schema"`
	Payload      json.RawMessage `json:"payload"`
}

type CartLineAdded struct {
	OwnerKind   string  `json:"ownerKind"`
	OwnerID     string  `json:"ownerId"`
	LineID      string  `json:"lineId"`
	ProductID   string  `json:"productId"`
	VariationID *string `json:"variationId"`
	Added       int     `json:"added"`
	Quantity    int     `json:"quantity"`
}

// Publisher emits cart events. Implementations must not block callers for
// longer than their own publish timeout.
type Publisher interface {
	PublishCartLineAdded(ctx context.Context, ev CartLineAdded) error
	Close() error
}

func newCartLineAddedEnvelope(ev CartLineAdded, occurredAt time.Time) (Envelope, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventName:    EventTypeCartLineAdded,
		EventVersion: 1,
		EventID:      uuid.NewString(),
		Producer:     producerName,
		PartitionKey: ev.OwnerKind + ":" + ev.OwnerID,
		OccurredAt:   occurredAt,
		Schema:       cartLineAddedSchema,
		Payload:      payload,
	}, nil
}

// Noop discards events. Used when no broker is configured.
type Noop struct{}

func (Noop) PublishCartLineAdded(context.Context, CartLineAdded) error { return nil }

func (Noop) Close() error { return nil }
