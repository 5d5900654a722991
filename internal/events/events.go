// Package events publishes negotiation outcomes to downstream consumers.
// Settlement is handled by whoever consumes the NegotiationAccepted stream.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/diewo77/go-sourcing/internal/logger"
	"go.uber.org/zap"
)

const TypeNegotiationAccepted = "negotiation.accepted"

// NegotiationAccepted is emitted once per negotiation, after the accept commits.
type NegotiationAccepted struct {
	Type          string    `json:"type"`
	NegotiationID uint      `json:"negotiationId"`
	NegID         string    `json:"negId"`
	SellerEmail   string    `json:"sellerEmail"`
	RequestID     string    `json:"requestId"`
	ProductID     string    `json:"productId"`
	AcceptedBy    string    `json:"acceptedBy"`
	Price         float64   `json:"price"`
	SellerAmount  float64   `json:"sellerAmount"`
	Quantity      float64   `json:"quantity"`
	TotalWithGST  float64   `json:"totalWithGst"`
	AcceptedAt    time.Time `json:"acceptedAt"`
}

// Key partitions events per negotiation.
func (e NegotiationAccepted) Key() string { return e.NegID }

func (e NegotiationAccepted) Marshal() ([]byte, error) {
	if e.Type == "" {
		e.Type = TypeNegotiationAccepted
	}
	return json.Marshal(e)
}

type Publisher interface {
	PublishAccepted(ctx context.Context, evt NegotiationAccepted) error
	Close() error
}

// LogPublisher only logs; used when no broker is configured.
type LogPublisher struct{}

func (LogPublisher) PublishAccepted(ctx context.Context, evt NegotiationAccepted) error {
	logger.Info(ctx, "negotiation accepted",
		zap.String("neg_id", evt.NegID),
		zap.String("request_id_ref", evt.RequestID),
		zap.Float64("price", evt.Price),
		zap.Float64("quantity", evt.Quantity),
	)
	return nil
}

func (LogPublisher) Close() error { return nil }
