// Package events defines the envelopes published after committed writes.
package events

import (
	"encoding/json"
	"time"
)

const (
	TopicLoyaltyPointsChanged = "loyalty.points.changed"
	TopicKitchenOrderChanged  = "kitchen.order.changed"
	TopicLoyaltyLedgerDrift   = "loyalty.ledger.drift"
)

const (
	EventLoyaltyPointsChanged = "LoyaltyPointsChanged"
	EventKitchenOrderChanged  = "KitchenOrderChanged"
	EventLoyaltyLedgerDrift   = "LoyaltyLedgerDrift"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionRemoved = "removed"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type LoyaltyPointsChanged struct {
	TransactionID  int64  `json:"transaction_id"`
	CustomerID     int64  `json:"customer_id"`
	MerchantID     int64  `json:"merchant_id"`
	Action         string `json:"action"`
	Delta          int64  `json:"delta"`
	CurrentPoints  int64  `json:"current_points"`
	LifetimePoints int64  `json:"lifetime_points"`
}

type KitchenOrderChanged struct {
	KitchenOrderID int64  `json:"kitchen_order_id"`
	MerchantID     int64  `json:"merchant_id"`
	Action         string `json:"action"`
	PreviousStatus string `json:"previous_status,omitempty"`
	BusinessStatus string `json:"business_status"`
	Priority       int    `json:"priority"`
}

type LoyaltyLedgerDrift struct {
	CustomerID       int64  `json:"customer_id"`
	StoredCurrent    int64  `json:"stored_current"`
	StoredLifetime   int64  `json:"stored_lifetime"`
	ExpectedCurrent  int64  `json:"expected_current"`
	ExpectedLifetime int64  `json:"expected_lifetime"`
	SourceEventID    string `json:"source_event_id"`
}
