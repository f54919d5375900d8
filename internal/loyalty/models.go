package loyalty

import (
	"errors"
	"time"
)

type Source string

const (
	SourceOrderReward      Source = "order_reward"
	SourceManualAdjustment Source = "manual_adjustment"
	SourceRewardRedemption Source = "reward_redemption"
	SourceRefund           Source = "refund"
	SourcePromotion        Source = "promotion"
	SourceExpiration       Source = "expiration"
)

const sourceOneOf = "order_reward manual_adjustment reward_redemption refund promotion expiration"

// ErrNotFound is returned by repositories when a row is missing, inactive or
// outside the caller's merchant.
var ErrNotFound = errors.New("not found")

type Customer struct {
	ID             int64
	ProgramID      int64
	Name           string
	CurrentPoints  int64
	LifetimePoints int64
}

type Transaction struct {
	ID          int64
	CustomerID  int64
	OrderID     *int64
	PaymentID   *int64
	Points      int64
	Source      Source
	Description *string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Customer is the owning customer's balance as of the read or write.
	Customer *Customer
}
