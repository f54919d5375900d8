package kitchen

import (
	"errors"
	"time"
)

type BusinessStatus string

const (
	StatusPending   BusinessStatus = "pending"
	StatusStarted   BusinessStatus = "started"
	StatusCompleted BusinessStatus = "completed"
	StatusCancelled BusinessStatus = "cancelled"
)

const businessStatusOneOf = "pending started completed cancelled"

// Row status for soft deletion.
const (
	RowActive  = "active"
	RowDeleted = "deleted"
)

var ErrNotFound = errors.New("not found")

type Order struct {
	ID             int64
	MerchantID     int64
	OrderID        *int64
	OnlineOrderID  *int64
	StationID      *int64
	StationName    *string
	BusinessStatus BusinessStatus
	Priority       int
	Notes          *string
	StartedAt      *time.Time
	CompletedAt    *time.Time
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (o *Order) Deleted() bool { return o.Status == RowDeleted }

// SetBusinessStatus accepts any status. started and completed stamp their
// timestamp the first time they are reached and keep it afterwards.
func (o *Order) SetBusinessStatus(s BusinessStatus, now time.Time) {
	o.BusinessStatus = s
	switch s {
	case StatusStarted:
		if o.StartedAt == nil {
			o.StartedAt = &now
		}
	case StatusCompleted:
		if o.CompletedAt == nil {
			o.CompletedAt = &now
		}
	}
}
