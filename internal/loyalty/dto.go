package loyalty

import (
	"net/url"
	"strings"

	"github.com/ariefcatur/go-pos-backend/internal/apperr"
	"github.com/ariefcatur/go-pos-backend/internal/optional"
	"github.com/ariefcatur/go-pos-backend/internal/query"
	"github.com/ariefcatur/go-pos-backend/internal/validate"
)

type CreateInput struct {
	CustomerID  int64   `json:"loyaltyCustomerId" validate:"required,gt=0"`
	OrderID     int64   `json:"orderId" validate:"required,gt=0"`
	PaymentID   int64   `json:"paymentId" validate:"required,gt=0"`
	Points      int64   `json:"points" validate:"ne=0,min=-1000000,max=1000000"`
	Source      Source  `json:"source" validate:"required,oneof=order_reward manual_adjustment reward_redemption refund promotion expiration"`
	Description *string `json:"description" validate:"omitempty,max=255"`
}

func (in CreateInput) Validate() error { return validate.Struct(in) }

// UpdateInput carries only the fields present in the PATCH body.
// orderId, paymentId and description may be null to clear the link or text.
type UpdateInput struct {
	Points      optional.Field[int64]  `json:"points"`
	Source      optional.Field[Source] `json:"source"`
	Description optional.Field[string] `json:"description"`
	OrderID     optional.Field[int64]  `json:"orderId"`
	PaymentID   optional.Field[int64]  `json:"paymentId"`
}

func (in UpdateInput) Validate() error {
	if in.Points.Set {
		if in.Points.Null {
			return apperr.BadRequest("points cannot be null")
		}
		if err := validate.Var("points", in.Points.Value, "ne=0,min=-1000000,max=1000000"); err != nil {
			return err
		}
	}
	if in.Source.Set {
		if in.Source.Null {
			return apperr.BadRequest("source cannot be null")
		}
		if err := validate.Var("source", string(in.Source.Value), "oneof="+sourceOneOf); err != nil {
			return err
		}
	}
	if in.Description.HasValue() {
		if err := validate.Var("description", in.Description.Value, "max=255"); err != nil {
			return err
		}
	}
	if in.OrderID.HasValue() && in.OrderID.Value <= 0 {
		return apperr.BadRequest("orderId must be a positive id")
	}
	if in.PaymentID.HasValue() && in.PaymentID.Value <= 0 {
		return apperr.BadRequest("paymentId must be a positive id")
	}
	return nil
}

func (in UpdateInput) Empty() bool {
	return !in.Points.Set && !in.Source.Set && !in.Description.Set && !in.OrderID.Set && !in.PaymentID.Set
}

var sortColumns = map[string]string{
	"createdAt": "t.created_at",
	"updatedAt": "t.updated_at",
	"points":    "t.points",
	"source":    "t.source",
}

type ListFilter struct {
	CustomerID *int64
	OrderID    *int64
	PaymentID  *int64
	Source     string // case-insensitive substring of the source value
	Points     query.IntRange
	Created    query.DayRange
	Sort       query.Sort
	Page       query.Page
}

func ParseListFilter(v url.Values) (ListFilter, error) {
	var f ListFilter
	var err error
	if f.Page, err = query.ParsePage(v); err != nil {
		return f, err
	}
	if f.CustomerID, err = query.ID(v, "loyaltyCustomerId"); err != nil {
		return f, err
	}
	if f.OrderID, err = query.ID(v, "orderId"); err != nil {
		return f, err
	}
	if f.PaymentID, err = query.ID(v, "paymentId"); err != nil {
		return f, err
	}
	if f.Points, err = query.ParseIntRange(v, "pointsMin", "pointsMax"); err != nil {
		return f, err
	}
	if f.Created, err = query.ParseDayRange(v, "createdFrom", "createdTo"); err != nil {
		return f, err
	}
	f.Source = strings.TrimSpace(v.Get("source"))
	f.Sort = query.ParseSort(v, sortColumns, "createdAt")
	return f, nil
}
