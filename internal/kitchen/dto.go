package kitchen

import (
	"net/url"

	"github.com/ariefcatur/go-pos-backend/internal/apperr"
	"github.com/ariefcatur/go-pos-backend/internal/optional"
	"github.com/ariefcatur/go-pos-backend/internal/query"
	"github.com/ariefcatur/go-pos-backend/internal/validate"
)

type CreateInput struct {
	OrderID        *int64         `json:"orderId" validate:"omitempty,gt=0"`
	OnlineOrderID  *int64         `json:"onlineOrderId" validate:"omitempty,gt=0"`
	StationID      *int64         `json:"stationId" validate:"omitempty,gt=0"`
	BusinessStatus BusinessStatus `json:"businessStatus" validate:"omitempty,oneof=pending started completed cancelled"`
	Priority       int            `json:"priority" validate:"min=0,max=10"`
	Notes          *string        `json:"notes" validate:"omitempty,max=500"`
}

func (in CreateInput) Validate() error {
	if err := validate.Struct(in); err != nil {
		return err
	}
	if (in.OrderID == nil) == (in.OnlineOrderID == nil) {
		return apperr.BadRequest("exactly one of orderId or onlineOrderId is required")
	}
	return nil
}

// UpdateInput carries the PATCH body. A link key that is present replaces
// both links: the other one is cleared unless it is also sent with a value.
type UpdateInput struct {
	OrderID        optional.Field[int64]          `json:"orderId"`
	OnlineOrderID  optional.Field[int64]          `json:"onlineOrderId"`
	StationID      optional.Field[int64]          `json:"stationId"`
	BusinessStatus optional.Field[BusinessStatus] `json:"businessStatus"`
	Priority       optional.Field[int]            `json:"priority"`
	Notes          optional.Field[string]         `json:"notes"`
}

func (in UpdateInput) Validate() error {
	if in.Empty() {
		return apperr.BadRequest("no fields to update")
	}
	if in.OrderID.HasValue() && in.OnlineOrderID.HasValue() {
		return apperr.BadRequest("orderId and onlineOrderId cannot both be set")
	}
	for name, f := range map[string]optional.Field[int64]{
		"orderId":       in.OrderID,
		"onlineOrderId": in.OnlineOrderID,
		"stationId":     in.StationID,
	} {
		if f.HasValue() && f.Value <= 0 {
			return apperr.BadRequest("%s must be a positive id", name)
		}
	}
	if in.BusinessStatus.Set {
		if in.BusinessStatus.Null {
			return apperr.BadRequest("businessStatus cannot be null")
		}
		if err := validate.Var("businessStatus", string(in.BusinessStatus.Value), "oneof="+businessStatusOneOf); err != nil {
			return err
		}
	}
	if in.Priority.Set {
		if in.Priority.Null {
			return apperr.BadRequest("priority cannot be null")
		}
		if err := validate.Var("priority", in.Priority.Value, "min=0,max=10"); err != nil {
			return err
		}
	}
	if in.Notes.HasValue() {
		if err := validate.Var("notes", in.Notes.Value, "max=500"); err != nil {
			return err
		}
	}
	return nil
}

func (in UpdateInput) Empty() bool {
	return !in.linksTouched() && !in.StationID.Set && !in.BusinessStatus.Set && !in.Priority.Set && !in.Notes.Set
}

func (in UpdateInput) linksTouched() bool { return in.OrderID.Set || in.OnlineOrderID.Set }

var sortColumns = map[string]string{
	"createdAt":      "k.created_at",
	"updatedAt":      "k.updated_at",
	"priority":       "k.priority",
	"businessStatus": "k.business_status",
}

type ListFilter struct {
	OrderID        *int64
	OnlineOrderID  *int64
	StationID      *int64
	BusinessStatus *BusinessStatus
	Priority       query.IntRange
	Created        query.DayRange
	Sort           query.Sort
	Page           query.Page
}

func ParseListFilter(v url.Values) (ListFilter, error) {
	var f ListFilter
	var err error
	if f.Page, err = query.ParsePage(v); err != nil {
		return f, err
	}
	if f.OrderID, err = query.ID(v, "orderId"); err != nil {
		return f, err
	}
	if f.OnlineOrderID, err = query.ID(v, "onlineOrderId"); err != nil {
		return f, err
	}
	if f.StationID, err = query.ID(v, "stationId"); err != nil {
		return f, err
	}
	if s := v.Get("businessStatus"); s != "" {
		if err := validate.Var("businessStatus", s, "oneof="+businessStatusOneOf); err != nil {
			return f, err
		}
		bs := BusinessStatus(s)
		f.BusinessStatus = &bs
	}
	if f.Priority, err = query.ParseIntRange(v, "priorityMin", "priorityMax"); err != nil {
		return f, err
	}
	if f.Created, err = query.ParseDayRange(v, "createdFrom", "createdTo"); err != nil {
		return f, err
	}
	f.Sort = query.ParseSort(v, sortColumns, "createdAt")
	return f, nil
}
