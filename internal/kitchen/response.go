package kitchen

import "time"

type StationSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type OrderResponse struct {
	ID             int64           `json:"id"`
	OrderID        *int64          `json:"orderId"`
	OnlineOrderID  *int64          `json:"onlineOrderId"`
	StationID      *int64          `json:"stationId"`
	Station        *StationSummary `json:"station,omitempty"`
	BusinessStatus BusinessStatus  `json:"businessStatus"`
	Priority       int             `json:"priority"`
	Notes          *string         `json:"notes"`
	StartedAt      *time.Time      `json:"startedAt"`
	CompletedAt    *time.Time      `json:"completedAt"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func ToResponse(o *Order) OrderResponse {
	r := OrderResponse{
		ID:             o.ID,
		OrderID:        o.OrderID,
		OnlineOrderID:  o.OnlineOrderID,
		StationID:      o.StationID,
		BusinessStatus: o.BusinessStatus,
		Priority:       o.Priority,
		Notes:          o.Notes,
		StartedAt:      o.StartedAt,
		CompletedAt:    o.CompletedAt,
		Status:         o.Status,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
	if o.StationID != nil && o.StationName != nil {
		r.Station = &StationSummary{ID: *o.StationID, Name: *o.StationName}
	}
	return r
}

func ToResponses(orders []Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, ToResponse(&orders[i]))
	}
	return out
}
