package loyalty

import "time"

type CustomerSummary struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	CurrentPoints  int64  `json:"currentPoints"`
	LifetimePoints int64  `json:"lifetimePoints"`
}

type TransactionResponse struct {
	ID                int64            `json:"id"`
	LoyaltyCustomerID int64            `json:"loyaltyCustomerId"`
	OrderID           *int64           `json:"orderId"`
	PaymentID         *int64           `json:"paymentId"`
	Points            int64            `json:"points"`
	Source            Source           `json:"source"`
	Description       *string          `json:"description"`
	IsActive          bool             `json:"isActive"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
	Customer          *CustomerSummary `json:"loyaltyCustomer,omitempty"`
}

func ToResponse(t *Transaction) TransactionResponse {
	r := TransactionResponse{
		ID:                t.ID,
		LoyaltyCustomerID: t.CustomerID,
		OrderID:           t.OrderID,
		PaymentID:         t.PaymentID,
		Points:            t.Points,
		Source:            t.Source,
		Description:       t.Description,
		IsActive:          t.IsActive,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
	if c := t.Customer; c != nil {
		r.Customer = &CustomerSummary{ID: c.ID, Name: c.Name, CurrentPoints: c.CurrentPoints, LifetimePoints: c.LifetimePoints}
	}
	return r
}

func ToResponses(ts []Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(ts))
	for i := range ts {
		out = append(out, ToResponse(&ts[i]))
	}
	return out
}
