package audit

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/ariefcatur/go-pos-backend/internal/postgres"
)

type Repo struct{ DB postgres.DBTX }

// Snapshot reads the stored balance and the sums over active transactions in
// one statement, so both sides come from the same snapshot.
func (r *Repo) Snapshot(ctx context.Context, customerID int64) (Snapshot, error) {
	s := Snapshot{CustomerID: customerID}
	err := r.DB.QueryRow(ctx, `
		SELECT c.current_points, c.lifetime_points,
			COALESCE(SUM(t.points) FILTER (WHERE t.is_active), 0),
			COALESCE(SUM(t.points) FILTER (WHERE t.is_active AND t.points > 0), 0)
		FROM loyalty_customers c
		LEFT JOIN loyalty_point_transactions t ON t.loyalty_customer_id = c.id
		WHERE c.id = $1
		GROUP BY c.id`, customerID).
		Scan(&s.StoredCurrent, &s.StoredLifetime, &s.ExpectedCurrent, &s.ExpectedLifetime)
	if errors.Is(err, pgx.ErrNoRows) {
		return s, ErrUnknownCustomer
	}
	return s, err
}
