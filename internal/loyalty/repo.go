package loyalty

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ariefcatur/go-pos-backend/internal/postgres"
	"github.com/ariefcatur/go-pos-backend/internal/query"
)

type Repo struct{ DB postgres.DBTX }

const transactionColumns = `t.id, t.loyalty_customer_id, t.order_id, t.payment_id, t.points, t.source,
	t.description, t.is_active, t.created_at, t.updated_at`

// transactions joined to their customer and the program that scopes them to a merchant
const transactionFrom = ` FROM loyalty_point_transactions t
	JOIN loyalty_customers c ON c.id = t.loyalty_customer_id
	JOIN loyalty_programs p ON p.id = c.program_id`

func (r *Repo) OrderExists(ctx context.Context, merchantID, orderID int64) (bool, error) {
	var ok bool
	err := r.DB.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM orders WHERE id=$1 AND merchant_id=$2 AND status <> 'deleted')`,
		orderID, merchantID).Scan(&ok)
	return ok, err
}

func (r *Repo) PaymentActive(ctx context.Context, merchantID, paymentID int64) (bool, error) {
	var ok bool
	err := r.DB.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM payments WHERE id=$1 AND merchant_id=$2 AND status = 'active')`,
		paymentID, merchantID).Scan(&ok)
	return ok, err
}

func (r *Repo) FindTransaction(ctx context.Context, merchantID, id int64) (*Transaction, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+transactionColumns+`, c.name, c.current_points, c.lifetime_points`+
		transactionFrom+` WHERE t.id=$1 AND p.merchant_id=$2 AND t.is_active`, id, merchantID)
	t, err := scanWithCustomer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

func (r *Repo) List(ctx context.Context, merchantID int64, f ListFilter) ([]Transaction, int, error) {
	if f.Sort.Column == "" {
		f.Sort = query.Sort{Column: sortColumns["createdAt"], Desc: true}
	}
	if f.Page.Limit == 0 {
		f.Page = query.Page{Page: 1, Limit: query.DefaultLimit}
	}

	var b query.Builder
	b.Where("p.merchant_id = ?", merchantID)
	b.Where("t.is_active")
	query.EqIf(&b, "t.loyalty_customer_id", f.CustomerID)
	query.EqIf(&b, "t.order_id", f.OrderID)
	query.EqIf(&b, "t.payment_id", f.PaymentID)
	if f.Source != "" {
		b.Where("t.source ILIKE ?", "%"+escapeLike(f.Source)+"%")
	}
	f.Points.Apply(&b, "t.points")
	f.Created.Apply(&b, "t.created_at")

	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*)`+transactionFrom+b.WhereSQL(), b.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	limit, args := b.LimitOffset(f.Page)
	rows, err := r.DB.Query(ctx, `SELECT `+transactionColumns+`, c.name, c.current_points, c.lifetime_points`+
		transactionFrom+b.WhereSQL()+f.Sort.Then("t.id")+limit, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := []Transaction{}
	for rows.Next() {
		t, err := scanWithCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *t)
	}
	return out, total, rows.Err()
}

func (r *Repo) InTx(ctx context.Context, fn func(tx Tx) error) error {
	return postgres.WithTx(ctx, r.DB, func(tx pgx.Tx) error {
		return fn(&txRepo{tx: tx})
	})
}

type txRepo struct{ tx pgx.Tx }

func (r *txRepo) LockCustomer(ctx context.Context, merchantID, customerID int64) (*Customer, error) {
	var c Customer
	err := r.tx.QueryRow(ctx, `
		SELECT c.id, c.program_id, c.name, c.current_points, c.lifetime_points
		FROM loyalty_customers c
		JOIN loyalty_programs p ON p.id = c.program_id
		WHERE c.id=$1 AND p.merchant_id=$2 AND c.is_active
		FOR UPDATE OF c`, customerID, merchantID).
		Scan(&c.ID, &c.ProgramID, &c.Name, &c.CurrentPoints, &c.LifetimePoints)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *txRepo) LockTransaction(ctx context.Context, merchantID, id int64) (*Transaction, error) {
	row := r.tx.QueryRow(ctx, `SELECT `+transactionColumns+transactionFrom+`
		WHERE t.id=$1 AND p.merchant_id=$2 AND t.is_active
		FOR UPDATE OF t`, id, merchantID)
	t, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

func (r *txRepo) SaveBalance(ctx context.Context, c *Customer) error {
	ct, err := r.tx.Exec(ctx, `
		UPDATE loyalty_customers SET current_points=$2, lifetime_points=$3, updated_at=now()
		WHERE id=$1`, c.ID, c.CurrentPoints, c.LifetimePoints)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return fmt.Errorf("customer %d: %d rows updated", c.ID, ct.RowsAffected())
	}
	return nil
}

func (r *txRepo) InsertTransaction(ctx context.Context, t *Transaction) error {
	return r.tx.QueryRow(ctx, `
		INSERT INTO loyalty_point_transactions(loyalty_customer_id, order_id, payment_id, points, source, description)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, is_active, created_at, updated_at`,
		t.CustomerID, t.OrderID, t.PaymentID, t.Points, string(t.Source), t.Description,
	).Scan(&t.ID, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
}

func (r *txRepo) UpdateTransaction(ctx context.Context, t *Transaction) error {
	return r.tx.QueryRow(ctx, `
		UPDATE loyalty_point_transactions
		SET order_id=$2, payment_id=$3, points=$4, source=$5, description=$6, is_active=$7, updated_at=now()
		WHERE id=$1
		RETURNING updated_at`,
		t.ID, t.OrderID, t.PaymentID, t.Points, string(t.Source), t.Description, t.IsActive,
	).Scan(&t.UpdatedAt)
}

func scanTransaction(row pgx.Row) (*Transaction, error) {
	var t Transaction
	var src string
	if err := row.Scan(&t.ID, &t.CustomerID, &t.OrderID, &t.PaymentID, &t.Points, &src,
		&t.Description, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Source = Source(src)
	return &t, nil
}

func scanWithCustomer(row pgx.Row) (*Transaction, error) {
	var t Transaction
	var src string
	c := Customer{}
	if err := row.Scan(&t.ID, &t.CustomerID, &t.OrderID, &t.PaymentID, &t.Points, &src,
		&t.Description, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
		&c.Name, &c.CurrentPoints, &c.LifetimePoints); err != nil {
		return nil, err
	}
	t.Source = Source(src)
	c.ID = t.CustomerID
	t.Customer = &c
	return &t, nil
}

func escapeLike(s string) string {
	r := []rune{}
	for _, ch := range s {
		if ch == '%' || ch == '_' || ch == '\\' {
			r = append(r, '\\')
		}
		r = append(r, ch)
	}
	return string(r)
}
