package kitchen

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ariefcatur/go-pos-backend/internal/postgres"
	"github.com/ariefcatur/go-pos-backend/internal/query"
)

type Repo struct{ DB postgres.DBTX }

const orderColumns = `k.id, k.merchant_id, k.order_id, k.online_order_id, k.station_id, s.name,
	k.business_status, k.priority, k.notes, k.started_at, k.completed_at, k.status,
	k.created_at, k.updated_at`

const orderFrom = ` FROM kitchen_orders k
	LEFT JOIN kitchen_stations s ON s.id = k.station_id`

func (r *Repo) OrderExists(ctx context.Context, merchantID, orderID int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id=$1 AND merchant_id=$2 AND status <> 'deleted')`, orderID, merchantID)
}

func (r *Repo) OnlineOrderExists(ctx context.Context, merchantID, onlineOrderID int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM online_orders WHERE id=$1 AND merchant_id=$2 AND status <> 'deleted')`, onlineOrderID, merchantID)
}

func (r *Repo) StationActive(ctx context.Context, merchantID, stationID int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM kitchen_stations WHERE id=$1 AND merchant_id=$2 AND status = 'active')`, stationID, merchantID)
}

func (r *Repo) exists(ctx context.Context, sql string, id, merchantID int64) (bool, error) {
	var ok bool
	err := r.DB.QueryRow(ctx, sql, id, merchantID).Scan(&ok)
	return ok, err
}

func (r *Repo) Create(ctx context.Context, o *Order) error {
	return r.DB.QueryRow(ctx, `
		INSERT INTO kitchen_orders(merchant_id, order_id, online_order_id, station_id, business_status,
			priority, notes, started_at, completed_at, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id, created_at, updated_at`,
		o.MerchantID, o.OrderID, o.OnlineOrderID, o.StationID, string(o.BusinessStatus),
		o.Priority, o.Notes, o.StartedAt, o.CompletedAt, o.Status,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
}

func (r *Repo) Find(ctx context.Context, merchantID, id int64) (*Order, error) {
	return find(ctx, r.DB, merchantID, id, "")
}

func (r *Repo) List(ctx context.Context, merchantID int64, f ListFilter) ([]Order, int, error) {
	if f.Sort.Column == "" {
		f.Sort = query.Sort{Column: sortColumns["createdAt"], Desc: true}
	}
	if f.Page.Limit == 0 {
		f.Page = query.Page{Page: 1, Limit: query.DefaultLimit}
	}

	var b query.Builder
	b.Where("k.merchant_id = ?", merchantID)
	b.Where("k.status = ?", RowActive)
	query.EqIf(&b, "k.order_id", f.OrderID)
	query.EqIf(&b, "k.online_order_id", f.OnlineOrderID)
	query.EqIf(&b, "k.station_id", f.StationID)
	if f.BusinessStatus != nil {
		b.Where("k.business_status = ?", string(*f.BusinessStatus))
	}
	f.Priority.Apply(&b, "k.priority")
	f.Created.Apply(&b, "k.created_at")

	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM kitchen_orders k`+b.WhereSQL(), b.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count kitchen orders: %w", err)
	}

	limit, args := b.LimitOffset(f.Page)
	rows, err := r.DB.Query(ctx, `SELECT `+orderColumns+orderFrom+b.WhereSQL()+f.Sort.Then("k.id")+limit, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list kitchen orders: %w", err)
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *o)
	}
	return out, total, rows.Err()
}

func (r *Repo) Mutate(ctx context.Context, merchantID, id int64, fn func(o *Order) error) (*Order, error) {
	var out *Order
	err := postgres.WithTx(ctx, r.DB, func(tx pgx.Tx) error {
		o, err := find(ctx, tx, merchantID, id, " FOR UPDATE OF k")
		if err != nil {
			return err
		}
		if err := fn(o); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			UPDATE kitchen_orders
			SET order_id=$2, online_order_id=$3, station_id=$4, business_status=$5, priority=$6,
				notes=$7, started_at=$8, completed_at=$9, status=$10, updated_at=now()
			WHERE id=$1`,
			o.ID, o.OrderID, o.OnlineOrderID, o.StationID, string(o.BusinessStatus), o.Priority,
			o.Notes, o.StartedAt, o.CompletedAt, o.Status); err != nil {
			return fmt.Errorf("write kitchen order: %w", err)
		}
		// re-read for the station name and updated_at
		out, err = find(ctx, tx, merchantID, id, "")
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func find(ctx context.Context, db postgres.DBTX, merchantID, id int64, lock string) (*Order, error) {
	row := db.QueryRow(ctx, `SELECT `+orderColumns+orderFrom+` WHERE k.id=$1 AND k.merchant_id=$2`+lock, id, merchantID)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return o, err
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var bs string
	if err := row.Scan(&o.ID, &o.MerchantID, &o.OrderID, &o.OnlineOrderID, &o.StationID, &o.StationName,
		&bs, &o.Priority, &o.Notes, &o.StartedAt, &o.CompletedAt, &o.Status,
		&o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.BusinessStatus = BusinessStatus(bs)
	return &o, nil
}
