package report

import (
	"context"
	"database/sql"
	"time"

	"greeneats-be/internal/order"

	"github.com/google/uuid"
)

type Repository interface {
	OrdersBetween(ctx context.Context, start, end time.Time) ([]*ReportOrder, error)
	Orders(ctx context.Context, category *string) ([]*ReportOrder, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const reportQuery = `
	SELECT o.id, o.status, o.created_at,
	       COALESCE(p.name, 'Unknown Product'),
	       COALESCE(p.category, ''),
	       oi.quantity, oi.price_at_purchase,
	       COALESCE(p.price, 0), p.original_price,
	       EXISTS (
	           SELECT 1 FROM refunds rf
	           WHERE rf.order_id = o.id
	             AND rf.product_id = oi.product_id
	             AND rf.status = 'approved'
	       )
	FROM orders o
	JOIN order_items oi ON oi.order_id = o.id
	LEFT JOIN products p ON p.id = oi.product_id
`

func (r *repository) queryReportOrders(ctx context.Context, query string, args ...any) ([]*ReportOrder, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		out   []*ReportOrder
		index = map[uuid.UUID]*ReportOrder{}
	)
	for rows.Next() {
		var (
			id        uuid.UUID
			status    string
			createdAt time.Time
			line      Line
		)
		if err := rows.Scan(&id, &status, &createdAt,
			&line.ProductName, &line.Category, &line.Quantity,
			&line.PriceAtPurchase, &line.CurrentPrice, &line.OriginalPrice,
			&line.RefundApproved); err != nil {
			return nil, err
		}

		o, ok := index[id]
		if !ok {
			o = &ReportOrder{ID: id, Status: order.OrderStatus(status), CreatedAt: createdAt}
			index[id] = o
			out = append(out, o)
		}
		o.Lines = append(o.Lines, line)
	}
	return out, rows.Err()
}

func (r *repository) OrdersBetween(ctx context.Context, start, end time.Time) ([]*ReportOrder, error) {
	return r.queryReportOrders(ctx,
		reportQuery+` WHERE o.created_at >= $1 AND o.created_at <= $2 ORDER BY o.created_at ASC, oi.id ASC`,
		start, end)
}

func (r *repository) Orders(ctx context.Context, category *string) ([]*ReportOrder, error) {
	if category != nil {
		return r.queryReportOrders(ctx,
			reportQuery+` WHERE p.category = $1 ORDER BY o.created_at ASC, oi.id ASC`,
			*category)
	}
	return r.queryReportOrders(ctx,
		reportQuery+` ORDER BY o.created_at ASC, oi.id ASC`)
}
