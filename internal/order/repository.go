package order

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"greeneats-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutProduct is the catalog snapshot re-fetched per cart line during
// checkout validation.
type CheckoutProduct struct {
	ID                 uint
	Name               string
	Price              float64
	Stock              int
	DiscountPercentage float64
}

type Repository interface {
	GetProductForCheckout(ctx context.Context, productID uint) (*CheckoutProduct, error)
	CreateOrderTx(ctx context.Context, o *Order) error

	GetOrder(ctx context.Context, orderID uuid.UUID) (*Order, error)
	GetOrdersByUser(ctx context.Context, userID uint) ([]*Order, error)
	GetLatestOrderByUser(ctx context.Context, userID uint) (*Order, error)
	ListAll(ctx context.Context) ([]*Order, error)
	ListBetween(ctx context.Context, start, end time.Time) ([]*Order, error)
	ListWithRefunds(ctx context.Context) ([]*Order, error)
	ListForDelivery(ctx context.Context) ([]*DeliveryOrder, error)

	UpdateStatus(ctx context.Context, orderID uuid.UUID, status OrderStatus, now time.Time) error
	CancelOrderTx(ctx context.Context, o *Order, now time.Time) error

	InsertRefund(ctx context.Context, r *Refund) error
	GetOrderByRefundID(ctx context.Context, refundID uuid.UUID) (*Order, error)
	ApproveRefundTx(ctx context.Context, o *Order, r *Refund, it *Item, note string, markRefunded bool, now time.Time) error
	RejectRefundTx(ctx context.Context, refundID uuid.UUID, note string, now time.Time) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetProductForCheckout(ctx context.Context, productID uint) (*CheckoutProduct, error) {
	var p CheckoutProduct
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, price, stock, discount_percentage
		FROM products
		WHERE id = $1
	`, productID).Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.DiscountPercentage)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &InvalidItemError{Reason: ErrInsufficientStock}
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateOrderTx persists the order, decrements stock for every line with a
// conditional update, and clears the owning cart, all in one transaction.
// A decrement that matches no row means the stock moved under us since
// validation; the whole checkout rolls back.
func (r *repository) CreateOrderTx(ctx context.Context, o *Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("order_id", o.ID.String()),
		zap.Int("item_count", len(o.Items)),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback checkout transaction", zap.Error(rbErr))
			}
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, user_id, total_amount, status,
			ship_name, ship_address, ship_city, ship_postal_code, ship_country,
			created_at, status_updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		o.ID, o.UserID, o.TotalAmount, o.Status,
		o.Address.Name, o.Address.Address, o.Address.City,
		o.Address.PostalCode, o.Address.Country,
		o.CreatedAt, o.StatusUpdatedAt,
	)
	if err != nil {
		return err
	}

	for _, it := range o.Items {
		res, err := tx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock - $1, updated_at = NOW()
			WHERE id = $2 AND stock >= $1
		`, it.Quantity, it.ProductID)
		if err != nil {
			return err
		}
		affected, _ := res.RowsAffected()
		if affected == 0 {
			log.Warn("stock changed during checkout",
				zap.Uint("product_id", it.ProductID))
			return &InvalidItemError{ProductName: it.ProductName, Reason: ErrInsufficientStock}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (
				order_id, product_id, quantity, price_at_purchase, is_discounted
			) VALUES ($1,$2,$3,$4,$5)
		`, o.ID, it.ProductID, it.Quantity, it.PriceAtPurchase, it.IsDiscounted)
		if err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, o.UserID)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	committed = true
	log.Info("order committed")
	return nil
}

const orderColumns = `
	o.id, o.user_id, o.total_amount, o.status,
	o.ship_name, o.ship_address, o.ship_city, o.ship_postal_code, o.ship_country,
	o.created_at, o.status_updated_at
`

func scanOrder(row interface{ Scan(...any) error }) (*Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.TotalAmount, &o.Status,
		&o.Address.Name, &o.Address.Address, &o.Address.City,
		&o.Address.PostalCode, &o.Address.Country,
		&o.CreatedAt, &o.StatusUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) loadItems(ctx context.Context, o *Order) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT oi.id, oi.product_id, COALESCE(p.name, 'Unknown Product'),
		       oi.quantity, oi.price_at_purchase, oi.is_discounted
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id ASC
	`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		it := Item{OrderID: o.ID}
		if err := rows.Scan(&it.ID, &it.ProductID, &it.ProductName,
			&it.Quantity, &it.PriceAtPurchase, &it.IsDiscounted); err != nil {
			return err
		}
		o.Items = append(o.Items, it)
	}
	return rows.Err()
}

func (r *repository) loadRefunds(ctx context.Context, o *Order) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT rf.id, rf.product_id, COALESCE(p.name, 'Unknown Product'),
		       rf.status, rf.requested_at, rf.resolved_at, rf.manager_note
		FROM refunds rf
		LEFT JOIN products p ON p.id = rf.product_id
		WHERE rf.order_id = $1
		ORDER BY rf.requested_at ASC
	`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		rf := Refund{OrderID: o.ID}
		if err := rows.Scan(&rf.ID, &rf.ProductID, &rf.ProductName,
			&rf.Status, &rf.RequestedAt, &rf.ResolvedAt, &rf.ManagerNote); err != nil {
			return err
		}
		o.Refunds = append(o.Refunds, rf)
	}
	return rows.Err()
}

func (r *repository) hydrate(ctx context.Context, o *Order) (*Order, error) {
	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	if err := r.loadRefunds(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) GetOrder(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders o WHERE o.id = $1`, orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.hydrate(ctx, o)
}

func (r *repository) queryOrders(ctx context.Context, query string, args ...any) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, o := range orders {
		if _, err := r.hydrate(ctx, o); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *repository) GetOrdersByUser(ctx context.Context, userID uint) ([]*Order, error) {
	return r.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders o WHERE o.user_id = $1 ORDER BY o.created_at DESC`,
		userID)
}

func (r *repository) GetLatestOrderByUser(ctx context.Context, userID uint) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders o WHERE o.user_id = $1 ORDER BY o.created_at DESC LIMIT 1`,
		userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.hydrate(ctx, o)
}

func (r *repository) ListAll(ctx context.Context) ([]*Order, error) {
	return r.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders o ORDER BY o.created_at DESC`)
}

func (r *repository) ListBetween(ctx context.Context, start, end time.Time) ([]*Order, error) {
	return r.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders o WHERE o.created_at >= $1 AND o.created_at <= $2 ORDER BY o.created_at DESC`,
		start, end)
}

func (r *repository) ListWithRefunds(ctx context.Context) ([]*Order, error) {
	return r.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders o WHERE EXISTS (SELECT 1 FROM refunds rf WHERE rf.order_id = o.id) ORDER BY o.created_at DESC`)
}

// ListForDelivery returns every non-canceled order with the customer joined
// in, for the operations delivery board.
func (r *repository) ListForDelivery(ctx context.Context) ([]*DeliveryOrder, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+`, u.name
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.status <> $1
		ORDER BY o.created_at DESC
	`, StatusCanceled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*DeliveryOrder
	for rows.Next() {
		var (
			o    Order
			name string
		)
		err := rows.Scan(
			&o.ID, &o.UserID, &o.TotalAmount, &o.Status,
			&o.Address.Name, &o.Address.Address, &o.Address.City,
			&o.Address.PostalCode, &o.Address.Country,
			&o.CreatedAt, &o.StatusUpdatedAt,
			&name,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, &DeliveryOrder{Order: &o, CustomerName: name})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, d := range out {
		if _, err := r.hydrate(ctx, d.Order); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *repository) UpdateStatus(ctx context.Context, orderID uuid.UUID, status OrderStatus, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, status_updated_at = $2 WHERE id = $3
	`, status, now, orderID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// CancelOrderTx restocks every line and flips the order to canceled. The
// status flip is conditional on the order still being in processing, which
// guards against a concurrent transition.
func (r *repository) CancelOrderTx(ctx context.Context, o *Order, now time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, status_updated_at = $2
		WHERE id = $3 AND status = $4
	`, StatusCanceled, now, o.ID, StatusProcessing)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotCancellable
	}

	for _, it := range o.Items {
		_, err = tx.ExecContext(ctx, `
			UPDATE products SET stock = stock + $1, updated_at = NOW() WHERE id = $2
		`, it.Quantity, it.ProductID)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *repository) InsertRefund(ctx context.Context, rf *Refund) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refunds (id, order_id, product_id, status, requested_at)
		VALUES ($1,$2,$3,$4,$5)
	`, rf.ID, rf.OrderID, rf.ProductID, rf.Status, rf.RequestedAt)
	return err
}

func (r *repository) GetOrderByRefundID(ctx context.Context, refundID uuid.UUID) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders o
		JOIN refunds rf ON rf.order_id = o.id
		WHERE rf.id = $1
	`, refundID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRefundNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.hydrate(ctx, o)
}

// ApproveRefundTx flips the sub-ledger entry pending -> approved, restocks
// the refunded quantity, and decrements the order total, in one
// transaction. The conditional flip doubles as the already-processed check
// under concurrent approvals.
func (r *repository) ApproveRefundTx(ctx context.Context, o *Order, rf *Refund, it *Item, note string, markRefunded bool, now time.Time) error {
	log := logger.FromCtx(ctx).With(
		zap.String("refund_id", rf.ID.String()),
		zap.String("order_id", o.ID.String()),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE refunds
		SET status = $1, resolved_at = $2, manager_note = $3
		WHERE id = $4 AND status = $5
	`, RefundApproved, now, note, rf.ID, RefundPending)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrRefundAlreadyProcessed
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE products SET stock = stock + $1, updated_at = NOW() WHERE id = $2
	`, it.Quantity, it.ProductID)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE orders SET total_amount = total_amount - $1 WHERE id = $2
	`, it.Subtotal(), o.ID)
	if err != nil {
		return err
	}

	if markRefunded {
		_, err = tx.ExecContext(ctx, `
			UPDATE orders SET status = $1, status_updated_at = $2 WHERE id = $3
		`, StatusRefunded, now, o.ID)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	log.Info("refund approved",
		zap.Float64("refund_amount", it.Subtotal()),
		zap.Bool("order_fully_refunded", markRefunded),
	)
	return nil
}

func (r *repository) RejectRefundTx(ctx context.Context, refundID uuid.UUID, note string, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE refunds
		SET status = $1, resolved_at = $2, manager_note = $3
		WHERE id = $4 AND status = $5
	`, RefundRejected, now, note, refundID, RefundPending)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrRefundAlreadyProcessed
	}
	return nil
}
