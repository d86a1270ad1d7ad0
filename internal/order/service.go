package order

import (
	"context"
	"time"

	"greeneats-be/internal/cart"
	"greeneats-be/internal/logger"
	"greeneats-be/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier delivers customer-facing notifications. Implementations must not
// block; a failed delivery never fails the triggering operation.
type Notifier interface {
	RefundApproved(email string, orderID uuid.UUID, productName, note string)
	RefundRejected(email string, orderID uuid.UUID, productName, note string)
}

type Service interface {
	PlaceOrder(ctx context.Context, userID uint, addr ShippingAddress) (*Order, error)
	GetOrder(ctx context.Context, userID uint, isAdmin bool, orderID uuid.UUID) (*Order, error)
	GetHistory(ctx context.Context, userID uint) ([]*Order, error)
	GetLatestStatus(ctx context.Context, userID uint) (*Order, error)
	ListAll(ctx context.Context) ([]*Order, error)
	ListBetween(ctx context.Context, start, end time.Time) ([]*Order, error)
	ListRefundRequests(ctx context.Context) ([]*Order, error)
	DeliveryList(ctx context.Context) ([]*DeliveryOrder, error)

	UpdateStatus(ctx context.Context, orderID uuid.UUID, status OrderStatus) (*Order, error)
	Cancel(ctx context.Context, userID uint, orderID uuid.UUID) (*Order, error)

	RequestRefund(ctx context.Context, userID uint, orderID uuid.UUID, productID uint) (*Order, error)
	ApproveRefund(ctx context.Context, refundID uuid.UUID, note string) (*Order, error)
	RejectRefund(ctx context.Context, refundID uuid.UUID, note string) (*Order, error)
}

type service struct {
	repo     Repository
	carts    cart.Repository
	users    user.Repository
	notifier Notifier
	now      func() time.Time
}

func NewService(repo Repository, carts cart.Repository, users user.Repository, notifier Notifier) Service {
	return &service{
		repo:     repo,
		carts:    carts,
		users:    users,
		notifier: notifier,
		now:      time.Now,
	}
}

// PlaceOrder turns the user's cart into an order. Every line is re-validated
// against the live catalog and the unit price is frozen at that moment. The
// repository re-checks stock inside the transaction, so a race between
// validation and commit surfaces as an insufficient stock failure rather
// than oversold inventory.
func (s *service) PlaceOrder(ctx context.Context, userID uint, addr ShippingAddress) (*Order, error) {
	log := logger.FromCtx(ctx).With(zap.Uint("user_id", userID))

	if !addr.Complete() {
		return nil, ErrIncompleteShipping
	}

	c, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		log.Error("failed to load cart", zap.Error(err))
		return nil, err
	}
	if len(c.Items) == 0 {
		return nil, ErrCartEmpty
	}

	now := s.now()
	o := &Order{
		ID:              uuid.New(),
		UserID:          userID,
		Status:          StatusProcessing,
		Address:         addr,
		CreatedAt:       now,
		StatusUpdatedAt: now,
	}

	for _, line := range c.Items {
		if line.Quantity <= 0 {
			return nil, &InvalidItemError{ProductName: line.ProductName, Reason: ErrInvalidQuantity}
		}

		p, err := s.repo.GetProductForCheckout(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if p.Stock < line.Quantity {
			return nil, &InvalidItemError{ProductName: p.Name, Reason: ErrInsufficientStock}
		}

		o.Items = append(o.Items, Item{
			OrderID:         o.ID,
			ProductID:       p.ID,
			ProductName:     p.Name,
			Quantity:        line.Quantity,
			PriceAtPurchase: p.Price,
			IsDiscounted:    p.DiscountPercentage > 0,
		})
		o.TotalAmount += p.Price * float64(line.Quantity)
	}

	if err := s.repo.CreateOrderTx(ctx, o); err != nil {
		log.Error("checkout failed", zap.Error(err))
		return nil, err
	}

	log.Info("order placed",
		zap.String("order_id", o.ID.String()),
		zap.Float64("total_amount", o.TotalAmount),
	)
	return o, nil
}

func (s *service) GetOrder(ctx context.Context, userID uint, isAdmin bool, orderID uuid.UUID) (*Order, error) {
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && o.UserID != userID {
		return nil, ErrNotOwner
	}
	return o, nil
}

func (s *service) GetHistory(ctx context.Context, userID uint) ([]*Order, error) {
	return s.repo.GetOrdersByUser(ctx, userID)
}

func (s *service) GetLatestStatus(ctx context.Context, userID uint) (*Order, error) {
	return s.repo.GetLatestOrderByUser(ctx, userID)
}

func (s *service) ListAll(ctx context.Context) ([]*Order, error) {
	return s.repo.ListAll(ctx)
}

func (s *service) ListBetween(ctx context.Context, start, end time.Time) ([]*Order, error) {
	return s.repo.ListBetween(ctx, start, end)
}

func (s *service) ListRefundRequests(ctx context.Context) ([]*Order, error) {
	return s.repo.ListWithRefunds(ctx)
}

func (s *service) DeliveryList(ctx context.Context) ([]*DeliveryOrder, error) {
	return s.repo.ListForDelivery(ctx)
}

// UpdateStatus moves an order between the operational statuses. Canceled and
// refunded are rejected here: those transitions carry side effects (restock,
// total adjustment) and go through Cancel and the refund sub-ledger.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, status OrderStatus) (*Order, error) {
	if !status.Operational() {
		return nil, ErrInvalidStatus
	}

	now := s.now()
	if err := s.repo.UpdateStatus(ctx, orderID, status, now); err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("order status updated",
		zap.String("order_id", orderID.String()),
		zap.String("status", string(status)),
	)
	return s.repo.GetOrder(ctx, orderID)
}

func (s *service) Cancel(ctx context.Context, userID uint, orderID uuid.UUID) (*Order, error) {
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrNotOwner
	}
	if o.Status != StatusProcessing {
		return nil, ErrNotCancellable
	}

	if err := s.repo.CancelOrderTx(ctx, o, s.now()); err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("order canceled",
		zap.String("order_id", orderID.String()),
		zap.Uint("user_id", userID),
	)
	return s.repo.GetOrder(ctx, orderID)
}

// RequestRefund opens a pending sub-ledger entry for one product of a
// delivered order. A rejected entry does not block a new request; a pending
// or approved one does.
func (s *service) RequestRefund(ctx context.Context, userID uint, orderID uuid.UUID, productID uint) (*Order, error) {
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrNotOwner
	}
	if o.Status != StatusDelivered {
		return nil, ErrNotDelivered
	}
	if !o.IsReturnable(s.now()) {
		return nil, ErrReturnWindowClosed
	}
	if o.ItemFor(productID) == nil {
		return nil, ErrProductNotInOrder
	}
	if o.HasPendingRefund(productID) {
		return nil, ErrRefundPendingExists
	}
	for _, rf := range o.Refunds {
		if rf.ProductID == productID && rf.Status == RefundApproved {
			return nil, ErrRefundAlreadyProcessed
		}
	}

	rf := &Refund{
		ID:          uuid.New(),
		OrderID:     orderID,
		ProductID:   productID,
		Status:      RefundPending,
		RequestedAt: s.now(),
	}
	if err := s.repo.InsertRefund(ctx, rf); err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("refund requested",
		zap.String("refund_id", rf.ID.String()),
		zap.String("order_id", orderID.String()),
		zap.Uint("product_id", productID),
	)
	return s.repo.GetOrder(ctx, orderID)
}

// ApproveRefund resolves a pending entry, restocks the line, and decrements
// the order total by the frozen line subtotal. When every line carries an
// approved refund the order itself flips to refunded.
func (s *service) ApproveRefund(ctx context.Context, refundID uuid.UUID, note string) (*Order, error) {
	o, err := s.repo.GetOrderByRefundID(ctx, refundID)
	if err != nil {
		return nil, err
	}

	rf := o.RefundByID(refundID)
	if rf == nil {
		return nil, ErrRefundNotFound
	}
	if rf.Status != RefundPending {
		return nil, ErrRefundAlreadyProcessed
	}

	it := o.ItemFor(rf.ProductID)
	if it == nil {
		return nil, ErrProductNotInOrder
	}

	markRefunded := o.AllItemsRefunded(refundID)
	if err := s.repo.ApproveRefundTx(ctx, o, rf, it, note, markRefunded, s.now()); err != nil {
		return nil, err
	}

	s.notifyResolved(ctx, o, rf.ProductName, note, true)
	return s.repo.GetOrder(ctx, o.ID)
}

func (s *service) RejectRefund(ctx context.Context, refundID uuid.UUID, note string) (*Order, error) {
	o, err := s.repo.GetOrderByRefundID(ctx, refundID)
	if err != nil {
		return nil, err
	}

	rf := o.RefundByID(refundID)
	if rf == nil {
		return nil, ErrRefundNotFound
	}
	if rf.Status != RefundPending {
		return nil, ErrRefundAlreadyProcessed
	}

	if err := s.repo.RejectRefundTx(ctx, refundID, note, s.now()); err != nil {
		return nil, err
	}

	s.notifyResolved(ctx, o, rf.ProductName, note, false)
	return s.repo.GetOrder(ctx, o.ID)
}

func (s *service) notifyResolved(ctx context.Context, o *Order, productName, note string, approved bool) {
	u, err := s.users.FindByID(ctx, o.UserID)
	if err != nil {
		logger.FromCtx(ctx).Warn("skipping refund notification, user lookup failed",
			zap.Uint("user_id", o.UserID),
			zap.Error(err),
		)
		return
	}
	if approved {
		s.notifier.RefundApproved(u.Email, o.ID, productName, note)
	} else {
		s.notifier.RefundRejected(u.Email, o.ID, productName, note)
	}
}
