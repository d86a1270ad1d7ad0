package order

import (
	"context"
	"testing"
	"time"

	"greeneats-be/internal/cart"
	"greeneats-be/internal/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetProductForCheckout(ctx context.Context, productID uint) (*CheckoutProduct, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CheckoutProduct), args.Error(1)
}

func (m *MockRepository) CreateOrderTx(ctx context.Context, o *Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockRepository) GetOrder(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) GetOrdersByUser(ctx context.Context, userID uint) ([]*Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Order), args.Error(1)
}

func (m *MockRepository) GetLatestOrderByUser(ctx context.Context, userID uint) (*Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) ListAll(ctx context.Context) ([]*Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Order), args.Error(1)
}

func (m *MockRepository) ListBetween(ctx context.Context, start, end time.Time) ([]*Order, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Order), args.Error(1)
}

func (m *MockRepository) ListWithRefunds(ctx context.Context) ([]*Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Order), args.Error(1)
}

func (m *MockRepository) ListForDelivery(ctx context.Context) ([]*DeliveryOrder, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*DeliveryOrder), args.Error(1)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, status OrderStatus, now time.Time) error {
	return m.Called(ctx, orderID, status, now).Error(0)
}

func (m *MockRepository) CancelOrderTx(ctx context.Context, o *Order, now time.Time) error {
	return m.Called(ctx, o, now).Error(0)
}

func (m *MockRepository) InsertRefund(ctx context.Context, r *Refund) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRepository) GetOrderByRefundID(ctx context.Context, refundID uuid.UUID) (*Order, error) {
	args := m.Called(ctx, refundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) ApproveRefundTx(ctx context.Context, o *Order, r *Refund, it *Item, note string, markRefunded bool, now time.Time) error {
	return m.Called(ctx, o, r, it, note, markRefunded, now).Error(0)
}

func (m *MockRepository) RejectRefundTx(ctx context.Context, refundID uuid.UUID, note string, now time.Time) error {
	return m.Called(ctx, refundID, note, now).Error(0)
}

type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) GetCart(ctx context.Context, userID uint) (*cart.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartRepository) UpsertItem(ctx context.Context, userID, productID uint, quantity int) error {
	return m.Called(ctx, userID, productID, quantity).Error(0)
}

func (m *MockCartRepository) UpdateQuantity(ctx context.Context, userID, productID uint, quantity int) error {
	return m.Called(ctx, userID, productID, quantity).Error(0)
}

func (m *MockCartRepository) RemoveItem(ctx context.Context, userID, productID uint) error {
	return m.Called(ctx, userID, productID).Error(0)
}

func (m *MockCartRepository) Clear(ctx context.Context, userID uint) error {
	return m.Called(ctx, userID).Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, name, email, hashedPassword string, role user.Role) (*user.User, error) {
	args := m.Called(ctx, name, email, hashedPassword, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) RefundApproved(email string, orderID uuid.UUID, productName, note string) {
	m.Called(email, orderID, productName, note)
}

func (m *MockNotifier) RefundRejected(email string, orderID uuid.UUID, productName, note string) {
	m.Called(email, orderID, productName, note)
}

type fixture struct {
	repo     *MockRepository
	carts    *MockCartRepository
	users    *MockUserRepository
	notifier *MockNotifier
	svc      *service
}

func newFixture(now time.Time) *fixture {
	f := &fixture{
		repo:     new(MockRepository),
		carts:    new(MockCartRepository),
		users:    new(MockUserRepository),
		notifier: new(MockNotifier),
	}
	f.svc = NewService(f.repo, f.carts, f.users, f.notifier).(*service)
	f.svc.now = func() time.Time { return now }
	return f
}

var testAddr = ShippingAddress{
	Name: "Jo", Address: "1 Main St", City: "Berlin",
	PostalCode: "10115", Country: "DE",
}

func TestService_PlaceOrder(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("FreezesPricesAndTotal", func(t *testing.T) {
		f := newFixture(now)

		f.carts.On("GetCart", mock.Anything, uint(7)).Return(&cart.Cart{
			UserID: 7,
			Items: []cart.Item{
				{ProductID: 1, Quantity: 2},
				{ProductID: 2, Quantity: 1},
			},
		}, nil)
		f.repo.On("GetProductForCheckout", mock.Anything, uint(1)).
			Return(&CheckoutProduct{ID: 1, Name: "Oat Milk", Price: 50, Stock: 5}, nil)
		f.repo.On("GetProductForCheckout", mock.Anything, uint(2)).
			Return(&CheckoutProduct{ID: 2, Name: "Tofu", Price: 100, Stock: 3, DiscountPercentage: 20}, nil)
		f.repo.On("CreateOrderTx", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)

		o, err := f.svc.PlaceOrder(ctx, 7, testAddr)
		require.NoError(t, err)

		assert.InDelta(t, 200.0, o.TotalAmount, 1e-9)
		assert.Equal(t, StatusProcessing, o.Status)
		assert.Equal(t, now, o.StatusUpdatedAt)
		require.Len(t, o.Items, 2)
		assert.InDelta(t, 50.0, o.Items[0].PriceAtPurchase, 1e-9)
		assert.False(t, o.Items[0].IsDiscounted)
		assert.True(t, o.Items[1].IsDiscounted)
		f.repo.AssertExpectations(t)
	})

	t.Run("IncompleteShipping", func(t *testing.T) {
		f := newFixture(now)
		_, err := f.svc.PlaceOrder(ctx, 7, ShippingAddress{Name: "Jo"})
		assert.ErrorIs(t, err, ErrIncompleteShipping)
	})

	t.Run("EmptyCart", func(t *testing.T) {
		f := newFixture(now)
		f.carts.On("GetCart", mock.Anything, uint(7)).Return(&cart.Cart{UserID: 7}, nil)

		_, err := f.svc.PlaceOrder(ctx, 7, testAddr)
		assert.ErrorIs(t, err, ErrCartEmpty)
	})

	t.Run("InsufficientStockNamesProduct", func(t *testing.T) {
		f := newFixture(now)
		f.carts.On("GetCart", mock.Anything, uint(7)).Return(&cart.Cart{
			UserID: 7,
			Items:  []cart.Item{{ProductID: 1, Quantity: 10}},
		}, nil)
		f.repo.On("GetProductForCheckout", mock.Anything, uint(1)).
			Return(&CheckoutProduct{ID: 1, Name: "Oat Milk", Price: 50, Stock: 5}, nil)

		_, err := f.svc.PlaceOrder(ctx, 7, testAddr)
		assert.ErrorIs(t, err, ErrInsufficientStock)

		var itemErr *InvalidItemError
		require.ErrorAs(t, err, &itemErr)
		assert.Equal(t, "Oat Milk", itemErr.ProductName)
		f.repo.AssertNotCalled(t, "CreateOrderTx", mock.Anything, mock.Anything)
	})
}

func TestService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("OperationalOnly", func(t *testing.T) {
		f := newFixture(now)
		for _, status := range []OrderStatus{StatusCanceled, StatusRefunded, OrderStatus("shipped")} {
			_, err := f.svc.UpdateStatus(ctx, uuid.New(), status)
			assert.ErrorIs(t, err, ErrInvalidStatus)
		}
		f.repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("BumpsStatusTimestamp", func(t *testing.T) {
		f := newFixture(now)
		o := testOrder()

		f.repo.On("UpdateStatus", mock.Anything, o.ID, StatusDelivered, now).Return(nil)
		f.repo.On("GetOrder", mock.Anything, o.ID).Return(o, nil)

		_, err := f.svc.UpdateStatus(ctx, o.ID, StatusDelivered)
		assert.NoError(t, err)
		f.repo.AssertExpectations(t)
	})
}

func TestService_Cancel(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("NotOwner", func(t *testing.T) {
		f := newFixture(now)
		o := testOrder()
		f.repo.On("GetOrder", mock.Anything, o.ID).Return(o, nil)

		_, err := f.svc.Cancel(ctx, 999, o.ID)
		assert.ErrorIs(t, err, ErrNotOwner)
	})

	t.Run("OnlyFromProcessing", func(t *testing.T) {
		f := newFixture(now)
		o := testOrder()
		o.Status = StatusInTransit
		f.repo.On("GetOrder", mock.Anything, o.ID).Return(o, nil)

		_, err := f.svc.Cancel(ctx, o.UserID, o.ID)
		assert.ErrorIs(t, err, ErrNotCancellable)
		f.repo.AssertNotCalled(t, "CancelOrderTx", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Success", func(t *testing.T) {
		f := newFixture(now)
		o := testOrder()
		f.repo.On("GetOrder", mock.Anything, o.ID).Return(o, nil)
		f.repo.On("CancelOrderTx", mock.Anything, o, now).Return(nil)

		_, err := f.svc.Cancel(ctx, o.UserID, o.ID)
		assert.NoError(t, err)
		f.repo.AssertExpectations(t)
	})
}

func TestService_RequestRefund(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	delivered := func() *Order {
		o := testOrder()
		o.Status = StatusDelivered
		o.StatusUpdatedAt = now.Add(-24 * time.Hour)
		return o
	}

	t.Run("NotDelivered", func(t *testing.T) {
		f := newFixture(now)
		o := testOrder()
		f.repo.On("GetOrder", mock.Anything, o.ID).Return(o, nil)

		_, err := f.svc.RequestRefund(ctx, o.UserID, o.ID, 1)
		assert.ErrorIs(t, err, ErrNotDelivered)
	})

	t.Run("WindowClosed", func(t *testing.T) {
		f := newFixture(now)
		o := delivered()
		o.StatusUpdatedAt = now.Add(-31 * 24 * time.Hour)
		f.repo.On("GetOrder", mock.Anything, o.ID).Return(o, nil)

		_, err := f.svc.RequestRefund(ctx, o.UserID, o.ID, 1)
		assert.ErrorIs(t, err, ErrReturnWindowClosed)
	})

	t.Run("ProductNotInOrder", func(t *testing.T) {
		f := newFixture(now)
		o := delivered()
		f.repo.On("GetOrder", mock.Anything, o.ID).Return(o, nil)

		_, err := f.svc.RequestRefund(ctx, o.UserID, o.ID, 42)
		assert.ErrorIs(t, err, ErrProductNotInOrder)
	})

	t.Run("PendingAlreadyExists", func(t *testing.T) {
		f := newFixture(now)
		o := delivered()
		o.Refunds = []Refund{{ID: uuid.New(), ProductID: 1, Status: RefundPending}}
		f.repo.On("GetOrder", mock.Anything, o.ID).Return(o, nil)

		_, err := f.svc.RequestRefund(ctx, o.UserID, o.ID, 1)
		assert.ErrorIs(t, err, ErrRefundPendingExists)
	})

	t.Run("RejectedDoesNotBlockRetry", func(t *testing.T) {
		f := newFixture(now)
		o := delivered()
		o.Refunds = []Refund{{ID: uuid.New(), ProductID: 1, Status: RefundRejected}}
		f.repo.On("GetOrder", mock.Anything, o.ID).Return(o, nil)
		f.repo.On("InsertRefund", mock.Anything, mock.MatchedBy(func(r *Refund) bool {
			return r.ProductID == 1 && r.Status == RefundPending
		})).Return(nil)

		_, err := f.svc.RequestRefund(ctx, o.UserID, o.ID, 1)
		assert.NoError(t, err)
		f.repo.AssertExpectations(t)
	})

	t.Run("ApprovedBlocksRetry", func(t *testing.T) {
		f := newFixture(now)
		o := delivered()
		o.Refunds = []Refund{{ID: uuid.New(), ProductID: 1, Status: RefundApproved}}
		f.repo.On("GetOrder", mock.Anything, o.ID).Return(o, nil)

		_, err := f.svc.RequestRefund(ctx, o.UserID, o.ID, 1)
		assert.ErrorIs(t, err, ErrRefundAlreadyProcessed)
	})
}

func TestService_ApproveRefund(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("PartialKeepsOrderDelivered", func(t *testing.T) {
		f := newFixture(now)
		o := testOrder()
		o.Status = StatusDelivered
		refundID := uuid.New()
		o.Refunds = []Refund{{ID: refundID, OrderID: o.ID, ProductID: 1, ProductName: "Oat Milk", Status: RefundPending}}

		f.repo.On("GetOrderByRefundID", mock.Anything, refundID).Return(o, nil)
		f.repo.On("ApproveRefundTx", mock.Anything, o, &o.Refunds[0], &o.Items[0], "ok", false, now).Return(nil)
		f.repo.On("GetOrder", mock.Anything, o.ID).Return(o, nil)
		f.users.On("FindByID", mock.Anything, o.UserID).Return(&user.User{ID: o.UserID, Email: "jo@example.com"}, nil)
		f.notifier.On("RefundApproved", "jo@example.com", o.ID, "Oat Milk", "ok").Return()

		_, err := f.svc.ApproveRefund(ctx, refundID, "ok")
		assert.NoError(t, err)
		f.repo.AssertExpectations(t)
		f.notifier.AssertExpectations(t)
	})

	t.Run("LastApprovalMarksOrderRefunded", func(t *testing.T) {
		f := newFixture(now)
		o := testOrder()
		o.Status = StatusDelivered
		refundID := uuid.New()
		o.Refunds = []Refund{
			{ID: uuid.New(), OrderID: o.ID, ProductID: 1, Status: RefundApproved},
			{ID: refundID, OrderID: o.ID, ProductID: 2, ProductName: "Tofu", Status: RefundPending},
		}

		f.repo.On("GetOrderByRefundID", mock.Anything, refundID).Return(o, nil)
		f.repo.On("ApproveRefundTx", mock.Anything, o, &o.Refunds[1], &o.Items[1], "", true, now).Return(nil)
		f.repo.On("GetOrder", mock.Anything, o.ID).Return(o, nil)
		f.users.On("FindByID", mock.Anything, o.UserID).Return(&user.User{ID: o.UserID, Email: "jo@example.com"}, nil)
		f.notifier.On("RefundApproved", "jo@example.com", o.ID, "Tofu", "").Return()

		_, err := f.svc.ApproveRefund(ctx, refundID, "")
		assert.NoError(t, err)
		f.repo.AssertExpectations(t)
	})

	t.Run("AlreadyProcessed", func(t *testing.T) {
		f := newFixture(now)
		o := testOrder()
		refundID := uuid.New()
		o.Refunds = []Refund{{ID: refundID, OrderID: o.ID, ProductID: 1, Status: RefundRejected}}
		f.repo.On("GetOrderByRefundID", mock.Anything, refundID).Return(o, nil)

		_, err := f.svc.ApproveRefund(ctx, refundID, "")
		assert.ErrorIs(t, err, ErrRefundAlreadyProcessed)
		f.repo.AssertNotCalled(t, "ApproveRefundTx",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything,
			mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("NotificationFailureDoesNotFailApproval", func(t *testing.T) {
		f := newFixture(now)
		o := testOrder()
		refundID := uuid.New()
		o.Refunds = []Refund{{ID: refundID, OrderID: o.ID, ProductID: 1, ProductName: "Oat Milk", Status: RefundPending}}

		f.repo.On("GetOrderByRefundID", mock.Anything, refundID).Return(o, nil)
		f.repo.On("ApproveRefundTx", mock.Anything, o, &o.Refunds[0], &o.Items[0], "", false, now).Return(nil)
		f.repo.On("GetOrder", mock.Anything, o.ID).Return(o, nil)
		f.users.On("FindByID", mock.Anything, o.UserID).Return(nil, user.ErrUserNotFound)

		_, err := f.svc.ApproveRefund(ctx, refundID, "")
		assert.NoError(t, err)
		f.notifier.AssertNotCalled(t, "RefundApproved",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_RejectRefund(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	f := newFixture(now)
	o := testOrder()
	refundID := uuid.New()
	o.Refunds = []Refund{{ID: refundID, OrderID: o.ID, ProductID: 1, ProductName: "Oat Milk", Status: RefundPending}}

	f.repo.On("GetOrderByRefundID", mock.Anything, refundID).Return(o, nil)
	f.repo.On("RejectRefundTx", mock.Anything, refundID, "damaged claim unverified", now).Return(nil)
	f.repo.On("GetOrder", mock.Anything, o.ID).Return(o, nil)
	f.users.On("FindByID", mock.Anything, o.UserID).Return(&user.User{ID: o.UserID, Email: "jo@example.com"}, nil)
	f.notifier.On("RefundRejected", "jo@example.com", o.ID, "Oat Milk", "damaged claim unverified").Return()

	_, err := f.svc.RejectRefund(ctx, refundID, "damaged claim unverified")
	assert.NoError(t, err)
	f.repo.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}
