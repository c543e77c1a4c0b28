package checkout

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// priceTolerance is how far a submitted totalPrice may drift from the item sum.
	priceTolerance = 0.005
	// reconcileBatch caps how many uncleared orders one reconciliation pass handles.
	reconcileBatch = 100
)

type Service struct {
	carts  cartRepo
	orders orderRepo
	logger *zap.Logger
	newID  func() string
}

type cartRepo interface {
	GetByID(ctx context.Context, cartID string) (*domain.Cart, error)
	Clear(ctx context.Context, cartID string) (*domain.Cart, error)
	ClearIfUnmodifiedSince(ctx context.Context, cartID string, since time.Time) (bool, error)
}

type orderRepo interface {
	Create(ctx context.Context, order domain.Order) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	ListUncleared(ctx context.Context, limit int) ([]domain.Order, error)
	MarkCartCleared(ctx context.Context, orderNumber string) error
}

func New(carts cartRepo, orders orderRepo, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		carts:  carts,
		orders: orders,
		logger: logger.Named("checkout"),
		newID:  uuid.NewString,
	}
}

type PlaceOrderInput struct {
	ShopperName   string
	CartID        string
	Items         []domain.LineItem
	TotalQuantity int
	TotalPrice    *float64
}

// Placement is the outcome of a checkout. CartCleared is false when the order was stored
// but the cart reset failed; the order is still valid and the reconciler retries the reset.
type Placement struct {
	Order       *domain.Order
	CartCleared bool
}

// PlaceOrder turns the shopper's cart into a pending order and then empties the cart.
// The persisted cart must hold at least one item. Items and totals are taken from the input.
func (s *Service) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*Placement, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	cart, err := s.carts.GetByID(ctx, in.CartID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	items := make([]domain.LineItem, len(in.Items))
	copy(items, in.Items)
	order, err := s.orders.Create(ctx, domain.Order{
		OrderNumber:   s.newID(),
		ShopperName:   strings.TrimSpace(in.ShopperName),
		CartID:        in.CartID,
		Items:         items,
		TotalQuantity: in.TotalQuantity,
		TotalPrice:    *in.TotalPrice,
		Status:        domain.OrderStatusPending,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("order placed",
		zap.String("order_number", order.OrderNumber),
		zap.String("cart_id", in.CartID),
		zap.Int("total_quantity", order.TotalQuantity),
		zap.Float64("total_price", order.TotalPrice),
	)

	if _, err := s.carts.Clear(ctx, in.CartID); err != nil {
		s.logger.Error("cart reset after order failed",
			zap.String("order_number", order.OrderNumber),
			zap.String("cart_id", in.CartID),
			zap.Error(err),
		)
		return &Placement{Order: order, CartCleared: false}, nil
	}
	if err := s.orders.MarkCartCleared(ctx, order.OrderNumber); err != nil {
		// The cart is already empty; the reconciler will find nothing to clear and mark it later.
		s.logger.Warn("mark order cart cleared failed",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err),
		)
	}
	order.CartCleared = true
	return &Placement{Order: order, CartCleared: true}, nil
}

func (s *Service) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return s.orders.List(ctx)
}

// ReconcileUnclearedCarts finishes the cart reset for orders whose checkout could not clear
// the cart. A cart modified after the order was placed belongs to a new shopping session
// and is left alone. Every visited order is marked so it is not retried. It returns the
// number of orders marked.
func (s *Service) ReconcileUnclearedCarts(ctx context.Context) (int, error) {
	orders, err := s.orders.ListUncleared(ctx, reconcileBatch)
	if err != nil {
		return 0, err
	}

	var errs []error
	reconciled := 0
	for _, o := range orders {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		cleared, err := s.carts.ClearIfUnmodifiedSince(ctx, o.CartID, o.CreatedAt)
		if err != nil {
			s.logger.Warn("reconcile cart reset failed",
				zap.String("order_number", o.OrderNumber),
				zap.String("cart_id", o.CartID),
				zap.Error(err),
			)
			errs = append(errs, err)
			continue
		}
		if err := s.orders.MarkCartCleared(ctx, o.OrderNumber); err != nil {
			errs = append(errs, err)
			continue
		}
		reconciled++
		s.logger.Info("order reconciled",
			zap.String("order_number", o.OrderNumber),
			zap.String("cart_id", o.CartID),
			zap.Bool("cart_cleared", cleared),
		)
	}
	return reconciled, errors.Join(errs...)
}

// Run reconciles on every tick until ctx is done.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.ReconcileUnclearedCarts(ctx)
			if err != nil && ctx.Err() == nil {
				s.logger.Error("reconcile pass failed", zap.Int("reconciled", n), zap.Error(err))
				continue
			}
			if n > 0 {
				s.logger.Info("reconcile pass finished", zap.Int("reconciled", n))
			}
		}
	}
}

func validate(in PlaceOrderInput) error {
	if strings.TrimSpace(in.ShopperName) == "" {
		return domain.Invalidf("shopperName is required")
	}
	if strings.TrimSpace(in.CartID) == "" {
		return domain.Invalidf("cartId is required")
	}
	if len(in.Items) == 0 {
		return domain.Invalidf("items must not be empty")
	}
	for i, item := range in.Items {
		if item.ProductID <= 0 {
			return domain.Invalidf("items[%d].productId must be a positive integer", i)
		}
		if item.Quantity <= 0 {
			return domain.Invalidf("items[%d].quantity must be a positive integer", i)
		}
		if item.Price < 0 || math.IsNaN(item.Price) || math.IsInf(item.Price, 0) {
			return domain.Invalidf("items[%d].price must be a non-negative number", i)
		}
	}
	if in.TotalQuantity <= 0 {
		return domain.Invalidf("totalQuantity must be a positive integer")
	}
	if in.TotalPrice == nil {
		return domain.Invalidf("totalPrice is required")
	}
	if *in.TotalPrice < 0 {
		return domain.Invalidf("totalPrice must not be negative")
	}

	qty, price := domain.SumItems(in.Items)
	if qty != in.TotalQuantity {
		return domain.Invalidf("totalQuantity %d does not match items (%d)", in.TotalQuantity, qty)
	}
	if math.Abs(price-*in.TotalPrice) > priceTolerance {
		return domain.Invalidf("totalPrice %.2f does not match items (%.2f)", *in.TotalPrice, price)
	}
	return nil
}
