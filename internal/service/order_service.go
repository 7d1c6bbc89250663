package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"flora-kart/internal/auth"
	"flora-kart/internal/events"
	"flora-kart/internal/model"
	"flora-kart/internal/payment"
	"flora-kart/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	gateway     payment.Gateway
	publisher   events.Publisher
	now         func() time.Time
	newCode     func(time.Time) string
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	gateway payment.Gateway,
	publisher events.Publisher,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		gateway:     gateway,
		publisher:   publisher,
		now:         time.Now,
		newCode:     generateOrderCode,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// generateOrderCode returns yymmddHHMMSS followed by four random digits.
func generateOrderCode(now time.Time) string {
	return fmt.Sprintf("%s%04d", now.Format("060102150405"), rand.IntN(10000))
}

// stockDeltas sums item quantities per product, signed by sign, in product id order.
func stockDeltas(items []model.OrderItem, sign int) []model.StockDelta {
	totals := make(map[uuid.UUID]int, len(items))
	for _, item := range items {
		totals[item.ProductID] += item.Quantity
	}

	deltas := make([]model.StockDelta, 0, len(totals))
	for id, qty := range totals {
		deltas = append(deltas, model.StockDelta{ProductID: id, Delta: sign * qty})
	}
	slices.SortFunc(deltas, func(a, b model.StockDelta) int {
		return bytes.Compare(a.ProductID[:], b.ProductID[:])
	})
	return deltas
}

func (s *orderService) rollback(ctx context.Context, tx pgx.Tx) {
	if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
		s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
	}
}

// CreateOrder places an order inside one transaction. Product rows are locked
// before the stock check so concurrent orders cannot oversell.
func (s *orderService) CreateOrder(ctx context.Context, userID *uuid.UUID, req *model.OrderRequest) (result *model.CreateOrderResult, err error) {
	if req == nil {
		return nil, model.InvalidInput("order request is required")
	}
	if err = req.Validate(); err != nil {
		return nil, err
	}

	productIDs := make([]uuid.UUID, len(req.Items))
	for i, item := range req.Items {
		id, parseErr := uuid.Parse(item.ProductID)
		if parseErr != nil {
			return nil, model.NewDomainError(model.KindInvalidInput, model.ErrCodeInvalidID,
				fmt.Sprintf("Invalid product id: %s", item.ProductID))
		}
		productIDs[i] = id
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	defer func() {
		if err != nil {
			s.rollback(ctx, tx)
		}
	}()

	locked, err := s.productRepo.LockForUpdate(ctx, tx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	products := make(map[uuid.UUID]model.Product, len(locked))
	for _, p := range locked {
		products[p.ID] = p
	}

	requested := make(map[uuid.UUID]int, len(productIDs))
	for i, item := range req.Items {
		if _, ok := products[productIDs[i]]; !ok {
			s.logger.Warn().Str("product_id", item.ProductID).Msg("product not found")
			return nil, model.NotFound(model.ErrCodeProductNotFound, "Product not found: %s", item.ProductID)
		}
		requested[productIDs[i]] += item.Quantity
	}

	for i := range req.Items {
		p := products[productIDs[i]]
		if requested[p.ID] > p.Stock {
			s.logger.Warn().
				Str("product_id", p.ID.String()).
				Int("stock", p.Stock).
				Int("requested", requested[p.ID]).
				Msg("insufficient stock")
			return nil, model.InsufficientStock(p.Name)
		}
	}

	now := s.now().UTC()
	order := &model.Order{
		ID:              uuid.New(),
		OrderCode:       req.OrderCode,
		UserID:          userID,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		ShippingAddress: req.ShippingAddress,
		Status:          req.Status,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   req.PaymentStatus,
		ShippingFee:     req.ShippingFee,
		Discount:        req.Discount,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if order.OrderCode == "" {
		order.OrderCode = s.newCode(now)
	}

	items := make([]model.OrderItem, len(req.Items))
	subtotal := decimal.Zero
	for i, in := range req.Items {
		items[i] = snapshotItem(order.ID, products[productIDs[i]], in)
		subtotal = subtotal.Add(items[i].Subtotal)
	}

	order.Subtotal = subtotal
	if req.Subtotal != nil {
		order.Subtotal = *req.Subtotal
	}
	order.Total = order.Subtotal.Add(order.ShippingFee).Sub(order.Discount)
	if req.Total != nil {
		order.Total = *req.Total
	}

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return nil, err
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(items)).
			Msg("failed to create order items")
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	if err = s.productRepo.AdjustStock(ctx, tx, stockDeltas(items, -1)); err != nil {
		return nil, fmt.Errorf("failed to decrement stock: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	order.Items = items

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_code", order.OrderCode).
		Int("item_count", len(items)).
		Str("total", order.Total.String()).
		Msg("order created successfully")

	s.publisher.Publish(ctx, events.NewOrderEvent(events.OrderCreated, order))

	result = &model.CreateOrderResult{Order: order}
	if order.PaymentMethod == model.PaymentMethodBankTransfer {
		result.Payment = s.openPayment(ctx, order)
	}

	return result, nil
}

// openPayment asks the gateway for a bank transfer. The order is already committed,
// so a gateway failure leaves it pending payment and is only logged.
func (s *orderService) openPayment(ctx context.Context, order *model.Order) *model.PaymentData {
	data, err := s.gateway.CreatePayment(ctx, order)
	if err != nil {
		level := s.logger.Error()
		if errors.Is(err, payment.ErrGatewayDisabled) {
			level = s.logger.Warn()
		}
		level.Err(err).Str("order_code", order.OrderCode).Msg("bank transfer payment not opened")
		return nil
	}
	return data
}

// snapshotItem copies product details into the line item, preferring the values sent by the client.
func snapshotItem(orderID uuid.UUID, p model.Product, in model.OrderItemRequest) model.OrderItem {
	name := in.ProductName
	if name == "" {
		name = p.Name
	}
	image := in.ProductImage
	if image == "" {
		image = p.Image
	}
	price := p.Price
	if p.SalePrice != nil && p.SalePrice.IsPositive() {
		price = *p.SalePrice
	}
	if in.Price != nil {
		price = *in.Price
	}

	return model.OrderItem{
		ID:           uuid.New(),
		OrderID:      orderID,
		ProductID:    p.ID,
		ProductName:  name,
		ProductImage: image,
		Quantity:     in.Quantity,
		Price:        price,
		Subtotal:     price.Mul(decimal.NewFromInt(int64(in.Quantity))),
	}
}

// GetOrder retrieves an order with its items.
func (s *orderService) GetOrder(ctx context.Context, p auth.Principal, ref model.OrderRef) (*model.Order, error) {
	order, err := s.orderRepo.GetByRef(ctx, ref)
	if err != nil {
		s.logger.Error().Err(err).Str("order_ref", ref.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		s.logger.Debug().Str("order_ref", ref.String()).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}

	if !auth.CanViewOrder(p, order) {
		return nil, model.NewDomainError(model.KindForbidden, model.ErrCodeForbidden,
			"You do not have permission to view this order")
	}

	return order, nil
}

func (s *orderService) ListUserOrders(ctx context.Context, userID uuid.UUID, page model.Page) (model.PageResult[model.Order], error) {
	return s.ListOrders(ctx, model.OrderFilter{UserID: &userID, Page: page})
}

func (s *orderService) ListOrders(ctx context.Context, filter model.OrderFilter) (model.PageResult[model.Order], error) {
	filter.Page = filter.Page.Normalize()
	if filter.Status != "" && !filter.Status.Valid() {
		return model.PageResult[model.Order]{}, model.InvalidInput("invalid status: %s", filter.Status)
	}

	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return model.PageResult[model.Order]{}, fmt.Errorf("failed to list orders: %w", err)
	}

	return model.NewPageResult(orders, total, filter.Page), nil
}

// UpdateOrderStatus moves an order to status. Entering cancelled from any other
// status restores stock exactly once; the status check runs on the locked row.
func (s *orderService) UpdateOrderStatus(
	ctx context.Context,
	p auth.Principal,
	ref model.OrderRef,
	status model.OrderStatus,
) (updated *model.Order, err error) {
	if !status.Valid() {
		return nil, model.InvalidInput("invalid status: %s", status)
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	defer func() {
		if err != nil {
			s.rollback(ctx, tx)
		}
	}()

	order, err := s.orderRepo.LockByRef(ctx, tx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	if !auth.CanUpdateOrderStatus(p, order, status) {
		return nil, model.NewDomainError(model.KindForbidden, model.ErrCodeForbidden,
			"You do not have permission to update this order")
	}

	if status == model.OrderStatusCancelled && order.Status != model.OrderStatusCancelled {
		if err = s.productRepo.AdjustStock(ctx, tx, stockDeltas(order.Items, 1)); err != nil {
			return nil, fmt.Errorf("failed to restore stock: %w", err)
		}
		s.logger.Info().
			Str("order_id", order.ID.String()).
			Int("item_count", len(order.Items)).
			Msg("stock restored for cancelled order")
	}

	paymentStatus := model.DerivePaymentStatus(order.PaymentMethod, order.PaymentStatus, status)

	updated, err = s.orderRepo.UpdateStatus(ctx, tx, order.ID, status, paymentStatus)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if updated == nil {
		return nil, model.ErrOrderNotFound
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	updated.Items = order.Items

	s.logger.Info().
		Str("order_id", updated.ID.String()).
		Str("from", string(order.Status)).
		Str("to", string(updated.Status)).
		Str("payment_status", string(updated.PaymentStatus)).
		Msg("order status updated")

	s.publisher.Publish(ctx, events.NewOrderEvent(events.OrderStatusChanged, updated))

	return updated, nil
}

// MarkPaid records a confirmed payment. Only a pending order advances to
// processing; any other status is kept so a late callback cannot revive a
// cancelled order whose stock was already restored.
func (s *orderService) MarkPaid(ctx context.Context, ref model.OrderRef) (updated *model.Order, err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to mark order paid: %w", err)
	}

	defer func() {
		if err != nil {
			s.rollback(ctx, tx)
		}
	}()

	order, err := s.orderRepo.LockByRef(ctx, tx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to mark order paid: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	status := order.Status
	if status == model.OrderStatusPending {
		status = model.OrderStatusProcessing
	} else {
		s.logger.Warn().
			Str("order_id", order.ID.String()).
			Str("status", string(order.Status)).
			Msg("payment confirmed for non-pending order, status kept")
	}

	updated, err = s.orderRepo.UpdateStatus(ctx, tx, order.ID, status, model.PaymentStatusPaid)
	if err != nil {
		return nil, fmt.Errorf("failed to mark order paid: %w", err)
	}
	if updated == nil {
		return nil, model.ErrOrderNotFound
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to mark order paid: %w", err)
	}

	updated.Items = order.Items

	s.logger.Info().
		Str("order_id", updated.ID.String()).
		Str("from", string(order.Status)).
		Str("to", string(updated.Status)).
		Msg("order marked paid")

	s.publisher.Publish(ctx, events.NewOrderEvent(events.OrderPaymentUpdated, updated))
	if updated.Status != order.Status {
		s.publisher.Publish(ctx, events.NewOrderEvent(events.OrderStatusChanged, updated))
	}

	return updated, nil
}

func (s *orderService) UpdatePaymentStatus(ctx context.Context, ref model.OrderRef, status model.PaymentStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, model.InvalidInput("invalid paymentStatus: %s", status)
	}

	order, err := s.orderRepo.UpdatePaymentStatus(ctx, ref, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("payment_status", string(status)).
		Msg("payment status updated")

	s.publisher.Publish(ctx, events.NewOrderEvent(events.OrderPaymentUpdated, order))

	return order, nil
}

// DeleteOrder removes an order. Stock is restored unless the order was already cancelled.
func (s *orderService) DeleteOrder(ctx context.Context, p auth.Principal, ref model.OrderRef) (err error) {
	if !auth.CanDeleteOrder(p) {
		return model.ErrForbidden
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to delete order: %w", err)
	}

	defer func() {
		if err != nil {
			s.rollback(ctx, tx)
		}
	}()

	order, err := s.orderRepo.LockByRef(ctx, tx, ref)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if order == nil {
		return model.ErrOrderNotFound
	}

	if order.Status != model.OrderStatusCancelled {
		if err = s.productRepo.AdjustStock(ctx, tx, stockDeltas(order.Items, 1)); err != nil {
			return fmt.Errorf("failed to restore stock: %w", err)
		}
	}

	removed, err := s.orderRepo.DeleteOrderItems(ctx, tx, order.ID)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	if err = s.orderRepo.DeleteOrder(ctx, tx, order.ID); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return fmt.Errorf("failed to delete order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Int64("items_removed", removed).
		Bool("stock_restored", order.Status != model.OrderStatusCancelled).
		Msg("order deleted")

	s.publisher.Publish(ctx, events.NewOrderEvent(events.OrderDeleted, order))

	return nil
}
