package integration

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"

	"flora-kart/internal/auth"
	"flora-kart/internal/config"
	"flora-kart/internal/events"
	"flora-kart/internal/model"
	"flora-kart/internal/payment"
	"flora-kart/internal/repository"
	"flora-kart/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const callbackKey = "integration-key2"

type services struct {
	orders   service.OrderService
	payments service.PaymentService
}

func newServices(testDB *TestDB) services {
	logger := zerolog.Nop()
	productRepo := repository.NewProductRepository(testDB.Pool, logger)
	orderRepo := repository.NewOrderRepository(testDB.Pool, logger)

	orders := service.NewOrderService(orderRepo, productRepo,
		payment.NewGateway(config.PaymentConfig{}, logger), events.NewNoopPublisher(), logger)
	return services{
		orders:   orders,
		payments: service.NewPaymentService(orders, payment.NewNoopGuard(), callbackKey, logger),
	}
}

func orderRequest(method model.PaymentMethod, items ...model.OrderItemRequest) *model.OrderRequest {
	return &model.OrderRequest{
		CustomerName:    "Nguyen Lan",
		CustomerPhone:   "0901234567",
		ShippingAddress: "12 Hoa Lan, District 1",
		PaymentMethod:   method,
		Items:           items,
	}
}

func line(p model.Product, qty int) model.OrderItemRequest {
	return model.OrderItemRequest{ProductID: p.ID.String(), Quantity: qty}
}

func TestOrderFlow_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	svc := newServices(testDB)
	ctx := context.Background()

	t.Run("Create decrements stock and cancel restores it", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		cat := SeedCategory(t, testDB.Pool, "roses")
		a := SeedProduct(t, testDB.Pool, cat, "Red Roses", 5, 250000)
		b := SeedProduct(t, testDB.Pool, cat, "White Lilies", 3, 180000)

		result, err := svc.orders.CreateOrder(ctx, nil, orderRequest(model.PaymentMethodCash, line(a, 2), line(b, 1)))
		require.NoError(t, err)
		require.NotNil(t, result.Order)
		assert.Nil(t, result.Payment)
		assert.Equal(t, "680000", result.Order.Subtotal.String())
		assert.Equal(t, 3, StockOf(t, testDB.Pool, a.ID))
		assert.Equal(t, 2, StockOf(t, testDB.Pool, b.ID))

		cancelled, err := svc.orders.UpdateOrderStatus(ctx, auth.System,
			model.RefByCode(result.Order.OrderCode), model.OrderStatusCancelled)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)
		assert.Equal(t, model.PaymentStatusFailed, cancelled.PaymentStatus)
		assert.Equal(t, 5, StockOf(t, testDB.Pool, a.ID))
		assert.Equal(t, 3, StockOf(t, testDB.Pool, b.ID))

		// Cancelling twice must not restore twice.
		_, err = svc.orders.UpdateOrderStatus(ctx, auth.System,
			model.RefByID(result.Order.ID), model.OrderStatusCancelled)
		require.NoError(t, err)
		assert.Equal(t, 5, StockOf(t, testDB.Pool, a.ID))
	})

	t.Run("Delete restores stock and removes the order", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		cat := SeedCategory(t, testDB.Pool, "tulips")
		a := SeedProduct(t, testDB.Pool, cat, "Tulips", 4, 90000)

		result, err := svc.orders.CreateOrder(ctx, nil, orderRequest(model.PaymentMethodCash, line(a, 3)))
		require.NoError(t, err)
		assert.Equal(t, 1, StockOf(t, testDB.Pool, a.ID))

		require.NoError(t, svc.orders.DeleteOrder(ctx, auth.System, model.RefByCode(result.Order.OrderCode)))
		assert.Equal(t, 4, StockOf(t, testDB.Pool, a.ID))
		assert.Equal(t, 0, CountRows(t, testDB.Pool, "order_items"))

		_, err = svc.orders.GetOrder(ctx, auth.System, model.RefByID(result.Order.ID))
		assert.True(t, model.IsKind(err, model.KindNotFound))
	})

	t.Run("Insufficient stock changes nothing", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		cat := SeedCategory(t, testDB.Pool, "orchids")
		a := SeedProduct(t, testDB.Pool, cat, "Orchid", 10, 500000)
		b := SeedProduct(t, testDB.Pool, cat, "Sunflower", 1, 60000)

		_, err := svc.orders.CreateOrder(ctx, nil, orderRequest(model.PaymentMethodCash, line(a, 2), line(b, 2)))
		require.Error(t, err)
		assert.True(t, model.IsKind(err, model.KindInsufficientStock))
		assert.Contains(t, err.Error(), "Sunflower")

		assert.Equal(t, 10, StockOf(t, testDB.Pool, a.ID))
		assert.Equal(t, 1, StockOf(t, testDB.Pool, b.ID))
		assert.Equal(t, 0, CountRows(t, testDB.Pool, "orders"))
	})

	t.Run("Repeated product lines are checked against their sum", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		cat := SeedCategory(t, testDB.Pool, "daisies")
		a := SeedProduct(t, testDB.Pool, cat, "Daisy", 3, 40000)

		_, err := svc.orders.CreateOrder(ctx, nil, orderRequest(model.PaymentMethodCash, line(a, 2), line(a, 2)))
		assert.True(t, model.IsKind(err, model.KindInsufficientStock))
		assert.Equal(t, 3, StockOf(t, testDB.Pool, a.ID))
	})

	t.Run("Concurrent orders never oversell", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		cat := SeedCategory(t, testDB.Pool, "peonies")
		a := SeedProduct(t, testDB.Pool, cat, "Peony", 5, 300000)

		var (
			wg        sync.WaitGroup
			succeeded atomic.Int32
		)
		for i := 0; i < 12; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := svc.orders.CreateOrder(ctx, nil, orderRequest(model.PaymentMethodCash, line(a, 1))); err == nil {
					succeeded.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(5), succeeded.Load())
		assert.Equal(t, 0, StockOf(t, testDB.Pool, a.ID))
	})
}

func signedCallback(t *testing.T, key string, orderRef any) *model.CallbackRequest {
	t.Helper()
	embed, err := json.Marshal(map[string]any{"orderId": orderRef})
	require.NoError(t, err)
	data, err := json.Marshal(map[string]any{
		"app_id":       2553,
		"app_trans_id": "251019_" + uuid.NewString()[:8],
		"amount":       250000,
		"embed_data":   string(embed),
		"zp_trans_id":  240000123,
	})
	require.NoError(t, err)
	return &model.CallbackRequest{Data: string(data), MAC: payment.Sign(key, string(data))}
}

func TestPaymentCallback_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	svc := newServices(testDB)
	ctx := context.Background()

	place := func(t *testing.T) *model.Order {
		t.Helper()
		CleanupDB(t, testDB.Pool)
		cat := SeedCategory(t, testDB.Pool, "bouquets")
		a := SeedProduct(t, testDB.Pool, cat, "Spring Bouquet", 2, 250000)

		// The gateway is disabled in tests; the order is kept without payment data.
		result, err := svc.orders.CreateOrder(ctx, nil, orderRequest(model.PaymentMethodBankTransfer, line(a, 1)))
		require.NoError(t, err)
		assert.Nil(t, result.Payment)
		return result.Order
	}

	t.Run("Valid callback marks the order paid", func(t *testing.T) {
		order := place(t)

		got, err := svc.payments.HandleCallback(ctx, signedCallback(t, callbackKey, order.OrderCode))
		require.NoError(t, err)
		assert.Equal(t, model.PaymentStatusPaid, got.PaymentStatus)
		assert.Equal(t, model.OrderStatusProcessing, got.Status)

		stored, err := svc.orders.GetOrder(ctx, auth.System, model.RefByID(order.ID))
		require.NoError(t, err)
		assert.Equal(t, model.PaymentStatusPaid, stored.PaymentStatus)
	})

	t.Run("MAC mismatch leaves the order untouched", func(t *testing.T) {
		order := place(t)

		_, err := svc.payments.HandleCallback(ctx, signedCallback(t, "some-other-key", order.OrderCode))
		assert.ErrorIs(t, err, service.ErrInvalidMAC)

		stored, err := svc.orders.GetOrder(ctx, auth.System, model.RefByID(order.ID))
		require.NoError(t, err)
		assert.Equal(t, model.PaymentStatusPending, stored.PaymentStatus)
		assert.Equal(t, model.OrderStatusPending, stored.Status)
	})

	t.Run("Late callback keeps a cancelled order cancelled", func(t *testing.T) {
		order := place(t)
		productID := order.Items[0].ProductID

		_, err := svc.orders.UpdateOrderStatus(ctx, auth.System, model.RefByID(order.ID), model.OrderStatusCancelled)
		require.NoError(t, err)
		require.Equal(t, 2, StockOf(t, testDB.Pool, productID))

		got, err := svc.payments.HandleCallback(ctx, signedCallback(t, callbackKey, order.OrderCode))
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusCancelled, got.Status)
		assert.Equal(t, model.PaymentStatusPaid, got.PaymentStatus)
		assert.Equal(t, 2, StockOf(t, testDB.Pool, productID))
	})

	t.Run("Cash order stays paid after the callback", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		cat := SeedCategory(t, testDB.Pool, "bouquets")
		a := SeedProduct(t, testDB.Pool, cat, "Spring Bouquet", 2, 250000)

		result, err := svc.orders.CreateOrder(ctx, nil, orderRequest(model.PaymentMethodCash, line(a, 1)))
		require.NoError(t, err)

		got, err := svc.payments.HandleCallback(ctx, signedCallback(t, callbackKey, result.Order.OrderCode))
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusProcessing, got.Status)
		assert.Equal(t, model.PaymentStatusPaid, got.PaymentStatus)
	})

	t.Run("Unknown order is not found", func(t *testing.T) {
		place(t)

		_, err := svc.payments.HandleCallback(ctx, signedCallback(t, callbackKey, "NO-SUCH-ORDER"))
		assert.True(t, model.IsKind(err, model.KindNotFound))
	})
}
