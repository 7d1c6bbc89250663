package repository

import (
	"context"
	"errors"
	"fmt"

	"flora-kart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const orderColumns = `id, order_code, user_id, customer_name, customer_email, customer_phone,
	shipping_address, status, payment_method, payment_status, subtotal, shipping_fee,
	discount, total, notes, created_at, updated_at`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	txStarter
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	logger = logger.With().Str("repository", "order").Logger()
	return &orderRepository{
		txStarter: txStarter{pool: pool, logger: logger},
		pool:      pool,
		logger:    logger,
	}
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID,
		&o.OrderCode,
		&o.UserID,
		&o.CustomerName,
		&o.CustomerEmail,
		&o.CustomerPhone,
		&o.ShippingAddress,
		&o.Status,
		&o.PaymentMethod,
		&o.PaymentStatus,
		&o.Subtotal,
		&o.ShippingFee,
		&o.Discount,
		&o.Total,
		&o.Notes,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func collectOrders(rows pgx.Rows) ([]model.Order, error) {
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}
	return orders, nil
}

// refCondition returns the WHERE condition and argument that address ref.
func refCondition(ref model.OrderRef) (string, any) {
	if id, ok := ref.ID(); ok {
		return "id = $1", id
	}
	code, _ := ref.Code()
	return "order_code = $1", code
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := tx.Exec(ctx, query,
		order.ID,
		order.OrderCode,
		order.UserID,
		order.CustomerName,
		order.CustomerEmail,
		order.CustomerPhone,
		order.ShippingAddress,
		order.Status,
		order.PaymentMethod,
		order.PaymentStatus,
		order.Subtotal,
		order.ShippingFee,
		order.Discount,
		order.Total,
		order.Notes,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Str("order_code", order.OrderCode).
			Msg("failed to create order")
		conflict := model.Conflict(model.ErrCodeConflict, "Order with orderId %s already exists", order.OrderCode)
		if terr := translateError(err, conflict, nil); terr != err {
			return terr
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Msg("order created successfully")

	return nil
}

// CreateOrderItems inserts multiple order items within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, product_id, product_name, product_image, quantity, price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.ProductName,
			item.ProductImage,
			item.Quantity,
			item.Price,
			item.Subtotal,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("product_id", items[i].ProductID.String()).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}

// GetByRef retrieves an order by native id or order code along with its items.
func (r *orderRepository) GetByRef(ctx context.Context, ref model.OrderRef) (*model.Order, error) {
	return r.getByRef(ctx, r.pool, ref, "")
}

// LockByRef retrieves an order with SELECT ... FOR UPDATE inside tx.
func (r *orderRepository) LockByRef(ctx context.Context, tx pgx.Tx, ref model.OrderRef) (*model.Order, error) {
	return r.getByRef(ctx, tx, ref, " FOR UPDATE")
}

func (r *orderRepository) getByRef(ctx context.Context, q querier, ref model.OrderRef, suffix string) (*model.Order, error) {
	cond, arg := refCondition(ref)
	query := `SELECT ` + orderColumns + ` FROM orders WHERE ` + cond + suffix

	order, err := scanOrder(q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_ref", ref.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_ref", ref.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	items, err := r.getItems(ctx, q, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

// GetItems retrieves the line items of an order.
func (r *orderRepository) GetItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	return r.getItems(ctx, r.pool, orderID)
}

// GetItemsTx retrieves the line items of an order inside tx.
func (r *orderRepository) GetItemsTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]model.OrderItem, error) {
	return r.getItems(ctx, tx, orderID)
}

func (r *orderRepository) getItems(ctx context.Context, q querier, orderID uuid.UUID) ([]model.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, product_name, product_image, quantity, price, subtotal
		FROM order_items
		WHERE order_id = $1
		ORDER BY product_name, id
	`

	rows, err := q.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	items := []model.OrderItem{}
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.ProductImage,
			&item.Quantity,
			&item.Price,
			&item.Subtotal,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

// UpdateStatus sets status and payment status inside tx.
func (r *orderRepository) UpdateStatus(
	ctx context.Context,
	tx pgx.Tx,
	id uuid.UUID,
	status model.OrderStatus,
	payment model.PaymentStatus,
) (*model.Order, error) {
	query := `
		UPDATE orders
		SET status = $2, payment_status = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + orderColumns

	order, err := scanOrder(tx.QueryRow(ctx, query, id, status, payment))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order status")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	r.logger.Debug().
		Str("order_id", id.String()).
		Str("status", string(status)).
		Str("payment_status", string(payment)).
		Msg("order status updated")

	return order, nil
}

// UpdatePaymentStatus sets only the payment status.
func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, ref model.OrderRef, payment model.PaymentStatus) (*model.Order, error) {
	cond, arg := refCondition(ref)
	query := `
		UPDATE orders
		SET payment_status = $2, updated_at = NOW()
		WHERE ` + cond + `
		RETURNING ` + orderColumns

	order, err := scanOrder(r.pool.QueryRow(ctx, query, arg, payment))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_ref", ref.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_ref", ref.String()).Msg("failed to update payment status")
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}

	return order, nil
}

// DeleteOrderItems removes every line item of an order inside tx.
func (r *orderRepository) DeleteOrderItems(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (int64, error) {
	tag, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to delete order items")
		return 0, fmt.Errorf("failed to delete order items: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteOrder removes the order header inside tx.
func (r *orderRepository) DeleteOrder(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) error {
	tag, err := tx.Exec(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to delete order")
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}
	return nil
}

// List returns one page of order headers, newest first.
func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, int64, error) {
	page := filter.Page.Normalize()

	var w whereBuilder
	if filter.UserID != nil {
		w.add("user_id = ?", *filter.UserID)
	}
	if filter.Status != "" {
		w.add("status = ?", filter.Status)
	}
	if filter.CustomerPhone != "" {
		w.add(`customer_phone ILIKE ? ESCAPE '\'`, likePattern(filter.CustomerPhone))
	}
	where := w.clause()

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`+where, w.args...).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count orders")
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := `SELECT ` + orderColumns + ` FROM orders` + where +
		` ORDER BY created_at DESC, id LIMIT ` + w.next(page.Limit) + ` OFFSET ` + w.next(page.Offset())

	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, 0, fmt.Errorf("failed to query orders: %w", err)
	}

	orders, err := collectOrders(rows)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to read orders")
		return nil, 0, err
	}

	return orders, total, nil
}
