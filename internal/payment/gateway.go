package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"flora-kart/internal/config"
	"flora-kart/internal/model"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Gateway opens bank transfer payments with the provider.
type Gateway interface {
	CreatePayment(ctx context.Context, order *model.Order) (*model.PaymentData, error)
}

var ErrGatewayDisabled = errors.New("payment gateway is not configured")

type createItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

// zaloGateway posts signed create requests through a circuit breaker.
type zaloGateway struct {
	cfg     config.PaymentConfig
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*model.PaymentData]
	now     func() time.Time
	logger  zerolog.Logger
}

// NewGateway returns the provider client, or a disabled gateway when payments are off.
func NewGateway(cfg config.PaymentConfig, logger zerolog.Logger) Gateway {
	logger = logger.With().Str("component", "payment-gateway").Logger()
	if !cfg.Enabled {
		return disabledGateway{}
	}

	return newZaloGateway(cfg, &http.Client{
		Timeout:   cfg.Timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}, logger)
}

func newZaloGateway(cfg config.PaymentConfig, client *http.Client, logger zerolog.Logger) *zaloGateway {
	breaker := gobreaker.NewCircuitBreaker[*model.PaymentData](gobreaker.Settings{
		Name:        "payment-gateway",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})

	return &zaloGateway{
		cfg:     cfg,
		client:  client,
		breaker: breaker,
		now:     time.Now,
		logger:  logger,
	}
}

// CreatePayment opens a payment whose embed_data carries the order code.
func (g *zaloGateway) CreatePayment(ctx context.Context, order *model.Order) (*model.PaymentData, error) {
	form, transID, err := g.buildForm(order)
	if err != nil {
		return nil, err
	}

	data, err := g.breaker.Execute(func() (*model.PaymentData, error) {
		return g.post(ctx, form)
	})
	if err != nil {
		g.logger.Error().
			Err(err).
			Str("order_code", order.OrderCode).
			Str("app_trans_id", transID).
			Msg("failed to create payment")
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	data.AppTransID = transID

	g.logger.Info().
		Str("order_code", order.OrderCode).
		Str("app_trans_id", transID).
		Int("return_code", data.ReturnCode).
		Msg("payment created")

	return data, nil
}

func (g *zaloGateway) buildForm(order *model.Order) (url.Values, string, error) {
	now := g.now()
	appTime := strconv.FormatInt(now.UnixMilli(), 10)
	transID := fmt.Sprintf("%s_%s", now.Format("060102"), order.OrderCode)
	amount := order.Total.Round(0).String()

	embed, err := json.Marshal(model.EmbedData{
		OrderID:     model.FlexibleString(order.OrderCode),
		RedirectURL: g.cfg.RedirectURL,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode embed data: %w", err)
	}

	items := make([]createItem, len(order.Items))
	for i, it := range order.Items {
		items[i] = createItem{
			ProductID: it.ProductID.String(),
			Name:      it.ProductName,
			Quantity:  it.Quantity,
			Price:     it.Price.String(),
		}
	}
	item, err := json.Marshal(items)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode items: %w", err)
	}

	appUser := order.CustomerName
	if order.UserID != nil {
		appUser = order.UserID.String()
	}

	form := url.Values{}
	form.Set("app_id", g.cfg.AppID)
	form.Set("app_trans_id", transID)
	form.Set("app_user", appUser)
	form.Set("app_time", appTime)
	form.Set("amount", amount)
	form.Set("item", string(item))
	form.Set("embed_data", string(embed))
	form.Set("description", fmt.Sprintf("Payment for order #%s", order.OrderCode))
	form.Set("bank_code", "")
	if g.cfg.CallbackURL != "" {
		form.Set("callback_url", g.cfg.CallbackURL)
	}

	macInput := strings.Join([]string{
		g.cfg.AppID, transID, appUser, amount, appTime, string(embed), string(item),
	}, "|")
	form.Set("mac", Sign(g.cfg.Key1, macInput))

	return form, transID, nil
}

func (g *zaloGateway) post(ctx context.Context, form url.Values) (*model.PaymentData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var data model.PaymentData
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &data, nil
}

type disabledGateway struct{}

func (disabledGateway) CreatePayment(context.Context, *model.Order) (*model.PaymentData, error) {
	return nil, ErrGatewayDisabled
}
