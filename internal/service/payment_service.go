package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"flora-kart/internal/auth"
	"flora-kart/internal/model"
	"flora-kart/internal/payment"

	"github.com/rs/zerolog"
)

// Callback failures. Their messages are sent back to the provider as return_message.
var (
	ErrInvalidMAC       = errors.New("MAC not equal")
	ErrInvalidCallback  = errors.New("invalid callback data")
	ErrMissingOrderCode = errors.New("order id not found in embed_data")
)

// paymentService implements PaymentService.
type paymentService struct {
	orders OrderService
	guard  payment.CallbackGuard
	key2   string
	logger zerolog.Logger
}

// NewPaymentService creates the callback handler. key2 is the provider's callback key.
func NewPaymentService(orders OrderService, guard payment.CallbackGuard, key2 string, logger zerolog.Logger) PaymentService {
	return &paymentService{
		orders: orders,
		guard:  guard,
		key2:   key2,
		logger: logger.With().Str("service", "payment").Logger(),
	}
}

// HandleCallback marks the embedded order paid and moves it to processing
// when it is still pending.
// Nothing is read or written before the MAC has been verified.
func (s *paymentService) HandleCallback(ctx context.Context, req *model.CallbackRequest) (*model.Order, error) {
	if req == nil || req.Data == "" {
		return nil, ErrInvalidCallback
	}

	if !payment.VerifyMAC(s.key2, req.Data, req.MAC) {
		s.logger.Warn().Msg("callback rejected: mac mismatch")
		return nil, ErrInvalidMAC
	}

	var data model.CallbackData
	if err := json.Unmarshal([]byte(req.Data), &data); err != nil {
		s.logger.Warn().Err(err).Msg("callback rejected: malformed data")
		return nil, fmt.Errorf("%w: %v", ErrInvalidCallback, err)
	}

	var embed model.EmbedData
	if err := json.Unmarshal([]byte(data.EmbedData), &embed); err != nil {
		s.logger.Warn().Err(err).Str("app_trans_id", data.AppTransID).Msg("callback rejected: malformed embed_data")
		return nil, fmt.Errorf("%w: %v", ErrInvalidCallback, err)
	}
	if embed.OrderID == "" {
		return nil, ErrMissingOrderCode
	}

	ref, err := model.ParseOrderRef(string(embed.OrderID))
	if err != nil {
		return nil, err
	}

	logger := s.logger.With().
		Str("app_trans_id", data.AppTransID).
		Str("order_ref", ref.String()).
		Logger()

	guardKey := data.AppTransID
	if guardKey == "" {
		guardKey = ref.String()
	}

	claimed, err := s.guard.Claim(ctx, guardKey)
	if err != nil {
		// Without the guard the update is still idempotent; carry on.
		logger.Warn().Err(err).Msg("callback guard unavailable")
		claimed = true
	}
	if !claimed {
		logger.Info().Msg("duplicate callback, replying with current order")
		return s.orders.GetOrder(ctx, auth.System, ref)
	}

	order, err := s.orders.MarkPaid(ctx, ref)
	if err != nil {
		if relErr := s.guard.Release(ctx, guardKey); relErr != nil {
			logger.Warn().Err(relErr).Msg("failed to release callback guard")
		}
		logger.Error().Err(err).Msg("failed to apply callback")
		return nil, err
	}

	logger.Info().
		Int64("amount", data.Amount).
		Int64("zp_trans_id", data.ZpTransID).
		Msg("payment callback applied")

	return order, nil
}

