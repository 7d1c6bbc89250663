package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"flora-kart/internal/auth"
	"flora-kart/internal/handler"
	"flora-kart/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDashboard struct{}

func (stubDashboard) Overview(context.Context) (*model.DashboardOverview, error) {
	return &model.DashboardOverview{}, nil
}

func (stubDashboard) RecentOrders(context.Context) (*model.RecentOrders, error) {
	return &model.RecentOrders{}, nil
}

func (stubDashboard) Statistics(context.Context) (*model.DashboardStatistics, error) {
	return &model.DashboardStatistics{}, nil
}

func newTestRouter(t *testing.T) (http.Handler, *auth.TokenMaker) {
	t.Helper()
	logger := zerolog.Nop()
	tokens := auth.NewTokenMaker("router-test-secret", time.Hour)

	// Handlers whose services are nil are only reached by requests the
	// middleware rejects.
	h := Handlers{
		Auth:      handler.NewAuthHandler(nil, logger),
		Category:  handler.NewCategoryHandler(nil, logger),
		Product:   handler.NewProductHandler(nil, logger),
		Order:     handler.NewOrderHandler(nil, nil, logger),
		Dashboard: handler.NewDashboardHandler(stubDashboard{}, logger),
	}
	return New(h, tokens, logger), tokens
}

func bearer(t *testing.T, tokens *auth.TokenMaker, role model.Role) string {
	t.Helper()
	issued, err := tokens.Issue(&model.User{ID: uuid.New(), Role: role})
	require.NoError(t, err)
	return "Bearer " + issued.AccessToken
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "healthy"}`, w.Body.String())
}

func TestRouteProtection(t *testing.T) {
	r, tokens := newTestRouter(t)

	tests := []struct {
		name           string
		method         string
		path           string
		role           model.Role
		expectedStatus int
	}{
		{"My orders without token", http.MethodGet, "/api/v1/orders/my-orders", "", http.StatusUnauthorized},
		{"Create order without token", http.MethodPost, "/api/v1/orders", "", http.StatusUnauthorized},
		{"Order list as customer", http.MethodGet, "/api/v1/orders", model.RoleCustomer, http.StatusForbidden},
		{"Order delete as customer", http.MethodDelete, "/api/v1/orders/" + uuid.NewString(), model.RoleCustomer, http.StatusForbidden},
		{"Product create as customer", http.MethodPost, "/api/v1/products", model.RoleCustomer, http.StatusForbidden},
		{"Category delete without token", http.MethodDelete, "/api/v1/categories/" + uuid.NewString(), "", http.StatusUnauthorized},
		{"Dashboard as customer", http.MethodGet, "/api/v1/dashboard/overview", model.RoleCustomer, http.StatusForbidden},
		{"Dashboard as admin", http.MethodGet, "/api/v1/dashboard/overview", model.RoleAdmin, http.StatusOK},
		{"Profile without token", http.MethodGet, "/api/v1/auth/profile", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.role != "" {
				req.Header.Set("Authorization", bearer(t, tokens, tt.role))
			}
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus >= http.StatusBadRequest {
				var body model.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, "error", body.Status)
				assert.NotEmpty(t, body.CorrelationID)
			}
		})
	}
}

func TestCallbackNeedsNoToken(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/callback", bytes.NewReader([]byte("garbage")))
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body model.CallbackFailure
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 0, body.ReturnCode)
	assert.Equal(t, "invalid callback body", body.ReturnMessage)
}
