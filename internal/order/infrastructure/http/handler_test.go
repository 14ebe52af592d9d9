package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backoffice/internal/order/application"
	"github.com/storefront/backoffice/internal/order/domain"
)

type stubRepo struct {
	created  []domain.Order
	createID int64
	err      error
	views    []domain.OrderView
}

func (s *stubRepo) Create(_ context.Context, o domain.Order, _ string) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.created = append(s.created, o)
	return s.createID, nil
}

func (s *stubRepo) Update(_ context.Context, _ domain.Order, _ string) error { return s.err }

func (s *stubRepo) Cancel(_ context.Context, _ int64, _ bool, _ string) error { return s.err }

func (s *stubRepo) ListAll(_ context.Context) ([]domain.OrderView, error) {
	return s.views, s.err
}

func (s *stubRepo) ListByCustomer(_ context.Context, _ int64) ([]domain.OrderView, error) {
	return s.views, s.err
}

func newTestHandler(repo *stubRepo) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := application.NewService(log, repo, false)
	return NewHandler(log, svc).Routes()
}

func doJSON(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestCreateOrder(t *testing.T) {
	t.Run("success returns 201 with the new id", func(t *testing.T) {
		repo := &stubRepo{createID: 11}
		w := doJSON(t, newTestHandler(repo), http.MethodPost, "/orders",
			`{"customer_id":1,"date":"2024-01-01","products":[{"product_id":1,"quantity":3}]}`)

		require.Equal(t, http.StatusCreated, w.Code)
		var resp struct {
			OrderID int64 `json:"order_id"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(11), resp.OrderID)

		require.Len(t, repo.created, 1)
		assert.Equal(t, int64(1), repo.created[0].CustomerID)
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), repo.created[0].Date)
		assert.Equal(t, []domain.Line{{ProductID: 1, Quantity: 3}}, repo.created[0].Lines)
	})

	t.Run("insufficient stock returns 404 with the product name", func(t *testing.T) {
		repo := &stubRepo{err: &domain.InsufficientStockError{ProductID: 1, Name: "Widget", Available: 7, Requested: 8}}
		w := doJSON(t, newTestHandler(repo), http.MethodPost, "/orders",
			`{"customer_id":1,"date":"2024-01-01","products":[{"product_id":1,"quantity":8}]}`)

		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Widget")
		assert.Contains(t, w.Body.String(), "available stock is 7")
	})

	t.Run("unknown product returns 404 with the id", func(t *testing.T) {
		repo := &stubRepo{err: &domain.ProductNotFoundError{ProductID: 42}}
		w := doJSON(t, newTestHandler(repo), http.MethodPost, "/orders",
			`{"customer_id":1,"date":"2024-01-01","products":[{"product_id":42,"quantity":1}]}`)

		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "product with id 42 does not exist")
	})

	t.Run("validation failures return per-field errors", func(t *testing.T) {
		w := doJSON(t, newTestHandler(&stubRepo{}), http.MethodPost, "/orders",
			`{"customer_id":1,"products":[{"product_id":1,"quantity":0}]}`)

		require.Equal(t, http.StatusBadRequest, w.Code)
		var resp struct {
			Errors map[string]string `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Contains(t, resp.Errors, "date")
		assert.Contains(t, resp.Errors, "products[0].quantity")
	})

	t.Run("malformed JSON returns 400", func(t *testing.T) {
		w := doJSON(t, newTestHandler(&stubRepo{}), http.MethodPost, "/orders", `{not json`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUpdateOrder(t *testing.T) {
	t.Run("missing order returns 404", func(t *testing.T) {
		repo := &stubRepo{err: domain.ErrOrderNotFound}
		w := doJSON(t, newTestHandler(repo), http.MethodPut, "/orders/99",
			`{"products":[{"product_id":1,"quantity":1}]}`)

		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "order not found")
	})

	t.Run("success returns 200", func(t *testing.T) {
		w := doJSON(t, newTestHandler(&stubRepo{}), http.MethodPut, "/orders/5",
			`{"customer_id":2,"date":"2024-02-02","products":[{"product_id":1,"quantity":1}]}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("non-numeric id returns 404", func(t *testing.T) {
		w := doJSON(t, newTestHandler(&stubRepo{}), http.MethodPut, "/orders/abc",
			`{"products":[{"product_id":1,"quantity":1}]}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCancelOrder(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		w := doJSON(t, newTestHandler(&stubRepo{}), http.MethodDelete, "/orders/3", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing order returns 404", func(t *testing.T) {
		repo := &stubRepo{err: domain.ErrOrderNotFound}
		w := doJSON(t, newTestHandler(repo), http.MethodDelete, "/orders/3", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestOrderHistory(t *testing.T) {
	t.Run("requires customer_id", func(t *testing.T) {
		w := doJSON(t, newTestHandler(&stubRepo{}), http.MethodGet, "/orders/history", "")
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "customer_id")
	})

	t.Run("rejects a non-numeric customer_id", func(t *testing.T) {
		w := doJSON(t, newTestHandler(&stubRepo{}), http.MethodGet, "/orders/history?customer_id=abc", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("no orders yields an empty list, not 404", func(t *testing.T) {
		w := doJSON(t, newTestHandler(&stubRepo{views: []domain.OrderView{}}), http.MethodGet, "/orders/history?customer_id=2", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("projects product lines with quantities", func(t *testing.T) {
		repo := &stubRepo{views: []domain.OrderView{{
			ID:         1,
			CustomerID: 2,
			Date:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Products: []domain.ProductLine{
				{ProductID: 1, Name: "Widget", Quantity: 2},
				{ProductID: 3, Name: "Gadget", Quantity: 1},
			},
		}}}
		w := doJSON(t, newTestHandler(repo), http.MethodGet, "/orders/history?customer_id=2", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[{
			"order_id": 1,
			"customer_id": 2,
			"date": "2024-01-01",
			"products": [
				{"product_id": 1, "name": "Widget", "quantity": 2},
				{"product_id": 3, "name": "Gadget", "quantity": 1}
			]
		}]`, w.Body.String())
	})
}

func TestListOrders(t *testing.T) {
	repo := &stubRepo{views: []domain.OrderView{{
		ID:         4,
		CustomerID: 1,
		Date:       time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		Products:   []domain.ProductLine{{ProductID: 2, Name: "Widget", Quantity: 1}},
	}}}
	w := doJSON(t, newTestHandler(repo), http.MethodGet, "/orders", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"Widget"`)
}
