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

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backoffice/internal/product/application"
	"github.com/storefront/backoffice/internal/product/domain"
)

type fakeProducts struct {
	products []domain.Product
	updates  map[int64]domain.Update
	err      error
}

func (f *fakeProducts) List(_ context.Context) ([]domain.Product, error) {
	return f.products, f.err
}

func (f *fakeProducts) Create(_ context.Context, p domain.Product) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	p.ID = int64(len(f.products) + 1)
	f.products = append(f.products, p)
	return p.ID, nil
}

func (f *fakeProducts) Update(_ context.Context, id int64, u domain.Update) error {
	if f.err != nil {
		return f.err
	}
	if f.updates == nil {
		f.updates = map[int64]domain.Update{}
	}
	f.updates[id] = u
	return nil
}

func (f *fakeProducts) Delete(_ context.Context, id int64) (domain.Product, error) {
	if f.err != nil {
		return domain.Product{}, f.err
	}
	return domain.Product{ID: id, Name: "Widget"}, nil
}

func newTestHandler(repo *fakeProducts) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(log, application.NewService(log, repo)).Routes()
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
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

func TestCreateProduct(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo := &fakeProducts{}
		w := do(newTestHandler(repo), http.MethodPost, "/products", `{"name":"Widget","price":19.99,"stock_level":10}`)

		require.Equal(t, http.StatusOK, w.Code)
		require.Len(t, repo.products, 1)
		assert.True(t, repo.products[0].Price.Equal(decimal.NewFromFloat(19.99)))
		assert.Equal(t, 10, repo.products[0].StockLevel)
	})

	t.Run("zero price is allowed", func(t *testing.T) {
		repo := &fakeProducts{}
		w := do(newTestHandler(repo), http.MethodPost, "/products", `{"name":"Freebie","price":0,"stock_level":1}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("negative price rejected per field", func(t *testing.T) {
		w := do(newTestHandler(&fakeProducts{}), http.MethodPost, "/products", `{"name":"Widget","price":-1,"stock_level":10}`)

		require.Equal(t, http.StatusBadRequest, w.Code)
		var resp struct {
			Errors map[string]string `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Contains(t, resp.Errors, "price")
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		w := do(newTestHandler(&fakeProducts{}), http.MethodPost, "/products", `{"name":"Widget"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		var resp struct {
			Errors map[string]string `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Contains(t, resp.Errors, "price")
		assert.Contains(t, resp.Errors, "stock_level")
	})
}

func TestListProducts(t *testing.T) {
	repo := &fakeProducts{products: []domain.Product{
		{ID: 1, Name: "Widget", Price: decimal.NewFromFloat(19.99), StockLevel: 10},
	}}
	w := do(newTestHandler(repo), http.MethodGet, "/products", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"product_id":1,"name":"Widget","price":19.99,"stock_level":10}]`, w.Body.String())
}

func TestUpdateProduct(t *testing.T) {
	t.Run("partial update only touches present fields", func(t *testing.T) {
		repo := &fakeProducts{}
		w := do(newTestHandler(repo), http.MethodPut, "/products/3", `{"stock_level":25}`)

		require.Equal(t, http.StatusOK, w.Code)
		u := repo.updates[3]
		require.NotNil(t, u.StockLevel)
		assert.Equal(t, 25, *u.StockLevel)
		assert.Nil(t, u.Name)
		assert.Nil(t, u.Price)
	})

	t.Run("not found", func(t *testing.T) {
		repo := &fakeProducts{err: domain.ErrProductNotFound}
		w := do(newTestHandler(repo), http.MethodPut, "/products/3", `{"stock_level":25}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeleteProduct(t *testing.T) {
	t.Run("echoes the deleted product", func(t *testing.T) {
		w := do(newTestHandler(&fakeProducts{}), http.MethodDelete, "/products/3", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Widget")
	})

	t.Run("not found", func(t *testing.T) {
		repo := &fakeProducts{err: domain.ErrProductNotFound}
		w := do(newTestHandler(repo), http.MethodDelete, "/products/3", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
