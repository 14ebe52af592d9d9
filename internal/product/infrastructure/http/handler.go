package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/storefront/backoffice/internal/httpx"
	"github.com/storefront/backoffice/internal/product/application"
	"github.com/storefront/backoffice/internal/product/domain"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("product-http"),
	}
}

type createProductReq struct {
	Name       string   `json:"name" validate:"required"`
	Price      *float64 `json:"price" validate:"required,gte=0"`
	StockLevel *int     `json:"stock_level" validate:"required,gte=0"`
}

type updateProductReq struct {
	Name       *string  `json:"name" validate:"omitempty,min=1"`
	Price      *float64 `json:"price" validate:"omitempty,gte=0"`
	StockLevel *int     `json:"stock_level" validate:"omitempty,gte=0"`
}

type productView struct {
	ProductID  int64   `json:"product_id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	StockLevel int     `json:"stock_level"`
}

// Register attaches the product routes to a shared router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/products", h.list)
	r.Post("/products", h.create)
	r.Put("/products/{id}", h.update)
	r.Delete("/products/{id}", h.remove)
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListProducts")
	defer span.End()

	products, err := h.service.List(ctx)
	if err != nil {
		h.respondError(w, err)
		return
	}
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, toView(p))
	}
	httpx.JSON(w, http.StatusOK, views)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateProduct")
	defer span.End()

	var req createProductReq
	if err := httpx.Decode(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	id, err := h.service.Create(ctx, domain.Product{
		Name:       req.Name,
		Price:      decimal.NewFromFloat(*req.Price),
		StockLevel: *req.StockLevel,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message":    "new product added successfully",
		"product_id": id,
	})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateProduct")
	defer span.End()

	id, ok := pathID(r)
	if !ok {
		httpx.Message(w, http.StatusNotFound, "product not found")
		return
	}
	var req updateProductReq
	if err := httpx.Decode(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	u := domain.Update{Name: req.Name, StockLevel: req.StockLevel}
	if req.Price != nil {
		price := decimal.NewFromFloat(*req.Price)
		u.Price = &price
	}
	if err := h.service.Update(ctx, id, u); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.Message(w, http.StatusOK, fmt.Sprintf("product with id %d updated successfully", id))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DeleteProduct")
	defer span.End()

	id, ok := pathID(r)
	if !ok {
		httpx.Message(w, http.StatusNotFound, "product not found")
		return
	}
	p, err := h.service.Delete(ctx, id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.Message(w, http.StatusOK,
		fmt.Sprintf("product with id %d and name %s deleted successfully", p.ID, p.Name))
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var fields httpx.FieldErrors
	switch {
	case errors.As(err, &fields):
		httpx.ValidationFailed(w, fields)
	case errors.Is(err, domain.ErrProductNotFound):
		httpx.Message(w, http.StatusNotFound, "product not found")
	default:
		httpx.Internal(w, h.log, err)
	}
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func toView(p domain.Product) productView {
	return productView{
		ProductID:  p.ID,
		Name:       p.Name,
		Price:      p.Price.InexactFloat64(),
		StockLevel: p.StockLevel,
	}
}
