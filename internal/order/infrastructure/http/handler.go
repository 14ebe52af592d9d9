package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/storefront/backoffice/internal/httpx"
	"github.com/storefront/backoffice/internal/order/application"
	"github.com/storefront/backoffice/internal/order/domain"
	"github.com/storefront/backoffice/pkg/tracing"
)

const dateLayout = "2006-01-02"

type Handler struct {
	log     *slog.Logger
	service *application.Service
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("order-http"),
	}
}

type lineReq struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,min=1"`
}

type createOrderReq struct {
	CustomerID int64     `json:"customer_id" validate:"required,gt=0"`
	Date       string    `json:"date" validate:"required,datetime=2006-01-02"`
	Products   []lineReq `json:"products" validate:"required,min=1,dive"`
}

// customer_id and date are optional on update; absent values keep what is
// stored on the order.
type updateOrderReq struct {
	CustomerID int64     `json:"customer_id" validate:"omitempty,gt=0"`
	Date       string    `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Products   []lineReq `json:"products" validate:"required,min=1,dive"`
}

type lineView struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}

type orderView struct {
	OrderID    int64      `json:"order_id"`
	CustomerID int64      `json:"customer_id"`
	Date       string     `json:"date"`
	Products   []lineView `json:"products"`
}

// Register attaches the order routes to a shared router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/orders", h.list)
	r.Post("/orders", h.create)
	r.Get("/orders/history", h.history)
	r.Put("/orders/{id}", h.update)
	r.Delete("/orders/{id}", h.cancel)
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateOrder")
	defer span.End()

	var req createOrderReq
	if err := httpx.Decode(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	date, _ := time.Parse(dateLayout, req.Date)

	id, err := h.service.Create(ctx, req.CustomerID, date, toLines(req.Products), traceparent(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message":  "new order added successfully",
		"order_id": id,
	})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateOrder")
	defer span.End()

	id, ok := pathID(r)
	if !ok {
		httpx.Message(w, http.StatusNotFound, "order not found")
		return
	}

	var req updateOrderReq
	if err := httpx.Decode(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	var date time.Time
	if req.Date != "" {
		date, _ = time.Parse(dateLayout, req.Date)
	}

	if err := h.service.Update(ctx, id, req.CustomerID, date, toLines(req.Products), traceparent(r)); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.Message(w, http.StatusOK, "order details updated successfully")
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CancelOrder")
	defer span.End()

	id, ok := pathID(r)
	if !ok {
		httpx.Message(w, http.StatusNotFound, "order not found")
		return
	}
	if err := h.service.Cancel(ctx, id, traceparent(r)); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.Message(w, http.StatusOK, "order deleted successfully")
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListOrders")
	defer span.End()

	views, err := h.service.List(ctx)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toViews(views))
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "OrderHistory")
	defer span.End()

	raw := r.URL.Query().Get("customer_id")
	if raw == "" {
		httpx.ValidationFailed(w, httpx.FieldErrors{"customer_id": "this query parameter is required"})
		return
	}
	customerID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || customerID <= 0 {
		httpx.ValidationFailed(w, httpx.FieldErrors{"customer_id": "must be a positive integer"})
		return
	}

	views, err := h.service.History(ctx, customerID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toViews(views))
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var (
		fields   httpx.FieldErrors
		notFound *domain.ProductNotFoundError
		noStock  *domain.InsufficientStockError
	)
	switch {
	case errors.As(err, &fields):
		httpx.ValidationFailed(w, fields)
	case errors.Is(err, domain.ErrOrderNotFound):
		httpx.Message(w, http.StatusNotFound, "order not found")
	case errors.Is(err, domain.ErrCustomerNotFound):
		httpx.Message(w, http.StatusNotFound, "customer not found")
	case errors.As(err, &notFound), errors.As(err, &noStock):
		httpx.Message(w, http.StatusNotFound, err.Error())
	default:
		httpx.Internal(w, h.log, err)
	}
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func traceparent(r *http.Request) string {
	if tp := r.Header.Get(tracing.TraceparentHeader); tp != "" {
		return tp
	}
	return tracing.Traceparent(r.Context())
}

func toLines(reqs []lineReq) []domain.Line {
	lines := make([]domain.Line, 0, len(reqs))
	for _, l := range reqs {
		lines = append(lines, domain.Line{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return lines
}

func toViews(views []domain.OrderView) []orderView {
	out := make([]orderView, 0, len(views))
	for _, v := range views {
		ov := orderView{
			OrderID:    v.ID,
			CustomerID: v.CustomerID,
			Date:       v.Date.Format(dateLayout),
			Products:   []lineView{},
		}
		for _, p := range v.Products {
			ov.Products = append(ov.Products, lineView{ProductID: p.ProductID, Name: p.Name, Quantity: p.Quantity})
		}
		out = append(out, ov)
	}
	return out
}
