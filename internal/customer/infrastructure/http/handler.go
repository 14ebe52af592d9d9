package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/storefront/backoffice/internal/customer/application"
	"github.com/storefront/backoffice/internal/customer/domain"
	"github.com/storefront/backoffice/internal/httpx"
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
		tracer:  otel.Tracer("customer-http"),
	}
}

type createCustomerReq struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required"`
}

type updateCustomerReq struct {
	Name  *string `json:"name" validate:"omitempty,min=1"`
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone"`
}

type createAccountReq struct {
	Username   string `json:"username" validate:"required,min=1,max=25"`
	Password   string `json:"password" validate:"required,min=1,max=20"`
	CustomerID int64  `json:"customer_id" validate:"required,gt=0"`
}

type updateAccountReq struct {
	Username   *string `json:"username" validate:"omitempty,min=1,max=25"`
	Password   *string `json:"password" validate:"omitempty,min=1,max=20"`
	CustomerID *int64  `json:"customer_id" validate:"omitempty,gt=0"`
}

type customerView struct {
	CustomerID int64  `json:"customer_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
}

type accountView struct {
	AccountID  int64  `json:"account_id"`
	Username   string `json:"username"`
	CustomerID int64  `json:"customer_id"`
}

// Register attaches the customer and account routes to a shared router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/customers", h.listCustomers)
	r.Post("/customers", h.createCustomer)
	r.Put("/customers/{id}", h.updateCustomer)
	r.Put("/customers/by_name/{name}", h.updateCustomerByName)
	r.Delete("/customers/{id}", h.deleteCustomer)

	r.Get("/customeraccount", h.listAccounts)
	r.Post("/customeraccount", h.createAccount)
	r.Put("/customeraccount/{id}", h.updateAccount)
	r.Delete("/customeraccount/{id}", h.deleteAccount)
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListCustomers")
	defer span.End()

	customers, err := h.service.ListCustomers(ctx)
	if err != nil {
		h.respondError(w, err)
		return
	}
	views := make([]customerView, 0, len(customers))
	for _, c := range customers {
		views = append(views, customerView{CustomerID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone})
	}
	httpx.JSON(w, http.StatusOK, views)
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateCustomer")
	defer span.End()

	var req createCustomerReq
	if err := httpx.Decode(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	id, err := h.service.CreateCustomer(ctx, domain.Customer{Name: req.Name, Email: req.Email, Phone: req.Phone})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message":     "new customer added successfully",
		"customer_id": id,
	})
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateCustomer")
	defer span.End()

	id, ok := pathID(r)
	if !ok {
		httpx.Message(w, http.StatusNotFound, "customer not found")
		return
	}
	var req updateCustomerReq
	if err := httpx.Decode(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	err := h.service.UpdateCustomer(ctx, id, domain.CustomerUpdate{Name: req.Name, Email: req.Email, Phone: req.Phone})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.Message(w, http.StatusOK, "customer info updated successfully")
}

func (h *Handler) updateCustomerByName(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateCustomerByName")
	defer span.End()

	name := chi.URLParam(r, "name")
	var req updateCustomerReq
	if err := httpx.Decode(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	err := h.service.UpdateCustomerByName(ctx, name, domain.CustomerUpdate{Name: req.Name, Email: req.Email, Phone: req.Phone})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.Message(w, http.StatusOK, "customer info updated successfully")
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DeleteCustomer")
	defer span.End()

	id, ok := pathID(r)
	if !ok {
		httpx.Message(w, http.StatusNotFound, "customer not found")
		return
	}
	if err := h.service.DeleteCustomer(ctx, id); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.Message(w, http.StatusOK, "customer removed successfully")
}

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListAccounts")
	defer span.End()

	accounts, err := h.service.ListAccounts(ctx)
	if err != nil {
		h.respondError(w, err)
		return
	}
	views := make([]accountView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, accountView{AccountID: a.ID, Username: a.Username, CustomerID: a.CustomerID})
	}
	httpx.JSON(w, http.StatusOK, views)
}

func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateAccount")
	defer span.End()

	var req createAccountReq
	if err := httpx.Decode(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	id, err := h.service.CreateAccount(ctx, domain.Account{
		Username:   req.Username,
		Password:   req.Password,
		CustomerID: req.CustomerID,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message":    "new customer account added",
		"account_id": id,
	})
}

func (h *Handler) updateAccount(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateAccount")
	defer span.End()

	id, ok := pathID(r)
	if !ok {
		httpx.Message(w, http.StatusNotFound, "customer account not found")
		return
	}
	var req updateAccountReq
	if err := httpx.Decode(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	err := h.service.UpdateAccount(ctx, id, domain.AccountUpdate{
		Username:   req.Username,
		Password:   req.Password,
		CustomerID: req.CustomerID,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.Message(w, http.StatusOK, "customer account details updated successfully")
}

func (h *Handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DeleteAccount")
	defer span.End()

	id, ok := pathID(r)
	if !ok {
		httpx.Message(w, http.StatusNotFound, "customer account not found")
		return
	}
	if err := h.service.DeleteAccount(ctx, id); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.Message(w, http.StatusOK, "customer account deleted successfully")
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var fields httpx.FieldErrors
	switch {
	case errors.As(err, &fields):
		httpx.ValidationFailed(w, fields)
	case errors.Is(err, domain.ErrCustomerNotFound):
		httpx.Message(w, http.StatusNotFound, "customer not found")
	case errors.Is(err, domain.ErrAccountNotFound):
		httpx.Message(w, http.StatusNotFound, "customer account not found")
	case errors.Is(err, domain.ErrUsernameTaken):
		httpx.ValidationFailed(w, httpx.FieldErrors{"username": "already taken"})
	case errors.Is(err, domain.ErrCustomerHasDependents):
		httpx.Message(w, http.StatusConflict, "customer still has an account or orders")
	default:
		httpx.Internal(w, h.log, err)
	}
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}
