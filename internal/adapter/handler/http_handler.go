package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/example/storefront/internal/core/domain"
	"github.com/example/storefront/internal/core/service"
	"github.com/example/storefront/internal/port"
)

type HTTPHandler struct {
	catalog  *service.CatalogService
	cart     *service.CartService
	checkout *service.CheckoutService
	log      *slog.Logger
}

func NewHTTPHandler(catalog *service.CatalogService, cart *service.CartService, checkout *service.CheckoutService, log *slog.Logger) *HTTPHandler {
	return &HTTPHandler{
		catalog:  catalog,
		cart:     cart,
		checkout: checkout,
		log:      log,
	}
}

// Router wires the public surface. Cart routes sit behind the user-id
// header check; the core itself does no authentication.
func (h *HTTPHandler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/products", h.ListProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", h.GetProduct).Methods(http.MethodGet)

	cart := api.PathPrefix("/cart").Subrouter()
	cart.Use(requireUserID)
	cart.HandleFunc("", h.GetCart).Methods(http.MethodGet)
	cart.HandleFunc("/add", h.AddToCart).Methods(http.MethodPost)
	cart.HandleFunc("/item/{itemId}", h.UpdateCartItem).Methods(http.MethodPatch)
	cart.HandleFunc("/item/{itemId}", h.RemoveFromCart).Methods(http.MethodDelete)
	cart.HandleFunc("/checkout", h.Checkout).Methods(http.MethodPost)

	return r
}

type ctxKey int

const userIDKey ctxKey = 0

func requireUserID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("user-id")
		if userID == "" {
			writeFail(w, http.StatusUnauthorized, "authentication required: provide user-id header")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), userID)))
	})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := port.ListQuery{
		Page:     intQuery(r, "page", 1),
		Limit:    intQuery(r, "limit", 0),
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
	}

	page, err := h.catalog.ListProducts(r.Context(), q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *HTTPHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProduct(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *HTTPHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cart.GetCart(r.Context(), userID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *HTTPHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProductID == "" {
		writeFail(w, http.StatusBadRequest, "product_id is required")
		return
	}
	if req.Quantity < 1 {
		writeFail(w, http.StatusBadRequest, "quantity must be a positive integer")
		return
	}

	cart, err := h.cart.AddItem(r.Context(), userID(r), req.ProductID, req.Quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *HTTPHandler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Quantity < 1 {
		writeFail(w, http.StatusBadRequest, "quantity must be a positive integer")
		return
	}

	cart, err := h.cart.UpdateItem(r.Context(), userID(r), mux.Vars(r)["itemId"], req.Quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *HTTPHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cart.RemoveItem(r.Context(), userID(r), mux.Vars(r)["itemId"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

type checkoutRequest struct {
	ShippingAddress domain.ShippingAddress `json:"shipping_address"`
	PaymentInfo     string                 `json:"payment_info"`
}

func (h *HTTPHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	a := req.ShippingAddress
	if a.Street == "" || a.City == "" || a.State == "" {
		writeFail(w, http.StatusBadRequest, "shipping address must include street, city, and state")
		return
	}

	order, err := h.checkout.Checkout(r.Context(), userID(r), req.ShippingAddress, req.PaymentInfo)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"status": "success",
		"order":  order,
	})
}

// writeError maps the failure taxonomy to HTTP statuses: Conflict 409,
// NotFound 404, InvalidState 400, everything else 500 with a generic body.
func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrLockConflict):
		writeFail(w, http.StatusConflict, "another operation is in progress, please try again")
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrCartNotFound),
		errors.Is(err, domain.ErrItemNotFound):
		writeFail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrInvalidQuantity):
		writeFail(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeFail(w, http.StatusInternalServerError, "internal error")
	}
}

func intQuery(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

type failResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func writeFail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, failResponse{Status: "fail", Message: message})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
