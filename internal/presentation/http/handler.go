package httppresentation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	appCart "github.com/totemfood/orders/internal/application/cart"
	appOrder "github.com/totemfood/orders/internal/application/order"
	appPayment "github.com/totemfood/orders/internal/application/payment"
	appProduct "github.com/totemfood/orders/internal/application/product"
	domcart "github.com/totemfood/orders/internal/domain/cart"
	domorder "github.com/totemfood/orders/internal/domain/order"
	dompayment "github.com/totemfood/orders/internal/domain/payment"
	domproduct "github.com/totemfood/orders/internal/domain/product"
	"github.com/totemfood/orders/internal/observability"
)

const (
	componentHTTPHandler = "http_server"
	headerRequestID      = "X-Request-ID"
)

type Handler struct {
	orderService   *appOrder.Service
	cartService    *appCart.Service
	productService *appProduct.Service
	paymentService *appPayment.Service
	log            observability.Logger
	obs            observability.Observability
}

func NewHandler(
	orderSvc *appOrder.Service,
	cartSvc *appCart.Service,
	productSvc *appProduct.Service,
	paymentSvc *appPayment.Service,
	obs observability.Observability,
) *Handler {
	if obs == nil {
		obs = observability.Nop()
	}
	return &Handler{
		orderService:   orderSvc,
		cartService:    cartSvc,
		productService: productSvc,
		paymentService: paymentSvc,
		log:            obs.Logger().With(observability.F("component", componentHTTPHandler)),
		obs:            obs,
	}
}

// Router wires every route through the observability chain:
// Trace → Request logger → HTTP metrics → Access log → Handler.
func (h *Handler) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/orders", h.handleListOrders).Methods(http.MethodGet)
	r.HandleFunc("/orders", h.handleCreateOrder).Methods(http.MethodPost)
	r.HandleFunc("/orders/{id}", h.handleGetOrder).Methods(http.MethodGet)
	r.HandleFunc("/orders/{id}", h.handleUpdateOrder).Methods(http.MethodPut)
	r.HandleFunc("/orders/{id}/total", h.handleOrderTotal).Methods(http.MethodGet)

	r.HandleFunc("/orders/{orderId}/cart/items", h.handleAddCartItem).Methods(http.MethodPost)
	r.HandleFunc("/cart/items/{id}", h.handleGetCartItem).Methods(http.MethodGet)
	r.HandleFunc("/cart/items/{id}", h.handleUpdateCartItem).Methods(http.MethodPut)
	r.HandleFunc("/cart/items/{id}", h.handleDeleteCartItem).Methods(http.MethodDelete)

	r.HandleFunc("/products", h.handleListProducts).Methods(http.MethodGet)
	r.HandleFunc("/products", h.handleCreateProduct).Methods(http.MethodPost)

	r.HandleFunc("/payment-orders", h.handleListPaymentOrders).Methods(http.MethodGet)
	r.HandleFunc("/payment-orders", h.handleMakePayment).Methods(http.MethodPost)
	r.HandleFunc("/payment-orders/notifications", h.handlePaymentNotification).Methods(http.MethodPost)
	r.HandleFunc("/payment-orders/orders/{orderId}", h.handleGetPaymentOrderByOrder).Methods(http.MethodGet)
	r.HandleFunc("/payment-orders/{id}", h.handleGetPaymentOrder).Methods(http.MethodGet)

	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)

	r.Use(ObservabilityMiddleware(h.log, func(r *http.Request) string {
		return r.Header.Get(headerRequestID)
	}, h.obs))

	return r
}

// --- orders

type createOrderRequest struct {
	CustomerID string `json:"customerId"`
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	order, err := h.orderService.CreateOrder(r.Context(), req.CustomerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.ListOrders(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderService.GetOrderByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

type updateOrderRequest struct {
	Status     string `json:"status"`
	ReadableID *int   `json:"readableId,omitempty"`
}

func (h *Handler) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	var req updateOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	order, err := h.orderService.UpdateOrder(r.Context(), appOrder.UpdateOrderInput{
		ID:         mux.Vars(r)["id"],
		Status:     req.Status,
		ReadableID: req.ReadableID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

type orderTotalResponse struct {
	OrderID string `json:"orderId"`
	Value   int64  `json:"value"`
}

func (h *Handler) handleOrderTotal(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	total, err := h.orderService.OrderTotalValue(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orderTotalResponse{OrderID: id, Value: total})
}

// --- cart items

type addCartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Details   string `json:"details,omitempty"`
}

func (h *Handler) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	item, err := h.cartService.AddItem(r.Context(), appCart.AddItemInput{
		OrderID:   mux.Vars(r)["orderId"],
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Details:   req.Details,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) handleGetCartItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.cartService.GetItem(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

type updateCartItemRequest struct {
	Quantity int    `json:"quantity"`
	Details  string `json:"details,omitempty"`
}

func (h *Handler) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req updateCartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	item, err := h.cartService.UpdateItem(r.Context(), appCart.UpdateItemInput{
		ID:       mux.Vars(r)["id"],
		Quantity: req.Quantity,
		Details:  req.Details,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) handleDeleteCartItem(w http.ResponseWriter, r *http.Request) {
	if err := h.cartService.DeleteItem(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- products

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.ListProducts(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req appProduct.CreateProductInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	product, err := h.productService.CreateProduct(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// --- payment orders

type makePaymentRequest struct {
	OrderID string `json:"orderId"`
}

func (h *Handler) handleMakePayment(w http.ResponseWriter, r *http.Request) {
	var req makePaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	po, err := h.paymentService.MakePayment(r.Context(), req.OrderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, po)
}

func (h *Handler) handleListPaymentOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.paymentService.PaymentOrders(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) handleGetPaymentOrder(w http.ResponseWriter, r *http.Request) {
	po, err := h.paymentService.PaymentOrderByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, po)
}

func (h *Handler) handleGetPaymentOrderByOrder(w http.ResponseWriter, r *http.Request) {
	po, err := h.paymentService.PaymentOrderByOrderID(r.Context(), mux.Vars(r)["orderId"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, po)
}

// paymentNotificationRequest mirrors the provider webhook payload; only the
// fields the reconciliation needs are read, the rest is accepted and ignored.
type paymentNotificationRequest struct {
	ID             string  `json:"id"`
	State          string  `json:"state"`
	Amount         float64 `json:"amount"`
	AdditionalInfo struct {
		ExternalReference string `json:"external_reference"`
	} `json:"additional_info"`
}

func (h *Handler) handlePaymentNotification(w http.ResponseWriter, r *http.Request) {
	var req paymentNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	err := h.paymentService.ProcessNotification(r.Context(), dompayment.Notification{
		ID:                req.ID,
		State:             dompayment.NotificationState(req.State),
		ExternalReference: req.AdditionalInfo.ExternalReference,
		Amount:            int64(req.Amount * 100),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// --- helpers

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeDomainError(w http.ResponseWriter, err error) {
	var gatewayErr *dompayment.GatewayError
	var notifErr *dompayment.NotificationError

	switch {
	case errors.Is(err, domorder.ErrNotFound),
		errors.Is(err, domcart.ErrNotFound),
		errors.Is(err, domproduct.ErrNotFound),
		errors.Is(err, dompayment.ErrNotFound),
		errors.Is(err, dompayment.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, domorder.ErrInvalidID),
		errors.Is(err, domorder.ErrMissingID),
		errors.Is(err, domorder.ErrInvalidStatus),
		errors.Is(err, domorder.ErrNoItems),
		errors.Is(err, domcart.ErrInvalidQuantity),
		errors.Is(err, domproduct.ErrInvalidPrice),
		errors.Is(err, domproduct.ErrMissingName):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, dompayment.ErrAlreadyExists),
		errors.Is(err, domorder.ErrInvalidTransition),
		errors.Is(err, dompayment.ErrNotPending):
		writeError(w, http.StatusConflict, err)
	case errors.As(err, &notifErr):
		writeError(w, http.StatusUnprocessableEntity, err)
	case errors.As(err, &gatewayErr):
		writeError(w, http.StatusBadGateway, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

type ctxKey int

const routeKey ctxKey = iota

// contextWithRoute stores the route template so metrics and logs keep
// low-cardinality labels.
func contextWithRoute(ctx context.Context, route string) context.Context {
	if route == "" {
		return ctx
	}
	return context.WithValue(ctx, routeKey, route)
}

func routeFromContext(ctx context.Context) string {
	if route, ok := ctx.Value(routeKey).(string); ok && route != "" {
		return route
	}
	return "unknown"
}
