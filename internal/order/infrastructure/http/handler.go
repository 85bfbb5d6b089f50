package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	inventorydomain "github.com/dmehra2102/Storefront-Order-Service/internal/inventory/domain"
	"github.com/dmehra2102/Storefront-Order-Service/internal/order/application"
	"github.com/dmehra2102/Storefront-Order-Service/internal/order/domain"
	walletdomain "github.com/dmehra2102/Storefront-Order-Service/internal/wallet/domain"
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
		tracer:  otel.Tracer("order-http"),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/orders/gateway-intent", h.createIntent)
	r.Post("/orders/verify-payment", h.verifyPayment)
	r.Post("/orders", h.placeOrder)
	r.Post("/orders/wallet", h.placeWalletOrder)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.getOrder)
	r.Patch("/orders/{id}/status", h.updateStatus)
	r.Patch("/orders/{id}/return", h.requestReturn)
	r.Post("/orders/{orderId}/refund", h.refund)
	r.Get("/users/{id}/orders", h.listUserOrders)
	return r
}

type createIntentReq struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

func (h *Handler) createIntent(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreatePaymentIntent")
	defer span.End()

	var req createIntentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, &application.ValidationError{Field: "body", Reason: "invalid json"})
		return
	}

	order, err := h.service.CreatePaymentIntent(ctx, req.Amount, req.Currency)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"success": true, "order": order})
}

type verifyPaymentReq struct {
	GatewayOrderID string `json:"gatewayOrderId"`
	PaymentID      string `json:"paymentId"`
	Signature      string `json:"signature"`
}

func (h *Handler) verifyPayment(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "VerifyPayment")
	defer span.End()

	var req verifyPaymentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, &application.ValidationError{Field: "body", Reason: "invalid json"})
		return
	}

	if err := h.service.VerifyPayment(ctx, req.GatewayOrderID, req.PaymentID, req.Signature); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type placeOrderReq struct {
	UserID          string          `json:"userId"`
	Products        []domain.Item   `json:"products"`
	ShippingAddress domain.Address  `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	CouponCode      string          `json:"couponCode"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	FinalAmount     decimal.Decimal `json:"finalAmount"`
	GatewayOrderID  string          `json:"gatewayOrderId"`
	Status          string          `json:"status"`
}

func (r placeOrderReq) command() application.PlaceOrderCommand {
	return application.PlaceOrderCommand{
		UserID:          r.UserID,
		Items:           r.Products,
		ShippingAddress: r.ShippingAddress,
		PaymentMethod:   domain.PaymentMethod(r.PaymentMethod),
		CouponCode:      r.CouponCode,
		GatewayOrderID:  r.GatewayOrderID,
		PaymentFailed:   r.Status == string(domain.StatusPaymentFailed),
	}
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PlaceOrder")
	defer span.End()

	var req placeOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, &application.ValidationError{Field: "body", Reason: "invalid json"})
		return
	}

	o, err := h.service.PlaceOrder(ctx, req.command())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{"order": orderJSON(o)})
}

func (h *Handler) placeWalletOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PlaceWalletOrder")
	defer span.End()

	var req placeOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, &application.ValidationError{Field: "body", Reason: "invalid json"})
		return
	}

	o, err := h.service.PlaceWalletOrder(ctx, req.command())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{"orderId": o.ID})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetOrder")
	defer span.End()

	o, err := h.service.GetOrder(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"orderDetails": orderJSON(o)})
}

func (h *Handler) listUserOrders(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListUserOrders")
	defer span.End()

	orders, err := h.service.ListUserOrders(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"orderDetails": ordersJSON(orders)})
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListOrders")
	defer span.End()

	orders, err := h.service.ListAll(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"orders": ordersJSON(orders)})
}

type updateStatusReq struct {
	Status string `json:"status"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateOrderStatus")
	defer span.End()

	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, &application.ValidationError{Field: "body", Reason: "invalid json"})
		return
	}
	status, ok := domain.ParseStatus(req.Status)
	if !ok {
		h.writeError(w, r, &application.ValidationError{Field: "status", Reason: "unrecognized status " + req.Status})
		return
	}

	res, err := h.service.UpdateStatus(ctx, chi.URLParam(r, "id"), status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	body := map[string]any{"updateOrder": orderJSON(res.Order)}
	if res.Wallet != nil {
		body["wallet"] = res.Wallet
	}
	h.writeJSON(w, http.StatusOK, body)
}

type returnReq struct {
	Status            string `json:"status"`
	ReturnReason      string `json:"returnReason"`
	ReturnDescription string `json:"returnDescription"`
}

func (h *Handler) requestReturn(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RequestReturn")
	defer span.End()

	var req returnReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, &application.ValidationError{Field: "body", Reason: "invalid json"})
		return
	}
	if req.Status != "" && req.Status != string(domain.StatusReturned) {
		h.writeError(w, r, &application.ValidationError{Field: "status", Reason: "must be Returned"})
		return
	}

	res, err := h.service.RequestReturn(ctx, chi.URLParam(r, "id"), req.ReturnReason, req.ReturnDescription)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	body := map[string]any{"order": orderJSON(res.Order)}
	if res.Wallet != nil {
		body["wallet"] = res.Wallet
	}
	h.writeJSON(w, http.StatusOK, body)
}

func (h *Handler) refund(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RefundOrder")
	defer span.End()

	wallet, err := h.service.RefundCancelledOrder(ctx, chi.URLParam(r, "orderId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"wallet": wallet})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("response encode failed", "err", err)
	}
}

// writeError maps the application error taxonomy onto HTTP statuses. Nothing
// escapes as a crash; unexpected failures surface as 500 with a generic body.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		h.writeJSON(w, status, map[string]string{"error": "internal error"})
		return
	}
	h.log.Info("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	var ve *application.ValidationError
	switch {
	case errors.Is(err, application.ErrOrderNotFound),
		errors.Is(err, application.ErrUserNotFound):
		return http.StatusNotFound
	case errors.As(err, &ve),
		errors.Is(err, application.ErrInvalidTransition),
		errors.Is(err, application.ErrSignatureMismatch),
		errors.Is(err, application.ErrRefundNotAllowed),
		errors.Is(err, inventorydomain.ErrInsufficientStock),
		errors.Is(err, walletdomain.ErrInsufficientFunds):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// orderView is the wire shape of an order; monetary fields serialise as
// decimal strings.
type orderView struct {
	ID              string                   `json:"id"`
	UserID          string                   `json:"userId"`
	Products        []domain.Item            `json:"products"`
	ShippingAddress domain.Address           `json:"shippingAddress"`
	PaymentMethod   domain.PaymentMethod     `json:"paymentMethod"`
	Coupon          *domain.AppliedCoupon    `json:"coupon,omitempty"`
	TotalAmount     decimal.Decimal          `json:"totalAmount"`
	DiscountAmount  decimal.Decimal          `json:"discountAmount"`
	FinalAmount     decimal.Decimal          `json:"finalAmount"`
	OrderStatus     domain.OrderStatus       `json:"orderStatus"`
	PaymentStatus   domain.PaymentStatus     `json:"paymentStatus"`
	Gateway         *domain.GatewayReference `json:"gatewayReference,omitempty"`
	ReturnDetails   *domain.ReturnDetails    `json:"returnDetails,omitempty"`
	OrderDate       time.Time                `json:"orderDate"`
	UpdatedAt       time.Time                `json:"updatedAt"`
}

func orderJSON(o domain.Order) orderView {
	return orderView{
		ID:              o.ID,
		UserID:          o.UserID,
		Products:        o.Items,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		Coupon:          o.Coupon,
		TotalAmount:     o.TotalAmount,
		DiscountAmount:  o.DiscountAmount,
		FinalAmount:     o.FinalAmount,
		OrderStatus:     o.Status,
		PaymentStatus:   o.PaymentStatus,
		Gateway:         o.Gateway,
		ReturnDetails:   o.ReturnDetails,
		OrderDate:       o.OrderDate,
		UpdatedAt:       o.UpdatedAt,
	}
}

func ordersJSON(orders []domain.Order) []orderView {
	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, orderJSON(o))
	}
	return views
}
