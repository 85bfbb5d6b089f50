package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmehra2102/Storefront-Order-Service/internal/order/domain"
	"github.com/dmehra2102/Storefront-Order-Service/internal/payment/gateway"
	walletdomain "github.com/dmehra2102/Storefront-Order-Service/internal/wallet/domain"
)

const defaultCurrency = "INR"

type Service struct {
	log     *slog.Logger
	orders  OrderRepository
	stock   Inventory
	wallet  WalletLedger
	coupons CouponStore
	gateway PaymentGateway
	users   UserStore
	carts   CartStore
	now     func() time.Time
}

func NewService(log *slog.Logger, orders OrderRepository, stock Inventory, wallet WalletLedger,
	coupons CouponStore, gw PaymentGateway, users UserStore, carts CartStore) *Service {
	return &Service{
		log:     log,
		orders:  orders,
		stock:   stock,
		wallet:  wallet,
		coupons: coupons,
		gateway: gw,
		users:   users,
		carts:   carts,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

type PlaceOrderCommand struct {
	UserID          string
	Items           []domain.Item
	ShippingAddress domain.Address
	PaymentMethod   domain.PaymentMethod
	CouponCode      string
	GatewayOrderID  string
	// PaymentFailed marks an online payment attempt that did not succeed:
	// the order is persisted as a dead end, consuming no stock and leaving
	// the cart untouched.
	PaymentFailed bool
}

// TransitionResult carries the updated order plus the refund-credited wallet
// when a transition triggered one.
type TransitionResult struct {
	Order  domain.Order
	Wallet *walletdomain.Wallet
}

// PlaceOrder handles cash-on-delivery and online-gateway checkouts. Stock is
// reserved for every line, the order is persisted with an outbox event, and
// the cart is cleared best-effort.
func (s *Service) PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (domain.Order, error) {
	if err := validatePlacement(cmd); err != nil {
		return domain.Order{}, err
	}

	coupon, err := s.resolveCoupon(ctx, cmd.CouponCode, subtotalOf(cmd.Items))
	if err != nil {
		return domain.Order{}, err
	}
	o := domain.NewOrder(uuid.NewString(), cmd.UserID, cmd.Items, cmd.ShippingAddress, cmd.PaymentMethod, coupon)

	if cmd.PaymentFailed {
		o.Status = domain.StatusPaymentFailed
		o.PaymentStatus = domain.PaymentFailed
		if cmd.GatewayOrderID != "" {
			o.Gateway = &domain.GatewayReference{ExternalOrderID: cmd.GatewayOrderID}
		}
		if err := s.save(ctx, o, "OrderPaymentFailed"); err != nil {
			return domain.Order{}, err
		}
		s.log.Info("payment-failed order persisted", "order_id", o.ID, "user_id", o.UserID)
		return o, nil
	}

	switch cmd.PaymentMethod {
	case domain.CashOnDelivery:
		// paymentStatus stays Pending until delivery.
	case domain.OnlineGateway:
		if cmd.GatewayOrderID == "" {
			return domain.Order{}, invalid("gatewayOrderId", "required for online payment")
		}
		o.Gateway = &domain.GatewayReference{ExternalOrderID: cmd.GatewayOrderID}
		o.PaymentStatus = domain.PaymentCompleted
	case domain.WalletPayment:
		return domain.Order{}, invalid("paymentMethod", "wallet checkout uses the wallet endpoint")
	default:
		return domain.Order{}, invalid("paymentMethod", fmt.Sprintf("unknown method %q", cmd.PaymentMethod))
	}

	if err := s.stock.ReserveAll(ctx, o.Items); err != nil {
		return domain.Order{}, err
	}
	if err := s.save(ctx, o, "OrderPlaced"); err != nil {
		return domain.Order{}, err
	}
	s.clearCart(ctx, o.UserID)

	s.log.Info("order placed", "order_id", o.ID, "user_id", o.UserID,
		"method", o.PaymentMethod, "final_amount", o.FinalAmount)
	return o, nil
}

// PlaceWalletOrder settles the final amount from the user's wallet. The
// balance is pre-checked before any stock is touched; the debit itself is
// re-gated atomically at the ledger.
func (s *Service) PlaceWalletOrder(ctx context.Context, cmd PlaceOrderCommand) (domain.Order, error) {
	cmd.PaymentMethod = domain.WalletPayment
	if err := validatePlacement(cmd); err != nil {
		return domain.Order{}, err
	}

	coupon, err := s.resolveCoupon(ctx, cmd.CouponCode, subtotalOf(cmd.Items))
	if err != nil {
		return domain.Order{}, err
	}
	o := domain.NewOrder(uuid.NewString(), cmd.UserID, cmd.Items, cmd.ShippingAddress, domain.WalletPayment, coupon)

	balance, err := s.wallet.Balance(ctx, o.UserID)
	if err != nil {
		return domain.Order{}, err
	}
	if balance.LessThan(o.FinalAmount) {
		return domain.Order{}, walletdomain.ErrInsufficientFunds
	}

	if err := s.stock.ReserveAll(ctx, o.Items); err != nil {
		return domain.Order{}, err
	}
	// A fully discounted order settles without touching the ledger; the
	// ledger itself refuses zero-amount entries.
	if !o.FinalAmount.IsZero() {
		if _, err := s.wallet.Debit(ctx, o.UserID, o.FinalAmount, "Payment for order "+o.ID); err != nil {
			// Stock has already been decremented; there is no compensating
			// rollback here, matching the storage model's per-record atomicity.
			return domain.Order{}, err
		}
	}
	o.PaymentStatus = domain.PaymentCompleted

	if err := s.save(ctx, o, "OrderPlaced"); err != nil {
		return domain.Order{}, err
	}
	s.clearCart(ctx, o.UserID)

	s.log.Info("wallet order placed", "order_id", o.ID, "user_id", o.UserID, "final_amount", o.FinalAmount)
	return o, nil
}

// CreatePaymentIntent opens a gateway-side payment record for the amount.
func (s *Service) CreatePaymentIntent(ctx context.Context, amount decimal.Decimal, currency string) (gateway.Order, error) {
	if !amount.IsPositive() {
		return gateway.Order{}, invalid("amount", "must be positive")
	}
	if currency == "" {
		currency = defaultCurrency
	}
	return s.gateway.CreateOrder(ctx, amount, currency)
}

// VerifyPayment authenticates a gateway callback. A forged signature aborts
// confirmation with no state change. When the referenced order already
// exists its gateway reference and payment status are settled; verification
// may also legitimately arrive before the order row is created.
func (s *Service) VerifyPayment(ctx context.Context, gatewayOrderID, paymentID, signature string) error {
	if gatewayOrderID == "" || paymentID == "" || signature == "" {
		return invalid("payment", "gatewayOrderId, paymentId and signature are required")
	}
	if !s.gateway.VerifySignature(gatewayOrderID, paymentID, signature) {
		return ErrSignatureMismatch
	}

	o, err := s.orders.FindByGatewayOrderID(ctx, gatewayOrderID)
	if errors.Is(err, ErrOrderNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	o.Gateway.PaymentID = paymentID
	o.Gateway.Signature = signature
	o.PaymentStatus = domain.PaymentCompleted
	o.UpdatedAt = s.now()

	payload, _ := json.Marshal(domain.OrderStatusChanged{OrderID: o.ID, UserID: o.UserID, From: o.Status, To: o.Status})
	return s.orders.SaveWithOutbox(ctx, o, "PaymentVerified", payload)
}

// UpdateStatus drives the order state machine from the generic status
// endpoint. Returns arriving through here produce the same restock/refund
// side effects as the dedicated return endpoint: both funnel into transition.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, target domain.OrderStatus) (TransitionResult, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return TransitionResult{}, err
	}
	return s.transition(ctx, o, target, nil)
}

// RequestReturn records a customer return for a delivered order. Reason and
// description are both required.
func (s *Service) RequestReturn(ctx context.Context, orderID, reason, description string) (TransitionResult, error) {
	if reason == "" {
		return TransitionResult{}, invalid("returnReason", "required")
	}
	if description == "" {
		return TransitionResult{}, invalid("returnDescription", "required")
	}
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return TransitionResult{}, err
	}
	ret := &domain.ReturnDetails{Reason: reason, Description: description, ReturnDate: s.now()}
	return s.transition(ctx, o, domain.StatusReturned, ret)
}

// RefundCancelledOrder re-triggers the wallet refund for a cancelled online
// order. processRefund is not idempotent: invoking this twice credits twice,
// so operators must gate retries themselves.
func (s *Service) RefundCancelledOrder(ctx context.Context, orderID string) (walletdomain.Wallet, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return walletdomain.Wallet{}, err
	}
	if o.PaymentMethod != domain.OnlineGateway || o.PaymentStatus != domain.PaymentCompleted || o.Status != domain.StatusCancelled {
		return walletdomain.Wallet{}, ErrRefundNotAllowed
	}

	w, err := s.processRefund(ctx, o)
	if err != nil {
		return walletdomain.Wallet{}, err
	}

	payload, _ := json.Marshal(domain.RefundIssued{OrderID: o.ID, UserID: o.UserID, Amount: o.FinalAmount})
	if err := s.orders.SaveWithOutbox(ctx, o, "RefundIssued", payload); err != nil {
		return walletdomain.Wallet{}, err
	}
	return w, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	return s.orders.Get(ctx, id)
}

func (s *Service) ListUserOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUserNotFound
	}
	return s.orders.FindByUser(ctx, userID)
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Order, error) {
	return s.orders.ListAll(ctx)
}

// transition is the single place status changes and their side effects
// happen, regardless of which endpoint initiated them.
func (s *Service) transition(ctx context.Context, o domain.Order, target domain.OrderStatus, ret *domain.ReturnDetails) (TransitionResult, error) {
	from := o.Status
	var refunded *walletdomain.Wallet

	switch target {
	case domain.StatusCancelled:
		if !o.Status.Cancellable() {
			return TransitionResult{}, fmt.Errorf("%w: cannot cancel order in status %q", ErrInvalidTransition, o.Status)
		}
		if err := s.stock.ReleaseAll(ctx, o.Items); err != nil {
			return TransitionResult{}, err
		}
		if o.PaymentMethod == domain.OnlineGateway && o.RefundEligible() {
			w, err := s.processRefund(ctx, o)
			if err != nil {
				return TransitionResult{}, err
			}
			refunded = &w
		}

	case domain.StatusReturned:
		if !o.Status.Returnable() {
			return TransitionResult{}, fmt.Errorf("%w: only delivered orders can be returned, order is %q", ErrInvalidTransition, o.Status)
		}
		if err := s.stock.ReleaseAll(ctx, o.Items); err != nil {
			return TransitionResult{}, err
		}
		if o.RefundEligible() {
			w, err := s.processRefund(ctx, o)
			if err != nil {
				return TransitionResult{}, err
			}
			refunded = &w
		}
		if ret != nil {
			o.ReturnDetails = ret
		}

	case domain.StatusProcessing, domain.StatusDelivered:
		// Explicit confirmation semantics: both force payment completion.
		o.PaymentStatus = domain.PaymentCompleted

	case domain.StatusConfirmed, domain.StatusShipped:
		// Plain move, no side effects.

	default:
		return TransitionResult{}, fmt.Errorf("%w: unrecognized status %q", ErrInvalidTransition, target)
	}

	o.Status = target
	o.UpdatedAt = s.now()

	payload, _ := json.Marshal(domain.OrderStatusChanged{
		OrderID: o.ID, UserID: o.UserID, From: from, To: target, Refunded: refunded != nil,
	})
	if err := s.orders.SaveWithOutbox(ctx, o, "OrderStatusChanged", payload); err != nil {
		return TransitionResult{}, err
	}

	s.log.Info("order transitioned", "order_id", o.ID, "from", from, "to", target, "refunded", refunded != nil)
	return TransitionResult{Order: o, Wallet: refunded}, nil
}

// processRefund credits the order's final amount back to the owner's wallet.
// A fully discounted order has nothing to hand back, so a zero amount only
// reports the current balance. It is deliberately not idempotent; every call
// with a positive amount appends a fresh refund transaction, so each
// qualifying transition must invoke it at most once.
func (s *Service) processRefund(ctx context.Context, o domain.Order) (walletdomain.Wallet, error) {
	if o.FinalAmount.IsZero() {
		balance, err := s.wallet.Balance(ctx, o.UserID)
		if err != nil {
			return walletdomain.Wallet{}, err
		}
		return walletdomain.Wallet{UserID: o.UserID, Balance: balance}, nil
	}
	return s.wallet.Credit(ctx, o.UserID, o.FinalAmount, "Refund for order "+o.ID, walletdomain.TypeRefund)
}

// resolveCoupon prices the coupon exactly once at the start of checkout. An
// unknown, inactive or expired code silently yields no discount.
func (s *Service) resolveCoupon(ctx context.Context, code string, subtotal decimal.Decimal) (*domain.AppliedCoupon, error) {
	if code == "" {
		return nil, nil
	}
	c, err := s.coupons.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, nil
	}
	discount := c.DiscountFor(subtotal, s.now())
	if discount.IsZero() {
		return nil, nil
	}
	return &domain.AppliedCoupon{
		CouponID:       c.ID,
		Code:           c.Code,
		DiscountType:   string(c.DiscountType),
		DiscountAmount: discount,
	}, nil
}

func (s *Service) save(ctx context.Context, o domain.Order, eventType string) error {
	payload, err := json.Marshal(domain.OrderPlaced{
		OrderID:       o.ID,
		UserID:        o.UserID,
		PaymentMethod: o.PaymentMethod,
		FinalAmount:   o.FinalAmount,
		Items:         o.Items,
	})
	if err != nil {
		return err
	}
	return s.orders.SaveWithOutbox(ctx, o, eventType, payload)
}

// clearCart failures are logged but never fail a checkout that has already
// reserved stock and settled payment.
func (s *Service) clearCart(ctx context.Context, userID string) {
	if err := s.carts.Clear(ctx, userID); err != nil {
		s.log.Error("cart clear failed", "user_id", userID, "err", err)
	}
}

func validatePlacement(cmd PlaceOrderCommand) error {
	if cmd.UserID == "" {
		return invalid("userId", "required")
	}
	if len(cmd.Items) == 0 {
		return invalid("products", "at least one item required")
	}
	for _, it := range cmd.Items {
		if it.ProductID == "" || it.VariantID == "" {
			return invalid("products", "productId and variantId required on every item")
		}
		if it.Quantity <= 0 {
			return invalid("products", fmt.Sprintf("quantity must be positive for variant %s", it.VariantID))
		}
		if it.UnitPrice.IsNegative() {
			return invalid("products", fmt.Sprintf("negative unit price for variant %s", it.VariantID))
		}
	}
	if cmd.ShippingAddress == (domain.Address{}) {
		return invalid("shippingAddress", "required")
	}
	return nil
}

func subtotalOf(items []domain.Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}
