package service

import (
	"context"
	"fmt"
	"time"

	"bouncehub/internal/model"
	"bouncehub/internal/repository"
	"bouncehub/internal/rules"
	"bouncehub/pkg/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Pricing defaults applied at checkout when the request leaves them unset.
var (
	defaultDeliveryFee = decimal.NewFromInt(20)

	// Card processing cost, recovered as a 3% fee on the subtotal.
	processingFeeRule = model.PaymentRule{
		Type:       model.RulePercentage,
		Percentage: decimal.NewFromInt(3),
	}
)

// --- DTOs ---

type CheckoutItem struct {
	ItemType  string `json:"item_type" binding:"required,oneof=rental addon service fee"`
	Name      string `json:"name" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	UnitPrice string `json:"unit_price" binding:"required"`
}

type CheckoutRequest struct {
	ContactID       string         `json:"contact_id"` // optional link back to the intake record
	CustomerName    string         `json:"customer_name" binding:"required"`
	CustomerEmail   string         `json:"customer_email" binding:"required,email"`
	CustomerPhone   string         `json:"customer_phone"`
	EventDate       time.Time      `json:"event_date" binding:"required"`
	DeliveryDate    *time.Time     `json:"delivery_date"`
	DeliveryAddress string         `json:"delivery_address" binding:"required"`
	Items           []CheckoutItem `json:"items" binding:"required,min=1,dive"`
	TaxAmount       string         `json:"tax_amount"`
	DeliveryFee     string         `json:"delivery_fee"` // empty = default 20.00
	DiscountAmount  string         `json:"discount_amount"`
	DepositAmount   string         `json:"deposit_amount"`
	PaymentMethod   string         `json:"payment_method" binding:"omitempty,oneof=card cash bank_transfer check"`
	SessionID       string         `json:"session_id"` // ties the checkout to the visitor funnel
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type CapturePaymentRequest struct {
	Amount string `json:"amount" binding:"required"`
	Method string `json:"method" binding:"omitempty,oneof=card cash bank_transfer check"`
}

type RefundRequest struct {
	Amount string `json:"amount"` // empty = full refund
}

type OrderListQuery struct {
	Status        string
	PaymentStatus string
	EventFrom     *time.Time
	EventTo       *time.Time
	Page          int
	Limit         int
}

// --- Interface ---

type OrderService interface {
	Checkout(ctx context.Context, req CheckoutRequest) (*model.Order, error)
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	ListOrders(ctx context.Context, query OrderListQuery) ([]model.Order, int64, error)
	UpdateStatus(ctx context.Context, id string, req UpdateOrderStatusRequest) (*model.Order, error)
	CapturePayment(ctx context.Context, id string, req CapturePaymentRequest) (*model.Order, error)
	Refund(ctx context.Context, id string, req RefundRequest) (*model.Order, error)
	DeleteOrder(ctx context.Context, id string) error
}

type orderService struct {
	orderRepo   repository.OrderRepository
	contactRepo repository.ContactRepository
	txManager   repository.TransactionManager
	analytics   AnalyticsService
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	contactRepo repository.ContactRepository,
	txManager repository.TransactionManager,
	analytics AnalyticsService,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		contactRepo: contactRepo,
		txManager:   txManager,
		analytics:   analytics,
	}
}

// --- Implementation ---

// Checkout prices the cart, generates the order number and persists the
// order with its items in one transaction. All monetary fields are rounded
// to cents; the invariants total = round2(subtotal + tax + delivery +
// processing - discount) and balance = round2(total - deposit) hold on the
// stored record.
func (s *orderService) Checkout(ctx context.Context, req CheckoutRequest) (*model.Order, error) {
	items := make([]model.OrderItem, 0, len(req.Items))
	subtotal := decimal.Zero
	for _, it := range req.Items {
		unitPrice := money.NonNegative(money.FromString(it.UnitPrice))
		lineTotal := money.Round2(unitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
		items = append(items, model.OrderItem{
			ItemType:   it.ItemType,
			Name:       it.Name,
			Quantity:   it.Quantity,
			UnitPrice:  money.Round2(unitPrice),
			TotalPrice: lineTotal,
		})
		subtotal = subtotal.Add(lineTotal)
	}
	subtotal = money.Round2(subtotal)

	taxAmount := money.Round2(money.NonNegative(money.FromString(req.TaxAmount)))

	deliveryFee := defaultDeliveryFee
	if req.DeliveryFee != "" {
		deliveryFee = money.NonNegative(money.FromString(req.DeliveryFee))
	}
	deliveryFee = money.Round2(deliveryFee)

	processingFee := rules.EvaluatePaymentRule(processingFeeRule, subtotal)

	discount := money.Round2(money.NonNegative(money.FromString(req.DiscountAmount)))
	deposit := money.Round2(money.NonNegative(money.FromString(req.DepositAmount)))

	total := money.Round2(subtotal.Add(taxAmount).Add(deliveryFee).Add(processingFee).Sub(discount))
	balance := money.Round2(total.Sub(deposit))

	order := &model.Order{
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		EventDate:       req.EventDate,
		DeliveryDate:    req.DeliveryDate,
		DeliveryAddress: req.DeliveryAddress,
		Items:           items,
		Subtotal:        subtotal,
		TaxAmount:       taxAmount,
		DeliveryFee:     deliveryFee,
		ProcessingFee:   processingFee,
		DiscountAmount:  discount,
		TotalAmount:     total,
		DepositAmount:   deposit,
		BalanceDue:      balance,
		Status:          model.OrderPending,
		PaymentStatus:   model.PaymentPending,
		PaymentMethod:   model.PaymentMethod(req.PaymentMethod),
	}

	if req.ContactID != "" {
		contactID, err := uuid.Parse(req.ContactID)
		if err != nil {
			return nil, fmt.Errorf("invalid contact_id: %w", err)
		}
		order.ContactID = &contactID
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		orderNumber, genErr := s.generateOrderNumber(txCtx)
		if genErr != nil {
			return fmt.Errorf("failed to generate order number: %w", genErr)
		}
		order.OrderNumber = orderNumber

		if createErr := s.orderRepo.Create(txCtx, order); createErr != nil {
			return fmt.Errorf("failed to create order: %w", createErr)
		}

		// Mark the intake contact as converted when the order came from one.
		if order.ContactID != nil {
			contact, findErr := s.contactRepo.FindByID(txCtx, *order.ContactID)
			if findErr != nil {
				return fmt.Errorf("referenced contact not found: %w", findErr)
			}
			contact.Status = model.ContactConverted
			if updateErr := s.contactRepo.Update(txCtx, contact); updateErr != nil {
				return fmt.Errorf("failed to update contact: %w", updateErr)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	// Funnel tracking is best effort; a failed write never fails the checkout.
	if req.SessionID != "" && s.analytics != nil {
		s.analytics.TrackEvent(ctx, TrackEventRequest{
			SessionID: req.SessionID,
			EventType: model.EventCheckoutComplete,
			Page:      "/checkout",
		})
	}

	return s.orderRepo.FindByIDWithItems(ctx, order.ID)
}

func (s *orderService) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid order id: %w", err)
	}
	return s.orderRepo.FindByIDWithItems(ctx, orderID)
}

func (s *orderService) ListOrders(ctx context.Context, query OrderListQuery) ([]model.Order, int64, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 20
	}

	return s.orderRepo.List(ctx, repository.OrderListFilter{
		Status:        query.Status,
		PaymentStatus: query.PaymentStatus,
		EventFrom:     query.EventFrom,
		EventTo:       query.EventTo,
		Page:          query.Page,
		Limit:         query.Limit,
	})
}

// UpdateStatus applies an admin status change through the transition guard.
// An illegal move returns model.ErrInvalidTransition and writes nothing.
func (s *orderService) UpdateStatus(ctx context.Context, id string, req UpdateOrderStatusRequest) (*model.Order, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid order id: %w", err)
	}

	requested := model.OrderStatus(req.Status)
	if !model.ValidOrderStatus(requested) {
		return nil, fmt.Errorf("unknown order status %q: %w", req.Status, model.ErrInvalidTransition)
	}

	var order *model.Order
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		order, findErr = s.orderRepo.FindByID(txCtx, orderID)
		if findErr != nil {
			return fmt.Errorf("order not found: %w", findErr)
		}

		if !order.Status.CanTransitionTo(requested) {
			return fmt.Errorf("%s -> %s: %w", order.Status, requested, model.ErrInvalidTransition)
		}

		order.Status = requested
		if updateErr := s.orderRepo.Update(txCtx, order); updateErr != nil {
			return fmt.Errorf("failed to update order: %w", updateErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.orderRepo.FindByIDWithItems(ctx, order.ID)
}

// CapturePayment records a captured amount against the order. The full total
// marks the order paid; the deposit amount authorizes it and leaves the
// order status alone. Any other amount is recorded as a failed capture.
func (s *orderService) CapturePayment(ctx context.Context, id string, req CapturePaymentRequest) (*model.Order, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid order id: %w", err)
	}

	amount := money.Round2(money.FromString(req.Amount))
	if !amount.IsPositive() {
		return nil, fmt.Errorf("capture amount must be positive")
	}

	var order *model.Order
	var mismatch error
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		order, findErr = s.orderRepo.FindByID(txCtx, orderID)
		if findErr != nil {
			return fmt.Errorf("order not found: %w", findErr)
		}

		switch {
		case amount.Equal(order.TotalAmount):
			order.PaymentStatus = model.PaymentPaid
			order.BalanceDue = decimal.Zero
			// A full capture advances the order itself; walk it through the
			// legal intermediate state when it is still pending.
			if order.Status == model.OrderPending {
				order.Status = model.OrderProcessing
			}
			if !order.Status.CanTransitionTo(model.OrderPaid) {
				return fmt.Errorf("%s -> %s: %w", order.Status, model.OrderPaid, model.ErrInvalidTransition)
			}
			order.Status = model.OrderPaid
		case amount.Equal(order.DepositAmount):
			order.PaymentStatus = model.PaymentAuthorized
			order.BalanceDue = money.Round2(order.TotalAmount.Sub(amount))
		default:
			// The failed capture is recorded on the order, then reported.
			order.PaymentStatus = model.PaymentFailed
			mismatch = fmt.Errorf("captured amount %s matches neither total %s nor deposit %s",
				amount, order.TotalAmount, order.DepositAmount)
		}

		if req.Method != "" {
			order.PaymentMethod = model.PaymentMethod(req.Method)
		}

		if updateErr := s.orderRepo.Update(txCtx, order); updateErr != nil {
			return fmt.Errorf("failed to update order: %w", updateErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if mismatch != nil {
		return nil, mismatch
	}

	return s.orderRepo.FindByIDWithItems(ctx, order.ID)
}

// Refund moves a paid or confirmed order to refunded through the guard. A
// partial amount marks the payment partially refunded without changing the
// order status.
func (s *orderService) Refund(ctx context.Context, id string, req RefundRequest) (*model.Order, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid order id: %w", err)
	}

	var order *model.Order
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		order, findErr = s.orderRepo.FindByID(txCtx, orderID)
		if findErr != nil {
			return fmt.Errorf("order not found: %w", findErr)
		}

		amount := money.Round2(money.FromString(req.Amount))
		full := req.Amount == "" || amount.GreaterThanOrEqual(order.TotalAmount)

		if full {
			if !order.Status.CanTransitionTo(model.OrderRefunded) {
				return fmt.Errorf("%s -> %s: %w", order.Status, model.OrderRefunded, model.ErrInvalidTransition)
			}
			order.Status = model.OrderRefunded
			order.PaymentStatus = model.PaymentRefunded
		} else {
			if !amount.IsPositive() {
				return fmt.Errorf("refund amount must be positive")
			}
			order.PaymentStatus = model.PaymentPartiallyRefunded
		}

		if updateErr := s.orderRepo.Update(txCtx, order); updateErr != nil {
			return fmt.Errorf("failed to update order: %w", updateErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.orderRepo.FindByIDWithItems(ctx, order.ID)
}

// DeleteOrder removes an order unless it reached paid or confirmed.
func (s *orderService) DeleteOrder(ctx context.Context, id string) error {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid order id: %w", err)
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("order not found: %w", err)
	}
	if !order.Deletable() {
		return model.ErrOrderNotDeletable
	}

	return s.orderRepo.Delete(ctx, orderID)
}

// generateOrderNumber produces the next BB-YYYY-NNNN number for the current
// year. Runs inside the checkout transaction so concurrent checkouts cannot
// observe the same count.
func (s *orderService) generateOrderNumber(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("BB-%d-", time.Now().Year())

	count, err := s.orderRepo.CountByPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s%04d", prefix, count+1), nil
}
