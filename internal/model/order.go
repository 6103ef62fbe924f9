package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus enum
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderPaid       OrderStatus = "paid"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderCancelled  OrderStatus = "cancelled"
	OrderRefunded   OrderStatus = "refunded"
)

// PaymentStatus enum
type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "pending"
	PaymentAuthorized        PaymentStatus = "authorized"
	PaymentPaid              PaymentStatus = "paid"
	PaymentFailed            PaymentStatus = "failed"
	PaymentRefunded          PaymentStatus = "refunded"
	PaymentPartiallyRefunded PaymentStatus = "partially_refunded"
)

// PaymentMethod enum
type PaymentMethod string

const (
	MethodCard         PaymentMethod = "card"
	MethodCash         PaymentMethod = "cash"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCheck        PaymentMethod = "check"
)

// OrderItemType enum
const (
	ItemTypeRental  = "rental"
	ItemTypeAddon   = "addon"
	ItemTypeService = "service"
	ItemTypeFee     = "fee"
)

// ErrInvalidTransition is returned when an order status change violates the
// lifecycle table. It is surfaced to the client, never silently coerced.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrOrderNotDeletable is returned when deleting a paid or confirmed order.
var ErrOrderNotDeletable = errors.New("paid or confirmed orders cannot be deleted")

// orderTransitions is the legal lifecycle graph. Cancelled and refunded are
// terminal; nothing moves back to pending once progressed past it.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderPaid, OrderCancelled},
	OrderPaid:       {OrderConfirmed, OrderRefunded},
	OrderConfirmed:  {OrderRefunded},
	OrderCancelled:  {},
	OrderRefunded:   {},
}

// ValidOrderStatus reports whether s is one of the known order statuses.
func ValidOrderStatus(s OrderStatus) bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransitionTo reports whether the status change from -> to is legal.
// A self-transition is always allowed as an idempotent no-op update.
func (s OrderStatus) CanTransitionTo(to OrderStatus) bool {
	if s == to {
		return ValidOrderStatus(s)
	}
	for _, next := range orderTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Order represents a customer booking with its priced line items.
type Order struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber string     `gorm:"type:varchar(20);uniqueIndex;not null" json:"order_number"` // BB-YYYY-NNNN
	ContactID   *uuid.UUID `gorm:"type:uuid;index" json:"contact_id"`
	Contact     *Contact   `gorm:"foreignKey:ContactID" json:"contact,omitempty"`

	// Customer snapshot at checkout time; the contact record may change later.
	CustomerName  string `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerEmail string `gorm:"type:varchar(255);not null" json:"customer_email"`
	CustomerPhone string `gorm:"type:varchar(20)" json:"customer_phone"`

	EventDate       time.Time  `gorm:"not null;index" json:"event_date"`
	DeliveryDate    *time.Time `gorm:"index" json:"delivery_date"`
	DeliveryAddress string     `gorm:"type:text" json:"delivery_address"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`

	Subtotal       decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"subtotal"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"tax_amount"`
	DeliveryFee    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"delivery_fee"`
	ProcessingFee  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"processing_fee"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"discount_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total_amount"` // subtotal + tax + delivery + processing - discount
	DepositAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"deposit_amount"`
	BalanceDue     decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"balance_due"` // total - deposit

	Status        OrderStatus   `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"payment_status"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(20)" json:"payment_method"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Deletable reports whether the order may be removed. Orders that reached
// paid or confirmed carry financial history and must be kept.
func (o *Order) Deletable() bool {
	return o.Status != OrderPaid && o.Status != OrderConfirmed
}

// OrderItem is a single priced line on an order.
type OrderItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ItemType   string          `gorm:"type:varchar(20);not null" json:"item_type"` // rental, addon, service, fee
	Name       string          `gorm:"type:varchar(255);not null" json:"name"`
	Quantity   int             `gorm:"not null;default:1" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total_price"` // quantity * unit_price
	CreatedAt  time.Time       `json:"created_at"`
}
