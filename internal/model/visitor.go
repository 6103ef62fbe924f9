package model

import (
	"time"

	"github.com/google/uuid"
)

// VisitorEventType enum constants
const (
	EventPageView         = "page_view"
	EventProductView      = "product_view"
	EventCheckoutStart    = "checkout_start"
	EventCheckoutComplete = "checkout_complete"
)

// VisitorEvent is a single tracked browser interaction. Events are written
// fire-and-forget from the public tracking endpoint and aggregated into the
// conversion funnel.
type VisitorEvent struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SessionID  string    `gorm:"type:varchar(64);not null;index" json:"session_id"`
	EventType  string    `gorm:"type:varchar(30);not null;index" json:"event_type"`
	Page       string    `gorm:"type:varchar(500)" json:"page"`
	Referrer   string    `gorm:"type:varchar(500)" json:"referrer"`
	ProductID  string    `gorm:"type:varchar(100)" json:"product_id"` // set for product_view events
	OccurredAt time.Time `gorm:"not null;index" json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// FunnelReport aggregates visitor engagement and conversion over a range.
type FunnelReport struct {
	Sessions           int64         `json:"sessions"`
	PageViews          int64         `json:"page_views"`
	ProductViews       int64         `json:"product_views"`
	CheckoutStarts     int64         `json:"checkout_starts"`
	CompletedCheckouts int64         `json:"completed_checkouts"`
	CheckoutRate       float64       `json:"checkout_rate"`   // checkout_starts / sessions
	ConversionRate     float64       `json:"conversion_rate"` // completed_checkouts / sessions
	TopPages           []PageRanking `json:"top_pages"`
	TimeRangeStartDate time.Time     `json:"time_range_start_date"`
	TimeRangeEndDate   time.Time     `json:"time_range_end_date"`
}

// PageRanking represents a page ranked by accumulated views.
type PageRanking struct {
	Page       string `json:"page"`
	TotalViews int64  `json:"total_views"`
}
