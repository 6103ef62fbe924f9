package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentRuleType enum
type PaymentRuleType string

const (
	RuleFixed      PaymentRuleType = "fixed"
	RulePercentage PaymentRuleType = "percentage"
	RuleFormula    PaymentRuleType = "formula"
)

// RelativeTo enum for scheduling rules
type RelativeTo string

const (
	RelativeToEventDate    RelativeTo = "eventDate"
	RelativeToDeliveryDate RelativeTo = "deliveryDate"
	RelativeToManual       RelativeTo = "manual"
)

// PaymentRule computes a task's contractor payment from an order amount.
// Percentage is a whole-number percent: 10 means 10%.
type PaymentRule struct {
	Type          PaymentRuleType  `gorm:"column:payment_rule_type;type:varchar(20);not null;default:'fixed'" json:"type"`
	BaseAmount    decimal.Decimal  `gorm:"column:payment_base_amount;type:decimal(18,2);not null;default:0" json:"base_amount"`
	Percentage    decimal.Decimal  `gorm:"column:payment_percentage;type:decimal(10,4);not null;default:0" json:"percentage"`
	MinimumAmount decimal.Decimal  `gorm:"column:payment_minimum_amount;type:decimal(18,2);not null;default:0" json:"minimum_amount"`
	MaximumAmount *decimal.Decimal `gorm:"column:payment_maximum_amount;type:decimal(18,2)" json:"maximum_amount"` // nil = unbounded
}

// SchedulingRule places a generated task relative to an order date.
// OffsetDays may be negative, meaning before the reference date.
type SchedulingRule struct {
	RelativeTo        RelativeTo `gorm:"column:schedule_relative_to;type:varchar(20);not null;default:'eventDate'" json:"relative_to"`
	OffsetDays        int        `gorm:"column:schedule_offset_days;not null;default:0" json:"offset_days"`
	DefaultTime       string     `gorm:"column:schedule_default_time;type:varchar(5);not null;default:'09:00'" json:"default_time"` // HH:MM, 24-hour
	BusinessHoursOnly bool       `gorm:"column:schedule_business_hours_only;not null;default:false" json:"business_hours_only"`
}

// TaskTemplate is a reusable rule bundle for generating scheduled work from
// an order. System templates are seeded at startup and cannot be edited or
// deleted.
type TaskTemplate struct {
	ID                 uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name               string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Description        string         `gorm:"type:text" json:"description"`
	TaskType           TaskType       `gorm:"type:varchar(20);not null" json:"task_type"`
	TitlePattern       string         `gorm:"type:varchar(500);not null" json:"title_pattern"`       // supports {placeholder} tokens
	DescriptionPattern string         `gorm:"type:text" json:"description_pattern"`                  // supports {placeholder} tokens
	PaymentRule        PaymentRule    `gorm:"embedded" json:"payment_rule"`
	SchedulingRule     SchedulingRule `gorm:"embedded" json:"scheduling_rule"`
	DefaultPriority    TaskPriority   `gorm:"type:varchar(20);not null;default:'medium'" json:"default_priority"`
	IsActive           bool           `gorm:"not null;default:true;index" json:"is_active"`
	IsSystemTemplate   bool           `gorm:"not null;default:false" json:"is_system_template"`
	UsageCount         int64          `gorm:"not null;default:0" json:"usage_count"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}
