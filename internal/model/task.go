package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TaskType enum
type TaskType string

const (
	TaskDelivery    TaskType = "delivery"
	TaskSetup       TaskType = "setup"
	TaskPickup      TaskType = "pickup"
	TaskMaintenance TaskType = "maintenance"
	TaskInspection  TaskType = "inspection"
)

// TaskStatus enum
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskAssigned   TaskStatus = "assigned"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskCancelled  TaskStatus = "cancelled"
)

// TaskPriority enum
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// ErrTaskNotDeletable is returned when deleting a task that already left
// the pending state.
var ErrTaskNotDeletable = errors.New("only pending tasks can be deleted")

// Task is a scheduled unit of field work (delivery, setup, pickup) derived
// from an order and optionally a template. ScheduledAt is nil for tasks
// generated from a manual scheduling rule until an admin schedules them.
type Task struct {
	ID         uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID    uuid.UUID     `gorm:"type:uuid;not null;index" json:"order_id"`
	Order      *Order        `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	TemplateID *uuid.UUID    `gorm:"type:uuid;index" json:"template_id"`
	Template   *TaskTemplate `gorm:"foreignKey:TemplateID" json:"template,omitempty"`

	TaskType    TaskType     `gorm:"type:varchar(20);not null;index" json:"task_type"`
	Title       string       `gorm:"type:varchar(500);not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	ScheduledAt *time.Time   `gorm:"index" json:"scheduled_at"`
	Priority    TaskPriority `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	Status      TaskStatus   `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	AssignedTo *uuid.UUID `gorm:"type:uuid;index" json:"assigned_to"`
	Assignee   *User      `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`

	PaymentAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"payment_amount"`
	NeedsReview   bool            `gorm:"not null;default:false" json:"needs_review"` // scheduled outside business hours

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Deletable reports whether the task may be removed.
func (t *Task) Deletable() bool {
	return t.Status == TaskPending
}
