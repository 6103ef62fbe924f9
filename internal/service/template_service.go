package service

import (
	"context"
	"errors"
	"fmt"

	"bouncehub/internal/model"
	"bouncehub/internal/repository"
	"bouncehub/pkg/money"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrSystemTemplate is returned when editing or deleting a seeded template.
var ErrSystemTemplate = errors.New("system templates cannot be modified or deleted")

// --- DTOs ---

type PaymentRuleRequest struct {
	Type          string `json:"type" binding:"required,oneof=fixed percentage formula"`
	BaseAmount    string `json:"base_amount"`
	Percentage    string `json:"percentage"`
	MinimumAmount string `json:"minimum_amount"`
	MaximumAmount string `json:"maximum_amount"` // empty = unbounded
}

type SchedulingRuleRequest struct {
	RelativeTo        string `json:"relative_to" binding:"required,oneof=eventDate deliveryDate manual"`
	OffsetDays        int    `json:"offset_days"`
	DefaultTime       string `json:"default_time"` // HH:MM, defaults to 09:00
	BusinessHoursOnly bool   `json:"business_hours_only"`
}

type CreateTemplateRequest struct {
	Name               string                `json:"name" binding:"required"`
	Description        string                `json:"description"`
	TaskType           string                `json:"task_type" binding:"required,oneof=delivery setup pickup maintenance inspection"`
	TitlePattern       string                `json:"title_pattern" binding:"required"`
	DescriptionPattern string                `json:"description_pattern"`
	PaymentRule        PaymentRuleRequest    `json:"payment_rule" binding:"required"`
	SchedulingRule     SchedulingRuleRequest `json:"scheduling_rule" binding:"required"`
	DefaultPriority    string                `json:"default_priority" binding:"omitempty,oneof=low medium high urgent"`
	IsActive           *bool                 `json:"is_active"`
}

type UpdateTemplateRequest struct {
	Description        *string                `json:"description"`
	TitlePattern       *string                `json:"title_pattern"`
	DescriptionPattern *string                `json:"description_pattern"`
	PaymentRule        *PaymentRuleRequest    `json:"payment_rule"`
	SchedulingRule     *SchedulingRuleRequest `json:"scheduling_rule"`
	DefaultPriority    *string                `json:"default_priority" binding:"omitempty,oneof=low medium high urgent"`
	IsActive           *bool                  `json:"is_active"`
}

// --- Interface ---

type TemplateService interface {
	CreateTemplate(ctx context.Context, req CreateTemplateRequest) (*model.TaskTemplate, error)
	GetTemplate(ctx context.Context, id string) (*model.TaskTemplate, error)
	ListTemplates(ctx context.Context, page, limit int) ([]model.TaskTemplate, int64, error)
	UpdateTemplate(ctx context.Context, id string, req UpdateTemplateRequest) (*model.TaskTemplate, error)
	DeleteTemplate(ctx context.Context, id string) error
	SeedSystemTemplates(ctx context.Context) error
}

type templateService struct {
	templateRepo repository.TemplateRepository
}

func NewTemplateService(templateRepo repository.TemplateRepository) TemplateService {
	return &templateService{templateRepo: templateRepo}
}

// --- Implementation ---

func (s *templateService) CreateTemplate(ctx context.Context, req CreateTemplateRequest) (*model.TaskTemplate, error) {
	if _, err := s.templateRepo.FindByName(ctx, req.Name); err == nil {
		return nil, fmt.Errorf("template %q already exists", req.Name)
	}

	priority := model.PriorityMedium
	if req.DefaultPriority != "" {
		priority = model.TaskPriority(req.DefaultPriority)
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	template := &model.TaskTemplate{
		Name:               req.Name,
		Description:        req.Description,
		TaskType:           model.TaskType(req.TaskType),
		TitlePattern:       req.TitlePattern,
		DescriptionPattern: req.DescriptionPattern,
		PaymentRule:        toPaymentRule(req.PaymentRule),
		SchedulingRule:     toSchedulingRule(req.SchedulingRule),
		DefaultPriority:    priority,
		IsActive:           active,
	}

	if err := s.templateRepo.Create(ctx, template); err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	return template, nil
}

func (s *templateService) GetTemplate(ctx context.Context, id string) (*model.TaskTemplate, error) {
	templateID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid template id: %w", err)
	}
	return s.templateRepo.FindByID(ctx, templateID)
}

func (s *templateService) ListTemplates(ctx context.Context, page, limit int) ([]model.TaskTemplate, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.templateRepo.List(ctx, page, limit)
}

func (s *templateService) UpdateTemplate(ctx context.Context, id string, req UpdateTemplateRequest) (*model.TaskTemplate, error) {
	templateID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid template id: %w", err)
	}

	template, err := s.templateRepo.FindByID(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("template not found: %w", err)
	}
	if template.IsSystemTemplate {
		return nil, ErrSystemTemplate
	}

	if req.Description != nil {
		template.Description = *req.Description
	}
	if req.TitlePattern != nil {
		template.TitlePattern = *req.TitlePattern
	}
	if req.DescriptionPattern != nil {
		template.DescriptionPattern = *req.DescriptionPattern
	}
	if req.PaymentRule != nil {
		template.PaymentRule = toPaymentRule(*req.PaymentRule)
	}
	if req.SchedulingRule != nil {
		template.SchedulingRule = toSchedulingRule(*req.SchedulingRule)
	}
	if req.DefaultPriority != nil {
		template.DefaultPriority = model.TaskPriority(*req.DefaultPriority)
	}
	if req.IsActive != nil {
		template.IsActive = *req.IsActive
	}

	if err := s.templateRepo.Update(ctx, template); err != nil {
		return nil, fmt.Errorf("failed to update template: %w", err)
	}
	return template, nil
}

func (s *templateService) DeleteTemplate(ctx context.Context, id string) error {
	templateID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid template id: %w", err)
	}

	template, err := s.templateRepo.FindByID(ctx, templateID)
	if err != nil {
		return fmt.Errorf("template not found: %w", err)
	}
	if template.IsSystemTemplate {
		return ErrSystemTemplate
	}

	return s.templateRepo.Delete(ctx, templateID)
}

// SeedSystemTemplates installs the built-in delivery, setup and pickup
// templates on first boot. Existing templates are left untouched.
func (s *templateService) SeedSystemTemplates(ctx context.Context) error {
	for _, tpl := range systemTemplates() {
		_, err := s.templateRepo.FindByName(ctx, tpl.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check template %q: %w", tpl.Name, err)
		}
		if err := s.templateRepo.Create(ctx, &tpl); err != nil {
			return fmt.Errorf("failed to seed template %q: %w", tpl.Name, err)
		}
	}
	return nil
}

// --- Helpers ---

func toPaymentRule(req PaymentRuleRequest) model.PaymentRule {
	rule := model.PaymentRule{
		Type:          model.PaymentRuleType(req.Type),
		BaseAmount:    money.NonNegative(money.FromString(req.BaseAmount)),
		Percentage:    money.NonNegative(money.FromString(req.Percentage)),
		MinimumAmount: money.NonNegative(money.FromString(req.MinimumAmount)),
	}
	if req.MaximumAmount != "" {
		max := money.NonNegative(money.FromString(req.MaximumAmount))
		rule.MaximumAmount = &max
	}
	return rule
}

func toSchedulingRule(req SchedulingRuleRequest) model.SchedulingRule {
	defaultTime := req.DefaultTime
	if defaultTime == "" {
		defaultTime = "09:00"
	}
	return model.SchedulingRule{
		RelativeTo:        model.RelativeTo(req.RelativeTo),
		OffsetDays:        req.OffsetDays,
		DefaultTime:       defaultTime,
		BusinessHoursOnly: req.BusinessHoursOnly,
	}
}

// systemTemplates is the seed set for a standard delivery business day:
// deliver the day before the event, set up the morning of, pick up the day
// after.
func systemTemplates() []model.TaskTemplate {
	fifty := money.FromString("50")
	twoHundred := money.FromString("200")
	return []model.TaskTemplate{
		{
			Name:               "Standard Delivery",
			Description:        "Deliver the rental to the event address the day before the event.",
			TaskType:           model.TaskDelivery,
			TitlePattern:       "Deliver order {orderNumber} to {deliveryAddress}",
			DescriptionPattern: "Delivery for {customerName} ({customerPhone}). Event on {eventDate}. First item: {firstItem}.",
			PaymentRule: model.PaymentRule{
				Type:          model.RuleFormula,
				BaseAmount:    money.FromString("25"),
				Percentage:    money.FromString("5"),
				MinimumAmount: money.FromString("25"),
				MaximumAmount: &twoHundred,
			},
			SchedulingRule: model.SchedulingRule{
				RelativeTo:        model.RelativeToEventDate,
				OffsetDays:        -1,
				DefaultTime:       "16:00",
				BusinessHoursOnly: true,
			},
			DefaultPriority:  model.PriorityHigh,
			IsActive:         true,
			IsSystemTemplate: true,
		},
		{
			Name:               "Event Setup",
			Description:        "Inflate and anchor the unit the morning of the event.",
			TaskType:           model.TaskSetup,
			TitlePattern:       "Set up {firstItem} for order {orderNumber}",
			DescriptionPattern: "Setup at {deliveryAddress} for {customerName}. Balance due: {balanceDue}.",
			PaymentRule: model.PaymentRule{
				Type:          model.RuleFixed,
				BaseAmount:    money.FromString("40"),
				MinimumAmount: money.FromString("40"),
			},
			SchedulingRule: model.SchedulingRule{
				RelativeTo:        model.RelativeToEventDate,
				OffsetDays:        0,
				DefaultTime:       "08:00",
				BusinessHoursOnly: true,
			},
			DefaultPriority:  model.PriorityUrgent,
			IsActive:         true,
			IsSystemTemplate: true,
		},
		{
			Name:               "Post-Event Pickup",
			Description:        "Collect the rental the day after the event.",
			TaskType:           model.TaskPickup,
			TitlePattern:       "Pick up order {orderNumber} from {deliveryAddress}",
			DescriptionPattern: "Pickup for {customerName} ({customerPhone}).",
			PaymentRule: model.PaymentRule{
				Type:          model.RulePercentage,
				Percentage:    money.FromString("10"),
				MinimumAmount: fifty,
			},
			SchedulingRule: model.SchedulingRule{
				RelativeTo:        model.RelativeToEventDate,
				OffsetDays:        1,
				DefaultTime:       "10:00",
				BusinessHoursOnly: true,
			},
			DefaultPriority:  model.PriorityMedium,
			IsActive:         true,
			IsSystemTemplate: true,
		},
	}
}
