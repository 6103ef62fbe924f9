package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bouncehub/internal/model"
	"bouncehub/internal/repository"
	"bouncehub/internal/rules"
	"bouncehub/internal/websocket"
	"bouncehub/pkg/money"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateTaskRequest struct {
	OrderID     string     `json:"order_id" binding:"required"`
	TaskType    string     `json:"task_type" binding:"required,oneof=delivery setup pickup maintenance inspection"`
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	Payment     string     `json:"payment_amount"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	Priority    *string    `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	Status      *string    `json:"status" binding:"omitempty,oneof=pending assigned in_progress completed cancelled"`
	NeedsReview *bool      `json:"needs_review"`
}

type AssignTaskRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

type TaskListQuery struct {
	Status        string
	TaskType      string
	AssignedTo    string
	ScheduledFrom *time.Time
	ScheduledTo   *time.Time
	NeedsReview   *bool
	Page          int
	Limit         int
}

// --- Interface ---

type TaskService interface {
	GenerateForOrder(ctx context.Context, orderID string) ([]model.Task, error)
	CreateTask(ctx context.Context, req CreateTaskRequest) (*model.Task, error)
	GetTask(ctx context.Context, id string) (*model.Task, error)
	ListTasks(ctx context.Context, query TaskListQuery) ([]model.Task, int64, error)
	UpdateTask(ctx context.Context, id string, req UpdateTaskRequest) (*model.Task, error)
	AssignTask(ctx context.Context, id string, req AssignTaskRequest) (*model.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

type taskService struct {
	taskRepo     repository.TaskRepository
	templateRepo repository.TemplateRepository
	orderRepo    repository.OrderRepository
	userRepo     repository.UserRepository
	txManager    repository.TransactionManager
	hub          *websocket.Hub
	hours        rules.BusinessHours
}

func NewTaskService(
	taskRepo repository.TaskRepository,
	templateRepo repository.TemplateRepository,
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	txManager repository.TransactionManager,
	hub *websocket.Hub,
) TaskService {
	return &taskService{
		taskRepo:     taskRepo,
		templateRepo: templateRepo,
		orderRepo:    orderRepo,
		userRepo:     userRepo,
		txManager:    txManager,
		hub:          hub,
		hours:        rules.DefaultBusinessHours,
	}
}

// --- Implementation ---

// GenerateForOrder creates one task per active template: the payment rule is
// evaluated against the order total, the scheduling rule against the order's
// event and delivery dates, and the title and description patterns are
// rendered from the order's variables. Template usage counters move in the
// same transaction as the tasks they count.
func (s *taskService) GenerateForOrder(ctx context.Context, orderID string) ([]model.Task, error) {
	id, err := uuid.Parse(orderID)
	if err != nil {
		return nil, fmt.Errorf("invalid order id: %w", err)
	}

	order, err := s.orderRepo.FindByIDWithItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("order not found: %w", err)
	}

	templates, err := s.templateRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	vars := orderVariables(order)
	refs := rules.ReferenceDates{
		EventDate:    order.EventDate,
		DeliveryDate: order.DeliveryDate,
	}

	var created []model.Task
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for _, tpl := range templates {
			scheduledAt := rules.ResolveScheduledAt(tpl.SchedulingRule, refs)

			needsReview := false
			if tpl.SchedulingRule.BusinessHoursOnly && scheduledAt != nil && !rules.WithinBusinessHours(*scheduledAt, s.hours) {
				needsReview = true
			}

			templateID := tpl.ID
			task := model.Task{
				OrderID:       order.ID,
				TemplateID:    &templateID,
				TaskType:      tpl.TaskType,
				Title:         rules.Render(tpl.TitlePattern, vars),
				Description:   rules.Render(tpl.DescriptionPattern, vars),
				ScheduledAt:   scheduledAt,
				Priority:      tpl.DefaultPriority,
				Status:        model.TaskPending,
				PaymentAmount: rules.EvaluatePaymentRule(tpl.PaymentRule, order.TotalAmount),
				NeedsReview:   needsReview,
			}

			if createErr := s.taskRepo.Create(txCtx, &task); createErr != nil {
				return fmt.Errorf("failed to create task from template %s: %w", tpl.Name, createErr)
			}
			if usageErr := s.templateRepo.IncrementUsage(txCtx, tpl.ID); usageErr != nil {
				return fmt.Errorf("failed to increment usage for template %s: %w", tpl.Name, usageErr)
			}
			created = append(created, task)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcast("tasks.generated", map[string]interface{}{
		"order_number": order.OrderNumber,
		"count":        len(created),
	})

	return created, nil
}

func (s *taskService) CreateTask(ctx context.Context, req CreateTaskRequest) (*model.Task, error) {
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return nil, fmt.Errorf("invalid order id: %w", err)
	}
	if _, err := s.orderRepo.FindByID(ctx, orderID); err != nil {
		return nil, fmt.Errorf("order not found: %w", err)
	}

	priority := model.PriorityMedium
	if req.Priority != "" {
		priority = model.TaskPriority(req.Priority)
	}

	task := &model.Task{
		OrderID:       orderID,
		TaskType:      model.TaskType(req.TaskType),
		Title:         req.Title,
		Description:   req.Description,
		ScheduledAt:   req.ScheduledAt,
		Priority:      priority,
		Status:        model.TaskPending,
		PaymentAmount: money.Round2(money.NonNegative(money.FromString(req.Payment))),
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.broadcast("task.created", map[string]interface{}{"task_id": task.ID.String()})
	return task, nil
}

func (s *taskService) GetTask(ctx context.Context, id string) (*model.Task, error) {
	taskID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid task id: %w", err)
	}
	return s.taskRepo.FindByID(ctx, taskID)
}

func (s *taskService) ListTasks(ctx context.Context, query TaskListQuery) ([]model.Task, int64, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 20
	}

	filter := repository.TaskListFilter{
		Status:        query.Status,
		TaskType:      query.TaskType,
		ScheduledFrom: query.ScheduledFrom,
		ScheduledTo:   query.ScheduledTo,
		NeedsReview:   query.NeedsReview,
		Page:          query.Page,
		Limit:         query.Limit,
	}
	if query.AssignedTo != "" {
		userID, err := uuid.Parse(query.AssignedTo)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid assigned_to: %w", err)
		}
		filter.AssignedTo = &userID
	}

	return s.taskRepo.List(ctx, filter)
}

func (s *taskService) UpdateTask(ctx context.Context, id string, req UpdateTaskRequest) (*model.Task, error) {
	taskID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid task id: %w", err)
	}

	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("task not found: %w", err)
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.ScheduledAt != nil {
		task.ScheduledAt = req.ScheduledAt
	}
	if req.Priority != nil {
		task.Priority = model.TaskPriority(*req.Priority)
	}
	if req.Status != nil {
		task.Status = model.TaskStatus(*req.Status)
	}
	if req.NeedsReview != nil {
		task.NeedsReview = *req.NeedsReview
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.broadcast("task.updated", map[string]interface{}{"task_id": task.ID.String(), "status": string(task.Status)})
	return task, nil
}

func (s *taskService) AssignTask(ctx context.Context, id string, req AssignTaskRequest) (*model.Task, error) {
	taskID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid task id: %w", err)
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("assignee not found: %w", err)
	}

	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("task not found: %w", err)
	}

	task.AssignedTo = &userID
	if task.Status == model.TaskPending {
		task.Status = model.TaskAssigned
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to assign task: %w", err)
	}

	s.broadcast("task.assigned", map[string]interface{}{"task_id": task.ID.String(), "user_id": userID.String()})
	return task, nil
}

// DeleteTask removes a task while it is still pending.
func (s *taskService) DeleteTask(ctx context.Context, id string) error {
	taskID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid task id: %w", err)
	}

	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return fmt.Errorf("task not found: %w", err)
	}
	if !task.Deletable() {
		return model.ErrTaskNotDeletable
	}

	return s.taskRepo.Delete(ctx, taskID)
}

// broadcast pushes a dashboard event to connected admin clients.
func (s *taskService) broadcast(event string, payload map[string]interface{}) {
	if s.hub == nil {
		return
	}
	msg, err := json.Marshal(map[string]interface{}{"event": event, "data": payload})
	if err != nil {
		return
	}
	s.hub.Broadcast <- msg
}

// orderVariables flattens an order into the map fed to pattern rendering.
func orderVariables(order *model.Order) map[string]string {
	vars := map[string]string{
		"orderNumber":     order.OrderNumber,
		"customerName":    order.CustomerName,
		"customerEmail":   order.CustomerEmail,
		"customerPhone":   order.CustomerPhone,
		"deliveryAddress": order.DeliveryAddress,
		"eventDate":       order.EventDate.Format("2006-01-02"),
		"totalAmount":     order.TotalAmount.StringFixed(2),
		"balanceDue":      order.BalanceDue.StringFixed(2),
	}
	if order.DeliveryDate != nil {
		vars["deliveryDate"] = order.DeliveryDate.Format("2006-01-02")
	}
	if len(order.Items) > 0 {
		vars["firstItem"] = order.Items[0].Name
	}
	return vars
}
