package service

import (
	"context"
	"testing"
	"time"

	"bouncehub/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taskServiceFixture struct {
	svc          TaskService
	taskRepo     *fakeTaskRepo
	templateRepo *fakeTemplateRepo
	orderRepo    *fakeOrderRepo
	userRepo     *fakeUserRepo
}

func newTaskServiceForTest(t *testing.T) taskServiceFixture {
	t.Helper()
	taskRepo := newFakeTaskRepo()
	templateRepo := newFakeTemplateRepo()
	orderRepo := newFakeOrderRepo()
	userRepo := newFakeUserRepo()
	svc := NewTaskService(taskRepo, templateRepo, orderRepo, userRepo, fakeTxManager{}, nil)
	return taskServiceFixture{svc: svc, taskRepo: taskRepo, templateRepo: templateRepo, orderRepo: orderRepo, userRepo: userRepo}
}

func seedOrder(t *testing.T, repo *fakeOrderRepo) *model.Order {
	t.Helper()
	order := &model.Order{
		OrderNumber:     "BB-2025-0042",
		CustomerName:    "Jane Smith",
		CustomerEmail:   "jane@example.com",
		CustomerPhone:   "555-0100",
		EventDate:       time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC),
		DeliveryAddress: "12 Elm St",
		Items:           []model.OrderItem{{ItemType: "rental", Name: "Castle Bounce House", Quantity: 1}},
		TotalAmount:     mustDecimal(t, "186.88"),
		BalanceDue:      mustDecimal(t, "136.88"),
		Status:          model.OrderPaid,
		PaymentStatus:   model.PaymentPaid,
	}
	require.NoError(t, repo.Create(context.Background(), order))
	return order
}

func deliveryTemplate(t *testing.T, repo *fakeTemplateRepo) *model.TaskTemplate {
	t.Helper()
	max := mustDecimal(t, "200")
	tpl := &model.TaskTemplate{
		Name:               "Standard Delivery",
		TaskType:           model.TaskDelivery,
		TitlePattern:       "Deliver order {orderNumber} to {deliveryAddress}",
		DescriptionPattern: "Delivery for {customerName}. First item: {firstItem}.",
		PaymentRule: model.PaymentRule{
			Type:          model.RuleFormula,
			BaseAmount:    mustDecimal(t, "25"),
			Percentage:    mustDecimal(t, "5"),
			MinimumAmount: mustDecimal(t, "25"),
			MaximumAmount: &max,
		},
		SchedulingRule: model.SchedulingRule{
			RelativeTo:        model.RelativeToEventDate,
			OffsetDays:        -1,
			DefaultTime:       "16:00",
			BusinessHoursOnly: true,
		},
		DefaultPriority: model.PriorityHigh,
		IsActive:        true,
	}
	require.NoError(t, repo.Create(context.Background(), tpl))
	return tpl
}

func TestGenerateForOrder(t *testing.T) {
	f := newTaskServiceForTest(t)
	order := seedOrder(t, f.orderRepo)
	tpl := deliveryTemplate(t, f.templateRepo)

	tasks, err := f.svc.GenerateForOrder(context.Background(), order.ID.String())
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	task := tasks[0]
	assert.Equal(t, order.ID, task.OrderID)
	assert.Equal(t, model.TaskDelivery, task.TaskType)
	assert.Equal(t, model.TaskPending, task.Status)
	assert.Equal(t, model.PriorityHigh, task.Priority)

	// patterns rendered from the order
	assert.Equal(t, "Deliver order BB-2025-0042 to 12 Elm St", task.Title)
	assert.Equal(t, "Delivery for Jane Smith. First item: Castle Bounce House.", task.Description)

	// 25 + 5% of 186.88 = 34.344, rounded to cents
	assert.Equal(t, "34.34", task.PaymentAmount.StringFixed(2))

	// event date minus one day at 16:00
	require.NotNil(t, task.ScheduledAt)
	want := time.Date(2025, 8, 1, 16, 0, 0, 0, time.UTC)
	assert.True(t, task.ScheduledAt.Equal(want), "scheduled at %s, want %s", task.ScheduledAt, want)
	assert.False(t, task.NeedsReview)

	// usage counter moved with the generation
	stored, err := f.templateRepo.FindByID(context.Background(), tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.UsageCount)
}

func TestGenerateForOrderFlagsOutOfHours(t *testing.T) {
	f := newTaskServiceForTest(t)
	order := seedOrder(t, f.orderRepo)
	tpl := deliveryTemplate(t, f.templateRepo)
	tpl.SchedulingRule.DefaultTime = "19:00"
	require.NoError(t, f.templateRepo.Update(context.Background(), tpl))

	tasks, err := f.svc.GenerateForOrder(context.Background(), order.ID.String())
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	assert.True(t, tasks[0].NeedsReview, "19:00 is outside business hours")
}

func TestGenerateForOrderManualTemplate(t *testing.T) {
	f := newTaskServiceForTest(t)
	order := seedOrder(t, f.orderRepo)
	tpl := deliveryTemplate(t, f.templateRepo)
	tpl.SchedulingRule.RelativeTo = model.RelativeToManual
	tpl.SchedulingRule.BusinessHoursOnly = false
	require.NoError(t, f.templateRepo.Update(context.Background(), tpl))

	tasks, err := f.svc.GenerateForOrder(context.Background(), order.ID.String())
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	assert.Nil(t, tasks[0].ScheduledAt, "manual templates leave scheduling to the admin")
	assert.False(t, tasks[0].NeedsReview)
}

func TestGenerateForOrderSkipsInactiveTemplates(t *testing.T) {
	f := newTaskServiceForTest(t)
	order := seedOrder(t, f.orderRepo)
	tpl := deliveryTemplate(t, f.templateRepo)
	tpl.IsActive = false
	require.NoError(t, f.templateRepo.Update(context.Background(), tpl))

	tasks, err := f.svc.GenerateForOrder(context.Background(), order.ID.String())
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestGenerateForOrderUnknownOrder(t *testing.T) {
	f := newTaskServiceForTest(t)
	deliveryTemplate(t, f.templateRepo)

	_, err := f.svc.GenerateForOrder(context.Background(), "2fd1f0a8-7b62-4f1f-a4a3-1f6a3f1b2c3d")
	assert.Error(t, err)
}

func TestAssignTask(t *testing.T) {
	f := newTaskServiceForTest(t)
	order := seedOrder(t, f.orderRepo)

	user := &model.User{Name: "Sam Driver", Email: "sam@example.com", Role: model.RoleContractor}
	require.NoError(t, f.userRepo.Create(context.Background(), user))

	task, err := f.svc.CreateTask(context.Background(), CreateTaskRequest{
		OrderID:  order.ID.String(),
		TaskType: "delivery",
		Title:    "Deliver bounce house",
	})
	require.NoError(t, err)
	assert.Equal(t, model.TaskPending, task.Status)

	task, err = f.svc.AssignTask(context.Background(), task.ID.String(), AssignTaskRequest{UserID: user.ID.String()})
	require.NoError(t, err)

	require.NotNil(t, task.AssignedTo)
	assert.Equal(t, user.ID, *task.AssignedTo)
	assert.Equal(t, model.TaskAssigned, task.Status)
}

func TestDeleteTaskGuard(t *testing.T) {
	f := newTaskServiceForTest(t)
	order := seedOrder(t, f.orderRepo)

	task, err := f.svc.CreateTask(context.Background(), CreateTaskRequest{
		OrderID:  order.ID.String(),
		TaskType: "pickup",
		Title:    "Pick up bounce house",
	})
	require.NoError(t, err)

	// completed tasks are kept for the payout record
	completed := "completed"
	_, err = f.svc.UpdateTask(context.Background(), task.ID.String(), UpdateTaskRequest{Status: &completed})
	require.NoError(t, err)

	err = f.svc.DeleteTask(context.Background(), task.ID.String())
	assert.ErrorIs(t, err, model.ErrTaskNotDeletable)
}
