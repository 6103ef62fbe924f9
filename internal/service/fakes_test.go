package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"bouncehub/internal/model"
	"bouncehub/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

// In-memory repository fakes backing the service tests.

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeOrderRepo struct {
	orders map[uuid.UUID]*model.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*model.Order)}
}

func (r *fakeOrderRepo) Create(_ context.Context, order *model.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	stored := *order
	r.orders[order.ID] = &stored
	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	return &copied, nil
}

func (r *fakeOrderRepo) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeOrderRepo) FindByNumber(_ context.Context, orderNumber string) (*model.Order, error) {
	for _, order := range r.orders {
		if order.OrderNumber == orderNumber {
			copied := *order
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeOrderRepo) List(_ context.Context, _ repository.OrderListFilter) ([]model.Order, int64, error) {
	out := make([]model.Order, 0, len(r.orders))
	for _, order := range r.orders {
		out = append(out, *order)
	}
	return out, int64(len(out)), nil
}

func (r *fakeOrderRepo) Update(_ context.Context, order *model.Order) error {
	if _, ok := r.orders[order.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *order
	r.orders[order.ID] = &stored
	return nil
}

func (r *fakeOrderRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.orders, id)
	return nil
}

func (r *fakeOrderRepo) CountByPrefix(_ context.Context, prefix string) (int64, error) {
	var count int64
	for _, order := range r.orders {
		if strings.HasPrefix(order.OrderNumber, prefix) {
			count++
		}
	}
	return count, nil
}

type fakeContactRepo struct {
	contacts map[uuid.UUID]*model.Contact
}

func newFakeContactRepo() *fakeContactRepo {
	return &fakeContactRepo{contacts: make(map[uuid.UUID]*model.Contact)}
}

func (r *fakeContactRepo) Create(_ context.Context, contact *model.Contact) error {
	if contact.ID == uuid.Nil {
		contact.ID = uuid.New()
	}
	stored := *contact
	r.contacts[contact.ID] = &stored
	return nil
}

func (r *fakeContactRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Contact, error) {
	contact, ok := r.contacts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *contact
	return &copied, nil
}

func (r *fakeContactRepo) List(_ context.Context, _ repository.ContactListFilter) ([]model.Contact, int64, error) {
	out := make([]model.Contact, 0, len(r.contacts))
	for _, contact := range r.contacts {
		out = append(out, *contact)
	}
	return out, int64(len(out)), nil
}

func (r *fakeContactRepo) Update(_ context.Context, contact *model.Contact) error {
	if _, ok := r.contacts[contact.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *contact
	r.contacts[contact.ID] = &stored
	return nil
}

func (r *fakeContactRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.contacts, id)
	return nil
}

type fakeTaskRepo struct {
	tasks map[uuid.UUID]*model.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[uuid.UUID]*model.Task)}
}

func (r *fakeTaskRepo) Create(_ context.Context, task *model.Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	stored := *task
	r.tasks[task.ID] = &stored
	return nil
}

func (r *fakeTaskRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Task, error) {
	task, ok := r.tasks[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *task
	return &copied, nil
}

func (r *fakeTaskRepo) FindByOrderID(_ context.Context, orderID uuid.UUID) ([]model.Task, error) {
	var out []model.Task
	for _, task := range r.tasks {
		if task.OrderID == orderID {
			out = append(out, *task)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) List(_ context.Context, _ repository.TaskListFilter) ([]model.Task, int64, error) {
	out := make([]model.Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		out = append(out, *task)
	}
	return out, int64(len(out)), nil
}

func (r *fakeTaskRepo) Update(_ context.Context, task *model.Task) error {
	if _, ok := r.tasks[task.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *task
	r.tasks[task.ID] = &stored
	return nil
}

func (r *fakeTaskRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.tasks, id)
	return nil
}

type fakeTemplateRepo struct {
	templates map[uuid.UUID]*model.TaskTemplate
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{templates: make(map[uuid.UUID]*model.TaskTemplate)}
}

func (r *fakeTemplateRepo) Create(_ context.Context, template *model.TaskTemplate) error {
	if template.ID == uuid.Nil {
		template.ID = uuid.New()
	}
	stored := *template
	r.templates[template.ID] = &stored
	return nil
}

func (r *fakeTemplateRepo) FindByID(_ context.Context, id uuid.UUID) (*model.TaskTemplate, error) {
	template, ok := r.templates[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *template
	return &copied, nil
}

func (r *fakeTemplateRepo) FindByName(_ context.Context, name string) (*model.TaskTemplate, error) {
	for _, template := range r.templates {
		if template.Name == name {
			copied := *template
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTemplateRepo) ListActive(_ context.Context) ([]model.TaskTemplate, error) {
	var out []model.TaskTemplate
	for _, template := range r.templates {
		if template.IsActive {
			out = append(out, *template)
		}
	}
	return out, nil
}

func (r *fakeTemplateRepo) List(_ context.Context, _, _ int) ([]model.TaskTemplate, int64, error) {
	out := make([]model.TaskTemplate, 0, len(r.templates))
	for _, template := range r.templates {
		out = append(out, *template)
	}
	return out, int64(len(out)), nil
}

func (r *fakeTemplateRepo) Update(_ context.Context, template *model.TaskTemplate) error {
	if _, ok := r.templates[template.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *template
	r.templates[template.ID] = &stored
	return nil
}

func (r *fakeTemplateRepo) IncrementUsage(_ context.Context, id uuid.UUID) error {
	template, ok := r.templates[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	template.UsageCount++
	return nil
}

func (r *fakeTemplateRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.templates, id)
	return nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) List(_ context.Context, _ string, _, _ int) ([]model.User, int64, error) {
	out := make([]model.User, 0, len(r.users))
	for _, user := range r.users {
		out = append(out, *user)
	}
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) CreateRefreshToken(_ context.Context, _ *model.RefreshToken) error {
	return nil
}

func (r *fakeUserRepo) GetRefreshToken(_ context.Context, _ string) (*model.RefreshToken, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) DeleteRefreshTokensForUser(_ context.Context, _ uuid.UUID) error {
	return nil
}

func (r *fakeUserRepo) DeleteExpiredRefreshTokens(_ context.Context) error {
	return nil
}

type fakeAnalytics struct {
	events []TrackEventRequest
}

func (a *fakeAnalytics) TrackEvent(_ context.Context, req TrackEventRequest) {
	a.events = append(a.events, req)
}

func (a *fakeAnalytics) GetFunnel(_ context.Context, _, _ time.Time) (model.FunnelReport, error) {
	return model.FunnelReport{}, nil
}
