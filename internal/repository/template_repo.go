package repository

import (
	"context"

	"bouncehub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TemplateRepository interface {
	Create(ctx context.Context, template *model.TaskTemplate) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.TaskTemplate, error)
	FindByName(ctx context.Context, name string) (*model.TaskTemplate, error)
	ListActive(ctx context.Context) ([]model.TaskTemplate, error)
	List(ctx context.Context, page, limit int) ([]model.TaskTemplate, int64, error)
	Update(ctx context.Context, template *model.TaskTemplate) error
	IncrementUsage(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type templateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) Create(ctx context.Context, template *model.TaskTemplate) error {
	return GetDB(ctx, r.db).Create(template).Error
}

func (r *templateRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.TaskTemplate, error) {
	var template model.TaskTemplate
	if err := GetDB(ctx, r.db).First(&template, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *templateRepository) FindByName(ctx context.Context, name string) (*model.TaskTemplate, error) {
	var template model.TaskTemplate
	if err := GetDB(ctx, r.db).First(&template, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *templateRepository) ListActive(ctx context.Context) ([]model.TaskTemplate, error) {
	var templates []model.TaskTemplate
	if err := GetDB(ctx, r.db).Where("is_active = ?", true).Order("name asc").Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *templateRepository) List(ctx context.Context, page, limit int) ([]model.TaskTemplate, int64, error) {
	var templates []model.TaskTemplate
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.TaskTemplate{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("name asc").Offset(offset).Limit(limit).Find(&templates).Error; err != nil {
		return nil, 0, err
	}

	return templates, total, nil
}

func (r *templateRepository) Update(ctx context.Context, template *model.TaskTemplate) error {
	return GetDB(ctx, r.db).Save(template).Error
}

func (r *templateRepository) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&model.TaskTemplate{}).
		Where("id = ?", id).
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1")).Error
}

func (r *templateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.TaskTemplate{}).Error
}
