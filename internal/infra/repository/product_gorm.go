package repository

import (
	"context"
	"errors"

	"github.com/sujoy-karmokar/shoptal-sub000/internal/domain/model"
	repo "github.com/sujoy-karmokar/shoptal-sub000/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 公開中の商品だけを新しい順で返す
func (r *ProductGormRepository) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	base := r.db.WithContext(ctx).Model(&model.Product{}).Where("is_active = ?", true)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return []model.Product{}, 0, err
	}

	var items []model.Product
	offset := (q.Page - 1) * q.Limit
	err := base.
		Order("id desc").
		Limit(q.Limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return []model.Product{}, 0, err
	}

	return items, total, nil
}

func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}
