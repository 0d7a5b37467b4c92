package repository

import (
	"context"
	"errors"

	"github.com/sujoy-karmokar/shoptal-sub000/internal/domain/model"
	repo "github.com/sujoy-karmokar/shoptal-sub000/internal/repository"

	"gorm.io/gorm"
)

type CouponGormRepository struct {
	db *gorm.DB
}

func NewCouponGormRepository(db *gorm.DB) *CouponGormRepository {
	return &CouponGormRepository{db: db}
}

func (r *CouponGormRepository) FindByCode(ctx context.Context, code string) (model.Coupon, error) {
	var c model.Coupon
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Coupon{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Coupon{}, err
	}
	return c, nil
}

func (r *CouponGormRepository) Create(ctx context.Context, c model.Coupon) (model.Coupon, error) {
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return model.Coupon{}, err
	}
	return c, nil
}

func (r *CouponGormRepository) List(ctx context.Context, q repo.CouponListQuery) ([]model.Coupon, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Coupon{}).Count(&total).Error; err != nil {
		return []model.Coupon{}, 0, err
	}

	var items []model.Coupon
	offset := (q.Page - 1) * q.Limit
	err := r.db.WithContext(ctx).
		Order("id desc").
		Limit(q.Limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return []model.Coupon{}, 0, err
	}

	return items, total, nil
}

// used < usage_limit のときだけ+1。
// 最後の1回を同時に取り合っても片方しか通らない。
func (r *CouponGormRepository) IncrementUsageIfAvailable(ctx context.Context, couponID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Coupon{}).
		Where("id = ? AND used < usage_limit", couponID).
		Update("used", gorm.Expr("used + 1"))

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}
