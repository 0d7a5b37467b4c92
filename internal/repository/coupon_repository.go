package repository

import (
	"context"

	"github.com/sujoy-karmokar/shoptal-sub000/internal/domain/model"
)

type CouponListQuery struct {
	Page  int
	Limit int
}

type CouponRepository interface {
	FindByCode(ctx context.Context, code string) (model.Coupon, error)
	Create(ctx context.Context, c model.Coupon) (model.Coupon, error)
	List(ctx context.Context, q CouponListQuery) ([]model.Coupon, int64, error)

	// used < usage_limit のときだけ+1。上限到達ならfalse。
	IncrementUsageIfAvailable(ctx context.Context, couponID int64) (bool, error)
}
