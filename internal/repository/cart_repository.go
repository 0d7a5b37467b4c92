package repository

import (
	"context"

	"github.com/sujoy-karmokar/shoptal-sub000/internal/domain/model"
)

type CartRepository interface {
	GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error)
	FindByUserID(ctx context.Context, userID int64) (model.Cart, error)
	// 明細を全削除
	Clear(ctx context.Context, cartID int64) error
}
