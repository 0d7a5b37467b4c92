package repository

import (
	"context"

	"github.com/sujoy-karmokar/shoptal-sub000/internal/domain/model"
)

// 取得だけを約束。登録・更新はゲートウェイ側。
type UserRepository interface {
	FindByID(ctx context.Context, userID int64) (model.User, error)
}
