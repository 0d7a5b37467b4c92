package repository

import (
	"context"
	"errors"

	"github.com/sujoy-karmokar/shoptal-sub000/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 公開一覧のページング
type ProductListQuery struct {
	Page  int
	Limit int
}

// 商品の取得だけを約束。カタログ編集は別システム。
type ProductRepository interface {
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
}
