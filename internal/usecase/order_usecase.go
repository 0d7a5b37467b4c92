package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sujoy-karmokar/shoptal-sub000/internal/domain/model"
	repo "github.com/sujoy-karmokar/shoptal-sub000/internal/repository"
)

type OrderUsecase struct {
	tx repo.TransactionManager
}

func NewOrderUsecase(tx repo.TransactionManager) *OrderUsecase {
	return &OrderUsecase{tx: tx}
}

type PlaceOrderItemInput struct {
	ProductID int64
	Quantity  int64
}

type PlaceOrderInput struct {
	ShippingAddress string
	Items           []PlaceOrderItemInput
	CouponCode      string
	IdempotencyKey  string
}

type OrderItemOutput struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
	Price     int64 `json:"price"`
}

type OrderOutput struct {
	ID              int64             `json:"id"`
	UserID          int64             `json:"user_id"`
	ShippingAddress string            `json:"shipping_address"`
	Status          string            `json:"status"`
	TotalAmount     int64             `json:"total_amount"`
	CouponID        *int64            `json:"coupon_id,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	Items           []OrderItemOutput `json:"items"`
}

// PlaceOrder は注文確定。
// 在庫確認・減算、クーポン適用、注文作成、カートクリアを1トランザクションで行う。
// 途中で失敗したら全部無かったことになる。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(in.ShippingAddress) == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "shipping_address required")
	}
	if len(in.Items) == 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "items required")
	}
	for _, it := range in.Items {
		if it.ProductID <= 0 {
			return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
		}
		if it.Quantity <= 0 {
			return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
		}
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if len(key) > 255 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid idempotency_key")
	}

	var out OrderOutput

	//注文処理はトランザクション
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じキーなら同じ結果
		if key != "" {
			existing, found, err := r.Orders().FindByIdempotencyKey(ctx, userID, key)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if found {
				//既存注文を返す
				items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
				if err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				out = toOrderOutput(existing, items)
				return nil
			}
		}

		//ユーザー存在確認
		if _, err := r.Users().FindByID(ctx, userID); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "user not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//在庫を確定時にチェックして減らす
		orderItems := make([]model.OrderItem, 0, len(in.Items))
		var total int64 = 0
		now := time.Now()

		for _, it := range in.Items {
			//商品取得
			p, err := r.Products().FindByID(ctx, it.ProductID)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, fmt.Sprintf("Product with id %d not found", it.ProductID))
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			if p.Stock < it.Quantity {
				return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Product with id %d is out of stock", it.ProductID))
			}

			//在庫減算（同時注文で足りなくなっていたら false）
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, it.ProductID, it.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Product with id %d is out of stock", it.ProductID))
			}

			//小計は購入時点で固定
			line := p.Price * it.Quantity
			total += line

			orderItems = append(orderItems, model.OrderItem{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				Price:     line,
				CreatedAt: now,
			})
		}

		//クーポン適用
		var couponID *int64
		if code := strings.TrimSpace(in.CouponCode); code != "" {
			cpn, err := r.Coupons().FindByCode(ctx, code)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "coupon not found")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			if cpn.Expired(now) {
				return NewHTTPError(http.StatusBadRequest, "coupon expired")
			}
			if cpn.UsageExhausted() {
				return NewHTTPError(http.StatusBadRequest, "coupon usage limit reached")
			}

			total = cpn.Discount(total)

			//使用回数+1（上限との競合はここで落ちる）
			ok, err := r.Coupons().IncrementUsageIfAvailable(ctx, cpn.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				return NewHTTPError(http.StatusBadRequest, "coupon usage limit reached")
			}

			id := cpn.ID
			couponID = &id
		}

		// 注文作成
		var keyPtr *string
		if key != "" {
			keyPtr = &key
		}
		order := model.Order{
			UserID:          userID,
			ShippingAddress: strings.TrimSpace(in.ShippingAddress),
			Status:          model.OrderStatusPending,
			TotalAmount:     total,
			CouponID:        couponID,
			IdempotencyKey:  keyPtr,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			//競合（同時で同じキーが入った等）はもう一回検索して同じ結果を返す
			if key != "" {
				ex2, found2, err2 := r.Orders().FindByIdempotencyKey(ctx, userID, key)
				if err2 == nil && found2 {
					items2, err3 := r.OrderItems().ListByOrderID(ctx, ex2.ID)
					if err3 != nil {
						return NewHTTPError(http.StatusInternalServerError, "db error")
					}
					out = toOrderOutput(ex2, items2)
					return nil
				}
				return NewHTTPError(http.StatusBadRequest, "idempotency conflict")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//注文明細一括作成
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//カートをクリア（未作成なら何もしない）
		cart, err := r.Carts().FindByUserID(ctx, userID)
		if err == nil {
			if err := r.Carts().Clear(ctx, cart.ID); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		} else if err != repo.ErrNotFound {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		order.ID = orderID
		out = toOrderOutput(order, orderItems)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	//ページングはまず固定で取る
	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListByUserID(ctx, userID, 1, 50)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			//他人の注文は「存在しない扱い」にする
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}

	return OrderOutput{
		ID:              o.ID,
		UserID:          o.UserID,
		ShippingAddress: o.ShippingAddress,
		Status:          string(o.Status),
		TotalAmount:     o.TotalAmount,
		CouponID:        o.CouponID,
		CreatedAt:       o.CreatedAt,
		Items:           outItems,
	}
}
