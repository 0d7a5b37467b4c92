package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sujoy-karmokar/shoptal-sub000/internal/domain/model"
	repo "github.com/sujoy-karmokar/shoptal-sub000/internal/repository"
	"github.com/sujoy-karmokar/shoptal-sub000/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Helper: error contains（HTTPErrorの実装詳細に依存しない）
// =====================

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}

// =====================
// PlaceOrder fixture
// =====================

type orderFixture struct {
	tx         *TxManagerMock
	orders     *OrderRepoMock
	orderItems *OrderItemRepoMock
	carts      *CartRepoMock
	cartItems  *CartItemRepoMock
	inventory  *InventoryRepoMock
	products   *ProductRepoMock
	coupons    *CouponRepoMock
	users      *UserRepoMock
	uc         *usecase.OrderUsecase
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		tx:         new(TxManagerMock),
		orders:     new(OrderRepoMock),
		orderItems: new(OrderItemRepoMock),
		carts:      new(CartRepoMock),
		cartItems:  new(CartItemRepoMock),
		inventory:  new(InventoryRepoMock),
		products:   new(ProductRepoMock),
		coupons:    new(CouponRepoMock),
		users:      new(UserRepoMock),
	}
	f.tx.Repos = &TxReposMock{
		orders:     f.orders,
		orderItems: f.orderItems,
		carts:      f.carts,
		cartItems:  f.cartItems,
		inventory:  f.inventory,
		products:   f.products,
		coupons:    f.coupons,
		users:      f.users,
	}
	f.uc = usecase.NewOrderUsecase(f.tx)
	return f
}

func (f *orderFixture) expectTx() {
	f.tx.On("WithinTx", mock.Anything).Return(nil)
}

func (f *orderFixture) expectUser(userID int64) {
	f.users.On("FindByID", mock.Anything, userID).Return(model.User{ID: userID, IsActive: true}, nil)
}

// =====================
// PlaceOrder tests
// =====================

func TestPlaceOrder_Success(t *testing.T) {
	f := newOrderFixture()
	f.expectTx()
	f.expectUser(1)

	// 商品A 2000円 在庫5、2個注文 → 合計4000
	f.products.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, Name: "A", Price: 2000, Stock: 5, IsActive: true}, nil)
	f.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(1), int64(2)).Return(true, nil)

	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.UserID == 1 &&
			o.TotalAmount == 4000 &&
			o.Status == model.OrderStatusPending &&
			o.CouponID == nil &&
			o.ShippingAddress == "1-2-3 Chiyoda, Tokyo"
	})).Return(int64(10), nil)

	f.orderItems.On("CreateBulk", mock.Anything, int64(10), mock.MatchedBy(func(items []model.OrderItem) bool {
		return len(items) == 1 &&
			items[0].ProductID == 1 &&
			items[0].Quantity == 2 &&
			items[0].Price == 4000
	})).Return(nil)

	f.carts.On("FindByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 7, UserID: 1}, nil)
	f.carts.On("Clear", mock.Anything, int64(7)).Return(nil)

	out, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		ShippingAddress: "1-2-3 Chiyoda, Tokyo",
		Items:           []usecase.PlaceOrderItemInput{{ProductID: 1, Quantity: 2}},
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(10), out.ID)
	assert.Equal(t, int64(4000), out.TotalAmount)
	assert.Equal(t, "PENDING", out.Status)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, int64(4000), out.Items[0].Price)

	f.orders.AssertExpectations(t)
	f.orderItems.AssertExpectations(t)
	f.carts.AssertExpectations(t)
	f.inventory.AssertExpectations(t)
}

func TestPlaceOrder_OutOfStock(t *testing.T) {
	f := newOrderFixture()
	f.expectTx()
	f.expectUser(1)

	// 在庫5に対して6個 → out of stock
	f.products.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, Price: 2000, Stock: 5, IsActive: true}, nil)

	_, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		ShippingAddress: "addr",
		Items:           []usecase.PlaceOrderItemInput{{ProductID: 1, Quantity: 6}},
	})

	assertErrContains(t, err, "Product with id 1 is out of stock")
	f.inventory.AssertNotCalled(t, "DecreaseStockIfEnough", mock.Anything, mock.Anything, mock.Anything)
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.carts.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

func TestPlaceOrder_OutOfStock_SecondItemAbortsWholeOrder(t *testing.T) {
	f := newOrderFixture()
	f.expectTx()
	f.expectUser(1)

	f.products.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, Price: 1000, Stock: 10, IsActive: true}, nil)
	f.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(1), int64(2)).Return(true, nil)

	// 2個目は同時注文に先を越されて条件付きUPDATEが0件
	f.products.On("FindByID", mock.Anything, int64(2)).
		Return(model.Product{ID: 2, Price: 500, Stock: 3, IsActive: true}, nil)
	f.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(2), int64(3)).Return(false, nil)

	_, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		ShippingAddress: "addr",
		Items: []usecase.PlaceOrderItemInput{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 3},
		},
	})

	assertErrContains(t, err, "Product with id 2 is out of stock")
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.orderItems.AssertNotCalled(t, "CreateBulk", mock.Anything, mock.Anything, mock.Anything)
	f.carts.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

func TestPlaceOrder_ProductNotFound(t *testing.T) {
	f := newOrderFixture()
	f.expectTx()
	f.expectUser(1)

	f.products.On("FindByID", mock.Anything, int64(9)).Return(model.Product{}, repo.ErrNotFound)

	_, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		ShippingAddress: "addr",
		Items:           []usecase.PlaceOrderItemInput{{ProductID: 9, Quantity: 1}},
	})

	assertErrContains(t, err, "Product with id 9 not found")
}

func TestPlaceOrder_UserNotFound(t *testing.T) {
	f := newOrderFixture()
	f.expectTx()

	f.users.On("FindByID", mock.Anything, int64(42)).Return(model.User{}, repo.ErrNotFound)

	_, err := f.uc.PlaceOrder(context.Background(), 42, usecase.PlaceOrderInput{
		ShippingAddress: "addr",
		Items:           []usecase.PlaceOrderItemInput{{ProductID: 1, Quantity: 1}},
	})

	assertErrContains(t, err, "user not found")
	f.products.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestPlaceOrder_PercentageCoupon(t *testing.T) {
	f := newOrderFixture()
	f.expectTx()
	f.expectUser(1)

	// 5000円×2個 = 10000、10%オフ → 9000
	f.products.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, Price: 5000, Stock: 10, IsActive: true}, nil)
	f.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(1), int64(2)).Return(true, nil)

	f.coupons.On("FindByCode", mock.Anything, "SAVE10").Return(model.Coupon{
		ID:             5,
		Code:           "SAVE10",
		DiscountType:   model.DiscountTypePercentage,
		DiscountValue:  10,
		ExpirationDate: time.Now().Add(24 * time.Hour),
		UsageLimit:     1,
		Used:           0,
	}, nil)
	f.coupons.On("IncrementUsageIfAvailable", mock.Anything, int64(5)).Return(true, nil)

	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.TotalAmount == 9000 && o.CouponID != nil && *o.CouponID == 5
	})).Return(int64(11), nil)
	f.orderItems.On("CreateBulk", mock.Anything, int64(11), mock.Anything).Return(nil)
	f.carts.On("FindByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 7}, nil)
	f.carts.On("Clear", mock.Anything, int64(7)).Return(nil)

	out, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		ShippingAddress: "addr",
		Items:           []usecase.PlaceOrderItemInput{{ProductID: 1, Quantity: 2}},
		CouponCode:      "SAVE10",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(9000), out.TotalAmount)
	f.coupons.AssertExpectations(t)
}

func TestPlaceOrder_FixedAmountCoupon(t *testing.T) {
	f := newOrderFixture()
	f.expectTx()
	f.expectUser(1)

	f.products.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, Price: 4000, Stock: 10, IsActive: true}, nil)
	f.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(1), int64(1)).Return(true, nil)

	f.coupons.On("FindByCode", mock.Anything, "MINUS500").Return(model.Coupon{
		ID:             6,
		Code:           "MINUS500",
		DiscountType:   model.DiscountTypeFixedAmount,
		DiscountValue:  500,
		ExpirationDate: time.Now().Add(time.Hour),
		UsageLimit:     100,
		Used:           3,
	}, nil)
	f.coupons.On("IncrementUsageIfAvailable", mock.Anything, int64(6)).Return(true, nil)

	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.TotalAmount == 3500
	})).Return(int64(12), nil)
	f.orderItems.On("CreateBulk", mock.Anything, int64(12), mock.Anything).Return(nil)
	f.carts.On("FindByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 7}, nil)
	f.carts.On("Clear", mock.Anything, int64(7)).Return(nil)

	out, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		ShippingAddress: "addr",
		Items:           []usecase.PlaceOrderItemInput{{ProductID: 1, Quantity: 1}},
		CouponCode:      "MINUS500",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(3500), out.TotalAmount)
}

func TestPlaceOrder_ExpiredCoupon(t *testing.T) {
	f := newOrderFixture()
	f.expectTx()
	f.expectUser(1)

	f.products.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, Price: 1000, Stock: 10, IsActive: true}, nil)
	f.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(1), int64(1)).Return(true, nil)

	f.coupons.On("FindByCode", mock.Anything, "OLD").Return(model.Coupon{
		ID:             7,
		Code:           "OLD",
		DiscountType:   model.DiscountTypePercentage,
		DiscountValue:  50,
		ExpirationDate: time.Now().Add(-time.Hour),
		UsageLimit:     10,
	}, nil)

	_, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		ShippingAddress: "addr",
		Items:           []usecase.PlaceOrderItemInput{{ProductID: 1, Quantity: 1}},
		CouponCode:      "OLD",
	})

	assertErrContains(t, err, "coupon expired")
	f.coupons.AssertNotCalled(t, "IncrementUsageIfAvailable", mock.Anything, mock.Anything)
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPlaceOrder_CouponUsageLimitReached(t *testing.T) {
	f := newOrderFixture()
	f.expectTx()
	f.expectUser(1)

	f.products.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, Price: 1000, Stock: 10, IsActive: true}, nil)
	f.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(1), int64(1)).Return(true, nil)

	f.coupons.On("FindByCode", mock.Anything, "FULL").Return(model.Coupon{
		ID:             8,
		Code:           "FULL",
		DiscountType:   model.DiscountTypeFixedAmount,
		DiscountValue:  100,
		ExpirationDate: time.Now().Add(time.Hour),
		UsageLimit:     1,
		Used:           1,
	}, nil)

	_, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		ShippingAddress: "addr",
		Items:           []usecase.PlaceOrderItemInput{{ProductID: 1, Quantity: 1}},
		CouponCode:      "FULL",
	})

	assertErrContains(t, err, "coupon usage limit reached")
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPlaceOrder_CouponLastUseTakenConcurrently(t *testing.T) {
	f := newOrderFixture()
	f.expectTx()
	f.expectUser(1)

	f.products.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, Price: 1000, Stock: 10, IsActive: true}, nil)
	f.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(1), int64(1)).Return(true, nil)

	// 読んだ時点では残っていたが、加算時には他の注文が使い切っていた
	f.coupons.On("FindByCode", mock.Anything, "LAST").Return(model.Coupon{
		ID:             9,
		Code:           "LAST",
		DiscountType:   model.DiscountTypePercentage,
		DiscountValue:  10,
		ExpirationDate: time.Now().Add(time.Hour),
		UsageLimit:     1,
		Used:           0,
	}, nil)
	f.coupons.On("IncrementUsageIfAvailable", mock.Anything, int64(9)).Return(false, nil)

	_, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		ShippingAddress: "addr",
		Items:           []usecase.PlaceOrderItemInput{{ProductID: 1, Quantity: 1}},
		CouponCode:      "LAST",
	})

	assertErrContains(t, err, "coupon usage limit reached")
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPlaceOrder_CouponNotFound(t *testing.T) {
	f := newOrderFixture()
	f.expectTx()
	f.expectUser(1)

	f.products.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, Price: 1000, Stock: 10, IsActive: true}, nil)
	f.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(1), int64(1)).Return(true, nil)

	f.coupons.On("FindByCode", mock.Anything, "NOPE").Return(model.Coupon{}, repo.ErrNotFound)

	_, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		ShippingAddress: "addr",
		Items:           []usecase.PlaceOrderItemInput{{ProductID: 1, Quantity: 1}},
		CouponCode:      "NOPE",
	})

	assertErrContains(t, err, "coupon not found")
}

func TestPlaceOrder_NoCartIsFine(t *testing.T) {
	f := newOrderFixture()
	f.expectTx()
	f.expectUser(1)

	f.products.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, Price: 1000, Stock: 10, IsActive: true}, nil)
	f.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(1), int64(1)).Return(true, nil)
	f.orders.On("Create", mock.Anything, mock.Anything).Return(int64(13), nil)
	f.orderItems.On("CreateBulk", mock.Anything, int64(13), mock.Anything).Return(nil)

	//カート未作成のユーザーでも注文できる
	f.carts.On("FindByUserID", mock.Anything, int64(1)).Return(model.Cart{}, repo.ErrNotFound)

	out, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		ShippingAddress: "addr",
		Items:           []usecase.PlaceOrderItemInput{{ProductID: 1, Quantity: 1}},
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(13), out.ID)
	f.carts.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

func TestPlaceOrder_IdempotencyReplay(t *testing.T) {
	f := newOrderFixture()
	f.expectTx()

	existing := model.Order{
		ID:          20,
		UserID:      1,
		Status:      model.OrderStatusPending,
		TotalAmount: 4000,
	}
	f.orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").Return(existing, true, nil)
	f.orderItems.On("ListByOrderID", mock.Anything, int64(20)).Return([]model.OrderItem{
		{ID: 1, OrderID: 20, ProductID: 1, Quantity: 2, Price: 4000},
	}, nil)

	out, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		ShippingAddress: "addr",
		Items:           []usecase.PlaceOrderItemInput{{ProductID: 1, Quantity: 2}},
		IdempotencyKey:  "key-1",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(20), out.ID)
	// 既存を返すだけで在庫もカートも触らない
	f.users.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	f.inventory.AssertNotCalled(t, "DecreaseStockIfEnough", mock.Anything, mock.Anything, mock.Anything)
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPlaceOrder_InvalidInput(t *testing.T) {
	f := newOrderFixture()

	_, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		ShippingAddress: "  ",
		Items:           []usecase.PlaceOrderItemInput{{ProductID: 1, Quantity: 1}},
	})
	assertErrContains(t, err, "shipping_address required")

	_, err = f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		ShippingAddress: "addr",
	})
	assertErrContains(t, err, "items required")

	_, err = f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		ShippingAddress: "addr",
		Items:           []usecase.PlaceOrderItemInput{{ProductID: 1, Quantity: 0}},
	})
	assertErrContains(t, err, "invalid quantity")

	//バリデーションで落ちたらトランザクションは開かない
	f.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestGetMyOrderDetail_OtherUsersOrderHidden(t *testing.T) {
	f := newOrderFixture()
	f.expectTx()

	f.orders.On("FindByID", mock.Anything, int64(30)).Return(model.Order{ID: 30, UserID: 2}, nil)

	_, err := f.uc.GetMyOrderDetail(context.Background(), 1, 30)
	assertErrContains(t, err, "not found")
}
