package model

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCanceled   OrderStatus = "CANCELED"
)

// 有効なステータスか
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCanceled:
		return true
	}
	return false
}

// 確定後はstatusだけが変わる。CANCELEDは終端。
type Order struct {
	ID              int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          int64       `gorm:"not null;index" json:"user_id"`
	ShippingAddress string      `gorm:"type:varchar(500);not null" json:"shipping_address"`
	Status          OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	TotalAmount     int64       `gorm:"not null" json:"total_amount"`
	CouponID        *int64      `gorm:"index" json:"coupon_id,omitempty"`
	IdempotencyKey  *string     `gorm:"type:varchar(255);uniqueIndex" json:"-"`
	CreatedAt       time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time   `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
