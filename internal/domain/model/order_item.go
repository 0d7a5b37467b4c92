package model

import "time"

// 注文明細。priceは購入時点の小計（単価×数量）で固定。
type OrderItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64     `gorm:"not null;index" json:"order_id"`
	ProductID int64     `gorm:"not null;index" json:"product_id"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	Price     int64     `gorm:"not null" json:"price"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
