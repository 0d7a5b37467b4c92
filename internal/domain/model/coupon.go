package model

import "time"

type DiscountType string

const (
	DiscountTypePercentage  DiscountType = "PERCENTAGE"
	DiscountTypeFixedAmount DiscountType = "FIXED_AMOUNT"
)

// used <= usage_limit を常に保つ。加算は条件付きUPDATEで行う。
type Coupon struct {
	ID             int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	Code           string       `gorm:"type:varchar(50);not null;uniqueIndex" json:"code"`
	DiscountType   DiscountType `gorm:"type:varchar(20);not null" json:"discount_type"`
	DiscountValue  int64        `gorm:"not null" json:"discount_value"`
	ExpirationDate time.Time    `gorm:"not null" json:"expiration_date"`
	UsageLimit     int64        `gorm:"not null" json:"usage_limit"`
	Used           int64        `gorm:"not null;default:0" json:"used"`
	CreatedAt      time.Time    `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (c Coupon) Expired(now time.Time) bool {
	return c.ExpirationDate.Before(now)
}

func (c Coupon) UsageExhausted() bool {
	return c.Used >= c.UsageLimit
}

// Discount は割引後の合計を返す。
// プレビュー（/coupons/apply）と注文確定の両方がここを通る。
// FIXED_AMOUNTで合計が負になっても丸めない。
func (c Coupon) Discount(total int64) int64 {
	switch c.DiscountType {
	case DiscountTypePercentage:
		return total - total*c.DiscountValue/100
	case DiscountTypeFixedAmount:
		return total - c.DiscountValue
	}
	return total
}
