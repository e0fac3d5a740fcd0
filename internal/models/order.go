package models

import "time"

// Order 订单表
type Order struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	TradeNo         string `gorm:"size:32;uniqueIndex" json:"trade_no"`
	UserID          uint   `gorm:"index;default:0" json:"user_id"` // 0 表示游客
	CommodityID     uint   `gorm:"index" json:"commodity_id"`
	PaymentMethodID uint   `json:"payment_method_id"`

	Amount         Money `gorm:"type:decimal(12,2)" json:"amount"` // 创建时定死；网关手续费只允许在首次支付前上调一次
	UnitPrice      Money `gorm:"type:decimal(12,2)" json:"unit_price"`
	CouponDiscount Money `gorm:"type:decimal(12,2);default:0" json:"coupon_discount"`
	Premium        Money `gorm:"type:decimal(12,2);default:0" json:"premium"`
	Quantity       int   `json:"quantity"`

	Race           string `gorm:"size:64" json:"race"`
	Contact        string `gorm:"size:255" json:"contact"`
	LookupPassword string `gorm:"size:255" json:"-"` // 游客查单密码（bcrypt 摘要）
	Secret         string `gorm:"type:text" json:"secret"`
	CardID         uint   `gorm:"default:0" json:"card_id"` // 预选卡密
	CouponID       uint   `gorm:"default:0" json:"coupon_id"`
	ReferrerID     uint   `gorm:"default:0" json:"referrer_id"`
	Rebate         Money  `gorm:"type:decimal(12,2);default:0" json:"rebate"` // 已发放的返佣金额

	Status         string     `gorm:"size:16;index" json:"status"`
	DeliveryStatus string     `gorm:"size:16" json:"delivery_status"`
	PaidAt         *time.Time `json:"paid_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
