package models

import "time"

// Coupon 优惠券表
type Coupon struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Code        string     `gorm:"size:64;uniqueIndex" json:"code"`
	CommodityID uint       `gorm:"index;default:0" json:"commodity_id"` // 0 表示不限商品
	Race        string     `gorm:"size:64" json:"race"`                 // 限定分类，空表示不限
	Mode        string     `gorm:"size:16" json:"mode"`                 // fixed / per_unit
	Value       Money      `gorm:"type:decimal(12,2)" json:"value"`
	Life        int        `json:"life"` // 剩余可用次数
	UseLife     int        `gorm:"default:0" json:"use_life"`
	Status      string     `gorm:"size:16;default:active" json:"status"`
	ExpiredAt   *time.Time `json:"expired_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName 指定表名
func (Coupon) TableName() string {
	return "coupons"
}
