package models

import "time"

// PaymentMethod 支付方式表（单个订单生命周期内视为不可变）
type PaymentMethod struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:64" json:"name"`
	Handle      string    `gorm:"size:32;index" json:"handle"`  // 编译期注册表里的处理器标识
	Channel     string    `gorm:"size:32" json:"channel"`       // 网关子通道（alipay/wxpay/...）
	FeeMode     string    `gorm:"size:16" json:"fee_mode"`      // fixed / percent
	FeeValue    Money     `gorm:"type:decimal(12,2);default:0" json:"fee_value"`
	ForPurchase bool      `gorm:"default:true" json:"for_purchase"`
	ForRecharge bool      `gorm:"default:false" json:"for_recharge"`
	Config      string    `gorm:"type:text" json:"-"` // 网关私有配置（JSON，由各 adapter 自行解析）
	Enabled     bool      `gorm:"default:true" json:"enabled"`
	Sort        int       `gorm:"default:0" json:"sort"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName 指定表名
func (PaymentMethod) TableName() string {
	return "payment_methods"
}
