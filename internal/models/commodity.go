package models

import "time"

// Commodity 商品表
type Commodity struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"size:255" json:"name"`
	Description  string `gorm:"type:text" json:"description"`
	Price        Money  `gorm:"type:decimal(12,2)" json:"price"`      // 游客价
	MemberPrice  Money  `gorm:"type:decimal(12,2)" json:"user_price"` // 会员价
	Status       string `gorm:"size:16;index;default:listed" json:"status"`
	DeliveryWay  string `gorm:"size:16;default:auto" json:"delivery_way"`
	PickMode     string `gorm:"size:16;default:fifo" json:"pick_mode"` // 卡密出货顺序
	LevelDisable bool   `gorm:"default:false" json:"level_disable"`    // 不参与等级折扣
	OnlyUser     bool   `gorm:"default:false" json:"only_user"`        // 仅限登录用户购买
	Minimum      int    `gorm:"default:0" json:"minimum"`              // 单笔最小数量，0 不限
	Maximum      int    `gorm:"default:0" json:"maximum"`              // 单笔最大数量，0 不限
	PurchaseCap  int    `gorm:"default:0" json:"purchase_cap"`         // 每人累计可购次数（仅统计已支付订单），0 不限

	// Config 旧版文本配置（[category]/[wholesale]/[category_wholesale] 小语法）
	Config string `gorm:"type:text" json:"config"`
	// WholesaleConfig 结构化批发配置（JSON），存在时完全覆盖旧版文本配置
	WholesaleConfig string `gorm:"type:text" json:"wholesale_config"`

	DraftOpen    bool  `gorm:"default:false" json:"draft_open"` // 允许预选卡密
	DraftPremium Money `gorm:"type:decimal(12,2);default:0" json:"draft_premium"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Commodity) TableName() string {
	return "commodities"
}
