package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User 用户表（余额账户与推广关系）
type User struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Email         string          `gorm:"size:255;uniqueIndex" json:"email"`
	DisplayName   string          `gorm:"size:64" json:"display_name"`
	Balance       Money           `gorm:"type:decimal(12,2);default:0" json:"balance"`
	TotalRecharge Money           `gorm:"type:decimal(12,2);default:0" json:"total_recharge"` // 累计已支付金额，影响后续订单的等级折扣
	TierDiscount  decimal.Decimal `gorm:"type:decimal(6,4);default:0" json:"tier_discount"`   // 等级折扣率（0~1），0 表示无折扣
	ReferrerID    uint            `gorm:"index;default:0" json:"referrer_id"`                 // 邀请人，返佣对象
	Status        string          `gorm:"size:16;default:active" json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
