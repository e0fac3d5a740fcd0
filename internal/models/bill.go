package models

import "time"

// Bill 账单表（只追加的资金流水）
type Bill struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index" json:"user_id"`
	Amount    Money     `gorm:"type:decimal(12,2)" json:"amount"`
	Balance   Money     `gorm:"type:decimal(12,2)" json:"balance"` // 本笔发生后的余额快照
	Direction string    `gorm:"size:8" json:"direction"`           // debit / credit
	Currency  string    `gorm:"size:16;default:balance" json:"currency"`
	Type      string    `gorm:"size:32" json:"type"`
	Remark    string    `gorm:"size:255" json:"remark"`
	TradeNo   string    `gorm:"size:32;index" json:"trade_no"` // 关联订单号，可为空
	CreatedAt time.Time `json:"created_at"`
}

// TableName 指定表名
func (Bill) TableName() string {
	return "bills"
}
