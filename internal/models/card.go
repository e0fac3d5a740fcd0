package models

import "time"

// Card 卡密表（单个可售密文）
type Card struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	CommodityID uint       `gorm:"index:idx_cards_pick,priority:1" json:"commodity_id"`
	Secret      string     `gorm:"type:text" json:"secret"`
	Display     string     `gorm:"size:255" json:"display"` // 预选时对买家展示的名称
	Race        string     `gorm:"size:64;index" json:"race"`
	Status      string     `gorm:"size:16;index:idx_cards_pick,priority:2;default:available" json:"status"`
	OrderID     uint       `gorm:"index;default:0" json:"order_id"` // 归属订单，售出时一次性写入
	SoldAt      *time.Time `json:"sold_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TableName 指定表名
func (Card) TableName() string {
	return "cards"
}
