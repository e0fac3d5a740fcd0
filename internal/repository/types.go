package repository

import "time"

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Status      string
	TradeNo     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// BillListFilter 查询账单列表的过滤条件
type BillListFilter struct {
	Page     int
	PageSize int
	UserID   uint
	Currency string
}
