package cache

import (
	"context"
	"fmt"
	"time"
)

// 库存展示快照的有效期。快照只服务商品页展示，
// 下单路径始终直查数据库。
const stockSnapshotTTL = 10 * time.Second

// StockSnapshot 商品库存展示快照
type StockSnapshot struct {
	CommodityID uint   `json:"commodity_id"`
	Race        string `json:"race"`
	Count       int64  `json:"count"`
	CachedAt    int64  `json:"cached_at"`
}

func stockSnapshotKey(commodityID uint, race string) string {
	if race == "" {
		return fmt.Sprintf("stock:%d", commodityID)
	}
	return fmt.Sprintf("stock:%d:%s", commodityID, race)
}

// GetStockSnapshot 读取库存快照
func GetStockSnapshot(ctx context.Context, commodityID uint, race string) (*StockSnapshot, bool, error) {
	if commodityID == 0 {
		return nil, false, nil
	}
	var snapshot StockSnapshot
	hit, err := GetJSON(ctx, stockSnapshotKey(commodityID, race), &snapshot)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &snapshot, true, nil
}

// SetStockSnapshot 写入库存快照
func SetStockSnapshot(ctx context.Context, commodityID uint, race string, count int64) error {
	if commodityID == 0 {
		return nil
	}
	snapshot := StockSnapshot{
		CommodityID: commodityID,
		Race:        race,
		Count:       count,
		CachedAt:    time.Now().Unix(),
	}
	return SetJSON(ctx, stockSnapshotKey(commodityID, race), snapshot, stockSnapshotTTL)
}

// DelStockSnapshot 删除库存快照（导入或清库后调用）
func DelStockSnapshot(ctx context.Context, commodityID uint, race string) error {
	if commodityID == 0 {
		return nil
	}
	return Del(ctx, stockSnapshotKey(commodityID, race))
}
