//go:build integration
// +build integration

package repository

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Leclee/lecfaka/internal/constants"
	"github.com/Leclee/lecfaka/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.Card{},
		&models.Order{},
		&models.Commodity{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(
		&models.Commodity{},
		&models.Order{},
		&models.Card{},
	); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

// allocateAllOrNothing 在单事务内锁定候选并整单售出，不足则回滚。
func allocateAllOrNothing(db *gorm.DB, commodityID, orderID uint, quantity int) error {
	return db.Transaction(func(tx *gorm.DB) error {
		repo := NewCardRepository(tx)
		cards, err := repo.SelectAvailableLocked(commodityID, "", quantity, constants.CardPickModeFIFO)
		if err != nil {
			return err
		}
		if len(cards) < quantity {
			return fmt.Errorf("stock insufficient: want %d got %d", quantity, len(cards))
		}
		ids := make([]uint, 0, len(cards))
		for _, card := range cards {
			ids = append(ids, card.ID)
		}
		affected, err := repo.MarkSold(ids, orderID, time.Now())
		if err != nil {
			return err
		}
		if affected != int64(quantity) {
			return fmt.Errorf("mark sold affected %d want %d", affected, quantity)
		}
		return nil
	})
}

func TestPostgresConcurrentAllocationAllOrNothing(t *testing.T) {
	db := setupPostgresIntegrationDB(t)

	if !rowLockSupported(db) {
		t.Fatalf("postgres must support row locks")
	}

	commodity := &models.Commodity{
		Name:        "并发分配商品",
		Price:       models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		MemberPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(9)),
		Status:      constants.CommodityStatusListed,
		DeliveryWay: constants.DeliveryWayAuto,
		PickMode:    constants.CardPickModeFIFO,
	}
	if err := db.Create(commodity).Error; err != nil {
		t.Fatalf("create commodity failed: %v", err)
	}
	for i := 1; i <= 5; i++ {
		card := &models.Card{
			CommodityID: commodity.ID,
			Secret:      fmt.Sprintf("pg-card-%03d", i),
			Status:      constants.CardStatusAvailable,
		}
		if err := db.Create(card).Error; err != nil {
			t.Fatalf("create card failed: %v", err)
		}
	}

	orders := make([]*models.Order, 2)
	for i := range orders {
		order := &models.Order{
			TradeNo:     fmt.Sprintf("pg-alloc-%d", i),
			CommodityID: commodity.ID,
			Quantity:    3,
			Amount:      models.NewMoneyFromDecimal(decimal.NewFromInt(30)),
			Status:      constants.OrderStatusPending,
		}
		if err := db.Create(order).Error; err != nil {
			t.Fatalf("create order failed: %v", err)
		}
		orders[i] = order
	}

	// 库存 5，两笔各要 3：无论怎样交错，恰好一笔成功
	start := make(chan struct{})
	results := make([]error, len(orders))
	var wg sync.WaitGroup
	for i, order := range orders {
		wg.Add(1)
		go func(idx int, orderID uint) {
			defer wg.Done()
			<-start
			results[idx] = allocateAllOrNothing(db, commodity.ID, orderID, 3)
		}(i, order.ID)
	}
	close(start)
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		}
	}
	if succeeded != 1 {
		t.Fatalf("want exactly 1 successful allocation got %d (results %v)", succeeded, results)
	}

	var sold int64
	if err := db.Model(&models.Card{}).
		Where("commodity_id = ? AND status = ?", commodity.ID, constants.CardStatusSold).
		Count(&sold).Error; err != nil {
		t.Fatalf("count sold failed: %v", err)
	}
	if sold != 3 {
		t.Fatalf("sold cards want 3 got %d", sold)
	}

	cardRepo := NewCardRepository(db)
	available, err := cardRepo.CountAvailable(commodity.ID, "")
	if err != nil {
		t.Fatalf("count available failed: %v", err)
	}
	if available != 2 {
		t.Fatalf("available cards want 2 got %d", available)
	}

	// 失败的一笔不能留下半分配的卡密
	for _, order := range orders {
		cards, err := cardRepo.ListByOrder(order.ID)
		if err != nil {
			t.Fatalf("list by order failed: %v", err)
		}
		if len(cards) != 0 && len(cards) != 3 {
			t.Fatalf("order %d allocation not all-or-nothing: %d cards", order.ID, len(cards))
		}
	}
}
