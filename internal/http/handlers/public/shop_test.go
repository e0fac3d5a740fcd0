package public

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Leclee/lecfaka/internal/constants"
	"github.com/Leclee/lecfaka/internal/models"
	"github.com/Leclee/lecfaka/internal/provider"
	"github.com/Leclee/lecfaka/internal/repository"
	"github.com/Leclee/lecfaka/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupPublicHandlerTest(t *testing.T) (*Handler, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:public_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Commodity{},
		&models.Card{},
		&models.Order{},
		&models.Coupon{},
		&models.Bill{},
		&models.PaymentMethod{},
		&models.SystemConfig{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	container := &provider.Container{}
	container.UserRepo = repository.NewUserRepository(db)
	container.CommodityRepo = repository.NewCommodityRepository(db)
	container.CardRepo = repository.NewCardRepository(db)
	container.OrderRepo = repository.NewOrderRepository(db)
	container.CouponRepo = repository.NewCouponRepository(db)
	container.BillRepo = repository.NewBillRepository(db)
	container.PaymentMethodRepo = repository.NewPaymentMethodRepository(db)
	container.SystemConfigRepo = repository.NewSystemConfigRepository(db)

	container.CardService = service.NewCardService(container.CardRepo, container.CommodityRepo)
	container.SettlementService = service.NewSettlementService(
		container.UserRepo, container.BillRepo, container.OrderRepo,
		container.SystemConfigRepo, container.CardService, decimal.Zero)
	container.PaymentService = service.NewPaymentService(
		container.OrderRepo, container.CommodityRepo, container.PaymentMethodRepo, container.SettlementService)
	container.OrderService = service.NewOrderService(
		container.OrderRepo, container.CommodityRepo, container.CouponRepo,
		container.UserRepo, container.PaymentMethodRepo,
		container.SettlementService, container.CardService, nil,
		"https://shop.example.com", 30*time.Minute)

	return New(container), db
}

func createHandlerCommodity(t *testing.T, db *gorm.DB, mutate func(*models.Commodity)) *models.Commodity {
	t.Helper()
	commodity := &models.Commodity{
		Name:        "测试商品",
		Price:       models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		MemberPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(9)),
		Status:      constants.CommodityStatusListed,
		DeliveryWay: constants.DeliveryWayAuto,
		PickMode:    constants.CardPickModeFIFO,
	}
	if mutate != nil {
		mutate(commodity)
	}
	if err := db.Create(commodity).Error; err != nil {
		t.Fatalf("create commodity failed: %v", err)
	}
	return commodity
}

func decodeEnvelope(t *testing.T, body []byte) (int, json.RawMessage) {
	t.Helper()
	var resp struct {
		StatusCode int             `json:"status_code"`
		Data       json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	return resp.StatusCode, resp.Data
}

func TestListCommodities(t *testing.T) {
	h, db := setupPublicHandlerTest(t)
	auto := createHandlerCommodity(t, db, nil)
	if _, err := h.CardService.ImportCards(auto.ID, "", "pub-1\npub-2"); err != nil {
		t.Fatalf("import cards failed: %v", err)
	}
	createHandlerCommodity(t, db, func(c *models.Commodity) {
		c.Name = "空库存商品"
	})
	createHandlerCommodity(t, db, func(c *models.Commodity) {
		c.Name = "下架商品"
		c.Status = constants.CommodityStatusDelisted
	})

	r := newPublicTestRouter(h)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/commodities", nil)
	r.ServeHTTP(w, req)

	code, data := decodeEnvelope(t, w.Body.Bytes())
	if code != 0 {
		t.Fatalf("status code want 0 got %d, body %s", code, w.Body.String())
	}
	var views []CommodityView
	if err := json.Unmarshal(data, &views); err != nil {
		t.Fatalf("unmarshal views failed: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("listed commodities want 2 got %d", len(views))
	}
	byName := make(map[string]CommodityView, len(views))
	for _, view := range views {
		byName[view.Name] = view
	}
	if got := byName["测试商品"]; got.Stock != 2 || got.IsSoldOut {
		t.Fatalf("stocked commodity want stock=2 got %+v", got)
	}
	if got := byName["空库存商品"]; got.Stock != 0 || !got.IsSoldOut {
		t.Fatalf("empty auto commodity must be sold out, got %+v", got)
	}
}

func TestGetCommodityStock(t *testing.T) {
	h, db := setupPublicHandlerTest(t)
	manual := createHandlerCommodity(t, db, func(c *models.Commodity) {
		c.DeliveryWay = constants.DeliveryWayManual
	})

	r := newPublicTestRouter(h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/commodities/%d/stock", manual.ID), nil)
	r.ServeHTTP(w, req)
	code, data := decodeEnvelope(t, w.Body.Bytes())
	if code != 0 {
		t.Fatalf("status code want 0 got %d", code)
	}
	var payload struct {
		Stock int64 `json:"stock"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("unmarshal payload failed: %v", err)
	}
	// 人工发货商品不统计卡密库存
	if payload.Stock != 0 {
		t.Fatalf("manual commodity stock want 0 got %d", payload.Stock)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/commodities/999/stock", nil)
	r.ServeHTTP(w, req)
	if code, _ := decodeEnvelope(t, w.Body.Bytes()); code != 404 {
		t.Fatalf("missing commodity want 404 got %d", code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/commodities/abc/stock", nil)
	r.ServeHTTP(w, req)
	if code, _ := decodeEnvelope(t, w.Body.Bytes()); code != 400 {
		t.Fatalf("bad id want 400 got %d", code)
	}
}

func TestListCommodityDrafts(t *testing.T) {
	h, db := setupPublicHandlerTest(t)
	closed := createHandlerCommodity(t, db, nil)

	r := newPublicTestRouter(h)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/commodities/%d/drafts", closed.ID), nil)
	r.ServeHTTP(w, req)

	if code, _ := decodeEnvelope(t, w.Body.Bytes()); code != 400 {
		t.Fatalf("draft closed commodity want 400 got %d", code)
	}
}
