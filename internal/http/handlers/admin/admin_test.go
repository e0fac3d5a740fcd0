package admin

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Leclee/lecfaka/internal/constants"
	"github.com/Leclee/lecfaka/internal/models"
	"github.com/Leclee/lecfaka/internal/provider"
	"github.com/Leclee/lecfaka/internal/repository"
	"github.com/Leclee/lecfaka/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupAdminHandlerTest(t *testing.T) (*Handler, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:admin_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
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
	container.OrderService = service.NewOrderService(
		container.OrderRepo, container.CommodityRepo, container.CouponRepo,
		container.UserRepo, container.PaymentMethodRepo,
		container.SettlementService, container.CardService, nil,
		"https://shop.example.com", 30*time.Minute)

	return New(container), db
}

func newAdminTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/commodities/:id/cards/import", h.ImportCards)
	r.POST("/commodities/:id/cards/clear", h.ClearUnsoldCards)
	r.GET("/commodities/:id/cards/stock", h.GetCardStock)
	r.GET("/orders", h.AdminListOrders)
	r.POST("/orders/:id/fulfill", h.AdminFulfillOrder)
	r.POST("/orders/:id/refund", h.AdminRefundOrder)
	r.GET("/bills", h.AdminListBills)
	r.GET("/settings", h.GetSettings)
	r.PUT("/settings", h.UpdateSetting)
	return r
}

func adminJSONRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func adminStatusCode(t *testing.T, body []byte) int {
	t.Helper()
	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	return resp.StatusCode
}

func createAdminCommodity(t *testing.T, db *gorm.DB) *models.Commodity {
	t.Helper()
	commodity := &models.Commodity{
		Name:        "后台测试商品",
		Price:       models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		MemberPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(9)),
		Status:      constants.CommodityStatusListed,
		DeliveryWay: constants.DeliveryWayAuto,
		PickMode:    constants.CardPickModeFIFO,
	}
	if err := db.Create(commodity).Error; err != nil {
		t.Fatalf("create commodity failed: %v", err)
	}
	return commodity
}

func TestImportCardsHandler(t *testing.T) {
	h, db := setupAdminHandlerTest(t)
	commodity := createAdminCommodity(t, db)
	r := newAdminTestRouter(h)

	path := fmt.Sprintf("/commodities/%d/cards/import", commodity.ID)
	w := adminJSONRequest(r, http.MethodPost, path, `{"content":"adm-1\nadm-2\nadm-1"}`)
	if code := adminStatusCode(t, w.Body.Bytes()); code != 0 {
		t.Fatalf("import want 0 got %d, body %s", code, w.Body.String())
	}
	var resp struct {
		Data service.ImportReport `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal report failed: %v", err)
	}
	if resp.Data.Imported != 2 || resp.Data.Duplicates != 1 {
		t.Fatalf("report want imported=2 duplicates=1 got %+v", resp.Data)
	}

	// 空内容 → 参数校验失败
	w = adminJSONRequest(r, http.MethodPost, path, `{"content":""}`)
	if code := adminStatusCode(t, w.Body.Bytes()); code != 400 {
		t.Fatalf("empty content want 400 got %d", code)
	}

	// 商品不存在
	w = adminJSONRequest(r, http.MethodPost, "/commodities/999/cards/import", `{"content":"x"}`)
	if code := adminStatusCode(t, w.Body.Bytes()); code != 404 {
		t.Fatalf("missing commodity want 404 got %d", code)
	}
}

func TestClearUnsoldCardsHandler(t *testing.T) {
	h, db := setupAdminHandlerTest(t)
	commodity := createAdminCommodity(t, db)
	if _, err := h.CardService.ImportCards(commodity.ID, "", "c-1\nc-2"); err != nil {
		t.Fatalf("import cards failed: %v", err)
	}
	r := newAdminTestRouter(h)

	w := adminJSONRequest(r, http.MethodPost, fmt.Sprintf("/commodities/%d/cards/clear", commodity.ID), "")
	if code := adminStatusCode(t, w.Body.Bytes()); code != 0 {
		t.Fatalf("clear want 0 got %d, body %s", code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"removed":2`) {
		t.Fatalf("removed count missing: %s", w.Body.String())
	}

	stock, err := h.CardService.Stock(commodity.ID, "")
	if err != nil {
		t.Fatalf("stock failed: %v", err)
	}
	if stock != 0 {
		t.Fatalf("stock after clear want 0 got %d", stock)
	}
}

func TestAdminFulfillOrderHandler(t *testing.T) {
	h, db := setupAdminHandlerTest(t)
	r := newAdminTestRouter(h)

	order := &models.Order{
		TradeNo:        "adm-tn-1",
		Amount:         models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		Quantity:       1,
		Status:         constants.OrderStatusPaid,
		DeliveryStatus: constants.DeliveryStatusUndelivered,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	path := fmt.Sprintf("/orders/%d/fulfill", order.ID)
	w := adminJSONRequest(r, http.MethodPost, path, `{"secret":"manual-card"}`)
	if code := adminStatusCode(t, w.Body.Bytes()); code != 0 {
		t.Fatalf("fulfill want 0 got %d, body %s", code, w.Body.String())
	}

	var stored models.Order
	if err := db.First(&stored, order.ID).Error; err != nil {
		t.Fatalf("load order failed: %v", err)
	}
	if stored.DeliveryStatus != constants.DeliveryStatusDelivered || stored.Secret != "manual-card" {
		t.Fatalf("order not delivered: %+v", stored)
	}

	// 已交付订单重复发货
	w = adminJSONRequest(r, http.MethodPost, path, `{"secret":"again"}`)
	if code := adminStatusCode(t, w.Body.Bytes()); code != 400 {
		t.Fatalf("double fulfill want 400 got %d", code)
	}

	w = adminJSONRequest(r, http.MethodPost, "/orders/999/fulfill", `{"secret":"x"}`)
	if code := adminStatusCode(t, w.Body.Bytes()); code != 404 {
		t.Fatalf("missing order want 404 got %d", code)
	}
}

func TestAdminRefundOrderHandler(t *testing.T) {
	h, db := setupAdminHandlerTest(t)
	r := newAdminTestRouter(h)

	buyer := &models.User{Email: "refund@example.com", Balance: models.NewMoneyFromDecimal(decimal.Zero)}
	if err := db.Create(buyer).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	order := &models.Order{
		TradeNo:        "adm-tn-2",
		UserID:         buyer.ID,
		Amount:         models.NewMoneyFromDecimal(decimal.NewFromInt(25)),
		Quantity:       1,
		Status:         constants.OrderStatusPaid,
		DeliveryStatus: constants.DeliveryStatusDelivered,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	w := adminJSONRequest(r, http.MethodPost, fmt.Sprintf("/orders/%d/refund", order.ID), `{"remark":"售后"}`)
	if code := adminStatusCode(t, w.Body.Bytes()); code != 0 {
		t.Fatalf("refund want 0 got %d, body %s", code, w.Body.String())
	}

	var user models.User
	if err := db.First(&user, buyer.ID).Error; err != nil {
		t.Fatalf("load user failed: %v", err)
	}
	if user.Balance.String() != "25.00" {
		t.Fatalf("refunded balance want 25.00 got %s", user.Balance.String())
	}

	// 同一订单重复退款
	w = adminJSONRequest(r, http.MethodPost, fmt.Sprintf("/orders/%d/refund", order.ID), `{}`)
	if code := adminStatusCode(t, w.Body.Bytes()); code != 400 {
		t.Fatalf("double refund want 400 got %d", code)
	}
}

func TestSettingsHandler(t *testing.T) {
	h, _ := setupAdminHandlerTest(t)
	r := newAdminTestRouter(h)

	w := adminJSONRequest(r, http.MethodPut, "/settings",
		fmt.Sprintf(`{"key":"%s","value":"0.15"}`, constants.ConfigKeyCommissionRate))
	if code := adminStatusCode(t, w.Body.Bytes()); code != 0 {
		t.Fatalf("update setting want 0 got %d, body %s", code, w.Body.String())
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/settings", nil)
	r.ServeHTTP(w, req)
	if code := adminStatusCode(t, w.Body.Bytes()); code != 0 {
		t.Fatalf("get settings want 0 got %d", code)
	}
	if !strings.Contains(w.Body.String(), `"commission_rate":"0.15"`) {
		t.Fatalf("settings payload missing updated value: %s", w.Body.String())
	}

	cases := []struct {
		name string
		body string
	}{
		{name: "unknown_key", body: `{"key":"unknown","value":"1"}`},
		{name: "rate_not_a_number", body: fmt.Sprintf(`{"key":"%s","value":"abc"}`, constants.ConfigKeyCommissionRate)},
		{name: "rate_out_of_range", body: fmt.Sprintf(`{"key":"%s","value":"1.2"}`, constants.ConfigKeyCommissionRate)},
		{name: "missing_value", body: fmt.Sprintf(`{"key":"%s"}`, constants.ConfigKeyCommissionRate)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := adminJSONRequest(r, http.MethodPut, "/settings", tc.body)
			if code := adminStatusCode(t, w.Body.Bytes()); code != 400 {
				t.Fatalf("invalid setting want 400 got %d, body %s", code, w.Body.String())
			}
		})
	}
}

func TestAdminListOrdersHandler(t *testing.T) {
	h, db := setupAdminHandlerTest(t)
	r := newAdminTestRouter(h)

	for i, status := range []string{constants.OrderStatusPaid, constants.OrderStatusPending} {
		order := &models.Order{
			TradeNo:  fmt.Sprintf("adm-list-%d", i),
			Amount:   models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
			Quantity: 1,
			Status:   status,
		}
		if err := db.Create(order).Error; err != nil {
			t.Fatalf("create order failed: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/orders?status=paid", nil)
	r.ServeHTTP(w, req)
	if code := adminStatusCode(t, w.Body.Bytes()); code != 0 {
		t.Fatalf("list orders want 0 got %d", code)
	}
	var resp struct {
		Data       []models.Order `json:"data"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.Pagination.Total != 1 || len(resp.Data) != 1 {
		t.Fatalf("filtered orders want 1 got total=%d len=%d", resp.Pagination.Total, len(resp.Data))
	}
}
