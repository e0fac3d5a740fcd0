package public

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Leclee/lecfaka/internal/constants"
	"github.com/Leclee/lecfaka/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func newPublicTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/commodities", h.ListCommodities)
	r.GET("/commodities/:id", h.GetCommodity)
	r.GET("/commodities/:id/stock", h.GetCommodityStock)
	r.GET("/commodities/:id/drafts", h.ListCommodityDrafts)
	r.GET("/payment-methods", h.ListPaymentMethods)
	r.POST("/orders", h.CreateOrder)
	r.GET("/orders/:trade_no", h.QueryOrder)
	r.POST("/payment/notify/:handle", h.PaymentCallback)
	return r
}

func createHandlerPayMethod(t *testing.T, db *gorm.DB, handle, config string) *models.PaymentMethod {
	t.Helper()
	method := &models.PaymentMethod{
		Name:        handle,
		Handle:      handle,
		FeeMode:     constants.PaymentFeeModeFixed,
		FeeValue:    models.NewMoneyFromDecimal(decimal.Zero),
		ForPurchase: true,
		Enabled:     true,
		Config:      config,
	}
	if err := db.Create(method).Error; err != nil {
		t.Fatalf("create payment method failed: %v", err)
	}
	return method
}

func postJSONRequest(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestCreateOrderHandler(t *testing.T) {
	h, db := setupPublicHandlerTest(t)
	commodity := createHandlerCommodity(t, db, nil)
	if _, err := h.CardService.ImportCards(commodity.ID, "", "h-001"); err != nil {
		t.Fatalf("import cards failed: %v", err)
	}
	method := createHandlerPayMethod(t, db, constants.PaymentHandleEpay,
		`{"gateway_url":"https://pay.example.com","merchant_id":"1000","merchant_key":"test-key"}`)

	r := newPublicTestRouter(h)

	body := fmt.Sprintf(`{
		"commodity_id": %d,
		"payment_method_id": %d,
		"quantity": 1,
		"contact": "guest@example.com",
		"lookup_password": "pw"
	}`, commodity.ID, method.ID)
	w := postJSONRequest(r, "/orders", body)
	code, _ := decodeEnvelope(t, w.Body.Bytes())
	if code != 0 {
		t.Fatalf("create order want 0 got %d, body %s", code, w.Body.String())
	}

	var order models.Order
	if err := db.First(&order).Error; err != nil {
		t.Fatalf("order missing: %v", err)
	}
	if order.Status != constants.OrderStatusPending {
		t.Fatalf("gateway order status want pending got %s", order.Status)
	}

	// 游客凭密码查单
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/orders/"+order.TradeNo+"?password=pw", nil)
	r.ServeHTTP(w, req)
	if code, _ := decodeEnvelope(t, w.Body.Bytes()); code != 0 {
		t.Fatalf("guest lookup want 0 got %d, body %s", code, w.Body.String())
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/orders/"+order.TradeNo+"?password=wrong", nil)
	r.ServeHTTP(w, req)
	if code, _ := decodeEnvelope(t, w.Body.Bytes()); code != 401 {
		t.Fatalf("wrong password want 401 got %d", code)
	}
}

func TestCreateOrderHandlerErrorMapping(t *testing.T) {
	h, db := setupPublicHandlerTest(t)
	commodity := createHandlerCommodity(t, db, nil)
	if _, err := h.CardService.ImportCards(commodity.ID, "", "m-001"); err != nil {
		t.Fatalf("import cards failed: %v", err)
	}
	method := createHandlerPayMethod(t, db, constants.PaymentHandleEpay,
		`{"gateway_url":"https://pay.example.com","merchant_id":"1000","merchant_key":"test-key"}`)

	r := newPublicTestRouter(h)

	cases := []struct {
		name string
		body string
		want int
	}{
		{name: "malformed_json", body: `{`, want: 400},
		{name: "missing_required_fields", body: `{"quantity":1}`, want: 400},
		{
			name: "commodity_not_found",
			body: fmt.Sprintf(`{"commodity_id":999,"payment_method_id":%d,"quantity":1,"contact":"a@b.c"}`, method.ID),
			want: 404,
		},
		{
			name: "guest_without_contact",
			body: fmt.Sprintf(`{"commodity_id":%d,"payment_method_id":%d,"quantity":1}`, commodity.ID, method.ID),
			want: 400,
		},
		{
			name: "stock_insufficient",
			body: fmt.Sprintf(`{"commodity_id":%d,"payment_method_id":%d,"quantity":5,"contact":"a@b.c"}`, commodity.ID, method.ID),
			want: 400,
		},
		{
			name: "payment_method_missing",
			body: fmt.Sprintf(`{"commodity_id":%d,"payment_method_id":999,"quantity":1,"contact":"a@b.c"}`, commodity.ID),
			want: 404,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSONRequest(r, "/orders", tc.body)
			if code, _ := decodeEnvelope(t, w.Body.Bytes()); code != tc.want {
				t.Fatalf("status code want %d got %d, body %s", tc.want, code, w.Body.String())
			}
		})
	}
}

func TestPaymentCallbackUnknownHandle(t *testing.T) {
	h, _ := setupPublicHandlerTest(t)
	r := newPublicTestRouter(h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payment/notify/unknown",
		strings.NewReader("out_trade_no=tn-1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)

	// 网关回调始终 200 应答，内容表达成败
	if w.Code != http.StatusOK {
		t.Fatalf("http status want 200 got %d", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != constants.CallbackAckFail {
		t.Fatalf("ack want %q got %q", constants.CallbackAckFail, got)
	}
}

func TestListPaymentMethodsHandler(t *testing.T) {
	h, db := setupPublicHandlerTest(t)
	createHandlerPayMethod(t, db, constants.PaymentHandleBalance, "")

	r := newPublicTestRouter(h)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/payment-methods", nil)
	r.ServeHTTP(w, req)

	if code, _ := decodeEnvelope(t, w.Body.Bytes()); code != 0 {
		t.Fatalf("status code want 0 got %d", code)
	}
	if !strings.Contains(w.Body.String(), constants.PaymentHandleBalance) {
		t.Fatalf("payment methods missing balance handle: %s", w.Body.String())
	}
}
