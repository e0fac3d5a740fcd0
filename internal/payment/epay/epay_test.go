package epay

import (
	"context"
	"errors"
	"net/url"
	"testing"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig(`{"gateway_url":"https://pay.example.com/","merchant_id":" 1000 ","merchant_key":"key"}`)
	if err != nil {
		t.Fatalf("parse config failed: %v", err)
	}
	if cfg.GatewayURL != "https://pay.example.com" {
		t.Fatalf("gateway url should be trimmed, got %s", cfg.GatewayURL)
	}
	if cfg.MerchantID != "1000" {
		t.Fatalf("merchant id should be trimmed, got %q", cfg.MerchantID)
	}

	if _, err := ParseConfig(""); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("empty config want ErrConfigInvalid got %v", err)
	}
	if _, err := ParseConfig("{bad json"); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("bad json want ErrConfigInvalid got %v", err)
	}
}

func TestValidateConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  *Config
		ok   bool
	}{
		{name: "nil", cfg: nil},
		{name: "missing_gateway", cfg: &Config{MerchantID: "1", MerchantKey: "k"}},
		{name: "missing_merchant", cfg: &Config{GatewayURL: "https://x", MerchantKey: "k"}},
		{name: "missing_key", cfg: &Config{GatewayURL: "https://x", MerchantID: "1"}},
		{name: "complete", cfg: &Config{GatewayURL: "https://x", MerchantID: "1", MerchantKey: "k"}, ok: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateConfig(tc.cfg)
			if tc.ok && err != nil {
				t.Fatalf("want valid got %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrConfigInvalid) {
				t.Fatalf("want ErrConfigInvalid got %v", err)
			}
		})
	}
}

func TestBuildSignContent(t *testing.T) {
	content := buildSignContent(map[string]string{
		"money":        "10.00",
		"out_trade_no": "tn-1",
		"pid":          "1000",
		"sign":         "should-be-excluded",
		"sign_type":    "MD5",
		"empty":        "",
	})
	want := "money=10.00&out_trade_no=tn-1&pid=1000"
	if content != want {
		t.Fatalf("sign content want %q got %q", want, content)
	}
}

func TestCreatePaymentSubmitMode(t *testing.T) {
	cfg := &Config{
		GatewayURL:  "https://pay.example.com",
		MerchantID:  "1000",
		MerchantKey: "test-key",
	}
	result, err := CreatePayment(context.Background(), cfg, CreateInput{
		TradeNo:   "tn-submit-1",
		Amount:    "12.50",
		Subject:   "测试商品",
		NotifyURL: "https://shop.example.com/api/v1/payment/notify/epay",
		ReturnURL: "https://shop.example.com/order/tn-submit-1",
	})
	if err != nil {
		t.Fatalf("create payment failed: %v", err)
	}
	if result.FormAction != "https://pay.example.com/submit.php" {
		t.Fatalf("form action want submit.php got %s", result.FormAction)
	}
	if result.FormData["type"] != "alipay" {
		t.Fatalf("default channel want alipay got %s", result.FormData["type"])
	}
	expected := signMD5(buildSignContent(result.FormData) + cfg.MerchantKey)
	if result.FormData["sign"] != expected {
		t.Fatalf("form sign mismatch: want %s got %s", expected, result.FormData["sign"])
	}
}

func TestCreatePaymentRejectsIncompleteInput(t *testing.T) {
	cfg := &Config{GatewayURL: "https://x", MerchantID: "1", MerchantKey: "k"}
	if _, err := CreatePayment(context.Background(), cfg, CreateInput{Amount: "1.00"}); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("missing trade no want ErrConfigInvalid got %v", err)
	}
	if _, err := CreatePayment(context.Background(), cfg, CreateInput{
		TradeNo: "tn", Amount: "1.00",
	}); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("missing urls want ErrConfigInvalid got %v", err)
	}
}

func buildCallbackForm(key string) url.Values {
	form := url.Values{}
	form.Set("pid", "1000")
	form.Set("out_trade_no", "tn-cb-1")
	form.Set("trade_no", "gw-0001")
	form.Set("money", "12.50")
	form.Set("trade_status", tradeStatusSuccess)
	params := make(map[string]string, len(form))
	for k := range form {
		params[k] = form.Get(k)
	}
	form.Set("sign_type", "MD5")
	form.Set("sign", signMD5(buildSignContent(params)+key))
	return form
}

func TestVerifyCallback(t *testing.T) {
	cfg := &Config{GatewayURL: "https://x", MerchantID: "1000", MerchantKey: "test-key"}

	result, err := VerifyCallback(cfg, buildCallbackForm("test-key"))
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if result.TradeNo != "tn-cb-1" || result.Amount != "12.50" || result.ExternalNo != "gw-0001" {
		t.Fatalf("callback result mismatch: %+v", result)
	}

	if _, err := VerifyCallback(cfg, buildCallbackForm("wrong-key")); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("forged sign want ErrSignatureInvalid got %v", err)
	}

	form := url.Values{}
	form.Set("out_trade_no", "tn-cb-1")
	if _, err := VerifyCallback(cfg, form); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("missing sign want ErrSignatureInvalid got %v", err)
	}

	pending := buildCallbackForm("test-key")
	pending.Set("trade_status", "WAIT_BUYER_PAY")
	pending.Set("sign", func() string {
		params := make(map[string]string, len(pending))
		for k := range pending {
			params[k] = pending.Get(k)
		}
		return signMD5(buildSignContent(params) + "test-key")
	}())
	if _, err := VerifyCallback(cfg, pending); !errors.Is(err, ErrTradeNotSuccess) {
		t.Fatalf("unpaid status want ErrTradeNotSuccess got %v", err)
	}
}

func TestAbsolutize(t *testing.T) {
	if got := absolutize("https://pay.example.com", "/qr/abc.png"); got != "https://pay.example.com/qr/abc.png" {
		t.Fatalf("relative path want prefixed, got %s", got)
	}
	if got := absolutize("https://pay.example.com", "https://cdn.example.com/qr.png"); got != "https://cdn.example.com/qr.png" {
		t.Fatalf("absolute url must pass through, got %s", got)
	}
}
