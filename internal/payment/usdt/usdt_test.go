package usdt

import (
	"errors"
	"testing"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig(`{"gateway_url":"https://usdt.example.com/","auth_token":" token "}`)
	if err != nil {
		t.Fatalf("parse config failed: %v", err)
	}
	if cfg.GatewayURL != "https://usdt.example.com" {
		t.Fatalf("gateway url should be trimmed, got %s", cfg.GatewayURL)
	}
	if cfg.AuthToken != "token" {
		t.Fatalf("auth token should be trimmed, got %q", cfg.AuthToken)
	}
	if cfg.TradeType != "usdt.trc20" {
		t.Fatalf("default trade type want usdt.trc20 got %s", cfg.TradeType)
	}

	if _, err := ParseConfig(""); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("empty config want ErrConfigInvalid got %v", err)
	}
	if _, err := ParseConfig("not json"); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("bad json want ErrConfigInvalid got %v", err)
	}
}

func TestSign(t *testing.T) {
	params := map[string]interface{}{
		"order_id":   "tn-1",
		"amount":     10.5,
		"notify_url": "https://shop.example.com/notify",
		"signature":  "must-be-excluded",
		"empty":      "",
		"trade_type": "usdt.trc20",
	}
	first := Sign(params, "token-123")
	if first == "" || len(first) != 32 {
		t.Fatalf("signature want 32 hex chars got %q", first)
	}

	// 与参数插入顺序无关
	reordered := map[string]interface{}{
		"trade_type": "usdt.trc20",
		"notify_url": "https://shop.example.com/notify",
		"amount":     10.5,
		"order_id":   "tn-1",
	}
	if second := Sign(reordered, "token-123"); second != first {
		t.Fatalf("signature must be order independent: %s vs %s", first, second)
	}

	if other := Sign(params, "another-token"); other == first {
		t.Fatalf("different token must change signature")
	}
}

func TestParseCallback(t *testing.T) {
	data, err := ParseCallback([]byte(`{
		"trade_id":"t-1",
		"order_id":"tn-1",
		"amount":10,
		"actual_amount":"1.38",
		"token":"TAddr",
		"block_transaction_id":"b-1",
		"signature":"sig",
		"status":2
	}`))
	if err != nil {
		t.Fatalf("parse callback failed: %v", err)
	}
	if data.OrderID != "tn-1" || data.Status != StatusSuccess {
		t.Fatalf("callback fields mismatch: %+v", data)
	}
	if data.AmountString() != "10" {
		t.Fatalf("float amount want 10 got %s", data.AmountString())
	}

	if _, err := ParseCallback(nil); !errors.Is(err, ErrResponseInvalid) {
		t.Fatalf("empty body want ErrResponseInvalid got %v", err)
	}
	if _, err := ParseCallback([]byte("not json")); !errors.Is(err, ErrResponseInvalid) {
		t.Fatalf("bad json want ErrResponseInvalid got %v", err)
	}
}

func TestAmountString(t *testing.T) {
	cases := []struct {
		name  string
		input interface{}
		want  string
	}{
		{name: "float", input: float64(10.5), want: "10.5"},
		{name: "string", input: " 10.50 ", want: "10.50"},
		{name: "nil", input: nil, want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := amountToString(tc.input); got != tc.want {
				t.Fatalf("want %q got %q", tc.want, got)
			}
		})
	}
}

func TestVerifyCallback(t *testing.T) {
	cfg := &Config{GatewayURL: "https://usdt.example.com", AuthToken: "token-123"}
	data := &CallbackData{
		TradeID:            "t-1",
		OrderID:            "tn-1",
		Amount:             float64(10),
		ActualAmount:       "1.38",
		Token:              "TAddr",
		BlockTransactionID: "b-1",
		Status:             StatusSuccess,
	}
	data.Signature = Sign(map[string]interface{}{
		"trade_id":             data.TradeID,
		"order_id":             data.OrderID,
		"amount":               data.Amount,
		"actual_amount":        data.ActualAmount,
		"token":                data.Token,
		"block_transaction_id": data.BlockTransactionID,
		"status":               data.Status,
	}, cfg.AuthToken)

	if err := VerifyCallback(cfg, data); err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	data.Signature = "forged"
	if err := VerifyCallback(cfg, data); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("forged signature want ErrSignatureInvalid got %v", err)
	}

	if err := VerifyCallback(nil, data); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("nil config want ErrConfigInvalid got %v", err)
	}
}
