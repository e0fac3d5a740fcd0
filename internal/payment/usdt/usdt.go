package usdt

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	ErrConfigInvalid    = errors.New("usdt config invalid")
	ErrRequestFailed    = errors.New("usdt request failed")
	ErrResponseInvalid  = errors.New("usdt response invalid")
	ErrSignatureInvalid = errors.New("usdt signature invalid")
)

// 网关订单状态常量
const (
	StatusWaiting = 1
	StatusSuccess = 2
	StatusExpired = 3
)

// Config USDT 网关配置（epusdt 协议）
type Config struct {
	GatewayURL string `json:"gateway_url"`
	AuthToken  string `json:"auth_token"`
	TradeType  string `json:"trade_type"`
}

// CreateInput 下单输入
type CreateInput struct {
	TradeNo   string
	Amount    string
	Subject   string
	NotifyURL string
	ReturnURL string
}

// CreateResult 下单结果
type CreateResult struct {
	TradeID      string
	ActualAmount string // 实付加密货币金额
	Token        string // 收款地址
	PaymentURL   string // 收银台地址
}

// CallbackData 回调数据
type CallbackData struct {
	TradeID            string      `json:"trade_id"`
	OrderID            string      `json:"order_id"`
	Amount             interface{} `json:"amount"` // 网关可能给 float 或字符串
	ActualAmount       interface{} `json:"actual_amount"`
	Token              string      `json:"token"`
	BlockTransactionID string      `json:"block_transaction_id"`
	Signature          string      `json:"signature"`
	Status             int         `json:"status"`
}

// AmountString 法币金额的字符串形式
func (c *CallbackData) AmountString() string {
	return amountToString(c.Amount)
}

func amountToString(v interface{}) string {
	switch val := v.(type) {
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case string:
		return strings.TrimSpace(val)
	case json.Number:
		return val.String()
	default:
		return ""
	}
}

// ParseConfig 解析配置
func ParseConfig(raw string) (*Config, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: empty config", ErrConfigInvalid)
	}
	var cfg Config
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, fmt.Errorf("%w: unmarshal config failed", ErrConfigInvalid)
	}
	cfg.GatewayURL = strings.TrimRight(strings.TrimSpace(cfg.GatewayURL), "/")
	cfg.AuthToken = strings.TrimSpace(cfg.AuthToken)
	cfg.TradeType = strings.TrimSpace(cfg.TradeType)
	if cfg.TradeType == "" {
		cfg.TradeType = "usdt.trc20"
	}
	return &cfg, nil
}

// ValidateConfig 校验配置完整性
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if cfg.GatewayURL == "" {
		return fmt.Errorf("%w: gateway_url is required", ErrConfigInvalid)
	}
	if cfg.AuthToken == "" {
		return fmt.Errorf("%w: auth_token is required", ErrConfigInvalid)
	}
	return nil
}

// CreatePayment 创建收款订单
func CreatePayment(ctx context.Context, cfg *Config, input CreateInput) (*CreateResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if input.TradeNo == "" || input.Amount == "" {
		return nil, ErrConfigInvalid
	}
	amount, err := strconv.ParseFloat(input.Amount, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid amount", ErrConfigInvalid)
	}

	params := map[string]interface{}{
		"order_id":     input.TradeNo,
		"amount":       amount,
		"notify_url":   input.NotifyURL,
		"redirect_url": input.ReturnURL,
		"trade_type":   cfg.TradeType,
	}
	params["signature"] = Sign(params, cfg.AuthToken)

	respBytes, err := postJSON(ctx, cfg.GatewayURL+"/api/v1/order/create-transaction", params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	var resp struct {
		StatusCode int    `json:"status_code"`
		Message    string `json:"message"`
		Data       struct {
			TradeID      string `json:"trade_id"`
			ActualAmount string `json:"actual_amount"`
			Token        string `json:"token"`
			PaymentURL   string `json:"payment_url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("%w: %s", ErrResponseInvalid, resp.Message)
	}
	return &CreateResult{
		TradeID:      resp.Data.TradeID,
		ActualAmount: resp.Data.ActualAmount,
		Token:        resp.Data.Token,
		PaymentURL:   resp.Data.PaymentURL,
	}, nil
}

// ParseCallback 解析回调数据
func ParseCallback(body []byte) (*CallbackData, error) {
	if len(body) == 0 {
		return nil, ErrResponseInvalid
	}
	var data CallbackData
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	return &data, nil
}

// VerifyCallback 验证回调签名
func VerifyCallback(cfg *Config, data *CallbackData) error {
	if cfg == nil || data == nil {
		return ErrConfigInvalid
	}
	params := map[string]interface{}{
		"trade_id":             data.TradeID,
		"order_id":             data.OrderID,
		"amount":               data.Amount,
		"actual_amount":        data.ActualAmount,
		"token":                data.Token,
		"block_transaction_id": data.BlockTransactionID,
		"status":               data.Status,
	}
	expected := Sign(params, cfg.AuthToken)
	if !strings.EqualFold(expected, data.Signature) {
		return ErrSignatureInvalid
	}
	return nil
}

// Sign 生成签名：剔除空值与 signature，按键名升序 k=v 用 & 拼接，
// 末尾直接追加 AuthToken 后取 MD5 小写。
func Sign(params map[string]interface{}, authToken string) string {
	var keys []string
	for k, v := range params {
		if k == "signature" || isEmptyValue(v) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, params[k]))
	}
	content := strings.Join(pairs, "&") + authToken
	sum := md5.Sum([]byte(content))
	return strings.ToLower(hex.EncodeToString(sum[:]))
}

func isEmptyValue(v interface{}) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func postJSON(ctx context.Context, endpoint string, params map[string]interface{}) ([]byte, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
