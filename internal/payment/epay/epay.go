package epay

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

var (
	ErrConfigInvalid    = errors.New("epay config invalid")
	ErrRequestFailed    = errors.New("epay request failed")
	ErrResponseInvalid  = errors.New("epay response invalid")
	ErrSignatureInvalid = errors.New("epay signature invalid")
	ErrTradeNotSuccess  = errors.New("epay trade status not success")
)

const tradeStatusSuccess = "TRADE_SUCCESS"

// Config 易支付配置
type Config struct {
	GatewayURL  string `json:"gateway_url"`  // 网关地址
	MerchantID  string `json:"merchant_id"`  // 商户号
	MerchantKey string `json:"merchant_key"` // 商户密钥
	UseMapi     bool   `json:"use_mapi"`     // 走 mapi.php 接口（扫码），否则 submit.php 跳转
}

// CreateInput 下单输入
type CreateInput struct {
	TradeNo   string
	Amount    string
	Subject   string
	Channel   string
	ClientIP  string
	NotifyURL string
	ReturnURL string
}

// CreateResult 下单结果
type CreateResult struct {
	PayURL     string
	QRCode     string
	FormAction string
	FormData   map[string]string
	ExternalNo string
	Raw        map[string]interface{}
}

// CallbackResult 回调验证结果
type CallbackResult struct {
	TradeNo    string
	Amount     string
	ExternalNo string
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
	cfg.MerchantID = strings.TrimSpace(cfg.MerchantID)
	cfg.MerchantKey = strings.TrimSpace(cfg.MerchantKey)
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
	if cfg.MerchantID == "" {
		return fmt.Errorf("%w: merchant_id is required", ErrConfigInvalid)
	}
	if cfg.MerchantKey == "" {
		return fmt.Errorf("%w: merchant_key is required", ErrConfigInvalid)
	}
	return nil
}

// CreatePayment 发起支付。
// mapi 模式请求网关取二维码；submit 模式不出网，拼好签名参数由前端表单跳转。
func CreatePayment(ctx context.Context, cfg *Config, input CreateInput) (*CreateResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if input.TradeNo == "" || input.Amount == "" {
		return nil, ErrConfigInvalid
	}
	if input.NotifyURL == "" || input.ReturnURL == "" {
		return nil, ErrConfigInvalid
	}
	subject := input.Subject
	if subject == "" {
		subject = input.TradeNo
	}
	channel := strings.ToLower(strings.TrimSpace(input.Channel))
	if channel == "" {
		channel = "alipay"
	}

	params := map[string]string{
		"pid":          cfg.MerchantID,
		"type":         channel,
		"out_trade_no": input.TradeNo,
		"notify_url":   input.NotifyURL,
		"return_url":   input.ReturnURL,
		"name":         subject,
		"money":        input.Amount,
	}

	if cfg.UseMapi {
		return createMapi(ctx, cfg, params, input.ClientIP)
	}

	params["sign"] = signMD5(buildSignContent(params) + cfg.MerchantKey)
	params["sign_type"] = "MD5"
	return &CreateResult{
		FormAction: cfg.GatewayURL + "/submit.php",
		FormData:   params,
	}, nil
}

func createMapi(ctx context.Context, cfg *Config, params map[string]string, clientIP string) (*CreateResult, error) {
	if clientIP == "" {
		clientIP = "127.0.0.1"
	}
	params["clientip"] = clientIP
	params["sign"] = signMD5(buildSignContent(params) + cfg.MerchantKey)
	params["sign_type"] = "MD5"

	respBytes, err := postForm(ctx, cfg.GatewayURL+"/mapi.php", params)
	if err != nil {
		return nil, ErrRequestFailed
	}

	var raw map[string]interface{}
	_ = json.Unmarshal(respBytes, &raw)
	var resp struct {
		Code    int    `json:"code"`
		Msg     string `json:"msg"`
		TradeNo string `json:"trade_no"`
		PayURL  string `json:"payurl"`
		QRCode  string `json:"qrcode"`
		Img     string `json:"img"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, ErrResponseInvalid
	}
	if resp.Code != 1 {
		return nil, fmt.Errorf("%w: %s", ErrResponseInvalid, resp.Msg)
	}

	result := &CreateResult{
		ExternalNo: strings.TrimSpace(resp.TradeNo),
		Raw:        raw,
	}
	qrcode := strings.TrimSpace(resp.QRCode)
	if qrcode == "" {
		qrcode = strings.TrimSpace(resp.Img)
	}
	switch {
	case qrcode != "":
		result.QRCode = absolutize(cfg.GatewayURL, qrcode)
	case strings.TrimSpace(resp.PayURL) != "":
		result.PayURL = absolutize(cfg.GatewayURL, strings.TrimSpace(resp.PayURL))
	default:
		return nil, ErrResponseInvalid
	}
	return result, nil
}

// VerifyCallback 验证回调签名与交易状态
func VerifyCallback(cfg *Config, form url.Values) (*CallbackResult, error) {
	if cfg == nil {
		return nil, ErrConfigInvalid
	}
	sign := strings.TrimSpace(form.Get("sign"))
	if sign == "" {
		return nil, ErrSignatureInvalid
	}
	params := make(map[string]string, len(form))
	for key, values := range form {
		if len(values) == 0 {
			continue
		}
		params[key] = values[0]
	}
	expected := signMD5(buildSignContent(params) + cfg.MerchantKey)
	if !strings.EqualFold(expected, sign) {
		return nil, ErrSignatureInvalid
	}
	if form.Get("trade_status") != tradeStatusSuccess {
		return nil, fmt.Errorf("%w: %s", ErrTradeNotSuccess, form.Get("trade_status"))
	}
	return &CallbackResult{
		TradeNo:    form.Get("out_trade_no"),
		Amount:     form.Get("money"),
		ExternalNo: form.Get("trade_no"),
	}, nil
}

// buildSignContent 参与签名的内容：剔除空值与 sign/sign_type，按键名升序 k=v 拼接
func buildSignContent(params map[string]string) string {
	var keys []string
	for k, v := range params {
		if v == "" {
			continue
		}
		if k == "sign" || k == "sign_type" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, params[k]))
	}
	return strings.Join(pairs, "&")
}

func signMD5(content string) string {
	sum := md5.Sum([]byte(content))
	return strings.ToLower(hex.EncodeToString(sum[:]))
}

func absolutize(gatewayURL, path string) string {
	if strings.HasPrefix(path, "/") {
		return gatewayURL + path
	}
	return path
}

func postForm(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	values := url.Values{}
	for k, v := range params {
		if v == "" {
			continue
		}
		values.Set(k, v)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json, text/plain, */*")
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, ErrRequestFailed
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return body, nil
}
