package payment

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/Leclee/lecfaka/internal/constants"
	"github.com/Leclee/lecfaka/internal/payment/balance"
	"github.com/Leclee/lecfaka/internal/payment/epay"
	"github.com/Leclee/lecfaka/internal/payment/usdt"
)

var (
	ErrHandleNotSupported = errors.New("payment handle not supported")
	ErrConfigInvalid      = errors.New("payment config invalid")
	ErrCreateFailed       = errors.New("payment create failed")
	ErrCallbackInvalid    = errors.New("payment callback invalid")
)

// CreateInput 统一下单输入
type CreateInput struct {
	TradeNo   string
	Amount    string // 两位小数字符串
	Subject   string
	Channel   string
	ClientIP  string
	NotifyURL string
	ReturnURL string
	UserID    uint // 余额支付必填
}

// CreateResult 统一下单结果
type CreateResult struct {
	Interaction string            // redirect / qrcode / form / balance
	PayURL      string            `json:"pay_url,omitempty"`
	QRCode      string            `json:"qrcode,omitempty"`
	FormAction  string            `json:"form_action,omitempty"`
	FormData    map[string]string `json:"form_data,omitempty"`
	ExternalNo  string            `json:"external_no,omitempty"`
}

// CallbackResult 统一回调验证结果
type CallbackResult struct {
	TradeNo    string
	Amount     string
	ExternalNo string
}

// Create 按处理器标识下单。处理器集合是封闭的，编译期静态分发。
// 余额支付不出进程，这里只返回占位结果，真正的结算在订单服务内完成。
func Create(ctx context.Context, handle, configJSON string, input CreateInput) (*CreateResult, error) {
	switch handle {
	case constants.PaymentHandleBalance:
		result, err := balance.CreatePayment(input.UserID, input.ReturnURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCreateFailed, err)
		}
		return &CreateResult{
			Interaction: constants.PaymentInteractionBalance,
			PayURL:      result.ReturnURL,
		}, nil

	case constants.PaymentHandleEpay:
		cfg, err := epay.ParseConfig(configJSON)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
		}
		result, err := epay.CreatePayment(ctx, cfg, epay.CreateInput{
			TradeNo:   input.TradeNo,
			Amount:    input.Amount,
			Subject:   input.Subject,
			Channel:   input.Channel,
			ClientIP:  input.ClientIP,
			NotifyURL: input.NotifyURL,
			ReturnURL: input.ReturnURL,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCreateFailed, err)
		}
		out := &CreateResult{ExternalNo: result.ExternalNo}
		switch {
		case result.QRCode != "":
			out.Interaction = constants.PaymentInteractionQR
			out.QRCode = result.QRCode
		case len(result.FormData) > 0:
			out.Interaction = constants.PaymentInteractionForm
			out.FormAction = result.FormAction
			out.FormData = result.FormData
		default:
			out.Interaction = constants.PaymentInteractionRedirect
			out.PayURL = result.PayURL
		}
		return out, nil

	case constants.PaymentHandleUsdt:
		cfg, err := usdt.ParseConfig(configJSON)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
		}
		result, err := usdt.CreatePayment(ctx, cfg, usdt.CreateInput{
			TradeNo:   input.TradeNo,
			Amount:    input.Amount,
			Subject:   input.Subject,
			NotifyURL: input.NotifyURL,
			ReturnURL: input.ReturnURL,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCreateFailed, err)
		}
		return &CreateResult{
			Interaction: constants.PaymentInteractionQR,
			QRCode:      result.PaymentURL,
			ExternalNo:  result.TradeID,
		}, nil
	}
	return nil, ErrHandleNotSupported
}

// VerifyCallback 按处理器标识验证回调。签名不一致一律硬失败。
func VerifyCallback(handle, configJSON string, form url.Values, body []byte) (*CallbackResult, error) {
	switch handle {
	case constants.PaymentHandleEpay:
		cfg, err := epay.ParseConfig(configJSON)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
		}
		result, err := epay.VerifyCallback(cfg, form)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCallbackInvalid, err)
		}
		return &CallbackResult{
			TradeNo:    result.TradeNo,
			Amount:     result.Amount,
			ExternalNo: result.ExternalNo,
		}, nil

	case constants.PaymentHandleUsdt:
		cfg, err := usdt.ParseConfig(configJSON)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
		}
		data, err := usdt.ParseCallback(body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCallbackInvalid, err)
		}
		if err := usdt.VerifyCallback(cfg, data); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCallbackInvalid, err)
		}
		if data.Status != usdt.StatusSuccess {
			return nil, fmt.Errorf("%w: status %d", ErrCallbackInvalid, data.Status)
		}
		return &CallbackResult{
			TradeNo:    data.OrderID,
			Amount:     data.AmountString(),
			ExternalNo: data.TradeID,
		}, nil
	}
	return nil, ErrHandleNotSupported
}

// AckResponse 网关回调应答串
func AckResponse(handle string, success bool) string {
	switch handle {
	case constants.PaymentHandleUsdt:
		if success {
			return "ok"
		}
		return constants.CallbackAckFail
	default:
		if success {
			return constants.CallbackAckSuccess
		}
		return constants.CallbackAckFail
	}
}
