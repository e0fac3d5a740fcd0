package balance

import "errors"

// 余额支付不出进程：真正的扣款与结算在订单服务的同一事务内完成，
// 这里只做登录校验并返回占位结果。

var ErrLoginRequired = errors.New("balance payment requires login")

// CreateResult 余额支付占位结果
type CreateResult struct {
	UserID    uint
	ReturnURL string
}

// CreatePayment 余额支付"下单"
func CreatePayment(userID uint, returnURL string) (*CreateResult, error) {
	if userID == 0 {
		return nil, ErrLoginRequired
	}
	return &CreateResult{UserID: userID, ReturnURL: returnURL}, nil
}
