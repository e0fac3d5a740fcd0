package service

import "errors"

// 业务校验类错误（调用方以 4xx 呈现）
var (
	ErrQuantityInvalid    = errors.New("quantity invalid")
	ErrLoginRequired      = errors.New("login required")
	ErrPurchaseCapReached = errors.New("purchase cap reached")
	ErrContactRequired    = errors.New("contact required")
	ErrDraftNotAllowed    = errors.New("draft selection not allowed")
	ErrDraftQuantityLimit = errors.New("draft order quantity must be 1")
	ErrLookupDenied       = errors.New("order lookup denied")
	ErrOrderStatusInvalid = errors.New("order status invalid")
	ErrSecretRequired     = errors.New("secret required")
	ErrImportEmpty        = errors.New("no importable card")
)

// 优惠券错误
var (
	ErrCouponInvalid       = errors.New("coupon invalid")
	ErrCouponExpired       = errors.New("coupon expired")
	ErrCouponExhausted     = errors.New("coupon exhausted")
	ErrCouponScopeMismatch = errors.New("coupon scope mismatch")
	ErrCouponValueTooLarge = errors.New("coupon value too large")
)

// 资源缺失类错误
var (
	ErrCommodityNotFound     = errors.New("commodity not found")
	ErrOrderNotFound         = errors.New("order not found")
	ErrPaymentMethodNotFound = errors.New("payment method not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrCardNotFound          = errors.New("card not found")
)

// 库存类错误。预选卡密被抢占与普通缺货是两种结果，调用方提示不同。
var (
	ErrStockInsufficient = errors.New("stock insufficient")
	ErrPreSelectedTaken  = errors.New("pre-selected card taken")
)

// 支付与结算类错误
var (
	ErrPaymentCreateFailed = errors.New("payment create failed")
	ErrCallbackRejected    = errors.New("payment callback rejected")
	ErrAmountMismatch      = errors.New("callback amount mismatch")
	ErrBalanceInsufficient = errors.New("balance insufficient")
	ErrTradeNoGenerate     = errors.New("trade no generate failed")
)
