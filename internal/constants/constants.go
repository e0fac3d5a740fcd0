package constants

// 订单状态常量
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
	OrderStatusRefunded  = "refunded"
)

// 交付状态常量
const (
	DeliveryStatusUndelivered = "undelivered"
	DeliveryStatusDelivered   = "delivered"
)

// 交付方式常量
const (
	DeliveryWayAuto   = "auto"
	DeliveryWayManual = "manual"
)

// 商品上架状态常量
const (
	CommodityStatusListed   = "listed"
	CommodityStatusDelisted = "delisted"
)

// 卡密出货顺序常量
const (
	CardPickModeFIFO   = "fifo"
	CardPickModeRandom = "random"
	CardPickModeLIFO   = "lifo"
)

// 卡密状态常量
const (
	CardStatusAvailable = "available"
	CardStatusSold      = "sold"
	CardStatusLocked    = "locked"
)

// 支付处理器常量（编译期注册表的键）
const (
	PaymentHandleBalance = "balance"
	PaymentHandleEpay    = "epay"
	PaymentHandleUsdt    = "usdt"
)

// 支付交互方式常量
const (
	PaymentInteractionRedirect = "redirect"
	PaymentInteractionQR       = "qrcode"
	PaymentInteractionForm     = "form"
	PaymentInteractionBalance  = "balance"
)

// 手续费模式常量
const (
	PaymentFeeModeFixed   = "fixed"
	PaymentFeeModePercent = "percent"
)

// 账单方向常量
const (
	BillDirectionDebit  = "debit"
	BillDirectionCredit = "credit"
)

// 账单币种常量
const (
	BillCurrencyBalance = "balance"
	BillCurrencyPoints  = "points"
)

// 账单业务类型常量
const (
	BillTypeOrderPay   = "order_pay"
	BillTypeOrderFund  = "order_refund"
	BillTypeCommission = "commission"
	BillTypeRecharge   = "recharge"
)

// 优惠券模式常量
const (
	CouponModeFixed   = "fixed"
	CouponModePerUnit = "per_unit"
)

// 优惠券状态常量
const (
	CouponStatusActive    = "active"
	CouponStatusExhausted = "exhausted"
	CouponStatusLocked    = "locked"
)

// 网关回调应答常量
const (
	CallbackAckSuccess = "success"
	CallbackAckFail    = "fail"
)

// 易支付回调常量
const (
	EpayTradeStatusSuccess = "TRADE_SUCCESS"
)

// 队列常量
const (
	QueueDefault           = "default"
	TaskOrderTimeoutCancel = "order:timeout_cancel"
	TaskOrderPaidNotify    = "order:paid_notify"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "lf"
)

// 系统配置键常量
const (
	ConfigKeyCommissionRate = "commission_rate"
)
