package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Leclee/lecfaka/internal/constants"
	"github.com/Leclee/lecfaka/internal/logger"
	"github.com/Leclee/lecfaka/internal/models"
	"github.com/Leclee/lecfaka/internal/payment"
	"github.com/Leclee/lecfaka/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 订单号生成的内存重试次数，最终兜底是 trade_no 的唯一索引
const tradeNoMaxRetries = 3

// OrderTimeoutScheduler 超时关单任务的投递口
type OrderTimeoutScheduler interface {
	ScheduleOrderTimeout(tradeNo string, delay time.Duration) error
}

// OrderService 订单生命周期服务
type OrderService struct {
	orderRepo     repository.OrderRepository
	commodityRepo repository.CommodityRepository
	couponRepo    repository.CouponRepository
	userRepo      repository.UserRepository
	methodRepo    repository.PaymentMethodRepository
	settlement    *SettlementService
	cards         *CardService
	scheduler     OrderTimeoutScheduler

	siteBaseURL   string
	paymentExpire time.Duration
}

// NewOrderService 创建订单服务
func NewOrderService(
	orderRepo repository.OrderRepository,
	commodityRepo repository.CommodityRepository,
	couponRepo repository.CouponRepository,
	userRepo repository.UserRepository,
	methodRepo repository.PaymentMethodRepository,
	settlement *SettlementService,
	cards *CardService,
	scheduler OrderTimeoutScheduler,
	siteBaseURL string,
	paymentExpire time.Duration,
) *OrderService {
	if paymentExpire <= 0 {
		paymentExpire = 30 * time.Minute
	}
	return &OrderService{
		orderRepo:     orderRepo,
		commodityRepo: commodityRepo,
		couponRepo:    couponRepo,
		userRepo:      userRepo,
		methodRepo:    methodRepo,
		settlement:    settlement,
		cards:         cards,
		scheduler:     scheduler,
		siteBaseURL:   strings.TrimRight(siteBaseURL, "/"),
		paymentExpire: paymentExpire,
	}
}

// CreateOrderInput 下单输入
type CreateOrderInput struct {
	UserID          uint
	CommodityID     uint
	PaymentMethodID uint
	Quantity        int
	Race            string
	Contact         string
	LookupPassword  string // 游客查单密码
	CouponCode      string
	CardID          uint // 预选卡密
	ClientIP        string
}

// CreateOrderResult 下单结果
type CreateOrderResult struct {
	Order   *models.Order         `json:"order"`
	Payment *payment.CreateResult `json:"payment"`
	Pricing *PricingResult        `json:"pricing"`
}

// CreateOrder 创建订单并发起支付。
// 余额支付在本次调用内完成结算与发货；外部网关支付返回跳转
// 载荷，订单保持 pending 等回调。
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error) {
	commodity, err := s.commodityRepo.GetByID(input.CommodityID)
	if err != nil {
		return nil, err
	}
	if commodity == nil || commodity.Status != constants.CommodityStatusListed {
		return nil, ErrCommodityNotFound
	}

	if err := s.validatePurchase(commodity, input); err != nil {
		return nil, err
	}

	var user *models.User
	if input.UserID != 0 {
		user, err = s.userRepo.GetByID(input.UserID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, ErrUserNotFound
		}
	}

	// 预选卡密先做非锁定校验，权威判定仍在分配时的加锁查询
	if input.CardID != 0 {
		card, err := s.cards.cardRepo.GetByID(input.CardID)
		if err != nil {
			return nil, err
		}
		if card == nil || card.CommodityID != commodity.ID {
			return nil, ErrCardNotFound
		}
		if card.Status != constants.CardStatusAvailable {
			return nil, ErrPreSelectedTaken
		}
	}

	// 非锁定库存预检，进事务前快速失败
	if commodity.DeliveryWay == constants.DeliveryWayAuto && input.CardID == 0 {
		stock, err := s.cards.Stock(commodity.ID, input.Race)
		if err != nil {
			return nil, err
		}
		if stock < int64(input.Quantity) {
			return nil, ErrStockInsufficient
		}
	}

	method, err := s.methodRepo.GetByID(input.PaymentMethodID)
	if err != nil {
		return nil, err
	}
	if method == nil || !method.Enabled || !method.ForPurchase {
		return nil, ErrPaymentMethodNotFound
	}
	if method.Handle == constants.PaymentHandleBalance && input.UserID == 0 {
		return nil, ErrLoginRequired
	}

	var coupon *models.Coupon
	if code := strings.TrimSpace(input.CouponCode); code != "" {
		coupon, err = s.couponRepo.GetByCode(code)
		if err != nil {
			return nil, err
		}
		if coupon == nil {
			return nil, ErrCouponInvalid
		}
		if err := ValidateCouponForPurchase(coupon, commodity, input.Race); err != nil {
			return nil, err
		}
	}

	pricingInput := PricingInput{
		Commodity:     commodity,
		Authenticated: user != nil,
		Quantity:      input.Quantity,
		Race:          input.Race,
		Coupon:        coupon,
		Drafted:       input.CardID != 0,
	}
	if user != nil {
		pricingInput.TierDiscount = user.TierDiscount
	}
	pricing, err := ComputePrice(pricingInput)
	if err != nil {
		return nil, err
	}

	amount := applyGatewayFee(pricing.Amount, method)

	tradeNo, err := s.generateTradeNo()
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		TradeNo:         tradeNo,
		UserID:          input.UserID,
		CommodityID:     commodity.ID,
		PaymentMethodID: method.ID,
		Amount:          amount,
		UnitPrice:       pricing.UnitPrice,
		CouponDiscount:  pricing.CouponDiscount,
		Premium:         pricing.Premium,
		Quantity:        input.Quantity,
		Race:            input.Race,
		Contact:         strings.TrimSpace(input.Contact),
		CardID:          input.CardID,
		Status:          constants.OrderStatusPending,
		DeliveryStatus:  constants.DeliveryStatusUndelivered,
	}
	if user != nil {
		order.ReferrerID = user.ReferrerID
	}
	if coupon != nil {
		order.CouponID = coupon.ID
	}
	if input.UserID == 0 && input.LookupPassword != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.LookupPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		order.LookupPassword = string(hashed)
	}

	// 订单落库与优惠券核销同一事务提交：券在这一刻被合法消耗，
	// 后续支付失败也不回退核销
	if err := models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.WithTx(tx).Create(order); err != nil {
			return err
		}
		if coupon == nil {
			return nil
		}
		repo := s.couponRepo.WithTx(tx)
		affected, err := repo.Redeem(coupon.ID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrCouponExhausted
		}
		return repo.MarkExhaustedIfDrained(coupon.ID)
	}); err != nil {
		return nil, err
	}

	if s.scheduler != nil {
		if err := s.scheduler.ScheduleOrderTimeout(order.TradeNo, s.paymentExpire); err != nil {
			logger.Warnw("order_timeout_schedule_failed", "trade_no", order.TradeNo, "error", err)
		}
	}

	payResult, err := s.dispatchPayment(ctx, order, commodity, method, input.ClientIP)
	if err != nil {
		return nil, err
	}
	logger.Infow("order_created",
		"trade_no", order.TradeNo,
		"commodity_id", commodity.ID,
		"quantity", order.Quantity,
		"amount", order.Amount.String(),
		"handle", method.Handle,
	)
	return &CreateOrderResult{Order: order, Payment: payResult, Pricing: pricing}, nil
}

func (s *OrderService) validatePurchase(commodity *models.Commodity, input CreateOrderInput) error {
	if input.Quantity <= 0 {
		return ErrQuantityInvalid
	}
	if commodity.OnlyUser && input.UserID == 0 {
		return ErrLoginRequired
	}
	if input.UserID == 0 && strings.TrimSpace(input.Contact) == "" {
		return ErrContactRequired
	}
	if commodity.Minimum > 0 && input.Quantity < commodity.Minimum {
		return ErrQuantityInvalid
	}
	if commodity.Maximum > 0 && input.Quantity > commodity.Maximum {
		return ErrQuantityInvalid
	}
	if input.CardID != 0 {
		if !commodity.DraftOpen {
			return ErrDraftNotAllowed
		}
		if input.Quantity != 1 {
			return ErrDraftQuantityLimit
		}
	}
	if commodity.PurchaseCap > 0 && input.UserID != 0 {
		count, err := s.orderRepo.CountPaidByUser(input.UserID, commodity.ID)
		if err != nil {
			return err
		}
		if count >= int64(commodity.PurchaseCap) {
			return ErrPurchaseCapReached
		}
	}
	return nil
}

func (s *OrderService) dispatchPayment(ctx context.Context, order *models.Order, commodity *models.Commodity, method *models.PaymentMethod, clientIP string) (*payment.CreateResult, error) {
	if method.Handle == constants.PaymentHandleBalance {
		if err := s.settlement.PayWithBalance(order, commodity); err != nil {
			return nil, err
		}
		return &payment.CreateResult{
			Interaction: constants.PaymentInteractionBalance,
			PayURL:      s.orderURL(order.TradeNo),
		}, nil
	}

	result, err := payment.Create(ctx, method.Handle, method.Config, payment.CreateInput{
		TradeNo:   order.TradeNo,
		Amount:    order.Amount.String(),
		Subject:   commodity.Name,
		Channel:   method.Channel,
		ClientIP:  clientIP,
		NotifyURL: s.notifyURL(method.Handle),
		ReturnURL: s.orderURL(order.TradeNo),
		UserID:    order.UserID,
	})
	if err != nil {
		logger.Warnw("payment_create_failed", "trade_no", order.TradeNo, "handle", method.Handle, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPaymentCreateFailed, err)
	}
	return result, nil
}

// CancelExpiredOrder 超时关单：仅 pending 且已过支付时限的订单会被取消
func (s *OrderService) CancelExpiredOrder(tradeNo string) error {
	order, err := s.orderRepo.GetByTradeNo(tradeNo)
	if err != nil {
		return err
	}
	if order == nil || order.Status != constants.OrderStatusPending {
		return nil
	}
	if time.Since(order.CreatedAt) < s.paymentExpire {
		return nil
	}
	affected, err := s.orderRepo.MarkCancelled(order.ID)
	if err != nil {
		return err
	}
	if affected > 0 {
		logger.Infow("order_timeout_cancelled", "trade_no", tradeNo)
	}
	return nil
}

// QueryByTradeNo 查单。登录买家只能查自己的订单；
// 游客凭下单时设置的查单密码。
func (s *OrderService) QueryByTradeNo(tradeNo string, userID uint, lookupPassword string) (*models.Order, error) {
	order, err := s.orderRepo.GetByTradeNo(strings.TrimSpace(tradeNo))
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.UserID != 0 {
		if order.UserID != userID {
			return nil, ErrLookupDenied
		}
		return order, nil
	}
	if order.LookupPassword == "" {
		return order, nil
	}
	if bcrypt.CompareHashAndPassword([]byte(order.LookupPassword), []byte(lookupPassword)) != nil {
		return nil, ErrLookupDenied
	}
	return order, nil
}

// ListOrders 查询订单列表
func (s *OrderService) ListOrders(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.List(filter)
}

// FulfillManual 手动发货：向已支付未交付的订单写入密文
func (s *OrderService) FulfillManual(orderID uint, secret string) error {
	if strings.TrimSpace(secret) == "" {
		return ErrSecretRequired
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderNotFound
	}
	affected, err := s.orderRepo.SetDelivered(orderID, secret)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderStatusInvalid
	}
	logger.Infow("order_fulfilled_manually", "trade_no", order.TradeNo)
	return nil
}

// generateTradeNo 生成订单号：微秒时间戳 + 随机十六进制后缀，定长。
// 内存碰撞重试有限次，唯一索引兜底。
func (s *OrderService) generateTradeNo() (string, error) {
	for i := 0; i < tradeNoMaxRetries; i++ {
		candidate := strconv.FormatInt(time.Now().UnixMicro(), 10) +
			strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
		exists, err := s.orderRepo.ExistsTradeNo(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", ErrTradeNoGenerate
}

func (s *OrderService) notifyURL(handle string) string {
	return s.siteBaseURL + "/api/v1/payment/notify/" + handle
}

func (s *OrderService) orderURL(tradeNo string) string {
	return s.siteBaseURL + "/order/" + tradeNo
}

// applyGatewayFee 叠加网关手续费。
// 费用在创建时一次性并入金额，之后不再变动。
func applyGatewayFee(amount models.Money, method *models.PaymentMethod) models.Money {
	if method == nil || method.FeeValue.Decimal.IsZero() {
		return amount
	}
	switch method.FeeMode {
	case constants.PaymentFeeModePercent:
		fee := amount.Decimal.Mul(method.FeeValue.Decimal).Div(decimal.NewFromInt(100))
		return models.NewMoneyFromDecimal(amount.Decimal.Add(fee))
	case constants.PaymentFeeModeFixed:
		return models.NewMoneyFromDecimal(amount.Decimal.Add(method.FeeValue.Decimal))
	default:
		return amount
	}
}
