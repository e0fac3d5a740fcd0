package service

import (
	"errors"
	"net/url"

	"github.com/Leclee/lecfaka/internal/constants"
	"github.com/Leclee/lecfaka/internal/logger"
	"github.com/Leclee/lecfaka/internal/models"
	"github.com/Leclee/lecfaka/internal/payment"
	"github.com/Leclee/lecfaka/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 回调金额比对的容差（1 分钱）
var callbackAmountEpsilon = decimal.New(1, -2)

// PaidNotifier 支付成功后的异步通知投递口。
type PaidNotifier interface {
	EnqueueOrderPaidNotify(tradeNo string) error
}

// PaymentService 支付回调对账服务
type PaymentService struct {
	orderRepo     repository.OrderRepository
	commodityRepo repository.CommodityRepository
	methodRepo    repository.PaymentMethodRepository
	settlement    *SettlementService
	notifier      PaidNotifier
}

// NewPaymentService 创建支付服务
func NewPaymentService(
	orderRepo repository.OrderRepository,
	commodityRepo repository.CommodityRepository,
	methodRepo repository.PaymentMethodRepository,
	settlement *SettlementService,
) *PaymentService {
	return &PaymentService{
		orderRepo:     orderRepo,
		commodityRepo: commodityRepo,
		methodRepo:    methodRepo,
		settlement:    settlement,
	}
}

// SetPaidNotifier 挂载支付成功通知投递口，未挂载时跳过通知。
func (s *PaymentService) SetPaidNotifier(notifier PaidNotifier) {
	s.notifier = notifier
}

// ListPurchaseMethods 列出可用于购买的支付方式
func (s *PaymentService) ListPurchaseMethods() ([]models.PaymentMethod, error) {
	return s.methodRepo.ListForPurchase()
}

// HandleCallback 处理网关异步回调，返回网关要求的应答串。
// 幂等再入口：网关可能重复投递，非 pending 订单直接应答成功止住重试；
// 验签失败、查无订单、金额不符一律应答失败让网关重试。
func (s *PaymentService) HandleCallback(handle string, form url.Values, body []byte) string {
	method, err := s.methodRepo.GetByHandle(handle)
	if err != nil || method == nil {
		logger.Warnw("payment_callback_method_missing", "handle", handle)
		return payment.AckResponse(handle, false)
	}

	result, err := payment.VerifyCallback(handle, method.Config, form, body)
	if err != nil {
		logger.Warnw("payment_callback_verify_failed", "handle", handle, "error", err)
		return payment.AckResponse(handle, false)
	}

	order, err := s.orderRepo.GetByTradeNo(result.TradeNo)
	if err != nil {
		logger.Errorw("payment_callback_lookup_failed", "trade_no", result.TradeNo, "error", err)
		return payment.AckResponse(handle, false)
	}
	if order == nil {
		logger.Warnw("payment_callback_order_missing", "trade_no", result.TradeNo)
		return payment.AckResponse(handle, false)
	}
	if order.Status != constants.OrderStatusPending {
		return payment.AckResponse(handle, true)
	}

	reported, err := decimal.NewFromString(result.Amount)
	if err != nil || reported.Sub(order.Amount.Decimal).Abs().GreaterThan(callbackAmountEpsilon) {
		logger.Warnw("payment_callback_amount_mismatch",
			"trade_no", order.TradeNo, "reported", result.Amount, "expected", order.Amount.String())
		return payment.AckResponse(handle, false)
	}

	commodity, err := s.commodityRepo.GetByID(order.CommodityID)
	if err != nil || commodity == nil {
		logger.Errorw("payment_callback_commodity_missing", "trade_no", order.TradeNo)
		return payment.AckResponse(handle, false)
	}

	if err := models.DB.Transaction(func(tx *gorm.DB) error {
		// 事务内加锁重读，并发回调在这里串行化
		locked, err := s.orderRepo.WithTx(tx).GetByTradeNoLocked(order.TradeNo)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrOrderNotFound
		}
		if locked.Status != constants.OrderStatusPending {
			return ErrOrderStatusInvalid
		}
		return s.settlement.FinalizePaidTx(tx, locked, commodity)
	}); err != nil {
		// 锁内发现已处理，等价于幂等门命中
		if errors.Is(err, ErrOrderStatusInvalid) {
			return payment.AckResponse(handle, true)
		}
		logger.Errorw("payment_callback_settle_failed", "trade_no", order.TradeNo, "error", err)
		return payment.AckResponse(handle, false)
	}

	logger.Infow("payment_callback_settled",
		"trade_no", order.TradeNo, "handle", handle, "external_no", result.ExternalNo)

	// 通知失败不影响对账结果
	if s.notifier != nil {
		if err := s.notifier.EnqueueOrderPaidNotify(order.TradeNo); err != nil {
			logger.Warnw("payment_paid_notify_enqueue_failed", "trade_no", order.TradeNo, "error", err)
		}
	}
	return payment.AckResponse(handle, true)
}
