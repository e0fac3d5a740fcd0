package service

import (
	"time"

	"github.com/Leclee/lecfaka/internal/constants"
	"github.com/Leclee/lecfaka/internal/logger"
	"github.com/Leclee/lecfaka/internal/models"
	"github.com/Leclee/lecfaka/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 低于 1 分钱的返佣直接跳过
var commissionMinimum = decimal.New(1, -2)

// SettlementService 结算服务。
// 余额与账单只允许从这里变更：先加锁重读，再改余额，再追加带快照的账单。
type SettlementService struct {
	userRepo   repository.UserRepository
	billRepo   repository.BillRepository
	orderRepo  repository.OrderRepository
	configRepo repository.SystemConfigRepository
	cards      *CardService

	defaultCommissionRate decimal.Decimal
}

// NewSettlementService 创建结算服务
func NewSettlementService(
	userRepo repository.UserRepository,
	billRepo repository.BillRepository,
	orderRepo repository.OrderRepository,
	configRepo repository.SystemConfigRepository,
	cards *CardService,
	defaultCommissionRate decimal.Decimal,
) *SettlementService {
	return &SettlementService{
		userRepo:              userRepo,
		billRepo:              billRepo,
		orderRepo:             orderRepo,
		configRepo:            configRepo,
		cards:                 cards,
		defaultCommissionRate: defaultCommissionRate,
	}
}

// DebitTx 在事务内扣减余额并追加账单。
// 余额判定只认加锁重读后的值，不信请求早先读到的余额。
func (s *SettlementService) DebitTx(tx *gorm.DB, userID uint, amount models.Money, billType, remark, tradeNo string) error {
	if userID == 0 {
		return ErrUserNotFound
	}
	if amount.Decimal.LessThanOrEqual(decimal.Zero) {
		return ErrQuantityInvalid
	}
	repo := s.userRepo.WithTx(tx)
	user, err := repo.GetByIDForUpdate(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	after := user.Balance.Decimal.Sub(amount.Decimal)
	if after.LessThan(decimal.Zero) {
		return ErrBalanceInsufficient
	}
	balance := models.NewMoneyFromDecimal(after)
	if err := repo.UpdateBalance(userID, balance); err != nil {
		return err
	}
	return s.billRepo.WithTx(tx).Create(&models.Bill{
		UserID:    userID,
		Amount:    amount,
		Balance:   balance,
		Direction: constants.BillDirectionDebit,
		Currency:  constants.BillCurrencyBalance,
		Type:      billType,
		Remark:    remark,
		TradeNo:   tradeNo,
	})
}

// CreditTx 在事务内增加余额并追加账单
func (s *SettlementService) CreditTx(tx *gorm.DB, userID uint, amount models.Money, billType, remark, tradeNo string) error {
	if userID == 0 {
		return ErrUserNotFound
	}
	if amount.Decimal.LessThanOrEqual(decimal.Zero) {
		return ErrQuantityInvalid
	}
	repo := s.userRepo.WithTx(tx)
	user, err := repo.GetByIDForUpdate(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	balance := models.NewMoneyFromDecimal(user.Balance.Decimal.Add(amount.Decimal))
	if err := repo.UpdateBalance(userID, balance); err != nil {
		return err
	}
	return s.billRepo.WithTx(tx).Create(&models.Bill{
		UserID:    userID,
		Amount:    amount,
		Balance:   balance,
		Direction: constants.BillDirectionCredit,
		Currency:  constants.BillCurrencyBalance,
		Type:      billType,
		Remark:    remark,
		TradeNo:   tradeNo,
	})
}

// CommissionRate 返佣比例：系统配置优先，未配置时用启动配置的默认值
func (s *SettlementService) CommissionRate() decimal.Decimal {
	raw, err := s.configRepo.GetValue(constants.ConfigKeyCommissionRate)
	if err == nil && raw != "" {
		if rate, parseErr := decimal.NewFromString(raw); parseErr == nil &&
			rate.GreaterThanOrEqual(decimal.Zero) && rate.LessThan(decimal.NewFromInt(1)) {
			return rate
		}
		logger.Warnw("commission_rate_config_invalid", "value", raw)
	}
	return s.defaultCommissionRate
}

// CommissionTx 在事务内发放单级返佣。
// 订单已记过返佣（Rebate > 0）时跳过，回调重放不会二次发放。
func (s *SettlementService) CommissionTx(tx *gorm.DB, order *models.Order) error {
	if order == nil || order.ReferrerID == 0 {
		return nil
	}
	if order.Rebate.Decimal.GreaterThan(decimal.Zero) {
		return nil
	}
	referrer, err := s.userRepo.WithTx(tx).GetByID(order.ReferrerID)
	if err != nil {
		return err
	}
	if referrer == nil {
		return nil
	}
	commission := order.Amount.Decimal.Mul(s.CommissionRate()).Round(2)
	if commission.LessThan(commissionMinimum) {
		return nil
	}
	rebate := models.NewMoneyFromDecimal(commission)
	if err := s.CreditTx(tx, order.ReferrerID, rebate,
		constants.BillTypeCommission, "推广返佣", order.TradeNo); err != nil {
		return err
	}
	if err := s.orderRepo.WithTx(tx).SetRebate(order.ID, rebate); err != nil {
		return err
	}
	order.Rebate = rebate
	return nil
}

// AccumulateSpendTx 在事务内累加买家的累计消费（影响后续订单的等级折扣）
func (s *SettlementService) AccumulateSpendTx(tx *gorm.DB, order *models.Order) error {
	if order == nil || order.UserID == 0 {
		return nil
	}
	return s.userRepo.WithTx(tx).AccumulateRecharge(order.UserID, order.Amount)
}

// FinalizePaidTx 在事务内完成订单的支付收尾：
// 标记已支付 → 自动发货商品立即分配卡密并交付 → 返佣 → 累计消费。
// 任一步失败整个事务回滚，订单回到 pending。
func (s *SettlementService) FinalizePaidTx(tx *gorm.DB, order *models.Order, commodity *models.Commodity) error {
	if order == nil || commodity == nil {
		return ErrOrderNotFound
	}
	now := time.Now()
	orderRepo := s.orderRepo.WithTx(tx)
	affected, err := orderRepo.MarkPaid(order.ID, now)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderStatusInvalid
	}
	order.Status = constants.OrderStatusPaid
	order.PaidAt = &now

	if commodity.DeliveryWay == constants.DeliveryWayAuto {
		secret, err := s.cards.AllocateTx(tx, order, commodity)
		if err != nil {
			return err
		}
		if _, err := orderRepo.SetDelivered(order.ID, secret); err != nil {
			return err
		}
		order.Secret = secret
		order.DeliveryStatus = constants.DeliveryStatusDelivered
	}

	if err := s.CommissionTx(tx, order); err != nil {
		return err
	}
	return s.AccumulateSpendTx(tx, order)
}

// PayWithBalance 余额支付：扣款、分配、返佣在同一事务内完成。
// 扣款后任何一步失败都随事务整体回滚，扣款被一并撤销，订单保持
// pending，绝不留下已付款未交付的中间态。
func (s *SettlementService) PayWithBalance(order *models.Order, commodity *models.Commodity) error {
	if order == nil {
		return ErrOrderNotFound
	}
	if order.UserID == 0 {
		return ErrLoginRequired
	}
	if order.Status != constants.OrderStatusPending {
		return ErrOrderStatusInvalid
	}
	return models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.DebitTx(tx, order.UserID, order.Amount,
			constants.BillTypeOrderPay, "订单余额支付", order.TradeNo); err != nil {
			return err
		}
		return s.FinalizePaidTx(tx, order, commodity)
	})
}

// RefundToBalance 管理端退款：订单置为 refunded，买家余额回补。
// 游客订单只改状态，无处可退。
func (s *SettlementService) RefundToBalance(orderID uint, remark string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if err := models.DB.Transaction(func(tx *gorm.DB) error {
		affected, err := s.orderRepo.WithTx(tx).MarkRefunded(order.ID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrOrderStatusInvalid
		}
		if order.UserID == 0 {
			return nil
		}
		return s.CreditTx(tx, order.UserID, order.Amount,
			constants.BillTypeOrderFund, remark, order.TradeNo)
	}); err != nil {
		return nil, err
	}
	order.Status = constants.OrderStatusRefunded
	return order, nil
}

// ListBills 查询账单流水
func (s *SettlementService) ListBills(filter repository.BillListFilter) ([]models.Bill, int64, error) {
	return s.billRepo.List(filter)
}
