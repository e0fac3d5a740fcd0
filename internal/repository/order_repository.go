package repository

import (
	"errors"
	"time"

	"github.com/Leclee/lecfaka/internal/constants"
	"github.com/Leclee/lecfaka/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id uint) (*models.Order, error)
	GetByTradeNo(tradeNo string) (*models.Order, error)
	GetByTradeNoLocked(tradeNo string) (*models.Order, error)
	ExistsTradeNo(tradeNo string) (bool, error)
	CountPaidByUser(userID, commodityID uint) (int64, error)
	MarkPaid(id uint, paidAt time.Time) (int64, error)
	MarkCancelled(id uint) (int64, error)
	MarkRefunded(id uint) (int64, error)
	SetDelivered(id uint, secret string) (int64, error)
	SetRebate(id uint, rebate models.Money) error
	List(filter OrderListFilter) ([]models.Order, int64, error)
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Create 创建订单
func (r *GormOrderRepository) Create(order *models.Order) error {
	if order == nil {
		return errors.New("order is nil")
	}
	return r.db.Create(order).Error
}

// GetByID 根据 ID 获取订单
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByTradeNo 根据订单号获取订单
func (r *GormOrderRepository) GetByTradeNo(tradeNo string) (*models.Order, error) {
	if tradeNo == "" {
		return nil, errors.New("trade no is empty")
	}
	var order models.Order
	if err := r.db.Where("trade_no = ?", tradeNo).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByTradeNoLocked 根据订单号获取订单并加行锁（回调对账用）
func (r *GormOrderRepository) GetByTradeNoLocked(tradeNo string) (*models.Order, error) {
	if tradeNo == "" {
		return nil, errors.New("trade no is empty")
	}
	var order models.Order
	query := applyRowLock(r.db.Where("trade_no = ?", tradeNo))
	if err := query.First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// ExistsTradeNo 判断订单号是否已存在
func (r *GormOrderRepository) ExistsTradeNo(tradeNo string) (bool, error) {
	if tradeNo == "" {
		return false, nil
	}
	var count int64
	if err := r.db.Model(&models.Order{}).Where("trade_no = ?", tradeNo).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountPaidByUser 统计用户对某商品的已支付订单数（限购校验用）
func (r *GormOrderRepository) CountPaidByUser(userID, commodityID uint) (int64, error) {
	if userID == 0 || commodityID == 0 {
		return 0, nil
	}
	var count int64
	if err := r.db.Model(&models.Order{}).
		Where("user_id = ? AND commodity_id = ? AND status = ?", userID, commodityID, constants.OrderStatusPaid).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// MarkPaid 标记订单已支付。状态守卫 pending，影响行数为 0 说明订单已被并发处理。
func (r *GormOrderRepository) MarkPaid(id uint, paidAt time.Time) (int64, error) {
	if id == 0 {
		return 0, nil
	}
	if paidAt.IsZero() {
		paidAt = time.Now()
	}
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, constants.OrderStatusPending).
		Updates(map[string]interface{}{
			"status":  constants.OrderStatusPaid,
			"paid_at": paidAt,
		})
	return result.RowsAffected, result.Error
}

// MarkCancelled 取消订单（仅 pending 可取消）
func (r *GormOrderRepository) MarkCancelled(id uint) (int64, error) {
	if id == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, constants.OrderStatusPending).
		Update("status", constants.OrderStatusCancelled)
	return result.RowsAffected, result.Error
}

// MarkRefunded 标记退款（仅 paid 可退款，退款是状态而非删除）
func (r *GormOrderRepository) MarkRefunded(id uint) (int64, error) {
	if id == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, constants.OrderStatusPaid).
		Update("status", constants.OrderStatusRefunded)
	return result.RowsAffected, result.Error
}

// SetDelivered 写入密文并标记已交付（仅已支付订单）
func (r *GormOrderRepository) SetDelivered(id uint, secret string) (int64, error) {
	if id == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ? AND delivery_status = ?",
			id, constants.OrderStatusPaid, constants.DeliveryStatusUndelivered).
		Updates(map[string]interface{}{
			"secret":          secret,
			"delivery_status": constants.DeliveryStatusDelivered,
		})
	return result.RowsAffected, result.Error
}

// SetRebate 记录订单返佣金额（审计用）
func (r *GormOrderRepository) SetRebate(id uint, rebate models.Money) error {
	if id == 0 {
		return errors.New("invalid order id")
	}
	return r.db.Model(&models.Order{}).Where("id = ?", id).Update("rebate", rebate).Error
}

// List 查询订单列表
func (r *GormOrderRepository) List(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})
	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.TradeNo != "" {
		query = query.Where("trade_no = ?", filter.TradeNo)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Order
	if err := applyPagination(query, filter.Page, filter.PageSize).
		Order("id desc").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
