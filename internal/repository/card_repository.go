package repository

import (
	"errors"
	"time"

	"github.com/Leclee/lecfaka/internal/constants"
	"github.com/Leclee/lecfaka/internal/models"

	"gorm.io/gorm"
)

// CardRepository 卡密库存数据访问接口
type CardRepository interface {
	CreateBatch(items []models.Card) error
	ListSecretsByCommodity(commodityID uint, secrets []string) ([]string, error)
	ListByOrder(orderID uint) ([]models.Card, error)
	ListDrafts(commodityID uint, race string) ([]models.Card, error)
	GetByID(id uint) (*models.Card, error)
	CountAvailable(commodityID uint, race string) (int64, error)
	SelectAvailableLocked(commodityID uint, race string, quantity int, pickMode string) ([]models.Card, error)
	GetAvailableByIDLocked(id uint) (*models.Card, error)
	MarkSold(ids []uint, orderID uint, soldAt time.Time) (int64, error)
	DeleteUnsold(commodityID uint) (int64, error)
	WithTx(tx *gorm.DB) *GormCardRepository
}

// GormCardRepository GORM 实现
type GormCardRepository struct {
	db *gorm.DB
}

// NewCardRepository 创建卡密仓库
func NewCardRepository(db *gorm.DB) *GormCardRepository {
	return &GormCardRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCardRepository) WithTx(tx *gorm.DB) *GormCardRepository {
	if tx == nil {
		return r
	}
	return &GormCardRepository{db: tx}
}

// CreateBatch 批量创建卡密
func (r *GormCardRepository) CreateBatch(items []models.Card) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.Create(&items).Error
}

// ListSecretsByCommodity 查询商品下已存在的密文（用于导入去重）
func (r *GormCardRepository) ListSecretsByCommodity(commodityID uint, secrets []string) ([]string, error) {
	if commodityID == 0 {
		return nil, errors.New("invalid commodity id")
	}
	if len(secrets) == 0 {
		return []string{}, nil
	}
	var existing []string
	if err := r.db.Model(&models.Card{}).
		Where("commodity_id = ? AND secret IN ?", commodityID, secrets).
		Pluck("secret", &existing).Error; err != nil {
		return nil, err
	}
	return existing, nil
}

// ListByOrder 按订单获取已售卡密
func (r *GormCardRepository) ListByOrder(orderID uint) ([]models.Card, error) {
	if orderID == 0 {
		return nil, errors.New("invalid order id")
	}
	var items []models.Card
	if err := r.db.Where("order_id = ?", orderID).Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListDrafts 获取可预选的卡密（只暴露展示名，不含密文）
func (r *GormCardRepository) ListDrafts(commodityID uint, race string) ([]models.Card, error) {
	if commodityID == 0 {
		return nil, errors.New("invalid commodity id")
	}
	query := r.db.Model(&models.Card{}).
		Select("id, commodity_id, display, race, status").
		Where("commodity_id = ? AND status = ?", commodityID, constants.CardStatusAvailable)
	if race != "" {
		query = query.Where("race = ?", race)
	}
	var items []models.Card
	if err := query.Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetByID 根据 ID 获取卡密
func (r *GormCardRepository) GetByID(id uint) (*models.Card, error) {
	var card models.Card
	if err := r.db.First(&card, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

// CountAvailable 统计可用库存（不加锁，快速失败用，权威判定仍在加锁分配）
func (r *GormCardRepository) CountAvailable(commodityID uint, race string) (int64, error) {
	if commodityID == 0 {
		return 0, errors.New("invalid commodity id")
	}
	query := r.db.Model(&models.Card{}).
		Where("commodity_id = ? AND status = ?", commodityID, constants.CardStatusAvailable)
	if race != "" {
		query = query.Where("race = ?", race)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SelectAvailableLocked 锁定并返回候选卡密（FOR UPDATE SKIP LOCKED）。
// 返回的行数可能少于 quantity，是否整单失败由调用方判定。
func (r *GormCardRepository) SelectAvailableLocked(commodityID uint, race string, quantity int, pickMode string) ([]models.Card, error) {
	if commodityID == 0 || quantity <= 0 {
		return nil, errors.New("invalid allocation request")
	}
	query := r.db.Model(&models.Card{}).
		Where("commodity_id = ? AND status = ?", commodityID, constants.CardStatusAvailable)
	if race != "" {
		query = query.Where("race = ?", race)
	}
	switch pickMode {
	case constants.CardPickModeRandom:
		query = query.Order("RANDOM()")
	case constants.CardPickModeLIFO:
		query = query.Order("id desc")
	default:
		query = query.Order("id asc")
	}
	query = applyRowLockSkipLocked(query.Limit(quantity))

	var items []models.Card
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetAvailableByIDLocked 锁定单张预选卡密，已被占用时返回 nil
func (r *GormCardRepository) GetAvailableByIDLocked(id uint) (*models.Card, error) {
	if id == 0 {
		return nil, errors.New("invalid card id")
	}
	var card models.Card
	query := applyRowLockSkipLocked(
		r.db.Where("id = ? AND status = ?", id, constants.CardStatusAvailable),
	)
	if err := query.First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

// MarkSold 标记卡密售出并一次性绑定归属订单。
// WHERE 带状态守卫，返回的影响行数用于判定整单分配是否成立。
func (r *GormCardRepository) MarkSold(ids []uint, orderID uint, soldAt time.Time) (int64, error) {
	if len(ids) == 0 || orderID == 0 {
		return 0, nil
	}
	if soldAt.IsZero() {
		soldAt = time.Now()
	}
	result := r.db.Model(&models.Card{}).
		Where("id IN ? AND status = ?", ids, constants.CardStatusAvailable).
		Updates(map[string]interface{}{
			"status":   constants.CardStatusSold,
			"order_id": orderID,
			"sold_at":  soldAt,
		})
	return result.RowsAffected, result.Error
}

// DeleteUnsold 清空商品的未售卡密
func (r *GormCardRepository) DeleteUnsold(commodityID uint) (int64, error) {
	if commodityID == 0 {
		return 0, errors.New("invalid commodity id")
	}
	result := r.db.Where("commodity_id = ? AND status = ?", commodityID, constants.CardStatusAvailable).
		Delete(&models.Card{})
	return result.RowsAffected, result.Error
}
