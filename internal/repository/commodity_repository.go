package repository

import (
	"errors"

	"github.com/Leclee/lecfaka/internal/constants"
	"github.com/Leclee/lecfaka/internal/models"

	"gorm.io/gorm"
)

// CommodityRepository 商品数据访问接口
type CommodityRepository interface {
	Create(commodity *models.Commodity) error
	GetByID(id uint) (*models.Commodity, error)
	ListListed() ([]models.Commodity, error)
	WithTx(tx *gorm.DB) *GormCommodityRepository
}

// GormCommodityRepository GORM 实现
type GormCommodityRepository struct {
	db *gorm.DB
}

// NewCommodityRepository 创建商品仓库
func NewCommodityRepository(db *gorm.DB) *GormCommodityRepository {
	return &GormCommodityRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCommodityRepository) WithTx(tx *gorm.DB) *GormCommodityRepository {
	if tx == nil {
		return r
	}
	return &GormCommodityRepository{db: tx}
}

// Create 创建商品
func (r *GormCommodityRepository) Create(commodity *models.Commodity) error {
	if commodity == nil {
		return errors.New("commodity is nil")
	}
	return r.db.Create(commodity).Error
}

// GetByID 根据 ID 获取商品
func (r *GormCommodityRepository) GetByID(id uint) (*models.Commodity, error) {
	var commodity models.Commodity
	if err := r.db.First(&commodity, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &commodity, nil
}

// ListListed 获取全部上架商品
func (r *GormCommodityRepository) ListListed() ([]models.Commodity, error) {
	var items []models.Commodity
	if err := r.db.Where("status = ?", constants.CommodityStatusListed).
		Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
