package repository

import (
	"errors"

	"github.com/Leclee/lecfaka/internal/models"

	"gorm.io/gorm"
)

// PaymentMethodRepository 支付方式数据访问接口
type PaymentMethodRepository interface {
	Create(method *models.PaymentMethod) error
	GetByID(id uint) (*models.PaymentMethod, error)
	GetByHandle(handle string) (*models.PaymentMethod, error)
	ListForPurchase() ([]models.PaymentMethod, error)
}

// GormPaymentMethodRepository GORM 实现
type GormPaymentMethodRepository struct {
	db *gorm.DB
}

// NewPaymentMethodRepository 创建支付方式仓库
func NewPaymentMethodRepository(db *gorm.DB) *GormPaymentMethodRepository {
	return &GormPaymentMethodRepository{db: db}
}

// Create 创建支付方式
func (r *GormPaymentMethodRepository) Create(method *models.PaymentMethod) error {
	if method == nil {
		return errors.New("payment method is nil")
	}
	return r.db.Create(method).Error
}

// GetByID 根据 ID 获取支付方式
func (r *GormPaymentMethodRepository) GetByID(id uint) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	if err := r.db.First(&method, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &method, nil
}

// GetByHandle 根据处理器标识获取启用的支付方式
func (r *GormPaymentMethodRepository) GetByHandle(handle string) (*models.PaymentMethod, error) {
	if handle == "" {
		return nil, nil
	}
	var method models.PaymentMethod
	if err := r.db.Where("handle = ? AND enabled = ?", handle, true).First(&method).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &method, nil
}

// ListForPurchase 获取可用于商品购买的支付方式
func (r *GormPaymentMethodRepository) ListForPurchase() ([]models.PaymentMethod, error) {
	var items []models.PaymentMethod
	if err := r.db.Where("enabled = ? AND for_purchase = ?", true, true).
		Order("sort asc, id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
