package repository

import (
	"errors"

	"github.com/Leclee/lecfaka/internal/models"

	"gorm.io/gorm"
)

// BillRepository 账单数据访问接口。账单只追加，不提供更新或删除。
type BillRepository interface {
	Create(bill *models.Bill) error
	List(filter BillListFilter) ([]models.Bill, int64, error)
	ListByUser(userID uint) ([]models.Bill, error)
	WithTx(tx *gorm.DB) *GormBillRepository
}

// GormBillRepository GORM 实现
type GormBillRepository struct {
	db *gorm.DB
}

// NewBillRepository 创建账单仓库
func NewBillRepository(db *gorm.DB) *GormBillRepository {
	return &GormBillRepository{db: db}
}

// WithTx 绑定事务
func (r *GormBillRepository) WithTx(tx *gorm.DB) *GormBillRepository {
	if tx == nil {
		return r
	}
	return &GormBillRepository{db: tx}
}

// Create 追加账单
func (r *GormBillRepository) Create(bill *models.Bill) error {
	if bill == nil {
		return errors.New("bill is nil")
	}
	return r.db.Create(bill).Error
}

// List 查询账单列表
func (r *GormBillRepository) List(filter BillListFilter) ([]models.Bill, int64, error) {
	query := r.db.Model(&models.Bill{})
	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Currency != "" {
		query = query.Where("currency = ?", filter.Currency)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Bill
	if err := applyPagination(query, filter.Page, filter.PageSize).
		Order("id desc").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListByUser 按时间顺序返回某账户的全部账单（对账用）
func (r *GormBillRepository) ListByUser(userID uint) ([]models.Bill, error) {
	if userID == 0 {
		return nil, errors.New("invalid user id")
	}
	var items []models.Bill
	if err := r.db.Where("user_id = ?", userID).Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
