package repository

import (
	"errors"

	"github.com/Leclee/lecfaka/internal/constants"
	"github.com/Leclee/lecfaka/internal/models"

	"gorm.io/gorm"
)

// CouponRepository 优惠券数据访问接口
type CouponRepository interface {
	Create(coupon *models.Coupon) error
	GetByID(id uint) (*models.Coupon, error)
	GetByCode(code string) (*models.Coupon, error)
	Redeem(id uint) (int64, error)
	MarkExhaustedIfDrained(id uint) error
	WithTx(tx *gorm.DB) *GormCouponRepository
}

// GormCouponRepository GORM 实现
type GormCouponRepository struct {
	db *gorm.DB
}

// NewCouponRepository 创建优惠券仓库
func NewCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCouponRepository) WithTx(tx *gorm.DB) *GormCouponRepository {
	if tx == nil {
		return r
	}
	return &GormCouponRepository{db: tx}
}

// Create 创建优惠券
func (r *GormCouponRepository) Create(coupon *models.Coupon) error {
	if coupon == nil {
		return errors.New("coupon is nil")
	}
	return r.db.Create(coupon).Error
}

// GetByID 根据 ID 获取优惠券
func (r *GormCouponRepository) GetByID(id uint) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.First(&coupon, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

// GetByCode 根据兑换码获取优惠券
func (r *GormCouponRepository) GetByCode(code string) (*models.Coupon, error) {
	if code == "" {
		return nil, nil
	}
	var coupon models.Coupon
	if err := r.db.Where("code = ?", code).First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

// Redeem 原子核销一次：剩余次数减一、使用次数加一。
// WHERE 守卫保证 life 永不为负，影响行数为 0 即核销失败。
func (r *GormCouponRepository) Redeem(id uint) (int64, error) {
	if id == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.Coupon{}).
		Where("id = ? AND status = ? AND life > 0", id, constants.CouponStatusActive).
		Updates(map[string]interface{}{
			"life":     gorm.Expr("life - 1"),
			"use_life": gorm.Expr("use_life + 1"),
		})
	return result.RowsAffected, result.Error
}

// MarkExhaustedIfDrained 剩余次数归零后置为 exhausted（永久失效）
func (r *GormCouponRepository) MarkExhaustedIfDrained(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Model(&models.Coupon{}).
		Where("id = ? AND life <= 0 AND status = ?", id, constants.CouponStatusActive).
		Update("status", constants.CouponStatusExhausted).Error
}
