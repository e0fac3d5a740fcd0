package repository

import (
	"errors"

	"github.com/Leclee/lecfaka/internal/models"

	"gorm.io/gorm"
)

// SystemConfigRepository 系统配置数据访问接口
type SystemConfigRepository interface {
	GetValue(key string) (string, error)
	Set(key, value string) error
}

// GormSystemConfigRepository GORM 实现
type GormSystemConfigRepository struct {
	db *gorm.DB
}

// NewSystemConfigRepository 创建系统配置仓库
func NewSystemConfigRepository(db *gorm.DB) *GormSystemConfigRepository {
	return &GormSystemConfigRepository{db: db}
}

// GetValue 读取配置值，不存在时返回空串
func (r *GormSystemConfigRepository) GetValue(key string) (string, error) {
	if key == "" {
		return "", nil
	}
	var row models.SystemConfig
	if err := r.db.Where("config_key = ?", key).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return row.Value, nil
}

// Set 写入配置值
func (r *GormSystemConfigRepository) Set(key, value string) error {
	if key == "" {
		return errors.New("config key is empty")
	}
	var row models.SystemConfig
	err := r.db.Where("config_key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(&models.SystemConfig{Key: key, Value: value}).Error
	}
	if err != nil {
		return err
	}
	row.Value = value
	return r.db.Save(&row).Error
}
