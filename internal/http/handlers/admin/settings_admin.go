package admin

import (
	"strings"

	"github.com/Leclee/lecfaka/internal/constants"
	"github.com/Leclee/lecfaka/internal/http/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// 允许通过接口调整的运行时配置键。
var editableConfigKeys = map[string]struct{}{
	constants.ConfigKeyCommissionRate: {},
}

// GetSettings 获取运行时配置
func (h *Handler) GetSettings(c *gin.Context) {
	settings := make(map[string]string, len(editableConfigKeys))
	for key := range editableConfigKeys {
		value, err := h.SystemConfigRepo.GetValue(key)
		if err != nil {
			respondError(c, response.CodeInternal, "配置获取失败", err)
			return
		}
		settings[key] = value
	}
	response.Success(c, settings)
}

// UpdateSettingRequest 更新运行时配置请求
type UpdateSettingRequest struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value" binding:"required"`
}

// UpdateSetting 更新运行时配置
func (h *Handler) UpdateSetting(c *gin.Context) {
	var req UpdateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	key := strings.TrimSpace(req.Key)
	if _, ok := editableConfigKeys[key]; !ok {
		respondError(c, response.CodeBadRequest, "不支持的配置项", nil)
		return
	}

	value := strings.TrimSpace(req.Value)
	if !validateConfigValue(key, value) {
		respondError(c, response.CodeBadRequest, "配置值无效", nil)
		return
	}

	if err := h.SystemConfigRepo.Set(key, value); err != nil {
		respondError(c, response.CodeInternal, "配置保存失败", err)
		return
	}

	requestLog(c).Infow("system_config_updated", "key", key, "value", value)
	response.Success(c, gin.H{"key": key, "value": value})
}

func validateConfigValue(key, value string) bool {
	switch key {
	case constants.ConfigKeyCommissionRate:
		rate, err := decimal.NewFromString(value)
		if err != nil {
			return false
		}
		return rate.GreaterThanOrEqual(decimal.Zero) && rate.LessThan(decimal.NewFromInt(1))
	default:
		return false
	}
}
