package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/Leclee/lecfaka/internal/cache"
	"github.com/Leclee/lecfaka/internal/http/response"
	"github.com/Leclee/lecfaka/internal/service"

	"github.com/gin-gonic/gin"
)

// ImportCardsRequest 卡密导入请求
type ImportCardsRequest struct {
	Race    string `json:"race"`
	Content string `json:"content" binding:"required"`
}

// ImportCards 批量导入卡密
func (h *Handler) ImportCards(c *gin.Context) {
	commodityID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req ImportCardsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	race := strings.TrimSpace(req.Race)
	report, err := h.CardService.ImportCards(commodityID, race, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCommodityNotFound):
			respondError(c, response.CodeNotFound, "商品不存在", nil)
		case errors.Is(err, service.ErrImportEmpty):
			respondError(c, response.CodeBadRequest, "没有可导入的卡密", nil)
		default:
			respondError(c, response.CodeInternal, "卡密导入失败", err)
		}
		return
	}

	if err := cache.DelStockSnapshot(c.Request.Context(), commodityID, race); err != nil {
		requestLog(c).Debugw("stock_snapshot_del_failed", "commodity_id", commodityID, "error", err)
	}
	requestLog(c).Infow("cards_imported",
		"commodity_id", commodityID,
		"race", race,
		"imported", report.Imported,
		"duplicates", report.Duplicates,
	)
	response.Success(c, report)
}

// ClearUnsoldCards 清空商品未售出卡密
func (h *Handler) ClearUnsoldCards(c *gin.Context) {
	commodityID, ok := parseIDParam(c)
	if !ok {
		return
	}

	removed, err := h.CardService.ClearUnsold(commodityID)
	if err != nil {
		respondError(c, response.CodeInternal, "卡密清空失败", err)
		return
	}

	if err := cache.DelStockSnapshot(c.Request.Context(), commodityID, ""); err != nil {
		requestLog(c).Debugw("stock_snapshot_del_failed", "commodity_id", commodityID, "error", err)
	}
	requestLog(c).Infow("cards_cleared", "commodity_id", commodityID, "removed", removed)
	response.Success(c, gin.H{"removed": removed})
}

// GetCardStock 查询商品可售库存
func (h *Handler) GetCardStock(c *gin.Context) {
	commodityID, ok := parseIDParam(c)
	if !ok {
		return
	}

	race := strings.TrimSpace(c.Query("race"))
	stock, err := h.CardService.Stock(commodityID, race)
	if err != nil {
		respondError(c, response.CodeInternal, "库存查询失败", err)
		return
	}
	response.Success(c, gin.H{
		"commodity_id": commodityID,
		"race":         race,
		"stock":        stock,
	})
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "ID 无效", nil)
		return 0, false
	}
	return uint(id), true
}
