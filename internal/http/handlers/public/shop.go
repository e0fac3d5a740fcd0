package public

import (
	"errors"
	"strconv"
	"strings"

	"github.com/Leclee/lecfaka/internal/cache"
	"github.com/Leclee/lecfaka/internal/constants"
	"github.com/Leclee/lecfaka/internal/http/response"
	"github.com/Leclee/lecfaka/internal/models"
	"github.com/Leclee/lecfaka/internal/service"

	"github.com/gin-gonic/gin"
)

// CommodityView 商品展示结构，附带可售库存。
type CommodityView struct {
	models.Commodity
	Stock     int64 `json:"stock"`
	IsSoldOut bool  `json:"is_sold_out"`
}

// ListCommodities 获取上架商品列表
func (h *Handler) ListCommodities(c *gin.Context) {
	commodities, err := h.CommodityRepo.ListListed()
	if err != nil {
		respondError(c, response.CodeInternal, "商品列表获取失败", err)
		return
	}

	views := make([]CommodityView, 0, len(commodities))
	for i := range commodities {
		commodity := commodities[i]
		stock := h.displayStock(c, &commodity, "")
		views = append(views, CommodityView{
			Commodity: commodity,
			Stock:     stock,
			IsSoldOut: commodity.DeliveryWay == constants.DeliveryWayAuto && stock <= 0,
		})
	}
	response.Success(c, views)
}

// GetCommodity 获取商品详情
func (h *Handler) GetCommodity(c *gin.Context) {
	commodity, ok := h.loadListedCommodity(c)
	if !ok {
		return
	}
	race := strings.TrimSpace(c.Query("race"))
	stock := h.displayStock(c, commodity, race)
	response.Success(c, CommodityView{
		Commodity: *commodity,
		Stock:     stock,
		IsSoldOut: commodity.DeliveryWay == constants.DeliveryWayAuto && stock <= 0,
	})
}

// GetCommodityStock 获取商品库存
func (h *Handler) GetCommodityStock(c *gin.Context) {
	commodity, ok := h.loadListedCommodity(c)
	if !ok {
		return
	}
	race := strings.TrimSpace(c.Query("race"))
	stock := h.displayStock(c, commodity, race)
	response.Success(c, gin.H{
		"commodity_id": commodity.ID,
		"race":         race,
		"stock":        stock,
	})
}

// ListCommodityDrafts 获取商品可预选卡密列表
func (h *Handler) ListCommodityDrafts(c *gin.Context) {
	commodity, ok := h.loadListedCommodity(c)
	if !ok {
		return
	}
	race := strings.TrimSpace(c.Query("race"))
	drafts, err := h.CardService.ListDrafts(commodity.ID, race)
	if err != nil {
		if errors.Is(err, service.ErrDraftNotAllowed) {
			respondError(c, response.CodeBadRequest, "该商品不支持预选卡密", nil)
			return
		}
		respondError(c, response.CodeInternal, "预选卡密获取失败", err)
		return
	}
	response.Success(c, drafts)
}

// ListPaymentMethods 获取可用支付方式
func (h *Handler) ListPaymentMethods(c *gin.Context) {
	methods, err := h.PaymentService.ListPurchaseMethods()
	if err != nil {
		respondError(c, response.CodeInternal, "支付方式获取失败", err)
		return
	}
	response.Success(c, methods)
}

func (h *Handler) loadListedCommodity(c *gin.Context) (*models.Commodity, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "商品 ID 无效", nil)
		return nil, false
	}
	commodity, err := h.CommodityRepo.GetByID(uint(id))
	if err != nil {
		respondError(c, response.CodeInternal, "商品获取失败", err)
		return nil, false
	}
	if commodity == nil || commodity.Status != constants.CommodityStatusListed {
		respondError(c, response.CodeNotFound, "商品不存在或已下架", nil)
		return nil, false
	}
	return commodity, true
}

// displayStock 返回展示用库存。手动发货商品不统计卡密，
// 自动发货商品优先读快照，未命中时直查数据库并回填。
func (h *Handler) displayStock(c *gin.Context, commodity *models.Commodity, race string) int64 {
	if commodity.DeliveryWay != constants.DeliveryWayAuto {
		return 0
	}
	ctx := c.Request.Context()
	if snapshot, hit, err := cache.GetStockSnapshot(ctx, commodity.ID, race); err == nil && hit {
		return snapshot.Count
	}
	stock, err := h.CardService.Stock(commodity.ID, race)
	if err != nil {
		requestLog(c).Warnw("commodity_stock_query_failed",
			"commodity_id", commodity.ID,
			"race", race,
			"error", err,
		)
		return 0
	}
	if err := cache.SetStockSnapshot(ctx, commodity.ID, race, stock); err != nil {
		requestLog(c).Debugw("stock_snapshot_set_failed", "commodity_id", commodity.ID, "error", err)
	}
	return stock
}
