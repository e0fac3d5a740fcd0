package public

import (
	"strconv"
	"strings"

	"github.com/Leclee/lecfaka/internal/http/response"
	"github.com/Leclee/lecfaka/internal/repository"
	"github.com/Leclee/lecfaka/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	CommodityID     uint   `json:"commodity_id" binding:"required"`
	PaymentMethodID uint   `json:"payment_method_id" binding:"required"`
	Quantity        int    `json:"quantity" binding:"required"`
	Race            string `json:"race"`
	Contact         string `json:"contact"`
	LookupPassword  string `json:"lookup_password"`
	CouponCode      string `json:"coupon_code"`
	CardID          uint   `json:"card_id"`
}

// CreateOrder 创建订单（游客与登录用户共用入口）
func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	result, err := h.OrderService.CreateOrder(c.Request.Context(), service.CreateOrderInput{
		UserID:          optionalUserID(c),
		CommodityID:     req.CommodityID,
		PaymentMethodID: req.PaymentMethodID,
		Quantity:        req.Quantity,
		Race:            strings.TrimSpace(req.Race),
		Contact:         strings.TrimSpace(req.Contact),
		LookupPassword:  req.LookupPassword,
		CouponCode:      strings.TrimSpace(req.CouponCode),
		CardID:          req.CardID,
		ClientIP:        c.ClientIP(),
	})
	if err != nil {
		respondOrderCreateError(c, err)
		return
	}

	response.Success(c, result)
}

// QueryOrder 按订单号查询订单
// 登录用户校验归属，游客凭查单密码查询。
func (h *Handler) QueryOrder(c *gin.Context) {
	tradeNo := strings.TrimSpace(c.Param("trade_no"))
	if tradeNo == "" {
		respondError(c, response.CodeBadRequest, "订单号无效", nil)
		return
	}
	lookupPassword := c.Query("password")

	order, err := h.OrderService.QueryByTradeNo(tradeNo, optionalUserID(c), lookupPassword)
	if err != nil {
		respondOrderQueryError(c, err)
		return
	}

	response.Success(c, order)
}

// ListMyOrders 获取当前用户订单列表
func (h *Handler) ListMyOrders(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	status := strings.TrimSpace(c.Query("status"))

	orders, total, err := h.OrderService.ListOrders(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uid,
		Status:   status,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "订单列表获取失败", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, orders, pagination)
}
