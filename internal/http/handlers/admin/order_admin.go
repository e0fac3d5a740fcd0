package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/Leclee/lecfaka/internal/http/response"
	"github.com/Leclee/lecfaka/internal/repository"
	"github.com/Leclee/lecfaka/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminListOrders 订单列表
func (h *Handler) AdminListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64)

	orders, total, err := h.OrderService.ListOrders(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uint(userID),
		Status:   strings.TrimSpace(c.Query("status")),
		TradeNo:  strings.TrimSpace(c.Query("trade_no")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "订单列表获取失败", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, orders, pagination)
}

// FulfillOrderRequest 手动发货请求
type FulfillOrderRequest struct {
	Secret string `json:"secret" binding:"required"`
}

// AdminFulfillOrder 手动发货
func (h *Handler) AdminFulfillOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req FulfillOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	if err := h.OrderService.FulfillManual(orderID, req.Secret); err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "订单不存在", nil)
		case errors.Is(err, service.ErrSecretRequired):
			respondError(c, response.CodeBadRequest, "发货内容不能为空", nil)
		case errors.Is(err, service.ErrOrderStatusInvalid):
			respondError(c, response.CodeBadRequest, "订单状态不允许发货", nil)
		default:
			respondError(c, response.CodeInternal, "发货失败", err)
		}
		return
	}
	response.Success(c, nil)
}

// RefundOrderRequest 订单退款请求
type RefundOrderRequest struct {
	Remark string `json:"remark"`
}

// AdminRefundOrder 订单退款至余额
func (h *Handler) AdminRefundOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req RefundOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	order, err := h.SettlementService.RefundToBalance(orderID, strings.TrimSpace(req.Remark))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "订单不存在", nil)
		case errors.Is(err, service.ErrOrderStatusInvalid):
			respondError(c, response.CodeBadRequest, "订单状态不允许退款", nil)
		default:
			respondError(c, response.CodeInternal, "退款失败", err)
		}
		return
	}

	requestLog(c).Infow("order_refunded",
		"order_id", order.ID,
		"trade_no", order.TradeNo,
		"amount", order.Amount.String(),
	)
	response.Success(c, order)
}
