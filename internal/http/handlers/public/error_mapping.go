package public

import (
	"errors"

	"github.com/Leclee/lecfaka/internal/http/response"
	"github.com/Leclee/lecfaka/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var orderValidationErrorRules = []mappedHandlerError{
	{target: service.ErrCommodityNotFound, code: response.CodeNotFound, msg: "商品不存在或已下架"},
	{target: service.ErrQuantityInvalid, code: response.CodeBadRequest, msg: "购买数量无效"},
	{target: service.ErrLoginRequired, code: response.CodeUnauthorized, msg: "请先登录"},
	{target: service.ErrContactRequired, code: response.CodeBadRequest, msg: "请填写联系方式"},
	{target: service.ErrPurchaseCapReached, code: response.CodeBadRequest, msg: "已达到该商品限购数量"},
	{target: service.ErrDraftNotAllowed, code: response.CodeBadRequest, msg: "该商品不支持预选卡密"},
	{target: service.ErrDraftQuantityLimit, code: response.CodeBadRequest, msg: "预选卡密时数量只能为 1"},
	{target: service.ErrCardNotFound, code: response.CodeNotFound, msg: "预选卡密不存在"},
	{target: service.ErrPreSelectedTaken, code: response.CodeBadRequest, msg: "预选卡密已被购买"},
	{target: service.ErrStockInsufficient, code: response.CodeBadRequest, msg: "库存不足"},
	{target: service.ErrPaymentMethodNotFound, code: response.CodeNotFound, msg: "支付方式不可用"},
}

var orderCouponErrorRules = []mappedHandlerError{
	{target: service.ErrCouponInvalid, code: response.CodeBadRequest, msg: "优惠码无效"},
	{target: service.ErrCouponExpired, code: response.CodeBadRequest, msg: "优惠码已过期"},
	{target: service.ErrCouponExhausted, code: response.CodeBadRequest, msg: "优惠码已被用完"},
	{target: service.ErrCouponScopeMismatch, code: response.CodeBadRequest, msg: "优惠码不适用于该商品"},
	{target: service.ErrCouponValueTooLarge, code: response.CodeBadRequest, msg: "优惠金额超过订单金额"},
}

var orderSettleErrorRules = []mappedHandlerError{
	{target: service.ErrBalanceInsufficient, code: response.CodeBadRequest, msg: "余额不足"},
	{target: service.ErrOrderStatusInvalid, code: response.CodeBadRequest, msg: "订单状态不允许该操作"},
	{target: service.ErrTradeNoGenerate, code: response.CodeInternal, msg: "订单号生成失败，请重试"},
	{target: service.ErrPaymentCreateFailed, code: response.CodeInternal, msg: "支付下单失败，请稍后重试"},
}

var orderQueryErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "订单不存在"},
	{target: service.ErrLookupDenied, code: response.CodeUnauthorized, msg: "无权查看该订单"},
}

func respondOrderCreateError(c *gin.Context, err error) {
	rules := concatMappedHandlerErrors(orderValidationErrorRules, orderCouponErrorRules, orderSettleErrorRules)
	respondWithMappedError(c, err, rules, response.CodeInternal, "下单失败")
}

func respondOrderQueryError(c *gin.Context, err error) {
	respondWithMappedError(c, err, orderQueryErrorRules, response.CodeInternal, "订单查询失败")
}
