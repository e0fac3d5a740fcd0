package public

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// PaymentCallback 支付网关异步回调入口
// 应答内容由各网关协议约定，始终以 200 返回。
func (h *Handler) PaymentCallback(c *gin.Context) {
	handle := strings.TrimSpace(c.Param("handle"))
	requestLog(c).Infow("payment_callback_received",
		"handle", handle,
		"method", c.Request.Method,
		"client_ip", c.ClientIP(),
		"content_type", strings.TrimSpace(c.GetHeader("Content-Type")),
	)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		requestLog(c).Warnw("payment_callback_body_read_failed", "handle", handle, "error", err)
		body = nil
	}
	c.Request.Body = io.NopCloser(strings.NewReader(string(body)))

	form, err := parseCallbackForm(c)
	if err != nil {
		requestLog(c).Warnw("payment_callback_form_parse_failed", "handle", handle, "error", err)
		form = nil
	}

	ack := h.PaymentService.HandleCallback(handle, form, body)
	c.String(http.StatusOK, ack)
}

// parseCallbackForm 合并请求体与 URL 查询参数。
// 网关可能把部分参数追加在通知地址上，只取 PostForm 会丢掉这部分。
func parseCallbackForm(c *gin.Context) (map[string][]string, error) {
	if err := c.Request.ParseForm(); err != nil {
		return nil, err
	}
	return c.Request.Form, nil
}
