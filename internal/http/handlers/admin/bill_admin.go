package admin

import (
	"strconv"
	"strings"

	"github.com/Leclee/lecfaka/internal/http/response"
	"github.com/Leclee/lecfaka/internal/repository"

	"github.com/gin-gonic/gin"
)

// AdminListBills 账单流水列表
func (h *Handler) AdminListBills(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64)

	bills, total, err := h.SettlementService.ListBills(repository.BillListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uint(userID),
		Currency: strings.TrimSpace(c.Query("currency")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "账单列表获取失败", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, bills, pagination)
}
