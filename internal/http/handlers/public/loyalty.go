package public

import (
	"strconv"

	handlershared "github.com/hairlab-next/internal/http/handlers/shared"
	"github.com/hairlab-next/internal/http/response"
	"github.com/hairlab-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// LoyaltySummary 查询当前客户的积分账户概要，账户不存在时自动开户。
func (h *Handler) LoyaltySummary(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}

	summary, err := h.LoyaltyService.GetSummary(customerID)
	if err != nil {
		respondLoyaltyError(c, err)
		return
	}

	response.Success(c, summary)
}

// LoyaltyTransactions 分页查询当前客户的积分流水。
func (h *Handler) LoyaltyTransactions(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	transactions, total, err := h.LoyaltyService.ListTransactions(repository.LoyaltyTransactionListFilter{
		Page:            page,
		PageSize:        pageSize,
		CustomerID:      customerID,
		TransactionType: c.Query("type"),
	})
	if err != nil {
		respondLoyaltyError(c, err)
		return
	}

	response.SuccessWithPage(c, transactions, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// ApplyReferralRequest 使用推荐码请求
type ApplyReferralRequest struct {
	Code string `json:"code" binding:"required"`
}

// ApplyReferral 绑定推荐人并给当前客户发放受荐奖励。
// 每个客户只能使用一次推荐码。
func (h *Handler) ApplyReferral(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}

	var req ApplyReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	account, err := h.LoyaltyService.ApplyReferralCode(customerID, req.Code)
	if err != nil {
		respondLoyaltyError(c, err)
		return
	}

	response.SuccessWithMsg(c, "推荐码使用成功", gin.H{
		"points_balance": account.PointsBalance,
		"referred_by":    account.ReferredBy,
	})
}
