package admin

import (
	"github.com/hairlab-next/internal/http/response"
	"github.com/hairlab-next/internal/repository"
	"github.com/hairlab-next/internal/service"

	"github.com/gin-gonic/gin"
)

// AdjustLoyaltyRequest 管理员积分调整请求
type AdjustLoyaltyRequest struct {
	Delta       int64  `json:"delta" binding:"required"`
	Description string `json:"description" binding:"required"`
}

// AdjustLoyalty 管理员手工调整客户积分。增量带符号，扣减不允许
// 把余额打成负数；流水类型固定为 adjustment。
func (h *Handler) AdjustLoyalty(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	customerID, ok := parseIDParam(c, "customerId")
	if !ok {
		return
	}

	var req AdjustLoyaltyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	txn, err := h.LoyaltyService.AdjustPoints(service.AdminPrincipal(), service.LoyaltyAdjustInput{
		CustomerID:  customerID,
		Delta:       req.Delta,
		Description: req.Description,
	})
	if err != nil {
		respondLoyaltyAdminError(c, err)
		return
	}

	requestLog(c).Infow("loyalty_adjusted",
		"customer_id", customerID,
		"delta", req.Delta,
		"balance_after", txn.BalanceAfter,
		"admin_id", adminID,
	)
	response.Success(c, txn)
}

// GetLoyaltyAccount 查询客户积分账户概要
func (h *Handler) GetLoyaltyAccount(c *gin.Context) {
	customerID, ok := parseIDParam(c, "customerId")
	if !ok {
		return
	}
	summary, err := h.LoyaltyService.GetSummary(customerID)
	if err != nil {
		respondLoyaltyAdminError(c, err)
		return
	}
	response.Success(c, summary)
}

// ListLoyaltyTransactions 查询客户积分流水
func (h *Handler) ListLoyaltyTransactions(c *gin.Context) {
	customerID, ok := parseIDParam(c, "customerId")
	if !ok {
		return
	}
	page, pageSize := parsePagination(c)
	transactions, total, err := h.LoyaltyService.ListTransactions(repository.LoyaltyTransactionListFilter{
		Page:            page,
		PageSize:        pageSize,
		CustomerID:      customerID,
		TransactionType: c.Query("type"),
	})
	if err != nil {
		respondLoyaltyAdminError(c, err)
		return
	}
	response.SuccessWithPage(c, transactions, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}
