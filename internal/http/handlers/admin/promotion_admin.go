package admin

import (
	"github.com/hairlab-next/internal/http/response"
	"github.com/hairlab-next/internal/models"
	"github.com/hairlab-next/internal/repository"
	"github.com/hairlab-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// PromotionRequest 创建/更新促销码请求
type PromotionRequest struct {
	Code              string  `json:"code" binding:"required"`
	Title             string  `json:"title"`
	Type              string  `json:"type" binding:"required"`
	Value             float64 `json:"value"`
	MinOrderAmount    float64 `json:"min_order_amount"`
	MaxDiscountAmount float64 `json:"max_discount_amount"`
	UsageLimit        int     `json:"usage_limit"`
	PerCustomerLimit  int     `json:"per_customer_limit"`
	StartsAt          string  `json:"starts_at"`
	ExpiresAt         string  `json:"expires_at"`
	IsActive          *bool   `json:"is_active"`
}

func (r PromotionRequest) toInput() (service.PromotionInput, error) {
	startsAt, err := parseTimeNullable(r.StartsAt)
	if err != nil {
		return service.PromotionInput{}, err
	}
	expiresAt, err := parseTimeNullable(r.ExpiresAt)
	if err != nil {
		return service.PromotionInput{}, err
	}
	return service.PromotionInput{
		Code:              r.Code,
		Title:             r.Title,
		Type:              r.Type,
		Value:             models.NewMoneyFromDecimal(decimal.NewFromFloat(r.Value)),
		MinOrderAmount:    models.NewMoneyFromDecimal(decimal.NewFromFloat(r.MinOrderAmount)),
		MaxDiscountAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(r.MaxDiscountAmount)),
		UsageLimit:        r.UsageLimit,
		PerCustomerLimit:  r.PerCustomerLimit,
		StartsAt:          startsAt,
		ExpiresAt:         expiresAt,
		IsActive:          r.IsActive,
	}, nil
}

// ListPromotions 查询促销码列表
func (h *Handler) ListPromotions(c *gin.Context) {
	page, pageSize := parsePagination(c)
	promos, total, err := h.PromoAdminService.List(repository.PromotionListFilter{
		Page:     page,
		PageSize: pageSize,
		Code:     c.Query("code"),
		Type:     c.Query("type"),
		IsActive: parseBoolQuery(c, "is_active"),
	})
	if err != nil {
		respondPromoAdminError(c, err)
		return
	}
	response.SuccessWithPage(c, promos, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// GetPromotion 查询促销码详情
func (h *Handler) GetPromotion(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	promo, err := h.PromoAdminService.Get(id)
	if err != nil {
		respondPromoAdminError(c, err)
		return
	}
	response.Success(c, promo)
}

// ListPromotionUsages 查询促销码使用记录
func (h *Handler) ListPromotionUsages(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	page, pageSize := parsePagination(c)
	usages, total, err := h.PromoAdminService.ListUsages(repository.PromotionUsageListFilter{
		Page:        page,
		PageSize:    pageSize,
		PromotionID: id,
		Email:       c.Query("email"),
	})
	if err != nil {
		respondPromoAdminError(c, err)
		return
	}
	response.SuccessWithPage(c, usages, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// CreatePromotion 创建促销码
func (h *Handler) CreatePromotion(c *gin.Context) {
	var req PromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "时间格式不合法", err)
		return
	}
	promo, err := h.PromoAdminService.Create(input)
	if err != nil {
		respondPromoAdminError(c, err)
		return
	}
	adminID, _ := getAdminID(c)
	requestLog(c).Infow("promotion_created", "promotion_id", promo.ID, "code", promo.Code, "admin_id", adminID)
	response.Success(c, promo)
}

// UpdatePromotion 更新促销码
func (h *Handler) UpdatePromotion(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req PromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "时间格式不合法", err)
		return
	}
	promo, err := h.PromoAdminService.Update(id, input)
	if err != nil {
		respondPromoAdminError(c, err)
		return
	}
	response.Success(c, promo)
}

// DeactivatePromotion 停用促销码
func (h *Handler) DeactivatePromotion(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	promo, err := h.PromoAdminService.Deactivate(id)
	if err != nil {
		respondPromoAdminError(c, err)
		return
	}
	response.Success(c, promo)
}

// DeletePromotion 删除促销码
func (h *Handler) DeletePromotion(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.PromoAdminService.Delete(id); err != nil {
		respondPromoAdminError(c, err)
		return
	}
	response.SuccessWithMsg(c, "删除成功", nil)
}
