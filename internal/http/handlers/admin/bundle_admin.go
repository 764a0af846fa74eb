package admin

import (
	"github.com/hairlab-next/internal/http/response"
	"github.com/hairlab-next/internal/models"
	"github.com/hairlab-next/internal/repository"
	"github.com/hairlab-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ProductBundleRequest 创建/更新套装请求
type ProductBundleRequest struct {
	Title         string  `json:"title" binding:"required"`
	ProductIDs    []uint  `json:"product_ids" binding:"required"`
	DiscountType  string  `json:"discount_type" binding:"required"`
	DiscountValue float64 `json:"discount_value"`
	IsActive      *bool   `json:"is_active"`
}

func (r ProductBundleRequest) toInput() service.ProductBundleInput {
	return service.ProductBundleInput{
		Title:         r.Title,
		ProductIDs:    r.ProductIDs,
		DiscountType:  r.DiscountType,
		DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromFloat(r.DiscountValue)),
		IsActive:      r.IsActive,
	}
}

// ListBundles 查询套装列表
func (h *Handler) ListBundles(c *gin.Context) {
	page, pageSize := parsePagination(c)
	bundles, total, err := h.DiscountAdminService.ListBundles(repository.ProductBundleListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
		IsActive: parseBoolQuery(c, "is_active"),
	})
	if err != nil {
		respondDiscountAdminError(c, err)
		return
	}
	response.SuccessWithPage(c, bundles, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// GetBundle 查询套装详情
func (h *Handler) GetBundle(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	bundle, err := h.DiscountAdminService.GetBundle(id)
	if err != nil {
		respondDiscountAdminError(c, err)
		return
	}
	response.Success(c, bundle)
}

// CreateBundle 创建套装
func (h *Handler) CreateBundle(c *gin.Context) {
	var req ProductBundleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	bundle, err := h.DiscountAdminService.CreateBundle(req.toInput())
	if err != nil {
		respondDiscountAdminError(c, err)
		return
	}
	adminID, _ := getAdminID(c)
	requestLog(c).Infow("product_bundle_created", "bundle_id", bundle.ID, "admin_id", adminID)
	response.Success(c, bundle)
}

// UpdateBundle 更新套装
func (h *Handler) UpdateBundle(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req ProductBundleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	bundle, err := h.DiscountAdminService.UpdateBundle(id, req.toInput())
	if err != nil {
		respondDiscountAdminError(c, err)
		return
	}
	response.Success(c, bundle)
}

// DeleteBundle 删除套装
func (h *Handler) DeleteBundle(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.DiscountAdminService.DeleteBundle(id); err != nil {
		respondDiscountAdminError(c, err)
		return
	}
	response.SuccessWithMsg(c, "删除成功", nil)
}
