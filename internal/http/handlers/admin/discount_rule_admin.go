package admin

import (
	"time"

	"github.com/hairlab-next/internal/http/response"
	"github.com/hairlab-next/internal/models"
	"github.com/hairlab-next/internal/repository"
	"github.com/hairlab-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// DiscountRuleRequest 创建/更新自动折扣规则请求
type DiscountRuleRequest struct {
	Title      string                `json:"title" binding:"required"`
	Type       string                `json:"type" binding:"required"`
	Value      float64               `json:"value"`
	Conditions models.RuleConditions `json:"conditions"`
	Priority   int                   `json:"priority"`
	Stackable  bool                  `json:"stackable"`
	StartsAt   string                `json:"starts_at" binding:"required"`
	ExpiresAt  string                `json:"expires_at" binding:"required"`
	IsActive   *bool                 `json:"is_active"`
}

func (r DiscountRuleRequest) toInput() (service.DiscountRuleInput, error) {
	startsAt, err := parseTimeRequired(r.StartsAt)
	if err != nil {
		return service.DiscountRuleInput{}, err
	}
	expiresAt, err := parseTimeRequired(r.ExpiresAt)
	if err != nil {
		return service.DiscountRuleInput{}, err
	}
	return service.DiscountRuleInput{
		Title:      r.Title,
		Type:       r.Type,
		Value:      models.NewMoneyFromDecimal(decimal.NewFromFloat(r.Value)),
		Conditions: r.Conditions,
		Priority:   r.Priority,
		Stackable:  r.Stackable,
		StartsAt:   startsAt,
		ExpiresAt:  expiresAt,
		IsActive:   r.IsActive,
	}, nil
}

// ListDiscountRules 查询折扣规则列表
func (h *Handler) ListDiscountRules(c *gin.Context) {
	page, pageSize := parsePagination(c)
	rules, total, err := h.DiscountAdminService.ListRules(repository.DiscountRuleListFilter{
		Page:     page,
		PageSize: pageSize,
		Type:     c.Query("type"),
		Search:   c.Query("search"),
		IsActive: parseBoolQuery(c, "is_active"),
	})
	if err != nil {
		respondDiscountAdminError(c, err)
		return
	}
	response.SuccessWithPage(c, rules, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// GetDiscountRule 查询折扣规则详情
func (h *Handler) GetDiscountRule(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	rule, err := h.DiscountAdminService.GetRule(id)
	if err != nil {
		respondDiscountAdminError(c, err)
		return
	}
	response.Success(c, rule)
}

// CreateDiscountRule 创建折扣规则
func (h *Handler) CreateDiscountRule(c *gin.Context) {
	var req DiscountRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "时间格式不合法", err)
		return
	}
	rule, err := h.DiscountAdminService.CreateRule(input)
	if err != nil {
		respondDiscountAdminError(c, err)
		return
	}
	adminID, _ := getAdminID(c)
	requestLog(c).Infow("discount_rule_created", "rule_id", rule.ID, "admin_id", adminID)
	response.Success(c, rule)
}

// UpdateDiscountRule 更新折扣规则
func (h *Handler) UpdateDiscountRule(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req DiscountRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "时间格式不合法", err)
		return
	}
	rule, err := h.DiscountAdminService.UpdateRule(id, input)
	if err != nil {
		respondDiscountAdminError(c, err)
		return
	}
	response.Success(c, rule)
}

// DeactivateDiscountRule 停用折扣规则
func (h *Handler) DeactivateDiscountRule(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	rule, err := h.DiscountAdminService.DeactivateRule(id)
	if err != nil {
		respondDiscountAdminError(c, err)
		return
	}
	response.Success(c, rule)
}

// DeleteDiscountRule 删除折扣规则
func (h *Handler) DeleteDiscountRule(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.DiscountAdminService.DeleteRule(id); err != nil {
		respondDiscountAdminError(c, err)
		return
	}
	response.SuccessWithMsg(c, "删除成功", nil)
}

func parseTimeRequired(raw string) (time.Time, error) {
	return time.Parse(time.RFC3339, raw)
}

func parseTimeNullable(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
