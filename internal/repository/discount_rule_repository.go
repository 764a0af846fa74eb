package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/hairlab-next/internal/models"

	"gorm.io/gorm"
)

// DiscountRuleRepository 折扣规则数据访问接口
type DiscountRuleRepository interface {
	GetByID(id uint) (*models.DiscountRule, error)
	ListActiveAt(now time.Time) ([]models.DiscountRule, error)
	List(filter DiscountRuleListFilter) ([]models.DiscountRule, int64, error)
	Create(rule *models.DiscountRule) error
	Update(rule *models.DiscountRule) error
	Delete(id uint) error
}

// GormDiscountRuleRepository GORM 折扣规则仓储实现
type GormDiscountRuleRepository struct {
	db *gorm.DB
}

// NewDiscountRuleRepository 创建折扣规则仓储
func NewDiscountRuleRepository(db *gorm.DB) *GormDiscountRuleRepository {
	return &GormDiscountRuleRepository{db: db}
}

// GetByID 按ID获取折扣规则
func (r *GormDiscountRuleRepository) GetByID(id uint) (*models.DiscountRule, error) {
	if id == 0 {
		return nil, nil
	}
	var rule models.DiscountRule
	if err := r.db.First(&rule, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

// ListActiveAt 查询指定时刻启用且在有效期内的规则，
// 按优先级降序、ID 升序返回（评估顺序即此顺序）。
func (r *GormDiscountRuleRepository) ListActiveAt(now time.Time) ([]models.DiscountRule, error) {
	var rules []models.DiscountRule
	if err := r.db.
		Where("is_active = ?", true).
		Where("starts_at <= ? AND expires_at > ?", now, now).
		Order("priority DESC, id ASC").
		Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// List 分页查询折扣规则
func (r *GormDiscountRuleRepository) List(filter DiscountRuleListFilter) ([]models.DiscountRule, int64, error) {
	query := r.db.Model(&models.DiscountRule{})
	if trimmed := strings.TrimSpace(filter.Type); trimmed != "" {
		query = query.Where("type = ?", trimmed)
	}
	if trimmed := strings.TrimSpace(filter.Search); trimmed != "" {
		query = query.Where("title LIKE ?", "%"+trimmed+"%")
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.OnlyInWindowAt != nil {
		query = query.Where("starts_at <= ? AND expires_at > ?", *filter.OnlyInWindowAt, *filter.OnlyInWindowAt)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var rules []models.DiscountRule
	if err := query.Order("priority DESC, id ASC").Find(&rules).Error; err != nil {
		return nil, 0, err
	}
	return rules, total, nil
}

// Create 创建折扣规则
func (r *GormDiscountRuleRepository) Create(rule *models.DiscountRule) error {
	return r.db.Create(rule).Error
}

// Update 更新折扣规则
func (r *GormDiscountRuleRepository) Update(rule *models.DiscountRule) error {
	return r.db.Save(rule).Error
}

// Delete 软删除折扣规则
func (r *GormDiscountRuleRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Delete(&models.DiscountRule{}, id).Error
}
