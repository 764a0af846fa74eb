package repository

import (
	"errors"
	"strings"

	"github.com/hairlab-next/internal/models"

	"gorm.io/gorm"
)

// PromotionUsageRepository 促销码使用记录数据访问接口
type PromotionUsageRepository interface {
	CountByPromotion(promotionID uint) (int64, error)
	CountByCustomer(promotionID uint, customerID uint, email string) (int64, error)
	GetByOrder(orderID uint) (*models.PromotionUsage, error)
	Create(usage *models.PromotionUsage) error
	List(filter PromotionUsageListFilter) ([]models.PromotionUsage, int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormPromotionUsageRepository
}

// GormPromotionUsageRepository GORM 促销码使用记录仓储实现
type GormPromotionUsageRepository struct {
	db *gorm.DB
}

// NewPromotionUsageRepository 创建促销码使用记录仓储
func NewPromotionUsageRepository(db *gorm.DB) *GormPromotionUsageRepository {
	return &GormPromotionUsageRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPromotionUsageRepository) WithTx(tx *gorm.DB) *GormPromotionUsageRepository {
	if tx == nil {
		return r
	}
	return &GormPromotionUsageRepository{db: tx}
}

// Transaction 开启事务
func (r *GormPromotionUsageRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// CountByPromotion 统计促销码全局使用次数
func (r *GormPromotionUsageRepository) CountByPromotion(promotionID uint) (int64, error) {
	if promotionID == 0 {
		return 0, nil
	}
	var count int64
	if err := r.db.Model(&models.PromotionUsage{}).
		Where("promotion_id = ?", promotionID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByCustomer 统计促销码对单个客户的使用次数。
// 登录客户按 customer_id 匹配，游客按邮箱匹配。
func (r *GormPromotionUsageRepository) CountByCustomer(promotionID uint, customerID uint, email string) (int64, error) {
	if promotionID == 0 {
		return 0, nil
	}
	query := r.db.Model(&models.PromotionUsage{}).Where("promotion_id = ?", promotionID)
	trimmedEmail := strings.ToLower(strings.TrimSpace(email))
	switch {
	case customerID != 0 && trimmedEmail != "":
		query = query.Where("customer_id = ? OR email = ?", customerID, trimmedEmail)
	case customerID != 0:
		query = query.Where("customer_id = ?", customerID)
	case trimmedEmail != "":
		query = query.Where("email = ?", trimmedEmail)
	default:
		return 0, nil
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GetByOrder 按订单获取使用记录（订单完成事件的幂等键）
func (r *GormPromotionUsageRepository) GetByOrder(orderID uint) (*models.PromotionUsage, error) {
	if orderID == 0 {
		return nil, nil
	}
	var usage models.PromotionUsage
	if err := r.db.Where("order_id = ?", orderID).First(&usage).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &usage, nil
}

// Create 写入使用记录
func (r *GormPromotionUsageRepository) Create(usage *models.PromotionUsage) error {
	return r.db.Create(usage).Error
}

// List 分页查询使用记录
func (r *GormPromotionUsageRepository) List(filter PromotionUsageListFilter) ([]models.PromotionUsage, int64, error) {
	query := r.db.Model(&models.PromotionUsage{})
	if filter.PromotionID != 0 {
		query = query.Where("promotion_id = ?", filter.PromotionID)
	}
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if trimmed := strings.ToLower(strings.TrimSpace(filter.Email)); trimmed != "" {
		query = query.Where("email = ?", trimmed)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var usages []models.PromotionUsage
	if err := query.Order("id DESC").Find(&usages).Error; err != nil {
		return nil, 0, err
	}
	return usages, total, nil
}
