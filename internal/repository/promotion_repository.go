package repository

import (
	"errors"
	"strings"

	"github.com/hairlab-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PromotionRepository 促销码数据访问接口
type PromotionRepository interface {
	GetByID(id uint) (*models.Promotion, error)
	GetByCode(code string) (*models.Promotion, error)
	GetByCodeForUpdate(code string) (*models.Promotion, error)
	List(filter PromotionListFilter) ([]models.Promotion, int64, error)
	Create(promo *models.Promotion) error
	Update(promo *models.Promotion) error
	Delete(id uint) error
	WithTx(tx *gorm.DB) *GormPromotionRepository
}

// GormPromotionRepository GORM 促销码仓储实现
type GormPromotionRepository struct {
	db *gorm.DB
}

// NewPromotionRepository 创建促销码仓储
func NewPromotionRepository(db *gorm.DB) *GormPromotionRepository {
	return &GormPromotionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPromotionRepository) WithTx(tx *gorm.DB) *GormPromotionRepository {
	if tx == nil {
		return r
	}
	return &GormPromotionRepository{db: tx}
}

// GetByID 按ID获取促销码
func (r *GormPromotionRepository) GetByID(id uint) (*models.Promotion, error) {
	if id == 0 {
		return nil, nil
	}
	var promo models.Promotion
	if err := r.db.First(&promo, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &promo, nil
}

// GetByCode 按促销码获取（大小写不敏感，统一大写匹配）
func (r *GormPromotionRepository) GetByCode(code string) (*models.Promotion, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, nil
	}
	var promo models.Promotion
	if err := r.db.Where("code = ?", normalized).First(&promo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &promo, nil
}

// GetByCodeForUpdate 按促销码加锁获取（用量计数需要按行串行化）
func (r *GormPromotionRepository) GetByCodeForUpdate(code string) (*models.Promotion, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, nil
	}
	var promo models.Promotion
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("code = ?", normalized).
		First(&promo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &promo, nil
}

// List 分页查询促销码
func (r *GormPromotionRepository) List(filter PromotionListFilter) ([]models.Promotion, int64, error) {
	query := r.db.Model(&models.Promotion{})
	if trimmed := strings.ToUpper(strings.TrimSpace(filter.Code)); trimmed != "" {
		query = query.Where("code LIKE ?", "%"+trimmed+"%")
	}
	if trimmed := strings.TrimSpace(filter.Type); trimmed != "" {
		query = query.Where("type = ?", trimmed)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var promos []models.Promotion
	if err := query.Order("id DESC").Find(&promos).Error; err != nil {
		return nil, 0, err
	}
	return promos, total, nil
}

// Create 创建促销码
func (r *GormPromotionRepository) Create(promo *models.Promotion) error {
	return r.db.Create(promo).Error
}

// Update 更新促销码
func (r *GormPromotionRepository) Update(promo *models.Promotion) error {
	return r.db.Save(promo).Error
}

// Delete 软删除促销码
func (r *GormPromotionRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Delete(&models.Promotion{}, id).Error
}
