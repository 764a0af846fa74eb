package repository

import (
	"errors"
	"strings"

	"github.com/hairlab-next/internal/models"

	"gorm.io/gorm"
)

// ProductBundleRepository 套装折扣数据访问接口
type ProductBundleRepository interface {
	GetByID(id uint) (*models.ProductBundle, error)
	ListActive() ([]models.ProductBundle, error)
	List(filter ProductBundleListFilter) ([]models.ProductBundle, int64, error)
	Create(bundle *models.ProductBundle) error
	Update(bundle *models.ProductBundle) error
	Delete(id uint) error
}

// GormProductBundleRepository GORM 套装折扣仓储实现
type GormProductBundleRepository struct {
	db *gorm.DB
}

// NewProductBundleRepository 创建套装折扣仓储
func NewProductBundleRepository(db *gorm.DB) *GormProductBundleRepository {
	return &GormProductBundleRepository{db: db}
}

// GetByID 按ID获取套装
func (r *GormProductBundleRepository) GetByID(id uint) (*models.ProductBundle, error) {
	if id == 0 {
		return nil, nil
	}
	var bundle models.ProductBundle
	if err := r.db.First(&bundle, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &bundle, nil
}

// ListActive 查询全部启用的套装
func (r *GormProductBundleRepository) ListActive() ([]models.ProductBundle, error) {
	var bundles []models.ProductBundle
	if err := r.db.Where("is_active = ?", true).Order("id ASC").Find(&bundles).Error; err != nil {
		return nil, err
	}
	return bundles, nil
}

// List 分页查询套装
func (r *GormProductBundleRepository) List(filter ProductBundleListFilter) ([]models.ProductBundle, int64, error) {
	query := r.db.Model(&models.ProductBundle{})
	if trimmed := strings.TrimSpace(filter.Search); trimmed != "" {
		query = query.Where("title LIKE ?", "%"+trimmed+"%")
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var bundles []models.ProductBundle
	if err := query.Order("id ASC").Find(&bundles).Error; err != nil {
		return nil, 0, err
	}
	return bundles, total, nil
}

// Create 创建套装
func (r *GormProductBundleRepository) Create(bundle *models.ProductBundle) error {
	return r.db.Create(bundle).Error
}

// Update 更新套装
func (r *GormProductBundleRepository) Update(bundle *models.ProductBundle) error {
	return r.db.Save(bundle).Error
}

// Delete 软删除套装
func (r *GormProductBundleRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Delete(&models.ProductBundle{}, id).Error
}
