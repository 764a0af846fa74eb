package repository

import "time"

// DiscountRuleListFilter 查询折扣规则列表的过滤条件
type DiscountRuleListFilter struct {
	Page           int
	PageSize       int
	Type           string
	Search         string
	IsActive       *bool
	OnlyInWindowAt *time.Time
}

// ProductBundleListFilter 查询套装列表的过滤条件
type ProductBundleListFilter struct {
	Page     int
	PageSize int
	Search   string
	IsActive *bool
}

// PromotionListFilter 查询促销码列表的过滤条件
type PromotionListFilter struct {
	Page     int
	PageSize int
	Code     string
	Type     string
	IsActive *bool
}

// PromotionUsageListFilter 查询促销码使用记录的过滤条件
type PromotionUsageListFilter struct {
	Page        int
	PageSize    int
	PromotionID uint
	CustomerID  uint
	Email       string
}

// LoyaltyTransactionListFilter 查询积分流水的过滤条件
type LoyaltyTransactionListFilter struct {
	Page            int
	PageSize        int
	CustomerID      uint
	TransactionType string
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}
