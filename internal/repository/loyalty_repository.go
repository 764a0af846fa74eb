package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/hairlab-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LoyaltyRepository 积分账户与流水数据访问接口
type LoyaltyRepository interface {
	GetAccountByCustomerID(customerID uint) (*models.LoyaltyAccount, error)
	GetAccountByCustomerIDForUpdate(customerID uint) (*models.LoyaltyAccount, error)
	GetAccountByReferralCode(code string) (*models.LoyaltyAccount, error)
	CreateAccount(account *models.LoyaltyAccount) error
	UpdateAccountGuarded(account *models.LoyaltyAccount, expectedBalance int64) (bool, error)
	CreateTransaction(txn *models.LoyaltyTransaction) error
	GetTransactionByOrderAndType(customerID uint, orderID uint, txnType string) (*models.LoyaltyTransaction, error)
	HasReferralCreditFor(referrerCustomerID uint, refereeCustomerID uint) (bool, error)
	ListTransactions(filter LoyaltyTransactionListFilter) ([]models.LoyaltyTransaction, int64, error)
	ListAccountsWithBalance() ([]models.LoyaltyAccount, error)
	SumAccruedBefore(customerID uint, cutoff time.Time) (int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormLoyaltyRepository
}

// GormLoyaltyRepository GORM 积分仓储实现
type GormLoyaltyRepository struct {
	db *gorm.DB
}

// NewLoyaltyRepository 创建积分仓储
func NewLoyaltyRepository(db *gorm.DB) *GormLoyaltyRepository {
	return &GormLoyaltyRepository{db: db}
}

// WithTx 绑定事务
func (r *GormLoyaltyRepository) WithTx(tx *gorm.DB) *GormLoyaltyRepository {
	if tx == nil {
		return r
	}
	return &GormLoyaltyRepository{db: tx}
}

// Transaction 开启事务
func (r *GormLoyaltyRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// GetAccountByCustomerID 按客户ID获取积分账户
func (r *GormLoyaltyRepository) GetAccountByCustomerID(customerID uint) (*models.LoyaltyAccount, error) {
	if customerID == 0 {
		return nil, nil
	}
	var account models.LoyaltyAccount
	if err := r.db.Where("customer_id = ?", customerID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// GetAccountByCustomerIDForUpdate 按客户ID加锁获取积分账户
func (r *GormLoyaltyRepository) GetAccountByCustomerIDForUpdate(customerID uint) (*models.LoyaltyAccount, error) {
	if customerID == 0 {
		return nil, nil
	}
	var account models.LoyaltyAccount
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("customer_id = ?", customerID).
		First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// GetAccountByReferralCode 按推荐码获取积分账户
func (r *GormLoyaltyRepository) GetAccountByReferralCode(code string) (*models.LoyaltyAccount, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, nil
	}
	var account models.LoyaltyAccount
	if err := r.db.Where("referral_code = ?", normalized).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// CreateAccount 创建积分账户
func (r *GormLoyaltyRepository) CreateAccount(account *models.LoyaltyAccount) error {
	return r.db.Create(account).Error
}

// UpdateAccountGuarded 以余额为乐观校验条件更新账户。
// 返回 false 表示余额已被并发修改，调用方应整体重试。
func (r *GormLoyaltyRepository) UpdateAccountGuarded(account *models.LoyaltyAccount, expectedBalance int64) (bool, error) {
	if account == nil || account.ID == 0 {
		return false, errors.New("loyalty account is nil")
	}
	result := r.db.Model(&models.LoyaltyAccount{}).
		Where("id = ? AND points_balance = ?", account.ID, expectedBalance).
		Updates(map[string]interface{}{
			"points_balance": account.PointsBalance,
			"total_earned":   account.TotalEarned,
			"total_spent":    account.TotalSpent,
			"level":          account.Level,
			"referred_by":    account.ReferredBy,
			"is_enabled":     account.IsEnabled,
			"updated_at":     account.UpdatedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// CreateTransaction 追加积分流水
func (r *GormLoyaltyRepository) CreateTransaction(txn *models.LoyaltyTransaction) error {
	return r.db.Create(txn).Error
}

// GetTransactionByOrderAndType 按订单与类型获取流水（订单维度幂等键）
func (r *GormLoyaltyRepository) GetTransactionByOrderAndType(customerID uint, orderID uint, txnType string) (*models.LoyaltyTransaction, error) {
	if customerID == 0 || orderID == 0 {
		return nil, nil
	}
	var txn models.LoyaltyTransaction
	if err := r.db.
		Where("customer_id = ? AND order_id = ? AND transaction_type = ?", customerID, orderID, txnType).
		First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// HasReferralCreditFor 判断推荐人是否已因该被推荐客户得过 referral
// 奖励（每对推荐关系只奖励一次）
func (r *GormLoyaltyRepository) HasReferralCreditFor(referrerCustomerID uint, refereeCustomerID uint) (bool, error) {
	if referrerCustomerID == 0 || refereeCustomerID == 0 {
		return false, nil
	}
	var count int64
	if err := r.db.Model(&models.LoyaltyTransaction{}).
		Where("customer_id = ? AND transaction_type = ? AND related_customer_id = ?",
			referrerCustomerID, "referral", refereeCustomerID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListAccountsWithBalance 列出有可用积分且参与计划的账户（过期清扫用）
func (r *GormLoyaltyRepository) ListAccountsWithBalance() ([]models.LoyaltyAccount, error) {
	var accounts []models.LoyaltyAccount
	if err := r.db.
		Where("points_balance > 0 AND is_enabled = ?", true).
		Order("id ASC").
		Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// SumAccruedBefore 统计截止时间前入账的积分总额（earned/welcome/referral
// 及正向 adjustment），配合 total_spent 按先进先出推算可过期积分。
func (r *GormLoyaltyRepository) SumAccruedBefore(customerID uint, cutoff time.Time) (int64, error) {
	if customerID == 0 {
		return 0, nil
	}
	var total int64
	err := r.db.Model(&models.LoyaltyTransaction{}).
		Select("COALESCE(SUM(points_amount), 0)").
		Where("customer_id = ? AND created_at < ?", customerID, cutoff).
		Where("transaction_type IN (?) OR (transaction_type = ? AND points_amount > 0)",
			[]string{"earned", "welcome", "referral"}, "adjustment").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

// ListTransactions 分页查询积分流水（按时间倒序）
func (r *GormLoyaltyRepository) ListTransactions(filter LoyaltyTransactionListFilter) ([]models.LoyaltyTransaction, int64, error) {
	query := r.db.Model(&models.LoyaltyTransaction{})
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if trimmed := strings.TrimSpace(filter.TransactionType); trimmed != "" {
		query = query.Where("transaction_type = ?", trimmed)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at < ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var txns []models.LoyaltyTransaction
	if err := query.Order("created_at DESC, id DESC").Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}
