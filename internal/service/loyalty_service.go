package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/hairlab-next/internal/cache"
	"github.com/hairlab-next/internal/config"
	"github.com/hairlab-next/internal/constants"
	"github.com/hairlab-next/internal/logger"
	"github.com/hairlab-next/internal/models"
	"github.com/hairlab-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const defaultReferralCodeLength = 8
const loyaltySummaryCacheTTL = 60 * time.Second

func loyaltySummaryCacheKey(customerID uint) string {
	return fmt.Sprintf("loyalty:summary:%d", customerID)
}

// LoyaltyService 积分账户与流水服务。账户随首个积分事件懒创建，
// 流水只追加；balance_after 与账户余额在同一事务内保持一致。
type LoyaltyService struct {
	repo repository.LoyaltyRepository
	cfg  config.LoyaltyConfig
}

// NewLoyaltyService 创建积分服务
func NewLoyaltyService(repo repository.LoyaltyRepository, cfg config.LoyaltyConfig) *LoyaltyService {
	return &LoyaltyService{repo: repo, cfg: cfg}
}

// LoyaltyEarnInput 下单获得积分输入
type LoyaltyEarnInput struct {
	CustomerID  uint
	OrderID     uint
	BaseAmount  models.Money // 计点基数（折后商品小计，不含运费）
	Description string
}

// LoyaltySpendInput 积分抵扣输入
type LoyaltySpendInput struct {
	CustomerID  uint
	OrderID     uint
	Points      int64
	Subtotal    models.Money // 本单折后小计，用于校验抵扣上限；零值跳过校验
	Description string
}

// LoyaltyAdjustInput 管理员积分调整输入
type LoyaltyAdjustInput struct {
	CustomerID  uint
	Delta       int64 // 带符号增量
	Description string
}

// LoyaltySummary 积分账户概要
type LoyaltySummary struct {
	CustomerID         uint    `json:"customer_id"`
	PointsBalance      int64   `json:"points_balance"`
	TotalEarned        int64   `json:"total_earned"`
	TotalSpent         int64   `json:"total_spent"`
	Level              string  `json:"level"`
	Multiplier         float64 `json:"multiplier"`
	NextLevel          string  `json:"next_level,omitempty"`
	NextLevelThreshold int64   `json:"next_level_threshold,omitempty"`
	PointsToNextLevel  int64   `json:"points_to_next_level,omitempty"`
	ReferralCode       string  `json:"referral_code"`
	ReferredBy         string  `json:"referred_by,omitempty"`
	IsEnabled          bool    `json:"is_enabled"`
}

// GetOrCreateAccount 获取积分账户，不存在时创建（零余额、bronze、
// 唯一推荐码，撞码重试）。开户奖励在创建事务内一并入账。
func (s *LoyaltyService) GetOrCreateAccount(customerID uint) (*models.LoyaltyAccount, error) {
	if customerID == 0 {
		return nil, ErrLoyaltyAccountNotFound
	}
	existing, err := s.repo.GetAccountByCustomerID(customerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	const maxRetry = 8
	for i := 0; i < maxRetry; i++ {
		code, genErr := generateReferralCode(s.referralCodeLength())
		if genErr != nil {
			return nil, genErr
		}
		now := time.Now()
		account := &models.LoyaltyAccount{
			CustomerID:   customerID,
			Level:        constants.LoyaltyLevelBronze,
			ReferralCode: code,
			IsEnabled:    true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		err := s.repo.Transaction(func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			if err := repo.CreateAccount(account); err != nil {
				return err
			}
			if s.cfg.WelcomeBonus > 0 {
				_, err := s.creditInTx(repo, account, constants.LoyaltyTxnTypeWelcome, s.cfg.WelcomeBonus, nil, 0, "开户奖励")
				return err
			}
			return nil
		})
		if err != nil {
			if isUniqueViolation(err) {
				// 可能撞了 referral_code，也可能并发下别处已建好该客户账户
				again, getErr := s.repo.GetAccountByCustomerID(customerID)
				if getErr != nil {
					return nil, getErr
				}
				if again != nil {
					return again, nil
				}
				continue
			}
			return nil, err
		}
		logger.Infow("loyalty_account_created",
			"customer_id", customerID,
			"referral_code", account.ReferralCode,
			"welcome_bonus", s.cfg.WelcomeBonus,
		)
		return account, nil
	}
	return nil, ErrLoyaltyCodeGenerateFailed
}

// GetSummary 获取积分账户概要（含升级进度）。结果短暂缓存，
// 任一积分变动都会使该客户的缓存失效。
func (s *LoyaltyService) GetSummary(customerID uint) (*LoyaltySummary, error) {
	var cached LoyaltySummary
	hit, cacheErr := cache.GetJSON(context.Background(), loyaltySummaryCacheKey(customerID), &cached)
	if cacheErr != nil {
		logger.Warnw("loyalty_summary_cache_read_failed", "customer_id", customerID, "error", cacheErr)
	}
	if cacheErr == nil && hit {
		return &cached, nil
	}

	account, err := s.GetOrCreateAccount(customerID)
	if err != nil {
		return nil, err
	}
	summary := &LoyaltySummary{
		CustomerID:    account.CustomerID,
		PointsBalance: account.PointsBalance,
		TotalEarned:   account.TotalEarned,
		TotalSpent:    account.TotalSpent,
		Level:         account.Level,
		Multiplier:    s.levelMultiplier(account.Level),
		ReferralCode:  account.ReferralCode,
		ReferredBy:    account.ReferredBy,
		IsEnabled:     account.IsEnabled,
	}
	switch account.Level {
	case constants.LoyaltyLevelBronze:
		summary.NextLevel = constants.LoyaltyLevelSilver
		summary.NextLevelThreshold = s.cfg.SilverThreshold
	case constants.LoyaltyLevelSilver:
		summary.NextLevel = constants.LoyaltyLevelGold
		summary.NextLevelThreshold = s.cfg.GoldThreshold
	}
	if summary.NextLevel != "" {
		remaining := summary.NextLevelThreshold - account.TotalEarned
		if remaining < 0 {
			remaining = 0
		}
		summary.PointsToNextLevel = remaining
	}
	if err := cache.SetJSON(context.Background(), loyaltySummaryCacheKey(customerID), summary, loyaltySummaryCacheTTL); err != nil {
		logger.Warnw("loyalty_summary_cache_write_failed", "customer_id", customerID, "error", err)
	}
	return summary, nil
}

func (s *LoyaltyService) invalidateSummary(customerID uint) {
	if err := cache.Del(context.Background(), loyaltySummaryCacheKey(customerID)); err != nil {
		logger.Warnw("loyalty_summary_cache_del_failed", "customer_id", customerID, "error", err)
	}
}

// ListTransactions 分页查询积分流水
func (s *LoyaltyService) ListTransactions(filter repository.LoyaltyTransactionListFilter) ([]models.LoyaltyTransaction, int64, error) {
	return s.repo.ListTransactions(filter)
}

// EarnPoints 按订单基数获得积分：floor(基数 × earn_rate × 等级倍率)。
// 等级在入账后按累计获得积分重算，只升不降。按订单幂等；
// 计划关闭或账户停用时静默跳过（返回 nil, nil）。
func (s *LoyaltyService) EarnPoints(input LoyaltyEarnInput) (*models.LoyaltyTransaction, error) {
	if input.CustomerID == 0 {
		return nil, ErrLoyaltyAccountNotFound
	}
	if !s.cfg.Enabled {
		return nil, nil
	}
	if input.BaseAmount.Decimal.IsNegative() {
		return nil, ErrLoyaltyInvalidAmount
	}
	if _, err := s.GetOrCreateAccount(input.CustomerID); err != nil {
		return nil, err
	}

	var result *models.LoyaltyTransaction
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		account, err := repo.GetAccountByCustomerIDForUpdate(input.CustomerID)
		if err != nil {
			return err
		}
		if account == nil {
			return ErrLoyaltyAccountNotFound
		}
		if !account.IsEnabled {
			return nil
		}
		if input.OrderID != 0 {
			existing, err := repo.GetTransactionByOrderAndType(input.CustomerID, input.OrderID, constants.LoyaltyTxnTypeEarned)
			if err != nil {
				return err
			}
			if existing != nil {
				result = existing
				return nil
			}
		}
		points := earnedPoints(input.BaseAmount.Decimal, s.cfg.EarnRate, s.levelMultiplier(account.Level))
		if points <= 0 {
			return nil
		}
		var orderID *uint
		if input.OrderID != 0 {
			orderID = &input.OrderID
		}
		txn, err := s.creditInTx(repo, account, constants.LoyaltyTxnTypeEarned, points, orderID, 0, firstNonEmpty(input.Description, "下单获得积分"))
		if err != nil {
			return err
		}
		result = txn
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidateSummary(input.CustomerID)
	return result, nil
}

// RedeemBudget 计算本单最多可抵扣的积分：
// min(余额, floor(小计 × max_redeem_fraction))。1 积分抵 1 元。
func (s *LoyaltyService) RedeemBudget(customerID uint, subtotal models.Money) (int64, error) {
	if !s.cfg.Enabled || customerID == 0 {
		return 0, nil
	}
	account, err := s.repo.GetAccountByCustomerID(customerID)
	if err != nil {
		return 0, err
	}
	if account == nil || !account.IsEnabled {
		return 0, nil
	}
	return redeemBudget(account.PointsBalance, subtotal.Decimal, s.cfg.MaxRedeemFraction), nil
}

// SpendPoints 抵扣积分。余额不足返回错误；传入小计时校验抵扣
// 不超过本单额度。按订单幂等；不触发等级重算。
func (s *LoyaltyService) SpendPoints(input LoyaltySpendInput) (*models.LoyaltyTransaction, error) {
	if input.CustomerID == 0 {
		return nil, ErrLoyaltyAccountNotFound
	}
	if !s.cfg.Enabled {
		return nil, nil
	}
	if input.Points <= 0 {
		return nil, ErrLoyaltyInvalidAmount
	}

	var result *models.LoyaltyTransaction
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		account, err := repo.GetAccountByCustomerIDForUpdate(input.CustomerID)
		if err != nil {
			return err
		}
		if account == nil {
			return ErrLoyaltyAccountNotFound
		}
		if !account.IsEnabled {
			return nil
		}
		if input.OrderID != 0 {
			existing, err := repo.GetTransactionByOrderAndType(input.CustomerID, input.OrderID, constants.LoyaltyTxnTypeSpent)
			if err != nil {
				return err
			}
			if existing != nil {
				result = existing
				return nil
			}
		}
		if input.Points > account.PointsBalance {
			return ErrLoyaltyInsufficientBalance
		}
		if input.Subtotal.Decimal.GreaterThan(decimal.Zero) {
			budget := redeemBudget(account.PointsBalance, input.Subtotal.Decimal, s.cfg.MaxRedeemFraction)
			if input.Points > budget {
				return ErrLoyaltyExceedsBudget
			}
		}
		var orderID *uint
		if input.OrderID != 0 {
			orderID = &input.OrderID
		}
		txn, err := s.debitInTx(repo, account, constants.LoyaltyTxnTypeSpent, input.Points, orderID, firstNonEmpty(input.Description, "积分抵扣"))
		if err != nil {
			return err
		}
		result = txn
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidateSummary(input.CustomerID)
	return result, nil
}

// AdjustPoints 管理员调整积分。增量带符号，调整后余额不得为负；
// 流水按带符号增量记录（adjustment 类型）。
func (s *LoyaltyService) AdjustPoints(principal Principal, input LoyaltyAdjustInput) (*models.LoyaltyTransaction, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	if input.Delta == 0 {
		return nil, ErrLoyaltyInvalidAmount
	}
	if _, err := s.GetOrCreateAccount(input.CustomerID); err != nil {
		return nil, err
	}

	var result *models.LoyaltyTransaction
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		account, err := repo.GetAccountByCustomerIDForUpdate(input.CustomerID)
		if err != nil {
			return err
		}
		if account == nil {
			return ErrLoyaltyAccountNotFound
		}
		if account.PointsBalance+input.Delta < 0 {
			return ErrLoyaltyInsufficientBalance
		}

		expected := account.PointsBalance
		account.PointsBalance += input.Delta
		if input.Delta > 0 {
			account.TotalEarned += input.Delta
		} else {
			account.TotalSpent += -input.Delta
		}
		account.UpdatedAt = time.Now()
		ok, err := repo.UpdateAccountGuarded(account, expected)
		if err != nil {
			return err
		}
		if !ok {
			return ErrLoyaltyConflict
		}

		txn := &models.LoyaltyTransaction{
			CustomerID:      account.CustomerID,
			TransactionType: constants.LoyaltyTxnTypeAdjustment,
			PointsAmount:    input.Delta,
			Description:     firstNonEmpty(input.Description, "管理员调整"),
			BalanceAfter:    account.PointsBalance,
			CreatedAt:       time.Now(),
			UpdatedAt:       time.Now(),
		}
		if err := repo.CreateTransaction(txn); err != nil {
			return err
		}
		result = txn
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidateSummary(input.CustomerID)
	logger.Infow("loyalty_points_adjusted",
		"customer_id", input.CustomerID,
		"delta", input.Delta,
		"balance_after", result.BalanceAfter,
	)
	return result, nil
}

// ApplyReferralCode 使用他人推荐码。仅能使用一次，不能用自己的码；
// 成功后被推荐方立即得奖励，推荐方的奖励由 CreditReferral 在其
// 首单完成时补记。referred_by 的空→非空迁移即幂等键。
func (s *LoyaltyService) ApplyReferralCode(customerID uint, code string) (*models.LoyaltyAccount, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, ErrReferralCodeNotFound
	}
	account, err := s.GetOrCreateAccount(customerID)
	if err != nil {
		return nil, err
	}
	if account.ReferredBy != "" {
		return nil, ErrReferralAlreadyUsed
	}
	referrer, err := s.repo.GetAccountByReferralCode(normalized)
	if err != nil {
		return nil, err
	}
	if referrer == nil {
		return nil, ErrReferralCodeNotFound
	}
	if referrer.CustomerID == customerID {
		return nil, ErrReferralSelfUse
	}

	err = s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		referee, err := repo.GetAccountByCustomerIDForUpdate(customerID)
		if err != nil {
			return err
		}
		if referee == nil {
			return ErrLoyaltyAccountNotFound
		}
		if referee.ReferredBy != "" {
			return ErrReferralAlreadyUsed
		}

		referee.ReferredBy = normalized
		if s.cfg.ReferralBonus > 0 {
			if _, err := s.creditInTx(repo, referee, constants.LoyaltyTxnTypeReferral, s.cfg.ReferralBonus, nil, referrer.CustomerID, "使用推荐码奖励"); err != nil {
				return err
			}
		} else {
			expected := referee.PointsBalance
			referee.UpdatedAt = time.Now()
			ok, err := repo.UpdateAccountGuarded(referee, expected)
			if err != nil {
				return err
			}
			if !ok {
				return ErrLoyaltyConflict
			}
		}
		account = referee
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidateSummary(customerID)
	logger.Infow("referral_code_applied",
		"customer_id", customerID,
		"referrer_customer_id", referrer.CustomerID,
		"bonus", s.cfg.ReferralBonus,
	)
	return account, nil
}

// CreditReferral 为推荐人补记奖励（被推荐人已绑定推荐码的前提下）。
// 每对 (推荐人, 被推荐人) 只记一次：流水上的 related_customer_id
// 记被推荐客户，后续订单与重复回调都不再触发。
func (s *LoyaltyService) CreditReferral(refereeCustomerID uint, orderID uint) (*models.LoyaltyTransaction, error) {
	if s.cfg.ReferralBonus <= 0 || !s.cfg.Enabled {
		return nil, nil
	}
	referee, err := s.repo.GetAccountByCustomerID(refereeCustomerID)
	if err != nil {
		return nil, err
	}
	if referee == nil || referee.ReferredBy == "" {
		return nil, nil
	}
	referrer, err := s.repo.GetAccountByReferralCode(referee.ReferredBy)
	if err != nil {
		return nil, err
	}
	if referrer == nil || !referrer.IsEnabled {
		return nil, nil
	}

	var result *models.LoyaltyTransaction
	err = s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		account, err := repo.GetAccountByCustomerIDForUpdate(referrer.CustomerID)
		if err != nil {
			return err
		}
		if account == nil {
			return nil
		}
		// 每对 (推荐人, 被推荐人) 只奖励一次：被推荐客户的后续订单不再触发
		credited, err := repo.HasReferralCreditFor(account.CustomerID, refereeCustomerID)
		if err != nil {
			return err
		}
		if credited {
			return nil
		}
		var ref *uint
		if orderID != 0 {
			ref = &orderID
		}
		txn, err := s.creditInTx(repo, account, constants.LoyaltyTxnTypeReferral, s.cfg.ReferralBonus, ref, refereeCustomerID, "被推荐客户首单奖励")
		if err != nil {
			return err
		}
		result = txn
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidateSummary(referrer.CustomerID)
	return result, nil
}

// ExpirePoints 清扫过期积分。按先进先出推算：截止时间前入账且尚未
// 被消耗的部分记一笔 expired 流水。expire_after_days 为 0 时不清扫。
func (s *LoyaltyService) ExpirePoints(now time.Time) (int64, error) {
	if s.cfg.ExpireAfterDays <= 0 {
		return 0, nil
	}
	cutoff := now.AddDate(0, 0, -s.cfg.ExpireAfterDays)
	accounts, err := s.repo.ListAccountsWithBalance()
	if err != nil {
		return 0, err
	}

	var totalExpired int64
	for _, candidate := range accounts {
		customerID := candidate.CustomerID
		err := s.repo.Transaction(func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			account, err := repo.GetAccountByCustomerIDForUpdate(customerID)
			if err != nil {
				return err
			}
			if account == nil || !account.IsEnabled || account.PointsBalance <= 0 {
				return nil
			}
			accrued, err := repo.SumAccruedBefore(customerID, cutoff)
			if err != nil {
				return err
			}
			expirable := accrued - account.TotalSpent
			if expirable > account.PointsBalance {
				expirable = account.PointsBalance
			}
			if expirable <= 0 {
				return nil
			}
			if _, err := s.debitInTx(repo, account, constants.LoyaltyTxnTypeExpired, expirable, nil, "积分过期"); err != nil {
				return err
			}
			totalExpired += expirable
			s.invalidateSummary(customerID)
			return nil
		})
		if err != nil {
			logger.Errorw("loyalty_expire_account_failed",
				"customer_id", customerID,
				"error", err,
			)
			continue
		}
	}
	if totalExpired > 0 {
		logger.Infow("loyalty_points_expired",
			"cutoff", cutoff,
			"total_expired", totalExpired,
		)
	}
	return totalExpired, nil
}

// creditInTx 事务内入账：余额与累计获得同步增加，追加流水。
// earned 类型入账后按累计获得积分重算等级（只升不降）。
// relatedCustomerID 仅 referral 类型使用，记录推荐关系的对方。
func (s *LoyaltyService) creditInTx(repo *repository.GormLoyaltyRepository, account *models.LoyaltyAccount, txnType string, points int64, orderID *uint, relatedCustomerID uint, description string) (*models.LoyaltyTransaction, error) {
	if points <= 0 {
		return nil, ErrLoyaltyInvalidAmount
	}
	expected := account.PointsBalance
	account.PointsBalance += points
	account.TotalEarned += points
	if txnType == constants.LoyaltyTxnTypeEarned {
		if upgraded := s.levelForTotalEarned(account.TotalEarned); levelRank(upgraded) > levelRank(account.Level) {
			account.Level = upgraded
		}
	}
	account.UpdatedAt = time.Now()
	ok, err := repo.UpdateAccountGuarded(account, expected)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLoyaltyConflict
	}

	txn := &models.LoyaltyTransaction{
		CustomerID:        account.CustomerID,
		TransactionType:   txnType,
		PointsAmount:      points,
		OrderID:           orderID,
		RelatedCustomerID: relatedCustomerID,
		Description:       description,
		BalanceAfter:      account.PointsBalance,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	if err := repo.CreateTransaction(txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// debitInTx 事务内扣减：余额与累计消耗同步变化，追加流水。
func (s *LoyaltyService) debitInTx(repo *repository.GormLoyaltyRepository, account *models.LoyaltyAccount, txnType string, points int64, orderID *uint, description string) (*models.LoyaltyTransaction, error) {
	if points <= 0 {
		return nil, ErrLoyaltyInvalidAmount
	}
	if points > account.PointsBalance {
		return nil, ErrLoyaltyInsufficientBalance
	}
	expected := account.PointsBalance
	account.PointsBalance -= points
	account.TotalSpent += points
	account.UpdatedAt = time.Now()
	ok, err := repo.UpdateAccountGuarded(account, expected)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLoyaltyConflict
	}

	txn := &models.LoyaltyTransaction{
		CustomerID:      account.CustomerID,
		TransactionType: txnType,
		PointsAmount:    points,
		OrderID:         orderID,
		Description:     description,
		BalanceAfter:    account.PointsBalance,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	if err := repo.CreateTransaction(txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// levelForTotalEarned 按累计获得积分计算应处等级
func (s *LoyaltyService) levelForTotalEarned(totalEarned int64) string {
	switch {
	case s.cfg.GoldThreshold > 0 && totalEarned >= s.cfg.GoldThreshold:
		return constants.LoyaltyLevelGold
	case s.cfg.SilverThreshold > 0 && totalEarned >= s.cfg.SilverThreshold:
		return constants.LoyaltyLevelSilver
	default:
		return constants.LoyaltyLevelBronze
	}
}

// levelMultiplier 等级对应的获点倍率，未配置时取 1.0
func (s *LoyaltyService) levelMultiplier(level string) float64 {
	switch level {
	case constants.LoyaltyLevelGold:
		if s.cfg.GoldMultiplier > 0 {
			return s.cfg.GoldMultiplier
		}
	case constants.LoyaltyLevelSilver:
		if s.cfg.SilverMultiplier > 0 {
			return s.cfg.SilverMultiplier
		}
	}
	return 1.0
}

func (s *LoyaltyService) referralCodeLength() int {
	if s.cfg.ReferralCodeLen > 0 {
		return s.cfg.ReferralCodeLen
	}
	return defaultReferralCodeLength
}

func levelRank(level string) int {
	switch level {
	case constants.LoyaltyLevelGold:
		return 3
	case constants.LoyaltyLevelSilver:
		return 2
	case constants.LoyaltyLevelBronze:
		return 1
	default:
		return 0
	}
}

// earnedPoints 计算获点数：floor(基数 × 系数 × 倍率)
func earnedPoints(base decimal.Decimal, rate float64, multiplier float64) int64 {
	if base.LessThanOrEqual(decimal.Zero) || rate <= 0 {
		return 0
	}
	return base.
		Mul(decimal.NewFromFloat(rate)).
		Mul(decimal.NewFromFloat(multiplier)).
		Floor().
		IntPart()
}

// redeemBudget 单笔订单可抵扣积分上限
func redeemBudget(balance int64, subtotal decimal.Decimal, maxFraction float64) int64 {
	if balance <= 0 || maxFraction <= 0 || subtotal.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	capped := subtotal.Mul(decimal.NewFromFloat(maxFraction)).Floor().IntPart()
	if balance < capped {
		return balance
	}
	return capped
}

// generateReferralCode 生成推荐码（去除易混淆字符）
func generateReferralCode(length int) (string, error) {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	var builder strings.Builder
	builder.Grow(length)
	max := big.NewInt(int64(len(alphabet)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		builder.WriteByte(alphabet[n.Int64()])
	}
	return builder.String(), nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
