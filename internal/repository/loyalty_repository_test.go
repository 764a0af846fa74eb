package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/hairlab-next/internal/constants"
	"github.com/hairlab-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

var loyaltyRepoTestSeq int

func setupLoyaltyRepositoryTest(t *testing.T) (*GormLoyaltyRepository, *gorm.DB) {
	t.Helper()
	loyaltyRepoTestSeq++
	dsn := fmt.Sprintf("file:loyalty_repo_test_%d?mode=memory&cache=shared", loyaltyRepoTestSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.LoyaltyAccount{}, &models.LoyaltyTransaction{}); err != nil {
		t.Fatalf("migrate loyalty tables failed: %v", err)
	}
	return NewLoyaltyRepository(db), db
}

func createLoyaltyTxn(t *testing.T, db *gorm.DB, customerID uint, txnType string, amount int64, createdAt time.Time) {
	t.Helper()
	txn := &models.LoyaltyTransaction{
		CustomerID:      customerID,
		TransactionType: txnType,
		PointsAmount:    amount,
		BalanceAfter:    0,
	}
	if err := db.Create(txn).Error; err != nil {
		t.Fatalf("create loyalty txn failed: %v", err)
	}
	if err := db.Model(txn).Update("created_at", createdAt).Error; err != nil {
		t.Fatalf("backdate loyalty txn failed: %v", err)
	}
}

func TestUpdateAccountGuardedOptimisticLock(t *testing.T) {
	repo, _ := setupLoyaltyRepositoryTest(t)

	account := &models.LoyaltyAccount{
		CustomerID:    1,
		PointsBalance: 100,
		TotalEarned:   100,
		Level:         constants.LoyaltyLevelBronze,
		ReferralCode:  "CODE0001",
		IsEnabled:     true,
	}
	if err := repo.CreateAccount(account); err != nil {
		t.Fatalf("create account failed: %v", err)
	}

	account.PointsBalance = 150
	account.TotalEarned = 150
	ok, err := repo.UpdateAccountGuarded(account, 100)
	if err != nil {
		t.Fatalf("guarded update failed: %v", err)
	}
	if !ok {
		t.Fatalf("guarded update with matching balance should succeed")
	}

	// 余额守卫已失配，提交应被拒绝
	account.PointsBalance = 999
	ok, err = repo.UpdateAccountGuarded(account, 100)
	if err != nil {
		t.Fatalf("guarded update failed: %v", err)
	}
	if ok {
		t.Fatalf("guarded update with stale expected balance should fail")
	}

	got, err := repo.GetAccountByCustomerID(1)
	if err != nil {
		t.Fatalf("get account failed: %v", err)
	}
	if got.PointsBalance != 150 {
		t.Fatalf("balance want 150 got %d", got.PointsBalance)
	}
}

func TestSumAccruedBefore(t *testing.T) {
	repo, db := setupLoyaltyRepositoryTest(t)

	now := time.Now()
	cutoff := now.Add(-30 * 24 * time.Hour)
	old := now.Add(-40 * 24 * time.Hour)

	createLoyaltyTxn(t, db, 7, constants.LoyaltyTxnTypeWelcome, 100, old)
	createLoyaltyTxn(t, db, 7, constants.LoyaltyTxnTypeEarned, 50, old)
	createLoyaltyTxn(t, db, 7, constants.LoyaltyTxnTypeAdjustment, 30, old)
	// 负向调整与消耗不计入入账口径
	createLoyaltyTxn(t, db, 7, constants.LoyaltyTxnTypeAdjustment, -20, old)
	createLoyaltyTxn(t, db, 7, constants.LoyaltyTxnTypeSpent, 40, old)
	// 截止时间之后的入账不计
	createLoyaltyTxn(t, db, 7, constants.LoyaltyTxnTypeEarned, 500, now)
	// 其它客户不计
	createLoyaltyTxn(t, db, 8, constants.LoyaltyTxnTypeEarned, 77, old)

	total, err := repo.SumAccruedBefore(7, cutoff)
	if err != nil {
		t.Fatalf("sum accrued failed: %v", err)
	}
	if total != 180 {
		t.Fatalf("accrued want 180 got %d", total)
	}

	total, err = repo.SumAccruedBefore(0, cutoff)
	if err != nil {
		t.Fatalf("sum accrued for zero customer failed: %v", err)
	}
	if total != 0 {
		t.Fatalf("zero customer accrued want 0 got %d", total)
	}
}

func TestListTransactionsFilterAndPagination(t *testing.T) {
	repo, db := setupLoyaltyRepositoryTest(t)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		createLoyaltyTxn(t, db, 7, constants.LoyaltyTxnTypeEarned, int64(10+i), base.Add(time.Duration(i)*time.Minute))
	}
	createLoyaltyTxn(t, db, 7, constants.LoyaltyTxnTypeSpent, 5, base.Add(10*time.Minute))

	txns, total, err := repo.ListTransactions(LoyaltyTransactionListFilter{
		CustomerID: 7,
		Page:       1,
		PageSize:   2,
	})
	if err != nil {
		t.Fatalf("list transactions failed: %v", err)
	}
	if total != 4 {
		t.Fatalf("total want 4 got %d", total)
	}
	if len(txns) != 2 {
		t.Fatalf("page size want 2 got %d", len(txns))
	}
	// 按时间倒序，最新的消耗流水排第一
	if txns[0].TransactionType != constants.LoyaltyTxnTypeSpent {
		t.Fatalf("first txn want spent got %s", txns[0].TransactionType)
	}

	earned, total, err := repo.ListTransactions(LoyaltyTransactionListFilter{
		CustomerID:      7,
		TransactionType: constants.LoyaltyTxnTypeEarned,
		Page:            1,
		PageSize:        10,
	})
	if err != nil {
		t.Fatalf("list earned transactions failed: %v", err)
	}
	if total != 3 || len(earned) != 3 {
		t.Fatalf("earned want 3 got total=%d len=%d", total, len(earned))
	}
}
