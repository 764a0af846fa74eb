package repository

import (
	"fmt"
	"testing"

	"github.com/hairlab-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

var usageRepoTestSeq int

func setupPromotionUsageRepositoryTest(t *testing.T) *GormPromotionUsageRepository {
	t.Helper()
	usageRepoTestSeq++
	dsn := fmt.Sprintf("file:promo_usage_repo_test_%d?mode=memory&cache=shared", usageRepoTestSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.PromotionUsage{}); err != nil {
		t.Fatalf("migrate promotion usage failed: %v", err)
	}
	return NewPromotionUsageRepository(db)
}

func TestCountByCustomerMatchModes(t *testing.T) {
	repo := setupPromotionUsageRepositoryTest(t)

	usages := []models.PromotionUsage{
		{PromotionID: 1, CustomerID: 7, Email: "a@b.com", OrderID: 100},
		{PromotionID: 1, CustomerID: 0, Email: "a@b.com", OrderID: 101},
		{PromotionID: 1, CustomerID: 8, Email: "c@d.com", OrderID: 102},
		{PromotionID: 2, CustomerID: 7, Email: "a@b.com", OrderID: 103},
	}
	for i := range usages {
		if err := repo.Create(&usages[i]); err != nil {
			t.Fatalf("create usage failed: %v", err)
		}
	}

	// 登录客户：customer_id 或邮箱命中其一即计数
	count, err := repo.CountByCustomer(1, 7, "A@B.com ")
	if err != nil {
		t.Fatalf("count by customer failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("customer+email count want 2 got %d", count)
	}

	// 游客：仅按邮箱匹配
	count, err = repo.CountByCustomer(1, 0, "a@b.com")
	if err != nil {
		t.Fatalf("count by email failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("email count want 2 got %d", count)
	}

	// 无身份信息时不限次
	count, err = repo.CountByCustomer(1, 0, "")
	if err != nil {
		t.Fatalf("count without identity failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("identity-less count want 0 got %d", count)
	}

	total, err := repo.CountByPromotion(1)
	if err != nil {
		t.Fatalf("count by promotion failed: %v", err)
	}
	if total != 3 {
		t.Fatalf("promotion count want 3 got %d", total)
	}
}

func TestGetByOrder(t *testing.T) {
	repo := setupPromotionUsageRepositoryTest(t)

	usage := &models.PromotionUsage{PromotionID: 1, CustomerID: 7, OrderID: 500}
	if err := repo.Create(usage); err != nil {
		t.Fatalf("create usage failed: %v", err)
	}

	got, err := repo.GetByOrder(500)
	if err != nil {
		t.Fatalf("get by order failed: %v", err)
	}
	if got.ID != usage.ID {
		t.Fatalf("usage id want %d got %d", usage.ID, got.ID)
	}

	missing, err := repo.GetByOrder(999)
	if err != nil {
		t.Fatalf("get missing order failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("missing order should return nil, got %+v", missing)
	}
}
