package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hairlab-next/internal/constants"
	"github.com/hairlab-next/internal/models"
	"github.com/hairlab-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupPromoServiceTest(t *testing.T) (*PromoService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:promo_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Promotion{}, &models.PromotionUsage{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	promoRepo := repository.NewPromotionRepository(db)
	usageRepo := repository.NewPromotionUsageRepository(db)
	return NewPromoService(promoRepo, usageRepo), db
}

func createTestPromotion(t *testing.T, db *gorm.DB, promo models.Promotion) *models.Promotion {
	t.Helper()
	if err := db.Create(&promo).Error; err != nil {
		t.Fatalf("create promotion failed: %v", err)
	}
	return &promo
}

func TestPromoValidateNotFound(t *testing.T) {
	svc, _ := setupPromoServiceTest(t)
	cart := makeCart(makeCartItem(1, 1000, 1))

	if _, err := svc.Validate("NOPE", cart, time.Now()); !errors.Is(err, ErrPromoNotFound) {
		t.Fatalf("expected ErrPromoNotFound, got %v", err)
	}
}

func TestPromoValidateInactive(t *testing.T) {
	svc, db := setupPromoServiceTest(t)
	createTestPromotion(t, db, models.Promotion{
		Code:     "PAUSED",
		Type:     constants.PromoTypeFixed,
		Value:    models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
		IsActive: false,
	})
	cart := makeCart(makeCartItem(1, 1000, 1))

	if _, err := svc.Validate("PAUSED", cart, time.Now()); !errors.Is(err, ErrPromoInactive) {
		t.Fatalf("expected ErrPromoInactive, got %v", err)
	}
}

func TestPromoValidateWindow(t *testing.T) {
	svc, db := setupPromoServiceTest(t)
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)
	createTestPromotion(t, db, models.Promotion{
		Code:     "SOON",
		Type:     constants.PromoTypeFixed,
		Value:    models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
		StartsAt: &future,
		IsActive: true,
	})
	createTestPromotion(t, db, models.Promotion{
		Code:      "GONE",
		Type:      constants.PromoTypeFixed,
		Value:     models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
		ExpiresAt: &past,
		IsActive:  true,
	})
	cart := makeCart(makeCartItem(1, 1000, 1))

	if _, err := svc.Validate("SOON", cart, now); !errors.Is(err, ErrPromoNotStarted) {
		t.Fatalf("expected ErrPromoNotStarted, got %v", err)
	}
	if _, err := svc.Validate("GONE", cart, now); !errors.Is(err, ErrPromoExpired) {
		t.Fatalf("expected ErrPromoExpired, got %v", err)
	}
}

func TestPromoValidateBelowMinimum(t *testing.T) {
	svc, db := setupPromoServiceTest(t)
	createTestPromotion(t, db, models.Promotion{
		Code:           "BIG",
		Type:           constants.PromoTypeFixed,
		Value:          models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		MinOrderAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(2000)),
		IsActive:       true,
	})
	cart := makeCart(makeCartItem(1, 1000, 1))

	if _, err := svc.Validate("BIG", cart, time.Now()); !errors.Is(err, ErrPromoBelowMinimum) {
		t.Fatalf("expected ErrPromoBelowMinimum, got %v", err)
	}
}

func TestPromoValidateUsageLimits(t *testing.T) {
	svc, db := setupPromoServiceTest(t)
	promo := createTestPromotion(t, db, models.Promotion{
		Code:             "LIMITED",
		Type:             constants.PromoTypeFixed,
		Value:            models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
		UsageLimit:       1,
		PerCustomerLimit: 1,
		IsActive:         true,
	})
	cart := makeCart(makeCartItem(1, 1000, 1))
	cart.CustomerID = 7

	if _, err := svc.Validate("LIMITED", cart, time.Now()); err != nil {
		t.Fatalf("expected valid before any usage, got %v", err)
	}

	usage := models.PromotionUsage{
		PromotionID:    promo.ID,
		CustomerID:     7,
		OrderID:        1,
		DiscountAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
	}
	if err := db.Create(&usage).Error; err != nil {
		t.Fatalf("create usage failed: %v", err)
	}

	if _, err := svc.Validate("LIMITED", cart, time.Now()); !errors.Is(err, ErrPromoUsageLimit) {
		t.Fatalf("expected ErrPromoUsageLimit, got %v", err)
	}
}

func TestPromoApplyPercentageOnDiscountedSubtotal(t *testing.T) {
	svc, db := setupPromoServiceTest(t)
	createTestPromotion(t, db, models.Promotion{
		Code:     "WELCOME15",
		Type:     constants.PromoTypePercentage,
		Value:    models.NewMoneyFromDecimal(decimal.NewFromInt(15)),
		IsActive: true,
	})
	cart := makeCart(makeCartItem(1, 1500, 1))

	validated, err := svc.Apply("WELCOME15", cart, models.NewMoneyFromDecimal(decimal.NewFromInt(1350)), time.Now())
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if !validated.Discount.Decimal.Equal(decimal.RequireFromString("202.5")) {
		t.Fatalf("expected 15%% of 1350 = 202.5, got %s", validated.Discount.Decimal)
	}
}

func TestPromoApplyPercentageCappedByMaxDiscount(t *testing.T) {
	svc, db := setupPromoServiceTest(t)
	createTestPromotion(t, db, models.Promotion{
		Code:              "CAPPED",
		Type:              constants.PromoTypePercentage,
		Value:             models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
		MaxDiscountAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		IsActive:          true,
	})
	cart := makeCart(makeCartItem(1, 1000, 1))

	validated, err := svc.Apply("CAPPED", cart, cart.Subtotal, time.Now())
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if !validated.Discount.Decimal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected discount capped at 100, got %s", validated.Discount.Decimal)
	}
}

func TestPromoApplyFixedNotExceedingBase(t *testing.T) {
	svc, db := setupPromoServiceTest(t)
	createTestPromotion(t, db, models.Promotion{
		Code:     "BIGFIX",
		Type:     constants.PromoTypeFixed,
		Value:    models.NewMoneyFromDecimal(decimal.NewFromInt(500)),
		IsActive: true,
	})
	cart := makeCart(makeCartItem(1, 300, 1))

	validated, err := svc.Apply("BIGFIX", cart, cart.Subtotal, time.Now())
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if !validated.Discount.Decimal.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("expected fixed discount clamped to 300, got %s", validated.Discount.Decimal)
	}
}

func TestPromoApplyFreeShipping(t *testing.T) {
	svc, db := setupPromoServiceTest(t)
	createTestPromotion(t, db, models.Promotion{
		Code:     "FREESHIP",
		Type:     constants.PromoTypeFreeShipping,
		IsActive: true,
	})
	cart := makeCart(makeCartItem(1, 1000, 1))
	cart.ShippingTotal = models.NewMoneyFromDecimal(decimal.NewFromInt(60))

	validated, err := svc.Apply("FREESHIP", cart, cart.Subtotal, time.Now())
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if !validated.Discount.Decimal.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected discount = shipping total 60, got %s", validated.Discount.Decimal)
	}
}

func TestPromoApplyCodeCaseInsensitive(t *testing.T) {
	svc, db := setupPromoServiceTest(t)
	createTestPromotion(t, db, models.Promotion{
		Code:     "UPPER10",
		Type:     constants.PromoTypeFixed,
		Value:    models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		IsActive: true,
	})
	cart := makeCart(makeCartItem(1, 1000, 1))

	if _, err := svc.Apply("upper10", cart, cart.Subtotal, time.Now()); err != nil {
		t.Fatalf("expected lower-case lookup to succeed, got %v", err)
	}
}

func TestPromoRecordUsageIdempotentByOrder(t *testing.T) {
	svc, db := setupPromoServiceTest(t)
	createTestPromotion(t, db, models.Promotion{
		Code:     "ONCE",
		Type:     constants.PromoTypeFixed,
		Value:    models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
		IsActive: true,
	})

	input := RecordPromoUsageInput{
		Code:           "ONCE",
		CustomerID:     7,
		OrderID:        42,
		DiscountAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
	}
	first, err := svc.RecordUsage(input)
	if err != nil {
		t.Fatalf("first record failed: %v", err)
	}
	second, err := svc.RecordUsage(input)
	if err != nil {
		t.Fatalf("second record failed: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same usage row for same order, got %d and %d", first.ID, second.ID)
	}

	var count int64
	if err := db.Model(&models.PromotionUsage{}).Count(&count).Error; err != nil {
		t.Fatalf("count usages failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 usage row, got %d", count)
	}
}

func TestPromoRecordUsageEnforcesLimitUnderLock(t *testing.T) {
	svc, db := setupPromoServiceTest(t)
	createTestPromotion(t, db, models.Promotion{
		Code:       "LAST1",
		Type:       constants.PromoTypeFixed,
		Value:      models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
		UsageLimit: 1,
		IsActive:   true,
	})

	if _, err := svc.RecordUsage(RecordPromoUsageInput{
		Code:           "LAST1",
		CustomerID:     1,
		OrderID:        100,
		DiscountAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
	}); err != nil {
		t.Fatalf("first usage failed: %v", err)
	}

	_, err := svc.RecordUsage(RecordPromoUsageInput{
		Code:           "LAST1",
		CustomerID:     2,
		OrderID:        101,
		DiscountAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
	})
	if !errors.Is(err, ErrPromoUsageLimit) {
		t.Fatalf("expected ErrPromoUsageLimit, got %v", err)
	}
}
