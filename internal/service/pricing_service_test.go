package service

import (
	"context"
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

func setupPricingServiceTest(t *testing.T) (*PricingService, *LoyaltyService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:pricing_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.DiscountRule{},
		&models.ProductBundle{},
		&models.Promotion{},
		&models.PromotionUsage{},
		&models.LoyaltyAccount{},
		&models.LoyaltyTransaction{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	ruleStore := NewRuleStore(repository.NewDiscountRuleRepository(db), repository.NewProductBundleRepository(db), 0)
	discountSvc := NewDiscountService(ruleStore)
	promoSvc := NewPromoService(repository.NewPromotionRepository(db), repository.NewPromotionUsageRepository(db))
	loyaltyCfg := defaultLoyaltyTestConfig()
	loyaltyCfg.WelcomeBonus = 500
	loyaltySvc := NewLoyaltyService(repository.NewLoyaltyRepository(db), loyaltyCfg)
	return NewPricingService(discountSvc, promoSvc, loyaltySvc), loyaltySvc, db
}

func TestPricingQuoteFullPipeline(t *testing.T) {
	svc, loyaltySvc, db := setupPricingServiceTest(t)
	now := time.Now()

	if _, err := loyaltySvc.GetOrCreateAccount(7); err != nil {
		t.Fatalf("create loyalty account failed: %v", err)
	}

	rule := models.DiscountRule{
		Title:     "满额九折",
		Type:      constants.DiscountTypePercentage,
		Value:     models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		Priority:  100,
		StartsAt:  now.Add(-time.Hour),
		ExpiresAt: now.Add(time.Hour),
		IsActive:  true,
	}
	if err := db.Create(&rule).Error; err != nil {
		t.Fatalf("create rule failed: %v", err)
	}
	promo := models.Promotion{
		Code:     "WELCOME15",
		Type:     constants.PromoTypePercentage,
		Value:    models.NewMoneyFromDecimal(decimal.NewFromInt(15)),
		IsActive: true,
	}
	if err := db.Create(&promo).Error; err != nil {
		t.Fatalf("create promo failed: %v", err)
	}

	cart := makeCart(makeCartItem(1, 1500, 1))
	cart.CustomerID = 7
	quote, err := svc.Price(context.Background(), PriceRequest{
		Cart:            cart,
		PromoCode:       "WELCOME15",
		RequestedPoints: 1000,
	}, now)
	if err != nil {
		t.Fatalf("price failed: %v", err)
	}

	// 1500 → 规则 150 → 促销 15% × 1350 = 202.5 → 剩 1147.5
	if !quote.AutomaticDiscount.Decimal.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("expected automatic 150, got %s", quote.AutomaticDiscount.Decimal)
	}
	if !quote.PromoDiscount.Decimal.Equal(decimal.RequireFromString("202.5")) {
		t.Fatalf("expected promo 202.5, got %s", quote.PromoDiscount.Decimal)
	}
	// 额度 = min(开户奖励 500, floor(1147.5 × 0.3)) = 344，申请 1000 压到 344
	if quote.RedeemBudget != 344 || quote.PointsApplied != 344 {
		t.Fatalf("expected redeem budget/applied 344, got %d/%d", quote.RedeemBudget, quote.PointsApplied)
	}
	// 1147.5 - 344 = 803.5
	if !quote.Total.Decimal.Equal(decimal.RequireFromString("803.5")) {
		t.Fatalf("expected total 803.5, got %s", quote.Total.Decimal)
	}
}

func TestPricingQuoteFreeShippingLane(t *testing.T) {
	svc, _, db := setupPricingServiceTest(t)
	now := time.Now()

	promo := models.Promotion{
		Code:     "FREESHIP",
		Type:     constants.PromoTypeFreeShipping,
		IsActive: true,
	}
	if err := db.Create(&promo).Error; err != nil {
		t.Fatalf("create promo failed: %v", err)
	}

	cart := makeCart(makeCartItem(1, 1000, 1))
	cart.ShippingTotal = models.NewMoneyFromDecimal(decimal.NewFromInt(60))
	quote, err := svc.Price(context.Background(), PriceRequest{Cart: cart, PromoCode: "FREESHIP"}, now)
	if err != nil {
		t.Fatalf("price failed: %v", err)
	}

	// 免运费只作用于运费通道，商品小计不变
	if !quote.PromoDiscount.Decimal.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected promo discount 60, got %s", quote.PromoDiscount.Decimal)
	}
	if !quote.Total.Decimal.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected total 1000 with shipping waived, got %s", quote.Total.Decimal)
	}
}

func TestPricingQuoteGuestSkipsLoyalty(t *testing.T) {
	svc, _, _ := setupPricingServiceTest(t)

	cart := makeCart(makeCartItem(1, 1000, 1))
	quote, err := svc.Price(context.Background(), PriceRequest{Cart: cart, RequestedPoints: 100}, time.Now())
	if err != nil {
		t.Fatalf("price failed: %v", err)
	}
	if quote.RedeemBudget != 0 || quote.PointsApplied != 0 {
		t.Fatalf("guest quote must not touch loyalty, got budget %d applied %d", quote.RedeemBudget, quote.PointsApplied)
	}
	if !quote.Total.Decimal.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected total 1000, got %s", quote.Total.Decimal)
	}
}

func TestPricingQuoteReplayable(t *testing.T) {
	svc, _, db := setupPricingServiceTest(t)
	now := time.Now()

	rule := models.DiscountRule{
		Title:     "立减100",
		Type:      constants.DiscountTypeFixed,
		Value:     models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		Priority:  10,
		StartsAt:  now.Add(-time.Hour),
		ExpiresAt: now.Add(time.Hour),
		IsActive:  true,
	}
	if err := db.Create(&rule).Error; err != nil {
		t.Fatalf("create rule failed: %v", err)
	}

	cart := makeCart(makeCartItem(1, 800, 1))
	first, err := svc.Price(context.Background(), PriceRequest{Cart: cart}, now)
	if err != nil {
		t.Fatalf("first price failed: %v", err)
	}
	second, err := svc.Price(context.Background(), PriceRequest{Cart: cart}, now)
	if err != nil {
		t.Fatalf("second price failed: %v", err)
	}
	if !first.Total.Decimal.Equal(second.Total.Decimal) {
		t.Fatalf("same input same instant must price identically: %s vs %s", first.Total.Decimal, second.Total.Decimal)
	}
	if !first.Total.Decimal.Equal(decimal.NewFromInt(700)) {
		t.Fatalf("expected total 700, got %s", first.Total.Decimal)
	}
}
