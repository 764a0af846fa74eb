package service

import (
	"errors"
	"testing"
	"time"

	"github.com/hairlab-next/internal/constants"
	"github.com/hairlab-next/internal/models"

	"github.com/shopspring/decimal"
)

func makeCartItem(productID uint, price int64, quantity int) CartItemSnapshot {
	return CartItemSnapshot{
		ProductID: productID,
		UnitPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(price)),
		Quantity:  quantity,
	}
}

func makeCart(items ...CartItemSnapshot) CartSnapshot {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return CartSnapshot{
		Items:    items,
		Subtotal: models.NewMoneyFromDecimal(subtotal),
	}
}

func makeRule(id uint, ruleType string, value int64, priority int, stackable bool) models.DiscountRule {
	now := time.Now()
	return models.DiscountRule{
		ID:        id,
		Title:     "rule",
		Type:      ruleType,
		Value:     models.NewMoneyFromDecimal(decimal.NewFromInt(value)),
		Priority:  priority,
		Stackable: stackable,
		StartsAt:  now.Add(-time.Hour),
		ExpiresAt: now.Add(time.Hour),
		IsActive:  true,
	}
}

func TestResolveDiscountsPercentageRule(t *testing.T) {
	cart := makeCart(makeCartItem(1, 1500, 1))
	rules := []models.DiscountRule{makeRule(1, constants.DiscountTypePercentage, 10, 100, false)}

	set, err := ResolveDiscounts(rules, nil, cart, time.Now())
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !set.AutomaticDiscount.Decimal.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("expected automatic discount 150, got %s", set.AutomaticDiscount.Decimal)
	}
	if len(set.Applied) != 1 || set.Applied[0].Source != "rule" {
		t.Fatalf("unexpected applied set: %+v", set.Applied)
	}
}

func TestResolveDiscountsSecondNonStackableSkipped(t *testing.T) {
	cart := makeCart(makeCartItem(1, 1000, 1))
	rules := []models.DiscountRule{
		makeRule(1, constants.DiscountTypePercentage, 10, 100, false),
		makeRule(2, constants.DiscountTypeFixed, 200, 50, false),
	}

	set, err := ResolveDiscounts(rules, nil, cart, time.Now())
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !set.AutomaticDiscount.Decimal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected only first rule applied (100), got %s", set.AutomaticDiscount.Decimal)
	}
}

func TestResolveDiscountsStackableUsesRunningSubtotal(t *testing.T) {
	cart := makeCart(makeCartItem(1, 1500, 1))
	rules := []models.DiscountRule{
		makeRule(1, constants.DiscountTypePercentage, 10, 100, false),
		makeRule(2, constants.DiscountTypePercentage, 10, 50, true),
	}

	set, err := ResolveDiscounts(rules, nil, cart, time.Now())
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	// 首条按 1500 计 150，叠加规则按滚动小计 1350 计 135
	if !set.AutomaticDiscount.Decimal.Equal(decimal.NewFromInt(285)) {
		t.Fatalf("expected 150+135=285, got %s", set.AutomaticDiscount.Decimal)
	}
	if len(set.Applied) != 2 {
		t.Fatalf("expected 2 applied rules, got %d", len(set.Applied))
	}
	if !set.Applied[1].Amount.Decimal.Equal(decimal.NewFromInt(135)) {
		t.Fatalf("expected second rule amount 135, got %s", set.Applied[1].Amount.Decimal)
	}
}

func TestResolveDiscountsPriorityOrder(t *testing.T) {
	cart := makeCart(makeCartItem(1, 1000, 1))
	low := makeRule(1, constants.DiscountTypeFixed, 50, 10, false)
	high := makeRule(2, constants.DiscountTypePercentage, 20, 90, false)
	rules := []models.DiscountRule{low, high}

	set, err := ResolveDiscounts(rules, nil, cart, time.Now())
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !set.AutomaticDiscount.Decimal.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected high priority rule (200), got %s", set.AutomaticDiscount.Decimal)
	}
	if set.Applied[0].ID != 2 {
		t.Fatalf("expected rule 2 applied first, got %d", set.Applied[0].ID)
	}
}

func TestResolveDiscountsConditionGate(t *testing.T) {
	minOrder := models.NewMoneyFromDecimal(decimal.NewFromInt(2000))
	rule := makeRule(1, constants.DiscountTypePercentage, 10, 100, false)
	rule.Conditions = models.RuleConditions{MinOrderAmount: &minOrder}
	cart := makeCart(makeCartItem(1, 1500, 1))

	set, err := ResolveDiscounts([]models.DiscountRule{rule}, nil, cart, time.Now())
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !set.AutomaticDiscount.Decimal.IsZero() {
		t.Fatalf("expected no discount below threshold, got %s", set.AutomaticDiscount.Decimal)
	}
}

func TestResolveDiscountsWindowAndActiveGate(t *testing.T) {
	now := time.Now()
	expired := makeRule(1, constants.DiscountTypePercentage, 10, 100, false)
	expired.StartsAt = now.Add(-2 * time.Hour)
	expired.ExpiresAt = now.Add(-time.Hour)
	inactive := makeRule(2, constants.DiscountTypePercentage, 10, 90, false)
	inactive.IsActive = false
	cart := makeCart(makeCartItem(1, 1000, 1))

	set, err := ResolveDiscounts([]models.DiscountRule{expired, inactive}, nil, cart, now)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !set.AutomaticDiscount.Decimal.IsZero() {
		t.Fatalf("expected no discount from expired/inactive rules, got %s", set.AutomaticDiscount.Decimal)
	}
}

func TestResolveDiscountsBuyTwoGetOne(t *testing.T) {
	buy := 2
	get := 1
	rule := makeRule(1, constants.DiscountTypeBuyXGetY, 0, 100, false)
	rule.Conditions = models.RuleConditions{BuyQuantity: &buy, GetQuantity: &get}
	// 三件 100/200/300：一组，最便宜的一件全免
	cart := makeCart(
		makeCartItem(1, 100, 1),
		makeCartItem(2, 200, 1),
		makeCartItem(3, 300, 1),
	)

	set, err := ResolveDiscounts([]models.DiscountRule{rule}, nil, cart, time.Now())
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !set.AutomaticDiscount.Decimal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected cheapest unit free (100), got %s", set.AutomaticDiscount.Decimal)
	}
}

func TestResolveDiscountsBuyXGetYPartialPercent(t *testing.T) {
	buy := 1
	get := 1
	half := 50
	rule := makeRule(1, constants.DiscountTypeBuyXGetY, 0, 100, false)
	rule.Conditions = models.RuleConditions{BuyQuantity: &buy, GetQuantity: &get, GetDiscountPercent: &half}
	// 四件 100×4：两组，每组最便宜一件半价
	cart := makeCart(makeCartItem(1, 100, 4))

	set, err := ResolveDiscounts([]models.DiscountRule{rule}, nil, cart, time.Now())
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !set.AutomaticDiscount.Decimal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected 2 groups * 50 = 100, got %s", set.AutomaticDiscount.Decimal)
	}
}

func TestResolveDiscountsBundleLane(t *testing.T) {
	bundle := models.ProductBundle{
		ID:            1,
		Title:         "套装",
		ProductIDs:    models.UintArray{1, 2},
		DiscountType:  constants.BundleDiscountTypePercentage,
		DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
		IsActive:      true,
	}
	cart := makeCart(
		makeCartItem(1, 500, 1),
		makeCartItem(2, 300, 1),
		makeCartItem(3, 400, 1),
	)

	set, err := ResolveDiscounts(nil, []models.ProductBundle{bundle}, cart, time.Now())
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	// 套装折扣只对套装内条目小计 800 计价
	if !set.BundleDiscount.Decimal.Equal(decimal.NewFromInt(160)) {
		t.Fatalf("expected bundle discount 160, got %s", set.BundleDiscount.Decimal)
	}
	if !set.AutomaticDiscount.Decimal.IsZero() {
		t.Fatalf("bundle lane must not touch automatic lane")
	}
}

func TestResolveDiscountsBundleIncomplete(t *testing.T) {
	bundle := models.ProductBundle{
		ID:            1,
		Title:         "套装",
		ProductIDs:    models.UintArray{1, 2},
		DiscountType:  constants.BundleDiscountTypeFixed,
		DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		IsActive:      true,
	}
	cart := makeCart(makeCartItem(1, 500, 1))

	set, err := ResolveDiscounts(nil, []models.ProductBundle{bundle}, cart, time.Now())
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !set.BundleDiscount.Decimal.IsZero() {
		t.Fatalf("incomplete bundle must not apply, got %s", set.BundleDiscount.Decimal)
	}
}

func TestResolveDiscountsClampToSubtotal(t *testing.T) {
	rule := makeRule(1, constants.DiscountTypeFixed, 900, 100, false)
	bundle := models.ProductBundle{
		ID:            1,
		Title:         "套装",
		ProductIDs:    models.UintArray{1, 2},
		DiscountType:  constants.BundleDiscountTypeFixed,
		DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(500)),
		IsActive:      true,
	}
	cart := makeCart(
		makeCartItem(1, 600, 1),
		makeCartItem(2, 400, 1),
	)

	set, err := ResolveDiscounts([]models.DiscountRule{rule}, []models.ProductBundle{bundle}, cart, time.Now())
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	total := set.Total().Decimal
	if !total.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected total discount clamped to subtotal 1000, got %s", total)
	}
	// 收敛时优先压缩套装通道
	if !set.AutomaticDiscount.Decimal.Equal(decimal.NewFromInt(900)) {
		t.Fatalf("expected rule lane kept at 900, got %s", set.AutomaticDiscount.Decimal)
	}
	if !set.BundleDiscount.Decimal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected bundle lane compressed to 100, got %s", set.BundleDiscount.Decimal)
	}
}

func TestResolveDiscountsInvalidRuleConfig(t *testing.T) {
	rule := makeRule(1, constants.DiscountTypePercentage, 150, 100, false)
	cart := makeCart(makeCartItem(1, 1000, 1))

	_, err := ResolveDiscounts([]models.DiscountRule{rule}, nil, cart, time.Now())
	if !errors.Is(err, ErrRuleConfigInvalid) {
		t.Fatalf("expected ErrRuleConfigInvalid, got %v", err)
	}
}

func TestValidateCartRejectsMismatchedSubtotal(t *testing.T) {
	cart := makeCart(makeCartItem(1, 100, 2))
	cart.Subtotal = models.NewMoneyFromDecimal(decimal.NewFromInt(500))

	if err := ValidateCart(cart); !errors.Is(err, ErrCartInvalid) {
		t.Fatalf("expected ErrCartInvalid, got %v", err)
	}
}

func TestValidateCartRejectsEmptyCart(t *testing.T) {
	if err := ValidateCart(CartSnapshot{}); !errors.Is(err, ErrCartInvalid) {
		t.Fatalf("expected ErrCartInvalid, got %v", err)
	}
}
