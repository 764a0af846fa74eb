package service

import (
	"context"
	"sort"
	"time"

	"github.com/hairlab-next/internal/constants"
	"github.com/hairlab-next/internal/models"

	"github.com/shopspring/decimal"
)

// AppliedDiscount 单项已应用折扣
type AppliedDiscount struct {
	Source string       `json:"source"` // rule / bundle
	ID     uint         `json:"id"`
	Title  string       `json:"title"`
	Type   string       `json:"type"`
	Amount models.Money `json:"amount"`
}

// DiscountSet 自动折扣与套装折扣的解析结果
type DiscountSet struct {
	AutomaticDiscount models.Money      `json:"automatic_discount"`
	BundleDiscount    models.Money      `json:"bundle_discount"`
	Applied           []AppliedDiscount `json:"applied"`
}

// Total 两条折扣通道合计
func (d DiscountSet) Total() models.Money {
	return models.NewMoneyFromDecimal(d.AutomaticDiscount.Decimal.Add(d.BundleDiscount.Decimal))
}

// DiscountService 自动折扣解析服务
type DiscountService struct {
	ruleStore *RuleStore
}

// NewDiscountService 创建自动折扣解析服务
func NewDiscountService(ruleStore *RuleStore) *DiscountService {
	return &DiscountService{ruleStore: ruleStore}
}

// Resolve 解析购物车当前适用的全部自动折扣与套装折扣
func (s *DiscountService) Resolve(ctx context.Context, cart CartSnapshot, now time.Time) (DiscountSet, error) {
	if err := ValidateCart(cart); err != nil {
		return DiscountSet{}, err
	}
	snapshot, err := s.ruleStore.Snapshot(ctx, now)
	if err != nil {
		return DiscountSet{}, err
	}
	return ResolveDiscounts(snapshot.Rules, snapshot.Bundles, cart, now)
}

// ResolveDiscounts 对给定规则快照解析折扣。纯函数，可任意并发调用。
//
// 规则通道：按优先级降序（同优先级按 ID 升序）遍历匹配规则；
// 首条被采纳的规则按原始小计计价，此后仅 stackable 规则可继续叠加，
// 叠加规则按扣减后的滚动小计计价（逐级递减）。
// 套装通道独立解析，对套装内条目小计计价，恒与规则通道相加。
// 合计折扣收敛到 [0, subtotal]。
func ResolveDiscounts(rules []models.DiscountRule, bundles []models.ProductBundle, cart CartSnapshot, now time.Time) (DiscountSet, error) {
	subtotal := cart.Subtotal.Decimal
	applied := make([]AppliedDiscount, 0, 4)

	matched := make([]models.DiscountRule, 0, len(rules))
	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}
		if now.Before(rule.StartsAt) || !now.Before(rule.ExpiresAt) {
			continue
		}
		if err := validateRuleConfig(rule); err != nil {
			return DiscountSet{}, err
		}
		if !MatchesConditions(rule.Conditions, cart) {
			continue
		}
		matched = append(matched, rule)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Priority != matched[j].Priority {
			return matched[i].Priority > matched[j].Priority
		}
		return matched[i].ID < matched[j].ID
	})

	automatic := decimal.Zero
	running := subtotal
	selected := false
	for _, rule := range matched {
		if selected && !rule.Stackable {
			continue
		}
		base := subtotal
		if selected {
			base = running
		}
		amount := computeRuleDiscount(rule, base, cart)
		if amount.LessThanOrEqual(decimal.Zero) {
			continue
		}
		applied = append(applied, AppliedDiscount{
			Source: "rule",
			ID:     rule.ID,
			Title:  rule.Title,
			Type:   rule.Type,
			Amount: models.NewMoneyFromDecimal(amount),
		})
		automatic = automatic.Add(amount)
		running = running.Sub(amount)
		if running.IsNegative() {
			running = decimal.Zero
		}
		selected = true
	}

	bundleTotal := decimal.Zero
	cartProducts := cart.ProductIDSet()
	for _, bundle := range bundles {
		if !bundle.IsActive || len(bundle.ProductIDs) < 2 {
			continue
		}
		complete := true
		for _, productID := range bundle.ProductIDs {
			if _, ok := cartProducts[productID]; !ok {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}
		lineSubtotal := decimal.Zero
		for _, item := range cart.Items {
			if bundle.ProductIDs.Contains(item.ProductID) {
				lineSubtotal = lineSubtotal.Add(item.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity))))
			}
		}
		amount := computeFlatDiscount(bundle.DiscountType, bundle.DiscountValue.Decimal, lineSubtotal)
		if amount.LessThanOrEqual(decimal.Zero) {
			continue
		}
		applied = append(applied, AppliedDiscount{
			Source: "bundle",
			ID:     bundle.ID,
			Title:  bundle.Title,
			Type:   bundle.DiscountType,
			Amount: models.NewMoneyFromDecimal(amount),
		})
		bundleTotal = bundleTotal.Add(amount)
	}

	// 合计收敛：配置过度叠加时优先压缩套装通道，再压缩规则通道
	if overflow := automatic.Add(bundleTotal).Sub(subtotal); overflow.GreaterThan(decimal.Zero) {
		fromBundle := decimal.Min(bundleTotal, overflow)
		bundleTotal = bundleTotal.Sub(fromBundle)
		overflow = overflow.Sub(fromBundle)
		if overflow.GreaterThan(decimal.Zero) {
			automatic = automatic.Sub(overflow)
		}
	}

	return DiscountSet{
		AutomaticDiscount: models.NewMoneyFromDecimal(automatic),
		BundleDiscount:    models.NewMoneyFromDecimal(bundleTotal),
		Applied:           applied,
	}, nil
}

// computeRuleDiscount 计算单条规则相对计价基数的折扣额
func computeRuleDiscount(rule models.DiscountRule, base decimal.Decimal, cart CartSnapshot) decimal.Decimal {
	switch rule.Type {
	case constants.DiscountTypePercentage:
		return base.Mul(rule.Value.Decimal).Div(decimal.NewFromInt(100)).Round(2)
	case constants.DiscountTypeFixed:
		return decimal.Min(rule.Value.Decimal, base).Round(2)
	case constants.DiscountTypeBuyXGetY:
		return computeBuyXGetYDiscount(rule.Conditions, base, cart)
	default:
		return decimal.Zero
	}
}

// computeBuyXGetYDiscount 计算买X赠Y折扣：按单价升序展开全部单件，
// 每满一组（buy+get 件）对该组最便宜的 get 件按比例折价。
func computeBuyXGetYDiscount(conditions models.RuleConditions, base decimal.Decimal, cart CartSnapshot) decimal.Decimal {
	buyQuantity := 1
	if conditions.BuyQuantity != nil {
		buyQuantity = *conditions.BuyQuantity
	}
	getQuantity := 1
	if conditions.GetQuantity != nil {
		getQuantity = *conditions.GetQuantity
	}
	discountPercent := 100
	if conditions.GetDiscountPercent != nil {
		discountPercent = *conditions.GetDiscountPercent
	}
	groupSize := buyQuantity + getQuantity
	if groupSize <= 0 {
		return decimal.Zero
	}

	units := make([]decimal.Decimal, 0, cart.TotalQuantity())
	for _, item := range cart.Items {
		for i := 0; i < item.Quantity; i++ {
			units = append(units, item.UnitPrice.Decimal)
		}
	}
	if len(units) < groupSize {
		return decimal.Zero
	}
	sort.Slice(units, func(i, j int) bool { return units[i].LessThan(units[j]) })

	percent := decimal.NewFromInt(int64(discountPercent)).Div(decimal.NewFromInt(100))
	groups := len(units) / groupSize
	total := decimal.Zero
	for g := 0; g < groups; g++ {
		for i := 0; i < getQuantity; i++ {
			idx := g*groupSize + i
			if idx >= len(units) {
				break
			}
			total = total.Add(units[idx].Mul(percent))
		}
	}
	return decimal.Min(total.Round(2), base)
}

// computeFlatDiscount 计算 percentage/fixed 相对基数的折扣额，固定金额不超过基数
func computeFlatDiscount(discountType string, value, base decimal.Decimal) decimal.Decimal {
	if base.LessThanOrEqual(decimal.Zero) || value.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	switch discountType {
	case constants.DiscountTypePercentage:
		return base.Mul(value).Div(decimal.NewFromInt(100)).Round(2)
	case constants.DiscountTypeFixed:
		return decimal.Min(value, base).Round(2)
	default:
		return decimal.Zero
	}
}

// validateRuleConfig 规则配置校验：百分比取值 [0,100]，
// 固定金额非负，时间窗起点必须早于终点。
func validateRuleConfig(rule models.DiscountRule) error {
	if !rule.StartsAt.Before(rule.ExpiresAt) {
		return ErrRuleConfigInvalid
	}
	switch rule.Type {
	case constants.DiscountTypePercentage:
		if rule.Value.Decimal.IsNegative() || rule.Value.Decimal.GreaterThan(decimal.NewFromInt(100)) {
			return ErrRuleConfigInvalid
		}
	case constants.DiscountTypeFixed:
		if rule.Value.Decimal.IsNegative() {
			return ErrRuleConfigInvalid
		}
	case constants.DiscountTypeBuyXGetY:
		if conditions := rule.Conditions; conditions.GetDiscountPercent != nil &&
			(*conditions.GetDiscountPercent < 0 || *conditions.GetDiscountPercent > 100) {
			return ErrRuleConfigInvalid
		}
	default:
		return ErrRuleConfigInvalid
	}
	return nil
}
