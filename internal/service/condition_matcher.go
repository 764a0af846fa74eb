package service

import "github.com/hairlab-next/internal/models"

// MatchesConditions 判断购物车是否满足规则的全部适用条件。
// 条件集是封闭的：每种条件显式求值，缺省条件恒成立；
// 规则匹配当且仅当所有出现的条件同时成立。无副作用。
func MatchesConditions(conditions models.RuleConditions, cart CartSnapshot) bool {
	if conditions.MinItems != nil && cart.TotalQuantity() < *conditions.MinItems {
		return false
	}
	if conditions.MinOrderAmount != nil &&
		cart.Subtotal.Decimal.LessThan(conditions.MinOrderAmount.Decimal) {
		return false
	}
	// requiredProductIds：购物车必须包含列表中的每一个商品（全含）
	if len(conditions.RequiredProductIDs) > 0 {
		inCart := cart.ProductIDSet()
		for _, productID := range conditions.RequiredProductIDs {
			if _, ok := inCart[productID]; !ok {
				return false
			}
		}
	}
	// requiredCategoryIds：任一条目命中任一分类即可
	if len(conditions.RequiredCategoryIDs) > 0 {
		cartCategories := cart.CategoryIDSet()
		hit := false
		for _, categoryID := range conditions.RequiredCategoryIDs {
			if _, ok := cartCategories[categoryID]; ok {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}
