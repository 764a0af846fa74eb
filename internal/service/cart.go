package service

import (
	"github.com/hairlab-next/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// CartItemSnapshot 购物车条目快照
type CartItemSnapshot struct {
	ProductID   uint         `json:"product_id" validate:"required,gt=0"`
	CategoryIDs []uint       `json:"category_ids" validate:"omitempty,dive,gt=0"`
	UnitPrice   models.Money `json:"unit_price"`
	Quantity    int          `json:"quantity" validate:"required,gt=0"`
}

// CartSnapshot 一次定价评估的不可变输入。由购物车/目录协作方构建，
// 定价过程不回查外部数据；快照缺失或不合法时定价直接失败（fail closed）。
type CartSnapshot struct {
	Items         []CartItemSnapshot `json:"items" validate:"required,min=1,dive"`
	Subtotal      models.Money       `json:"subtotal"`
	ShippingTotal models.Money       `json:"shipping_total"`
	CustomerID    uint               `json:"customer_id"`
	Email         string             `json:"email" validate:"omitempty,email"`
}

var cartValidator = validator.New()

// ValidateCart 校验购物车快照。结构校验之外还检查金额非负、
// 小计与条目合计一致（允许四舍五入误差 0.01）。
func ValidateCart(cart CartSnapshot) error {
	if err := cartValidator.Struct(cart); err != nil {
		return ErrCartInvalid
	}
	if cart.Subtotal.Decimal.IsNegative() || cart.ShippingTotal.Decimal.IsNegative() {
		return ErrCartInvalid
	}
	sum := decimal.Zero
	for _, item := range cart.Items {
		if item.UnitPrice.Decimal.IsNegative() {
			return ErrCartInvalid
		}
		sum = sum.Add(item.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	diff := sum.Sub(cart.Subtotal.Decimal).Abs()
	if diff.GreaterThan(decimal.NewFromFloat(0.01)) {
		return ErrCartInvalid
	}
	return nil
}

// TotalQuantity 条目数量合计
func (c CartSnapshot) TotalQuantity() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// ProductIDSet 商品ID集合
func (c CartSnapshot) ProductIDSet() map[uint]struct{} {
	ids := make(map[uint]struct{}, len(c.Items))
	for _, item := range c.Items {
		ids[item.ProductID] = struct{}{}
	}
	return ids
}

// CategoryIDSet 条目所属分类ID集合
func (c CartSnapshot) CategoryIDSet() map[uint]struct{} {
	ids := make(map[uint]struct{})
	for _, item := range c.Items {
		for _, categoryID := range item.CategoryIDs {
			ids[categoryID] = struct{}{}
		}
	}
	return ids
}
