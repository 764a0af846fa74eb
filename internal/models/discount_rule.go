package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// RuleConditions 自动折扣规则的适用条件（JSON 文本存储）。
// 字段缺省（nil/空）视为该条件恒成立；requiredProductIds 为全含语义，
// requiredCategoryIds 为命中任一语义。
type RuleConditions struct {
	MinItems            *int       `json:"min_items,omitempty" validate:"omitempty,gt=0"`                    // 最低商品件数
	MinOrderAmount      *Money     `json:"min_order_amount,omitempty"`                                       // 最低订单金额
	RequiredProductIDs  UintArray  `json:"required_product_ids,omitempty" validate:"omitempty,dive,gt=0"`    // 必须全部包含的商品
	RequiredCategoryIDs UintArray  `json:"required_category_ids,omitempty" validate:"omitempty,dive,gt=0"`   // 命中任一即可的分类
	BuyQuantity         *int       `json:"buy_quantity,omitempty" validate:"omitempty,gt=0"`                 // buyXgetY 购买件数
	GetQuantity         *int       `json:"get_quantity,omitempty" validate:"omitempty,gt=0"`                 // buyXgetY 赠送件数
	GetDiscountPercent  *int       `json:"get_discount_percent,omitempty" validate:"omitempty,gte=0,lte=100"` // buyXgetY 赠品折扣比例
}

// Value 实现 driver.Valuer 接口
func (c RuleConditions) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan 实现 sql.Scanner 接口
func (c *RuleConditions) Scan(value interface{}) error {
	if value == nil {
		*c = RuleConditions{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}
	if len(bytes) == 0 {
		*c = RuleConditions{}
		return nil
	}
	return json.Unmarshal(bytes, c)
}

// DiscountRule 自动折扣规则
type DiscountRule struct {
	ID         uint           `gorm:"primarykey" json:"id"`                            // 主键
	Title      string         `gorm:"not null" json:"title"`                           // 名称
	Type       string         `gorm:"not null" json:"type"`                            // 类型（percentage/fixed/buyXgetY）
	Value      Money          `gorm:"type:decimal(20,2);not null" json:"value"`        // 数值（百分比或固定金额）
	Conditions RuleConditions `gorm:"type:text" json:"conditions"`                     // 适用条件
	Priority   int            `gorm:"not null;default:0;index" json:"priority"`        // 优先级（越大越先评估）
	Stackable  bool           `gorm:"not null;default:false" json:"stackable"`         // 是否可与其它规则叠加
	StartsAt   time.Time      `gorm:"index;not null" json:"starts_at"`                 // 生效时间
	ExpiresAt  time.Time      `gorm:"index;not null" json:"expires_at"`                // 失效时间
	IsActive   bool           `gorm:"not null" json:"is_active"`                       // 是否启用（创建时显式写入，避免零值被列默认值吞掉）
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`                         // 创建时间
	UpdatedAt  time.Time      `gorm:"index" json:"updated_at"`                         // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                                  // 软删除时间
}

// TableName 指定表名
func (DiscountRule) TableName() string {
	return "discount_rules"
}
