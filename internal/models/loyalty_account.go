package models

import (
	"time"

	"gorm.io/gorm"
)

// LoyaltyAccount 客户积分账户（首个积分事件懒创建）。
// 不变式：points_balance == total_earned - total_spent 恒成立；
// 等级按 total_earned 阈值单调升级，达到后不再回退。
type LoyaltyAccount struct {
	ID            uint           `gorm:"primarykey" json:"id"`                              // 主键
	CustomerID    uint           `gorm:"uniqueIndex;not null" json:"customer_id"`           // 客户ID
	PointsBalance int64          `gorm:"not null;default:0" json:"points_balance"`          // 当前可用积分
	TotalEarned   int64          `gorm:"not null;default:0" json:"total_earned"`            // 累计获得积分（单调不减）
	TotalSpent    int64          `gorm:"not null;default:0" json:"total_spent"`             // 累计消耗积分（单调不减）
	Level         string         `gorm:"not null;default:bronze" json:"level"`              // 等级（bronze/silver/gold）
	ReferralCode  string         `gorm:"uniqueIndex;not null" json:"referral_code"`         // 专属推荐码
	ReferredBy    string         `json:"referred_by"`                                       // 注册时使用的推荐码
	IsEnabled     bool           `gorm:"not null" json:"is_enabled"`                        // 是否参与积分计划
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                           // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                           // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                    // 软删除时间（GDPR 匿名化）
}

// TableName 指定表名
func (LoyaltyAccount) TableName() string {
	return "loyalty_points"
}
