package constants

// 自动折扣规则类型常量
const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
	DiscountTypeBuyXGetY   = "buyXgetY"
)

// 套装折扣类型常量
const (
	BundleDiscountTypePercentage = "percentage"
	BundleDiscountTypeFixed      = "fixed"
)

// 促销码类型常量
const (
	PromoTypePercentage   = "percentage"
	PromoTypeFixed        = "fixed"
	PromoTypeFreeShipping = "free_shipping"
)

// 积分交易类型常量
const (
	LoyaltyTxnTypeEarned     = "earned"
	LoyaltyTxnTypeSpent      = "spent"
	LoyaltyTxnTypeExpired    = "expired"
	LoyaltyTxnTypeWelcome    = "welcome"
	LoyaltyTxnTypeReferral   = "referral"
	LoyaltyTxnTypeAdjustment = "adjustment"
)

// 会员等级常量（按 total_earned 单调升级，不降级）
const (
	LoyaltyLevelBronze = "bronze"
	LoyaltyLevelSilver = "silver"
	LoyaltyLevelGold   = "gold"
)

// 操作主体角色常量
const (
	PrincipalRoleAdmin    = "admin"
	PrincipalRoleCustomer = "customer"
	PrincipalRoleService  = "service"
)

// 队列与任务常量
const (
	QueueDefault = "default"

	TaskCheckoutCompleted = "checkout:completed"
	TaskLoyaltyExpire     = "loyalty:expire"
)
