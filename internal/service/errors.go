package service

import "errors"

// 定价与规则配置错误
var (
	ErrCartInvalid       = errors.New("购物车快照不合法")
	ErrRuleConfigInvalid = errors.New("折扣规则配置不合法")
	ErrBundleInvalid     = errors.New("套装配置不合法")
	ErrRuleNotFound      = errors.New("折扣规则不存在")
	ErrBundleNotFound    = errors.New("套装不存在")
)

// 促销码错误（校验按序短路，首个失败即返回）
var (
	ErrPromoNotFound             = errors.New("促销码不存在")
	ErrPromoInactive             = errors.New("促销码未启用")
	ErrPromoNotStarted           = errors.New("促销码尚未生效")
	ErrPromoExpired              = errors.New("促销码已过期")
	ErrPromoBelowMinimum         = errors.New("订单金额未达到促销码使用门槛")
	ErrPromoUsageLimit           = errors.New("促销码使用次数已达上限")
	ErrPromoCustomerLimit        = errors.New("该客户的促销码使用次数已达上限")
	ErrPromoConfigInvalid        = errors.New("促销码配置不合法")
	ErrPromoUsageCustomerMissing = errors.New("促销码使用记录缺少客户标识")
)

// 积分账户错误
var (
	ErrLoyaltyAccountNotFound     = errors.New("积分账户不存在")
	ErrLoyaltyInsufficientBalance = errors.New("积分余额不足")
	ErrLoyaltyExceedsBudget       = errors.New("积分抵扣超出本单可用额度")
	ErrLoyaltyInvalidAmount       = errors.New("积分数额不合法")
	ErrLoyaltyConflict            = errors.New("积分账户并发冲突，请重试")
	ErrLoyaltyCodeGenerateFailed  = errors.New("推荐码生成失败")
	ErrReferralCodeNotFound       = errors.New("推荐码不存在")
	ErrReferralSelfUse            = errors.New("不能使用自己的推荐码")
	ErrReferralAlreadyUsed        = errors.New("已经使用过推荐码")
)

// 权限错误
var (
	ErrPermissionDenied = errors.New("无权执行该操作")
)
