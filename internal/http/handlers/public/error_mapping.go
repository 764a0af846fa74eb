package public

import (
	"errors"

	"github.com/hairlab-next/internal/http/response"
	"github.com/hairlab-next/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.target.Error(), nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var promoErrorRules = []mappedHandlerError{
	{target: service.ErrPromoNotFound, code: response.CodeNotFound},
	{target: service.ErrPromoInactive, code: response.CodeBadRequest},
	{target: service.ErrPromoNotStarted, code: response.CodeBadRequest},
	{target: service.ErrPromoExpired, code: response.CodeBadRequest},
	{target: service.ErrPromoBelowMinimum, code: response.CodeBadRequest},
	{target: service.ErrPromoUsageLimit, code: response.CodeBadRequest},
	{target: service.ErrPromoCustomerLimit, code: response.CodeBadRequest},
	{target: service.ErrPromoConfigInvalid, code: response.CodeInternal},
}

var pricingErrorRules = []mappedHandlerError{
	{target: service.ErrCartInvalid, code: response.CodeBadRequest},
	{target: service.ErrLoyaltyInvalidAmount, code: response.CodeBadRequest},
	{target: service.ErrRuleConfigInvalid, code: response.CodeInternal},
	{target: service.ErrBundleInvalid, code: response.CodeInternal},
}

var loyaltyErrorRules = []mappedHandlerError{
	{target: service.ErrLoyaltyAccountNotFound, code: response.CodeNotFound},
	{target: service.ErrLoyaltyInsufficientBalance, code: response.CodeBadRequest},
	{target: service.ErrLoyaltyExceedsBudget, code: response.CodeBadRequest},
	{target: service.ErrLoyaltyInvalidAmount, code: response.CodeBadRequest},
	{target: service.ErrLoyaltyConflict, code: response.CodeBadRequest},
	{target: service.ErrReferralCodeNotFound, code: response.CodeNotFound},
	{target: service.ErrReferralSelfUse, code: response.CodeBadRequest},
	{target: service.ErrReferralAlreadyUsed, code: response.CodeBadRequest},
}

func respondQuoteError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(pricingErrorRules, promoErrorRules), response.CodeInternal, "定价计算失败")
}

func respondPromoValidateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(promoErrorRules, pricingErrorRules), response.CodeInternal, "促销码校验失败")
}

func respondLoyaltyError(c *gin.Context, err error) {
	respondWithMappedError(c, err, loyaltyErrorRules, response.CodeInternal, "积分操作失败")
}
