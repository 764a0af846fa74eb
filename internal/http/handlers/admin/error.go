package admin

import (
	"errors"

	handlershared "github.com/hairlab-next/internal/http/handlers/shared"
	"github.com/hairlab-next/internal/http/response"
	"github.com/hairlab-next/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

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

var discountAdminErrorRules = []mappedHandlerError{
	{target: service.ErrRuleNotFound, code: response.CodeNotFound},
	{target: service.ErrBundleNotFound, code: response.CodeNotFound},
	{target: service.ErrRuleConfigInvalid, code: response.CodeBadRequest},
	{target: service.ErrBundleInvalid, code: response.CodeBadRequest},
}

var promoAdminErrorRules = []mappedHandlerError{
	{target: service.ErrPromoNotFound, code: response.CodeNotFound},
	{target: service.ErrPromoConfigInvalid, code: response.CodeBadRequest},
}

var loyaltyAdminErrorRules = []mappedHandlerError{
	{target: service.ErrPermissionDenied, code: response.CodeForbidden},
	{target: service.ErrLoyaltyAccountNotFound, code: response.CodeNotFound},
	{target: service.ErrLoyaltyInvalidAmount, code: response.CodeBadRequest},
	{target: service.ErrLoyaltyInsufficientBalance, code: response.CodeBadRequest},
	{target: service.ErrLoyaltyConflict, code: response.CodeBadRequest},
}

func respondDiscountAdminError(c *gin.Context, err error) {
	respondWithMappedError(c, err, discountAdminErrorRules, response.CodeInternal, "折扣配置操作失败")
}

func respondPromoAdminError(c *gin.Context, err error) {
	respondWithMappedError(c, err, promoAdminErrorRules, response.CodeInternal, "促销码操作失败")
}

func respondLoyaltyAdminError(c *gin.Context, err error) {
	respondWithMappedError(c, err, loyaltyAdminErrorRules, response.CodeInternal, "积分操作失败")
}
