package service

import (
	"github.com/golang-jwt/jwt/v5"
)

// AdminJWTClaims 管理端 JWT 声明。令牌由外部身份服务签发，
// 本服务只做校验，不维护令牌吊销状态。
type AdminJWTClaims struct {
	AdminID  uint   `json:"admin_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// CustomerJWTClaims 客户 JWT 声明
type CustomerJWTClaims struct {
	CustomerID uint   `json:"customer_id"`
	Email      string `json:"email"`
	jwt.RegisteredClaims
}
