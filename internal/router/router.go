package router

import (
	"fmt"
	"strings"

	"github.com/hairlab-next/internal/cache"
	"github.com/hairlab-next/internal/config"
	adminhandlers "github.com/hairlab-next/internal/http/handlers/admin"
	internalhandlers "github.com/hairlab-next/internal/http/handlers/internalapi"
	publichandlers "github.com/hairlab-next/internal/http/handlers/public"
	"github.com/hairlab-next/internal/logger"
	"github.com/hairlab-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/内部/后台分组）
	publicHandler := publichandlers.New(c)
	internalHandler := internalhandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "hl"
	}
	redisClient := cache.Client()
	promoRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:promo_validate", redisPrefix),
		WindowSeconds: cfg.Security.PromoRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.PromoRateLimit.MaxAttempts,
		Message:       "促销码尝试过于频繁，请稍后再试",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 定价与促销码（匿名可用，带令牌时识别客户身份）
		pricing := apiV1.Group("")
		pricing.Use(OptionalCustomerJWTMiddleware(cfg.UserJWT.SecretKey))
		{
			pricing.POST("/pricing/quote", publicHandler.Quote)
			// 促销码校验限流，防止碰撞枚举
			pricing.POST("/promotions/validate",
				RateLimitMiddleware(redisClient, promoRule, KeyByIPAndJSONField("code")),
				publicHandler.ValidatePromotion)
		}

		// 客户接口（需鉴权）
		customer := apiV1.Group("")
		customer.Use(CustomerJWTAuthMiddleware(cfg.UserJWT.SecretKey))
		{
			customer.GET("/loyalty", publicHandler.LoyaltySummary)
			customer.GET("/loyalty/transactions", publicHandler.LoyaltyTransactions)
			customer.POST("/loyalty/referral", publicHandler.ApplyReferral)
		}

		// 后台管理接口
		admin := apiV1.Group("/admin")
		admin.Use(AdminJWTAuthMiddleware(cfg.JWT.SecretKey))
		{
			admin.GET("/discount-rules", adminHandler.ListDiscountRules)
			admin.POST("/discount-rules", adminHandler.CreateDiscountRule)
			admin.GET("/discount-rules/:id", adminHandler.GetDiscountRule)
			admin.PUT("/discount-rules/:id", adminHandler.UpdateDiscountRule)
			admin.POST("/discount-rules/:id/deactivate", adminHandler.DeactivateDiscountRule)
			admin.DELETE("/discount-rules/:id", adminHandler.DeleteDiscountRule)

			admin.GET("/bundles", adminHandler.ListBundles)
			admin.POST("/bundles", adminHandler.CreateBundle)
			admin.GET("/bundles/:id", adminHandler.GetBundle)
			admin.PUT("/bundles/:id", adminHandler.UpdateBundle)
			admin.DELETE("/bundles/:id", adminHandler.DeleteBundle)

			admin.GET("/promotions", adminHandler.ListPromotions)
			admin.POST("/promotions", adminHandler.CreatePromotion)
			admin.GET("/promotions/:id", adminHandler.GetPromotion)
			admin.GET("/promotions/:id/usages", adminHandler.ListPromotionUsages)
			admin.PUT("/promotions/:id", adminHandler.UpdatePromotion)
			admin.POST("/promotions/:id/deactivate", adminHandler.DeactivatePromotion)
			admin.DELETE("/promotions/:id", adminHandler.DeletePromotion)

			admin.GET("/loyalty/:customerId", adminHandler.GetLoyaltyAccount)
			admin.GET("/loyalty/:customerId/transactions", adminHandler.ListLoyaltyTransactions)
			admin.POST("/loyalty/:customerId/adjust", adminHandler.AdjustLoyalty)
		}
	}

	// 内部服务接口（订单系统回调）
	internalGroup := r.Group("/internal")
	internalGroup.Use(ServiceTokenMiddleware(cfg.Internal.ServiceToken))
	{
		internalGroup.POST("/orders/completed", internalHandler.OrderCompleted)
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
