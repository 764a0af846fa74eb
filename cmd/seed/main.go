package main

import (
	"time"

	"github.com/hairlab-next/internal/config"
	"github.com/hairlab-next/internal/constants"
	"github.com/hairlab-next/internal/logger"
	"github.com/hairlab-next/internal/models"

	"github.com/shopspring/decimal"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	now := time.Now()
	yearLater := now.AddDate(1, 0, 0)

	// 示例自动折扣规则
	minItems3 := 3
	minOrder := models.NewMoneyFromDecimal(decimal.NewFromInt(1000))
	buy2 := 2
	get1 := 1
	rules := []models.DiscountRule{
		{
			Title: "满1000九折",
			Type:  constants.DiscountTypePercentage,
			Value: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
			Conditions: models.RuleConditions{
				MinOrderAmount: &minOrder,
			},
			Priority:  100,
			Stackable: false,
			StartsAt:  now,
			ExpiresAt: yearLater,
			IsActive:  true,
		},
		{
			Title: "满3件减50",
			Type:  constants.DiscountTypeFixed,
			Value: models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
			Conditions: models.RuleConditions{
				MinItems: &minItems3,
			},
			Priority:  50,
			Stackable: true,
			StartsAt:  now,
			ExpiresAt: yearLater,
			IsActive:  true,
		},
		{
			Title: "买二送一",
			Type:  constants.DiscountTypeBuyXGetY,
			Value: models.NewMoneyFromDecimal(decimal.Zero),
			Conditions: models.RuleConditions{
				BuyQuantity: &buy2,
				GetQuantity: &get1,
			},
			Priority:  10,
			Stackable: false,
			StartsAt:  now,
			ExpiresAt: yearLater,
			IsActive:  true,
		},
	}
	for _, rule := range rules {
		var existing models.DiscountRule
		if err := models.DB.Where("title = ?", rule.Title).First(&existing).Error; err != nil {
			if err := models.DB.Create(&rule).Error; err != nil {
				stdLog.Printf("Failed to create discount rule %s: %v", rule.Title, err)
			} else {
				stdLog.Printf("Created discount rule: %s", rule.Title)
			}
		} else {
			stdLog.Printf("Discount rule already exists: %s", rule.Title)
		}
	}

	// 示例套装
	bundles := []models.ProductBundle{
		{
			Title:         "洗护套装",
			ProductIDs:    models.UintArray{1, 2},
			DiscountType:  constants.BundleDiscountTypePercentage,
			DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(15)),
			IsActive:      true,
		},
		{
			Title:         "造型三件套",
			ProductIDs:    models.UintArray{3, 4, 5},
			DiscountType:  constants.BundleDiscountTypeFixed,
			DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(120)),
			IsActive:      true,
		},
	}
	for _, bundle := range bundles {
		var existing models.ProductBundle
		if err := models.DB.Where("title = ?", bundle.Title).First(&existing).Error; err != nil {
			if err := models.DB.Create(&bundle).Error; err != nil {
				stdLog.Printf("Failed to create bundle %s: %v", bundle.Title, err)
			} else {
				stdLog.Printf("Created bundle: %s", bundle.Title)
			}
		} else {
			stdLog.Printf("Bundle already exists: %s", bundle.Title)
		}
	}

	// 示例促销码
	promos := []models.Promotion{
		{
			Code:              "WELCOME15",
			Title:             "新客85折",
			Type:              constants.PromoTypePercentage,
			Value:             models.NewMoneyFromDecimal(decimal.NewFromInt(15)),
			MinOrderAmount:    models.NewMoneyFromDecimal(decimal.NewFromInt(500)),
			MaxDiscountAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(300)),
			PerCustomerLimit:  1,
			IsActive:          true,
		},
		{
			Code:           "SAVE100",
			Title:          "立减100",
			Type:           constants.PromoTypeFixed,
			Value:          models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
			MinOrderAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(800)),
			UsageLimit:     500,
			IsActive:       true,
		},
		{
			Code:     "FREESHIP",
			Title:    "免运费",
			Type:     constants.PromoTypeFreeShipping,
			IsActive: true,
		},
	}
	for _, promo := range promos {
		var existing models.Promotion
		if err := models.DB.Where("code = ?", promo.Code).First(&existing).Error; err != nil {
			if err := models.DB.Create(&promo).Error; err != nil {
				stdLog.Printf("Failed to create promotion %s: %v", promo.Code, err)
			} else {
				stdLog.Printf("Created promotion: %s", promo.Code)
			}
		} else {
			stdLog.Printf("Promotion already exists: %s", promo.Code)
		}
	}

	stdLog.Printf("Seed completed")
}
