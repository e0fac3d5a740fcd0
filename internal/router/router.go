package router

import (
	"fmt"
	"strings"

	"github.com/Leclee/lecfaka/internal/cache"
	"github.com/Leclee/lecfaka/internal/config"
	"github.com/Leclee/lecfaka/internal/constants"
	adminhandlers "github.com/Leclee/lecfaka/internal/http/handlers/admin"
	publichandlers "github.com/Leclee/lecfaka/internal/http/handlers/public"
	"github.com/Leclee/lecfaka/internal/logger"
	"github.com/Leclee/lecfaka/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	redisClient := cache.Client()
	orderRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:order", redisPrefix),
		WindowSeconds: cfg.Security.OrderRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.OrderRateLimit.MaxRequests,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("")
		{
			public.GET("/commodities", publicHandler.ListCommodities)
			public.GET("/commodities/:id", publicHandler.GetCommodity)
			public.GET("/commodities/:id/stock", publicHandler.GetCommodityStock)
			public.GET("/commodities/:id/drafts", publicHandler.ListCommodityDrafts)
			public.GET("/payment-methods", publicHandler.ListPaymentMethods)
		}

		// 下单与查单（游客可用，登录用户自动识别身份）
		shop := apiV1.Group("")
		shop.Use(OptionalUserAuthMiddleware(cfg.JWT.SecretKey))
		{
			shop.POST("/orders", RateLimitMiddleware(redisClient, orderRule, KeyByIP), publicHandler.CreateOrder)
			shop.GET("/orders/:trade_no", publicHandler.QueryOrder)
		}

		// 用户接口（需鉴权）
		user := apiV1.Group("/user")
		user.Use(UserAuthMiddleware(cfg.JWT.SecretKey))
		{
			user.GET("/orders", publicHandler.ListMyOrders)
		}

		// 支付网关异步回调
		apiV1.POST("/payment/notify/:handle", publicHandler.PaymentCallback)
		apiV1.GET("/payment/notify/:handle", publicHandler.PaymentCallback)

		// 管理员接口
		admin := apiV1.Group("/admin")
		admin.Use(AdminAuthMiddleware(cfg.JWT.SecretKey))
		{
			admin.POST("/commodities/:id/cards/import", adminHandler.ImportCards)
			admin.POST("/commodities/:id/cards/clear", adminHandler.ClearUnsoldCards)
			admin.GET("/commodities/:id/cards/stock", adminHandler.GetCardStock)

			admin.GET("/orders", adminHandler.AdminListOrders)
			admin.POST("/orders/:id/fulfill", adminHandler.AdminFulfillOrder)
			admin.POST("/orders/:id/refund", adminHandler.AdminRefundOrder)

			admin.GET("/bills", adminHandler.AdminListBills)

			admin.GET("/settings", adminHandler.GetSettings)
			admin.PUT("/settings", adminHandler.UpdateSetting)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
