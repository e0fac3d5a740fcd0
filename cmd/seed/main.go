package main

import (
	"fmt"

	"github.com/Leclee/lecfaka/internal/config"
	"github.com/Leclee/lecfaka/internal/constants"
	"github.com/Leclee/lecfaka/internal/logger"
	"github.com/Leclee/lecfaka/internal/models"

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

	// 添加商品
	commodities := []models.Commodity{
		{
			Name:        "演示商品-自动发货（充足库存）",
			Description: "用于前台库存展示：自动发货，卡密库存充足。",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(9.90)),
			MemberPrice: models.NewMoneyFromDecimal(decimal.NewFromFloat(8.90)),
			Status:      constants.CommodityStatusListed,
			DeliveryWay: constants.DeliveryWayAuto,
			PickMode:    constants.CardPickModeFIFO,
			Minimum:     1,
			Maximum:     10,
		},
		{
			Name:        "演示商品-自动发货（批发优惠）",
			Description: "用于批发阶梯演示：数量越多单价越低。",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(100)),
			MemberPrice: models.NewMoneyFromDecimal(decimal.NewFromFloat(95)),
			Status:      constants.CommodityStatusListed,
			DeliveryWay: constants.DeliveryWayAuto,
			PickMode:    constants.CardPickModeRandom,
			WholesaleConfig: `[{"quantity":5,"type":"price","price":"90"},` +
				`{"quantity":10,"type":"discount_percent","discount_percent":"85"}]`,
		},
		{
			Name:         "演示商品-预选卡密",
			Description:  "用于预选卡密演示：买家可指定想要的卡密，额外加价。",
			Price:        models.NewMoneyFromDecimal(decimal.NewFromFloat(19.90)),
			MemberPrice:  models.NewMoneyFromDecimal(decimal.NewFromFloat(19.90)),
			Status:       constants.CommodityStatusListed,
			DeliveryWay:  constants.DeliveryWayAuto,
			PickMode:     constants.CardPickModeFIFO,
			DraftOpen:    true,
			DraftPremium: models.NewMoneyFromDecimal(decimal.NewFromFloat(2)),
		},
		{
			Name:        "演示商品-人工发货",
			Description: "用于人工发货演示：付款后由管理员手动交付。",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(50)),
			MemberPrice: models.NewMoneyFromDecimal(decimal.NewFromFloat(45)),
			Status:      constants.CommodityStatusListed,
			DeliveryWay: constants.DeliveryWayManual,
			OnlyUser:    true,
		},
	}

	for i := range commodities {
		commodity := &commodities[i]
		var existing models.Commodity
		if err := models.DB.Where("name = ?", commodity.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(commodity).Error; err != nil {
				stdLog.Printf("Failed to create commodity %s: %v", commodity.Name, err)
			} else {
				stdLog.Printf("Created commodity: %s", commodity.Name)
			}
			continue
		}
		commodity.ID = existing.ID
		stdLog.Printf("Commodity already exists: %s", commodity.Name)
	}

	// 为自动发货商品准备卡密
	cardSeedPlans := []struct {
		CommodityName string
		Prefix        string
		Total         int
	}{
		{CommodityName: "演示商品-自动发货（充足库存）", Prefix: "seed-auto", Total: 20},
		{CommodityName: "演示商品-自动发货（批发优惠）", Prefix: "seed-bulk", Total: 30},
		{CommodityName: "演示商品-预选卡密", Prefix: "seed-draft", Total: 5},
	}

	for _, plan := range cardSeedPlans {
		var commodity models.Commodity
		if err := models.DB.Where("name = ?", plan.CommodityName).First(&commodity).Error; err != nil {
			stdLog.Printf("Skip card seed for %s: commodity not found", plan.CommodityName)
			continue
		}
		created := 0
		for i := 1; i <= plan.Total; i++ {
			secret := fmt.Sprintf("%s-%04d", plan.Prefix, i)
			var existing models.Card
			if err := models.DB.Where("commodity_id = ? AND secret = ?", commodity.ID, secret).
				First(&existing).Error; err == nil {
				continue
			}
			card := models.Card{
				CommodityID: commodity.ID,
				Secret:      secret,
				Status:      constants.CardStatusAvailable,
			}
			if err := models.DB.Create(&card).Error; err != nil {
				stdLog.Printf("Failed to create card %s: %v", secret, err)
				continue
			}
			created++
		}
		stdLog.Printf("Seeded cards for %s: created=%d", plan.CommodityName, created)
	}

	// 添加支付方式
	methods := []models.PaymentMethod{
		{
			Name:        "余额支付",
			Handle:      constants.PaymentHandleBalance,
			FeeMode:     constants.PaymentFeeModeFixed,
			FeeValue:    models.NewMoneyFromDecimal(decimal.Zero),
			ForPurchase: true,
			Enabled:     true,
			Sort:        100,
		},
		{
			Name:        "易支付-支付宝",
			Handle:      constants.PaymentHandleEpay,
			Channel:     "alipay",
			FeeMode:     constants.PaymentFeeModePercent,
			FeeValue:    models.NewMoneyFromDecimal(decimal.NewFromFloat(1.5)),
			ForPurchase: true,
			Enabled:     false,
			Sort:        90,
			Config:      `{"gateway_url":"https://pay.example.com","merchant_id":"1000","merchant_key":"change-me"}`,
		},
		{
			Name:        "USDT-TRC20",
			Handle:      constants.PaymentHandleUsdt,
			FeeMode:     constants.PaymentFeeModeFixed,
			FeeValue:    models.NewMoneyFromDecimal(decimal.Zero),
			ForPurchase: true,
			Enabled:     false,
			Sort:        80,
			Config:      `{"gateway_url":"https://usdt.example.com","auth_token":"change-me"}`,
		},
	}

	for _, method := range methods {
		var existing models.PaymentMethod
		if err := models.DB.Where("handle = ? AND channel = ?", method.Handle, method.Channel).
			First(&existing).Error; err != nil {
			if err := models.DB.Create(&method).Error; err != nil {
				stdLog.Printf("Failed to create payment method %s: %v", method.Name, err)
			} else {
				stdLog.Printf("Created payment method: %s", method.Name)
			}
		} else {
			stdLog.Printf("Payment method already exists: %s", method.Name)
		}
	}

	// 运行时配置
	var setting models.SystemConfig
	if err := models.DB.Where("config_key = ?", constants.ConfigKeyCommissionRate).First(&setting).Error; err != nil {
		setting = models.SystemConfig{
			Key:   constants.ConfigKeyCommissionRate,
			Value: "0.10",
		}
		if err := models.DB.Create(&setting).Error; err != nil {
			stdLog.Printf("Failed to create commission rate config: %v", err)
		} else {
			stdLog.Println("Created commission rate config")
		}
	} else {
		stdLog.Println("Commission rate config already exists")
	}

	fmt.Println("\n✅ Seed data created successfully!")
	fmt.Println("Summary:")
	fmt.Println("- 4 Commodities (auto/wholesale/draft/manual)")
	fmt.Println("- 55 Cards across 3 commodities")
	fmt.Println("- 3 Payment methods (balance enabled by default)")
	fmt.Println("- Commission rate config")
}
