package service

import (
	"strings"
	"time"

	"github.com/Leclee/lecfaka/internal/constants"
	"github.com/Leclee/lecfaka/internal/models"

	"github.com/shopspring/decimal"
)

// PricingInput 定价输入
type PricingInput struct {
	Commodity     *models.Commodity
	Authenticated bool
	TierDiscount  decimal.Decimal // 买家等级折扣率（0~1），商品 LevelDisable 时跳过
	Quantity      int
	Race          string
	Coupon        *models.Coupon // 已通过资格校验的优惠券，可为 nil
	Drafted       bool           // 买家预选了具体卡密
}

// PricingResult 定价结果。四个金额分开上报，便于审计。
type PricingResult struct {
	Amount         models.Money `json:"amount"`
	UnitPrice      models.Money `json:"unit_price"`
	CouponDiscount models.Money `json:"coupon_discount"`
	Premium        models.Money `json:"premium"`
}

// ComputePrice 计算订单金额。
// 顺序：基准价 → 等级折扣 → 分类覆盖 → 批发档位 → 乘数量 → 预选加价 → 优惠券。
// 中间值保持精确小数，只在出口做一次两位小数的四舍五入。
func ComputePrice(input PricingInput) (*PricingResult, error) {
	commodity := input.Commodity
	if commodity == nil {
		return nil, ErrCommodityNotFound
	}
	if input.Quantity <= 0 {
		return nil, ErrQuantityInvalid
	}

	unit := commodity.Price.Decimal
	if input.Authenticated {
		unit = commodity.MemberPrice.Decimal
	}

	if input.Authenticated && !commodity.LevelDisable &&
		input.TierDiscount.GreaterThan(decimal.Zero) && input.TierDiscount.LessThan(decimal.NewFromInt(1)) {
		unit = unit.Mul(decimal.NewFromInt(1).Sub(input.TierDiscount))
	}

	pricing := ParseCommodityConfig(commodity.Config)
	if input.Race != "" {
		if rule, ok := pricing.CategoryPrices[input.Race]; ok {
			unit = rule.Apply(unit)
		}
	}

	if tier, ok := resolveWholesaleTier(commodity, pricing, input.Race, input.Quantity); ok {
		unit = tier.Rule.Apply(unit)
	}

	amount := unit.Mul(decimal.NewFromInt(int64(input.Quantity)))

	premium := decimal.Zero
	if input.Drafted && commodity.DraftOpen {
		premium = commodity.DraftPremium.Decimal
		amount = amount.Add(premium)
	}

	discount := decimal.Zero
	if input.Coupon != nil {
		discount = couponDiscount(input.Coupon, input.Quantity)
		if discount.GreaterThanOrEqual(amount) {
			return nil, ErrCouponValueTooLarge
		}
		amount = amount.Sub(discount)
	}

	return &PricingResult{
		Amount:         models.NewMoneyFromDecimal(amount),
		UnitPrice:      models.NewMoneyFromDecimal(unit),
		CouponDiscount: models.NewMoneyFromDecimal(discount),
		Premium:        models.NewMoneyFromDecimal(premium),
	}, nil
}

// resolveWholesaleTier 解析生效的批发档位。
// 结构化 JSON 配置存在时完全取代旧版文本批发节；分类档位优先于全局档位。
func resolveWholesaleTier(commodity *models.Commodity, pricing *CommodityPricing, race string, quantity int) (WholesaleTier, bool) {
	if structured := ParseStructuredWholesale(commodity.WholesaleConfig); structured != nil {
		return matchTier(structured, quantity)
	}
	if race != "" {
		if tiers, ok := pricing.CategoryWholesale[race]; ok {
			if tier, found := matchTier(tiers, quantity); found {
				return tier, true
			}
		}
	}
	return matchTier(pricing.Wholesale, quantity)
}

func couponDiscount(coupon *models.Coupon, quantity int) decimal.Decimal {
	switch coupon.Mode {
	case constants.CouponModePerUnit:
		return coupon.Value.Decimal.Mul(decimal.NewFromInt(int64(quantity)))
	default:
		return coupon.Value.Decimal
	}
}

// ValidateCouponForPurchase 校验优惠券可用于本次购买。
// 金额相关的拒绝（券值不小于订单金额）在定价阶段判定。
func ValidateCouponForPurchase(coupon *models.Coupon, commodity *models.Commodity, race string) error {
	if coupon == nil {
		return ErrCouponInvalid
	}
	if coupon.Status != constants.CouponStatusActive {
		if coupon.Status == constants.CouponStatusExhausted {
			return ErrCouponExhausted
		}
		return ErrCouponInvalid
	}
	if coupon.Life <= 0 {
		return ErrCouponExhausted
	}
	if coupon.ExpiredAt != nil && time.Now().After(*coupon.ExpiredAt) {
		return ErrCouponExpired
	}
	if coupon.CommodityID != 0 && commodity != nil && coupon.CommodityID != commodity.ID {
		return ErrCouponScopeMismatch
	}
	if strings.TrimSpace(coupon.Race) != "" && coupon.Race != race {
		return ErrCouponScopeMismatch
	}
	return nil
}
