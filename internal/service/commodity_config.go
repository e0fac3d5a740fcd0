package service

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// 旧版商品配置小语法的节名
const (
	configSectionCategory          = "category"
	configSectionWholesale         = "wholesale"
	configSectionCategoryWholesale = "category_wholesale"
	configSectionSku               = "sku"
)

// PriceRule 一条定价规则：固定替换价，或按基准价的百分比
type PriceRule struct {
	IsPercent bool
	Fixed     decimal.Decimal
	Percent   decimal.Decimal // 0~100，按基准价的百分比取价
}

// Apply 在基准价上套用规则
func (r PriceRule) Apply(base decimal.Decimal) decimal.Decimal {
	if r.IsPercent {
		return base.Mul(r.Percent).Div(decimal.NewFromInt(100))
	}
	return r.Fixed
}

// WholesaleTier 批发档位：达到 MinQuantity 后按规则取单价
type WholesaleTier struct {
	MinQuantity int
	Rule        PriceRule
}

// CommodityPricing 商品定价配置的解析结果
type CommodityPricing struct {
	CategoryPrices    map[string]PriceRule       // 分类单价覆盖
	Wholesale         []WholesaleTier            // 全局批发档位，按 MinQuantity 升序
	CategoryWholesale map[string][]WholesaleTier // 分类批发档位，优先于全局
	SkuOptions        map[string]map[string]decimal.Decimal
}

// ParseCommodityConfig 解析旧版文本配置。
// 行式语法：[节名] 起节，节内 key=value；值带 % 后缀表示按基准价的百分比，
// 否则为固定替换价；category_wholesale/sku 节的键按第一个 . 拆成两级。
// 无法解析的行直接跳过，坏行不拖垮整份配置。
func ParseCommodityConfig(raw string) *CommodityPricing {
	result := &CommodityPricing{
		CategoryPrices:    map[string]PriceRule{},
		CategoryWholesale: map[string][]WholesaleTier{},
		SkuOptions:        map[string]map[string]decimal.Decimal{},
	}
	section := ""
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.ToLower(strings.TrimSpace(line[1 : len(line)-1]))
			continue
		}
		key, value, ok := splitConfigLine(line)
		if !ok {
			continue
		}
		switch section {
		case configSectionCategory:
			rule, ok := parsePriceRule(value)
			if !ok {
				continue
			}
			result.CategoryPrices[key] = rule
		case configSectionWholesale:
			tier, ok := parseWholesaleLine(key, value)
			if !ok {
				continue
			}
			result.Wholesale = append(result.Wholesale, tier)
		case configSectionCategoryWholesale:
			category, threshold, ok := splitDottedKey(key)
			if !ok {
				continue
			}
			tier, ok := parseWholesaleLine(threshold, value)
			if !ok {
				continue
			}
			result.CategoryWholesale[category] = append(result.CategoryWholesale[category], tier)
		case configSectionSku:
			group, option, ok := splitDottedKey(key)
			if !ok {
				continue
			}
			price, err := decimal.NewFromString(value)
			if err != nil {
				continue
			}
			if result.SkuOptions[group] == nil {
				result.SkuOptions[group] = map[string]decimal.Decimal{}
			}
			result.SkuOptions[group][option] = price
		}
	}
	sortTiers(result.Wholesale)
	for _, tiers := range result.CategoryWholesale {
		sortTiers(tiers)
	}
	return result
}

// structuredWholesaleTier 结构化批发配置的单条记录
type structuredWholesaleTier struct {
	Quantity        int             `json:"quantity"`
	Type            string          `json:"type"` // fixed / percent
	Price           decimal.Decimal `json:"price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// ParseStructuredWholesale 解析结构化批发配置（JSON 数组）。
// 解析成功且非空时完全取代旧版文本里的批发节，不做合并。
func ParseStructuredWholesale(raw string) []WholesaleTier {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	var records []structuredWholesaleTier
	if err := json.Unmarshal([]byte(trimmed), &records); err != nil {
		return nil
	}
	tiers := make([]WholesaleTier, 0, len(records))
	for _, record := range records {
		if record.Quantity <= 0 {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(record.Type)) {
		case "percent":
			if record.DiscountPercent.LessThanOrEqual(decimal.Zero) {
				continue
			}
			tiers = append(tiers, WholesaleTier{
				MinQuantity: record.Quantity,
				Rule:        PriceRule{IsPercent: true, Percent: record.DiscountPercent},
			})
		default:
			if record.Price.LessThanOrEqual(decimal.Zero) {
				continue
			}
			tiers = append(tiers, WholesaleTier{
				MinQuantity: record.Quantity,
				Rule:        PriceRule{Fixed: record.Price},
			})
		}
	}
	if len(tiers) == 0 {
		return nil
	}
	sortTiers(tiers)
	return tiers
}

// matchTier 选取 MinQuantity ≤ quantity 中阈值最大的档位
func matchTier(tiers []WholesaleTier, quantity int) (WholesaleTier, bool) {
	matched := WholesaleTier{}
	found := false
	for _, tier := range tiers {
		if tier.MinQuantity <= quantity {
			matched = tier
			found = true
		}
	}
	return matched, found
}

func sortTiers(tiers []WholesaleTier) {
	sort.SliceStable(tiers, func(i, j int) bool {
		return tiers[i].MinQuantity < tiers[j].MinQuantity
	})
}

func splitConfigLine(line string) (string, string, bool) {
	idx := strings.Index(line, "=")
	if idx <= 0 {
		return "", "", false
	}
	key := strings.TrimSpace(line[:idx])
	value := strings.TrimSpace(line[idx+1:])
	if key == "" || value == "" {
		return "", "", false
	}
	return key, value, true
}

func splitDottedKey(key string) (string, string, bool) {
	idx := strings.Index(key, ".")
	if idx <= 0 || idx == len(key)-1 {
		return "", "", false
	}
	return strings.TrimSpace(key[:idx]), strings.TrimSpace(key[idx+1:]), true
}

func parsePriceRule(value string) (PriceRule, bool) {
	if strings.HasSuffix(value, "%") {
		percent, err := decimal.NewFromString(strings.TrimSpace(strings.TrimSuffix(value, "%")))
		if err != nil || percent.LessThanOrEqual(decimal.Zero) {
			return PriceRule{}, false
		}
		return PriceRule{IsPercent: true, Percent: percent}, true
	}
	fixed, err := decimal.NewFromString(value)
	if err != nil || fixed.LessThan(decimal.Zero) {
		return PriceRule{}, false
	}
	return PriceRule{Fixed: fixed}, true
}

func parseWholesaleLine(threshold, value string) (WholesaleTier, bool) {
	quantity, err := strconv.Atoi(strings.TrimSpace(threshold))
	if err != nil || quantity <= 0 {
		return WholesaleTier{}, false
	}
	rule, ok := parsePriceRule(value)
	if !ok {
		return WholesaleTier{}, false
	}
	return WholesaleTier{MinQuantity: quantity, Rule: rule}, true
}
