// Package pricing holds the Indian market pricing tier catalog.
package pricing

import "github.com/shopspring/decimal"

// Tier names.
const (
	TierFreemium   = "freemium"
	TierStarter    = "starter"
	TierGrowth     = "growth"
	TierEnterprise = "enterprise"
)

// Tier describes one subscription tier. Amounts are INR.
type Tier struct {
	MonthlyFee      decimal.Decimal
	MaxMonthlySpend decimal.Decimal
	MaxAnnualSpend  decimal.Decimal
	PercentageFee   decimal.Decimal
}

// Catalog is the Indian market tier catalog.
type Catalog struct {
	Currency string
	Tiers    map[string]Tier
}

// IndiaCatalog returns the published tier catalog for the Indian market.
func IndiaCatalog() *Catalog {
	return &Catalog{
		Currency: "INR",
		Tiers: map[string]Tier{
			TierFreemium: {
				MonthlyFee:      decimal.Zero,
				MaxMonthlySpend: decimal.NewFromInt(800000),
			},
			TierStarter: {
				MonthlyFee:     decimal.NewFromInt(8000),
				MaxAnnualSpend: decimal.NewFromInt(8000000),
			},
			TierGrowth: {
				MonthlyFee:     decimal.NewFromInt(15000),
				MaxAnnualSpend: decimal.NewFromInt(20000000),
			},
			TierEnterprise: {
				PercentageFee: decimal.NewFromFloat(1.5),
			},
		},
	}
}

// TierFor picks the cheapest tier that covers the given monthly cloud
// spend. Spend above the growth tier's annual ceiling lands on enterprise.
func (c *Catalog) TierFor(monthlySpendINR decimal.Decimal) string {
	annual := monthlySpendINR.Mul(decimal.NewFromInt(12))

	switch {
	case monthlySpendINR.LessThanOrEqual(c.Tiers[TierFreemium].MaxMonthlySpend):
		return TierFreemium
	case annual.LessThanOrEqual(c.Tiers[TierStarter].MaxAnnualSpend):
		return TierStarter
	case annual.LessThanOrEqual(c.Tiers[TierGrowth].MaxAnnualSpend):
		return TierGrowth
	default:
		return TierEnterprise
	}
}

// Wire returns the catalog in the /api/v1/pricing/india response shape.
func (c *Catalog) Wire() map[string]interface{} {
	freemium := c.Tiers[TierFreemium]
	starter := c.Tiers[TierStarter]
	growth := c.Tiers[TierGrowth]
	enterprise := c.Tiers[TierEnterprise]

	return map[string]interface{}{
		"currency": c.Currency,
		"tiers": map[string]interface{}{
			TierFreemium: map[string]interface{}{
				"monthly_fee":       freemium.MonthlyFee.IntPart(),
				"max_monthly_spend": freemium.MaxMonthlySpend.IntPart(),
			},
			TierStarter: map[string]interface{}{
				"monthly_fee":      starter.MonthlyFee.IntPart(),
				"max_annual_spend": starter.MaxAnnualSpend.IntPart(),
			},
			TierGrowth: map[string]interface{}{
				"monthly_fee":      growth.MonthlyFee.IntPart(),
				"max_annual_spend": growth.MaxAnnualSpend.IntPart(),
			},
			TierEnterprise: map[string]interface{}{
				"percentage_fee": enterprise.PercentageFee.InexactFloat64(),
			},
		},
	}
}
