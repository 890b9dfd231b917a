// internal/optimizer/rates.go
package optimizer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"cost-optimizer/internal/common/logger"
	"cost-optimizer/internal/fx"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/pricing"
	pricingtypes "github.com/aws/aws-sdk-go-v2/service/pricing/types"
	"github.com/shopspring/decimal"
)

// Hours billed per month for on-demand estimates.
const hoursPerMonth = 730

// InstanceRates resolves the monthly on-demand cost of an instance type
// in INR.
type InstanceRates interface {
	MonthlyCostINR(ctx context.Context, instanceType string) (decimal.Decimal, error)
}

type priceListAPI interface {
	GetProducts(ctx context.Context, params *pricing.GetProductsInput, optFns ...func(*pricing.Options)) (*pricing.GetProductsOutput, error)
}

// PriceListRates resolves instance rates from the AWS Price List API for
// the Mumbai region. Results are cached per instance type; the cache is
// shared across concurrent recommendation requests.
type PriceListRates struct {
	client priceListAPI
	rates  *fx.Converter
	logger logger.Logger

	mu    sync.RWMutex
	cache map[string]decimal.Decimal
}

func NewPriceListRates(client *pricing.Client, rates *fx.Converter, log logger.Logger) *PriceListRates {
	return &PriceListRates{
		client: client,
		rates:  rates,
		logger: log.WithFields(map[string]interface{}{"component": "price-list"}),
		cache:  map[string]decimal.Decimal{},
	}
}

func (p *PriceListRates) MonthlyCostINR(ctx context.Context, instanceType string) (decimal.Decimal, error) {
	p.mu.RLock()
	cached, ok := p.cache[instanceType]
	p.mu.RUnlock()
	if ok {
		return cached, nil
	}

	out, err := p.client.GetProducts(ctx, &pricing.GetProductsInput{
		ServiceCode: sdkaws.String("AmazonEC2"),
		MaxResults:  sdkaws.Int32(1),
		Filters: []pricingtypes.Filter{
			{Type: pricingtypes.FilterTypeTermMatch, Field: sdkaws.String("instanceType"), Value: sdkaws.String(instanceType)},
			{Type: pricingtypes.FilterTypeTermMatch, Field: sdkaws.String("location"), Value: sdkaws.String("Asia Pacific (Mumbai)")},
			{Type: pricingtypes.FilterTypeTermMatch, Field: sdkaws.String("operatingSystem"), Value: sdkaws.String("Linux")},
			{Type: pricingtypes.FilterTypeTermMatch, Field: sdkaws.String("tenancy"), Value: sdkaws.String("Shared")},
			{Type: pricingtypes.FilterTypeTermMatch, Field: sdkaws.String("preInstalledSw"), Value: sdkaws.String("NA")},
			{Type: pricingtypes.FilterTypeTermMatch, Field: sdkaws.String("capacitystatus"), Value: sdkaws.String("Used")},
		},
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("get products for %s: %w", instanceType, err)
	}
	if len(out.PriceList) == 0 {
		return decimal.Zero, fmt.Errorf("no price found for %s", instanceType)
	}

	hourlyUSD, err := parseOnDemandHourlyUSD(out.PriceList[0])
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse price for %s: %w", instanceType, err)
	}

	monthlyINR := p.rates.USDToINR(hourlyUSD.Mul(decimal.NewFromInt(hoursPerMonth)))

	p.mu.Lock()
	p.cache[instanceType] = monthlyINR
	p.mu.Unlock()

	return monthlyINR, nil
}

// parseOnDemandHourlyUSD digs the hourly USD rate out of a Price List
// product document.
func parseOnDemandHourlyUSD(doc string) (decimal.Decimal, error) {
	var product struct {
		Terms struct {
			OnDemand map[string]struct {
				PriceDimensions map[string]struct {
					PricePerUnit struct {
						USD string `json:"USD"`
					} `json:"pricePerUnit"`
				} `json:"priceDimensions"`
			} `json:"OnDemand"`
		} `json:"terms"`
	}

	if err := json.Unmarshal([]byte(doc), &product); err != nil {
		return decimal.Zero, err
	}

	for _, term := range product.Terms.OnDemand {
		for _, dimension := range term.PriceDimensions {
			return decimal.NewFromString(dimension.PricePerUnit.USD)
		}
	}
	return decimal.Zero, fmt.Errorf("no on-demand price dimension")
}
