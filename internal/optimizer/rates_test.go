// internal/optimizer/rates_test.go
package optimizer

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cost-optimizer/internal/common/logger"
	"cost-optimizer/internal/fx"
)

type fakePriceList struct {
	calls int64
	doc   string
}

func (f *fakePriceList) GetProducts(ctx context.Context, params *pricing.GetProductsInput, optFns ...func(*pricing.Options)) (*pricing.GetProductsOutput, error) {
	atomic.AddInt64(&f.calls, 1)
	return &pricing.GetProductsOutput{PriceList: []string{f.doc}}, nil
}

func priceDoc(hourlyUSD string) string {
	return `{
		"terms": {
			"OnDemand": {
				"SKU.JRTCKXETXF": {
					"priceDimensions": {
						"SKU.JRTCKXETXF.6YS6EN2CT7": {
							"pricePerUnit": {"USD": "` + hourlyUSD + `"}
						}
					}
				}
			}
		}
	}`
}

func newPriceListRates(t *testing.T, api priceListAPI) *PriceListRates {
	t.Helper()
	log := logger.NewTestLogger(t)
	return &PriceListRates{
		client: api,
		rates:  fx.NewConverter(83.0, "", time.Second, log),
		logger: log,
		cache:  map[string]decimal.Decimal{},
	}
}

func TestMonthlyCostINRCachesLookups(t *testing.T) {
	api := &fakePriceList{doc: priceDoc("0.05")}
	rates := newPriceListRates(t, api)

	got, err := rates.MonthlyCostINR(context.Background(), "t3.medium")
	require.NoError(t, err)
	// 0.05 USD/h * 730 h * 83 INR/USD
	assert.True(t, got.Equal(decimal.RequireFromString("3029.5")), got.String())

	again, err := rates.MonthlyCostINR(context.Background(), "t3.medium")
	require.NoError(t, err)
	assert.True(t, got.Equal(again))
	assert.Equal(t, int64(1), atomic.LoadInt64(&api.calls))
}

func TestMonthlyCostINRConcurrentAccess(t *testing.T) {
	api := &fakePriceList{doc: priceDoc("0.05")}
	rates := newPriceListRates(t, api)

	instanceTypes := []string{"t3.small", "t3.medium", "t3.large", "m5.large"}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				got, err := rates.MonthlyCostINR(context.Background(), instanceTypes[(g+i)%len(instanceTypes)])
				assert.NoError(t, err)
				assert.True(t, got.Equal(decimal.RequireFromString("3029.5")))
			}
		}(g)
	}
	wg.Wait()
}
