// internal/fx/rates_test.go
package fx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cost-optimizer/internal/common/logger"
)

func TestUSDToINRUsesDefaultRate(t *testing.T) {
	converter := NewConverter(83.0, "", time.Second, logger.NewTestLogger(t))

	got := converter.USDToINR(decimal.NewFromInt(10))
	assert.True(t, got.Equal(decimal.NewFromInt(830)), got.String())
}

func TestRefreshUpdatesRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"rates":{"INR":84.5,"EUR":0.92}}`))
	}))
	defer server.Close()

	converter := NewConverter(83.0, server.URL, time.Second, logger.NewTestLogger(t))

	require.NoError(t, converter.Refresh(context.Background()))
	assert.True(t, converter.Rate().Equal(decimal.NewFromFloat(84.5)))
}

func TestRefreshKeepsRateOnBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	converter := NewConverter(83.0, server.URL, time.Second, logger.NewTestLogger(t))

	assert.Error(t, converter.Refresh(context.Background()))
	assert.True(t, converter.Rate().Equal(decimal.NewFromFloat(83.0)))
}

func TestRefreshKeepsRateOnBadPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `<html>maintenance</html>`},
		{name: "missing INR", body: `{"rates":{"EUR":0.92}}`},
		{name: "non-positive INR", body: `{"rates":{"INR":0}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			converter := NewConverter(83.0, server.URL, time.Second, logger.NewTestLogger(t))

			assert.Error(t, converter.Refresh(context.Background()))
			assert.True(t, converter.Rate().Equal(decimal.NewFromFloat(83.0)))
		})
	}
}

func TestRefreshWithoutSourceIsNoop(t *testing.T) {
	converter := NewConverter(83.0, "", time.Second, logger.NewTestLogger(t))

	require.NoError(t, converter.Refresh(context.Background()))
	assert.True(t, converter.Rate().Equal(decimal.NewFromFloat(83.0)))
}
