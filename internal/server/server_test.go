// internal/server/server_test.go
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cost-optimizer/internal/auth"
	"cost-optimizer/internal/common/config"
	stderrors "cost-optimizer/internal/common/errors"
	"cost-optimizer/internal/common/logger"
	"cost-optimizer/internal/models"
)

type fakeService struct {
	summary         *models.CostSummary
	summaryErr      error
	resources       []models.Resource
	recommendations []models.Recommendation
	analysis        *models.CostAnalysis
	history         []models.CostAnalysis
	trendsDays      int
}

func (f *fakeService) Summary(ctx context.Context) (*models.CostSummary, error) {
	return f.summary, f.summaryErr
}

func (f *fakeService) Resources(ctx context.Context) ([]models.Resource, error) {
	return f.resources, nil
}

func (f *fakeService) Recommendations(ctx context.Context) ([]models.Recommendation, error) {
	return f.recommendations, nil
}

func (f *fakeService) RecommendationsSummary(ctx context.Context) (models.SavingsSummary, error) {
	return models.SavingsSummary{
		TotalRecommendations:       len(f.recommendations),
		Currency:                   "INR",
		EstimatedMonthlySavingsINR: 26700,
		EstimatedAnnualSavingsINR:  320400,
	}, nil
}

func (f *fakeService) Trends(ctx context.Context, days int) (*models.CostAnalysis, error) {
	f.trendsDays = days
	return f.analysis, nil
}

func (f *fakeService) History(ctx context.Context, limit int) ([]models.CostAnalysis, error) {
	return f.history, nil
}

type memoryUserStore struct {
	byEmail map[string]*models.User
	byID    map[string]*models.User
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{
		byEmail: map[string]*models.User{},
		byID:    map[string]*models.User{},
	}
}

func (m *memoryUserStore) Create(ctx context.Context, user *models.User) error {
	if _, exists := m.byEmail[user.Email]; exists {
		return stderrors.NewEmailAlreadyRegisteredError(user.Email)
	}
	m.byEmail[user.Email] = user
	m.byID[user.ID] = user
	return nil
}

func (m *memoryUserStore) ByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := m.byEmail[email]
	if !ok {
		return nil, stderrors.NewUserNotFoundError(email)
	}
	return user, nil
}

func (m *memoryUserStore) ByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := m.byID[id]
	if !ok {
		return nil, stderrors.NewUserNotFoundError(id)
	}
	return user, nil
}

type fakePinger struct{ err error }

func (f *fakePinger) Ping(ctx context.Context) error { return f.err }

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Name = "cost-optimizer"
	cfg.App.Version = "1.0.0"
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 8000
	cfg.Market.Currency = "INR"
	cfg.Market.Market = "India"
	cfg.Market.Timezone = "Asia/Kolkata"
	cfg.Auth.SecretKey = "test-secret-key"
	cfg.Auth.TokenTTLHours = 24
	cfg.Auth.CookieName = "access_token"
	cfg.Auth.APIKeys = []string{"svc-key-1"}
	return cfg
}

func newTestServer(t *testing.T, svc CostService, pingers map[string]Pinger) (*Server, *memoryUserStore) {
	t.Helper()

	cfg := testConfig()
	users := newMemoryUserStore()
	srv := New(cfg, svc, users, auth.NewManager(cfg.Auth), pingers, logger.NewTestLogger(t))
	return srv, users
}

func defaultService() *fakeService {
	return &fakeService{
		summary: &models.CostSummary{
			TotalCostINR:        125000,
			MonthlyCostINR:      45000,
			PotentialSavingsINR: 31250,
			OptimizationScore:   75,
			LastUpdated:         time.Now().UTC(),
		},
		analysis: &models.CostAnalysis{Currency: "INR", TotalCostINR: 45000},
	}
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body interface{}, mutate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if mutate != nil {
		mutate(req)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, defaultService(), map[string]Pinger{
		"postgres": &fakePinger{},
		"redis":    &fakePinger{},
	})

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var health models.HealthCheck
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "India", health.Market)
	assert.Equal(t, "INR", health.Currency)
	assert.Equal(t, "1.0.0", health.Version)
	assert.False(t, health.Timestamp.IsZero())
}

func TestHealthEndpointDegraded(t *testing.T) {
	srv, _ := newTestServer(t, defaultService(), map[string]Pinger{
		"postgres": &fakePinger{err: errors.New("connection refused")},
	})

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/health", nil, nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var health models.HealthCheck
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "degraded", health.Status)
}

func TestSummaryEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, defaultService(), nil)

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/summary", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	for _, field := range []string{"total_cost_inr", "monthly_cost_inr", "potential_savings_inr", "optimization_score", "last_updated"} {
		assert.Contains(t, payload, field)
	}
	assert.InDelta(t, 125000.0, payload["total_cost_inr"], 0.01)
}

func TestPricingEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, defaultService(), nil)

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/pricing/india", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Currency string `json:"currency"`
		Tiers    map[string]map[string]float64 `json:"tiers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))

	assert.Equal(t, "INR", payload.Currency)
	assert.InDelta(t, 0.0, payload.Tiers["freemium"]["monthly_fee"], 0.001)
	assert.InDelta(t, 800000.0, payload.Tiers["freemium"]["max_monthly_spend"], 0.001)
	assert.InDelta(t, 8000.0, payload.Tiers["starter"]["monthly_fee"], 0.001)
	assert.InDelta(t, 8000000.0, payload.Tiers["starter"]["max_annual_spend"], 0.001)
	assert.InDelta(t, 15000.0, payload.Tiers["growth"]["monthly_fee"], 0.001)
	assert.InDelta(t, 20000000.0, payload.Tiers["growth"]["max_annual_spend"], 0.001)
	assert.InDelta(t, 1.5, payload.Tiers["enterprise"]["percentage_fee"], 0.001)
}

func TestRegisterValidation(t *testing.T) {
	srv, _ := newTestServer(t, defaultService(), nil)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/auth/register",
		registerRequest{Email: "not-an-email", Password: "longenough", FullName: "X"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/auth/register",
		registerRequest{Email: "asha@example.in", Password: "short", FullName: "X"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	srv, _ := newTestServer(t, defaultService(), nil)

	req := registerRequest{Email: "asha@example.in", Password: "s3cret-pass", FullName: "Asha Rao"}

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/auth/register", req, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/auth/register", req, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func registerAndLogin(t *testing.T, srv *Server) *http.Cookie {
	t.Helper()

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/auth/register",
		registerRequest{Email: "asha@example.in", Password: "s3cret-pass", FullName: "Asha Rao"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/auth/login",
		loginRequest{Email: "asha@example.in", Password: "s3cret-pass"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "access_token" {
			require.True(t, cookie.HttpOnly)
			return cookie
		}
	}
	t.Fatal("login did not set access_token cookie")
	return nil
}

func TestLoginWrongPassword(t *testing.T) {
	srv, _ := newTestServer(t, defaultService(), nil)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/auth/register",
		registerRequest{Email: "asha@example.in", Password: "s3cret-pass", FullName: "Asha Rao"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/auth/login",
		loginRequest{Email: "asha@example.in", Password: "wrong-pass"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "INVALID_CREDENTIALS", payload["code"])
}

func TestProtectedRouteRequiresAuth(t *testing.T) {
	srv, _ := newTestServer(t, defaultService(), nil)

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/recommendations", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "NOT_AUTHENTICATED", payload["code"])
}

func TestProtectedRouteWithCookie(t *testing.T) {
	svc := defaultService()
	svc.recommendations = []models.Recommendation{
		{Type: models.RecommendationReservedInstances, EstimatedMonthlySavings: 15000},
	}
	srv, _ := newTestServer(t, svc, nil)
	cookie := registerAndLogin(t, srv)

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/recommendations", nil, func(r *http.Request) {
		r.AddCookie(cookie)
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Count           int                     `json:"count"`
		Recommendations []models.Recommendation `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, 1, payload.Count)
}

func TestMeReturnsSessionUser(t *testing.T) {
	srv, _ := newTestServer(t, defaultService(), nil)
	cookie := registerAndLogin(t, srv)

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/auth/me", nil, func(r *http.Request) {
		r.AddCookie(cookie)
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var payload userResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "asha@example.in", payload.Email)
	assert.Equal(t, "Asha Rao", payload.FullName)
	assert.NotEmpty(t, payload.ID)
}

func TestMeRejectsAPIKeyRequests(t *testing.T) {
	srv, _ := newTestServer(t, defaultService(), nil)

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/auth/me", nil, func(r *http.Request) {
		r.Header.Set("X-API-Key", "svc-key-1")
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRouteWithAPIKey(t *testing.T) {
	srv, _ := newTestServer(t, defaultService(), nil)

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/resources", nil, func(r *http.Request) {
		r.Header.Set("X-API-Key", "svc-key-1")
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/resources", nil, func(r *http.Request) {
		r.Header.Set("X-API-Key", "wrong-key")
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAnalysisCostsDaysValidation(t *testing.T) {
	svc := defaultService()
	srv, _ := newTestServer(t, svc, nil)

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/analysis/costs?days=abc", nil, func(r *http.Request) {
		r.Header.Set("X-API-Key", "svc-key-1")
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/analysis/costs?days=90", nil, func(r *http.Request) {
		r.Header.Set("X-API-Key", "svc-key-1")
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 90, svc.trendsDays)
}

func TestLogoutClearsCookie(t *testing.T) {
	srv, _ := newTestServer(t, defaultService(), nil)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/auth/logout", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "access_token", cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestSummaryEndpointPropagatesFailure(t *testing.T) {
	svc := defaultService()
	svc.summary = nil
	svc.summaryErr = stderrors.NewAnalysisFailedError(errors.New("all connectors down"))
	srv, _ := newTestServer(t, svc, nil)

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/summary", nil, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
