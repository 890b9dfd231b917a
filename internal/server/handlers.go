// internal/server/handlers.go
package server

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"strconv"
	"time"

	"github.com/google/uuid"

	stderrors "cost-optimizer/internal/common/errors"
	"cost-optimizer/internal/models"
)

// Minimum password length for registration.
const minPasswordLength = 8

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.WithError(err).Error("response encoding failed", map[string]interface{}{
			"path": r.URL.Path,
		})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := models.HealthCheck{
		Status:    "healthy",
		Version:   s.cfg.App.Version,
		Market:    s.cfg.Market.Market,
		Currency:  s.cfg.Market.Currency,
		Timestamp: time.Now().UTC(),
	}

	status := http.StatusOK
	for name, pinger := range s.pingers {
		if err := pinger.Ping(r.Context()); err != nil {
			s.logger.WithError(err).Warn("dependency unhealthy", map[string]interface{}{
				"dependency": name,
			})
			health.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	s.writeJSON(w, r, status, health)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.svc.Summary(r.Context())
	if err != nil {
		s.errs.WriteError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, summary)
}

func (s *Server) handlePricing(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, s.catalog.Wire())
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type userResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errs.WriteError(w, r, stderrors.NewValidationFailedError("invalid JSON body"))
		return
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		s.errs.WriteError(w, r, stderrors.NewValidationFailedError("invalid email address"))
		return
	}
	if len(req.Password) < minPasswordLength {
		s.errs.WriteError(w, r, stderrors.NewValidationFailedError("password must be at least 8 characters"))
		return
	}

	hashed, err := s.auth.HashPassword(req.Password)
	if err != nil {
		s.errs.WriteError(w, r, err)
		return
	}

	user := &models.User{
		ID:             uuid.NewString(),
		Email:          req.Email,
		FullName:       req.FullName,
		HashedPassword: hashed,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.users.Create(r.Context(), user); err != nil {
		s.errs.WriteError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusCreated, userResponse{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errs.WriteError(w, r, stderrors.NewValidationFailedError("invalid JSON body"))
		return
	}

	user, err := s.users.ByEmail(r.Context(), req.Email)
	if err != nil {
		// Hide whether the account exists.
		s.errs.WriteError(w, r, stderrors.NewInvalidCredentialsError())
		return
	}

	if !s.auth.VerifyPassword(user.HashedPassword, req.Password) {
		s.errs.WriteError(w, r, stderrors.NewInvalidCredentialsError())
		return
	}

	token, err := s.auth.CreateToken(user.ID)
	if err != nil {
		s.errs.WriteError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.auth.CookieName(),
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(s.auth.TokenTTL()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	s.writeJSON(w, r, http.StatusOK, userResponse{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.auth.CookieName(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	s.writeJSON(w, r, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r.Context())
	if !ok {
		// API key requests carry no user identity.
		s.errs.WriteError(w, r, stderrors.NewNotAuthenticatedError("no user session"))
		return
	}

	s.writeJSON(w, r, http.StatusOK, userResponse{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
	})
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	recommendations, err := s.svc.Recommendations(r.Context())
	if err != nil {
		s.errs.WriteError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"recommendations": recommendations,
		"count":           len(recommendations),
	})
}

func (s *Server) handleRecommendationsSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.svc.RecommendationsSummary(r.Context())
	if err != nil {
		s.errs.WriteError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, summary)
}

func (s *Server) handleResources(w http.ResponseWriter, r *http.Request) {
	resources, err := s.svc.Resources(r.Context())
	if err != nil {
		s.errs.WriteError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"resources": resources,
		"count":     len(resources),
	})
}

func (s *Server) handleAnalysisCosts(w http.ResponseWriter, r *http.Request) {
	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 365 {
			s.errs.WriteError(w, r, stderrors.NewValidationFailedError("days must be an integer between 1 and 365"))
			return
		}
		days = parsed
	}

	analysis, err := s.svc.Trends(r.Context(), days)
	if err != nil {
		s.errs.WriteError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, analysis)
}

func (s *Server) handleAnalysisHistory(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			s.errs.WriteError(w, r, stderrors.NewValidationFailedError("limit must be an integer between 1 and 100"))
			return
		}
		limit = parsed
	}

	history, err := s.svc.History(r.Context(), limit)
	if err != nil {
		s.errs.WriteError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"analyses": history,
		"count":    len(history),
	})
}
