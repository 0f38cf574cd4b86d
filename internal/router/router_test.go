package router_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"doccompare/internal/domain"
	"doccompare/internal/handler"
	"doccompare/internal/router"
	"doccompare/internal/service"
	"doccompare/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine() (*gin.Engine, *mocks.MockAuthService, *mocks.MockComparisonService) {
	authSvc := new(mocks.MockAuthService)
	cmpSvc := new(mocks.MockComparisonService)
	r := router.Setup(
		authSvc,
		handler.NewAuthHandler(authSvc),
		handler.NewComparisonHandler(cmpSvc, 1<<20),
		handler.NewRunHandler(cmpSvc),
		handler.NewHealthHandler(nil),
		[]string{"http://localhost:3000"},
	)
	return r, authSvc, cmpSvc
}

func TestSetup_Healthz(t *testing.T) {
	r, _, _ := newEngine()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/healthz", http.NoBody)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestSetup_ProtectedRoutesRequireToken(t *testing.T) {
	r, _, _ := newEngine()
	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/api/v1/compare/documents"},
		{http.MethodPost, "/api/v1/compare/spreadsheets"},
		{http.MethodPost, "/api/v1/compare/spreadsheets/columns"},
		{http.MethodGet, "/api/v1/runs"},
		{http.MethodDelete, "/api/v1/runs/abc"},
	} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(route.method, route.path, http.NoBody)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, route.path)
	}
}

func TestSetup_RunsWithToken(t *testing.T) {
	r, authSvc, cmpSvc := newEngine()
	authSvc.On("ValidateToken", "tok").Return(&service.Claims{ClientID: "ci"}, nil)
	cmpSvc.On("ListRuns", mock.Anything, "ci", 0, 20).Return([]domain.ComparisonRun{}, 0, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/runs", http.NoBody)
	req.Header.Set("Authorization", "Bearer tok")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	cmpSvc.AssertExpectations(t)
}

func TestSetup_TokenEndpointIsPublic(t *testing.T) {
	r, authSvc, _ := newEngine()
	authSvc.On("IssueToken", mock.Anything, mock.Anything).Return(nil, domain.ErrInvalidCredentials)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/token",
		strings.NewReader(`{"client_id":"ci","client_secret":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	authSvc.AssertExpectations(t)
}
