package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"clubetiro/internal/domain"
	"clubetiro/internal/pkg/logger"
	"clubetiro/internal/pkg/middleware"
	"clubetiro/internal/pkg/token"
)

// MockUserLoader é uma implementação mock da interface UserLoader.
type MockUserLoader struct {
	mock.Mock
}

func (m *MockUserLoader) FindByID(ctx context.Context, id string) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

func newTokenService() *token.Service {
	return token.NewService("access-teste", "refresh-teste", 15*time.Minute, time.Hour)
}

func newTestLogger() logger.Logger {
	return logger.NewLogger("error")
}

// okHandler ecoa o AuthContext anexado, para inspeção nos testes.
func okHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authCtx, ok := middleware.FromContext(r.Context())
		assert.True(t, ok)
		json.NewEncoder(w).Encode(authCtx)
	})
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) (int, string) {
	t.Helper()
	var body struct {
		Code     int    `json:"code"`
		Category string `json:"category"`
	}
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Code, body.Category
}

func issueAccessToken(t *testing.T, ctx domain.AuthContext) string {
	t.Helper()
	pair, err := newTokenService().GeneratePair(ctx)
	assert.NoError(t, err)
	return pair.AccessToken
}

// --- Testes para Authenticate ---

func TestAuthenticate_Success_BearerHeader(t *testing.T) {
	guard := middleware.NewGuard(newTokenService(), nil, false, newTestLogger())
	accessToken := issueAccessToken(t, domain.AuthContext{
		UserID: "user-1", UserType: domain.TypeClubMember, ClubeID: "clube-1",
	})

	req := httptest.NewRequest(http.MethodGet, "/api/eventos", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	rec := httptest.NewRecorder()

	guard.Authenticate(okHandler(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var authCtx domain.AuthContext
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&authCtx))
	assert.Equal(t, "user-1", authCtx.UserID)
	assert.Equal(t, "clube-1", authCtx.ClubeID)
}

func TestAuthenticate_Success_CookieFallback(t *testing.T) {
	guard := middleware.NewGuard(newTokenService(), nil, false, newTestLogger())
	accessToken := issueAccessToken(t, domain.AuthContext{
		UserID: "user-1", UserType: domain.TypeClubMember, ClubeID: "clube-1",
	})

	req := httptest.NewRequest(http.MethodGet, "/api/eventos", nil)
	req.AddCookie(&http.Cookie{Name: middleware.AuthCookieName, Value: accessToken})
	rec := httptest.NewRecorder()

	guard.Authenticate(okHandler(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticate_Fail_MissingToken(t *testing.T) {
	guard := middleware.NewGuard(newTokenService(), nil, false, newTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/eventos", nil)
	rec := httptest.NewRecorder()

	guard.Authenticate(okHandler(t)).ServeHTTP(rec, req)

	code, category := decodeError(t, rec)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "MISSING_CREDENTIAL", category)
}

func TestAuthenticate_Fail_ExpiredToken(t *testing.T) {
	guard := middleware.NewGuard(newTokenService(), nil, false, newTestLogger())
	expiredSvc := token.NewService("access-teste", "refresh-teste", -time.Minute, time.Hour)
	pair, err := expiredSvc.GeneratePair(domain.AuthContext{UserID: "user-1"})
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/eventos", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	rec := httptest.NewRecorder()

	guard.Authenticate(okHandler(t)).ServeHTTP(rec, req)

	_, category := decodeError(t, rec)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TOKEN_EXPIRED", category)
}

func TestAuthenticate_Fail_InvalidToken(t *testing.T) {
	guard := middleware.NewGuard(newTokenService(), nil, false, newTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/eventos", nil)
	req.Header.Set("Authorization", "Bearer lixo")
	rec := httptest.NewRecorder()

	guard.Authenticate(okHandler(t)).ServeHTTP(rec, req)

	_, category := decodeError(t, rec)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TOKEN_INVALID", category)
}

func TestAuthenticate_Rehydrate_RefreshesContext(t *testing.T) {
	users := new(MockUserLoader)
	guard := middleware.NewGuard(newTokenService(), users, true, newTestLogger())

	// O token carrega club_member; o banco já promoveu o usuário.
	accessToken := issueAccessToken(t, domain.AuthContext{
		UserID: "user-1", UserType: domain.TypeClubMember, ClubeID: "clube-1",
	})
	users.On("FindByID", mock.Anything, "user-1").Return(domain.User{
		ID: "user-1", Tipo: domain.TypeClubAdmin, ClubeID: "clube-1",
		Permissoes: domain.DefaultClubAdminPermissions(), Ativo: true,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/eventos", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	rec := httptest.NewRecorder()

	guard.Authenticate(okHandler(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var authCtx domain.AuthContext
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&authCtx))
	assert.Equal(t, domain.TypeClubAdmin, authCtx.UserType)
}

func TestAuthenticate_Rehydrate_Fail_DeactivatedUser(t *testing.T) {
	users := new(MockUserLoader)
	guard := middleware.NewGuard(newTokenService(), users, true, newTestLogger())

	accessToken := issueAccessToken(t, domain.AuthContext{UserID: "user-1", UserType: domain.TypeClubMember})
	users.On("FindByID", mock.Anything, "user-1").Return(domain.User{
		ID: "user-1", Tipo: domain.TypeClubMember, ClubeID: "clube-1", Ativo: false,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/eventos", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	rec := httptest.NewRecorder()

	guard.Authenticate(okHandler(t)).ServeHTTP(rec, req)

	_, category := decodeError(t, rec)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TOKEN_INVALID", category)
}

// --- Testes para RequireUserTypes ---

func TestRequireUserTypes_Success(t *testing.T) {
	guard := middleware.NewGuard(newTokenService(), nil, false, newTestLogger())
	accessToken := issueAccessToken(t, domain.AuthContext{
		UserID: "sa-1", UserType: domain.TypeSystemAdmin,
	})

	handler := guard.Authenticate(
		guard.RequireUserTypes(domain.TypeSystemAdmin)(okHandler(t)))

	req := httptest.NewRequest(http.MethodGet, "/api/system/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireUserTypes_Fail_InsufficientRole(t *testing.T) {
	guard := middleware.NewGuard(newTokenService(), nil, false, newTestLogger())
	accessToken := issueAccessToken(t, domain.AuthContext{
		UserID: "admin-1", UserType: domain.TypeClubAdmin, ClubeID: "clube-1",
	})

	handler := guard.Authenticate(
		guard.RequireUserTypes(domain.TypeSystemAdmin)(okHandler(t)))

	req := httptest.NewRequest(http.MethodGet, "/api/system/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	_, category := decodeError(t, rec)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "INSUFFICIENT_ROLE", category)
}

// --- Testes para RequirePermissions ---

func TestRequirePermissions_Fail_ReportsAllMissingFlags(t *testing.T) {
	guard := middleware.NewGuard(newTokenService(), nil, false, newTestLogger())
	accessToken := issueAccessToken(t, domain.AuthContext{
		UserID:   "admin-1",
		UserType: domain.TypeClubAdmin,
		ClubeID:  "clube-1",
		Permissoes: &domain.ClubAdminPermissions{
			GerenciarEventos: true,
		},
	})

	handler := guard.Authenticate(guard.RequirePermissions(
		domain.PermGerenciarMembros, domain.PermGerenciarPagamentos)(okHandler(t)))

	req := httptest.NewRequest(http.MethodGet, "/api/mensalidades", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	var body struct {
		Category string `json:"category"`
		Message  string `json:"message"`
	}
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "INSUFFICIENT_PERMISSIONS", body.Category)
	// As duas flags faltantes aparecem juntas na mensagem.
	assert.Contains(t, body.Message, "gerenciarMembros")
	assert.Contains(t, body.Message, "gerenciarPagamentos")
}

func TestRequirePermissions_SystemAdmin_AlwaysPasses(t *testing.T) {
	guard := middleware.NewGuard(newTokenService(), nil, false, newTestLogger())
	accessToken := issueAccessToken(t, domain.AuthContext{
		UserID: "sa-1", UserType: domain.TypeSystemAdmin,
	})

	handler := guard.Authenticate(guard.RequirePermissions(
		domain.PermGerenciarPagamentos)(okHandler(t)))

	req := httptest.NewRequest(http.MethodGet, "/api/mensalidades", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
