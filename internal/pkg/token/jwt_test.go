package token_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"clubetiro/internal/domain"
	"clubetiro/internal/pkg/token"
)

const (
	testAccessSecret  = "segredo-de-acesso-para-testes"
	testRefreshSecret = "segredo-de-refresh-para-testes"
)

func newTestService() *token.Service {
	return token.NewService(testAccessSecret, testRefreshSecret, 15*time.Minute, 7*24*time.Hour)
}

func testAuthContext() domain.AuthContext {
	return domain.AuthContext{
		UserID:     "user-123",
		UserType:   domain.TypeClubAdmin,
		ClubeID:    "clube-1",
		Permissoes: domain.DefaultClubAdminPermissions(),
	}
}

func TestGeneratePair_Success(t *testing.T) {
	svc := newTestService()

	pair, err := svc.GeneratePair(testAuthContext())

	assert.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	assert.Equal(t, int((15 * time.Minute).Seconds()), pair.ExpiresIn)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), pair.RefreshExpiresAt, time.Minute)
}

func TestGeneratePair_UniquePerIssuance(t *testing.T) {
	svc := newTestService()

	// Duas emissões consecutivas (dentro do mesmo segundo) para o mesmo
	// principal: o jti garante tokens distintos, senão a rotação de sessão
	// e os logins simultâneos colapsariam no mesmo hash.
	first, err := svc.GeneratePair(testAuthContext())
	assert.NoError(t, err)
	second, err := svc.GeneratePair(testAuthContext())
	assert.NoError(t, err)

	assert.NotEqual(t, first.AccessToken, second.AccessToken)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
}

func TestValidateAccess_RoundTrip(t *testing.T) {
	svc := newTestService()
	pair, err := svc.GeneratePair(testAuthContext())
	assert.NoError(t, err)

	claims, err := svc.ValidateAccess(pair.AccessToken)

	assert.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, domain.TypeClubAdmin, claims.UserType)
	assert.Equal(t, "clube-1", claims.ClubeID)
	assert.NotNil(t, claims.Permissoes)
	assert.True(t, claims.Permissoes.GerenciarEventos)
	assert.False(t, claims.Permissoes.GerenciarPagamentos)
}

func TestValidateAccess_Fail_Expired(t *testing.T) {
	expired := token.NewService(testAccessSecret, testRefreshSecret, -time.Minute, 7*24*time.Hour)
	pair, err := expired.GeneratePair(testAuthContext())
	assert.NoError(t, err)

	_, err = newTestService().ValidateAccess(pair.AccessToken)

	assert.ErrorIs(t, err, token.ErrTokenExpired)
}

func TestValidateAccess_Fail_WrongSecret(t *testing.T) {
	other := token.NewService("outro-segredo", testRefreshSecret, 15*time.Minute, 7*24*time.Hour)
	pair, err := other.GeneratePair(testAuthContext())
	assert.NoError(t, err)

	_, err = newTestService().ValidateAccess(pair.AccessToken)

	assert.ErrorIs(t, err, token.ErrTokenInvalid)
	assert.NotErrorIs(t, err, token.ErrTokenExpired)
}

func TestValidateAccess_Fail_Garbage(t *testing.T) {
	_, err := newTestService().ValidateAccess("nao-e-um-jwt")

	assert.ErrorIs(t, err, token.ErrTokenInvalid)
}

func TestValidateRefresh_RoundTrip(t *testing.T) {
	svc := newTestService()
	pair, err := svc.GeneratePair(testAuthContext())
	assert.NoError(t, err)

	userID, err := svc.ValidateRefresh(pair.RefreshToken)

	assert.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

// Um access token não pode ser apresentado como refresh: segredos distintos
// e o marcador de tipo barram a troca.
func TestValidateRefresh_Fail_AccessTokenRejected(t *testing.T) {
	svc := newTestService()
	pair, err := svc.GeneratePair(testAuthContext())
	assert.NoError(t, err)

	_, err = svc.ValidateRefresh(pair.AccessToken)

	assert.ErrorIs(t, err, token.ErrTokenInvalid)
}

func TestValidateAccess_Fail_RefreshTokenRejected(t *testing.T) {
	svc := newTestService()
	pair, err := svc.GeneratePair(testAuthContext())
	assert.NoError(t, err)

	_, err = svc.ValidateAccess(pair.RefreshToken)

	assert.ErrorIs(t, err, token.ErrTokenInvalid)
}

func TestValidateRefresh_Fail_Expired(t *testing.T) {
	expired := token.NewService(testAccessSecret, testRefreshSecret, 15*time.Minute, -time.Minute)
	pair, err := expired.GeneratePair(testAuthContext())
	assert.NoError(t, err)

	_, err = newTestService().ValidateRefresh(pair.RefreshToken)

	assert.ErrorIs(t, err, token.ErrTokenExpired)
}

// O token sem marcador de tipo assinado com o segredo de refresh não é aceito
// como refresh token.
func TestValidateRefresh_Fail_MissingTypeMarker(t *testing.T) {
	// Assina um "refresh" usando o serviço cujo segredo de refresh é igual ao
	// de access do serviço sob teste: a assinatura confere, o marcador não.
	forger := token.NewService(testRefreshSecret, testRefreshSecret, 15*time.Minute, 7*24*time.Hour)
	pair, err := forger.GeneratePair(testAuthContext())
	assert.NoError(t, err)

	// pair.AccessToken está assinado com testRefreshSecret mas não carrega
	// tokenType=refresh.
	_, err = newTestService().ValidateRefresh(pair.AccessToken)

	assert.ErrorIs(t, err, token.ErrTokenInvalid)
}
