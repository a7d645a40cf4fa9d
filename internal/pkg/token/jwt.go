package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"clubetiro/internal/domain"
)

// Erros do verificador. Expirado e inválido são distinguidos para que o
// cliente reaja de forma diferente (refresh silencioso vs. novo login).
var (
	ErrTokenExpired = errors.New("token expirado")
	ErrTokenInvalid = errors.New("token inválido")
)

// refreshTokenType é o marcador de tipo embutido no refresh token. A
// validação de refresh rejeita tokens sem esse marcador, de modo que um
// access token jamais possa ser apresentado como refresh (além dos segredos
// de assinatura serem distintos).
const refreshTokenType = "refresh"

const issuer = "clubetiro-api"

// AccessClaims são as claims completas do token de acesso: identidade e
// autorização suficientes para o guard decidir sem ida ao banco.
type AccessClaims struct {
	UserID     string                       `json:"userId"`
	UserType   domain.UserType              `json:"userType"`
	ClubeID    string                       `json:"clubeId,omitempty"`
	Permissoes *domain.ClubAdminPermissions `json:"permissoes,omitempty"`
	jwt.RegisteredClaims
}

// RefreshClaims carregam apenas a identidade e o marcador de tipo.
type RefreshClaims struct {
	UserID    string `json:"userId"`
	TokenType string `json:"tokenType"`
	jwt.RegisteredClaims
}

// Pair é o resultado de uma emissão: access + refresh e seus prazos.
type Pair struct {
	AccessToken      string
	RefreshToken     string
	ExpiresIn        int // segundos de validade do access token
	RefreshExpiresAt time.Time
}

// TokenService define o contrato para manipulação dos JWTs do sistema.
type TokenService interface {
	GeneratePair(ctx domain.AuthContext) (Pair, error)
	ValidateAccess(tokenString string) (*AccessClaims, error)
	ValidateRefresh(tokenString string) (string, error)
}

// Service implementa a interface TokenService. É uma transformação puramente
// criptográfica: nunca toca o armazenamento.
type Service struct {
	accessSecret  []byte
	refreshSecret []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

// NewService cria uma nova instância do serviço de tokens. Os dois segredos
// devem ser diferentes; access e refresh não são intercambiáveis.
func NewService(accessSecret, refreshSecret string, accessExpiry, refreshExpiry time.Duration) *Service {
	return &Service{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

// GeneratePair emite o par access+refresh para o principal informado. Cada
// emissão carrega um jti próprio: duas emissões para o mesmo usuário nunca
// produzem o mesmo token, mesmo dentro do mesmo segundo (a rotação de sessão
// e os logins simultâneos dependem de hashes distintos).
func (s *Service) GeneratePair(ctx domain.AuthContext) (Pair, error) {
	now := time.Now()
	refreshExpiresAt := now.Add(s.refreshExpiry)

	accessClaims := AccessClaims{
		UserID:     ctx.UserID,
		UserType:   ctx.UserType,
		ClubeID:    ctx.ClubeID,
		Permissoes: ctx.Permissoes,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   ctx.UserID,
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(s.accessSecret)
	if err != nil {
		return Pair{}, fmt.Errorf("falha ao assinar o access token: %w", err)
	}

	refreshClaims := RefreshClaims{
		UserID:    ctx.UserID,
		TokenType: refreshTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(refreshExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   ctx.UserID,
		},
	}

	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(s.refreshSecret)
	if err != nil {
		return Pair{}, fmt.Errorf("falha ao assinar o refresh token: %w", err)
	}

	return Pair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		ExpiresIn:        int(s.accessExpiry.Seconds()),
		RefreshExpiresAt: refreshExpiresAt,
	}, nil
}

// ValidateAccess valida o token de acesso e retorna as claims se for válido.
func (s *Service) ValidateAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de assinatura inesperado: %v", token.Header["alg"])
		}
		return s.accessSecret, nil
	})
	if err != nil {
		return nil, classifyParseError(err)
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: claim userId ausente", ErrTokenInvalid)
	}

	return claims, nil
}

// ValidateRefresh valida o refresh token contra o segredo próprio e retorna
// o userId embutido. Tokens assinados com o segredo de acesso, ou sem o
// marcador de tipo, falham como inválidos.
func (s *Service) ValidateRefresh(tokenString string) (string, error) {
	claims := &RefreshClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de assinatura inesperado: %v", token.Header["alg"])
		}
		return s.refreshSecret, nil
	})
	if err != nil {
		return "", classifyParseError(err)
	}
	if !token.Valid || claims.UserID == "" {
		return "", ErrTokenInvalid
	}
	if claims.TokenType != refreshTokenType {
		return "", fmt.Errorf("%w: não é um refresh token", ErrTokenInvalid)
	}

	return claims.UserID, nil
}

// classifyParseError separa expiração (o cliente pode renovar) de qualquer
// outra falha de assinatura/payload (o cliente precisa autenticar de novo).
func classifyParseError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	}
	return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
}
