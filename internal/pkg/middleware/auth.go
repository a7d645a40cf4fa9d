package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"clubetiro/internal/domain"
	apperror "clubetiro/internal/errors"
	"clubetiro/internal/pkg/logger"
	"clubetiro/internal/pkg/token"
)

// ContextKey é o tipo das chaves de contexto deste pacote. Um tipo próprio
// não-exportado em valor evita colisão com chaves string de outros pacotes.
type ContextKey int

const (
	// AuthContextKey guarda o domain.AuthContext da requisição autenticada.
	AuthContextKey ContextKey = iota
)

// AuthCookieName é o cookie de fallback quando o header Authorization está
// ausente (clientes browser com cookie httpOnly).
const AuthCookieName = "auth-token"

// TokenValidator define o contrato de validação necessário para o middleware.
type TokenValidator interface {
	ValidateAccess(tokenString string) (*token.AccessClaims, error)
}

// UserLoader recarrega o cadastro do usuário no modo re-hidratado.
type UserLoader interface {
	FindByID(ctx context.Context, id string) (domain.User, error)
}

// Guard valida tokens de acesso e constrói o AuthContext de cada requisição.
type Guard struct {
	tokenSvc  TokenValidator
	users     UserLoader // nil no modo stateless
	rehydrate bool
	logger    logger.Logger
}

// NewGuard cria o guard de autenticação. Quando rehydrate é verdadeiro, o
// contexto é recarregado do banco a cada requisição (permissões sempre
// frescas); caso contrário, as claims embutidas no token são confiadas até o
// próximo refresh. A escolha é política de configuração, não acidente.
func NewGuard(tokenSvc TokenValidator, users UserLoader, rehydrate bool, log logger.Logger) *Guard {
	return &Guard{tokenSvc: tokenSvc, users: users, rehydrate: rehydrate, logger: log}
}

// Authenticate extrai o bearer token (ou o cookie auth-token), valida e
// anexa o AuthContext ao contexto da requisição. Falhas viram 401 com a
// categoria correspondente (MISSING_CREDENTIAL, TOKEN_EXPIRED, TOKEN_INVALID).
func (g *Guard) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := ExtractToken(r)
		if tokenString == "" {
			writeAuthError(w, apperror.NewUnauthorizedError(
				apperror.CategoryMissingCredential, "Token de acesso requerido."))
			return
		}

		claims, err := g.tokenSvc.ValidateAccess(tokenString)
		if err != nil {
			if errors.Is(err, token.ErrTokenExpired) {
				writeAuthError(w, apperror.NewUnauthorizedError(
					apperror.CategoryTokenExpired, "Token expirado."))
				return
			}
			writeAuthError(w, apperror.NewUnauthorizedError(
				apperror.CategoryTokenInvalid, "Token inválido."))
			return
		}

		authCtx := domain.AuthContext{
			UserID:     claims.UserID,
			UserType:   claims.UserType,
			ClubeID:    claims.ClubeID,
			Permissoes: claims.Permissoes,
		}

		if g.rehydrate && g.users != nil {
			user, err := g.users.FindByID(r.Context(), claims.UserID)
			if err != nil || !user.Ativo {
				// Conta removida ou desabilitada depois da emissão do token.
				writeAuthError(w, apperror.NewUnauthorizedError(
					apperror.CategoryTokenInvalid, "Token inválido."))
				return
			}
			authCtx = domain.AuthContextFromUser(user)
		}

		ctx := context.WithValue(r.Context(), AuthContextKey, authCtx)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireUserTypes exige que o papel do principal esteja na lista explícita.
// A lista é o mecanismo canônico de autorização grosseira; a hierarquia
// numérica (domain.HasHigherOrEqualRole) existe só como helper e deve
// concordar com as listas usadas aqui.
func (g *Guard) RequireUserTypes(types ...domain.UserType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx, ok := FromContext(r.Context())
			if !ok {
				writeAuthError(w, apperror.NewUnauthorizedError(
					apperror.CategoryMissingCredential, "Autorização necessária. Token não processado."))
				return
			}

			for _, t := range types {
				if authCtx.UserType == t {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeAuthError(w, apperror.NewForbiddenError(
				apperror.CategoryInsufficientRole, "Acesso negado. Papel insuficiente para este recurso."))
		})
	}
}

// RequirePermissions exige que o principal possua todas as flags informadas.
// As flags faltantes são reportadas juntas na mensagem, não apenas a primeira.
func (g *Guard) RequirePermissions(flags ...domain.PermissionFlag) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx, ok := FromContext(r.Context())
			if !ok {
				writeAuthError(w, apperror.NewUnauthorizedError(
					apperror.CategoryMissingCredential, "Autorização necessária. Token não processado."))
				return
			}

			if missing := authCtx.MissingPermissions(flags...); len(missing) > 0 {
				names := make([]string, len(missing))
				for i, flag := range missing {
					names[i] = string(flag)
				}
				writeAuthError(w, apperror.NewForbiddenError(
					apperror.CategoryInsufficientPermissions,
					"Permissões necessárias: "+strings.Join(names, ", ")))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// FromContext extrai o AuthContext anexado pelo Authenticate.
func FromContext(ctx context.Context) (domain.AuthContext, bool) {
	authCtx, ok := ctx.Value(AuthContextKey).(domain.AuthContext)
	return authCtx, ok
}

// ExtractToken lê o header "Authorization: Bearer <token>"; na ausência,
// tenta o cookie auth-token.
func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if cookie, err := r.Cookie(AuthCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// writeAuthError serializa uma falha do guard no formato padronizado de erro
// da API (code/category/message).
func writeAuthError(w http.ResponseWriter, err error) {
	status, category, message := apperror.MapToHTTPStatus(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"code":     status,
		"category": category,
		"message":  message,
	})
}
