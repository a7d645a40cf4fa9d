package auth

import (
	"context"
	"net/http"

	"clubetiro/internal/api/respond"
	"clubetiro/internal/domain"
	apperror "clubetiro/internal/errors"
	"clubetiro/internal/pkg/logger"
	"clubetiro/internal/pkg/middleware"
	"clubetiro/internal/service/authservice"
)

// AuthService define o contrato que o Handler espera da camada de Serviço.
type AuthService interface {
	Login(ctx context.Context, req domain.LoginRequest, client authservice.ClientInfo) (domain.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string, client authservice.ClientInfo) (domain.LoginResponse, error)
	Logout(ctx context.Context, refreshToken string)
	ChangePassword(ctx context.Context, actor domain.AuthContext, req domain.ChangePasswordRequest) error
	Validate(ctx context.Context, tokenString string) authservice.ValidateResponse
}

// Handler agrupa os métodos de Handler da autenticação.
type Handler struct {
	Service AuthService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc AuthService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// refreshPayload é o corpo de /refresh e /logout.
type refreshPayload struct {
	RefreshToken string `json:"refreshToken"`
}

// LoginHandler lida com a requisição POST /api/auth/login.
// @Summary Autentica um usuário e emite o par de tokens
// @Description Valida email/senha, registra a sessão e retorna access + refresh token.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body domain.LoginRequest true "Credenciais do usuário"
// @Success 200 {object} domain.LoginResponse "Sessão criada"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 401 {object} domain.ErrorResponse "Credenciais inválidas ou conta desabilitada"
// @Failure 403 {object} domain.ErrorResponse "Clube inativo"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /api/auth/login [post]
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}

	resp, err := h.Service.Login(r.Context(), req, clientInfo(r))
	if err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}

	h.setAuthCookie(w, resp.AccessToken, resp.ExpiresIn)
	h.Logger.Info("Login realizado.", map[string]interface{}{
		"user_id": resp.User.UserID,
		"tipo":    resp.User.UserType,
	})
	respond.JSON(w, http.StatusOK, resp)
}

// RefreshHandler lida com a requisição POST /api/auth/refresh.
// @Summary Renova o par de tokens
// @Description Troca um refresh token válido por um novo par, rotacionando a sessão.
// @Tags auth
// @Accept json
// @Produce json
// @Param refresh body refreshPayload true "Refresh token vigente"
// @Success 200 {object} domain.LoginResponse "Novo par emitido"
// @Failure 401 {object} domain.ErrorResponse "Refresh token inválido ou expirado"
// @Router /api/auth/refresh [post]
func (h *Handler) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	var req refreshPayload
	if err := respond.Decode(r, &req); err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}

	resp, err := h.Service.Refresh(r.Context(), req.RefreshToken, clientInfo(r))
	if err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}

	h.setAuthCookie(w, resp.AccessToken, resp.ExpiresIn)
	respond.JSON(w, http.StatusOK, resp)
}

// LogoutHandler lida com a requisição POST /api/auth/logout.
// A revogação é melhor-esforço: o cliente sempre recebe sucesso, token
// presente ou não.
// @Summary Encerra a sessão
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]bool "Sessão encerrada"
// @Router /api/auth/logout [post]
func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	var req refreshPayload
	// Corpo ausente ou malformado não impede o logout.
	_ = respond.Decode(r, &req)

	h.Service.Logout(r.Context(), req.RefreshToken)
	h.clearAuthCookie(w)
	respond.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ValidateHandler lida com a requisição GET /api/auth/validate.
// Nunca retorna erro HTTP: a validade vem no corpo.
// @Summary Valida o token de acesso da requisição
// @Tags auth
// @Produce json
// @Success 200 {object} authservice.ValidateResponse "Resultado da validação"
// @Router /api/auth/validate [get]
func (h *Handler) ValidateHandler(w http.ResponseWriter, r *http.Request) {
	resp := h.Service.Validate(r.Context(), middleware.ExtractToken(r))
	respond.JSON(w, http.StatusOK, resp)
}

// ChangePasswordHandler lida com a requisição PUT /api/auth/password.
// @Summary Altera a senha do usuário
// @Description Troca a senha (própria, mediante senha atual; ou de terceiro, se system_admin) e revoga todas as sessões do afetado.
// @Tags auth
// @Accept json
// @Produce json
// @Param password body domain.ChangePasswordRequest true "Senha atual e nova senha"
// @Success 200 {object} map[string]bool "Senha alterada"
// @Failure 400 {object} domain.ErrorResponse "Senha nova fraca ou payload inválido"
// @Failure 401 {object} domain.ErrorResponse "Senha atual incorreta"
// @Failure 403 {object} domain.ErrorResponse "Sem permissão sobre o usuário alvo"
// @Router /api/auth/password [put]
func (h *Handler) ChangePasswordHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.FromContext(r.Context())
	if !ok {
		respond.Err(w, r, h.Logger, apperror.NewUnauthorizedError(
			apperror.CategoryMissingCredential, "Autorização necessária."))
		return
	}

	var req domain.ChangePasswordRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}
	if req.UserID == "" {
		req.UserID = actor.UserID
	}

	if err := h.Service.ChangePassword(r.Context(), actor, req); err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// setAuthCookie espelha o access token em um cookie httpOnly para clientes
// browser que não gerenciam o header Authorization.
func (h *Handler) setAuthCookie(w http.ResponseWriter, accessToken string, expiresIn int) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    accessToken,
		Path:     "/",
		MaxAge:   expiresIn,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handler) clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// clientInfo coleta user-agent e IP de origem para o registro da sessão.
// X-Forwarded-For tem precedência quando presente (deploy atrás de proxy).
func clientInfo(r *http.Request) authservice.ClientInfo {
	ip := r.Header.Get("X-Forwarded-For")
	if ip == "" {
		ip = r.RemoteAddr
	}
	return authservice.ClientInfo{
		UserAgent: r.UserAgent(),
		IPAddress: ip,
	}
}
