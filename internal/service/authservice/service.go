package authservice

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"clubetiro/internal/domain"
	apperror "clubetiro/internal/errors"
	"clubetiro/internal/pkg/logger"
	"clubetiro/internal/pkg/token"
	"clubetiro/internal/repository/sessionrepo"
)

// Custo do bcrypt usado para hashing de senhas.
const bcryptCost = 12

// UserRepository é o contrato de persistência de usuários que o serviço de
// autenticação consome.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByID(ctx context.Context, id string) (domain.User, error)
	UpdatePassword(ctx context.Context, userID, senhaHash string) error
}

// ClubeRepository expõe a verificação de clube ativo usada no login.
type ClubeRepository interface {
	IsAtivo(ctx context.Context, id string) (bool, error)
}

// SessionRepository é o contrato de persistência de sessões.
type SessionRepository interface {
	RecordLogin(ctx context.Context, session domain.Session) error
	Rotate(ctx context.Context, oldTokenHash string, newSession domain.Session) error
	FindByTokenHash(ctx context.Context, tokenHash string) (domain.Session, error)
	Revoke(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}

// ClientInfo são os metadados do cliente gravados na sessão.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

// ValidateResponse é o resultado da validação de um access token para o
// middleware de cliente. Nunca é um erro: tokens ruins viram Valid=false.
type ValidateResponse struct {
	Valid bool                `json:"valid"`
	User  *domain.AuthContext `json:"user,omitempty"`
	Error string              `json:"error,omitempty"`
}

// Service implementa os fluxos de login, refresh, logout e troca de senha.
type Service struct {
	users    UserRepository
	clubes   ClubeRepository
	sessions SessionRepository
	tokenSvc token.TokenService
	logger   logger.Logger
}

// NewService cria uma nova instância do serviço de autenticação.
func NewService(users UserRepository, clubes ClubeRepository, sessions SessionRepository,
	tokenSvc token.TokenService, log logger.Logger) *Service {
	return &Service{
		users:    users,
		clubes:   clubes,
		sessions: sessions,
		tokenSvc: tokenSvc,
		logger:   log,
	}
}

// Login autentica as credenciais e emite o par de tokens. O registro da
// sessão e a atualização de ultimo_login acontecem numa única transação; se
// a escrita falhar, o par já gerado é descartado e nunca chega ao cliente.
func (s *Service) Login(ctx context.Context, req domain.LoginRequest, client ClientInfo) (domain.LoginResponse, error) {
	if req.Email == "" || req.Senha == "" {
		return domain.LoginResponse{}, apperror.NewValidationError("Email e senha são obrigatórios.")
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			// Mesma resposta de senha errada: não revela se a conta existe.
			return domain.LoginResponse{}, apperror.NewInvalidCredentialsError()
		}
		return domain.LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.SenhaHash), []byte(req.Senha)); err != nil {
		s.logger.Debug("Senha incorreta no login.", map[string]interface{}{"user_id": user.ID})
		return domain.LoginResponse{}, apperror.NewInvalidCredentialsError()
	}

	if !user.Ativo {
		return domain.LoginResponse{}, apperror.NewUnauthorizedError(
			apperror.CategoryAccountDisabled, "Conta desabilitada. Contate o administrador.")
	}

	if user.ClubeID != "" {
		ativo, err := s.clubes.IsAtivo(ctx, user.ClubeID)
		if err != nil {
			return domain.LoginResponse{}, err
		}
		if !ativo {
			return domain.LoginResponse{}, apperror.NewForbiddenError(
				apperror.CategoryClubInactive, "Clube inativo. Contate o administrador.")
		}
	}

	authCtx := domain.AuthContextFromUser(user)
	pair, err := s.tokenSvc.GeneratePair(authCtx)
	if err != nil {
		return domain.LoginResponse{}, apperror.NewInternalError("Falha ao gerar tokens de autenticação.", err)
	}

	session := domain.Session{
		UserID:    user.ID,
		TokenHash: sessionrepo.HashToken(pair.RefreshToken),
		ExpiresAt: pair.RefreshExpiresAt,
		UserAgent: client.UserAgent,
		IPAddress: client.IPAddress,
	}
	if err := s.sessions.RecordLogin(ctx, session); err != nil {
		return domain.LoginResponse{}, err
	}

	s.logger.Info("Login realizado com sucesso.", map[string]interface{}{
		"user_id": user.ID, "user_type": string(user.Tipo),
	})

	return domain.LoginResponse{
		User:         authCtx,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

// Refresh troca um refresh token válido e rastreado por um novo par,
// rotacionando a sessão atomicamente.
func (s *Service) Refresh(ctx context.Context, refreshToken string, client ClientInfo) (domain.LoginResponse, error) {
	if refreshToken == "" {
		return domain.LoginResponse{}, apperror.NewValidationError("Refresh token é obrigatório.")
	}

	userID, err := s.tokenSvc.ValidateRefresh(refreshToken)
	if err != nil {
		if errors.Is(err, token.ErrTokenExpired) {
			return domain.LoginResponse{}, apperror.NewUnauthorizedError(
				apperror.CategoryTokenExpired, "Refresh token expirado.")
		}
		return domain.LoginResponse{}, apperror.NewUnauthorizedError(
			apperror.CategoryTokenInvalid, "Refresh token inválido.")
	}

	oldHash := sessionrepo.HashToken(refreshToken)
	session, err := s.sessions.FindByTokenHash(ctx, oldHash)
	if err != nil {
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			// Token sintaticamente válido mas já revogado/rotacionado no servidor.
			return domain.LoginResponse{}, apperror.NewUnauthorizedError(
				apperror.CategoryRefreshTokenInvalid, "Sessão inválida ou expirada.")
		}
		return domain.LoginResponse{}, err
	}
	if session.UserID != userID {
		return domain.LoginResponse{}, apperror.NewUnauthorizedError(
			apperror.CategoryRefreshTokenInvalid, "Sessão inválida ou expirada.")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil || !user.Ativo {
		return domain.LoginResponse{}, apperror.NewUnauthorizedError(
			apperror.CategoryRefreshTokenInvalid, "Sessão inválida ou expirada.")
	}

	authCtx := domain.AuthContextFromUser(user)
	pair, err := s.tokenSvc.GeneratePair(authCtx)
	if err != nil {
		return domain.LoginResponse{}, apperror.NewInternalError("Falha ao gerar tokens de autenticação.", err)
	}

	newSession := domain.Session{
		UserID:    user.ID,
		TokenHash: sessionrepo.HashToken(pair.RefreshToken),
		ExpiresAt: pair.RefreshExpiresAt,
		UserAgent: client.UserAgent,
		IPAddress: client.IPAddress,
	}
	if err := s.sessions.Rotate(ctx, oldHash, newSession); err != nil {
		return domain.LoginResponse{}, err
	}

	return domain.LoginResponse{
		User:         authCtx,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

// Logout revoga a sessão do refresh token apresentado. Sempre "dá certo" do
// ponto de vista do cliente: token ausente ou desconhecido não é erro, para
// não vazar estado de sessão e manter o fluxo de logout simples.
func (s *Service) Logout(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}
	if err := s.sessions.Revoke(ctx, sessionrepo.HashToken(refreshToken)); err != nil {
		s.logger.Error("Falha ao revogar sessão no logout (ignorada).", err)
	}
}

// ChangePassword troca a senha de um usuário e revoga todas as suas sessões,
// forçando nova autenticação em todos os dispositivos. Troca self-service
// exige a senha atual; system_admin alterando terceiros não precisa dela.
func (s *Service) ChangePassword(ctx context.Context, actor domain.AuthContext, req domain.ChangePasswordRequest) error {
	if len(req.NovaSenha) < 8 {
		return apperror.NewValidationError("A nova senha deve ter ao menos 8 caracteres.")
	}

	targetID := req.UserID
	if targetID == "" {
		targetID = actor.UserID
	}

	selfService := targetID == actor.UserID
	if !selfService && !actor.IsSystemAdmin() {
		return apperror.NewForbiddenError(
			apperror.CategoryInsufficientRole, "Apenas administradores do sistema alteram senhas de terceiros.")
	}

	user, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return err
	}

	if selfService {
		if req.SenhaAtual == "" {
			return apperror.NewValidationError("Senha atual é obrigatória.")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.SenhaHash), []byte(req.SenhaAtual)); err != nil {
			return apperror.NewInvalidCredentialsError()
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NovaSenha), bcryptCost)
	if err != nil {
		return apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}

	if err := s.users.UpdatePassword(ctx, targetID, string(hash)); err != nil {
		return err
	}

	if err := s.sessions.RevokeAllForUser(ctx, targetID); err != nil {
		return err
	}

	s.logger.Info("Senha alterada e sessões revogadas.", map[string]interface{}{
		"user_id": targetID, "self_service": selfService,
	})
	return nil
}

// Validate verifica um access token e retorna o contexto fresco do banco.
// Usado pelo middleware do cliente; nunca retorna erro HTTP, apenas
// Valid=false com o motivo.
func (s *Service) Validate(ctx context.Context, tokenString string) ValidateResponse {
	if tokenString == "" {
		return ValidateResponse{Valid: false, Error: "Token não fornecido"}
	}

	claims, err := s.tokenSvc.ValidateAccess(tokenString)
	if err != nil {
		return ValidateResponse{Valid: false, Error: "Token inválido ou expirado"}
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil || !user.Ativo {
		return ValidateResponse{Valid: false, Error: "Usuário não encontrado"}
	}

	authCtx := domain.AuthContextFromUser(user)
	return ValidateResponse{Valid: true, User: &authCtx}
}
