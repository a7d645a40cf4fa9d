package userservice

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"clubetiro/internal/domain"
	apperror "clubetiro/internal/errors"
	"clubetiro/internal/pkg/logger"
)

const bcryptCost = 12

// UserRepository define o contrato de persistência consumido pelo serviço.
type UserRepository interface {
	Save(ctx context.Context, user domain.User) (domain.User, error)
	FindByID(ctx context.Context, id string) (domain.User, error)
	FindAll(ctx context.Context, clubeID string) ([]domain.User, error)
	Update(ctx context.Context, user domain.User) (domain.User, error)
	Delete(ctx context.Context, id string) error
}

// SessionRevoker revoga as sessões de um usuário removido/desativado.
type SessionRevoker interface {
	RevokeAllForUser(ctx context.Context, userID string) error
}

// Service implementa a gestão de usuários sob as regras hierárquicas.
type Service struct {
	repo     UserRepository
	sessions SessionRevoker
	logger   logger.Logger
}

// NewService cria uma nova instância do serviço de usuários.
func NewService(repo UserRepository, sessions SessionRevoker, log logger.Logger) *Service {
	return &Service{repo: repo, sessions: sessions, logger: log}
}

// Create cadastra um novo usuário. system_admin cadastra qualquer papel;
// club_admin com gerenciarMembros cadastra apenas membros do próprio clube.
func (s *Service) Create(ctx context.Context, actor domain.AuthContext, req domain.CreateUserRequest) (domain.User, error) {
	if req.Nome == "" || req.Email == "" || req.Senha == "" {
		return domain.User{}, apperror.NewValidationError("Nome, email e senha são obrigatórios.")
	}
	if len(req.Senha) < 8 {
		return domain.User{}, apperror.NewValidationError("A senha deve ter ao menos 8 caracteres.")
	}

	if !actor.IsSystemAdmin() {
		if missing := actor.MissingPermissions(domain.PermGerenciarMembros); len(missing) > 0 {
			return domain.User{}, apperror.NewForbiddenError(
				apperror.CategoryInsufficientPermissions, "Permissões necessárias: gerenciarMembros")
		}
		// Um club_admin só cria membros, e só no próprio clube. Sem clube no
		// payload, assume o clube do ator.
		if req.ClubeID == "" {
			req.ClubeID = actor.ClubeID
		}
		target := domain.AuthContext{UserType: req.Tipo, ClubeID: req.ClubeID}
		if !actor.CanManageUser(target) {
			return domain.User{}, apperror.NewForbiddenError(
				apperror.CategoryClubAccessDenied, "Você só pode cadastrar membros do seu clube.")
		}
	}

	permissoes := req.Permissoes
	if domain.NormalizeUserType(req.Tipo) == domain.TypeClubAdmin && permissoes == nil {
		permissoes = domain.DefaultClubAdminPermissions()
	}

	user := domain.User{
		Nome:           req.Nome,
		Email:          req.Email,
		Tipo:           req.Tipo,
		ClubeID:        req.ClubeID,
		Permissoes:     permissoes,
		NumeroRegistro: req.NumeroRegistro,
		Telefone:       req.Telefone,
		Ativo:          true,
		DataCadastro:   time.Now().UTC(),
	}
	if err := user.Validate(); err != nil {
		return domain.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Senha), bcryptCost)
	if err != nil {
		return domain.User{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}
	user.SenhaHash = string(hash)

	created, err := s.repo.Save(ctx, user)
	if err != nil {
		return domain.User{}, err
	}

	s.logger.Info("Usuário cadastrado.", map[string]interface{}{
		"user_id": created.ID, "tipo": string(created.Tipo), "por": actor.UserID,
	})
	return created, nil
}

// Get busca um usuário visível ao ator: o próprio cadastro, usuários do
// mesmo clube, ou qualquer um para system_admin.
func (s *Service) Get(ctx context.Context, actor domain.AuthContext, id string) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	if !actor.IsSystemAdmin() && actor.UserID != user.ID && !actor.CanAccessClub(user.ClubeID) {
		return domain.User{}, apperror.NewClubScopeError(actor.ClubeID)
	}

	return user, nil
}

// List lista usuários sob o isolamento por clube: system_admin vê todos
// (com filtro opcional por clube); usuários de clube veem apenas o próprio.
func (s *Service) List(ctx context.Context, actor domain.AuthContext, clubeID string) ([]domain.User, error) {
	if actor.IsSystemAdmin() {
		return s.repo.FindAll(ctx, clubeID)
	}

	if actor.ClubeID == "" {
		return nil, apperror.NewForbiddenError(
			apperror.CategoryNoClubAffiliation, "Usuário não está vinculado a nenhum clube.")
	}
	if clubeID != "" && clubeID != actor.ClubeID {
		return nil, apperror.NewForbiddenError(
			apperror.CategoryClubAccessDenied, "Acesso negado. Você só pode acessar dados do seu clube.")
	}

	return s.repo.FindAll(ctx, actor.ClubeID)
}

// Update altera um usuário existente, sob a regra CanManageUser.
func (s *Service) Update(ctx context.Context, actor domain.AuthContext, id string, req domain.UpdateUserRequest) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	if !actor.CanManageUser(domain.AuthContextFromUser(user)) {
		return domain.User{}, apperror.NewForbiddenError(
			apperror.CategoryClubAccessDenied, "Você não pode gerenciar este usuário.")
	}

	if req.Nome != nil {
		user.Nome = *req.Nome
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.NumeroRegistro != nil {
		user.NumeroRegistro = *req.NumeroRegistro
	}
	if req.Telefone != nil {
		user.Telefone = *req.Telefone
	}
	// Vínculo de clube, permissões e ativação são atribuições administrativas.
	if actor.IsSystemAdmin() {
		if req.ClubeID != nil {
			user.ClubeID = *req.ClubeID
		}
	}
	// Um club_admin não altera as próprias flags nem a própria ativação:
	// auto-concessão de permissões driblaria os gates de autorização. Sobre
	// o próprio cadastro de um club_admin, só system_admin decide.
	deactivated := false
	if actor.IsSystemAdmin() ||
		(domain.NormalizeUserType(actor.UserType) == domain.TypeClubAdmin && actor.UserID != user.ID) {
		if req.Permissoes != nil {
			user.Permissoes = req.Permissoes
		}
		if req.Ativo != nil {
			user.Ativo = *req.Ativo
			deactivated = !*req.Ativo
		}
	}

	if err := user.Validate(); err != nil {
		return domain.User{}, err
	}

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return domain.User{}, err
	}

	// Conta desativada não mantém sessões abertas.
	if deactivated {
		if err := s.sessions.RevokeAllForUser(ctx, user.ID); err != nil {
			s.logger.Error("Falha ao revogar sessões de usuário desativado.", err)
		}
	}

	return updated, nil
}

// Delete remove um usuário, sob a regra CanManageUser, revogando as sessões.
func (s *Service) Delete(ctx context.Context, actor domain.AuthContext, id string) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if !actor.CanManageUser(domain.AuthContextFromUser(user)) {
		return apperror.NewForbiddenError(
			apperror.CategoryClubAccessDenied, "Você não pode gerenciar este usuário.")
	}

	if err := s.sessions.RevokeAllForUser(ctx, id); err != nil {
		s.logger.Error("Falha ao revogar sessões do usuário removido.", err)
	}

	return s.repo.Delete(ctx, id)
}
