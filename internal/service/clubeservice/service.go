package clubeservice

import (
	"context"

	"clubetiro/internal/domain"
	apperror "clubetiro/internal/errors"
	"clubetiro/internal/pkg/logger"
)

// ClubeRepository define o contrato de persistência de clubes.
type ClubeRepository interface {
	Create(ctx context.Context, clube domain.Clube) (domain.Clube, error)
	FindByID(ctx context.Context, id string) (domain.Clube, error)
	FindAll(ctx context.Context) ([]domain.Clube, error)
	Update(ctx context.Context, clube domain.Clube) (domain.Clube, error)
}

// UserRepository expõe a listagem de usuários por clube.
type UserRepository interface {
	FindAll(ctx context.Context, clubeID string) ([]domain.User, error)
}

// DashboardRepository agrega os contadores do painel do system_admin.
type DashboardRepository interface {
	Stats(ctx context.Context) (domain.DashboardStats, error)
}

// Service implementa o gerenciamento de clubes da área de sistema.
// Todas as rotas que chegam aqui já passaram pelo guard de system_admin.
type Service struct {
	repo      ClubeRepository
	users     UserRepository
	dashboard DashboardRepository
	logger    logger.Logger
}

// NewService cria uma nova instância do serviço de clubes.
func NewService(repo ClubeRepository, users UserRepository, dashboard DashboardRepository, log logger.Logger) *Service {
	return &Service{repo: repo, users: users, dashboard: dashboard, logger: log}
}

// Create cadastra um novo clube na plataforma.
func (s *Service) Create(ctx context.Context, clube domain.Clube) (domain.Clube, error) {
	if clube.Nome == "" {
		return domain.Clube{}, apperror.NewValidationError("Nome do clube é obrigatório.")
	}
	if clube.CNPJ == "" {
		return domain.Clube{}, apperror.NewValidationError("CNPJ é obrigatório.")
	}
	if clube.Licenca.Status == "" {
		clube.Licenca.Status = domain.LicencaPendente
	}
	clube.Ativo = true

	created, err := s.repo.Create(ctx, clube)
	if err != nil {
		return domain.Clube{}, err
	}

	s.logger.Info("Clube cadastrado.", map[string]interface{}{"id": created.ID, "nome": created.Nome})
	return created, nil
}

// Get busca um clube pelo ID.
func (s *Service) Get(ctx context.Context, id string) (domain.Clube, error) {
	return s.repo.FindByID(ctx, id)
}

// List lista todos os clubes cadastrados.
func (s *Service) List(ctx context.Context) ([]domain.Clube, error) {
	return s.repo.FindAll(ctx)
}

// Update atualiza o cadastro de um clube. Desativar um clube bloqueia o
// login de todos os seus membros na próxima tentativa.
func (s *Service) Update(ctx context.Context, clube domain.Clube) (domain.Clube, error) {
	existing, err := s.repo.FindByID(ctx, clube.ID)
	if err != nil {
		return domain.Clube{}, err
	}

	if clube.Nome == "" {
		clube.Nome = existing.Nome
	}
	if clube.CNPJ == "" {
		clube.CNPJ = existing.CNPJ
	}
	clube.DataCadastro = existing.DataCadastro

	updated, err := s.repo.Update(ctx, clube)
	if err != nil {
		return domain.Clube{}, err
	}

	if existing.Ativo && !updated.Ativo {
		s.logger.Warn("Clube desativado; login dos membros será bloqueado.",
			map[string]interface{}{"id": updated.ID})
	}
	return updated, nil
}

// ListUsers lista os usuários vinculados a um clube.
func (s *Service) ListUsers(ctx context.Context, clubeID string) ([]domain.User, error) {
	if _, err := s.repo.FindByID(ctx, clubeID); err != nil {
		return nil, err
	}
	return s.users.FindAll(ctx, clubeID)
}

// Dashboard retorna o resumo operacional da plataforma.
func (s *Service) Dashboard(ctx context.Context) (domain.DashboardStats, error) {
	return s.dashboard.Stats(ctx)
}
