package mensalidadeservice

import (
	"context"

	"clubetiro/internal/domain"
	apperror "clubetiro/internal/errors"
	"clubetiro/internal/pkg/logger"
)

// MensalidadeRepository define o contrato de persistência de mensalidades.
type MensalidadeRepository interface {
	Create(ctx context.Context, m domain.Mensalidade) (domain.Mensalidade, error)
	FindByID(ctx context.Context, id string) (domain.Mensalidade, error)
	FindAll(ctx context.Context, clubeID, userID string) ([]domain.Mensalidade, error)
	Update(ctx context.Context, m domain.Mensalidade) (domain.Mensalidade, error)
	Delete(ctx context.Context, id string) error
}

// Service implementa a lógica de negócio de mensalidades.
type Service struct {
	repo   MensalidadeRepository
	logger logger.Logger
}

// NewService cria uma nova instância do serviço de mensalidades.
func NewService(repo MensalidadeRepository, log logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

// Create lança uma mensalidade no clube do ator.
func (s *Service) Create(ctx context.Context, actor domain.AuthContext, m domain.Mensalidade) (domain.Mensalidade, error) {
	if m.UserID == "" {
		return domain.Mensalidade{}, apperror.NewValidationError("Usuário é obrigatório.")
	}
	if !domain.ValidTipoPlano(m.TipoPlano) {
		return domain.Mensalidade{}, apperror.NewValidationError("Tipo de plano inválido: " + m.TipoPlano)
	}
	if m.Valor <= 0 {
		return domain.Mensalidade{}, apperror.NewValidationError("Valor deve ser positivo.")
	}

	if !actor.IsSystemAdmin() {
		m.ClubeID = actor.ClubeID
	}
	if m.ClubeID == "" {
		return domain.Mensalidade{}, apperror.NewValidationError("Clube é obrigatório.")
	}
	if m.Status == "" {
		m.Status = "ativa"
	}

	return s.repo.Create(ctx, m)
}

// List lista mensalidades sob o isolamento por clube, com filtro opcional
// por associado.
func (s *Service) List(ctx context.Context, actor domain.AuthContext, userID string) ([]domain.Mensalidade, error) {
	if actor.IsSystemAdmin() {
		return s.repo.FindAll(ctx, "", userID)
	}
	if actor.ClubeID == "" {
		return nil, apperror.NewForbiddenError(
			apperror.CategoryNoClubAffiliation, "Usuário não está vinculado a nenhum clube.")
	}
	return s.repo.FindAll(ctx, actor.ClubeID, userID)
}

// Update altera uma mensalidade do clube do ator.
func (s *Service) Update(ctx context.Context, actor domain.AuthContext, m domain.Mensalidade) (domain.Mensalidade, error) {
	existing, err := s.repo.FindByID(ctx, m.ID)
	if err != nil {
		return domain.Mensalidade{}, err
	}
	if !actor.CanAccessClub(existing.ClubeID) {
		return domain.Mensalidade{}, apperror.NewClubScopeError(actor.ClubeID)
	}
	if m.TipoPlano != "" && !domain.ValidTipoPlano(m.TipoPlano) {
		return domain.Mensalidade{}, apperror.NewValidationError("Tipo de plano inválido: " + m.TipoPlano)
	}

	m.UserID = existing.UserID
	m.ClubeID = existing.ClubeID
	return s.repo.Update(ctx, m)
}

// Delete remove uma mensalidade do clube do ator.
func (s *Service) Delete(ctx context.Context, actor domain.AuthContext, id string) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanAccessClub(existing.ClubeID) {
		return apperror.NewClubScopeError(actor.ClubeID)
	}
	return s.repo.Delete(ctx, id)
}
