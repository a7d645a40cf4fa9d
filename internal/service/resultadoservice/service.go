package resultadoservice

import (
	"context"

	"clubetiro/internal/domain"
	apperror "clubetiro/internal/errors"
	"clubetiro/internal/pkg/logger"
)

// ResultadoRepository define o contrato de persistência de resultados.
type ResultadoRepository interface {
	Create(ctx context.Context, resultado domain.Resultado) (domain.Resultado, error)
	FindByID(ctx context.Context, id string) (domain.Resultado, error)
	FindAll(ctx context.Context, filter domain.ResultadoFilter) ([]domain.Resultado, error)
	Update(ctx context.Context, resultado domain.Resultado) (domain.Resultado, error)
	Delete(ctx context.Context, id string) error
}

// Service implementa a lógica de negócio de resultados de provas.
type Service struct {
	repo   ResultadoRepository
	logger logger.Logger
}

// NewService cria uma nova instância do serviço de resultados.
func NewService(repo ResultadoRepository, log logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

// Create lança um resultado no escopo do clube do ator.
func (s *Service) Create(ctx context.Context, actor domain.AuthContext, resultado domain.Resultado) (domain.Resultado, error) {
	if resultado.EventoID == "" || resultado.UserID == "" {
		return domain.Resultado{}, apperror.NewValidationError("Evento e usuário são obrigatórios.")
	}
	if !actor.IsSystemAdmin() {
		resultado.ClubeID = actor.ClubeID
	}
	return s.repo.Create(ctx, resultado)
}

// List lista resultados sob o isolamento por clube.
func (s *Service) List(ctx context.Context, actor domain.AuthContext, filter domain.ResultadoFilter) ([]domain.Resultado, error) {
	if !actor.IsSystemAdmin() {
		if actor.ClubeID == "" {
			return nil, apperror.NewForbiddenError(
				apperror.CategoryNoClubAffiliation, "Usuário não está vinculado a nenhum clube.")
		}
		filter.ClubeID = actor.ClubeID
	}
	return s.repo.FindAll(ctx, filter)
}

// Update altera um resultado do clube do ator.
func (s *Service) Update(ctx context.Context, actor domain.AuthContext, resultado domain.Resultado) (domain.Resultado, error) {
	existing, err := s.repo.FindByID(ctx, resultado.ID)
	if err != nil {
		return domain.Resultado{}, err
	}
	if !actor.CanAccessClub(existing.ClubeID) {
		return domain.Resultado{}, apperror.NewClubScopeError(actor.ClubeID)
	}
	resultado.EventoID = existing.EventoID
	resultado.UserID = existing.UserID
	resultado.ClubeID = existing.ClubeID
	return s.repo.Update(ctx, resultado)
}

// Delete remove um resultado do clube do ator.
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
