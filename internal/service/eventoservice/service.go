package eventoservice

import (
	"context"

	"clubetiro/internal/domain"
	apperror "clubetiro/internal/errors"
	"clubetiro/internal/pkg/logger"
)

// EventoRepository define o contrato de persistência de eventos e inscrições.
type EventoRepository interface {
	Create(ctx context.Context, evento domain.Evento) (domain.Evento, error)
	FindByID(ctx context.Context, id string) (domain.Evento, error)
	FindAll(ctx context.Context, filter domain.EventoFilter) ([]domain.Evento, error)
	Update(ctx context.Context, evento domain.Evento) (domain.Evento, error)
	Delete(ctx context.Context, id string) error
	AddParticipante(ctx context.Context, p domain.Participante) (domain.Participante, error)
	ListParticipantes(ctx context.Context, eventoID string) ([]domain.Participante, error)
	CountParticipantes(ctx context.Context, eventoID string) (int, error)
	RemoveParticipante(ctx context.Context, eventoID, userID string) error
}

// Service implementa a lógica de negócio de eventos sob o isolamento por clube.
type Service struct {
	repo   EventoRepository
	logger logger.Logger
}

// NewService cria uma nova instância do serviço de eventos.
func NewService(repo EventoRepository, log logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

// Create cria um evento no clube do ator (system_admin pode indicar o clube
// ou criar eventos globais sem clube).
func (s *Service) Create(ctx context.Context, actor domain.AuthContext, evento domain.Evento) (domain.Evento, error) {
	if evento.Nome == "" || evento.Local == "" || evento.Data.IsZero() {
		return domain.Evento{}, apperror.NewValidationError("Nome, data e local são obrigatórios.")
	}

	if !actor.IsSystemAdmin() {
		evento.ClubeID = actor.ClubeID
	}
	if evento.Status == "" {
		evento.Status = domain.EventoAberto
	}
	evento.CriadoPor = actor.UserID

	return s.repo.Create(ctx, evento)
}

// Get busca um evento respeitando o escopo de clube do ator.
func (s *Service) Get(ctx context.Context, actor domain.AuthContext, id string) (domain.Evento, error) {
	evento, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Evento{}, err
	}
	if !actor.CanAccessClub(evento.ClubeID) {
		return domain.Evento{}, apperror.NewClubScopeError(actor.ClubeID)
	}
	return evento, nil
}

// List lista eventos: system_admin vê todos (filtro opcional de clube);
// usuários de clube veem os do próprio clube mais os globais.
func (s *Service) List(ctx context.Context, actor domain.AuthContext, filter domain.EventoFilter) ([]domain.Evento, error) {
	if !actor.IsSystemAdmin() {
		if actor.ClubeID == "" {
			return nil, apperror.NewForbiddenError(
				apperror.CategoryNoClubAffiliation, "Usuário não está vinculado a nenhum clube.")
		}
		filter.ClubeID = actor.ClubeID
	}
	return s.repo.FindAll(ctx, filter)
}

// Update altera um evento do clube do ator.
func (s *Service) Update(ctx context.Context, actor domain.AuthContext, evento domain.Evento) (domain.Evento, error) {
	existing, err := s.repo.FindByID(ctx, evento.ID)
	if err != nil {
		return domain.Evento{}, err
	}
	if !actor.CanAccessClub(existing.ClubeID) {
		return domain.Evento{}, apperror.NewClubScopeError(actor.ClubeID)
	}

	evento.ClubeID = existing.ClubeID
	evento.CriadoPor = existing.CriadoPor
	return s.repo.Update(ctx, evento)
}

// Delete remove um evento do clube do ator.
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

// Inscrever registra um participante em um evento aberto, respeitando o
// limite de vagas quando configurado.
func (s *Service) Inscrever(ctx context.Context, actor domain.AuthContext, eventoID, userID string) (domain.Participante, error) {
	evento, err := s.Get(ctx, actor, eventoID)
	if err != nil {
		return domain.Participante{}, err
	}
	if evento.Status != domain.EventoAberto {
		return domain.Participante{}, apperror.NewConflictError("Evento não está aberto a inscrições.")
	}

	if evento.MaxParticipantes > 0 {
		count, err := s.repo.CountParticipantes(ctx, eventoID)
		if err != nil {
			return domain.Participante{}, err
		}
		if count >= evento.MaxParticipantes {
			return domain.Participante{}, apperror.NewConflictError("Evento lotado.")
		}
	}

	p := domain.Participante{
		EventoID: eventoID,
		UserID:   userID,
		ClubeID:  evento.ClubeID,
	}
	return s.repo.AddParticipante(ctx, p)
}

// ListParticipantes lista as inscrições de um evento acessível ao ator.
func (s *Service) ListParticipantes(ctx context.Context, actor domain.AuthContext, eventoID string) ([]domain.Participante, error) {
	if _, err := s.Get(ctx, actor, eventoID); err != nil {
		return nil, err
	}
	return s.repo.ListParticipantes(ctx, eventoID)
}

// RemoveParticipante cancela uma inscrição de um evento acessível ao ator.
func (s *Service) RemoveParticipante(ctx context.Context, actor domain.AuthContext, eventoID, userID string) error {
	if _, err := s.Get(ctx, actor, eventoID); err != nil {
		return err
	}
	return s.repo.RemoveParticipante(ctx, eventoID, userID)
}
