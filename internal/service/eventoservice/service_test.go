package eventoservice_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"clubetiro/internal/domain"
	apperror "clubetiro/internal/errors"
	"clubetiro/internal/pkg/logger"
	"clubetiro/internal/service/eventoservice"
)

// MockEventoRepository é uma implementação mock da interface EventoRepository.
type MockEventoRepository struct {
	mock.Mock
}

func (m *MockEventoRepository) Create(ctx context.Context, evento domain.Evento) (domain.Evento, error) {
	args := m.Called(ctx, evento)
	return args.Get(0).(domain.Evento), args.Error(1)
}

func (m *MockEventoRepository) FindByID(ctx context.Context, id string) (domain.Evento, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Evento), args.Error(1)
}

func (m *MockEventoRepository) FindAll(ctx context.Context, filter domain.EventoFilter) ([]domain.Evento, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Evento), args.Error(1)
}

func (m *MockEventoRepository) Update(ctx context.Context, evento domain.Evento) (domain.Evento, error) {
	args := m.Called(ctx, evento)
	return args.Get(0).(domain.Evento), args.Error(1)
}

func (m *MockEventoRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEventoRepository) AddParticipante(ctx context.Context, p domain.Participante) (domain.Participante, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(domain.Participante), args.Error(1)
}

func (m *MockEventoRepository) ListParticipantes(ctx context.Context, eventoID string) ([]domain.Participante, error) {
	args := m.Called(ctx, eventoID)
	return args.Get(0).([]domain.Participante), args.Error(1)
}

func (m *MockEventoRepository) CountParticipantes(ctx context.Context, eventoID string) (int, error) {
	args := m.Called(ctx, eventoID)
	return args.Int(0), args.Error(1)
}

func (m *MockEventoRepository) RemoveParticipante(ctx context.Context, eventoID, userID string) error {
	args := m.Called(ctx, eventoID, userID)
	return args.Error(0)
}

func newService(repo *MockEventoRepository) *eventoservice.Service {
	return eventoservice.NewService(repo, logger.NewLogger("error"))
}

func member(clubeID string) domain.AuthContext {
	return domain.AuthContext{UserID: "user-1", UserType: domain.TypeClubMember, ClubeID: clubeID}
}

func eventoDoClube(clubeID string) domain.Evento {
	return domain.Evento{
		ID:      "evento-1",
		ClubeID: clubeID,
		Nome:    "Etapa Regional",
		Local:   "Estande A",
		Data:    time.Now().Add(48 * time.Hour),
		Status:  domain.EventoAberto,
	}
}

// --- Testes para Get ---

func TestGetEvento_Success_SameClub(t *testing.T) {
	repo := new(MockEventoRepository)
	service := newService(repo)

	repo.On("FindByID", mock.Anything, "evento-1").Return(eventoDoClube("clube-1"), nil)

	evento, err := service.Get(context.Background(), member("clube-1"), "evento-1")

	assert.NoError(t, err)
	assert.Equal(t, "evento-1", evento.ID)
}

func TestGetEvento_Fail_OtherClub(t *testing.T) {
	repo := new(MockEventoRepository)
	service := newService(repo)

	repo.On("FindByID", mock.Anything, "evento-1").Return(eventoDoClube("clube-2"), nil)

	_, err := service.Get(context.Background(), member("clube-1"), "evento-1")

	var forbiddenErr *apperror.ForbiddenError
	assert.ErrorAs(t, err, &forbiddenErr)
	assert.Equal(t, apperror.CategoryClubAccessDenied, forbiddenErr.Cat)
}

func TestGetEvento_Fail_NoClubAffiliation(t *testing.T) {
	repo := new(MockEventoRepository)
	service := newService(repo)

	repo.On("FindByID", mock.Anything, "evento-1").Return(eventoDoClube("clube-1"), nil)

	// Sem vínculo de clube a falha é NO_CLUB_AFFILIATION, não CLUB_ACCESS_DENIED.
	_, err := service.Get(context.Background(), member(""), "evento-1")

	var forbiddenErr *apperror.ForbiddenError
	assert.ErrorAs(t, err, &forbiddenErr)
	assert.Equal(t, apperror.CategoryNoClubAffiliation, forbiddenErr.Cat)
}

// --- Testes para Update ---

func TestUpdateEvento_Fail_NoClubAffiliation(t *testing.T) {
	repo := new(MockEventoRepository)
	service := newService(repo)

	repo.On("FindByID", mock.Anything, "evento-1").Return(eventoDoClube("clube-1"), nil)

	evento := eventoDoClube("clube-1")
	_, err := service.Update(context.Background(), member(""), evento)

	var forbiddenErr *apperror.ForbiddenError
	assert.ErrorAs(t, err, &forbiddenErr)
	assert.Equal(t, apperror.CategoryNoClubAffiliation, forbiddenErr.Cat)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

// --- Testes para Inscrever ---

func TestInscrever_Success(t *testing.T) {
	repo := new(MockEventoRepository)
	service := newService(repo)

	repo.On("FindByID", mock.Anything, "evento-1").Return(eventoDoClube("clube-1"), nil)
	repo.On("AddParticipante", mock.Anything, mock.MatchedBy(func(p domain.Participante) bool {
		return p.EventoID == "evento-1" && p.UserID == "user-1" && p.ClubeID == "clube-1"
	})).Return(domain.Participante{ID: "part-1"}, nil)

	p, err := service.Inscrever(context.Background(), member("clube-1"), "evento-1", "user-1")

	assert.NoError(t, err)
	assert.Equal(t, "part-1", p.ID)
}

func TestInscrever_Fail_EventoEncerrado(t *testing.T) {
	repo := new(MockEventoRepository)
	service := newService(repo)

	evento := eventoDoClube("clube-1")
	evento.Status = domain.EventoEncerrado
	repo.On("FindByID", mock.Anything, "evento-1").Return(evento, nil)

	_, err := service.Inscrever(context.Background(), member("clube-1"), "evento-1", "user-1")

	var conflictErr *apperror.ConflictError
	assert.ErrorAs(t, err, &conflictErr)
	repo.AssertNotCalled(t, "AddParticipante", mock.Anything, mock.Anything)
}

func TestInscrever_Fail_EventoLotado(t *testing.T) {
	repo := new(MockEventoRepository)
	service := newService(repo)

	evento := eventoDoClube("clube-1")
	evento.MaxParticipantes = 2
	repo.On("FindByID", mock.Anything, "evento-1").Return(evento, nil)
	repo.On("CountParticipantes", mock.Anything, "evento-1").Return(2, nil)

	_, err := service.Inscrever(context.Background(), member("clube-1"), "evento-1", "user-1")

	var conflictErr *apperror.ConflictError
	assert.ErrorAs(t, err, &conflictErr)
	repo.AssertNotCalled(t, "AddParticipante", mock.Anything, mock.Anything)
}
