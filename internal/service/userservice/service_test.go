package userservice_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"clubetiro/internal/domain"
	apperror "clubetiro/internal/errors"
	"clubetiro/internal/pkg/logger"
	"clubetiro/internal/service/userservice"
)

// MockUserRepository é uma implementação mock da interface UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, clubeID string) ([]domain.User, error) {
	args := m.Called(ctx, clubeID)
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSessionRevoker é uma implementação mock da interface SessionRevoker.
type MockSessionRevoker struct {
	mock.Mock
}

func (m *MockSessionRevoker) RevokeAllForUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func newService(repo *MockUserRepository, sessions *MockSessionRevoker) *userservice.Service {
	return userservice.NewService(repo, sessions, logger.NewLogger("error"))
}

func systemAdmin() domain.AuthContext {
	return domain.AuthContext{UserID: "sa-1", UserType: domain.TypeSystemAdmin}
}

func clubAdmin(clubeID string) domain.AuthContext {
	return domain.AuthContext{
		UserID:     "admin-1",
		UserType:   domain.TypeClubAdmin,
		ClubeID:    clubeID,
		Permissoes: domain.DefaultClubAdminPermissions(),
	}
}

// --- Testes para Create ---

func TestCreateUser_Success_SystemAdmin(t *testing.T) {
	repo := new(MockUserRepository)
	service := newService(repo, new(MockSessionRevoker))

	req := domain.CreateUserRequest{
		Nome:    "Maria Atiradora",
		Email:   "maria@clube.com.br",
		Senha:   "senha-forte-123",
		Tipo:    domain.TypeClubMember,
		ClubeID: "clube-1",
	}

	repo.On("Save", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		// O hash da senha substitui o texto puro antes de persistir.
		return u.Email == req.Email && u.Ativo &&
			bcrypt.CompareHashAndPassword([]byte(u.SenhaHash), []byte(req.Senha)) == nil
	})).Return(domain.User{ID: "user-novo", Nome: req.Nome, Tipo: req.Tipo}, nil)

	created, err := service.Create(context.Background(), systemAdmin(), req)

	assert.NoError(t, err)
	assert.Equal(t, "user-novo", created.ID)
	repo.AssertExpectations(t)
}

func TestCreateUser_Success_ClubAdminDefaultsOwnClub(t *testing.T) {
	repo := new(MockUserRepository)
	service := newService(repo, new(MockSessionRevoker))

	req := domain.CreateUserRequest{
		Nome:  "João Membro",
		Email: "joao@clube.com.br",
		Senha: "senha-forte-123",
		Tipo:  domain.TypeClubMember,
		// Sem clube no payload: assume o clube do ator.
	}

	repo.On("Save", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return u.ClubeID == "clube-1"
	})).Return(domain.User{ID: "user-novo", ClubeID: "clube-1"}, nil)

	_, err := service.Create(context.Background(), clubAdmin("clube-1"), req)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestCreateUser_Fail_ClubAdminOtherClub(t *testing.T) {
	repo := new(MockUserRepository)
	service := newService(repo, new(MockSessionRevoker))

	_, err := service.Create(context.Background(), clubAdmin("clube-1"), domain.CreateUserRequest{
		Nome:    "João Membro",
		Email:   "joao@clube.com.br",
		Senha:   "senha-forte-123",
		Tipo:    domain.TypeClubMember,
		ClubeID: "clube-2",
	})

	var forbiddenErr *apperror.ForbiddenError
	assert.ErrorAs(t, err, &forbiddenErr)
	assert.Equal(t, apperror.CategoryClubAccessDenied, forbiddenErr.Cat)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCreateUser_DefaultsClubAdminPermissions(t *testing.T) {
	repo := new(MockUserRepository)
	service := newService(repo, new(MockSessionRevoker))

	req := domain.CreateUserRequest{
		Nome:    "Novo Gestor",
		Email:   "gestor@clube.com.br",
		Senha:   "senha-forte-123",
		Tipo:    domain.TypeClubAdmin,
		ClubeID: "clube-1",
	}

	repo.On("Save", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return u.Permissoes != nil && u.Permissoes.GerenciarEventos &&
			!u.Permissoes.GerenciarPagamentos
	})).Return(domain.User{ID: "user-novo"}, nil)

	_, err := service.Create(context.Background(), systemAdmin(), req)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestCreateUser_Fail_MissingFields(t *testing.T) {
	repo := new(MockUserRepository)
	service := newService(repo, new(MockSessionRevoker))

	_, err := service.Create(context.Background(), systemAdmin(), domain.CreateUserRequest{
		Nome: "Sem Email", Senha: "senha-forte-123",
	})

	var validationErr *apperror.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCreateUser_Fail_WeakPassword(t *testing.T) {
	repo := new(MockUserRepository)
	service := newService(repo, new(MockSessionRevoker))

	_, err := service.Create(context.Background(), systemAdmin(), domain.CreateUserRequest{
		Nome: "Maria", Email: "maria@clube.com.br", Senha: "curta",
	})

	var validationErr *apperror.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestCreateUser_Fail_ClubAdminCannotCreateAdmin(t *testing.T) {
	repo := new(MockUserRepository)
	service := newService(repo, new(MockSessionRevoker))

	_, err := service.Create(context.Background(), clubAdmin("clube-1"), domain.CreateUserRequest{
		Nome:  "Outro Gestor",
		Email: "gestor@clube.com.br",
		Senha: "senha-forte-123",
		Tipo:  domain.TypeClubAdmin,
	})

	var forbiddenErr *apperror.ForbiddenError
	assert.ErrorAs(t, err, &forbiddenErr)
	assert.Equal(t, apperror.CategoryClubAccessDenied, forbiddenErr.Cat)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCreateUser_Fail_ClubAdminWithoutMemberPermission(t *testing.T) {
	repo := new(MockUserRepository)
	service := newService(repo, new(MockSessionRevoker))

	actor := clubAdmin("clube-1")
	actor.Permissoes = &domain.ClubAdminPermissions{GerenciarEventos: true}

	_, err := service.Create(context.Background(), actor, domain.CreateUserRequest{
		Nome:  "João Membro",
		Email: "joao@clube.com.br",
		Senha: "senha-forte-123",
		Tipo:  domain.TypeClubMember,
	})

	var forbiddenErr *apperror.ForbiddenError
	assert.ErrorAs(t, err, &forbiddenErr)
	assert.Equal(t, apperror.CategoryInsufficientPermissions, forbiddenErr.Cat)
}

// --- Testes para Get ---

func TestGetUser_Success_SameClub(t *testing.T) {
	repo := new(MockUserRepository)
	service := newService(repo, new(MockSessionRevoker))

	repo.On("FindByID", mock.Anything, "user-2").Return(domain.User{
		ID: "user-2", ClubeID: "clube-1", Tipo: domain.TypeClubMember,
	}, nil)

	actor := domain.AuthContext{UserID: "user-1", UserType: domain.TypeClubMember, ClubeID: "clube-1"}
	user, err := service.Get(context.Background(), actor, "user-2")

	assert.NoError(t, err)
	assert.Equal(t, "user-2", user.ID)
}

func TestGetUser_Fail_OtherClub(t *testing.T) {
	repo := new(MockUserRepository)
	service := newService(repo, new(MockSessionRevoker))

	repo.On("FindByID", mock.Anything, "user-2").Return(domain.User{
		ID: "user-2", ClubeID: "clube-2", Tipo: domain.TypeClubMember,
	}, nil)

	actor := domain.AuthContext{UserID: "user-1", UserType: domain.TypeClubMember, ClubeID: "clube-1"}
	_, err := service.Get(context.Background(), actor, "user-2")

	var forbiddenErr *apperror.ForbiddenError
	assert.ErrorAs(t, err, &forbiddenErr)
}

func TestGetUser_Fail_NoClubAffiliation(t *testing.T) {
	repo := new(MockUserRepository)
	service := newService(repo, new(MockSessionRevoker))

	repo.On("FindByID", mock.Anything, "user-2").Return(domain.User{
		ID: "user-2", ClubeID: "clube-1", Tipo: domain.TypeClubMember,
	}, nil)

	// Sem vínculo de clube a falha é NO_CLUB_AFFILIATION, não CLUB_ACCESS_DENIED.
	actor := domain.AuthContext{UserID: "user-1", UserType: domain.TypeClubMember}
	_, err := service.Get(context.Background(), actor, "user-2")

	var forbiddenErr *apperror.ForbiddenError
	assert.ErrorAs(t, err, &forbiddenErr)
	assert.Equal(t, apperror.CategoryNoClubAffiliation, forbiddenErr.Cat)
}

func TestGetUser_Fail_NotFound(t *testing.T) {
	repo := new(MockUserRepository)
	service := newService(repo, new(MockSessionRevoker))

	repo.On("FindByID", mock.Anything, "inexistente").
		Return(domain.User{}, apperror.NewNotFoundError("Usuário não encontrado."))

	_, err := service.Get(context.Background(), systemAdmin(), "inexistente")

	var notFoundErr *apperror.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

// --- Testes para List ---

func TestListUsers_SystemAdmin_FilterPassesThrough(t *testing.T) {
	repo := new(MockUserRepository)
	service := newService(repo, new(MockSessionRevoker))

	repo.On("FindAll", mock.Anything, "clube-9").Return([]domain.User{}, nil)

	_, err := service.List(context.Background(), systemAdmin(), "clube-9")

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestListUsers_ClubMember_ScopedToOwnClub(t *testing.T) {
	repo := new(MockUserRepository)
	service := newService(repo, new(MockSessionRevoker))

	repo.On("FindAll", mock.Anything, "clube-1").Return([]domain.User{{ID: "user-1"}}, nil)

	actor := domain.AuthContext{UserID: "user-1", UserType: domain.TypeClubMember, ClubeID: "clube-1"}
	users, err := service.List(context.Background(), actor, "")

	assert.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestListUsers_Fail_OtherClubFilter(t *testing.T) {
	repo := new(MockUserRepository)
	service := newService(repo, new(MockSessionRevoker))

	actor := domain.AuthContext{UserID: "user-1", UserType: domain.TypeClubMember, ClubeID: "clube-1"}
	_, err := service.List(context.Background(), actor, "clube-2")

	var forbiddenErr *apperror.ForbiddenError
	assert.ErrorAs(t, err, &forbiddenErr)
	repo.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
}

func TestListUsers_Fail_NoClubAffiliation(t *testing.T) {
	repo := new(MockUserRepository)
	service := newService(repo, new(MockSessionRevoker))

	actor := domain.AuthContext{UserID: "user-1", UserType: domain.TypeClubMember}
	_, err := service.List(context.Background(), actor, "")

	var forbiddenErr *apperror.ForbiddenError
	assert.ErrorAs(t, err, &forbiddenErr)
	assert.Equal(t, apperror.CategoryNoClubAffiliation, forbiddenErr.Cat)
}

// --- Testes para Update ---

func TestUpdateUser_DeactivationRevokesSessions(t *testing.T) {
	repo := new(MockUserRepository)
	sessions := new(MockSessionRevoker)
	service := newService(repo, sessions)

	existing := domain.User{
		ID: "user-2", Nome: "João", Email: "joao@clube.com.br",
		ClubeID: "clube-1", Tipo: domain.TypeClubMember, Ativo: true,
	}
	repo.On("FindByID", mock.Anything, "user-2").Return(existing, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return !u.Ativo
	})).Return(existing, nil)
	sessions.On("RevokeAllForUser", mock.Anything, "user-2").Return(nil)

	ativo := false
	_, err := service.Update(context.Background(), clubAdmin("clube-1"), "user-2",
		domain.UpdateUserRequest{Ativo: &ativo})

	assert.NoError(t, err)
	sessions.AssertExpectations(t)
}

func TestUpdateUser_MemberCannotChangeOwnActivation(t *testing.T) {
	repo := new(MockUserRepository)
	sessions := new(MockSessionRevoker)
	service := newService(repo, sessions)

	existing := domain.User{
		ID: "user-1", Nome: "João", Email: "joao@clube.com.br",
		ClubeID: "clube-1", Tipo: domain.TypeClubMember, Ativo: true,
	}
	repo.On("FindByID", mock.Anything, "user-1").Return(existing, nil)
	// O campo ativo é ignorado para quem não administra.
	repo.On("Update", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return u.Ativo && u.Nome == "João Silva"
	})).Return(existing, nil)

	actor := domain.AuthContext{UserID: "user-1", UserType: domain.TypeClubMember, ClubeID: "clube-1"}
	nome := "João Silva"
	ativo := false
	_, err := service.Update(context.Background(), actor, "user-1",
		domain.UpdateUserRequest{Nome: &nome, Ativo: &ativo})

	assert.NoError(t, err)
	repo.AssertExpectations(t)
	sessions.AssertNotCalled(t, "RevokeAllForUser", mock.Anything, mock.Anything)
}

func TestUpdateUser_ClubAdminCannotGrantOwnPermissions(t *testing.T) {
	repo := new(MockUserRepository)
	sessions := new(MockSessionRevoker)
	service := newService(repo, sessions)

	actor := clubAdmin("clube-1")
	actor.Permissoes = &domain.ClubAdminPermissions{GerenciarEventos: true}

	existing := domain.User{
		ID: actor.UserID, Nome: "Gestor", Email: "gestor@clube.com.br",
		ClubeID: "clube-1", Tipo: domain.TypeClubAdmin,
		Permissoes: &domain.ClubAdminPermissions{GerenciarEventos: true},
		Ativo:      true,
	}
	repo.On("FindByID", mock.Anything, actor.UserID).Return(existing, nil)
	// As flags enviadas no payload são ignoradas na auto-edição.
	repo.On("Update", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return !u.Permissoes.GerenciarPagamentos && u.Permissoes.GerenciarEventos
	})).Return(existing, nil)

	todas := domain.ClubAdminPermissions{
		GerenciarEventos: true, GerenciarMembros: true, GerenciarResultados: true,
		VisualizarRelatorios: true, GerenciarPagamentos: true,
	}
	_, err := service.Update(context.Background(), actor, actor.UserID,
		domain.UpdateUserRequest{Permissoes: &todas})

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestUpdateUser_SystemAdminCanSetClubAdminPermissions(t *testing.T) {
	repo := new(MockUserRepository)
	service := newService(repo, new(MockSessionRevoker))

	existing := domain.User{
		ID: "admin-1", Nome: "Gestor", Email: "gestor@clube.com.br",
		ClubeID: "clube-1", Tipo: domain.TypeClubAdmin,
		Permissoes: domain.DefaultClubAdminPermissions(),
		Ativo:      true,
	}
	repo.On("FindByID", mock.Anything, "admin-1").Return(existing, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return u.Permissoes.GerenciarPagamentos
	})).Return(existing, nil)

	comPagamentos := domain.ClubAdminPermissions{
		GerenciarEventos: true, GerenciarMembros: true, GerenciarResultados: true,
		VisualizarRelatorios: true, GerenciarPagamentos: true,
	}
	_, err := service.Update(context.Background(), systemAdmin(), "admin-1",
		domain.UpdateUserRequest{Permissoes: &comPagamentos})

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestUpdateUser_Fail_OtherClub(t *testing.T) {
	repo := new(MockUserRepository)
	service := newService(repo, new(MockSessionRevoker))

	repo.On("FindByID", mock.Anything, "user-2").Return(domain.User{
		ID: "user-2", ClubeID: "clube-2", Tipo: domain.TypeClubMember,
	}, nil)

	nome := "Novo Nome"
	_, err := service.Update(context.Background(), clubAdmin("clube-1"), "user-2",
		domain.UpdateUserRequest{Nome: &nome})

	var forbiddenErr *apperror.ForbiddenError
	assert.ErrorAs(t, err, &forbiddenErr)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

// --- Testes para Delete ---

func TestDeleteUser_Success_RevokesSessions(t *testing.T) {
	repo := new(MockUserRepository)
	sessions := new(MockSessionRevoker)
	service := newService(repo, sessions)

	repo.On("FindByID", mock.Anything, "user-2").Return(domain.User{
		ID: "user-2", ClubeID: "clube-1", Tipo: domain.TypeClubMember,
	}, nil)
	sessions.On("RevokeAllForUser", mock.Anything, "user-2").Return(nil)
	repo.On("Delete", mock.Anything, "user-2").Return(nil)

	err := service.Delete(context.Background(), clubAdmin("clube-1"), "user-2")

	assert.NoError(t, err)
	repo.AssertExpectations(t)
	sessions.AssertExpectations(t)
}

func TestDeleteUser_Fail_MemberCannotDelete(t *testing.T) {
	repo := new(MockUserRepository)
	sessions := new(MockSessionRevoker)
	service := newService(repo, sessions)

	repo.On("FindByID", mock.Anything, "user-2").Return(domain.User{
		ID: "user-2", ClubeID: "clube-1", Tipo: domain.TypeClubMember,
	}, nil)

	actor := domain.AuthContext{UserID: "user-1", UserType: domain.TypeClubMember, ClubeID: "clube-1"}
	err := service.Delete(context.Background(), actor, "user-2")

	var forbiddenErr *apperror.ForbiddenError
	assert.ErrorAs(t, err, &forbiddenErr)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
