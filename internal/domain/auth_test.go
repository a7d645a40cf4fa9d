package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"clubetiro/internal/domain"
)

func clubAdmin(clubeID string, perms *domain.ClubAdminPermissions) domain.AuthContext {
	return domain.AuthContext{
		UserID:     "admin-1",
		UserType:   domain.TypeClubAdmin,
		ClubeID:    clubeID,
		Permissoes: perms,
	}
}

// --- Testes para MissingPermissions ---

func TestMissingPermissions_SystemAdmin_NeverMissing(t *testing.T) {
	ctx := domain.AuthContext{UserID: "sa-1", UserType: domain.TypeSystemAdmin}

	missing := ctx.MissingPermissions(
		domain.PermGerenciarEventos, domain.PermGerenciarPagamentos)

	assert.Empty(t, missing)
	assert.True(t, ctx.HasPermission(domain.PermGerenciarPagamentos))
}

func TestMissingPermissions_ClubAdmin_ReportsAllMissing(t *testing.T) {
	ctx := clubAdmin("clube-1", &domain.ClubAdminPermissions{
		GerenciarEventos: true,
	})

	missing := ctx.MissingPermissions(
		domain.PermGerenciarEventos,
		domain.PermGerenciarMembros,
		domain.PermGerenciarPagamentos,
	)

	// Todas as flags faltantes são reportadas juntas, não apenas a primeira.
	assert.Equal(t, []domain.PermissionFlag{
		domain.PermGerenciarMembros,
		domain.PermGerenciarPagamentos,
	}, missing)
}

func TestMissingPermissions_ClubMember_MissesEverything(t *testing.T) {
	ctx := domain.AuthContext{
		UserID:   "member-1",
		UserType: domain.TypeClubMember,
		ClubeID:  "clube-1",
	}

	missing := ctx.MissingPermissions(
		domain.PermGerenciarEventos, domain.PermVisualizarRelatorios)

	assert.Len(t, missing, 2)
	assert.False(t, ctx.HasPermission(domain.PermGerenciarEventos))
}

func TestMissingPermissions_LegacyAdmin_UsesFlags(t *testing.T) {
	// "admin" legado normaliza para club_admin e consulta as flags.
	ctx := domain.AuthContext{
		UserID:     "legacy-1",
		UserType:   domain.TypeLegacyAdmin,
		ClubeID:    "clube-1",
		Permissoes: domain.DefaultClubAdminPermissions(),
	}

	assert.True(t, ctx.HasPermission(domain.PermGerenciarEventos))
	// Pagamentos fica fora do conjunto padrão.
	assert.False(t, ctx.HasPermission(domain.PermGerenciarPagamentos))
}

// --- Testes para CanAccessClub ---

func TestCanAccessClub_SystemAdmin_AccessesAny(t *testing.T) {
	ctx := domain.AuthContext{UserType: domain.TypeSystemAdmin}

	assert.True(t, ctx.CanAccessClub("qualquer-clube"))
	assert.True(t, ctx.CanAccessClub(""))
}

func TestCanAccessClub_GlobalResource_AlwaysPasses(t *testing.T) {
	ctx := domain.AuthContext{UserType: domain.TypeClubMember, ClubeID: "clube-1"}

	assert.True(t, ctx.CanAccessClub(""))
}

func TestCanAccessClub_OtherClub_Denied(t *testing.T) {
	ctx := clubAdmin("clube-1", domain.DefaultClubAdminPermissions())

	assert.True(t, ctx.CanAccessClub("clube-1"))
	assert.False(t, ctx.CanAccessClub("clube-2"))
}

// --- Testes para CanManageUser ---

func TestCanManageUser_SystemAdmin_ManagesAnyone(t *testing.T) {
	manager := domain.AuthContext{UserID: "sa-1", UserType: domain.TypeSystemAdmin}
	target := domain.AuthContext{UserID: "other", UserType: domain.TypeSystemAdmin}

	assert.True(t, manager.CanManageUser(target))
}

func TestCanManageUser_ClubAdmin_ManagesOwnMembers(t *testing.T) {
	manager := clubAdmin("clube-1", domain.DefaultClubAdminPermissions())

	member := domain.AuthContext{UserID: "m-1", UserType: domain.TypeClubMember, ClubeID: "clube-1"}
	assert.True(t, manager.CanManageUser(member))

	legacy := domain.AuthContext{UserID: "m-2", UserType: domain.TypeLegacyComum, ClubeID: "clube-1"}
	assert.True(t, manager.CanManageUser(legacy))
}

func TestCanManageUser_ClubAdmin_CannotManageOtherClub(t *testing.T) {
	manager := clubAdmin("clube-1", domain.DefaultClubAdminPermissions())
	target := domain.AuthContext{UserID: "m-1", UserType: domain.TypeClubMember, ClubeID: "clube-2"}

	assert.False(t, manager.CanManageUser(target))
}

func TestCanManageUser_ClubAdmin_CannotManagePeersOrAdmins(t *testing.T) {
	manager := clubAdmin("clube-1", domain.DefaultClubAdminPermissions())

	peer := domain.AuthContext{UserID: "other-admin", UserType: domain.TypeClubAdmin, ClubeID: "clube-1"}
	assert.False(t, manager.CanManageUser(peer))

	sysAdmin := domain.AuthContext{UserID: "sa-1", UserType: domain.TypeSystemAdmin}
	assert.False(t, manager.CanManageUser(sysAdmin))
}

func TestCanManageUser_Self_AlwaysAllowed(t *testing.T) {
	member := domain.AuthContext{UserID: "m-1", UserType: domain.TypeClubMember, ClubeID: "clube-1"}

	assert.True(t, member.CanManageUser(member))
}

// --- Testes para hierarquia e normalização de papéis ---

func TestHasHigherOrEqualRole(t *testing.T) {
	assert.True(t, domain.HasHigherOrEqualRole(domain.TypeSystemAdmin, domain.TypeClubAdmin))
	assert.True(t, domain.HasHigherOrEqualRole(domain.TypeClubAdmin, domain.TypeClubAdmin))
	assert.False(t, domain.HasHigherOrEqualRole(domain.TypeClubMember, domain.TypeClubAdmin))
	assert.False(t, domain.HasHigherOrEqualRole(domain.TypeLegacyComum, domain.TypeClubMember))
}

func TestNormalizeUserType_LegacyMapping(t *testing.T) {
	assert.Equal(t, domain.TypeClubAdmin, domain.NormalizeUserType(domain.TypeLegacyAdmin))
	assert.Equal(t, domain.TypeClubMember, domain.NormalizeUserType(domain.TypeLegacyComum))
	assert.Equal(t, domain.TypeSystemAdmin, domain.NormalizeUserType(domain.TypeSystemAdmin))
}

// --- Testes para User.Validate ---

func TestUserValidate_SystemAdminWithClub_Fails(t *testing.T) {
	u := domain.User{Tipo: domain.TypeSystemAdmin, ClubeID: "clube-1"}

	assert.Error(t, u.Validate())
}

func TestUserValidate_ClubMemberWithoutClub_Fails(t *testing.T) {
	u := domain.User{Tipo: domain.TypeClubMember}

	assert.Error(t, u.Validate())
}

func TestUserValidate_PermissoesOnNonClubAdmin_Fails(t *testing.T) {
	u := domain.User{
		Tipo:       domain.TypeClubMember,
		ClubeID:    "clube-1",
		Permissoes: domain.DefaultClubAdminPermissions(),
	}

	assert.Error(t, u.Validate())
}

func TestUserValidate_ClubAdmin_Success(t *testing.T) {
	u := domain.User{
		Tipo:       domain.TypeClubAdmin,
		ClubeID:    "clube-1",
		Permissoes: domain.DefaultClubAdminPermissions(),
	}

	assert.NoError(t, u.Validate())
}
