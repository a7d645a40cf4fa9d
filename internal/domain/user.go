package domain

import (
	"time"

	apperror "clubetiro/internal/errors"
)

// UserType representa o papel do usuário na hierarquia do sistema.
// Os valores legados "admin" e "comum" continuam aceitos para contas antigas;
// NormalizeUserType faz o mapeamento de compatibilidade.
type UserType string

const (
	TypeSystemAdmin UserType = "system_admin"
	TypeClubAdmin   UserType = "club_admin"
	TypeClubMember  UserType = "club_member"

	// Papéis legados, anteriores ao modelo hierárquico por clube.
	TypeLegacyAdmin UserType = "admin"
	TypeLegacyComum UserType = "comum"
)

// roleHierarchy ordena os papéis por privilégio. Usado apenas pelo helper
// HasHigherOrEqualRole; a autorização canônica é feita por listas explícitas
// de papéis e pelas flags de permissão (ver auth.go).
var roleHierarchy = map[UserType]int{
	TypeLegacyComum: 1,
	TypeClubMember:  2,
	TypeLegacyAdmin: 3,
	TypeClubAdmin:   4,
	TypeSystemAdmin: 5,
}

// IsValid informa se o valor é um papel conhecido (incluindo os legados).
func (t UserType) IsValid() bool {
	_, ok := roleHierarchy[t]
	return ok
}

// NormalizeUserType traduz papéis legados para o modelo hierárquico atual.
// "admin" era o administrador único de um clube; "comum" era o associado.
func NormalizeUserType(t UserType) UserType {
	switch t {
	case TypeLegacyAdmin:
		return TypeClubAdmin
	case TypeLegacyComum:
		return TypeClubMember
	default:
		return t
	}
}

// HasHigherOrEqualRole compara dois papéis pela hierarquia numérica.
// Mantido para verificações grosseiras; deve concordar com as listas
// explícitas usadas nas rotas.
func HasHigherOrEqualRole(actual, required UserType) bool {
	return roleHierarchy[actual] >= roleHierarchy[required]
}

// User representa a entidade do usuário no sistema.
type User struct {
	ID             string                `json:"id"`
	Nome           string                `json:"nome"`
	Email          string                `json:"email"`
	SenhaHash      string                `json:"-"` // Oculta o hash da senha no JSON de resposta
	Tipo           UserType              `json:"tipo"`
	ClubeID        string                `json:"clubeId,omitempty"`
	Permissoes     *ClubAdminPermissions `json:"permissoes,omitempty"` // Apenas para club_admin
	NumeroRegistro string                `json:"numeroRegistro,omitempty"`
	Telefone       string                `json:"telefone,omitempty"`
	Ativo          bool                  `json:"ativo"`
	DataCadastro   time.Time             `json:"dataCadastro"`
	UltimoLogin    *time.Time            `json:"ultimoLogin,omitempty"`
}

// Validate aplica as invariantes estruturais da entidade:
// permissões só existem para club_admin; vínculo de clube é obrigatório
// para papéis de clube e proibido para system_admin.
func (u User) Validate() error {
	if !u.Tipo.IsValid() {
		return apperror.NewValidationError("Tipo de usuário desconhecido: " + string(u.Tipo))
	}
	normalized := NormalizeUserType(u.Tipo)
	if u.Permissoes != nil && normalized != TypeClubAdmin {
		return apperror.NewValidationError("Permissões granulares só se aplicam a administradores de clube.")
	}
	if normalized == TypeSystemAdmin && u.ClubeID != "" {
		return apperror.NewValidationError("Administradores do sistema não podem ter vínculo de clube.")
	}
	if (normalized == TypeClubAdmin || normalized == TypeClubMember) && u.ClubeID == "" {
		return apperror.NewValidationError("Usuários de clube precisam de um clube vinculado.")
	}
	return nil
}

// CreateUserRequest representa o payload de entrada para cadastro de usuário.
type CreateUserRequest struct {
	Nome           string                `json:"nome"`
	Email          string                `json:"email"`
	Senha          string                `json:"senha"`
	Tipo           UserType              `json:"tipo"`
	ClubeID        string                `json:"clubeId,omitempty"`
	Permissoes     *ClubAdminPermissions `json:"permissoes,omitempty"`
	NumeroRegistro string                `json:"numeroRegistro,omitempty"`
	Telefone       string                `json:"telefone,omitempty"`
}

// UpdateUserRequest representa o payload de atualização parcial de usuário.
// Campos nil não são alterados.
type UpdateUserRequest struct {
	Nome           *string               `json:"nome,omitempty"`
	Email          *string               `json:"email,omitempty"`
	ClubeID        *string               `json:"clubeId,omitempty"`
	Permissoes     *ClubAdminPermissions `json:"permissoes,omitempty"`
	NumeroRegistro *string               `json:"numeroRegistro,omitempty"`
	Telefone       *string               `json:"telefone,omitempty"`
	Ativo          *bool                 `json:"ativo,omitempty"`
}
