package domain

// PermissionFlag nomeia uma capacidade granular concedida a administradores
// de clube. Os nomes seguem o vocabulário do domínio.
type PermissionFlag string

const (
	PermGerenciarEventos     PermissionFlag = "gerenciarEventos"
	PermGerenciarMembros     PermissionFlag = "gerenciarMembros"
	PermGerenciarResultados  PermissionFlag = "gerenciarResultados"
	PermVisualizarRelatorios PermissionFlag = "visualizarRelatorios"
	PermGerenciarPagamentos  PermissionFlag = "gerenciarPagamentos"
)

// ClubAdminPermissions é o conjunto de flags booleanas de um club_admin.
// system_admin tem todas implicitamente; club_member não tem nenhuma.
type ClubAdminPermissions struct {
	GerenciarEventos     bool `json:"gerenciarEventos"`
	GerenciarMembros     bool `json:"gerenciarMembros"`
	GerenciarResultados  bool `json:"gerenciarResultados"`
	VisualizarRelatorios bool `json:"visualizarRelatorios"`
	GerenciarPagamentos  bool `json:"gerenciarPagamentos"`
}

// Has consulta uma flag individual pelo nome.
func (p ClubAdminPermissions) Has(flag PermissionFlag) bool {
	switch flag {
	case PermGerenciarEventos:
		return p.GerenciarEventos
	case PermGerenciarMembros:
		return p.GerenciarMembros
	case PermGerenciarResultados:
		return p.GerenciarResultados
	case PermVisualizarRelatorios:
		return p.VisualizarRelatorios
	case PermGerenciarPagamentos:
		return p.GerenciarPagamentos
	default:
		return false
	}
}

// DefaultClubAdminPermissions é o conjunto inicial de um novo club_admin.
// Pagamentos ficam desabilitados até concessão explícita.
func DefaultClubAdminPermissions() *ClubAdminPermissions {
	return &ClubAdminPermissions{
		GerenciarEventos:     true,
		GerenciarMembros:     true,
		GerenciarResultados:  true,
		VisualizarRelatorios: true,
		GerenciarPagamentos:  false,
	}
}

// AuthContext é a representação verificada, com escopo de requisição, de
// "quem está chamando e o que pode fazer". É derivado das claims do token
// (ou re-hidratado do banco) e nunca persistido nem compartilhado entre
// requisições.
type AuthContext struct {
	UserID     string                `json:"userId"`
	UserType   UserType              `json:"userType"`
	ClubeID    string                `json:"clubeId,omitempty"`
	Permissoes *ClubAdminPermissions `json:"permissoes,omitempty"`
	Nome       string                `json:"nome,omitempty"`
	Email      string                `json:"email,omitempty"`
}

// IsSystemAdmin informa se o principal é administrador do sistema.
func (a AuthContext) IsSystemAdmin() bool {
	return a.UserType == TypeSystemAdmin
}

// MissingPermissions retorna todas as flags solicitadas que o principal não
// possui. system_admin nunca tem flags faltantes; papéis que não sejam
// club_admin (após normalização) não possuem nenhuma flag, portanto todas as
// solicitadas são reportadas como faltantes (juntas, não apenas a primeira).
func (a AuthContext) MissingPermissions(flags ...PermissionFlag) []PermissionFlag {
	if a.IsSystemAdmin() {
		return nil
	}
	if NormalizeUserType(a.UserType) != TypeClubAdmin || a.Permissoes == nil {
		missing := make([]PermissionFlag, len(flags))
		copy(missing, flags)
		return missing
	}
	var missing []PermissionFlag
	for _, flag := range flags {
		if !a.Permissoes.Has(flag) {
			missing = append(missing, flag)
		}
	}
	return missing
}

// HasPermission informa se o principal possui todas as flags solicitadas.
func (a AuthContext) HasPermission(flags ...PermissionFlag) bool {
	return len(a.MissingPermissions(flags...)) == 0
}

// CanAccessClub aplica o isolamento de dados por clube: system_admin acessa
// tudo; alvo vazio é recurso global e passa; caso contrário o clube do
// principal deve coincidir com o alvo.
func (a AuthContext) CanAccessClub(targetClubeID string) bool {
	if a.IsSystemAdmin() {
		return true
	}
	if targetClubeID == "" {
		return true
	}
	return a.ClubeID == targetClubeID
}

// CanManageUser aplica a regra de gestão de usuários:
//   - system_admin gerencia qualquer um;
//   - club_admin gerencia apenas usuários do mesmo clube que não sejam
//     system_admin nem club_admin (evita escalação lateral de privilégio);
//   - qualquer principal gerencia o próprio cadastro.
func (a AuthContext) CanManageUser(target AuthContext) bool {
	if a.IsSystemAdmin() {
		return true
	}
	if NormalizeUserType(a.UserType) == TypeClubAdmin && a.ClubeID != "" && a.ClubeID == target.ClubeID {
		targetType := NormalizeUserType(target.UserType)
		if targetType != TypeSystemAdmin && targetType != TypeClubAdmin {
			return true
		}
	}
	return a.UserID == target.UserID
}

// AuthContextFromUser monta o contexto de autorização a partir de um registro
// de usuário carregado do banco (modo re-hidratado e resposta de login).
func AuthContextFromUser(u User) AuthContext {
	return AuthContext{
		UserID:     u.ID,
		UserType:   u.Tipo,
		ClubeID:    u.ClubeID,
		Permissoes: u.Permissoes,
		Nome:       u.Nome,
		Email:      u.Email,
	}
}

// LoginRequest representa o payload de entrada do login.
type LoginRequest struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

// LoginResponse representa a resposta do login com o par de tokens.
type LoginResponse struct {
	User         AuthContext `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	ExpiresIn    int         `json:"expiresIn"`
}

// RefreshRequest representa o payload de renovação de tokens.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ChangePasswordRequest representa o payload de troca de senha.
// SenhaAtual é exigida para troca self-service; system_admin alterando a
// senha de terceiros não precisa informá-la.
type ChangePasswordRequest struct {
	UserID     string `json:"userId,omitempty"`
	SenhaAtual string `json:"senhaAtual,omitempty"`
	NovaSenha  string `json:"novaSenha"`
}
