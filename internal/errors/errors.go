package errors

import (
	"fmt"
	"net/http"
)

// AppError é a interface central para todos os erros customizados da API.
// Ela permite que o código externo (Handler) acesse a Categoria e a Mensagem do erro.
type AppError interface {
	Error() string    // Implementa a interface error padrão do Go
	Category() string // Categoria estável do erro (e.g., "TOKEN_EXPIRED", "NOT_FOUND")
	HTTPStatus() int  // Código HTTP sugerido para o Handler
	Unwrap() error    // Permite encapsular erros subjacentes (original error)
}

// Categorias de autenticação/autorização. São parte do contrato da API:
// clientes reagem a elas (ex.: TOKEN_EXPIRED dispara refresh silencioso,
// TOKEN_INVALID força novo login).
const (
	CategoryMissingCredential       = "MISSING_CREDENTIAL"
	CategoryTokenInvalid            = "TOKEN_INVALID"
	CategoryTokenExpired            = "TOKEN_EXPIRED"
	CategoryInvalidCredentials      = "INVALID_CREDENTIALS"
	CategoryAccountDisabled         = "ACCOUNT_DISABLED"
	CategoryRefreshTokenInvalid     = "REFRESH_TOKEN_INVALID"
	CategoryClubInactive            = "CLUB_INACTIVE"
	CategoryInsufficientRole        = "INSUFFICIENT_ROLE"
	CategoryNoClubAffiliation       = "NO_CLUB_AFFILIATION"
	CategoryClubAccessDenied        = "CLUB_ACCESS_DENIED"
	CategoryInsufficientPermissions = "INSUFFICIENT_PERMISSIONS"
)

// --- Tipos de Erro Específicos (Erros de Domínio) ---

// ValidationError representa falhas de validação de dados de entrada.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string    { return fmt.Sprintf("Erro de Validação: %s", e.Msg) }
func (e *ValidationError) Category() string { return "VALIDATION_ERROR" }
func (e *ValidationError) HTTPStatus() int  { return http.StatusBadRequest } // 400
func (e *ValidationError) Unwrap() error    { return nil }

// NewValidationError cria um novo erro de validação.
func NewValidationError(msg string) AppError {
	return &ValidationError{Msg: msg}
}

// NotFoundError representa a ausência de um recurso solicitado.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string    { return fmt.Sprintf("Recurso não encontrado: %s", e.Msg) }
func (e *NotFoundError) Category() string { return "NOT_FOUND" }
func (e *NotFoundError) HTTPStatus() int  { return http.StatusNotFound } // 404
func (e *NotFoundError) Unwrap() error    { return nil }

// NewNotFoundError cria um novo erro de recurso não encontrado.
func NewNotFoundError(msg string) AppError {
	return &NotFoundError{Msg: msg}
}

// ConflictError representa um conflito na regra de negócio (e.g., recurso duplicado).
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string    { return fmt.Sprintf("Conflito de estado: %s", e.Msg) }
func (e *ConflictError) Category() string { return "CONFLICT" }
func (e *ConflictError) HTTPStatus() int  { return http.StatusConflict } // 409
func (e *ConflictError) Unwrap() error    { return nil }

// NewConflictError cria um novo erro de conflito.
func NewConflictError(msg string) AppError {
	return &ConflictError{Msg: msg}
}

// --- Tipos de Erro de Autenticação/Autorização ---

// UnauthorizedError cobre as falhas 401: credencial ausente, token inválido
// ou expirado, credenciais incorretas, conta desabilitada e refresh token
// desconhecido. A Categoria distingue os casos sem vazar detalhes na mensagem.
type UnauthorizedError struct {
	Cat string
	Msg string
}

func (e *UnauthorizedError) Error() string    { return e.Msg }
func (e *UnauthorizedError) Category() string { return e.Cat }
func (e *UnauthorizedError) HTTPStatus() int  { return http.StatusUnauthorized } // 401
func (e *UnauthorizedError) Unwrap() error    { return nil }

// NewUnauthorizedError cria um erro 401 com a categoria informada.
func NewUnauthorizedError(category, msg string) AppError {
	return &UnauthorizedError{Cat: category, Msg: msg}
}

// ForbiddenError cobre as falhas 403: papel insuficiente, falta de vínculo
// de clube, acesso a outro clube, permissões granulares faltantes e clube
// inativo.
type ForbiddenError struct {
	Cat string
	Msg string
}

func (e *ForbiddenError) Error() string    { return e.Msg }
func (e *ForbiddenError) Category() string { return e.Cat }
func (e *ForbiddenError) HTTPStatus() int  { return http.StatusForbidden } // 403
func (e *ForbiddenError) Unwrap() error    { return nil }

// NewForbiddenError cria um erro 403 com a categoria informada.
func NewForbiddenError(category, msg string) AppError {
	return &ForbiddenError{Cat: category, Msg: msg}
}

// NewClubScopeError é o 403 de isolamento por clube. Principal sem vínculo
// de clube algum recebe NO_CLUB_AFFILIATION; vínculo com outro clube recebe
// CLUB_ACCESS_DENIED.
func NewClubScopeError(actorClubeID string) AppError {
	if actorClubeID == "" {
		return NewForbiddenError(CategoryNoClubAffiliation, "Usuário não está vinculado a nenhum clube.")
	}
	return NewForbiddenError(CategoryClubAccessDenied, "Acesso negado. Você só pode acessar dados do seu clube.")
}

// NewInvalidCredentialsError é o 401 de login. A mensagem é idêntica para
// "usuário não existe" e "senha errada", evitando enumeração de contas.
func NewInvalidCredentialsError() AppError {
	return &UnauthorizedError{Cat: CategoryInvalidCredentials, Msg: "Credenciais inválidas."}
}

// --- Tipos de Erro de Infraestrutura (Encapsulamento) ---

// InternalError representa falhas inesperadas no servidor, serviço ou repositório.
type InternalError struct {
	Msg string
	Err error // Erro original subjacente (e.g., erro do driver SQL)
}

func (e *InternalError) Error() string    { return fmt.Sprintf("Erro Interno: %s", e.Msg) }
func (e *InternalError) Category() string { return "INTERNAL_ERROR" }
func (e *InternalError) HTTPStatus() int  { return http.StatusInternalServerError } // 500
func (e *InternalError) Unwrap() error    { return e.Err }

// NewInternalError cria um erro de servidor (para falhas de lógica ou código não esperado).
func NewInternalError(msg string, err error) AppError {
	return &InternalError{Msg: msg, Err: err}
}

// NewDBError é um atalho para criar um InternalError específico de falhas no DB.
func NewDBError(msg string, err error) AppError {
	return NewInternalError(fmt.Sprintf("%s (DB): %s", msg, err.Error()), err)
}

// --- Helper para o Handler (Tradução Final) ---

// MapToHTTPStatus recebe um erro e o traduz para o código HTTP, categoria e
// mensagem de resposta. Erros 500 nunca expõem o detalhe subjacente aqui; o
// handler decide, pelo ambiente, se ecoa o erro original.
func MapToHTTPStatus(err error) (int, string, string) {
	if appErr, ok := err.(AppError); ok {
		if appErr.HTTPStatus() >= http.StatusInternalServerError {
			return appErr.HTTPStatus(), appErr.Category(), "Erro interno do servidor."
		}
		return appErr.HTTPStatus(), appErr.Category(), appErr.Error()
	}

	// Erro não tipado: tratar como erro interno genérico.
	return http.StatusInternalServerError, "UNKNOWN_ERROR", "Ocorreu um erro inesperado."
}
