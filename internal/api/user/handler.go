package user

import (
	"context"
	"net/http"

	"clubetiro/internal/api/respond"
	"clubetiro/internal/domain"
	apperror "clubetiro/internal/errors"
	"clubetiro/internal/pkg/logger"
	"clubetiro/internal/pkg/middleware"
)

// UserService define o contrato que o Handler espera da camada de Serviço.
type UserService interface {
	Create(ctx context.Context, actor domain.AuthContext, req domain.CreateUserRequest) (domain.User, error)
	Get(ctx context.Context, actor domain.AuthContext, id string) (domain.User, error)
	List(ctx context.Context, actor domain.AuthContext, clubeID string) ([]domain.User, error)
	Update(ctx context.Context, actor domain.AuthContext, id string, req domain.UpdateUserRequest) (domain.User, error)
	Delete(ctx context.Context, actor domain.AuthContext, id string) error
}

// Handler agrupa os métodos de Handler de usuários.
type Handler struct {
	Service UserService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc UserService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// actor recupera o AuthContext anexado pelo guard; a ausência indica rota
// mal registrada, tratada como 401.
func actor(w http.ResponseWriter, r *http.Request, log logger.Logger) (domain.AuthContext, bool) {
	authCtx, ok := middleware.FromContext(r.Context())
	if !ok {
		respond.Err(w, r, log, apperror.NewUnauthorizedError(
			apperror.CategoryMissingCredential, "Autorização necessária. Token não processado."))
	}
	return authCtx, ok
}

// CreateHandler lida com a requisição POST /api/users.
// @Summary Cadastra um novo usuário
// @Description system_admin cadastra qualquer papel; club_admin com gerenciarMembros cadastra membros do próprio clube.
// @Tags users
// @Accept json
// @Produce json
// @Param user body domain.CreateUserRequest true "Dados do novo usuário"
// @Success 201 {object} domain.User "Usuário criado"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 403 {object} domain.ErrorResponse "Sem permissão sobre o alvo"
// @Failure 409 {object} domain.ErrorResponse "Email já cadastrado"
// @Router /api/users [post]
func (h *Handler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := actor(w, r, h.Logger)
	if !ok {
		return
	}

	var req domain.CreateUserRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}

	created, err := h.Service.Create(r.Context(), authCtx, req)
	if err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}

	h.Logger.Info("Usuário cadastrado.", map[string]interface{}{
		"id": created.ID, "tipo": created.Tipo, "criado_por": authCtx.UserID,
	})
	respond.JSON(w, http.StatusCreated, created)
}

// GetHandler lida com a requisição GET /api/users/{id}.
func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := actor(w, r, h.Logger)
	if !ok {
		return
	}

	user, err := h.Service.Get(r.Context(), authCtx, r.PathValue("id"))
	if err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

// ListHandler lida com a requisição GET /api/users. O filtro clubeId só tem
// efeito para system_admin; os demais papéis ficam restritos ao próprio clube.
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := actor(w, r, h.Logger)
	if !ok {
		return
	}

	users, err := h.Service.List(r.Context(), authCtx, r.URL.Query().Get("clubeId"))
	if err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, users)
}

// UpdateHandler lida com a requisição PUT /api/users/{id}.
func (h *Handler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := actor(w, r, h.Logger)
	if !ok {
		return
	}

	var req domain.UpdateUserRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}

	updated, err := h.Service.Update(r.Context(), authCtx, r.PathValue("id"), req)
	if err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, updated)
}

// DeleteHandler lida com a requisição DELETE /api/users/{id}.
func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := actor(w, r, h.Logger)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), authCtx, r.PathValue("id")); err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}

	h.Logger.Info("Usuário removido.", map[string]interface{}{
		"id": r.PathValue("id"), "removido_por": authCtx.UserID,
	})
	respond.JSON(w, http.StatusOK, map[string]bool{"success": true})
}
