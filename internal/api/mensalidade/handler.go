package mensalidade

import (
	"context"
	"net/http"

	"clubetiro/internal/api/respond"
	"clubetiro/internal/domain"
	apperror "clubetiro/internal/errors"
	"clubetiro/internal/pkg/logger"
	"clubetiro/internal/pkg/middleware"
)

// MensalidadeService define o contrato que o Handler espera da camada de Serviço.
type MensalidadeService interface {
	Create(ctx context.Context, actor domain.AuthContext, m domain.Mensalidade) (domain.Mensalidade, error)
	List(ctx context.Context, actor domain.AuthContext, userID string) ([]domain.Mensalidade, error)
	Update(ctx context.Context, actor domain.AuthContext, m domain.Mensalidade) (domain.Mensalidade, error)
	Delete(ctx context.Context, actor domain.AuthContext, id string) error
}

// Handler agrupa os métodos de Handler de mensalidades.
type Handler struct {
	Service MensalidadeService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc MensalidadeService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

func actor(w http.ResponseWriter, r *http.Request, log logger.Logger) (domain.AuthContext, bool) {
	authCtx, ok := middleware.FromContext(r.Context())
	if !ok {
		respond.Err(w, r, log, apperror.NewUnauthorizedError(
			apperror.CategoryMissingCredential, "Autorização necessária. Token não processado."))
	}
	return authCtx, ok
}

// CreateHandler lida com a requisição POST /api/mensalidades.
// @Summary Lança uma mensalidade para um associado
// @Tags mensalidades
// @Accept json
// @Produce json
// @Param mensalidade body domain.Mensalidade true "Dados da cobrança"
// @Success 201 {object} domain.Mensalidade "Mensalidade lançada"
// @Failure 400 {object} domain.ErrorResponse "Plano ou valor inválido"
// @Failure 403 {object} domain.ErrorResponse "Sem a permissão gerenciarPagamentos"
// @Router /api/mensalidades [post]
func (h *Handler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := actor(w, r, h.Logger)
	if !ok {
		return
	}

	var m domain.Mensalidade
	if err := respond.Decode(r, &m); err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}

	created, err := h.Service.Create(r.Context(), authCtx, m)
	if err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusCreated, created)
}

// ListHandler lida com a requisição GET /api/mensalidades. Filtro de query:
// userId.
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := actor(w, r, h.Logger)
	if !ok {
		return
	}

	mensalidades, err := h.Service.List(r.Context(), authCtx, r.URL.Query().Get("userId"))
	if err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, mensalidades)
}

// UpdateHandler lida com a requisição PUT /api/mensalidades/{id}.
func (h *Handler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := actor(w, r, h.Logger)
	if !ok {
		return
	}

	var m domain.Mensalidade
	if err := respond.Decode(r, &m); err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}
	m.ID = r.PathValue("id")

	updated, err := h.Service.Update(r.Context(), authCtx, m)
	if err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, updated)
}

// DeleteHandler lida com a requisição DELETE /api/mensalidades/{id}.
func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := actor(w, r, h.Logger)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), authCtx, r.PathValue("id")); err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]bool{"success": true})
}
