package resultado

import (
	"context"
	"net/http"

	"clubetiro/internal/api/respond"
	"clubetiro/internal/domain"
	apperror "clubetiro/internal/errors"
	"clubetiro/internal/pkg/logger"
	"clubetiro/internal/pkg/middleware"
)

// ResultadoService define o contrato que o Handler espera da camada de Serviço.
type ResultadoService interface {
	Create(ctx context.Context, actor domain.AuthContext, resultado domain.Resultado) (domain.Resultado, error)
	List(ctx context.Context, actor domain.AuthContext, filter domain.ResultadoFilter) ([]domain.Resultado, error)
	Update(ctx context.Context, actor domain.AuthContext, resultado domain.Resultado) (domain.Resultado, error)
	Delete(ctx context.Context, actor domain.AuthContext, id string) error
}

// Handler agrupa os métodos de Handler de resultados.
type Handler struct {
	Service ResultadoService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ResultadoService, log logger.Logger) *Handler {
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

// CreateHandler lida com a requisição POST /api/resultados.
// @Summary Lança a pontuação de um participante
// @Tags resultados
// @Accept json
// @Produce json
// @Param resultado body domain.Resultado true "Pontuação do participante"
// @Success 201 {object} domain.Resultado "Resultado lançado"
// @Failure 400 {object} domain.ErrorResponse "Evento ou usuário ausente"
// @Failure 403 {object} domain.ErrorResponse "Sem a permissão gerenciarResultados"
// @Router /api/resultados [post]
func (h *Handler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := actor(w, r, h.Logger)
	if !ok {
		return
	}

	var resultado domain.Resultado
	if err := respond.Decode(r, &resultado); err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}

	created, err := h.Service.Create(r.Context(), authCtx, resultado)
	if err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusCreated, created)
}

// ListHandler lida com a requisição GET /api/resultados. Filtros de query:
// eventoId, userId.
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := actor(w, r, h.Logger)
	if !ok {
		return
	}

	filter := domain.ResultadoFilter{
		ClubeID:  r.URL.Query().Get("clubeId"),
		EventoID: r.URL.Query().Get("eventoId"),
		UserID:   r.URL.Query().Get("userId"),
	}

	resultados, err := h.Service.List(r.Context(), authCtx, filter)
	if err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, resultados)
}

// UpdateHandler lida com a requisição PUT /api/resultados/{id}.
func (h *Handler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := actor(w, r, h.Logger)
	if !ok {
		return
	}

	var resultado domain.Resultado
	if err := respond.Decode(r, &resultado); err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}
	resultado.ID = r.PathValue("id")

	updated, err := h.Service.Update(r.Context(), authCtx, resultado)
	if err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, updated)
}

// DeleteHandler lida com a requisição DELETE /api/resultados/{id}.
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
