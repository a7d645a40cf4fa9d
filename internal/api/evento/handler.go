package evento

import (
	"context"
	"net/http"
	"time"

	"clubetiro/internal/api/respond"
	"clubetiro/internal/domain"
	apperror "clubetiro/internal/errors"
	"clubetiro/internal/pkg/logger"
	"clubetiro/internal/pkg/middleware"
)

// EventoService define o contrato que o Handler espera da camada de Serviço.
type EventoService interface {
	Create(ctx context.Context, actor domain.AuthContext, evento domain.Evento) (domain.Evento, error)
	Get(ctx context.Context, actor domain.AuthContext, id string) (domain.Evento, error)
	List(ctx context.Context, actor domain.AuthContext, filter domain.EventoFilter) ([]domain.Evento, error)
	Update(ctx context.Context, actor domain.AuthContext, evento domain.Evento) (domain.Evento, error)
	Delete(ctx context.Context, actor domain.AuthContext, id string) error
	Inscrever(ctx context.Context, actor domain.AuthContext, eventoID, userID string) (domain.Participante, error)
	ListParticipantes(ctx context.Context, actor domain.AuthContext, eventoID string) ([]domain.Participante, error)
	RemoveParticipante(ctx context.Context, actor domain.AuthContext, eventoID, userID string) error
}

// Handler agrupa os métodos de Handler de eventos e inscrições.
type Handler struct {
	Service EventoService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc EventoService, log logger.Logger) *Handler {
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

// CreateHandler lida com a requisição POST /api/eventos.
// @Summary Cria um evento do clube
// @Tags eventos
// @Accept json
// @Produce json
// @Param evento body domain.Evento true "Dados do evento"
// @Success 201 {object} domain.Evento "Evento criado"
// @Failure 400 {object} domain.ErrorResponse "Dados obrigatórios ausentes"
// @Failure 403 {object} domain.ErrorResponse "Sem a permissão gerenciarEventos"
// @Router /api/eventos [post]
func (h *Handler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := actor(w, r, h.Logger)
	if !ok {
		return
	}

	var evento domain.Evento
	if err := respond.Decode(r, &evento); err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}

	created, err := h.Service.Create(r.Context(), authCtx, evento)
	if err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusCreated, created)
}

// GetHandler lida com a requisição GET /api/eventos/{id}.
func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := actor(w, r, h.Logger)
	if !ok {
		return
	}

	evento, err := h.Service.Get(r.Context(), authCtx, r.PathValue("id"))
	if err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, evento)
}

// ListHandler lida com a requisição GET /api/eventos. Aceita os filtros de
// query status, dataInicio e dataFim (RFC 3339).
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := actor(w, r, h.Logger)
	if !ok {
		return
	}

	filter := domain.EventoFilter{
		ClubeID: r.URL.Query().Get("clubeId"),
		Status:  r.URL.Query().Get("status"),
	}
	var err error
	if filter.DataInicio, err = parseDate(r.URL.Query().Get("dataInicio")); err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}
	if filter.DataFim, err = parseDate(r.URL.Query().Get("dataFim")); err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}

	eventos, err := h.Service.List(r.Context(), authCtx, filter)
	if err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, eventos)
}

// UpdateHandler lida com a requisição PUT /api/eventos/{id}.
func (h *Handler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := actor(w, r, h.Logger)
	if !ok {
		return
	}

	var evento domain.Evento
	if err := respond.Decode(r, &evento); err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}
	evento.ID = r.PathValue("id")

	updated, err := h.Service.Update(r.Context(), authCtx, evento)
	if err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, updated)
}

// DeleteHandler lida com a requisição DELETE /api/eventos/{id}.
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

// inscricaoPayload é o corpo da inscrição de participante.
type inscricaoPayload struct {
	UserID string `json:"userId"`
}

// InscreverHandler lida com a requisição POST /api/eventos/{id}/participantes.
// @Summary Inscreve um atirador em um evento aberto
// @Tags eventos
// @Accept json
// @Produce json
// @Param id path string true "ID do evento"
// @Param inscricao body inscricaoPayload true "Usuário a inscrever"
// @Success 201 {object} domain.Participante "Inscrição registrada"
// @Failure 400 {object} domain.ErrorResponse "Evento encerrado ou lotado"
// @Failure 409 {object} domain.ErrorResponse "Usuário já inscrito"
// @Router /api/eventos/{id}/participantes [post]
func (h *Handler) InscreverHandler(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := actor(w, r, h.Logger)
	if !ok {
		return
	}

	var req inscricaoPayload
	if err := respond.Decode(r, &req); err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}
	if req.UserID == "" {
		req.UserID = authCtx.UserID // auto-inscrição
	}

	participante, err := h.Service.Inscrever(r.Context(), authCtx, r.PathValue("id"), req.UserID)
	if err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusCreated, participante)
}

// ListParticipantesHandler lida com a requisição GET /api/eventos/{id}/participantes.
func (h *Handler) ListParticipantesHandler(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := actor(w, r, h.Logger)
	if !ok {
		return
	}

	participantes, err := h.Service.ListParticipantes(r.Context(), authCtx, r.PathValue("id"))
	if err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, participantes)
}

// RemoveParticipanteHandler lida com a requisição DELETE /api/eventos/{id}/participantes/{userId}.
func (h *Handler) RemoveParticipanteHandler(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := actor(w, r, h.Logger)
	if !ok {
		return
	}

	err := h.Service.RemoveParticipante(r.Context(), authCtx, r.PathValue("id"), r.PathValue("userId"))
	if err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// parseDate aceita datas RFC 3339 completas ou só a parte de data (2026-01-31).
func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, apperror.NewValidationError("Data inválida: " + value)
}
