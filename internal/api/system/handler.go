package system

import (
	"context"
	"net/http"

	"clubetiro/internal/api/respond"
	"clubetiro/internal/domain"
	"clubetiro/internal/pkg/logger"
)

// ClubeService define o contrato da área administrativa da plataforma.
// Todas as rotas deste pacote exigem system_admin; a checagem de papel é
// feita pelo guard no roteador, não aqui.
type ClubeService interface {
	Create(ctx context.Context, clube domain.Clube) (domain.Clube, error)
	Get(ctx context.Context, id string) (domain.Clube, error)
	List(ctx context.Context) ([]domain.Clube, error)
	Update(ctx context.Context, clube domain.Clube) (domain.Clube, error)
	ListUsers(ctx context.Context, clubeID string) ([]domain.User, error)
	Dashboard(ctx context.Context) (domain.DashboardStats, error)
}

// Handler agrupa os métodos de Handler da área de sistema.
type Handler struct {
	Service ClubeService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ClubeService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// CreateClubeHandler lida com a requisição POST /api/system/clubes.
// @Summary Cadastra um clube na plataforma
// @Tags system
// @Accept json
// @Produce json
// @Param clube body domain.Clube true "Dados do clube"
// @Success 201 {object} domain.Clube "Clube cadastrado"
// @Failure 400 {object} domain.ErrorResponse "Nome ou CNPJ ausente"
// @Failure 409 {object} domain.ErrorResponse "CNPJ já cadastrado"
// @Router /api/system/clubes [post]
func (h *Handler) CreateClubeHandler(w http.ResponseWriter, r *http.Request) {
	var clube domain.Clube
	if err := respond.Decode(r, &clube); err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}

	created, err := h.Service.Create(r.Context(), clube)
	if err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusCreated, created)
}

// GetClubeHandler lida com a requisição GET /api/system/clubes/{id}.
func (h *Handler) GetClubeHandler(w http.ResponseWriter, r *http.Request) {
	clube, err := h.Service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, clube)
}

// ListClubesHandler lida com a requisição GET /api/system/clubes.
func (h *Handler) ListClubesHandler(w http.ResponseWriter, r *http.Request) {
	clubes, err := h.Service.List(r.Context())
	if err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, clubes)
}

// UpdateClubeHandler lida com a requisição PUT /api/system/clubes/{id}.
// Desativar um clube aqui bloqueia o login de todos os seus membros.
func (h *Handler) UpdateClubeHandler(w http.ResponseWriter, r *http.Request) {
	var clube domain.Clube
	if err := respond.Decode(r, &clube); err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}
	clube.ID = r.PathValue("id")

	updated, err := h.Service.Update(r.Context(), clube)
	if err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, updated)
}

// ListClubeUsersHandler lida com a requisição GET /api/system/clubes/{id}/users.
func (h *Handler) ListClubeUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.ListUsers(r.Context(), r.PathValue("id"))
	if err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, users)
}

// DashboardHandler lida com a requisição GET /api/system/dashboard.
// @Summary Resumo operacional da plataforma
// @Tags system
// @Produce json
// @Success 200 {object} domain.DashboardStats "Contadores agregados"
// @Router /api/system/dashboard [get]
func (h *Handler) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Dashboard(r.Context())
	if err != nil {
		respond.Err(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, stats)
}
