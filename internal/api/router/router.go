package router

import (
	"database/sql"
	"encoding/json"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"clubetiro/config"
	"clubetiro/internal/api/auth"
	"clubetiro/internal/api/evento"
	"clubetiro/internal/api/mensalidade"
	"clubetiro/internal/api/resultado"
	"clubetiro/internal/api/system"
	"clubetiro/internal/api/user"
	"clubetiro/internal/domain"
	"clubetiro/internal/pkg/cache"
	"clubetiro/internal/pkg/middleware"
)

// Handlers agrupa os handlers já inicializados para a montagem das rotas.
type Handlers struct {
	Auth        *auth.Handler
	User        *user.Handler
	Evento      *evento.Handler
	Resultado   *resultado.Handler
	Mensalidade *mensalidade.Handler
	System      *system.Handler
}

// NewRouter monta o roteador HTTP principal com as cadeias de middleware de
// cada grupo de rotas. Os padrões método+path do ServeMux fazem o roteamento;
// o guard faz autenticação e autorização grosseira; o escopo fino por clube
// fica na camada de serviço.
func NewRouter(h Handlers, guard *middleware.Guard, cacheClient cache.Client, db *sql.DB, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	rateLimit := middleware.RateLimiter(cacheClient, cfg.RateLimitMaxRequests, cfg.RateLimitPeriod)
	authed := guard.Authenticate
	systemOnly := chain(authed, guard.RequireUserTypes(domain.TypeSystemAdmin))

	// Autenticação (rate-limited; validate e refresh não exigem access token
	// válido, o próprio fluxo decide a validade).
	mux.Handle("POST /api/auth/login", rateLimit(http.HandlerFunc(h.Auth.LoginHandler)))
	mux.Handle("POST /api/auth/refresh", rateLimit(http.HandlerFunc(h.Auth.RefreshHandler)))
	mux.Handle("POST /api/auth/logout", rateLimit(http.HandlerFunc(h.Auth.LogoutHandler)))
	mux.Handle("GET /api/auth/validate", rateLimit(http.HandlerFunc(h.Auth.ValidateHandler)))
	mux.Handle("PUT /api/auth/password", authed(http.HandlerFunc(h.Auth.ChangePasswordHandler)))

	// Usuários. As regras CanManageUser ficam no serviço.
	mux.Handle("GET /api/users", authed(http.HandlerFunc(h.User.ListHandler)))
	mux.Handle("POST /api/users", authed(http.HandlerFunc(h.User.CreateHandler)))
	mux.Handle("GET /api/users/{id}", authed(http.HandlerFunc(h.User.GetHandler)))
	mux.Handle("PUT /api/users/{id}", authed(http.HandlerFunc(h.User.UpdateHandler)))
	mux.Handle("DELETE /api/users/{id}", authed(http.HandlerFunc(h.User.DeleteHandler)))

	// Eventos: leitura para qualquer autenticado, escrita exige a flag.
	gerenciaEventos := chain(authed, guard.RequirePermissions(domain.PermGerenciarEventos))
	mux.Handle("GET /api/eventos", authed(http.HandlerFunc(h.Evento.ListHandler)))
	mux.Handle("POST /api/eventos", gerenciaEventos(http.HandlerFunc(h.Evento.CreateHandler)))
	mux.Handle("GET /api/eventos/{id}", authed(http.HandlerFunc(h.Evento.GetHandler)))
	mux.Handle("PUT /api/eventos/{id}", gerenciaEventos(http.HandlerFunc(h.Evento.UpdateHandler)))
	mux.Handle("DELETE /api/eventos/{id}", gerenciaEventos(http.HandlerFunc(h.Evento.DeleteHandler)))

	// Inscrições em eventos.
	gerenciaMembros := chain(authed, guard.RequirePermissions(domain.PermGerenciarMembros))
	mux.Handle("GET /api/eventos/{id}/participantes", authed(http.HandlerFunc(h.Evento.ListParticipantesHandler)))
	mux.Handle("POST /api/eventos/{id}/participantes", authed(http.HandlerFunc(h.Evento.InscreverHandler)))
	mux.Handle("DELETE /api/eventos/{id}/participantes/{userId}", gerenciaMembros(http.HandlerFunc(h.Evento.RemoveParticipanteHandler)))

	// Resultados.
	gerenciaResultados := chain(authed, guard.RequirePermissions(domain.PermGerenciarResultados))
	mux.Handle("GET /api/resultados", authed(http.HandlerFunc(h.Resultado.ListHandler)))
	mux.Handle("POST /api/resultados", gerenciaResultados(http.HandlerFunc(h.Resultado.CreateHandler)))
	mux.Handle("PUT /api/resultados/{id}", gerenciaResultados(http.HandlerFunc(h.Resultado.UpdateHandler)))
	mux.Handle("DELETE /api/resultados/{id}", gerenciaResultados(http.HandlerFunc(h.Resultado.DeleteHandler)))

	// Mensalidades.
	gerenciaPagamentos := chain(authed, guard.RequirePermissions(domain.PermGerenciarPagamentos))
	mux.Handle("GET /api/mensalidades", authed(http.HandlerFunc(h.Mensalidade.ListHandler)))
	mux.Handle("POST /api/mensalidades", gerenciaPagamentos(http.HandlerFunc(h.Mensalidade.CreateHandler)))
	mux.Handle("PUT /api/mensalidades/{id}", gerenciaPagamentos(http.HandlerFunc(h.Mensalidade.UpdateHandler)))
	mux.Handle("DELETE /api/mensalidades/{id}", gerenciaPagamentos(http.HandlerFunc(h.Mensalidade.DeleteHandler)))

	// Área de sistema (exclusiva de system_admin).
	mux.Handle("GET /api/system/clubes", systemOnly(http.HandlerFunc(h.System.ListClubesHandler)))
	mux.Handle("POST /api/system/clubes", systemOnly(http.HandlerFunc(h.System.CreateClubeHandler)))
	mux.Handle("GET /api/system/clubes/{id}", systemOnly(http.HandlerFunc(h.System.GetClubeHandler)))
	mux.Handle("PUT /api/system/clubes/{id}", systemOnly(http.HandlerFunc(h.System.UpdateClubeHandler)))
	mux.Handle("GET /api/system/clubes/{id}/users", systemOnly(http.HandlerFunc(h.System.ListClubeUsersHandler)))
	mux.Handle("GET /api/system/dashboard", systemOnly(http.HandlerFunc(h.System.DashboardHandler)))

	// Infraestrutura.
	mux.HandleFunc("GET /health", HealthHandler(db, cacheClient))
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	return mux
}

// chain compõe middlewares na ordem informada (o primeiro envolve todos).
func chain(mws ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}

// HealthHandler reporta a disponibilidade do banco e do Redis. Qualquer
// dependência fora do ar rebaixa o status para 503.
func HealthHandler(db *sql.DB, cacheClient cache.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		status := http.StatusOK
		overall := "healthy"
		checks := map[string]string{"database": "ok", "redis": "ok"}

		if err := db.PingContext(ctx); err != nil {
			checks["database"] = "unavailable"
			status = http.StatusServiceUnavailable
			overall = "degraded"
		}
		if err := cacheClient.Ping(ctx); err != nil {
			checks["redis"] = "unavailable"
			status = http.StatusServiceUnavailable
			overall = "degraded"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": overall,
			"checks": checks,
		})
	}
}
