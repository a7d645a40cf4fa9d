package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"clubetiro/config"
	"clubetiro/internal/pkg/cache"
	"clubetiro/internal/pkg/database"
	"clubetiro/internal/pkg/logger"
	"clubetiro/internal/pkg/middleware"
	"clubetiro/internal/pkg/token"

	"clubetiro/internal/api/auth"
	"clubetiro/internal/api/evento"
	"clubetiro/internal/api/mensalidade"
	"clubetiro/internal/api/respond"
	"clubetiro/internal/api/resultado"
	"clubetiro/internal/api/router"
	"clubetiro/internal/api/system"
	"clubetiro/internal/api/user"
	"clubetiro/internal/repository/cluberepo"
	"clubetiro/internal/repository/dashboardrepo"
	"clubetiro/internal/repository/eventorepo"
	"clubetiro/internal/repository/mensalidaderepo"
	"clubetiro/internal/repository/resultadorepo"
	"clubetiro/internal/repository/sessionrepo"
	"clubetiro/internal/repository/userrepo"
	"clubetiro/internal/service/authservice"
	"clubetiro/internal/service/clubeservice"
	"clubetiro/internal/service/eventoservice"
	"clubetiro/internal/service/mensalidadeservice"
	"clubetiro/internal/service/resultadoservice"
	"clubetiro/internal/service/userservice"
)

func main() {
	// O .env ausente não é fatal: em container as variáveis vêm do ambiente.
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Aviso: Arquivo .env não encontrado. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig()
	appLog := logger.NewLogger(cfg.LogLevel)
	appLog.Info("Configurações carregadas.", map[string]interface{}{
		"env":         cfg.Environment,
		"claims_mode": cfg.AuthClaimsMode,
	})

	if cfg.IsDevelopment() {
		respond.EnableDevDetails()
	}

	// Infraestrutura
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		appLog.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	appLog.Info("Conexão PostgreSQL estabelecida.", nil)

	cacheClient := cache.NewRedisClient(cfg.RedisAddr)
	appLog.Info("Cliente Redis inicializado.", nil)

	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.JWTRefreshSecretKey,
		cfg.AccessTokenExpiry, cfg.RefreshTokenExpiry)

	// Repositórios
	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, appLog)
	clubeRepo := cluberepo.NewClubeRepository(db, cfg.DBTimeout, appLog)
	sessionRepo := sessionrepo.NewSessionRepository(db, cfg.DBTimeout, appLog)
	eventoRepo := eventorepo.NewEventoRepository(db, cfg.DBTimeout, appLog)
	resultadoRepo := resultadorepo.NewResultadoRepository(db, cfg.DBTimeout, appLog)
	mensalidadeRepo := mensalidaderepo.NewMensalidadeRepository(db, cfg.DBTimeout, appLog)
	dashboardRepo := dashboardrepo.NewDashboardRepository(db, cfg.DBTimeout, appLog)

	// Serviços
	authSvc := authservice.NewService(userRepo, clubeRepo, sessionRepo, tokenSvc, appLog)
	userSvc := userservice.NewService(userRepo, sessionRepo, appLog)
	eventoSvc := eventoservice.NewService(eventoRepo, appLog)
	resultadoSvc := resultadoservice.NewService(resultadoRepo, appLog)
	mensalidadeSvc := mensalidadeservice.NewService(mensalidadeRepo, appLog)
	clubeSvc := clubeservice.NewService(clubeRepo, userRepo, dashboardRepo, appLog)

	// Guard de autenticação. No modo rehydrate o contexto é recarregado do
	// banco a cada requisição.
	guard := middleware.NewGuard(tokenSvc, userRepo,
		cfg.AuthClaimsMode == config.ClaimsModeRehydrate, appLog)

	handlers := router.Handlers{
		Auth:        auth.NewHandler(authSvc, appLog),
		User:        user.NewHandler(userSvc, appLog),
		Evento:      evento.NewHandler(eventoSvc, appLog),
		Resultado:   resultado.NewHandler(resultadoSvc, appLog),
		Mensalidade: mensalidade.NewHandler(mensalidadeSvc, appLog),
		System:      system.NewHandler(clubeSvc, appLog),
	}

	r := router.NewRouter(handlers, guard, cacheClient, db, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Limpeza periódica de sessões expiradas.
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	go sessionCleanupLoop(cleanupCtx, sessionRepo, appLog)

	go func() {
		appLog.Info("Servidor ouvindo.", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	appLog.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLog.Error("Desligamento do servidor forçado.", err)
	}

	appLog.Info("Servidor encerrado com sucesso.", nil)
}

// sessionCleanupLoop apaga sessões expiradas de hora em hora até o shutdown.
func sessionCleanupLoop(ctx context.Context, sessions *sessionrepo.SessionRepository, appLog logger.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.DeleteExpired(ctx)
			if err != nil {
				appLog.Error("Falha na limpeza de sessões expiradas.", err)
				continue
			}
			if n > 0 {
				appLog.Info("Sessões expiradas removidas.", map[string]interface{}{"count": n})
			}
		}
	}
}
