package dashboardrepo

import (
	"context"
	"database/sql"
	"time"

	"clubetiro/internal/domain"
	apperror "clubetiro/internal/errors"
	"clubetiro/internal/pkg/logger"
)

// DashboardRepository agrega contadores de toda a plataforma para o painel
// do system_admin.
type DashboardRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewDashboardRepository cria e retorna uma nova instância do Repositório do Dashboard.
func NewDashboardRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *DashboardRepository {
	return &DashboardRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Stats executa os contadores do painel em uma única ida ao banco.
func (r *DashboardRepository) Stats(ctx context.Context) (domain.DashboardStats, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT
            (SELECT COUNT(*) FROM clubes),
            (SELECT COUNT(*) FROM clubes WHERE ativo = true),
            (SELECT COUNT(*) FROM users),
            (SELECT COUNT(*) FROM users WHERE ativo = true),
            (SELECT COUNT(*) FROM eventos),
            (SELECT COUNT(*) FROM eventos WHERE status = 'aberto'),
            (SELECT COALESCE(SUM(valor), 0) FROM mensalidades WHERE status = 'ativa')`

	var stats domain.DashboardStats
	err := r.DB.QueryRowContext(ctxTimeout, query).Scan(
		&stats.TotalClubes, &stats.ClubesAtivos,
		&stats.TotalUsuarios, &stats.UsuariosAtivos,
		&stats.TotalEventos, &stats.EventosAbertos,
		&stats.ReceitaMensal,
	)
	if err != nil {
		r.logger.Error("Falha ao coletar estatísticas do dashboard.", err)
		return domain.DashboardStats{}, apperror.NewDBError("Falha ao coletar estatísticas", err)
	}

	return stats, nil
}
