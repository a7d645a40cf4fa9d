package mensalidaderepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"clubetiro/internal/domain"
	apperror "clubetiro/internal/errors"
	"clubetiro/internal/pkg/logger"
)

// MensalidadeRepository é a camada de persistência de mensalidades.
type MensalidadeRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewMensalidadeRepository cria e retorna uma nova instância do Repositório de Mensalidades.
func NewMensalidadeRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *MensalidadeRepository {
	return &MensalidadeRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

const mensalidadeColumns = `id, user_id, clube_id, tipo_plano, valor, data_inicio,
	data_fim, status, data_pagamento, created_at, updated_at`

// Create insere uma nova mensalidade.
func (r *MensalidadeRepository) Create(ctx context.Context, m domain.Mensalidade) (domain.Mensalidade, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	query := `
        INSERT INTO mensalidades (id, user_id, clube_id, tipo_plano, valor, data_inicio,
                                  data_fim, status, data_pagamento, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.DB.ExecContext(ctxTimeout, query,
		m.ID, m.UserID, m.ClubeID, m.TipoPlano, m.Valor,
		m.DataInicio, m.DataFim, m.Status, nullTime(m.DataPagamento),
		m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Falha ao inserir mensalidade no DB.", err)
		return domain.Mensalidade{}, apperror.NewDBError("Falha ao criar mensalidade", err)
	}

	return m, nil
}

// FindByID busca uma mensalidade pelo ID.
func (r *MensalidadeRepository) FindByID(ctx context.Context, id string) (domain.Mensalidade, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + mensalidadeColumns + ` FROM mensalidades WHERE id = $1`
	m, err := scanMensalidade(r.DB.QueryRowContext(ctxTimeout, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Mensalidade{}, apperror.NewNotFoundError(fmt.Sprintf("Mensalidade com ID %s não encontrada.", id))
	}
	if err != nil {
		return domain.Mensalidade{}, apperror.NewDBError("Falha ao buscar mensalidade", err)
	}

	return m, nil
}

// FindAll lista mensalidades; clubeID vazio lista todas (system_admin),
// userID opcional restringe a um associado.
func (r *MensalidadeRepository) FindAll(ctx context.Context, clubeID, userID string) ([]domain.Mensalidade, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + mensalidadeColumns + ` FROM mensalidades`
	var conditions []string
	var args []interface{}

	if clubeID != "" {
		args = append(args, clubeID)
		conditions = append(conditions, fmt.Sprintf("clube_id = $%d", len(args)))
	}
	if userID != "" {
		args = append(args, userID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}

	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY data_inicio DESC"

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falha ao executar FindAll de mensalidades.", err)
		return nil, apperror.NewDBError("Falha ao listar mensalidades", err)
	}
	defer rows.Close()

	var mensalidades []domain.Mensalidade
	for rows.Next() {
		m, err := scanMensalidade(rows)
		if err != nil {
			return nil, apperror.NewDBError("Falha ao mapear mensalidades do DB", err)
		}
		mensalidades = append(mensalidades, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Erro após iteração de mensalidades", err)
	}

	return mensalidades, nil
}

// Update atualiza uma mensalidade existente.
func (r *MensalidadeRepository) Update(ctx context.Context, m domain.Mensalidade) (domain.Mensalidade, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	m.UpdatedAt = time.Now().UTC()

	query := `
        UPDATE mensalidades
        SET tipo_plano = $1, valor = $2, data_inicio = $3, data_fim = $4,
            status = $5, data_pagamento = $6, updated_at = $7
        WHERE id = $8`

	result, err := r.DB.ExecContext(ctxTimeout, query,
		m.TipoPlano, m.Valor, m.DataInicio, m.DataFim,
		m.Status, nullTime(m.DataPagamento), m.UpdatedAt, m.ID,
	)
	if err != nil {
		return domain.Mensalidade{}, apperror.NewDBError("Falha ao atualizar mensalidade", err)
	}

	if n, err := result.RowsAffected(); err != nil {
		return domain.Mensalidade{}, apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	} else if n == 0 {
		return domain.Mensalidade{}, apperror.NewNotFoundError(fmt.Sprintf("Mensalidade com ID %s não encontrada para atualização.", m.ID))
	}

	return m, nil
}

// Delete remove uma mensalidade pelo ID.
func (r *MensalidadeRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM mensalidades WHERE id = $1`, id)
	if err != nil {
		return apperror.NewDBError("Falha ao deletar mensalidade", err)
	}

	if n, err := result.RowsAffected(); err != nil {
		return apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	} else if n == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Mensalidade com ID %s não encontrada para exclusão.", id))
	}

	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMensalidade(row scanner) (domain.Mensalidade, error) {
	var m domain.Mensalidade
	var dataPagamento sql.NullTime

	err := row.Scan(
		&m.ID, &m.UserID, &m.ClubeID, &m.TipoPlano, &m.Valor,
		&m.DataInicio, &m.DataFim, &m.Status, &dataPagamento,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return domain.Mensalidade{}, err
	}

	if dataPagamento.Valid {
		t := dataPagamento.Time
		m.DataPagamento = &t
	}
	return m, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
