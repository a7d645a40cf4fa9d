package resultadorepo

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

// ResultadoRepository é a camada de persistência de resultados de provas.
type ResultadoRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewResultadoRepository cria e retorna uma nova instância do Repositório de Resultados.
func NewResultadoRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *ResultadoRepository {
	return &ResultadoRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

const resultadoColumns = `id, evento_id, user_id, clube_id, pontuacao, posicao,
	observacoes, created_at, updated_at`

// Create insere um novo resultado.
func (r *ResultadoRepository) Create(ctx context.Context, resultado domain.Resultado) (domain.Resultado, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if resultado.ID == "" {
		resultado.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	resultado.CreatedAt = now
	resultado.UpdatedAt = now

	query := `
        INSERT INTO resultados (id, evento_id, user_id, clube_id, pontuacao, posicao,
                                observacoes, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.DB.ExecContext(ctxTimeout, query,
		resultado.ID, resultado.EventoID, resultado.UserID, nullString(resultado.ClubeID),
		resultado.Pontuacao, resultado.Posicao, resultado.Observacoes,
		resultado.CreatedAt, resultado.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Falha ao inserir resultado no DB.", err)
		return domain.Resultado{}, apperror.NewDBError("Falha ao criar resultado", err)
	}

	return resultado, nil
}

// FindByID busca um resultado pelo ID.
func (r *ResultadoRepository) FindByID(ctx context.Context, id string) (domain.Resultado, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + resultadoColumns + ` FROM resultados WHERE id = $1`
	resultado, err := scanResultado(r.DB.QueryRowContext(ctxTimeout, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Resultado{}, apperror.NewNotFoundError(fmt.Sprintf("Resultado com ID %s não encontrado.", id))
	}
	if err != nil {
		return domain.Resultado{}, apperror.NewDBError("Falha ao buscar resultado", err)
	}

	return resultado, nil
}

// FindAll lista resultados conforme o filtro de clube/evento/usuário.
func (r *ResultadoRepository) FindAll(ctx context.Context, filter domain.ResultadoFilter) ([]domain.Resultado, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + resultadoColumns + ` FROM resultados`
	var conditions []string
	var args []interface{}

	if filter.ClubeID != "" {
		args = append(args, filter.ClubeID)
		conditions = append(conditions, fmt.Sprintf("clube_id = $%d", len(args)))
	}
	if filter.EventoID != "" {
		args = append(args, filter.EventoID)
		conditions = append(conditions, fmt.Sprintf("evento_id = $%d", len(args)))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}

	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY pontuacao DESC"

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falha ao executar FindAll de resultados.", err)
		return nil, apperror.NewDBError("Falha ao listar resultados", err)
	}
	defer rows.Close()

	var resultados []domain.Resultado
	for rows.Next() {
		resultado, err := scanResultado(rows)
		if err != nil {
			return nil, apperror.NewDBError("Falha ao mapear resultados do DB", err)
		}
		resultados = append(resultados, resultado)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Erro após iteração de resultados", err)
	}

	return resultados, nil
}

// Update atualiza um resultado existente.
func (r *ResultadoRepository) Update(ctx context.Context, resultado domain.Resultado) (domain.Resultado, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	resultado.UpdatedAt = time.Now().UTC()

	query := `
        UPDATE resultados
        SET pontuacao = $1, posicao = $2, observacoes = $3, updated_at = $4
        WHERE id = $5`

	result, err := r.DB.ExecContext(ctxTimeout, query,
		resultado.Pontuacao, resultado.Posicao, resultado.Observacoes,
		resultado.UpdatedAt, resultado.ID,
	)
	if err != nil {
		return domain.Resultado{}, apperror.NewDBError("Falha ao atualizar resultado", err)
	}

	if n, err := result.RowsAffected(); err != nil {
		return domain.Resultado{}, apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	} else if n == 0 {
		return domain.Resultado{}, apperror.NewNotFoundError(fmt.Sprintf("Resultado com ID %s não encontrado para atualização.", resultado.ID))
	}

	return resultado, nil
}

// Delete remove um resultado pelo ID.
func (r *ResultadoRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM resultados WHERE id = $1`, id)
	if err != nil {
		return apperror.NewDBError("Falha ao deletar resultado", err)
	}

	if n, err := result.RowsAffected(); err != nil {
		return apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	} else if n == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Resultado com ID %s não encontrado para exclusão.", id))
	}

	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanResultado(row scanner) (domain.Resultado, error) {
	var resultado domain.Resultado
	var clubeID sql.NullString

	err := row.Scan(
		&resultado.ID, &resultado.EventoID, &resultado.UserID, &clubeID,
		&resultado.Pontuacao, &resultado.Posicao, &resultado.Observacoes,
		&resultado.CreatedAt, &resultado.UpdatedAt,
	)
	if err != nil {
		return domain.Resultado{}, err
	}

	resultado.ClubeID = clubeID.String
	return resultado, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
