package eventorepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"clubetiro/internal/domain"
	apperror "clubetiro/internal/errors"
	"clubetiro/internal/pkg/logger"
)

const pqUniqueViolation = "23505"

// EventoRepository persiste eventos e as inscrições de participantes.
type EventoRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewEventoRepository cria e retorna uma nova instância do Repositório de Eventos.
func NewEventoRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *EventoRepository {
	return &EventoRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

const eventoColumns = `id, clube_id, nome, descricao, data_evento, local, status,
	max_participantes, valor_inscricao, criado_por, created_at, updated_at`

// Create insere um novo evento.
func (r *EventoRepository) Create(ctx context.Context, evento domain.Evento) (domain.Evento, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if evento.ID == "" {
		evento.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	evento.CreatedAt = now
	evento.UpdatedAt = now

	query := `
        INSERT INTO eventos (id, clube_id, nome, descricao, data_evento, local, status,
                             max_participantes, valor_inscricao, criado_por, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.DB.ExecContext(ctxTimeout, query,
		evento.ID, nullString(evento.ClubeID), evento.Nome, evento.Descricao,
		evento.Data, evento.Local, evento.Status,
		evento.MaxParticipantes, evento.ValorInscricao, evento.CriadoPor,
		evento.CreatedAt, evento.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Falha ao inserir evento no DB.", err)
		return domain.Evento{}, apperror.NewDBError("Falha ao criar evento", err)
	}

	r.logger.Info("Evento criado com sucesso.", map[string]interface{}{"id": evento.ID, "nome": evento.Nome})
	return evento, nil
}

// FindByID busca um evento pelo ID.
func (r *EventoRepository) FindByID(ctx context.Context, id string) (domain.Evento, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + eventoColumns + ` FROM eventos WHERE id = $1`
	evento, err := scanEvento(r.DB.QueryRowContext(ctxTimeout, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Evento{}, apperror.NewNotFoundError(fmt.Sprintf("Evento com ID %s não encontrado.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar evento no DB.", err)
		return domain.Evento{}, apperror.NewDBError("Falha ao buscar evento", err)
	}

	return evento, nil
}

// FindAll lista eventos conforme o filtro. ClubeID preenchido restringe ao
// clube informado mais os eventos globais (clube_id nulo).
func (r *EventoRepository) FindAll(ctx context.Context, filter domain.EventoFilter) ([]domain.Evento, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + eventoColumns + ` FROM eventos`
	var conditions []string
	var args []interface{}

	if filter.ClubeID != "" {
		args = append(args, filter.ClubeID)
		conditions = append(conditions, fmt.Sprintf("(clube_id = $%d OR clube_id IS NULL)", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.DataInicio != nil {
		args = append(args, *filter.DataInicio)
		conditions = append(conditions, fmt.Sprintf("data_evento >= $%d", len(args)))
	}
	if filter.DataFim != nil {
		args = append(args, *filter.DataFim)
		conditions = append(conditions, fmt.Sprintf("data_evento <= $%d", len(args)))
	}

	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY data_evento DESC"

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falha ao executar FindAll de eventos.", err)
		return nil, apperror.NewDBError("Falha ao listar eventos", err)
	}
	defer rows.Close()

	var eventos []domain.Evento
	for rows.Next() {
		evento, err := scanEvento(rows)
		if err != nil {
			return nil, apperror.NewDBError("Falha ao mapear eventos do DB", err)
		}
		eventos = append(eventos, evento)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Erro após iteração de eventos", err)
	}

	return eventos, nil
}

// Update atualiza um evento existente.
func (r *EventoRepository) Update(ctx context.Context, evento domain.Evento) (domain.Evento, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	evento.UpdatedAt = time.Now().UTC()

	query := `
        UPDATE eventos
        SET nome = $1, descricao = $2, data_evento = $3, local = $4, status = $5,
            max_participantes = $6, valor_inscricao = $7, updated_at = $8
        WHERE id = $9`

	result, err := r.DB.ExecContext(ctxTimeout, query,
		evento.Nome, evento.Descricao, evento.Data, evento.Local, evento.Status,
		evento.MaxParticipantes, evento.ValorInscricao, evento.UpdatedAt, evento.ID,
	)
	if err != nil {
		r.logger.Error("Falha ao atualizar evento no DB.", err)
		return domain.Evento{}, apperror.NewDBError("Falha ao atualizar evento", err)
	}

	if n, err := result.RowsAffected(); err != nil {
		return domain.Evento{}, apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	} else if n == 0 {
		return domain.Evento{}, apperror.NewNotFoundError(fmt.Sprintf("Evento com ID %s não encontrado para atualização.", evento.ID))
	}

	return evento, nil
}

// Delete remove um evento pelo ID (inscrições caem em cascata no schema).
func (r *EventoRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM eventos WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Falha ao deletar evento do DB.", err)
		return apperror.NewDBError("Falha ao deletar evento", err)
	}

	if n, err := result.RowsAffected(); err != nil {
		return apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	} else if n == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Evento com ID %s não encontrado para exclusão.", id))
	}

	return nil
}

// --- Participantes ---

// AddParticipante inscreve um usuário em um evento.
func (r *EventoRepository) AddParticipante(ctx context.Context, p domain.Participante) (domain.Participante, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.DataInscricao = time.Now().UTC()

	query := `
        INSERT INTO participantes (id, evento_id, user_id, clube_id, presenca, data_inscricao)
        VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.DB.ExecContext(ctxTimeout, query,
		p.ID, p.EventoID, p.UserID, nullString(p.ClubeID), p.Presenca, p.DataInscricao)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return domain.Participante{}, apperror.NewConflictError("Usuário já inscrito neste evento.")
		}
		r.logger.Error("Falha ao inscrever participante.", err)
		return domain.Participante{}, apperror.NewDBError("Falha ao inscrever participante", err)
	}

	return p, nil
}

// ListParticipantes lista as inscrições de um evento, com o nome do
// participante denormalizado do cadastro.
func (r *EventoRepository) ListParticipantes(ctx context.Context, eventoID string) ([]domain.Participante, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT p.id, p.evento_id, p.user_id, p.clube_id, u.nome, p.presenca, p.data_inscricao
        FROM participantes p
        JOIN users u ON u.id = p.user_id
        WHERE p.evento_id = $1
        ORDER BY p.data_inscricao`

	rows, err := r.DB.QueryContext(ctxTimeout, query, eventoID)
	if err != nil {
		return nil, apperror.NewDBError("Falha ao listar participantes", err)
	}
	defer rows.Close()

	var participantes []domain.Participante
	for rows.Next() {
		var p domain.Participante
		var clubeID sql.NullString
		if err := rows.Scan(&p.ID, &p.EventoID, &p.UserID, &clubeID, &p.Nome, &p.Presenca, &p.DataInscricao); err != nil {
			return nil, apperror.NewDBError("Falha ao mapear participantes do DB", err)
		}
		p.ClubeID = clubeID.String
		participantes = append(participantes, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Erro após iteração de participantes", err)
	}

	return participantes, nil
}

// CountParticipantes conta inscrições de um evento (limite de vagas).
func (r *EventoRepository) CountParticipantes(ctx context.Context, eventoID string) (int, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var count int
	err := r.DB.QueryRowContext(ctxTimeout,
		`SELECT COUNT(*) FROM participantes WHERE evento_id = $1`, eventoID).Scan(&count)
	if err != nil {
		return 0, apperror.NewDBError("Falha ao contar participantes", err)
	}
	return count, nil
}

// RemoveParticipante cancela a inscrição de um usuário em um evento.
func (r *EventoRepository) RemoveParticipante(ctx context.Context, eventoID, userID string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout,
		`DELETE FROM participantes WHERE evento_id = $1 AND user_id = $2`, eventoID, userID)
	if err != nil {
		return apperror.NewDBError("Falha ao remover participante", err)
	}

	if n, err := result.RowsAffected(); err != nil {
		return apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	} else if n == 0 {
		return apperror.NewNotFoundError("Inscrição não encontrada para este evento.")
	}

	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEvento(row scanner) (domain.Evento, error) {
	var evento domain.Evento
	var clubeID sql.NullString

	err := row.Scan(
		&evento.ID, &clubeID, &evento.Nome, &evento.Descricao,
		&evento.Data, &evento.Local, &evento.Status,
		&evento.MaxParticipantes, &evento.ValorInscricao, &evento.CriadoPor,
		&evento.CreatedAt, &evento.UpdatedAt,
	)
	if err != nil {
		return domain.Evento{}, err
	}

	evento.ClubeID = clubeID.String
	return evento, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
