package sessionrepo

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"clubetiro/internal/domain"
	apperror "clubetiro/internal/errors"
	"clubetiro/internal/pkg/logger"
)

// SessionRepository persiste as sessões (refresh tokens emitidos) para que
// possam ser invalidadas no servidor mesmo com access tokens stateless.
type SessionRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewSessionRepository cria uma nova instância do SessionRepository.
func NewSessionRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *SessionRepository {
	return &SessionRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// HashToken calcula o SHA-256 de um refresh token cru. Apenas o hash é
// armazenado; o token cru nunca chega ao banco.
func HashToken(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}

// RecordLogin grava a sessão e atualiza ultimo_login do usuário em uma única
// transação: falha em qualquer escrita desfaz as duas, e o par de tokens já
// emitido é descartado pelo serviço.
func (r *SessionRepository) RecordLogin(ctx context.Context, session domain.Session) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return apperror.NewDBError("Falha ao iniciar transação de login", err)
	}
	defer tx.Rollback()

	if err := insertSession(ctxTimeout, tx, &session); err != nil {
		r.logger.Error("Falha ao gravar sessão de login.", err)
		return apperror.NewDBError("Falha ao gravar sessão", err)
	}

	if _, err := tx.ExecContext(ctxTimeout,
		`UPDATE users SET ultimo_login = CURRENT_TIMESTAMP WHERE id = $1`, session.UserID); err != nil {
		r.logger.Error("Falha ao atualizar ultimo_login.", err)
		return apperror.NewDBError("Falha ao atualizar último login", err)
	}

	if err := tx.Commit(); err != nil {
		return apperror.NewDBError("Falha ao confirmar transação de login", err)
	}

	r.logger.Info("Sessão de login registrada.", map[string]interface{}{"user_id": session.UserID})
	return nil
}

// Rotate substitui a sessão do token antigo pela nova atomicamente, durante
// a renovação do par de tokens.
func (r *SessionRepository) Rotate(ctx context.Context, oldTokenHash string, newSession domain.Session) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return apperror.NewDBError("Falha ao iniciar transação de rotação", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctxTimeout,
		`DELETE FROM user_sessions WHERE token_hash = $1`, oldTokenHash); err != nil {
		return apperror.NewDBError("Falha ao remover sessão antiga", err)
	}

	if err := insertSession(ctxTimeout, tx, &newSession); err != nil {
		return apperror.NewDBError("Falha ao gravar nova sessão", err)
	}

	if err := tx.Commit(); err != nil {
		return apperror.NewDBError("Falha ao confirmar rotação de sessão", err)
	}

	return nil
}

// FindByTokenHash busca a sessão de um refresh token pelo hash. Sessão
// ausente ou expirada retorna NotFound; o serviço traduz para
// REFRESH_TOKEN_INVALID.
func (r *SessionRepository) FindByTokenHash(ctx context.Context, tokenHash string) (domain.Session, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT id, user_id, token_hash, expires_at, created_at, last_used_at, user_agent, ip_address
        FROM user_sessions
        WHERE token_hash = $1`

	var session domain.Session
	var userAgent, ipAddress sql.NullString
	err := r.DB.QueryRowContext(ctxTimeout, query, tokenHash).Scan(
		&session.ID, &session.UserID, &session.TokenHash,
		&session.ExpiresAt, &session.CreatedAt, &session.LastUsedAt,
		&userAgent, &ipAddress,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, apperror.NewNotFoundError("Sessão não encontrada.")
	}
	if err != nil {
		r.logger.Error("Falha ao buscar sessão no DB.", err)
		return domain.Session{}, apperror.NewDBError("Falha ao buscar sessão", err)
	}

	session.UserAgent = userAgent.String
	session.IPAddress = ipAddress.String

	if session.Expired(time.Now()) {
		return domain.Session{}, apperror.NewNotFoundError("Sessão expirada.")
	}

	return session, nil
}

// Revoke remove a sessão de um refresh token. Idempotente: token ausente não
// é erro (usado no logout, que nunca falha para o cliente).
func (r *SessionRepository) Revoke(ctx context.Context, tokenHash string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if _, err := r.DB.ExecContext(ctxTimeout,
		`DELETE FROM user_sessions WHERE token_hash = $1`, tokenHash); err != nil {
		r.logger.Error("Falha ao revogar sessão.", err)
		return apperror.NewDBError("Falha ao revogar sessão", err)
	}
	return nil
}

// RevokeAllForUser remove todas as sessões de um usuário (troca de senha,
// logout forçado). Sessões de outros usuários não são tocadas.
func (r *SessionRepository) RevokeAllForUser(ctx context.Context, userID string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout,
		`DELETE FROM user_sessions WHERE user_id = $1`, userID)
	if err != nil {
		r.logger.Error("Falha ao revogar sessões do usuário.", err)
		return apperror.NewDBError("Falha ao revogar sessões do usuário", err)
	}

	if n, err := result.RowsAffected(); err == nil {
		r.logger.Info("Sessões do usuário revogadas.", map[string]interface{}{"user_id": userID, "revoked": n})
	}
	return nil
}

// DeleteExpired remove sessões vencidas e retorna o total excluído.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout,
		`DELETE FROM user_sessions WHERE expires_at < CURRENT_TIMESTAMP`)
	if err != nil {
		return 0, apperror.NewDBError("Falha ao limpar sessões expiradas", err)
	}
	return result.RowsAffected()
}

// insertSession faz o upsert keyed pelo token_hash. Colisão de token não
// deveria ocorrer com aleatoriedade correta, mas o conflito atualiza
// last_used_at em vez de falhar.
func insertSession(ctx context.Context, tx *sql.Tx, session *domain.Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	session.CreatedAt = now
	session.LastUsedAt = now

	_, err := tx.ExecContext(ctx, `
        INSERT INTO user_sessions (id, user_id, token_hash, expires_at, created_at, last_used_at, user_agent, ip_address)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (token_hash) DO UPDATE SET last_used_at = CURRENT_TIMESTAMP`,
		session.ID, session.UserID, session.TokenHash,
		session.ExpiresAt, session.CreatedAt, session.LastUsedAt,
		nullString(session.UserAgent), nullString(session.IPAddress),
	)
	if err != nil {
		return fmt.Errorf("insert de sessão: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
