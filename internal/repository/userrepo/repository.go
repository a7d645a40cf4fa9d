package userrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"clubetiro/internal/domain"
	apperror "clubetiro/internal/errors"
	"clubetiro/internal/pkg/logger"
)

// Código de violação de chave única do PostgreSQL.
const pqUniqueViolation = "23505"

// UserRepository é a camada de persistência da entidade User.
type UserRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewUserRepository cria uma nova instância do UserRepository, injetando o DB.
func NewUserRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *UserRepository {
	return &UserRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

const userColumns = `id, nome, email, senha_hash, tipo, clube_id, permissoes,
	numero_registro, telefone, ativo, data_cadastro, ultimo_login`

// Save insere um novo usuário no banco de dados.
func (r *UserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	r.logger.Debug("Iniciando Save de usuário no repositório.", map[string]interface{}{"email": user.Email})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Email = strings.ToLower(user.Email)
	user.DataCadastro = time.Now().UTC()

	permissoes, err := marshalPermissoes(user.Permissoes)
	if err != nil {
		return domain.User{}, apperror.NewInternalError("Falha ao serializar permissões.", err)
	}

	query := `
        INSERT INTO users (id, nome, email, senha_hash, tipo, clube_id, permissoes,
                           numero_registro, telefone, ativo, data_cadastro)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = r.DB.ExecContext(ctxTimeout, query,
		user.ID, user.Nome, user.Email, user.SenhaHash, user.Tipo,
		nullString(user.ClubeID), permissoes,
		nullString(user.NumeroRegistro), nullString(user.Telefone),
		user.Ativo, user.DataCadastro,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			r.logger.Info("Tentativa de cadastro com email duplicado.", map[string]interface{}{"email": user.Email})
			return domain.User{}, apperror.NewConflictError(fmt.Sprintf("O email '%s' já está em uso.", user.Email))
		}
		r.logger.Error("Falha ao inserir usuário no DB.", err)
		return domain.User{}, apperror.NewDBError("Falha ao inserir usuário", err)
	}

	r.logger.Info("Usuário salvo com sucesso no repositório.", map[string]interface{}{"user_id": user.ID})
	return user, nil
}

// FindByEmail busca um usuário pelo endereço de e-mail (sempre minúsculo).
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	row := r.DB.QueryRowContext(ctxTimeout, query, strings.ToLower(email))

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, apperror.NewNotFoundError(fmt.Sprintf("Usuário com email '%s' não encontrado", email))
		}
		r.logger.Error("Falha ao buscar usuário por email no DB.", err)
		return domain.User{}, apperror.NewDBError("Falha ao buscar usuário por email", err)
	}

	return user, nil
}

// FindByID busca um usuário pelo ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	row := r.DB.QueryRowContext(ctxTimeout, query, id)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, apperror.NewNotFoundError(fmt.Sprintf("Usuário com ID %s não encontrado.", id))
		}
		r.logger.Error("Falha ao buscar usuário por ID no DB.", err)
		return domain.User{}, apperror.NewDBError("Falha ao buscar usuário por ID", err)
	}

	return user, nil
}

// FindAll lista usuários; clubeID vazio lista todos (apenas system_admin
// chega aqui sem filtro, pois o serviço aplica o isolamento por clube).
func (r *UserRepository) FindAll(ctx context.Context, clubeID string) ([]domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users`
	var args []interface{}
	if clubeID != "" {
		query += ` WHERE clube_id = $1`
		args = append(args, clubeID)
	}
	query += ` ORDER BY nome`

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falha ao executar FindAll de usuários.", err)
		return nil, apperror.NewDBError("Falha ao listar usuários", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			r.logger.Error("Falha ao mapear usuário na listagem.", err)
			return nil, apperror.NewDBError("Falha ao mapear usuários do DB", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Erro após iteração de usuários", err)
	}

	return users, nil
}

// Update atualiza os campos mutáveis de um usuário existente.
func (r *UserRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	permissoes, err := marshalPermissoes(user.Permissoes)
	if err != nil {
		return domain.User{}, apperror.NewInternalError("Falha ao serializar permissões.", err)
	}

	query := `
        UPDATE users
        SET nome = $1, email = $2, clube_id = $3, permissoes = $4,
            numero_registro = $5, telefone = $6, ativo = $7
        WHERE id = $8`

	result, err := r.DB.ExecContext(ctxTimeout, query,
		user.Nome, strings.ToLower(user.Email), nullString(user.ClubeID), permissoes,
		nullString(user.NumeroRegistro), nullString(user.Telefone), user.Ativo, user.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return domain.User{}, apperror.NewConflictError(fmt.Sprintf("O email '%s' já está em uso.", user.Email))
		}
		r.logger.Error("Falha ao atualizar usuário no DB.", err)
		return domain.User{}, apperror.NewDBError("Falha ao atualizar usuário", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return domain.User{}, apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return domain.User{}, apperror.NewNotFoundError(fmt.Sprintf("Usuário com ID %s não encontrado para atualização.", user.ID))
	}

	return user, nil
}

// UpdatePassword troca o hash de senha de um usuário.
func (r *UserRepository) UpdatePassword(ctx context.Context, userID, senhaHash string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout,
		`UPDATE users SET senha_hash = $1 WHERE id = $2`, senhaHash, userID)
	if err != nil {
		r.logger.Error("Falha ao atualizar senha no DB.", err)
		return apperror.NewDBError("Falha ao atualizar senha", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Usuário com ID %s não encontrado.", userID))
	}

	return nil
}

// Delete remove um usuário pelo ID.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Falha ao deletar usuário do DB.", err)
		return apperror.NewDBError("Falha ao deletar usuário", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Usuário com ID %s não encontrado para exclusão.", id))
	}

	r.logger.Info("Usuário deletado com sucesso.", map[string]interface{}{"user_id": id})
	return nil
}

// scanner cobre *sql.Row e *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row scanner) (domain.User, error) {
	var user domain.User
	var clubeID, numeroRegistro, telefone sql.NullString
	var permissoes []byte
	var ultimoLogin sql.NullTime

	err := row.Scan(
		&user.ID, &user.Nome, &user.Email, &user.SenhaHash, &user.Tipo,
		&clubeID, &permissoes, &numeroRegistro, &telefone,
		&user.Ativo, &user.DataCadastro, &ultimoLogin,
	)
	if err != nil {
		return domain.User{}, err
	}

	user.ClubeID = clubeID.String
	user.NumeroRegistro = numeroRegistro.String
	user.Telefone = telefone.String
	if ultimoLogin.Valid {
		t := ultimoLogin.Time
		user.UltimoLogin = &t
	}
	if len(permissoes) > 0 {
		var p domain.ClubAdminPermissions
		if err := json.Unmarshal(permissoes, &p); err != nil {
			return domain.User{}, fmt.Errorf("permissoes malformadas: %w", err)
		}
		user.Permissoes = &p
	}

	return user, nil
}

func marshalPermissoes(p *domain.ClubAdminPermissions) (interface{}, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
