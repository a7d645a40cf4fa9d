package cluberepo

import (
	"context"
	"database/sql"
	"encoding/json"
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

// ClubeRepository é a camada de persistência da entidade Clube.
type ClubeRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewClubeRepository cria e retorna uma nova instância do Repositório de Clubes.
func NewClubeRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *ClubeRepository {
	return &ClubeRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Endereço, contato e licença são documentos JSONB; o clube é sempre lido e
// gravado inteiro, então não há necessidade de colunas individuais.
const clubeColumns = `id, nome, cnpj, certificado_registro, endereco, contato, licenca,
	ativo, data_cadastro, updated_at`

// Create insere um novo clube.
func (r *ClubeRepository) Create(ctx context.Context, clube domain.Clube) (domain.Clube, error) {
	r.logger.Debug("Iniciando Create de clube no repositório.", map[string]interface{}{"nome": clube.Nome})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if clube.ID == "" {
		clube.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	clube.DataCadastro = now
	clube.UpdatedAt = now

	endereco, contato, licenca, err := marshalDocs(clube)
	if err != nil {
		return domain.Clube{}, apperror.NewInternalError("Falha ao serializar dados do clube.", err)
	}

	query := `
        INSERT INTO clubes (id, nome, cnpj, certificado_registro, endereco, contato, licenca,
                            ativo, data_cadastro, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = r.DB.ExecContext(ctxTimeout, query,
		clube.ID, clube.Nome, clube.CNPJ, clube.CertificadoRegistro,
		endereco, contato, licenca, clube.Ativo, clube.DataCadastro, clube.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return domain.Clube{}, apperror.NewConflictError(fmt.Sprintf("Já existe um clube com o CNPJ %s.", clube.CNPJ))
		}
		r.logger.Error("Falha ao inserir clube no DB.", err)
		return domain.Clube{}, apperror.NewDBError("Falha ao criar clube", err)
	}

	r.logger.Info("Clube criado com sucesso.", map[string]interface{}{"id": clube.ID, "nome": clube.Nome})
	return clube, nil
}

// FindByID busca um clube pelo ID.
func (r *ClubeRepository) FindByID(ctx context.Context, id string) (domain.Clube, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + clubeColumns + ` FROM clubes WHERE id = $1`
	clube, err := scanClube(r.DB.QueryRowContext(ctxTimeout, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Clube{}, apperror.NewNotFoundError(fmt.Sprintf("Clube com ID %s não encontrado.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar clube no DB.", err)
		return domain.Clube{}, apperror.NewDBError("Falha ao buscar clube", err)
	}

	return clube, nil
}

// FindAll lista todos os clubes (rota exclusiva de system_admin).
func (r *ClubeRepository) FindAll(ctx context.Context) ([]domain.Clube, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + clubeColumns + ` FROM clubes ORDER BY nome`
	rows, err := r.DB.QueryContext(ctxTimeout, query)
	if err != nil {
		r.logger.Error("Falha ao executar FindAll de clubes.", err)
		return nil, apperror.NewDBError("Falha ao listar clubes", err)
	}
	defer rows.Close()

	var clubes []domain.Clube
	for rows.Next() {
		clube, err := scanClube(rows)
		if err != nil {
			return nil, apperror.NewDBError("Falha ao mapear clubes do DB", err)
		}
		clubes = append(clubes, clube)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Erro após iteração de clubes", err)
	}

	return clubes, nil
}

// IsAtivo informa se o clube existe e está ativo. O flag bloqueia o login
// dos membros mesmo com cadastro individual ativo.
func (r *ClubeRepository) IsAtivo(ctx context.Context, id string) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var ativo bool
	err := r.DB.QueryRowContext(ctxTimeout,
		`SELECT ativo FROM clubes WHERE id = $1`, id).Scan(&ativo)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, apperror.NewDBError("Falha ao verificar status do clube", err)
	}
	return ativo, nil
}

// Update atualiza um clube existente.
func (r *ClubeRepository) Update(ctx context.Context, clube domain.Clube) (domain.Clube, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	clube.UpdatedAt = time.Now().UTC()

	endereco, contato, licenca, err := marshalDocs(clube)
	if err != nil {
		return domain.Clube{}, apperror.NewInternalError("Falha ao serializar dados do clube.", err)
	}

	query := `
        UPDATE clubes
        SET nome = $1, cnpj = $2, certificado_registro = $3, endereco = $4,
            contato = $5, licenca = $6, ativo = $7, updated_at = $8
        WHERE id = $9`

	result, err := r.DB.ExecContext(ctxTimeout, query,
		clube.Nome, clube.CNPJ, clube.CertificadoRegistro,
		endereco, contato, licenca, clube.Ativo, clube.UpdatedAt, clube.ID,
	)
	if err != nil {
		r.logger.Error("Falha ao atualizar clube no DB.", err)
		return domain.Clube{}, apperror.NewDBError("Falha ao atualizar clube", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return domain.Clube{}, apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return domain.Clube{}, apperror.NewNotFoundError(fmt.Sprintf("Clube com ID %s não encontrado para atualização.", clube.ID))
	}

	return clube, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanClube(row scanner) (domain.Clube, error) {
	var clube domain.Clube
	var certificado sql.NullString
	var endereco, contato, licenca []byte

	err := row.Scan(
		&clube.ID, &clube.Nome, &clube.CNPJ, &certificado,
		&endereco, &contato, &licenca,
		&clube.Ativo, &clube.DataCadastro, &clube.UpdatedAt,
	)
	if err != nil {
		return domain.Clube{}, err
	}

	clube.CertificadoRegistro = certificado.String
	if err := json.Unmarshal(endereco, &clube.Endereco); err != nil {
		return domain.Clube{}, fmt.Errorf("endereco malformado: %w", err)
	}
	if err := json.Unmarshal(contato, &clube.Contato); err != nil {
		return domain.Clube{}, fmt.Errorf("contato malformado: %w", err)
	}
	if err := json.Unmarshal(licenca, &clube.Licenca); err != nil {
		return domain.Clube{}, fmt.Errorf("licenca malformada: %w", err)
	}

	return clube, nil
}

func marshalDocs(clube domain.Clube) (endereco, contato, licenca []byte, err error) {
	if endereco, err = json.Marshal(clube.Endereco); err != nil {
		return nil, nil, nil, err
	}
	if contato, err = json.Marshal(clube.Contato); err != nil {
		return nil, nil, nil, err
	}
	if licenca, err = json.Marshal(clube.Licenca); err != nil {
		return nil, nil, nil, err
	}
	return endereco, contato, licenca, nil
}
