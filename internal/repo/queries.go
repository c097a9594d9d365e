package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 3 * time.Second

// uniqueViolation é o SQLSTATE de violação de constraint de unicidade.
const uniqueViolation = "23505"

// Queries fornece acesso à tabela app_user através do pool.
type Queries struct {
	db *pgxpool.Pool
}

// New cria o repositório sobre o pool compartilhado.
func New(db *pgxpool.Pool) *Queries {
	return &Queries{db: db}
}

const usuarioColumns = `user_id, full_name, email, password_hash, role_code, is_active,
	document_id, phone, created_at, updated_at`

// GetUsuarioByEmail busca usuário pelo e-mail exato (case-sensitive).
func (q *Queries) GetUsuarioByEmail(ctx context.Context, email string) (Usuario, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	row := q.db.QueryRow(ctx, `
		SELECT `+usuarioColumns+`
		FROM app_user
		WHERE email = $1
	`, email)

	return scanUsuario(row)
}

// GetUsuarioByID busca usuário pelo identificador.
func (q *Queries) GetUsuarioByID(ctx context.Context, id uuid.UUID) (Usuario, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	row := q.db.QueryRow(ctx, `
		SELECT `+usuarioColumns+`
		FROM app_user
		WHERE user_id = $1
	`, id)

	return scanUsuario(row)
}

// InsertUsuario cadastra novo usuário. Violação da unicidade de e-mail
// vira ErrEmailDuplicado, inclusive na corrida entre checagem e insert.
func (q *Queries) InsertUsuario(ctx context.Context, arg InsertUsuarioParams) (Usuario, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	row := q.db.QueryRow(ctx, `
		INSERT INTO app_user (user_id, full_name, email, password_hash, role_code)
		VALUES (gen_random_uuid(), $1, $2, $3, $4)
		RETURNING `+usuarioColumns+`
	`, arg.NomeCompleto, arg.Email, arg.SenhaHash, arg.RoleCode)

	user, err := scanUsuario(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Usuario{}, ErrEmailDuplicado
		}
		return Usuario{}, err
	}

	return user, nil
}

func scanUsuario(row pgx.Row) (Usuario, error) {
	var u Usuario
	err := row.Scan(
		&u.ID,
		&u.NomeCompleto,
		&u.Email,
		&u.SenhaHash,
		&u.RoleCode,
		&u.Ativo,
		&u.DocumentoID,
		&u.Telefone,
		&u.CriadoEm,
		&u.AtualizadoEm,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Usuario{}, ErrNotFound
		}
		return Usuario{}, err
	}
	return u, nil
}
