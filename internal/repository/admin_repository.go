package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-portal/internal/domain"
)

const uniqueViolation = "23505"

// AdminRepository defines persistence access for domain administrators.
type AdminRepository interface {
	Create(ctx context.Context, admin *domain.Admin) error
	GetByID(ctx context.Context, d domain.Domain, id string) (*domain.Admin, error)
	GetByEmail(ctx context.Context, d domain.Domain, email string) (*domain.Admin, error)
}

type adminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository returns a Postgres-backed implementation.
func NewAdminRepository(pool *pgxpool.Pool) AdminRepository {
	return &adminRepository{pool: pool}
}

func (r *adminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	const query = `
        INSERT INTO admins (id, domain, email, name, password_hash, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		admin.ID,
		admin.Domain,
		admin.Email,
		admin.Name,
		admin.PasswordHash,
		admin.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}

func (r *adminRepository) GetByID(ctx context.Context, d domain.Domain, id string) (*domain.Admin, error) {
	const query = `
        SELECT id, domain, email, name, password_hash, created_at
        FROM admins WHERE domain=$1 AND id=$2`
	return r.fetchSingle(ctx, query, d, id)
}

func (r *adminRepository) GetByEmail(ctx context.Context, d domain.Domain, email string) (*domain.Admin, error) {
	const query = `
        SELECT id, domain, email, name, password_hash, created_at
        FROM admins WHERE domain=$1 AND email=$2`
	return r.fetchSingle(ctx, query, d, email)
}

func (r *adminRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Admin, error) {
	var admin domain.Admin
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&admin.ID,
		&admin.Domain,
		&admin.Email,
		&admin.Name,
		&admin.PasswordHash,
		&admin.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &admin, nil
}
