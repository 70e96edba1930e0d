package users

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minimart-pos/minimart-pos/internal/rbac"
	"github.com/minimart-pos/minimart-pos/internal/shared"
)

// Repository persists users in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `user_id, username, password_hash, full_name, email, COALESCE(phone, ''), role, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	var role string
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.Email, &u.Phone,
		&role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, err
	}
	u.Role = rbac.Role(role)
	return u, nil
}

// Get fetches one user by id.
func (r *Repository) Get(ctx context.Context, id int64) (User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE user_id = $1`, id))
}

// GetByUsername fetches one user for login.
func (r *Repository) GetByUsername(ctx context.Context, username string) (User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

// List returns users newest first.
func (r *Repository) List(ctx context.Context, page, limit int) ([]User, int, error) {
	if limit <= 0 {
		limit = 10
	}
	if page < 1 {
		page = 1
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, u)
	}
	return list, total, rows.Err()
}

// Create inserts a user. Duplicate username or email maps to ErrConflict.
func (r *Repository) Create(ctx context.Context, u User) (User, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash, full_name, email, phone, role)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING user_id, created_at, updated_at`,
		u.Username, u.PasswordHash, u.FullName, u.Email, nullable(u.Phone), string(u.Role)).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return User{}, mapUnique(err)
	}
	u.IsActive = true
	return u, nil
}

// Update applies a typed partial update.
func (r *Repository) Update(ctx context.Context, id int64, u Update) error {
	set := []string{}
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, column+` = $`+strconv.Itoa(len(args)))
	}

	if u.FullName != nil {
		add(`full_name`, *u.FullName)
	}
	if u.Email != nil {
		add(`email`, *u.Email)
	}
	if u.Phone != nil {
		add(`phone`, nullable(*u.Phone))
	}
	if u.Role != nil {
		add(`role`, *u.Role)
	}
	if u.IsActive != nil {
		add(`is_active`, *u.IsActive)
	}
	if u.Password != nil {
		add(`password_hash`, *u.Password)
	}
	if len(set) == 0 {
		return nil
	}

	args = append(args, id)
	query := `UPDATE users SET `
	for i, part := range set {
		if i > 0 {
			query += ", "
		}
		query += part
	}
	query += `, updated_at = NOW() WHERE user_id = $` + strconv.Itoa(len(args))

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return mapUnique(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Deactivate soft-disables an account.
func (r *Repository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET is_active = FALSE, updated_at = NOW() WHERE user_id = $1 AND is_active = TRUE`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func mapUnique(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return shared.ErrConflict
	}
	return err
}
