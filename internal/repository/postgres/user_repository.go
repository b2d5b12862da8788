package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"issue-tracker-service/internal/domain"
)

// UserRepository реализует domain.UserRepository для PostgreSQL.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository создаёт новый UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, email, full_name, hashed_password, is_active,
	    reset_code, reset_code_expires, created_at, updated_at`

func scanUser(row interface{ Scan(dest ...any) error }) (domain.User, error) {
	var u domain.User

	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.FullName, &u.HashedPassword, &u.IsActive,
		&u.ResetCode, &u.ResetCodeExpires, &u.CreatedAt, &u.UpdatedAt,
	)

	return u, err
}

// Create сохраняет нового пользователя и проставляет сгенерированный ID.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (username, email, full_name, hashed_password, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)
		 RETURNING id`,
		user.Username, user.Email, user.FullName, user.HashedPassword, user.IsActive, now,
	).Scan(&user.ID)

	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// GetByID возвращает пользователя по его идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	))

	if err == sql.ErrNoRows {
		return domain.User{}, domain.ErrNotFound
	}

	if err != nil {
		return domain.User{}, fmt.Errorf("select user: %w", err)
	}

	return u, nil
}

// GetByEmail возвращает пользователя по email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		email,
	))

	if err == sql.ErrNoRows {
		return domain.User{}, domain.ErrNotFound
	}

	if err != nil {
		return domain.User{}, fmt.Errorf("select user by email: %w", err)
	}

	return u, nil
}

// List возвращает пользователей с пагинацией.
func (r *UserRepository) List(ctx context.Context, skip, limit int) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+`
		   FROM users
		  ORDER BY id
		 OFFSET $1 LIMIT $2`,
		skip, limit,
	)

	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}

	defer func() {
		_ = rows.Close()
	}()

	var res []domain.User

	for rows.Next() {
		u, err := scanUser(rows)

		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}

		res = append(res, u)
	}

	return res, rows.Err()
}

// Exists проверяет, существует ли пользователь с таким идентификатором.
func (r *UserRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool

	err := r.db.QueryRowContext(ctx,
		`SELECT TRUE FROM users WHERE id = $1`,
		id,
	).Scan(&exists)

	if err == sql.ErrNoRows {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}

	return true, nil
}

// UsernameExists проверяет занятость имени пользователя.
func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool

	err := r.db.QueryRowContext(ctx,
		`SELECT TRUE FROM users WHERE username = $1`,
		username,
	).Scan(&exists)

	if err == sql.ErrNoRows {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("check username exists: %w", err)
	}

	return true, nil
}

// EmailExists проверяет занятость email.
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool

	err := r.db.QueryRowContext(ctx,
		`SELECT TRUE FROM users WHERE email = $1`,
		email,
	).Scan(&exists)

	if err == sql.ErrNoRows {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}

	return true, nil
}

// SetResetCode сохраняет код восстановления пароля и срок его действия.
func (r *UserRepository) SetResetCode(ctx context.Context, id int64, code string, expires time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users
		    SET reset_code = $2,
		        reset_code_expires = $3,
		        updated_at = $4
		  WHERE id = $1`,
		id, code, expires, time.Now().UTC(),
	)

	if err != nil {
		return fmt.Errorf("update reset code: %w", err)
	}

	affected, err := res.RowsAffected()

	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// UpdatePassword меняет хеш пароля и сбрасывает код восстановления.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, hashedPassword string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users
		    SET hashed_password = $2,
		        reset_code = NULL,
		        reset_code_expires = NULL,
		        updated_at = $3
		  WHERE id = $1`,
		id, hashedPassword, time.Now().UTC(),
	)

	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	affected, err := res.RowsAffected()

	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return domain.ErrNotFound
	}

	return nil
}
