package repositories

import (
	"database/sql"
	"fmt"

	"uniauth/internal/models"
)

type UserRepository interface {
	Create(user *models.User) error
	GetByID(id int) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	// GetByUsernameOrEmail returns whichever account matches the username or
	// the email, username match first.
	GetByUsernameOrEmail(username, email string) (*models.User, error)
	UpdatePassword(email, passwordHash string) error
	// MarkEmailVerified flips email_verified only if it is currently false
	// and reports whether a row changed.
	MarkEmailVerified(email string) (bool, error)
}

type userRepository struct {
	q DBTX
}

func NewUserRepository(q DBTX) UserRepository {
	return &userRepository{q: q}
}

const userColumns = `id, username, email, password_hash, is_active, email_verified`

func (r *userRepository) Create(user *models.User) error {
	const q = `
		INSERT INTO users (username, email, password_hash, is_active, email_verified)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	if err := r.q.QueryRow(q,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.IsActive,
		user.EmailVerified,
	).Scan(&user.ID); err != nil {
		return fmt.Errorf("user create: %w", err)
	}
	return nil
}

func (r *userRepository) scanOne(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsActive, &u.EmailVerified)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("user scan: %w", err)
	}
	return u, nil
}

func (r *userRepository) GetByID(id int) (*models.User, error) {
	return r.scanOne(r.q.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *userRepository) GetByUsername(username string) (*models.User, error) {
	return r.scanOne(r.q.QueryRow(`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	return r.scanOne(r.q.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *userRepository) GetByUsernameOrEmail(username, email string) (*models.User, error) {
	const q = `
		SELECT ` + userColumns + `
		FROM users
		WHERE username = $1 OR email = $2
		ORDER BY (username = $1) DESC
		LIMIT 1
	`
	return r.scanOne(r.q.QueryRow(q, username, email))
}

func (r *userRepository) UpdatePassword(email, passwordHash string) error {
	res, err := r.q.Exec(`UPDATE users SET password_hash = $1 WHERE email = $2`, passwordHash, email)
	if err != nil {
		return fmt.Errorf("user update password: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("user update password: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *userRepository) MarkEmailVerified(email string) (bool, error) {
	res, err := r.q.Exec(
		`UPDATE users SET email_verified = TRUE WHERE email = $1 AND email_verified = FALSE`,
		email,
	)
	if err != nil {
		return false, fmt.Errorf("user mark verified: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("user mark verified: %w", err)
	}
	return n > 0, nil
}
