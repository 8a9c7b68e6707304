package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"uniauth/internal/models"
)

type OtpRepository interface {
	Create(otp *models.Otp) error
	// LatestActive returns the newest unconsumed record for the slot, nil if
	// none. Inside a transaction the row is locked until commit.
	LatestActive(email string, otpType models.OtpType) (*models.Otp, error)
	// CountRecent counts records created in the slot since the given time,
	// consumed or not. Drives the issuance rate limit.
	CountRecent(email string, otpType models.OtpType, since time.Time) (int, error)
	// InvalidateActive marks every unconsumed record of the slot as verified.
	InvalidateActive(email string, otpType models.OtpType) error
	IncrementAttempts(id int64) (int, error)
	// DeleteExpired removes records past their expiry regardless of
	// consumption state and returns how many went away.
	DeleteExpired(now time.Time) (int64, error)
}

type otpRepository struct {
	q DBTX
}

func NewOtpRepository(q DBTX) OtpRepository {
	return &otpRepository{q: q}
}

func (r *otpRepository) Create(otp *models.Otp) error {
	const q = `
		INSERT INTO otps (email, code_hash, type, expires_at, verified, attempts, created_at)
		VALUES ($1, $2, $3, $4, FALSE, 0, $5)
		RETURNING id
	`
	if err := r.q.QueryRow(q,
		otp.Email,
		otp.CodeHash,
		otp.Type,
		otp.ExpiresAt,
		otp.CreatedAt,
	).Scan(&otp.ID); err != nil {
		return fmt.Errorf("otp create: %w", err)
	}
	return nil
}

func (r *otpRepository) LatestActive(email string, otpType models.OtpType) (*models.Otp, error) {
	const q = `
		SELECT id, email, code_hash, type, expires_at, verified, attempts, created_at
		FROM otps
		WHERE email = $1 AND type = $2 AND verified = FALSE
		ORDER BY created_at DESC
		LIMIT 1
		FOR UPDATE
	`
	row := r.q.QueryRow(q, email, otpType)
	var o models.Otp
	err := row.Scan(&o.ID, &o.Email, &o.CodeHash, &o.Type, &o.ExpiresAt, &o.Verified, &o.Attempts, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("otp latest active: %w", err)
	}
	return &o, nil
}

func (r *otpRepository) CountRecent(email string, otpType models.OtpType, since time.Time) (int, error) {
	const q = `
		SELECT COUNT(*)
		FROM otps
		WHERE email = $1 AND type = $2 AND created_at > $3
	`
	var c int
	if err := r.q.QueryRow(q, email, otpType, since).Scan(&c); err != nil {
		return 0, fmt.Errorf("otp count recent: %w", err)
	}
	return c, nil
}

func (r *otpRepository) InvalidateActive(email string, otpType models.OtpType) error {
	const q = `
		UPDATE otps SET verified = TRUE
		WHERE email = $1 AND type = $2 AND verified = FALSE
	`
	if _, err := r.q.Exec(q, email, otpType); err != nil {
		return fmt.Errorf("otp invalidate: %w", err)
	}
	return nil
}

func (r *otpRepository) IncrementAttempts(id int64) (int, error) {
	const q = `
		UPDATE otps SET attempts = attempts + 1
		WHERE id = $1
		RETURNING attempts
	`
	var attempts int
	if err := r.q.QueryRow(q, id).Scan(&attempts); err != nil {
		return 0, fmt.Errorf("otp increment attempts: %w", err)
	}
	return attempts, nil
}

func (r *otpRepository) DeleteExpired(now time.Time) (int64, error) {
	res, err := r.q.Exec(`DELETE FROM otps WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("otp delete expired: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("otp delete expired: %w", err)
	}
	return n, nil
}
