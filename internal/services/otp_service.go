package services

import (
	"errors"
	"log"
	"time"

	"uniauth/internal/models"
	"uniauth/internal/repositories"
	"uniauth/internal/utils"
)

// OtpService issues, verifies and sweeps one-time codes. One unconsumed,
// unexpired code is live per (email, type) slot at any moment.
type OtpService interface {
	// Issue creates a fresh code for the slot and returns it in plaintext for
	// out-of-band delivery. Prior unconsumed codes of the slot are invalidated.
	Issue(email string, otpType models.OtpType) (string, error)
	// Send is Issue plus email delivery of the plain code.
	Send(email string, otpType models.OtpType) error
	// Verify consumes the live code on match. Distinct failures:
	// ErrOtpNotFound, ErrCodeExpired, ErrCodeInvalid.
	Verify(email, code string, otpType models.OtpType) error
	// CleanupExpired deletes every record past expiry, consumed or not.
	CleanupExpired() (int64, error)
}

type OtpConfig struct {
	Expiration      time.Duration
	MaxAttempts     int
	RateLimitWindow time.Duration
}

type otpService struct {
	store  repositories.Store
	hasher PasswordHasher
	emails EmailService
	cfg    OtpConfig

	// injectable for tests
	now      func() time.Time
	generate func() (string, error)
}

func NewOtpService(store repositories.Store, hasher PasswordHasher, emails EmailService, cfg OtpConfig) OtpService {
	return &otpService{
		store:    store,
		hasher:   hasher,
		emails:   emails,
		cfg:      cfg,
		now:      time.Now,
		generate: utils.RandomCode,
	}
}

func (s *otpService) Issue(email string, otpType models.OtpType) (string, error) {
	var code string
	err := s.store.InTx(func(r repositories.Repos) error {
		now := s.now()

		// issuance budget over the trailing window, rows in any state count
		recent, err := r.Otps.CountRecent(email, otpType, now.Add(-s.cfg.RateLimitWindow))
		if err != nil {
			return err
		}
		if recent >= s.cfg.MaxAttempts {
			return ErrRateLimited
		}

		// at most one live code per slot
		if err := r.Otps.InvalidateActive(email, otpType); err != nil {
			return err
		}

		code, err = s.generate()
		if err != nil {
			return err
		}
		hash, err := s.hasher.Hash(code)
		if err != nil {
			return err
		}
		return r.Otps.Create(&models.Otp{
			Email:     email,
			CodeHash:  hash,
			Type:      otpType,
			ExpiresAt: now.Add(s.cfg.Expiration),
			CreatedAt: now,
		})
	})
	if err != nil {
		return "", err
	}
	return code, nil
}

func (s *otpService) Send(email string, otpType models.OtpType) error {
	code, err := s.Issue(email, otpType)
	if err != nil {
		return err
	}
	// the code row is committed; delivery failure must not undo it
	if s.emails != nil {
		if err := s.emails.SendOtpEmail(email, code, otpType); err != nil {
			log.Printf("[otp][send] email delivery failed: email=%s type=%s err=%v", email, otpType, err)
		}
	}
	return nil
}

func (s *otpService) Verify(email, code string, otpType models.OtpType) error {
	var mismatchID int64
	err := s.store.InTx(func(r repositories.Repos) error {
		otp, err := r.Otps.LatestActive(email, otpType)
		if err != nil {
			return err
		}
		if otp == nil {
			return ErrOtpNotFound
		}
		if s.now().After(otp.ExpiresAt) {
			return ErrCodeExpired
		}
		if !s.hasher.Verify(code, otp.CodeHash) {
			mismatchID = otp.ID
			return ErrCodeInvalid
		}
		// consume; a second verify finds no live record
		return r.Otps.InvalidateActive(email, otpType)
	})
	if errors.Is(err, ErrCodeInvalid) && mismatchID != 0 {
		// bookkeeping outside the rolled-back transaction
		if _, incErr := s.store.Repos().Otps.IncrementAttempts(mismatchID); incErr != nil {
			log.Printf("[otp][verify] attempt count update failed: id=%d err=%v", mismatchID, incErr)
		}
	}
	return err
}

func (s *otpService) CleanupExpired() (int64, error) {
	return s.store.Repos().Otps.DeleteExpired(s.now())
}
