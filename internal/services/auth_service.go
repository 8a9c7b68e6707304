package services

import (
	"log"
	"strings"

	"uniauth/internal/models"
	"uniauth/internal/repositories"
)

// AuthService runs the account lifecycle: registration, email verification,
// password recovery and the login/refresh token flows. Every mutating
// operation is one transaction; the OTP engine keeps its own sub-transaction
// inside it.
type AuthService interface {
	Register(username, password, email string) (*models.User, error)
	VerifyEmail(email, code string) error
	ForgotPassword(email string) error
	ResetPassword(email, code, newPassword string) error
	// ValidateCredentials is the read-only credential check run before Login.
	// It fails closed on unknown users and on hash mismatch, and distinctly
	// with ErrNotVerified when the account cannot log in yet.
	ValidateCredentials(username, password string) (*models.User, error)
	Login(user *models.User) (*models.TokenPair, error)
	// RefreshTokens re-loads the account (the refresh token signature was
	// already checked at the boundary) and mints a fresh pair.
	RefreshTokens(userID int) (*models.TokenPair, error)
}

type authService struct {
	store  repositories.Store
	otps   OtpService
	tokens TokenService
	hasher PasswordHasher
	emails EmailService
	domain string // allowed email domain, e.g. "unimar.edu.ve"
}

func NewAuthService(
	store repositories.Store,
	otps OtpService,
	tokens TokenService,
	hasher PasswordHasher,
	emails EmailService,
	allowedDomain string,
) AuthService {
	return &authService{
		store:  store,
		otps:   otps,
		tokens: tokens,
		hasher: hasher,
		emails: emails,
		domain: allowedDomain,
	}
}

func (s *authService) validateEmail(email string) error {
	if !strings.HasSuffix(email, "@"+s.domain) {
		return ErrInvalidEmailDomain
	}
	return nil
}

// notify sends the plain code after the surrounding state is committed.
// Delivery failure never fails the caller's operation.
func (s *authService) notify(email, code string, otpType models.OtpType) {
	if s.emails == nil {
		return
	}
	if err := s.emails.SendOtpEmail(email, code, otpType); err != nil {
		log.Printf("[auth][notify] otp email failed: email=%s type=%s err=%v", email, otpType, err)
	}
}

func (s *authService) Register(username, password, email string) (*models.User, error) {
	var (
		user *models.User
		code string
	)
	err := s.store.InTx(func(r repositories.Repos) error {
		if err := s.validateEmail(email); err != nil {
			return err
		}

		existing, err := r.Users.GetByUsernameOrEmail(username, email)
		if err != nil {
			return err
		}
		if existing != nil {
			switch {
			case existing.Username == username:
				return ErrUsernameTaken
			case existing.Email == email:
				return ErrEmailTaken
			default:
				return ErrUserExists
			}
		}

		hash, err := s.hasher.Hash(password)
		if err != nil {
			return err
		}
		user = &models.User{
			Username:      username,
			Email:         email,
			PasswordHash:  hash,
			IsActive:      true,
			EmailVerified: false,
		}
		if err := r.Users.Create(user); err != nil {
			return err
		}

		// the engine commits its own sub-transaction; if it fails the
		// account insert above rolls back with the rest
		code, err = s.otps.Issue(email, models.OtpVerification)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notify(email, code, models.OtpVerification)

	log.Printf("[auth][register] ok user_id=%d username=%s", user.ID, user.Username)
	user.PasswordHash = ""
	return user, nil
}

func (s *authService) VerifyEmail(email, code string) error {
	err := s.store.InTx(func(r repositories.Repos) error {
		if err := s.validateEmail(email); err != nil {
			return err
		}
		user, err := r.Users.GetByEmail(email)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}

		if err := s.otps.Verify(email, code, models.OtpVerification); err != nil {
			return err
		}

		flipped, err := r.Users.MarkEmailVerified(email)
		if err != nil {
			return err
		}
		if !flipped {
			// already verified earlier; nothing to undo
			log.Printf("[auth][verify] email already verified: %s", email)
		}
		return nil
	})
	if err == nil {
		log.Printf("[auth][verify] ok email=%s", email)
	}
	return err
}

func (s *authService) ForgotPassword(email string) error {
	var code string
	err := s.store.InTx(func(r repositories.Repos) error {
		if err := s.validateEmail(email); err != nil {
			return err
		}
		user, err := r.Users.GetByEmail(email)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}
		code, err = s.otps.Issue(email, models.OtpPasswordChange)
		return err
	})
	if err != nil {
		return err
	}

	s.notify(email, code, models.OtpPasswordChange)
	log.Printf("[auth][forgot] code issued email=%s", email)
	return nil
}

func (s *authService) ResetPassword(email, code, newPassword string) error {
	err := s.store.InTx(func(r repositories.Repos) error {
		if err := s.validateEmail(email); err != nil {
			return err
		}
		user, err := r.Users.GetByEmail(email)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}

		if err := s.otps.Verify(email, code, models.OtpPasswordChange); err != nil {
			return err
		}

		hash, err := s.hasher.Hash(newPassword)
		if err != nil {
			return err
		}
		return r.Users.UpdatePassword(email, hash)
	})
	if err == nil {
		log.Printf("[auth][reset] password updated email=%s", email)
	}
	return err
}

func (s *authService) ValidateCredentials(username, password string) (*models.User, error) {
	user, err := s.store.Repos().Users.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive || !user.EmailVerified {
		return nil, ErrNotVerified
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *authService) Login(user *models.User) (*models.TokenPair, error) {
	pair, err := s.tokens.GeneratePair(user)
	if err != nil {
		return nil, err
	}
	log.Printf("[auth][login] ok user_id=%d", user.ID)
	return pair, nil
}

func (s *authService) RefreshTokens(userID int) (*models.TokenPair, error) {
	user, err := s.store.Repos().Users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// deleted or disabled since the token was minted
		return nil, ErrUnauthorized
	}
	return s.tokens.GeneratePair(user)
}
