package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"uniauth/internal/models"
)

// Claims travel inside both token classes; sub duplicates UserID as a string.
type Claims struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService mints and checks the access/refresh token pair. The two
// classes are signed with independent secrets, so a refresh token never
// passes access verification and vice versa.
type TokenService interface {
	GeneratePair(user *models.User) (*models.TokenPair, error)
	ParseAccess(token string) (*Claims, error)
	ParseRefresh(token string) (*Claims, error)
}

type tokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenService refuses empty or shared secrets: one key for both token
// classes would let a refresh token act as an access token.
func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) (TokenService, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("token service: empty signing secret")
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("token service: access and refresh secrets must differ")
	}
	return &tokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

func (s *tokenService) sign(user *models.User, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *tokenService) GeneratePair(user *models.User) (*models.TokenPair, error) {
	access, err := s.sign(user, s.accessSecret, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(user, s.refreshSecret, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *tokenService) parse(tokenStr string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		// only HMAC; anything else is a forged header
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrUnauthorized
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Time.Before(time.Now()) {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

func (s *tokenService) ParseAccess(token string) (*Claims, error) {
	return s.parse(token, s.accessSecret)
}

func (s *tokenService) ParseRefresh(token string) (*Claims, error) {
	return s.parse(token, s.refreshSecret)
}
