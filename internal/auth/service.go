package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrNoSecret     = errors.New("token secret is empty")
)

const (
	issuer = "arcade"

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	refreshExpiry = 30 * 24 * time.Hour
)

type Service struct {
	jwtSecret []byte
	jwtExpiry time.Duration
	now       func() time.Time
}

// Claims are the registered claims plus the token type, so a refresh token
// is never accepted where an access token is expected.
type Claims struct {
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func NewService(jwtSecret []byte, jwtExpiry time.Duration) (*Service, error) {
	if len(jwtSecret) == 0 {
		return nil, ErrNoSecret
	}
	return &Service{
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
		now:       time.Now,
	}, nil
}

// IssueTokenPair signs a fresh access and refresh token for subject.
func (s *Service) IssueTokenPair(subject string) (*TokenPair, error) {
	if subject == "" {
		return nil, fmt.Errorf("subject is required")
	}
	now := s.now()

	accessExpiry := now.Add(s.jwtExpiry)
	accessToken, err := s.sign(subject, tokenTypeAccess, now, accessExpiry)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := s.sign(subject, tokenTypeRefresh, now, now.Add(refreshExpiry))
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    jwt.NewNumericDate(accessExpiry).Time,
	}, nil
}

// RefreshToken trades a valid refresh token for a new pair.
func (s *Service) RefreshToken(refreshToken string) (*TokenPair, error) {
	claims, err := s.parse(refreshToken, tokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	return s.IssueTokenPair(claims.Subject)
}

// ValidateToken checks an access token and returns its operator.
func (s *Service) ValidateToken(tokenString string) (*Operator, error) {
	claims, err := s.parse(tokenString, tokenTypeAccess)
	if err != nil {
		return nil, err
	}
	return &Operator{Subject: claims.Subject, TokenID: claims.ID}, nil
}

func (s *Service) sign(subject, tokenType string, issuedAt, expiresAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	return token.SignedString(s.jwtSecret)
}

func (s *Service) parse(tokenString, tokenType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != tokenType || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
