package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"doccompare/internal/config"
	"doccompare/internal/domain"
)

const accessAudience = "access"

// Claims represents the JWT claims of an API client.
type Claims struct {
	jwt.RegisteredClaims
	ClientID string `json:"client_id"`
}

// Token is an issued access token.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// TokenInput is the DTO for client-credential token requests.
type TokenInput struct {
	ClientID     string `json:"client_id" binding:"required"`
	ClientSecret string `json:"client_secret" binding:"required"`
}

// AuthService defines the authentication contract.
type AuthService interface {
	IssueToken(ctx context.Context, input TokenInput) (*Token, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type authService struct {
	clients map[string]string
	cfg     config.JWTConfig
	now     func() time.Time
}

// dummyHash keeps unknown client IDs on the same bcrypt cost as known ones.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("doccompare-unknown-client"), bcrypt.DefaultCost)

// NewAuthService creates a new AuthService implementation.
func NewAuthService(auth config.AuthConfig, cfg config.JWTConfig) AuthService {
	return &authService{
		clients: auth.Clients,
		cfg:     cfg,
		now:     time.Now,
	}
}

func (s *authService) IssueToken(_ context.Context, input TokenInput) (*Token, error) {
	hash, known := s.clients[input.ClientID]
	if !known {
		hash = string(dummyHash)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(input.ClientSecret)); err != nil || !known {
		return nil, domain.ErrInvalidCredentials
	}

	now := s.now()
	expiry := now.Add(s.cfg.AccessTokenExpiry)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   input.ClientID,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{accessAudience},
		},
		ClientID: input.ClientID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}
	return &Token{AccessToken: signed, TokenType: "Bearer", ExpiresAt: expiry}, nil
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	aud, _ := claims.GetAudience()
	if !slices.Contains(aud, accessAudience) {
		return nil, domain.ErrUnauthorized
	}
	// Clients removed from config lose access even with a live token.
	if _, ok := s.clients[claims.ClientID]; !ok {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
