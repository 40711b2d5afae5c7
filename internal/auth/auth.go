package auth

import (
	"time"

	"github.com/frahmantamala/crm-assistant/internal"
	"github.com/golang-jwt/jwt/v5"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Credentials is what the login flow needs from the user store.
type Credentials struct {
	UserID       int64
	PasswordHash string
	IsActive     bool
}

type RepositoryAPI interface {
	GetCredentialsByEmail(email string) (*Credentials, error)
	GetUserContext(userID int64) (*UserContext, error)
}

// TokenGenerator creates and validates signed session tokens.
type TokenGenerator interface {
	GenerateAccessToken(userID, sessionID string) (string, error)
	GenerateRefreshToken(userID, sessionID string) (string, error)
	ValidateToken(tokenString string, tokenType TokenType) (*Claims, error)
}

type ServiceAPI interface {
	Authenticate(dto LoginDTO) (AuthTokens, error)
	RefreshTokens(refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	GetUserContext(userID int64) (*UserContext, error)
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	SessionID    string `json:"session_id"`
}

// Claims represents JWT token claims. SessionID keys the assistant session store.
type Claims struct {
	UserID    string    `json:"user_id"`
	SessionID string    `json:"sid"`
	TokenType TokenType `json:"typ"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

var (
	ErrInvalidCredentials = internal.ErrInvalidCredentials
	ErrInvalidToken       = internal.ErrInvalidToken
	ErrTokenExpired       = internal.ErrTokenExpired
	ErrUserInactive       = internal.ErrUserInactive
)
