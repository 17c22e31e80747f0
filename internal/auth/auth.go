package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/frahmantamala/timesheet-management/internal"
)

const (
	RoleAdmin     = "admin"
	RoleHR        = "hr"
	RoleDeveloper = "developer"
)

// User is the session identity attached to every authenticated request:
// who is calling, what they may do, and what their time is worth.
type User struct {
	ID         int64   `json:"id"`
	Email      string  `json:"email"`
	Name       string  `json:"name"`
	Role       string  `json:"role"`
	HourlyRate float64 `json:"hourly_rate"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanReview reports whether the user may approve/reject tasks and manage
// invoices and payment evidence.
func (u *User) CanReview() bool {
	return u.Role == RoleAdmin || u.Role == RoleHR
}

func (u *User) IsDeveloper() bool {
	return u.Role == RoleDeveloper
}

type ServiceAPI interface {
	Authenticate(dto LoginDTO) (AuthTokens, error)
	SignInWithOAuth(ctx context.Context, dto OAuthCallbackDTO) (AuthTokens, error)
	RefreshTokens(refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	GetSessionUser(userID int64) (*User, error)
	HashPassword(password string) (string, error)
}

type RepositoryAPI interface {
	GetPasswordForEmail(email string) (passwordHash string, userID int64, err error)
	GetSessionUser(userID int64) (*User, error)
	GetByEmail(email string) (*User, error)
	Create(email, name string) (*User, error)
}

type TokenGeneratorAPI interface {
	GenerateAccessToken(userID int64, email string) (token string, err error)
	GenerateRefreshToken(userID int64, email string) (token string, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

// IdentityProvider is the external OAuth collaborator: code exchange plus a
// userinfo lookup. The session trusts whatever identity it returns.
type IdentityProvider interface {
	Exchange(ctx context.Context, code string) (string, error)
	UserInfo(ctx context.Context, accessToken string) (*ProviderProfile, error)
}

type ProviderProfile struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Claims represents JWT token claims
type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrUserInactive       = errors.New("user is inactive")
	ErrUserNotFound       = errors.New("user not found")
)

// UserFromContext returns the session user placed by AuthMiddleware.
func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(internal.ContextUserKey).(*User)
	return u, ok
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, internal.ContextUserKey, u)
}
