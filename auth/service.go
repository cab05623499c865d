package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-pkgz/auth/v2/token"
	"github.com/golang-jwt/jwt/v5"
	"github.com/krishkalaria12/snap-album/access"
	"github.com/krishkalaria12/snap-album/apperr"
	"github.com/krishkalaria12/snap-album/config"
	"github.com/krishkalaria12/snap-album/repository"
	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost = 10
	issuer     = "snap-album"
)

var (
	errInvalidCredentials = apperr.Unauthorized("Invalid username or password")
	errInvalidToken       = apperr.Unauthorized("Unauthorized")
)

// Service is the credential store: it checks passwords against the users
// table and issues bearer tokens for clients that do not keep a cookie.
type Service struct {
	users    *repository.UserRepository
	tokens   *token.Service
	tokenTTL time.Duration
	audience string
}

func NewService(users *repository.UserRepository, cfg *config.Settings) *Service {
	secret := cfg.JWTSecret
	tokens := token.NewService(token.Opts{
		SecretReader: token.SecretFunc(func(string) (string, error) {
			return secret, nil
		}),
		TokenDuration:  cfg.TokenTTL,
		CookieDuration: cfg.TokenTTL,
		Issuer:         issuer,
		SecureCookies:  cfg.CookieSecure,
	})

	audience := cfg.AppURL
	if audience == "" {
		audience = issuer
	}

	return &Service{
		users:    users,
		tokens:   tokens,
		tokenTTL: cfg.TokenTTL,
		audience: audience,
	}
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(hashed), err
}

func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Authenticate returns the principal for a matching username and password.
// An unknown username is NotFound and a wrong password is Unauthorized;
// callers that face clients should not tell the two apart.
func (s *Service) Authenticate(ctx context.Context, username, password string) (access.Principal, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return access.Principal{}, err
	}

	if !checkPasswordHash(password, user.PasswordHash) {
		return access.Principal{}, errInvalidCredentials
	}

	return access.Principal{
		UserID:   user.UserID,
		Username: user.Username,
		Role:     access.ParseRole(user.Role),
	}, nil
}

// CreateUser hashes password and stores a plain user.
func (s *Service) CreateUser(ctx context.Context, username, password string) (uint, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return 0, apperr.Storage("hash password", err)
	}
	return s.users.Create(ctx, username, hash, access.RoleUser)
}

// BootstrapAdmin makes sure the configured admin account exists with the
// configured password.
func (s *Service) BootstrapAdmin(ctx context.Context, username, password string) (uint, error) {
	if username == "" || password == "" {
		return 0, apperr.Validation("Admin username and password must be provided")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return 0, apperr.Storage("hash password", err)
	}
	return s.users.Promote(ctx, username, hash)
}

// IssueToken signs a JWT carrying the principal.
func (s *Service) IssueToken(p access.Principal) (string, error) {
	now := time.Now()
	claims := token.Claims{
		User: &token.User{
			ID:   p.IDString(),
			Name: p.Username,
			Attributes: map[string]interface{}{
				"username": p.Username,
				"role":     string(p.Role),
			},
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			Subject:   p.IDString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-time.Minute)),
		},
	}

	tokenStr, err := s.tokens.Token(claims)
	if err != nil {
		return "", apperr.Storage("sign token", err)
	}
	return tokenStr, nil
}

// ParseToken validates tokenStr and rebuilds the principal it carries.
func (s *Service) ParseToken(tokenStr string) (access.Principal, error) {
	claims, err := s.tokens.Parse(tokenStr)
	if err != nil || claims.User == nil {
		return access.Principal{}, errInvalidToken
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Before(time.Now()) {
		return access.Principal{}, errInvalidToken
	}

	id, err := strconv.ParseUint(claims.User.ID, 10, 64)
	if err != nil || id == 0 {
		return access.Principal{}, errInvalidToken
	}

	return access.Principal{
		UserID:   uint(id),
		Username: claims.User.StrAttr("username"),
		Role:     access.ParseRole(claims.User.StrAttr("role")),
	}, nil
}

// IsInvalidCredentials reports whether err is a failed login, whatever the
// reason.
func IsInvalidCredentials(err error) bool {
	return errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrUnauthorized)
}
