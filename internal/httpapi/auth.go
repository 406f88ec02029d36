package httpapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"shopmonitor/backend/internal/domain"
	"shopmonitor/backend/internal/store"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthManager issues and verifies HS256 access tokens for dashboard
// logins. Passwords are stored as bcrypt hashes; legacy plain-text rows
// from old seed data are upgraded in place during Bootstrap.
type AuthManager struct {
	repo     store.Repository
	secret   []byte
	tokenTTL time.Duration
	logger   *zap.Logger
}

func NewAuthManager(repo store.Repository, secret string, tokenTTL time.Duration, logger *zap.Logger) *AuthManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthManager{
		repo:     repo,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// Bootstrap walks the user table and bcrypt-hashes any password that is
// not already a hash. Seed rows carry plain-text dev passwords so both
// storage backends converge on hashed credentials at first startup.
func (a *AuthManager) Bootstrap(ctx context.Context) error {
	users, err := a.repo.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	for _, user := range users {
		if isBcryptHash(user.Password) {
			continue
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", user.Username, err)
		}
		if err := a.repo.UpdateUserPassword(ctx, user.Username, string(hashed)); err != nil {
			return fmt.Errorf("upgrade password for %s: %w", user.Username, err)
		}
		a.logger.Info("upgraded legacy password", zap.String("username", user.Username))
	}
	return nil
}

func (a *AuthManager) Login(ctx context.Context, username, password string) (*domain.LoginResponse, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	users, err := a.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	var account *domain.UserAccount
	for i := range users {
		if users[i].Username == username {
			account = &users[i]
			break
		}
	}
	if account == nil || !account.Active {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(a.tokenTTL)
	claims := jwt.MapClaims{
		"sub":  account.Username,
		"role": account.Role,
		"iat":  time.Now().Unix(),
		"exp":  expiresAt.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &domain.LoginResponse{
		Success:     true,
		Role:        account.Role,
		AccessToken: token,
		ExpiresAt:   expiresAt.UTC().Format(time.RFC3339),
	}, nil
}

func (a *AuthManager) VerifyToken(tokenString string) (*domain.Actor, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidCredentials
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidCredentials
	}
	username, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if username == "" {
		return nil, ErrInvalidCredentials
	}
	return &domain.Actor{Username: username, Role: role}, nil
}

func isBcryptHash(password string) bool {
	return strings.HasPrefix(password, "$2a$") ||
		strings.HasPrefix(password, "$2b$") ||
		strings.HasPrefix(password, "$2y$")
}
