package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/careline/complaint-portal/internal/auth"
	"github.com/careline/complaint-portal/internal/config"
	"github.com/careline/complaint-portal/internal/domain"
	"github.com/careline/complaint-portal/internal/repository"
	apperrors "github.com/careline/complaint-portal/pkg/util/errorutil"
)

// AuthService issues bearer tokens for admin operators.
type AuthService struct {
	accounts repository.AccountRepository
	admins   repository.AdminRepository
	tokenMgr *auth.TokenManager
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, accounts repository.AccountRepository, admins repository.AdminRepository) *AuthService {
	return &AuthService{
		accounts: accounts,
		admins:   admins,
		tokenMgr: auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
	}
}

// TokenManager exposes the manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Login authenticates an admin and returns a token whose subject is the
// caller's account id, the reference the identity resolver works from.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Admin, string, time.Time, error) {
	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthenticated("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if !admin.Active {
		return nil, "", time.Time{}, apperrors.NewUnauthenticated("admin inactive")
	}
	if err := auth.ComparePassword(admin.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthenticated("invalid credentials")
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthenticated("no account for admin")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	token, expiresAt, err := s.tokenMgr.GenerateToken(account.ID, account.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return admin, token, expiresAt, nil
}
