package identity

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/careline/complaint-portal/internal/domain"
	"github.com/careline/complaint-portal/internal/repository"
	apperrors "github.com/careline/complaint-portal/pkg/util/errorutil"
)

// Resolver turns an authenticated caller reference into a Principal.
type Resolver struct {
	accounts repository.AccountRepository
}

// NewResolver builds the resolver.
func NewResolver(accounts repository.AccountRepository) *Resolver {
	return &Resolver{accounts: accounts}
}

// Resolve looks up the caller's account and builds the request Principal.
// The account's email may be absent; enough identity is returned for the
// admin bridge to perform its own fallback.
func (r *Resolver) Resolve(ctx context.Context, callerRef string) (*domain.Principal, error) {
	if callerRef == "" {
		return nil, apperrors.NewUnauthenticated("missing caller reference")
	}
	account, err := r.accounts.GetByID(ctx, callerRef)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthenticated("no account for caller")
		}
		return nil, apperrors.MapError(err)
	}
	return &domain.Principal{
		ID:            account.ID,
		Role:          account.Role,
		HomeUnitID:    account.UnitID,
		Email:         account.Email,
		LinkedAdminID: account.LinkedAdminID,
	}, nil
}
