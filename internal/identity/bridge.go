package identity

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/careline/complaint-portal/internal/domain"
	"github.com/careline/complaint-portal/internal/repository"
	apperrors "github.com/careline/complaint-portal/pkg/util/errorutil"
)

// AdminBridge resolves the operator-acting-as-admin record for a principal.
// Historical accounts may predate the linked-admin column, so resolution
// falls back from id linkage to a case-sensitive email match. All
// state-changing ticket actions must be attributable through this bridge.
type AdminBridge struct {
	accounts repository.AccountRepository
	admins   repository.AdminRepository
	logger   *zap.Logger
}

// NewAdminBridge builds the bridge.
func NewAdminBridge(accounts repository.AccountRepository, admins repository.AdminRepository, logger *zap.Logger) *AdminBridge {
	return &AdminBridge{accounts: accounts, admins: admins, logger: logger}
}

// ResolveActingAdmin returns the active admin the principal acts as.
// Resolution order, first match wins:
//  1. the account's linked admin id, when populated
//  2. the principal id treated directly as an admin id
//  3. an active admin matching the account email
//
// A match found through the email fallback is written back onto the account
// so later requests resolve through the link; that repair is best-effort and
// never fails the request.
func (b *AdminBridge) ResolveActingAdmin(ctx context.Context, principal *domain.Principal) (*domain.Admin, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthenticated("missing principal")
	}

	if principal.LinkedAdminID != nil {
		if admin, err := b.activeAdminByID(ctx, *principal.LinkedAdminID); err != nil {
			return nil, err
		} else if admin != nil {
			return admin, nil
		}
	}

	if admin, err := b.activeAdminByID(ctx, principal.ID); err != nil {
		return nil, err
	} else if admin != nil {
		return admin, nil
	}

	email := principal.Email
	if email == nil {
		account, err := b.accounts.GetByID(ctx, principal.ID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotAnActiveAdmin()
			}
			return nil, apperrors.MapError(err)
		}
		email = account.Email
	}
	if email == nil || *email == "" {
		return nil, apperrors.NewNotAnActiveAdmin()
	}

	admin, err := b.admins.GetByEmail(ctx, *email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotAnActiveAdmin()
		}
		return nil, apperrors.MapError(err)
	}
	if !admin.Active {
		return nil, apperrors.NewNotAnActiveAdmin()
	}

	if err := b.accounts.SetLinkedAdmin(ctx, principal.ID, admin.ID); err != nil {
		b.logger.Warn("failed to persist admin linkage",
			zap.String("account_id", principal.ID),
			zap.String("admin_id", admin.ID),
			zap.Error(err))
	}
	return admin, nil
}

func (b *AdminBridge) activeAdminByID(ctx context.Context, id string) (*domain.Admin, error) {
	admin, err := b.admins.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.MapError(err)
	}
	if !admin.Active {
		return nil, nil
	}
	return admin, nil
}
