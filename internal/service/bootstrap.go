package service

import (
	"context"
	"errors"
	"time"

	"clankertap/internal/domain"
	"clankertap/internal/logger"
	"clankertap/internal/platform"
	"clankertap/internal/repository"
)

const (
	defaultEnergy = 1000

	// Synthesized identities for detached modes, matching the original
	// client's demo/dev fallbacks.
	demoUserID  = 99999
	guestUserID = 12345
)

// PlayerStore is the slice of the player repository the bootstrap needs.
type PlayerStore interface {
	GetByTelegramID(ctx context.Context, telegramID int64) (*domain.PlayerProfile, error)
	Create(ctx context.Context, p *domain.PlayerProfile) error
	SetReferrer(ctx context.Context, telegramID, referrerID int64) (bool, error)
}

// BootstrapService reconciles a platform identity with a persisted player
// record: fetch-or-create, plus the one-time late referral binding. With no
// store configured it synthesizes in-memory profiles and never persists.
type BootstrapService struct {
	players PlayerStore // nil in demo mode
}

func NewBootstrapService(players PlayerStore) *BootstrapService {
	return &BootstrapService{players: players}
}

// Bootstrap resolves the profile for an authenticated platform identity.
// referralParam is the raw start/ref parameter from the launch context;
// invalid or self-referential values normalize to no referral.
func (s *BootstrapService) Bootstrap(ctx context.Context, ident *platform.User, referralParam string) (*domain.PlayerProfile, error) {
	if s.players == nil {
		return demoProfile(ident), nil
	}

	if ident == nil {
		return guestProfile(), nil
	}

	p, err := s.players.GetByTelegramID(ctx, ident.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return s.createProfile(ctx, ident, referralParam)
	}
	if err != nil {
		return nil, err
	}

	// Late referral binding: a profile created without a referrer still gets
	// attributed when a later visit carries a valid referral, exactly once.
	if p.ReferredBy == nil {
		if refID, ok := platform.ParseReferral(referralParam, p.TelegramID); ok {
			bound, err := s.players.SetReferrer(ctx, p.TelegramID, refID)
			if err != nil {
				logger.Error("late referral bind failed", "user", p.TelegramID, "error", err)
			} else if bound {
				p.ReferredBy = &refID
				logger.Info("late referral bound", "user", p.TelegramID, "referrer", refID)
			}
		}
	}

	return p, nil
}

func (s *BootstrapService) createProfile(ctx context.Context, ident *platform.User, referralParam string) (*domain.PlayerProfile, error) {
	p := &domain.PlayerProfile{
		TelegramID:    ident.ID,
		Username:      ident.Username,
		EnergyCurrent: defaultEnergy,
	}
	if refID, ok := platform.ParseReferral(referralParam, ident.ID); ok {
		p.ReferredBy = &refID
	}

	if err := s.players.Create(ctx, p); err != nil {
		return nil, err
	}
	logger.Info("player created", "user", p.TelegramID, "referrer", p.ReferredBy)
	return p, nil
}

func demoProfile(ident *platform.User) *domain.PlayerProfile {
	username := "Demo_Operator"
	id := int64(demoUserID)
	if ident != nil {
		username = ident.Username + " (Demo)"
		id = ident.ID
	}
	return &domain.PlayerProfile{
		TelegramID:    id,
		Username:      username,
		EnergyCurrent: defaultEnergy,
		LastActive:    time.Now().UTC(),
	}
}

func guestProfile() *domain.PlayerProfile {
	return &domain.PlayerProfile{
		TelegramID:    guestUserID,
		Username:      "DevUser",
		TotalSnips:    100,
		AllTimeSnips:  100,
		EnergyCurrent: defaultEnergy,
		LastActive:    time.Now().UTC(),
	}
}
