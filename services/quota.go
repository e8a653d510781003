package services

import (
	"context"
	"fmt"

	"limitfree/repository"
	"limitfree/utils"
)

// guestQuota limits how many AI generations a guest may trigger.
// Registered users are never limited.
type guestQuota struct {
	repo  repository.QuotaRepository
	limit func() int
}

func (g guestQuota) applies(userID string) bool {
	return utils.IsGuest(userID) && g.repo != nil
}

// reserve takes one generation before the model is called. A reservation
// that ends up unused must be handed back with release.
func (g guestQuota) reserve(ctx context.Context, userID string) error {
	if !g.applies(userID) {
		return nil
	}
	if userID == "" {
		return fmt.Errorf("%w: guest user ID is required", ErrUnauthorized)
	}
	limit := g.limit()
	ok, err := g.repo.ReserveQuota(ctx, userID, limit)
	if err != nil {
		return fmt.Errorf("failed to reserve quota for %s: %w", userID, err)
	}
	if !ok {
		return fmt.Errorf("%w: all %d generations used", ErrQuotaExceeded, limit)
	}
	return nil
}

// release returns a reservation whose generation fell back to built-in content.
// It runs on a context detached from cancellation so an aborted request still
// gives the generation back.
func (g guestQuota) release(ctx context.Context, userID string) error {
	if !g.applies(userID) || userID == "" {
		return nil
	}
	if err := g.repo.ReleaseQuota(context.WithoutCancel(ctx), userID); err != nil {
		return fmt.Errorf("failed to release quota for %s: %w", userID, err)
	}
	return nil
}
