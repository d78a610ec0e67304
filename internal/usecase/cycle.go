package usecase

import (
	"context"
	"fmt"
	"time"

	"ProposalBoard/internal/domain"
	"ProposalBoard/internal/ports"
)

// CycleClock reports how long the current governance event of a space lasts.
type CycleClock struct {
	spaces ports.SpaceSource
	now    func() time.Time
}

// NewCycleClock builds the countdown use case; now defaults to time.Now.
func NewCycleClock(spaces ports.SpaceSource, now func() time.Time) *CycleClock {
	if now == nil {
		now = time.Now
	}
	return &CycleClock{spaces: spaces, now: now}
}

// Countdown loads the space and computes the remaining time of its current event.
func (c *CycleClock) Countdown(ctx context.Context, space string) (domain.SpaceInfo, domain.Countdown, error) {
	if c.spaces == nil {
		return domain.SpaceInfo{}, domain.Countdown{}, fmt.Errorf("space source is not configured")
	}

	info, err := c.spaces.SpaceInfo(ctx, space)
	if err != nil {
		return domain.SpaceInfo{}, domain.Countdown{}, fmt.Errorf("load space %s: %w", space, err)
	}

	return info, info.Countdown(c.now()), nil
}
