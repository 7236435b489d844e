package driven

import (
	"context"

	"github.com/google/uuid"

	"github.com/logship/logsh/internal/core/domain"
)

// LogshipClient calls the bearer-authenticated identity endpoints.
type LogshipClient interface {
	// WhoAmI returns the user the token belongs to.
	WhoAmI(ctx context.Context, server, token string) (*domain.User, error)

	// Subscriptions lists the accounts the user can access.
	Subscriptions(ctx context.Context, server, token string, userID uuid.UUID) ([]domain.Subscription, error)
}
