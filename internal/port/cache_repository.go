package port

import (
	"context"

	"github.com/buensabor/storefront/internal/core/domain"
)

type CacheRepository interface {
	// SetIdempotency sets a key guarding an in-flight submission, returns false if already set
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// ReleaseIdempotency removes the guard so the session can submit again
	ReleaseIdempotency(ctx context.Context, key string) error

	// GetProfile reads the prefill profile for a session, nil if none stored
	GetProfile(ctx context.Context, sessionKey string) (*domain.Profile, error)

	// SaveProfile stores the prefill profile for a session
	SaveProfile(ctx context.Context, sessionKey string, profile domain.Profile) error
}
