package profiles

import (
	"context"

	"github.com/lojabox/lojabox/internal/server/models"
)

// Repository is the record-store contract the profile workflow depends on.
// Lookups are always keyed by user identifier.
type Repository interface {
	// GetByUserID returns the profile for userID, or common.ErrorNotFound
	// when no row exists — the only expected-absence signal in this store.
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)

	// Create inserts a new profile row. The store assigns the record ID and
	// the initial version; the returned profile is authoritative.
	Create(ctx context.Context, profile *models.Profile) (*models.Profile, error)

	// Update persists nome and email (and, when avatarURL is non-nil, the
	// avatar reference) onto the row for userID, guarded by the expected
	// version. It returns the updated row as stored.
	Update(ctx context.Context, userID string, expectedVersion int64, name, email string, avatarURL *string) (*models.Profile, error)
}
