package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/lojabox/lojabox/internal/common"
	"github.com/lojabox/lojabox/internal/logging"
	"github.com/lojabox/lojabox/internal/server/models"
	"github.com/lojabox/lojabox/internal/server/repositories/repomanager"
	"github.com/lojabox/lojabox/internal/server/storage"
)

// defaultDisplayName is used when a sensible name cannot be derived from
// the session's email address.
const defaultDisplayName = "Usuário"

// ImageUpload is a new avatar image submitted alongside a profile update.
type ImageUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// ProfileFields are the editable text attributes of a profile.
type ProfileFields struct {
	Name  string
	Email string
}

// ProfileService implements the profile workflow: read-or-create on first
// access, and versioned updates with an optional avatar swap.
type ProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	objects     storage.ObjectStore
	logger      logging.Logger
}

func NewProfileService(db *sql.DB, m repomanager.RepositoryManager, objects storage.ObjectStore, logger logging.Logger) *ProfileService {
	return &ProfileService{
		db:          db,
		repomanager: m,
		objects:     objects,
		logger:      logger,
	}
}

// EnsureProfile returns the profile for the session's user, creating a
// default one on first access. The default name is the local part of the
// session email, falling back to defaultDisplayName when that is empty.
func (s *ProfileService) EnsureProfile(ctx context.Context, session models.Session) (*models.Profile, error) {
	repo := s.repomanager.Profiles(s.db)

	profile, err := repo.GetByUserID(ctx, session.UserID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error fetching profile: %w", err)
	}

	created, err := repo.Create(ctx, &models.Profile{
		UserID: session.UserID,
		Name:   displayNameFromEmail(session.Email),
		Email:  session.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating profile: %w", err)
	}

	s.logger.Info(ctx, "created default profile", "user_id", session.UserID)
	return created, nil
}

// UpdateProfile persists the given fields onto the session user's profile,
// guarded by expectedVersion. When newImage is non-nil the new avatar is
// uploaded first, then the record is updated, and only then is the previous
// avatar object removed; a failed removal is logged and otherwise ignored,
// so the record never references a missing object.
//
// A concurrent update surfaces as common.ErrVersionConflict and leaves the
// record untouched (the freshly uploaded object is orphaned, never linked).
func (s *ProfileService) UpdateProfile(ctx context.Context, session models.Session, expectedVersion int64, fields ProfileFields, newImage *ImageUpload) (*models.Profile, error) {
	repo := s.repomanager.Profiles(s.db)

	current, err := repo.GetByUserID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("error fetching profile: %w", err)
	}

	var avatarURL *string
	if newImage != nil {
		key := avatarStorageKey(session.UserID, newImage.Filename)
		if err := s.objects.Upload(ctx, key, newImage.Body, newImage.ContentType); err != nil {
			return nil, fmt.Errorf("error uploading avatar: %w", err)
		}
		url := s.objects.PublicURL(key)
		avatarURL = &url
	}

	updated, err := repo.Update(ctx, session.UserID, expectedVersion, fields.Name, fields.Email, avatarURL)
	if err != nil {
		if errors.Is(err, common.ErrVersionConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("error updating profile: %w", err)
	}

	if newImage != nil && current.AvatarURL != "" {
		if oldKey, ok := avatarKeyFromURL(session.UserID, current.AvatarURL); ok {
			if err := s.objects.Remove(ctx, []string{oldKey}); err != nil {
				s.logger.Warn(ctx, "failed to remove previous avatar",
					"user_id", session.UserID, "key", oldKey, "error", err)
			}
		}
	}

	return updated, nil
}

func displayNameFromEmail(email string) string {
	local := strings.SplitN(email, "@", 2)[0]
	if local == "" {
		return defaultDisplayName
	}
	return local
}

// avatarStorageKey picks a fresh, collision-free object key for a user's
// avatar, keeping the original file extension.
func avatarStorageKey(userID, filename string) string {
	return fmt.Sprintf("profiles/%s/%s%s", userID, uuid.New(), filepath.Ext(filename))
}

// avatarKeyFromURL rebuilds the object key of a stored avatar from its
// public URL. Only the trailing path segment is trusted; the key is always
// reconstructed under the user's own prefix.
func avatarKeyFromURL(userID, rawURL string) (string, bool) {
	trimmed := strings.TrimRight(rawURL, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 || idx == len(trimmed)-1 {
		return "", false
	}
	return fmt.Sprintf("profiles/%s/%s", userID, trimmed[idx+1:]), true
}
