package services

import (
	"context"

	"github.com/soundfoundry/releasedesk/internal/database"
)

// Well-known service names.
const (
	AuthServiceName    = "auth"
	ReleaseServiceName = "releases"
	AssetServiceName   = "assets"
	DraftServiceName   = "drafts"
)

// AuthService is the public API of the auth module. Role answers are
// authoritative: handlers resolve roles once per request and mutating
// endpoints re-check on every call.
type AuthService interface {
	// ValidateSession resolves a session token to its session and profile.
	ValidateSession(ctx context.Context, token string) (*database.Session, *database.Profile, error)

	// HasRole reports whether the user holds the given role.
	HasRole(ctx context.Context, userID, role string) (bool, error)

	// GetUserRoles returns all roles held by the user.
	GetUserRoles(ctx context.Context, userID string) ([]string, error)

	// CheckPassword verifies the user's password. Used by the takedown
	// confirmation step.
	CheckPassword(ctx context.Context, userID, password string) error
}

// ReleaseService is the public API of the release module.
type ReleaseService interface {
	// GetRelease returns one release with its tracks.
	GetRelease(ctx context.Context, id string) (*database.Release, error)

	// ApplyFields merges a partial field update into the release row,
	// last-write-wins field-by-field. Immutable fields (catalog number,
	// moderator-assigned UPC) are rejected.
	ApplyFields(ctx context.Context, releaseID string, fields map[string]interface{}) (*database.Release, error)

	// Submit moves a release into Moderation on behalf of its creator.
	Submit(ctx context.Context, releaseID, actorID string) (*database.Release, error)

	// AttachArtwork records the artwork (or thumbnail) URL of a release.
	AttachArtwork(ctx context.Context, releaseID, url string) error

	// AttachVideo records the video URL of a music-video release.
	AttachVideo(ctx context.Context, releaseID, url string) error

	// AddTrack appends a track created from an uploaded audio asset.
	AddTrack(ctx context.Context, releaseID, title, bucket, path, url string) (*database.Track, error)
}

// AssetService is the public API of the asset module.
type AssetService interface {
	// PublicURL returns the serving URL for a stored object.
	PublicURL(bucket, path string) string
}

// DraftService is the public API of the wizard module's session draft store.
type DraftService interface {
	// SectionDrafts returns the drafted field maps of a release for one
	// session, keyed by section key.
	SectionDrafts(ctx context.Context, sessionID, releaseID string) (map[string]map[string]interface{}, error)

	// ClearDrafts removes all drafts of a release for one session. Called
	// from the submission path.
	ClearDrafts(ctx context.Context, sessionID, releaseID string) error
}
