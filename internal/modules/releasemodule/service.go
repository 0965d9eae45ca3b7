package releasemodule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/soundfoundry/releasedesk/internal/config"
	"github.com/soundfoundry/releasedesk/internal/database"
	"github.com/soundfoundry/releasedesk/internal/events"
	"github.com/soundfoundry/releasedesk/internal/logger"
	"github.com/soundfoundry/releasedesk/internal/services"
	"github.com/soundfoundry/releasedesk/internal/types"
	"gorm.io/gorm"
)

// Service implements services.ReleaseService plus the moderation and
// takedown operations.
type Service struct {
	db       *gorm.DB
	eventBus events.EventBus

	// takedown intents pending password confirmation
	intentsMu sync.Mutex
	intents   map[string]takedownIntent
}

type takedownIntent struct {
	token     string
	userID    string
	expiresAt time.Time
}

// NewService creates the release service
func NewService(db *gorm.DB, eventBus events.EventBus) *Service {
	return &Service{
		db:       db,
		eventBus: eventBus,
		intents:  make(map[string]takedownIntent),
	}
}

// CreateParams are the inputs of release creation.
type CreateParams struct {
	Name          string
	Type          database.ReleaseType
	Format        database.ReleaseFormat
	CatalogNumber string
	UPC           *string
	CreatedBy     string
}

// Create validates the creation inputs and inserts the release in InProgress
// status. The catalog number is assigned here and immutable afterwards; when
// the caller does not supply one it is drawn from the creator's label
// sequence.
func (s *Service) Create(ctx context.Context, params CreateParams) (*database.Release, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, types.NewValidationError("release name is required")
	}
	switch params.Type {
	case database.ReleaseTypeDigital, database.ReleaseTypeMusicVideo, database.ReleaseTypePhysical:
	default:
		return nil, types.NewValidationError("release type is required")
	}
	switch params.Format {
	case database.ReleaseFormatSingle, database.ReleaseFormatEP, database.ReleaseFormatAlbum:
	default:
		return nil, types.NewValidationError("release format is required")
	}
	if params.UPC != nil && strings.TrimSpace(*params.UPC) == "" {
		return nil, types.NewValidationError("UPC must not be blank when supplied")
	}

	release := database.Release{
		ID:             uuid.NewString(),
		Name:           params.Name,
		Type:           params.Type,
		Format:         params.Format,
		CatalogNumber:  params.CatalogNumber,
		UPC:            params.UPC,
		Status:         database.StatusInProgress,
		PublishingType: database.PublishingNotPublished,
		PreSaveOption:  database.PreSaveNone,
		PricingTier:    database.PricingMid,
		CreatedBy:      params.CreatedBy,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if release.CatalogNumber == "" {
			number, err := s.nextCatalogNumber(tx, params.CreatedBy)
			if err != nil {
				return err
			}
			release.CatalogNumber = number
		}
		return tx.Create(&release).Error
	})
	if err != nil {
		return nil, types.NewInternalError("failed to create release", err)
	}

	s.publish(events.NewReleaseEvent(events.EventReleaseCreated, release.ID, release.Name, params.CreatedBy))
	return &release, nil
}

// nextCatalogNumber draws the next number from the creator's label, falling
// back to a default prefix when the creator has no label.
func (s *Service) nextCatalogNumber(tx *gorm.DB, userID string) (string, error) {
	var profile database.Profile
	if err := tx.First(&profile, "id = ?", userID).Error; err != nil {
		return "", err
	}

	prefix := "RD"
	if profile.LabelID != nil {
		var label database.Label
		if err := tx.First(&label, "id = ?", *profile.LabelID).Error; err != nil {
			return "", err
		}
		if err := tx.Model(&label).Update("next_sequence", gorm.Expr("next_sequence + 1")).Error; err != nil {
			return "", err
		}
		return fmt.Sprintf("%s-%04d", label.CatalogPrefix, label.NextSequence), nil
	}

	var count int64
	if err := tx.Model(&database.Release{}).Count(&count).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%04d", prefix, count+1), nil
}

// GetRelease returns one release with its tracks ordered by position.
func (s *Service) GetRelease(ctx context.Context, id string) (*database.Release, error) {
	var release database.Release
	err := s.db.WithContext(ctx).
		Preload("Tracks", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&release, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NewNotFoundError("release", id)
	}
	if err != nil {
		return nil, types.NewInternalError("failed to load release", err)
	}
	return &release, nil
}

// ListForViewer returns the catalog rows visible to a viewer: moderators see
// only releases under Moderation, everyone else sees only their own releases
// across all statuses.
func (s *Service) ListForViewer(ctx context.Context, userID string, isModerator bool) ([]database.Release, error) {
	var releases []database.Release
	q := s.db.WithContext(ctx).Order("updated_at DESC")
	if isModerator {
		q = q.Where("status = ?", database.StatusModeration)
	} else {
		q = q.Where("created_by = ?", userID)
	}
	if err := q.Find(&releases).Error; err != nil {
		return nil, types.NewInternalError("failed to list releases", err)
	}
	return releases, nil
}

// ListReleased returns delivered releases, for the moderator-only released
// content view.
func (s *Service) ListReleased(ctx context.Context) ([]database.Release, error) {
	var releases []database.Release
	err := s.db.WithContext(ctx).
		Where("status = ?", database.StatusSentToStores).
		Order("updated_at DESC").
		Find(&releases).Error
	if err != nil {
		return nil, types.NewInternalError("failed to list released content", err)
	}
	return releases, nil
}

// ApplyFields merges a partial field update into the release row. Unknown
// keys are rejected; immutable fields (catalog number, moderator-assigned
// UPC) are rejected; the merge is last-write-wins field-by-field.
func (s *Service) ApplyFields(ctx context.Context, releaseID string, fields map[string]interface{}) (*database.Release, error) {
	release, err := s.GetRelease(ctx, releaseID)
	if err != nil {
		return nil, err
	}

	updates, err := coerceReleaseFields(release, fields)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return release, nil
	}

	if err := s.db.WithContext(ctx).Model(&database.Release{}).Where("id = ?", releaseID).Updates(updates).Error; err != nil {
		return nil, types.NewInternalError("failed to update release", err)
	}

	// State shown must reflect only confirmed values.
	return s.GetRelease(ctx, releaseID)
}

// Submit moves a release into Moderation and clears the submitter's wizard
// drafts from the same code path.
func (s *Service) Submit(ctx context.Context, releaseID, actorID string) (*database.Release, error) {
	release, err := s.GetRelease(ctx, releaseID)
	if err != nil {
		return nil, err
	}
	if release.CreatedBy != actorID {
		return nil, types.NewForbiddenError("only the creator can submit a release")
	}

	next, err := NextStatus(release.Status, TriggerSubmit)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"status":           next,
		"rejection_reason": nil,
	}
	if err := s.db.WithContext(ctx).Model(&database.Release{}).Where("id = ?", releaseID).Updates(updates).Error; err != nil {
		return nil, types.NewInternalError("failed to submit release", err)
	}

	s.publish(events.NewReleaseEvent(events.EventReleaseSubmitted, release.ID, release.Name, actorID))
	return s.GetRelease(ctx, releaseID)
}

// OpenForEdit is the explicit transition behind opening a delivered release
// in the builder: SentToStores resets to Moderation on open, not on save.
// Opening a release in any other status is a plain read.
func (s *Service) OpenForEdit(ctx context.Context, releaseID, actorID string) (*database.Release, error) {
	release, err := s.GetRelease(ctx, releaseID)
	if err != nil {
		return nil, err
	}
	if release.CreatedBy != actorID {
		return nil, types.NewForbiddenError("only the creator can edit a release")
	}

	if !CanTransition(release.Status, TriggerOpenForEdit) {
		return release, nil
	}

	next, _ := NextStatus(release.Status, TriggerOpenForEdit)
	if err := s.db.WithContext(ctx).Model(&database.Release{}).Where("id = ?", releaseID).Update("status", next).Error; err != nil {
		return nil, types.NewInternalError("failed to reopen release", err)
	}

	s.publish(events.NewReleaseEvent(events.EventReleaseReopened, release.ID, release.Name, actorID))
	return s.GetRelease(ctx, releaseID)
}

// Approve moves a release from Moderation to SentToStores.
func (s *Service) Approve(ctx context.Context, releaseID, moderatorID string) (*database.Release, error) {
	release, err := s.GetRelease(ctx, releaseID)
	if err != nil {
		return nil, err
	}

	next, err := NextStatus(release.Status, TriggerApprove)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&database.Release{}).Where("id = ?", releaseID).Update("status", next).Error; err != nil {
		return nil, types.NewInternalError("failed to approve release", err)
	}

	s.publish(events.NewReleaseEvent(events.EventReleaseApproved, release.ID, release.Name, moderatorID))
	return s.GetRelease(ctx, releaseID)
}

// Reject moves a release from Moderation to Error with a reason. A missing
// reason is refused before any database call.
func (s *Service) Reject(ctx context.Context, releaseID, moderatorID, reason string) (*database.Release, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, types.NewValidationError("a rejection reason is required")
	}

	release, err := s.GetRelease(ctx, releaseID)
	if err != nil {
		return nil, err
	}

	next, err := NextStatus(release.Status, TriggerReject)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"status":           next,
		"rejection_reason": reason,
	}
	if err := s.db.WithContext(ctx).Model(&database.Release{}).Where("id = ?", releaseID).Updates(updates).Error; err != nil {
		return nil, types.NewInternalError("failed to reject release", err)
	}

	s.publish(events.NewReleaseEvent(events.EventReleaseRejected, release.ID, release.Name, moderatorID))
	return s.GetRelease(ctx, releaseID)
}

// TakedownIntent records the first confirmation step and returns a token the
// second step must present together with the account password. A single call
// never changes status.
func (s *Service) TakedownIntent(ctx context.Context, releaseID, userID string) (string, error) {
	release, err := s.GetRelease(ctx, releaseID)
	if err != nil {
		return "", err
	}
	if !CanTransition(release.Status, TriggerTakedown) {
		return "", types.NewInvalidTransitionError(string(release.Status), string(TriggerTakedown))
	}

	token := uuid.NewString()
	s.intentsMu.Lock()
	s.intents[releaseID] = takedownIntent{
		token:     token,
		userID:    userID,
		expiresAt: time.Now().Add(config.Get().Auth.TakedownTokenTTL),
	}
	s.intentsMu.Unlock()

	return token, nil
}

// ConfirmTakedown completes the two-step takedown: the intent token must
// match and the account password must verify before the status changes.
func (s *Service) ConfirmTakedown(ctx context.Context, releaseID, userID, token, password string) (*database.Release, error) {
	if strings.TrimSpace(password) == "" {
		return nil, types.NewValidationError("password confirmation is required")
	}

	s.intentsMu.Lock()
	intent, ok := s.intents[releaseID]
	s.intentsMu.Unlock()
	if !ok || intent.token != token || intent.userID != userID || time.Now().After(intent.expiresAt) {
		return nil, types.NewValidationError("takedown has not been confirmed", "request a takedown intent first")
	}

	auth, err := services.Get[services.AuthService](services.AuthServiceName)
	if err != nil {
		return nil, types.NewInternalError("auth service unavailable", err)
	}
	if err := auth.CheckPassword(ctx, userID, password); err != nil {
		return nil, err
	}

	release, err := s.GetRelease(ctx, releaseID)
	if err != nil {
		return nil, err
	}
	next, err := NextStatus(release.Status, TriggerTakedown)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&database.Release{}).Where("id = ?", releaseID).Update("status", next).Error; err != nil {
		return nil, types.NewInternalError("failed to take down release", err)
	}

	s.intentsMu.Lock()
	delete(s.intents, releaseID)
	s.intentsMu.Unlock()

	s.publish(events.NewReleaseEvent(events.EventReleaseTakenDown, release.ID, release.Name, userID))
	return s.GetRelease(ctx, releaseID)
}

// AssignUPC sets a release UPC on behalf of a moderator; from then on the
// creator sees it as read-only.
func (s *Service) AssignUPC(ctx context.Context, releaseID, moderatorID, upc string) (*database.Release, error) {
	if strings.TrimSpace(upc) == "" {
		return nil, types.NewValidationError("UPC must not be empty")
	}

	if _, err := s.GetRelease(ctx, releaseID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"upc":             upc,
		"upc_assigned_by": moderatorID,
	}
	if err := s.db.WithContext(ctx).Model(&database.Release{}).Where("id = ?", releaseID).Updates(updates).Error; err != nil {
		return nil, types.NewInternalError("failed to assign UPC", err)
	}
	return s.GetRelease(ctx, releaseID)
}

// AssignISRC sets a track ISRC on behalf of a moderator.
func (s *Service) AssignISRC(ctx context.Context, trackID, moderatorID, isrc string) (*database.Track, error) {
	if strings.TrimSpace(isrc) == "" {
		return nil, types.NewValidationError("ISRC must not be empty")
	}

	var track database.Track
	err := s.db.WithContext(ctx).First(&track, "id = ?", trackID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NewNotFoundError("track", trackID)
	}
	if err != nil {
		return nil, types.NewInternalError("failed to load track", err)
	}

	updates := map[string]interface{}{
		"isrc":             isrc,
		"auto_assign_isrc": false,
	}
	if err := s.db.WithContext(ctx).Model(&track).Updates(updates).Error; err != nil {
		return nil, types.NewInternalError("failed to assign ISRC", err)
	}

	if err := s.db.WithContext(ctx).First(&track, "id = ?", trackID).Error; err != nil {
		return nil, types.NewInternalError("failed to reload track", err)
	}
	return &track, nil
}

// AttachArtwork records the artwork (or thumbnail) URL of a release.
func (s *Service) AttachArtwork(ctx context.Context, releaseID, url string) error {
	if _, err := s.GetRelease(ctx, releaseID); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(&database.Release{}).Where("id = ?", releaseID).Update("artwork_url", url).Error; err != nil {
		return types.NewInternalError("failed to attach artwork", err)
	}
	return nil
}

// AttachVideo records the video URL of a music-video release.
func (s *Service) AttachVideo(ctx context.Context, releaseID, url string) error {
	release, err := s.GetRelease(ctx, releaseID)
	if err != nil {
		return err
	}
	if release.Type != database.ReleaseTypeMusicVideo {
		return types.NewValidationError("only music video releases carry a video")
	}
	if err := s.db.WithContext(ctx).Model(&database.Release{}).Where("id = ?", releaseID).Update("video_url", url).Error; err != nil {
		return types.NewInternalError("failed to attach video", err)
	}
	return nil
}

// AddTrack appends a track created from an uploaded audio asset. The ℗ line
// defaults to the current year plus the configured default label.
func (s *Service) AddTrack(ctx context.Context, releaseID, title, bucket, path, url string) (*database.Track, error) {
	release, err := s.GetRelease(ctx, releaseID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(title) == "" {
		return nil, types.NewValidationError("track title is required")
	}

	track := database.Track{
		ID:             uuid.NewString(),
		ReleaseID:      release.ID,
		Position:       len(release.Tracks) + 1,
		Title:          title,
		Explicit:       database.ExplicitNone,
		AutoAssignISRC: true,
		PhonogramLine:  fmt.Sprintf("℗ %d %s", time.Now().Year(), config.Get().Catalog.DefaultLabel),
		AudioBucket:    bucket,
		AudioPath:      path,
		AudioURL:       url,
	}
	if err := s.db.WithContext(ctx).Create(&track).Error; err != nil {
		return nil, types.NewInternalError("failed to create track", err)
	}
	return &track, nil
}

// UpdateTrack merges a partial field update into a track row.
func (s *Service) UpdateTrack(ctx context.Context, trackID string, fields map[string]interface{}) (*database.Track, error) {
	var track database.Track
	err := s.db.WithContext(ctx).First(&track, "id = ?", trackID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NewNotFoundError("track", trackID)
	}
	if err != nil {
		return nil, types.NewInternalError("failed to load track", err)
	}

	updates, err := coerceTrackFields(fields)
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&track).Updates(updates).Error; err != nil {
			return nil, types.NewInternalError("failed to update track", err)
		}
	}

	if err := s.db.WithContext(ctx).First(&track, "id = ?", trackID).Error; err != nil {
		return nil, types.NewInternalError("failed to reload track", err)
	}
	return &track, nil
}

func (s *Service) publish(event events.Event) {
	if s.eventBus == nil {
		return
	}
	s.eventBus.Publish(event)
	logger.Debug("published event %s for %v", event.Type, event.Data["release_id"])
}
