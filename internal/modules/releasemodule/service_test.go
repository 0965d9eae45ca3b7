package releasemodule

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/soundfoundry/releasedesk/internal/database"
	"github.com/soundfoundry/releasedesk/internal/services"
	"github.com/soundfoundry/releasedesk/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&database.Label{},
		&database.Release{},
		&database.Track{},
		&database.Profile{},
	))

	return NewService(db, nil), db
}

func seedProfile(t *testing.T, db *gorm.DB, labelID *uint32) string {
	t.Helper()
	profile := database.Profile{
		ID:           uuid.NewString(),
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		LabelID:      labelID,
		Active:       true,
	}
	require.NoError(t, db.Create(&profile).Error)
	return profile.ID
}

func seedRelease(t *testing.T, svc *Service, db *gorm.DB, creator string, status database.ReleaseStatus) *database.Release {
	t.Helper()
	release, err := svc.Create(context.Background(), CreateParams{
		Name:      "Night Drive",
		Type:      database.ReleaseTypeDigital,
		Format:    database.ReleaseFormatSingle,
		CreatedBy: creator,
	})
	require.NoError(t, err)

	if status != database.StatusInProgress {
		require.NoError(t, db.Model(release).Update("status", status).Error)
		release.Status = status
	}
	return release
}

func TestCreateDefaults(t *testing.T) {
	svc, db := newTestService(t)
	creator := seedProfile(t, db, nil)

	release, err := svc.Create(context.Background(), CreateParams{
		Name:      "First Light",
		Type:      database.ReleaseTypeDigital,
		Format:    database.ReleaseFormatEP,
		CreatedBy: creator,
	})
	require.NoError(t, err)

	assert.Equal(t, database.StatusInProgress, release.Status)
	assert.Equal(t, database.PublishingNotPublished, release.PublishingType)
	assert.Equal(t, database.PreSaveNone, release.PreSaveOption)
	assert.Equal(t, database.PricingMid, release.PricingTier)
	assert.Equal(t, "RD-0001", release.CatalogNumber)
	assert.Nil(t, release.UPC)
}

func TestCreateUsesLabelSequence(t *testing.T) {
	svc, db := newTestService(t)

	label := database.Label{Name: "Soundfoundry", CatalogPrefix: "SF", NextSequence: 7}
	require.NoError(t, db.Create(&label).Error)
	creator := seedProfile(t, db, &label.ID)

	release, err := svc.Create(context.Background(), CreateParams{
		Name:      "Glasswork",
		Type:      database.ReleaseTypeDigital,
		Format:    database.ReleaseFormatSingle,
		CreatedBy: creator,
	})
	require.NoError(t, err)
	assert.Equal(t, "SF-0007", release.CatalogNumber)

	var reloaded database.Label
	require.NoError(t, db.First(&reloaded, label.ID).Error)
	assert.Equal(t, 8, reloaded.NextSequence)
}

func TestCreateRejectsBlankUPC(t *testing.T) {
	svc, db := newTestService(t)
	creator := seedProfile(t, db, nil)

	blank := "  "
	_, err := svc.Create(context.Background(), CreateParams{
		Name:      "Blank",
		Type:      database.ReleaseTypeDigital,
		Format:    database.ReleaseFormatSingle,
		UPC:       &blank,
		CreatedBy: creator,
	})
	require.Error(t, err)
}

func TestApplyFieldsCatalogNumberImmutable(t *testing.T) {
	svc, db := newTestService(t)
	creator := seedProfile(t, db, nil)
	release := seedRelease(t, svc, db, creator, database.StatusInProgress)

	_, err := svc.ApplyFields(context.Background(), release.ID, map[string]interface{}{
		"catalog_number": "HACK-0001",
	})
	require.Error(t, err)

	appErr, ok := err.(*types.AppError)
	require.True(t, ok)
	assert.Equal(t, types.ErrorCodeFieldImmutable, appErr.Code)

	reloaded, err := svc.GetRelease(context.Background(), release.ID)
	require.NoError(t, err)
	assert.Equal(t, release.CatalogNumber, reloaded.CatalogNumber)
}

func TestApplyFieldsUPCLockedAfterModeratorAssignment(t *testing.T) {
	svc, db := newTestService(t)
	creator := seedProfile(t, db, nil)
	release := seedRelease(t, svc, db, creator, database.StatusInProgress)

	_, err := svc.AssignUPC(context.Background(), release.ID, "moderator-1", "123456789012")
	require.NoError(t, err)

	_, err = svc.ApplyFields(context.Background(), release.ID, map[string]interface{}{
		"upc": "999999999999",
	})
	require.Error(t, err)

	appErr, ok := err.(*types.AppError)
	require.True(t, ok)
	assert.Equal(t, types.ErrorCodeFieldImmutable, appErr.Code)
}

func TestSubmitClearsRejectionReason(t *testing.T) {
	svc, db := newTestService(t)
	creator := seedProfile(t, db, nil)
	release := seedRelease(t, svc, db, creator, database.StatusError)
	require.NoError(t, db.Model(release).Update("rejection_reason", "artwork blurry").Error)

	submitted, err := svc.Submit(context.Background(), release.ID, creator)
	require.NoError(t, err)
	assert.Equal(t, database.StatusModeration, submitted.Status)
	assert.Nil(t, submitted.RejectionReason)
}

func TestSubmitCreatorOnly(t *testing.T) {
	svc, db := newTestService(t)
	creator := seedProfile(t, db, nil)
	release := seedRelease(t, svc, db, creator, database.StatusInProgress)

	_, err := svc.Submit(context.Background(), release.ID, "someone-else")
	require.Error(t, err)

	reloaded, err := svc.GetRelease(context.Background(), release.ID)
	require.NoError(t, err)
	assert.Equal(t, database.StatusInProgress, reloaded.Status)
}

func TestOpenForEditResetsDeliveredRelease(t *testing.T) {
	svc, db := newTestService(t)
	creator := seedProfile(t, db, nil)
	release := seedRelease(t, svc, db, creator, database.StatusSentToStores)

	opened, err := svc.OpenForEdit(context.Background(), release.ID, creator)
	require.NoError(t, err)
	assert.Equal(t, database.StatusModeration, opened.Status)
}

func TestOpenForEditIsPlainReadOtherwise(t *testing.T) {
	svc, db := newTestService(t)
	creator := seedProfile(t, db, nil)
	release := seedRelease(t, svc, db, creator, database.StatusInProgress)

	opened, err := svc.OpenForEdit(context.Background(), release.ID, creator)
	require.NoError(t, err)
	assert.Equal(t, database.StatusInProgress, opened.Status)
}

func TestRejectRequiresReason(t *testing.T) {
	svc, db := newTestService(t)
	creator := seedProfile(t, db, nil)
	release := seedRelease(t, svc, db, creator, database.StatusModeration)

	_, err := svc.Reject(context.Background(), release.ID, "moderator-1", "   ")
	require.Error(t, err)

	reloaded, err := svc.GetRelease(context.Background(), release.ID)
	require.NoError(t, err)
	assert.Equal(t, database.StatusModeration, reloaded.Status)
	assert.Nil(t, reloaded.RejectionReason)
}

func TestRejectRecordsReason(t *testing.T) {
	svc, db := newTestService(t)
	creator := seedProfile(t, db, nil)
	release := seedRelease(t, svc, db, creator, database.StatusModeration)

	rejected, err := svc.Reject(context.Background(), release.ID, "moderator-1", "missing credits")
	require.NoError(t, err)
	assert.Equal(t, database.StatusError, rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "missing credits", *rejected.RejectionReason)
}

type stubAuthService struct {
	password string
}

func (s *stubAuthService) ValidateSession(ctx context.Context, token string) (*database.Session, *database.Profile, error) {
	return nil, nil, nil
}
func (s *stubAuthService) HasRole(ctx context.Context, userID, role string) (bool, error) {
	return false, nil
}
func (s *stubAuthService) GetUserRoles(ctx context.Context, userID string) ([]string, error) {
	return nil, nil
}
func (s *stubAuthService) CheckPassword(ctx context.Context, userID, password string) error {
	if password != s.password {
		return types.NewValidationError("bad password")
	}
	return nil
}

func TestTakedownRequiresTwoSteps(t *testing.T) {
	services.Reset()
	t.Cleanup(services.Reset)
	require.NoError(t, services.Register[services.AuthService](services.AuthServiceName, &stubAuthService{password: "hunter2"}))

	svc, db := newTestService(t)
	creator := seedProfile(t, db, nil)
	release := seedRelease(t, svc, db, creator, database.StatusSentToStores)

	// Confirming without an intent never changes status.
	_, err := svc.ConfirmTakedown(context.Background(), release.ID, creator, "no-such-token", "hunter2")
	require.Error(t, err)

	token, err := svc.TakedownIntent(context.Background(), release.ID, creator)
	require.NoError(t, err)

	// The intent alone changes nothing.
	mid, err := svc.GetRelease(context.Background(), release.ID)
	require.NoError(t, err)
	assert.Equal(t, database.StatusSentToStores, mid.Status)

	// Wrong password is refused.
	_, err = svc.ConfirmTakedown(context.Background(), release.ID, creator, token, "wrong")
	require.Error(t, err)

	taken, err := svc.ConfirmTakedown(context.Background(), release.ID, creator, token, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, database.StatusTakenDown, taken.Status)

	// The token is single-use.
	_, err = svc.ConfirmTakedown(context.Background(), release.ID, creator, token, "hunter2")
	require.Error(t, err)
}

func TestListForViewerFiltersByRole(t *testing.T) {
	svc, db := newTestService(t)
	creator := seedProfile(t, db, nil)
	other := seedProfile(t, db, nil)

	mine := seedRelease(t, svc, db, creator, database.StatusInProgress)
	underReview := seedRelease(t, svc, db, other, database.StatusModeration)
	seedRelease(t, svc, db, other, database.StatusInProgress)

	own, err := svc.ListForViewer(context.Background(), creator, false)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, mine.ID, own[0].ID)

	queue, err := svc.ListForViewer(context.Background(), "moderator-1", true)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, underReview.ID, queue[0].ID)
}

func TestAttachVideoMusicVideoOnly(t *testing.T) {
	svc, db := newTestService(t)
	creator := seedProfile(t, db, nil)
	release := seedRelease(t, svc, db, creator, database.StatusInProgress)

	err := svc.AttachVideo(context.Background(), release.ID, "/api/storage/video/x.mp4")
	require.Error(t, err)
}

func TestAddTrackAppendsWithDefaults(t *testing.T) {
	svc, db := newTestService(t)
	creator := seedProfile(t, db, nil)
	release := seedRelease(t, svc, db, creator, database.StatusInProgress)

	first, err := svc.AddTrack(context.Background(), release.ID, "Intro", "audio", "a.wav", "/api/storage/audio/a.wav")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Position)
	assert.True(t, first.AutoAssignISRC)
	assert.Equal(t, database.ExplicitNone, first.Explicit)
	assert.Contains(t, first.PhonogramLine, "℗")

	second, err := svc.AddTrack(context.Background(), release.ID, "Outro", "audio", "b.wav", "/api/storage/audio/b.wav")
	require.NoError(t, err)
	assert.Equal(t, 2, second.Position)
}
