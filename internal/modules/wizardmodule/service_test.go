package wizardmodule

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/soundfoundry/releasedesk/internal/database"
	"github.com/soundfoundry/releasedesk/internal/modules/releasemodule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestWizard(t *testing.T) (*Service, *releasemodule.Service, *gorm.DB) {
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
		&database.WizardDraft{},
	))

	releases := releasemodule.NewService(db, nil)
	return NewService(db, releases), releases, db
}

func newTestRelease(t *testing.T, db *gorm.DB, releases *releasemodule.Service, releaseType database.ReleaseType) *database.Release {
	t.Helper()

	creator := database.Profile{
		ID:           uuid.NewString(),
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		Active:       true,
	}
	require.NoError(t, db.Create(&creator).Error)

	release, err := releases.Create(context.Background(), releasemodule.CreateParams{
		Name:      "Stored Name",
		Type:      releaseType,
		Format:    database.ReleaseFormatSingle,
		CreatedBy: creator.ID,
	})
	require.NoError(t, err)
	return release
}

func TestDigitalSectionWalkthrough(t *testing.T) {
	wizard, releases, db := newTestWizard(t)
	release := newTestRelease(t, db, releases, database.ReleaseTypeDigital)
	session := "sess-1"

	state, err := wizard.GetState(context.Background(), session, release.ID)
	require.NoError(t, err)
	assert.Equal(t, SectionBasicInfo, state.Current)
	assert.Equal(t, []Section{
		SectionBasicInfo, SectionArtwork, SectionTracks, SectionScheduling,
		SectionTerritories, SectionPublishing, SectionOverview,
	}, state.Sections)

	steps := []struct {
		section Section
		fields  map[string]interface{}
		next    Section
	}{
		{SectionBasicInfo, map[string]interface{}{"name": "Night Drive", "genre": "electronic"}, SectionArtwork},
		{SectionArtwork, nil, SectionTracks},
		{SectionTracks, nil, SectionScheduling},
		{SectionScheduling, map[string]interface{}{"release_date": "2026-10-01"}, SectionTerritories},
		{SectionTerritories, nil, SectionPublishing},
		{SectionPublishing, map[string]interface{}{"publishing_type": "controlled"}, SectionOverview},
	}
	for _, step := range steps {
		state, err = wizard.SaveAndContinue(context.Background(), session, release.ID, step.section, step.fields)
		require.NoError(t, err, "advancing from %s", step.section)
		assert.Equal(t, step.next, state.Current)
	}

	// Saved values are visible in the merged snapshot.
	assert.Equal(t, "Night Drive", state.Snapshot["name"])
	assert.Equal(t, "electronic", state.Snapshot["genre"])

	// The cursor survives a reload within the session.
	reloaded, err := wizard.GetState(context.Background(), session, release.ID)
	require.NoError(t, err)
	assert.Equal(t, SectionOverview, reloaded.Current)
}

func TestMusicVideoSectionSequence(t *testing.T) {
	wizard, releases, db := newTestWizard(t)
	release := newTestRelease(t, db, releases, database.ReleaseTypeMusicVideo)

	state, err := wizard.GetState(context.Background(), "sess-1", release.ID)
	require.NoError(t, err)
	assert.Equal(t, []Section{
		SectionBasicInfo, SectionThumbnail, SectionVideo, SectionScheduling,
		SectionTerritories, SectionOverview,
	}, state.Sections)
}

func TestSectionFromOtherSequenceRejected(t *testing.T) {
	wizard, releases, db := newTestWizard(t)
	release := newTestRelease(t, db, releases, database.ReleaseTypeMusicVideo)

	_, err := wizard.SaveAndContinue(context.Background(), "sess-1", release.ID, SectionPublishing, nil)
	require.Error(t, err)
}

func TestOverviewDraftWinsOverStored(t *testing.T) {
	wizard, releases, db := newTestWizard(t)
	release := newTestRelease(t, db, releases, database.ReleaseTypeDigital)
	session := "sess-1"

	require.NoError(t, wizard.PutDraft(context.Background(), session, release.ID, SectionBasicInfo,
		map[string]interface{}{"name": "Drafted Name"}))

	overview, err := wizard.Overview(context.Background(), session, release.ID)
	require.NoError(t, err)
	assert.Equal(t, "Drafted Name", overview.Release["name"])

	// Another session still sees the stored value.
	other, err := wizard.Overview(context.Background(), "sess-2", release.ID)
	require.NoError(t, err)
	assert.Equal(t, "Stored Name", other.Release["name"])
}

func TestDraftRoundTripAndNonDraftableSections(t *testing.T) {
	wizard, releases, db := newTestWizard(t)
	release := newTestRelease(t, db, releases, database.ReleaseTypeDigital)
	session := "sess-1"

	require.NoError(t, wizard.PutDraft(context.Background(), session, release.ID, SectionScheduling,
		map[string]interface{}{"pricing_tier": "high"}))

	payload, err := wizard.GetDraft(context.Background(), session, release.ID, SectionScheduling)
	require.NoError(t, err)
	assert.Equal(t, "high", payload["pricing_tier"])

	// Sections without form state have no draft slot.
	err = wizard.PutDraft(context.Background(), session, release.ID, SectionArtwork, map[string]interface{}{"x": 1})
	require.Error(t, err)
	_, err = wizard.GetDraft(context.Background(), session, release.ID, SectionOverview)
	require.Error(t, err)
}

func TestSubmitRefusedWhileIncomplete(t *testing.T) {
	wizard, releases, db := newTestWizard(t)
	release := newTestRelease(t, db, releases, database.ReleaseTypeDigital)

	overview, err := wizard.Overview(context.Background(), "sess-1", release.ID)
	require.NoError(t, err)
	assert.False(t, overview.CanSubmit)
	assert.NotEmpty(t, overview.Errors)

	_, err = wizard.Submit(context.Background(), "sess-1", release.ID, release.CreatedBy)
	require.Error(t, err)

	reloaded, err := releases.GetRelease(context.Background(), release.ID)
	require.NoError(t, err)
	assert.Equal(t, database.StatusInProgress, reloaded.Status)
}

func TestSubmitClearsSessionDrafts(t *testing.T) {
	wizard, releases, db := newTestWizard(t)
	release := newTestRelease(t, db, releases, database.ReleaseTypeDigital)
	session := "sess-1"

	artwork := "/api/storage/artwork/a.png"
	date := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Model(release).Updates(map[string]interface{}{
		"artwork_url":  artwork,
		"release_date": date,
	}).Error)
	_, err := releases.AddTrack(context.Background(), release.ID, "Intro", "audio", "a.wav", "/api/storage/audio/a.wav")
	require.NoError(t, err)

	require.NoError(t, wizard.PutDraft(context.Background(), session, release.ID, SectionBasicInfo,
		map[string]interface{}{"genre": "ambient"}))

	submitted, err := wizard.Submit(context.Background(), session, release.ID, release.CreatedBy)
	require.NoError(t, err)
	assert.Equal(t, database.StatusModeration, submitted.Status)

	drafts, err := wizard.SectionDrafts(context.Background(), session, release.ID)
	require.NoError(t, err)
	assert.Empty(t, drafts)
}

func TestValidateForSubmissionRules(t *testing.T) {
	wizard, releases, db := newTestWizard(t)
	release := newTestRelease(t, db, releases, database.ReleaseTypeDigital)

	overview, err := wizard.Overview(context.Background(), "sess-1", release.ID)
	require.NoError(t, err)
	assert.Contains(t, overview.Errors, "artwork is required")
	assert.Contains(t, overview.Errors, "at least one track is required")
	assert.Contains(t, overview.Errors, "a release date is required")

	// Publisher name is required only with the publisher publishing type.
	require.NoError(t, wizard.PutDraft(context.Background(), "sess-1", release.ID, SectionPublishing,
		map[string]interface{}{"publishing_type": "publisher"}))
	overview, err = wizard.Overview(context.Background(), "sess-1", release.ID)
	require.NoError(t, err)
	assert.Contains(t, overview.Errors, "a publisher name is required")
}
