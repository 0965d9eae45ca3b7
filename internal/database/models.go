package database

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// =============================================================================
// ENUM TYPES
// =============================================================================

// ReleaseType is the top-level release kind chosen at creation.
type ReleaseType string

const (
	ReleaseTypeDigital    ReleaseType = "digital"
	ReleaseTypeMusicVideo ReleaseType = "music_video"
	ReleaseTypePhysical   ReleaseType = "physical"
)

// ReleaseFormat refines a digital release in the basic-info section.
type ReleaseFormat string

const (
	ReleaseFormatSingle ReleaseFormat = "single"
	ReleaseFormatEP     ReleaseFormat = "ep"
	ReleaseFormatAlbum  ReleaseFormat = "album"
)

// ReleaseStatus is the lifecycle status of a release.
type ReleaseStatus string

const (
	StatusInProgress   ReleaseStatus = "in_progress"
	StatusReady        ReleaseStatus = "ready"
	StatusModeration   ReleaseStatus = "moderation"
	StatusSentToStores ReleaseStatus = "sent_to_stores"
	StatusError        ReleaseStatus = "error"
	StatusTakenDown    ReleaseStatus = "taken_down"
)

// PreSaveOption controls pre-save availability for a release.
type PreSaveOption string

const (
	PreSaveImmediately  PreSaveOption = "immediately"
	PreSaveSpecificDate PreSaveOption = "specific-date"
	PreSaveNone         PreSaveOption = "no-presave"
)

// PricingTier is the price band for a release.
type PricingTier string

const (
	PricingLow  PricingTier = "low"
	PricingMid  PricingTier = "mid"
	PricingHigh PricingTier = "high"
)

// PublishingType describes who administers publishing for a release.
type PublishingType string

const (
	PublishingControlled   PublishingType = "controlled"
	PublishingPublisher    PublishingType = "publisher"
	PublishingNotPublished PublishingType = "not-published"
)

// ExplicitType is the explicit-content classification of a track.
type ExplicitType string

const (
	ExplicitNone     ExplicitType = "none"
	ExplicitExplicit ExplicitType = "explicit"
	ExplicitClean    ExplicitType = "clean"
)

// Role names known to the system.
const (
	RoleModerator = "moderator"
	RoleArtist    = "artist"
)

// ContributorRoles is the fixed list of additional-contributor roles a track
// may carry.
var ContributorRoles = []string{
	"arranger",
	"composer",
	"conductor",
	"engineer",
	"lyricist",
	"mixer",
	"orchestra",
	"performer",
}

// =============================================================================
// JSON-ENCODED COLUMN TYPES
// =============================================================================

// StringList stores an ordered list of free-text names as a JSON column.
// Insertion order is preserved and duplicates are permitted.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case string:
		return json.Unmarshal([]byte(v), l)
	case []byte:
		return json.Unmarshal(v, l)
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}
}

// Contributor maps one contributor role to its names.
type Contributor struct {
	Role  string     `json:"role"`
	Names StringList `json:"names"`
}

// ContributorList stores the variable role→names mappings of a track.
type ContributorList []Contributor

func (c ContributorList) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]Contributor(c))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (c *ContributorList) Scan(value interface{}) error {
	if value == nil {
		*c = nil
		return nil
	}
	switch v := value.(type) {
	case string:
		return json.Unmarshal([]byte(v), c)
	case []byte:
		return json.Unmarshal(v, c)
	default:
		return fmt.Errorf("cannot scan %T into ContributorList", value)
	}
}

// =============================================================================
// RELEASES
// =============================================================================

// Release is the central entity: one distributable work being prepared for
// delivery to stores.
//
// Concurrency: single-editor assumption. Concurrent edits are last-write-wins
// at the field level; there is no version token.
type Release struct {
	ID string `gorm:"type:varchar(36);primaryKey" json:"id"`

	// Descriptive attributes. CatalogNumber is immutable after creation. UPC
	// is nullable: supplied by the user at creation or assigned later by a
	// moderator, after which it is read-only for the creator.
	Name              string        `gorm:"not null" json:"name"`
	CatalogNumber     string        `gorm:"not null;uniqueIndex" json:"catalog_number"`
	UPC               *string       `json:"upc,omitempty"`
	UPCAssignedBy     string        `json:"-"` // moderator user id, empty if user-supplied
	Type              ReleaseType   `gorm:"type:text;not null" json:"type"`
	Format            ReleaseFormat `gorm:"type:text" json:"format,omitempty"`
	Genre             string        `json:"genre,omitempty"`
	Subgenre          string        `json:"subgenre,omitempty"`
	MetadataLanguage  string        `json:"metadata_language,omitempty"`
	CopyrightLine     string        `json:"copyright_line,omitempty"`
	LabelName         string        `json:"label_name,omitempty"`
	PrimaryArtists    StringList    `gorm:"type:text" json:"primary_artists"`
	FeaturedArtists   StringList    `gorm:"type:text" json:"featured_artists"`
	FeaturedAsPrimary bool          `json:"featured_as_primary"`

	// Media attributes
	ArtworkURL *string `json:"artwork_url,omitempty"`
	VideoURL   *string `json:"video_url,omitempty"` // music-video releases only

	// Scheduling attributes
	ReleaseDate    *time.Time    `json:"release_date,omitempty"`
	SalesStartDate *time.Time    `json:"sales_start_date,omitempty"`
	PreSaveOption  PreSaveOption `gorm:"type:text" json:"pre_save_option,omitempty"`
	PreSaveDate    *time.Time    `json:"pre_save_date,omitempty"`
	PricingTier    PricingTier   `gorm:"type:text" json:"pricing_tier,omitempty"`

	// Distribution attributes. Empty list means "all".
	Territories StringList `gorm:"type:text" json:"territories"`
	Services    StringList `gorm:"type:text" json:"services"`

	// Publishing attributes. PublisherName is required iff PublishingType is
	// "publisher".
	PublishingType PublishingType `gorm:"type:text" json:"publishing_type,omitempty"`
	PublisherName  string         `json:"publisher_name,omitempty"`

	// Lifecycle attributes. RejectionReason is populated only in Error status.
	Status          ReleaseStatus `gorm:"type:text;not null;index" json:"status"`
	RejectionReason *string       `json:"rejection_reason,omitempty"`
	CreatedBy       string        `gorm:"type:varchar(36);not null;index" json:"created_by"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`

	Tracks []Track `gorm:"foreignKey:ReleaseID" json:"tracks,omitempty"`
}

// UPCLocked reports whether the UPC may no longer be changed by the creator.
func (r *Release) UPCLocked() bool {
	return r.UPC != nil && r.UPCAssignedBy != ""
}

// =============================================================================
// TRACKS
// =============================================================================

// Track is one audio recording belonging to a release. Tracks are created
// when an audio file is uploaded and are never deleted in-app; the list is
// append-only.
type Track struct {
	ID        string `gorm:"type:varchar(36);primaryKey" json:"id"`
	ReleaseID string `gorm:"type:varchar(36);not null;index" json:"release_id"`
	Position  int    `gorm:"not null" json:"position"`

	Title          string       `gorm:"not null" json:"title"`
	Version        string       `json:"version,omitempty"`
	ISRC           *string      `json:"isrc,omitempty"`
	AutoAssignISRC bool         `json:"auto_assign_isrc"`
	LyricsLanguage string       `json:"lyrics_language,omitempty"`
	Explicit       ExplicitType `gorm:"type:text" json:"explicit"`
	Lyrics         string       `gorm:"type:text" json:"lyrics,omitempty"`

	PrimaryArtists  StringList      `gorm:"type:text" json:"primary_artists"`
	FeaturedArtists StringList      `gorm:"type:text" json:"featured_artists"`
	Remixers        StringList      `gorm:"type:text" json:"remixers"`
	Songwriters     StringList      `gorm:"type:text" json:"songwriters"`
	Producers       StringList      `gorm:"type:text" json:"producers"`
	Contributors    ContributorList `gorm:"type:text" json:"contributors"`

	// PhonogramLine is the ℗ copyright line, required, defaulted to the
	// current year plus the configured default label.
	PhonogramLine string `gorm:"not null" json:"phonogram_line"`

	AudioBucket string `json:"-"`
	AudioPath   string `json:"-"`
	AudioURL    string `json:"audio_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName returns "title" or "title (version)" when a version suffix is
// set.
func (t *Track) DisplayName() string {
	if t.Version != "" {
		return fmt.Sprintf("%s (%s)", t.Title, t.Version)
	}
	return t.Title
}

// =============================================================================
// LABELS
// =============================================================================

// Label groups releases under a catalog prefix used for catalog number
// assignment.
type Label struct {
	ID            uint32    `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"not null;uniqueIndex" json:"name"`
	CatalogPrefix string    `gorm:"not null" json:"catalog_prefix"`
	NextSequence  int       `gorm:"not null;default:1" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// =============================================================================
// USERS, ROLES, SESSIONS
// =============================================================================

// Profile is a user account.
type Profile struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `gorm:"not null" json:"-"`
	LabelID      *uint32   `json:"label_id,omitempty"`
	Active       bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserRole grants one role to one user.
type UserRole struct {
	ID        uint32    `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Role      string    `gorm:"not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is an authenticated browser session.
type Session struct {
	Token     string    `gorm:"type:varchar(64);primaryKey" json:"token"`
	UserID    string    `gorm:"type:varchar(36);not null;index" json:"user_id"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

// InvitationToken activates a pre-provisioned account.
type InvitationToken struct {
	Token     string     `gorm:"type:varchar(64);primaryKey" json:"token"`
	Email     string     `gorm:"not null;index" json:"email"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// =============================================================================
// WIZARD DRAFTS
// =============================================================================

// WizardDraft is the session-scoped draft of one wizard section. The payload
// is an opaque JSON field map; the draft survives reloads within a session
// and is cleared when the release is submitted.
type WizardDraft struct {
	ID         uint32    `gorm:"primaryKey" json:"id"`
	SessionID  string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_draft_key" json:"session_id"`
	ReleaseID  string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_draft_key;index" json:"release_id"`
	SectionKey string    `gorm:"not null;uniqueIndex:idx_draft_key" json:"section_key"`
	Payload    string    `gorm:"type:text;not null" json:"payload"`
	UpdatedAt  time.Time `json:"updated_at"`
}
