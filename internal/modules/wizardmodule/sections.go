package wizardmodule

import (
	"github.com/soundfoundry/releasedesk/internal/database"
)

// Section is one named step of the release builder.
type Section string

const (
	SectionBasicInfo   Section = "basic_info"
	SectionArtwork     Section = "artwork"
	SectionThumbnail   Section = "thumbnail"
	SectionVideo       Section = "video"
	SectionTracks      Section = "tracks"
	SectionScheduling  Section = "scheduling"
	SectionTerritories Section = "territories"
	SectionPublishing  Section = "publishing"
	SectionOverview    Section = "overview"
)

// audioSections is the builder sequence for digital and physical releases.
var audioSections = []Section{
	SectionBasicInfo,
	SectionArtwork,
	SectionTracks,
	SectionScheduling,
	SectionTerritories,
	SectionPublishing,
	SectionOverview,
}

// videoSections is the builder sequence for music-video releases.
var videoSections = []Section{
	SectionBasicInfo,
	SectionThumbnail,
	SectionVideo,
	SectionScheduling,
	SectionTerritories,
	SectionOverview,
}

// draftSections is the fixed key space of the session draft store: the
// sections with independent form state.
var draftSections = map[Section]bool{
	SectionBasicInfo:   true,
	SectionScheduling:  true,
	SectionTerritories: true,
	SectionPublishing:  true,
}

// cursorKey is the reserved draft-store key holding the section pointer.
const cursorKey = "_cursor"

// SectionsFor returns the ordered builder sequence for a release type.
func SectionsFor(t database.ReleaseType) []Section {
	if t == database.ReleaseTypeMusicVideo {
		return videoSections
	}
	return audioSections
}

// ValidSection reports whether the section belongs to the sequence of the
// release type.
func ValidSection(t database.ReleaseType, section Section) bool {
	for _, s := range SectionsFor(t) {
		if s == section {
			return true
		}
	}
	return false
}

// NextSection returns the section after current in the sequence. The second
// return is false when current is the terminal section.
func NextSection(t database.ReleaseType, current Section) (Section, bool) {
	sections := SectionsFor(t)
	for i, s := range sections {
		if s == current && i+1 < len(sections) {
			return sections[i+1], true
		}
	}
	return current, false
}

// DraftableSection reports whether the section keeps session-drafted state.
func DraftableSection(section Section) bool {
	return draftSections[section]
}
