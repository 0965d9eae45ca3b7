package wizardmodule

import (
	"strings"

	"github.com/soundfoundry/releasedesk/internal/database"
)

// validateForSubmission accumulates the Overview error list. Checks run
// against the merged view so a drafted-but-unsaved value counts; track and
// media presence come from the stored release since assets are never
// drafted.
func validateForSubmission(release *database.Release, merged map[string]interface{}) []string {
	var errs []string

	if mergedString(merged, "name") == "" {
		errs = append(errs, "release name is required")
	}

	if release.Type == database.ReleaseTypeMusicVideo {
		if release.ArtworkURL == nil || *release.ArtworkURL == "" {
			errs = append(errs, "a thumbnail is required")
		}
		if release.VideoURL == nil || *release.VideoURL == "" {
			errs = append(errs, "a video file is required")
		}
	} else {
		if release.ArtworkURL == nil || *release.ArtworkURL == "" {
			errs = append(errs, "artwork is required")
		}
		if len(release.Tracks) == 0 {
			errs = append(errs, "at least one track is required")
		}
	}

	if merged["release_date"] == nil || mergedString(merged, "release_date") == "" {
		if release.ReleaseDate == nil {
			errs = append(errs, "a release date is required")
		}
	}

	if mergedString(merged, "publishing_type") == string(database.PublishingPublisher) &&
		mergedString(merged, "publisher_name") == "" {
		errs = append(errs, "a publisher name is required")
	}

	return errs
}

func mergedString(merged map[string]interface{}, key string) string {
	if value, ok := merged[key].(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}
