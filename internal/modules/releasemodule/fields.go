package releasemodule

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/soundfoundry/releasedesk/internal/database"
	"github.com/soundfoundry/releasedesk/internal/types"
)

// coerceReleaseFields converts a JSON field map into gorm column updates.
// Unknown keys and writes to immutable fields fail the whole update; the
// merge itself is shallow, last-write-wins per field.
func coerceReleaseFields(release *database.Release, fields map[string]interface{}) (map[string]interface{}, error) {
	updates := make(map[string]interface{}, len(fields))

	for key, value := range fields {
		switch key {
		case "name":
			str, err := asString(key, value)
			if err != nil {
				return nil, err
			}
			if strings.TrimSpace(str) == "" {
				return nil, types.NewValidationError("release name must not be empty")
			}
			updates["name"] = str

		case "catalog_number":
			return nil, immutableField("catalog number")

		case "upc":
			if release.UPCLocked() {
				return nil, immutableField("UPC")
			}
			if value == nil {
				updates["upc"] = nil
				continue
			}
			str, err := asString(key, value)
			if err != nil {
				return nil, err
			}
			updates["upc"] = str

		case "format":
			str, err := asString(key, value)
			if err != nil {
				return nil, err
			}
			switch database.ReleaseFormat(str) {
			case database.ReleaseFormatSingle, database.ReleaseFormatEP, database.ReleaseFormatAlbum:
				updates["format"] = str
			default:
				return nil, types.NewValidationError(fmt.Sprintf("unknown release format %q", str))
			}

		case "genre", "subgenre", "metadata_language", "copyright_line", "label_name", "publisher_name":
			str, err := asString(key, value)
			if err != nil {
				return nil, err
			}
			updates[key] = str

		case "primary_artists", "featured_artists":
			list, err := asStringList(key, value)
			if err != nil {
				return nil, err
			}
			updates[key] = list

		case "featured_as_primary":
			b, ok := value.(bool)
			if !ok {
				return nil, types.NewValidationError(fmt.Sprintf("field %q must be a boolean", key))
			}
			updates[key] = b

		case "release_date", "sales_start_date", "pre_save_date":
			if value == nil {
				updates[key] = nil
				continue
			}
			str, err := asString(key, value)
			if err != nil {
				return nil, err
			}
			t, err := parseDate(str)
			if err != nil {
				return nil, types.NewValidationError(fmt.Sprintf("field %q is not a valid date", key))
			}
			updates[key] = t

		case "pre_save_option":
			str, err := asString(key, value)
			if err != nil {
				return nil, err
			}
			switch database.PreSaveOption(str) {
			case database.PreSaveImmediately, database.PreSaveSpecificDate, database.PreSaveNone:
				updates[key] = str
			default:
				return nil, types.NewValidationError(fmt.Sprintf("unknown pre-save option %q", str))
			}

		case "pricing_tier":
			str, err := asString(key, value)
			if err != nil {
				return nil, err
			}
			switch database.PricingTier(str) {
			case database.PricingLow, database.PricingMid, database.PricingHigh:
				updates[key] = str
			default:
				return nil, types.NewValidationError(fmt.Sprintf("unknown pricing tier %q", str))
			}

		case "territories":
			list, err := asStringList(key, value)
			if err != nil {
				return nil, err
			}
			for _, name := range list {
				if !ValidTerritory(name) {
					return nil, types.NewValidationError(fmt.Sprintf("unknown territory %q", name))
				}
			}
			updates[key] = list

		case "services":
			list, err := asStringList(key, value)
			if err != nil {
				return nil, err
			}
			for _, name := range list {
				if !ValidService(name) {
					return nil, types.NewValidationError(fmt.Sprintf("unknown service %q", name))
				}
			}
			updates[key] = list

		case "publishing_type":
			str, err := asString(key, value)
			if err != nil {
				return nil, err
			}
			switch database.PublishingType(str) {
			case database.PublishingControlled, database.PublishingPublisher, database.PublishingNotPublished:
				updates[key] = str
			default:
				return nil, types.NewValidationError(fmt.Sprintf("unknown publishing type %q", str))
			}

		default:
			return nil, types.NewValidationError(fmt.Sprintf("unknown or read-only field %q", key))
		}
	}

	return updates, nil
}

// coerceTrackFields converts a JSON field map into track column updates.
func coerceTrackFields(fields map[string]interface{}) (map[string]interface{}, error) {
	updates := make(map[string]interface{}, len(fields))

	for key, value := range fields {
		switch key {
		case "title":
			str, err := asString(key, value)
			if err != nil {
				return nil, err
			}
			if strings.TrimSpace(str) == "" {
				return nil, types.NewValidationError("track title must not be empty")
			}
			updates["title"] = str

		case "version", "lyrics_language", "lyrics":
			str, err := asString(key, value)
			if err != nil {
				return nil, err
			}
			updates[key] = str

		case "phonogram_line":
			str, err := asString(key, value)
			if err != nil {
				return nil, err
			}
			if strings.TrimSpace(str) == "" {
				return nil, types.NewValidationError("the ℗ line must not be empty")
			}
			updates[key] = str

		case "isrc":
			if value == nil {
				updates["isrc"] = nil
				continue
			}
			str, err := asString(key, value)
			if err != nil {
				return nil, err
			}
			updates["isrc"] = str

		case "auto_assign_isrc":
			b, ok := value.(bool)
			if !ok {
				return nil, types.NewValidationError(fmt.Sprintf("field %q must be a boolean", key))
			}
			updates[key] = b

		case "explicit":
			str, err := asString(key, value)
			if err != nil {
				return nil, err
			}
			switch database.ExplicitType(str) {
			case database.ExplicitNone, database.ExplicitExplicit, database.ExplicitClean:
				updates[key] = str
			default:
				return nil, types.NewValidationError(fmt.Sprintf("unknown explicit classification %q", str))
			}

		case "primary_artists", "featured_artists", "remixers", "songwriters", "producers":
			list, err := asStringList(key, value)
			if err != nil {
				return nil, err
			}
			updates[key] = list

		case "contributors":
			list, err := asContributorList(value)
			if err != nil {
				return nil, err
			}
			updates[key] = list

		default:
			return nil, types.NewValidationError(fmt.Sprintf("unknown or read-only field %q", key))
		}
	}

	return updates, nil
}

func asString(key string, value interface{}) (string, error) {
	str, ok := value.(string)
	if !ok {
		return "", types.NewValidationError(fmt.Sprintf("field %q must be a string", key))
	}
	return str, nil
}

func asStringList(key string, value interface{}) (database.StringList, error) {
	raw, ok := value.([]interface{})
	if !ok {
		return nil, types.NewValidationError(fmt.Sprintf("field %q must be a list of strings", key))
	}
	list := make(database.StringList, 0, len(raw))
	for _, item := range raw {
		str, ok := item.(string)
		if !ok {
			return nil, types.NewValidationError(fmt.Sprintf("field %q must be a list of strings", key))
		}
		list = append(list, str)
	}
	return list, nil
}

func asContributorList(value interface{}) (database.ContributorList, error) {
	raw, ok := value.([]interface{})
	if !ok {
		return nil, types.NewValidationError("field \"contributors\" must be a list")
	}

	valid := make(map[string]struct{}, len(database.ContributorRoles))
	for _, role := range database.ContributorRoles {
		valid[role] = struct{}{}
	}

	list := make(database.ContributorList, 0, len(raw))
	for _, item := range raw {
		entry, ok := item.(map[string]interface{})
		if !ok {
			return nil, types.NewValidationError("each contributor must be an object with role and names")
		}
		role, _ := entry["role"].(string)
		if _, ok := valid[role]; !ok {
			return nil, types.NewValidationError(fmt.Sprintf("unknown contributor role %q", role))
		}
		names, err := asStringList("contributors.names", entry["names"])
		if err != nil {
			return nil, err
		}
		list = append(list, database.Contributor{Role: role, Names: names})
	}
	return list, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func immutableField(name string) *types.AppError {
	err := types.NewAppError(types.ErrorCodeFieldImmutable,
		fmt.Sprintf("%s cannot be changed", name), http.StatusConflict)
	err.Severity = types.SeverityWarning
	return err
}
