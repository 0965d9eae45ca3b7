package releasemodule

import (
	"testing"

	"github.com/soundfoundry/releasedesk/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceReleaseFieldsRejectsUnknownKeys(t *testing.T) {
	release := &database.Release{}
	_, err := coerceReleaseFields(release, map[string]interface{}{"status": "sent_to_stores"})
	require.Error(t, err)

	_, err = coerceReleaseFields(release, map[string]interface{}{"no_such_field": "x"})
	require.Error(t, err)
}

func TestCoerceReleaseFieldsTerritoryMembership(t *testing.T) {
	release := &database.Release{}

	updates, err := coerceReleaseFields(release, map[string]interface{}{
		"territories": []interface{}{"Germany", "Japan"},
	})
	require.NoError(t, err)
	assert.Equal(t, database.StringList{"Germany", "Japan"}, updates["territories"])

	_, err = coerceReleaseFields(release, map[string]interface{}{
		"territories": []interface{}{"Atlantis"},
	})
	require.Error(t, err)
}

func TestCoerceReleaseFieldsDates(t *testing.T) {
	release := &database.Release{}

	updates, err := coerceReleaseFields(release, map[string]interface{}{
		"release_date": "2026-10-01",
	})
	require.NoError(t, err)
	assert.NotNil(t, updates["release_date"])

	_, err = coerceReleaseFields(release, map[string]interface{}{
		"release_date": "next friday",
	})
	require.Error(t, err)
}

func TestCoerceTrackFieldsContributors(t *testing.T) {
	updates, err := coerceTrackFields(map[string]interface{}{
		"contributors": []interface{}{
			map[string]interface{}{"role": "composer", "names": []interface{}{"A. Writer"}},
		},
	})
	require.NoError(t, err)
	list, ok := updates["contributors"].(database.ContributorList)
	require.True(t, ok)
	require.Len(t, list, 1)
	assert.Equal(t, "composer", list[0].Role)

	_, err = coerceTrackFields(map[string]interface{}{
		"contributors": []interface{}{
			map[string]interface{}{"role": "roadie", "names": []interface{}{"B"}},
		},
	})
	require.Error(t, err)
}

func TestCoerceTrackFieldsRequiredText(t *testing.T) {
	_, err := coerceTrackFields(map[string]interface{}{"title": "  "})
	require.Error(t, err)

	_, err = coerceTrackFields(map[string]interface{}{"phonogram_line": ""})
	require.Error(t, err)

	updates, err := coerceTrackFields(map[string]interface{}{"explicit": "clean"})
	require.NoError(t, err)
	assert.Equal(t, "clean", updates["explicit"])
}
