package assetmodule

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/soundfoundry/releasedesk/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngImage(t *testing.T, width, height int) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))))
	return bytes.NewReader(buf.Bytes())
}

func TestValidateArtworkDimensionBoundaries(t *testing.T) {
	cases := []struct {
		name   string
		width  int
		height int
		ok     bool
	}{
		{"exactly at minimum", 3000, 3000, true},
		{"above minimum", 3200, 3200, true},
		{"one short", 2999, 3000, false},
		{"not square", 3000, 3001, false},
		{"small square", 500, 500, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateArtwork("cover.png", pngImage(t, tc.width, tc.height))
			if tc.ok {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				appErr, ok := err.(*types.AppError)
				require.True(t, ok)
				assert.Equal(t, types.ErrorCodeUploadRejected, appErr.Code)
			}
		})
	}
}

func TestValidateArtworkExtension(t *testing.T) {
	err := validateArtwork("cover.webp", pngImage(t, 3000, 3000))
	require.Error(t, err)

	err = validateArtwork("cover.gif", pngImage(t, 3000, 3000))
	require.Error(t, err)
}

func TestValidateArtworkGarbage(t *testing.T) {
	err := validateArtwork("cover.png", bytes.NewReader([]byte("not an image")))
	require.Error(t, err)
}

func TestValidateAudio(t *testing.T) {
	assert.NoError(t, validateAudio("take1.wav", ""))
	assert.NoError(t, validateAudio("TAKE1.WAV", ""))
	assert.NoError(t, validateAudio("take1.bin", "audio/wav"))
	assert.NoError(t, validateAudio("take1.bin", "audio/x-wav"))

	require.Error(t, validateAudio("take1.mp3", "audio/mpeg"))
	require.Error(t, validateAudio("take1.flac", ""))
}

func TestValidateVideo(t *testing.T) {
	assert.NoError(t, validateVideo("clip.mp4"))
	assert.NoError(t, validateVideo("clip.MOV"))
	assert.NoError(t, validateVideo("clip.avi"))

	require.Error(t, validateVideo("clip.mkv"))
	require.Error(t, validateVideo("clip"))
}

func TestStoreRejectsEscapes(t *testing.T) {
	store, err := NewStore(t.TempDir(), "/api/storage")
	require.NoError(t, err)

	_, err = store.Save("artwork", "../outside.png", bytes.NewReader([]byte("x")))
	require.Error(t, err)

	_, err = store.Save("no-such-bucket", "a.png", bytes.NewReader([]byte("x")))
	require.Error(t, err)
}

func TestStoreRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir(), "/api/storage/")
	require.NoError(t, err)

	path, err := store.Save(BucketAudio, "take1.wav", bytes.NewReader([]byte("RIFF")))
	require.NoError(t, err)
	assert.Equal(t, "take1.wav", path)
	assert.Equal(t, "/api/storage/audio/take1.wav", store.PublicURL(BucketAudio, path))

	f, err := store.Open(BucketAudio, "take1.wav")
	require.NoError(t, err)
	defer f.Close()

	_, err = store.Open(BucketAudio, "missing.wav")
	require.Error(t, err)
}
