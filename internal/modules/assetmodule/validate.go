package assetmodule

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/soundfoundry/releasedesk/internal/types"
)

// VideoRequirements is reported to the client on every video upload. The
// limits are advisory: uploads outside them are still accepted.
var VideoRequirements = map[string]string{
	"max_size":       "500MB",
	"min_resolution": "1920x1080",
	"formats":        ".mp4, .mov, .avi",
}

var (
	artworkExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}
	videoExtensions   = map[string]bool{".mp4": true, ".mov": true, ".avi": true}
)

const minArtworkDimension = 3000

// validateArtwork checks extension, squareness and minimum dimensions.
func validateArtwork(filename string, r io.Reader) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !artworkExtensions[ext] {
		return uploadRejected(fmt.Sprintf("artwork must be a .jpg, .jpeg or .png file, got %q", ext))
	}

	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return uploadRejected("artwork file could not be decoded as an image")
	}
	if cfg.Width != cfg.Height {
		return uploadRejected(fmt.Sprintf("artwork must be square, got %dx%d", cfg.Width, cfg.Height))
	}
	if cfg.Width < minArtworkDimension {
		return uploadRejected(fmt.Sprintf("artwork must be at least %dx%d, got %dx%d",
			minArtworkDimension, minArtworkDimension, cfg.Width, cfg.Height))
	}
	return nil
}

// validateAudio accepts WAV only, by MIME type or extension.
func validateAudio(filename, contentType string) error {
	if contentType == "audio/wav" || contentType == "audio/x-wav" {
		return nil
	}
	if strings.ToLower(filepath.Ext(filename)) == ".wav" {
		return nil
	}
	return uploadRejected("audio must be a WAV file")
}

// validateVideo checks the container extension. Size and resolution limits
// are reported in the response but not enforced.
func validateVideo(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !videoExtensions[ext] {
		return uploadRejected(fmt.Sprintf("video must be a .mp4, .mov or .avi file, got %q", ext))
	}
	return nil
}

func uploadRejected(message string) *types.AppError {
	err := types.NewAppError(types.ErrorCodeUploadRejected, message, http.StatusBadRequest)
	err.UserMessage = message
	return err
}
