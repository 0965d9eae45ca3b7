package assetmodule

import (
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/soundfoundry/releasedesk/internal/api"
	"github.com/soundfoundry/releasedesk/internal/database"
	"github.com/soundfoundry/releasedesk/internal/events"
	"github.com/soundfoundry/releasedesk/internal/logger"
	"github.com/soundfoundry/releasedesk/internal/middleware"
	"github.com/soundfoundry/releasedesk/internal/services"
	"github.com/soundfoundry/releasedesk/internal/types"
)

func (m *Module) uploadArtwork(c *gin.Context) {
	releases, release, err := m.ownedRelease(c)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}

	header, file, err := formFile(c)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	defer file.Close()

	if err := validateArtwork(header.Filename, file); err != nil {
		api.RespondWithError(c, err)
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		api.RespondWithInternalError(c, "failed to read upload", err)
		return
	}

	path := uuid.New().String() + strings.ToLower(filepath.Ext(header.Filename))
	if _, err := m.store.Save(BucketArtwork, path, file); err != nil {
		api.RespondWithError(c, err)
		return
	}

	url := m.store.PublicURL(BucketArtwork, path)
	if err := releases.AttachArtwork(c.Request.Context(), release.ID, url); err != nil {
		api.RespondWithError(c, err)
		return
	}

	m.publishUpload(BucketArtwork, path, release.ID, header.Size)
	c.JSON(http.StatusCreated, gin.H{"url": url})
}

func (m *Module) uploadAudio(c *gin.Context) {
	releases, release, err := m.ownedRelease(c)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}

	header, file, err := formFile(c)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	defer file.Close()

	if err := validateAudio(header.Filename, header.Header.Get("Content-Type")); err != nil {
		api.RespondWithError(c, err)
		return
	}

	title := probeTitle(file, header.Filename)
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		api.RespondWithInternalError(c, "failed to read upload", err)
		return
	}

	path := uuid.New().String() + strings.ToLower(filepath.Ext(header.Filename))
	if _, err := m.store.Save(BucketAudio, path, file); err != nil {
		api.RespondWithError(c, err)
		return
	}

	url := m.store.PublicURL(BucketAudio, path)
	track, err := releases.AddTrack(c.Request.Context(), release.ID, title, BucketAudio, path, url)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}

	m.publishUpload(BucketAudio, path, release.ID, header.Size)
	c.JSON(http.StatusCreated, gin.H{"track": track, "url": url})
}

func (m *Module) uploadVideo(c *gin.Context) {
	releases, release, err := m.ownedRelease(c)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}

	header, file, err := formFile(c)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	defer file.Close()

	if err := validateVideo(header.Filename); err != nil {
		api.RespondWithError(c, err)
		return
	}

	path := uuid.New().String() + strings.ToLower(filepath.Ext(header.Filename))
	if _, err := m.store.Save(BucketVideo, path, file); err != nil {
		api.RespondWithError(c, err)
		return
	}

	url := m.store.PublicURL(BucketVideo, path)
	if err := releases.AttachVideo(c.Request.Context(), release.ID, url); err != nil {
		api.RespondWithError(c, err)
		return
	}

	m.publishUpload(BucketVideo, path, release.ID, header.Size)
	c.JSON(http.StatusCreated, gin.H{
		"url":          url,
		"requirements": VideoRequirements,
	})
}

func (m *Module) serveObject(c *gin.Context) {
	bucket := c.Param("bucket")
	path := strings.TrimPrefix(c.Param("path"), "/")

	f, err := m.store.Open(bucket, path)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		api.RespondWithInternalError(c, "failed to stat stored object", err)
		return
	}
	http.ServeContent(c.Writer, c.Request, filepath.Base(path), info.ModTime(), f)
}

// ownedRelease loads the target release and checks the caller created it.
func (m *Module) ownedRelease(c *gin.Context) (services.ReleaseService, *database.Release, error) {
	releases, err := m.releaseService()
	if err != nil {
		return nil, nil, types.NewInternalError("release service unavailable", err)
	}

	release, err := releases.GetRelease(c.Request.Context(), c.Param("id"))
	if err != nil {
		return nil, nil, err
	}
	if release.CreatedBy != c.GetString(middleware.ContextUserID) {
		return nil, nil, types.NewForbiddenError("only the creator can upload assets for a release")
	}
	return releases, release, nil
}

func (m *Module) publishUpload(bucket, path, releaseID string, size int64) {
	if m.eventBus != nil {
		m.eventBus.Publish(events.NewAssetUploadedEvent(bucket, path, releaseID, size))
	}
}

// probeTitle reads embedded metadata for a title and falls back to the
// filename stem. WAV files rarely carry tags, so the fallback is the common
// path.
func probeTitle(file multipart.File, filename string) string {
	if meta, err := tag.ReadFrom(file); err == nil && strings.TrimSpace(meta.Title()) != "" {
		return strings.TrimSpace(meta.Title())
	}

	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if stem == "" {
		stem = "Untitled"
	}
	return stem
}

func formFile(c *gin.Context) (*multipart.FileHeader, multipart.File, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, nil, types.NewValidationError("a file field is required")
	}

	file, err := header.Open()
	if err != nil {
		logger.Error("failed to open uploaded file: %v", err)
		return nil, nil, types.NewInternalError("failed to open upload", err)
	}
	return header, file, nil
}
