package releasemodule

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/soundfoundry/releasedesk/internal/api"
	"github.com/soundfoundry/releasedesk/internal/database"
	"github.com/soundfoundry/releasedesk/internal/middleware"
	"github.com/soundfoundry/releasedesk/internal/types"
)

func (m *Module) listReleases(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	isModerator := middleware.HasRole(c, database.RoleModerator)

	releases, err := m.service.ListForViewer(c.Request.Context(), userID, isModerator)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"releases": releases,
		"count":    len(releases),
	})
}

func (m *Module) createRelease(c *gin.Context) {
	var req struct {
		Name          string  `json:"name"`
		Type          string  `json:"type"`
		Format        string  `json:"format"`
		CatalogNumber string  `json:"catalog_number"`
		UPC           *string `json:"upc"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondWithValidationError(c, "invalid release payload")
		return
	}

	release, err := m.service.Create(c.Request.Context(), CreateParams{
		Name:          req.Name,
		Type:          database.ReleaseType(req.Type),
		Format:        database.ReleaseFormat(req.Format),
		CatalogNumber: req.CatalogNumber,
		UPC:           req.UPC,
		CreatedBy:     c.GetString(middleware.ContextUserID),
	})
	if err != nil {
		api.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"release": release})
}

func (m *Module) getRelease(c *gin.Context) {
	release, err := m.loadVisible(c)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}

	isModerator := middleware.HasRole(c, database.RoleModerator)
	c.JSON(http.StatusOK, gin.H{
		"release": release,
		"actions": AvailableActions(release.Status, isModerator),
	})
}

func (m *Module) updateRelease(c *gin.Context) {
	release, err := m.loadVisible(c)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	if release.CreatedBy != c.GetString(middleware.ContextUserID) {
		api.RespondWithError(c, types.NewForbiddenError("only the creator can edit a release"))
		return
	}

	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		api.RespondWithValidationError(c, "invalid field payload")
		return
	}

	updated, err := m.service.ApplyFields(c.Request.Context(), release.ID, fields)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"release": updated})
}

func (m *Module) openForEdit(c *gin.Context) {
	release, err := m.service.OpenForEdit(c.Request.Context(), c.Param("id"), c.GetString(middleware.ContextUserID))
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"release": release})
}

func (m *Module) takedownIntent(c *gin.Context) {
	release, err := m.loadVisible(c)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}

	token, err := m.service.TakedownIntent(c.Request.Context(), release.ID, c.GetString(middleware.ContextUserID))
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"confirmation_token": token,
		"message":            "confirm the takedown with your password",
	})
}

func (m *Module) confirmTakedown(c *gin.Context) {
	var req struct {
		ConfirmationToken string `json:"confirmation_token"`
		Password          string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondWithValidationError(c, "confirmation token and password are required")
		return
	}

	release, err := m.service.ConfirmTakedown(c.Request.Context(), c.Param("id"),
		c.GetString(middleware.ContextUserID), req.ConfirmationToken, req.Password)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"release": release})
}

func (m *Module) updateTrack(c *gin.Context) {
	var track database.Track
	if err := m.db.First(&track, "id = ?", c.Param("id")).Error; err != nil {
		api.RespondWithNotFound(c, "track", c.Param("id"))
		return
	}

	release, err := m.service.GetRelease(c.Request.Context(), track.ReleaseID)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	if release.CreatedBy != c.GetString(middleware.ContextUserID) && !middleware.HasRole(c, database.RoleModerator) {
		api.RespondWithError(c, types.NewForbiddenError("not allowed to edit this track"))
		return
	}

	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		api.RespondWithValidationError(c, "invalid field payload")
		return
	}

	updated, err := m.service.UpdateTrack(c.Request.Context(), track.ID, fields)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"track": updated})
}

// Moderator handlers

func (m *Module) listReleased(c *gin.Context) {
	releases, err := m.service.ListReleased(c.Request.Context())
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"releases": releases,
		"count":    len(releases),
	})
}

func (m *Module) approveRelease(c *gin.Context) {
	release, err := m.service.Approve(c.Request.Context(), c.Param("id"), c.GetString(middleware.ContextUserID))
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"release": release})
}

func (m *Module) rejectRelease(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondWithValidationError(c, "a rejection reason is required")
		return
	}

	release, err := m.service.Reject(c.Request.Context(), c.Param("id"), c.GetString(middleware.ContextUserID), req.Reason)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"release": release})
}

func (m *Module) assignUPC(c *gin.Context) {
	var req struct {
		UPC string `json:"upc"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondWithValidationError(c, "a UPC is required")
		return
	}

	release, err := m.service.AssignUPC(c.Request.Context(), c.Param("id"), c.GetString(middleware.ContextUserID), req.UPC)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"release": release})
}

func (m *Module) assignISRC(c *gin.Context) {
	var req struct {
		ISRC string `json:"isrc"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondWithValidationError(c, "an ISRC is required")
		return
	}

	track, err := m.service.AssignISRC(c.Request.Context(), c.Param("id"), c.GetString(middleware.ContextUserID), req.ISRC)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"track": track})
}

func (m *Module) listTerritories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"territories": Territories, "count": len(Territories)})
}

func (m *Module) listServices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"services": StreamingServices, "count": len(StreamingServices)})
}

// loadVisible loads the release and enforces catalog visibility: creators see
// their own releases, moderators see everything under their purview.
func (m *Module) loadVisible(c *gin.Context) (*database.Release, error) {
	release, err := m.service.GetRelease(c.Request.Context(), c.Param("id"))
	if err != nil {
		return nil, err
	}

	userID := c.GetString(middleware.ContextUserID)
	if release.CreatedBy == userID || middleware.HasRole(c, database.RoleModerator) {
		return release, nil
	}
	return nil, types.NewForbiddenError("release is not visible to this account")
}
