package wizardmodule

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/soundfoundry/releasedesk/internal/api"
	"github.com/soundfoundry/releasedesk/internal/database"
	"github.com/soundfoundry/releasedesk/internal/middleware"
	"github.com/soundfoundry/releasedesk/internal/types"
)

func (m *Module) getState(c *gin.Context) {
	release, err := m.loadOwned(c)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}

	state, err := m.service.GetState(c.Request.Context(), sessionID(c), release.ID)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (m *Module) getDraft(c *gin.Context) {
	release, err := m.loadOwned(c)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}

	payload, err := m.service.GetDraft(c.Request.Context(), sessionID(c), release.ID, Section(c.Param("section")))
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": payload})
}

func (m *Module) putDraft(c *gin.Context) {
	release, err := m.loadOwned(c)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}

	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.RespondWithValidationError(c, "invalid draft payload")
		return
	}

	if err := m.service.PutDraft(c.Request.Context(), sessionID(c), release.ID, Section(c.Param("section")), payload); err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true})
}

func (m *Module) saveAndContinue(c *gin.Context) {
	release, err := m.loadOwned(c)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}

	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		api.RespondWithValidationError(c, "invalid field payload")
		return
	}

	state, err := m.service.SaveAndContinue(c.Request.Context(), sessionID(c), release.ID, Section(c.Param("section")), fields)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (m *Module) getOverview(c *gin.Context) {
	release, err := m.loadOwned(c)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}

	overview, err := m.service.Overview(c.Request.Context(), sessionID(c), release.ID)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (m *Module) submit(c *gin.Context) {
	release, err := m.loadOwned(c)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}

	submitted, err := m.service.Submit(c.Request.Context(), sessionID(c), release.ID, c.GetString(middleware.ContextUserID))
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"release": submitted})
}

// loadOwned loads the release and checks the builder belongs to the caller.
// Moderators use the moderation routes, not the builder.
func (m *Module) loadOwned(c *gin.Context) (*database.Release, error) {
	release, err := m.service.releases.GetRelease(c.Request.Context(), c.Param("id"))
	if err != nil {
		return nil, err
	}
	if release.CreatedBy != c.GetString(middleware.ContextUserID) {
		return nil, types.NewForbiddenError("only the creator can use the release builder")
	}
	return release, nil
}

func sessionID(c *gin.Context) string {
	return c.GetString(middleware.ContextSessionID)
}
