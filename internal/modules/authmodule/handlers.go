package authmodule

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/soundfoundry/releasedesk/internal/api"
	"github.com/soundfoundry/releasedesk/internal/database"
	"github.com/soundfoundry/releasedesk/internal/middleware"
)

func (m *Module) signIn(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondWithValidationError(c, "email and password are required")
		return
	}

	session, profile, err := m.service.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}

	c.SetCookie("releasedesk_session", session.Token, int(session.ExpiresAt.Sub(session.CreatedAt).Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"token":      session.Token,
		"expires_at": session.ExpiresAt,
		"user":       profile,
	})
}

func (m *Module) signOut(c *gin.Context) {
	if err := m.service.SignOut(c.Request.Context(), c.GetString(middleware.ContextSessionID)); err != nil {
		api.RespondWithInternalError(c, "failed to sign out", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "signed out"})
}

func (m *Module) currentSession(c *gin.Context) {
	var profile database.Profile
	if err := m.db.First(&profile, "id = ?", c.GetString(middleware.ContextUserID)).Error; err != nil {
		api.RespondWithInternalError(c, "failed to load profile", err)
		return
	}

	roles, _ := c.Get(middleware.ContextRoles)
	c.JSON(http.StatusOK, gin.H{
		"user":  profile,
		"roles": roles,
	})
}

func (m *Module) confirmInvitation(c *gin.Context) {
	var req struct {
		Token       string `json:"token" binding:"required"`
		Password    string `json:"password" binding:"required,min=8"`
		DisplayName string `json:"display_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondWithValidationError(c, "token and a password of at least 8 characters are required")
		return
	}

	profile, err := m.service.ConfirmInvitation(c.Request.Context(), req.Token, req.Password, req.DisplayName)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": profile})
}

func (m *Module) userRoles(c *gin.Context) {
	roles, err := m.service.GetUserRoles(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"roles": roles})
}

func (m *Module) hasRole(c *gin.Context) {
	ok, err := m.service.HasRole(c.Request.Context(), c.GetString(middleware.ContextUserID), c.Param("role"))
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"has_role": ok})
}

func (m *Module) getProfile(c *gin.Context) {
	var profile database.Profile
	if err := m.db.First(&profile, "id = ?", c.GetString(middleware.ContextUserID)).Error; err != nil {
		api.RespondWithNotFound(c, "profile", c.GetString(middleware.ContextUserID))
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

func (m *Module) updateProfile(c *gin.Context) {
	var req struct {
		DisplayName *string `json:"display_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondWithValidationError(c, "invalid profile update")
		return
	}

	userID := c.GetString(middleware.ContextUserID)
	if req.DisplayName != nil {
		err := m.db.Model(&database.Profile{}).Where("id = ?", userID).
			Update("display_name", *req.DisplayName).Error
		if err != nil {
			api.RespondWithInternalError(c, "failed to update profile", err)
			return
		}
	}

	var profile database.Profile
	if err := m.db.First(&profile, "id = ?", userID).Error; err != nil {
		api.RespondWithInternalError(c, "failed to reload profile", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}
