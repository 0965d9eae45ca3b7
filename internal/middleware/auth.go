package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/soundfoundry/releasedesk/internal/api"
	"github.com/soundfoundry/releasedesk/internal/services"
	"github.com/soundfoundry/releasedesk/internal/types"
)

// Context keys set by RequireSession.
const (
	ContextUserID    = "user_id"
	ContextSessionID = "session_id"
	ContextRoles     = "roles"
)

// RequireSession resolves the bearer session token and aborts with 401 when
// it is missing or expired. Roles are resolved once here; mutating handlers
// still re-check with HasRole before acting.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			api.RespondWithError(c, types.NewAppError(types.ErrorCodeSessionNotFound, "authentication required", http.StatusUnauthorized))
			c.Abort()
			return
		}

		auth, err := services.Get[services.AuthService](services.AuthServiceName)
		if err != nil {
			api.RespondWithInternalError(c, "auth service unavailable", err)
			c.Abort()
			return
		}

		session, profile, err := auth.ValidateSession(c.Request.Context(), token)
		if err != nil {
			api.RespondWithError(c, err)
			c.Abort()
			return
		}

		roles, err := auth.GetUserRoles(c.Request.Context(), profile.ID)
		if err != nil {
			api.RespondWithError(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserID, profile.ID)
		c.Set(ContextSessionID, session.Token)
		c.Set(ContextRoles, roles)
		c.Next()
	}
}

// RequireRole aborts with 403 unless the session user holds the role. The
// role is re-checked against the auth service rather than trusting the
// context copy.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(ContextUserID)
		if userID == "" {
			api.RespondWithError(c, types.NewForbiddenError("no authenticated user"))
			c.Abort()
			return
		}

		auth, err := services.Get[services.AuthService](services.AuthServiceName)
		if err != nil {
			api.RespondWithInternalError(c, "auth service unavailable", err)
			c.Abort()
			return
		}

		ok, err := auth.HasRole(c.Request.Context(), userID, role)
		if err != nil {
			api.RespondWithError(c, err)
			c.Abort()
			return
		}
		if !ok {
			api.RespondWithError(c, types.NewForbiddenError("insufficient role"))
			c.Abort()
			return
		}

		c.Next()
	}
}

// HasRole reports whether the request context carries the role. Used to shape
// non-mutating responses (action availability); mutations go through
// RequireRole.
func HasRole(c *gin.Context, role string) bool {
	roles, ok := c.Get(ContextRoles)
	if !ok {
		return false
	}
	list, ok := roles.([]string)
	if !ok {
		return false
	}
	for _, r := range list {
		if r == role {
			return true
		}
	}
	return false
}

func sessionToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie("releasedesk_session"); err == nil {
		return cookie
	}
	return ""
}
