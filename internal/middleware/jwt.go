package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/classtrack/classtrack-api/internal/models"
	"github.com/classtrack/classtrack-api/internal/service"
	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
	"github.com/classtrack/classtrack-api/pkg/response"
)

// ContextUserKey is the gin context key storing JWT claims.
const ContextUserKey = "currentUser"

// ContextSessionKey is the gin context key storing the resolved session
// context (active teacher plus impersonation slot).
const ContextSessionKey = "currentSession"

// JWT protects routes by requiring a valid access token and a live
// server-side session. Both claims and session context are attached for
// downstream handlers.
func JWT(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		session, err := authService.ResolveSession(c.Request.Context(), claims)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Set(ContextSessionKey, *session)
		c.Next()
	}
}

// CurrentClaims extracts the JWT claims attached by JWT.
func CurrentClaims(c *gin.Context) (*models.AuthClaims, bool) {
	value, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*models.AuthClaims)
	return claims, ok
}

// CurrentSession extracts the session context attached by JWT.
func CurrentSession(c *gin.Context) (models.SessionContext, bool) {
	value, ok := c.Get(ContextSessionKey)
	if !ok {
		return models.SessionContext{}, false
	}
	session, ok := value.(models.SessionContext)
	return session, ok
}
