package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/utils"
)

const (
	CtxUserID   = "userID"
	CtxUserRole = "userRole"
	CtxActor    = "actor"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, errorBody{Error: http.StatusText(status), Message: msg, Code: code})
}

// AuthMiddleware validates the bearer token and stores the caller's id, role
// and models.Actor in the gin context.
func AuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header required")
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abort(c, http.StatusUnauthorized, "INVALID_TOKEN_FORMAT", "Authorization header must be a Bearer token")
			return
		}

		claims, err := utils.ValidateJWT(secret, strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid token")
			return
		}
		actor, err := models.NewActor(claims.UserID, models.Role(claims.Role))
		if err != nil {
			abort(c, http.StatusUnauthorized, "INVALID_USER_INFO", "Token carries an unknown role")
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxUserRole, claims.Role)
		c.Set(CtxActor, actor)
		c.Next()
	}
}

// RequireRole lets only the listed roles through. It must run after
// AuthMiddleware.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	allowed := map[models.Role]struct{}{}
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "USER_NOT_AUTHENTICATED", "User not authenticated")
			return
		}
		if _, ok := allowed[actor.ActorRole()]; !ok {
			abort(c, http.StatusForbidden, "INSUFFICIENT_PERMISSIONS", "Your role cannot perform this action")
			return
		}
		c.Next()
	}
}

func ActorFrom(c *gin.Context) (models.Actor, bool) {
	v, ok := c.Get(CtxActor)
	if !ok {
		return nil, false
	}
	a, ok := v.(models.Actor)
	return a, ok
}
