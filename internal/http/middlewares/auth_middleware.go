package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mkowalczyk/libreserve/internal/auth"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	jwt TokenVerifier
}

func NewAuthMiddleware(jwt TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

// RequireAuth is the authenticated capability: a valid, non-expired
// bearer token naming a known user. Ownership checks do not live here;
// handlers decide those after identity is established.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Missing or invalid Authorization header",
				},
			})
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Missing or invalid access token",
				},
			})
			return
		}

		claims, err := m.jwt.VerifyAccessToken(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Invalid or expired access token",
				},
			})
			return
		}

		// Stash useful bits of identity on the context
		c.Set(ctxUserIDKey, claims.UserID)
		c.Set(ctxNameKey, claims.Name)
		c.Set(ctxIsAdminKey, claims.IsAdmin)

		c.Next()
	}
}

// Helpers so handlers don't need to know the magic keys.

func UserIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxUserIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

func NameFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxNameKey)
	if !ok {
		return "", false
	}
	name, ok := v.(string)
	return name, ok
}

func IsAdminFromContext(c *gin.Context) bool {
	v, ok := c.Get(ctxIsAdminKey)
	if !ok {
		return false
	}
	isAdmin, ok := v.(bool)
	return ok && isAdmin
}

// SetIdentity seeds the identity keys directly. Test hook.
func SetIdentity(c *gin.Context, userID, name string, isAdmin bool) {
	c.Set(ctxUserIDKey, userID)
	c.Set(ctxNameKey, name)
	c.Set(ctxIsAdminKey, isAdmin)
}
