package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"licensedesk.com/licensedesk/security"
	"licensedesk.com/licensedesk/web/common"
)

const DefaultCookieName = "licensedesk.session"

func tokenFromRequest(c *gin.Context, cookieName string) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		cookie, err := c.Cookie(cookieName)
		if err != nil || cookie == "" {
			return "", false
		}
		return cookie, true
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// Authentication accepts a Bearer token or the session cookie and stores the
// verified claims under common.ClaimsKey.
func Authentication(jwtSecret []byte, cookieName string) gin.HandlerFunc {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return func(c *gin.Context) {
		tokenStr, ok := tokenFromRequest(c, cookieName)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("missing bearer token"))
			return
		}

		claims, err := security.ParseAdminToken(tokenStr, jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("invalid or expired token"))
			return
		}

		c.Set(common.ClaimsKey, claims)
		c.Next()
	}
}

// Claims returns the claims stored by Authentication, or nil.
func Claims(c *gin.Context) *security.AdminClaims {
	value, ok := c.Get(common.ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := value.(*security.AdminClaims)
	return claims
}
