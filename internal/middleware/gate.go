package middleware

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"krankmeldung/internal/auth"
)

const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

type Verifier interface {
	Verify(ctx context.Context, raw string) (*auth.Claims, error)
}

// Gate enforces the path policy in a single pass. Requests without a valid
// session go to the login page with a callbackUrl; non-admins asking for
// admin paths go to the dashboard. Verified claims are put on the request
// context.
func Gate(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		access := Classify(c.Request.URL.Path)
		if access == Public || access == Excluded {
			c.Next()
			return
		}

		claims, err := v.Verify(c.Request.Context(), auth.TokenFromRequest(c.Request))
		if err != nil {
			c.Redirect(http.StatusTemporaryRedirect, LoginURL(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		if access == Admin && !claims.IsAdmin {
			c.Redirect(http.StatusTemporaryRedirect, DashboardPath)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(auth.WithClaims(c.Request.Context(), claims))
		c.Next()
	}
}

// LoginURL builds the login redirect that brings the user back afterwards.
func LoginURL(callback string) string {
	if callback == "" {
		return LoginPath
	}
	return LoginPath + "?callbackUrl=" + url.QueryEscape(callback)
}
