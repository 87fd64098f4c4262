package httpapi

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"krankmeldung/internal/auth"
	"krankmeldung/internal/middleware"
)

type credentials struct {
	Email       string `json:"email" form:"email"`
	Password    string `json:"password" form:"password"`
	CallbackURL string `json:"callbackUrl" form:"callbackUrl"`
}

// signIn is the credentials callback. Form posts are answered with
// redirects, JSON posts with JSON.
func (s *Server) signIn(c *gin.Context) {
	asJSON := strings.HasPrefix(c.ContentType(), "application/json")

	var in credentials
	if err := c.ShouldBind(&in); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", "invalid sign-in payload")
		return
	}
	callback := safeCallback(in.CallbackURL)

	tok, claims, err := s.auth.SignIn(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.countLogin("failure")
			if asJSON {
				writeError(c, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
				return
			}
			q := url.Values{"error": {"CredentialsSignin"}, "callbackUrl": {callback}}
			c.Redirect(http.StatusSeeOther, middleware.LoginPath+"?"+q.Encode())
			return
		}
		s.countLogin("error")
		log.Printf("sign-in error=%v", err)
		writeError(c, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	s.countLogin("success")
	log.Printf("sign-in user=%s admin=%t", claims.ID, claims.IsAdmin)

	s.setSessionCookie(c, tok, int(s.auth.TTL().Seconds()))
	if asJSON {
		c.JSON(http.StatusOK, gin.H{"url": callback, "session": claims.Session()})
		return
	}
	c.Redirect(http.StatusSeeOther, callback)
}

// session returns the current session or an empty object.
func (s *Server) session(c *gin.Context) {
	claims, ok := s.auth.SessionFromRequest(c.Request)
	if !ok {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, claims.Session())
}

func (s *Server) signOut(c *gin.Context) {
	if tok := auth.TokenFromRequest(c.Request); tok != "" {
		if err := s.auth.SignOut(c.Request.Context(), tok); err != nil {
			log.Printf("sign-out revoke error=%v", err)
		}
	}
	s.setSessionCookie(c, "", -1)

	if strings.Contains(c.GetHeader("Accept"), "application/json") || strings.HasPrefix(c.ContentType(), "application/json") {
		c.JSON(http.StatusOK, gin.H{"url": middleware.LoginPath})
		return
	}
	c.Redirect(http.StatusSeeOther, middleware.LoginPath)
}

func (s *Server) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, value, maxAge, "/", "", s.secure, true)
}

func (s *Server) countLogin(result string) {
	if s.metrics != nil {
		s.metrics.Logins.WithLabelValues(result).Inc()
	}
}

// safeCallback only accepts same-site relative paths.
func safeCallback(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return middleware.DashboardPath
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return middleware.DashboardPath
	}
	return raw
}
