package httpapi

import (
	"html/template"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"krankmeldung/internal/auth"
	"krankmeldung/internal/middleware"
	"krankmeldung/internal/model"
	"krankmeldung/internal/service"
)

var funcs = template.FuncMap{
	"date": func(v service.KrankmeldungView) string {
		if v.StartDatum == v.EndDatum {
			return v.StartDatum
		}
		return v.StartDatum + " bis " + v.EndDatum
	},
}

type pageData struct {
	Title       string
	User        *auth.SessionUser
	CallbackURL string
	Error       string
	Meldungen   []service.KrankmeldungView
	Mitarbeiter []model.Mitarbeiter
}

// guard re-reads the session for a page render. The gate has normally
// already run; pages don't depend on it.
func (s *Server) guard(c *gin.Context, admin bool) (*auth.Claims, bool) {
	claims, ok := s.auth.SessionFromRequest(c.Request)
	if !ok {
		c.Redirect(http.StatusTemporaryRedirect, middleware.LoginPath)
		return nil, false
	}
	if admin && !claims.IsAdmin {
		c.Redirect(http.StatusTemporaryRedirect, middleware.DashboardPath)
		return nil, false
	}
	c.Request = c.Request.WithContext(auth.WithClaims(c.Request.Context(), claims))
	return claims, true
}

func user(c *auth.Claims) *auth.SessionUser {
	if c == nil {
		return nil
	}
	u := c.Session().User
	return &u
}

func (s *Server) home(c *gin.Context) {
	claims, _ := s.auth.SessionFromRequest(c.Request)
	c.HTML(http.StatusOK, "home.html", pageData{Title: "Krankmeldungen", User: user(claims)})
}

func (s *Server) loginPage(c *gin.Context) {
	if _, ok := s.auth.SessionFromRequest(c.Request); ok {
		c.Redirect(http.StatusTemporaryRedirect, middleware.DashboardPath)
		return
	}
	data := pageData{Title: "Anmelden", CallbackURL: safeCallback(c.Query("callbackUrl"))}
	if c.Query("error") != "" {
		data.Error = "E-Mail oder Passwort ist falsch."
	}
	c.HTML(http.StatusOK, "login.html", data)
}

func (s *Server) dashboard(c *gin.Context) {
	claims, ok := s.guard(c, false)
	if !ok {
		return
	}
	data := pageData{Title: "Übersicht", User: user(claims)}
	list, err := s.svc.ListKrankmeldungen(c.Request.Context(), model.KrankmeldungFilter{})
	if err != nil {
		log.Printf("dashboard user=%s error=%v", claims.ID, err)
		data.Error = "Krankmeldungen konnten nicht geladen werden."
	}
	data.Meldungen = service.Views(list)
	c.HTML(http.StatusOK, "dashboard.html", data)
}

func (s *Server) adminPage(c *gin.Context) {
	claims, ok := s.guard(c, true)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	data := pageData{Title: "Verwaltung", User: user(claims)}

	list, err := s.svc.ListKrankmeldungen(ctx, model.KrankmeldungFilter{Status: model.StatusEingereicht})
	if err == nil {
		data.Mitarbeiter, err = s.svc.ListMitarbeiter(ctx)
	}
	if err != nil {
		log.Printf("admin page user=%s error=%v", claims.ID, err)
		data.Error = "Daten konnten nicht geladen werden."
	}
	data.Meldungen = service.Views(list)
	c.HTML(http.StatusOK, "admin.html", data)
}
