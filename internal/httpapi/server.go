// Package httpapi is the browser-facing web server: access gate, auth
// endpoints, server-rendered pages and the JSON API.
package httpapi

import (
	"context"
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"krankmeldung/internal/auth"
	"krankmeldung/internal/health"
	"krankmeldung/internal/middleware"
	"krankmeldung/internal/model"
	"krankmeldung/internal/service"
	"krankmeldung/internal/telemetry"
)

//go:embed templates/*.html
var templates embed.FS

// Service is the part of service.Service the web layer calls.
type Service interface {
	ListMitarbeiter(ctx context.Context) ([]model.Mitarbeiter, error)
	CreateMitarbeiter(ctx context.Context, in service.MitarbeiterInput) (*model.Mitarbeiter, error)
	UpdateMitarbeiter(ctx context.Context, id string, in service.MitarbeiterInput) (*model.Mitarbeiter, error)
	ListBenutzer(ctx context.Context) ([]model.Benutzer, error)

	ListKrankmeldungen(ctx context.Context, f model.KrankmeldungFilter) ([]model.Krankmeldung, error)
	GetKrankmeldung(ctx context.Context, id string) (*model.Krankmeldung, error)
	CreateKrankmeldung(ctx context.Context, in service.KrankmeldungInput) (*model.Krankmeldung, error)
	UpdateKrankmeldung(ctx context.Context, id string, in service.KrankmeldungInput) (*model.Krankmeldung, error)
	ChangeStatus(ctx context.Context, id string, in service.StatusInput) (*model.Krankmeldung, error)
	DeleteKrankmeldung(ctx context.Context, id string) error
	History(ctx context.Context, id string) ([]model.AenderungsLog, error)
}

type Options struct {
	Auth    *auth.Authenticator
	Service Service
	DB      health.DB
	Metrics *telemetry.Metrics
	// Limiter throttles sign-in attempts. Nil disables throttling.
	Limiter *middleware.RateLimiter
	// Bridge serves gRPC-Web calls when set.
	Bridge       http.Handler
	CookieSecure bool
}

type Server struct {
	auth    *auth.Authenticator
	svc     Service
	db      health.DB
	metrics *telemetry.Metrics
	limiter *middleware.RateLimiter
	bridge  http.Handler
	secure  bool
	pages   *template.Template
}

func New(opts Options) *Server {
	return &Server{
		auth:    opts.Auth,
		svc:     opts.Service,
		db:      opts.DB,
		metrics: opts.Metrics,
		limiter: opts.Limiter,
		bridge:  opts.Bridge,
		secure:  opts.CookieSecure,
		pages:   template.Must(template.New("").Funcs(funcs).ParseFS(templates, "templates/*.html")),
	}
}

func (s *Server) Routes() *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(s.pages)
	r.Use(gin.Recovery(), middleware.Logging(s.metrics), middleware.Gate(s.auth))

	r.GET("/favicon.ico", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
	if s.bridge != nil {
		r.POST("/krankmeldung.v1.KrankmeldungService/:method", gin.WrapH(s.bridge))
		r.OPTIONS("/krankmeldung.v1.KrankmeldungService/:method", gin.WrapH(s.bridge))
	}

	// pages
	r.GET("/", s.home)
	r.GET("/login", s.loginPage)
	r.GET("/dashboard", s.dashboard)
	r.GET("/admin", s.adminPage)

	// auth
	a := r.Group("/api/auth")
	signIn := []gin.HandlerFunc{s.signIn}
	if s.limiter != nil {
		signIn = append([]gin.HandlerFunc{middleware.LimitHTTP(s.limiter)}, signIn...)
	}
	a.POST("/callback/credentials", signIn...)
	a.GET("/session", s.session)
	a.POST("/signout", s.signOut)

	r.GET("/api/test-db", s.testDB)

	api := r.Group("/api")
	api.GET("/krankmeldungen", s.listKrankmeldungen)
	api.POST("/krankmeldungen", s.createKrankmeldung)
	api.GET("/krankmeldungen/:id", s.getKrankmeldung)
	api.PUT("/krankmeldungen/:id", s.updateKrankmeldung)
	api.DELETE("/krankmeldungen/:id", s.deleteKrankmeldung)
	api.POST("/krankmeldungen/:id/status", s.changeStatus)
	api.GET("/krankmeldungen/:id/aenderungen", s.history)
	api.GET("/mitarbeiter", s.listMitarbeiter)

	admin := r.Group("/admin/api")
	admin.POST("/mitarbeiter", s.createMitarbeiter)
	admin.PUT("/mitarbeiter/:id", s.updateMitarbeiter)
	admin.GET("/benutzer", s.listBenutzer)

	return r
}
