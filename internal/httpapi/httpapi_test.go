package httpapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"krankmeldung/internal/auth"
	"krankmeldung/internal/httpapi"
	"krankmeldung/internal/middleware"
	"krankmeldung/internal/model"
	"krankmeldung/internal/service"
	"krankmeldung/internal/session"
	"krankmeldung/internal/telemetry"
)

const secret = "web-secret"

func init() { gin.SetMode(gin.TestMode) }

type users map[string]*model.Benutzer

// downEmail simulates a lookup while the database is unreachable.
const downEmail = "down@example.com"

func (u users) BenutzerByEmail(_ context.Context, email string) (*model.Benutzer, error) {
	if email == downEmail {
		return nil, errors.New("connection refused")
	}
	return u[email], nil
}

type fakeDB struct {
	err error
}

func (f fakeDB) CountBenutzer(context.Context) (int64, error)       { return 2, f.err }
func (f fakeDB) CountMitarbeiter(context.Context) (int64, error)    { return 5, nil }
func (f fakeDB) CountKrankmeldungen(context.Context) (int64, error) { return 9, nil }
func (f fakeDB) Ping(context.Context) error                         { return nil }

type fakeService struct {
	listFn   func(ctx context.Context, f model.KrankmeldungFilter) ([]model.Krankmeldung, error)
	getFn    func(ctx context.Context, id string) (*model.Krankmeldung, error)
	createFn func(ctx context.Context, in service.KrankmeldungInput) (*model.Krankmeldung, error)
	statusFn func(ctx context.Context, id string, in service.StatusInput) (*model.Krankmeldung, error)
}

func (f fakeService) ListMitarbeiter(context.Context) ([]model.Mitarbeiter, error) {
	return []model.Mitarbeiter{{ID: "m-1", Personalnummer: "100", Vorname: "Anna", Nachname: "Alt", Aktiv: true}}, nil
}

func (f fakeService) CreateMitarbeiter(context.Context, service.MitarbeiterInput) (*model.Mitarbeiter, error) {
	return nil, service.ErrForbidden
}

func (f fakeService) UpdateMitarbeiter(context.Context, string, service.MitarbeiterInput) (*model.Mitarbeiter, error) {
	return nil, service.ErrForbidden
}

func (f fakeService) ListBenutzer(context.Context) ([]model.Benutzer, error) { return nil, nil }

func (f fakeService) ListKrankmeldungen(ctx context.Context, filter model.KrankmeldungFilter) ([]model.Krankmeldung, error) {
	if f.listFn == nil {
		return []model.Krankmeldung{sample()}, nil
	}
	return f.listFn(ctx, filter)
}

func (f fakeService) GetKrankmeldung(ctx context.Context, id string) (*model.Krankmeldung, error) {
	if f.getFn == nil {
		return nil, service.ErrNotFound
	}
	return f.getFn(ctx, id)
}

func (f fakeService) CreateKrankmeldung(ctx context.Context, in service.KrankmeldungInput) (*model.Krankmeldung, error) {
	if f.createFn == nil {
		k := sample()
		return &k, nil
	}
	return f.createFn(ctx, in)
}

func (f fakeService) UpdateKrankmeldung(context.Context, string, service.KrankmeldungInput) (*model.Krankmeldung, error) {
	return nil, service.ErrNotFound
}

func (f fakeService) ChangeStatus(ctx context.Context, id string, in service.StatusInput) (*model.Krankmeldung, error) {
	if f.statusFn == nil {
		return nil, service.ErrNotFound
	}
	return f.statusFn(ctx, id, in)
}

func (f fakeService) DeleteKrankmeldung(context.Context, string) error { return nil }

func (f fakeService) History(context.Context, string) ([]model.AenderungsLog, error) { return nil, nil }

func sample() model.Krankmeldung {
	return model.Krankmeldung{
		ID:            "k-1",
		MitarbeiterID: "m-1",
		StartDatum:    time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC),
		EndDatum:      time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		Status:        model.StatusEingereicht,
	}
}

type env struct {
	router http.Handler
	auth   *auth.Authenticator
}

func newEnv(t *testing.T, svc httpapi.Service, db fakeDB, limiter *middleware.RateLimiter) env {
	t.Helper()
	hash, err := auth.HashPassword("geheim123")
	require.NoError(t, err)
	u := users{
		"anna@example.com": {ID: "u-1", Email: "anna@example.com", Name: "Anna", PasswordHash: hash},
		"chef@example.com": {ID: "u-2", Email: "chef@example.com", Name: "Chef", PasswordHash: hash, IsAdmin: true},
	}
	a := auth.NewAuthenticator(u, session.NewMemory(), secret, time.Hour)
	srv := httpapi.New(httpapi.Options{
		Auth:    a,
		Service: svc,
		DB:      db,
		Metrics: telemetry.NewMetrics(),
		Limiter: limiter,
	})
	return env{router: srv.Routes(), auth: a}
}

func (e env) token(t *testing.T, admin bool) string {
	t.Helper()
	email := "anna@example.com"
	if admin {
		email = "chef@example.com"
	}
	tok, _, err := e.auth.SignIn(context.Background(), email, "geheim123")
	require.NoError(t, err)
	return tok
}

func (e env) do(method, path, tok, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tok != "" {
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: tok})
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	return nil
}

func TestTestDBSuccess(t *testing.T) {
	e := newEnv(t, fakeService{}, fakeDB{}, nil)
	w := e.do(http.MethodGet, "/api/test-db", e.token(t, false), "", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "success", body["status"])
	assert.NotEmpty(t, body["message"])
	stats := body["stats"].(map[string]any)
	assert.Equal(t, float64(2), stats["userCount"])
	assert.Equal(t, float64(5), stats["mitarbeiterCount"])
	assert.Equal(t, float64(9), stats["krankmeldungCount"])
	assert.GreaterOrEqual(t, stats["connectionTimeMs"].(float64), float64(0))

	_, err := time.Parse(time.RFC3339, body["timestamp"].(string))
	assert.NoError(t, err)
	assert.NotContains(t, body, "error")
}

func TestTestDBFailure(t *testing.T) {
	e := newEnv(t, fakeService{}, fakeDB{err: errors.New("connection refused")}, nil)
	w := e.do(http.MethodGet, "/api/test-db", e.token(t, false), "", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)

	body := decode(t, w)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "connection refused", body["error"])
	assert.NotEmpty(t, body["message"])
	assert.NotEmpty(t, body["timestamp"])
	assert.NotContains(t, body, "stats")
}

func TestTestDBRequiresSession(t *testing.T) {
	e := newEnv(t, fakeService{}, fakeDB{}, nil)
	w := e.do(http.MethodGet, "/api/test-db", "", "", "")
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "/login?callbackUrl=%2Fapi%2Ftest-db", w.Header().Get("Location"))
}

func TestSignInForm(t *testing.T) {
	e := newEnv(t, fakeService{}, fakeDB{}, nil)
	form := url.Values{"email": {"Anna@Example.com"}, "password": {"geheim123"}, "callbackUrl": {"/admin?x=1"}}

	w := e.do(http.MethodPost, "/api/auth/callback/credentials", "", "application/x-www-form-urlencoded", form.Encode())
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin?x=1", w.Header().Get("Location"))

	c := sessionCookie(w)
	require.NotNil(t, c)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, 3600, c.MaxAge)

	claims, err := e.auth.Verify(context.Background(), c.Value)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.ID)
}

func TestSignInFormWrongPassword(t *testing.T) {
	e := newEnv(t, fakeService{}, fakeDB{}, nil)
	form := url.Values{"email": {"anna@example.com"}, "password": {"falsch"}, "callbackUrl": {"/dashboard"}}

	w := e.do(http.MethodPost, "/api/auth/callback/credentials", "", "application/x-www-form-urlencoded", form.Encode())
	assert.Equal(t, http.StatusSeeOther, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/login", loc.Path)
	assert.Equal(t, "CredentialsSignin", loc.Query().Get("error"))
	assert.Equal(t, "/dashboard", loc.Query().Get("callbackUrl"))
	assert.Nil(t, sessionCookie(w))
}

func TestSignInJSON(t *testing.T) {
	e := newEnv(t, fakeService{}, fakeDB{}, nil)

	w := e.do(http.MethodPost, "/api/auth/callback/credentials", "", "application/json",
		`{"email":"chef@example.com","password":"geheim123","callbackUrl":"https://evil.example/"}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "/dashboard", body["url"], "absolute callbacks are dropped")
	user := body["session"].(map[string]any)["user"].(map[string]any)
	assert.Equal(t, "u-2", user["id"])
	assert.Equal(t, true, user["isAdmin"])

	w = e.do(http.MethodPost, "/api/auth/callback/credentials", "", "application/json",
		`{"email":"chef@example.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(http.MethodPost, "/api/auth/callback/credentials", "", "application/json", `{`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignInLookupFailure(t *testing.T) {
	e := newEnv(t, fakeService{}, fakeDB{}, nil)

	w := e.do(http.MethodPost, "/api/auth/callback/credentials", "", "application/json",
		`{"email":"`+downEmail+`","password":"geheim123"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Nil(t, sessionCookie(w))

	w = e.do(http.MethodPost, "/api/auth/callback/credentials", "", "application/x-www-form-urlencoded",
		"email="+downEmail+"&password=geheim123")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSignInRateLimited(t *testing.T) {
	e := newEnv(t, fakeService{}, fakeDB{}, middleware.NewRateLimiter(0.001, 1))
	body := `{"email":"anna@example.com","password":"falsch"}`

	w := e.do(http.MethodPost, "/api/auth/callback/credentials", "", "application/json", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = e.do(http.MethodPost, "/api/auth/callback/credentials", "", "application/json", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestSessionEndpoint(t *testing.T) {
	e := newEnv(t, fakeService{}, fakeDB{}, nil)

	w := e.do(http.MethodGet, "/api/auth/session", "", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w))

	w = e.do(http.MethodGet, "/api/auth/session", e.token(t, false), "", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "anna@example.com", body["user"].(map[string]any)["email"])
	assert.NotEmpty(t, body["expires"])
}

func TestSignOut(t *testing.T) {
	e := newEnv(t, fakeService{}, fakeDB{}, nil)
	tok := e.token(t, false)

	w := e.do(http.MethodPost, "/api/auth/signout", tok, "", "")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	c := sessionCookie(w)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
	assert.Negative(t, c.MaxAge)

	w = e.do(http.MethodGet, "/dashboard", tok, "", "")
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "/login?callbackUrl=%2Fdashboard", w.Header().Get("Location"))
}

func TestPageGuards(t *testing.T) {
	e := newEnv(t, fakeService{}, fakeDB{}, nil)
	user, admin := e.token(t, false), e.token(t, true)

	w := e.do(http.MethodGet, "/login", user, "", "")
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))

	w = e.do(http.MethodGet, "/login?callbackUrl=%2Fadmin", "", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="/admin"`)

	w = e.do(http.MethodGet, "/", "", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodGet, "/dashboard", user, "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "2026-03-06 bis 2026-03-09")

	w = e.do(http.MethodGet, "/admin", user, "", "")
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))

	w = e.do(http.MethodGet, "/admin", admin, "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Anna Alt")
}

func TestAPIErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
		code string
	}{
		{"validation", validation.Errors{"endDatum": errors.New("must not be before startDatum")}, http.StatusBadRequest, "validation_failed"},
		{"overlap", service.ErrConflict, http.StatusConflict, "overlap"},
		{"transition", fmt.Errorf("%w: abgelehnt -> bestaetigt", service.ErrInvalidTransition), http.StatusConflict, "invalid_transition"},
		{"forbidden", service.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"not found", service.ErrNotFound, http.StatusNotFound, "not_found"},
		{"internal", errors.New("db exploded"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := fakeService{createFn: func(context.Context, service.KrankmeldungInput) (*model.Krankmeldung, error) {
				return nil, tt.err
			}}
			e := newEnv(t, svc, fakeDB{}, nil)
			w := e.do(http.MethodPost, "/api/krankmeldungen", e.token(t, false), "application/json",
				`{"startDatum":"2026-03-06","endDatum":"2026-03-09"}`)
			assert.Equal(t, tt.want, w.Code)
			body := decode(t, w)
			assert.Equal(t, tt.code, body["error"].(map[string]any)["code"])
			assert.NotContains(t, w.Body.String(), "db exploded")
		})
	}
}

func TestAPIValidationFields(t *testing.T) {
	svc := fakeService{createFn: func(context.Context, service.KrankmeldungInput) (*model.Krankmeldung, error) {
		return nil, validation.Errors{"startDatum": errors.New("cannot be blank")}
	}}
	e := newEnv(t, svc, fakeDB{}, nil)
	w := e.do(http.MethodPost, "/api/krankmeldungen", e.token(t, false), "application/json", `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := decode(t, w)["error"].(map[string]any)["fields"].(map[string]any)
	assert.Equal(t, "cannot be blank", fields["startDatum"])
}

func TestAPICreateAndList(t *testing.T) {
	var got service.KrankmeldungInput
	svc := fakeService{createFn: func(_ context.Context, in service.KrankmeldungInput) (*model.Krankmeldung, error) {
		got = in
		k := sample()
		return &k, nil
	}}
	e := newEnv(t, svc, fakeDB{}, nil)

	w := e.do(http.MethodPost, "/api/krankmeldungen", e.token(t, false), "application/json",
		`{"startDatum":"2026-03-06","endDatum":"2026-03-09","attest":true}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, got.Attest)
	body := decode(t, w)
	assert.Equal(t, "2026-03-06", body["startDatum"])
	assert.Equal(t, float64(4), body["tage"])
	assert.Equal(t, float64(2), body["arbeitstage"])

	w = e.do(http.MethodGet, "/api/krankmeldungen?status=eingereicht&von=2026-01-01", e.token(t, false), "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	w = e.do(http.MethodGet, "/api/krankmeldungen?status=offen", e.token(t, false), "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = e.do(http.MethodGet, "/api/krankmeldungen?von=06.03.2026", e.token(t, false), "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = e.do(http.MethodGet, "/api/krankmeldungen?mitarbeiterId=abc", e.token(t, false), "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPIChangeStatusUsesSessionContext(t *testing.T) {
	svc := fakeService{statusFn: func(ctx context.Context, id string, in service.StatusInput) (*model.Krankmeldung, error) {
		c, ok := auth.FromContext(ctx)
		if !ok || !c.IsAdmin {
			return nil, service.ErrForbidden
		}
		k := sample()
		k.Status = model.Status(in.Status)
		return &k, nil
	}}
	e := newEnv(t, svc, fakeDB{}, nil)

	w := e.do(http.MethodPost, "/api/krankmeldungen/k-1/status", e.token(t, true), "application/json", `{"status":"bestaetigt"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "bestaetigt", decode(t, w)["status"])

	w = e.do(http.MethodPost, "/api/krankmeldungen/k-1/status", e.token(t, false), "application/json", `{"status":"bestaetigt"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminAPIGated(t *testing.T) {
	e := newEnv(t, fakeService{}, fakeDB{}, nil)

	w := e.do(http.MethodGet, "/admin/api/benutzer", e.token(t, false), "", "")
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))

	w = e.do(http.MethodGet, "/admin/api/benutzer", e.token(t, true), "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	e := newEnv(t, fakeService{}, fakeDB{}, nil)
	e.do(http.MethodGet, "/", "", "", "")

	w := e.do(http.MethodGet, "/metrics", "", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "krankmeldung_http_requests_total")
}
