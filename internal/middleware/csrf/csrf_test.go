package csrf

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func newApp(cfg Config) *echo.Echo {
	e := echo.New()
	e.Use(Middleware(cfg))
	e.GET("/form", func(c echo.Context) error {
		token, _ := c.Get(CtxToken).(string)
		return c.String(http.StatusOK, token)
	})
	e.POST("/submit", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return e
}

func fetchToken(t *testing.T, e *echo.Echo) (string, *http.Cookie) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/form", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "XSRF-TOKEN" {
			require.Equal(t, rec.Body.String(), ck.Value)
			return ck.Value, ck
		}
	}
	t.Fatal("XSRF-TOKEN cookie not set")
	return "", nil
}

func TestGetIssuesToken(t *testing.T) {
	e := newApp(DefaultConfig())
	token, _ := fetchToken(t, e)
	require.NotEmpty(t, token)
}

func TestPostWithoutTokenRejected(t *testing.T) {
	e := newApp(DefaultConfig())

	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	req.Header.Set("Referer", "http://example.com/form")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPostWithMatchingTokenAccepted(t *testing.T) {
	e := newApp(DefaultConfig())
	token, cookie := fetchToken(t, e)

	form := url.Values{"csrf_token": {token}}
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", "http://example.com/form")
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestPostWithMismatchedTokenRejected(t *testing.T) {
	e := newApp(DefaultConfig())
	_, cookie := fetchToken(t, e)

	form := url.Values{"csrf_token": {"otro-token"}}
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", "http://example.com/form")
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPostCrossOriginRejected(t *testing.T) {
	e := newApp(DefaultConfig())
	token, cookie := fetchToken(t, e)

	form := url.Values{"csrf_token": {token}}
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Origin", "http://evil.example.net")
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSkipPathsBypassChecks(t *testing.T) {
	e := newApp(Config{SkipPaths: []string{"/submit"}})

	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
