package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/ratemate/ratemate/internal/utils"
)

const testSecret = "middleware-test-secret"

// okHandler reports the context identity so tests can assert the
// middleware injected the claims.
func okHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id": c.Get("user_id"),
		"email":   c.Get("email"),
		"role":    c.Get("role"),
	})
}

func doRequest(t *testing.T, mw echo.MiddlewareFunc, authHeader string, setup func(echo.Context)) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if setup != nil {
		setup(c)
	}
	h := mw(okHandler)
	if err := h(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func TestJWTAuthMissingHeader(t *testing.T) {
	rec := doRequest(t, JWTAuth(testSecret), "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthMalformedHeader(t *testing.T) {
	for _, h := range []string{"Basic abc", "Bearer", "token-without-scheme"} {
		rec := doRequest(t, JWTAuth(testSecret), h, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", h, rec.Code)
		}
	}
}

func TestJWTAuthInvalidToken(t *testing.T) {
	rec := doRequest(t, JWTAuth(testSecret), "Bearer not.a.jwt", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthExpiredToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 7, "x@y.com", "NORMAL", -1)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	rec := doRequest(t, JWTAuth(testSecret), "Bearer "+tok.Token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthWrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("some-other-secret", 7, "x@y.com", "NORMAL", 60)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	rec := doRequest(t, JWTAuth(testSecret), "Bearer "+tok.Token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthValidTokenInjectsClaims(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 7, "x@y.com", "OWNER", 60)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	rec := doRequest(t, JWTAuth(testSecret), "Bearer "+tok.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{`"user_id":7`, `"email":"x@y.com"`, `"role":"OWNER"`} {
		if !strings.Contains(body, want) {
			t.Errorf("body %s missing %s", body, want)
		}
	}
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name    string
		role    any
		allowed []string
		want    int
	}{
		{"allowed", "ADMIN", []string{"ADMIN"}, http.StatusOK},
		{"one of several", "OWNER", []string{"OWNER", "ADMIN"}, http.StatusOK},
		{"wrong role", "NORMAL", []string{"ADMIN"}, http.StatusForbidden},
		{"missing role", nil, []string{"ADMIN"}, http.StatusForbidden},
		{"non-string role", 42, []string{"ADMIN"}, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, RequireRole(tc.allowed...), "", func(c echo.Context) {
				if tc.role != nil {
					c.Set("role", tc.role)
				}
			})
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}
