package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestSessionMiddlewareAssignsCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(SessionMiddleware(false))

	var seen string
	router.GET("/", func(c *gin.Context) {
		seen = SessionID(c)
		c.Status(http.StatusOK)
	})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == "" {
		t.Fatalf("expected a session id assigned")
	}

	var cookie *http.Cookie
	for _, c := range recorder.Result().Cookies() {
		if c.Name == sessionCookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatalf("expected session cookie set")
	}
	if cookie.Value != seen {
		t.Fatalf("cookie value %q does not match context session id %q", cookie.Value, seen)
	}
	if !cookie.HttpOnly {
		t.Fatalf("session cookie must be http-only")
	}
}

func TestSessionMiddlewareKeepsExistingCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(SessionMiddleware(false))

	var seen string
	router.GET("/", func(c *gin.Context) {
		seen = SessionID(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "existing-session"})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if seen != "existing-session" {
		t.Fatalf("expected existing session id kept, got %q", seen)
	}
	for _, c := range recorder.Result().Cookies() {
		if c.Name == sessionCookieName {
			t.Fatalf("existing session must not be reissued")
		}
	}
}
