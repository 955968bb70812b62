package middleware

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alimgiray/better-github/pkg/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSessionRouter(t *testing.T) *gin.Engine {
	t.Helper()
	require.NoError(t, config.Load())

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(SessionMiddleware())
	return router
}

func testSessionCookie(expiresAt time.Time) (SessionData, string) {
	session := SessionData{
		UserID:    "test-user",
		Username:  "testuser",
		Email:     "test@example.com",
		ExpiresAt: expiresAt,
	}
	data, _ := json.Marshal(session)
	encoded := base64.URLEncoding.EncodeToString(data)
	return session, createSignature(encoded) + "." + encoded
}

func serve(router *gin.Engine, method, path, cookie string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "session", Value: cookie})
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeSetCookie(t *testing.T, header string) SessionData {
	t.Helper()
	value := strings.TrimPrefix(strings.Split(header, ";")[0], "session=")
	decoded, err := url.QueryUnescape(value)
	require.NoError(t, err)

	parts := strings.Split(decoded, ".")
	require.Len(t, parts, 2)
	require.True(t, verifySignature(parts[1], parts[0]), "cookie signature should be valid")

	raw, err := base64.URLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	var session SessionData
	require.NoError(t, json.Unmarshal(raw, &session))
	return session
}

func TestSessionExtension(t *testing.T) {
	router := setupSessionRouter(t)
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	original, cookie := testSessionCookie(time.Now().Add(time.Hour))
	w := serve(router, http.MethodGet, "/test", cookie)

	assert.Equal(t, http.StatusOK, w.Code)
	header := w.Header().Get("Set-Cookie")
	require.Contains(t, header, "session=")

	extended := decodeSetCookie(t, header)
	assert.Equal(t, original.UserID, extended.UserID)
	assert.Equal(t, original.Username, extended.Username)
	assert.Equal(t, original.Email, extended.Email)
	assert.True(t, extended.ExpiresAt.After(time.Now().Add(23*time.Hour)), "expiry should slide forward")
}

func TestSessionExtensionWithoutBody(t *testing.T) {
	router := setupSessionRouter(t)
	router.GET("/empty", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	_, cookie := testSessionCookie(time.Now().Add(time.Hour))
	w := serve(router, http.MethodGet, "/empty", cookie)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "session=")
}

func TestSessionExtensionOnError(t *testing.T) {
	router := setupSessionRouter(t)
	router.GET("/error", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "test error"})
	})

	_, cookie := testSessionCookie(time.Now().Add(time.Hour))
	w := serve(router, http.MethodGet, "/error", cookie)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Header().Get("Set-Cookie"), "error responses keep the cookie as is")
}

func TestSessionExtensionWithoutSession(t *testing.T) {
	router := setupSessionRouter(t)
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	tests := []struct {
		name   string
		cookie string
	}{
		{name: "no cookie"},
		{name: "tampered cookie", cookie: "bad-signature.e30="},
		{name: "malformed cookie", cookie: "garbage"},
	}

	expired := func() string {
		_, cookie := testSessionCookie(time.Now().Add(-time.Minute))
		return cookie
	}()
	tests = append(tests, struct {
		name   string
		cookie string
	}{name: "expired cookie", cookie: expired})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, http.MethodGet, "/test", tt.cookie)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Empty(t, w.Header().Get("Set-Cookie"))
		})
	}
}

func TestClearSessionIsNotOverridden(t *testing.T) {
	router := setupSessionRouter(t)
	router.POST("/logout", func(c *gin.Context) {
		ClearSession(c)
		c.Redirect(http.StatusFound, "/")
	})

	_, cookie := testSessionCookie(time.Now().Add(time.Hour))
	w := serve(router, http.MethodPost, "/logout", cookie)

	assert.Equal(t, http.StatusFound, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "session", cookies[0].Name)
	assert.Equal(t, "", cookies[0].Value)
	assert.True(t, cookies[0].MaxAge < 0)
}

func TestSetSession(t *testing.T) {
	router := setupSessionRouter(t)
	router.GET("/login", func(c *gin.Context) {
		require.NoError(t, SetSession(c, "user-1", "alice", "alice@example.com"))
		session := GetSession(c)
		require.NotNil(t, session)
		c.String(http.StatusOK, session.Username)
	})

	w := serve(router, http.MethodGet, "/login", "")

	assert.Equal(t, "alice", w.Body.String())
	headers := w.Header().Values("Set-Cookie")
	require.Len(t, headers, 1)

	session := decodeSetCookie(t, headers[0])
	assert.Equal(t, "user-1", session.UserID)
	assert.Equal(t, "alice@example.com", session.Email)
}

func TestAuthRequired(t *testing.T) {
	router := setupSessionRouter(t)
	protected := router.Group("/", AuthRequired())
	protected.GET("/api/private", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": GetSession(c).Username})
	})
	protected.GET("/settings", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	_, cookie := testSessionCookie(time.Now().Add(time.Hour))

	tests := []struct {
		name     string
		path     string
		cookie   string
		wantCode int
		wantBody string
		wantLoc  string
	}{
		{name: "api without session", path: "/api/private", wantCode: http.StatusUnauthorized, wantBody: `{"error":"authentication required"}`},
		{name: "page without session", path: "/settings", wantCode: http.StatusFound, wantLoc: "/login"},
		{name: "api with session", path: "/api/private", cookie: cookie, wantCode: http.StatusOK, wantBody: `{"user":"testuser"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, http.MethodGet, tt.path, tt.cookie)
			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, w.Body.String())
			}
			if tt.wantLoc != "" {
				assert.Equal(t, tt.wantLoc, w.Header().Get("Location"))
			}
		})
	}
}
