package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alimgiray/better-github/pkg/config"
	"github.com/gin-gonic/gin"
)

const (
	sessionCookieName = "session"
	sessionKey        = "session"
	// sessionWrittenKey marks requests that set or cleared the cookie themselves
	sessionWrittenKey = "session_written"
)

type SessionData struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionMiddleware loads the session from its cookie and slides its expiry forward
// on every successful response. Error responses leave the cookie untouched.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionData := getSessionFromCookie(c)
		c.Set(sessionKey, sessionData)

		if sessionData == nil {
			c.Next()
			return
		}

		writer := &sessionRefreshWriter{ResponseWriter: c.Writer, c: c, session: sessionData}
		c.Writer = writer

		c.Next()

		if !writer.Written() {
			writer.refresh()
		}
	}
}

// sessionRefreshWriter re-issues the session cookie just before the response headers go out
type sessionRefreshWriter struct {
	gin.ResponseWriter
	c       *gin.Context
	session *SessionData
	done    bool
}

func (w *sessionRefreshWriter) refresh() {
	if w.done {
		return
	}
	w.done = true

	if w.Status() >= http.StatusBadRequest || w.c.GetBool(sessionWrittenKey) {
		return
	}

	extended := *w.session
	extended.ExpiresAt = time.Now().Add(config.AppConfig.SessionTTL())
	value, err := encodeSession(&extended)
	if err != nil {
		return
	}
	http.SetCookie(w.ResponseWriter, newSessionCookie(value, int(config.AppConfig.SessionTTL().Seconds())))
}

func (w *sessionRefreshWriter) WriteHeaderNow() {
	w.refresh()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *sessionRefreshWriter) Write(data []byte) (int, error) {
	w.refresh()
	return w.ResponseWriter.Write(data)
}

func (w *sessionRefreshWriter) WriteString(s string) (int, error) {
	w.refresh()
	return w.ResponseWriter.WriteString(s)
}

// getSessionFromCookie extracts and validates session data from cookie
func getSessionFromCookie(c *gin.Context) *SessionData {
	cookie, err := c.Cookie(sessionCookieName)
	if err != nil {
		return nil
	}

	// Split cookie value (signature.data)
	parts := strings.Split(cookie, ".")
	if len(parts) != 2 {
		return nil
	}

	signature, data := parts[0], parts[1]

	if !verifySignature(data, signature) {
		return nil
	}

	decodedData, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		return nil
	}

	var sessionData SessionData
	if err := json.Unmarshal(decodedData, &sessionData); err != nil {
		return nil
	}

	if time.Now().After(sessionData.ExpiresAt) {
		return nil
	}

	return &sessionData
}

func encodeSession(sessionData *SessionData) (string, error) {
	data, err := json.Marshal(sessionData)
	if err != nil {
		return "", err
	}

	encodedData := base64.URLEncoding.EncodeToString(data)
	return createSignature(encodedData) + "." + encodedData, nil
}

func newSessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    url.QueryEscape(value),
		MaxAge:   maxAge,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// SetSession creates a new session cookie
func SetSession(c *gin.Context, userID, username, email string) error {
	ttl := config.AppConfig.SessionTTL()
	sessionData := &SessionData{
		UserID:    userID,
		Username:  username,
		Email:     email,
		ExpiresAt: time.Now().Add(ttl),
	}

	value, err := encodeSession(sessionData)
	if err != nil {
		return err
	}

	c.Set(sessionWrittenKey, true)
	c.Set(sessionKey, sessionData)
	http.SetCookie(c.Writer, newSessionCookie(value, int(ttl.Seconds())))
	return nil
}

// ClearSession removes the session cookie
func ClearSession(c *gin.Context) {
	c.Set(sessionWrittenKey, true)
	c.Set(sessionKey, (*SessionData)(nil))
	http.SetCookie(c.Writer, newSessionCookie("", -1))
}

// createSignature creates HMAC signature for data
func createSignature(data string) string {
	h := hmac.New(sha256.New, []byte(config.AppConfig.Session.Secret))
	h.Write([]byte(data))
	return base64.URLEncoding.EncodeToString(h.Sum(nil))
}

// verifySignature verifies HMAC signature
func verifySignature(data, signature string) bool {
	expectedSignature := createSignature(data)
	return hmac.Equal([]byte(signature), []byte(expectedSignature))
}

// GetSession retrieves session data from context
func GetSession(c *gin.Context) *SessionData {
	session, exists := c.Get(sessionKey)
	if !exists {
		return nil
	}

	if sessionData, ok := session.(*SessionData); ok {
		return sessionData
	}

	return nil
}
