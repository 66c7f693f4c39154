package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

type staticSessions map[string]string

func (s staticSessions) SignedIn(sessionID, userID string) bool {
	return s[sessionID] == userID
}

func sign(t *testing.T, claims jwt.MapClaims, key string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}

func adminClaims(sid string) jwt.MapClaims {
	return jwt.MapClaims{"sub": "local-admin", "role": "admin", "sid": sid, "exp": time.Now().Add(time.Hour).Unix()}
}

func newRouter(sessions SessionVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", AuthMiddleware(secret, sessions), AdminOnly(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": GetUserID(c), "session": GetSessionID(c)})
	})
	r.GET("/session", Session(), func(c *gin.Context) {
		c.String(http.StatusOK, GetSessionID(c))
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	sessions := staticSessions{"s1": "local-admin"}
	r := newRouter(sessions)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"bad signature", "Bearer " + sign(t, adminClaims("s1"), "other"), http.StatusUnauthorized},
		{"expired", "Bearer " + sign(t, jwt.MapClaims{"sub": "local-admin", "role": "admin", "sid": "s1", "exp": time.Now().Add(-time.Minute).Unix()}, secret), http.StatusUnauthorized},
		{"signed out session", "Bearer " + sign(t, adminClaims("s2"), secret), http.StatusUnauthorized},
		{"not admin", "Bearer " + sign(t, jwt.MapClaims{"sub": "local-admin", "role": "customer", "sid": "s1"}, secret), http.StatusForbidden},
		{"ok", "Bearer " + sign(t, adminClaims("s1"), secret), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestAuthMiddleware_QueryToken(t *testing.T) {
	r := newRouter(staticSessions{"s1": "local-admin"})

	req := httptest.NewRequest(http.MethodGet, "/admin?access_token="+sign(t, adminClaims("s1"), secret), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":"local-admin","session":"s1"}`, w.Body.String())
}

func TestSession(t *testing.T) {
	r := newRouter(staticSessions{})

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	req.Header.Set(SessionHeader, "browser-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "browser-42", w.Body.String())
	assert.Equal(t, "browser-42", w.Header().Get(SessionHeader))

	for _, bad := range []string{"", "has spaces", "../etc"} {
		req := httptest.NewRequest(http.MethodGet, "/session", nil)
		req.Header.Set(SessionHeader, bad)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Len(t, w.Body.String(), 36)
		assert.Equal(t, w.Body.String(), w.Header().Get(SessionHeader))
	}
}
