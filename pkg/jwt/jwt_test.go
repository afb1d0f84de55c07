package jwt

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"studyhub/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(expire time.Duration) *JWTService {
	return NewJWTService(config.JWTConfig{Secret: "test-secret", Issuer: "studyhub", ExpireTime: expire})
}

func TestGenerateAndValidate(t *testing.T) {
	s := newService(time.Hour)
	token, err := s.GenerateToken(42, "alice")
	require.NoError(t, err)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
	assert.Equal(t, "alice", claims.Username())
}

func TestValidateToken_Rejects(t *testing.T) {
	s := newService(time.Hour)
	token, err := s.GenerateToken(1, "alice")
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{Secret: "other", Issuer: "studyhub", ExpireTime: time.Hour})
	_, err = other.ValidateToken(token)
	assert.Error(t, err)

	expired := newService(-time.Minute)
	old, err := expired.GenerateToken(1, "alice")
	require.NoError(t, err)
	_, err = s.ValidateToken(old)
	assert.Error(t, err)

	_, err = s.ValidateToken("")
	assert.Error(t, err)

	_, err = s.GenerateToken(0, "nobody")
	assert.Error(t, err)
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := newService(time.Hour)

	r := gin.New()
	r.GET("/me", s.AuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": GetUserID(c), "name": GetUsername(c)})
	})

	token, err := s.GenerateToken(7, "bob")
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"short token", "Bearer x", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				assert.JSONEq(t, `{"id":7,"name":"bob"}`, w.Body.String())
			}
		})
	}
}
