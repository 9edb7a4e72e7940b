package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Minute)

	token, err := m.GenerateAccessToken("0b6e7f44-5c4b-4a8f-9d53-2a3c3f5e1a10")
	require.NoError(t, err)

	claims, err := m.ParseAndValidate(token)
	require.NoError(t, err)
	assert.Equal(t, "0b6e7f44-5c4b-4a8f-9d53-2a3c3f5e1a10", claims.Subject)
}

func TestJWTRejects(t *testing.T) {
	m := NewJWTManager("test-secret", time.Minute)
	token, err := m.GenerateAccessToken("user-1")
	require.NoError(t, err)

	_, err = NewJWTManager("other-secret", time.Minute).ParseAndValidate(token)
	assert.Error(t, err, "wrong secret")

	expired, err := NewJWTManager("test-secret", -time.Minute).GenerateAccessToken("user-1")
	require.NoError(t, err)
	_, err = m.ParseAndValidate(expired)
	assert.Error(t, err, "expired token")

	_, err = m.ParseAndValidate("not.a.jwt")
	assert.Error(t, err, "garbage")
}

func TestAuthRequired(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewJWTManager("test-secret", time.Minute)

	r := gin.New()
	r.GET("/me", AuthRequired(m), func(c *gin.Context) {
		c.String(http.StatusOK, GetUserID(c))
	})

	token, err := m.GenerateAccessToken("user-42")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "bearer " + token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, "user-42", w.Body.String())
			}
		})
	}
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptPasswordHasherWithCost(4)

	hash, err := h.Hash("correct horse")
	require.NoError(t, err)

	assert.NoError(t, h.Compare(hash, "correct horse"))
	assert.Error(t, h.Compare(hash, "battery staple"))
}
