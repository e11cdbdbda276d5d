package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/spotlist/api-go/services"
	"github.com/spotlist/api-go/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type stubResolver struct{}

func (stubResolver) ResolveActor(ctx context.Context, kind services.ActorKind, id uint) (*services.Actor, error) {
	if id == 404 {
		return nil, services.NewNotFoundError(string(kind), id)
	}
	return services.NewActor(kind, id, "someone@example.com", "Someone"), nil
}

func signToken(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims, secret string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		actor := utils.GetActor(c)
		if actor == nil {
			c.JSON(http.StatusOK, gin.H{"kind": ""})
			return
		}
		c.JSON(http.StatusOK, gin.H{"kind": actor.Kind, "id": actor.ID})
	})
	r.GET("/", handlers...)
	return r
}

func do(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter(AuthMiddleware(testSecret, stubResolver{}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"missing header", "", http.StatusUnauthorized, "Authorization header is required"},
		{"bad format", "Token abc", http.StatusUnauthorized, "Invalid token format"},
		{"wrong secret", "Bearer " + signToken(t, jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 1}, "other"), http.StatusUnauthorized, "Invalid token"},
		{"missing user id", "Bearer " + signToken(t, jwt.SigningMethodHS256, jwt.MapClaims{"role": "user"}, testSecret), http.StatusUnauthorized, "Invalid token claims"},
		{"fractional user id", "Bearer " + signToken(t, jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 1.5}, testSecret), http.StatusUnauthorized, "Invalid token claims"},
		{"oversized user id", "Bearer " + signToken(t, jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 1e20}, testSecret), http.StatusUnauthorized, "Invalid token claims"},
		{"unknown account", "Bearer " + signToken(t, jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 404}, testSecret), http.StatusUnauthorized, "Unknown account"},
		{"user token", "Bearer " + signToken(t, jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 5}, testSecret), http.StatusOK, `"kind":"user"`},
		{"admin token", "Bearer " + signToken(t, jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 9, "role": "admin"}, testSecret), http.StatusOK, `"kind":"admin"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.header)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	r := newRouter(OptionalAuth(testSecret, stubResolver{}))

	w := do(r, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":""`)

	w = do(r, "Bearer "+signToken(t, jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 5}, testSecret))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"user"`)

	w = do(r, "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	r := newRouter(AuthMiddleware(testSecret, stubResolver{}), RequireAdmin())

	w := do(r, "Bearer "+signToken(t, jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 5}, testSecret))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, "Bearer "+signToken(t, jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 9, "role": "admin"}, testSecret))
	assert.Equal(t, http.StatusOK, w.Code)
}
