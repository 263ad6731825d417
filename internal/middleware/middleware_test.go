package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/utils"
)

var secret = []byte("test-secret")

func init() { gin.SetMode(gin.TestMode) }

func router() *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthMiddleware(secret), func(c *gin.Context) {
		a, _ := ActorFrom(c)
		c.JSON(http.StatusOK, gin.H{"id": a.ActorID(), "role": a.ActorRole()})
	})
	r.GET("/desk", AuthMiddleware(secret), RequireRole(models.RoleAdmin, models.RoleReceptionist), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func token(t *testing.T, id, role string) string {
	t.Helper()
	tok, err := utils.GenerateJWT(secret, id, role, time.Hour)
	require.NoError(t, err)
	return tok
}

func TestAuthMiddleware(t *testing.T) {
	r := router()

	w := do(r, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_TOKEN")

	w = do(r, "/me", "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")

	w = do(r, "/me", token(t, "u1", "nurse"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, "/me", token(t, "d1", "doctor"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"d1","role":"doctor"}`, w.Body.String())
}

func TestRequireRole(t *testing.T) {
	r := router()
	assert.Equal(t, http.StatusForbidden, do(r, "/desk", token(t, "p1", "patient")).Code)
	assert.Equal(t, http.StatusNoContent, do(r, "/desk", token(t, "r1", "receptionist")).Code)
	assert.Equal(t, http.StatusNoContent, do(r, "/desk", token(t, "a1", "admin")).Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	r := gin.New()
	r.POST("/auth/login", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := []int{}
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	rl.evict(time.Now().Add(time.Minute))
	assert.Empty(t, rl.clients)
}
