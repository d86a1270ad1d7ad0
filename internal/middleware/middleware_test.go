package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"greeneats-be/internal/auth"
	"greeneats-be/internal/logger"
	"greeneats-be/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/test", func(c *gin.Context) {
		assert.NotEmpty(t, logger.RequestIDFrom(c.Request.Context()))
		c.Status(http.StatusOK)
	})

	t.Run("GeneratesWhenMissing", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("PreservesExisting", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Request-ID", "req-existing")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "req-existing", w.Header().Get("X-Request-ID"))
	})
}

func TestAuth(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")

	r := gin.New()
	r.Use(Auth())
	r.GET("/whoami", func(c *gin.Context) {
		id, ok := utils.GetUserIDFromContext(c.Request.Context())
		if !ok {
			c.JSON(http.StatusOK, gin.H{"anonymous": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": id, "role": utils.GetUserRoleFromContext(c.Request.Context())})
	})

	t.Run("ValidToken", func(t *testing.T) {
		token, err := auth.GenerateJWT(7, "USER", "u@example.com")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Contains(t, w.Body.String(), `"user_id":7`)
	})

	t.Run("NoToken", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))

		assert.Contains(t, w.Body.String(), "anonymous")
	})

	t.Run("GarbageToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Contains(t, w.Body.String(), "anonymous")
	})
}

func TestRequireUserAndAdmin(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")

	r := gin.New()
	r.Use(Auth())
	r.GET("/user", RequireUser(), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/admin", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(path, token string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	userToken, err := auth.GenerateJWT(1, "USER", "u@example.com")
	require.NoError(t, err)
	adminToken, err := auth.GenerateJWT(2, "ADMIN", "a@example.com")
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, do("/user", ""))
	assert.Equal(t, http.StatusOK, do("/user", userToken))
	assert.Equal(t, http.StatusUnauthorized, do("/admin", ""))
	assert.Equal(t, http.StatusForbidden, do("/admin", userToken))
	assert.Equal(t, http.StatusOK, do("/admin", adminToken))
}

func TestRateLimit(t *testing.T) {
	l := newIPLimiter(rate.Limit(1), 2)

	r := gin.New()
	r.Use(rateLimitWith(l))
	r.GET("/limited", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/limited", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
