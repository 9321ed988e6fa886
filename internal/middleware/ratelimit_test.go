package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestLimiterAllowsUpToLimit(t *testing.T) {
	l := NewLimiter(3, time.Minute)
	for i := 0; i < 3; i++ {
		ok, _ := l.Allow("k")
		assert.True(t, ok)
	}
	ok, retry := l.Allow("k")
	assert.False(t, ok)
	assert.Greater(t, retry, time.Duration(0))

	// a different key has its own window
	ok, _ = l.Allow("other")
	assert.True(t, ok)
}

func TestLimiterWindowResets(t *testing.T) {
	l := NewLimiter(1, 10*time.Millisecond)
	ok, _ := l.Allow("k")
	assert.True(t, ok)
	ok, _ = l.Allow("k")
	assert.False(t, ok)

	time.Sleep(15 * time.Millisecond)
	ok, _ = l.Allow("k")
	assert.True(t, ok)
}

func TestRateLimitByGroupKeysOnPathParam(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/groups/:group_id/search", RateLimitByGroup(NewLimiter(1, time.Minute)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	do := func(group string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/groups/"+group+"/search", nil)
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("g1"))
	assert.Equal(t, http.StatusTooManyRequests, do("g1"))
	// another group is not starved by the first group's burst
	assert.Equal(t, http.StatusOK, do("g2"))
}
