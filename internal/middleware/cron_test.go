package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/chalodk/lims-sub002/internal/logger"
)

func cronRouter(t *testing.T, secret string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	cm := NewCronMiddleware(log, secret)

	router := gin.New()
	router.POST("/cron/sla/sweep", cm.RequireCronSecret(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"updated": 0, "errors": 0})
	})
	return router
}

func TestRequireCronSecret(t *testing.T) {
	router := cronRouter(t, "s3cret")

	t.Run("accepts matching secret", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/cron/sla/sweep", nil)
		req.Header.Set("X-Cron-Secret", "s3cret")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("rejects wrong secret", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/cron/sla/sweep", nil)
		req.Header.Set("X-Cron-Secret", "nope")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("rejects missing secret", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/cron/sla/sweep", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})
}

func TestRequireCronSecret_DisabledWithoutConfig(t *testing.T) {
	router := cronRouter(t, "")

	req := httptest.NewRequest(http.MethodPost, "/cron/sla/sweep", nil)
	req.Header.Set("X-Cron-Secret", "anything")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}
