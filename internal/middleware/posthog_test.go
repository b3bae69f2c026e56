package middleware_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dbbank/bank_backend/internal/middleware"
	"github.com/dbbank/bank_backend/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestPosthogMiddleware_UninitializedClientPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	clients := map[string]*utils.PosthogClientWrapper{
		"nil client":   nil,
		"no api key":   utils.InitializePosthogClient("", "", slog.New(slog.DiscardHandler)),
		"empty struct": {},
	}

	for name, client := range clients {
		t.Run(name, func(t *testing.T) {
			r := gin.New()
			r.Use(middleware.PosthogMiddleware(client))
			served := false
			r.GET("/api/v1/schedules/:id", func(c *gin.Context) {
				served = true
				c.Request = c.Request.WithContext(middleware.WithUserID(c.Request.Context(), 7))
				c.String(http.StatusOK, "ok")
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/schedules/42", nil))

			assert.True(t, served)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "ok", w.Body.String())
		})
	}
}
