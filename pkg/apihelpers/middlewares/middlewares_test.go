package middlewares

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	jwthandling "github.com/finnscodingadventure/digilizeforms/pkg/jwt-handling"
)

func testRouter(signKey string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/payload", RequirePayload(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/protected", GetAndValidateUserJWT(signKey), func(c *gin.Context) {
		token := c.MustGet("validatedToken").(*jwthandling.UserClaims)
		c.JSON(http.StatusOK, gin.H{"sub": token.Subject})
	})
	return router
}

func TestRequirePayload(t *testing.T) {
	router := testRouter("test-key")

	t.Run("without payload", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/payload", nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("unexpected status: %d", w.Code)
		}
	})

	t.Run("with payload", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/payload", strings.NewReader(`{"a":1}`))
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("unexpected status: %d", w.Code)
		}
	})
}

func TestGetAndValidateUserJWT(t *testing.T) {
	router := testRouter("test-key")

	t.Run("without authorization header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("unexpected status: %d", w.Code)
		}
	})

	t.Run("with malformed header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "not-a-bearer-token")
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("unexpected status: %d", w.Code)
		}
	})

	t.Run("with token signed by another key", func(t *testing.T) {
		token, err := jwthandling.GenerateNewUserToken(time.Hour, "user-1", "a@b.com", false, "other-key")
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("unexpected status: %d", w.Code)
		}
	})

	t.Run("with valid token", func(t *testing.T) {
		token, err := jwthandling.GenerateNewUserToken(time.Hour, "user-1", "a@b.com", false, "test-key")
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("unexpected status: %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "user-1") {
			t.Errorf("unexpected body: %s", w.Body.String())
		}
	})
}
