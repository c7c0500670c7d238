package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func webhookTestRouter(t *testing.T, key string) *gin.Engine {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.MinCost)
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandler())
	router.POST("/webhooks/delivery/:provider",
		WebhookAuth(map[string]string{"optimus": string(hash)}),
		func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) },
	)
	return router
}

func TestWebhookAuth_ValidKey(t *testing.T) {
	router := webhookTestRouter(t, "s3cret")

	req := httptest.NewRequest(http.MethodPost, "/webhooks/delivery/optimus", nil)
	req.Header.Set(HeaderWebhookKey, "s3cret")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebhookAuth_WrongKeyRejected(t *testing.T) {
	router := webhookTestRouter(t, "s3cret")

	req := httptest.NewRequest(http.MethodPost, "/webhooks/delivery/optimus", nil)
	req.Header.Set(HeaderWebhookKey, "not-the-key")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
}

func TestWebhookAuth_MissingKeyRejected(t *testing.T) {
	router := webhookTestRouter(t, "s3cret")

	req := httptest.NewRequest(http.MethodPost, "/webhooks/delivery/optimus", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookAuth_UnknownProviderRejected(t *testing.T) {
	router := webhookTestRouter(t, "s3cret")

	req := httptest.NewRequest(http.MethodPost, "/webhooks/delivery/pigeon", nil)
	req.Header.Set(HeaderWebhookKey, "s3cret")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
