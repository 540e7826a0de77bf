package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"licensedesk.com/licensedesk/config"
	"licensedesk.com/licensedesk/infrastructure/communication"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Database.DSN = ":memory:"
	cfg.Database.LogLevel = "silent"
	cfg.Auth.Secret = "bootstrap-secret"
	cfg.Auth.AdminUsername = "admin"
	cfg.Auth.AdminPassword = "admin-password"
	return &cfg
}

func TestNew(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	app, err := New(ctx, testConfig(), zap.NewNop())
	require.NoError(t, err)
	defer app.Close()

	_, err = app.Accounts.Authenticate(ctx, "admin", "admin-password")
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	app.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNotifiers(t *testing.T) {
	cfg := testConfig()
	assert.Nil(t, Notifiers(context.Background(), cfg, zap.NewNop()))

	cfg.Notifications.SlackToken = "xoxb-test"
	cfg.Notifications.SlackInfoChannel = "C1"
	n := Notifiers(context.Background(), cfg, zap.NewNop())
	require.IsType(t, communication.Multi{}, n)
	assert.Len(t, n.(communication.Multi), 1)
}
