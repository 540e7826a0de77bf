package v1

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"licensedesk.com/licensedesk/config"
	"licensedesk.com/licensedesk/core"
	licensing "licensedesk.com/licensedesk/licensing/core"
	"licensedesk.com/licensedesk/licensing/model"
	"licensedesk.com/licensedesk/utils"
	"licensedesk.com/licensedesk/web/router"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Auth.Secret = "client-secret"
	cfg.Server.RateLimit.Enabled = false

	dm, err := core.New(core.Options{Driver: core.DriverSQLite, DSN: ":memory:", LogLevel: core.LogLevelSilent})
	require.NoError(t, err)
	t.Cleanup(func() { dm.Close() })
	ctx := context.Background()
	require.NoError(t, dm.Migrate(ctx, &model.License{}, &model.AdminUser{}))

	accounts := licensing.NewAccounts(dm)
	_, err = accounts.EnsureAdmin(ctx, "admin", "admin-password")
	require.NoError(t, err)

	server := httptest.NewServer(router.Setup(router.Dependencies{
		Config:    &cfg,
		DM:        dm,
		Activator: licensing.NewActivator(licensing.NewGormStore(dm), cfg.ProgramNamePolicy()),
		Accounts:  accounts,
	}))
	t.Cleanup(server.Close)
	return server
}

func TestClientAgainstServer(t *testing.T) {
	server := newTestServer(t)
	ctx := context.Background()
	client := NewLicenseDeskClient(server.URL+"/", "")

	_, err := client.Auth.Login(ctx, "admin", "wrong")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	_, err = client.Auth.Login(ctx, "admin", "admin-password")
	require.NoError(t, err)
	assert.NotEmpty(t, client.Transport.AuthToken)

	created, err := client.Licenses.Create(ctx, CreateLicense{SerialNumber: "SER 1A", ProgramName: utils.Ptr("Editor")})
	require.NoError(t, err)
	assert.Equal(t, "SER 1A", created.SerialNumber)

	generated, err := client.Licenses.Generate(ctx, GenerateLicense{ProgramName: utils.Ptr("Viewer"), Status: model.StatusExpired})
	require.NoError(t, err)
	assert.Equal(t, model.StatusExpired, generated.Status)

	got, err := client.Licenses.Get(ctx, "SER 1A")
	require.NoError(t, err)
	assert.Equal(t, "Editor", *got.ProgramName)

	res, err := client.Check.Check(ctx, "SER 1A", "device-a", "")
	require.NoError(t, err)
	assert.True(t, res.Valid)

	res, err = client.Check.Check(ctx, "SER 1A", "device-b", "")
	require.NoError(t, err)
	assert.Equal(t, "device mismatch", res.Status)

	_, err = client.Check.Activate(ctx, generated.SerialNumber, "device-a", "")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)

	reset, err := client.Licenses.Reset(ctx, "SER 1A")
	require.NoError(t, err)
	assert.Nil(t, reset.DeviceID)

	bound, err := client.Check.Activate(ctx, "SER 1A", "device-b", "")
	require.NoError(t, err)
	assert.Equal(t, "device-b", *bound.DeviceID)

	notes := "moved to device-b"
	updated, err := client.Licenses.Update(ctx, "SER 1A", model.LicensePatch{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, *updated.Notes)

	licenses, total, err := client.Licenses.List(ctx, ListOptions{Query: "viewer"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, generated.SerialNumber, licenses[0].SerialNumber)

	var export bytes.Buffer
	require.NoError(t, client.Licenses.Export(ctx, "csv", &export))
	assert.Contains(t, export.String(), "SER 1A,Editor,valid,true,device-b")

	require.NoError(t, client.Licenses.Delete(ctx, "SER 1A"))
	_, err = client.Licenses.Get(ctx, "SER 1A")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)

	res, err = client.Check.Check(ctx, "SER 1A", "device-b", "")
	require.NoError(t, err)
	assert.False(t, res.Found)
}
