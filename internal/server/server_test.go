package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/config"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/server"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/storage/sqlstore"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/pkg/logging"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.FromEnv(func(k string) string {
		switch k {
		case "SESSION_SECRET":
			return "test-secret"
		case "STORE_DSN":
			return sqlstore.SQLiteDSN(filepath.Join(t.TempDir(), "server.db"))
		case "HTTP_HOST":
			return "127.0.0.1"
		case "PORT":
			return "0"
		}
		return ""
	})
	require.NoError(t, err)
	return cfg
}

func TestInitializeResourcesWithoutIntegrations(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	res, err := server.InitializeResources(ctx, testConfig(t), logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Close(context.Background()) })

	w := httptest.NewRecorder()
	res.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	token, err := res.Tokens.Issue(domain.Identity{UID: "admin-1", Role: domain.RoleAdmin, CompanyID: "acme"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/companies/acme/settings", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	res.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/mcp/stream", nil)
	w = httptest.NewRecorder()
	res.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestServerShutdownReleasesResources(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	cfg := testConfig(t)

	res, err := server.InitializeResources(ctx, cfg, logging.Nop())
	require.NoError(t, err)

	srv := server.New(logging.Nop(), cfg, res)
	require.NoError(t, srv.Shutdown(ctx))

	assert.Error(t, res.Store.Ping(ctx), "store closed")
}
