package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/noah-isme/bilishelf-api/internal/remote"
	"github.com/noah-isme/bilishelf-api/pkg/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Env:       config.EnvDevelopment,
		APIPrefix: "/api/v1",
		Store:     config.StoreConfig{Driver: config.StoreDriverMemory, KVKey: "state", BatchChunk: 50},
		Remote:    config.RemoteConfig{BaseURL: "http://remote.test", MaxAttempts: 1, Timeout: time.Second},
		Sync:      config.SyncConfig{DefaultMaxFolders: 10, WorkerRetries: 0},
		Exports: config.ExportsConfig{
			StorageDir:      t.TempDir(),
			SignedURLSecret: "test-secret",
			SignedURLTTL:    time.Minute,
		},
		Auth: config.AuthConfig{Issuer: "bilishelf"},
	}
}

func loggedOutRemote() remote.Doer {
	return remote.DoerFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(bytes.NewBufferString(`{"code":-101,"message":"not logged in","data":{"isLogin":false}}`)),
			Request:    req,
		}, nil
	})
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	a, err := New(context.Background(), cfg, zaptest.NewLogger(t), WithRemoteDoer(loggedOutRemote()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func do(t *testing.T, r http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRouterProbes(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	r := a.Router()

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/ready", "").Code)

	metrics := do(t, r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), "http_requests_total")
}

func TestRouterFolderLifecycle(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	r := a.Router()

	created := do(t, r, http.MethodPost, "/api/v1/folders", `{"name":"Lectures"}`)
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())

	list := do(t, r, http.MethodGet, "/api/v1/folders", "")
	require.Equal(t, http.StatusOK, list.Code)
	assert.Contains(t, list.Body.String(), `"name":"Lectures"`)

	invalid := do(t, r, http.MethodPost, "/api/v1/folders", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, invalid.Code)

	exported := do(t, r, http.MethodGet, "/api/v1/export?format=json", "")
	require.Equal(t, http.StatusOK, exported.Code)
	assert.Contains(t, exported.Body.String(), "Lectures")
}

func TestRouterSyncWithoutLoginIsUnauthorized(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	r := a.Router()

	rec := do(t, r, http.MethodPost, "/api/v1/sync/bilibili/folders", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code, rec.Body.String())

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "LOGIN_REQUIRED", envelope.Error.Code)
}

func TestRouterRequiresTokenWhenSecretSet(t *testing.T) {
	cfg := testConfig(t)
	cfg.Auth.JWTSecret = "jwt-secret"
	a := newTestApp(t, cfg)
	r := a.Router()

	assert.Equal(t, http.StatusUnauthorized, do(t, r, http.MethodGet, "/api/v1/folders", "").Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/health", "").Code)

	token, _, err := a.Tokens.Issue("cli", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/api/v1/folders", "", "Authorization", "Bearer "+token).Code)
}

func TestRouterSignedExportDownload(t *testing.T) {
	cfg := testConfig(t)
	cfg.Auth.JWTSecret = "jwt-secret"
	a := newTestApp(t, cfg)
	r := a.Router()

	token, _, err := a.Tokens.Issue("cli", time.Hour)
	require.NoError(t, err)
	created := do(t, r, http.MethodPost, "/api/v1/exports", `{"format":"csv"}`, "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())

	var envelope struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.URL)

	download := do(t, r, http.MethodGet, envelope.Data.URL, "")
	assert.Equal(t, http.StatusOK, download.Code)
	assert.Contains(t, download.Header().Get("Content-Disposition"), "attachment")

	bad := do(t, r, http.MethodGet, "/api/v1/exports/download?token=nope", "")
	assert.Equal(t, http.StatusUnauthorized, bad.Code)
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Driver = "sqlite"
	_, err := New(context.Background(), cfg, nil)
	assert.Error(t, err)
}
