package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"go.uber.org/zap"

	"github.com/user/serverkit-go/config"
	"github.com/user/serverkit-go/files"
	"github.com/user/serverkit-go/memstore"
	"github.com/user/serverkit-go/metrics"
	"github.com/user/serverkit-go/ratelimit"
	"github.com/user/serverkit-go/server"
)

type testEnv struct {
	srv     *server.Server
	handler http.Handler
	dir     string
}

func testConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	allowed, err := config.ParseAllowedTypes(config.DefaultAllowedFileTypes)
	require.NoError(t, err)
	return &config.AppConfig{
		StorageDriver: config.StorageMemory,
		Auth:          &config.AuthConfig{JWTSecret: "test-secret", TokenLifetime: time.Hour, BcryptCost: 4},
		Upload: &config.UploadConfig{
			Dir:          t.TempDir(),
			MaxFileSize:  1024,
			MaxFiles:     3,
			AllowedTypes: allowed,
			Backend:      config.UploadBackendDisk,
		},
		RateLimit: &config.RateLimitConfig{Max: 100, Window: time.Minute},
		Server:    &config.ServerConfig{APIVersion: "v1", CORSAllowedOrigins: []string{"*"}},
		Log:       &config.LogConfig{Level: "error", Env: "test"},
	}
}

func newEnv(t *testing.T, limiterInstance *ratelimit.Limiter) *testEnv {
	t.Helper()
	cfg := testConfig(t)
	blobs, err := files.NewDiskStore(cfg.Upload.Dir)
	require.NoError(t, err)
	productStore := memstore.NewProducts()

	srv := server.New(server.Deps{
		Config:   cfg,
		Logger:   zap.NewNop(),
		Users:    memstore.NewUsers(),
		Products: productStore,
		Files:    memstore.NewFiles(),
		Blobs:    blobs,
		Metrics:  metrics.New("test"),
		Limiter:  limiterInstance,
	})
	require.NoError(t, srv.SeedDemo(context.Background(), productStore))
	return &testEnv{srv: srv, handler: srv.Handler(), dir: cfg.Upload.Dir}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) upload(t *testing.T, token, name, contentType string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, name))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/files/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

type authBody struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	User    struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (e *testEnv) register(t *testing.T, name, email, password string) authBody {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/auth/register", "", map[string]string{"name": name, "email": email, "password": password})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[authBody](t, rec)
}

func TestFileLifecycle(t *testing.T) {
	e := newEnv(t, nil)

	ana := e.register(t, "Ana", "ana@x.com", "secret1")
	assert.True(t, ana.Success)
	assert.Equal(t, "user", ana.User.Role)
	bob := e.register(t, "Bob", "bob@x.com", "secret2")

	rec := e.upload(t, ana.Token, "hello.txt", "text/plain", []byte("0123456789"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	uploaded := decode[struct {
		Success bool       `json:"success"`
		File    files.File `json:"file"`
	}](t, rec)
	assert.Equal(t, ana.User.ID, uploaded.File.OwnerID)
	assert.Equal(t, int64(10), uploaded.File.SizeBytes)
	assert.Equal(t, "hello.txt", uploaded.File.OriginalName)
	assert.True(t, strings.HasSuffix(uploaded.File.StoredName, ".txt"))

	rec = e.do(t, http.MethodGet, "/files/download/"+uploaded.File.StoredName, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0123456789", rec.Body.String())
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename=hello.txt`)

	rec = e.do(t, http.MethodDelete, "/files/"+uploaded.File.ID, bob.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, decode[envelope](t, rec).Success)

	rec = e.do(t, http.MethodDelete, "/files/"+uploaded.File.ID, ana.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/files/download/"+uploaded.File.StoredName, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminMayDeleteAnyFile(t *testing.T) {
	e := newEnv(t, nil)
	ana := e.register(t, "Ana", "ana@x.com", "secret1")

	rec := e.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "admin@example.com", "password": "password"})
	require.Equal(t, http.StatusOK, rec.Code)
	admin := decode[authBody](t, rec)
	assert.Equal(t, "admin", admin.User.Role)

	rec = e.upload(t, ana.Token, "report.pdf", "application/pdf", []byte("%PDF-1.4"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	id := decode[struct {
		File files.File `json:"file"`
	}](t, rec).File.ID

	rec = e.do(t, http.MethodGet, "/files", admin.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[struct {
		Count int `json:"count"`
	}](t, rec).Count)

	rec = e.do(t, http.MethodDelete, "/files/"+id, admin.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUploadRejections(t *testing.T) {
	e := newEnv(t, nil)
	ana := e.register(t, "Ana", "ana@x.com", "secret1")

	rec := e.upload(t, ana.Token, "shell.exe", "application/octet-stream", []byte("MZ"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.upload(t, ana.Token, "big.txt", "text/plain", bytes.Repeat([]byte("a"), 2048))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.upload(t, "", "hello.txt", "text/plain", []byte("hi"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "no token, authorization denied", decode[envelope](t, rec).Message)
}

func TestAuthFailures(t *testing.T) {
	e := newEnv(t, nil)
	e.register(t, "Ana", "ana@x.com", "secret1")

	rec := e.do(t, http.MethodPost, "/auth/register", "", map[string]string{"name": "Ana", "email": "ana@x.com", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "user already exists", decode[envelope](t, rec).Message)

	wrong := e.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "ana@x.com", "password": "nope"})
	unknown := e.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "ghost@x.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, wrong.Code, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())

	rec = e.do(t, http.MethodGet, "/auth/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterLongMultibytePassword(t *testing.T) {
	e := newEnv(t, nil)
	password := strings.Repeat("é", 40)
	e.register(t, "Zoé", "zoe@x.com", password)

	rec := e.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "zoe@x.com", "password": password})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodPost, "/auth/register", "", map[string]string{"name": "Max", "email": "max@x.com", "password": strings.Repeat("é", 73)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductsRoutes(t *testing.T) {
	e := newEnv(t, nil)

	rec := e.do(t, http.MethodGet, "/api/products?category=ELEC", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Count int `json:"count"`
		Total int `json:"total"`
	}](t, rec)
	assert.Equal(t, 2, list.Count)
	assert.Equal(t, 3, list.Total)

	rec = e.do(t, http.MethodPost, "/api/products", "", map[string]any{"name": "Lamp", "price": 20, "category": "home", "stock": 4})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	ana := e.register(t, "Ana", "ana@x.com", "secret1")
	rec = e.do(t, http.MethodPost, "/api/products", ana.Token, map[string]any{"name": "Lamp", "price": 20, "category": "home", "stock": 4})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodGet, "/api/products/abc", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAmbientRoutes(t *testing.T) {
	e := newEnv(t, nil)

	rec := e.do(t, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	welcome := decode[server.WelcomeResponse](t, rec)
	assert.Equal(t, "v1", welcome.Version)
	assert.Equal(t, "/files", welcome.Endpoints["files"])
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = e.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[server.HealthResponse](t, rec).Status)

	rec = e.do(t, http.MethodGet, "/does/not/exist", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decode[envelope](t, rec)
	assert.False(t, body.Success)
	assert.Contains(t, body.Message, "/does/not/exist")

	rec = e.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_http_requests_total")

	rec = e.do(t, http.MethodGet, "/swagger/doc.json", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/files/upload/multiple")
}

func TestRateLimit(t *testing.T) {
	l := ratelimit.NewWithStore(memory.NewStore(), limiter.Rate{Period: time.Minute, Limit: 2}, nil)
	e := newEnv(t, l)

	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/products", "", nil).Code)
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/products", "", nil).Code)
	rec := e.do(t, http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, ratelimit.LimitMessage, decode[envelope](t, rec).Message)

	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/health", "", nil).Code)
}
