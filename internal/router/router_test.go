package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/usercrud/internal/config"
	"github.com/deppfellow/usercrud/internal/handler"
	"github.com/deppfellow/usercrud/internal/logger"
	"github.com/deppfellow/usercrud/internal/repository"
	"github.com/deppfellow/usercrud/internal/route"
	"github.com/deppfellow/usercrud/internal/server"
	"github.com/deppfellow/usercrud/internal/service"
	"github.com/deppfellow/usercrud/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func newTestServer(t *testing.T) (*server.Server, *echo.Echo) {
	t.Helper()

	cfg := &config.Config{
		Primary: config.Primary{Env: "test"},
		Server:  config.ServerConfig{Port: "0", BodyLimit: "1M"},
		Database: config.DatabaseConfig{
			Dialect: config.DialectSQLite,
			Name:    t.Name(),
		},
		Observability: config.ObservabilityConfig{ServiceName: "usercrud", LogFormat: "console"},
	}
	log := zerolog.Nop()

	srv := &server.Server{
		Config:        cfg,
		Logger:        &log,
		LoggerService: &logger.LoggerService{},
		DB:            testutil.OpenTestDB(t),
	}

	services := service.NewServices(srv, repository.NewRepositories(srv.DB))
	return srv, NewRouter(srv, handler.NewHandlers(srv, services), route.Routes)
}

func do(t *testing.T, e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func expect(t *testing.T, rec *httptest.ResponseRecorder, status int, body string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	if got := strings.TrimSpace(rec.Body.String()); got != body {
		t.Fatalf("body = %s\nwant   %s", got, body)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, echo.MIMEApplicationJSON) {
		t.Fatalf("content type = %q", ct)
	}
}

func TestRouter_CreateThenGet(t *testing.T) {
	_, e := newTestServer(t)

	rec := do(t, e, http.MethodPost, "/create", `{"full_name":"Alice Doe","role":"admin","efficiency":5}`)
	expect(t, rec, http.StatusOK, `{"success":true,"result":{"id":1}}`)

	rec = do(t, e, http.MethodGet, "/get/1", "")
	expect(t, rec, http.StatusOK, `{"success":true,"result":{"users":[{"id":1,"full_name":"Alice Doe","role":"admin","efficiency":5}]}}`)

	rec = do(t, e, http.MethodGet, "/get?role=nobody", "")
	expect(t, rec, http.StatusOK, `{"success":true,"result":{"users":[]}}`)
}

func TestRouter_UpdateAndDelete(t *testing.T) {
	_, e := newTestServer(t)
	do(t, e, http.MethodPost, "/create", `{"full_name":"Alice Doe","role":"admin","efficiency":5}`)

	rec := do(t, e, http.MethodPatch, "/update/1", `{"efficiency":7,"unknown":true}`)
	expect(t, rec, http.StatusOK, `{"success":true,"result":{"id":1,"full_name":"Alice Doe","role":"admin","efficiency":7}}`)

	rec = do(t, e, http.MethodPatch, "/update/2", `{"efficiency":7}`)
	expect(t, rec, http.StatusOK, `{"success":true,"result":{}}`)

	rec = do(t, e, http.MethodDelete, "/delete/1", "")
	expect(t, rec, http.StatusOK, `{"success":true,"result":{"id":1,"full_name":"Alice Doe","role":"admin","efficiency":7}}`)

	rec = do(t, e, http.MethodDelete, "/delete/1", "")
	expect(t, rec, http.StatusOK, `{"success":true,"result":{}}`)

	do(t, e, http.MethodPost, "/create", `{"full_name":"Bob Ray","role":"dev","efficiency":1}`)
	rec = do(t, e, http.MethodDelete, "/delete", "")
	expect(t, rec, http.StatusOK, `{"success":true}`)

	rec = do(t, e, http.MethodGet, "/get", "")
	expect(t, rec, http.StatusOK, `{"success":true,"result":{"users":[]}}`)
}

func TestRouter_Failures(t *testing.T) {
	_, e := newTestServer(t)

	tests := []struct {
		name, method, target, body, message string
	}{
		{"unknown path", http.MethodGet, "/nowhere", "", "No route for GET /nowhere"},
		{"wrong method", http.MethodPut, "/create", "", "No route for PUT /create"},
		{"malformed body", http.MethodPost, "/create", `{"full_name":`, "full_name is required"},
		{"short name", http.MethodPost, "/create", `{"full_name":"Al","role":"admin","efficiency":1}`, "full_name must be at least 3 characters"},
		{"negative efficiency", http.MethodPatch, "/update/1", `{"efficiency":-2}`, "efficiency must be a positive number"},
		{"non numeric id", http.MethodGet, "/get/abc", "", "user_id must be a positive integer"},
		{"zero id", http.MethodDelete, "/delete/0", "", "user_id must be a positive integer"},
		{"bad filter", http.MethodGet, "/get?efficiency=lots", "", "efficiency must be an integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, e, tt.method, tt.target, tt.body)
			expect(t, rec, http.StatusInternalServerError, `{"success":false,"result":{"error":"`+tt.message+`"}}`)
		})
	}
}

func TestRouter_DatabaseDown(t *testing.T) {
	srv, e := newTestServer(t)

	rec := do(t, e, http.MethodGet, "/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status before close = %d", rec.Code)
	}

	if err := srv.DB.SQL.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	rec = do(t, e, http.MethodGet, "/get", "")
	expect(t, rec, http.StatusInternalServerError, `{"success":false,"result":{"error":"Unable to connect to the database"}}`)

	rec = do(t, e, http.MethodGet, "/status", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status after close = %d", rec.Code)
	}
}

func TestRouter_RequestID(t *testing.T) {
	_, e := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/get", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Fatalf("request id = %q", got)
	}

	rec = do(t, e, http.MethodGet, "/get", "")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("no request id generated")
	}
}

func TestRouter_Docs(t *testing.T) {
	_, e := newTestServer(t)

	rec := do(t, e, http.MethodGet, "/docs", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var doc struct {
		OpenAPI string                    `json:"openapi"`
		Paths   map[string]map[string]any `json:"paths"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.OpenAPI == "" {
		t.Fatal("missing openapi version")
	}
	for _, rt := range route.Routes {
		if _, ok := doc.Paths[rt.Path][strings.ToLower(rt.Method)]; !ok {
			t.Errorf("%s %s missing from docs", rt.Method, rt.Path)
		}
	}
}
