package bootstrap_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-converter/internal/bootstrap"
	"resume-converter/internal/shared/config"
	localstore "resume-converter/internal/shared/storage/object/local"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	templatePath := filepath.Join(t.TempDir(), "template.docx")
	if err := os.WriteFile(templatePath, []byte("placeholder"), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	return config.Config{
		Port:            "0",
		CORSAllowOrigin: []string{"http://localhost:5173"},
		ObjectStoreType: "local",
		LocalStoreDir:   t.TempDir(),
		LLMProvider:     "openai",
		LLMModel:        "gpt-4o-mini",
		TemplatePath:    templatePath,
		Env:             "dev",
	}
}

func TestBuildWiresHealthAndMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)

	app, err := bootstrap.Build(testConfig(t))
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}

	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("health status = %d, body = %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), `"ok":true`) {
		t.Fatalf("unexpected health body: %s", resp.Body.String())
	}

	resp = httptest.NewRecorder()
	app.Router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "conversion_started_total") {
		t.Fatalf("metrics body missing counters: %s", resp.Body.String())
	}
}

func TestBuildServesTemplateFromObjectStore(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := testConfig(t)
	cfg.TemplatePath = filepath.Join(t.TempDir(), "missing.docx")
	cfg.TemplateKey = "assets/template.docx"

	store := localstore.New(cfg.LocalStoreDir)
	saver, ok := store.(interface {
		SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error)
	})
	if !ok {
		t.Fatal("local store should support SaveWithKey")
	}
	if _, err := saver.SaveWithKey(context.Background(), cfg.TemplateKey, "application/octet-stream", strings.NewReader("placeholder")); err != nil {
		t.Fatalf("seed template object: %v", err)
	}

	app, err := bootstrap.Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}

	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("health status = %d, body = %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), `"template":"ok"`) {
		t.Fatalf("template should be served from the object store: %s", resp.Body.String())
	}
}

func TestBuildRejectsUnknownProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.LLMProvider = "acme"
	if _, err := bootstrap.Build(cfg); err == nil {
		t.Fatal("unknown provider should fail the build")
	}
}

func TestBuildListsConversionsEmpty(t *testing.T) {
	gin.SetMode(gin.TestMode)

	app, err := bootstrap.Build(testConfig(t))
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}

	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/conversions", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("list status = %d, body = %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), `"conversions":[]`) {
		t.Fatalf("unexpected list body: %s", resp.Body.String())
	}
}
