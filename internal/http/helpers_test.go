package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"cardauction/internal/config"
	"cardauction/internal/content"
	"cardauction/internal/http/handlers"
	applog "cardauction/internal/log"
	"cardauction/internal/repos"
)

const adminPassword = "s3cret-admin"

type testApp struct {
	app    *fiber.App
	deps   *handlers.Deps
	stores *repos.Stores
}

// newTestApp mirrors the production wiring on an in-memory sqlite store.
func newTestApp(t *testing.T, mirror *repos.KVStore) testApp {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	require.NoError(t, err)
	cfg := config.Config{
		StoreEngine:       repos.EngineSQLite,
		DBDSN:             ":memory:",
		TemplatesDir:      "../../web/templates",
		AdminUser:         "admin",
		AdminPasswordHash: string(hash),
	}

	stores, err := repos.NewByEngine(cfg.StoreEngine, cfg.DBDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stores.Close() })
	data, err := content.Default()
	require.NoError(t, err)

	engine := html.New(cfg.TemplatesDir, ".html")
	app := fiber.New(fiber.Config{Views: engine, ErrorHandler: handlers.ErrorHandler, BodyLimit: 1 << 20})
	app.Use(requestid.New())

	deps := handlers.NewDeps(stores, data, mirror)
	handlers.Register(app, deps, cfg)
	return testApp{app: app, deps: deps, stores: stores}
}

func (ta testApp) do(t *testing.T, method, target string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			r = strings.NewReader(b)
		case []byte:
			r = bytes.NewReader(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			r = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := ta.app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	ReqID  string         `json:"req_id"`
	Err    string         `json:"err"`
	Fields map[string]any `json:"fields"`
}

type lockedBuf struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	buf := &lockedBuf{}
	applog.SetOutput(buf)
	defer applog.SetOutput(os.Stdout)

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.b.String()), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findLog(entries []logEntry, action string) *logEntry {
	for i := range entries {
		if entries[i].Action == action {
			return &entries[i]
		}
	}
	return nil
}
