package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/badlog/internal/config"
	"github.com/badlog/internal/db"
	"github.com/badlog/internal/handler"
	"github.com/badlog/internal/router"
	"github.com/badlog/internal/seed"
	"github.com/badlog/internal/service"
	"github.com/badlog/internal/storage"
)

const baseURL = "http://example.test"

type e2eSuite struct {
	db     *gorm.DB
	mode   *service.BackendMode
	seeder *service.Seeder
	public *localClient
	admin  *localClient
}

type localClient struct {
	t       *testing.T
	handler http.Handler
	jar     http.CookieJar
}

func newLocalClient(t *testing.T, handler http.Handler) *localClient {
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &localClient{t: t, handler: handler, jar: jar}
}

func (c *localClient) call(method, path string, body any) (int, []byte) {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, baseURL+path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range c.jar.Cookies(req.URL) {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	resp := w.Result()
	c.jar.SetCookies(req.URL, resp.Cookies())
	return resp.StatusCode, w.Body.Bytes()
}

func (c *localClient) json(method, path string, body any, status int, out any) {
	c.t.Helper()
	got, raw := c.call(method, path, body)
	if got != status {
		c.t.Fatalf("%s %s: expected status %d, got %d: %s", method, path, status, got, raw)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			c.t.Fatalf("%s %s: decode %q: %v", method, path, raw, err)
		}
	}
}

func newE2ESuite(t *testing.T) *e2eSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:e2e-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := db.Open(db.Options{Path: dsn, LogLevel: "silent"})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	if err := db.EnsureUser(gdb, "admin", "e2e-secret"); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	cfg := config.AppConfig{
		SessionSecret: "test-session-secret",
		UploadDir:     t.TempDir(),
		UploadURLPath: "/static/uploads",
		SiteBaseURL:   baseURL,
	}
	content := seed.MustLoad()
	mode := service.NewBackendMode(false)
	store := storage.NewLocalStorage(cfg.UploadDir, cfg.UploadURLPath, mode)
	engine := router.WithCORS(cfg, router.SetupRouter(cfg, handler.NewAPI(gdb, mode, content, store, cfg)))

	return &e2eSuite{
		db:     gdb,
		mode:   mode,
		seeder: service.NewSeeder(gdb, mode, content),
		public: newLocalClient(t, engine),
		admin:  newLocalClient(t, engine),
	}
}

type postList struct {
	Posts []db.Post `json:"posts"`
}

func TestE2E_BlogLifecycle(t *testing.T) {
	suite := newE2ESuite(t)

	// 后端为空时展示种子文章
	var before postList
	suite.public.json(http.MethodGet, "/api/posts", nil, http.StatusOK, &before)
	if len(before.Posts) != 5 || before.Posts[0].ID == "" {
		t.Fatalf("expected seed posts, got %d", len(before.Posts))
	}

	result := suite.seeder.InitializeBackend(context.Background())
	if !result.Connected || result.Inserted != 5 {
		t.Fatalf("unexpected seed result %+v", result)
	}
	var seeded postList
	suite.public.json(http.MethodGet, "/api/posts", nil, http.StatusOK, &seeded)
	if len(seeded.Posts) != 5 || seeded.Posts[0].ID == "1" {
		t.Fatalf("expected backend posts with generated ids, got %+v", seeded.Posts[0])
	}

	suite.admin.json(http.MethodPost, "/admin/login", map[string]string{"username": "admin", "password": "e2e-secret"}, http.StatusOK, nil)

	var created struct {
		ID string `json:"id"`
	}
	suite.admin.json(http.MethodPost, "/admin/api/posts", map[string]any{
		"title":         "Featured launch",
		"content":       "Launch **day**",
		"publishedDate": time.Now().UTC().Format(time.RFC3339),
		"category":      "News",
	}, http.StatusCreated, &created)
	suite.admin.json(http.MethodPost, "/admin/api/posts/"+created.ID+"/featured", nil, http.StatusOK, nil)

	var home struct {
		Featured *db.Post  `json:"featured"`
		Recent   []db.Post `json:"recent"`
	}
	suite.public.json(http.MethodGet, "/api/home", nil, http.StatusOK, &home)
	if home.Featured == nil || home.Featured.ID != created.ID {
		t.Fatalf("expected featured post %s, got %+v", created.ID, home.Featured)
	}

	var detail struct {
		HTML string `json:"html"`
	}
	suite.public.json(http.MethodGet, "/api/posts/"+created.ID, nil, http.StatusOK, &detail)
	if !strings.Contains(detail.HTML, "<strong>day</strong>") {
		t.Fatalf("unexpected html %q", detail.HTML)
	}

	var sub service.SubscribeResult
	suite.public.json(http.MethodPost, "/api/subscribe", map[string]string{"email": "fan@example.com"}, http.StatusOK, &sub)
	if !sub.Success {
		t.Fatalf("subscribe failed: %+v", sub)
	}
	status, csv := suite.admin.call(http.MethodGet, "/admin/api/subscribers/export.csv", nil)
	if status != http.StatusOK || !strings.Contains(string(csv), "fan@example.com") {
		t.Fatalf("unexpected export %d %q", status, csv)
	}

	var views service.ViewCount
	suite.public.json(http.MethodGet, "/api/views", nil, http.StatusOK, &views)
	suite.public.json(http.MethodGet, "/api/views", nil, http.StatusOK, &views)
	if views.Count != 1 {
		t.Fatalf("expected one view for one session, got %+v", views)
	}
}

func TestE2E_BackendOutageFallsBackToSeed(t *testing.T) {
	suite := newE2ESuite(t)
	suite.admin.json(http.MethodPost, "/admin/login", map[string]string{"username": "admin", "password": "e2e-secret"}, http.StatusOK, nil)

	sqlDB, err := suite.db.DB()
	if err != nil {
		t.Fatalf("resolve sql db: %v", err)
	}
	sqlDB.Close()

	var health map[string]any
	suite.public.json(http.MethodGet, "/healthz", nil, http.StatusOK, &health)
	if health["mode"] != "local" || !suite.mode.Local() {
		t.Fatalf("expected local mode, got %+v", health)
	}

	var posts postList
	suite.public.json(http.MethodGet, "/api/posts", nil, http.StatusOK, &posts)
	if len(posts.Posts) != 5 || posts.Posts[0].ID != "1" {
		t.Fatalf("expected seed posts in local mode, got %d", len(posts.Posts))
	}

	// 本地模式下写操作返回成功但不落库
	var created struct {
		ID string `json:"id"`
	}
	suite.admin.json(http.MethodPost, "/admin/api/posts", map[string]any{"title": "Offline", "content": "x"}, http.StatusCreated, &created)
	if !strings.HasPrefix(created.ID, "local-") {
		t.Fatalf("expected a local id, got %q", created.ID)
	}

	var views service.ViewCount
	suite.public.json(http.MethodGet, "/api/views", nil, http.StatusOK, &views)
	if views.Error != service.MsgViewCountUnavailable {
		t.Fatalf("unexpected views %+v", views)
	}
}
