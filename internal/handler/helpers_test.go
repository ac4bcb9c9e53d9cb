package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/badlog/internal/config"
	"github.com/badlog/internal/db"
	"github.com/badlog/internal/seed"
	"github.com/badlog/internal/service"
	"github.com/badlog/internal/storage"
)

var testDBSeq atomic.Int64

type testEnv struct {
	api    *API
	db     *gorm.DB
	mode   *service.BackendMode
	router *gin.Engine
}

func setupHandlerTest(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handler-%d-%d?mode=memory&cache=shared", time.Now().UnixNano(), testDBSeq.Add(1))
	gdb, err := db.Open(db.Options{Path: dsn, LogLevel: "silent"})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	mode := service.NewBackendMode(false)
	cfg := config.AppConfig{
		AdminEmails: []string{"admin@example.com"},
		SiteBaseURL: "http://localhost:8080",
	}
	store := storage.NewLocalStorage(t.TempDir(), "/static/uploads", mode)
	api := NewAPI(gdb, mode, seed.MustLoad(), store, cfg)

	return &testEnv{api: api, db: gdb, mode: mode, router: newTestRouter(api)}
}

// newTestRouter 注册与生产环境相同的路由，另加一个直接写入会话用户的测试入口。
func newTestRouter(api *API) *gin.Engine {
	r := gin.New()
	r.Use(sessions.SessionsMany(SessionNames(), cookie.NewStore([]byte("test-secret"))))

	r.POST("/test/session", func(c *gin.Context) {
		var user sessionUser
		if err := c.ShouldBindJSON(&user); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		if err := saveUser(c, user); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})

	r.GET("/healthz", api.Healthz)
	r.GET("/api/posts", api.ListPosts)
	r.GET("/api/posts/:id", api.GetPost)
	r.GET("/api/posts/:id/comments", api.ListComments)
	r.POST("/api/posts/:id/comments", AuthRequired(), api.AddComment)
	r.DELETE("/api/comments/:id", AuthRequired(), api.DeleteComment)
	r.GET("/api/home", api.Home)
	r.GET("/api/gallery", api.Gallery)
	r.GET("/api/about", api.About)
	r.POST("/api/subscribe", api.Subscribe)
	r.GET("/api/views", api.TrackView)
	r.GET("/api/views/stream", api.StreamViews)

	r.GET("/auth/google/login", api.GoogleLogin)
	r.GET("/auth/google/callback", api.GoogleCallback)
	r.POST("/auth/logout", api.Logout)
	r.GET("/auth/me", api.Me)
	r.POST("/admin/login", api.Login)

	admin := r.Group("/admin/api", AdminRequired())
	admin.GET("/posts", api.AdminListPosts)
	admin.GET("/posts/:id", api.AdminGetPost)
	admin.POST("/posts", api.CreatePost)
	admin.PUT("/posts/:id", api.UpdatePost)
	admin.DELETE("/posts/:id", api.DeletePost)
	admin.POST("/posts/:id/archive", api.ToggleArchivePost)
	admin.POST("/posts/:id/featured", api.ToggleFeaturedPost)
	admin.PUT("/featured", api.SetFeatured)
	admin.GET("/gallery", api.AdminListGallery)
	admin.POST("/gallery", api.CreateGalleryItem)
	admin.PUT("/gallery/:id", api.UpdateGalleryItem)
	admin.DELETE("/gallery/:id", api.DeleteGalleryItem)
	admin.GET("/experiences", api.AdminListExperiences)
	admin.POST("/experiences", api.CreateExperience)
	admin.PUT("/experiences/:id", api.UpdateExperience)
	admin.DELETE("/experiences/:id", api.DeleteExperience)
	admin.POST("/skills", api.SaveSkill)
	admin.PUT("/skills/:id", api.SaveSkill)
	admin.DELETE("/skills/:id", api.DeleteSkill)
	admin.PUT("/home-info/:id", api.UpsertHomeInfo)
	admin.POST("/home-info/defaults", api.InitializeHomeInfo)
	admin.GET("/subscribers", api.ListSubscribers)
	admin.GET("/subscribers/export.csv", api.ExportSubscribers)
	admin.PUT("/subscribers/:id/status", api.SetSubscriberStatus)
	admin.DELETE("/subscribers/:id", api.DeleteSubscriber)
	admin.POST("/upload", api.UploadImage)
	return r
}

// client 在多次请求之间保留 cookie，模拟同一个浏览器会话。
type client struct {
	t       *testing.T
	router  *gin.Engine
	cookies map[string]*http.Cookie
}

func (e *testEnv) newClient(t *testing.T) *client {
	return &client{t: t, router: e.router, cookies: map[string]*http.Cookie{}}
}

func (c *client) send(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rr := httptest.NewRecorder()
	c.router.ServeHTTP(rr, req)
	for _, ck := range rr.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return rr
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req)
}

func (c *client) signIn(user sessionUser) {
	c.t.Helper()
	if rr := c.do(http.MethodPost, "/test/session", user); rr.Code != http.StatusNoContent {
		c.t.Fatalf("sign in failed with status %d", rr.Code)
	}
}

func (c *client) signInAdmin() {
	c.signIn(sessionUser{UID: "google:admin", DisplayName: "Admin", Email: "admin@example.com", IsAdmin: true})
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rr.Code, rr.Body.String())
	}
}

func createPost(t *testing.T, gdb *gorm.DB, post db.Post) db.Post {
	t.Helper()
	if err := gdb.Create(&post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}
