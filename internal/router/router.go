package router

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/badlog/internal/config"
	"github.com/badlog/internal/handler"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(cfg config.AppConfig, api *handler.API) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// 配置会话中间件：登录会话持久 30 天，浏览计数标记只在浏览器会话内有效
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.SessionsMany(handler.SessionNames(), store))

	// 上传文件
	if cfg.UploadDir != "" && cfg.UploadURLPath != "" {
		r.Static(cfg.UploadURLPath, cfg.UploadDir)
	}

	r.GET("/healthz", api.Healthz)

	public := r.Group("/api")
	{
		public.GET("/posts", api.ListPosts)
		public.GET("/posts/:id", api.GetPost)
		public.GET("/posts/:id/comments", api.ListComments)
		public.GET("/home", api.Home)
		public.GET("/gallery", api.Gallery)
		public.GET("/about", api.About)
		public.POST("/subscribe", api.Subscribe)
		public.GET("/views", api.TrackView)
		public.GET("/views/stream", api.StreamViews)

		signedIn := public.Group("")
		signedIn.Use(handler.AuthRequired())
		{
			signedIn.POST("/posts/:id/comments", api.AddComment)
			signedIn.DELETE("/comments/:id", api.DeleteComment)
		}
	}

	auth := r.Group("/auth")
	{
		auth.GET("/google/login", api.GoogleLogin)
		auth.GET("/google/callback", api.GoogleCallback)
		auth.POST("/logout", api.Logout)
		auth.GET("/me", api.Me)
	}

	// 后台管理路由
	admin := r.Group("/admin")
	{
		admin.POST("/login", api.Login)

		// 需要管理员权限的 API
		adminAPI := admin.Group("/api")
		adminAPI.Use(handler.AdminRequired())
		{
			adminAPI.GET("/posts", api.AdminListPosts)
			adminAPI.GET("/posts/:id", api.AdminGetPost)
			adminAPI.POST("/posts", api.CreatePost)
			adminAPI.PUT("/posts/:id", api.UpdatePost)
			adminAPI.DELETE("/posts/:id", api.DeletePost)
			adminAPI.POST("/posts/:id/archive", api.ToggleArchivePost)
			adminAPI.POST("/posts/:id/featured", api.ToggleFeaturedPost)
			adminAPI.PUT("/featured", api.SetFeatured)

			adminAPI.GET("/gallery", api.AdminListGallery)
			adminAPI.POST("/gallery", api.CreateGalleryItem)
			adminAPI.PUT("/gallery/:id", api.UpdateGalleryItem)
			adminAPI.DELETE("/gallery/:id", api.DeleteGalleryItem)

			adminAPI.GET("/experiences", api.AdminListExperiences)
			adminAPI.POST("/experiences", api.CreateExperience)
			adminAPI.PUT("/experiences/:id", api.UpdateExperience)
			adminAPI.DELETE("/experiences/:id", api.DeleteExperience)

			adminAPI.POST("/skills", api.SaveSkill)
			adminAPI.PUT("/skills/:id", api.SaveSkill)
			adminAPI.DELETE("/skills/:id", api.DeleteSkill)

			adminAPI.PUT("/home-info/:id", api.UpsertHomeInfo)
			adminAPI.POST("/home-info/defaults", api.InitializeHomeInfo)

			adminAPI.GET("/subscribers", api.ListSubscribers)
			adminAPI.GET("/subscribers/export.csv", api.ExportSubscribers)
			adminAPI.PUT("/subscribers/:id/status", api.SetSubscriberStatus)
			adminAPI.DELETE("/subscribers/:id", api.DeleteSubscriber)

			adminAPI.POST("/upload", api.UploadImage)
		}
	}

	return r
}

// WithCORS 为前端站点包装跨域处理，会话依赖 cookie，因此允许携带凭证。
func WithCORS(cfg config.AppConfig, next http.Handler) http.Handler {
	origins := cfg.CORSAllowedOrigins
	if len(origins) == 0 && cfg.SiteBaseURL != "" {
		origins = []string{cfg.SiteBaseURL}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}).Handler(next)
}
