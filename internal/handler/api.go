package handler

import (
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/badlog/internal/config"
	"github.com/badlog/internal/seed"
	"github.com/badlog/internal/service"
	"github.com/badlog/internal/storage"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db          *gorm.DB
	mode        *service.BackendMode
	probe       *service.Probe
	posts       *service.PostService
	gallery     *service.GalleryService
	comments    *service.CommentService
	subscribers *service.SubscriberService
	experiences *service.ExperienceService
	skills      *service.SkillService
	homeInfo    *service.HomeInfoService
	views       *service.ViewCounter
	storage     storage.ObjectStorage

	adminEmails map[string]struct{}
	oauth       *oauth2.Config
	userInfoURL string
	siteBaseURL string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, mode *service.BackendMode, content *seed.Content, store storage.ObjectStorage, cfg config.AppConfig) *API {
	admins := make(map[string]struct{}, len(cfg.AdminEmails))
	for _, email := range cfg.AdminEmails {
		admins[email] = struct{}{}
	}

	var oauthConfig *oauth2.Config
	if cfg.GoogleAuthEnabled() {
		oauthConfig = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}

	return &API{
		db:          gdb,
		mode:        mode,
		probe:       service.NewProbe(gdb, mode),
		posts:       service.NewPostService(gdb, mode, content),
		gallery:     service.NewGalleryService(gdb, mode, content),
		comments:    service.NewCommentService(gdb, mode),
		subscribers: service.NewSubscriberService(gdb, mode, content),
		experiences: service.NewExperienceService(gdb, mode, content),
		skills:      service.NewSkillService(gdb, mode, content),
		homeInfo:    service.NewHomeInfoService(gdb, mode, content),
		views:       service.NewViewCounter(gdb, mode),
		storage:     store,
		adminEmails: admins,
		oauth:       oauthConfig,
		userInfoURL: googleUserInfoURL,
		siteBaseURL: cfg.SiteBaseURL,
	}
}

// Probe exposes the connectivity probe so the server can schedule it.
func (a *API) Probe() *service.Probe {
	return a.probe
}

func (a *API) isAdminEmail(email string) bool {
	_, ok := a.adminEmails[email]
	return ok
}
