package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr         string
	Port               string
	DatabaseDriver     string
	DatabasePath       string
	DatabaseDSN        string
	DatabaseLogLevel   string
	SessionSecret      string
	GinMode            string
	UploadDir          string
	UploadURLPath      string
	SuperRootUserName  string
	SuperRootPassword  string
	SiteBaseURL        string
	AdminEmails        []string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	ForceLocalMode     bool
	ProbeSchedule      string
	CORSAllowedOrigins []string
}

var defaults = map[string]any{
	"port":               "8080",
	"database_driver":    "sqlite",
	"database_path":      "badlog.db",
	"database_log_level": "warn",
	"session_secret":     "badlog-dev-secret",
	"gin_mode":           "release",
	"upload_dir":         "web/static/uploads",
	"upload_url_path":    "/static/uploads",
	"site_base_url":      "http://localhost:8080",
	"probe_schedule":     "@every 5m",
	"local_mode":         false,
}

// Load 从 .env、可选的 config.yaml 以及环境变量读取应用配置，并为缺失项提供默认值。
// 环境变量优先级最高。
func Load() AppConfig {
	if err := godotenv.Load(); err != nil {
		log.Printf("[INFO] config/load: .env not found, skipping")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Printf("[WARN] config/load: config.yaml ignored: %v", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) AppConfig {
	port := trimmed(v, "port")
	listenAddr := trimmed(v, "listen_addr")
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	driver := strings.ToLower(trimmed(v, "database_driver"))
	if driver != "postgres" {
		driver = "sqlite"
	}

	siteBaseURL := strings.TrimRight(trimmed(v, "site_base_url"), "/")
	// 会话依赖 cookie，跨域请求必须携带凭证，因此默认只放行站点自身而不是 "*"
	origins := splitList(trimmed(v, "cors_allowed_origins"), false)
	if len(origins) == 0 && siteBaseURL != "" {
		origins = []string{siteBaseURL}
	}

	uploadURLPath := trimmed(v, "upload_url_path")
	if !strings.HasPrefix(uploadURLPath, "/") {
		uploadURLPath = "/" + uploadURLPath
	}

	return AppConfig{
		ListenAddr:         listenAddr,
		Port:               port,
		DatabaseDriver:     driver,
		DatabasePath:       trimmed(v, "database_path"),
		DatabaseDSN:        trimmed(v, "database_dsn"),
		DatabaseLogLevel:   strings.ToLower(trimmed(v, "database_log_level")),
		SessionSecret:      trimmed(v, "session_secret"),
		GinMode:            trimmed(v, "gin_mode"),
		UploadDir:          trimmed(v, "upload_dir"),
		UploadURLPath:      strings.TrimRight(uploadURLPath, "/"),
		SuperRootUserName:  trimmed(v, "super_root_user_name"),
		SuperRootPassword:  trimmed(v, "super_root_password"),
		SiteBaseURL:        siteBaseURL,
		AdminEmails:        splitList(trimmed(v, "admin_emails"), true),
		GoogleClientID:     trimmed(v, "google_client_id"),
		GoogleClientSecret: trimmed(v, "google_client_secret"),
		GoogleRedirectURL:  trimmed(v, "google_redirect_url"),
		ForceLocalMode:     v.GetBool("local_mode"),
		ProbeSchedule:      trimmed(v, "probe_schedule"),
		CORSAllowedOrigins: origins,
	}
}

// GoogleAuthEnabled 表示是否配置了 Google 登录。
func (c AppConfig) GoogleAuthEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func trimmed(v *viper.Viper, key string) string {
	return strings.TrimSpace(v.GetString(key))
}

// splitList 解析逗号分隔的列表，lower 为 true 时统一转为小写。
func splitList(raw string, lower bool) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		if lower {
			item = strings.ToLower(item)
		}
		items = append(items, item)
	}
	return items
}
