package config

import (
	"reflect"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("SITE_BASE_URL", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("expected listen addr :8080, got %q", cfg.ListenAddr)
	}
	if cfg.DatabaseDriver != "sqlite" {
		t.Fatalf("expected sqlite driver, got %q", cfg.DatabaseDriver)
	}
	if cfg.ProbeSchedule != "@every 5m" {
		t.Fatalf("unexpected probe schedule %q", cfg.ProbeSchedule)
	}
	if cfg.ForceLocalMode {
		t.Fatal("expected local mode to be off by default")
	}
	if !reflect.DeepEqual(cfg.CORSAllowedOrigins, []string{"http://localhost:8080"}) {
		t.Fatalf("credentialed CORS should default to the site origin, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_DRIVER", "Postgres")
	t.Setenv("DATABASE_DSN", "host=db user=blog")
	t.Setenv("ADMIN_EMAILS", " Owner@Example.com, ,editor@example.com ")
	t.Setenv("LOCAL_MODE", "true")
	t.Setenv("UPLOAD_URL_PATH", "uploads/")

	cfg := Load()

	if cfg.ListenAddr != ":9000" {
		t.Fatalf("expected listen addr :9000, got %q", cfg.ListenAddr)
	}
	if cfg.DatabaseDriver != "postgres" {
		t.Fatalf("expected postgres driver, got %q", cfg.DatabaseDriver)
	}
	if cfg.DatabaseDSN != "host=db user=blog" {
		t.Fatalf("unexpected dsn %q", cfg.DatabaseDSN)
	}
	want := []string{"owner@example.com", "editor@example.com"}
	if !reflect.DeepEqual(cfg.AdminEmails, want) {
		t.Fatalf("expected admin emails %v, got %v", want, cfg.AdminEmails)
	}
	if !cfg.ForceLocalMode {
		t.Fatal("expected local mode to be forced")
	}
	if cfg.UploadURLPath != "/uploads" {
		t.Fatalf("expected normalized upload url path, got %q", cfg.UploadURLPath)
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		lower bool
		want  []string
	}{
		{name: "empty", raw: "", want: nil},
		{name: "trims", raw: " a , b ", want: []string{"a", "b"}},
		{name: "lowercase", raw: "A@X.com", lower: true, want: []string{"a@x.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitList(tt.raw, tt.lower)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
