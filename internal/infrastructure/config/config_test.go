package config

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestFromViper_Defaults(t *testing.T) {
	t.Setenv("UNIVERSITY_DOMAIN", "@Uni.ac.ke")

	cfg, err := FromViper(viper.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Env != "development" {
		t.Errorf("env = %q", cfg.Env)
	}
	if cfg.University.EmailDomain != "uni.ac.ke" {
		t.Errorf("domain = %q", cfg.University.EmailDomain)
	}
	if cfg.Session.MaxAge != 24*time.Hour {
		t.Errorf("session max age = %v", cfg.Session.MaxAge)
	}
	if cfg.Session.SameSite != http.SameSiteLaxMode || cfg.Session.Secure {
		t.Errorf("unexpected cookie settings %+v", cfg.Session)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("development defaults should validate: %v", err)
	}
}

func TestFromViper_Production(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("UNIVERSITY_DOMAIN", "uni.ac.ke")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://writify.app, https://www.writify.app ,")
	t.Setenv("SESSION_SAME_SITE", "none")

	cfg, err := FromViper(viper.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Session.Secure {
		t.Error("production cookies must be secure")
	}
	if len(cfg.CORS.AllowedOrigins) != 2 {
		t.Errorf("origins = %v", cfg.CORS.AllowedOrigins)
	}

	err = cfg.Validate()
	if err == nil {
		t.Fatal("expected missing secrets to fail validation")
	}
	for _, name := range []string{"SESSION_SECRET", "GOOGLE_CLIENT_ID", "GOOGLE_CALLBACK_URL"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("validation error should mention %s: %v", name, err)
		}
	}
}

func TestFromViper_RejectsUnknownSameSite(t *testing.T) {
	t.Setenv("SESSION_SAME_SITE", "sometimes")
	if _, err := FromViper(viper.New()); err == nil {
		t.Error("expected error")
	}
}

func TestValidate_SessionStore(t *testing.T) {
	t.Setenv("UNIVERSITY_DOMAIN", "uni.ac.ke")
	t.Setenv("SESSION_STORE", "redis")

	cfg, err := FromViper(viper.New())
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "SESSION_STORE") {
		t.Errorf("expected SESSION_STORE error, got %v", err)
	}
}

func TestFromViper_TransferURLs(t *testing.T) {
	t.Setenv("SOURCE_DATABASE_URL", "postgres://old/writify")
	t.Setenv("TARGET_DATABASE_URL", "postgres://new/writify")

	cfg, err := FromViper(viper.New())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Transfer.SourceURL != "postgres://old/writify" || cfg.Transfer.TargetURL != "postgres://new/writify" {
		t.Errorf("transfer = %+v", cfg.Transfer)
	}
}
