package bootstrap

import (
	"strings"
	"testing"
	"time"
)

func validAppConfig() AppConfig {
	return AppConfig{
		StorageType:            "local",
		StorageLocalURL:        "/uploads",
		GenAITimeout:           60 * time.Second,
		DraftTTL:               72 * time.Hour,
		RateLimitEnabled:       true,
		RateLimitLoginAttempts: 5,
	}
}

func TestValidateApp(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{"valid", func(*AppConfig) {}, ""},
		{"zero genai timeout", func(c *AppConfig) { c.GenAITimeout = 0 }, "genai_timeout"},
		{"negative draft ttl", func(c *AppConfig) { c.DraftTTL = -time.Hour }, "draft_ttl"},
		{"relative local url", func(c *AppConfig) { c.StorageLocalURL = "uploads" }, "storage_local_url"},
		{"s3 without bucket", func(c *AppConfig) { c.StorageType = "s3" }, "storage_s3_bucket"},
		{"unknown storage", func(c *AppConfig) { c.StorageType = "ftp" }, "storage_type"},
		{"rate limit without attempts", func(c *AppConfig) { c.RateLimitLoginAttempts = 0 }, "rate_limit_login_attempts"},
		{"rate limit disabled", func(c *AppConfig) {
			c.RateLimitEnabled = false
			c.RateLimitLoginAttempts = 0
		}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validAppConfig()
			tt.mutate(&cfg)
			err := validateApp(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("validateApp() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("validateApp() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestAppConfigKeys_Unique(t *testing.T) {
	seen := map[string]bool{}
	for _, k := range appConfigKeys {
		if seen[k.Name] {
			t.Errorf("duplicate config key %q", k.Name)
		}
		seen[k.Name] = true
	}
	for _, want := range []string{"mongo_uri", "genai_api_key", "genai_model", "genai_timeout", "draft_ttl", "site_name"} {
		if !seen[want] {
			t.Errorf("missing config key %q", want)
		}
	}
}
