// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/stratapage/internal/app/system/generator"
	"github.com/dalemusser/stratapage/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// EnvVarPrefix is the prefix for environment variables.
const EnvVarPrefix = "STRATAPAGE"

// appConfigKeys defines the configuration keys for this application.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: STRATAPAGE_MONGO_URI, STRATAPAGE_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "stratapage", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "db_short_timeout", Default: "5s", Desc: "Timeout for single-document database calls"},
	{Name: "db_medium_timeout", Default: "10s", Desc: "Timeout for database listings"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "stratapage-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session cookie max age (e.g., 24h, 720h, 30m)"},

	// Rate limiting configuration
	{Name: "rate_limit_enabled", Default: true, Desc: "Enable rate limiting for sign-in attempts"},
	{Name: "rate_limit_login_attempts", Default: 5, Desc: "Max failed sign-in attempts before lockout"},
	{Name: "rate_limit_login_window", Default: "15m", Desc: "Time window for counting failed attempts"},
	{Name: "rate_limit_login_lockout", Default: "15m", Desc: "Lockout duration after exceeding limit"},

	{Name: "csrf_key", Default: "dev-only-csrf-key-please-change-0123456789", Desc: "CSRF token signing key (32+ chars in production)"},

	// Section image storage
	{Name: "storage_type", Default: "local", Desc: "Storage backend: 'local' or 's3'"},
	{Name: "storage_local_path", Default: "./uploads", Desc: "Local storage path for uploaded images"},
	{Name: "storage_local_url", Default: "/uploads", Desc: "URL prefix for serving local images"},

	// S3/CloudFront configuration
	{Name: "storage_s3_region", Default: "", Desc: "AWS region for S3"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name"},
	{Name: "storage_s3_prefix", Default: "uploads/", Desc: "S3 key prefix"},
	{Name: "storage_cf_url", Default: "", Desc: "CloudFront distribution URL"},
	{Name: "storage_cf_keypair_id", Default: "", Desc: "CloudFront key pair ID"},
	{Name: "storage_cf_key_path", Default: "", Desc: "Path to CloudFront private key file"},

	// AI content generation
	{Name: "genai_api_key", Default: "", Desc: "Gemini API key (leave empty to disable AI generation)"},
	{Name: "genai_model", Default: generator.DefaultModel, Desc: "Gemini model name"},
	{Name: "genai_timeout", Default: "60s", Desc: "Deadline for one generation request"},

	{Name: "draft_ttl", Default: "72h", Desc: "How long unsaved editor drafts are kept"},

	// Branding
	{Name: "site_name", Default: viewdata.DefaultSiteName, Desc: "Site name shown in the nav and titles"},
	{Name: "footer_html", Default: viewdata.DefaultFooterHTML, Desc: "Footer HTML (sanitized)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// environment variables (WAFFLE_* for core, STRATAPAGE_* for app) and flags,
// with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvVarPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		DBShortTimeout:   appValues.Duration("db_short_timeout", 5*time.Second),
		DBMediumTimeout:  appValues.Duration("db_medium_timeout", 10*time.Second),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 24*time.Hour),

		// Rate limiting
		RateLimitEnabled:       appValues.Bool("rate_limit_enabled"),
		RateLimitLoginAttempts: appValues.Int("rate_limit_login_attempts"),
		RateLimitLoginWindow:   appValues.Duration("rate_limit_login_window", 15*time.Minute),
		RateLimitLoginLockout:  appValues.Duration("rate_limit_login_lockout", 15*time.Minute),

		CSRFKey: appValues.String("csrf_key"),

		// Image storage
		StorageType:      appValues.String("storage_type"),
		StorageLocalPath: appValues.String("storage_local_path"),
		StorageLocalURL:  appValues.String("storage_local_url"),

		// S3/CloudFront
		StorageS3Region:    appValues.String("storage_s3_region"),
		StorageS3Bucket:    appValues.String("storage_s3_bucket"),
		StorageS3Prefix:    appValues.String("storage_s3_prefix"),
		StorageCFURL:       appValues.String("storage_cf_url"),
		StorageCFKeyPairID: appValues.String("storage_cf_keypair_id"),
		StorageCFKeyPath:   appValues.String("storage_cf_key_path"),

		// AI generation
		GenAIAPIKey:  appValues.String("genai_api_key"),
		GenAIModel:   appValues.String("genai_model"),
		GenAITimeout: appValues.Duration("genai_timeout", 60*time.Second),

		DraftTTL: appValues.Duration("draft_ttl", 72*time.Hour),

		SiteName:   appValues.String("site_name"),
		FooterHTML: appValues.String("footer_html"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
// Returning an error aborts startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	return validateApp(appCfg)
}

// validateApp checks the settings that do not need a live backend.
func validateApp(appCfg AppConfig) error {
	var errs []error
	if appCfg.GenAITimeout <= 0 {
		errs = append(errs, errors.New("genai_timeout must be positive"))
	}
	if appCfg.DraftTTL <= 0 {
		errs = append(errs, errors.New("draft_ttl must be positive"))
	}
	switch appCfg.StorageType {
	case "", "local":
		if appCfg.StorageLocalURL == "" || appCfg.StorageLocalURL[0] != '/' {
			errs = append(errs, errors.New("storage_local_url must start with /"))
		}
	case "s3":
		if appCfg.StorageS3Bucket == "" {
			errs = append(errs, errors.New("storage_s3_bucket is required when storage_type is s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage_type %q", appCfg.StorageType))
	}
	if appCfg.RateLimitEnabled && appCfg.RateLimitLoginAttempts <= 0 {
		errs = append(errs, errors.New("rate_limit_login_attempts must be positive when rate limiting is enabled"))
	}
	return errors.Join(errs...)
}
