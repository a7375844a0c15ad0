// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/bookcourier/internal/app/system/auditlog"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for BookCourier.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, stripe_secret_key, etc.
//   - Environment variables: BOOKCOURIER_MONGO_URI, BOOKCOURIER_STRIPE_SECRET_KEY, etc.
//   - Command-line flags: --mongo_uri, --stripe_secret_key, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "book_courier_db", Desc: "MongoDB database name"},

	// Firebase Auth
	{Name: "firebase_credentials_path", Default: "", Desc: "Path to the Firebase service account JSON (blank uses ADC)"},
	{Name: "firebase_project_id", Default: "", Desc: "Firebase project ID"},

	// Stripe Checkout
	{Name: "stripe_secret_key", Default: "", Desc: "Stripe secret API key"},
	{Name: "checkout_currency", Default: "usd", Desc: "Currency for checkout sessions"},
	{Name: "checkout_success_url", Default: "http://localhost:5173/payment-success", Desc: "Redirect after a completed checkout"},
	{Name: "checkout_cancel_url", Default: "http://localhost:5173/dashboard/my-orders", Desc: "Redirect after a cancelled checkout"},
	{Name: "checkout_rate_limit", Default: 20, Desc: "Checkout sessions per client IP per minute (0 disables)"},

	// Redis
	{Name: "redis_url", Default: "", Desc: "Redis URL for the payment confirmation lock (blank uses an in-process lock)"},

	// CORS
	{Name: "cors_allowed_origins", Default: "*", Desc: "Comma-separated origins allowed by CORS"},

	// Audit logging settings
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_payment", Default: "all", Desc: "Payment event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Admin bootstrap
	{Name: "admin_email", Default: "", Desc: "Email of the admin user (promotes/creates on startup)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, BOOKCOURIER_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "BOOKCOURIER", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:      appValues.String("mongo_uri"),
		MongoDatabase: appValues.String("mongo_database"),

		FirebaseCredentialsPath: appValues.String("firebase_credentials_path"),
		FirebaseProjectID:       appValues.String("firebase_project_id"),

		StripeSecretKey:    appValues.String("stripe_secret_key"),
		CheckoutCurrency:   strings.ToLower(strings.TrimSpace(appValues.String("checkout_currency"))),
		CheckoutSuccessURL: appValues.String("checkout_success_url"),
		CheckoutCancelURL:  appValues.String("checkout_cancel_url"),
		CheckoutRateLimit:  appValues.Int("checkout_rate_limit"),

		RedisURL: appValues.String("redis_url"),

		CORSAllowedOrigins: appValues.String("cors_allowed_origins"),

		AuditLogAdmin:   appValues.String("audit_log_admin"),
		AuditLogPayment: appValues.String("audit_log_payment"),

		AdminEmail: appValues.String("admin_email"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// BookCourier validates the MongoDB URI format to catch configuration
// errors early, before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if strings.TrimSpace(appCfg.MongoDatabase) == "" {
		return errors.New("mongo_database is required")
	}

	if appCfg.StripeSecretKey == "" {
		if coreCfg.Env == "prod" {
			return errors.New("stripe_secret_key is required in prod")
		}
		logger.Warn("stripe_secret_key is not set; checkout calls will fail")
	}
	if appCfg.CheckoutRateLimit < 0 {
		return fmt.Errorf("checkout_rate_limit must be >= 0, got %d", appCfg.CheckoutRateLimit)
	}

	for _, v := range []struct{ key, val string }{
		{"audit_log_admin", appCfg.AuditLogAdmin},
		{"audit_log_payment", appCfg.AuditLogPayment},
	} {
		switch v.val {
		case auditlog.All, auditlog.DB, auditlog.Log, auditlog.Off:
		default:
			return fmt.Errorf("%s must be one of all, db, log, off; got %q", v.key, v.val)
		}
	}

	return nil
}

// corsOrigins splits the configured origin list.
func corsOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
