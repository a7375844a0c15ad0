// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables (BOOKCOURIER_*), configuration
// files, or command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig
// covers the framework-level settings: ports, TLS, log level and format.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI      string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase string // Database name within MongoDB

	// Identity provider (Firebase Auth)
	FirebaseCredentialsPath string // service account JSON; blank uses Application Default Credentials
	FirebaseProjectID       string

	// Payment provider (Stripe Checkout)
	StripeSecretKey    string
	CheckoutCurrency   string // ISO currency code, lowercase (default: usd)
	CheckoutSuccessURL string // session_id is appended by the provider
	CheckoutCancelURL  string
	CheckoutRateLimit  int // checkout sessions per client IP per minute; 0 disables

	// Redis for the cross-instance payment confirmation lock (optional)
	RedisURL string

	// Comma-separated origins allowed by CORS
	CORSAllowedOrigins string

	// Audit logging destinations: all, db, log, off
	AuditLogAdmin   string
	AuditLogPayment string

	// Email promoted to admin on startup (created if missing)
	AdminEmail string
}
