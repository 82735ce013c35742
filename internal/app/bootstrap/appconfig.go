// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig covers framework-level settings (ports, TLS, log
// level, CORS). AppConfig is everything specific to corkboard: database
// connection, session signing, cover photo storage, and Google sign-in.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI      string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase string // Database name within MongoDB

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions
	SessionDomain string // Cookie domain (blank means current host)

	// Cover photo storage configuration
	StorageType      string // Storage backend: "local" or "s3"
	StorageLocalPath string // Local storage path (e.g., "./uploads/covers")
	StorageLocalURL  string // URL prefix for serving local files (e.g., "/files/covers")
	StorageS3Region  string // AWS region (s3 backend only)
	StorageS3Bucket  string // S3 bucket name
	StorageS3Prefix  string // Key prefix (e.g., "covers/")
	StoragePublicURL string // Public base URL for stored objects (CDN or local file route)

	// Google OAuth configuration
	GoogleClientID     string // Google OAuth2 client ID
	GoogleClientSecret string // Google OAuth2 client secret

	// BaseURL is the externally visible origin, used for OAuth callbacks.
	BaseURL string // e.g., "https://corkboard.example" or "http://localhost:3000"
}
