package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Media    MediaConfig    `mapstructure:"media" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port      int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel  string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"required,oneof=json text"`
	// AllowedOrigins lists the origins accepted by the CORS middleware.
	AllowedOrigins      []string `mapstructure:"allowed_origins"`
	ReadTimeoutSeconds  int      `mapstructure:"read_timeout_seconds" validate:"gt=0"`
	WriteTimeoutSeconds int      `mapstructure:"write_timeout_seconds" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL                    string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns           int    `mapstructure:"max_open_conns" validate:"gt=0"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gt=0"`
	// AutoMigrate applies pending migrations on startup.
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0,lt=44640"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0,lt=525600"`
	BCryptCost                  int    `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`
	// RateLimitRPS and RateLimitBurst bound register/login attempts per client IP.
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps" validate:"gt=0"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst" validate:"gt=0"`
}

// RedisConfig configures the revoked-token store. An empty Addr keeps
// revocations in process memory.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

// MediaConfig configures logo processing and where uploaded files are kept.
type MediaConfig struct {
	Backend        string `mapstructure:"backend" validate:"required,oneof=local minio"`
	LocalDir       string `mapstructure:"local_dir" validate:"required_if=Backend local"`
	PublicPath     string `mapstructure:"public_path" validate:"required"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes" validate:"gt=0"`
	MaxDimension   int    `mapstructure:"max_dimension" validate:"gt=0"`
	MaxPixels      int    `mapstructure:"max_pixels" validate:"gt=0"`
	JPEGQuality    int    `mapstructure:"jpeg_quality" validate:"gte=1,lte=100"`

	MinioEndpoint  string `mapstructure:"minio_endpoint" validate:"required_if=Backend minio"`
	MinioAccessKey string `mapstructure:"minio_access_key" validate:"required_if=Backend minio"`
	MinioSecretKey string `mapstructure:"minio_secret_key" validate:"required_if=Backend minio"`
	MinioBucket    string `mapstructure:"minio_bucket" validate:"required_if=Backend minio"`
	MinioUseSSL    bool   `mapstructure:"minio_use_ssl"`
	// MinioPublicURL is the base URL clients use to fetch stored objects.
	MinioPublicURL string `mapstructure:"minio_public_url" validate:"required_if=Backend minio"`
}
