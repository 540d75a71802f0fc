package config

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the top-level tutorsite configuration, corresponding to .tutorsite.yml.
type Config struct {
	App       AppConfig       `yaml:"app" koanf:"app"`
	Server    ServerConfig    `yaml:"server" koanf:"server"`
	Database  DatabaseConfig  `yaml:"database" koanf:"database"`
	DataDir   string          `yaml:"data_dir" koanf:"data_dir"`
	Sessions  SessionConfig   `yaml:"sessions" koanf:"sessions"`
	Notify    NotifyConfig    `yaml:"notify" koanf:"notify"`
	RateLimit RateLimitConfig `yaml:"rate_limit" koanf:"rate_limit"`
	Backup    BackupConfig    `yaml:"backup" koanf:"backup"`
	Admin     AdminConfig     `yaml:"admin" koanf:"admin"`
	LogLevel  string          `yaml:"log_level" koanf:"log_level"`
}

// AppConfig holds the strings shown on every page.
type AppConfig struct {
	Name        string `yaml:"name" koanf:"name"`
	Tagline     string `yaml:"tagline" koanf:"tagline"`
	TeacherName string `yaml:"teacher_name" koanf:"teacher_name"`
	Phone       string `yaml:"phone" koanf:"phone"`
	Email       string `yaml:"email" koanf:"email"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port            int    `yaml:"port" koanf:"port"`
	AllowAllOrigins bool   `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	SecureCookies   bool   `yaml:"secure_cookies" koanf:"secure_cookies"`
	ShutdownTimeout string `yaml:"shutdown_timeout" koanf:"shutdown_timeout"`
}

// DatabaseConfig selects the content store. An empty DSN with the postgres
// driver falls back to SQLite under DataDir.
type DatabaseConfig struct {
	Driver string `yaml:"driver" koanf:"driver"`
	DSN    string `yaml:"dsn" koanf:"dsn"`
}

// SessionConfig selects the session store. Without a Redis URL sessions
// live in memory.
type SessionConfig struct {
	RedisURL string `yaml:"redis_url" koanf:"redis_url"`
	TTL      string `yaml:"ttl" koanf:"ttl"`
}

// NotifyConfig configures new-request alerts. Every configured channel is
// used; with none, alerts are only logged.
type NotifyConfig struct {
	WebhookURL  string `yaml:"webhook_url" koanf:"webhook_url"`
	SendgridKey string `yaml:"sendgrid_key" koanf:"sendgrid_key"`
	FromEmail   string `yaml:"from_email" koanf:"from_email"`
	ToName      string `yaml:"to_name" koanf:"to_name"`
	ToEmail     string `yaml:"to_email" koanf:"to_email"`
}

// RateLimitConfig bounds form posts and sign-in attempts per client IP.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" koanf:"requests_per_minute"`
	Burst             int `yaml:"burst" koanf:"burst"`
}

// BackupConfig says where snapshots go. With an endpoint they are uploaded
// to object storage, otherwise written under Dir.
type BackupConfig struct {
	Dir       string `yaml:"dir" koanf:"dir"`
	Endpoint  string `yaml:"endpoint" koanf:"endpoint"`
	Bucket    string `yaml:"bucket" koanf:"bucket"`
	AccessKey string `yaml:"access_key" koanf:"access_key"`
	SecretKey string `yaml:"secret_key" koanf:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl" koanf:"use_ssl"`
}

// AdminConfig seeds the first admin account on an empty database.
type AdminConfig struct {
	Email    string `yaml:"email" koanf:"email"`
	Password string `yaml:"password" koanf:"password"`
}
