package config

// DefaultPath is the config file read when --config is not given.
const DefaultPath = ".tutorsite.yml"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "Unlock the World of English",
			Tagline:     "Learn English the easy way",
			TeacherName: "English Teacher",
		},
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: "15s",
		},
		Database: DatabaseConfig{
			Driver: DriverSQLite,
		},
		DataDir: ".tutorsite",
		Sessions: SessionConfig{
			TTL: "168h",
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 20,
			Burst:             5,
		},
		Backup: BackupConfig{
			Dir:    "backups",
			Bucket: "tutorsite-backups",
			UseSSL: true,
		},
		LogLevel: "info",
	}
}
