package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Database *dbConfig
	Service  *svcConfig
	Storage  *storageConfig
	Upload   *uploadConfig
	YouTube  *youtubeConfig
}

type dbConfig struct {
	Type     string `envconfig:"DB_TYPE" default:"pgsql"`
	Hostname string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"clipforge"`
	User     string `envconfig:"DB_USER" default:"admin"`
	Password string `envconfig:"DB_PASS" default:"adminpass"`
}

type svcConfig struct {
	Address         string   `envconfig:"CLIPFORGE_ADDRESS" default:":8080"`
	MetricsAddress  string   `envconfig:"CLIPFORGE_METRICS_ADDRESS" default:":8081"`
	BaseUrl         string   `envconfig:"CLIPFORGE_BASE_URL" default:"http://localhost:8080"`
	LogLevel        string   `envconfig:"CLIPFORGE_LOG_LEVEL" default:"info"`
	CorsOrigins     []string `envconfig:"CLIPFORGE_CORS_ORIGINS" default:"http://localhost:5173"`
	MigrationFolder string   `envconfig:"CLIPFORGE_MIGRATIONS_FOLDER" default:""`
	Auth            Auth
}

type Auth struct {
	AuthenticationType string `envconfig:"CLIPFORGE_AUTH" default:"jwt"`
	JwtSecret          string `envconfig:"CLIPFORGE_JWT_SECRET" default:""`
	JwtExpireHours     int    `envconfig:"CLIPFORGE_JWT_EXPIRE_HOURS" default:"168"`
}

type storageConfig struct {
	Endpoint  string `envconfig:"CLIPFORGE_S3_ENDPOINT" default:"localhost:9000"`
	Bucket    string `envconfig:"CLIPFORGE_S3_BUCKET" default:"clipforge-videos"`
	AccessKey string `envconfig:"CLIPFORGE_S3_ACCESS_KEY" default:""`
	SecretKey string `envconfig:"CLIPFORGE_S3_SECRET_KEY" default:""`
	UseSSL    bool   `envconfig:"CLIPFORGE_S3_USE_SSL" default:"false"`
}

type uploadConfig struct {
	// MaxFileSize is the upper bound, in bytes, for a single video upload.
	MaxFileSize int64 `envconfig:"CLIPFORGE_MAX_FILE_SIZE" default:"104857600"`
	// ClipLength is the fixed clip segment length, in seconds, used by the worker.
	ClipLength int `envconfig:"CLIPFORGE_CLIP_LENGTH" default:"60"`
}

type youtubeConfig struct {
	MetadataRetries int `envconfig:"CLIPFORGE_YT_METADATA_RETRIES" default:"3"`
	// MetadataBackoffSeconds is multiplied by the attempt number between retries.
	MetadataBackoffSeconds int `envconfig:"CLIPFORGE_YT_METADATA_BACKOFF_SECONDS" default:"2"`
}

func New() (*Config, error) {
	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewDefault returns a config populated with defaults only, ignoring the
// environment. Used by tests.
func NewDefault() *Config {
	return &Config{
		Database: &dbConfig{Type: "sqlite", Name: ":memory:"},
		Service: &svcConfig{
			Address:        ":8080",
			MetricsAddress: ":8081",
			BaseUrl:        "http://localhost:8080",
			LogLevel:       "info",
			Auth:           Auth{AuthenticationType: "none"},
		},
		Storage: &storageConfig{Bucket: "clipforge-videos"},
		Upload:  &uploadConfig{MaxFileSize: 100 << 20, ClipLength: 60},
		YouTube: &youtubeConfig{MetadataRetries: 3, MetadataBackoffSeconds: 2},
	}
}
