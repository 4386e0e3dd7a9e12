package config

import (
	"time"

	"github.com/docker/go-units"
	"github.com/kelseyhightower/envconfig"
)

var singleConfig *Config = nil

type Config struct {
	Database  *dbConfig
	Service   *svcConfig
	Storage   *storageConfig
	Report    *reportConfig
	Broker    *brokerConfig
	Converter *converterConfig
}

type dbConfig struct {
	Type     string `envconfig:"DATABASE_TYPE" default:"pgsql"`
	Hostname string `envconfig:"DATABASE_HOST" default:"localhost"`
	Port     int    `envconfig:"DATABASE_PORT" default:"5432"`
	Name     string `envconfig:"DATABASE_NAME" default:"psychology"`
	User     string `envconfig:"DB_USER" default:"admin"`
	Password string `envconfig:"DB_PASSWORD" default:"adminpass"`
}

type svcConfig struct {
	Address         string   `envconfig:"PORT" default:":8000"`
	MetricsAddress  string   `envconfig:"METRICS_ADDRESS" default:":8080"`
	LogLevel        string   `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string   `envconfig:"LOG_FORMAT" default:"console"`
	LogOutputs      []string `envconfig:"LOG_OUTPUTS" default:"stdout"`
	MigrationFolder string   `envconfig:"MIGRATIONS_FOLDER" default:""`
	MaxUploadSize   string   `envconfig:"MAX_UPLOAD_SIZE" default:"64MB"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"*"`
}

type storageConfig struct {
	Driver    string        `envconfig:"STORAGE_DRIVER" default:"minio"`
	Endpoint  string        `envconfig:"MINIO_HOST" default:"localhost:9000"`
	AccessKey string        `envconfig:"MINIO_ACCESS_KEY" default:"minioadmin"`
	SecretKey string        `envconfig:"MINIO_SECRET_KEY" default:"minioadmin"`
	Secure    bool          `envconfig:"MINIO_SECURE" default:"false"`
	URLExpiry time.Duration `envconfig:"MINIO_URL_EXPIRY" default:"1h"`
}

type reportConfig struct {
	JarPath   string        `envconfig:"REPORT_JAR_PATH" default:"/opt/report"`
	JarName   string        `envconfig:"REPORT_JAR_NAME" default:"report.jar"`
	BasePath  string        `envconfig:"REPORT_BASE_PATH" default:"/opt/report/reports"`
	Timeout   time.Duration `envconfig:"REPORT_TIMEOUT" default:"60s"`
	Workers   int           `envconfig:"REPORT_WORKERS" default:"2"`
	ResultTTL time.Duration `envconfig:"REPORT_RESULT_TTL" default:"1000s"`
}

type brokerConfig struct {
	URL string `envconfig:"BROKER_URL" default:"redis://localhost:6379/0"`
}

type converterConfig struct {
	SofficeBinary  string        `envconfig:"SOFFICE_BINARY" default:"soffice"`
	PdftoppmBinary string        `envconfig:"PDFTOPPM_BINARY" default:"pdftoppm"`
	Timeout        time.Duration `envconfig:"CONVERTER_TIMEOUT" default:"15s"`
	Concurrency    int           `envconfig:"CONVERTER_CONCURRENCY" default:"4"`
}

// UploadLimit returns the maximum multipart body size in bytes.
func (s *svcConfig) UploadLimit() int64 {
	size, err := units.FromHumanSize(s.MaxUploadSize)
	if err != nil || size <= 0 {
		return 64 * units.MB
	}
	return size
}

func New() (*Config, error) {
	if singleConfig == nil {
		singleConfig = new(Config)
		if err := envconfig.Process("", singleConfig); err != nil {
			return nil, err
		}
	}
	return singleConfig, nil
}

// NewDefault returns a configuration backed by an in-memory sqlite database.
func NewDefault() *Config {
	cfg := new(Config)
	_ = envconfig.Process("", cfg)
	cfg.Database.Type = "sqlite"
	cfg.Database.Name = "file::memory:?cache=shared"
	cfg.Storage.Driver = "memory"
	return cfg
}
