package configs

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/hilthontt/doctrack/internal/infrastructure/env"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	HTTP        HTTPConfig        `koanf:"http"`
	Storage     StorageConfig     `koanf:"storage"`
	Audit       AuditConfig       `koanf:"audit"`
	QR          QRConfig          `koanf:"qr"`
	RateLimiter RateLimiterConfig `koanf:"rate_limiter"`
	Logger      LoggerConfig      `koanf:"logger"`
	Tracing     TracingConfig     `koanf:"tracing"`
	Messaging   MessagingConfig   `koanf:"messaging"`
}

type HTTPConfig struct {
	Host         string        `koanf:"host"`
	Port         uint16        `koanf:"port"`
	BaseURL      string        `koanf:"base_url"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

type StorageConfig struct {
	DataDir       string `koanf:"data_dir"`
	UsersFile     string `koanf:"users_file"`
	DocumentsFile string `koanf:"documents_file"`
	LogsDir       string `koanf:"logs_dir"`
	QRCodesDir    string `koanf:"qrcodes_dir"`
}

type AuditConfig struct {
	// Backend is "xlsx" (one file per document) or "mongo".
	Backend       string        `koanf:"backend"`
	MongoURI      string        `koanf:"mongo_uri"`
	MongoDatabase string        `koanf:"mongo_database"`
	MongoTimeout  time.Duration `koanf:"mongo_timeout"`
}

type QRConfig struct {
	// Level is one of L, M, Q, H.
	Level string `koanf:"level"`
	Scale int    `koanf:"scale"`
}

type RateLimiterConfig struct {
	Enabled              bool          `koanf:"enabled"`
	RequestsPerTimeFrame int           `koanf:"requests_per_time_frame"`
	TimeFrame            time.Duration `koanf:"time_frame"`
}

type LoggerConfig struct {
	FilePath string `koanf:"file_path"`
	Encoding string `koanf:"encoding"`
	Level    string `koanf:"level"`
	Logger   string `koanf:"logger"`
}

type TracingConfig struct {
	// Exporter is "otlp", "jaeger" or "none".
	Exporter    string  `koanf:"exporter"`
	Endpoint    string  `koanf:"endpoint"`
	Environment string  `koanf:"environment"`
	SampleRatio float64 `koanf:"sample_ratio"`
}

type MessagingConfig struct {
	RabbitMQURI string `koanf:"rabbitmq_uri"`
	Exchange    string `koanf:"exchange"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	applyDefaults(k)
	applyEnvOverrides(k)

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Storage.resolve()

	return &cfg, nil
}

// resolve anchors relative table and directory paths to DataDir.
func (s *StorageConfig) resolve() {
	s.UsersFile = underDataDir(s.DataDir, s.UsersFile)
	s.DocumentsFile = underDataDir(s.DataDir, s.DocumentsFile)
	s.LogsDir = underDataDir(s.DataDir, s.LogsDir)
	s.QRCodesDir = underDataDir(s.DataDir, s.QRCodesDir)
}

func underDataDir(dataDir, p string) string {
	if filepath.IsAbs(p) || dataDir == "" {
		return p
	}
	return filepath.Join(dataDir, p)
}

func applyDefaults(k *koanf.Koanf) {
	setDefault(k, "http.host", "0.0.0.0")
	setDefault(k, "http.port", 3000)
	setDefault(k, "http.base_url", "http://localhost:3000")
	setDefault(k, "http.read_timeout", 10*time.Second)
	setDefault(k, "http.write_timeout", 30*time.Second)

	setDefault(k, "storage.data_dir", "./data")
	setDefault(k, "storage.users_file", "users.xlsx")
	setDefault(k, "storage.documents_file", "output.xlsx")
	setDefault(k, "storage.logs_dir", "logs")
	setDefault(k, "storage.qrcodes_dir", "qrcodes")

	setDefault(k, "audit.backend", "xlsx")
	setDefault(k, "audit.mongo_uri", "mongodb://localhost:27017")
	setDefault(k, "audit.mongo_database", "doctrack")
	setDefault(k, "audit.mongo_timeout", 20*time.Second)

	setDefault(k, "qr.level", "M")
	setDefault(k, "qr.scale", 8)

	setDefault(k, "rate_limiter.enabled", true)
	setDefault(k, "rate_limiter.requests_per_time_frame", 100)
	setDefault(k, "rate_limiter.time_frame", time.Minute)

	setDefault(k, "logger.file_path", "./logs/")
	setDefault(k, "logger.encoding", "json")
	setDefault(k, "logger.level", "info")
	setDefault(k, "logger.logger", "zap")

	setDefault(k, "tracing.exporter", "none")
	setDefault(k, "tracing.endpoint", "http://localhost:4318")
	setDefault(k, "tracing.environment", "development")
	setDefault(k, "tracing.sample_ratio", 1.0)

	setDefault(k, "messaging.rabbitmq_uri", "")
	setDefault(k, "messaging.exchange", "documents")
}

func applyEnvOverrides(k *koanf.Koanf) {
	if host := env.GetString("HTTP_HOST", ""); host != "" {
		k.Set("http.host", host)
	}
	if port := env.GetInt("HTTP_PORT", 0); port > 0 {
		k.Set("http.port", port)
	}
	if baseURL := env.GetString("HTTP_BASE_URL", ""); baseURL != "" {
		k.Set("http.base_url", baseURL)
	}
	if readTimeout := env.GetInt("HTTP_READ_TIMEOUT_SECONDS", 0); readTimeout > 0 {
		k.Set("http.read_timeout", time.Duration(readTimeout)*time.Second)
	}
	if writeTimeout := env.GetInt("HTTP_WRITE_TIMEOUT_SECONDS", 0); writeTimeout > 0 {
		k.Set("http.write_timeout", time.Duration(writeTimeout)*time.Second)
	}

	if dataDir := env.GetString("STORAGE_DATA_DIR", ""); dataDir != "" {
		k.Set("storage.data_dir", dataDir)
	}

	if backend := env.GetString("AUDIT_BACKEND", ""); backend != "" {
		k.Set("audit.backend", backend)
	}
	if uri := env.GetString("MONGODB_URI", ""); uri != "" {
		k.Set("audit.mongo_uri", uri)
	}
	if db := env.GetString("MONGODB_DATABASE", ""); db != "" {
		k.Set("audit.mongo_database", db)
	}

	if perFrame := env.GetInt("RATE_LIMIT_REQUESTS_PER_TIME_FRAME", 0); perFrame > 0 {
		k.Set("rate_limiter.requests_per_time_frame", perFrame)
	}
	if frame := env.GetInt("RATE_LIMIT_TIME_FRAME_SECONDS", 0); frame > 0 {
		k.Set("rate_limiter.time_frame", time.Duration(frame)*time.Second)
	}

	if path := env.GetString("LOGGER_FILE_PATH", ""); path != "" {
		k.Set("logger.file_path", path)
	}
	if encoding := env.GetString("LOGGER_ENCODING", ""); encoding != "" {
		k.Set("logger.encoding", encoding)
	}
	if level := env.GetString("LOGGER_LEVEL", ""); level != "" {
		k.Set("logger.level", level)
	}
	if logger := env.GetString("LOGGER_LOGGER", ""); logger != "" {
		k.Set("logger.logger", logger)
	}

	if exporter := env.GetString("TRACING_EXPORTER", ""); exporter != "" {
		k.Set("tracing.exporter", exporter)
	}
	if endpoint := env.GetString("TRACING_ENDPOINT", ""); endpoint != "" {
		k.Set("tracing.endpoint", endpoint)
	}
	if environment := env.GetString("ENVIRONMENT", ""); environment != "" {
		k.Set("tracing.environment", environment)
	}

	if uri := env.GetString("RABBITMQ_URI", ""); uri != "" {
		k.Set("messaging.rabbitmq_uri", uri)
	}
}

// setDefault only sets the value if the key doesn't already exist
func setDefault(k *koanf.Koanf, key string, value any) {
	if !k.Exists(key) {
		k.Set(key, value)
	}
}
