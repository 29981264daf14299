package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/filedepot/filedepot_server/internal/storage"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	DefaultConfigPath = "files/config.yaml"
	envPrefix         = "FILEDEPOT"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	CORS    CORSConfig    `mapstructure:"cors"`
	Static  StaticConfig  `mapstructure:"static"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	Prefix          string        `mapstructure:"prefix"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type StorageConfig struct {
	Backend      string   `mapstructure:"backend"`
	VideoPath    string   `mapstructure:"video_path"`
	ImagePath    string   `mapstructure:"image_path"`
	VideoMaxSize int64    `mapstructure:"video_max_size"`
	ImageMaxSize int64    `mapstructure:"image_max_size"`
	S3           S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	Bucket    string `mapstructure:"bucket"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Region    string `mapstructure:"region"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StaticConfig points at a directory served for GET requests that match no
// route. Empty disables it.
type StaticConfig struct {
	Root string `mapstructure:"root"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

var defaults = map[string]any{
	"server.address":          ":3000",
	"server.prefix":           "/api/files",
	"server.read_timeout":     "0s",
	"server.write_timeout":    "0s",
	"server.shutdown_timeout": "10s",
	"storage.backend":         string(storage.BackendTypeLocal),
	"storage.video_path":      "",
	"storage.image_path":      "",
	"storage.video_max_size":  storage.DefaultVideoMaxSize,
	"storage.image_max_size":  storage.DefaultImageMaxSize,
	"storage.s3.endpoint":     "",
	"storage.s3.bucket":       "",
	"storage.s3.access_key":   "",
	"storage.s3.secret_key":   "",
	"storage.s3.region":       "",
	"storage.s3.use_ssl":      true,
	"cors.allowed_origins":    []string{"*"},
	"static.root":             "",
	"log.level":               "info",
	"log.pretty":              false,
}

// LoadConfig reads the YAML file at path and applies FILEDEPOT_* environment
// overrides, e.g. FILEDEPOT_STORAGE_VIDEO_PATH. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Warn().Str("path", path).Msg("Config file not found, using defaults and environment")
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}
	if c.Server.Prefix != "" && !strings.HasPrefix(c.Server.Prefix, "/") {
		return fmt.Errorf("server.prefix must start with /")
	}
	if c.Storage.VideoPath == "" {
		return fmt.Errorf("storage.video_path is required")
	}
	if c.Storage.ImagePath == "" {
		return fmt.Errorf("storage.image_path is required")
	}
	if c.Storage.VideoMaxSize <= 0 || c.Storage.ImageMaxSize <= 0 {
		return fmt.Errorf("storage max sizes must be positive")
	}
	switch storage.BackendType(c.Storage.Backend) {
	case storage.BackendTypeLocal:
	case storage.BackendTypeS3:
		if c.Storage.S3.Endpoint == "" || c.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.endpoint and storage.s3.bucket are required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown storage.backend: %q", c.Storage.Backend)
	}
	return nil
}

func (c *Config) BackendConfig() *storage.BackendConfig {
	return &storage.BackendConfig{
		Type:        storage.BackendType(c.Storage.Backend),
		S3Endpoint:  c.Storage.S3.Endpoint,
		S3Bucket:    c.Storage.S3.Bucket,
		S3AccessKey: c.Storage.S3.AccessKey,
		S3SecretKey: c.Storage.S3.SecretKey,
		S3Region:    c.Storage.S3.Region,
		S3UseSSL:    c.Storage.S3.UseSSL,
	}
}

// MaxRequestBodySize leaves room for multipart framing and form fields on top
// of the largest file cap.
func (c *Config) MaxRequestBodySize() int {
	largest := c.Storage.VideoMaxSize
	if c.Storage.ImageMaxSize > largest {
		largest = c.Storage.ImageMaxSize
	}
	return int(largest + storage.MiB)
}
