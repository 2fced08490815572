package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

const (
	StorageDriverMongo = "mongo"
	StorageDriverSQL   = "sql"

	OutputModeJSON         = "json"
	OutputModeFunctionCall = "function_call"
)

type AppConfig struct {
	Logging       LoggingConfig       `yaml:"logging"`
	Server        ServerConfig        `yaml:"server"`
	Gemini        GeminiConfig        `yaml:"gemini"`
	Retry         RetryConfig         `yaml:"retry"`
	Analysis      AnalysisConfig      `yaml:"analysis"`
	AnalysisQuota AnalysisQuotaConfig `yaml:"analysis_quota"`
	Storage       StorageConfig       `yaml:"storage"`
	Kafka         KafkaConfig         `yaml:"kafka"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type ServerConfig struct {
	Port        string `yaml:"port"`
	ServiceName string `yaml:"service_name"`
}

// GeminiConfig 는 분석용 LLM 호출 설정이다.
// APIKey 는 yaml 에 두지 않고 GEMINI_API_KEY 환경변수로만 주입한다.
type GeminiConfig struct {
	APIKey     string        `yaml:"-"`
	Model      string        `yaml:"model"`
	APIVersion string        `yaml:"api_version"`
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	// OutputMode 는 json(response mime type) 또는 function_call(강제 함수 호출) 중 하나.
	OutputMode  string  `yaml:"output_mode"`
	Temperature float32 `yaml:"temperature"`
}

type RetryConfig struct {
	MaxAttempts       int           `yaml:"max_attempts"`
	InitialDelay      time.Duration `yaml:"initial_delay"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier"`
}

type AnalysisConfig struct {
	// Timeout 은 재시도 대기를 포함한 분석 단계 전체의 상한이다. 0 이면 제한 없음.
	Timeout time.Duration `yaml:"timeout"`
}

// AnalysisQuotaConfig 는 분석용 LLM 호출에 대한 속도/일일 한도를 정의한다.
type AnalysisQuotaConfig struct {
	// RequestsPerMinute 는 분당 최대 요청 수이다. 0 이하면 제한 없음으로 간주한다.
	RequestsPerMinute int `yaml:"requests_per_minute"`

	// RequestsPerDay 는 일일 최대 요청 수이다. 0 이하면 제한 없음으로 간주한다.
	RequestsPerDay int `yaml:"requests_per_day"`
}

type StorageConfig struct {
	Driver       string        `yaml:"driver"`
	MongoURI     string        `yaml:"mongo_uri"`
	MongoDBName  string        `yaml:"mongo_db_name"`
	DatabaseURL  string        `yaml:"database_url"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type KafkaConfig struct {
	BootstrapServers string `yaml:"bootstrap_servers"`
	Topic            string `yaml:"topic"`
	Partitions       int    `yaml:"partitions"`
}

// Enabled reports whether feedback events should be published.
func (k KafkaConfig) Enabled() bool {
	return strings.TrimSpace(k.BootstrapServers) != ""
}

var config *AppConfig

// Default returns the configuration used when config.yaml leaves a value unset.
func Default() AppConfig {
	return AppConfig{
		Logging: LoggingConfig{Level: "info"},
		Server:  ServerConfig{Port: "8080", ServiceName: "feedback-api"},
		Gemini: GeminiConfig{
			Model:       "gemini-2.5-flash",
			Timeout:     30 * time.Second,
			OutputMode:  OutputModeJSON,
			Temperature: 0.4,
		},
		Retry: RetryConfig{
			MaxAttempts:       3,
			InitialDelay:      2 * time.Second,
			BackoffMultiplier: 2,
		},
		Analysis: AnalysisConfig{Timeout: 60 * time.Second},
		Storage: StorageConfig{
			Driver:       StorageDriverMongo,
			MongoDBName:  "feedback",
			WriteTimeout: 10 * time.Second,
		},
		Kafka: KafkaConfig{Topic: "feedback-ai.feedback.events", Partitions: 3},
	}
}

func InitApp() {
	basePath := GetBasePath()

	c, err := Load(filepath.Join(basePath, CONFIG_FILE))
	if err != nil {
		panic(err)
	}
	config = c
}

func GetConfig() AppConfig {
	if config == nil {
		InitApp()
	}

	return *config
}

// Load reads the yaml file at path (if it exists), the .env file next to it,
// and environment overrides, then validates the result.
func Load(path string) (*AppConfig, error) {
	// load environment variables
	_ = godotenv.Load(filepath.Join(filepath.Dir(path), ENV_FILE))

	c := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// env-only deployment
	default:
		return nil, err
	}

	applyEnv(&c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func applyEnv(c *AppConfig) {
	setString(&c.Gemini.APIKey, "GEMINI_API_KEY")
	setString(&c.Gemini.Model, "GEMINI_MODEL")
	setString(&c.Gemini.APIVersion, "GEMINI_API_VERSION")
	setString(&c.Gemini.BaseURL, "GEMINI_BASE_URL")
	setString(&c.Storage.Driver, "STORAGE_DRIVER")
	setString(&c.Storage.MongoURI, "MONGO_URI")
	setString(&c.Storage.MongoDBName, "MONGO_DB_NAME")
	setString(&c.Storage.DatabaseURL, "DATABASE_URL")
	setString(&c.Server.Port, "PORT")
	setString(&c.Server.ServiceName, "SERVICE_NAME")
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Kafka.BootstrapServers, "KAFKA_BOOTSTRAP_SERVERS")

	if v := os.Getenv("RETRY_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Retry.MaxAttempts = n
		}
	}
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// Validate checks the values the service cannot run without.
func (c AppConfig) Validate() error {
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be >= 1, got %d", c.Retry.MaxAttempts)
	}
	if c.Retry.InitialDelay < 0 {
		return fmt.Errorf("retry.initial_delay must not be negative")
	}
	if c.Retry.BackoffMultiplier < 1 {
		return fmt.Errorf("retry.backoff_multiplier must be >= 1, got %v", c.Retry.BackoffMultiplier)
	}
	switch c.Storage.Driver {
	case StorageDriverMongo:
	case StorageDriverSQL:
		if c.Storage.DatabaseURL == "" {
			return errors.New("storage.database_url (DATABASE_URL) is required for the sql driver")
		}
	default:
		return fmt.Errorf("unsupported storage driver: %s", c.Storage.Driver)
	}
	switch c.Gemini.OutputMode {
	case OutputModeJSON, OutputModeFunctionCall:
	default:
		return fmt.Errorf("unsupported gemini.output_mode: %s", c.Gemini.OutputMode)
	}
	return nil
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
