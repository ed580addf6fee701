package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	ClassifierModeLLM     = "llm"
	ClassifierModeKeyword = "keyword"

	DirectorySourceDefaults = "defaults"
	DirectorySourceConfig   = "config"
	DirectorySourcePostgres = "postgres"
)

// Load reads configs/config.yaml, merges configs/config.<APP_ENVIRONMENT>.yaml when present and
// applies environment overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// expandEnvVars replaces ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if val := os.Getenv(k); val != "" {
			return val
		}
	}
	return ""
}

// overrideEmptyConfig fills credentials that are still empty after expansion.
func overrideEmptyConfig(cfg *Config) {
	if cfg.LLM.APIKey == "" {
		switch cfg.LLM.Provider {
		case ProviderGemini:
			cfg.LLM.APIKey = firstEnv("LLM_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY")
		default:
			cfg.LLM.APIKey = firstEnv("LLM_API_KEY", "GROQ_API_KEY", "OPENAI_API_KEY")
		}
	}

	if cfg.Database.Postgres.User == "" {
		cfg.Database.Postgres.User = firstEnv("DB_USER")
	}
	if cfg.Database.Postgres.Password == "" {
		cfg.Database.Postgres.Password = firstEnv("DB_PASSWORD")
	}
	if cfg.Database.Redis.Address == "" {
		cfg.Database.Redis.Address = firstEnv("REDIS_ADDRESS", "REDIS_ADDR")
	}
	if cfg.Database.Redis.Password == "" {
		cfg.Database.Redis.Password = firstEnv("REDIS_PASSWORD")
	}
	if cfg.Camunda.BrokerAddress == "" {
		cfg.Camunda.BrokerAddress = firstEnv("ZEEBE_ADDRESS")
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "frontdesk-workers"
	}

	if cfg.Camunda.ProcessID == "" {
		cfg.Camunda.ProcessID = "frontdesk-turn"
	}
	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 10
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 2
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.EmailIndex == "" {
		cfg.Database.Elasticsearch.EmailIndex = "frontdesk-emails"
	}
	if cfg.Database.Redis.KeyPrefix == "" {
		cfg.Database.Redis.KeyPrefix = "frontdesk:"
	}

	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = ProviderOpenAI
	}
	if cfg.LLM.BaseURL == "" && cfg.LLM.Provider == ProviderOpenAI {
		cfg.LLM.BaseURL = "https://api.groq.com/openai/v1/"
	}
	if cfg.LLM.Model == "" {
		if cfg.LLM.Provider == ProviderGemini {
			cfg.LLM.Model = "gemini-2.0-flash"
		} else {
			cfg.LLM.Model = "llama-3.3-70b-versatile"
		}
	}
	if cfg.LLM.ClassifierModel == "" {
		cfg.LLM.ClassifierModel = cfg.LLM.Model
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.7
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 500
	}
	if cfg.LLM.MaxToolRounds == 0 {
		cfg.LLM.MaxToolRounds = 4
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 30000
	}

	if cfg.Classifier.Mode == "" {
		cfg.Classifier.Mode = ClassifierModeLLM
	}

	if cfg.FrontDesk.CompanyName == "" {
		cfg.FrontDesk.CompanyName = "Brain Station 23"
	}
	if cfg.FrontDesk.AssistantName == "" {
		cfg.FrontDesk.AssistantName = "Sabnam"
	}
	if cfg.FrontDesk.Greeting == "" {
		cfg.FrontDesk.Greeting = fmt.Sprintf("Thank you for calling %s. This is %s, how may I help you today?",
			cfg.FrontDesk.CompanyName, cfg.FrontDesk.AssistantName)
	}
	if cfg.FrontDesk.CareersEmail == "" {
		cfg.FrontDesk.CareersEmail = "careers@brainstation-23.com"
	}
	if cfg.FrontDesk.AdminRouting.Finance == "" {
		cfg.FrontDesk.AdminRouting.Finance = "finance@brainstation-23.com"
	}
	if cfg.FrontDesk.AdminRouting.Compliance == "" {
		cfg.FrontDesk.AdminRouting.Compliance = "legal@brainstation-23.com"
	}
	if cfg.FrontDesk.AdminRouting.General == "" {
		cfg.FrontDesk.AdminRouting.General = "admin@brainstation-23.com"
	}

	if cfg.Directory.Source == "" {
		cfg.Directory.Source = DirectorySourceDefaults
	}

	if cfg.Session.HistoryTTL == 0 {
		cfg.Session.HistoryTTL = 3600000
	}
	if cfg.Session.MaxHistory == 0 {
		cfg.Session.MaxHistory = 40
	}
	if cfg.Session.TurnTimeout == 0 {
		cfg.Session.TurnTimeout = 45000
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}

	if cfg.Integrations.AWS.Region == "" {
		cfg.Integrations.AWS.Region = "us-east-1"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = cfg.Camunda.MaxJobsActive
		}
		if worker.Timeout == 0 {
			worker.Timeout = cfg.Camunda.Timeout
		}
		cfg.Workers[key] = worker
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required")
	}
	if cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required")
	}

	switch cfg.LLM.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("llm.provider must be %q or %q, got %q", ProviderOpenAI, ProviderGemini, cfg.LLM.Provider)
	}
	if cfg.LLM.MaxToolRounds < 0 {
		return fmt.Errorf("llm.max_tool_rounds must not be negative")
	}

	switch cfg.Classifier.Mode {
	case ClassifierModeLLM, ClassifierModeKeyword:
	default:
		return fmt.Errorf("classifier.mode must be %q or %q, got %q", ClassifierModeLLM, ClassifierModeKeyword, cfg.Classifier.Mode)
	}

	switch cfg.Directory.Source {
	case DirectorySourceDefaults:
	case DirectorySourceConfig:
		if len(cfg.Directory.Company) == 0 && len(cfg.Directory.Employees) == 0 && len(cfg.Directory.Jobs) == 0 {
			return fmt.Errorf("directory.source is %q but no directory data is configured", DirectorySourceConfig)
		}
	case DirectorySourcePostgres:
		if !cfg.Database.Postgres.Enabled {
			return fmt.Errorf("directory.source is %q but database.postgres.enabled is false", DirectorySourcePostgres)
		}
	default:
		return fmt.Errorf("unknown directory.source %q", cfg.Directory.Source)
	}

	if cfg.Database.Postgres.Enabled {
		if cfg.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required")
		}
		if cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required")
		}
		if cfg.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres.user is required")
		}
	}

	if cfg.Database.Elasticsearch.Enabled && len(cfg.Database.Elasticsearch.Addresses) == 0 {
		return fmt.Errorf("database.elasticsearch.addresses is required when elasticsearch is enabled")
	}

	if cfg.Integrations.AWS.SES.Enabled && cfg.Integrations.AWS.SES.FromEmail == "" {
		return fmt.Errorf("integrations.aws.ses.from_email is required when ses is enabled")
	}
	if cfg.Integrations.AWS.SNS.Enabled && cfg.Integrations.AWS.SNS.TopicARN == "" {
		return fmt.Errorf("integrations.aws.sns.topic_arn is required when sns is enabled")
	}

	if cfg.Observability.Jaeger.Enabled && cfg.Observability.Jaeger.Endpoint == "" {
		return fmt.Errorf("observability.jaeger.endpoint is required when jaeger is enabled")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to the Camunda defaults.
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: cfg.Camunda.MaxJobsActive,
		Timeout:       cfg.Camunda.Timeout,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
