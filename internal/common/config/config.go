package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	LLM           LLMConfig               `mapstructure:"llm"`
	Classifier    ClassifierConfig        `mapstructure:"classifier"`
	FrontDesk     FrontDeskConfig         `mapstructure:"frontdesk"`
	Directory     DirectoryConfig         `mapstructure:"directory"`
	Session       SessionConfig           `mapstructure:"session"`
	Server        ServerConfig            `mapstructure:"server"`
	Integrations  IntegrationConfig       `mapstructure:"integrations"`
	Observability ObservabilityConfig     `mapstructure:"observability"`
	Logging       LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	Plaintext      bool   `mapstructure:"plaintext"`
	ProcessID      string `mapstructure:"process_id"`
	DeployOnStart  bool   `mapstructure:"deploy_on_start"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	EmailIndex string   `mapstructure:"email_index"`
}

type RedisConfig struct {
	Address   string `mapstructure:"address"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
}

// LLMConfig selects and tunes the remote text-generation provider.
type LLMConfig struct {
	Provider        string  `mapstructure:"provider"` // openai | gemini
	BaseURL         string  `mapstructure:"base_url"`
	APIKey          string  `mapstructure:"api_key"`
	Model           string  `mapstructure:"model"`
	ClassifierModel string  `mapstructure:"classifier_model"`
	Temperature     float64 `mapstructure:"temperature"`
	MaxTokens       int     `mapstructure:"max_tokens"`
	MaxToolRounds   int     `mapstructure:"max_tool_rounds"`
	Timeout         int     `mapstructure:"timeout"` // milliseconds
}

type ClassifierConfig struct {
	Mode string `mapstructure:"mode"` // llm | keyword
}

// FrontDeskConfig holds persona and routing settings for the receptionist.
type FrontDeskConfig struct {
	CompanyName   string             `mapstructure:"company_name"`
	AssistantName string             `mapstructure:"assistant_name"`
	Greeting      string             `mapstructure:"greeting"`
	CareersEmail  string             `mapstructure:"careers_email"`
	AdminRouting  AdminRoutingConfig `mapstructure:"admin_routing"`
}

type AdminRoutingConfig struct {
	Finance    string `mapstructure:"finance"`
	Compliance string `mapstructure:"compliance"`
	General    string `mapstructure:"general"`
}

// DirectoryConfig describes where reference data comes from and, for source "config", the data itself.
type DirectoryConfig struct {
	Source    string            `mapstructure:"source"` // defaults | config | postgres
	Company   map[string]string `mapstructure:"company"`
	Employees []EmployeeConfig  `mapstructure:"employees"`
	Jobs      []JobConfig       `mapstructure:"jobs"`
}

type EmployeeConfig struct {
	Key        string `mapstructure:"key"`
	Name       string `mapstructure:"name"`
	Title      string `mapstructure:"title"`
	Department string `mapstructure:"department"`
	Email      string `mapstructure:"email"`
}

type JobConfig struct {
	Category  string   `mapstructure:"category"`
	Positions []string `mapstructure:"positions"`
}

type SessionConfig struct {
	HistoryTTL  int `mapstructure:"history_ttl"` // milliseconds
	MaxHistory  int `mapstructure:"max_history"`
	TurnTimeout int `mapstructure:"turn_timeout"` // milliseconds
}

type ServerConfig struct {
	Address        string   `mapstructure:"address"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// IntegrationConfig holds AWS delivery settings for the communication tools.
type IntegrationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
		SES    struct {
			Enabled   bool   `mapstructure:"enabled"`
			FromEmail string `mapstructure:"from_email"`
		} `mapstructure:"ses"`
		SNS struct {
			Enabled  bool   `mapstructure:"enabled"`
			TopicARN string `mapstructure:"topic_arn"`
		} `mapstructure:"sns"`
	} `mapstructure:"aws"`
}

type ObservabilityConfig struct {
	Jaeger struct {
		Enabled  bool   `mapstructure:"enabled"`
		Endpoint string `mapstructure:"endpoint"`
	} `mapstructure:"jaeger"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
