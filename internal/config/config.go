package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the backend process.
type Config struct {
	Server    ServerConfig    `json:"server" yaml:"server"`
	Database  DatabaseConfig  `json:"database" yaml:"database"`
	Importer  ImporterConfig  `json:"importer" yaml:"importer"`
	LLM       LLMConfig       `json:"llm" yaml:"llm"`
	Embedding EmbeddingConfig `json:"embedding" yaml:"embedding"`
	VectorDB  VectorDBConfig  `json:"vectordb" yaml:"vectordb"`
	Query     QueryConfig     `json:"query" yaml:"query"`
	LogLevel  string          `json:"log_level,omitempty" yaml:"log_level,omitempty"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	ListenAddr string `json:"listen_addr" yaml:"listen_addr"`
	CORSOrigin string `json:"cors_origin" yaml:"cors_origin"`
	SecretKey  string `json:"secret_key,omitempty" yaml:"secret_key,omitempty"`
	// APIToken, when set, is required as a bearer token on /api/query.
	APIToken string `json:"api_token,omitempty" yaml:"api_token,omitempty"`
}

// DatabaseConfig configures the MySQL connection and admin seeding.
type DatabaseConfig struct {
	URI           string `json:"uri,omitempty" yaml:"uri,omitempty"`
	User          string `json:"user,omitempty" yaml:"user,omitempty"`
	Password      string `json:"password,omitempty" yaml:"password,omitempty"`
	Host          string `json:"host,omitempty" yaml:"host,omitempty"`
	Port          string `json:"port,omitempty" yaml:"port,omitempty"`
	Database      string `json:"database,omitempty" yaml:"database,omitempty"`
	Params        string `json:"params,omitempty" yaml:"params,omitempty"`
	AdminEmail    string `json:"admin_email,omitempty" yaml:"admin_email,omitempty"`
	AdminPassword string `json:"admin_password,omitempty" yaml:"admin_password,omitempty"`
}

// ImporterConfig configures CSV ingestion.
type ImporterConfig struct {
	CSVPath string `json:"csv_path" yaml:"csv_path"`
}

// LLMConfig defines configuration for the text-generation model.
type LLMConfig struct {
	Provider    string  `json:"provider" yaml:"provider"` // Available options: openai, bedrock
	APIKey      string  `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL     string  `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model       string  `json:"model" yaml:"model"`
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	Region      string  `json:"region,omitempty" yaml:"region,omitempty"`
}

// EmbeddingConfig defines configuration for the embedding model.
type EmbeddingConfig struct {
	Provider   string `json:"provider" yaml:"provider"` // Available options: openai, bedrock
	APIKey     string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL    string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model      string `json:"model,omitempty" yaml:"model,omitempty"`
	Dimensions int    `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`
}

// VectorDBConfig defines the read-only vector index backend.
type VectorDBConfig struct {
	Provider   string `json:"provider" yaml:"provider"` // Available options: local, milvus
	Dir        string `json:"dir,omitempty" yaml:"dir,omitempty"`
	Host       string `json:"host,omitempty" yaml:"host,omitempty"`
	Port       int    `json:"port,omitempty" yaml:"port,omitempty"`
	Database   string `json:"database,omitempty" yaml:"database,omitempty"`
	Collection string `json:"collection,omitempty" yaml:"collection,omitempty"`
	Username   string `json:"username,omitempty" yaml:"username,omitempty"`
	Password   string `json:"password,omitempty" yaml:"password,omitempty"`
}

// QueryConfig tunes the document query engine.
type QueryConfig struct {
	TopK            int     `json:"top_k,omitempty" yaml:"top_k,omitempty"`
	Threshold       float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	ContextBudget   int     `json:"context_budget,omitempty" yaml:"context_budget,omitempty"`
	CacheSize       int     `json:"cache_size,omitempty" yaml:"cache_size,omitempty"`
	CacheTTLSeconds int     `json:"cache_ttl_seconds,omitempty" yaml:"cache_ttl_seconds,omitempty"`
}

// Load reads an optional yaml config file, then applies environment
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setEnv(&cfg.Server.ListenAddr, "LISTEN_ADDR")
	setEnv(&cfg.Server.CORSOrigin, "CORS_ORIGIN")
	setEnv(&cfg.Server.SecretKey, "SECRET_KEY")
	setEnv(&cfg.Server.APIToken, "API_TOKEN")

	setEnv(&cfg.Database.URI, "DATABASE_URI")
	setEnv(&cfg.Database.User, "MYSQL_USER")
	setEnv(&cfg.Database.Password, "MYSQL_PASSWORD")
	setEnv(&cfg.Database.Host, "MYSQL_HOST")
	setEnv(&cfg.Database.Port, "MYSQL_PORT")
	setEnv(&cfg.Database.Database, "MYSQL_DATABASE")
	setEnv(&cfg.Database.Params, "MYSQL_PARAMS")
	setEnv(&cfg.Database.AdminEmail, "ADMIN_EMAIL")
	setEnv(&cfg.Database.AdminPassword, "ADMIN_PASSWORD")

	setEnv(&cfg.Importer.CSVPath, "CSV_PATH")

	setEnv(&cfg.LLM.APIKey, "BEDROCK_API_KEY")
	setEnv(&cfg.LLM.BaseURL, "BEDROCK_URL")
	setEnv(&cfg.LLM.Region, "AWS_REGION")
	setEnv(&cfg.Embedding.APIKey, "BEDROCK_API_KEY")
	setEnv(&cfg.Embedding.BaseURL, "BEDROCK_URL")

	setEnv(&cfg.VectorDB.Dir, "VECTORDIR")
	setEnv(&cfg.LogLevel, "LOG_LEVEL")
}

func applyDefaults(cfg *Config) {
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8080"
	}
	if cfg.Server.CORSOrigin == "" {
		cfg.Server.CORSOrigin = "https://syngent-ai.vercel.app"
	}
	if cfg.Server.SecretKey == "" {
		cfg.Server.SecretKey = "devkey"
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "syngenta"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "127.0.0.1"
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = "3306"
	}
	if cfg.Database.Database == "" {
		cfg.Database.Database = "syngenta"
	}
	if cfg.Database.Params == "" {
		cfg.Database.Params = "charset=utf8mb4&parseTime=True&loc=Local"
	}
	if cfg.Database.AdminEmail == "" {
		cfg.Database.AdminEmail = "admin@example.com"
	}
	if cfg.Database.AdminPassword == "" {
		cfg.Database.AdminPassword = "admin1234"
	}
	if cfg.Importer.CSVPath == "" {
		cfg.Importer.CSVPath = "app/csv_file/table.csv"
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "bedrock"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "claude-3-haiku"
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.7
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 500
	}
	if cfg.LLM.Region == "" {
		cfg.LLM.Region = "us-east-1"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "bedrock"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "amazon-embedding-v2"
	}
	if cfg.VectorDB.Provider == "" {
		cfg.VectorDB.Provider = "local"
	}
	if cfg.VectorDB.Dir == "" {
		cfg.VectorDB.Dir = "app/vector_store"
	}
	if cfg.VectorDB.Collection == "" {
		cfg.VectorDB.Collection = "documents"
	}
	if cfg.Query.TopK == 0 {
		cfg.Query.TopK = 5
	}
	if cfg.Query.ContextBudget == 0 {
		cfg.Query.ContextBudget = 3000
	}
	if cfg.Query.CacheSize == 0 {
		cfg.Query.CacheSize = 256
	}
	if cfg.Query.CacheTTLSeconds == 0 {
		cfg.Query.CacheTTLSeconds = 300
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

func setEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
