// Package config loads application configuration from file, environment,
// and defaults via viper.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log" yaml:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	// Embedding configuration
	Embedding EmbeddingConfig `mapstructure:"embedding" yaml:"embedding"`

	// Reranker configuration
	Reranker RerankerConfig `mapstructure:"reranker" yaml:"reranker"`

	// CircuitBreaker configuration for the reranker's LLM calls
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker" yaml:"circuit_breaker"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// Stores lists the vector stores to register at startup
	Stores []StoreConfig `mapstructure:"stores" yaml:"stores"`

	// Tools lists the retrieval tools to build at startup
	Tools []ToolConfig `mapstructure:"tools" yaml:"tools"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // text, color
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
	Mode string `mapstructure:"mode" yaml:"mode"` // gin mode: debug, release, test
}

// EmbeddingConfig holds embedding configuration
type EmbeddingConfig struct {
	Provider   string `mapstructure:"provider" yaml:"provider"` // openai, embedeverything, mock
	Model      string `mapstructure:"model" yaml:"model"`
	APIKey     string `mapstructure:"api_key" yaml:"api_key"`
	BaseURL    string `mapstructure:"base_url" yaml:"base_url"`
	Dimensions int    `mapstructure:"dimensions" yaml:"dimensions"`
}

// RerankerConfig holds reranker configuration
type RerankerConfig struct {
	Enabled         bool    `mapstructure:"enabled" yaml:"enabled"`
	Provider        string  `mapstructure:"provider" yaml:"provider"` // llm, embedding, mock
	Model           string  `mapstructure:"model" yaml:"model"`
	APIKey          string  `mapstructure:"api_key" yaml:"api_key"`
	BaseURL         string  `mapstructure:"base_url" yaml:"base_url"`
	MaxConcurrency  int     `mapstructure:"max_concurrency" yaml:"max_concurrency"`
	TextField       string  `mapstructure:"text_field" yaml:"text_field"`
	WeightRelevance float64 `mapstructure:"weight_relevance" yaml:"weight_relevance"`
	WeightVector    float64 `mapstructure:"weight_vector" yaml:"weight_vector"`
	WeightPosition  float64 `mapstructure:"weight_position" yaml:"weight_position"`
}

// CircuitBreakerConfig holds configuration for circuit breaking
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled" yaml:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests" yaml:"max_requests"`
	Interval         int     `mapstructure:"interval" yaml:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout" yaml:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio" yaml:"ready_to_trip_ratio"`
}

// TelemetryConfig holds telemetry configuration
type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled" yaml:"enabled"`
	ParquetPath string `mapstructure:"parquet_path" yaml:"parquet_path"`
}

// StoreConfig describes one vector store to register at startup
type StoreConfig struct {
	Name     string `mapstructure:"name" yaml:"name"`
	Driver   string `mapstructure:"driver" yaml:"driver"` // memory, badger, neo4j
	Path     string `mapstructure:"path" yaml:"path"`   // badger data directory
	URI      string `mapstructure:"uri" yaml:"uri"`    // neo4j connection URI
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
	Database string `mapstructure:"database" yaml:"database"`
}

// ToolConfig describes one retrieval tool to build at startup
type ToolConfig struct {
	ID            string `mapstructure:"id" yaml:"id"`
	Description   string `mapstructure:"description" yaml:"description"`
	StoreName     string `mapstructure:"store_name" yaml:"store_name"`
	IndexName     string `mapstructure:"index_name" yaml:"index_name"`
	EnableFilter  bool   `mapstructure:"enable_filter" yaml:"enable_filter"`
	DisableRerank bool   `mapstructure:"disable_rerank" yaml:"disable_rerank"`
	RerankTopK    int    `mapstructure:"rerank_top_k" yaml:"rerank_top_k"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// Set defaults
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Override with environment variables if present
	overrideWithEnv(config)

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "color")

	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")

	// Embedding defaults
	viper.SetDefault("embedding.provider", "openai")
	viper.SetDefault("embedding.model", "text-embedding-3-small")

	// Reranker defaults
	viper.SetDefault("reranker.enabled", false)
	viper.SetDefault("reranker.provider", "llm")
	viper.SetDefault("reranker.model", "gpt-4o-mini")
	viper.SetDefault("reranker.max_concurrency", 5)
	viper.SetDefault("reranker.text_field", "text")
	viper.SetDefault("reranker.weight_relevance", 0.4)
	viper.SetDefault("reranker.weight_vector", 0.4)
	viper.SetDefault("reranker.weight_position", 0.2)

	// Circuit breaker defaults
	viper.SetDefault("circuit_breaker.enabled", false)
	viper.SetDefault("circuit_breaker.max_requests", 1)
	viper.SetDefault("circuit_breaker.interval", 60)
	viper.SetDefault("circuit_breaker.timeout", 30)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)

	// Telemetry defaults
	home, err := os.UserHomeDir()
	if err == nil {
		defaultPath := fmt.Sprintf("%s/.lodestone/telemetry", home)
		viper.SetDefault("telemetry.parquet_path", defaultPath)
	}
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		if config.Embedding.APIKey == "" {
			config.Embedding.APIKey = apiKey
		}
		if config.Reranker.APIKey == "" {
			config.Reranker.APIKey = apiKey
		}
	}

	// Neo4j credentials apply to every neo4j store without explicit ones
	neo4jURI := os.Getenv("NEO4J_URI")
	neo4jUser := os.Getenv("NEO4J_USER")
	neo4jPass := os.Getenv("NEO4J_PASSWORD")
	for i := range config.Stores {
		if config.Stores[i].Driver != "neo4j" {
			continue
		}
		if config.Stores[i].URI == "" && neo4jURI != "" {
			config.Stores[i].URI = neo4jURI
		}
		if config.Stores[i].Username == "" && neo4jUser != "" {
			config.Stores[i].Username = neo4jUser
		}
		if config.Stores[i].Password == "" && neo4jPass != "" {
			config.Stores[i].Password = neo4jPass
		}
	}

	// Server settings
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		viper.Set("server.port", port)
	}

	// Telemetry settings
	if path := os.Getenv("TELEMETRY_PARQUET_PATH"); path != "" {
		config.Telemetry.ParquetPath = path
	}
}
