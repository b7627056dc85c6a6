// Package config loads the application configuration from YAML with
// environment overrides matching the deployment surface.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// EndeeConfig contains connection details for the Endee vector database.
type EndeeConfig struct {
	BaseURL     string `yaml:"base_url"`
	IndexName   string `yaml:"index_name"`
	Metric      string `yaml:"metric"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbeddingConfig configures the OpenAI-compatible embedding provider.
type EmbeddingConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	Dimension   int    `yaml:"dimension"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// LLMConfig configures the generation provider.
type LLMConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	TimeoutSecs int     `yaml:"timeout_secs"`
}

// ChunkingConfig configures the text windowing.
type ChunkingConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

// AppConfig is the root application configuration.
type AppConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Store     string          `yaml:"store"` // "endee" or "memory"
	Endee     EndeeConfig     `yaml:"endee"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
}

// Load reads a config from path. A missing file yields defaults. Environment
// variables override file values; validation runs last.
func Load(path string) (*AppConfig, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	applyEnvOverrides(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{Addr: ":8000"},
		Store:  "endee",
		Endee: EndeeConfig{
			BaseURL:     "http://localhost:8080",
			IndexName:   "rag_documents",
			Metric:      "cosine",
			TimeoutSecs: 30,
		},
		Embedding: EmbeddingConfig{
			APIKeyEnv:   "OPENAI_API_KEY",
			Model:       "text-embedding-3-small",
			Dimension:   1536,
			TimeoutSecs: 30,
		},
		LLM: LLMConfig{
			APIKeyEnv:   "OPENAI_API_KEY",
			Model:       "gpt-4-turbo-preview",
			Temperature: 0.3,
			MaxTokens:   1000,
			TimeoutSecs: 120,
		},
		Chunking: ChunkingConfig{Size: 500, Overlap: 50},
	}
}

func applyDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	if cfg.Store == "" {
		cfg.Store = def.Store
	}
	if cfg.Endee.BaseURL == "" {
		cfg.Endee.BaseURL = def.Endee.BaseURL
	}
	if cfg.Endee.IndexName == "" {
		cfg.Endee.IndexName = def.Endee.IndexName
	}
	if cfg.Endee.Metric == "" {
		cfg.Endee.Metric = def.Endee.Metric
	}
	if cfg.Endee.TimeoutSecs == 0 {
		cfg.Endee.TimeoutSecs = def.Endee.TimeoutSecs
	}
	if cfg.Embedding.APIKeyEnv == "" {
		cfg.Embedding.APIKeyEnv = def.Embedding.APIKeyEnv
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = def.Embedding.Model
	}
	if cfg.Embedding.Dimension == 0 {
		cfg.Embedding.Dimension = def.Embedding.Dimension
	}
	if cfg.Embedding.TimeoutSecs == 0 {
		cfg.Embedding.TimeoutSecs = def.Embedding.TimeoutSecs
	}
	if cfg.LLM.APIKeyEnv == "" {
		cfg.LLM.APIKeyEnv = def.LLM.APIKeyEnv
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = def.LLM.Model
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = def.LLM.Temperature
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = def.LLM.MaxTokens
	}
	if cfg.LLM.TimeoutSecs == 0 {
		cfg.LLM.TimeoutSecs = def.LLM.TimeoutSecs
	}
	if cfg.Chunking.Size == 0 {
		cfg.Chunking.Size = def.Chunking.Size
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, key string) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setString(&cfg.Server.Addr, "SERVER_ADDR")
	setString(&cfg.Endee.BaseURL, "ENDEE_BASE_URL")
	setString(&cfg.Endee.IndexName, "ENDEE_INDEX_NAME")
	setString(&cfg.Embedding.Model, "EMBEDDING_MODEL")
	setInt(&cfg.Embedding.Dimension, "EMBEDDING_DIMENSION")
	setString(&cfg.LLM.Model, "LLM_MODEL")
	setInt(&cfg.Chunking.Size, "CHUNK_SIZE")
	setInt(&cfg.Chunking.Overlap, "CHUNK_OVERLAP")
}

func validate(cfg *AppConfig) error {
	switch cfg.Store {
	case "endee", "memory":
	default:
		return fmt.Errorf("config: unknown store %q", cfg.Store)
	}
	switch cfg.Endee.Metric {
	case "cosine", "euclidean", "dot":
	default:
		return fmt.Errorf("config: unknown metric %q", cfg.Endee.Metric)
	}
	if cfg.Embedding.Dimension <= 0 {
		return fmt.Errorf("config: embedding dimension must be positive, got %d", cfg.Embedding.Dimension)
	}
	if cfg.Chunking.Size <= 0 {
		return fmt.Errorf("config: chunk size must be positive, got %d", cfg.Chunking.Size)
	}
	if cfg.Chunking.Overlap < 0 || cfg.Chunking.Overlap >= cfg.Chunking.Size {
		return fmt.Errorf("config: chunk overlap %d must be in [0, %d)", cfg.Chunking.Overlap, cfg.Chunking.Size)
	}
	return nil
}
