// Package config loads the application configuration from a YAML file and
// the environment. Environment variables win over file values so the
// credential and deployment-specific paths never have to live on disk.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// SourceConfig describes where ingestion reads from.
type SourceConfig struct {
	Dir       string `yaml:"dir"`
	Suffix    string `yaml:"suffix"`
	RepoURL   string `yaml:"repo_url,omitempty"`
	ClonePath string `yaml:"clone_path"`
}

// SplitterConfig configures chunk sizing.
type SplitterConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// OpenAIEmbeddingConfig holds settings for the OpenAI-compatible embedder.
type OpenAIEmbeddingConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbeddingConfig selects and configures the embedding backend.
type EmbeddingConfig struct {
	Provider string                 `yaml:"provider"`
	Model    string                 `yaml:"model"`
	OpenAI   *OpenAIEmbeddingConfig `yaml:"openai,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// IndexConfig selects and configures the vector index backend.
type IndexConfig struct {
	Type   string        `yaml:"type"`
	Path   string        `yaml:"path"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// GenerationConfig configures the answer-generation model.
type GenerationConfig struct {
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	// APIKey comes from GOOGLE_API_KEY only and is never written to disk.
	APIKey string `yaml:"-"`

	Source     SourceConfig     `yaml:"source"`
	Splitter   SplitterConfig   `yaml:"splitter"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Index      IndexConfig      `yaml:"index"`
	Generation GenerationConfig `yaml:"generation"`
	Mode       string           `yaml:"mode"`
}

// Load reads a config from a specified path. A missing file is an error:
// an explicitly configured path that does not exist should be noticed, not
// silently replaced with defaults. LoadDefault handles the probing case.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/infraguard/config.yaml.
// If neither exists, it writes defaults to the user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	applyEnvOverrides(cfg)
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "infraguard", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Source: SourceConfig{
			Dir:       "data",
			Suffix:    ".tf",
			ClonePath: filepath.Join("data", "cloned_repo"),
		},
		Splitter: SplitterConfig{ChunkSize: 1000, ChunkOverlap: 100},
		Embedding: EmbeddingConfig{
			Provider: "gemini",
			Model:    "gemini-embedding-001",
		},
		Index: IndexConfig{
			Type: "sqlite",
			Path: "vector_db",
		},
		Generation: GenerationConfig{
			Model:       "gemini-2.5-flash",
			TimeoutSecs: 120,
		},
		Mode: "architect",
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.Source.Dir == "" {
		cfg.Source.Dir = def.Source.Dir
	}
	if cfg.Source.Suffix == "" {
		cfg.Source.Suffix = def.Source.Suffix
	}
	if cfg.Source.ClonePath == "" {
		cfg.Source.ClonePath = def.Source.ClonePath
	}
	if cfg.Splitter.ChunkSize <= 0 {
		cfg.Splitter.ChunkSize = def.Splitter.ChunkSize
	}
	if cfg.Splitter.ChunkOverlap <= 0 {
		cfg.Splitter.ChunkOverlap = def.Splitter.ChunkOverlap
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = def.Embedding.Provider
	}
	if cfg.Embedding.Model == "" && cfg.Embedding.Provider == "gemini" {
		cfg.Embedding.Model = def.Embedding.Model
	}
	if cfg.Embedding.Provider == "openai" && cfg.Embedding.OpenAI != nil {
		if cfg.Embedding.OpenAI.BaseURL == "" {
			cfg.Embedding.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedding.OpenAI.APIKeyEnv == "" {
			cfg.Embedding.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedding.OpenAI.TimeoutSecs == 0 {
			cfg.Embedding.OpenAI.TimeoutSecs = 30
		}
	}
	if cfg.Index.Type == "" {
		cfg.Index.Type = def.Index.Type
	}
	if cfg.Index.Path == "" {
		cfg.Index.Path = def.Index.Path
	}
	if cfg.Generation.Model == "" {
		cfg.Generation.Model = def.Generation.Model
	}
	if cfg.Generation.TimeoutSecs <= 0 {
		cfg.Generation.TimeoutSecs = def.Generation.TimeoutSecs
	}
	if cfg.Mode == "" {
		cfg.Mode = def.Mode
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("GITHUB_REPO_URL"); v != "" {
		cfg.Source.RepoURL = v
	}
	if v := os.Getenv("INFRAGUARD_DATA_DIR"); v != "" {
		cfg.Source.Dir = v
	}
	if v := os.Getenv("INFRAGUARD_INDEX_PATH"); v != "" {
		cfg.Index.Path = v
	}
	if v := os.Getenv("INFRAGUARD_EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}
	if v := os.Getenv("INFRAGUARD_GENERATION_MODEL"); v != "" {
		cfg.Generation.Model = v
	}
	if v := os.Getenv("INFRAGUARD_MODE"); v != "" {
		cfg.Mode = v
	}
	if v := os.Getenv("INFRAGUARD_CHUNK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Splitter.ChunkSize = n
		}
	}
	if v := os.Getenv("INFRAGUARD_CHUNK_OVERLAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Splitter.ChunkOverlap = n
		}
	}
}
