package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port            int              `json:"port"`
	JWTSecret       string           `json:"jwt_secret"`
	JWTTTLHours     int              `json:"jwt_ttl_hours"`
	AccessCodeHash  string           `json:"access_code_hash"`
	LogConfig       logger.LogConfig `json:"log_config"`
	Database        DatabaseConfig   `json:"database"`
	AI              AIConfig         `json:"ai"`
	Chunking        ChunkingConfig   `json:"chunking"`
	Retrieval       RetrievalConfig  `json:"retrieval"`
	Limits          LimitsConfig     `json:"limits"`
	FileStore       FileStoreConfig  `json:"file_store"`
	CORSAllowlist   []string         `json:"cors_allowlist"`
	EmbedCacheDays  int              `json:"embed_cache_days"`
	StaleSourceMins int              `json:"stale_source_mins"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

type AIConfig struct {
	Provider      string      `json:"provider"`
	ChatModel     string      `json:"chat_model"`
	EmbedModel    string      `json:"embed_model"`
	// Timeout bounds each provider call, in seconds. MaxInputChars caps the
	// length of a single chat message sent to the provider.
	Timeout       int             `json:"timeout"`
	MaxInputChars int             `json:"max_input_chars"`
	Data          interface{}     `json:"data"`
	Fallback      []AIProviderRef `json:"fallback"`
}

// AIProviderRef names a secondary provider tried when the one before it
// fails. Models default to the primary's when omitted.
type AIProviderRef struct {
	Provider   string      `json:"provider"`
	ChatModel  string      `json:"chat_model"`
	EmbedModel string      `json:"embed_model"`
	Data       interface{} `json:"data"`
}

type ChunkingConfig struct {
	Mode     string  `json:"mode"`
	MinSize  int     `json:"min_size"`
	MaxSize  int     `json:"max_size"`
	Overlap  float64 `json:"overlap"`
	MinTail  int     `json:"min_tail"`
	MaxToken int     `json:"max_tokens"`
}

type RetrievalConfig struct {
	Threshold  float64 `json:"threshold"`
	MatchLimit int     `json:"match_limit"`
}

type LimitsConfig struct {
	BotLimit        int  `json:"bot_limit"`
	MaxSourceSizeMB int  `json:"max_source_size_mb"`
	CrawlMaxPages   int  `json:"crawl_max_pages"`
	RateMsgsPerMin  int  `json:"rate_msgs_per_min"`
	// KeepRawFiles retains the original upload in the file store after
	// indexing. Raw files are deleted once chunks are persisted otherwise.
	KeepRawFiles bool `json:"keep_raw_files"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is required")
	}
	if cfg.AccessCodeHash == "" {
		return nil, fmt.Errorf("access_code_hash is required")
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.AI.Provider == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	// Provider factories decode their credentials from ai.data; without it
	// every AI call would fail at request time instead of startup.
	if cfg.AI.Data == nil {
		return nil, fmt.Errorf("ai.data is required")
	}
	if cfg.JWTTTLHours == 0 {
		cfg.JWTTTLHours = 7 * 24
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.AI.ChatModel == "" {
		cfg.AI.ChatModel = "gpt-4o-mini"
	}
	if cfg.AI.EmbedModel == "" {
		cfg.AI.EmbedModel = "text-embedding-3-small"
	}
	if cfg.AI.Timeout == 0 {
		cfg.AI.Timeout = 30
	}
	if cfg.AI.MaxInputChars == 0 {
		cfg.AI.MaxInputChars = 4000
	}
	for i := range cfg.AI.Fallback {
		ref := &cfg.AI.Fallback[i]
		if ref.Provider == "" || ref.Data == nil {
			return nil, fmt.Errorf("ai.fallback[%d]: provider and data are required", i)
		}
		if ref.ChatModel == "" {
			ref.ChatModel = cfg.AI.ChatModel
		}
		if ref.EmbedModel == "" {
			ref.EmbedModel = cfg.AI.EmbedModel
		}
	}
	applyChunkingDefaults(&cfg.Chunking)
	if cfg.Retrieval.Threshold == 0 {
		cfg.Retrieval.Threshold = 0.7
	}
	if cfg.Retrieval.MatchLimit == 0 {
		cfg.Retrieval.MatchLimit = 5
	}
	if cfg.Limits.BotLimit == 0 {
		cfg.Limits.BotLimit = 20
	}
	if cfg.Limits.MaxSourceSizeMB == 0 {
		cfg.Limits.MaxSourceSizeMB = 10
	}
	if cfg.Limits.CrawlMaxPages == 0 {
		cfg.Limits.CrawlMaxPages = 10
	}
	if cfg.Limits.RateMsgsPerMin == 0 {
		cfg.Limits.RateMsgsPerMin = 20
	}
	if cfg.EmbedCacheDays == 0 {
		cfg.EmbedCacheDays = 30
	}
	if cfg.StaleSourceMins == 0 {
		cfg.StaleSourceMins = 120
	}
	return &cfg, nil
}

func applyChunkingDefaults(c *ChunkingConfig) {
	if c.Mode == "" {
		c.Mode = "word"
	}
	if c.MinSize == 0 {
		c.MinSize = 300
	}
	if c.MaxSize == 0 {
		c.MaxSize = 500
	}
	if c.Overlap == 0 {
		c.Overlap = 0.05
	}
	if c.MinTail == 0 {
		c.MinTail = 50
	}
	if c.MaxToken == 0 {
		c.MaxToken = 500
	}
}
