package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Games    GamesConfig    `mapstructure:"games"`
	Goodies  GoodiesConfig  `mapstructure:"goodies"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Ollama   OllamaConfig   `mapstructure:"ollama"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Tts      TtsConfig      `mapstructure:"tts"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type AuthConfig struct {
	SessionSecret string `mapstructure:"session_secret"`
	// bcrypt hash of the admin password; empty leaves admin routes open for local development
	AdminPasswordHash string `mapstructure:"admin_password_hash"`
}

type GamesConfig struct {
	Dir                string         `mapstructure:"dir"`
	DefaultTotalLevels int            `mapstructure:"default_total_levels"`
	TotalLevels        map[string]int `mapstructure:"total_levels"`
	ShuffleSeed        int64          `mapstructure:"shuffle_seed"` // 0 = time seeded
	SessionTTL         time.Duration  `mapstructure:"session_ttl"`
}

// Levels resolves the round count for a game: a configured entry wins, then
// the game's own default, then games.default_total_levels.
func (g GamesConfig) Levels(gameID string, gameDefault int) int {
	if n, ok := g.TotalLevels[strings.ToLower(gameID)]; ok && n > 0 {
		return n
	}
	if gameDefault > 0 {
		return gameDefault
	}
	return g.DefaultTotalLevels
}

type GoodiesConfig struct {
	MinImageBytes int64 `mapstructure:"min_image_bytes"`
}

// LLM provider selection
type LLMConfig struct {
	Provider string `mapstructure:"provider"` // "ollama", "openai" or "none"
}

type OpenAIConfig struct {
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	BaseURL   string `mapstructure:"base_url"`
	MaxTokens int    `mapstructure:"max_tokens"`
	Timeout   int    `mapstructure:"timeout"`
}

type OllamaConfig struct {
	Host    string `mapstructure:"host"`
	Model   string `mapstructure:"model"`
	Timeout int    `mapstructure:"timeout"` // seconds
}

type TtsConfig struct {
	Type            string `mapstructure:"type"` // "google" or "none"
	Enabled         bool   `mapstructure:"enabled"`
	Voice           string `mapstructure:"voice"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:8080"})

	v.SetDefault("database.path", "./healplay.db")

	v.SetDefault("auth.session_secret", "your-secret-key-change-this-in-production")
	v.SetDefault("auth.admin_password_hash", "")

	v.SetDefault("games.dir", "")
	v.SetDefault("games.default_total_levels", 5)
	v.SetDefault("games.shuffle_seed", 0)
	v.SetDefault("games.session_ttl", 2*time.Hour)

	// uploads below this size are rejected by the admin client
	v.SetDefault("goodies.min_image_bytes", 5*1024*1024)

	v.SetDefault("llm.provider", "none")
	v.SetDefault("ollama.host", "http://localhost:11434")
	v.SetDefault("ollama.model", "llama3.2")
	v.SetDefault("ollama.timeout", 30)
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.timeout", 30)
	v.SetDefault("openai.max_tokens", 300)

	v.SetDefault("tts.enabled", false)
	v.SetDefault("tts.type", "google")
	v.SetDefault("tts.voice", "en-US-Chirp-HD-F")

	v.SetDefault("log.level", "info")
}

// Load reads config.yaml (from . or ./config), merges config.local.yaml on
// top when present and applies HEALPLAY_* environment overrides.
func Load() (*Config, error) {
	return LoadFrom(viper.New(), ".", "./config")
}

func LoadFrom(v *viper.Viper, paths ...string) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	setDefaults(v)

	v.BindEnv("openai.api_key", "HEALPLAY_OPENAI_API_KEY", "OPENAI_API_KEY")
	v.BindEnv("llm.provider", "HEALPLAY_LLM_PROVIDER", "LLM_PROVIDER")
	v.BindEnv("server.port", "HEALPLAY_SERVER_PORT", "PORT")

	v.SetEnvPrefix("HEALPLAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// Config file not found, use defaults
	} else {
		// local overrides (ignored by git)
		v.SetConfigName("config.local")
		if err := v.MergeInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Games.DefaultTotalLevels <= 0 {
		cfg.Games.DefaultTotalLevels = 5
	}

	return &cfg, nil
}
