package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/agenthands/callrank/internal/core/strategy"
	"github.com/agenthands/callrank/internal/core/weights"
)

type RankingConfig struct {
	Strategy      string `toml:"strategy"`
	WeightProfile int    `toml:"weight_profile"`
	// response penalty, 0 keeps the profile default
	Penalty float64 `toml:"penalty"`
	// entries set here override the profile, the rest keep its values
	Weights *weights.Table `toml:"weights"`
}

type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type SummaryPrompts struct {
	Ranking string `toml:"ranking"`
	// number of top calls handed to the LLM
	Limit int `toml:"limit"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ServerConfig struct {
	Port string `toml:"port"`
}

type Config struct {
	Ranking  RankingConfig  `toml:"ranking"`
	LLM      LLMConfig      `toml:"llm"`
	Memgraph MemgraphConfig `toml:"memgraph"`
	Summary  SummaryPrompts `toml:"summary"`
	Logging  LoggingConfig  `toml:"logging"`
	Server   ServerConfig   `toml:"server"`
}

func Default() *Config {
	return &Config{
		Ranking: RankingConfig{
			Strategy: strategy.Default.String(),
		},
		LLM: LLMConfig{
			Provider: "openai",
		},
		Memgraph: MemgraphConfig{
			URI: "bolt://localhost:7687",
		},
		Summary: SummaryPrompts{
			Limit: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Port: "8080",
		},
	}
}

// Load reads a TOML file on top of Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if cfg.Ranking.Weights != nil {
		table, err := overlayWeights(data, cfg.Ranking.WeightProfile)
		if err != nil {
			return nil, err
		}
		cfg.Ranking.Weights = &table
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// overlayWeights decodes [ranking.weights] over the selected profile so that
// entries missing from the file keep the profile's values.
func overlayWeights(data []byte, profile int) (weights.Table, error) {
	base, err := weights.Profile(profile)
	if err != nil {
		return weights.Table{}, fmt.Errorf("invalid [ranking] weight_profile: %w", err)
	}

	overlay := struct {
		Ranking struct {
			Weights weights.Table `toml:"weights"`
		} `toml:"ranking"`
	}{}
	overlay.Ranking.Weights = base
	if err := toml.Unmarshal(data, &overlay); err != nil {
		return weights.Table{}, fmt.Errorf("failed to parse [ranking.weights]: %w", err)
	}
	return overlay.Ranking.Weights, nil
}

// LoadOrDefault loads path if it exists and falls back to Default otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

func (c *Config) Validate() error {
	if _, err := c.Ranking.Kind(); err != nil {
		return fmt.Errorf("invalid [ranking] strategy: %w", err)
	}
	if _, err := c.Ranking.Table(); err != nil {
		return fmt.Errorf("invalid [ranking] weight_profile: %w", err)
	}
	return nil
}

// ApplyEnv overrides file values with the environment.
func (c *Config) ApplyEnv() {
	set := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	set("LLM_PROVIDER", &c.LLM.Provider)
	set("LLM_MODEL", &c.LLM.Model)
	set("LLM_API_KEY", &c.LLM.APIKey)
	set("LLM_BASE_URL", &c.LLM.BaseURL)
	set("MEMGRAPH_URI", &c.Memgraph.URI)
	set("MEMGRAPH_USER", &c.Memgraph.User)
	set("MEMGRAPH_PASSWORD", &c.Memgraph.Password)
	set("RANKING_STRATEGY", &c.Ranking.Strategy)
	set("LOG_LEVEL", &c.Logging.Level)
	set("PORT", &c.Server.Port)

	c.Logging.Level = strings.ToLower(c.Logging.Level)
}

// Kind resolves the configured strategy, the default one when unset.
func (r RankingConfig) Kind() (strategy.Kind, error) {
	if r.Strategy == "" {
		return strategy.Default, nil
	}
	return strategy.Parse(r.Strategy)
}

// Table resolves the weight table: the explicit table if given (Load fills it
// from the profile first), the profile otherwise, with the configured penalty
// applied.
func (r RankingConfig) Table() (weights.Table, error) {
	var table weights.Table
	if r.Weights != nil {
		table = *r.Weights
	} else {
		t, err := weights.Profile(r.WeightProfile)
		if err != nil {
			return weights.Table{}, err
		}
		table = t
	}

	if r.Penalty > 0 {
		table = table.WithPenalty(r.Penalty)
	}
	return table, nil
}
