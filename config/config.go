// Package config loads the editor configuration from file, environment and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"manuscript_editor/generator"
)

// Config holds the editor settings.
type Config struct {
	LLM        LLMConfig `mapstructure:"llm"`
	ServerAddr string    `mapstructure:"server_addr"`
	LogLevel   string    `mapstructure:"log_level"`
	ChatModel  string    `mapstructure:"chat_model"`
}

// LLMConfig selects and authenticates the completion provider.
type LLMConfig struct {
	Provider  string `mapstructure:"provider"`
	APIKey    string `mapstructure:"api_key"`
	BaseURL   string `mapstructure:"base_url"`
	FastModel string `mapstructure:"fast_model"`
	ProModel  string `mapstructure:"pro_model"`
}

var defaultModels = map[string][2]string{
	"gemini":   {"gemini-2.5-flash", "gemini-2.5-pro"},
	"openai":   {"gpt-4o-mini", "gpt-4o"},
	"deepseek": {"deepseek-chat", "deepseek-reasoner"},
	"mock":     {"mock-fast", "mock-pro"},
}

var envBindings = map[string][]string{
	"llm.provider":   {"EDITOR_LLM_PROVIDER"},
	"llm.api_key":    {"EDITOR_LLM_API_KEY", "GEMINI_API_KEY"},
	"llm.base_url":   {"EDITOR_LLM_BASE_URL"},
	"llm.fast_model": {"EDITOR_LLM_FAST_MODEL"},
	"llm.pro_model":  {"EDITOR_LLM_PRO_MODEL"},
	"server_addr":    {"EDITOR_SERVER_ADDR"},
	"log_level":      {"EDITOR_LOG_LEVEL"},
	"chat_model":     {"EDITOR_CHAT_MODEL"},
}

// Load reads configuration. With an empty path the file is optional and searched for
// as editor.{json,yaml,toml} in ., ./config and $HOME/.manuscript_editor.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, envs := range envBindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			log.Warn().Err(err).Msgf("Failed to bind environment for %s", key)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("editor")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.manuscript_editor")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
		log.Debug().Msg("Config file not found, using environment variables and defaults")
	} else {
		log.Debug().Msgf("Using config file: %s", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	cfg.applyModelDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("server_addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("chat_model", string(generator.ModelPro))
}

func (c *Config) applyModelDefaults() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	models, ok := defaultModels[c.LLM.Provider]
	if !ok {
		return
	}
	if c.LLM.FastModel == "" {
		c.LLM.FastModel = models[0]
	}
	if c.LLM.ProModel == "" {
		c.LLM.ProModel = models[1]
	}
}

// Validate checks provider, credentials and enumerations.
func (c *Config) Validate() error {
	if _, ok := defaultModels[c.LLM.Provider]; !ok {
		return fmt.Errorf("llm provider %s not supported", c.LLM.Provider)
	}
	if c.LLM.Provider != "mock" && c.LLM.APIKey == "" {
		return fmt.Errorf("%w: set llm.api_key, EDITOR_LLM_API_KEY or GEMINI_API_KEY", generator.ErrMissingAPIKey)
	}
	if c.LLM.Provider == "deepseek" && c.LLM.BaseURL == "" {
		return fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
	}
	if _, err := generator.ParseModelVariant(c.ChatModel); err != nil {
		return fmt.Errorf("chat_model: %w", err)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// Settings converts the LLM section for generator.NewLLM.
func (c *Config) Settings() *generator.LLMSettings {
	return &generator.LLMSettings{
		Provider:  c.LLM.Provider,
		APIKey:    c.LLM.APIKey,
		BaseURL:   c.LLM.BaseURL,
		FastModel: c.LLM.FastModel,
		ProModel:  c.LLM.ProModel,
	}
}

// Level returns the configured zerolog level.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}
