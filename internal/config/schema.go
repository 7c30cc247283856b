package config

import (
	"time"

	"github.com/survaize/survaize/internal/ocr"
	"github.com/survaize/survaize/internal/providers"
)

// Config holds survaize configuration.
// Loaded from ./config.yaml or ~/.survaize/config.yaml.
type Config struct {
	LLM    LLMCfg    `mapstructure:"llm" yaml:"llm"`
	OCR    OCRCfg    `mapstructure:"ocr" yaml:"ocr"`
	Server ServerCfg `mapstructure:"server" yaml:"server"`
}

// LLMCfg configures the model provider used for interpretation.
type LLMCfg struct {
	Provider   string        `mapstructure:"provider" yaml:"provider"` // "openai", "azure" or "mock"
	APIKey     string        `mapstructure:"api_key" yaml:"api_key"`   // supports ${ENV_VAR} syntax
	BaseURL    string        `mapstructure:"base_url" yaml:"base_url"`
	Endpoint   string        `mapstructure:"endpoint" yaml:"endpoint"`       // Azure resource endpoint
	APIVersion string        `mapstructure:"api_version" yaml:"api_version"` // Azure API version
	Model      string        `mapstructure:"model" yaml:"model"`
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"` // validation retry budget per page
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// OCRCfg configures the tesseract-server sidecar.
type OCRCfg struct {
	Image         string        `mapstructure:"image" yaml:"image"`
	ContainerName string        `mapstructure:"container_name" yaml:"container_name"`
	Port          string        `mapstructure:"port" yaml:"port"`
	Languages     []string      `mapstructure:"languages" yaml:"languages"`
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// ServerCfg configures the web server.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMCfg{
			Provider:   "openai",
			APIKey:     "${OPENAI_API_KEY}",
			Model:      "gpt-4o",
			MaxRetries: 10,
			Timeout:    2 * time.Minute,
		},
		OCR: OCRCfg{
			Image:         ocr.DefaultImage,
			ContainerName: ocr.DefaultContainerName,
			Port:          ocr.DefaultPort,
			Languages:     []string{"eng"},
			Timeout:       time.Minute,
		},
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: 8000,
		},
	}
}

// ProviderConfig maps the LLM section to a provider client config, resolving
// ${ENV_VAR} references in the API key.
func (c *Config) ProviderConfig() providers.OpenAIConfig {
	return providers.OpenAIConfig{
		APIKey:     ResolveEnvVars(c.LLM.APIKey),
		BaseURL:    c.LLM.BaseURL,
		Model:      c.LLM.Model,
		Endpoint:   c.LLM.Endpoint,
		APIVersion: c.LLM.APIVersion,
		Timeout:    c.LLM.Timeout,
	}
}
