package config

// AIConfig configures the OpenAI-compatible chat completions endpoint used
// for quiz generation.
type AIConfig struct {
	APIKey    string `yaml:"-"` // env only
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	TimeoutMS int    `yaml:"timeout_ms"`
}

func DefaultAIConfig() AIConfig {
	return AIConfig{
		BaseURL:   "https://api.openai.com/v1",
		Model:     "gpt-4o-mini",
		TimeoutMS: 30000,
	}
}

func (c *AIConfig) applyEnv() {
	c.APIKey = getEnv("OPENAI_API_KEY", c.APIKey)
	c.BaseURL = getEnv("OPENAI_BASE_URL", c.BaseURL)
	c.Model = getEnv("OPENAI_MODEL", c.Model)
	c.TimeoutMS = getEnvInt("OPENAI_TIMEOUT_MS", c.TimeoutMS)
}

// IsEnabled returns true if an API key is configured.
func (c AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// CompletionsEndpoint returns the chat completions URL.
func (c AIConfig) CompletionsEndpoint() string {
	return c.BaseURL + "/chat/completions"
}
