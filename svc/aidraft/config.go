package aidraft

// Config configures the OpenAI client.
type Config struct {
	APIKey  string `env:"OPENAI_API_KEY,required"`
	Model   string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	BaseURL string `env:"OPENAI_BASE_URL"`
}
