package config

// App holds process-wide settings shared by every component.
type App struct {
	Name string `env:"APP_NAME" envDefault:"resumekit"`
	Env  string `env:"APP_ENV" envDefault:"development"`
	// BaseURL is the public origin used to build redirect URLs.
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`
}
