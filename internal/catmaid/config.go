package catmaid

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the CATMAID server connection settings, read from the
// environment (prefix CATMAID_) with an optional .env file.
type Config struct {
	Server       string        `envconfig:"SERVER" required:"true"`
	APIToken     string        `envconfig:"API_TOKEN"`
	ProjectID    int           `envconfig:"PROJECT_ID" default:"1"`
	HTTPUser     string        `envconfig:"HTTP_USER"`
	HTTPPassword string        `envconfig:"HTTP_PASSWORD"`
	Timeout      time.Duration `envconfig:"TIMEOUT" default:"30s"`
	CacheEnabled bool          `envconfig:"CACHE" default:"true"`
}

// LoadConfig reads the configuration from .env (if present) and the
// environment.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("CATMAID", &cfg); err != nil {
		return Config{}, fmt.Errorf("reading CATMAID config: %w", err)
	}
	return cfg, nil
}
