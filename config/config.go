package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	ModeServer = "SERVER"
	ModeWorker = "WORKER"
	ModeClient = "CLIENT"

	EngineMongo    = "mongo"
	EnginePostgres = "postgres"
	EngineMemory   = "memory"
)

type Config struct {
	AppMode     string   `env:"APP_MODE" envDefault:"SERVER"`
	ServerPort  int      `env:"SERVER_PORT" envDefault:"8080"`
	PublicURL   string   `env:"PUBLIC_URL" envDefault:"http://localhost:8080"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`

	MongoURL       string `env:"MONGO_URL" envDefault:"mongodb://localhost:27017"`
	MongoDBName    string `env:"MONGO_DBNAME" envDefault:"aora"`
	PostgresURL    string `env:"POSTGRES_URL"`
	DocumentEngine string `env:"DOCUMENT_ENGINE" envDefault:"mongo"`
	RedisURL       string `env:"REDIS_URL"`
	BrokerURL      string `env:"BROKER_URL"`

	SessionSecret string        `env:"SESSION_SECRET" envDefault:"dev-secret"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"720h"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	LogFile   string `env:"LOG_FILE"`

	BackendEndpoint string        `env:"BACKEND_ENDPOINT" envDefault:"http://localhost:8080"`
	BackendProject  string        `env:"BACKEND_PROJECT" envDefault:"aora"`
	PostsCollection string        `env:"POSTS_COLLECTION" envDefault:"videos"`
	MediaBucket     string        `env:"MEDIA_BUCKET" envDefault:"media"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	ClientEmail     string        `env:"CLIENT_EMAIL"`
	ClientPassword  string        `env:"CLIENT_PASSWORD"`
}

// Load reads the optional env files and then the process environment. Variables already set win.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.AppMode {
	case ModeServer, ModeWorker:
	case ModeClient:
		if c.ClientEmail == "" || c.ClientPassword == "" {
			return fmt.Errorf("CLIENT_EMAIL and CLIENT_PASSWORD are required in client mode")
		}
		return nil
	default:
		return fmt.Errorf("unknown APP_MODE %q", c.AppMode)
	}
	switch c.DocumentEngine {
	case EngineMongo, EngineMemory:
	case EnginePostgres:
		if c.PostgresURL == "" {
			return fmt.Errorf("POSTGRES_URL is required for the postgres engine")
		}
	default:
		return fmt.Errorf("unknown DOCUMENT_ENGINE %q", c.DocumentEngine)
	}
	if c.AppMode == ModeWorker && c.BrokerURL == "" {
		return fmt.Errorf("BROKER_URL is required in worker mode")
	}
	return nil
}
