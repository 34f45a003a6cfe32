package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime configuration for the service. One value is built
// at startup and passed into constructors; nothing reads the environment
// after Load returns.
type Config struct {
	Port   string `env:"PORT" envDefault:"8080"`
	DBPath string `env:"DB_PATH" envDefault:"./greentrace.db"`

	// DBMaxConns caps the shared connection pool, matching the original
	// deployment's limit of 10.
	DBMaxConns int `env:"DB_MAX_CONNS" envDefault:"10"`

	JWTSecret  string        `env:"JWT_SECRET" envDefault:"dev-secret"`
	TokenTTL   time.Duration `env:"TOKEN_TTL" envDefault:"720h"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"10"`

	// DevMode exposes internal error detail in 500 responses. Never enable
	// in production.
	DevMode bool `env:"DEV_MODE" envDefault:"false"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// ModelPath points at the serialized classifier weights. Empty means the
	// verification engine runs heuristic-only.
	ModelPath     string        `env:"MODEL_PATH" envDefault:""`
	VerifyTimeout time.Duration `env:"VERIFY_TIMEOUT" envDefault:"10s"`

	MigrationsDir string `env:"MIGRATIONS_DIR" envDefault:"./database/migrations"`
}

// Load parses the configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("error parsing env config: %w", err)
	}
	return cfg, nil
}
