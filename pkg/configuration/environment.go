package configuration

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const Production = "production"

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		panic(err)
	}
	return c
})

// Use returns the process-wide configuration, loading it on first use.
func Use() *Configuration {
	return singleton()
}

// LoadEnv loads the existing env files into the process environment and
// returns how many files were found.
func LoadEnv(envFiles []string) (int, error) {
	existingFiles := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existingFiles = append(existingFiles, file)
		}
	}

	if len(existingFiles) == 0 {
		return 0, nil
	}

	return len(existingFiles), godotenv.Load(existingFiles...)
}

type DatabaseOptions struct {
	Opts     string `env:"-"`
	Name     string `env:"DB_NAME" envDefault:"lumenwiki"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
}

func (d *DatabaseOptions) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Name, d.Password,
	)
}

type EventStoreOptions struct {
	// QueueSize bounds the store task queue; submitters block when it is full.
	QueueSize int `env:"EVENT_STORE_QUEUE_SIZE" envDefault:"1000"`
	// NotifyEach publishes one observation per task inside the drain batch.
	NotifyEach bool `env:"EVENT_STORE_NOTIFY_EACH" envDefault:"false"`
	// NotifyAll defers observations until the drain batch completes. Ignored
	// when NotifyEach is set.
	NotifyAll bool   `env:"EVENT_STORE_NOTIFY_ALL" envDefault:"true"`
	Backend   string `env:"EVENT_STORE_BACKEND" envDefault:"memory"` // memory or postgres
}

func (o *EventStoreOptions) Validate() error {
	if o.QueueSize <= 0 {
		return fmt.Errorf("event store QueueSize must be positive, got %d", o.QueueSize)
	}
	if o.Backend != "memory" && o.Backend != "postgres" {
		return fmt.Errorf("event store Backend must be 'memory' or 'postgres', got '%s'", o.Backend)
	}
	return nil
}

type MentionsOptions struct {
	PoolSize    int           `env:"MENTIONS_POOL_SIZE" envDefault:"4"`
	QueueSize   int           `env:"MENTIONS_QUEUE_SIZE" envDefault:"1000"`
	PollTimeout time.Duration `env:"MENTIONS_POLL_TIMEOUT" envDefault:"10s"`
	Queue       string        `env:"MENTIONS_QUEUE" envDefault:"memory"` // memory or redis
	RedisURL    string        `env:"MENTIONS_REDIS_URL"`
}

func (o *MentionsOptions) Validate() error {
	if o.PoolSize <= 0 {
		return fmt.Errorf("mentions PoolSize must be positive, got %d", o.PoolSize)
	}
	if o.QueueSize <= 0 {
		return fmt.Errorf("mentions QueueSize must be positive, got %d", o.QueueSize)
	}
	if o.PollTimeout <= 0 {
		return fmt.Errorf("mentions PollTimeout must be positive, got %s", o.PollTimeout)
	}
	if o.Queue != "memory" && o.Queue != "redis" {
		return fmt.Errorf("mentions Queue must be 'memory' or 'redis', got '%s'", o.Queue)
	}
	if o.Queue == "redis" && o.RedisURL == "" {
		return fmt.Errorf("mentions RedisURL is required when Queue is 'redis'")
	}
	return nil
}

type PrometheusOptions struct {
	Enabled bool   `env:"PROMETHEUS_METRICS_ENABLED" envDefault:"false"`
	Path    string `env:"PROMETHEUS_METRICS_PATH" envDefault:"/debug/prometheus"`
}

type Configuration struct {
	Database   DatabaseOptions
	EventStore EventStoreOptions
	Mentions   MentionsOptions
	Prometheus PrometheusOptions

	ServerPort       int    `env:"PORT" envDefault:"3200"`
	GoAppEnvironment string `env:"GO_APP_ENV" envDefault:"development"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"error"`

	logger *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.ErrorLevel
	}
}

func (c *Configuration) load(envFiles []string) error {
	if _, err := LoadEnv(envFiles); err != nil {
		return err
	}

	if err := env.Parse(c); err != nil {
		return err
	}

	if err := c.EventStore.Validate(); err != nil {
		return err
	}
	if err := c.Mentions.Validate(); err != nil {
		return err
	}

	c.logger = logrus.New()
	c.logger.SetLevel(c.LogrusLogLevel())
	c.logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	return nil
}
