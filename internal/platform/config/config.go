package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	ObjectStoreMemory = "memory"
	ObjectStoreS3     = "s3"
	ObjectStoreGCS    = "gcs"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string `envconfig:"SERVICE_NAME" default:"questboard"`
	HTTPPort    string `envconfig:"HTTP_PORT" default:"8080"`

	DBDriver    string `envconfig:"DB_DRIVER" default:"sqlite"`
	PostgresDSN string `envconfig:"POSTGRES_DSN"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"questboard.db"`

	ObjectStore    string `envconfig:"OBJECT_STORE" default:"memory"`
	ObjectPrefix   string `envconfig:"OBJECT_PREFIX" default:"submissions"`
	S3Bucket       string `envconfig:"S3_BUCKET"`
	S3Region       string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Endpoint     string `envconfig:"S3_ENDPOINT"`
	S3UsePathStyle bool   `envconfig:"S3_USE_PATH_STYLE"`
	GCSBucket      string `envconfig:"GCS_BUCKET"`

	JWTSecret string `envconfig:"JWT_SECRET"`
	JWTIssuer string `envconfig:"JWT_ISSUER" default:"questboard"`

	RedisAddr           string `envconfig:"REDIS_ADDR"`
	RedisPassword       string `envconfig:"REDIS_PASSWORD"`
	UploadRatePerMinute int    `envconfig:"UPLOAD_RATE_PER_MINUTE" default:"10"`
	UploadBurst         int    `envconfig:"UPLOAD_BURST" default:"5"`

	SubmissionQuota  int           `envconfig:"SUBMISSION_QUOTA" default:"3"`
	SubmissionWindow time.Duration `envconfig:"SUBMISSION_WINDOW" default:"24h"`
	MaxUploadBytes   int64         `envconfig:"MAX_UPLOAD_BYTES" default:"52428800"`

	TaskCatalogPath     string        `envconfig:"TASK_CATALOG"`
	OutboxInterval      time.Duration `envconfig:"OUTBOX_INTERVAL" default:"1s"`
	EnableDecisionAudit bool          `envconfig:"ENABLE_DECISION_AUDIT" default:"true"`
}

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process environment: %w", err)
	}
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	cfg.ObjectStore = strings.ToLower(strings.TrimSpace(cfg.ObjectStore))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.DBDriver {
	case DBDriverPostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return errors.New("POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
	case DBDriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	switch c.ObjectStore {
	case ObjectStoreMemory:
	case ObjectStoreS3:
		if strings.TrimSpace(c.S3Bucket) == "" {
			return errors.New("S3_BUCKET is required when OBJECT_STORE=s3")
		}
	case ObjectStoreGCS:
		if strings.TrimSpace(c.GCSBucket) == "" {
			return errors.New("GCS_BUCKET is required when OBJECT_STORE=gcs")
		}
	default:
		return fmt.Errorf("unsupported OBJECT_STORE %q", c.ObjectStore)
	}

	if c.SubmissionQuota <= 0 {
		return errors.New("SUBMISSION_QUOTA must be positive")
	}
	if c.SubmissionWindow <= 0 {
		return errors.New("SUBMISSION_WINDOW must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

// TaskSpec is one entry of a task catalog file.
type TaskSpec struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Points      int    `yaml:"points"`
}

type taskCatalog struct {
	Tasks []TaskSpec `yaml:"tasks"`
}

// LoadTaskCatalog reads a YAML file of the form
//
//	tasks:
//	  - title: Plant a tree
//	    points: 50
func LoadTaskCatalog(path string) ([]TaskSpec, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read task catalog: %w", err)
	}
	return ParseTaskCatalog(buf)
}

func ParseTaskCatalog(buf []byte) ([]TaskSpec, error) {
	var catalog taskCatalog
	if err := yaml.Unmarshal(buf, &catalog); err != nil {
		return nil, fmt.Errorf("parse task catalog: %w", err)
	}
	seen := make(map[string]struct{}, len(catalog.Tasks))
	for i, task := range catalog.Tasks {
		title := strings.TrimSpace(task.Title)
		if title == "" {
			return nil, fmt.Errorf("task catalog entry %d has no title", i)
		}
		if task.Points < 0 {
			return nil, fmt.Errorf("task %q has negative points", title)
		}
		if _, dup := seen[title]; dup {
			return nil, fmt.Errorf("task %q is listed twice", title)
		}
		seen[title] = struct{}{}
		catalog.Tasks[i].Title = title
	}
	return catalog.Tasks, nil
}
