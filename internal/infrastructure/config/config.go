package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Data     DataConfig     `mapstructure:"data"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Quiz     QuizConfig     `mapstructure:"quiz"`
}

// DataConfig locates the flat-file dataset.
type DataConfig struct {
	Dir         string `mapstructure:"dir"`
	VocabFile   string `mapstructure:"vocab_file"`
	LabelsFile  string `mapstructure:"labels_file"`
	MappingFile string `mapstructure:"mapping_file"`
}

// StorageConfig selects the vocabulary store backend.
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
}

// DatabaseConfig holds SQL store configuration.
type DatabaseConfig struct {
	DSN    string `mapstructure:"dsn"`
	LogSQL bool   `mapstructure:"log_sql"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// QuizConfig holds quiz defaults.
type QuizConfig struct {
	Type           string `mapstructure:"type"`
	NumQuestions   int    `mapstructure:"num_questions"`
	SkipIncomplete bool   `mapstructure:"skip_incomplete"`
	Seed           uint64 `mapstructure:"seed"`
}

const (
	DriverCSV      = "csv"
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"

	envPrefix = "VOCABULEARN"
)

// ConfigFileKey is the viper key holding an explicit config file path.
const ConfigFileKey = "config"

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	if path := viper.GetString(ConfigFileKey); path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName(".env")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}
	viper.SetConfigType("env")

	setDefaults()

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("data.dir", "data")
	viper.SetDefault("data.vocab_file", "vocab.csv")
	viper.SetDefault("data.labels_file", "labels.csv")
	viper.SetDefault("data.mapping_file", "item_labels.csv")

	viper.SetDefault("storage.driver", DriverCSV)

	viper.SetDefault("database.dsn", "file:vocabulearn.db?_fk=1")
	viper.SetDefault("database.log_sql", false)

	viper.SetDefault("log.level", "warn")
	viper.SetDefault("log.format", "text")

	viper.SetDefault("quiz.type", "both")
	viper.SetDefault("quiz.num_questions", 10)
	viper.SetDefault("quiz.skip_incomplete", false)
	viper.SetDefault("quiz.seed", 0)
}

func (c *Config) validate() error {
	switch c.DatabaseDriver() {
	case DriverCSV, DriverSQLite, DriverPostgres, DriverPgx:
	default:
		return fmt.Errorf("unsupported storage driver %q", c.Storage.Driver)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format %q", c.Log.Format)
	}
	return nil
}

// DatabaseDriver returns the normalized storage driver name.
func (c *Config) DatabaseDriver() string {
	return strings.ToLower(strings.TrimSpace(c.Storage.Driver))
}

// DatabaseURL returns the SQL store DSN.
func (c *Config) DatabaseURL() string {
	return strings.TrimSpace(c.Database.DSN)
}

// VocabPath, LabelsPath and MappingPath resolve the flat files under Data.Dir.
func (c *Config) VocabPath() string   { return c.dataPath(c.Data.VocabFile) }
func (c *Config) LabelsPath() string  { return c.dataPath(c.Data.LabelsFile) }
func (c *Config) MappingPath() string { return c.dataPath(c.Data.MappingFile) }

func (c *Config) dataPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Data.Dir, name)
}
