package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DatabaseConfig holds all database configuration
type DatabaseConfig struct {
	Driver         string         `yaml:"driver"`
	Schema         string         `yaml:"schema"`
	QueryTimeout   int            `yaml:"query_timeout"`
	MySQL          MySQLConfig    `yaml:"mysql"`
	PostgreSQL     PostgresConfig `yaml:"postgres"`
	SQLite         SQLiteConfig   `yaml:"sqlite"`
	ConnectionPool PoolConfig     `yaml:"connection_pool"`
}

// MySQLConfig holds MySQL specific configuration
type MySQLConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
	DBName    string `yaml:"dbname"`
	Charset   string `yaml:"charset"`
	ParseTime bool   `yaml:"parse_time"`
	Loc       string `yaml:"loc"`
}

// PostgresConfig holds PostgreSQL specific configuration
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
	TimeZone string `yaml:"timezone"`
}

// SQLiteConfig holds SQLite specific configuration
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// PoolConfig holds connection pool configuration
type PoolConfig struct {
	MaxIdleConns    int `yaml:"max_idle_conns"`
	MaxOpenConns    int `yaml:"max_open_conns"`
	ConnMaxLifetime int `yaml:"conn_max_lifetime"`
}

// ServerConfig holds HTTP listener configuration
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// StrictValidation answers malformed sensor payloads with 400 instead of 500.
	StrictValidation bool `yaml:"strict_validation"`
	// SecretKey is read from the environment but no handler uses it.
	SecretKey string `yaml:"-"`
}

// MQTTConfig holds the optional event publisher configuration.
// An empty Broker disables publishing.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Topic    string `yaml:"topic"`
	QoS      byte   `yaml:"qos"`
}

// LoggingConfig holds logging specific configuration
type LoggingConfig struct {
	LogFile      string `yaml:"log_file"`
	LogToConsole bool   `yaml:"log_to_console"`
	LogLevel     string `yaml:"log_level"`
}

// Config holds the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 5000,
		},
		Database: DatabaseConfig{
			Driver: "postgres",
			Schema: "tam_25_26",
			PostgreSQL: PostgresConfig{
				Port:     5432,
				SSLMode:  "disable",
				TimeZone: "UTC",
			},
			MySQL: MySQLConfig{
				Port:      3306,
				Charset:   "utf8mb4",
				ParseTime: true,
				Loc:       "UTC",
			},
			ConnectionPool: PoolConfig{
				MaxIdleConns:    2,
				MaxOpenConns:    10,
				ConnMaxLifetime: 300,
			},
		},
		MQTT: MQTTConfig{
			ClientID: "alarm-gateway",
			Topic:    "alarme",
		},
		Logging: LoggingConfig{
			LogFile:      "gateway.log",
			LogToConsole: true,
			LogLevel:     "info",
		},
	}
}

// Load loads configuration from the specified YAML file, then applies
// environment overrides. A missing file is not an error.
func Load(configPath string) (*Config, error) {
	// Set default config path if not provided
	if configPath == "" {
		configPath = "config.yaml"
	}

	// .env is optional, real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	config := Default()

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := config.applyEnv(os.LookupEnv); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	// Set default values for logging if not specified
	if config.Logging.LogFile == "" {
		config.Logging.LogFile = "gateway.log"
	}
	if config.Logging.LogLevel == "" {
		config.Logging.LogLevel = "info"
	}

	// Validate the configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// applyEnv overlays the process environment. DB_HOST, DB_NAME, DB_USER and
// DB_PASSWORD are applied to whichever server driver is selected.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
		return nil
	}
	flag := func(key string, dst *bool) error {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = b
		}
		return nil
	}

	str("DB_DRIVER", &c.Database.Driver)
	c.Database.Driver = strings.ToLower(c.Database.Driver)
	if v, ok := lookup("DB_SCHEMA"); ok {
		c.Database.Schema = v
	}

	switch c.Database.Driver {
	case "mysql":
		str("DB_HOST", &c.Database.MySQL.Host)
		str("DB_NAME", &c.Database.MySQL.DBName)
		str("DB_USER", &c.Database.MySQL.User)
		str("DB_PASSWORD", &c.Database.MySQL.Password)
		if err := num("DB_PORT", &c.Database.MySQL.Port); err != nil {
			return err
		}
	default:
		str("DB_HOST", &c.Database.PostgreSQL.Host)
		str("DB_NAME", &c.Database.PostgreSQL.DBName)
		str("DB_USER", &c.Database.PostgreSQL.User)
		str("DB_PASSWORD", &c.Database.PostgreSQL.Password)
		if err := num("DB_PORT", &c.Database.PostgreSQL.Port); err != nil {
			return err
		}
	}
	str("DB_SQLITE_PATH", &c.Database.SQLite.Path)

	str("SECRET_KEY", &c.Server.SecretKey)
	str("SERVER_HOST", &c.Server.Host)
	if err := num("SERVER_PORT", &c.Server.Port); err != nil {
		return err
	}
	if err := flag("STRICT_VALIDATION", &c.Server.StrictValidation); err != nil {
		return err
	}

	str("LOG_LEVEL", &c.Logging.LogLevel)
	str("LOG_FILE", &c.Logging.LogFile)
	if err := flag("LOG_TO_CONSOLE", &c.Logging.LogToConsole); err != nil {
		return err
	}

	str("MQTT_BROKER", &c.MQTT.Broker)
	str("MQTT_TOPIC", &c.MQTT.Topic)
	str("MQTT_CLIENT_ID", &c.MQTT.ClientID)
	str("MQTT_USERNAME", &c.MQTT.Username)
	str("MQTT_PASSWORD", &c.MQTT.Password)

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql":
		if c.Database.MySQL.Host == "" {
			return fmt.Errorf("mysql host is required")
		}
		if c.Database.MySQL.User == "" {
			return fmt.Errorf("mysql user is required")
		}
		if c.Database.MySQL.DBName == "" {
			return fmt.Errorf("mysql database name is required")
		}
	case "postgres":
		if c.Database.PostgreSQL.Host == "" {
			return fmt.Errorf("postgres host is required")
		}
		if c.Database.PostgreSQL.User == "" {
			return fmt.Errorf("postgres user is required")
		}
		if c.Database.PostgreSQL.DBName == "" {
			return fmt.Errorf("postgres database name is required")
		}
	case "sqlite":
		if c.Database.SQLite.Path == "" {
			return fmt.Errorf("sqlite path is required")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Database.QueryTimeout < 0 {
		return fmt.Errorf("query timeout must not be negative")
	}
	if c.MQTT.Broker != "" && c.MQTT.Topic == "" {
		return fmt.Errorf("mqtt topic is required when a broker is set")
	}
	if c.MQTT.QoS > 2 {
		return fmt.Errorf("invalid mqtt qos: %d", c.MQTT.QoS)
	}

	return nil
}

// GetDSN returns the database connection string based on the configured driver
func (c *Config) GetDSN() string {
	switch c.Database.Driver {
	case "mysql":
		mysql := c.Database.MySQL
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s",
			mysql.User, mysql.Password, mysql.Host, mysql.Port, mysql.DBName,
			mysql.Charset, mysql.ParseTime, mysql.Loc)
		return dsn
	case "postgres":
		pg := c.Database.PostgreSQL
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
			pg.Host, pg.Port, pg.User, pg.Password, pg.DBName, pg.SSLMode, pg.TimeZone)
		return dsn
	case "sqlite":
		return c.Database.SQLite.Path
	default:
		return ""
	}
}

// ListenAddr returns the host:port the HTTP server binds to
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
