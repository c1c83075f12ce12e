package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	AppPort string

	DBDriver      string
	DBLogLevel    string
	DBAutoMigrate bool

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	PostgresHost    string
	PostgresPort    string
	PostgresDB      string
	PostgresUser    string
	PostgresPass    string
	PostgresSSLMode string

	SQLitePath string

	RedisAddr     string
	RedisDB       int
	RedisPassword string

	IdempTTLSecs int
	JWTSecret    string

	LogLevel  string
	LogFormat string

	KafkaBrokers []string
	KafkaTopic   string

	EscalationIntervalSecs int
	EscalationLockTTLSecs  int
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func Load() *Config {
	c := &Config{
		AppPort: getenv("APP_PORT", "8080"),

		DBDriver:      strings.ToLower(getenv("DB_DRIVER", DriverMySQL)),
		DBLogLevel:    getenv("DB_LOG_LEVEL", "warn"),
		DBAutoMigrate: getenv("DB_AUTO_MIGRATE", "false") == "true",

		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "procurement"),
		MySQLUser: getenv("MYSQL_USER", "procurement"),
		MySQLPass: getenv("MYSQL_PASS", "procurement"),

		PostgresHost:    getenv("POSTGRES_HOST", "postgres"),
		PostgresPort:    getenv("POSTGRES_PORT", "5432"),
		PostgresDB:      getenv("POSTGRES_DB", "procurement"),
		PostgresUser:    getenv("POSTGRES_USER", "procurement"),
		PostgresPass:    getenv("POSTGRES_PASS", "procurement"),
		PostgresSSLMode: getenv("POSTGRES_SSLMODE", "disable"),

		SQLitePath: getenv("SQLITE_PATH", "procurement.db"),

		RedisAddr:    getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:      getint("REDIS_DB", 0),
		IdempTTLSecs: getint("IDEMPOTENCY_TTL_SECONDS", 300),
		JWTSecret:    os.Getenv("JWT_SECRET"),

		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "json"),

		KafkaTopic: getenv("KAFKA_TOPIC", "procurement.approvals"),

		EscalationIntervalSecs: getint("ESCALATION_INTERVAL_SECONDS", 300),
		EscalationLockTTLSecs:  getint("ESCALATION_LOCK_TTL_SECONDS", 120),
	}
	for _, b := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			c.KafkaBrokers = append(c.KafkaBrokers, b)
		}
	}
	return c
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.DBDriver {
	case DriverMySQL:
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case DriverPostgres:
		if c.PostgresHost == "" || c.PostgresDB == "" || c.PostgresUser == "" {
			return errors.New("missing Postgres config (POSTGRES_HOST/DB/USER)")
		}
		if _, err := net.LookupPort("tcp", c.PostgresPort); err != nil {
			return fmt.Errorf("invalid POSTGRES_PORT %q: %w", c.PostgresPort, err)
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.JWTSecret == "" {
		return errors.New("missing JWT_SECRET")
	}
	if c.EscalationIntervalSecs <= 0 {
		return fmt.Errorf("invalid ESCALATION_INTERVAL_SECONDS %d", c.EscalationIntervalSecs)
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.PostgresHost, c.PostgresUser, c.PostgresPass, c.PostgresDB, c.PostgresPort, c.PostgresSSLMode)
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	switch c.DBDriver {
	case DriverPostgres:
		return c.PostgresDSN()
	case DriverSQLite:
		return c.SQLitePath
	default:
		return c.MySQLDSN()
	}
}
