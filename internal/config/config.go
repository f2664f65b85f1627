package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

const envPrefix = "BOOKING"

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

const defaultSQLiteDSN = "file:booking.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// Config captures the process configuration for the booking API. It is built
// once at startup and handed to every component that needs it.
type Config struct {
	HTTPPort   int
	JWTSecret  string
	BcryptCost int
	CORSOrigin string
	LogLevel   string
	SeedRooms  []string
	Database   DatabaseConfig
	Redis      RedisConfig
}

// DatabaseConfig selects the credential store backend.
type DatabaseConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig points at the optional token revocation store. An empty Addr
// disables revocation.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a Redis address was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.Addr) != ""
}

// Load reads configuration from defaults, an optional config file named by
// BOOKING_CONFIG_FILE, and BOOKING_* environment variables, in that order of
// precedence. Every missing or malformed key is reported in a single error.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http_port", "8085")
	v.SetDefault("db_driver", DriverSQLite)
	v.SetDefault("bcrypt_cost", strconv.Itoa(bcrypt.DefaultCost))
	v.SetDefault("cors_origin", "http://localhost:4200")
	v.SetDefault("log_level", "info")
	v.SetDefault("redis_db", "0")
	v.SetDefault("db_max_open_conns", "10")
	v.SetDefault("db_max_idle_conns", "5")
	v.SetDefault("db_conn_max_lifetime", "30m")

	if file := strings.TrimSpace(v.GetString("config_file")); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		CORSOrigin: strings.TrimSpace(v.GetString("cors_origin")),
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(v.GetString("redis_addr")),
			Password: v.GetString("redis_password"),
		},
	}

	missing := make([]string, 0, 2)
	invalid := make([]string, 0, 4)
	key := func(name string) string { return envPrefix + "_" + strings.ToUpper(name) }

	if port, err := strconv.Atoi(strings.TrimSpace(v.GetString("http_port"))); err != nil || port <= 0 || port > 65535 {
		invalid = append(invalid, key("http_port"))
	} else {
		cfg.HTTPPort = port
	}

	if secret := strings.TrimSpace(v.GetString("jwt_secret")); secret == "" {
		missing = append(missing, key("jwt_secret"))
	} else {
		cfg.JWTSecret = secret
	}

	if cost, err := strconv.Atoi(strings.TrimSpace(v.GetString("bcrypt_cost"))); err != nil || cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		invalid = append(invalid, key("bcrypt_cost"))
	} else {
		cfg.BcryptCost = cost
	}

	switch level := strings.ToLower(strings.TrimSpace(v.GetString("log_level"))); level {
	case "debug", "info", "warn", "error":
		cfg.LogLevel = level
	default:
		invalid = append(invalid, key("log_level"))
	}

	if db, err := strconv.Atoi(strings.TrimSpace(v.GetString("redis_db"))); err != nil || db < 0 {
		invalid = append(invalid, key("redis_db"))
	} else {
		cfg.Redis.DB = db
	}

	driver := strings.ToLower(strings.TrimSpace(v.GetString("db_driver")))
	switch driver {
	case DriverSQLite, DriverMySQL, DriverPostgres:
		cfg.Database.Driver = driver
	default:
		invalid = append(invalid, key("db_driver"))
	}

	cfg.Database.DSN = strings.TrimSpace(v.GetString("db_dsn"))
	if cfg.Database.DSN == "" {
		if driver == DriverSQLite {
			cfg.Database.DSN = defaultSQLiteDSN
		} else {
			missing = append(missing, key("db_dsn"))
		}
	}

	if n, err := strconv.Atoi(strings.TrimSpace(v.GetString("db_max_open_conns"))); err != nil || n <= 0 {
		invalid = append(invalid, key("db_max_open_conns"))
	} else {
		cfg.Database.MaxOpenConns = n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(v.GetString("db_max_idle_conns"))); err != nil || n < 0 {
		invalid = append(invalid, key("db_max_idle_conns"))
	} else {
		cfg.Database.MaxIdleConns = n
	}
	if d, err := time.ParseDuration(strings.TrimSpace(v.GetString("db_conn_max_lifetime"))); err != nil || d < 0 {
		invalid = append(invalid, key("db_conn_max_lifetime"))
	} else {
		cfg.Database.ConnMaxLifetime = d
	}

	cfg.SeedRooms = splitList(v.GetString("seed_rooms"))

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", ErrMissing, strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("%w: %s", ErrInvalid, strings.Join(invalid, ", "))
	}

	return cfg, nil
}

var (
	// ErrMissing reports required configuration keys without a value.
	ErrMissing = errors.New("required configuration is missing")
	// ErrInvalid reports configuration keys whose value could not be parsed.
	ErrInvalid = errors.New("configuration values are invalid")
)

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
