package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
	CORSOrigins     []string
}

type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name  string
	Env   string
	HTTP  HTTP
	Admin AdminHTTP
}

type Log struct {
	Level string
	JSON  bool
	File  string // empty = stdout only
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
	CookieName        string
	CookieSecure      bool
}

type Redis struct {
	Addr        string `mapstructure:"addr"`
	Password    string `mapstructure:"password"`
	DB          int    `mapstructure:"db"`
	StatsTTLSec int    `mapstructure:"statsttlsec"`
}

// DB is the hosted store. DSN is the client-scoped connection used by the user API;
// ServiceDSN is the privileged connection the admin binary uses.
type DB struct {
	Driver             string
	DSN                string
	ServiceDSN         string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

// Bootstrap creates (or promotes) an owner account at admin startup when both are set.
type Bootstrap struct {
	OwnerEmail    string
	OwnerPassword string
}

type Config struct {
	App       App
	Log       Log
	JWT       JWT
	DB        DB
	Redis     Redis `mapstructure:"redis"`
	Bootstrap Bootstrap
}

func defaults(v *viper.Viper) {
	v.SetDefault("app.name", "usdrop-admin")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readtimeoutsec", 5)
	v.SetDefault("app.http.writetimeoutsec", 10)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("app.http.corsorigins", []string{"http://localhost:3000"})
	v.SetDefault("app.admin.host", "0.0.0.0")
	v.SetDefault("app.admin.port", 8081)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file", "")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "usdrop-admin")
	v.SetDefault("jwt.accesstokenttlmin", 60)
	v.SetDefault("jwt.cookiename", "session")
	v.SetDefault("jwt.cookiesecure", false)
	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.servicedsn", "")
	v.SetDefault("db.username", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.maxopenconns", 20)
	v.SetDefault("db.maxidleconns", 5)
	v.SetDefault("db.connmaxlifetimemin", 30)
	v.SetDefault("db.automigrate", false)
	v.SetDefault("db.loglevel", "warn")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.statsttlsec", 10)
	v.SetDefault("bootstrap.owneremail", "")
	v.SetDefault("bootstrap.ownerpassword", "")
}

// Load reads the YAML at path (if present) and overlays APP_* environment variables,
// e.g. APP_DB_DSN, APP_JWT_SECRET.
func Load(path string) (*Config, error) {
	v := viper.New()
	defaults(v)
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Validate rejects configs missing credentials. Nothing secret has a built-in default.
func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret is required"))
	}
	switch c.DB.Driver {
	case "memory":
	case "postgres", "mysql":
		if c.DB.DSN == "" {
			errs = append(errs, errors.New("db.dsn is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported db.driver %q", c.DB.Driver))
	}
	if (c.Bootstrap.OwnerEmail == "") != (c.Bootstrap.OwnerPassword == "") {
		errs = append(errs, errors.New("bootstrap.owneremail and bootstrap.ownerpassword must be set together"))
	}
	if c.JWT.AccessTokenTTLMin <= 0 {
		errs = append(errs, errors.New("jwt.accesstokenttlmin must be positive"))
	}
	return errors.Join(errs...)
}

// ServiceDSN falls back to DSN when no separate privileged connection is configured.
func (c *Config) ServiceDSN() string {
	if c.DB.ServiceDSN != "" {
		return c.DB.ServiceDSN
	}
	return c.DB.DSN
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWT.AccessTokenTTLMin) * time.Minute
}

func (c *Config) StatsTTL() time.Duration {
	return time.Duration(c.Redis.StatsTTLSec) * time.Second
}
