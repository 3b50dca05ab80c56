package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"

	EnvDevelopment = "development"
	EnvProduction  = "production"

	// devSecretKey só é aceita com APP_ENV=development
	devSecretKey = "northpalm-dev-secret"
)

var ErrMissingSecretKey = errors.New("SECRET_KEY não configurada")

type Config struct {
	App            App            `mapstructure:",squash"`
	Server         Server         `mapstructure:",squash"`
	Database       Database       `mapstructure:",squash"`
	Auth           Auth           `mapstructure:",squash"`
	Cors           Cors           `mapstructure:",squash"`
	SessionCleanup SessionCleanup `mapstructure:",squash"`
	Dashboard      Dashboard      `mapstructure:",squash"`
	SecretKey      string         `mapstructure:"secret_key"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Database struct {
	DSN         string `mapstructure:"-"`
	Driver      string `mapstructure:"database_driver"`
	Password    string `mapstructure:"database_password"`
	URL         string `mapstructure:"database_url"`
	User        string `mapstructure:"database_user"`
	AutoMigrate bool   `mapstructure:"database_auto_migrate"`
}

type App struct {
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`
}

type Auth struct {
	TokenTTL     time.Duration `mapstructure:"auth_token_ttl"`
	CookieName   string        `mapstructure:"auth_cookie_name"`
	CookieSecure bool          `mapstructure:"auth_cookie_secure"`
}

type Cors struct {
	AllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

type SessionCleanup struct {
	CronSchedule string `mapstructure:"session_cleanup_cron"`
	Enabled      bool   `mapstructure:"session_cleanup_enabled"`
}

type Dashboard struct {
	DefaultDays int `mapstructure:"dashboard_default_days"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("DATABASE_DRIVER", DriverPostgres)
	viper.SetDefault("DATABASE_URL", "localhost:5432/northpalm_sales?sslmode=disable")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")
	viper.SetDefault("DATABASE_AUTO_MIGRATE", true)

	viper.SetDefault("APP_ENV", EnvProduction)
	viper.SetDefault("SECRET_KEY", "")

	viper.SetDefault("AUTH_TOKEN_TTL", "168h") // 7 dias
	viper.SetDefault("AUTH_COOKIE_NAME", "auth_token")
	viper.SetDefault("AUTH_COOKIE_SECURE", true)

	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	viper.SetDefault("SESSION_CLEANUP_CRON", "0 4 * * *") // Todos os dias às 4h da manhã
	viper.SetDefault("SESSION_CLEANUP_ENABLED", false)

	viper.SetDefault("DASHBOARD_DEFAULT_DAYS", 30)

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	dsn, err := BuildDSN(config.Database)
	if err != nil {
		return nil, err
	}
	config.Database.DSN = dsn

	return config, nil
}

// ResolveSecretKey exige SECRET_KEY fora de desenvolvimento. Em desenvolvimento usa uma chave local.
func (c *Config) ResolveSecretKey() error {
	if c.SecretKey != "" {
		return nil
	}

	if c.App.Env != EnvDevelopment {
		return fmt.Errorf("%w (APP_ENV=%s)", ErrMissingSecretKey, c.App.Env)
	}

	logrus.Warn("SECRET_KEY vazia, usando chave de desenvolvimento")
	c.SecretKey = devSecretKey
	return nil
}

// BuildDSN monta a string de conexão de acordo com o driver configurado.
// Para sqlite3 a URL é o caminho do arquivo (ou ":memory:").
func BuildDSN(db Database) (string, error) {
	switch db.Driver {
	case DriverPostgres:
		return fmt.Sprintf(
			"%s://%s:%s@%s",
			db.Driver,
			db.User,
			db.Password,
			db.URL,
		), nil
	case DriverSQLite:
		return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", db.URL), nil
	default:
		return "", fmt.Errorf("driver de banco de dados não suportado: %q", db.Driver)
	}
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		logrus.Debug("Tentando carregar .env de:", location)
		if err := godotenv.Load(location); err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Warn("Não foi possível carregar o arquivo .env de nenhuma localização conhecida")
}
