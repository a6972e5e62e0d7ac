package core

import (
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host                       string
		Address                    string
		DebugAddress               string
		ShutdownTimeout            time.Duration
		JWTExpirationDelta         time.Duration
		JWTRememberExpirationDelta time.Duration
		AllowedOrigins             []string
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	BackendConfig struct {
		BaseURL string
		Timeout time.Duration
	}

	Config struct {
		Debug            bool
		TestMode         bool
		Env              string
		Build            string
		AppName          string
		SecretKey        string
		WorkDir          string
		FrontendBaseURL  string
		DefaultFromEmail mail.Address
		RollbarToken     string
		SendgridAPIKey   string

		Server   ServerConfig
		Database DatabaseConfig
		Backend  BackendConfig
	}
)

func (dbc DatabaseConfig) Address() string {
	return net.JoinHostPort(dbc.Host, strconv.Itoa(dbc.Port))
}

// NewConfig loads the app configuration from (in order of precedence):
// env vars prefixed with the current env (eg. DEV_SECRET_KEY), config/.env.<env> and defaults.
func NewConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("test_mode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "getting working dir")
	}
	v.SetDefault("work_dir", wd)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}
	v.AutomaticEnv()

	conf := &Config{
		Debug:           v.GetBool("debug"),
		TestMode:        v.GetBool("test_mode"),
		Env:             env,
		Build:           v.GetString("build"),
		AppName:         v.GetString("app_name"),
		SecretKey:       v.GetString("secret_key"),
		WorkDir:         v.GetString("work_dir"),
		FrontendBaseURL: v.GetString("frontend_base_url"),
		DefaultFromEmail: mail.Address{
			Name:    v.GetString("app_name"),
			Address: v.GetString("default_from_email"),
		},
		RollbarToken:   v.GetString("rollbar_token"),
		SendgridAPIKey: v.GetString("sendgrid_api_key"),
		Server: ServerConfig{
			Host:                       v.GetString("server.host"),
			Address:                    v.GetString("server.address"),
			DebugAddress:               v.GetString("server.debug_address"),
			ShutdownTimeout:            v.GetDuration("server.shutdown_timeout"),
			JWTExpirationDelta:         v.GetDuration("server.jwt_expiration_delta"),
			JWTRememberExpirationDelta: v.GetDuration("server.jwt_remember_expiration_delta"),
			AllowedOrigins:             v.GetStringSlice("server.allowed_origins"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetInt("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.admin_user"),
			AdminPassword: v.GetString("database.admin_password"),
			DisableTLS:    v.GetBool("database.disable_tls"),
		},
		Backend: BackendConfig{
			BaseURL: v.GetString("backend.base_url"),
			Timeout: v.GetDuration("backend.timeout"),
		},
	}
	if conf.Backend.BaseURL == "" {
		return nil, errors.New("backend.base_url is required")
	}
	return conf, nil
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)

	v.SetDefault("debug", true)
	v.SetDefault("test_mode", false)
	v.SetDefault("build", "develop")
	v.SetDefault("app_name", "Mrejesho")
	v.SetDefault("secret_key", "s3cr3t-k3y-f0r-l0cal-d3v-0nly!!")
	v.SetDefault("frontend_base_url", "http://localhost:5173")
	v.SetDefault("default_from_email", "noreply@localhost")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debug_address", ":4000")
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.jwt_expiration_delta", 12*time.Hour)
	v.SetDefault("server.jwt_remember_expiration_delta", 30*24*time.Hour)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "mrejesho")
	v.SetDefault("database.user", "mrejesho")
	v.SetDefault("database.password", "")
	v.SetDefault("database.admin_user", "postgres")
	v.SetDefault("database.admin_password", "")
	v.SetDefault("database.disable_tls", true)

	v.SetDefault("backend.base_url", "http://localhost:7056/api/")
	v.SetDefault("backend.timeout", 15*time.Second)
}
