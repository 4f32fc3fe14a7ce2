package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Env     string
		Version string
	} `mapstructure:"app"`

	HTTP struct {
		Addr string
	} `mapstructure:"http"`

	Postgres struct {
		DSN string
	} `mapstructure:"postgres"`

	RateLimit struct {
		Burst     int
		PerSecond int `mapstructure:"per_second"`
	} `mapstructure:"rate_limit"`
}

// Load reads the config file at path, if any, with COOPRA_* environment
// overrides (COOPRA_POSTGRES_DSN, COOPRA_HTTP_ADDR, ...).
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("COOPRA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app.env", "dev")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("rate_limit.burst", 50)
	v.SetDefault("rate_limit.per_second", 25)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, nil
}
