package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env                 string        `mapstructure:"ENV"`
	Port                string        `mapstructure:"PORT"`
	DatabaseURL         string        `mapstructure:"DATABASE_URL"`
	AdminKey            string        `mapstructure:"ADMIN_KEY"`
	UpstreamURL         string        `mapstructure:"UPSTREAM_URL"`
	UpstreamAPIKey      string        `mapstructure:"UPSTREAM_API_KEY"`
	BusinessUnits       string        `mapstructure:"BUSINESS_UNITS"`
	CORSAllowed         string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout      time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel            string        `mapstructure:"LOG_LEVEL"`
	AbsenceServiceType  string        `mapstructure:"ABSENCE_SERVICE_PREFIX"`
	InternalServiceType string        `mapstructure:"INTERNAL_SERVICE_PREFIX"`
	ExpectedHoursPerDay float64       `mapstructure:"EXPECTED_HOURS_PER_DAY"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("BUSINESS_UNITS", "")
	v.SetDefault("ABSENCE_SERVICE_PREFIX", "U")
	v.SetDefault("INTERNAL_SERVICE_PREFIX", "IV")
	v.SetDefault("EXPECTED_HOURS_PER_DAY", 8.0)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Units splits BUSINESS_UNITS into the configured unit list.
func (c Config) Units() []string {
	var out []string
	for _, u := range strings.Split(c.BusinessUnits, ",") {
		u = strings.TrimSpace(u)
		if u != "" {
			out = append(out, u)
		}
	}
	return out
}
