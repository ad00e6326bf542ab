package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration in precedence order: flags are bound by the
// caller, then environment variables (including a .env file), then the
// config file, then built-in defaults. cfgFile may be empty, in which case
// ./config.yaml is used when present.
func Load(cfgFile string) (*Config, error) {
	// Make .env values visible before viper reads the environment. A
	// missing .env is not an error.
	_ = godotenv.Load()

	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("grantfinder")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvAliases(v)
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A named config file must exist; the default search path is
		// optional.
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// bindEnvAliases maps conventional environment variable names onto config
// keys, so credentials never have to live in the config file.
func bindEnvAliases(v *viper.Viper) {
	aliases := map[string][]string{
		"search.api_key":    {"GOOGLE_API_KEY"},
		"search.engine_id":  {"GOOGLE_CSE_ID"},
		"database.host":     {"POSTGRES_HOST"},
		"database.port":     {"POSTGRES_PORT"},
		"database.user":     {"POSTGRES_USER"},
		"database.password": {"POSTGRES_PASSWORD"},
		"database.dbname":   {"POSTGRES_DB"},
		"logger.level":      {"LOG_LEVEL"},
	}

	for key, envs := range aliases {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}
}
