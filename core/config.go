package core

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kat-co/vala"
	"github.com/spf13/viper"
)

type Config struct {
	Env     string
	Debug   bool
	AppName string
	Build   string

	// SecretKey signs session tokens. Required outside debug mode.
	SecretKey string

	// DataDir is where the file-backed store keeps its collections.
	// Empty means an in-memory store.
	DataDir string

	SessionExpirationDelta time.Duration

	Rollbar struct {
		Token string
	}
}

// NewConfig loads the configuration from the environment and an optional
// config/.env.<env> file (lowest precedence).
func NewConfig() (*Config, error) {
	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Ecolia")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "o2ib(h0q5-wer)enb$+57=dz&u#xh2!x)#*c2(#yg4h^$cegm")
	v.SetDefault("dataDir", "")
	v.SetDefault("sessionExpirationDelta", 12*time.Hour)
	v.SetDefault("rollbarToken", "")

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:                    env,
		Debug:                  v.GetBool("debug"),
		AppName:                v.GetString("appName"),
		Build:                  v.GetString("build"),
		SecretKey:              v.GetString("secretKey"),
		DataDir:                v.GetString("dataDir"),
		SessionExpirationDelta: v.GetDuration("sessionExpirationDelta"),
	}
	conf.Rollbar.Token = v.GetString("rollbarToken")

	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func (conf *Config) Validate() error {
	checks := []vala.Checker{
		vala.StringNotEmpty(conf.AppName, "appName"),
		vala.StringNotEmpty(conf.Env, "env"),
	}
	if !conf.Debug {
		checks = append(checks, vala.StringNotEmpty(conf.SecretKey, "secretKey"))
	}
	return vala.BeginValidation().Validate(checks...).Check()
}

func (conf *Config) IsTestMode() bool {
	return conf.Env == "TEST"
}
