package config

import (
	"strings"

	"github.com/spf13/viper"
)

// AgentIdentity is the display identity of the automated actor. It is
// configuration threaded into the executor, never package-level state.
type AgentIdentity struct {
	Name  string
	Color string
}

type Config struct {
	Port          string
	GinMode       string
	LogLevel      string
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	RedisHost     string
	RedisPort     string
	SessionSecret string
	Agent         AgentIdentity
}

func Load() *Config {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_USER", "flowboard")
	v.SetDefault("DB_PASSWORD", "flowboard")
	v.SetDefault("DB_NAME", "flowboard")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("SESSION_SECRET", "default-secret-key-change-me")
	v.SetDefault("AGENT_NAME", "Flowboard Agent")
	v.SetDefault("AGENT_COLOR", "#7c5cff")

	return &Config{
		Port:          v.GetString("PORT"),
		GinMode:       v.GetString("GIN_MODE"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		DBDriver:      v.GetString("DB_DRIVER"),
		DBHost:        v.GetString("DB_HOST"),
		DBPort:        v.GetString("DB_PORT"),
		DBUser:        v.GetString("DB_USER"),
		DBPassword:    v.GetString("DB_PASSWORD"),
		DBName:        v.GetString("DB_NAME"),
		RedisHost:     v.GetString("REDIS_HOST"),
		RedisPort:     v.GetString("REDIS_PORT"),
		SessionSecret: v.GetString("SESSION_SECRET"),
		Agent: AgentIdentity{
			Name:  v.GetString("AGENT_NAME"),
			Color: v.GetString("AGENT_COLOR"),
		},
	}
}
