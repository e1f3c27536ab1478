package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_USERS is how many concurrent participants the scenario spawns
	Users int `envconfig:"E2E_USERS" default:"4"`
	// E2E_MESSAGES_PER_USER is how many submits each participant fires
	MessagesPerUser int `envconfig:"E2E_MESSAGES_PER_USER" default:"25"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
	// E2E_EVENT_BUFFER sizes the append-to-fanout channel
	EventBuffer int `envconfig:"E2E_EVENT_BUFFER" default:"256"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
