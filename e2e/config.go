package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_GATEWAY_URL points at a running gateway, the suites skip when empty
	GatewayURL string `envconfig:"E2E_GATEWAY_URL"`
	Token      string `envconfig:"E2E_TOKEN"`
	APIKey     string `envconfig:"E2E_API_KEY"`
	// E2E_TEST_NUMBER receives the messages sent by the scenarios
	TestNumber string `envconfig:"E2E_TEST_NUMBER"`
	// E2E_DEBUG_JSON allows dumping full HTTP request/response bodies
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
