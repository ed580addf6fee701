package classifyintent

import (
	"time"

	"frontdesk-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	Mode    string
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{
		Timeout: 30 * time.Second,
		Mode:    cfg.Classifier.Mode,
	}
	if cfg.LLM.Timeout > 0 {
		c.Timeout = config.GetDuration(cfg.LLM.Timeout)
	}
	return c
}
