package specialist

import (
	"time"

	"frontdesk-workers/internal/common/config"
	"frontdesk-workers/internal/intent"
)

type Config struct {
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
}

// LoadConfig reads the job timeout for h from workers.<task-type>, falling back to 60s.
func LoadConfig(cfg *config.Config, h intent.Handler) *Config {
	c := &Config{
		Timeout:     60 * time.Second,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	}
	if wc := config.GetWorkerConfig(cfg, h.TaskType()); wc.Timeout > 0 {
		c.Timeout = config.GetDuration(wc.Timeout)
	}
	return c
}
