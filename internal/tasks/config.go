package tasks

import (
	"time"

	"github.com/mrlokans/weddingplanner/internal/config"
)

// Config sizes the worker pool. Retries, timeouts and retention are set
// per queue by each task's backlite.QueueConfig.
type Config struct {
	Workers         int           // concurrent workers
	ReleaseAfter    time.Duration // a claimed task not finished by then is handed to another worker
	CleanupInterval time.Duration // how often finished tasks past their retention are purged
}

func DefaultConfig() Config {
	return Config{
		Workers:         2,
		ReleaseAfter:    15 * time.Minute,
		CleanupInterval: time.Hour,
	}
}

// FromAppConfig fills the unset application settings from DefaultConfig.
func FromAppConfig(cfg config.Tasks) Config {
	def := DefaultConfig()
	return Config{
		Workers:         orDefault(cfg.Workers, def.Workers),
		ReleaseAfter:    orDefault(cfg.ReleaseAfter, def.ReleaseAfter),
		CleanupInterval: orDefault(cfg.CleanupInterval, def.CleanupInterval),
	}
}
