package upstream

import (
	"time"

	"github.com/medwatch/slot-monitor/internal/domain/providers"
	"github.com/medwatch/slot-monitor/internal/infrastructure/clients/emias"
	"github.com/medwatch/slot-monitor/pkg/config"
)

// NewScheduleProvider builds the schedule provider chain from configuration:
// a mock for dev, or the real EMIAS adapter, optionally wrapped in a cache.
func NewScheduleProvider(cfg *config.UpstreamConfig, cache providers.CacheProvider) providers.ScheduleProvider {
	if cfg.UseMock {
		return NewMockAdapter()
	}

	client := emias.NewClient(cfg.BaseURL, cfg.Days, time.Duration(cfg.TimeoutSeconds)*time.Second)
	provider := NewEmiasAdapter(client)

	return NewCachedProvider(provider, cache, cfg.CacheTTL)
}
