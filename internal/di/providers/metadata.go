package providers

import (
	"github.com/samber/do/v2"

	"github.com/mailib/mailib-server/internal/cache"
	"github.com/mailib/mailib-server/internal/config"
	"github.com/mailib/mailib-server/internal/logger"
	"github.com/mailib/mailib-server/internal/metadata/fantlab"
	"github.com/mailib/mailib-server/internal/service"
)

// CacheHandle wraps the Badger payload cache with shutdown capability.
type CacheHandle struct {
	*cache.Cache
}

// Shutdown implements do.Shutdownable.
func (h *CacheHandle) Shutdown() error {
	return h.Close()
}

// ProvideCache provides the upstream payload cache.
func ProvideCache(i do.Injector) (*CacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	c, err := cache.Open(cfg.Storage.CachePath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Upstream cache opened", "path", cfg.Storage.CachePath, "ttl", cfg.Fantlab.CacheTTL)

	return &CacheHandle{Cache: c}, nil
}

// FantlabClientHandle wraps the Fantlab client with shutdown capability.
type FantlabClientHandle struct {
	*fantlab.Client
}

// Shutdown implements do.Shutdownable.
func (h *FantlabClientHandle) Shutdown() error {
	h.Client.Close()
	return nil
}

// ProvideFantlabClient provides the rate-limited Fantlab API client.
func ProvideFantlabClient(i do.Injector) (*FantlabClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := fantlab.New(fantlab.Config{
		BaseURL: cfg.Fantlab.BaseURL,
		RPS:     cfg.Fantlab.RPS,
		Burst:   cfg.Fantlab.Burst,
		Timeout: cfg.Fantlab.Timeout,
	}, log.Logger)

	log.Info("Fantlab client initialized",
		"base_url", cfg.Fantlab.BaseURL,
		"rps", cfg.Fantlab.RPS,
		"burst", cfg.Fantlab.Burst,
	)

	return &FantlabClientHandle{Client: client}, nil
}

// ProvideMetadataService provides the cached upstream facade used by every
// service that talks to Fantlab.
func ProvideMetadataService(i do.Injector) (*service.MetadataService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	clientHandle := do.MustInvoke[*FantlabClientHandle](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)

	return service.NewMetadataService(clientHandle.Client, cacheHandle.Cache, cfg.Fantlab.CacheTTL, log.Logger), nil
}
