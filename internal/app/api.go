package app

import (
	"nhgate/internal/cache"
	"nhgate/internal/clock"
	"nhgate/internal/repository/api/nicehash"
)

func (a *App) apiOptions() []nicehash.Option {
	ttl := a.cfg.NiceHash.CacheTTL
	if ttl == 0 {
		ttl = cache.DefaultTTL
	}

	return []nicehash.Option{
		nicehash.WithTimeout(a.cfg.NiceHash.Timeout),
		nicehash.WithCache(cache.New[nicehash.RawMessage](ttl, clock.System{})),
		nicehash.WithMetrics(a.metrics),
		nicehash.WithLogger(a.logger),
	}
}

func (a *App) InitAPI() error {
	api, err := nicehash.NewPrivate(a.cfg.NiceHash.Host, a.cfg.NiceHash.Credentials(), a.apiOptions()...)
	if err != nil {
		return err
	}
	a.api = api

	a.logger.Info("nicehash client ready", "config", a.cfg.NiceHash)
	return nil
}
