package main

import (
	"context"

	"github.com/magabrotheeeer/contrarian-report/internal/cache"
	"github.com/magabrotheeeer/contrarian-report/internal/lib/jwt"
	"github.com/magabrotheeeer/contrarian-report/internal/lib/sl"
	authservice "github.com/magabrotheeeer/contrarian-report/internal/services/auth"
	"github.com/magabrotheeeer/contrarian-report/internal/storage"
)

// resources соединения, открытые одной командой.
type resources struct {
	db    *storage.Storage
	cache *cache.Cache
}

func (c *cli) open(ctx context.Context, withCache bool) (*resources, error) {
	db, err := storage.New(c.cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	res := &resources{db: db}
	if withCache {
		cc, err := cache.InitServer(ctx, c.cfg.RedisConnection)
		if err != nil {
			res.close(c)
			return nil, err
		}
		res.cache = cc
	}
	return res, nil
}

func (r *resources) close(c *cli) {
	if r.cache != nil {
		if err := r.cache.Close(); err != nil {
			c.log.Warn("failed to close cache", sl.Err(err))
		}
	}
	if err := r.db.Close(); err != nil {
		c.log.Warn("failed to close storage", sl.Err(err))
	}
}

func (c *cli) authService(r *resources) *authservice.Service {
	maker := jwt.NewJWTMaker(c.cfg.SecretKey, c.cfg.TokenTTL)
	return authservice.NewAuthService(c.log, r.db, r.cache, maker, c.cfg.SessionTTL)
}
