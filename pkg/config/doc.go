// Package config loads cmsroute's process configuration from environment
// variables with github.com/caarlos0/env/v11.
//
// Nested sections reuse the env-tagged structs of the packages they
// configure: logger.Config (LOG_*), redis.Config (REDIS_*), rewrite.Config
// (REWRITE_*) and its db.Config (DATABASE_*).
//
//	cfg, err := config.Load()
//	if err != nil {
//		return err
//	}
//	log := logger.New(cfg.Logger)
package config
