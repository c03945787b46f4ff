// Command leadctl is the operator CLI for lead scores.
package main

import (
	"context"
	"os"

	"github.com/aoe-motors/lead-tracker/internal/bootstrap"
	"github.com/aoe-motors/lead-tracker/internal/pkg/logger"
)

func main() {
	defer logger.Sync()
	if err := newRootCmd(openRescorer).Execute(); err != nil {
		os.Exit(1)
	}
}

// openRescorer connects to the stores named by the config file.
func openRescorer(ctx context.Context) (rescorer, func(), error) {
	cfg, err := bootstrap.Load(bootstrap.ConfigPath())
	if err != nil {
		return nil, nil, err
	}
	db, err := bootstrap.OpenDB(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	rdb, err := bootstrap.OpenRedis(ctx, cfg.Redis.URL)
	if err != nil {
		logger.Warn("redis unavailable, using postgres advisory locks", "error", err)
	}
	return bootstrap.NewRescorer(cfg, db, rdb), func() { bootstrap.CloseStores(db, rdb) }, nil
}
