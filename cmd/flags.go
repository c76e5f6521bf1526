/*
Copyright © 2026 Leah Lundqvist <leah@pigeon.sh>
*/
package cmd

import (
	"context"
	"fmt"
	"time"

	"blogfeed/config"
	"blogfeed/content"
	"blogfeed/db"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to the TOML feed config, built in defaults are used when empty",
		EnvVars: []string{"BLOGFEED_CONFIG"},
	}
}

func contentFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "content",
		Usage:   "Directory holding the markdown posts",
		EnvVars: []string{"BLOGFEED_CONTENT"},
		Value:   "content/blog",
	}
}

func databaseFlag(usage string) cli.Flag {
	return &cli.StringFlag{
		Name:    "database",
		Aliases: []string{"d"},
		Usage:   usage,
		EnvVars: []string{"BLOGFEED_DATABASE"},
	}
}

func loadConfig(ctx *cli.Context) (*config.Config, error) {
	path := ctx.String("config")
	if path == "" {
		cfg := config.Default()
		return &cfg, nil
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"path":   path,
		"origin": cfg.Site.Origin,
	}).Info("Loaded config")
	return cfg, nil
}

// Opens the post source selected by the flags. The SQLite index is used when
// --database is set, otherwise posts are read straight from --content.
// The returned close function is never nil.
func openSource(ctx context.Context, c *cli.Context) (content.Source, func() error, error) {
	var (
		source  content.Source
		closeFn = func() error { return nil }
	)

	if database := c.String("database"); database != "" {
		store, err := db.NewStore(ctx, database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open index %s: %w", database, err)
		}
		source, closeFn = store, store.Close
		log.WithField("database", database).Info("Reading posts from index")
	} else {
		source = content.NewDir(c.String("content"))
		log.WithField("content", c.String("content")).Info("Reading posts from directory")
	}

	if ttl := c.Duration("cache-ttl"); ttl > 0 {
		source = content.NewCached(source, c.Int("cache-size"), ttl)
	}

	return source, closeFn, nil
}

func cacheFlags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:    "cache-ttl",
			Usage:   "How long loaded posts are cached, 0 disables the cache",
			EnvVars: []string{"BLOGFEED_CACHE_TTL"},
			Value:   time.Minute,
		},
		&cli.IntFlag{
			Name:    "cache-size",
			Usage:   "Maximum number of posts kept in the cache",
			EnvVars: []string{"BLOGFEED_CACHE_SIZE"},
			Value:   256,
		},
	}
}
