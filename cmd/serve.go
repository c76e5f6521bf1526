/*
Copyright © 2026 Leah Lundqvist <leah@pigeon.sh>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blogfeed/feeds"
	"blogfeed/markdown"
	"blogfeed/server"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func serveCmd() *cli.Command {
	flags := []cli.Flag{
		configFlag(),
		contentFlag(),
		databaseFlag("Serve posts from this SQLite index instead of the content directory"),
		&cli.StringFlag{
			Name:    "hostname",
			Usage:   "Address to listen on",
			EnvVars: []string{"BLOGFEED_HOSTNAME"},
			Value:   "",
		},
		&cli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Usage:   "Port to listen on",
			EnvVars: []string{"BLOGFEED_PORT"},
			Value:   3000,
		},
	}

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the RSS feed over HTTP",
		Description: `Starts an HTTP server that builds the feed on every request.

The feed is served on the configured feed path and on the same path with an
.xml suffix. The server also exposes /health, /metrics and permanent redirects
for moved pages.`,
		Flags: append(flags, cacheFlags()...),
		Action: func(ctx *cli.Context) error {
			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}

			source, closeSource, err := openSource(ctx.Context, ctx)
			if err != nil {
				return err
			}
			defer closeSource()

			builder := feeds.NewBuilder(cfg, source, markdown.NewGoldmark())
			app := server.Server(&server.ServerConfig{
				Builder:  builder,
				FeedPath: cfg.Feed.Path,
			})

			// Graceful shutdown
			sigs := make(chan os.Signal, 1)
			signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigs)

			errs := make(chan error, 1)
			go func() {
				address := fmt.Sprintf("%s:%d", ctx.String("hostname"), ctx.Int("port"))
				log.WithFields(log.Fields{
					"address": address,
					"feed":    cfg.Feed.Path,
				}).Info("Starting server")
				errs <- app.Listen(address)
			}()

			select {
			case err := <-errs:
				return err
			case <-sigs:
			case <-ctx.Context.Done():
			}

			log.Info("Gracefully shutting down")
			if err := app.ShutdownWithTimeout(60 * time.Second); err != nil {
				return err
			}
			log.Info("Done")
			return nil
		},
	}
}
