/*
Copyright © 2026 Leah Lundqvist <leah@pigeon.sh>
*/
package cmd

import (
	"io"

	"github.com/urfave/cli/v2"
)

func RootApp() *cli.App {
	var logCloser io.Closer

	return &cli.App{
		Name:  "blogfeed",
		Usage: "An RSS 2.0 feed for a markdown blog",
		Description: `Builds an RSS 2.0 feed from a directory of markdown posts
		with YAML or TOML frontmatter. Each entry carries the rendered post
		followed by a "Reply via e-mail" link.

		The feed can be served over HTTP, written to a file, or built from an
		SQLite index of the posts created with the index command.

		Flags can generally be set via environment variables, e.g.:

		--config => BLOGFEED_CONFIG=config/feed.toml
		--port => BLOGFEED_PORT=3000
		`,
		Flags: loggingFlags(),
		Before: func(ctx *cli.Context) error {
			closer, err := setupLogging(ctx)
			logCloser = closer
			return err
		},
		After: func(ctx *cli.Context) error {
			if logCloser != nil {
				return logCloser.Close()
			}
			return nil
		},
		Commands: []*cli.Command{
			serveCmd(),
			buildCmd(),
			indexCmd(),
			migrateCmd(),
			rollbackCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Show help if no command is specified
			return ctx.App.Run([]string{"", "help"})
		},
	}
}
