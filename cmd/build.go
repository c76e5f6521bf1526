/*
Copyright © 2026 Leah Lundqvist <leah@pigeon.sh>
*/
package cmd

import (
	"fmt"
	"os"

	"blogfeed/feeds"
	"blogfeed/markdown"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func buildCmd() *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "Build the RSS feed once",
		Description: `Builds the feed and writes the RSS document to stdout, or to the
file given by --output. Log messages go to stderr.`,
		Flags: []cli.Flag{
			configFlag(),
			contentFlag(),
			databaseFlag("Build from this SQLite index instead of the content directory"),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the feed to this file instead of stdout",
				EnvVars: []string{"BLOGFEED_OUTPUT"},
			},
		},
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

			feed, err := feeds.NewBuilder(cfg, source, markdown.NewGoldmark()).BuildFeed(ctx.Context)
			if err != nil {
				return err
			}

			doc, err := feed.Render()
			if err != nil {
				return err
			}

			output := ctx.String("output")
			if output == "" {
				_, err = fmt.Fprint(ctx.App.Writer, doc)
				return err
			}

			if err := os.WriteFile(output, []byte(doc), 0o644); err != nil {
				return fmt.Errorf("failed to write feed: %w", err)
			}

			log.WithFields(log.Fields{
				"output":  output,
				"entries": len(feed.Entries),
			}).Info("Wrote feed")
			return nil
		},
	}
}
