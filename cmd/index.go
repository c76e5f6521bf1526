/*
Copyright © 2026 Leah Lundqvist <leah@pigeon.sh>
*/
package cmd

import (
	"fmt"

	"blogfeed/content"
	"blogfeed/db"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func indexCmd() *cli.Command {
	return &cli.Command{
		Name:  "index",
		Usage: "Index the content directory into SQLite",
		Description: `Migrates the database and replaces its contents with every published
post in the content directory. Serve or build with --database to read from
the index.`,
		Flags: []cli.Flag{
			contentFlag(),
			requiredDatabaseFlag(),
		},
		Action: func(ctx *cli.Context) error {
			database := ctx.String("database")
			if err := db.Migrate(database); err != nil {
				return fmt.Errorf("failed to migrate %s: %w", database, err)
			}

			writer, err := db.NewWriter(ctx.Context, database)
			if err != nil {
				return err
			}
			defer writer.Close()

			n, err := writer.Index(ctx.Context, content.NewDir(ctx.String("content")))
			if err != nil {
				return err
			}

			log.WithFields(log.Fields{
				"database": database,
				"content":  ctx.String("content"),
				"posts":    n,
			}).Info("Index complete")
			return nil
		},
	}
}
