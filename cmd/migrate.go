/*
Copyright © 2026 Leah Lundqvist <leah@pigeon.sh>
*/
package cmd

import (
	"blogfeed/db"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func requiredDatabaseFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "database",
		Aliases:  []string{"d"},
		Usage:    "SQLite database path",
		EnvVars:  []string{"BLOGFEED_DATABASE"},
		Required: true,
	}
}

func migrateCmd() *cli.Command {
	return &cli.Command{
		Name:        "migrate",
		Usage:       "Run database migrations",
		Description: `Runs database migrations on the post index. Will create the database if it does not exist.`,
		Flags: []cli.Flag{
			requiredDatabaseFlag(),
		},
		Action: func(ctx *cli.Context) error {
			log.WithField("database", ctx.String("database")).Info("Running migrations")
			return db.Migrate(ctx.String("database"))
		},
	}
}

func rollbackCmd() *cli.Command {
	return &cli.Command{
		Name:        "rollback",
		Usage:       "Rollback database migration",
		Description: `Rolls back the last database migration`,
		Flags: []cli.Flag{
			requiredDatabaseFlag(),
		},
		Action: func(ctx *cli.Context) error {
			log.WithField("database", ctx.String("database")).Info("Rolling back migration")
			return db.Rollback(ctx.String("database"))
		},
	}
}
