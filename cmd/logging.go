/*
Copyright © 2026 Leah Lundqvist <leah@pigeon.sh>
*/
package cmd

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level: debug, info, warn or error",
			EnvVars: []string{"BLOGFEED_LOG_LEVEL"},
			Value:   "info",
		},
		&cli.StringFlag{
			Name:    "log-format",
			Usage:   "Log format: text or json",
			EnvVars: []string{"BLOGFEED_LOG_FORMAT"},
			Value:   "text",
		},
		&cli.StringFlag{
			Name:    "log-file",
			Usage:   "Also write logs to this file, rotated when it grows past 64MB",
			EnvVars: []string{"BLOGFEED_LOG_FILE"},
		},
	}
}

// Configures the global logger. Logs always go to stderr so that commands
// printing the feed to stdout stay pipeable.
func setupLogging(ctx *cli.Context) (io.Closer, error) {
	level, err := log.ParseLevel(ctx.String("log-level"))
	if err != nil {
		return nil, err
	}
	log.SetLevel(level)

	switch ctx.String("log-format") {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	case "text", "":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("unknown log format %q", ctx.String("log-format"))
	}

	file := ctx.String("log-file")
	if file == "" {
		log.SetOutput(os.Stderr)
		return noopCloser{}, nil
	}

	rotated := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    64,
		MaxBackups: 3,
		MaxAge:     28,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, rotated))
	return rotated, nil
}

type noopCloser struct{}

func (noopCloser) Close() error { return nil }
