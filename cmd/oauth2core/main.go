package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-oauth2-core/internal/config"
	"github.com/jrsteele09/go-oauth2-core/internal/logging"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg)

	if err := newApp(cfg).Run(context.Background(), os.Args); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func newApp(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "oauth2core",
		Usage: "Grant, read, revoke and introspect OAuth2 access tokens",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "store",
				Value:   storeSQL,
				Usage:   "Token store: 'sql' (database plus redis) or 'memory'",
				Sources: cli.EnvVars("TOKEN_STORE"),
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "Do not print the banner",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if !cmd.Bool("quiet") {
				displayAppname(cmd.Root().ErrWriter, cfg.GetAppName())
			}
			return ctx, nil
		},
		Commands: getCommands(cfg),
	}
}

func displayAppname(w io.Writer, appname string) {
	if w == nil {
		w = os.Stderr
	}
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprintln(w, myFigure.String())
}
