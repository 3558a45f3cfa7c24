package main

import (
	"context"
	"os"
	"os/signal"

	boardcmd "github.com/andrebq/corkboard/cmd/corkboard/board"
	"github.com/andrebq/corkboard/cmd/corkboard/serve"
	"github.com/andrebq/corkboard/internal/logutil"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "corkboard",
		Usage: "A small bulletin board with accounts and nothing else!",
		Commands: []*cli.Command{
			serve.Cmd(),
			boardcmd.Cmd(),
		},
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx = logutil.Setup(ctx, os.Getenv("CORKBOARD_DEBUG") != "")
	err := app.RunContext(ctx, os.Args)
	if err != nil {
		log.Error().Err(err).Msg("Application failed")
	}
}
