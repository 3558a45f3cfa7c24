package serve

import (
	"github.com/andrebq/corkboard/board"
	"github.com/andrebq/corkboard/board/api"
	"github.com/andrebq/corkboard/internal/cmdflags"
	"github.com/andrebq/corkboard/internal/httpserver"
	"github.com/andrebq/corkboard/internal/pwhash"
	"github.com/andrebq/corkboard/session"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	bind := "localhost:8080"
	boardDir := "data"
	secretVar := ""
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the board over HTTP",
		Flags: []cli.Flag{
			cmdflags.Board(&boardDir),
			cmdflags.Bind(&bind),
			cmdflags.SecretEnvVar(&secretVar),
		},
		Action: func(c *cli.Context) error {
			ctx := c.Context
			secret, err := session.SecretFromEnv(secretVar, nil, nil)
			if err != nil {
				return err
			}
			codec, err := session.NewCodec(secret)
			if err != nil {
				return err
			}
			store, err := board.Open(ctx, boardDir)
			if err != nil {
				return err
			}
			defer store.Close()
			handler := api.AsHandler(ctx, store, session.NewGate(codec), codec, pwhash.New())
			return httpserver.Serve(ctx, bind, handler)
		},
	}
}
