package board

import (
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	boardpkg "github.com/andrebq/corkboard/board"
	"github.com/andrebq/corkboard/internal/cmdflags"
	"github.com/andrebq/corkboard/internal/pwhash"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "board",
		Usage: "Operator-side maintenance of a board database",
		Subcommands: []*cli.Command{
			initCmd(),
			registerCmd(),
		},
	}
}

func initCmd() *cli.Command {
	boardDir := "data"
	return &cli.Command{
		Name:  "init",
		Usage: "Create an empty board database",
		Flags: []cli.Flag{
			cmdflags.Board(&boardDir),
		},
		Action: func(c *cli.Context) error {
			store, err := boardpkg.Open(c.Context, boardDir)
			if err != nil {
				return err
			}
			return store.Close()
		},
	}
}

func registerCmd() *cli.Command {
	boardDir := "data"
	var handle string
	return &cli.Command{
		Name:  "register",
		Usage: "Register a user without going through the HTTP surface",
		Flags: []cli.Flag{
			cmdflags.Board(&boardDir),
			&cli.StringFlag{
				Name:        "handle",
				Usage:       "Login handle of the new user",
				Destination: &handle,
				Required:    true,
			},
		},
		Action: func(c *cli.Context) error {
			fmt.Fprint(os.Stderr, "password: ")
			password, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Fprintln(os.Stderr)
			if err != nil {
				return fmt.Errorf("unable to read password, cause %w", err)
			}
			if utf8.RuneCount(password) < 6 {
				return errors.New("passwords must have at least 6 characters")
			}
			blob, err := pwhash.New().Hash(string(password))
			if err != nil {
				return err
			}
			store, err := boardpkg.Open(c.Context, boardDir)
			if err != nil {
				return err
			}
			defer store.Close()
			_, err = store.CreateUser(c.Context, handle, blob)
			return err
		},
	}
}
