package cmdflags

import (
	"github.com/andrebq/corkboard/session"
	"github.com/urfave/cli/v2"
)

func Board(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "board",
		Aliases:     []string{"b"},
		Usage:       "Directory holding the board database",
		Destination: out,
		Value:       *out,
	}
}

func Bind(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "bind",
		Usage:       "Address to listen for HTTP requests",
		Destination: out,
		Value:       *out,
	}
}

func SecretEnvVar(out *string) cli.Flag {
	if len(*out) == 0 {
		*out = session.SecretEnvVar
	}
	return &cli.StringFlag{
		Name:        "secret-envvar-name",
		Usage:       "Name of the environment variable that holds the session signing secret. The secret itself should not be passed as an argument",
		Value:       *out,
		Destination: out,
	}
}
