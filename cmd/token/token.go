package token

import (
	"context"
	"fmt"
	"os"

	"github.com/paularlott/cli"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

// Command returns the token hashing command. The server only ever sees the
// bcrypt hash; the plaintext token stays with the client.
func Command() *cli.Command {
	return &cli.Command{
		Name:        "hash-token",
		Usage:       "Hash an API bearer token",
		Description: "Generate the bcrypt hash of a bearer token for SANCTL_API_TOKEN_HASH",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "token",
				Usage: "Token to hash (omit to be prompted without echo)",
			},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			token := cmd.GetString("token")
			if token == "" {
				fmt.Fprint(os.Stderr, "Token: ")
				raw, err := term.ReadPassword(int(os.Stdin.Fd()))
				fmt.Fprintln(os.Stderr)
				if err != nil {
					return fmt.Errorf("failed to read token: %w", err)
				}
				token = string(raw)
			}
			if token == "" {
				return fmt.Errorf("token must not be empty")
			}

			hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("failed to hash token: %w", err)
			}
			fmt.Println(string(hash))
			return nil
		},
	}
}
