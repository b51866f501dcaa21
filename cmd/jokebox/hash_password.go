package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/devmarvs/jokebox/config"
	"github.com/devmarvs/jokebox/password"
	"github.com/spf13/cobra"
)

func newHashPasswordCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Hash a password read from stdin",
		Long: `Read one line from stdin and print its digest using the configured
algorithm. Useful for seeding users directly in the database.

Example:
  printf 'twixrox' | jokebox hash-password`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configFile, opts.envPrefix)
			if err != nil {
				return err
			}

			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return errors.New("no password on stdin")
			}
			plaintext := strings.TrimRight(line, "\r\n")
			if plaintext == "" {
				return errors.New("password must not be empty")
			}

			hasher, err := password.New(password.Config{
				Algorithm:  cfg.Password.Algorithm,
				BcryptCost: cfg.Password.BcryptCost,
			})
			if err != nil {
				return err
			}
			digest, err := hasher.Hash(plaintext)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), digest)
			return nil
		},
	}
}
