package commands

import (
	"fmt"
	"wa-gateway/auth"

	"github.com/spf13/cobra"
)

// login [api key]: trade the api key for a bearer token.
func loginCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "login [api-key]",
		Short: "Exchange an API key for a bearer token",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := apiKeyFrom(args)
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			grant, err := api.Login(ctx, key, name)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), grant.Token)
			success(cmd, "expires at %s, export it as WACTL_TOKEN", grant.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "client", "wactl", "client name recorded as the token subject")
	return cmd
}

// hash-key [api key]: print the API_KEY_HASH value for a new key.
func hashKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-key [api-key]",
		Short: "Hash an API key for the API_KEY_HASH setting",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := apiKeyFrom(args)
			if err != nil {
				return err
			}
			if err := auth.ValidateKey(auth.KeyRequest{APIKey: key}); err != nil {
				return err
			}
			hash, err := auth.HashKey(key)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func apiKeyFrom(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if config.APIKey != "" {
		return config.APIKey, nil
	}
	return "", fmt.Errorf("api key required as argument or $WACTL_API_KEY")
}
