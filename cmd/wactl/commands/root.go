package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
	"wa-gateway/client"

	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"
)

// Config is read from WACTL_* variables, flags override it.
type Config struct {
	ServerURL string        `envconfig:"SERVER_URL" default:"http://127.0.0.1:8000"`
	Token     string        `envconfig:"TOKEN"`
	APIKey    string        `envconfig:"API_KEY"`
	Colours   bool          `envconfig:"COLOURS" default:"true"`
	Timeout   time.Duration `envconfig:"TIMEOUT" default:"150s"`
}

var (
	config Config
	api    *client.Client
)

func Execute() error {
	return newRootCmd(os.Stdout).Execute()
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "wactl",
		Short:         "Command line client for the WhatsApp HTTP gateway",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var env Config
			if err := envconfig.Process("WACTL", &env); err != nil {
				return err
			}
			mergeFlags(cmd, &env)
			config = env
			color.Enable = config.Colours
			api = client.New(config.ServerURL, client.WithToken(config.Token))
			return nil
		},
	}
	root.SetOut(out)

	root.PersistentFlags().String("server", "", "gateway base URL (default $WACTL_SERVER_URL)")
	root.PersistentFlags().String("token", "", "bearer token (default $WACTL_TOKEN)")
	root.PersistentFlags().Bool("no-colour", false, "disable coloured output")

	root.AddCommand(statusCmd(), healthCmd(), checkCmd(), sendCmd(), sendMediaCmd(),
		sendGroupCmd(), addToGroupCmd(), clearCmd(), groupsCmd(), loginCmd(),
		hashKeyCmd(), watchCmd())
	return root
}

func mergeFlags(cmd *cobra.Command, env *Config) {
	flags := cmd.Flags()
	if v, _ := flags.GetString("server"); v != "" {
		env.ServerURL = v
	}
	if v, _ := flags.GetString("token"); v != "" {
		env.Token = v
	}
	if v, _ := flags.GetBool("no-colour"); v {
		env.Colours = false
	}
}

func requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), config.Timeout)
}

func success(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintln(cmd.OutOrStdout(), color.Green.Sprintf(format, args...))
}

func warn(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintln(cmd.OutOrStdout(), color.Yellow.Sprintf(format, args...))
}
