package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// check <number>: ask whether a number is on WhatsApp.
func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <number>",
		Short: "Check that a number is registered on WhatsApp",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			msg, err := api.IsRegistered(ctx, args[0])
			if err != nil {
				return err
			}
			success(cmd, "%s", msg)
			return nil
		},
	}
}

// send <number> <message...>: send a text message.
func sendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <number> <message...>",
		Short: "Send a text message to a number",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			sent, err := api.SendMessage(ctx, args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			success(cmd, "sent %s to %s", sent.ID, sent.To)
			return nil
		},
	}
}

// send-media <number> <file>: upload a file and send it.
func sendMediaCmd() *cobra.Command {
	var caption string
	cmd := &cobra.Command{
		Use:   "send-media <number> <file>",
		Short: "Send a file to a number",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			msg, err := api.SendMedia(ctx, args[0], args[1], caption)
			if err != nil {
				return err
			}
			success(cmd, "%s", msg)
			return nil
		},
	}
	cmd.Flags().StringVarP(&caption, "caption", "c", "", "caption shown under the media")
	return cmd
}

// send-group --id <id> | --name <name> <message...>
func sendGroupCmd() *cobra.Command {
	var id, name string
	cmd := &cobra.Command{
		Use:   "send-group <message...>",
		Short: "Send a text message to a group by id or by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" && name == "" {
				return fmt.Errorf("either --id or --name is required")
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			sent, err := api.SendGroupMessage(ctx, id, name, strings.Join(args, " "))
			if err != nil {
				return err
			}
			success(cmd, "sent %s to %s", sent.ID, sent.To)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "group id, with or without @g.us")
	cmd.Flags().StringVar(&name, "name", "", "exact group name")
	return cmd
}

// add-to-group <number> <group id>
func addToGroupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-to-group <number> <group-id>",
		Short: "Add a number to a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			msg, err := api.AddToGroup(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			success(cmd, "%s", msg)
			return nil
		},
	}
}

// clear <number>: clear the chat history with a number.
func clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <number>",
		Short: "Clear the messages of a chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			cleared, err := api.ClearMessage(ctx, args[0])
			if err != nil {
				return err
			}
			if !cleared {
				warn(cmd, "nothing was cleared")
				return nil
			}
			success(cmd, "cleared")
			return nil
		},
	}
}
